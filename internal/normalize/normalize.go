// Package normalize rewrites a text file of uncertain encoding as UTF-8
// without a byte-order mark. Encodings are tried strictly and in the order the
// caller gives; the first one that decodes the whole file wins.
package normalize

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"srcfix/internal/filestore"
)

// ErrNoCandidates is returned when Normalize is given an empty candidate list.
var ErrNoCandidates = errors.New("no candidate encodings given")

// Attempt records one candidate that failed to decode the file.
type Attempt struct {
	Encoding string
	Err      error
}

// ExhaustedCandidatesError reports that no candidate decoded the file.
type ExhaustedCandidatesError struct {
	Path     string
	Attempts []Attempt
}

func (e *ExhaustedCandidatesError) Error() string {
	parts := make([]string, len(e.Attempts))
	for i, a := range e.Attempts {
		parts[i] = fmt.Sprintf("%s: %v", a.Encoding, a.Err)
	}
	return fmt.Sprintf("%s: no candidate encoding could decode the file (tried %s)", e.Path, strings.Join(parts, "; "))
}

// Encodings lists the names that were tried, in order.
func (e *ExhaustedCandidatesError) Encodings() []string {
	names := make([]string, len(e.Attempts))
	for i, a := range e.Attempts {
		names[i] = a.Encoding
	}
	return names
}

// Options tunes a single Normalize call.
type Options struct {
	// DryRun decodes and reports without writing the file.
	DryRun bool
	Logger *slog.Logger
}

// Result describes a successful normalization.
type Result struct {
	Path       string
	Encoding   string    // candidate that decoded the file
	Failed     []Attempt // candidates tried before it
	InputSize  int
	OutputSize int
	DroppedBOM bool
	Changed    bool // output bytes differ from the input
	Written    bool
}

// Normalize decodes the file at path with the first candidate that succeeds
// and overwrites it with the decoded text as UTF-8, minus any leading BOM.
//
// Later candidates are not tried once one succeeds. When all fail the result is
// an *ExhaustedCandidatesError and the file is not written. A missing file
// yields a *filestore.NotFoundError.
func Normalize(store filestore.Store, path string, candidates []Candidate, opts Options) (Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if len(candidates) == 0 {
		return Result{}, ErrNoCandidates
	}

	data, err := store.ReadFile(path)
	if err != nil {
		return Result{}, err
	}

	res := Result{Path: path, InputSize: len(data)}
	var text string
	decoded := false
	for _, c := range candidates {
		t, bom, err := c.decode(data)
		if err != nil {
			logger.Debug("candidate rejected",
				slog.String("path", path),
				slog.String("encoding", c.Name),
				slog.String("error", err.Error()))
			res.Failed = append(res.Failed, Attempt{Encoding: c.Name, Err: err})
			continue
		}
		text, res.Encoding, res.DroppedBOM = t, c.Name, bom
		decoded = true
		break
	}
	if !decoded {
		return Result{}, &ExhaustedCandidatesError{Path: path, Attempts: res.Failed}
	}

	if stripped, ok := strings.CutPrefix(text, "\uFEFF"); ok {
		text = stripped
		res.DroppedBOM = true
	}
	out := []byte(text)
	res.OutputSize = len(out)
	res.Changed = !bytes.Equal(out, data)

	logger.Debug("decoded",
		slog.String("path", path),
		slog.String("encoding", res.Encoding),
		slog.Bool("bom", res.DroppedBOM),
		slog.Bool("changed", res.Changed))

	if opts.DryRun {
		return res, nil
	}
	if err := store.WriteFile(path, out); err != nil {
		return Result{}, err
	}
	res.Written = true
	logger.Info("file normalized",
		slog.String("path", path),
		slog.String("from", res.Encoding),
		slog.String("to", Canonical))
	return res, nil
}
