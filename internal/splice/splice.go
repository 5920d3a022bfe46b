// Package splice replaces an inclusive range of lines in a file with a block
// of new lines, leaving every other byte of the file as it was.
package splice

import (
	"bytes"
	"fmt"
	"log/slog"

	"srcfix/internal/filestore"
	"srcfix/internal/rewrite"
	"srcfix/pkg/linerange"
)

// Options tunes a single Splice call.
type Options struct {
	// DryRun computes the result without writing the file.
	DryRun bool
	// EOL is appended to replacement lines that lack a terminator. Empty
	// means the file's own terminator (see rewrite.DetectEOL).
	EOL    string
	Logger *slog.Logger
}

// Result describes a splice that was applied (or would be, for a dry run).
type Result struct {
	Path       string
	Range      linerange.Range
	TotalLines int // lines before the splice
	NewTotal   int // lines after the splice
	Removed    int
	Inserted   int
	FirstLine  string // first replaced line, without its terminator
	LastLine   string // last replaced line, without its terminator
	ByteStart  int    // offset of the replaced region in the original content
	ByteEnd    int
	Before     []byte
	After      []byte
	Written    bool
}

// Changed reports whether the splice altered the file content.
func (r Result) Changed() bool {
	return !bytes.Equal(r.Before, r.After)
}

// Splice replaces lines rng.Start..rng.End (1-based, inclusive) of the file at
// path with replacement. Elements of replacement are written verbatim, except
// that an unterminated one gets opts.EOL appended; an empty replacement
// deletes the range.
//
// The range is checked against the file before anything is written: a missing
// file yields a *filestore.NotFoundError and a bad range a *linerange.RangeError,
// and in both cases the file is left untouched. A range that is in bounds is
// applied exactly as given.
func Splice(store filestore.Store, path string, rng linerange.Range, replacement [][]byte, opts Options) (Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	content, err := store.ReadFile(path)
	if err != nil {
		return Result{}, err
	}
	lines := rewrite.Split(content)

	if err := rng.Validate(len(lines)); err != nil {
		return Result{}, fmt.Errorf("%s: %w", path, err)
	}
	lo, hi := rng.Bounds()
	offsets := rewrite.BuildLineOffsets(content)

	eol := opts.EOL
	if eol == "" {
		eol = rewrite.DetectEOL(content)
	}
	replacement = rewrite.Terminate(replacement, eol)

	res := Result{
		Path:       path,
		Range:      rng,
		TotalLines: len(lines),
		Removed:    rng.Len(),
		Inserted:   len(replacement),
		FirstLine:  lines.Text(lo),
		LastLine:   lines.Text(hi - 1),
		ByteStart:  offsets[lo],
		ByteEnd:    offsets[hi],
		Before:     content,
	}

	// The whole file is in memory already, so no line can be too long.
	after, err := replaceRange(rewrite.NewScannerRewriter(bytes.NewReader(content), len(content)+1), lo, hi, replacement)
	if err != nil {
		return Result{}, fmt.Errorf("failed to splice %s: %w", path, err)
	}
	res.After = after
	res.NewTotal = len(rewrite.Split(res.After))

	logger.Debug("splice computed",
		slog.String("path", path),
		slog.String("range", rng.String()),
		slog.Int("removed", res.Removed),
		slog.Int("inserted", res.Inserted),
		slog.Bool("dry_run", opts.DryRun))

	if opts.DryRun {
		return res, nil
	}
	if err := store.WriteFile(path, res.After); err != nil {
		return Result{}, err
	}
	res.Written = true
	logger.Info("lines replaced",
		slog.String("path", path),
		slog.String("range", rng.String()),
		slog.Int("lines", res.NewTotal))
	return res, nil
}

// replaceRange swaps the half-open line window [lo, hi) for replacement.
func replaceRange(rw rewrite.LineRewriter, lo, hi int, replacement [][]byte) ([]byte, error) {
	if err := rw.ReplaceLines(lo, hi-1, replacement); err != nil {
		return nil, err
	}
	if err := rw.CopyRemainingLines(); err != nil {
		return nil, err
	}
	return rw.Bytes(), nil
}
