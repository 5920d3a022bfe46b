package splice

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"srcfix/internal/filestore"
	"srcfix/internal/rewrite"
	"srcfix/pkg/linerange"
)

var quiet = Options{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}

func numbered(n int) string {
	var sb strings.Builder
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&sb, "line %d\n", i)
	}
	return sb.String()
}

func block(lines ...string) [][]byte {
	out := make([][]byte, len(lines))
	for i, l := range lines {
		out[i] = []byte(l)
	}
	return out
}

func TestSplice_TenLineExample(t *testing.T) {
	store := filestore.NewMemStore()
	store.Put("f.txt", []byte(numbered(10)))

	res, err := Splice(store, "f.txt", linerange.New(3, 5), block("X\n", "Y\n"), quiet)
	if err != nil {
		t.Fatalf("Splice: %v", err)
	}

	got, _ := store.Get("f.txt")
	lines := rewrite.Split(got)
	if len(lines) != 9 {
		t.Fatalf("got %d lines, want 9:\n%s", len(lines), got)
	}
	if lines.Text(2) != "X" || lines.Text(3) != "Y" {
		t.Errorf("lines 3-4 = %q, %q, want X, Y", lines.Text(2), lines.Text(3))
	}
	if lines.Text(4) != "line 6" {
		t.Errorf("line 5 = %q, want former line 6", lines.Text(4))
	}
	if res.NewTotal != 9 || res.Removed != 3 || res.Inserted != 2 || !res.Written {
		t.Errorf("unexpected result: %+v", res)
	}
	if res.FirstLine != "line 3" || res.LastLine != "line 5" {
		t.Errorf("context = %q..%q, want line 3..line 5", res.FirstLine, res.LastLine)
	}
	if store.Writes() != 1 {
		t.Errorf("Writes() = %d, want exactly one write", store.Writes())
	}
}

func TestSplice_MatchesSliceArithmetic(t *testing.T) {
	content := "a\r\nb\nc\r\nd\ne"
	orig := rewrite.Split([]byte(content))
	repl := block("R1\r\n", "R2\n")

	for s := 1; s <= len(orig); s++ {
		for e := s; e <= len(orig); e++ {
			t.Run(fmt.Sprintf("%d-%d", s, e), func(t *testing.T) {
				store := filestore.NewMemStore()
				store.Put("f", []byte(content))
				if _, err := Splice(store, "f", linerange.New(s, e), repl, quiet); err != nil {
					t.Fatalf("Splice: %v", err)
				}

				var want bytes.Buffer
				want.Write(rewrite.Lines(orig[:s-1]).Join())
				for _, r := range repl {
					want.Write(r)
				}
				want.Write(rewrite.Lines(orig[e:]).Join())

				got, _ := store.Get("f")
				if !bytes.Equal(got, want.Bytes()) {
					t.Errorf("got %q, want %q", got, want.Bytes())
				}
			})
		}
	}
}

func TestSplice_EmptyReplacementDeletes(t *testing.T) {
	store := filestore.NewMemStore()
	store.Put("f", []byte("1\n2\n3\n4\n"))
	if _, err := Splice(store, "f", linerange.New(2, 3), nil, quiet); err != nil {
		t.Fatalf("Splice: %v", err)
	}
	if got, _ := store.Get("f"); string(got) != "1\n4\n" {
		t.Errorf("got %q, want %q", got, "1\n4\n")
	}
}

func TestSplice_InvalidRangeLeavesFileUntouched(t *testing.T) {
	tests := []struct {
		name string
		rng  linerange.Range
	}{
		{name: "start past end of file", rng: linerange.New(11, 11)},
		{name: "end past end of file", rng: linerange.New(8, 12)},
		{name: "end before start", rng: linerange.New(5, 4)},
		{name: "zero start", rng: linerange.New(0, 2)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "f.txt")
			if err := os.WriteFile(path, []byte(numbered(10)), 0o644); err != nil {
				t.Fatal(err)
			}
			before := checksum(t, path)

			_, err := Splice(filestore.NewOSStore(false), path, tt.rng, block("X\n"), quiet)
			var rangeErr *linerange.RangeError
			if !errors.As(err, &rangeErr) {
				t.Fatalf("Splice(%v) = %v, want *linerange.RangeError", tt.rng, err)
			}
			if !strings.Contains(err.Error(), path) {
				t.Errorf("error should name the path: %v", err)
			}
			if after := checksum(t, path); after != before {
				t.Errorf("file changed after a rejected splice")
			}
		})
	}
}

func TestSplice_NotFound(t *testing.T) {
	store := filestore.NewMemStore()
	_, err := Splice(store, "missing.txt", linerange.New(1, 1), nil, quiet)
	var nf *filestore.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("Splice(missing) = %v, want *filestore.NotFoundError", err)
	}
}

func TestSplice_DryRun(t *testing.T) {
	store := filestore.NewMemStore()
	store.Put("f", []byte("a\nb\nc\n"))

	opts := quiet
	opts.DryRun = true
	res, err := Splice(store, "f", linerange.New(2, 2), block("B\n"), opts)
	if err != nil {
		t.Fatalf("Splice: %v", err)
	}
	if store.Writes() != 0 || res.Written {
		t.Errorf("dry run wrote the file")
	}
	if string(res.After) != "a\nB\nc\n" || !res.Changed() {
		t.Errorf("After = %q", res.After)
	}
	if res.ByteStart != 2 || res.ByteEnd != 4 {
		t.Errorf("byte span = %d..%d, want 2..4", res.ByteStart, res.ByteEnd)
	}
}

func TestSplice_TerminatesReplacement(t *testing.T) {
	tests := []struct {
		name    string
		content string
		eol     string
		want    string
	}{
		{name: "file terminator", content: "a\r\nb\r\nc\r\n", want: "a\r\nX\r\nY\r\nc\r\n"},
		{name: "explicit terminator", content: "a\r\nb\r\nc\r\n", eol: "\n", want: "a\r\nX\nY\r\nc\r\n"},
		{name: "unterminated file defaults to lf", content: "a\nb\nc", want: "a\nX\nY\r\nc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := filestore.NewMemStore()
			store.Put("f", []byte(tt.content))
			opts := quiet
			opts.EOL = tt.eol
			res, err := Splice(store, "f", linerange.New(2, 2), block("X", "Y\r\n"), opts)
			if err != nil {
				t.Fatalf("Splice: %v", err)
			}
			if got, _ := store.Get("f"); string(got) != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
			if res.Inserted != 2 {
				t.Errorf("Inserted = %d, want 2", res.Inserted)
			}
		})
	}
}

func TestSplice_LineLongerThanScannerDefault(t *testing.T) {
	if testing.Short() {
		t.Skip("allocates a line larger than rewrite.MaxLineSize")
	}
	long := bytes.Repeat([]byte{'x'}, rewrite.MaxLineSize+1)
	content := append(append([]byte("a\n"), long...), "\nz\n"...)

	store := filestore.NewMemStore()
	store.Put("f", content)
	res, err := Splice(store, "f", linerange.New(1, 1), block("A\n"), quiet)
	if err != nil {
		t.Fatalf("Splice: %v", err)
	}
	got, _ := store.Get("f")
	if !bytes.HasPrefix(got, []byte("A\nxxx")) || !bytes.HasSuffix(got, []byte("x\nz\n")) || len(got) != len(content) {
		t.Errorf("unexpected output: %d bytes, prefix %q", len(got), got[:min(len(got), 8)])
	}
	if res.NewTotal != 3 || store.Writes() != 1 {
		t.Errorf("NewTotal = %d, writes = %d", res.NewTotal, store.Writes())
	}
}

func TestSplice_OSStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "VideoClient.tsx")
	content := "import x\r\n<div>\r\n  old\r\n</div>\r\nexport y\r\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Splice(filestore.NewOSStore(true), path, linerange.New(2, 4), block("<div className=\"space-y-4\">\r\n", "</div>\r\n"), quiet)
	if err != nil {
		t.Fatalf("Splice: %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := "import x\r\n<div className=\"space-y-4\">\r\n</div>\r\nexport y\r\n"
	if string(got) != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func checksum(t *testing.T, path string) [32]byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read file: %v", err)
	}
	return sha256.Sum256(data)
}
