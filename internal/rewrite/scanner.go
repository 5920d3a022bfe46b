package rewrite

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
)

// MaxLineSize is the default bound on a single line the scanner will accept.
const MaxLineSize = 64 << 20

// ScannerRewriter implements LineRewriter using bufio.Scanner.
type ScannerRewriter struct {
	scanner  *bufio.Scanner
	output   bytes.Buffer
	lineNo   int  // how many lines have been consumed (scanned) so far
	finished bool // true once we've reached EOF
}

// NewScannerRewriter constructs a ScannerRewriter over an io.Reader (the full file content).
// maxLine bounds a single line; zero or less means MaxLineSize.
func NewScannerRewriter(r io.Reader, maxLine int) *ScannerRewriter {
	if maxLine <= 0 {
		maxLine = MaxLineSize
	}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, min(64*1024, maxLine)), maxLine)
	scanner.Split(scanLinesKeepEOL)
	return &ScannerRewriter{scanner: scanner}
}

// CopyLinesUntil writes original lines [0..lineIndex-1] to output and positions the scanner at lineIndex.
func (rw *ScannerRewriter) CopyLinesUntil(lineIndex int) error {
	for rw.lineNo < lineIndex {
		if !rw.scan() {
			if err := rw.scanner.Err(); err != nil {
				return err
			}
			return fmt.Errorf("copy to line %d: only %d lines: %w", lineIndex, rw.lineNo, io.ErrUnexpectedEOF)
		}
		rw.output.Write(rw.scanner.Bytes())
		rw.lineNo++
	}
	return nil
}

// ReplaceLines replaces all original lines from startLine..endLine (inclusive) with newLines.
func (rw *ScannerRewriter) ReplaceLines(startLine, endLine int, newLines [][]byte) error {
	if startLine < rw.lineNo {
		return fmt.Errorf("replace from line %d: already past line %d", startLine, rw.lineNo)
	}
	// 1) Copy up to startLine (this consumes lines 0..startLine-1).
	if err := rw.CopyLinesUntil(startLine); err != nil {
		return err
	}
	// 2) Skip (consume without writing) lines [startLine..endLine]:
	for rw.lineNo <= endLine {
		if !rw.scan() {
			if err := rw.scanner.Err(); err != nil {
				return err
			}
			return fmt.Errorf("replace lines %d-%d: only %d lines: %w", startLine, endLine, rw.lineNo, io.ErrUnexpectedEOF)
		}
		rw.lineNo++
	}
	// 3) Write the replacement verbatim
	for _, nl := range newLines {
		rw.output.Write(nl)
	}
	return nil
}

// CopyRemainingLines writes all lines from the current scanner position through EOF.
func (rw *ScannerRewriter) CopyRemainingLines() error {
	for rw.scan() {
		rw.output.Write(rw.scanner.Bytes())
		rw.lineNo++
	}
	return rw.scanner.Err()
}

// Bytes returns the fully rewritten buffer.
func (rw *ScannerRewriter) Bytes() []byte {
	return rw.output.Bytes()
}

func (rw *ScannerRewriter) scan() bool {
	if rw.finished {
		return false
	}
	if !rw.scanner.Scan() {
		rw.finished = true
		return false
	}
	return true
}

// BuildLineOffsets returns a slice of byte offsets where each line begins,
// followed by len(content) so that line i spans offsets[i]:offsets[i+1].
func BuildLineOffsets(content []byte) []int {
	offsets := []int{0}
	pos := 0
	for _, line := range Split(content) {
		pos += len(line)
		offsets = append(offsets, pos)
	}
	return offsets
}
