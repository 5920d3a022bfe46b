package rewrite

// LineRewriter lets you copy/cut/paste at the granularity of whole lines.
// Lines keep their original terminators on the way through.
type LineRewriter interface {
	// CopyLinesUntil writes original lines [0..lineIndex-1], positioning the scanner at lineIndex.
	CopyLinesUntil(lineIndex int) error

	// ReplaceLines replaces all original lines from startLine through endLine (0-based, inclusive)
	// with newLines. Each element of newLines is written verbatim, so it must already carry
	// its terminator (see Terminate).
	//
	// Internally, this means:
	//   1. Copy any lines < startLine
	//   2. Consume (skip) original lines [startLine..endLine]
	//   3. Write each element of newLines
	//   4. Leave scanner positioned at line endLine+1, ready for further Copy/Replace calls
	ReplaceLines(startLine, endLine int, newLines [][]byte) error

	// CopyRemainingLines writes all leftover original lines (from current scanner position to EOF).
	CopyRemainingLines() error

	// Bytes returns the fully rewritten buffer.
	Bytes() []byte
}
