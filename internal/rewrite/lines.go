package rewrite

import (
	"bytes"
)

// Lines is a file's content split into lines, each keeping its terminator.
// Joining it gives back the original bytes.
type Lines [][]byte

// Split breaks content into lines without dropping "\n", "\r\n" or a lone "\r".
// A final line without a terminator is kept as is. Empty content has no lines.
func Split(content []byte) Lines {
	var lines Lines
	for pos := 0; pos < len(content); {
		advance, token, _ := scanLinesKeepEOL(content[pos:], true)
		lines = append(lines, token)
		pos += advance
	}
	return lines
}

// Join concatenates the lines back into one buffer.
func (l Lines) Join() []byte {
	return bytes.Join(l, nil)
}

// Text returns line i without its terminator.
func (l Lines) Text(i int) string {
	return string(trimEOL(l[i]))
}

// DetectEOL returns the terminator of the first terminated line in content,
// or "\n" when there is none.
func DetectEOL(content []byte) string {
	for _, line := range Split(content) {
		if eol := lineEnding(line); eol != "" {
			return eol
		}
	}
	return "\n"
}

// Terminate makes sure every line in block ends with a terminator, appending
// eol to the ones that do not. Lines are copied, block is not modified.
func Terminate(block [][]byte, eol string) [][]byte {
	out := make([][]byte, 0, len(block))
	for _, line := range block {
		if lineEnding(line) != "" {
			out = append(out, line)
			continue
		}
		terminated := make([]byte, 0, len(line)+len(eol))
		terminated = append(terminated, line...)
		terminated = append(terminated, eol...)
		out = append(out, terminated)
	}
	return out
}

// FromStrings turns literal lines (no terminators) into a block terminated with
// eol. An empty eol leaves the lines unterminated.
func FromStrings(lines []string, eol string) [][]byte {
	block := make([][]byte, len(lines))
	for i, s := range lines {
		block[i] = []byte(s + eol)
	}
	return block
}

// scanLinesKeepEOL is a bufio.SplitFunc like bufio.ScanLines that leaves the
// line terminator on the token.
func scanLinesKeepEOL(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		if data[i] == '\n' {
			return i + 1, data[:i+1], nil
		}
		if i+1 < len(data) {
			if data[i+1] == '\n' {
				return i + 2, data[:i+2], nil
			}
			return i + 1, data[:i+1], nil
		}
		// A trailing '\r' may be the first half of "\r\n".
		if !atEOF {
			return 0, nil, nil
		}
		return i + 1, data[:i+1], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

func lineEnding(line []byte) string {
	switch {
	case bytes.HasSuffix(line, []byte("\r\n")):
		return "\r\n"
	case bytes.HasSuffix(line, []byte("\n")):
		return "\n"
	case bytes.HasSuffix(line, []byte("\r")):
		return "\r"
	}
	return ""
}

func trimEOL(line []byte) []byte {
	return line[:len(line)-len(lineEnding(line))]
}
