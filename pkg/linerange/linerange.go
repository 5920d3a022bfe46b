package linerange

import (
	"fmt"
	"strconv"
	"strings"
)

// Range is an inclusive span of 1-based line numbers, as a user would name it
// ("lines 333 through 388").
type Range struct {
	Start int
	End   int
}

// New returns the range Start..End. It does not validate; see Validate.
func New(start, end int) Range {
	return Range{Start: start, End: end}
}

// Parse reads a line range in one of the forms "42", "10,20", "10:20" or "10-20".
// A single number names a one-line range.
func Parse(input string) (Range, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return Range{}, fmt.Errorf("empty line range")
	}

	sep := ""
	for _, s := range []string{":", ",", "-"} {
		if strings.Contains(input, s) {
			sep = s
			break
		}
	}
	if sep == "" {
		n, err := strconv.Atoi(input)
		if err != nil {
			return Range{}, fmt.Errorf("invalid line number %q: %w", input, err)
		}
		return Range{Start: n, End: n}, nil
	}

	parts := strings.SplitN(input, sep, 2)
	start, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return Range{}, fmt.Errorf("invalid range start %q: %w", parts[0], err)
	}
	end, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return Range{}, fmt.Errorf("invalid range end %q: %w", parts[1], err)
	}
	return Range{Start: start, End: end}, nil
}

// Validate checks 1 <= Start <= End <= total.
func (r Range) Validate(total int) error {
	if r.Start < 1 || r.End < r.Start || r.End > total {
		return &RangeError{Range: r, Total: total}
	}
	return nil
}

// Bounds converts the range to a 0-based half-open slice bound [lo, hi).
func (r Range) Bounds() (lo, hi int) {
	return r.Start - 1, r.End
}

// Len is the number of lines covered.
func (r Range) Len() int {
	if r.End < r.Start {
		return 0
	}
	return r.End - r.Start + 1
}

// String renders the range in the "start-end" form used in messages.
func (r Range) String() string {
	if r.Start == r.End {
		return strconv.Itoa(r.Start)
	}
	return fmt.Sprintf("%d-%d", r.Start, r.End)
}

// RangeError reports a range that does not fit inside a file of Total lines.
type RangeError struct {
	Range Range
	Total int
}

func (e *RangeError) Error() string {
	switch {
	case e.Range.Start < 1:
		return fmt.Sprintf("line range %s: start must be at least 1", e.Range)
	case e.Range.End < e.Range.Start:
		return fmt.Sprintf("line range %d-%d: end is before start", e.Range.Start, e.Range.End)
	default:
		return fmt.Sprintf("line range %s is outside the file (%d lines)", e.Range, e.Total)
	}
}
