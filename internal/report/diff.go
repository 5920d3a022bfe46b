package report

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Op classifies a line of a diff.
type Op int

const (
	OpEqual Op = iota
	OpInsert
	OpDelete
	OpSkip // stands in for a run of unchanged lines that were left out
)

// DiffLine is one rendered line of a diff, without its terminator.
type DiffLine struct {
	Op   Op
	Text string
}

// DiffLines computes a line-level diff of a and b, keeping at most context
// unchanged lines around each change.
func DiffLines(a, b string, context int) []DiffLine {
	dmp := diffmatchpatch.New()
	ca, cb, lineArray := dmp.DiffLinesToChars(a, b)
	diffs := dmp.DiffMain(ca, cb, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	var all []DiffLine
	for _, d := range diffs {
		op := OpEqual
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			op = OpInsert
		case diffmatchpatch.DiffDelete:
			op = OpDelete
		}
		for _, l := range strings.SplitAfter(d.Text, "\n") {
			if l == "" {
				continue
			}
			all = append(all, DiffLine{Op: op, Text: strings.TrimRight(l, "\r\n")})
		}
	}
	return trimContext(all, context)
}

func trimContext(all []DiffLine, context int) []DiffLine {
	keep := make([]bool, len(all))
	for i, l := range all {
		if l.Op == OpEqual {
			continue
		}
		for j := max(0, i-context); j <= min(len(all)-1, i+context); j++ {
			keep[j] = true
		}
	}

	var out []DiffLine
	skipped := 0
	flush := func() {
		if skipped > 0 {
			out = append(out, DiffLine{Op: OpSkip, Text: fmt.Sprintf("… %d unchanged lines", skipped)})
			skipped = 0
		}
	}
	for i, l := range all {
		if !keep[i] {
			skipped++
			continue
		}
		flush()
		out = append(out, l)
	}
	flush()
	return out
}
