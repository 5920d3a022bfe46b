// Package report renders srcfix results for people: styled status lines,
// echoed context and diff previews.
package report

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"srcfix/internal/normalize"
	"srcfix/internal/splice"
)

// Printer writes human-readable output. Nothing it prints is meant to be parsed.
type Printer struct {
	out   io.Writer
	err   io.Writer
	width int

	ok     lipgloss.Style
	fail   lipgloss.Style
	dim    lipgloss.Style
	added  lipgloss.Style
	remove lipgloss.Style
	header lipgloss.Style
}

// NewPrinter builds a Printer. colorMode is "auto", "always" or "never"; auto
// enables colour only when out is a terminal and NO_COLOR is unset.
func NewPrinter(out, errOut io.Writer, colorMode string) *Printer {
	r := lipgloss.NewRenderer(out)
	if useColor(out, colorMode) {
		r.SetColorProfile(termenv.ANSI256)
	} else {
		r.SetColorProfile(termenv.Ascii)
	}
	return &Printer{
		out:    out,
		err:    errOut,
		width:  termWidth(out),
		ok:     r.NewStyle().Bold(true).Foreground(lipgloss.Color("#00FF00")),
		fail:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF0000")),
		dim:    r.NewStyle().Faint(true),
		added:  r.NewStyle().Foreground(lipgloss.Color("#00FF00")),
		remove: r.NewStyle().Foreground(lipgloss.Color("#FF0000")),
		header: r.NewStyle().Bold(true).Foreground(lipgloss.Color("#00FFFF")),
	}
}

func useColor(w io.Writer, mode string) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// termWidth returns the terminal width, defaulting to 80.
func termWidth(w io.Writer) int {
	if f, ok := w.(*os.File); ok {
		if width, _, err := term.GetSize(int(f.Fd())); err == nil && width > 0 {
			return width
		}
	}
	return 80
}

// NewLogger returns a text slog.Logger on w. Only warnings are shown unless verbose.
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Error prints err on the error stream as "Error: ...".
func (p *Printer) Error(err error) {
	fmt.Fprintln(p.err, p.fail.Render("Error:"), err)
}

// Warn prints a warning line on the error stream.
func (p *Printer) Warn(msg string) {
	fmt.Fprintln(p.err, p.remove.Render("Warning:"), msg)
}

// Splice echoes the replaced range and reports the outcome.
func (p *Printer) Splice(res splice.Result) {
	fmt.Fprintf(p.out, "%s %s:\n", p.header.Render("Replacing lines "+res.Range.String()+" of"), res.Path)
	fmt.Fprintln(p.out, p.dim.Render("  "+p.fit(strings.TrimSpace(res.FirstLine), 2)))
	if res.Removed > 1 {
		fmt.Fprintln(p.out, p.dim.Render("  ..."))
		fmt.Fprintln(p.out, p.dim.Render("  "+p.fit(strings.TrimSpace(res.LastLine), 2)))
	}
	if !res.Written {
		fmt.Fprintf(p.out, "Dry run: %d lines would become %d (%d lines total, bytes %d-%d replaced).\n",
			res.Removed, res.Inserted, res.NewTotal, res.ByteStart, res.ByteEnd)
		return
	}
	fmt.Fprintln(p.out, p.ok.Render("File updated successfully.")+
		fmt.Sprintf(" %d lines replaced with %d, %d lines total.", res.Removed, res.Inserted, res.NewTotal))
}

// Normalize reports which encoding was used and what was written.
func (p *Printer) Normalize(res normalize.Result) {
	for _, a := range res.Failed {
		fmt.Fprintln(p.out, p.dim.Render("  "+p.fit(fmt.Sprintf("%s: %v", a.Encoding, a.Err), 2)))
	}
	fmt.Fprintf(p.out, "Successfully read with %s\n", p.header.Render(res.Encoding))
	note := ""
	if res.DroppedBOM {
		note = " (byte-order mark removed)"
	}
	switch {
	case !res.Written:
		fmt.Fprintf(p.out, "Dry run: %d bytes would be written as %s%s.\n", res.OutputSize, normalize.Canonical, note)
	case !res.Changed:
		fmt.Fprintln(p.out, p.ok.Render("Already "+strings.ToUpper(normalize.Canonical)+"."))
	default:
		fmt.Fprintln(p.out, p.ok.Render("Successfully converted to "+strings.ToUpper(normalize.Canonical)+note+"."))
	}
}

// Encodings lists the known candidates with their aliases, marking the defaults.
func (p *Printer) Encodings(cands []normalize.Candidate, defaults []string) {
	isDefault := make(map[string]bool)
	for _, d := range defaults {
		isDefault[d] = true
	}
	for _, c := range cands {
		name := runewidth.FillRight(c.Name, 14)
		if isDefault[c.Name] {
			name = p.header.Render(name)
		}
		line := name
		if len(c.Aliases) > 0 {
			line += p.dim.Render(strings.Join(c.Aliases, ", "))
		}
		fmt.Fprintln(p.out, line)
	}
}

// Diff prints a line diff of before and after.
func (p *Printer) Diff(before, after []byte) {
	for _, l := range DiffLines(string(before), string(after), 2) {
		text := p.fit(l.Text, 2)
		switch l.Op {
		case OpInsert:
			fmt.Fprintln(p.out, p.added.Render("+ "+text))
		case OpDelete:
			fmt.Fprintln(p.out, p.remove.Render("- "+text))
		case OpSkip:
			fmt.Fprintln(p.out, p.dim.Render(text))
		default:
			fmt.Fprintln(p.out, p.dim.Render("  "+text))
		}
	}
}

// fit truncates s to the terminal width minus indent display cells.
func (p *Printer) fit(s string, indent int) string {
	s = strings.ReplaceAll(s, "\t", "    ")
	return runewidth.Truncate(s, p.width-indent, "…")
}
