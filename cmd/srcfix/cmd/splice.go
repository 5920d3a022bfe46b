package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"srcfix/internal/fence"
	"srcfix/internal/rewrite"
	"srcfix/internal/splice"
	"srcfix/pkg/linerange"
)

type spliceOptions struct {
	lines     string
	from      string
	literal   []string
	delete    bool
	fence     bool
	fenceLang string
	eol       string
	dryRun    bool
}

func newSpliceCmd(root *rootOptions) *cobra.Command {
	opts := &spliceOptions{}
	spliceCmd := &cobra.Command{
		Use:   "splice -L <start>,<end> <file>",
		Short: "Replace a range of lines in a file",
		Long: `Replace the inclusive 1-based line range given by -L with new content.

The replacement is read from --from (stdin by default), given inline with
--line, or omitted entirely with --delete. Out-of-range requests fail without
touching the file.`,
		Example: `  srcfix splice -L 333,388 src/parser.go --from fix.go
  srcfix splice -L 12 main.go --line '	return nil'
  srcfix splice -L 40-52 handler.go --from answer.md --fence-lang go --dry-run`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSplice(cmd, root, opts, args[0])
		},
	}

	f := spliceCmd.Flags()
	f.StringVarP(&opts.lines, "lines", "L", "", "line range to replace: N, S,E, S:E or S-E")
	f.StringVar(&opts.from, "from", "-", "file holding the replacement text (- for stdin)")
	f.StringArrayVar(&opts.literal, "line", nil, "replacement line, repeat for several")
	f.BoolVar(&opts.delete, "delete", false, "remove the range without inserting anything")
	f.BoolVar(&opts.fence, "fence", false, "take the replacement from the first fenced code block in markdown input")
	f.StringVar(&opts.fenceLang, "fence-lang", "", "like --fence, but only blocks tagged with this language")
	f.StringVar(&opts.eol, "eol", "", "terminator for unterminated replacement lines: auto, lf or crlf")
	f.BoolVar(&opts.dryRun, "dry-run", false, "show the change without writing it")

	_ = spliceCmd.MarkFlagRequired("lines")
	spliceCmd.MarkFlagsMutuallyExclusive("delete", "line", "from")
	for _, fenceFlag := range []string{"fence", "fence-lang"} {
		spliceCmd.MarkFlagsMutuallyExclusive("delete", fenceFlag)
		spliceCmd.MarkFlagsMutuallyExclusive("line", fenceFlag)
	}
	return spliceCmd
}

func runSplice(cmd *cobra.Command, root *rootOptions, opts *spliceOptions, path string) error {
	rng, err := linerange.Parse(opts.lines)
	if err != nil {
		return err
	}
	a, err := newApp(cmd, root)
	if err != nil {
		return err
	}
	if opts.eol != "" {
		a.cfg.EOL = opts.eol
		if err := a.cfg.Validate(); err != nil {
			return err
		}
	}

	var replacement [][]byte
	if !opts.delete {
		replacement, err = readReplacement(cmd, opts)
		if err != nil {
			return err
		}
	}

	// An empty terminator lets Splice use the file's own.
	res, err := splice.Splice(a.store, path, rng, replacement, splice.Options{
		DryRun: opts.dryRun,
		EOL:    a.cfg.Terminator(""),
		Logger: a.logger,
	})
	if err != nil {
		return err
	}
	if opts.dryRun {
		a.printer.Diff(res.Before, res.After)
	}
	a.printer.Splice(res)
	return nil
}

// readReplacement returns the replacement lines. Lines may lack a
// terminator; Splice adds one.
func readReplacement(cmd *cobra.Command, opts *spliceOptions) ([][]byte, error) {
	if len(opts.literal) > 0 {
		return rewrite.FromStrings(opts.literal, ""), nil
	}

	var (
		data []byte
		err  error
	)
	if opts.from == "" || opts.from == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(opts.from)
	}
	if err != nil {
		return nil, fmt.Errorf("reading replacement: %w", err)
	}

	if opts.fence || opts.fenceLang != "" {
		data, err = fence.Extract(data, opts.fenceLang)
		if err != nil {
			return nil, fmt.Errorf("reading replacement from %s: %w", sourceName(opts.from), err)
		}
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("empty replacement from %s; use --delete to remove lines", sourceName(opts.from))
	}
	return rewrite.Split(data), nil
}

func sourceName(from string) string {
	if from == "" || from == "-" {
		return "stdin"
	}
	return from
}
