package cmd

import (
	"github.com/spf13/cobra"

	"srcfix/internal/normalize"
)

type normalizeOptions struct {
	encodings string
	dryRun    bool
}

func newNormalizeCmd(root *rootOptions) *cobra.Command {
	opts := &normalizeOptions{}
	normalizeCmd := &cobra.Command{
		Use:   "normalize <file>",
		Short: "Rewrite a file as UTF-8 without a byte-order mark",
		Long: `Try each candidate encoding in order and keep the first one that decodes
the whole file strictly. The decoded text is written back as UTF-8 without a
BOM. If no candidate succeeds the file is left untouched.

Run "srcfix encodings" for the accepted names.`,
		Example: `  srcfix normalize notes.txt
  srcfix normalize legacy.csv --encodings utf-8,cp949 --dry-run`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, root)
			if err != nil {
				return err
			}

			cands, err := normalize.Resolve(a.cfg.Encodings)
			if opts.encodings != "" {
				cands, err = normalize.ParseList(opts.encodings)
			}
			if err != nil {
				return err
			}
			for _, w := range normalize.CheckCandidates(cands) {
				a.printer.Warn(w)
			}

			res, err := normalize.Normalize(a.store, args[0], cands, normalize.Options{
				DryRun: opts.dryRun,
				Logger: a.logger,
			})
			if err != nil {
				return err
			}
			a.printer.Normalize(res)
			return nil
		},
	}

	normalizeCmd.Flags().StringVar(&opts.encodings, "encodings", "", "comma-separated candidate encodings, tried in order (default from config)")
	normalizeCmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "report the chosen encoding without writing")
	return normalizeCmd
}
