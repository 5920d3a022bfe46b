package cmd

import (
	"github.com/spf13/cobra"

	"srcfix/internal/normalize"
)

func newEncodingsCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "encodings",
		Short: "List the encodings normalize understands",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, root)
			if err != nil {
				return err
			}
			defaults, err := normalize.Resolve(a.cfg.Encodings)
			if err != nil {
				return err
			}
			names := make([]string, 0, len(defaults))
			for _, c := range defaults {
				names = append(names, c.Name)
			}
			a.printer.Encodings(normalize.Known(), names)
			return nil
		},
	}
}
