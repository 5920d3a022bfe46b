package cmd

import (
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"srcfix/internal/config"
	"srcfix/internal/filestore"
	"srcfix/internal/report"
)

var version = "dev"

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	configPath string
	verbose    bool
	atomic     bool
	noColor    bool
}

// app is what a subcommand needs once flags and config are resolved.
type app struct {
	cfg     config.Config
	store   filestore.Store
	printer *report.Printer
	logger  *slog.Logger
}

// NewRootCmd builds the srcfix command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}
	rootCmd := &cobra.Command{
		Use:   "srcfix",
		Short: "Small surgical edits on single source files",
		Long: `srcfix performs two kinds of file surgery in place:

  splice     replace an inclusive range of lines with new content
  normalize  re-read a file of uncertain encoding and rewrite it as UTF-8 without a BOM

Settings are read from .srcfix.yaml (or $SRCFIX_CONFIG) when present; flags win.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "config file (default .srcfix.yaml if present)")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "log each step to stderr")
	pf.BoolVar(&opts.atomic, "atomic", false, "write through a temporary file and rename it over the target")
	pf.BoolVar(&opts.noColor, "no-color", false, "disable coloured output")

	rootCmd.AddCommand(newSpliceCmd(opts))
	rootCmd.AddCommand(newNormalizeCmd(opts))
	rootCmd.AddCommand(newEncodingsCmd(opts))
	return rootCmd
}

// newApp loads config and applies persistent flag overrides.
func newApp(cmd *cobra.Command, opts *rootOptions) (*app, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("atomic") {
		cfg.Atomic = opts.atomic
	}
	if opts.noColor {
		cfg.Color = "never"
	}

	logger := report.NewLogger(cmd.ErrOrStderr(), opts.verbose)
	logger.Debug("config loaded",
		slog.String("path", opts.configPath),
		slog.Bool("atomic", cfg.Atomic),
		slog.String("eol", cfg.EOL))

	return &app{
		cfg:     cfg,
		store:   filestore.NewOSStore(cfg.Atomic),
		printer: report.NewPrinter(cmd.OutOrStdout(), cmd.ErrOrStderr(), cfg.Color),
		logger:  logger,
	}, nil
}

// Run executes srcfix with args and returns the process exit status.
func Run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	rootCmd := NewRootCmd()
	rootCmd.SetArgs(args)
	rootCmd.SetIn(stdin)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	if err := rootCmd.Execute(); err != nil {
		color := "auto"
		for _, a := range args {
			if a == "--no-color" {
				color = "never"
			}
		}
		report.NewPrinter(stdout, stderr, color).Error(err)
		return 1
	}
	return 0
}

// Execute runs srcfix with the process arguments and exits non-zero on failure.
// This is called by main.main().
func Execute() {
	if code := Run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); code != 0 {
		os.Exit(code)
	}
}
