package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/hindsight/internal/catalog"
	"github.com/roach88/hindsight/internal/engine"
	"github.com/roach88/hindsight/internal/store"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	StorePath  string // game store file; defaults to the per-user location
	StoriesDir string // external story pack dir; empty means built-ins
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the hindsight CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "hindsight",
		Short: "Replay-history trading simulator",
		Long: `Step through real historical market events checkpoint by checkpoint,
deciding to buy, sell, or skip at each one, and see how you stack up
against simply buying and holding.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			level := slog.LevelWarn
			if opts.Verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.StorePath, "store", "", "game store file path (default: per-user config dir)")
	cmd.PersistentFlags().StringVar(&opts.StoriesDir, "stories", "", "directory of story pack CUE files (default: built-in stories)")

	// Add subcommands
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewStartCommand(opts))
	cmd.AddCommand(NewTradeCommand(opts))
	cmd.AddCommand(NewStatusCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// newFormatter builds the command's output formatter from the global flags.
func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
}

// openEngine assembles catalog + store + engine from the global flags.
func openEngine(opts *RootOptions) (*engine.Engine, error) {
	cat, err := openCatalog(opts)
	if err != nil {
		return nil, err
	}

	path := opts.StorePath
	if path == "" {
		path, err = store.DefaultPath()
		if err != nil {
			return nil, err
		}
	}

	return engine.New(cat, store.New(path))
}

// openCatalog returns the built-in catalog, or one loaded from --stories.
func openCatalog(opts *RootOptions) (*catalog.Catalog, error) {
	if opts.StoriesDir == "" {
		return catalog.BuiltIn()
	}
	stories, errs := catalog.LoadDir(opts.StoriesDir, catalog.LoadModeFailFast)
	if len(errs) > 0 {
		return nil, fmt.Errorf("load stories from %s: %w", opts.StoriesDir, errs[0])
	}
	return catalog.New(stories...)
}

// Execute runs the root command and exits the process on error.
// Commands print their own errors through the formatter; cobra-level
// errors (bad flags, unknown commands) are printed here.
func Execute() {
	cmd := NewRootCommand()
	if err := cmd.Execute(); err != nil {
		var exitErr *ExitError
		if !errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(GetExitCode(err))
	}
}
