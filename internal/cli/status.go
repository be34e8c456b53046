package cli

import (
	"github.com/spf13/cobra"
)

// NewStatusCommand creates the status command.
func NewStatusCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "status",
		Short:         "Show the current game: position, P&L, and transaction log",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(rootOpts, cmd)

			eng, err := openEngine(rootOpts)
			if err != nil {
				return fail(formatter, err)
			}

			status, err := eng.Status()
			if err != nil {
				return fail(formatter, err)
			}

			return formatter.Render(status, renderStatus(status))
		},
	}
}
