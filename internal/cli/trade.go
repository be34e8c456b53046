package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/hindsight/internal/game"
)

// NewTradeCommand creates the trade command.
func NewTradeCommand(rootOpts *RootOptions) *cobra.Command {
	var quantity int64

	cmd := &cobra.Command{
		Use:   "trade <buy|sell|skip>",
		Short: "Execute an action at the current checkpoint",
		Long: `Execute a buy, sell, or skip at the current checkpoint.

Omit --quantity to go all-in on a buy (floor(cash / price) shares) or to
sell everything. The action on the story's last checkpoint ends the game:
remaining shares are liquidated at that checkpoint's price and the final
scorecard is printed.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(rootOpts, cmd)

			// The engine re-validates the economic constraints; the action
			// vocabulary and quantity shape are this adapter's job.
			action := game.Action(strings.ToLower(args[0]))
			if !action.Valid() {
				formatter.Error(ErrCodeInternal, fmt.Sprintf("invalid action %q: must be buy, sell, or skip", args[0]))
				return NewExitError(ExitCommandError, "invalid action")
			}

			var qty *int64
			if cmd.Flags().Changed("quantity") {
				qty = &quantity
			}

			eng, err := openEngine(rootOpts)
			if err != nil {
				return fail(formatter, err)
			}

			res, err := eng.ExecuteAction(action, qty)
			if err != nil {
				return fail(formatter, err)
			}

			return formatter.Render(res, renderActionResult(res))
		},
	}

	cmd.Flags().Int64VarP(&quantity, "quantity", "q", 0, "number of shares (omit for all-in buy or sell-all)")

	return cmd
}
