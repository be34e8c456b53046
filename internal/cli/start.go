package cli

import (
	"github.com/spf13/cobra"
)

// NewStartCommand creates the start command.
func NewStartCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "start <story-id>",
		Short: "Start a story (abandons any game in progress)",
		Long: `Start a fresh run of the given story.

Any in-progress game is overwritten: the engine holds one active game
at a time. Use "hindsight list" to see available story ids.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(rootOpts, cmd)

			eng, err := openEngine(rootOpts)
			if err != nil {
				return fail(formatter, err)
			}

			res, err := eng.StartStory(args[0])
			if err != nil {
				return fail(formatter, err)
			}

			return formatter.Render(res, renderStart(res))
		},
	}
}
