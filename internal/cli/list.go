package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/hindsight/internal/catalog"
)

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List available stories",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(rootOpts, cmd)

			eng, err := openEngine(rootOpts)
			if err != nil {
				return fail(formatter, err)
			}

			stories := eng.ListStories()
			payload := struct {
				Stories []catalog.Summary `json:"stories"`
			}{Stories: stories}

			return formatter.Render(payload, renderSummaries(stories))
		},
	}
}
