package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/hindsight/internal/catalog"
)

// ValidationIssue is one problem found in a story pack.
type ValidationIssue struct {
	Code    string `json:"code"`
	File    string `json:"file,omitempty"`
	Message string `json:"message"`
}

// ValidationResult holds validation results for a story pack directory.
type ValidationResult struct {
	Valid   bool              `json:"valid"`
	Stories []string          `json:"stories,omitempty"`
	Errors  []ValidationIssue `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <stories-dir>",
		Short: "Validate a story pack directory",
		Long: `Validate every story definition in a directory against the story schema.

Collects all problems rather than stopping at the first, so a whole pack
can be fixed in one pass.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(rootOpts, cmd)

			stories, errs := catalog.LoadDir(args[0], catalog.LoadModeCollectAll)

			result := ValidationResult{Valid: len(errs) == 0}
			for _, s := range stories {
				result.Stories = append(result.Stories, s.ID)
			}
			for _, err := range errs {
				var loadErr *catalog.LoadError
				if errors.As(err, &loadErr) {
					result.Errors = append(result.Errors, ValidationIssue{
						Code:    loadErr.Code,
						File:    loadErr.File,
						Message: loadErr.Message,
					})
					continue
				}
				result.Errors = append(result.Errors, ValidationIssue{
					Code:    catalog.ErrCodeGeneric,
					Message: err.Error(),
				})
			}

			if !result.Valid {
				if err := formatter.Render(result, renderValidation(result)); err != nil {
					return err
				}
				return NewExitError(ExitFailure, "validation failed")
			}
			return formatter.Render(result, renderValidation(result))
		},
	}
}

func renderValidation(result ValidationResult) string {
	var b strings.Builder
	if result.Valid {
		fmt.Fprintf(&b, "Valid: %d story(ies)\n", len(result.Stories))
		for _, id := range result.Stories {
			fmt.Fprintf(&b, "  %s\n", id)
		}
		return strings.TrimRight(b.String(), "\n")
	}

	fmt.Fprintf(&b, "Invalid: %d error(s)\n", len(result.Errors))
	for _, issue := range result.Errors {
		if issue.File != "" {
			fmt.Fprintf(&b, "  [%s] %s: %s\n", issue.Code, issue.File, issue.Message)
			continue
		}
		fmt.Fprintf(&b, "  [%s] %s\n", issue.Code, issue.Message)
	}
	return strings.TrimRight(b.String(), "\n")
}
