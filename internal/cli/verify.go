package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tamirms/linesort"
)

// NewVerifyCommand creates the verify command.
func NewVerifyCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "verify <file>",
		Short:         "Check that a file is sorted",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			line, err := linesort.FirstUnsortedLine(path)
			if err != nil {
				return WrapExitError(ExitFailure, "verify failed", err)
			}
			w := cmd.OutOrStdout()
			if line != 0 {
				fmt.Fprintf(w, "%s: not sorted at line %d\n", path, line)
				return NewExitError(ExitFailure, fmt.Sprintf("%s is not sorted", path))
			}
			fmt.Fprintf(w, "%s: sorted\n", path)
			return nil
		},
	}
}
