package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewMergeCommand creates the merge command.
func NewMergeCommand(rootOpts *RootOptions) *cobra.Command {
	flags := &sortFlags{}
	cmd := &cobra.Command{
		Use:   "merge <output> <run>...",
		Short: "Merge already sorted files into one",
		Long: `Merge files that are each sorted by text, then number, into a single
sorted output. The input files are left in place.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rootOpts.loadConfig()
			if err != nil {
				return err
			}
			s := cfg.Sort
			flags.apply(cmd, &s)
			sorter, err := newSorter(s, rootOpts, cmd)
			if err != nil {
				return err
			}
			output, runs := args[0], args[1:]
			if err := sorter.MergeRuns(cmd.Context(), runs, output); err != nil {
				return wrapSortError("merge failed", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "merged %d file(s) -> %s\n", len(runs), output)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}
