package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tamirms/linesort/internal/gen"
)

// NewGenerateCommand creates the generate command.
func NewGenerateCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		output string
		lines  int64
		chunks int
		seed   uint64
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a random file to sort",
		Long: `Write random "<number>. <text>" lines. Chunks are generated in
parallel and concatenated. The same seed and chunk count produce the same
file.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rootOpts.loadConfig()
			if err != nil {
				return err
			}
			g := cfg.Generate
			if cmd.Flags().Changed("output") {
				g.Output = output
			}
			if cmd.Flags().Changed("lines") {
				g.TotalLines = lines
			}
			if cmd.Flags().Changed("chunks") {
				g.Chunks = chunks
			}
			if cmd.Flags().Changed("seed") {
				g.Seed = seed
			}

			logger := rootOpts.logger(cmd.ErrOrStderr())
			logger.Info("generating", "lines", g.TotalLines, "chunks", g.Chunks, "output", g.Output)
			start := time.Now()
			err = gen.Generate(cmd.Context(), gen.Config{
				OutputPath: g.Output,
				TotalLines: g.TotalLines,
				Chunks:     g.Chunks,
				Seed:       g.Seed,
				Texts:      g.Texts,
			})
			if err != nil {
				return wrapSortError("generate failed", err)
			}
			logger.Info("generated", "elapsed", time.Since(start))
			fmt.Fprintf(cmd.OutOrStdout(), "generated %d lines -> %s\n", g.TotalLines, g.Output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file")
	cmd.Flags().Int64VarP(&lines, "lines", "n", 0, "number of lines")
	cmd.Flags().IntVar(&chunks, "chunks", 0, "files generated in parallel")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "random seed")
	return cmd
}
