package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tamirms/linesort"
	"github.com/tamirms/linesort/internal/config"
)

// sortFlags override the sort section of the settings file when set.
type sortFlags struct {
	chunkSize     int64
	sorters       int
	tempDir       string
	queueCapacity int
	sizeFactor    int
	mergeBuffer   int
	compress      bool
}

func (f *sortFlags) register(cmd *cobra.Command) {
	cmd.Flags().Int64VarP(&f.chunkSize, "chunk-size", "s", 0, "approximate in-memory bytes per run")
	cmd.Flags().IntVarP(&f.sorters, "sorters", "p", 0, "number of parallel sort workers")
	cmd.Flags().StringVar(&f.tempDir, "temp-dir", "", "directory for run files (default: system temp)")
	cmd.Flags().IntVar(&f.queueCapacity, "queue-capacity", 0, "unsorted runs waiting for a worker (default: 2 x sorters)")
	cmd.Flags().IntVar(&f.sizeFactor, "size-factor", 0, "multiplier from line bytes to accounted run bytes")
	cmd.Flags().IntVar(&f.mergeBuffer, "merge-buffer", 0, "read buffer bytes per run file during the merge (default 64 KiB)")
	cmd.Flags().BoolVar(&f.compress, "compress", false, "zstd-compress run files")
}

func (f *sortFlags) apply(cmd *cobra.Command, s *config.Sort) {
	flags := cmd.Flags()
	if flags.Changed("chunk-size") {
		s.MaxChunkSizeBytes = f.chunkSize
	}
	if flags.Changed("sorters") {
		s.MaxParallelSorters = f.sorters
	}
	if flags.Changed("temp-dir") {
		s.TempDir = f.tempDir
	}
	if flags.Changed("queue-capacity") {
		s.QueueCapacity = f.queueCapacity
	}
	if flags.Changed("size-factor") {
		s.SizeFactor = f.sizeFactor
	}
	if flags.Changed("merge-buffer") {
		s.MergeBufferSize = f.mergeBuffer
	}
	if flags.Changed("compress") {
		s.CompressRuns = f.compress
	}
}

// newSorter builds a Sorter from the merged sort settings.
func newSorter(s config.Sort, rootOpts *RootOptions, cmd *cobra.Command) (*linesort.Sorter, error) {
	opts := []linesort.Option{
		linesort.WithLogger(rootOpts.logger(cmd.ErrOrStderr())),
		linesort.WithTempDir(s.TempDir),
		linesort.WithQueueCapacity(s.QueueCapacity),
		linesort.WithRunCompression(s.CompressRuns),
	}
	if s.SizeFactor != 0 {
		opts = append(opts, linesort.WithSizeFactor(s.SizeFactor))
	}
	if s.MergeBufferSize != 0 {
		opts = append(opts, linesort.WithMergeBufferSize(s.MergeBufferSize))
	}
	sorter, err := linesort.New(linesort.Config{
		InputPath:          s.Input,
		OutputPath:         s.Output,
		MaxChunkSizeBytes:  s.MaxChunkSizeBytes,
		MaxParallelSorters: s.MaxParallelSorters,
	}, opts...)
	if err != nil {
		return nil, wrapSortError("invalid sort settings", err)
	}
	return sorter, nil
}

// NewSortCommand creates the sort command.
func NewSortCommand(rootOpts *RootOptions) *cobra.Command {
	flags := &sortFlags{}
	cmd := &cobra.Command{
		Use:   "sort [input] [output]",
		Short: "Sort a file by text, then number",
		Long: `Sort a "<number>. <text>" file with an external merge sort.

The input is split into runs of about --chunk-size bytes, the runs are
sorted by --sorters workers and written to temporary files, and the files
are merged into the output. Paths default to the settings file.`,
		Args:          cobra.MaximumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSort(rootOpts, flags, cmd, args)
		},
	}
	flags.register(cmd)
	return cmd
}

func runSort(rootOpts *RootOptions, flags *sortFlags, cmd *cobra.Command, args []string) error {
	cfg, err := rootOpts.loadConfig()
	if err != nil {
		return err
	}
	s := cfg.Sort
	flags.apply(cmd, &s)
	if len(args) > 0 {
		s.Input = args[0]
	}
	if len(args) > 1 {
		s.Output = args[1]
	}

	sorter, err := newSorter(s, rootOpts, cmd)
	if err != nil {
		return err
	}
	stats, err := sorter.Sort(cmd.Context())
	if err != nil {
		return wrapSortError("sort failed", err)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "sorted %s -> %s\n", s.Input, s.Output)
	fmt.Fprintf(w, "  lines:     %d\n", stats.Lines)
	fmt.Fprintf(w, "  records:   %d\n", stats.Records)
	fmt.Fprintf(w, "  malformed: %d\n", stats.Malformed)
	fmt.Fprintf(w, "  runs:      %d\n", stats.Runs)
	return nil
}
