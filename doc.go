// Package linesort sorts "<number>. <text>" line files that do not fit in
// memory, using an external merge sort with bounded RAM usage.
//
// Records are ordered by Text (byte-wise), then by Number. Lines that do not
// parse as records are skipped.
//
// # Basic Usage
//
//	s, err := linesort.New(linesort.Config{
//	    InputPath:          "input.txt",
//	    OutputPath:         "sorted.txt",
//	    MaxChunkSizeBytes:  64 << 20,
//	    MaxParallelSorters: runtime.NumCPU(),
//	}, linesort.WithLogger(logger))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	stats, err := s.Sort(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("sorted %d records in %d runs\n", stats.Records, stats.Runs)
//
// Checking an output file:
//
//	ok, err := linesort.IsOutputSorted("sorted.txt")
//
// # Package Structure
//
// The implementation is organized as follows:
//
//   - Public API: sorter.go (New, Sort, SplitAndSortRuns, MergeRuns), verify.go (IsOutputSorted)
//   - Configuration: config.go (Config), options.go (Option, With* functions)
//   - Run production: producer.go (bounded run queue), worker.go (sort worker pool)
//   - Run files: runfile.go (write, checksum, cleanup), lines.go (line reader)
//   - Merge: merge.go (merge sources), merge_heap.go (min-heap), output_writer.go
//   - Integrity: digest.go (order-independent record digest)
//   - Record codec: internal/record/
//   - Platform: fadvise_*.go, fallocate_*.go, madvise_*.go (OS-specific hints)
package linesort
