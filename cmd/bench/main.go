// Bench is a benchmarking tool for measuring linesort throughput and memory
// usage across chunk sizes and worker counts.
//
// Usage:
//
//	go run ./cmd/bench -lines 10000000 -chunk 67108864 -workers 8
//
// Flags:
//
//	-lines     Number of lines to generate (default: 10,000,000)
//	-chunk     Approximate bytes per run (default: 64 MiB)
//	-workers   Number of sort workers (default: NumCPU)
//	-compress  zstd-compress run files (default: false)
//	-dir       Working directory (default: system temp)
//	-seed      Generator seed (default: 1)
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"
	"syscall"
	"time"

	"github.com/tamirms/linesort"
	"github.com/tamirms/linesort/internal/gen"
)

// getMaxRSS returns the maximum resident set size in bytes.
// Uses getrusage(RUSAGE_SELF) which tracks peak RSS since process start.
func getMaxRSS() uint64 {
	var rusage syscall.Rusage
	if err := syscall.Getrusage(syscall.RUSAGE_SELF, &rusage); err != nil {
		return 0
	}
	// On macOS, MaxRss is in bytes. On Linux, it's in kilobytes.
	maxRSS := uint64(rusage.Maxrss)
	if runtime.GOOS == "linux" {
		maxRSS *= 1024
	}
	return maxRSS
}

func main() {
	linesFlag := flag.Int64("lines", 10_000_000, "number of lines to generate")
	chunkFlag := flag.Int64("chunk", 64<<20, "approximate bytes per run")
	workersFlag := flag.Int("workers", runtime.NumCPU(), "number of sort workers")
	compressFlag := flag.Bool("compress", false, "zstd-compress run files")
	dirFlag := flag.String("dir", "", "working directory (default: system temp)")
	seedFlag := flag.Uint64("seed", 1, "generator seed")
	verboseFlag := flag.Bool("v", false, "log pipeline phases to stderr")
	cpuprofile := flag.String("cpuprofile", "", "write cpu profile to file (sort phase only)")
	flag.Parse()

	ctx := context.Background()

	dir, err := os.MkdirTemp(*dirFlag, "linesort-bench-")
	if err != nil {
		fmt.Printf("Failed to create temp dir: %v\n", err)
		os.Exit(1)
	}
	defer os.RemoveAll(dir)
	input := filepath.Join(dir, "input.txt")
	output := filepath.Join(dir, "output.txt")

	fmt.Println("Generating input...")
	genStart := time.Now()
	err = gen.Generate(ctx, gen.Config{
		OutputPath: input,
		TotalLines: *linesFlag,
		Chunks:     runtime.NumCPU(),
		Seed:       *seedFlag,
	})
	if err != nil {
		fmt.Printf("Generate failed: %v\n", err)
		os.Exit(1)
	}
	genDuration := time.Since(genStart)
	info, err := os.Stat(input)
	if err != nil {
		fmt.Printf("Stat failed: %v\n", err)
		os.Exit(1)
	}

	opts := []linesort.Option{
		linesort.WithTempDir(dir),
		linesort.WithRunCompression(*compressFlag),
	}
	if *verboseFlag {
		opts = append(opts, linesort.WithLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))))
	}
	sorter, err := linesort.New(linesort.Config{
		InputPath:          input,
		OutputPath:         output,
		MaxChunkSizeBytes:  *chunkFlag,
		MaxParallelSorters: *workersFlag,
	}, opts...)
	if err != nil {
		fmt.Printf("New failed: %v\n", err)
		os.Exit(1)
	}

	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			fmt.Printf("could not create CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Printf("could not start CPU profile: %v\n", err)
			os.Exit(1)
		}
	}

	fmt.Println("Sorting...")
	sortStart := time.Now()
	stats, err := sorter.Sort(ctx)
	sortDuration := time.Since(sortStart)
	if *cpuprofile != "" {
		pprof.StopCPUProfile()
	}
	if err != nil {
		fmt.Printf("Sort failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Verifying...")
	verifyStart := time.Now()
	ok, err := linesort.IsOutputSorted(output)
	verifyDuration := time.Since(verifyStart)
	if err != nil || !ok {
		fmt.Printf("Verify failed: sorted=%v err=%v\n", ok, err)
		os.Exit(1)
	}

	mb := float64(info.Size()) / (1 << 20)
	fmt.Printf("\n")
	fmt.Printf("╔═════════════════════╦══════════════════╗\n")
	fmt.Printf("║ Metric              ║ Value            ║\n")
	fmt.Printf("╠═════════════════════╬══════════════════╣\n")
	fmt.Printf("║ Input size          ║ %10.1f MiB   ║\n", mb)
	fmt.Printf("║ Records             ║ %14d   ║\n", stats.Records)
	fmt.Printf("║ Runs                ║ %14d   ║\n", stats.Runs)
	fmt.Printf("║ Workers             ║ %14d   ║\n", *workersFlag)
	fmt.Printf("║ Generate time       ║ %14s   ║\n", genDuration.Round(time.Millisecond))
	fmt.Printf("║   - Run phase       ║ %14s   ║\n", stats.SortDuration.Round(time.Millisecond))
	fmt.Printf("║   - Merge phase     ║ %14s   ║\n", stats.MergeDuration.Round(time.Millisecond))
	fmt.Printf("║ Sort time           ║ %14s   ║\n", sortDuration.Round(time.Millisecond))
	fmt.Printf("║ Sort throughput     ║ %10.1f MiB/s ║\n", mb/sortDuration.Seconds())
	fmt.Printf("║ Verify time         ║ %14s   ║\n", verifyDuration.Round(time.Millisecond))
	fmt.Printf("║ Peak RSS            ║ %10.1f MiB   ║\n", float64(getMaxRSS())/(1<<20))
	fmt.Printf("╚═════════════════════╩══════════════════╝\n")
}
