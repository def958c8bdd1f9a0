package linesort

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	sorterrors "github.com/tamirms/linesort/errors"
)

// ─── End-to-end sorting ──────────────────────────────────────────────

func TestSortBasic(t *testing.T) {
	got, stats := sortLines(t, []string{"3. C", "1. A", "2. B", "5. E", "4. D"}, 1<<20, 2)
	want := []string{"1. A", "2. B", "3. C", "4. D", "5. E"}
	if !slices.Equal(got, want) {
		t.Fatalf("output = %q, want %q", got, want)
	}
	if stats.Records != 5 || stats.OutputRecords != 5 || stats.Malformed != 0 || stats.Runs != 1 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestSortSkipsMalformedLines(t *testing.T) {
	got, stats := sortLines(t, []string{"3. C", "Invalid line", "2. B"}, 1<<20, 2)
	want := []string{"2. B", "3. C"}
	if !slices.Equal(got, want) {
		t.Fatalf("output = %q, want %q", got, want)
	}
	if stats.Lines != 3 || stats.Malformed != 1 {
		t.Errorf("Lines = %d, Malformed = %d; want 3, 1", stats.Lines, stats.Malformed)
	}
}

func TestSortSecondaryKey(t *testing.T) {
	got, _ := sortLines(t, []string{"3. Line", "1. Line", "2. Line"}, 1<<20, 2)
	want := []string{"1. Line", "2. Line", "3. Line"}
	if !slices.Equal(got, want) {
		t.Fatalf("output = %q, want %q", got, want)
	}
}

func TestSortEmptyInput(t *testing.T) {
	got, stats := sortLines(t, nil, 1<<20, 3)
	if len(got) != 0 {
		t.Fatalf("output = %q, want empty", got)
	}
	if stats.Runs != 0 {
		t.Errorf("Runs = %d, want 0", stats.Runs)
	}
}

func TestSortOnlyMalformedInput(t *testing.T) {
	got, stats := sortLines(t, []string{"no dot here", "5.", "", "x. y"}, 1<<20, 2)
	if len(got) != 0 {
		t.Fatalf("output = %q, want empty", got)
	}
	if stats.Malformed != 4 || stats.Runs != 0 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestSortCRLFInput(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.txt")
	if err := os.WriteFile(in, []byte("2. b\r\n1. a\r\n3. c"), 0o644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "out.txt")
	s, err := New(Config{InputPath: in, OutputPath: out, MaxChunkSizeBytes: 4, MaxParallelSorters: 2}, WithTempDir(dir))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Sort(context.Background()); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if want := "1. a\n2. b\n3. c\n"; string(data) != want {
		t.Fatalf("output = %q, want %q", data, want)
	}
}

// TestSortMatchesReference sorts 10,000 random lines with many small runs and
// compares against an in-memory sort using the same comparator.
func TestSortMatchesReference(t *testing.T) {
	rng := newTestRNG(t)
	lines := randomLines(rng, 10_000)
	got, stats := sortLines(t, lines, 4<<10, 4)

	want := referenceSort(lines)
	if !slices.Equal(got, want) {
		t.Fatalf("output differs from reference (%d vs %d lines)", len(got), len(want))
	}
	if stats.Runs < 10 {
		t.Errorf("Runs = %d, expected many runs with a 4 KiB chunk size", stats.Runs)
	}
	ok, err := IsSorted([]byte(joinLines(got)))
	if err != nil || !ok {
		t.Fatalf("IsSorted = %v, %v", ok, err)
	}
}

// TestSortConfigInvariance checks that chunk size, worker count, queue
// capacity, and run compression never change the output bytes.
func TestSortConfigInvariance(t *testing.T) {
	rng := newTestRNG(t)
	lines := randomLines(rng, 2000)
	lines = append(lines, "garbage", "7.", "-3. negative", "12. Apple", "12. Apple")

	want, _ := sortLines(t, lines, 1<<30, 1)

	tests := []struct {
		name      string
		chunkSize int64
		workers   int
		opts      []Option
	}{
		{"one_worker", 1 << 10, 1, nil},
		{"many_workers", 1 << 10, 8, nil},
		{"small_chunks", 600, 3, nil},
		{"queue_capacity_one", 1 << 10, 4, []Option{WithQueueCapacity(1)}},
		{"size_factor_one", 2 << 10, 2, []Option{WithSizeFactor(1)}},
		{"compressed_runs", 2 << 10, 4, []Option{WithRunCompression(true)}},
		{"small_buffers", 2 << 10, 2, []Option{WithReadBufferSize(16), WithMergeBufferSize(16), WithWriteBufferSize(16)}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, _ := sortLines(t, lines, tc.chunkSize, tc.workers, tc.opts...)
			if !slices.Equal(got, want) {
				t.Fatalf("output differs from single-run output")
			}
		})
	}
}

func TestSortOneRecordPerRun(t *testing.T) {
	rng := newTestRNG(t)
	lines := randomLines(rng, 100)
	got, stats := sortLines(t, lines, 1, 4)
	if stats.Runs != 100 {
		t.Errorf("Runs = %d, want 100", stats.Runs)
	}
	if want := referenceSort(lines); !slices.Equal(got, want) {
		t.Fatal("output differs from reference")
	}
}

func TestSortIdempotent(t *testing.T) {
	rng := newTestRNG(t)
	once, _ := sortLines(t, randomLines(rng, 2000), 1<<10, 3)
	twice, _ := sortLines(t, once, 1<<10, 3)
	if !slices.Equal(once, twice) {
		t.Fatal("sorting sorted output changed it")
	}
}

func TestSortOverwritesOutput(t *testing.T) {
	dir := t.TempDir()
	in := writeLines(t, dir, "in.txt", []string{"2. b", "1. a"})
	out := writeLines(t, dir, "out.txt", []string{"stale content that is longer than the result"})

	s, err := New(Config{InputPath: in, OutputPath: out, MaxChunkSizeBytes: 1 << 20, MaxParallelSorters: 1}, WithTempDir(dir))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Sort(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := readLines(t, out); !slices.Equal(got, []string{"1. a", "2. b"}) {
		t.Fatalf("output = %q", got)
	}
}

func TestSortRunCount(t *testing.T) {
	// Each line is 4 bytes ("N. x") and counts 8 toward the budget.
	lines := []string{"1. a", "2. b", "3. c", "4. d", "5. e"}
	tests := []struct {
		chunkSize int64
		wantRuns  int64
	}{
		{1, 5},
		{8, 5},
		{9, 3},
		{16, 3},
		{17, 2},
		{40, 1},
		{1 << 20, 1},
	}
	for _, tc := range tests {
		_, stats := sortLines(t, lines, tc.chunkSize, 2)
		if stats.Runs != tc.wantRuns {
			t.Errorf("chunk %d: Runs = %d, want %d", tc.chunkSize, stats.Runs, tc.wantRuns)
		}
	}
}

func TestSortReusesSorter(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out.txt")
	s, err := New(Config{OutputPath: out, MaxChunkSizeBytes: 64, MaxParallelSorters: 2}, WithTempDir(dir))
	if err != nil {
		t.Fatal(err)
	}
	for i, lines := range [][]string{{"2. b", "1. a"}, {"9. z", "8. y", "7. x"}} {
		in := writeLines(t, dir, "in.txt", lines)
		if _, err := s.SplitAndSortRuns(context.Background(), in); err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
		if got, want := readLines(t, out), referenceSort(lines); !slices.Equal(got, want) {
			t.Fatalf("call %d: output = %q, want %q", i, got, want)
		}
	}
	assertNoWorkDirs(t, dir)
}

// ─── Phases ──────────────────────────────────────────────────────────

func TestSortPhaseOrder(t *testing.T) {
	var phases []Phase
	_, _ = sortLines(t, []string{"1. a"}, 1<<20, 1, WithPhaseHook(func(p Phase) {
		phases = append(phases, p)
	}))
	want := []Phase{PhaseSorting, PhaseBarrier, PhaseMerging, PhaseCleaningUp, PhaseDone}
	if !slices.Equal(phases, want) {
		t.Fatalf("phases = %v, want %v", phases, want)
	}
}

func TestSortPhaseOrderOnCancel(t *testing.T) {
	dir := t.TempDir()
	in := writeLines(t, dir, "in.txt", []string{"1. a", "2. b"})
	var phases []Phase
	s, err := New(Config{InputPath: in, OutputPath: filepath.Join(dir, "out.txt"), MaxChunkSizeBytes: 1, MaxParallelSorters: 1},
		WithTempDir(dir),
		WithPhaseHook(func(p Phase) { phases = append(phases, p) }))
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.Sort(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Sort error = %v, want context.Canceled", err)
	}
	want := []Phase{PhaseSorting, PhaseCleaningUp, PhaseCancelled}
	if !slices.Equal(phases, want) {
		t.Fatalf("phases = %v, want %v", phases, want)
	}
}

func TestPhaseString(t *testing.T) {
	if got := PhaseCleaningUp.String(); got != "cleaning-up" {
		t.Errorf("PhaseCleaningUp.String() = %q", got)
	}
	if got := Phase(99).String(); got != "Phase(99)" {
		t.Errorf("Phase(99).String() = %q", got)
	}
}

func joinLines(lines []string) string {
	var b bytes.Buffer
	for _, l := range lines {
		b.WriteString(l)
		b.WriteByte('\n')
	}
	return b.String()
}

// ─── Configuration ───────────────────────────────────────────────────

func TestConfigValidate(t *testing.T) {
	valid := Config{InputPath: "in", OutputPath: "out", MaxChunkSizeBytes: 1, MaxParallelSorters: 1}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid config: %v", err)
	}
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"blank_input", func(c *Config) { c.InputPath = "  " }},
		{"blank_output", func(c *Config) { c.OutputPath = "" }},
		{"zero_chunk", func(c *Config) { c.MaxChunkSizeBytes = 0 }},
		{"negative_chunk", func(c *Config) { c.MaxChunkSizeBytes = -1 }},
		{"zero_sorters", func(c *Config) { c.MaxParallelSorters = 0 }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := valid
			tc.mutate(&c)
			if err := c.Validate(); !errors.Is(err, sorterrors.ErrInvalidConfig) {
				t.Fatalf("Validate() = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestNewRejectsInvalidOptions(t *testing.T) {
	cfg := Config{InputPath: "in", OutputPath: "out", MaxChunkSizeBytes: 1, MaxParallelSorters: 1}
	tests := []struct {
		name string
		opt  Option
	}{
		{"negative_queue", WithQueueCapacity(-1)},
		{"zero_size_factor", WithSizeFactor(0)},
		{"tiny_read_buffer", WithReadBufferSize(1)},
		{"tiny_merge_buffer", WithMergeBufferSize(8)},
		{"tiny_write_buffer", WithWriteBufferSize(0)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := New(cfg, tc.opt); !errors.Is(err, sorterrors.ErrInvalidConfig) {
				t.Fatalf("New() = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestNewDefaultQueueCapacity(t *testing.T) {
	s, err := New(Config{MaxChunkSizeBytes: 1, MaxParallelSorters: 3})
	if err != nil {
		t.Fatal(err)
	}
	if got := s.opts.queueCapacity; got != 6 {
		t.Errorf("queueCapacity = %d, want 6", got)
	}
}
