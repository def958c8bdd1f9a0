package linesort

import (
	"bufio"
	"context"
	"encoding/binary"
	"hash/fnv"
	"math/rand/v2"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"testing"

	"github.com/tamirms/linesort/internal/record"
)

// Named seeds for deterministic reproduction.
const (
	testSeed1 = 0x1234567890ABCDEF
	testSeed2 = 0xFEDCBA9876543210
)

// sampleTexts are the texts used by randomly generated inputs. Few distinct
// values, so the Number tie-break is exercised heavily.
var sampleTexts = []string{
	"Apple",
	"Banana is yellow",
	"Cherry is the best",
	"Something something something",
	"Hello World",
	"Lorem ipsum",
}

func newTestRNG(t testing.TB) *rand.Rand {
	t.Helper()
	h := fnv.New128a()
	h.Write([]byte(t.Name()))
	sum := h.Sum(nil)
	s1 := binary.LittleEndian.Uint64(sum[:8])
	s2 := binary.LittleEndian.Uint64(sum[8:])
	return rand.New(rand.NewPCG(testSeed1^s1, testSeed2^s2))
}

func rec(n int64, text string) record.Record {
	return record.Record{Number: n, Text: text}
}

// randomLines returns n formatted records with random numbers and texts.
func randomLines(rng *rand.Rand, n int) []string {
	lines := make([]string, n)
	for i := range lines {
		lines[i] = strconv.FormatInt(1+rng.Int64N(1_000_000_000), 10) + ". " + sampleTexts[rng.IntN(len(sampleTexts))]
	}
	return lines
}

// writeLines writes lines, each terminated by "\n", to a new file in dir.
func writeLines(t testing.TB, dir, name string, lines []string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	var sb strings.Builder
	for _, l := range lines {
		sb.WriteString(l)
		sb.WriteByte('\n')
	}
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// readLines returns the lines of path without terminators.
func readLines(t testing.TB, path string) []string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		t.Fatalf("scan %s: %v", path, err)
	}
	return lines
}

// referenceSort parses lines, drops malformed ones, and sorts the rest in
// memory with the same comparator as the pipeline.
func referenceSort(lines []string) []string {
	var recs []record.Record
	for _, l := range lines {
		if r, ok := record.Parse([]byte(l)); ok {
			recs = append(recs, r)
		}
	}
	slices.SortFunc(recs, record.Compare)
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = record.Format(r)
	}
	return out
}

// sortLines runs the whole pipeline over lines and returns the output lines.
func sortLines(t testing.TB, lines []string, chunkSize int64, workers int, opts ...Option) ([]string, Stats) {
	t.Helper()
	dir := t.TempDir()
	in := writeLines(t, dir, "input.txt", lines)
	out := filepath.Join(dir, "output.txt")

	opts = append([]Option{WithTempDir(dir)}, opts...)
	s, err := New(Config{
		InputPath:          in,
		OutputPath:         out,
		MaxChunkSizeBytes:  chunkSize,
		MaxParallelSorters: workers,
	}, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	stats, err := s.Sort(context.Background())
	if err != nil {
		t.Fatalf("Sort: %v", err)
	}
	assertNoWorkDirs(t, dir)
	return readLines(t, out), stats
}

// assertNoWorkDirs fails if any per-sort work directory is left in dir.
func assertNoWorkDirs(t testing.TB, dir string) {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(dir, workDirPrefix+"*"))
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) > 0 {
		t.Fatalf("leftover work directories: %v", matches)
	}
}

// persistRun writes records as a verified run file in dir.
func persistRun(t testing.TB, dir string, seq uint64, records []record.Record, opts *sortOptions) runFile {
	t.Helper()
	slices.SortFunc(records, record.Compare)
	rf, err := writeRun(dir, seq, records, opts)
	if err != nil {
		t.Fatalf("writeRun: %v", err)
	}
	return rf
}
