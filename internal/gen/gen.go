// Package gen writes random "<number>. <text>" files for exercising the sorter.
package gen

import (
	"bufio"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spaolacci/murmur3"
	"golang.org/x/sync/errgroup"

	sorterrors "github.com/tamirms/linesort/errors"
)

const (
	// Numbers are drawn uniformly from [minNumber, maxNumber).
	minNumber = 1
	maxNumber = 1_000_000_000

	bufferSize = 64 << 10

	// contextCheckInterval is how often, in lines, chunk writers check for cancellation.
	contextCheckInterval = 10000
)

// DefaultTexts are the texts lines are drawn from when Config.Texts is empty.
var DefaultTexts = []string{
	"Apple",
	"Banana is yellow",
	"Cherry is the best",
	"Something something something",
	"Hello World",
	"Lorem ipsum",
}

// Config describes a file to generate.
type Config struct {
	OutputPath string
	TotalLines int64
	Chunks     int      // files written in parallel, then concatenated
	Seed       uint64   // same seed, same Chunks: same output
	Texts      []string // nil means DefaultTexts
}

// Validate reports every invalid field, each wrapped with ErrInvalidConfig.
func (c Config) Validate() error {
	var errs []error
	if c.TotalLines <= 0 {
		errs = append(errs, fmt.Errorf("%w: total lines must be positive, got %d", sorterrors.ErrInvalidConfig, c.TotalLines))
	}
	if strings.TrimSpace(c.OutputPath) == "" {
		errs = append(errs, fmt.Errorf("%w: output path is empty", sorterrors.ErrInvalidConfig))
	}
	if c.Chunks <= 0 {
		errs = append(errs, fmt.Errorf("%w: chunks must be positive, got %d", sorterrors.ErrInvalidConfig, c.Chunks))
	}
	for i, t := range c.Texts {
		if t != strings.TrimSpace(t) || strings.ContainsAny(t, "\r\n") {
			errs = append(errs, fmt.Errorf("%w: text %d %q has surrounding whitespace or a line break", sorterrors.ErrInvalidConfig, i, t))
		}
	}
	return errors.Join(errs...)
}

// Generate writes cfg.TotalLines lines to cfg.OutputPath. Lines are split
// evenly across cfg.Chunks temporary files next to the output, generated in
// parallel, then concatenated in chunk order. Temporary files are removed on
// every path.
func Generate(ctx context.Context, cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	texts := cfg.Texts
	if len(texts) == 0 {
		texts = DefaultTexts
	}

	chunkFiles := make([]string, cfg.Chunks)
	defer func() {
		for _, path := range chunkFiles {
			if path != "" {
				_ = os.Remove(path)
			}
		}
	}()

	perChunk := cfg.TotalLines / int64(cfg.Chunks)
	remainder := cfg.TotalLines % int64(cfg.Chunks)
	dir := filepath.Dir(cfg.OutputPath)

	g, gctx := errgroup.WithContext(ctx)
	for i := range cfg.Chunks {
		n := perChunk
		if int64(i) < remainder {
			n++
		}
		f, err := os.CreateTemp(dir, ".linesort-gen-*")
		if err != nil {
			return fmt.Errorf("create chunk file: %w", errors.Join(err, g.Wait()))
		}
		chunkFiles[i] = f.Name()
		rng := chunkRNG(cfg.Seed, i)
		g.Go(func() error {
			return writeChunk(gctx, f, n, rng, texts)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return concatenate(chunkFiles, cfg.OutputPath)
}

// chunkRNG derives an independent generator for chunk i from seed.
func chunkRNG(seed uint64, i int) *rand.Rand {
	var key [8]byte
	binary.LittleEndian.PutUint64(key[:], uint64(i))
	hi, lo := murmur3.Sum128WithSeed(key[:], uint32(seed)^uint32(seed>>32))
	return rand.New(rand.NewPCG(hi^seed, lo))
}

// writeChunk writes n lines to f and closes it.
func writeChunk(ctx context.Context, f *os.File, n int64, rng *rand.Rand, texts []string) (err error) {
	defer func() {
		if cerr := f.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("close chunk file: %w", cerr))
		}
	}()

	w := bufio.NewWriterSize(f, bufferSize)
	line := make([]byte, 0, 64)
	for i := range n {
		if i%contextCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		line = strconv.AppendInt(line[:0], minNumber+rng.Int64N(maxNumber-minNumber), 10)
		line = append(line, ". "...)
		line = append(line, texts[rng.IntN(len(texts))]...)
		line = append(line, '\n')
		if _, err := w.Write(line); err != nil {
			return fmt.Errorf("write chunk: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush chunk: %w", err)
	}
	return nil
}

// concatenate copies files, in order, into a new file at outputPath.
func concatenate(files []string, outputPath string) (err error) {
	out, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("close output: %w", cerr))
		}
		if err != nil {
			_ = os.Remove(outputPath)
		}
	}()

	w := bufio.NewWriterSize(out, bufferSize)
	for _, path := range files {
		if err := appendFile(w, path); err != nil {
			return err
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}
	return nil
}

func appendFile(w io.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open chunk: %w", err)
	}
	defer f.Close()
	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("copy chunk %s: %w", path, err)
	}
	return nil
}
