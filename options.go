package linesort

import (
	"fmt"
	"io"
	"log/slog"

	sorterrors "github.com/tamirms/linesort/errors"
)

const (
	// defaultSizeFactor scales raw line length into an estimate of the
	// in-memory footprint of the parsed record.
	defaultSizeFactor = 2

	defaultReadBufferSize  = 1 << 20  // 1 MiB, input only
	defaultMergeBufferSize = 64 << 10 // 64 KiB per run file
	defaultWriteBufferSize = 64 << 10 // 64 KiB
	minBufferSize          = 16

	// queueCapacityMultiplier sizes the default run queue relative to the
	// number of sort workers.
	queueCapacityMultiplier = 2
)

// Option is a functional option for configuring a Sorter.
type Option func(*sortOptions)

type sortOptions struct {
	tempDir         string // parent of the per-sort work directory; "" means os.TempDir()
	queueCapacity   int    // 0 means MaxParallelSorters * queueCapacityMultiplier
	sizeFactor      int
	readBufferSize  int
	mergeBufferSize int // one buffer per open run during the merge
	writeBufferSize int
	compressRuns    bool
	logger          *slog.Logger
	phaseHook       func(Phase)
}

func defaultSortOptions() *sortOptions {
	return &sortOptions{
		sizeFactor:      defaultSizeFactor,
		readBufferSize:  defaultReadBufferSize,
		mergeBufferSize: defaultMergeBufferSize,
		writeBufferSize: defaultWriteBufferSize,
		logger:          slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// WithTempDir sets the directory under which run files are written.
// Each sort creates and removes its own subdirectory there.
func WithTempDir(dir string) Option {
	return func(o *sortOptions) {
		o.tempDir = dir
	}
}

// WithQueueCapacity sets how many unsorted runs may wait for a worker.
// The producer blocks while the queue is full.
func WithQueueCapacity(n int) Option {
	return func(o *sortOptions) {
		o.queueCapacity = n
	}
}

// WithSizeFactor sets the multiplier applied to each line's byte length when
// accounting a run against MaxChunkSizeBytes.
func WithSizeFactor(f int) Option {
	return func(o *sortOptions) {
		o.sizeFactor = f
	}
}

// WithReadBufferSize sets the buffer size for reading the input.
func WithReadBufferSize(n int) Option {
	return func(o *sortOptions) {
		o.readBufferSize = n
	}
}

// WithMergeBufferSize sets the read buffer size of each run file during the
// merge. The merge holds one such buffer per run.
func WithMergeBufferSize(n int) Option {
	return func(o *sortOptions) {
		o.mergeBufferSize = n
	}
}

// WithWriteBufferSize sets the buffer size for writing run files and the output.
func WithWriteBufferSize(n int) Option {
	return func(o *sortOptions) {
		o.writeBufferSize = n
	}
}

// WithRunCompression stores run files zstd-compressed. The output is always
// plain text.
func WithRunCompression(enabled bool) Option {
	return func(o *sortOptions) {
		o.compressRuns = enabled
	}
}

// WithLogger sets the logger. A nil logger is ignored.
func WithLogger(l *slog.Logger) Option {
	return func(o *sortOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithPhaseHook registers fn to be called on every phase transition.
// fn runs on the goroutine that called Sort and must not block.
func WithPhaseHook(fn func(Phase)) Option {
	return func(o *sortOptions) {
		o.phaseHook = fn
	}
}

func (o *sortOptions) validate() error {
	switch {
	case o.queueCapacity < 0:
		return fmt.Errorf("%w: queue capacity %d is negative", sorterrors.ErrInvalidConfig, o.queueCapacity)
	case o.sizeFactor <= 0:
		return fmt.Errorf("%w: size factor must be positive, got %d", sorterrors.ErrInvalidConfig, o.sizeFactor)
	case o.readBufferSize < minBufferSize:
		return fmt.Errorf("%w: read buffer size %d below minimum %d", sorterrors.ErrInvalidConfig, o.readBufferSize, minBufferSize)
	case o.mergeBufferSize < minBufferSize:
		return fmt.Errorf("%w: merge buffer size %d below minimum %d", sorterrors.ErrInvalidConfig, o.mergeBufferSize, minBufferSize)
	case o.writeBufferSize < minBufferSize:
		return fmt.Errorf("%w: write buffer size %d below minimum %d", sorterrors.ErrInvalidConfig, o.writeBufferSize, minBufferSize)
	}
	return nil
}
