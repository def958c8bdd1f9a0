package linesort

import (
	"bufio"
	"cmp"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/klauspost/compress/zstd"

	sorterrors "github.com/tamirms/linesort/errors"
	"github.com/tamirms/linesort/internal/record"
)

const runFilePattern = "run-*.txt"

// runFile describes one persisted, internally sorted run.
type runFile struct {
	seq        uint64 // production order of the run
	path       string
	records    int
	size       int64  // uncompressed bytes, terminators included
	checksum   uint64 // xxHash64 of the uncompressed bytes
	verify     bool   // checksum is known and must be checked on read
	compressed bool
}

// runBytes returns the exact uncompressed size of records written one per line.
func runBytes(records []record.Record) int64 {
	var n int64
	for _, r := range records {
		n += int64(record.FormattedLen(r)) + 1
	}
	return n
}

// writeRun persists sorted records as a new run file in dir.
// On error the partially written file is removed.
func writeRun(dir string, seq uint64, records []record.Record, opts *sortOptions) (runFile, error) {
	f, err := os.CreateTemp(dir, runFilePattern)
	if err != nil {
		return runFile{}, fmt.Errorf("%w: create run file: %w", sorterrors.ErrRunIO, err)
	}
	rf := runFile{
		seq:        seq,
		path:       f.Name(),
		records:    len(records),
		size:       runBytes(records),
		verify:     true,
		compressed: opts.compressRuns,
	}

	if err := writeRunRecords(f, &rf, records, opts); err != nil {
		primaryErr := fmt.Errorf("%w: write run file: %w", sorterrors.ErrRunIO, err)
		return runFile{}, errors.Join(primaryErr, f.Close(), removeIfExists(rf.path))
	}
	if err := f.Close(); err != nil {
		primaryErr := fmt.Errorf("%w: close run file: %w", sorterrors.ErrRunIO, err)
		return runFile{}, errors.Join(primaryErr, removeIfExists(rf.path))
	}
	return rf, nil
}

func writeRunRecords(f *os.File, rf *runFile, records []record.Record, opts *sortOptions) error {
	// Uncompressed runs have a known final size; reserve it up front so a
	// full disk fails here instead of midway through the run.
	if !rf.compressed && rf.size > 0 {
		if err := fallocateFile(f, rf.size); err != nil {
			return fmt.Errorf("preallocate %d bytes: %w", rf.size, err)
		}
	}

	bw := bufio.NewWriterSize(f, opts.writeBufferSize)
	var (
		w   io.Writer = bw
		enc *zstd.Encoder
	)
	if rf.compressed {
		var err error
		enc, err = zstd.NewWriter(bw,
			zstd.WithEncoderLevel(zstd.SpeedFastest),
			zstd.WithEncoderConcurrency(1))
		if err != nil {
			return fmt.Errorf("zstd writer: %w", err)
		}
		w = enc
	}

	h := xxhash.New()
	line := make([]byte, 0, 128)
	for _, r := range records {
		line = record.AppendFormat(line[:0], r)
		line = append(line, '\n')
		_, _ = h.Write(line)
		if _, err := w.Write(line); err != nil {
			if enc != nil {
				_ = enc.Close()
			}
			return err
		}
	}
	if enc != nil {
		if err := enc.Close(); err != nil {
			return fmt.Errorf("zstd close: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	rf.checksum = h.Sum64()
	return nil
}

func removeIfExists(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove %s: %w", path, err)
	}
	return nil
}

// runSet collects the run files written by the worker pool. add is safe for
// concurrent use; sorted must only be called after all workers returned.
type runSet struct {
	mu    sync.Mutex
	files []runFile
}

func (s *runSet) add(rf runFile) {
	s.mu.Lock()
	s.files = append(s.files, rf)
	s.mu.Unlock()
}

// sorted returns the run files in production order.
func (s *runSet) sorted() []runFile {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := slices.Clone(s.files)
	slices.SortFunc(out, func(a, b runFile) int { return cmp.Compare(a.seq, b.seq) })
	return out
}

// totalBytes returns the combined uncompressed size of all runs.
func (s *runSet) totalBytes() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, rf := range s.files {
		n += rf.size
	}
	return n
}

// removeAll deletes every registered run file. Idempotent: the set is
// emptied, so a second call is a no-op.
func (s *runSet) removeAll() error {
	s.mu.Lock()
	files := s.files
	s.files = nil
	s.mu.Unlock()

	var errs []error
	for _, rf := range files {
		if err := removeIfExists(rf.path); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
