package linesort

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/cespare/xxhash/v2"
	"github.com/klauspost/compress/zstd"

	sorterrors "github.com/tamirms/linesort/errors"
	"github.com/tamirms/linesort/internal/record"
)

// mergeSource is a sequential read cursor over one run file.
type mergeSource struct {
	rf    runFile
	file  *os.File
	dec   *zstd.Decoder
	lines *lineReader
	hash  *xxhash.Digest
}

// openMergeSource opens rf for reading with a buffer of opts.mergeBufferSize.
func openMergeSource(rf runFile, opts *sortOptions) (*mergeSource, error) {
	file, err := os.Open(rf.path)
	if err != nil {
		return nil, fmt.Errorf("%w: open run file: %w", sorterrors.ErrMergeIO, err)
	}
	fadviseSequential(file)

	s := &mergeSource{rf: rf, file: file}
	var r io.Reader = file
	if rf.compressed {
		dec, err := zstd.NewReader(file, zstd.WithDecoderConcurrency(1))
		if err != nil {
			primaryErr := fmt.Errorf("%w: zstd reader for %s: %w", sorterrors.ErrMergeIO, rf.path, err)
			return nil, errors.Join(primaryErr, s.close())
		}
		s.dec = dec
		r = dec
	}
	s.lines = newLineReader(r, opts.mergeBufferSize)
	if rf.verify {
		s.hash = xxhash.New()
		s.lines.raw = func(b []byte) { _, _ = s.hash.Write(b) }
	}
	return s, nil
}

// next returns the next valid record of the run. ok is false at EOF, after
// the run's checksum has been verified. Malformed lines are skipped.
func (s *mergeSource) next() (r record.Record, ok bool, err error) {
	for {
		line, err := s.lines.next()
		if errors.Is(err, io.EOF) {
			if s.hash != nil && s.hash.Sum64() != s.rf.checksum {
				return record.Record{}, false, fmt.Errorf("%w: %s: got %016x, want %016x",
					sorterrors.ErrRunChecksum, s.rf.path, s.hash.Sum64(), s.rf.checksum)
			}
			return record.Record{}, false, nil
		}
		if err != nil {
			return record.Record{}, false, fmt.Errorf("%w: read run file %s: %w", sorterrors.ErrMergeIO, s.rf.path, err)
		}
		if r, ok := record.Parse(line); ok {
			return r, true, nil
		}
	}
}

// close releases the source. Idempotent: safe to call multiple times.
func (s *mergeSource) close() error {
	if s.dec != nil {
		s.dec.Close()
		s.dec = nil
	}
	if s.file == nil {
		return nil
	}
	fadviseDone(s.file)
	err := s.file.Close()
	s.file = nil
	return err
}

// mergeRunFiles k-way merges sorted runs into outputPath and returns the
// digest of the records written. On error the output file is removed.
// Every source is closed on every path.
func mergeRunFiles(ctx context.Context, runs []runFile, outputPath string, opts *sortOptions) (digest recordDigest, err error) {
	out, err := newOutputWriter(outputPath, opts.writeBufferSize)
	if err != nil {
		return recordDigest{}, err
	}

	sources := make([]*mergeSource, 0, len(runs))
	defer func() {
		var closeErrs []error
		for _, s := range sources {
			if cerr := s.close(); cerr != nil {
				closeErrs = append(closeErrs, cerr)
			}
		}
		if cerr := errors.Join(closeErrs...); cerr != nil {
			err = errors.Join(err, fmt.Errorf("%w: close run files: %w", sorterrors.ErrMergeIO, cerr))
		}
		if err != nil {
			err = errors.Join(err, out.abort())
			digest = recordDigest{}
		}
	}()

	h := newMergeHeap(len(runs))
	for i, rf := range runs {
		s, err := openMergeSource(rf, opts)
		if err != nil {
			return recordDigest{}, err
		}
		sources = append(sources, s)
		head, ok, err := s.next()
		if err != nil {
			return recordDigest{}, err
		}
		if ok {
			h.push(i, head)
		} else if err := s.close(); err != nil {
			return recordDigest{}, fmt.Errorf("%w: close run file: %w", sorterrors.ErrMergeIO, err)
		}
	}

	counter := 0
	for h.len() > 0 {
		counter++
		if counter >= contextCheckInterval {
			counter = 0
			if err := ctx.Err(); err != nil {
				return recordDigest{}, err
			}
		}

		src, head := h.peek()
		if err := out.write(head); err != nil {
			return recordDigest{}, err
		}
		next, ok, err := sources[src].next()
		if err != nil {
			return recordDigest{}, err
		}
		if ok {
			h.replaceTop(next)
			continue
		}
		h.pop()
		if err := sources[src].close(); err != nil {
			return recordDigest{}, fmt.Errorf("%w: close run file: %w", sorterrors.ErrMergeIO, err)
		}
	}

	if err := ctx.Err(); err != nil {
		return recordDigest{}, err
	}
	if err := out.finalize(); err != nil {
		return recordDigest{}, err
	}
	return out.digest, nil
}
