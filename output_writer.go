package linesort

import (
	"bufio"
	"errors"
	"fmt"
	"os"

	sorterrors "github.com/tamirms/linesort/errors"
	"github.com/tamirms/linesort/internal/record"
)

// outputWriter writes merged records to the output file and keeps a digest
// of everything written.
type outputWriter struct {
	path   string
	file   *os.File
	w      *bufio.Writer
	line   []byte
	digest recordDigest
}

// newOutputWriter creates or truncates path.
func newOutputWriter(path string, bufSize int) (*outputWriter, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("%w: create output: %w", sorterrors.ErrMergeIO, err)
	}
	return &outputWriter{
		path: path,
		file: file,
		w:    bufio.NewWriterSize(file, bufSize),
		line: make([]byte, 0, 128),
	}, nil
}

func (ow *outputWriter) write(r record.Record) error {
	ow.line = record.AppendFormat(ow.line[:0], r)
	ow.digest.add(ow.line)
	ow.line = append(ow.line, '\n')
	if _, err := ow.w.Write(ow.line); err != nil {
		return fmt.Errorf("%w: write output: %w", sorterrors.ErrMergeIO, err)
	}
	return nil
}

// finalize flushes and closes the output.
// On error, delegates to abort() for cleanup.
// On success, nils the file so that abort() only removes the output.
func (ow *outputWriter) finalize() error {
	if err := ow.w.Flush(); err != nil {
		primaryErr := fmt.Errorf("%w: flush output: %w", sorterrors.ErrMergeIO, err)
		return errors.Join(primaryErr, ow.abort())
	}
	closeErr := ow.file.Close()
	ow.file = nil
	if closeErr != nil {
		primaryErr := fmt.Errorf("%w: close output: %w", sorterrors.ErrMergeIO, closeErr)
		return errors.Join(primaryErr, ow.abort())
	}
	return nil
}

// abort closes the writer without flushing and removes the output file.
// Idempotent: safe to call multiple times.
func (ow *outputWriter) abort() error {
	var closeErr error
	if ow.file != nil {
		closeErr = ow.file.Close()
		ow.file = nil
	}
	var removeErr error
	if ow.path != "" {
		removeErr = removeIfExists(ow.path)
		ow.path = ""
	}
	return errors.Join(closeErr, removeErr)
}
