package linesort

import (
	"bufio"
	"bytes"
	"errors"
	"io"
)

// lineReader yields lines without their "\n" or "\r\n" terminator.
//
// Lines that fit in the bufio buffer are returned without copying and are
// valid only until the next call. Longer lines are assembled in a scratch
// buffer owned by the reader.
type lineReader struct {
	r       *bufio.Reader
	scratch []byte
	raw     func([]byte) // optional observer of every raw byte consumed, terminator included
}

func newLineReader(r io.Reader, bufSize int) *lineReader {
	return &lineReader{r: bufio.NewReaderSize(r, bufSize)}
}

// next returns the next line. It returns io.EOF only when no bytes remain;
// a final line without terminator is returned normally.
func (lr *lineReader) next() ([]byte, error) {
	line, err := lr.r.ReadSlice('\n')
	if errors.Is(err, bufio.ErrBufferFull) {
		lr.scratch = append(lr.scratch[:0], line...)
		for errors.Is(err, bufio.ErrBufferFull) {
			line, err = lr.r.ReadSlice('\n')
			lr.scratch = append(lr.scratch, line...)
		}
		line = lr.scratch
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if len(line) == 0 {
		return nil, io.EOF
	}
	if lr.raw != nil {
		lr.raw(line)
	}
	line = bytes.TrimSuffix(line, []byte{'\n'})
	line = bytes.TrimSuffix(line, []byte{'\r'})
	return line, nil
}
