package linesort

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/edsrzf/mmap-go"

	sorterrors "github.com/tamirms/linesort/errors"
	"github.com/tamirms/linesort/internal/record"
)

// IsOutputSorted reports whether every adjacent pair of records in the file
// at path is in non-decreasing order. An empty file is sorted. A line that
// does not parse as a record fails with ErrMalformedRecord.
func IsOutputSorted(path string) (bool, error) {
	line, err := FirstUnsortedLine(path)
	if err != nil {
		return false, err
	}
	return line == 0, nil
}

// FirstUnsortedLine returns the 1-based number of the first line whose record
// sorts before the record on the previous line, or 0 if the file is sorted.
// The file is memory-mapped and scanned once.
func FirstUnsortedLine(path string) (line int, err error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open output file: %w", err)
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return 0, fmt.Errorf("stat output file: %w", err)
	}
	if stat.Size() == 0 {
		return 0, nil
	}

	mm, err := mmap.Map(file, mmap.RDONLY, 0)
	if err != nil {
		return 0, fmt.Errorf("mmap output file: %w", err)
	}
	defer func() {
		if uerr := mm.Unmap(); uerr != nil {
			err = errors.Join(err, fmt.Errorf("unmap output file: %w", uerr))
		}
	}()
	madviseSequential(mm)

	return firstUnsorted(mm)
}

// IsSorted is IsOutputSorted for an in-memory file image.
func IsSorted(data []byte) (bool, error) {
	line, err := firstUnsorted(data)
	if err != nil {
		return false, err
	}
	return line == 0, nil
}

func firstUnsorted(data []byte) (int, error) {
	var (
		prev   record.Record
		lineNo int
	)
	for len(data) > 0 {
		lineNo++
		var line []byte
		if i := bytes.IndexByte(data, '\n'); i >= 0 {
			line, data = data[:i], data[i+1:]
		} else {
			line, data = data, nil
		}
		line = bytes.TrimSuffix(line, []byte{'\r'})

		r, ok := record.Parse(line)
		if !ok {
			return 0, fmt.Errorf("%w: line %d: %q", sorterrors.ErrMalformedRecord, lineNo, line)
		}
		if lineNo > 1 && record.Compare(prev, r) > 0 {
			return lineNo, nil
		}
		prev = r
	}
	return 0, nil
}
