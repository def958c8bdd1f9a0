//go:build linux

package linesort

import (
	"os"

	"golang.org/x/sys/unix"
)

// fadviseSequential hints that f will be read once, front to back.
// Applied to the input and to every run file before the merge reads it.
// Best-effort: errors are silently ignored.
func fadviseSequential(f *os.File) {
	_ = unix.Fadvise(int(f.Fd()), 0, 0, unix.FADV_SEQUENTIAL)
}

// fadviseDone drops f's cached pages once a run file has been consumed, so
// merged runs do not crowd the output out of the page cache.
func fadviseDone(f *os.File) {
	_ = unix.Fadvise(int(f.Fd()), 0, 0, unix.FADV_DONTNEED)
}
