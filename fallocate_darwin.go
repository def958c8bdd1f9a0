//go:build darwin

package linesort

import (
	"os"

	"golang.org/x/sys/unix"
)

// fallocateFile reserves size bytes for a run file whose final length is
// known before it is written.
func fallocateFile(file *os.File, size int64) error {
	fst := unix.Fstore_t{
		Flags:   unix.F_ALLOCATEALL,
		Posmode: unix.F_PEOFPOSMODE,
		Length:  size,
	}
	// F_PREALLOCATE only reserves blocks; the length is set either way.
	_ = unix.FcntlFstore(file.Fd(), unix.F_PREALLOCATE, &fst)
	return unix.Ftruncate(int(file.Fd()), size)
}
