//go:build linux

package linesort

import (
	"os"

	"golang.org/x/sys/unix"
)

// fallocateFile reserves size bytes for a run file whose final length is
// known before it is written.
func fallocateFile(file *os.File, size int64) error {
	if err := unix.Fallocate(int(file.Fd()), 0, 0, size); err != nil {
		// Some filesystems (tmpfs on old kernels, NFS) reject fallocate.
		return unix.Ftruncate(int(file.Fd()), size)
	}
	// KEEP_SIZE is not requested, so the length is already size.
	return nil
}
