//go:build linux

package linesort

import "golang.org/x/sys/unix"

// madviseSequential enables aggressive readahead on a mapping that is
// scanned once from start to end.
func madviseSequential(data []byte) {
	if len(data) == 0 {
		return
	}
	_ = unix.Madvise(data, unix.MADV_SEQUENTIAL)
}
