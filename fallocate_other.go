//go:build !linux && !darwin

package linesort

import "os"

// fallocateFile sets the length of a run file before it is written. Blocks
// may not be reserved on every filesystem.
func fallocateFile(file *os.File, size int64) error {
	return file.Truncate(size)
}
