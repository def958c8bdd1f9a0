//go:build !linux

package linesort

// madviseSequential is a no-op on non-Linux platforms.
func madviseSequential(data []byte) {}
