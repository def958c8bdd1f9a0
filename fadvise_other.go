//go:build !linux

package linesort

import "os"

// fadviseSequential is a no-op on non-Linux platforms.
func fadviseSequential(f *os.File) {}

// fadviseDone is a no-op on non-Linux platforms.
func fadviseDone(f *os.File) {}
