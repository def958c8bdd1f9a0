package linesort

import (
	"errors"
	"fmt"
	"strings"

	sorterrors "github.com/tamirms/linesort/errors"
)

// Config holds the required parameters of a sort.
type Config struct {
	InputPath          string
	OutputPath         string
	MaxChunkSizeBytes  int64 // approximate in-memory budget of one run
	MaxParallelSorters int   // number of sort workers
}

// Validate reports every invalid field, each wrapped with ErrInvalidConfig.
func (c Config) Validate() error {
	return errors.Join(
		validatePath("input", c.InputPath),
		validatePath("output", c.OutputPath),
		c.validateLimits(),
	)
}

// validateLimits checks the fields needed by every operation. Paths are
// checked by the operation that uses them, so MergeRuns works without an
// input path.
func (c Config) validateLimits() error {
	var errs []error
	if c.MaxChunkSizeBytes <= 0 {
		errs = append(errs, fmt.Errorf("%w: max chunk size must be positive, got %d", sorterrors.ErrInvalidConfig, c.MaxChunkSizeBytes))
	}
	if c.MaxParallelSorters <= 0 {
		errs = append(errs, fmt.Errorf("%w: max parallel sorters must be positive, got %d", sorterrors.ErrInvalidConfig, c.MaxParallelSorters))
	}
	return errors.Join(errs...)
}

func validatePath(name, path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("%w: %s path is empty", sorterrors.ErrInvalidConfig, name)
	}
	return nil
}
