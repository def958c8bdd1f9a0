// Package config loads the linesort CLI settings file.
//
// The file is YAML with one section per command:
//
//	generate:
//	  output: big_parallel.txt
//	  total_lines: 1000000
//	  chunks: 8
//	sort:
//	  input: big_parallel.txt
//	  output: big_parallel_sort.txt
//	  max_chunk_size_bytes: 67108864
//	  max_parallel_sorters: 8
//
// Unknown keys are rejected. Missing keys keep their defaults.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"
)

const (
	DefaultGeneratedFile = "big_parallel.txt"
	DefaultSortedFile    = "big_parallel_sort.txt"
	DefaultTotalLines    = 1_000_000
	DefaultChunks        = 8
	DefaultMaxChunkSize  = 64 << 20
)

// File is the whole settings file.
type File struct {
	Generate Generate `yaml:"generate"`
	Sort     Sort     `yaml:"sort"`
}

// Generate holds settings for the generate command.
type Generate struct {
	Output     string   `yaml:"output"`
	TotalLines int64    `yaml:"total_lines"`
	Chunks     int      `yaml:"chunks"`
	Seed       uint64   `yaml:"seed"`
	Texts      []string `yaml:"texts,omitempty"`
}

// Sort holds settings for the sort and merge commands.
type Sort struct {
	Input              string `yaml:"input"`
	Output             string `yaml:"output"`
	MaxChunkSizeBytes  int64  `yaml:"max_chunk_size_bytes"`
	MaxParallelSorters int    `yaml:"max_parallel_sorters"`
	TempDir            string `yaml:"temp_dir,omitempty"`
	QueueCapacity      int    `yaml:"queue_capacity,omitempty"`    // 0 means twice the sorter count
	SizeFactor         int    `yaml:"size_factor,omitempty"`       // 0 means the library default
	MergeBufferSize    int    `yaml:"merge_buffer_size,omitempty"` // per run; 0 means the library default
	CompressRuns       bool   `yaml:"compress_runs,omitempty"`
}

// Default returns the settings used when no file is given.
func Default() File {
	return File{
		Generate: Generate{
			Output:     DefaultGeneratedFile,
			TotalLines: DefaultTotalLines,
			Chunks:     DefaultChunks,
		},
		Sort: Sort{
			Input:              DefaultGeneratedFile,
			Output:             DefaultSortedFile,
			MaxChunkSizeBytes:  DefaultMaxChunkSize,
			MaxParallelSorters: runtime.NumCPU(),
		},
	}
}

// Load reads the settings file at path over Default().
func Load(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML settings over Default(). An empty document yields the
// defaults.
func Parse(data []byte) (File, error) {
	f := Default()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return File{}, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return f, nil
}
