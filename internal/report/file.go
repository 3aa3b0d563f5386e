// Package report persists and renders benchmark results: the results CSV,
// comparison plots, JSON run snapshots and the terminal table.
package report

import (
	"io"
	"os"

	"github.com/haskel/cellbench/internal/benchmark"
)

// writeFile writes through a temporary file and renames it into place, so
// readers never observe a partial file. The directory must exist.
func writeFile(op, path string, write func(w io.Writer) error) error {
	tempPath := path + ".tmp"

	file, err := os.Create(tempPath)
	if err != nil {
		return &benchmark.IOError{Op: op, Path: path, Err: err}
	}

	if err := write(file); err != nil {
		file.Close()
		os.Remove(tempPath)
		return &benchmark.IOError{Op: op, Path: path, Err: err}
	}

	if err := file.Close(); err != nil {
		os.Remove(tempPath)
		return &benchmark.IOError{Op: op, Path: path, Err: err}
	}

	// Atomic rename
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return &benchmark.IOError{Op: op, Path: path, Err: err}
	}
	return nil
}
