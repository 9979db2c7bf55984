// Package fileops drives directory-to-archive packing and archive-to-
// directory extraction on top of internal/archive, internal/cipher,
// internal/keyderiv, internal/payload, and internal/search.
package fileops

import (
	"os"
	"path/filepath"
)

// ProgressFunc is called during pack/extract to report progress.
// Parameters: progress (0.0-1.0 completion fraction), info (human-readable status).
type ProgressFunc func(progress float32, info string)

// StatusFunc is called to report status messages (e.g. "Compressing readme.txt").
type StatusFunc func(status string)

// CancelFunc is called periodically to check if the caller requested
// cancellation. Return true to abort the operation.
type CancelFunc func() bool

// Scan walks rootDir and returns every regular file beneath it as a
// path joined onto rootDir (absolute only if rootDir is), in the
// lexical order filepath.Walk visits them.
func Scan(rootDir string) ([]string, error) {
	var files []string
	err := filepath.Walk(rootDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.Mode().IsRegular() {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}
