// Package errors provides sentinel errors shared across itpack's
// packages, so callers can use errors.Is() instead of matching on
// message text.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common conditions across pack/extract/list.
var (
	ErrCancelled    = errors.New("operation cancelled")
	ErrNoInputFiles = errors.New("no input files specified")
	ErrNoSalt       = errors.New("no candidate salt available")

	ErrFileNotFound  = errors.New("file not found")
	ErrFileExists    = errors.New("file already exists")
	ErrInvalidFormat = errors.New("invalid archive format")
)

// FileError represents an error during a file operation, naming both
// the operation and the path for callers that want more than text.
type FileError struct {
	Op   string // "open", "read", "write", "stat", "create"
	Path string
	Err  error
}

func (e *FileError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("%s %s failed", e.Op, e.Path)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// NewFileError creates a new FileError.
func NewFileError(op, path string, err error) *FileError {
	return &FileError{Op: op, Path: path, Err: err}
}

// Is checks if target matches any of our sentinel errors.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// IsCancelled checks if the error indicates a cancelled operation.
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled)
}
