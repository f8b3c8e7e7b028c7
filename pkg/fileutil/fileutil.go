package fileutil

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rohmanhakim/billtext/pkg/failure"
)

// GetFileExtension returns the lowercased extension of path without the dot,
// or an empty string if there is none.
func GetFileExtension(path string) string {
	ext := filepath.Ext(path)
	if ext == "" {
		return ""
	}
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// EnsureDir creates dir joined with the optional path elements if missing.
func EnsureDir(dir string, path ...string) failure.ClassifiedError {
	target := filepath.Join(append([]string{dir}, path...)...)
	if err := os.MkdirAll(target, 0755); err != nil {
		return &FileError{
			Message: err.Error(),
			Cause:   ErrCausePathError,
			Path:    target,
		}
	}
	return nil
}

// WriteTemp writes data into a new file under the OS temp dir whose name
// matches pattern, and returns its path.
func WriteTemp(pattern string, data []byte) (string, failure.ClassifiedError) {
	f, err := os.CreateTemp("", pattern)
	if err != nil {
		return "", &FileError{Message: err.Error(), Cause: ErrCausePathError}
	}
	path := f.Name()
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(path)
		return "", &FileError{Message: err.Error(), Cause: ErrCauseWriteError, Path: path}
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", &FileError{Message: err.Error(), Cause: ErrCauseWriteError, Path: path}
	}
	return path, nil
}
