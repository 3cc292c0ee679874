// Package probe classifies conventional filesystem paths.
package probe

import (
	"errors"
	"io/fs"
	"os"
)

// Kind is the classification of a path on disk.
type Kind int

const (
	Absent Kind = iota
	File
	Dir
)

func (k Kind) String() string {
	switch k {
	case File:
		return "file"
	case Dir:
		return "directory"
	default:
		return "absent"
	}
}

// Classify reports whether path is absent, a regular file, or a directory.
// A missing path is not an error; any other stat failure is returned as is.
func Classify(path string) (Kind, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Absent, nil
	}
	if err != nil {
		return Absent, err
	}
	if info.IsDir() {
		return Dir, nil
	}
	return File, nil
}
