// Package fs finds and reads the local files a repository upload sends.
package fs

import (
	"errors"
	"fmt"
	iofs "io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
)

// ErrTooLarge is returned by Read for files over the size limit.
var ErrTooLarge = errors.New("file too large")

// Glob returns the regular files under root matching pattern, in walk
// order. Pattern supports ** for recursive matching.
func Glob(root, pattern string) ([]string, error) {
	if pattern == "" {
		return nil, errors.New("pattern is required")
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid glob pattern: %s", pattern)
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", root)
	}

	var matches []string
	err = doublestar.GlobWalk(os.DirFS(root), pattern, func(path string, d iofs.DirEntry) error {
		if d.IsDir() {
			return nil
		}
		matches = append(matches, filepath.Join(root, filepath.FromSlash(path)))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("match %s: %w", pattern, err)
	}
	return matches, nil
}

// Expand resolves command-line arguments to file paths. An argument naming
// an existing file is kept; anything else is treated as a glob pattern. The
// result has no duplicates. A pattern matching nothing is an error.
func Expand(args []string) ([]string, error) {
	var out []string
	for _, arg := range args {
		if info, err := os.Stat(arg); err == nil && !info.IsDir() {
			out = append(out, filepath.Clean(arg))
			continue
		}
		base, pattern := doublestar.SplitPattern(filepath.ToSlash(arg))
		if pattern == "" || pattern == "." {
			return nil, fmt.Errorf("%s: no such file", arg)
		}
		matches, err := Glob(filepath.FromSlash(base), pattern)
		if err != nil {
			return nil, err
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("%s: no matches found", arg)
		}
		out = append(out, matches...)
	}
	slices.Sort(out)
	return slices.Compact(out), nil
}

// File is a local file read for upload.
type File struct {
	Path    string
	Name    string
	Content []byte
}

// Read reads the file at path. Files larger than maxSize bytes are refused
// with [ErrTooLarge]; a non-positive maxSize disables the check.
func Read(path string, maxSize int64) (File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return File{}, err
	}
	if info.IsDir() {
		return File{}, fmt.Errorf("%s is a directory", path)
	}
	if maxSize > 0 && info.Size() > maxSize {
		return File{}, fmt.Errorf("%s is %d bytes, limit %d: %w", path, info.Size(), maxSize, ErrTooLarge)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return File{}, err
	}
	return File{Path: path, Name: filepath.Base(path), Content: content}, nil
}
