package watcher

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

var ErrEmptyPath = errors.New("watch path is empty")

// Target is the resolved watch request.
type Target struct {
	// Root is the directory registered with the OS.
	Root string
	// File is the canonical target file, empty for directory targets.
	File string
}

// ResolveTarget canonicalizes path. When canonicalization fails, for example
// because the path does not exist yet, the literal path is used and the
// error surfaces when the root is watched.
func ResolveTarget(path string) (Target, error) {
	if strings.TrimSpace(path) == "" {
		return Target{}, ErrEmptyPath
	}
	resolved, err := canonicalize(path)
	if err != nil {
		resolved = path
	}
	info, err := os.Stat(resolved)
	if err == nil && info.Mode().IsRegular() {
		return Target{Root: filepath.Dir(resolved), File: resolved}, nil
	}
	return Target{Root: resolved}, nil
}

func (t Target) IsFile() bool {
	return t.File != ""
}

// Matches reports whether any of paths refers to the target file. Directory
// targets match everything. Event paths are compared as given first and only
// canonicalized when that fails; paths that cannot be canonicalized, such as
// files mid-rename, fall back to the raw comparison.
func (t Target) Matches(paths []string) bool {
	if !t.IsFile() {
		return true
	}
	for _, path := range paths {
		if filepath.Clean(path) == t.File {
			return true
		}
	}
	for _, path := range paths {
		resolved, err := canonicalize(path)
		if err == nil && resolved == t.File {
			return true
		}
	}
	return false
}

func canonicalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}
