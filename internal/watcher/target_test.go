package watcher

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func canonicalTempDir(t *testing.T) string {
	t.Helper()
	dir, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatalf("eval symlinks: %v", err)
	}
	return dir
}

func TestResolveTargetDirectory(t *testing.T) {
	dir := canonicalTempDir(t)
	target, err := ResolveTarget(dir)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if target.Root != dir || target.IsFile() {
		t.Fatalf("unexpected directory target %+v", target)
	}
	if !target.Matches([]string{"/anything/at/all"}) {
		t.Fatalf("directory target should match every path")
	}
}

func TestResolveTargetFile(t *testing.T) {
	dir := canonicalTempDir(t)
	file := filepath.Join(dir, "main.go")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	target, err := ResolveTarget(file)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if target.Root != dir {
		t.Fatalf("expected root %q, got %q", dir, target.Root)
	}
	if target.File != file {
		t.Fatalf("expected file %q, got %q", file, target.File)
	}
}

func TestResolveTargetMissingFallsBackToLiteral(t *testing.T) {
	missing := filepath.Join("does", "not", "exist")
	target, err := ResolveTarget(missing)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if target.Root != missing || target.IsFile() {
		t.Fatalf("expected literal root, got %+v", target)
	}
}

func TestResolveTargetEmpty(t *testing.T) {
	if _, err := ResolveTarget("  "); !errors.Is(err, ErrEmptyPath) {
		t.Fatalf("expected ErrEmptyPath, got %v", err)
	}
}

func TestTargetMatchesOnlyTheFile(t *testing.T) {
	dir := canonicalTempDir(t)
	file := filepath.Join(dir, "watched.txt")
	sibling := filepath.Join(dir, "other.txt")
	for _, path := range []string{file, sibling} {
		if err := os.WriteFile(path, nil, 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	target, err := ResolveTarget(file)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	if !target.Matches([]string{file}) {
		t.Fatalf("expected target to match itself")
	}
	if target.Matches([]string{sibling}) {
		t.Fatalf("expected sibling not to match")
	}
	if !target.Matches([]string{sibling, file}) {
		t.Fatalf("expected match when any path is the target")
	}
	if target.Matches([]string{filepath.Join(dir, "vanished.tmp")}) {
		t.Fatalf("expected uncanonicalizable path not to match")
	}
}

func TestTargetMatchesThroughSymlink(t *testing.T) {
	dir := canonicalTempDir(t)
	file := filepath.Join(dir, "real.txt")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	link := filepath.Join(canonicalTempDir(t), "link.txt")
	if err := os.Symlink(file, link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	target, err := ResolveTarget(link)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if target.File != file {
		t.Fatalf("expected symlink to resolve to %q, got %q", file, target.File)
	}
	if !target.Matches([]string{link}) {
		t.Fatalf("expected symlinked path to match after canonicalization")
	}
}
