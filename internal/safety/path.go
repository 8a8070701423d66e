// Package safety guards local filesystem writes against hostile remote
// input. Discovery output comes from machines the operator does not fully
// control; a crafted filename must never place an archive outside its
// destination directory.
package safety

import (
	"fmt"
	"path/filepath"
	"strings"
)

// EnsureUnderRoot verifies candidate resolves under root and returns
// an absolute normalized path.
func EnsureUnderRoot(root, candidate string) (string, error) {
	rootAbs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolve root: %w", err)
	}
	candAbs, err := filepath.Abs(candidate)
	if err != nil {
		return "", fmt.Errorf("resolve candidate: %w", err)
	}

	rel, err := filepath.Rel(rootAbs, candAbs)
	if err != nil {
		return "", fmt.Errorf("compare paths: %w", err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path escapes root: %q", candidate)
	}
	return candAbs, nil
}

// ArchivePath places a remote file's basename under destDir, rejecting
// names (".", "..", empty) that would resolve outside it.
func ArchivePath(destDir, name string) (string, error) {
	if name == "" || name == "." || name == ".." {
		return "", fmt.Errorf("unusable archive file name: %q", name)
	}
	return EnsureUnderRoot(destDir, filepath.Join(destDir, name))
}
