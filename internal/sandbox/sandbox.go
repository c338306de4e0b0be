// Package sandbox resolves tool-requested paths against a workspace root
// and refuses anything that would escape it.
package sandbox

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Sandbox resolves paths relative to a single workspace root and rejects
// any path that, after symlink resolution, would fall outside of it.
type Sandbox struct {
	Root string
}

// New creates a Sandbox rooted at root, creating the directory if it does
// not already exist.
func New(root string) (*Sandbox, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve workspace root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create workspace root: %w", err)
	}
	return &Sandbox{Root: abs}, nil
}

// Resolve turns a tool-supplied path into an absolute path inside the
// sandbox root.
//
// An absolute path already inside the root has the root prefix stripped
// and is treated as relative. An absolute path outside the root has its
// leading separators stripped and is likewise treated as relative -
// walkie-talkie never lets the model address the host filesystem by
// absolute path, even if it asks for one. The result is joined against
// the root, symlinks are resolved, and the final location is verified to
// still be within the root.
func (s *Sandbox) Resolve(path string) (string, error) {
	if s == nil {
		return "", fmt.Errorf("sandbox is not configured")
	}
	rel := strings.TrimSpace(path)
	if rel == "" {
		rel = "."
	}

	if filepath.IsAbs(rel) {
		if within, ok := strings.CutPrefix(rel, s.Root); ok {
			rel = strings.TrimPrefix(within, string(os.PathSeparator))
		} else {
			rel = strings.TrimLeft(rel, string(os.PathSeparator)+"/")
		}
	}
	if rel == "" {
		rel = "."
	}

	joined := filepath.Join(s.Root, rel)

	resolved, err := resolveSymlinks(joined)
	if err != nil {
		return "", err
	}

	if !isWithin(s.Root, resolved) {
		return "", &EscapeError{Path: path, Resolved: resolved}
	}
	return resolved, nil
}

// resolveSymlinks canonicalizes path via the longest existing ancestor,
// so a path whose final component does not exist yet (e.g. a file about
// to be written) can still be validated.
func resolveSymlinks(path string) (string, error) {
	clean := filepath.Clean(path)
	if resolved, err := filepath.EvalSymlinks(clean); err == nil {
		return resolved, nil
	}
	parent, base := filepath.Split(clean)
	parent = filepath.Clean(parent)
	resolvedParent, err := resolveSymlinks(parent)
	if err != nil {
		return "", err
	}
	return filepath.Join(resolvedParent, base), nil
}

func isWithin(root, target string) bool {
	rel, err := filepath.Rel(root, target)
	if err != nil {
		return false
	}
	return rel == "." || (!strings.HasPrefix(rel, ".."+string(os.PathSeparator)) && rel != "..")
}

// EscapeError reports that a resolved path fell outside the sandbox root.
type EscapeError struct {
	Path     string
	Resolved string
}

func (e *EscapeError) Error() string {
	return fmt.Sprintf("Path escapes sandbox: %q resolves to %s", e.Path, e.Resolved)
}
