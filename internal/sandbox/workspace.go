package sandbox

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Workspace is a throwaway directory holding one copy of the target
// project, owned exclusively by the STR call that created it. It is
// always released by the caller, on every exit path.
type Workspace struct {
	// Root is the workspace's own temporary directory.
	Root string
	// ProjectDir is Root/project, the copy of the target template that
	// patches are applied against and tests are run from.
	ProjectDir string
}

// NewWorkspace creates a fresh temporary directory under tmpRoot (or the
// OS default if empty) and recursively copies templateDir into
// Root/project.
func NewWorkspace(tmpRoot, templateDir string) (*Workspace, error) {
	if tmpRoot == "" {
		tmpRoot = os.TempDir()
	}
	if err := os.MkdirAll(tmpRoot, 0o755); err != nil {
		return nil, &CopyError{Path: tmpRoot, Err: err}
	}

	root, err := os.MkdirTemp(tmpRoot, "aw-sandbox-"+uuid.New().String()[:8]+"-")
	if err != nil {
		return nil, &CopyError{Path: tmpRoot, Err: err}
	}

	ws := &Workspace{
		Root:       root,
		ProjectDir: filepath.Join(root, "project"),
	}

	if err := copyTree(templateDir, ws.ProjectDir); err != nil {
		_ = os.RemoveAll(root)
		return nil, &CopyError{Path: templateDir, Err: err}
	}

	return ws, nil
}

// Destroy removes the workspace directory unconditionally. Safe to call
// multiple times and on every exit path, including failure and panic
// recovery.
func (w *Workspace) Destroy() {
	if w == nil || w.Root == "" {
		return
	}
	_ = os.RemoveAll(w.Root)
}

// copyTree recursively copies src into dst, preserving the directory
// structure and regular-file permissions. A symlink to a file is copied
// as a regular file holding the target's content; a symlink to a
// directory is not followed, and copying it fails.
func copyTree(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("template path %s is not a directory", src)
	}

	return filepath.Walk(src, func(path string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		if fi.IsDir() {
			return os.MkdirAll(target, fi.Mode().Perm()|0o700)
		}
		return copyFile(path, target, fi.Mode().Perm())
	})
}

func copyFile(src, dst string, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}
