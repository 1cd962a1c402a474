package git

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// ExecRunner implements Runner using exec.CommandContext against a
// fixed working directory. It is the git-facing half of the sandbox:
// one ExecRunner is created per disposable workspace and discarded
// with it.
type ExecRunner struct {
	workDir string
}

// NewRunner creates a new git runner rooted at workDir.
func NewRunner(workDir string) *ExecRunner {
	return &ExecRunner{workDir: workDir}
}

// run executes a git command and returns its combined output.
func (r *ExecRunner) run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = r.workDir
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("git %s: %w: %s", strings.Join(args, " "), err, string(out))
	}
	return strings.TrimSpace(string(out)), nil
}

// Init initializes a new git repository in the working directory.
func (r *ExecRunner) Init(ctx context.Context) error {
	_, err := r.run(ctx, "init", "-q")
	if err != nil {
		return err
	}
	// A commit identity is required even for local, throwaway baseline
	// commits; the workspace never has a user git config of its own.
	if _, err := r.run(ctx, "config", "user.email", "awcore@localhost"); err != nil {
		return err
	}
	if _, err := r.run(ctx, "config", "user.name", "awcore"); err != nil {
		return err
	}
	return nil
}

// AddAll stages every change in the working directory.
func (r *ExecRunner) AddAll(ctx context.Context) error {
	_, err := r.run(ctx, "add", "-A")
	return err
}

// Commit creates a new commit, tolerating the "nothing to commit" case
// so that a no-op patch (e.g. one that recreates the existing content)
// never aborts the apply sequence.
func (r *ExecRunner) Commit(ctx context.Context, message string) error {
	_, err := r.run(ctx, "commit", "--allow-empty", "-q", "-m", message)
	return err
}

// Apply applies the unified diff at patchPath with "git apply", which
// understands "diff --git" headers and new-file/delete entries.
func (r *ExecRunner) Apply(ctx context.Context, patchPath string) error {
	_, err := r.run(ctx, "apply", "--whitespace=nowarn", patchPath)
	return err
}

// ApplyFallback applies the unified diff at patchPath with the POSIX
// "patch" tool, used when "git apply" rejects a diff (e.g. one whose
// context lines no longer match exactly, which patch applies with fuzz).
func (r *ExecRunner) ApplyFallback(ctx context.Context, patchPath string) error {
	cmd := exec.CommandContext(ctx, "patch", "-p1", "--batch", "-i", patchPath)
	cmd.Dir = r.workDir
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("patch -p1 -i %s: %w: %s", patchPath, err, out.String())
	}
	return nil
}

// Status returns the output of git status --porcelain.
func (r *ExecRunner) Status(ctx context.Context) (string, error) {
	return r.run(ctx, "status", "--porcelain")
}

// Verify ExecRunner implements Runner at compile time.
var _ Runner = (*ExecRunner)(nil)
