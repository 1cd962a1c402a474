// Package sandbox implements the Sandboxed Test Runner (STR): given an
// ordered list of unified diffs, it materializes a disposable copy of a
// target project, applies the diffs in order against a git baseline,
// runs the project's test command, and returns aggregated metrics.
package sandbox

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/agentwrangler/awcore/internal/exec"
	"github.com/agentwrangler/awcore/internal/git"
	"github.com/agentwrangler/awcore/pkg/models"
)

// GitFactory constructs a git.Runner rooted at a workspace directory.
// Exists purely so tests can substitute a fake without touching the
// filesystem or shelling out.
type GitFactory func(workDir string) git.Runner

// Config controls how the sandboxed test runner materializes workspaces
// and runs the target project's tests.
type Config struct {
	// TemplateDir is the target project tree copied into each workspace.
	TemplateDir string
	// TmpDir is the root directory under which workspaces are created.
	TmpDir string
	// TestCommand is the command (and args) used to run the test suite,
	// e.g. []string{"pytest", "-q"}.
	TestCommand []string
	// TestTimeout bounds the test command's wall-clock execution.
	TestTimeout time.Duration
}

// Runner implements the Sandboxed Test Runner contract: Run(diffs).
type Runner struct {
	cfg    Config
	cmd    exec.CommandRunner
	gitNew GitFactory
}

// NewRunner creates a Runner with the real exec.CommandRunner and git.Runner.
func NewRunner(cfg Config) *Runner {
	return &Runner{
		cfg:    cfg,
		cmd:    exec.NewRunner(),
		gitNew: func(workDir string) git.Runner { return git.NewRunner(workDir) },
	}
}

// NewRunnerWithDeps creates a Runner with injected dependencies, for tests.
func NewRunnerWithDeps(cfg Config, cmd exec.CommandRunner, gitNew GitFactory) *Runner {
	return &Runner{cfg: cfg, cmd: cmd, gitNew: gitNew}
}

// Run applies diffs in order against a fresh copy of the target project
// and returns the aggregated test outcome. The workspace is always
// destroyed before Run returns, on every exit path.
func (r *Runner) Run(ctx context.Context, diffs []string) (models.TestRunResult, error) {
	ws, err := NewWorkspace(r.cfg.TmpDir, r.cfg.TemplateDir)
	if err != nil {
		return models.TestRunResult{}, err
	}
	defer ws.Destroy()

	g := r.gitNew(ws.ProjectDir)

	if err := g.Init(ctx); err != nil {
		return models.TestRunResult{}, fmt.Errorf("sandbox: init baseline: %w", err)
	}
	if err := g.AddAll(ctx); err != nil {
		return models.TestRunResult{}, fmt.Errorf("sandbox: stage baseline: %w", err)
	}
	if err := g.Commit(ctx, "baseline"); err != nil {
		return models.TestRunResult{}, fmt.Errorf("sandbox: commit baseline: %w", err)
	}

	for i, diff := range diffs {
		patchPath := filepath.Join(ws.ProjectDir, fmt.Sprintf("patch_%d.diff", i))
		if err := os.WriteFile(patchPath, []byte(diff), 0o644); err != nil {
			return models.TestRunResult{}, fmt.Errorf("sandbox: write patch %d: %w", i, err)
		}

		primaryErr := g.Apply(ctx, patchPath)
		if primaryErr != nil {
			secondaryErr := g.ApplyFallback(ctx, patchPath)
			if secondaryErr != nil {
				return models.TestRunResult{}, &PatchApplyError{Index: i, Primary: primaryErr, Secondary: secondaryErr}
			}
		}

		// Mandatory: commit so the next diff applies against the
		// up-to-date tree rather than the original baseline.
		if err := g.AddAll(ctx); err != nil {
			return models.TestRunResult{}, fmt.Errorf("sandbox: stage patch %d: %w", i, err)
		}
		if err := g.Commit(ctx, fmt.Sprintf("apply patch %d", i)); err != nil {
			return models.TestRunResult{}, fmt.Errorf("sandbox: commit patch %d: %w", i, err)
		}
	}

	return r.runTests(ctx, ws.ProjectDir)
}

func (r *Runner) runTests(ctx context.Context, projectDir string) (models.TestRunResult, error) {
	if len(r.cfg.TestCommand) == 0 {
		return models.TestRunResult{}, fmt.Errorf("sandbox: no test command configured")
	}

	timeout := r.cfg.TestTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	name := r.cfg.TestCommand[0]
	args := r.cfg.TestCommand[1:]

	res, err := r.cmd.RunCaptured(runCtx, projectDir, name, args...)
	if err != nil {
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			return models.TestRunResult{}, &TestTimeoutError{Err: err}
		}
		return models.TestRunResult{}, &SubprocessSpawnError{Err: err}
	}
	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return models.TestRunResult{}, &TestTimeoutError{Err: ctx.Err()}
	}

	total, passed, failed := parseSummary(res.Stdout)
	return models.TestRunResult{
		Total:      total,
		Passed:     passed,
		Failed:     failed,
		ReturnCode: res.ExitCode,
		Stdout:     res.Stdout,
		Stderr:     res.Stderr,
	}, nil
}
