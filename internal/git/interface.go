// Package git provides an interface for the narrow slice of git
// operations the sandboxed test runner needs: recording a baseline
// revision and applying unified diffs against it.
package git

import "context"

// BaselineOperations defines the interface for establishing and
// recording revisions inside a disposable workspace.
type BaselineOperations interface {
	// Init initializes a new git repository in the runner's working directory.
	Init(ctx context.Context) error
	// AddAll stages every change in the working directory.
	AddAll(ctx context.Context) error
	// Commit creates a new commit with the given message. Returns nil
	// even when there is nothing to commit (an empty diff is valid).
	Commit(ctx context.Context, message string) error
}

// PatchOperations defines the interface for applying unified diffs.
type PatchOperations interface {
	// Apply applies the unified diff at patchPath using the primary
	// patch tool ("git apply"). Returns a non-nil error on failure;
	// callers needing the documented fallback call ApplyFallback next.
	Apply(ctx context.Context, patchPath string) error
	// ApplyFallback applies the unified diff at patchPath using the
	// secondary patch tool (POSIX "patch -p1").
	ApplyFallback(ctx context.Context, patchPath string) error
}

// DiffOperations defines the interface for inspecting the working tree.
type DiffOperations interface {
	// Status returns the output of git status --porcelain.
	Status(ctx context.Context) (string, error)
}

// Runner defines the complete interface for git operations consumed by
// the sandboxed test runner.
type Runner interface {
	BaselineOperations
	PatchOperations
	DiffOperations
}
