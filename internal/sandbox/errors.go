package sandbox

import "fmt"

// CopyError indicates the target project template could not be
// materialized into a fresh workspace.
type CopyError struct {
	Path string
	Err  error
}

func (e *CopyError) Error() string {
	return fmt.Sprintf("sandbox: copy %s: %v", e.Path, e.Err)
}

func (e *CopyError) Unwrap() error { return e.Err }

// PatchApplyError indicates diff index failed to apply with both the
// primary and fallback patch tools.
type PatchApplyError struct {
	Index     int
	Primary   error
	Secondary error
}

func (e *PatchApplyError) Error() string {
	return fmt.Sprintf("sandbox: patch %d failed to apply (primary: %v, fallback: %v)", e.Index, e.Primary, e.Secondary)
}

// TestTimeoutError indicates the test command exceeded its wall-clock budget.
type TestTimeoutError struct {
	Err error
}

func (e *TestTimeoutError) Error() string {
	return fmt.Sprintf("sandbox: test run timed out: %v", e.Err)
}

func (e *TestTimeoutError) Unwrap() error { return e.Err }

// SubprocessSpawnError indicates the test command itself could not be started.
type SubprocessSpawnError struct {
	Err error
}

func (e *SubprocessSpawnError) Error() string {
	return fmt.Sprintf("sandbox: failed to spawn test command: %v", e.Err)
}

func (e *SubprocessSpawnError) Unwrap() error { return e.Err }
