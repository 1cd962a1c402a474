package orchestrator

import "fmt"

// PipelineError is a composite, stage-tagged failure of a pipeline run:
// the architect call failed, every builder in the base best-of-N
// failed, or the run was cancelled.
type PipelineError struct {
	Stage string
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("orchestrator: %s: %v", e.Stage, e.Err)
}

func (e *PipelineError) Unwrap() error { return e.Err }
