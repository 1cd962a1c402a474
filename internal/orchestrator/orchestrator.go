// Package orchestrator implements the pipeline engine (ORCH): the
// best-of-N candidate selection and the multi-agent architect →
// builder → specialist → reviewer pipeline. It depends on the Agent
// Gateway and the Sandboxed Test Runner only through the narrow
// interfaces below, so both can be faked in tests.
package orchestrator

import (
	"context"

	"github.com/agentwrangler/awcore/internal/agent"
	"github.com/agentwrangler/awcore/pkg/models"
)

// Tester is the subset of the Sandboxed Test Runner the orchestrator
// needs: apply an ordered list of diffs to a fresh workspace and
// report the aggregated test outcome.
type Tester interface {
	Run(ctx context.Context, diffs []string) (models.TestRunResult, error)
}

// Gateway is the subset of the Agent Gateway the orchestrator needs.
type Gateway interface {
	Plan(ctx context.Context, url, task string) (models.Plan, error)
	Implement(ctx context.Context, url, task string) (agent.ImplementResult, error)
	Review(ctx context.Context, url, task string, diffs []string) (models.Review, error)
}

// Orchestrator holds the dependencies shared by both pipelines.
type Orchestrator struct {
	Gateway Gateway
	Tester  Tester
	// STRParallelism bounds how many STR.Run calls may run concurrently
	// during best-of-N candidate evaluation. Builders themselves are
	// always fully parallel.
	STRParallelism int
}

// New creates an Orchestrator. strParallelism <= 0 is clamped to 1.
func New(gw Gateway, tester Tester, strParallelism int) *Orchestrator {
	if strParallelism <= 0 {
		strParallelism = 1
	}
	return &Orchestrator{Gateway: gw, Tester: tester, STRParallelism: strParallelism}
}
