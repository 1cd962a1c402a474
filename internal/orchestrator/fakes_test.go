package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/agentwrangler/awcore/internal/agent"
	"github.com/agentwrangler/awcore/pkg/models"
)

// fakeGateway lets tests script agent responses per URL without any
// HTTP traffic.
type fakeGateway struct {
	mu sync.Mutex

	planFn     func(url, task string) (models.Plan, error)
	implementFn func(url, task string) (agent.ImplementResult, error)
	reviewFn   func(url, task string, diffs []string) (models.Review, error)

	implementCalls []string
}

func (f *fakeGateway) Plan(ctx context.Context, url, task string) (models.Plan, error) {
	return f.planFn(url, task)
}

func (f *fakeGateway) Implement(ctx context.Context, url, task string) (agent.ImplementResult, error) {
	f.mu.Lock()
	f.implementCalls = append(f.implementCalls, url)
	f.mu.Unlock()
	return f.implementFn(url, task)
}

func (f *fakeGateway) Review(ctx context.Context, url, task string, diffs []string) (models.Review, error) {
	return f.reviewFn(url, task, diffs)
}

// fakeTester evaluates a diff sequence by a simple textual rule: a
// trial's failed count is the number of diffs in it that do NOT
// contain the string "GOOD".
type fakeTester struct {
	runFn func(diffs []string) (models.TestRunResult, error)
}

func (f *fakeTester) Run(ctx context.Context, diffs []string) (models.TestRunResult, error) {
	if f.runFn != nil {
		return f.runFn(diffs)
	}
	failed := 0
	for _, d := range diffs {
		if !strings.Contains(d, "GOOD") {
			failed++
		}
	}
	passed := len(diffs) - failed
	return models.TestRunResult{Total: len(diffs), Passed: passed, Failed: failed}, nil
}

func builderThatReturns(diff string, err error) func(url, task string) (agent.ImplementResult, error) {
	return func(url, task string) (agent.ImplementResult, error) {
		if err != nil {
			return agent.ImplementResult{}, err
		}
		return agent.ImplementResult{Diff: diff}, nil
	}
}

var errBoom = fmt.Errorf("boom")
