package orchestrator

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/agentwrangler/awcore/pkg/models"
)

// errAllBuildersFailed is wrapped in a PipelineError when every builder
// call errored or every resulting diff failed to evaluate.
var errAllBuildersFailed = errors.New("every builder candidate failed")

// BestOfN dispatches task to every builder URL concurrently, evaluates
// each resulting diff in isolation with the tester, and selects the
// candidate with the best test outcome under the spec's strict total
// order (min failed, then max passed, then min index).
func (o *Orchestrator) BestOfN(ctx context.Context, task string, builderURLs []string) (models.BestOfNResult, error) {
	n := len(builderURLs)
	candidates := make([]models.Candidate, n)

	// Step 1: fan out implement() calls fully in parallel. Each
	// goroutine writes only its own index, so no lock is needed to keep
	// the result order equal to builderURLs order.
	g, gctx := errgroup.WithContext(ctx)
	for i, url := range builderURLs {
		i, url := i, url
		g.Go(func() error {
			res, err := o.Gateway.Implement(gctx, url, task)
			if err != nil {
				candidates[i] = models.Candidate{
					BuilderURL:   url,
					Index:        i,
					Tests:        models.SentinelTestRunResult(err.Error()),
					BuilderError: err.Error(),
				}
				return nil
			}
			candidates[i] = models.Candidate{Diff: res.Diff, BuilderURL: url, Index: i}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return models.BestOfNResult{}, &PipelineError{Stage: "base", Err: err}
	}

	// Step 2: evaluate each successful diff, bounded by STRParallelism.
	g2, gctx2 := errgroup.WithContext(ctx)
	g2.SetLimit(o.STRParallelism)
	for i := range candidates {
		i := i
		if candidates[i].BuilderError != "" {
			continue
		}
		g2.Go(func() error {
			tr, err := o.Tester.Run(gctx2, []string{candidates[i].Diff})
			if err != nil {
				candidates[i].Tests = models.SentinelTestRunResult(err.Error())
				return nil
			}
			candidates[i].Tests = tr
			return nil
		})
	}
	if err := g2.Wait(); err != nil {
		return models.BestOfNResult{}, &PipelineError{Stage: "base", Err: err}
	}

	winner := 0
	allFailed := true
	for i, c := range candidates {
		if !c.Tests.IsSentinel() {
			allFailed = false
		}
		if i > 0 && models.Better(c, candidates[winner]) {
			winner = i
		}
	}

	result := models.BestOfNResult{Candidates: candidates, WinnerIndex: winner}
	if allFailed {
		return result, &PipelineError{Stage: "base", Err: errAllBuildersFailed}
	}
	return result, nil
}
