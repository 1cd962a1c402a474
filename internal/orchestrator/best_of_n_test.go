package orchestrator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentwrangler/awcore/internal/agent"
	"github.com/agentwrangler/awcore/pkg/models"
)

func byURLGateway(diffs map[string]string) *fakeGateway {
	return &fakeGateway{
		implementFn: func(url, task string) (agent.ImplementResult, error) {
			return agent.ImplementResult{Diff: diffs[url]}, nil
		},
	}
}

// TestBestOfN_PicksGoodCandidate is the S1 seed scenario: three
// builders where only b0 produces the fix, STR scores purely on
// whether the applied diff contains the fix marker.
func TestBestOfN_PicksGoodCandidate(t *testing.T) {
	urls := []string{"http://b0", "http://b1", "http://b2"}
	gw := byURLGateway(map[string]string{
		"http://b0": "return a + b",
		"http://b1": "return a - b - 1",
		"http://b2": "return a - b - 2",
	})
	tester := &fakeTester{runFn: func(diffs []string) (models.TestRunResult, error) {
		for _, d := range diffs {
			if d == "return a + b" {
				return models.TestRunResult{Total: 1, Passed: 1, Failed: 0}, nil
			}
		}
		return models.TestRunResult{Total: 1, Passed: 0, Failed: 1}, nil
	}}

	o := New(gw, tester, 1)
	result, err := o.BestOfN(context.Background(), "fix add", urls)
	require.NoError(t, err)
	assert.Equal(t, 0, result.WinnerIndex)
	assert.Equal(t, 0, result.Candidates[0].Tests.Failed)
}

// TestBestOfN_WinnerPositionTracksGoodDiff is the S2 seed scenario:
// moving the fix to b1 or b2 moves the winner index accordingly.
func TestBestOfN_WinnerPositionTracksGoodDiff(t *testing.T) {
	for _, goodIdx := range []int{1, 2} {
		urls := []string{"http://b0", "http://b1", "http://b2"}
		diffs := map[string]string{
			"http://b0": "bad",
			"http://b1": "bad",
			"http://b2": "bad",
		}
		diffs[urls[goodIdx]] = "return a + b"
		gw := byURLGateway(diffs)
		tester := &fakeTester{runFn: func(diffs []string) (models.TestRunResult, error) {
			if diffs[0] == "return a + b" {
				return models.TestRunResult{Total: 1, Passed: 1, Failed: 0}, nil
			}
			return models.TestRunResult{Total: 1, Passed: 0, Failed: 1}, nil
		}}

		o := New(gw, tester, 1)
		result, err := o.BestOfN(context.Background(), "fix add", urls)
		require.NoError(t, err)
		assert.Equal(t, goodIdx, result.WinnerIndex)
	}
}

func TestBestOfN_BuilderFailureIsSentinelAndDoesNotWin(t *testing.T) {
	urls := []string{"http://b0", "http://b1"}
	gw := &fakeGateway{implementFn: func(url, task string) (agent.ImplementResult, error) {
		if url == "http://b0" {
			return agent.ImplementResult{}, errBoom
		}
		return agent.ImplementResult{Diff: "fine"}, nil
	}}
	tester := &fakeTester{}

	o := New(gw, tester, 1)
	result, err := o.BestOfN(context.Background(), "task", urls)
	require.NoError(t, err)
	assert.Equal(t, 1, result.WinnerIndex)
	assert.True(t, result.Candidates[0].Tests.IsSentinel())
	assert.NotEmpty(t, result.Candidates[0].BuilderError)
}

func TestBestOfN_AllBuildersFailedIsFatal(t *testing.T) {
	urls := []string{"http://b0", "http://b1"}
	gw := &fakeGateway{implementFn: func(url, task string) (agent.ImplementResult, error) {
		return agent.ImplementResult{}, errBoom
	}}
	tester := &fakeTester{}

	o := New(gw, tester, 1)
	_, err := o.BestOfN(context.Background(), "task", urls)
	require.Error(t, err)
	var pipeErr *PipelineError
	require.ErrorAs(t, err, &pipeErr)
	assert.Equal(t, "base", pipeErr.Stage)
}

func TestBestOfN_AllBuildersSameDiffPicksIndexZero(t *testing.T) {
	urls := []string{"http://b0", "http://b1", "http://b2"}
	gw := byURLGateway(map[string]string{
		"http://b0": "same", "http://b1": "same", "http://b2": "same",
	})
	tester := &fakeTester{runFn: func(diffs []string) (models.TestRunResult, error) {
		return models.TestRunResult{Total: 1, Passed: 1, Failed: 0}, nil
	}}

	o := New(gw, tester, 1)
	result, err := o.BestOfN(context.Background(), "task", urls)
	require.NoError(t, err)
	assert.Equal(t, 0, result.WinnerIndex)
}

func TestBestOfN_PreservesCandidateOrderRegardlessOfCompletionOrder(t *testing.T) {
	urls := []string{"http://slow", "http://fast"}
	gw := &fakeGateway{implementFn: func(url, task string) (agent.ImplementResult, error) {
		return agent.ImplementResult{Diff: url}, nil
	}}
	tester := &fakeTester{runFn: func(diffs []string) (models.TestRunResult, error) {
		return models.TestRunResult{Total: 1, Passed: 1}, nil
	}}

	o := New(gw, tester, 2)
	result, err := o.BestOfN(context.Background(), "task", urls)
	require.NoError(t, err)
	require.Len(t, result.Candidates, 2)
	assert.Equal(t, "http://slow", result.Candidates[0].Diff)
	assert.Equal(t, "http://fast", result.Candidates[1].Diff)
}
