// Package models holds the data types shared across the sandboxed test
// runner, the agent gateway, and the orchestrator: the wire shapes that
// cross those package boundaries and the HTTP surface described by the
// specification.
package models

// Component is one unit of an architect's plan. It is purely advisory:
// the orchestrator only ever reads it to build a specialist prompt.
type Component struct {
	// Name identifies the component, e.g. "fix_add_function".
	Name string `json:"name"`
	// TargetFiles lists the files the component is expected to touch.
	// May be empty; specialist prompts render that as "any".
	TargetFiles []string `json:"target_files"`
}

// Plan is an architect's ordered breakdown of a task into components.
type Plan struct {
	Components []Component `json:"components"`
}

// TestRunResult is the aggregated outcome of running a target project's
// test suite inside a sandbox, after applying zero or more diffs.
type TestRunResult struct {
	Total      int    `json:"total"`
	Passed     int    `json:"passed"`
	Failed     int    `json:"failed"`
	ReturnCode int    `json:"return_code"`
	Stdout     string `json:"stdout"`
	Stderr     string `json:"stderr"`
}

// sentinelFailed marks a candidate whose builder call failed outright;
// it must never win a best-of-N selection. int's maximum value is used
// rather than a separate "errored" flag so the existing (failed, passed,
// index) tie-break order handles it without a special case.
const sentinelFailed = int(^uint(0) >> 1)

// SentinelTestRunResult returns the TestRunResult substituted for a
// candidate whose builder failed to produce a diff at all. Its Failed
// count is the maximum representable int so it can never win a
// best-of-N selection, per spec.
func SentinelTestRunResult(reason string) TestRunResult {
	return TestRunResult{
		Total:      0,
		Passed:     0,
		Failed:     sentinelFailed,
		ReturnCode: -1,
		Stderr:     reason,
	}
}

// IsSentinel reports whether tr is a sentinel produced for a failed builder.
func (tr TestRunResult) IsSentinel() bool {
	return tr.Failed == sentinelFailed
}

// Candidate is one builder's diff plus the measured outcome of testing
// it in isolation, produced during best-of-N selection.
type Candidate struct {
	Diff       string        `json:"diff"`
	Tests      TestRunResult `json:"tests"`
	BuilderURL string        `json:"builder_url"`
	Index      int           `json:"index"`
	// BuilderError holds the agent-gateway error, if the builder that
	// produced this candidate failed outright (Tests is then a sentinel).
	BuilderError string `json:"builder_error,omitempty"`
}

// Better reports whether candidate a should be preferred over candidate
// b under the spec's strict total order: smaller Failed wins; ties
// broken by larger Passed; further ties by smaller Index.
func Better(a, b Candidate) bool {
	if a.Tests.Failed != b.Tests.Failed {
		return a.Tests.Failed < b.Tests.Failed
	}
	if a.Tests.Passed != b.Tests.Passed {
		return a.Tests.Passed > b.Tests.Passed
	}
	return a.Index < b.Index
}

// BestOfNResult is the outcome of dispatching a task to N independent
// builders and selecting the best candidate by test quality.
type BestOfNResult struct {
	Candidates  []Candidate `json:"candidates"`
	WinnerIndex int         `json:"winner_index"`
}

// CandidateDiffs extracts the ordered diff text of every candidate, for
// JSON responses shaped as {candidate_diffs, candidate_tests, winner_index}.
func (r BestOfNResult) CandidateDiffs() []string {
	diffs := make([]string, len(r.Candidates))
	for i, c := range r.Candidates {
		diffs[i] = c.Diff
	}
	return diffs
}

// CandidateTests extracts the ordered test results of every candidate.
func (r BestOfNResult) CandidateTests() []TestRunResult {
	tests := make([]TestRunResult, len(r.Candidates))
	for i, c := range r.Candidates {
		tests[i] = c.Tests
	}
	return tests
}

// Review is a reviewer agent's verdict on a sequence of accepted diffs.
type Review struct {
	Score     float64 `json:"score"`
	Rationale string  `json:"rationale"`
}

// ClampScore returns s clamped to [0, 1], per the spec's ingest rule.
func ClampScore(s float64) float64 {
	if s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}

// MultiBridgeResult is the outcome of the full multi-agent pipeline:
// plan, base best-of-N selection, the greedily accepted diff sequence,
// its final test result, and the reviewer's verdict.
type MultiBridgeResult struct {
	Plan          Plan          `json:"plan"`
	Base          BestOfNResult `json:"base"`
	AcceptedDiffs []string      `json:"accepted_diffs"`
	FinalTests    TestRunResult `json:"final_tests"`
	Review        Review        `json:"review"`
}
