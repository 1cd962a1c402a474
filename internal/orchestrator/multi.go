package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/agentwrangler/awcore/pkg/models"
)

// MultiOpts configures one run of the multi-agent pipeline. The URL
// slices are the agents selected for this run (the HTTP surface passes
// a request-sized prefix of each configured pool); only PlanURLs[0] and
// ReviewURLs[0] are used (review is skipped entirely when ReviewURLs
// is empty).
type MultiOpts struct {
	Task                    string
	PlanURLs                []string
	BuilderURLs             []string
	ReviewURLs              []string
	SpecialistsPerComponent int
}

// Multi runs the full architect -> base best-of-N -> specialist sweep
// -> reviewer pipeline described by the specification.
func (o *Orchestrator) Multi(ctx context.Context, opts MultiOpts) (models.MultiBridgeResult, error) {
	if len(opts.PlanURLs) == 0 {
		return models.MultiBridgeResult{}, &PipelineError{Stage: "plan", Err: errors.New("no plan agent configured")}
	}
	if len(opts.BuilderURLs) == 0 {
		return models.MultiBridgeResult{}, &PipelineError{Stage: "base", Err: errors.New("no builder agents configured")}
	}

	plan, err := o.Gateway.Plan(ctx, opts.PlanURLs[0], opts.Task)
	if err != nil {
		return models.MultiBridgeResult{}, &PipelineError{Stage: "plan", Err: err}
	}

	base, err := o.BestOfN(ctx, opts.Task, opts.BuilderURLs)
	if err != nil {
		return models.MultiBridgeResult{}, err
	}

	winnerDiff := base.Candidates[base.WinnerIndex].Diff
	accepted := []string{winnerDiff}
	current, err := o.Tester.Run(ctx, accepted)
	if err != nil {
		return models.MultiBridgeResult{}, &PipelineError{Stage: "base", Err: err}
	}

	for _, component := range plan.Components {
		for s := 0; s < opts.SpecialistsPerComponent; s++ {
			if err := ctx.Err(); err != nil {
				return models.MultiBridgeResult{
					Plan:          plan,
					Base:          base,
					AcceptedDiffs: accepted,
					FinalTests:    current,
					Review:        models.Review{Score: 0, Rationale: "unavailable: pipeline cancelled"},
				}, nil
			}

			prompt := specialistPrompt(component)
			builderIdx := (len(accepted) + s) % len(opts.BuilderURLs)
			url := opts.BuilderURLs[builderIdx]

			impl, err := o.Gateway.Implement(ctx, url, prompt)
			if err != nil {
				continue
			}

			trial := append(append([]string{}, accepted...), impl.Diff)
			tr, err := o.Tester.Run(ctx, trial)
			if err != nil {
				continue
			}

			if accepts(tr, current) {
				accepted = trial
				current = tr
			}
		}
	}

	review := models.Review{Score: 0, Rationale: "unavailable: no reviewer configured"}
	if len(opts.ReviewURLs) > 0 {
		r, err := o.Gateway.Review(ctx, opts.ReviewURLs[0], opts.Task, accepted)
		if err != nil {
			review = models.Review{Score: 0, Rationale: fmt.Sprintf("unavailable: %v", err)}
		} else {
			review = r
		}
	}

	return models.MultiBridgeResult{
		Plan:          plan,
		Base:          base,
		AcceptedDiffs: accepted,
		FinalTests:    current,
		Review:        review,
	}, nil
}

// accepts implements the greedy monotone non-degradation predicate: a
// trial is accepted only if it strictly reduces failures, or ties on
// failures while not reducing the passed count.
func accepts(trial, current models.TestRunResult) bool {
	if trial.Failed < current.Failed {
		return true
	}
	return trial.Failed == current.Failed && trial.Passed >= current.Passed
}

// specialistPrompt renders the exact prompt string the spec names for
// a specialist sweep over a component.
func specialistPrompt(c models.Component) string {
	files := "any"
	if len(c.TargetFiles) > 0 {
		files = strings.Join(c.TargetFiles, ", ")
	}
	return fmt.Sprintf("Implement specialized improvements for component '%s', focus files: %s.", c.Name, files)
}
