package research

import (
	"context"
	"fmt"

	"github.com/Dentikka/deep-research/internal/store"
)

// Action is the outcome of a transition decision after a search step.
type Action int

const (
	// ActionAdvance moves on to the next plan step.
	ActionAdvance Action = iota
	// ActionRefine re-runs the current step with operator feedback.
	ActionRefine
	// ActionFinish skips the remaining steps and goes straight to the report.
	ActionFinish
)

// Decision pairs an action with the operator feedback that accompanies a
// refine.
type Decision struct {
	Action   Action
	Feedback string
}

// DecisionSource supplies decisions for the interactive policy.
type DecisionSource interface {
	Decide(ctx context.Context, s *store.Session) (Decision, error)
}

// TransitionPolicy decides how the session moves after each search step.
// AutoPolicy and InteractivePolicy are interchangeable at the orchestrator
// boundary.
type TransitionPolicy interface {
	Next(ctx context.Context, s *store.Session) (Decision, error)
}

// AutoPolicy always advances to the next plan step.
type AutoPolicy struct{}

func (AutoPolicy) Next(context.Context, *store.Session) (Decision, error) {
	return Decision{Action: ActionAdvance}, nil
}

// InteractivePolicy defers to an external decision source, typically the
// operator at a terminal.
type InteractivePolicy struct {
	Source DecisionSource
}

func (p InteractivePolicy) Next(ctx context.Context, s *store.Session) (Decision, error) {
	return p.Source.Decide(ctx, s)
}

// AnalyzeExecutor applies the transition policy: advance to the next step,
// stay put for a refined re-search, or finish early.
type AnalyzeExecutor struct {
	Policy TransitionPolicy
}

func (e *AnalyzeExecutor) Run(ctx context.Context, s *store.Session) error {
	if s.Status.Terminal() {
		return nil
	}

	d, err := e.Policy.Next(ctx, s)
	if err != nil {
		return fmt.Errorf("transition decision: %w", err)
	}

	// Whatever the decision, the next search belongs to a new round.
	s.StepSearched = false

	switch d.Action {
	case ActionRefine:
		// CurrentStep stays put; the next search re-runs the same step
		// with the feedback attached.
		s.UserFeedback = d.Feedback
	case ActionFinish:
		s.Status = store.StatusReadyForReport
	default:
		s.CurrentStep++
		if s.CurrentStep >= len(s.Plan) {
			s.Status = store.StatusReadyForReport
		}
	}

	s.Touch()
	return nil
}
