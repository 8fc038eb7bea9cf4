package research

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dentikka/deep-research/internal/governance"
	"github.com/Dentikka/deep-research/internal/observability"
	"github.com/Dentikka/deep-research/internal/store"
)

// ErrEmptyPlan reports a plan provider that returned zero steps. The session
// is left unplanned so the caller may retry.
var ErrEmptyPlan = errors.New("plan provider returned no steps")

// ApprovalGate decides whether a freshly generated plan may run. A false
// verdict cancels the session.
type ApprovalGate interface {
	Approve(ctx context.Context, s *store.Session) (bool, error)
}

// GateChain runs gates in order; the first rejection wins.
type GateChain []ApprovalGate

func (g GateChain) Approve(ctx context.Context, s *store.Session) (bool, error) {
	for _, gate := range g {
		ok, err := gate.Approve(ctx, s)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// PolicyGate rejects plans containing a step the policy engine denies.
type PolicyGate struct {
	Engine governance.PolicyEngine
	Log    *observability.Logger
}

func (g PolicyGate) Approve(ctx context.Context, s *store.Session) (bool, error) {
	res, err := g.Engine.Evaluate(ctx, s.Plan)
	if err != nil {
		return false, err
	}
	if res.Effect == governance.EffectDeny {
		if g.Log != nil {
			g.Log.LogError(s.ID, "plan_gate", errors.New(res.Reason))
		}
		return false, nil
	}
	return true, nil
}

// PlanExecutor fills an empty session plan via the plan provider and passes
// it through the approval gate. Running it on an already planned session is
// a no-op, which keeps resume safe.
type PlanExecutor struct {
	Planner Planner
	Gate    ApprovalGate
	Console *observability.Console
}

func (e *PlanExecutor) Run(ctx context.Context, s *store.Session) error {
	if s.Status.Terminal() || len(s.Plan) > 0 {
		return nil
	}

	steps, tokens, err := e.Planner.GeneratePlan(ctx, s.Query)
	if err != nil {
		return fmt.Errorf("plan generation: %w", err)
	}
	if len(steps) == 0 {
		return ErrEmptyPlan
	}

	s.Plan = steps
	s.TotalTokens += tokens

	e.Console.PrintPlan(s.ID, s.Query, s.Plan)

	if e.Gate != nil {
		ok, err := e.Gate.Approve(ctx, s)
		if err != nil {
			return fmt.Errorf("plan approval: %w", err)
		}
		if !ok {
			s.Status = store.StatusCancelled
		}
	}

	s.Touch()
	return nil
}
