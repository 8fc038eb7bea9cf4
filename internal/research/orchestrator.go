package research

import (
	"context"
	"fmt"

	"github.com/Dentikka/deep-research/internal/observability"
	"github.com/Dentikka/deep-research/internal/store"
)

// Orchestrator drives the plan -> (search -> analyze)* -> report loop,
// checkpointing after every executor call so a crash between two steps
// loses at most one step of work.
type Orchestrator struct {
	Store   Checkpointer
	Plan    *PlanExecutor
	Search  *SearchExecutor
	Analyze *AnalyzeExecutor
	Report  *ReportExecutor
	Log     *observability.Logger
	Console *observability.Console
}

func NewOrchestrator(cp Checkpointer, planner Planner, provider SearchProvider, renderer Renderer, policy TransitionPolicy, gate ApprovalGate, log *observability.Logger) *Orchestrator {
	return &Orchestrator{
		Store:   cp,
		Plan:    &PlanExecutor{Planner: planner, Gate: gate},
		Search:  &SearchExecutor{Provider: provider, Log: log},
		Analyze: &AnalyzeExecutor{Policy: policy},
		Report:  &ReportExecutor{Renderer: renderer},
		Log:     log,
	}
}

// Start creates a fresh session for the query and runs it to a terminal
// status.
func (o *Orchestrator) Start(ctx context.Context, query string) (*store.Session, error) {
	return o.run(ctx, store.NewSession(query))
}

// Resume reloads a persisted session and re-enters the loop where it left
// off. Terminal sessions are returned unchanged; an unknown id surfaces
// store.ErrNotFound.
func (o *Orchestrator) Resume(ctx context.Context, id string) (*store.Session, error) {
	s, err := o.Store.Load(id)
	if err != nil {
		return nil, err
	}
	if s.Status.Terminal() {
		return s, nil
	}
	return o.run(ctx, s)
}

// run always returns the session, even on error, so the caller can retry a
// failed checkpoint save without recomputing the step.
func (o *Orchestrator) run(ctx context.Context, s *store.Session) (*store.Session, error) {
	if s.Status == store.StatusActive && len(s.Plan) == 0 {
		if err := o.Plan.Run(ctx, s); err != nil {
			return s, err
		}
		if o.Log != nil {
			o.Log.LogPlan(s.ID, s.Plan)
		}
		if err := o.persist(s); err != nil {
			return s, err
		}
	}

	for s.Status == store.StatusActive {
		if s.CurrentStep >= len(s.Plan) {
			// A checkpoint whose step index ran past the plan means the
			// record is stale or was written by a newer step than its
			// status; the plan is exhausted either way.
			if s.CurrentStep > len(s.Plan) {
				s.CurrentStep = len(s.Plan)
			}
			s.Status = store.StatusReadyForReport
			s.Touch()
			if err := o.persist(s); err != nil {
				return s, err
			}
			break
		}

		// A resumed session whose checkpoint already holds this step's
		// findings goes straight to analysis.
		if !s.StepSearched {
			o.Console.PrintStep(s.CurrentStep+1, len(s.Plan), s.Plan[s.CurrentStep])
			before := len(s.Findings)
			if err := o.Search.Run(ctx, s); err != nil {
				return s, err
			}
			if err := o.persist(s); err != nil {
				return s, err
			}
			if o.Log != nil {
				o.Log.LogSearch(s.ID, s.CurrentStep, len(s.Findings)-before)
			}
			o.Console.PrintFindings(len(s.Findings)-before, len(s.Findings))
		}

		if err := o.Analyze.Run(ctx, s); err != nil {
			return s, err
		}
		if err := o.persist(s); err != nil {
			return s, err
		}
	}

	if err := o.Report.Run(ctx, s); err != nil {
		return s, err
	}
	if err := o.persist(s); err != nil {
		return s, err
	}
	if s.Status == store.StatusCompleted {
		if o.Log != nil {
			o.Log.LogReport(s.ID, s.ReportPath)
		}
		o.Console.PrintReportSaved(s.ReportPath)
	}

	return s, nil
}

func (o *Orchestrator) persist(s *store.Session) error {
	if err := o.Store.Save(s); err != nil {
		return fmt.Errorf("checkpoint save: %w", err)
	}
	return nil
}
