package research

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/Dentikka/deep-research/internal/store"
)

func TestPlanExecutorIsIdempotent(t *testing.T) {
	pl := &fakePlanner{steps: []string{"different", "plan"}}
	e := &PlanExecutor{Planner: pl}

	s := store.NewSession("q")
	s.Plan = []string{"original step"}
	s.CurrentStep = 1

	if err := e.Run(context.Background(), s); err != nil {
		t.Fatal(err)
	}
	if pl.calls != 0 {
		t.Errorf("planner called %d times on planned session", pl.calls)
	}
	if len(s.Plan) != 1 || s.Plan[0] != "original step" {
		t.Errorf("Plan = %v", s.Plan)
	}
	if s.CurrentStep != 1 || s.Status != store.StatusActive {
		t.Errorf("CurrentStep/Status changed: %d/%s", s.CurrentStep, s.Status)
	}
}

func TestPlanExecutorEmptyPlanIsContractViolation(t *testing.T) {
	e := &PlanExecutor{Planner: &fakePlanner{steps: nil}}
	s := store.NewSession("q")

	err := e.Run(context.Background(), s)
	if !errors.Is(err, ErrEmptyPlan) {
		t.Fatalf("expected ErrEmptyPlan, got %v", err)
	}
	if len(s.Plan) != 0 || s.Status != store.StatusActive {
		t.Errorf("session mutated on contract violation: %+v", s)
	}
}

func TestPlanExecutorProviderErrorSurfaces(t *testing.T) {
	wantErr := errors.New("model unavailable")
	e := &PlanExecutor{Planner: &fakePlanner{err: wantErr}}
	s := store.NewSession("q")

	err := e.Run(context.Background(), s)
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected wrapped provider error, got %v", err)
	}
	if len(s.Plan) != 0 {
		t.Errorf("Plan set despite provider error: %v", s.Plan)
	}
}

func TestSearchExecutorNoOpWhenPlanExhausted(t *testing.T) {
	fs := &fakeSearch{perStep: 2}
	e := &SearchExecutor{Provider: fs}

	s := store.NewSession("q")
	s.Plan = []string{"only step"}
	s.CurrentStep = 1

	if err := e.Run(context.Background(), s); err != nil {
		t.Fatal(err)
	}
	if len(fs.calls) != 0 || s.SearchCalls != 0 {
		t.Error("search ran past the end of the plan")
	}
}

func TestSearchExecutorRunsOncePerAnalysisRound(t *testing.T) {
	fs := &fakeSearch{perStep: 2}
	se := &SearchExecutor{Provider: fs}
	ae := &AnalyzeExecutor{Policy: AutoPolicy{}}

	s := store.NewSession("q")
	s.Plan = []string{"a", "b"}

	// A second search before analysis, as happens when a checkpoint is
	// reloaded mid-step, must not duplicate findings.
	for i := 0; i < 2; i++ {
		if err := se.Run(context.Background(), s); err != nil {
			t.Fatal(err)
		}
	}
	if s.SearchCalls != 1 || len(s.Findings) != 2 {
		t.Errorf("SearchCalls/Findings = %d/%d, want 1/2", s.SearchCalls, len(s.Findings))
	}

	if err := ae.Run(context.Background(), s); err != nil {
		t.Fatal(err)
	}
	if err := se.Run(context.Background(), s); err != nil {
		t.Fatal(err)
	}
	if s.SearchCalls != 2 || len(s.Findings) != 4 {
		t.Errorf("SearchCalls/Findings = %d/%d, want 2/4", s.SearchCalls, len(s.Findings))
	}
}

func TestAnalyzeAdvanceExhaustsPlan(t *testing.T) {
	e := &AnalyzeExecutor{Policy: AutoPolicy{}}

	s := store.NewSession("q")
	s.Plan = []string{"only step"}

	if err := e.Run(context.Background(), s); err != nil {
		t.Fatal(err)
	}
	if s.CurrentStep != 1 {
		t.Errorf("CurrentStep = %d, want 1", s.CurrentStep)
	}
	if s.Status != store.StatusReadyForReport {
		t.Errorf("Status = %s, want ready_for_report", s.Status)
	}
}

func TestAnalyzeDecisionErrorSurfaces(t *testing.T) {
	wantErr := errors.New("stdin closed")
	e := &AnalyzeExecutor{Policy: failingPolicy{err: wantErr}}

	s := store.NewSession("q")
	s.Plan = []string{"a", "b"}

	if err := e.Run(context.Background(), s); !errors.Is(err, wantErr) {
		t.Fatalf("expected wrapped decision error, got %v", err)
	}
	if s.CurrentStep != 0 || s.Status != store.StatusActive {
		t.Error("session mutated on decision error")
	}
}

type failingPolicy struct{ err error }

func (p failingPolicy) Next(context.Context, *store.Session) (Decision, error) {
	return Decision{}, p.err
}

func TestReportExecutorNoOpOnCancelled(t *testing.T) {
	r := &fakeRenderer{}
	e := &ReportExecutor{Renderer: r}

	s := store.NewSession("q")
	s.Plan = []string{"a"}
	s.Status = store.StatusCancelled

	if err := e.Run(context.Background(), s); err != nil {
		t.Fatal(err)
	}
	if r.renders != 0 {
		t.Error("renderer ran on cancelled session")
	}
	if s.FinalReport != "" || s.Status != store.StatusCancelled {
		t.Errorf("session mutated: %+v", s)
	}
}

func TestTerminalSessionsAreImmutable(t *testing.T) {
	for _, status := range []store.Status{store.StatusCancelled, store.StatusCompleted} {
		s := store.NewSession("q")
		s.Plan = []string{"a", "b"}
		s.CurrentStep = 1
		s.Findings = []store.Finding{{Source: "fake", Title: "t", Score: 0.5}}
		s.SearchCalls = 1
		s.Status = status

		before, err := json.Marshal(s)
		if err != nil {
			t.Fatal(err)
		}

		executors := []interface {
			Run(context.Context, *store.Session) error
		}{
			&PlanExecutor{Planner: &fakePlanner{steps: []string{"x"}}},
			&SearchExecutor{Provider: &fakeSearch{perStep: 1}},
			&AnalyzeExecutor{Policy: AutoPolicy{}},
			&ReportExecutor{Renderer: &fakeRenderer{}},
		}
		for _, e := range executors {
			if err := e.Run(context.Background(), s); err != nil {
				t.Fatalf("%s: executor errored: %v", status, err)
			}
		}

		after, err := json.Marshal(s)
		if err != nil {
			t.Fatal(err)
		}
		if string(before) != string(after) {
			t.Errorf("%s session mutated:\n before %s\n after  %s", status, before, after)
		}
	}
}

func TestGateChainFirstRejectionWins(t *testing.T) {
	s := store.NewSession("q")
	s.Plan = []string{"a"}

	ok, err := GateChain{staticGate(true), staticGate(false), staticGate(true)}.Approve(context.Background(), s)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("chain approved despite a rejecting gate")
	}

	ok, err = GateChain{staticGate(true), staticGate(true)}.Approve(context.Background(), s)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Error("chain rejected despite all gates approving")
	}
}
