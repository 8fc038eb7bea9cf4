package research

import (
	"context"

	"github.com/Dentikka/deep-research/internal/observability"
	"github.com/Dentikka/deep-research/internal/store"
)

// SearchExecutor runs the search collaborator against the current plan step
// and appends whatever comes back. It runs at most once per analysis round:
// StepSearched guards a resumed session against appending the same step's
// findings twice. Provider failures are absorbed as an empty result so a
// flaky provider never kills the session.
type SearchExecutor struct {
	Provider SearchProvider
	Log      *observability.Logger
}

func (e *SearchExecutor) Run(ctx context.Context, s *store.Session) error {
	if s.Status.Terminal() || s.StepSearched || s.CurrentStep >= len(s.Plan) {
		return nil
	}

	subQuery := s.Plan[s.CurrentStep]
	findings, err := e.Provider.Search(ctx, subQuery, s.UserFeedback)
	if err != nil {
		if e.Log != nil {
			e.Log.LogError(s.ID, "search", err)
		}
		findings = nil
	}

	s.Findings = append(s.Findings, findings...)
	s.SearchCalls++
	s.StepSearched = true
	s.Touch()
	return nil
}
