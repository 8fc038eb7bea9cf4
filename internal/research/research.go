// Package research implements the session state machine that drives an
// iterative research run: plan the sub-questions, then loop search and
// analyze with conditional loop-back, and finally emit a report. Every
// collaborator is injected, and the session is checkpointed after each
// step so a run can be suspended and resumed where it left off.
package research

import (
	"context"

	"github.com/Dentikka/deep-research/internal/store"
)

// Planner generates an ordered list of sub-queries for the session query.
// tokens reports LLM usage and is zero for offline planners.
type Planner interface {
	GeneratePlan(ctx context.Context, query string) (steps []string, tokens int, err error)
}

// SearchProvider retrieves evidence for one sub-query. feedback carries the
// operator's refinement note when the current step is being re-run.
type SearchProvider interface {
	Search(ctx context.Context, subQuery, feedback string) ([]store.Finding, error)
}

// Renderer turns a finished session into report text and writes the
// artifact out.
type Renderer interface {
	Render(s *store.Session) (string, error)
	PersistArtifact(report string, s *store.Session) (string, error)
}

// Checkpointer is the durable store consulted at every step boundary.
type Checkpointer interface {
	Save(s *store.Session) error
	Load(id string) (*store.Session, error)
}
