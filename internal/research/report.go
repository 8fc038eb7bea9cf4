package research

import (
	"context"
	"fmt"

	"github.com/Dentikka/deep-research/internal/store"
)

// ReportExecutor renders and persists the final report. It is the only
// executor allowed to mark a session completed; cancelled sessions pass
// through untouched and never get a report.
type ReportExecutor struct {
	Renderer Renderer
}

func (e *ReportExecutor) Run(ctx context.Context, s *store.Session) error {
	if s.Status.Terminal() {
		return nil
	}

	text, err := e.Renderer.Render(s)
	if err != nil {
		return fmt.Errorf("report rendering: %w", err)
	}
	path, err := e.Renderer.PersistArtifact(text, s)
	if err != nil {
		return fmt.Errorf("report artifact: %w", err)
	}

	s.FinalReport = text
	s.ReportPath = path
	s.Status = store.StatusCompleted
	s.Touch()
	return nil
}
