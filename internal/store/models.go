package store

import (
	"time"

	"github.com/google/uuid"
)

// Status tracks where a session is in the research lifecycle.
type Status string

const (
	StatusActive         Status = "active"
	StatusReadyForReport Status = "ready_for_report"
	StatusCancelled      Status = "cancelled"
	StatusCompleted      Status = "completed"
)

// Terminal reports whether the session may no longer be mutated.
func (s Status) Terminal() bool {
	return s == StatusCancelled || s == StatusCompleted
}

// Finding is one piece of retrieved evidence, owned by a single session.
type Finding struct {
	Source   string         `json:"source"`
	URL      string         `json:"url"`
	Title    string         `json:"title"`
	Content  string         `json:"content"`
	Score    float64        `json:"score"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Session is the unit of persistence and resumption.
type Session struct {
	ID        string    `json:"id"`
	Query     string    `json:"query"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Plan is set once by the plan step. CurrentStep indexes into it;
	// CurrentStep == len(Plan) means the plan is exhausted.
	Plan        []string  `json:"plan"`
	CurrentStep int       `json:"current_step"`
	Findings    []Finding `json:"findings"`

	// StepSearched marks that the current step's search already ran and
	// its findings are durable, so a resume goes straight to analysis
	// instead of searching the same step twice.
	StepSearched bool `json:"step_searched,omitempty"`

	Status       Status `json:"status"`
	UserFeedback string `json:"user_feedback,omitempty"`

	FinalReport string `json:"final_report,omitempty"`
	ReportPath  string `json:"report_path,omitempty"`

	SearchCalls int `json:"search_calls"`
	TotalTokens int `json:"total_tokens"`
}

// NewSession creates a fresh active session for the given query.
func NewSession(query string) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:        uuid.NewString()[:8],
		Query:     query,
		CreatedAt: now,
		UpdatedAt: now,
		Status:    StatusActive,
	}
}

// Touch refreshes the updated timestamp after a state-changing operation.
func (s *Session) Touch() {
	s.UpdatedAt = time.Now().UTC()
}

// Summary is the denormalized listing row kept alongside the session blob.
type Summary struct {
	ID        string
	Query     string
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
}
