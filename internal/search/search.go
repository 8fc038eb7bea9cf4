// Package search implements the web-search collaborators that turn plan
// steps into findings.
package search

import (
	"context"
	"strings"

	"github.com/Dentikka/deep-research/internal/store"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Provider mirrors the orchestrator's search contract so wrappers in this
// package can stack.
type Provider interface {
	Search(ctx context.Context, subQuery, feedback string) ([]store.Finding, error)
}

// composeQuery appends the operator's refinement note to the sub-query.
func composeQuery(subQuery, feedback string) string {
	feedback = strings.TrimSpace(feedback)
	if feedback == "" {
		return subQuery
	}
	return subQuery + " " + feedback
}
