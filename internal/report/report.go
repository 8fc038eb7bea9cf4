// Package report renders a finished research session into a markdown
// document and writes the artifact to disk.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/Dentikka/deep-research/internal/store"
)

const (
	maxReportFindings = 15
	excerptLen        = 500
)

// Renderer builds the report text and persists it under the output
// directory. Format selects which artifacts are written: "markdown",
// "json" or "both".
type Renderer struct {
	OutputDir string
	Format    string
}

func NewRenderer(outputDir, format string) *Renderer {
	if outputDir == "" {
		outputDir = "outputs"
	}
	if format == "" {
		format = "both"
	}
	return &Renderer{OutputDir: outputDir, Format: format}
}

// Render produces the markdown report. It is deterministic for a given
// session: findings are ordered by score descending, ties keep insertion
// order.
func (r *Renderer) Render(s *store.Session) (string, error) {
	sorted := make([]store.Finding, len(s.Findings))
	copy(sorted, s.Findings)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})

	var b strings.Builder
	fmt.Fprintf(&b, "# Research Report: %s\n\n", s.Query)
	fmt.Fprintf(&b, "**Session ID:** %s  \n", s.ID)
	fmt.Fprintf(&b, "**Generated:** %s  \n", s.UpdatedAt.Format("2006-01-02 15:04"))
	fmt.Fprintf(&b, "**Sources found:** %d\n\n", len(s.Findings))

	fmt.Fprintf(&b, "## Summary\n\nResearch on %q covered %d directions.\n\n", s.Query, len(s.Plan))

	b.WriteString("## Findings\n\n")
	for i, f := range sorted {
		if i >= maxReportFindings {
			break
		}
		fmt.Fprintf(&b, "### %d. %s\n\n", i+1, f.Title)
		fmt.Fprintf(&b, "- **Source:** %s\n", f.Source)
		fmt.Fprintf(&b, "- **URL:** %s\n", f.URL)
		fmt.Fprintf(&b, "- **Relevance:** %.3f\n\n", f.Score)
		b.WriteString(excerpt(f.Content))
		b.WriteString("\n\n---\n\n")
	}

	raw, err := json.MarshalIndent(map[string]any{
		"query":          s.Query,
		"plan":           s.Plan,
		"total_findings": len(s.Findings),
		"search_calls":   s.SearchCalls,
		"total_tokens":   s.TotalTokens,
	}, "", "  ")
	if err != nil {
		return "", err
	}
	fmt.Fprintf(&b, "## Raw Data\n\n```json\n%s\n```\n", raw)

	return b.String(), nil
}

// PersistArtifact writes the report files and returns the markdown path, or
// the json path when markdown output is disabled.
func (r *Renderer) PersistArtifact(text string, s *store.Session) (string, error) {
	if err := os.MkdirAll(r.OutputDir, 0755); err != nil {
		return "", err
	}

	base := s.ID + "_" + slug(s.Query)
	var path string

	if r.Format == "markdown" || r.Format == "both" {
		mdPath := filepath.Join(r.OutputDir, base+".md")
		if err := os.WriteFile(mdPath, []byte(text), 0644); err != nil {
			return "", err
		}
		path = mdPath
	}

	if r.Format == "json" || r.Format == "both" {
		dump, err := json.MarshalIndent(s, "", "  ")
		if err != nil {
			return "", err
		}
		jsonPath := filepath.Join(r.OutputDir, base+".json")
		if err := os.WriteFile(jsonPath, dump, 0644); err != nil {
			return "", err
		}
		if path == "" {
			path = jsonPath
		}
	}

	return path, nil
}

func excerpt(content string) string {
	if len(content) > excerptLen {
		return truncateRunes(content, excerptLen) + "..."
	}
	return content
}

// truncateRunes cuts s to at most n bytes without splitting a rune.
func truncateRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// slug turns the leading words of the query into a filename-safe suffix.
func slug(query string) string {
	query = truncateRunes(query, 30)
	var b strings.Builder
	for _, r := range query {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			b.WriteByte('_')
		}
	}
	return b.String()
}
