package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/Dentikka/deep-research/internal/store"
)

func sampleSession() *store.Session {
	s := store.NewSession("graph databases")
	s.Plan = []string{"overview", "comparison", "practice"}
	s.Findings = []store.Finding{
		{Source: "tavily", URL: "https://example.com/low", Title: "Low relevance", Content: "low", Score: 0.2},
		{Source: "tavily", URL: "https://example.com/high", Title: "High relevance", Content: "high", Score: 0.9},
	}
	s.SearchCalls = 3
	return s
}

func TestRenderOrdersFindingsByScore(t *testing.T) {
	r := NewRenderer(t.TempDir(), "both")

	text, err := r.Render(sampleSession())
	if err != nil {
		t.Fatal(err)
	}

	high := strings.Index(text, "High relevance")
	low := strings.Index(text, "Low relevance")
	if high < 0 || low < 0 {
		t.Fatalf("findings missing from report:\n%s", text)
	}
	if high > low {
		t.Error("findings not sorted by score descending")
	}
	if !strings.Contains(text, "# Research Report: graph databases") {
		t.Error("missing title")
	}
	if !strings.Contains(text, `"search_calls": 3`) {
		t.Error("missing raw data block")
	}
}

func TestRenderIsDeterministic(t *testing.T) {
	r := NewRenderer(t.TempDir(), "both")
	s := sampleSession()

	a, err := r.Render(s)
	if err != nil {
		t.Fatal(err)
	}
	b, err := r.Render(s)
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Error("render not deterministic for identical session")
	}
}

func TestRenderTruncatesLongContent(t *testing.T) {
	r := NewRenderer(t.TempDir(), "both")
	s := sampleSession()
	s.Findings[0].Content = strings.Repeat("x", 600)

	text, err := r.Render(s)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(text, strings.Repeat("x", 500)+"...") {
		t.Error("long content not truncated to excerpt")
	}
	if strings.Contains(text, strings.Repeat("x", 501)) {
		t.Error("excerpt exceeds limit")
	}
}

func TestExcerptKeepsRuneBoundaries(t *testing.T) {
	// 3-byte runes: the byte limit lands mid-rune and must back up.
	got := excerpt(strings.Repeat("語", 200))
	if !utf8.ValidString(got) {
		t.Error("excerpt produced invalid UTF-8")
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("excerpt not truncated: %q", got)
	}
	if len(got) > excerptLen+3 {
		t.Errorf("excerpt is %d bytes, want at most %d", len(got), excerptLen+3)
	}
}

func TestRenderMultiByteContentIsValidUTF8(t *testing.T) {
	r := NewRenderer(t.TempDir(), "both")
	s := sampleSession()
	s.Query = "графовые базы данных"
	s.Findings[0].Content = strings.Repeat("данные о графах ", 50)

	text, err := r.Render(s)
	if err != nil {
		t.Fatal(err)
	}
	if !utf8.ValidString(text) {
		t.Error("report contains invalid UTF-8")
	}
}

func TestPersistArtifactWritesBothFormats(t *testing.T) {
	dir := t.TempDir()
	r := NewRenderer(dir, "both")
	s := sampleSession()

	path, err := r.PersistArtifact("# report", s)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Ext(path) != ".md" {
		t.Errorf("returned path = %q, want markdown", path)
	}
	if !strings.Contains(filepath.Base(path), "graph_databases") {
		t.Errorf("path missing query slug: %q", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "# report" {
		t.Errorf("markdown content = %q", data)
	}

	jsonPath := strings.TrimSuffix(path, ".md") + ".json"
	if _, err := os.Stat(jsonPath); err != nil {
		t.Errorf("json artifact missing: %v", err)
	}
}

func TestPersistArtifactJSONOnly(t *testing.T) {
	r := NewRenderer(t.TempDir(), "json")

	path, err := r.PersistArtifact("# report", sampleSession())
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Ext(path) != ".json" {
		t.Errorf("returned path = %q, want json", path)
	}
}
