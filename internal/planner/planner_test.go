package planner

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/tmc/langchaingo/llms"
)

func TestTemplatePlannerDefaultSteps(t *testing.T) {
	p := NewTemplatePlanner()

	steps, tokens, err := p.GeneratePlan(context.Background(), "graph databases")
	if err != nil {
		t.Fatal(err)
	}
	if tokens != 0 {
		t.Errorf("tokens = %d, want 0", tokens)
	}
	if len(steps) != 3 {
		t.Fatalf("len(steps) = %d, want 3", len(steps))
	}
	for i, step := range steps {
		if !strings.Contains(step, "graph databases") {
			t.Errorf("step %d missing query: %q", i, step)
		}
		if strings.Contains(step, "{query}") {
			t.Errorf("step %d has unexpanded placeholder: %q", i, step)
		}
	}
}

func TestLoadTemplatePlannerFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.yaml")
	content := `steps:
  - "History of '{query}'"
  - "Open problems around '{query}'"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	p, err := LoadTemplatePlanner(path)
	if err != nil {
		t.Fatal(err)
	}

	steps, _, err := p.GeneratePlan(context.Background(), "CRDTs")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"History of 'CRDTs'", "Open problems around 'CRDTs'"}
	if !reflect.DeepEqual(steps, want) {
		t.Errorf("steps = %v, want %v", steps, want)
	}
}

func TestLoadTemplatePlannerRejectsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.yaml")
	if err := os.WriteFile(path, []byte("steps: []\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadTemplatePlanner(path); err == nil {
		t.Error("expected error for template without steps")
	}
}

func TestParseSteps(t *testing.T) {
	cases := []struct {
		name    string
		content string
		want    []string
	}{
		{
			name:    "numbered",
			content: "1. First question\n2. Second question\n3. Third question",
			want:    []string{"First question", "Second question", "Third question"},
		},
		{
			name:    "bulleted with blanks",
			content: "- alpha\n\n* beta\n",
			want:    []string{"alpha", "beta"},
		},
		{
			name:    "parenthesized numbers",
			content: "1) one\n2) two",
			want:    []string{"one", "two"},
		},
		{
			name:    "plain lines pass through",
			content: "just a question",
			want:    []string{"just a question"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := parseSteps(tc.content); !reflect.DeepEqual(got, tc.want) {
				t.Errorf("parseSteps(%q) = %v, want %v", tc.content, got, tc.want)
			}
		})
	}
}

type fakeModel struct {
	content string
	info    map[string]any
}

func (m *fakeModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{
			{Content: m.content, GenerationInfo: m.info},
		},
	}, nil
}

func (m *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return m.content, nil
}

func TestLLMPlannerParsesModelOutput(t *testing.T) {
	model := &fakeModel{
		content: "1. What are graph databases?\n2. How do they index edges?\n3. Which engines lead the field?",
		info:    map[string]any{"PromptTokens": 20, "CompletionTokens": 35},
	}
	p := NewLLMPlanner(model, nil)

	steps, tokens, err := p.GeneratePlan(context.Background(), "graph databases")
	if err != nil {
		t.Fatal(err)
	}
	if len(steps) != 3 {
		t.Fatalf("len(steps) = %d, want 3", len(steps))
	}
	if steps[0] != "What are graph databases?" {
		t.Errorf("steps[0] = %q", steps[0])
	}
	if tokens != 55 {
		t.Errorf("tokens = %d, want 55", tokens)
	}
}
