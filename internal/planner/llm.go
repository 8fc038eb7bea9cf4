// Package planner provides plan-generation collaborators for the research
// orchestrator: an LLM-backed planner and an offline template planner.
package planner

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/Dentikka/deep-research/internal/observability"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/schema"
)

const planPrompt = `You are a research planner. Break the user's research query into
3 to 5 concrete sub-questions that can each be answered with a web search.
Return ONLY the sub-questions, one per line, numbered "1." onwards.`

// LLMPlanner asks a language model to decompose the query into sub-queries.
type LLMPlanner struct {
	Model llms.Model
	Log   *observability.Logger
}

func NewLLMPlanner(model llms.Model, log *observability.Logger) *LLMPlanner {
	return &LLMPlanner{Model: model, Log: log}
}

func (p *LLMPlanner) GeneratePlan(ctx context.Context, query string) ([]string, int, error) {
	messages := []llms.MessageContent{
		{
			Role:  schema.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(planPrompt)},
		},
		{
			Role:  schema.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(query)},
		},
	}

	resp, err := p.Model.GenerateContent(ctx, messages)
	if err != nil {
		return nil, 0, err
	}
	if len(resp.Choices) == 0 {
		return nil, 0, errors.New("planner model returned no choices")
	}

	choice := resp.Choices[0]
	if p.Log != nil {
		p.Log.LogLLM("planner", query, choice.Content)
	}

	return parseSteps(choice.Content), tokenUsage(choice.GenerationInfo), nil
}

var stepPrefix = regexp.MustCompile(`^(\d+[.)]|[-*])\s*`)

// parseSteps pulls the numbered or bulleted lines out of the model
// response.
func parseSteps(content string) []string {
	var steps []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		line = strings.TrimSpace(stepPrefix.ReplaceAllString(line, ""))
		if line != "" {
			steps = append(steps, line)
		}
	}
	return steps
}

func tokenUsage(info map[string]any) int {
	total := 0
	for _, key := range []string{"PromptTokens", "CompletionTokens"} {
		if v, ok := info[key].(int); ok {
			total += v
		}
	}
	return total
}
