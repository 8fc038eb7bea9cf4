package planner

import (
	"context"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// TemplatePlanner produces a fixed-shape plan without calling a model. The
// default three steps sweep overview, analysis and practice; a YAML
// template file can replace them.
type TemplatePlanner struct {
	Steps []string
}

var defaultSteps = []string{
	"Overview: key concepts and definitions for '{query}'",
	"Analysis: comparison of approaches and methodologies for '{query}'",
	"Practice: implementations, code and case studies for '{query}'",
}

func NewTemplatePlanner() *TemplatePlanner {
	return &TemplatePlanner{Steps: defaultSteps}
}

// LoadTemplatePlanner reads step templates from a YAML file with a
// top-level "steps" list. "{query}" inside a step expands to the session
// query.
func LoadTemplatePlanner(path string) (*TemplatePlanner, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var doc struct {
		Steps []string `yaml:"steps"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse plan template %s: %w", path, err)
	}
	if len(doc.Steps) == 0 {
		return nil, fmt.Errorf("plan template %s has no steps", path)
	}
	return &TemplatePlanner{Steps: doc.Steps}, nil
}

func (p *TemplatePlanner) GeneratePlan(_ context.Context, query string) ([]string, int, error) {
	steps := make([]string, len(p.Steps))
	for i, tpl := range p.Steps {
		steps[i] = strings.ReplaceAll(tpl, "{query}", query)
	}
	return steps, 0, nil
}
