// Package governance gates generated research plans before any search runs.
package governance

import (
	"context"
	"fmt"
	"regexp"
)

// Effect defines the result of a policy evaluation.
type Effect string

const (
	EffectAllow Effect = "allow"
	EffectDeny  Effect = "deny"
)

// Result contains the outcome of a policy evaluation.
type Result struct {
	Effect Effect
	Reason string
}

// PolicyEngine evaluates a generated plan against a set of rules.
type PolicyEngine interface {
	Evaluate(ctx context.Context, plan []string) (Result, error)
}

// DefaultPolicyEngine denies plans whose steps match a restricted pattern
// and allows everything else.
type DefaultPolicyEngine struct {
	DeniedPatterns []*regexp.Regexp
}

func NewDefaultPolicyEngine() *DefaultPolicyEngine {
	return &DefaultPolicyEngine{
		DeniedPatterns: make([]*regexp.Regexp, 0),
	}
}

func (e *DefaultPolicyEngine) DenyPattern(pattern string) error {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return err
	}
	e.DeniedPatterns = append(e.DeniedPatterns, re)
	return nil
}

func (e *DefaultPolicyEngine) Evaluate(ctx context.Context, plan []string) (Result, error) {
	for _, step := range plan {
		for _, re := range e.DeniedPatterns {
			if re.MatchString(step) {
				return Result{
					Effect: EffectDeny,
					Reason: fmt.Sprintf("Plan step matches restricted pattern: %s", re.String()),
				}, nil
			}
		}
	}

	return Result{
		Effect: EffectAllow,
		Reason: "Approved by default policy",
	}, nil
}
