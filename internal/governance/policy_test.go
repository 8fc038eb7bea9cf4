package governance

import (
	"context"
	"testing"
)

func TestDefaultPolicyEngine_Evaluate(t *testing.T) {
	engine := NewDefaultPolicyEngine()
	ctx := context.Background()

	// Test Allow (Default)
	plan1 := []string{"Overview: graph database concepts"}
	res1, err := engine.Evaluate(ctx, plan1)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if res1.Effect != EffectAllow {
		t.Errorf("Expected EffectAllow, got %s", res1.Effect)
	}

	// Test Deny
	if err := engine.DenyPattern(`(?i)credential\s+stuffing`); err != nil {
		t.Fatal(err)
	}
	plan2 := []string{
		"Overview: account security",
		"Practice: credential stuffing tooling",
	}
	res2, err := engine.Evaluate(ctx, plan2)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if res2.Effect != EffectDeny {
		t.Errorf("Expected EffectDeny, got %s", res2.Effect)
	}
	if res2.Reason == "" {
		t.Error("Expected a deny reason")
	}
}

func TestDefaultPolicyEngine_DenyPatternInvalid(t *testing.T) {
	engine := NewDefaultPolicyEngine()
	if err := engine.DenyPattern(`(`); err == nil {
		t.Error("Expected error for invalid pattern")
	}
}
