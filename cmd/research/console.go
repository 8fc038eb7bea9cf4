package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/Dentikka/deep-research/internal/research"
	"github.com/Dentikka/deep-research/internal/store"
)

// consolePrompter asks the operator for plan approval and step decisions
// over stdin. It implements both research.ApprovalGate and
// research.DecisionSource.
type consolePrompter struct {
	in *bufio.Reader
}

func newConsolePrompter() *consolePrompter {
	return &consolePrompter{in: bufio.NewReader(os.Stdin)}
}

func (p *consolePrompter) readLine(prompt string) (string, error) {
	fmt.Print(prompt)
	line, err := p.in.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Approve asks whether the generated plan, already printed by the plan
// step, should run.
func (p *consolePrompter) Approve(ctx context.Context, s *store.Session) (bool, error) {
	answer, err := p.readLine("Continue with this plan? [y/n]: ")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "", "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// Decide maps the operator's menu choice onto a transition decision.
func (p *consolePrompter) Decide(ctx context.Context, s *store.Session) (research.Decision, error) {
	fmt.Println("\nActions:")
	fmt.Println("  [1] Continue to the next step")
	fmt.Println("  [2] Refine the query and search again")
	fmt.Println("  [3] Finish and generate the report")

	choice, err := p.readLine("Choice (1-3): ")
	if err != nil {
		return research.Decision{}, err
	}

	switch choice {
	case "2":
		feedback, err := p.readLine("Refinement: ")
		if err != nil {
			return research.Decision{}, err
		}
		return research.Decision{Action: research.ActionRefine, Feedback: feedback}, nil
	case "3":
		return research.Decision{Action: research.ActionFinish}, nil
	default:
		return research.Decision{Action: research.ActionAdvance}, nil
	}
}
