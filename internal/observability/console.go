package observability

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Console prints human-readable progress for a research run. All methods
// accept a nil receiver and do nothing, which keeps tests and headless
// callers quiet.
type Console struct {
	Out io.Writer
}

func NewConsole() *Console {
	return &Console{Out: os.Stdout}
}

// Interactive reports whether stdin is attached to a terminal.
func Interactive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

func (c *Console) width() int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w >= 20 && w <= 120 {
		return w
	}
	return 80
}

func (c *Console) rule() string {
	return strings.Repeat("=", c.width())
}

func (c *Console) PrintPlan(id, query string, plan []string) {
	if c == nil {
		return
	}
	fmt.Fprintln(c.Out, c.rule())
	fmt.Fprintf(c.Out, "Research session %s\n", id)
	fmt.Fprintf(c.Out, "Query: %s\n\n", query)
	fmt.Fprintln(c.Out, "Plan:")
	for i, step := range plan {
		fmt.Fprintf(c.Out, "  %d. %s\n", i+1, step)
	}
	fmt.Fprintln(c.Out, c.rule())
}

func (c *Console) PrintStep(step, total int, subQuery string) {
	if c == nil {
		return
	}
	fmt.Fprintf(c.Out, "\nStep %d/%d: %s\n", step, total, subQuery)
}

func (c *Console) PrintFindings(added, total int) {
	if c == nil {
		return
	}
	if added == 0 {
		fmt.Fprintln(c.Out, "No sources found")
		return
	}
	fmt.Fprintf(c.Out, "Found %d sources (%d total)\n", added, total)
}

func (c *Console) PrintReportSaved(path string) {
	if c == nil {
		return
	}
	fmt.Fprintf(c.Out, "\nReport saved: %s\n", path)
}

func (c *Console) Println(msg string) {
	if c == nil {
		return
	}
	fmt.Fprintln(c.Out, msg)
}
