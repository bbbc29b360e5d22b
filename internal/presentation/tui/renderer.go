// Package tui renders dry-run previews for the terminal.
package tui

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"

	"github.com/intent-solutions-io/iam-bobs-brain-sub000/pkg/domain"
)

// NewRenderer returns a function that renders markdown using glamour.
// Word wrap follows the terminal width when stdout is a terminal.
func NewRenderer() func(string) (string, error) {
	opts := []glamour.TermRendererOption{
		glamour.WithAutoStyle(), // Automatically detect light/dark background
	}
	if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width > 0 {
		if width > 120 {
			width = 120
		}
		opts = append(opts, glamour.WithWordWrap(width))
	}
	r, _ := glamour.NewTermRenderer(opts...)

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}

// PlanMarkdown builds the dry-run preview: the execution order with
// dependency and loop annotations, the mandate envelope and any compile
// warnings. The output is plain markdown; callers pass it through a
// renderer for terminal display or print it raw.
func PlanMarkdown(plan *domain.ExecutionPlan, warnings []string) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# %s\n\n", plan.MissionTitle)
	fmt.Fprintf(&sb, "- **Plan**: `%s` (content hash `%s`)\n", plan.PlanID, shortHash(plan.ContentHash))
	fmt.Fprintf(&sb, "- **Tasks**: %d", plan.TotalSteps)
	if plan.HasLoops {
		fmt.Fprintf(&sb, " (loops expanded to worst case, max %d iterations)", plan.MaxLoopIterations)
	}
	sb.WriteString("\n")

	if m := plan.Mandate; m != nil {
		fmt.Fprintf(&sb, "- **Mandate**: `%s` — %.2f %s, %d invocations, tier %s, approval %s\n",
			m.MandateID, m.BudgetLimit, m.BudgetUnit, m.MaxIterations, m.RiskTier, m.ApprovalState)
	}

	sb.WriteString("\n## Execution order\n\n")
	for i, taskID := range plan.ExecutionOrder {
		task := plan.Task(taskID)
		if task == nil {
			fmt.Fprintf(&sb, "%d. `%s`\n", i+1, taskID)
			continue
		}
		fmt.Fprintf(&sb, "%d. **%s** → %s", i+1, task.StepName, task.Agent)
		if task.LoopName != "" {
			fmt.Fprintf(&sb, " _(loop %s, iteration %d)_", task.LoopName, task.LoopIteration)
		}
		if len(task.DependsOn) > 0 {
			fmt.Fprintf(&sb, " — after %s", strings.Join(backquote(task.DependsOn), ", "))
		}
		sb.WriteString("\n")
	}

	if len(warnings) > 0 {
		sb.WriteString("\n## Warnings\n\n")
		for _, w := range warnings {
			fmt.Fprintf(&sb, "- %s\n", w)
		}
	}

	return sb.String()
}

func shortHash(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}

func backquote(items []string) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = "`" + item + "`"
	}
	return out
}
