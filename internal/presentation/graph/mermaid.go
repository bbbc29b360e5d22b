// Package graph renders an execution plan as a Mermaid flowchart for
// documentation and review.
package graph

import (
	"fmt"
	"strings"

	"github.com/intent-solutions-io/iam-bobs-brain-sub000/pkg/domain"
)

// GenerateMermaid produces Mermaid flowchart syntax for a plan's task DAG.
// Loop tasks are grouped in one subgraph per loop; dependency edges are
// solid, loop-iteration ordering is implied by task labels.
func GenerateMermaid(plan *domain.ExecutionPlan) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	byLoop := make(map[string][]domain.PlannedTask)
	var loopOrder []string
	for _, task := range plan.Tasks {
		if task.LoopName == "" {
			sb.WriteString(nodeLine(task, "    "))
			continue
		}
		if _, seen := byLoop[task.LoopName]; !seen {
			loopOrder = append(loopOrder, task.LoopName)
		}
		byLoop[task.LoopName] = append(byLoop[task.LoopName], task)
	}

	for _, loopName := range loopOrder {
		sb.WriteString(fmt.Sprintf("    subgraph %s[\"loop: %s\"]\n", sanitizeMermaidID(loopName), loopName))
		for _, task := range byLoop[loopName] {
			sb.WriteString(nodeLine(task, "        "))
		}
		sb.WriteString("    end\n")
	}

	for _, task := range plan.Tasks {
		for _, dep := range task.DependsOn {
			sb.WriteString(fmt.Sprintf("    %s --> %s\n", sanitizeMermaidID(dep), sanitizeMermaidID(task.TaskID)))
		}
	}

	return sb.String()
}

func nodeLine(task domain.PlannedTask, indent string) string {
	label := fmt.Sprintf("%s<br/>%s", task.StepName, task.Agent)
	if task.LoopName != "" {
		label = fmt.Sprintf("%s #%d<br/>%s", task.StepName, task.LoopIteration, task.Agent)
	}
	// Loop tasks render as subroutines, plain steps as rectangles.
	opener, closer := "[", "]"
	if task.LoopName != "" {
		opener, closer = "[[", "]]"
	}
	return fmt.Sprintf("%s%s%s\"%s\"%s\n", indent, sanitizeMermaidID(task.TaskID), opener, label, closer)
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	return s
}
