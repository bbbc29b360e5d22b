package graph_test

import (
	"strings"
	"testing"

	"github.com/intent-solutions-io/iam-bobs-brain-sub000/internal/presentation/graph"
	"github.com/intent-solutions-io/iam-bobs-brain-sub000/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestGenerateMermaid(t *testing.T) {
	plan := &domain.ExecutionPlan{
		Tasks: []domain.PlannedTask{
			{TaskID: "task-aaaa1111", StepName: "scan", Agent: "iam-qa"},
			{TaskID: "task-bbbb2222", StepName: "fix", Agent: "iam-hygiene", DependsOn: []string{"task-aaaa1111"}},
			{TaskID: "task-cccc3333", StepName: "verify", Agent: "iam-qa", LoopName: "review", LoopIteration: 0},
			{TaskID: "task-dddd4444", StepName: "verify", Agent: "iam-qa", LoopName: "review", LoopIteration: 1},
		},
	}

	out := graph.GenerateMermaid(plan)

	assert.True(t, strings.HasPrefix(out, "graph TD\n"))
	assert.Contains(t, out, `task_aaaa1111["scan<br/>iam-qa"]`)
	assert.Contains(t, out, "task_aaaa1111 --> task_bbbb2222")

	// Loop tasks live in a subgraph with iteration-annotated subroutine nodes.
	assert.Contains(t, out, `subgraph review["loop: review"]`)
	assert.Contains(t, out, `task_cccc3333[["verify #0<br/>iam-qa"]]`)
	assert.Contains(t, out, `task_dddd4444[["verify #1<br/>iam-qa"]]`)
	assert.Contains(t, out, "end\n")
}
