package tui_test

import (
	"testing"

	"github.com/intent-solutions-io/iam-bobs-brain-sub000/internal/presentation/tui"
	"github.com/intent-solutions-io/iam-bobs-brain-sub000/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestPlanMarkdown(t *testing.T) {
	plan := &domain.ExecutionPlan{
		PlanID:       "plan-abcd1234",
		MissionTitle: "Weekly hygiene",
		ContentHash:  "abcdef0123456789abcdef0123456789",
		TotalSteps:   3,
		HasLoops:     true,
		MaxLoopIterations: 2,
		Mandate: &domain.Mandate{
			MandateID:     "mandate-demo",
			BudgetLimit:   20,
			BudgetUnit:    "USD",
			MaxIterations: 10,
			RiskTier:      domain.RiskR2,
			ApprovalState: domain.ApprovalAuto,
		},
		Tasks: []domain.PlannedTask{
			{TaskID: "task-aaaa1111", StepName: "scan", Agent: "iam-qa"},
			{TaskID: "task-bbbb2222", StepName: "fix", Agent: "iam-hygiene", DependsOn: []string{"task-aaaa1111"}},
			{TaskID: "task-cccc3333", StepName: "verify", Agent: "iam-qa", LoopName: "review", LoopIteration: 1},
		},
		ExecutionOrder: []string{"task-aaaa1111", "task-bbbb2222", "task-cccc3333"},
	}

	md := tui.PlanMarkdown(plan, []string{"something minor"})

	assert.Contains(t, md, "# Weekly hygiene")
	assert.Contains(t, md, "plan-abcd1234")
	assert.Contains(t, md, "abcdef012345") // hash shortened
	assert.Contains(t, md, "mandate-demo")
	assert.Contains(t, md, "1. **scan** → iam-qa")
	assert.Contains(t, md, "after `task-aaaa1111`")
	assert.Contains(t, md, "_(loop review, iteration 1)_")
	assert.Contains(t, md, "## Warnings")
	assert.Contains(t, md, "something minor")
}
