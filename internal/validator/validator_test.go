package validator_test

import (
	"testing"

	"github.com/intent-solutions-io/iam-bobs-brain-sub000/internal/validator"
	"github.com/intent-solutions-io/iam-bobs-brain-sub000/pkg/domain"
	"github.com/intent-solutions-io/iam-bobs-brain-sub000/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validMission() *domain.MissionSpec {
	return &domain.MissionSpec{
		MissionID: "demo-mission",
		Title:     "Demo",
		Intent:    "keep the repo tidy",
		Workflow: []domain.WorkflowItem{
			{Step: &domain.WorkflowStep{StepName: "scan", Agent: "iam-qa"}},
			{Step: &domain.WorkflowStep{StepName: "fix", Agent: "iam-hygiene", DependsOn: []string{"scan"}}},
		},
		Mandate: domain.MandateConfig{
			BudgetLimit:   10,
			BudgetUnit:    "USD",
			MaxIterations: 5,
			RiskTier:      domain.RiskR1,
		},
	}
}

func TestValidate_ValidMission(t *testing.T) {
	assert.Empty(t, validator.Validate(validMission()))
}

func TestValidate_CollectsAllFindings(t *testing.T) {
	mission := &domain.MissionSpec{}

	errs := validator.Validate(mission)
	// Validation never stops at the first problem.
	assert.Contains(t, errs, "mission_id must not be empty")
	assert.Contains(t, errs, "title must not be empty")
	assert.Contains(t, errs, "intent must not be empty")
	assert.Contains(t, errs, "workflow must contain at least one step or loop")
}

func TestValidate_StepRules(t *testing.T) {
	mission := validMission()
	mission.Workflow = append(mission.Workflow,
		domain.WorkflowItem{Step: &domain.WorkflowStep{StepName: "scan", Agent: "iam-qa"}},
		domain.WorkflowItem{Step: &domain.WorkflowStep{StepName: "orphan", Agent: "iam-qa", DependsOn: []string{"nowhere"}}},
		domain.WorkflowItem{Step: &domain.WorkflowStep{StepName: "agentless"}},
		domain.WorkflowItem{},
	)

	errs := validator.Validate(mission)
	assert.Contains(t, errs, `duplicate step name "scan"`)
	assert.Contains(t, errs, `step "orphan" depends on unknown step "nowhere"`)
	assert.Contains(t, errs, `step "agentless" has no agent`)
	assert.Contains(t, errs, "workflow contains an empty item (neither step nor loop)")
}

func TestValidate_LoopRules(t *testing.T) {
	mission := validMission()
	mission.Workflow = []domain.WorkflowItem{
		{Loop: &domain.LoopStep{MaxIterations: 0}},
		{Loop: &domain.LoopStep{
			Name:          "refine",
			MaxIterations: 3,
			Steps: []domain.WorkflowStep{
				{StepName: "", Agent: "iam-qa"},
				{StepName: "fix"},
			},
		}},
	}

	errs := validator.Validate(mission)
	assert.Contains(t, errs, "workflow contains a loop with an empty name")
	assert.Contains(t, errs, `loop "": max_iterations must be >= 1`)
	assert.Contains(t, errs, `loop "" has no steps`)
	assert.Contains(t, errs, `loop "refine" contains a step with an empty step name`)
	assert.Contains(t, errs, `loop "refine" step "fix" has no agent`)
}

func TestValidate_AllowlistCoverage(t *testing.T) {
	mission := validMission()
	mission.Mandate.AuthorizedSpecialists = []string{"iam-qa"}

	errs := validator.Validate(mission)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], `"iam-hygiene"`)
	assert.Contains(t, errs[0], "iam-qa")

	// Loop-body agents count too.
	mission.Workflow = append(mission.Workflow, domain.WorkflowItem{Loop: &domain.LoopStep{
		Name:          "poll",
		MaxIterations: 2,
		Steps:         []domain.WorkflowStep{{StepName: "watch", Agent: "iam-watcher"}},
	}})
	errs = validator.Validate(mission)
	assert.Len(t, errs, 2)

	// Empty allowlist means unrestricted.
	mission.Mandate.AuthorizedSpecialists = nil
	assert.Empty(t, validator.Validate(mission))
}

func TestValidate_InputContracts(t *testing.T) {
	dir := registry.NewDirectory()
	dir.Register(registry.Specialist{
		Name:   "iam-qa",
		Inputs: registry.InputContract{"target": registry.FieldString},
	})

	mission := validMission()
	mission.Workflow = []domain.WorkflowItem{
		{Step: &domain.WorkflowStep{StepName: "scan", Agent: "iam-qa"}},
	}

	// Without the directory the missing input passes.
	assert.Empty(t, validator.Validate(mission))

	errs := validator.Validate(mission, validator.WithDirectory(dir))
	require.NotEmpty(t, errs)
	assert.Contains(t, errs[0], "target")

	mission.Workflow[0].Step.Inputs = map[string]any{"target": "./src"}
	assert.Empty(t, validator.Validate(mission, validator.WithDirectory(dir)))
}
