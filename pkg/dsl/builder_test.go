package dsl_test

import (
	"testing"

	"github.com/intent-solutions-io/iam-bobs-brain-sub000/internal/compiler"
	"github.com/intent-solutions-io/iam-bobs-brain-sub000/pkg/domain"
	"github.com/intent-solutions-io/iam-bobs-brain-sub000/pkg/dsl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_FullMission(t *testing.T) {
	mission, err := dsl.NewMission("hygiene-weekly", "Weekly hygiene").
		Intent("keep the repos tidy").
		RepoAt("services/api", "main").
		Repo("services/worker").
		Step("scan", "iam-qa").
		Input("target", "./...").
		Output("findings.json").
		Done().
		Step("fix", "iam-hygiene").
		After("scan").
		When("findings_count > 0").
		Done().
		Loop("verify", 3).
		Until("all checks green").
		Gate("lint").
		Step("run-checks", "iam-qa").Input("fail_fast", true).Done().
		Done().
		Budget(25, "USD").
		MaxInvocations(10).
		Authorize("iam-qa", "iam-hygiene").
		RiskTier(domain.RiskR2).
		Classify("internal").
		RequireEvidence("findings.json").
		ExportToGCS("acme-evidence").
		Build()
	require.NoError(t, err)

	assert.Equal(t, "hygiene-weekly", mission.MissionID)
	require.Len(t, mission.Scope, 2)
	assert.Equal(t, "main", mission.Scope[0].Ref)

	require.Len(t, mission.Workflow, 3)
	assert.Equal(t, []string{"scan"}, mission.Workflow[1].Step.DependsOn)
	assert.Equal(t, "findings_count > 0", mission.Workflow[1].Step.Condition)

	loop := mission.Workflow[2].Loop
	require.NotNil(t, loop)
	assert.Equal(t, 3, loop.MaxIterations)
	assert.Equal(t, map[string]any{"fail_fast": true}, loop.Steps[0].Inputs)

	assert.Equal(t, domain.RiskR2, mission.Mandate.RiskTier)
	assert.True(t, mission.Evidence.BundleRequired)

	// A built mission always compiles.
	res := compiler.New().Compile(mission)
	assert.True(t, res.Success, res.Errors)
	assert.Len(t, res.Plan.Tasks, 5)
}

func TestBuilder_InvalidMission(t *testing.T) {
	_, err := dsl.NewMission("bad", "Bad").
		Intent("broken on purpose").
		Step("fix", "iam-hygiene").After("ghost").Done().
		Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown step "ghost"`)
}

func TestBuilder_MultipleLoopBodySteps(t *testing.T) {
	mission, err := dsl.NewMission("loops", "Loops").
		Intent("exercise loop bodies").
		Loop("refine", 2).
		Step("test", "iam-qa").Input("suite", "unit").Done().
		Step("repair", "iam-hygiene").Skill("auto-fix").Done().
		Done().
		Build()
	require.NoError(t, err)

	loop := mission.Workflow[0].Loop
	require.Len(t, loop.Steps, 2)
	// Builders stay valid across appends to the body slice.
	assert.Equal(t, map[string]any{"suite": "unit"}, loop.Steps[0].Inputs)
	assert.Equal(t, "auto-fix", loop.Steps[1].SkillID)
}
