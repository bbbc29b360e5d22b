package brain_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	brain "github.com/intent-solutions-io/iam-bobs-brain-sub000"
	"github.com/intent-solutions-io/iam-bobs-brain-sub000/pkg/domain"
	"github.com/intent-solutions-io/iam-bobs-brain-sub000/pkg/dsl"
	"github.com/intent-solutions-io/iam-bobs-brain-sub000/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const missionDoc = `
mission_id: hygiene-weekly
title: Weekly hygiene
intent: keep the repos tidy
scope:
  repos:
    - path: services/api
workflow:
  - step: scan
    agent: iam-qa
  - step: fix
    agent: iam-hygiene
    depends_on:
      - scan
mandate:
  budget_limit: 20
  budget_unit: USD
  max_iterations: 10
  risk_tier: R2
evidence:
  bundle_required: true
`

func writeMission(t *testing.T, doc string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mission.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0644))
	return path
}

func TestBrain_CompileFile(t *testing.T) {
	b := brain.New(brain.WithEvidenceDir(t.TempDir()))

	res, err := b.CompileFile(writeMission(t, missionDoc))
	require.NoError(t, err)
	require.True(t, res.Success, res.Errors)

	assert.Len(t, res.Plan.Tasks, 2)
	assert.Equal(t, "mandate-hygiene-weekly", res.Mandate.MandateID)
	assert.True(t, res.Request.BundleRequired)
}

func TestBrain_CompileFile_Missing(t *testing.T) {
	b := brain.New()
	_, err := b.CompileFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.True(t, os.IsNotExist(err))
}

func TestBrain_ValidateFile(t *testing.T) {
	b := brain.New()

	findings, err := b.ValidateFile(writeMission(t, missionDoc))
	require.NoError(t, err)
	assert.Empty(t, findings)

	// A schema-level failure surfaces as a single finding, not an error.
	findings, err = b.ValidateFile(writeMission(t, "mission_id: only-an-id\n"))
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Contains(t, findings[0], "schema check")
}

type captureDispatcher struct {
	req *domain.DispatchRequest
}

func (d *captureDispatcher) Dispatch(_ context.Context, req *domain.DispatchRequest) error {
	d.req = req
	return nil
}

var _ ports.Dispatcher = (*captureDispatcher)(nil)

func TestRunner_Run(t *testing.T) {
	dir := t.TempDir()
	b := brain.New(brain.WithEvidenceDir(dir))

	mission, err := dsl.NewMission("hygiene-weekly", "Weekly hygiene").
		Intent("keep the repos tidy").
		Step("scan", "iam-qa").Done().
		Step("fix", "iam-hygiene").After("scan").Done().
		Budget(20, "USD").
		MaxInvocations(10).
		RiskTier(domain.RiskR2).
		RequireEvidence().
		Build()
	require.NoError(t, err)

	res := b.Compile(mission)
	require.True(t, res.Success, res.Errors)

	var out bytes.Buffer
	disp := &captureDispatcher{}
	runner := &brain.Runner{Output: &out, Dispatcher: disp}

	bundle, err := runner.Run(context.Background(), b, res)
	require.NoError(t, err)

	require.NotNil(t, disp.req)
	assert.Equal(t, res.Plan.PlanID, disp.req.PlanID)
	assert.Contains(t, out.String(), "dispatched")

	// Bundle was persisted with every task recorded as planned.
	reloaded, err := b.LoadBundle(context.Background(), bundle.ID())
	require.NoError(t, err)
	assert.ElementsMatch(t, res.Plan.ExecutionOrder, reloaded.Manifest().TasksPlanned)
	assert.Equal(t, domain.BundleInProgress, reloaded.Status())
}

func TestRunner_Run_Blocked(t *testing.T) {
	dir := t.TempDir()
	b := brain.New(brain.WithEvidenceDir(dir))

	mission, err := dsl.NewMission("prod-rollout", "Prod rollout").
		Intent("high risk change").
		Step("apply", "iam-hygiene").Done().
		Budget(20, "USD").
		MaxInvocations(10).
		RiskTier(domain.RiskR3).
		RequireEvidence().
		Build()
	require.NoError(t, err)

	res := b.Compile(mission)
	require.True(t, res.Success, res.Errors)
	// R3 mandates compile into the pending approval state.
	require.Equal(t, domain.ApprovalPending, res.Mandate.ApprovalState)

	runner := &brain.Runner{}
	bundle, err := runner.Run(context.Background(), b, res)
	require.ErrorIs(t, err, brain.ErrPreflightBlocked)
	assert.Equal(t, domain.BundleAborted, bundle.Status())

	// The aborted bundle is still persisted for the audit trail.
	reloaded, reloadErr := b.LoadBundle(context.Background(), bundle.ID())
	require.NoError(t, reloadErr)
	assert.Equal(t, domain.BundleAborted, reloaded.Status())
}

func TestRunner_Run_NoDispatcher(t *testing.T) {
	b := brain.New(brain.WithEvidenceDir(t.TempDir()))

	mission, err := dsl.NewMission("tidy", "Tidy").
		Intent("low risk").
		Step("scan", "iam-qa").Done().
		Budget(5, "USD").
		MaxInvocations(3).
		Build()
	require.NoError(t, err)

	res := b.Compile(mission)
	require.True(t, res.Success, res.Errors)

	var out bytes.Buffer
	runner := &brain.Runner{Output: &out}
	_, err = runner.Run(context.Background(), b, res)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "no dispatch loop attached")
}
