// End-to-end coverage of the public surface: mission document in, gated
// dispatch hand-off and a verifiable evidence bundle out.
package tests

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	brain "github.com/intent-solutions-io/iam-bobs-brain-sub000"
	"github.com/intent-solutions-io/iam-bobs-brain-sub000/pkg/domain"
	"github.com/intent-solutions-io/iam-bobs-brain-sub000/pkg/evidence"
	"github.com/intent-solutions-io/iam-bobs-brain-sub000/pkg/gate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingDispatcher struct {
	requests []*domain.DispatchRequest
}

func (d *recordingDispatcher) Dispatch(_ context.Context, req *domain.DispatchRequest) error {
	d.requests = append(d.requests, req)
	return nil
}

func TestMissionFlow_EndToEnd(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	b := brain.New(brain.WithEvidenceDir(dir))

	res, err := b.CompileFile(filepath.Join("fixtures", "hygiene-weekly.yaml"))
	require.NoError(t, err)
	require.True(t, res.Success, res.Errors)

	// 2 plain steps + 2 loop iterations.
	require.Len(t, res.Plan.Tasks, 4)
	require.Equal(t, domain.ApprovalAuto, res.Mandate.ApprovalState)

	disp := &recordingDispatcher{}
	runner := &brain.Runner{Dispatcher: disp}
	bundle, err := runner.Run(ctx, b, res)
	require.NoError(t, err)
	require.Len(t, disp.requests, 1)
	assert.Equal(t, res.Plan.ExecutionOrder, disp.requests[0].ExecutionOrder)

	// Simulate the dispatch loop doing its work and reporting back.
	mandate := res.Mandate
	for _, taskID := range res.Plan.ExecutionOrder {
		task := res.Plan.Task(taskID)
		results, reservation, rerr := b.Reserve(ctx, gate.CheckRequest{
			Specialist: task.Agent,
			RiskTier:   mandate.RiskTier,
			Mandate:    mandate,
			Cost:       1.5,
		})
		require.NoError(t, rerr)
		require.True(t, gate.Allowed(results))
		reservation.Commit()

		require.NoError(t, bundle.RecordAgentInvoked(task.Agent))
		require.NoError(t, bundle.RecordTaskExecuted(taskID))
	}
	assert.InDelta(t, 6.0, mandate.BudgetSpent, 1e-9)
	assert.Equal(t, 4, mandate.IterationsUsed)

	// Attach a produced artifact and finish the bundle.
	artifact := filepath.Join(dir, "findings.json")
	require.NoError(t, os.WriteFile(artifact, []byte(`{"findings":[]}`), 0644))
	_, err = bundle.AddArtifactFile(artifact, "report")
	require.NoError(t, err)
	require.NoError(t, bundle.MarkCompleted())
	require.NoError(t, bundle.Save(ctx, b.Evidence()))

	// Reload and verify integrity.
	reloaded, err := b.LoadBundle(ctx, bundle.ID())
	require.NoError(t, err)
	assert.Equal(t, domain.BundleCompleted, reloaded.Status())
	assert.ElementsMatch(t, res.Plan.ExecutionOrder, reloaded.Manifest().TasksExecuted)
	assert.ElementsMatch(t, []string{"iam-qa", "iam-hygiene"}, reloaded.Manifest().AgentsInvoked)
	assert.Empty(t, reloaded.ValidateArtifacts())

	// Tamper with the artifact: validation must flag the hash mismatch.
	require.NoError(t, os.WriteFile(artifact, []byte(`{"findings":["x"]}`), 0644))
	failures := reloaded.ValidateArtifacts()
	require.Len(t, failures, 1)
	assert.Equal(t, domain.ArtifactErrHashMismatch, failures[0].Error)
}

func TestMissionFlow_BudgetExhaustionStopsReservations(t *testing.T) {
	ctx := context.Background()
	b := brain.New(brain.WithEvidenceDir(t.TempDir()))

	res, err := b.CompileFile(filepath.Join("fixtures", "hygiene-weekly.yaml"))
	require.NoError(t, err)
	require.True(t, res.Success, res.Errors)

	mandate := res.Mandate
	req := gate.CheckRequest{
		Specialist: "iam-qa",
		RiskTier:   mandate.RiskTier,
		Mandate:    mandate,
		Cost:       10,
	}

	var granted int
	for i := 0; i < 5; i++ {
		results, reservation, rerr := b.Reserve(ctx, req)
		require.NoError(t, rerr)
		if reservation == nil {
			blocked := gate.FirstBlocked(results)
			require.NotNil(t, blocked)
			assert.Equal(t, gate.BlockBudgetExhausted, blocked.BlockingRequirement)
			continue
		}
		reservation.Commit()
		granted++
	}

	// 25 USD budget grants exactly two 10 USD reservations; the third would
	// overdraw and the remainder are refused outright.
	assert.Equal(t, 2, granted)
	assert.InDelta(t, 20.0, mandate.BudgetSpent, 1e-9)
	assert.LessOrEqual(t, mandate.BudgetSpent, mandate.BudgetLimit)
}

func TestMissionFlow_BundlePersistsAcrossInstances(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	store := evidence.NewFileStore(dir)
	b := brain.New(brain.WithManifestStore(store))

	res, err := b.CompileFile(filepath.Join("fixtures", "hygiene-weekly.yaml"))
	require.NoError(t, err)
	require.True(t, res.Success, res.Errors)

	runner := &brain.Runner{}
	bundle, err := runner.Run(ctx, b, res)
	require.NoError(t, err)

	// A second engine instance over the same directory sees the bundle.
	b2 := brain.New(brain.WithEvidenceDir(dir))
	reloaded, err := b2.LoadBundle(ctx, bundle.ID())
	require.NoError(t, err)
	assert.Equal(t, res.Plan.MissionID, reloaded.Manifest().MissionID)
}
