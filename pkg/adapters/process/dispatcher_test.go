package process_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/intent-solutions-io/iam-bobs-brain-sub000/pkg/adapters/process"
	"github.com/intent-solutions-io/iam-bobs-brain-sub000/pkg/domain"
	"github.com/intent-solutions-io/iam-bobs-brain-sub000/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ ports.Dispatcher = (*process.Dispatcher)(nil)

func requireShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell-based test, POSIX only")
	}
}

func testRequest() *domain.DispatchRequest {
	return &domain.DispatchRequest{
		PlanID:         "plan-abcd1234",
		MissionID:      "demo",
		ExecutionOrder: []string{"task-a", "task-b"},
		Mandate:        &domain.Mandate{MandateID: "mandate-demo"},
	}
}

func TestDispatcher_PassesRequestOnStdin(t *testing.T) {
	requireShell(t)
	out := filepath.Join(t.TempDir(), "request.json")

	d := process.NewDispatcher("sh", []string{"-c", "cat > " + out})
	require.NoError(t, d.Dispatch(context.Background(), testRequest()))

	data, err := os.ReadFile(out)
	require.NoError(t, err)

	var got domain.DispatchRequest
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "plan-abcd1234", got.PlanID)
	assert.Equal(t, []string{"task-a", "task-b"}, got.ExecutionOrder)
}

func TestDispatcher_ExposesIdentityEnv(t *testing.T) {
	requireShell(t)
	out := filepath.Join(t.TempDir(), "env.txt")

	d := process.NewDispatcher("sh", []string{"-c", "echo $BRAIN_PLAN_ID $BRAIN_MANDATE_ID > " + out})
	require.NoError(t, d.Dispatch(context.Background(), testRequest()))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "plan-abcd1234 mandate-demo\n", string(data))
}

func TestDispatcher_NonZeroExitCarriesStderr(t *testing.T) {
	requireShell(t)

	d := process.NewDispatcher("sh", []string{"-c", "echo boom >&2; exit 3"})
	err := d.Dispatch(context.Background(), testRequest())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestDispatcher_MissingCommand(t *testing.T) {
	d := process.NewDispatcher("definitely-not-a-real-binary-xyz", nil)
	require.Error(t, d.Dispatch(context.Background(), testRequest()))
}
