package memory

import (
	"context"
	"testing"

	"github.com/intent-solutions-io/iam-bobs-brain-sub000/pkg/domain"
	"github.com/intent-solutions-io/iam-bobs-brain-sub000/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ ports.ManifestStore = (*Store)(nil)

func TestStore_SaveLoad(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	manifest := &domain.EvidenceBundleManifest{
		BundleID:     "bundle-mem01",
		MissionID:    "demo",
		Status:       domain.BundleInProgress,
		TasksPlanned: []string{"task-a", "task-b"},
	}
	require.NoError(t, store.Save(ctx, manifest))

	loaded, err := store.Load(ctx, "bundle-mem01")
	require.NoError(t, err)
	assert.Equal(t, manifest.TasksPlanned, loaded.TasksPlanned)

	// Mutating the loaded copy must not leak into the store.
	loaded.TasksPlanned = append(loaded.TasksPlanned, "task-c")
	again, err := store.Load(ctx, "bundle-mem01")
	require.NoError(t, err)
	assert.Len(t, again.TasksPlanned, 2)
}

func TestStore_LoadMissing(t *testing.T) {
	store := NewStore()
	_, err := store.Load(context.Background(), "bundle-nope")
	require.ErrorIs(t, err, domain.ErrManifestNotFound)
}

func TestStore_SaveRejectsEmptyID(t *testing.T) {
	store := NewStore()
	require.Error(t, store.Save(context.Background(), &domain.EvidenceBundleManifest{}))
}

func TestStore_List(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	for _, id := range []string{"bundle-a", "bundle-b"} {
		require.NoError(t, store.Save(ctx, &domain.EvidenceBundleManifest{BundleID: id, Status: domain.BundleInProgress}))
	}

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"bundle-a", "bundle-b"}, ids)
}
