// Package memory implements ports.ManifestStore in process memory.
// Useful for tests and for embedders that don't need durable evidence.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/intent-solutions-io/iam-bobs-brain-sub000/pkg/domain"
)

// Store implements ports.ManifestStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]*domain.EvidenceBundleManifest
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*domain.EvidenceBundleManifest),
	}
}

// cloneManifest isolates stored manifests from caller mutation. A JSON
// round-trip copies the nested record slices and the mandate snapshot the
// same way the file store's serialization would.
func cloneManifest(manifest *domain.EvidenceBundleManifest) (*domain.EvidenceBundleManifest, error) {
	data, err := json.Marshal(manifest)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal manifest: %w", err)
	}
	var out domain.EvidenceBundleManifest
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal manifest: %w", err)
	}
	return &out, nil
}

// Save persists the manifest in memory, replacing any previous version.
func (s *Store) Save(ctx context.Context, manifest *domain.EvidenceBundleManifest) error {
	if manifest == nil || manifest.BundleID == "" {
		return fmt.Errorf("manifest bundle_id cannot be empty")
	}

	copied, err := cloneManifest(manifest)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[manifest.BundleID] = copied
	return nil
}

// Load retrieves the manifest from memory.
func (s *Store) Load(ctx context.Context, bundleID string) (*domain.EvidenceBundleManifest, error) {
	s.mu.RLock()
	manifest, ok := s.data[bundleID]
	s.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrManifestNotFound, bundleID)
	}

	// Copy on read so the caller can't mutate store state by pointer.
	return cloneManifest(manifest)
}

// List returns the IDs of all stored bundles.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	return ids, nil
}
