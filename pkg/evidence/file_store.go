package evidence

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/intent-solutions-io/iam-bobs-brain-sub000/pkg/domain"
)

// FileStore implements ports.ManifestStore on the local filesystem.
// Manifests live at <base_path>/.evidence/<bundle_id>/manifest.json.
// Artifact files referenced by the manifest are never copied here; only
// their hash/size/type metadata is recorded.
type FileStore struct {
	BasePath string
}

// NewFileStore creates a FileStore rooted at basePath.
// If basePath is empty, it defaults to the current directory.
func NewFileStore(basePath string) *FileStore {
	if basePath == "" {
		basePath = "."
	}
	return &FileStore{BasePath: basePath}
}

func (f *FileStore) bundleDir(bundleID string) string {
	return filepath.Join(f.BasePath, ".evidence", bundleID)
}

// ManifestPath returns the on-disk location for the bundle's manifest.
func (f *FileStore) ManifestPath(bundleID string) string {
	return filepath.Join(f.bundleDir(bundleID), "manifest.json")
}

// Save persists the manifest as indented JSON, replacing any previous
// version.
func (f *FileStore) Save(ctx context.Context, manifest *domain.EvidenceBundleManifest) error {
	if manifest == nil || manifest.BundleID == "" {
		return fmt.Errorf("manifest bundle_id cannot be empty")
	}

	if err := os.MkdirAll(f.bundleDir(manifest.BundleID), 0755); err != nil {
		return fmt.Errorf("failed to ensure evidence directory: %w", err)
	}

	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}

	if err := os.WriteFile(f.ManifestPath(manifest.BundleID), data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest file: %w", err)
	}

	return nil
}

// Load reads the manifest back. A missing manifest is reported as
// domain.ErrManifestNotFound; a corrupted one is a wrapped decode error,
// fatal for this bundle's reconstruction but recoverable for the process.
func (f *FileStore) Load(ctx context.Context, bundleID string) (*domain.EvidenceBundleManifest, error) {
	if bundleID == "" {
		return nil, fmt.Errorf("bundleID cannot be empty")
	}

	data, err := os.ReadFile(f.ManifestPath(bundleID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrManifestNotFound, bundleID)
		}
		return nil, fmt.Errorf("failed to read manifest file: %w", err)
	}

	var manifest domain.EvidenceBundleManifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to unmarshal manifest %s: %w", bundleID, err)
	}

	return &manifest, nil
}

// List returns the IDs of every bundle under the base path.
func (f *FileStore) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(f.BasePath, ".evidence"))
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list evidence bundles: %w", err)
	}

	var bundles []string
	for _, entry := range entries {
		if entry.IsDir() {
			bundles = append(bundles, entry.Name())
		}
	}

	return bundles, nil
}
