package ports

import (
	"context"

	"github.com/intent-solutions-io/iam-bobs-brain-sub000/pkg/domain"
)

// ManifestStore persists evidence bundle manifests. The default
// implementation writes JSON under <base>/.evidence/<bundle_id>/, but
// anything that can round-trip a manifest by bundle ID satisfies it.
type ManifestStore interface {
	// Save writes the manifest, replacing any previous version.
	Save(ctx context.Context, manifest *domain.EvidenceBundleManifest) error

	// Load returns the manifest for the bundle ID, or
	// domain.ErrManifestNotFound when it does not exist.
	Load(ctx context.Context, bundleID string) (*domain.EvidenceBundleManifest, error)

	// List returns the IDs of all stored bundles, in no particular order.
	List(ctx context.Context) ([]string, error)
}
