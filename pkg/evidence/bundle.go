package evidence

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/intent-solutions-io/iam-bobs-brain-sub000/pkg/domain"
	"github.com/intent-solutions-io/iam-bobs-brain-sub000/pkg/ports"
)

// Bundle manages one run's evidence manifest.
type Bundle struct {
	manifest *domain.EvidenceBundleManifest
	now      func() time.Time
}

// Option configures a Bundle.
type Option func(*Bundle)

// WithClock injects the time source for record timestamps.
func WithClock(now func() time.Time) Option {
	return func(b *Bundle) {
		b.now = now
	}
}

// WithBundleID overrides the generated bundle ID. Used by replay tooling
// that needs to match evidence references across repeated runs.
func WithBundleID(id string) Option {
	return func(b *Bundle) {
		b.manifest.BundleID = id
	}
}

// New creates an in-progress bundle with a fresh unique ID. The mandate is
// frozen via snapshot; later spend increments on the live mandate do not
// leak into the evidence record.
func New(missionID, pipelineRunID string, mandate *domain.Mandate, opts ...Option) *Bundle {
	b := &Bundle{
		manifest: &domain.EvidenceBundleManifest{
			BundleID:        newBundleID(),
			MissionID:       missionID,
			PipelineRunID:   pipelineRunID,
			MandateSnapshot: mandate.Snapshot(),
			Status:          domain.BundleInProgress,
		},
		now: time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	b.manifest.CreatedAt = b.now().UTC()
	return b
}

// FromManifest wraps an existing manifest, e.g. one reloaded from disk.
func FromManifest(manifest *domain.EvidenceBundleManifest, opts ...Option) *Bundle {
	b := &Bundle{manifest: manifest, now: time.Now}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Load reconstructs a bundle from the store. A missing manifest is a hard
// error: the bundle cannot be reconstructed without it.
func Load(ctx context.Context, store ports.ManifestStore, bundleID string, opts ...Option) (*Bundle, error) {
	manifest, err := store.Load(ctx, bundleID)
	if err != nil {
		return nil, err
	}
	return FromManifest(manifest, opts...), nil
}

func newBundleID() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing means the platform is broken; fall back to a
		// timestamp so evidence recording still works.
		return fmt.Sprintf("bundle-%d", time.Now().UnixNano())
	}
	return "bundle-" + hex.EncodeToString(buf)
}

// ID returns the bundle identifier.
func (b *Bundle) ID() string { return b.manifest.BundleID }

// Status returns the current lifecycle status.
func (b *Bundle) Status() domain.BundleStatus { return b.manifest.Status }

// Manifest returns the underlying manifest. The bundle is owned by one run;
// callers must not mutate the manifest directly.
func (b *Bundle) Manifest() *domain.EvidenceBundleManifest { return b.manifest }

func (b *Bundle) guard() error {
	if b.manifest.Status.Terminal() {
		return fmt.Errorf("%w: %s is %s", domain.ErrBundleTerminal, b.manifest.BundleID, b.manifest.Status)
	}
	return nil
}

func appendUnique(list []string, id string) []string {
	for _, existing := range list {
		if existing == id {
			return list
		}
	}
	return append(list, id)
}

// RecordTaskPlanned adds a task ID to the planned set. Idempotent.
func (b *Bundle) RecordTaskPlanned(taskID string) error {
	if err := b.guard(); err != nil {
		return err
	}
	b.manifest.TasksPlanned = appendUnique(b.manifest.TasksPlanned, taskID)
	return nil
}

// RecordTaskExecuted adds a task ID to the executed set. Idempotent.
func (b *Bundle) RecordTaskExecuted(taskID string) error {
	if err := b.guard(); err != nil {
		return err
	}
	b.manifest.TasksExecuted = appendUnique(b.manifest.TasksExecuted, taskID)
	return nil
}

// RecordTaskSkipped adds a task ID to the skipped set. Idempotent.
func (b *Bundle) RecordTaskSkipped(taskID string) error {
	if err := b.guard(); err != nil {
		return err
	}
	b.manifest.TasksSkipped = appendUnique(b.manifest.TasksSkipped, taskID)
	return nil
}

// RecordAgentInvoked adds an agent ID to the invoked set. Idempotent.
func (b *Bundle) RecordAgentInvoked(agentID string) error {
	if err := b.guard(); err != nil {
		return err
	}
	b.manifest.AgentsInvoked = appendUnique(b.manifest.AgentsInvoked, agentID)
	return nil
}

// RecordCheckpoint adds a checkpoint marker. Idempotent.
func (b *Bundle) RecordCheckpoint(id string) error {
	if err := b.guard(); err != nil {
		return err
	}
	b.manifest.Checkpoints = appendUnique(b.manifest.Checkpoints, id)
	return nil
}

// RecordToolCall appends a tool invocation event. Tool calls are an event
// log, not a set: duplicates are allowed.
func (b *Bundle) RecordToolCall(record domain.ToolCallRecord) error {
	if err := b.guard(); err != nil {
		return err
	}
	if record.Timestamp.IsZero() {
		record.Timestamp = b.now().UTC()
	}
	b.manifest.ToolCalls = append(b.manifest.ToolCalls, record)
	return nil
}

// RecordArtifact appends an artifact record. Always appends.
func (b *Bundle) RecordArtifact(record domain.ArtifactRecord) error {
	if err := b.guard(); err != nil {
		return err
	}
	if record.Timestamp.IsZero() {
		record.Timestamp = b.now().UTC()
	}
	b.manifest.Artifacts = append(b.manifest.Artifacts, record)
	return nil
}

// RecordTestRun appends a test-run summary. Always appends.
func (b *Bundle) RecordTestRun(record domain.TestRunRecord) error {
	if err := b.guard(); err != nil {
		return err
	}
	if record.Timestamp.IsZero() {
		record.Timestamp = b.now().UTC()
	}
	b.manifest.TestRuns = append(b.manifest.TestRuns, record)
	return nil
}

func (b *Bundle) finish(status domain.BundleStatus, message string) error {
	if err := b.guard(); err != nil {
		return err
	}
	b.manifest.Status = status
	b.manifest.StatusMessage = message
	b.manifest.CompletedAt = b.now().UTC()
	return nil
}

// MarkCompleted transitions the bundle to its successful terminal state.
func (b *Bundle) MarkCompleted() error {
	return b.finish(domain.BundleCompleted, "")
}

// MarkFailed transitions the bundle to the failed terminal state.
func (b *Bundle) MarkFailed(msg string) error {
	return b.finish(domain.BundleFailed, msg)
}

// MarkAborted transitions the bundle to the aborted terminal state.
func (b *Bundle) MarkAborted(reason string) error {
	return b.finish(domain.BundleAborted, reason)
}

// AddArtifactFile hashes the file at path with a streaming SHA-256, records
// an ArtifactRecord for it and returns the record. The file itself is never
// copied into the bundle.
func (b *Bundle) AddArtifactFile(path, artifactType string) (domain.ArtifactRecord, error) {
	if err := b.guard(); err != nil {
		return domain.ArtifactRecord{}, err
	}

	sum, size, err := hashFile(path)
	if err != nil {
		return domain.ArtifactRecord{}, fmt.Errorf("failed to hash artifact %s: %w", path, err)
	}

	record := domain.ArtifactRecord{
		Path:      path,
		SHA256:    sum,
		SizeBytes: size,
		Type:      artifactType,
		Timestamp: b.now().UTC(),
	}
	b.manifest.Artifacts = append(b.manifest.Artifacts, record)
	return record, nil
}

// ValidateArtifacts re-hashes every recorded artifact on disk and returns
// the full list of integrity failures, empty on success. It never stops at
// the first problem; the point is a complete report.
func (b *Bundle) ValidateArtifacts() []domain.ArtifactFailure {
	var failures []domain.ArtifactFailure
	for _, artifact := range b.manifest.Artifacts {
		sum, _, err := hashFile(artifact.Path)
		if err != nil {
			failures = append(failures, domain.ArtifactFailure{
				Path:     artifact.Path,
				Error:    domain.ArtifactErrNotFound,
				Expected: artifact.SHA256,
			})
			continue
		}
		if sum != artifact.SHA256 {
			failures = append(failures, domain.ArtifactFailure{
				Path:     artifact.Path,
				Error:    domain.ArtifactErrHashMismatch,
				Expected: artifact.SHA256,
				Actual:   sum,
			})
		}
	}
	return failures
}

// Save persists the manifest through the store.
func (b *Bundle) Save(ctx context.Context, store ports.ManifestStore) error {
	return store.Save(ctx, b.manifest)
}

func hashFile(path string) (string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()

	h := sha256.New()
	size, err := io.Copy(h, f)
	if err != nil {
		return "", 0, err
	}
	return hex.EncodeToString(h.Sum(nil)), size, nil
}
