package domain

import "time"

// BundleStatus is the lifecycle status of an evidence bundle.
// Transitions are one-directional: in_progress is the only non-terminal state.
type BundleStatus string

const (
	BundleInProgress BundleStatus = "in_progress"
	BundleCompleted  BundleStatus = "completed"
	BundleFailed     BundleStatus = "failed"
	BundleAborted    BundleStatus = "aborted"
)

// Terminal reports whether the status is final.
func (s BundleStatus) Terminal() bool { return s != BundleInProgress }

// ToolCallRecord is one tool invocation event. Tool calls are an event log,
// not a set: duplicates are allowed.
type ToolCallRecord struct {
	ToolName   string        `json:"tool_name"`
	AgentID    string        `json:"agent_id,omitempty"`
	InputHash  string        `json:"input_hash,omitempty"`
	OutputHash string        `json:"output_hash,omitempty"`
	Duration   time.Duration `json:"duration_ns,omitempty"`
	Success    bool          `json:"success"`
	Timestamp  time.Time     `json:"timestamp"`
}

// ArtifactRecord describes a produced artifact by content hash.
// The file itself is not copied into the bundle; only metadata is recorded.
type ArtifactRecord struct {
	Path      string    `json:"path"`
	SHA256    string    `json:"sha256"`
	SizeBytes int64     `json:"size_bytes"`
	Type      string    `json:"type,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// TestRunRecord summarizes one test execution during the run.
type TestRunRecord struct {
	Command   string        `json:"command"`
	Passed    int           `json:"passed"`
	Failed    int           `json:"failed"`
	Duration  time.Duration `json:"duration_ns,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}

// EvidenceBundleManifest is the append-only-per-run audit record.
// Collections only grow; the status transition is one-directional.
type EvidenceBundleManifest struct {
	BundleID      string    `json:"bundle_id"`
	MissionID     string    `json:"mission_id,omitempty"`
	PipelineRunID string    `json:"pipeline_run_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	CompletedAt   time.Time `json:"completed_at,omitempty"`

	MandateSnapshot *Mandate `json:"mandate_snapshot,omitempty"`

	TasksPlanned  []string `json:"tasks_planned,omitempty"`
	TasksExecuted []string `json:"tasks_executed,omitempty"`
	TasksSkipped  []string `json:"tasks_skipped,omitempty"`
	AgentsInvoked []string `json:"agents_invoked,omitempty"`
	Checkpoints   []string `json:"checkpoints,omitempty"`

	ToolCalls []ToolCallRecord `json:"tool_calls,omitempty"`
	Artifacts []ArtifactRecord `json:"artifacts,omitempty"`
	TestRuns  []TestRunRecord  `json:"test_runs,omitempty"`

	Status        BundleStatus `json:"status"`
	StatusMessage string       `json:"status_message,omitempty"`

	// EncryptedPayload holds the sealed manifest when the bundle is persisted
	// through the encryption middleware. In that stored form every other
	// collection is empty; only BundleID, CreatedAt and Status stay readable
	// for listing and monitoring.
	EncryptedPayload string `json:"encrypted_payload,omitempty"`
}

// ArtifactFailure is one integrity-verification failure.
type ArtifactFailure struct {
	Path     string `json:"path"`
	Error    string `json:"error"` // "file_not_found" or "hash_mismatch"
	Expected string `json:"expected,omitempty"`
	Actual   string `json:"actual,omitempty"`
}

// Artifact validation error tags.
const (
	ArtifactErrNotFound     = "file_not_found"
	ArtifactErrHashMismatch = "hash_mismatch"
)
