package brain

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/intent-solutions-io/iam-bobs-brain-sub000/internal/compiler"
	"github.com/intent-solutions-io/iam-bobs-brain-sub000/internal/validator"
	"github.com/intent-solutions-io/iam-bobs-brain-sub000/pkg/domain"
	"github.com/intent-solutions-io/iam-bobs-brain-sub000/pkg/evidence"
	"github.com/intent-solutions-io/iam-bobs-brain-sub000/pkg/gate"
	"github.com/intent-solutions-io/iam-bobs-brain-sub000/pkg/ports"
	"github.com/intent-solutions-io/iam-bobs-brain-sub000/pkg/registry"
	"github.com/intent-solutions-io/iam-bobs-brain-sub000/pkg/schema"
)

// Version is the library version. Overridden at release time.
var Version = "0.3.0"

// Brain is the high-level entry point for the library. It wires the mission
// compiler, the mandate ledger and the evidence store behind one façade so
// embedders don't have to assemble the pieces by hand.
type Brain struct {
	compiler  *compiler.Compiler
	ledger    *gate.Ledger
	approvals *gate.ApprovalManager
	store     ports.ManifestStore
	logger    *slog.Logger

	compilerOpts []compiler.Option
	locker       ports.MandateLocker
	notifier     ports.ApprovalNotifier
	evidenceDir  string
}

// Option defines a functional option for configuring the Brain.
type Option func(*Brain)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Brain) {
		b.logger = logger
	}
}

// WithLocker installs a distributed mandate locker (e.g. the Redis adapter)
// on the ledger, for multi-process deployments.
func WithLocker(locker ports.MandateLocker) Option {
	return func(b *Brain) {
		b.locker = locker
	}
}

// WithNotifier installs an approval notifier on the approval manager.
func WithNotifier(notifier ports.ApprovalNotifier) Option {
	return func(b *Brain) {
		b.notifier = notifier
	}
}

// WithEvidenceDir sets the base directory for evidence bundle manifests
// (default: current directory).
func WithEvidenceDir(dir string) Option {
	return func(b *Brain) {
		b.evidenceDir = dir
	}
}

// WithManifestStore injects a custom manifest store, bypassing the default
// filesystem store (e.g. the in-memory store, or a store wrapped in
// persistence middleware).
func WithManifestStore(store ports.ManifestStore) Option {
	return func(b *Brain) {
		b.store = store
	}
}

// WithSeed namespaces all compiled task and plan identifiers.
func WithSeed(seed string) Option {
	return func(b *Brain) {
		b.compilerOpts = append(b.compilerOpts, compiler.WithSeed(seed))
	}
}

// WithStrictCycles makes dependency cycles compile errors instead of
// warnings with a fallback order.
func WithStrictCycles() Option {
	return func(b *Brain) {
		b.compilerOpts = append(b.compilerOpts, compiler.WithStrictCycles())
	}
}

// WithDirectory supplies a specialist directory for input type-checking.
func WithDirectory(d *registry.Directory) Option {
	return func(b *Brain) {
		b.compilerOpts = append(b.compilerOpts, compiler.WithDirectory(d))
	}
}

// New assembles a Brain with the given options.
func New(opts ...Option) *Brain {
	b := &Brain{}
	for _, opt := range opts {
		opt(b)
	}

	if b.logger == nil {
		b.logger = slog.Default()
	}

	compilerOpts := append([]compiler.Option{compiler.WithLogger(b.logger)}, b.compilerOpts...)
	b.compiler = compiler.New(compilerOpts...)

	ledgerOpts := []gate.LedgerOption{gate.WithLogger(b.logger)}
	if b.locker != nil {
		ledgerOpts = append(ledgerOpts, gate.WithLocker(b.locker))
	}
	b.ledger = gate.NewLedger(gate.NewEngine(), ledgerOpts...)

	approvalOpts := []gate.ApprovalOption{gate.WithApprovalLogger(b.logger)}
	if b.notifier != nil {
		approvalOpts = append(approvalOpts, gate.WithNotifier(b.notifier))
	}
	b.approvals = gate.NewApprovalManager(b.ledger, approvalOpts...)

	if b.store == nil {
		b.store = evidence.NewFileStore(b.evidenceDir)
	}
	return b
}

// Compiler exposes the underlying mission compiler.
func (b *Brain) Compiler() *compiler.Compiler { return b.compiler }

// Ledger exposes the mandate ledger used for gate checks and reservations.
func (b *Brain) Ledger() *gate.Ledger { return b.ledger }

// Approvals exposes the approval state machine manager.
func (b *Brain) Approvals() *gate.ApprovalManager { return b.approvals }

// Evidence exposes the bundle manifest store.
func (b *Brain) Evidence() ports.ManifestStore { return b.store }

// Compile compiles an in-memory mission spec.
func (b *Brain) Compile(mission *domain.MissionSpec) compiler.Result {
	return b.compiler.Compile(mission)
}

// CompileFile loads a mission document (YAML or JSON) and compiles it.
func (b *Brain) CompileFile(path string) (compiler.Result, error) {
	mission, err := b.loadMission(path)
	if err != nil {
		return compiler.Result{}, err
	}
	return b.compiler.Compile(mission), nil
}

// ValidateFile loads a mission document and returns its validation findings.
// A nil slice means the mission is valid. Schema-level failures (bad YAML,
// schema violations) surface as a single finding.
func (b *Brain) ValidateFile(path string) ([]string, error) {
	mission, err := b.loadMission(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, err
		}
		return []string{err.Error()}, nil
	}
	return validator.Validate(mission), nil
}

func (b *Brain) loadMission(path string) (*domain.MissionSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return schema.ParseMission(data)
}

// Preflight runs all policy gates for a prospective invocation without
// consuming any budget.
func (b *Brain) Preflight(ctx context.Context, req gate.CheckRequest) ([]gate.Result, error) {
	return b.ledger.Preflight(ctx, req)
}

// Reserve runs the gates and, when they pass, provisionally consumes the
// request's cost and one iteration on the mandate.
func (b *Brain) Reserve(ctx context.Context, req gate.CheckRequest) ([]gate.Result, *gate.Reservation, error) {
	return b.ledger.Reserve(ctx, req)
}

// NewBundle opens a fresh evidence bundle for a pipeline run.
func (b *Brain) NewBundle(missionID, pipelineRunID string, mandate *domain.Mandate) *evidence.Bundle {
	return evidence.New(missionID, pipelineRunID, mandate)
}

// LoadBundle reopens a persisted evidence bundle by ID.
func (b *Brain) LoadBundle(ctx context.Context, bundleID string) (*evidence.Bundle, error) {
	return evidence.Load(ctx, b.store, bundleID)
}

// FormatFindings renders validation findings one per line, the shape the
// validate command prints.
func FormatFindings(findings []string) string {
	lines := make([]string, 0, len(findings))
	for _, f := range findings {
		lines = append(lines, fmt.Sprintf("  - %s", f))
	}
	return strings.Join(lines, "\n")
}
