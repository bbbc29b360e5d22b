// Package compiler turns a validated MissionSpec into a deterministic,
// topologically ordered ExecutionPlan plus the mandate that governs it.
//
// Compilation is pure: no I/O, no suspension, no process-wide state. Given
// the same mission and seed, every compile yields byte-identical task IDs and
// an identical execution order. The compiler executes nothing; dispatch is
// the caller's concern.
package compiler

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/intent-solutions-io/iam-bobs-brain-sub000/internal/logging"
	"github.com/intent-solutions-io/iam-bobs-brain-sub000/internal/validator"
	"github.com/intent-solutions-io/iam-bobs-brain-sub000/pkg/domain"
	"github.com/intent-solutions-io/iam-bobs-brain-sub000/pkg/registry"
)

// Compiler produces execution plans from mission specs.
type Compiler struct {
	seed         string
	strictCycles bool
	now          func() time.Time
	logger       *slog.Logger
	directory    *registry.Directory
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithSeed overrides the task-ID seed (default: the mission_id).
// Re-compiling with the same seed always yields identical task IDs.
func WithSeed(seed string) Option {
	return func(c *Compiler) {
		c.seed = seed
	}
}

// WithStrictCycles makes a dependency cycle a hard compile error instead of
// the default lenient fallback to declaration order.
func WithStrictCycles() Option {
	return func(c *Compiler) {
		c.strictCycles = true
	}
}

// WithClock injects the time source used for plan timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Compiler) {
		c.now = now
	}
}

// WithLogger sets a structured logger for compile diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Compiler) {
		c.logger = logger
	}
}

// WithDirectory passes a specialist directory through to validation for
// input-contract checks.
func WithDirectory(d *registry.Directory) Option {
	return func(c *Compiler) {
		c.directory = d
	}
}

// New creates a Compiler.
func New(opts ...Option) *Compiler {
	c := &Compiler{
		now:    time.Now,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Result is the outcome of one compile. On failure, Errors is non-empty and
// Plan/Mandate/Request are nil; a failed compile never yields a partial plan.
type Result struct {
	Success  bool                    `json:"success"`
	Errors   []string                `json:"errors,omitempty"`
	Warnings []string                `json:"warnings,omitempty"`
	Plan     *domain.ExecutionPlan   `json:"plan,omitempty"`
	Mandate  *domain.Mandate         `json:"mandate,omitempty"`
	Request  *domain.DispatchRequest `json:"request,omitempty"`
}

// Compile validates and compiles a mission.
func (c *Compiler) Compile(mission *domain.MissionSpec) Result {
	var valOpts []validator.Option
	if c.directory != nil {
		valOpts = append(valOpts, validator.WithDirectory(c.directory))
	}
	if errs := validator.Validate(mission, valOpts...); len(errs) > 0 {
		c.logger.Warn("mission failed validation", "mission_id", mission.MissionID, "errors", len(errs))
		return Result{Success: false, Errors: errs}
	}

	seed := c.seed
	if seed == "" {
		seed = mission.MissionID
	}

	tasks, meta := expand(mission, seed)
	resolveDependencies(tasks, meta.nameToID)

	order, cycle := topoSort(tasks)
	warnings := legacyAgentWarnings(mission)
	if cycle {
		if c.strictCycles {
			return Result{Success: false, Errors: []string{
				"dependency cycle detected in workflow; refusing to produce an execution order",
			}}
		}
		// Lenient policy: degrade to declaration order. The order no longer
		// respects dependencies, so surface it loudly.
		warnings = append(warnings, "dependency cycle detected; execution_order falls back to declaration order")
		order = declarationOrder(tasks)
	}

	contentHash, err := contentHash(mission)
	if err != nil {
		return Result{Success: false, Errors: []string{fmt.Sprintf("failed to hash mission: %v", err)}}
	}

	mandate := deriveMandate(mission)
	plan := &domain.ExecutionPlan{
		PlanID:            "plan-" + contentHash[:8],
		MissionID:         mission.MissionID,
		MissionTitle:      mission.Title,
		CreatedAt:         c.now().UTC(),
		ContentHash:       contentHash,
		Tasks:             tasks,
		ExecutionOrder:    order,
		Mandate:           mandate,
		Repos:             mission.Scope,
		TotalSteps:        len(tasks),
		HasLoops:          meta.hasLoops,
		MaxLoopIterations: meta.maxLoopIterations,
	}

	c.logger.Info("mission compiled",
		"mission_id", mission.MissionID,
		"plan_id", plan.PlanID,
		"tasks", len(tasks),
		"warnings", len(warnings),
	)

	return Result{
		Success:  true,
		Warnings: warnings,
		Plan:     plan,
		Mandate:  mandate,
		Request: &domain.DispatchRequest{
			PlanID:         plan.PlanID,
			MissionID:      mission.MissionID,
			ExecutionOrder: order,
			Mandate:        mandate,
			BundleRequired: mission.Evidence.BundleRequired,
			ExportToGCS:    mission.Evidence.ExportToGCS,
			GCSBucket:      mission.Evidence.GCSBucket,
		},
	}
}

// deriveMandate builds a fresh authorization envelope from the mission's
// mandate config. Spend counters always start at zero; the compiler never
// carries forward spend from prior runs.
func deriveMandate(mission *domain.MissionSpec) *domain.Mandate {
	cfg := mission.Mandate
	approval := domain.ApprovalAuto
	if cfg.RiskTier.RequiresApproval() {
		approval = domain.ApprovalPending
	}
	return &domain.Mandate{
		MandateID:             "mandate-" + mission.MissionID,
		Intent:                mission.Intent,
		BudgetLimit:           cfg.BudgetLimit,
		BudgetUnit:            cfg.BudgetUnit,
		MaxIterations:         cfg.MaxIterations,
		AuthorizedSpecialists: append([]string(nil), cfg.AuthorizedSpecialists...),
		RiskTier:              cfg.RiskTier,
		DataClassification:    cfg.DataClassification,
		ApprovalState:         approval,
	}
}

// legacyAgentWarnings flags agent identifiers that use the legacy shape
// (underscores or uppercase letters). Detection is purely by identifier
// shape; the compiler never consults an external registry for this.
func legacyAgentWarnings(mission *domain.MissionSpec) []string {
	var warnings []string
	for _, agent := range mission.Agents() {
		if canonical := canonicalAgentID(agent); canonical != agent {
			warnings = append(warnings, fmt.Sprintf("agent %q uses a legacy identifier; prefer %q", agent, canonical))
		}
	}
	return warnings
}

func canonicalAgentID(agent string) string {
	return strings.ReplaceAll(strings.ToLower(agent), "_", "-")
}
