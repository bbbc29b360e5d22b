package domain

import (
	"fmt"
	"strings"
)

// RiskTier classifies the blast radius of an operation (ordinal, R0..R4).
type RiskTier string

const (
	// RiskR0 is read-only, no side effects.
	RiskR0 RiskTier = "R0"
	// RiskR1 covers local, reversible changes.
	RiskR1 RiskTier = "R1"
	// RiskR2 covers external writes (e.g. issue creation). Requires a mandate.
	RiskR2 RiskTier = "R2"
	// RiskR3 covers infrastructure changes. Requires a mandate and approval.
	RiskR3 RiskTier = "R3"
	// RiskR4 covers financial/payment operations. Requires a mandate and
	// approval under the two-person rule.
	RiskR4 RiskTier = "R4"
)

// ParseRiskTier converts a string into a RiskTier.
// Unknown tiers are a construction-time error, not a deferred validation error.
func ParseRiskTier(s string) (RiskTier, error) {
	switch RiskTier(strings.ToUpper(strings.TrimSpace(s))) {
	case RiskR0:
		return RiskR0, nil
	case RiskR1:
		return RiskR1, nil
	case RiskR2:
		return RiskR2, nil
	case RiskR3:
		return RiskR3, nil
	case RiskR4:
		return RiskR4, nil
	default:
		return "", fmt.Errorf("%w: %q (expected R0..R4)", ErrUnknownRiskTier, s)
	}
}

// Ordinal returns the numeric rank of the tier (0..4).
func (t RiskTier) Ordinal() int {
	switch t {
	case RiskR1:
		return 1
	case RiskR2:
		return 2
	case RiskR3:
		return 3
	case RiskR4:
		return 4
	default:
		return 0
	}
}

// RequiresMandate reports whether the tier needs an authorization envelope.
func (t RiskTier) RequiresMandate() bool { return t.Ordinal() >= 2 }

// RequiresApproval reports whether the tier needs human approval.
func (t RiskTier) RequiresApproval() bool { return t.Ordinal() >= 3 }

// RequiresDistinctApprover reports whether the two-person rule applies.
func (t RiskTier) RequiresDistinctApprover() bool { return t == RiskR4 }

// WorkflowStep is a single unit of work inside a mission workflow.
// Steps are immutable after mission load.
type WorkflowStep struct {
	StepName  string         `json:"step" yaml:"step" mapstructure:"step"`
	Agent     string         `json:"agent" yaml:"agent" mapstructure:"agent"`
	SkillID   string         `json:"skill_id,omitempty" yaml:"skill_id,omitempty" mapstructure:"skill_id"`
	Inputs    map[string]any `json:"inputs,omitempty" yaml:"inputs,omitempty" mapstructure:"inputs"`
	Outputs   []string       `json:"outputs,omitempty" yaml:"outputs,omitempty" mapstructure:"outputs"`
	DependsOn []string       `json:"depends_on,omitempty" yaml:"depends_on,omitempty" mapstructure:"depends_on"`
	// Condition is an opaque expression evaluated by the dispatcher, never by
	// the compiler.
	Condition string `json:"condition,omitempty" yaml:"condition,omitempty" mapstructure:"condition"`
}

// LoopStep is a named repeated block of steps.
// MaxIterations is authoritative: the compiler never expands beyond it.
// Until and Gates are semantic hints for the dispatcher, opaque here.
type LoopStep struct {
	Name          string         `json:"name" yaml:"name" mapstructure:"name"`
	Until         string         `json:"until,omitempty" yaml:"until,omitempty" mapstructure:"until"`
	MaxIterations int            `json:"max_iterations" yaml:"max_iterations" mapstructure:"max_iterations"`
	Gates         []string       `json:"gates,omitempty" yaml:"gates,omitempty" mapstructure:"gates"`
	Steps         []WorkflowStep `json:"steps" yaml:"steps" mapstructure:"steps"`
}

// WorkflowItem is the tagged union of a plain step and a loop wrapper.
// Exactly one of Step or Loop is non-nil; the discriminant is resolved once
// at parse time and never re-inspected by shape afterward.
type WorkflowItem struct {
	Step *WorkflowStep `json:"step,omitempty" yaml:"step,omitempty"`
	Loop *LoopStep     `json:"loop,omitempty" yaml:"loop,omitempty"`
}

// IsLoop reports whether the item wraps a loop block.
func (w WorkflowItem) IsLoop() bool { return w.Loop != nil }

// RepoScope identifies one repository/target the mission operates on.
type RepoScope struct {
	Path     string `json:"path" yaml:"path" mapstructure:"path"`
	Ref      string `json:"ref,omitempty" yaml:"ref,omitempty" mapstructure:"ref"`
	Worktree string `json:"worktree,omitempty" yaml:"worktree,omitempty" mapstructure:"worktree"`
}

// MandateConfig is the declarative budget/authorization contract of a mission.
type MandateConfig struct {
	BudgetLimit float64 `json:"budget_limit" yaml:"budget_limit" mapstructure:"budget_limit"`
	BudgetUnit  string  `json:"budget_unit" yaml:"budget_unit" mapstructure:"budget_unit"`
	// MaxIterations caps the number of specialist invocations for the run.
	MaxIterations int `json:"max_iterations" yaml:"max_iterations" mapstructure:"max_iterations"`
	// AuthorizedSpecialists is an allowlist; empty means unrestricted.
	AuthorizedSpecialists []string `json:"authorized_specialists,omitempty" yaml:"authorized_specialists,omitempty" mapstructure:"authorized_specialists"`
	RiskTier              RiskTier `json:"risk_tier" yaml:"risk_tier" mapstructure:"-"`
	DataClassification    string   `json:"data_classification,omitempty" yaml:"data_classification,omitempty" mapstructure:"data_classification"`
}

// EvidenceConfig controls the audit record requirements of a mission.
type EvidenceConfig struct {
	BundleRequired bool     `json:"bundle_required" yaml:"bundle_required" mapstructure:"bundle_required"`
	Include        []string `json:"include,omitempty" yaml:"include,omitempty" mapstructure:"include"`
	ExportToGCS    bool     `json:"export_to_gcs,omitempty" yaml:"export_to_gcs,omitempty" mapstructure:"export_to_gcs"`
	GCSBucket      string   `json:"gcs_bucket,omitempty" yaml:"gcs_bucket,omitempty" mapstructure:"gcs_bucket"`
}

// MissionSpec is the root declarative unit: everything the compiler needs to
// produce an execution plan and a mandate. Created once from a serialized
// definition, validated, then immutable.
type MissionSpec struct {
	MissionID string         `json:"mission_id" yaml:"mission_id"`
	Title     string         `json:"title" yaml:"title"`
	Intent    string         `json:"intent" yaml:"intent"`
	Version   string         `json:"version,omitempty" yaml:"version,omitempty"`
	Scope     []RepoScope    `json:"scope,omitempty" yaml:"scope,omitempty"`
	Workflow  []WorkflowItem `json:"workflow" yaml:"workflow"`
	Mandate   MandateConfig  `json:"mandate" yaml:"mandate"`
	Evidence  EvidenceConfig `json:"evidence,omitempty" yaml:"evidence,omitempty"`
}

// Agents returns every agent referenced anywhere in the workflow, including
// loop bodies, in declaration order with duplicates removed.
func (m *MissionSpec) Agents() []string {
	seen := make(map[string]bool)
	var agents []string
	add := func(agent string) {
		if agent != "" && !seen[agent] {
			seen[agent] = true
			agents = append(agents, agent)
		}
	}
	for _, item := range m.Workflow {
		if item.IsLoop() {
			for _, step := range item.Loop.Steps {
				add(step.Agent)
			}
			continue
		}
		if item.Step != nil {
			add(item.Step.Agent)
		}
	}
	return agents
}
