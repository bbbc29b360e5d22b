package gate

import (
	"fmt"
	"time"

	"github.com/intent-solutions-io/iam-bobs-brain-sub000/pkg/domain"
)

// Gate names, one per check.
const (
	GateMandateRequired      = "mandate_required"
	GateApprovalRequired     = "approval_required"
	GateSpecialistAuthorized = "specialist_authorized"
	GateToolAllowed          = "tool_allowed"
)

// Machine-readable blocking_requirement tags. Callers branch on these to
// decide whether to retry, escalate or abort, so they are part of the API.
const (
	BlockMandate             = "mandate"
	BlockApproval            = "approval"
	BlockApprovalPending     = "approval_pending"
	BlockApprovalDenied      = "approval_denied"
	BlockExpired             = "expired"
	BlockBudgetExhausted     = "budget_exhausted"
	BlockIterationsExhausted = "iterations_exhausted"
	BlockSpecialist          = "specialist_not_authorized"
	BlockTool                = "tool_not_allowed"
)

// Result is the verdict of a single named check. Reason is always set and
// human readable; BlockingRequirement is set only on denial.
type Result struct {
	Allowed             bool            `json:"allowed"`
	Reason              string          `json:"reason"`
	RiskTier            domain.RiskTier `json:"risk_tier,omitempty"`
	GateName            string          `json:"gate_name"`
	BlockingRequirement string          `json:"blocking_requirement,omitempty"`
}

// Allowed reports whether every result in the list passed. Any single
// failure blocks the entire invocation.
func Allowed(results []Result) bool {
	for _, r := range results {
		if !r.Allowed {
			return false
		}
	}
	return true
}

// FirstBlocked returns the first denied result, or nil when all passed.
func FirstBlocked(results []Result) *Result {
	for i := range results {
		if !results[i].Allowed {
			return &results[i]
		}
	}
	return nil
}

// Engine evaluates policy gates. It is a pure decision function: it never
// mutates the mandate and reads time only through the injected clock.
type Engine struct {
	now func() time.Time
}

// Option configures the Engine.
type Option func(*Engine)

// WithClock injects the time source. Gate expiry checks never read the
// system clock directly; tests pin this to a fixed instant.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// NewEngine creates a policy gate engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// CheckMandateRequired verifies that tiers R2 and above carry a mandate.
func (e *Engine) CheckMandateRequired(tier domain.RiskTier, mandate *domain.Mandate) Result {
	res := Result{GateName: GateMandateRequired, RiskTier: tier}
	if !tier.RequiresMandate() {
		res.Allowed = true
		res.Reason = fmt.Sprintf("risk tier %s does not require a mandate", tier)
		return res
	}
	if mandate == nil {
		res.Reason = fmt.Sprintf("risk tier %s requires a mandate but none was provided", tier)
		res.BlockingRequirement = BlockMandate
		return res
	}
	res.Allowed = true
	res.Reason = fmt.Sprintf("mandate %s present", mandate.MandateID)
	return res
}

// CheckApprovalRequired verifies that tiers R3 and above carry an approved
// mandate. Pending, denied and missing-mandate are distinct rejections.
func (e *Engine) CheckApprovalRequired(tier domain.RiskTier, mandate *domain.Mandate) Result {
	res := Result{GateName: GateApprovalRequired, RiskTier: tier}
	if !tier.RequiresApproval() {
		res.Allowed = true
		res.Reason = fmt.Sprintf("risk tier %s does not require human approval", tier)
		return res
	}
	if mandate == nil {
		res.Reason = fmt.Sprintf("risk tier %s requires an approved mandate but none was provided", tier)
		res.BlockingRequirement = BlockMandate
		return res
	}
	switch mandate.ApprovalState {
	case domain.ApprovalApproved:
		res.Allowed = true
		res.Reason = fmt.Sprintf("mandate %s approved by %s", mandate.MandateID, mandate.ApproverID)
		if tier.RequiresDistinctApprover() {
			res.Reason += " (two-person rule)"
		}
	case domain.ApprovalDenied:
		res.Reason = fmt.Sprintf("mandate %s was denied by %s", mandate.MandateID, mandate.ApproverID)
		res.BlockingRequirement = BlockApprovalDenied
	case domain.ApprovalPending:
		res.Reason = fmt.Sprintf("mandate %s is awaiting approval", mandate.MandateID)
		res.BlockingRequirement = BlockApprovalPending
	default:
		res.Reason = fmt.Sprintf("mandate %s has no approval requested (state %q)", mandate.MandateID, mandate.ApprovalState)
		res.BlockingRequirement = BlockApprovalPending
	}
	return res
}

// CheckToolAllowed verifies the tool against the mandate allowlist.
// No mandate, or an empty allowlist, means unrestricted.
func (e *Engine) CheckToolAllowed(tool string, mandate *domain.Mandate) Result {
	res := Result{GateName: GateToolAllowed}
	if mandate == nil {
		res.Allowed = true
		res.Reason = fmt.Sprintf("no mandate restricts tool %q", tool)
		return res
	}
	res.RiskTier = mandate.RiskTier
	if mandate.ToolAllowed(tool) {
		res.Allowed = true
		res.Reason = fmt.Sprintf("tool %q allowed", tool)
		return res
	}
	res.Reason = fmt.Sprintf("tool %q is not in mandate %s tool_allowlist", tool, mandate.MandateID)
	res.BlockingRequirement = BlockTool
	return res
}

// CheckSpecialistAuthorized runs the full envelope check for one specialist.
// The first failing condition, in priority order expired > budget >
// iterations > approval > allowlist, determines the blocking requirement.
func (e *Engine) CheckSpecialistAuthorized(specialist string, mandate *domain.Mandate) Result {
	res := Result{GateName: GateSpecialistAuthorized}
	if mandate == nil {
		res.Allowed = true
		res.Reason = fmt.Sprintf("no mandate restricts specialist %q", specialist)
		return res
	}
	res.RiskTier = mandate.RiskTier

	switch {
	case mandate.Expired(e.now()):
		res.Reason = fmt.Sprintf("mandate %s expired at %s", mandate.MandateID, mandate.ExpiresAt.Format(time.RFC3339))
		res.BlockingRequirement = BlockExpired
	case mandate.BudgetSpent >= mandate.BudgetLimit:
		res.Reason = fmt.Sprintf("budget exhausted: %.2f of %.2f %s spent", mandate.BudgetSpent, mandate.BudgetLimit, mandate.BudgetUnit)
		res.BlockingRequirement = BlockBudgetExhausted
	case mandate.IterationsUsed >= mandate.MaxIterations:
		res.Reason = fmt.Sprintf("iterations exhausted: %d of %d used", mandate.IterationsUsed, mandate.MaxIterations)
		res.BlockingRequirement = BlockIterationsExhausted
	case mandate.RiskTier.RequiresApproval() && mandate.ApprovalState != domain.ApprovalApproved:
		res.Reason = fmt.Sprintf("mandate %s requires approval (state %q)", mandate.MandateID, mandate.ApprovalState)
		res.BlockingRequirement = BlockApproval
	case !mandate.SpecialistAuthorized(specialist):
		res.Reason = fmt.Sprintf("specialist %q is not in mandate %s authorized_specialists", specialist, mandate.MandateID)
		res.BlockingRequirement = BlockSpecialist
	default:
		res.Allowed = true
		res.Reason = fmt.Sprintf("specialist %q authorized", specialist)
	}
	return res
}

// PreflightCheck runs every gate for one proposed invocation and returns the
// full list of verdicts. Callers must require all results allowed before
// dispatching.
func (e *Engine) PreflightCheck(specialist string, tier domain.RiskTier, mandate *domain.Mandate, tools []string) []Result {
	results := []Result{
		e.CheckMandateRequired(tier, mandate),
		e.CheckApprovalRequired(tier, mandate),
		e.CheckSpecialistAuthorized(specialist, mandate),
	}
	for _, tool := range tools {
		results = append(results, e.CheckToolAllowed(tool, mandate))
	}
	return results
}
