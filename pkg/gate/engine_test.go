package gate_test

import (
	"testing"
	"time"

	"github.com/intent-solutions-io/iam-bobs-brain-sub000/pkg/domain"
	"github.com/intent-solutions-io/iam-bobs-brain-sub000/pkg/gate"
	"github.com/stretchr/testify/assert"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func openMandate() *domain.Mandate {
	return &domain.Mandate{
		MandateID:     "mandate-test",
		BudgetLimit:   10.0,
		BudgetUnit:    "USD",
		MaxIterations: 5,
		RiskTier:      domain.RiskR2,
		ApprovalState: domain.ApprovalAuto,
	}
}

func TestCheckMandateRequired(t *testing.T) {
	e := gate.NewEngine()

	// R0/R1 never need a mandate.
	res := e.CheckMandateRequired(domain.RiskR1, nil)
	assert.True(t, res.Allowed)
	assert.Equal(t, gate.GateMandateRequired, res.GateName)

	// R2 without a mandate is blocked.
	res = e.CheckMandateRequired(domain.RiskR2, nil)
	assert.False(t, res.Allowed)
	assert.Equal(t, gate.BlockMandate, res.BlockingRequirement)
	assert.NotEmpty(t, res.Reason)

	res = e.CheckMandateRequired(domain.RiskR2, openMandate())
	assert.True(t, res.Allowed)
}

func TestCheckApprovalRequired_StateMachine(t *testing.T) {
	e := gate.NewEngine()
	m := openMandate()
	m.RiskTier = domain.RiskR3

	// Missing mandate, pending and denied each get a distinct tag.
	res := e.CheckApprovalRequired(domain.RiskR3, nil)
	assert.False(t, res.Allowed)
	assert.Equal(t, gate.BlockMandate, res.BlockingRequirement)

	m.ApprovalState = domain.ApprovalPending
	res = e.CheckApprovalRequired(domain.RiskR3, m)
	assert.False(t, res.Allowed)
	assert.Equal(t, gate.BlockApprovalPending, res.BlockingRequirement)

	m.ApprovalState = domain.ApprovalDenied
	res = e.CheckApprovalRequired(domain.RiskR3, m)
	assert.False(t, res.Allowed)
	assert.Equal(t, gate.BlockApprovalDenied, res.BlockingRequirement)

	m.ApprovalState = domain.ApprovalApproved
	res = e.CheckApprovalRequired(domain.RiskR3, m)
	assert.True(t, res.Allowed)

	// Tiers below R3 pass regardless of state.
	res = e.CheckApprovalRequired(domain.RiskR2, nil)
	assert.True(t, res.Allowed)
}

func TestCheckToolAllowed(t *testing.T) {
	e := gate.NewEngine()

	assert.True(t, e.CheckToolAllowed("bash", nil).Allowed)

	m := openMandate()
	assert.True(t, e.CheckToolAllowed("bash", m).Allowed, "empty allowlist is unrestricted")

	m.ToolAllowlist = []string{"gh", "git"}
	assert.True(t, e.CheckToolAllowed("git", m).Allowed)

	res := e.CheckToolAllowed("bash", m)
	assert.False(t, res.Allowed)
	assert.Equal(t, gate.BlockTool, res.BlockingRequirement)
	assert.Contains(t, res.Reason, "bash")
}

func TestCheckSpecialistAuthorized_Priority(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	e := gate.NewEngine(gate.WithClock(fixedClock(now)))

	// Absent mandate means no restriction.
	assert.True(t, e.CheckSpecialistAuthorized("iam-qa", nil).Allowed)

	// Every condition failing at once: expiry wins.
	m := openMandate()
	m.ExpiresAt = now.Add(-time.Hour)
	m.BudgetSpent = m.BudgetLimit
	m.IterationsUsed = m.MaxIterations
	m.AuthorizedSpecialists = []string{"other"}
	res := e.CheckSpecialistAuthorized("iam-qa", m)
	assert.False(t, res.Allowed)
	assert.Equal(t, gate.BlockExpired, res.BlockingRequirement)

	// Then budget.
	m.ExpiresAt = now.Add(time.Hour)
	res = e.CheckSpecialistAuthorized("iam-qa", m)
	assert.Equal(t, gate.BlockBudgetExhausted, res.BlockingRequirement)

	// Then iterations.
	m.BudgetSpent = 0
	res = e.CheckSpecialistAuthorized("iam-qa", m)
	assert.Equal(t, gate.BlockIterationsExhausted, res.BlockingRequirement)

	// Then approval (R3 without it).
	m.IterationsUsed = 0
	m.RiskTier = domain.RiskR3
	m.ApprovalState = domain.ApprovalPending
	res = e.CheckSpecialistAuthorized("iam-qa", m)
	assert.Equal(t, gate.BlockApproval, res.BlockingRequirement)

	// Then the allowlist.
	m.ApprovalState = domain.ApprovalApproved
	res = e.CheckSpecialistAuthorized("iam-qa", m)
	assert.Equal(t, gate.BlockSpecialist, res.BlockingRequirement)

	m.AuthorizedSpecialists = []string{"other", "iam-qa"}
	assert.True(t, e.CheckSpecialistAuthorized("iam-qa", m).Allowed)
}

func TestCheckSpecialistAuthorized_BudgetBoundary(t *testing.T) {
	e := gate.NewEngine()

	// Exactly at the limit counts as exhausted.
	m := openMandate()
	m.BudgetSpent = 10.0
	res := e.CheckSpecialistAuthorized("iam-qa", m)
	assert.False(t, res.Allowed)
	assert.Equal(t, gate.BlockBudgetExhausted, res.BlockingRequirement)

	// Just below the limit still passes: the gate must flip exactly at the
	// boundary, never earlier.
	m.BudgetSpent = 9.99
	assert.True(t, e.CheckSpecialistAuthorized("iam-qa", m).Allowed)
}

func TestCheckSpecialistAuthorized_ExpiryMonotonicity(t *testing.T) {
	deadline := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m := openMandate()
	m.ExpiresAt = deadline

	before := gate.NewEngine(gate.WithClock(fixedClock(deadline.Add(-time.Second))))
	assert.True(t, before.CheckSpecialistAuthorized("iam-qa", m).Allowed)

	after := gate.NewEngine(gate.WithClock(fixedClock(deadline.Add(time.Second))))
	res := after.CheckSpecialistAuthorized("iam-qa", m)
	assert.False(t, res.Allowed)
	assert.Equal(t, gate.BlockExpired, res.BlockingRequirement)
}

func TestPreflightCheck_MissingMandate(t *testing.T) {
	e := gate.NewEngine()

	results := e.PreflightCheck("deploy-agent", domain.RiskR3, nil, nil)
	assert.False(t, gate.Allowed(results))

	var approvalBlocked bool
	for _, r := range results {
		if r.GateName == gate.GateApprovalRequired {
			assert.False(t, r.Allowed)
			assert.Equal(t, gate.BlockMandate, r.BlockingRequirement)
			approvalBlocked = true
		}
	}
	assert.True(t, approvalBlocked, "approval-required check must report the missing mandate")
}

func TestPreflightCheck_AllGates(t *testing.T) {
	e := gate.NewEngine()
	m := openMandate()
	m.ToolAllowlist = []string{"gh"}

	results := e.PreflightCheck("iam-qa", domain.RiskR2, m, []string{"gh", "bash"})
	assert.Len(t, results, 5, "three fixed gates plus one per tool")
	assert.False(t, gate.Allowed(results))

	blocked := gate.FirstBlocked(results)
	if assert.NotNil(t, blocked) {
		assert.Equal(t, gate.GateToolAllowed, blocked.GateName)
		assert.Equal(t, gate.BlockTool, blocked.BlockingRequirement)
	}

	results = e.PreflightCheck("iam-qa", domain.RiskR2, m, []string{"gh"})
	assert.True(t, gate.Allowed(results))
	assert.Nil(t, gate.FirstBlocked(results))
}

func TestResultsCarryReasons(t *testing.T) {
	e := gate.NewEngine()
	m := openMandate()
	m.AuthorizedSpecialists = []string{"iam-qa"}

	res := e.CheckSpecialistAuthorized("iam-hygiene", m)
	assert.False(t, res.Allowed)
	assert.Contains(t, res.Reason, "iam-hygiene")

	// Every verdict, allowed or not, carries a human-readable reason.
	for _, r := range e.PreflightCheck("iam-qa", domain.RiskR2, m, []string{"gh"}) {
		assert.NotEmpty(t, r.Reason, r.GateName)
	}
}
