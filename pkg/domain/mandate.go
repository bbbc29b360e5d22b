package domain

import (
	"fmt"
	"time"
)

// ApprovalState is the human-approval state of a mandate.
type ApprovalState string

const (
	// ApprovalAuto means no human approval is required for this mandate.
	ApprovalAuto ApprovalState = "auto"
	// ApprovalPending means approval has been requested but not yet resolved.
	ApprovalPending ApprovalState = "pending"
	// ApprovalApproved means a human approver granted the mandate.
	ApprovalApproved ApprovalState = "approved"
	// ApprovalDenied means a human approver rejected the mandate.
	ApprovalDenied ApprovalState = "denied"
)

// Mandate is the budget/authorization/approval envelope governing a run.
// BudgetSpent and IterationsUsed are monotonically increasing and only ever
// mutated through the gate ledger; everything else is fixed at derivation
// except the approval fields, which transition via Approve/Deny.
type Mandate struct {
	MandateID   string  `json:"mandate_id"`
	Intent      string  `json:"intent"`
	BudgetLimit float64 `json:"budget_limit"`
	BudgetUnit  string  `json:"budget_unit"`
	BudgetSpent float64 `json:"budget_spent"`

	MaxIterations  int `json:"max_iterations"`
	IterationsUsed int `json:"iterations_used"`

	// AuthorizedSpecialists and ToolAllowlist are allowlists; empty means
	// unrestricted.
	AuthorizedSpecialists []string `json:"authorized_specialists,omitempty"`
	ToolAllowlist         []string `json:"tool_allowlist,omitempty"`

	RiskTier           RiskTier `json:"risk_tier"`
	DataClassification string   `json:"data_classification,omitempty"`

	ApprovalState     ApprovalState `json:"approval_state"`
	ApproverID        string        `json:"approver_id,omitempty"`
	ApprovalTimestamp time.Time     `json:"approval_timestamp,omitempty"`
	RequestedBy       string        `json:"requested_by,omitempty"`

	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

// SpecialistAuthorized reports whether the specialist passes the allowlist.
// An empty allowlist authorizes everyone.
func (m *Mandate) SpecialistAuthorized(specialist string) bool {
	if len(m.AuthorizedSpecialists) == 0 {
		return true
	}
	for _, s := range m.AuthorizedSpecialists {
		if s == specialist {
			return true
		}
	}
	return false
}

// ToolAllowed reports whether the tool passes the allowlist.
// An empty allowlist allows every tool.
func (m *Mandate) ToolAllowed(tool string) bool {
	if len(m.ToolAllowlist) == 0 {
		return true
	}
	for _, t := range m.ToolAllowlist {
		if t == tool {
			return true
		}
	}
	return false
}

// Expired reports whether the mandate deadline has passed.
// A zero ExpiresAt means the mandate never expires.
func (m *Mandate) Expired(now time.Time) bool {
	return !m.ExpiresAt.IsZero() && now.After(m.ExpiresAt)
}

// RequestApproval moves the mandate into the pending state.
// Only valid from auto or pending (re-requesting is a no-op).
func (m *Mandate) RequestApproval(requestedBy string) error {
	switch m.ApprovalState {
	case ApprovalAuto, ApprovalPending:
		m.ApprovalState = ApprovalPending
		m.RequestedBy = requestedBy
		return nil
	default:
		return fmt.Errorf("%w: cannot request approval from state %q", ErrApprovalTransition, m.ApprovalState)
	}
}

// Approve resolves a pending approval. Approved and denied are terminal.
// For R4 mandates the two-person rule applies: the approver must differ from
// the requester.
func (m *Mandate) Approve(approverID string, now time.Time) error {
	if m.ApprovalState != ApprovalPending {
		return fmt.Errorf("%w: cannot approve from state %q", ErrApprovalTransition, m.ApprovalState)
	}
	if m.RiskTier.RequiresDistinctApprover() && approverID != "" && approverID == m.RequestedBy {
		return fmt.Errorf("%w: %s mandates require an approver distinct from the requester", ErrApprovalTransition, m.RiskTier)
	}
	m.ApprovalState = ApprovalApproved
	m.ApproverID = approverID
	m.ApprovalTimestamp = now
	return nil
}

// Deny resolves a pending approval. Approved and denied are terminal.
func (m *Mandate) Deny(approverID string, now time.Time) error {
	if m.ApprovalState != ApprovalPending {
		return fmt.Errorf("%w: cannot deny from state %q", ErrApprovalTransition, m.ApprovalState)
	}
	m.ApprovalState = ApprovalDenied
	m.ApproverID = approverID
	m.ApprovalTimestamp = now
	return nil
}

// Snapshot returns a deep copy suitable for freezing into an evidence bundle.
func (m *Mandate) Snapshot() *Mandate {
	if m == nil {
		return nil
	}
	clone := *m
	clone.AuthorizedSpecialists = append([]string(nil), m.AuthorizedSpecialists...)
	clone.ToolAllowlist = append([]string(nil), m.ToolAllowlist...)
	return &clone
}
