package ports

import (
	"context"

	"github.com/intent-solutions-io/iam-bobs-brain-sub000/pkg/domain"
)

// ApprovalNotifier delivers an approval request to a human channel.
// Delivery is pure plumbing with no bearing on gate correctness: the gate
// decides from mandate state alone, whether or not a notification ever
// reached anyone.
type ApprovalNotifier interface {
	// NotifyApprovalRequested is called after a mandate transitions to
	// pending. Errors are logged by callers, never propagated into gate
	// decisions.
	NotifyApprovalRequested(ctx context.Context, mandate *domain.Mandate) error

	// NotifyApprovalResolved is called after a terminal approve/deny
	// transition.
	NotifyApprovalResolved(ctx context.Context, mandate *domain.Mandate) error
}
