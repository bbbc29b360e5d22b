package gate

import (
	"context"
	"time"

	"log/slog"

	"github.com/intent-solutions-io/iam-bobs-brain-sub000/internal/logging"
	"github.com/intent-solutions-io/iam-bobs-brain-sub000/pkg/domain"
	"github.com/intent-solutions-io/iam-bobs-brain-sub000/pkg/ports"
)

// ApprovalManager drives mandate approval transitions under the ledger's
// per-mandate lock and notifies the human channel. Notification failures
// are logged, never propagated: delivery has no bearing on gate decisions.
type ApprovalManager struct {
	ledger   *Ledger
	notifier ports.ApprovalNotifier
	logger   *slog.Logger
	now      func() time.Time
}

// ApprovalOption configures the ApprovalManager.
type ApprovalOption func(*ApprovalManager)

// WithNotifier sets the approval delivery channel.
func WithNotifier(notifier ports.ApprovalNotifier) ApprovalOption {
	return func(a *ApprovalManager) {
		a.notifier = notifier
	}
}

// WithApprovalLogger configures the manager's logger.
func WithApprovalLogger(logger *slog.Logger) ApprovalOption {
	return func(a *ApprovalManager) {
		a.logger = logger
	}
}

// WithApprovalClock injects the time source for approval timestamps.
func WithApprovalClock(now func() time.Time) ApprovalOption {
	return func(a *ApprovalManager) {
		a.now = now
	}
}

// NewApprovalManager creates an approval manager bound to the given ledger.
func NewApprovalManager(ledger *Ledger, opts ...ApprovalOption) *ApprovalManager {
	a := &ApprovalManager{
		ledger: ledger,
		logger: logging.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Request moves the mandate into pending and notifies the channel.
func (a *ApprovalManager) Request(ctx context.Context, mandate *domain.Mandate, requestedBy string) error {
	err := a.ledger.WithLock(ctx, mandate.MandateID, func(context.Context) error {
		return mandate.RequestApproval(requestedBy)
	})
	if err != nil {
		return err
	}
	a.notifyRequested(ctx, mandate)
	return nil
}

// Approve resolves a pending mandate. R4 mandates enforce the two-person
// rule: the approver must differ from the requester.
func (a *ApprovalManager) Approve(ctx context.Context, mandate *domain.Mandate, approverID string) error {
	err := a.ledger.WithLock(ctx, mandate.MandateID, func(context.Context) error {
		return mandate.Approve(approverID, a.now().UTC())
	})
	if err != nil {
		return err
	}
	a.logger.Info("mandate approved",
		"mandate_id", mandate.MandateID,
		"approver_id", approverID,
	)
	a.notifyResolved(ctx, mandate)
	return nil
}

// Deny resolves a pending mandate as rejected.
func (a *ApprovalManager) Deny(ctx context.Context, mandate *domain.Mandate, approverID string) error {
	err := a.ledger.WithLock(ctx, mandate.MandateID, func(context.Context) error {
		return mandate.Deny(approverID, a.now().UTC())
	})
	if err != nil {
		return err
	}
	a.logger.Info("mandate denied",
		"mandate_id", mandate.MandateID,
		"approver_id", approverID,
	)
	a.notifyResolved(ctx, mandate)
	return nil
}

func (a *ApprovalManager) notifyRequested(ctx context.Context, mandate *domain.Mandate) {
	if a.notifier == nil {
		return
	}
	if err := a.notifier.NotifyApprovalRequested(ctx, mandate); err != nil {
		a.logger.Warn("approval request notification failed",
			"mandate_id", mandate.MandateID,
			"err", err,
		)
	}
}

func (a *ApprovalManager) notifyResolved(ctx context.Context, mandate *domain.Mandate) {
	if a.notifier == nil {
		return
	}
	if err := a.notifier.NotifyApprovalResolved(ctx, mandate); err != nil {
		a.logger.Warn("approval resolution notification failed",
			"mandate_id", mandate.MandateID,
			"err", err,
		)
	}
}
