package gate

import (
	"context"
	"fmt"
	"sync"
	"time"

	"log/slog"

	"github.com/intent-solutions-io/iam-bobs-brain-sub000/internal/logging"
	"github.com/intent-solutions-io/iam-bobs-brain-sub000/pkg/domain"
	"github.com/intent-solutions-io/iam-bobs-brain-sub000/pkg/ports"
)

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Ledger serializes mandate access so the preflight check and the
// spend/iteration increment form one atomic sequence. Without it, two
// concurrent dispatches on independent DAG branches could both pass a budget
// check only one of them can satisfy.
//
// It uses reference counting to garbage collect unused per-mandate locks.
type Ledger struct {
	engine *Engine

	mu    sync.Mutex            // Global lock for the map
	locks map[string]*lockEntry // Map of active locks

	locker ports.MandateLocker // Optional distributed locker
	logger *slog.Logger
}

// LedgerOption configures the Ledger.
type LedgerOption func(*Ledger)

// WithLocker enables distributed locking, for dispatchers sharing one
// mandate across process replicas.
func WithLocker(locker ports.MandateLocker) LedgerOption {
	return func(l *Ledger) {
		l.locker = locker
	}
}

// WithLogger configures a logger for the Ledger.
func WithLogger(logger *slog.Logger) LedgerOption {
	return func(l *Ledger) {
		l.logger = logger
	}
}

// NewLedger creates a gate ledger around the given engine.
func NewLedger(engine *Engine, opts ...LedgerOption) *Ledger {
	l := &Ledger{
		engine: engine,
		locks:  make(map[string]*lockEntry),
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Engine returns the underlying pure engine, for read-only checks that need
// no serialization (e.g. rendering a gate report).
func (l *Ledger) Engine() *Engine { return l.engine }

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST lock entry.mu, then call release(mandateID) after unlocking.
func (l *Ledger) acquire(mandateID string) *lockEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, exists := l.locks[mandateID]
	if !exists {
		entry = &lockEntry{}
		l.locks[mandateID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry at zero.
func (l *Ledger) release(mandateID string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, exists := l.locks[mandateID]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(l.locks, mandateID)
	}
}

// WithLock executes fn while holding the lock for the mandate. A nil or
// empty mandate ID runs fn without serialization (nothing to contend on).
func (l *Ledger) WithLock(ctx context.Context, mandateID string, fn func(context.Context) error) error {
	if mandateID == "" {
		return fn(ctx)
	}

	entry := l.acquire(mandateID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		l.release(mandateID)
	}()

	if l.locker != nil {
		unlock, err := l.locker.Lock(ctx, mandateID, 30*time.Second)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				l.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"mandate_id", mandateID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}

// CheckRequest describes one proposed specialist invocation.
type CheckRequest struct {
	Specialist string
	RiskTier   domain.RiskTier
	Mandate    *domain.Mandate
	Tools      []string
	// Cost is the projected spend of the invocation, in the mandate's
	// budget unit. Zero is valid for invocations billed elsewhere.
	Cost float64
}

// Preflight runs a read-only gate check under the mandate lock.
func (l *Ledger) Preflight(ctx context.Context, req CheckRequest) ([]Result, error) {
	var results []Result
	err := l.WithLock(ctx, mandateID(req.Mandate), func(context.Context) error {
		results = l.engine.PreflightCheck(req.Specialist, req.RiskTier, req.Mandate, req.Tools)
		return nil
	})
	return results, err
}

// Reservation is a tentative spend/iteration increment applied under the
// mandate lock. The dispatcher commits after a successful invocation or
// rolls back on failure; exactly one of the two must be called.
type Reservation struct {
	ledger  *Ledger
	mandate *domain.Mandate
	cost    float64

	once sync.Once
}

// Commit finalizes the reservation. The increments stay applied.
func (r *Reservation) Commit() {
	r.once.Do(func() {})
}

// Rollback undoes the reservation's increments.
func (r *Reservation) Rollback(ctx context.Context) error {
	var err error
	r.once.Do(func() {
		err = r.ledger.WithLock(ctx, r.mandate.MandateID, func(context.Context) error {
			r.mandate.BudgetSpent -= r.cost
			r.mandate.IterationsUsed--
			return nil
		})
	})
	return err
}

// Reserve atomically runs the preflight check and, when every gate passes,
// applies the spend/iteration increments. Returns the full verdict list
// either way; the Reservation is nil when any gate blocked or the projected
// cost would breach the budget limit.
func (l *Ledger) Reserve(ctx context.Context, req CheckRequest) ([]Result, *Reservation, error) {
	var (
		results []Result
		resv    *Reservation
	)
	err := l.WithLock(ctx, mandateID(req.Mandate), func(context.Context) error {
		results = l.engine.PreflightCheck(req.Specialist, req.RiskTier, req.Mandate, req.Tools)
		if !Allowed(results) {
			return nil
		}
		if req.Mandate == nil {
			// Nothing to reserve against; low tiers dispatch unmetered.
			resv = &Reservation{ledger: l, mandate: &domain.Mandate{}}
			return nil
		}
		if req.Mandate.BudgetSpent+req.Cost > req.Mandate.BudgetLimit {
			results = append(results, Result{
				GateName: GateSpecialistAuthorized,
				RiskTier: req.Mandate.RiskTier,
				Reason: fmt.Sprintf("reserving %.2f %s would exceed budget (%.2f of %.2f spent)",
					req.Cost, req.Mandate.BudgetUnit, req.Mandate.BudgetSpent, req.Mandate.BudgetLimit),
				BlockingRequirement: BlockBudgetExhausted,
			})
			return nil
		}
		req.Mandate.BudgetSpent += req.Cost
		req.Mandate.IterationsUsed++
		resv = &Reservation{ledger: l, mandate: req.Mandate, cost: req.Cost}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return results, resv, nil
}

func mandateID(m *domain.Mandate) string {
	if m == nil {
		return ""
	}
	return m.MandateID
}
