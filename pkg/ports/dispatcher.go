package ports

import (
	"context"

	"github.com/intent-solutions-io/iam-bobs-brain-sub000/pkg/domain"
)

// Dispatcher is the contract the external dispatch loop must uphold. The
// core never invokes specialists itself; it hands a DispatchRequest to a
// Dispatcher and expects it to:
//
//  1. run a preflight check through the gate ledger before every task,
//  2. commit spend/iteration increments only after a successful invocation,
//  3. record outcomes in the run's evidence bundle.
type Dispatcher interface {
	Dispatch(ctx context.Context, req *domain.DispatchRequest) error
}
