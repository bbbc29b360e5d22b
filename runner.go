package brain

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/intent-solutions-io/iam-bobs-brain-sub000/internal/compiler"
	"github.com/intent-solutions-io/iam-bobs-brain-sub000/pkg/domain"
	"github.com/intent-solutions-io/iam-bobs-brain-sub000/pkg/evidence"
	"github.com/intent-solutions-io/iam-bobs-brain-sub000/pkg/gate"
	"github.com/intent-solutions-io/iam-bobs-brain-sub000/pkg/ports"
)

// Runner takes a compiled mission through the gated hand-off sequence:
// preflight every specialist the plan invokes, open the evidence bundle,
// record the planned tasks, then hand the dispatch request to the external
// dispatch loop. Execution itself lives behind the Dispatcher port.
type Runner struct {
	Output io.Writer

	// Dispatcher receives the dispatch-ready request. When nil the run
	// stops after evidence setup and reports that no loop is attached.
	Dispatcher ports.Dispatcher
}

// ErrPreflightBlocked is returned when a policy gate blocks the run.
var ErrPreflightBlocked = errors.New("preflight blocked")

// Run performs the hand-off for a successful compile result and returns the
// evidence bundle it opened (also persisted when the mission requires one).
// A blocked gate aborts the bundle and returns ErrPreflightBlocked wrapped
// with the blocking requirement.
func (r *Runner) Run(ctx context.Context, b *Brain, res compiler.Result) (*evidence.Bundle, error) {
	if !res.Success {
		return nil, fmt.Errorf("mission did not compile: %d error(s)", len(res.Errors))
	}
	plan := res.Plan
	mandate := res.Mandate

	bundle := b.NewBundle(plan.MissionID, plan.PlanID, mandate)
	for _, taskID := range plan.ExecutionOrder {
		if err := bundle.RecordTaskPlanned(taskID); err != nil {
			return nil, err
		}
	}

	for _, agent := range planAgents(plan.Tasks) {
		results, err := b.Preflight(ctx, gate.CheckRequest{
			Specialist: agent,
			RiskTier:   mandate.RiskTier,
			Mandate:    mandate,
		})
		if err != nil {
			return nil, err
		}
		if blocked := gate.FirstBlocked(results); blocked != nil {
			reason := fmt.Sprintf("%s: %s", agent, blocked.Reason)
			if err := bundle.MarkAborted(reason); err != nil {
				return nil, err
			}
			if res.Request.BundleRequired {
				if err := bundle.Save(ctx, b.store); err != nil {
					return bundle, err
				}
			}
			return bundle, fmt.Errorf("%w: %s (%s)", ErrPreflightBlocked, blocked.Reason, blocked.BlockingRequirement)
		}
	}

	if res.Request.BundleRequired {
		if err := bundle.Save(ctx, b.store); err != nil {
			return bundle, err
		}
	}

	if r.Dispatcher == nil {
		if r.Output != nil {
			fmt.Fprintf(r.Output, "Plan %s cleared all gates; no dispatch loop attached, nothing executed.\n", plan.PlanID)
		}
		return bundle, nil
	}

	if err := r.Dispatcher.Dispatch(ctx, res.Request); err != nil {
		return bundle, fmt.Errorf("dispatch failed: %w", err)
	}
	if r.Output != nil {
		fmt.Fprintf(r.Output, "Plan %s dispatched (%d tasks).\n", plan.PlanID, len(plan.Tasks))
	}
	return bundle, nil
}

// planAgents returns the distinct agents in plan order.
func planAgents(tasks []domain.PlannedTask) []string {
	seen := make(map[string]bool, len(tasks))
	var agents []string
	for _, t := range tasks {
		if !seen[t.Agent] {
			seen[t.Agent] = true
			agents = append(agents, t.Agent)
		}
	}
	return agents
}
