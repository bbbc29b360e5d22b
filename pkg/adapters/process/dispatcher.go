// Package process implements ports.Dispatcher by handing the dispatch
// request to an external command, for deployments where the dispatch loop
// runs as a separate program.
package process

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"

	"github.com/intent-solutions-io/iam-bobs-brain-sub000/pkg/domain"
)

// Dispatcher executes a fixed command for every dispatch request. The
// request is written to the command's stdin as JSON; identifying fields are
// additionally exposed as environment variables.
//
// Security: the command and its arguments are configured once at
// construction. Nothing from the request is ever interpolated into the
// command line, which rules out flag injection from mission content.
type Dispatcher struct {
	command string
	args    []string
	baseDir string
}

// DispatcherOption configures the dispatcher.
type DispatcherOption func(*Dispatcher)

// WithBaseDir sets the working directory for the executed command.
func WithBaseDir(dir string) DispatcherOption {
	return func(d *Dispatcher) {
		d.baseDir = dir
	}
}

// NewDispatcher creates a process dispatcher running the given command.
func NewDispatcher(command string, args []string, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		command: command,
		args:    args,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch runs the command with the request on stdin and waits for it to
// exit. A non-zero exit is an error carrying the command's stderr.
func (d *Dispatcher) Dispatch(ctx context.Context, req *domain.DispatchRequest) error {
	payload, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal dispatch request: %w", err)
	}

	cmd := exec.CommandContext(ctx, d.command, d.args...)
	cmd.Dir = d.baseDir
	cmd.Stdin = bytes.NewReader(payload)
	cmd.Env = append(cmd.Environ(),
		"BRAIN_PLAN_ID="+req.PlanID,
		"BRAIN_MISSION_ID="+req.MissionID,
	)
	if req.Mandate != nil {
		cmd.Env = append(cmd.Env, "BRAIN_MANDATE_ID="+req.Mandate.MandateID)
	}

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("dispatch command failed: %w. Stderr: %s", err, stderr.String())
	}
	return nil
}
