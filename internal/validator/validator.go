// Package validator applies the static, semantic rules a mission must satisfy
// before compilation. Validation is a pure function over the mission: it returns
// the FULL list of findings, never stops at the first problem, and never
// partially constructs anything.
package validator

import (
	"fmt"

	"github.com/intent-solutions-io/iam-bobs-brain-sub000/pkg/domain"
	"github.com/intent-solutions-io/iam-bobs-brain-sub000/pkg/registry"
)

// Option configures a validation run.
type Option func(*config)

type config struct {
	directory *registry.Directory
}

// WithDirectory enables input-contract checks against a specialist directory.
// Steps whose agent is unregistered are skipped (the directory is advisory;
// the mandate allowlist is the authoritative restriction).
func WithDirectory(d *registry.Directory) Option {
	return func(c *config) {
		c.directory = d
	}
}

// Validate checks a mission spec and returns every rule violation found.
// An empty result means the mission is structurally valid.
func Validate(mission *domain.MissionSpec, opts ...Option) []string {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}

	var errs []string

	if mission.MissionID == "" {
		errs = append(errs, "mission_id must not be empty")
	}
	if mission.Title == "" {
		errs = append(errs, "title must not be empty")
	}
	if mission.Intent == "" {
		errs = append(errs, "intent must not be empty")
	}
	if len(mission.Workflow) == 0 {
		errs = append(errs, "workflow must contain at least one step or loop")
	}

	// Only top-level step names populate the dependency-name index. References
	// into or out of loop bodies are not resolvable by name.
	known := make(map[string]bool)
	for _, item := range mission.Workflow {
		if item.Step != nil {
			if item.Step.StepName == "" {
				errs = append(errs, "workflow contains a step with an empty step name")
				continue
			}
			if known[item.Step.StepName] {
				errs = append(errs, fmt.Sprintf("duplicate step name %q", item.Step.StepName))
			}
			known[item.Step.StepName] = true
		}
	}

	for _, item := range mission.Workflow {
		switch {
		case item.IsLoop():
			errs = append(errs, validateLoop(item.Loop)...)
		case item.Step != nil:
			errs = append(errs, validateStep(item.Step, known, &cfg)...)
		default:
			errs = append(errs, "workflow contains an empty item (neither step nor loop)")
		}
	}

	// Allowlist coverage: every referenced agent, including agents inside loop
	// bodies, must appear in a non-empty allowlist.
	if allow := mission.Mandate.AuthorizedSpecialists; len(allow) > 0 {
		allowed := make(map[string]bool, len(allow))
		for _, a := range allow {
			allowed[a] = true
		}
		for _, agent := range mission.Agents() {
			if !allowed[agent] {
				errs = append(errs, fmt.Sprintf("agent %q is not in mandate.authorized_specialists %v", agent, allow))
			}
		}
	}

	return errs
}

func validateStep(step *domain.WorkflowStep, known map[string]bool, cfg *config) []string {
	var errs []string
	if step.Agent == "" {
		errs = append(errs, fmt.Sprintf("step %q has no agent", step.StepName))
	}
	for _, dep := range step.DependsOn {
		if !known[dep] {
			errs = append(errs, fmt.Sprintf("step %q depends on unknown step %q", step.StepName, dep))
		}
	}
	if cfg.directory != nil {
		errs = append(errs, cfg.directory.CheckInputs(step.Agent, step.Inputs)...)
	}
	return errs
}

func validateLoop(loop *domain.LoopStep) []string {
	var errs []string
	if loop.Name == "" {
		errs = append(errs, "workflow contains a loop with an empty name")
	}
	if loop.MaxIterations < 1 {
		errs = append(errs, fmt.Sprintf("loop %q: max_iterations must be >= 1", loop.Name))
	}
	if len(loop.Steps) == 0 {
		errs = append(errs, fmt.Sprintf("loop %q has no steps", loop.Name))
	}
	for _, step := range loop.Steps {
		if step.StepName == "" {
			errs = append(errs, fmt.Sprintf("loop %q contains a step with an empty step name", loop.Name))
		}
		if step.Agent == "" {
			errs = append(errs, fmt.Sprintf("loop %q step %q has no agent", loop.Name, step.StepName))
		}
	}
	return errs
}
