package domain

import "time"

// PlannedTask is one concrete, deterministically-identified unit of work
// derived from a workflow step or loop iteration. Owned exclusively by the
// ExecutionPlan that produced it; never mutated after plan construction
// except for dependency rewriting during compilation itself.
type PlannedTask struct {
	TaskID   string         `json:"task_id"`
	StepName string         `json:"step_name"`
	Agent    string         `json:"agent"`
	Inputs   map[string]any `json:"inputs,omitempty"`
	// DependsOn holds task IDs after compilation resolves step-name references.
	DependsOn     []string `json:"depends_on,omitempty"`
	LoopName      string   `json:"loop_name,omitempty"`
	LoopIteration int      `json:"loop_iteration,omitempty"`
	SkillID       string   `json:"skill_id,omitempty"`
}

// ExecutionPlan is the immutable output of a single compile.
// ExecutionOrder is a dependency-respecting topological linearization of
// Tasks; consumers depend on that property.
type ExecutionPlan struct {
	PlanID         string        `json:"plan_id"`
	MissionID      string        `json:"mission_id"`
	MissionTitle   string        `json:"mission_title"`
	CreatedAt      time.Time     `json:"created_at"`
	ContentHash    string        `json:"content_hash"`
	Tasks          []PlannedTask `json:"tasks"`
	ExecutionOrder []string      `json:"execution_order"`
	Mandate        *Mandate      `json:"mandate"`
	Repos          []RepoScope   `json:"repos,omitempty"`

	TotalSteps        int  `json:"total_steps"`
	HasLoops          bool `json:"has_loops"`
	MaxLoopIterations int  `json:"max_loop_iterations"`
}

// Task returns the planned task with the given ID, or nil.
func (p *ExecutionPlan) Task(taskID string) *PlannedTask {
	for i := range p.Tasks {
		if p.Tasks[i].TaskID == taskID {
			return &p.Tasks[i]
		}
	}
	return nil
}

// DispatchRequest is the dispatch-ready descriptor handed to the external
// dispatch loop: the plan reference, the governing mandate and the evidence
// requirements the dispatcher must uphold.
type DispatchRequest struct {
	PlanID         string   `json:"plan_id"`
	MissionID      string   `json:"mission_id"`
	ExecutionOrder []string `json:"execution_order"`
	Mandate        *Mandate `json:"mandate"`
	BundleRequired bool     `json:"bundle_required"`
	ExportToGCS    bool     `json:"export_to_gcs,omitempty"`
	GCSBucket      string   `json:"gcs_bucket,omitempty"`
}
