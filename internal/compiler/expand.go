package compiler

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"maps"

	"github.com/intent-solutions-io/iam-bobs-brain-sub000/pkg/domain"
)

// expandMeta carries the side products of workflow expansion.
type expandMeta struct {
	// nameToID maps top-level step names to task IDs. Loop-body steps do not
	// populate this index; only top-level names are resolvable by name.
	nameToID          map[string]string
	hasLoops          bool
	maxLoopIterations int
}

// expand flattens the workflow into planned tasks, in declaration order.
// Loops expand to max_iterations × len(steps) tasks, outer iteration first:
// the compiler cannot know at compile time whether a loop exits early, so the
// expansion always shows the worst case. The ordinal index increases
// monotonically across the whole expansion, which keeps task IDs distinct
// across loop iterations.
func expand(mission *domain.MissionSpec, seed string) ([]domain.PlannedTask, expandMeta) {
	meta := expandMeta{nameToID: make(map[string]string)}
	var tasks []domain.PlannedTask
	ordinal := 0

	for _, item := range mission.Workflow {
		if item.IsLoop() {
			loop := item.Loop
			meta.hasLoops = true
			if loop.MaxIterations > meta.maxLoopIterations {
				meta.maxLoopIterations = loop.MaxIterations
			}
			for iter := 0; iter < loop.MaxIterations; iter++ {
				for _, step := range loop.Steps {
					qualified := fmt.Sprintf("%s[%d].%s", loop.Name, iter, step.StepName)
					tasks = append(tasks, domain.PlannedTask{
						TaskID:        taskID(seed, qualified, ordinal),
						StepName:      step.StepName,
						Agent:         step.Agent,
						Inputs:        maps.Clone(step.Inputs),
						DependsOn:     append([]string(nil), step.DependsOn...),
						LoopName:      loop.Name,
						LoopIteration: iter,
						SkillID:       step.SkillID,
					})
					ordinal++
				}
			}
			continue
		}

		step := item.Step
		task := domain.PlannedTask{
			TaskID:    taskID(seed, step.StepName, ordinal),
			StepName:  step.StepName,
			Agent:     step.Agent,
			Inputs:    maps.Clone(step.Inputs),
			DependsOn: append([]string(nil), step.DependsOn...),
			SkillID:   step.SkillID,
		}
		meta.nameToID[step.StepName] = task.TaskID
		tasks = append(tasks, task)
		ordinal++
	}

	return tasks, meta
}

// taskID derives a stable task identifier:
//
//	task-<hex8(SHA256(seed ":" name ":" ordinal))>
//
// Identical (seed, name, ordinal) triples always produce identical IDs, which
// makes dry runs and replays line up with evidence-bundle references across
// repeated compiles.
func taskID(seed, name string, ordinal int) string {
	sum := sha256.Sum256(fmt.Appendf(nil, "%s:%s:%d", seed, name, ordinal))
	return "task-" + hex.EncodeToString(sum[:4])
}

// resolveDependencies rewrites depends_on entries in place: known step names
// become task IDs, entries that already are task IDs stay, and anything else
// is dropped. Validation catches unresolvable references beforehand; a stale
// reference surviving to this point must not crash the compile.
func resolveDependencies(tasks []domain.PlannedTask, nameToID map[string]string) {
	ids := make(map[string]bool, len(tasks))
	for i := range tasks {
		ids[tasks[i].TaskID] = true
	}

	for i := range tasks {
		if len(tasks[i].DependsOn) == 0 {
			continue
		}
		seen := make(map[string]bool, len(tasks[i].DependsOn))
		resolved := tasks[i].DependsOn[:0]
		for _, dep := range tasks[i].DependsOn {
			if id := nameToID[dep]; id != "" {
				dep = id
			} else if !ids[dep] {
				continue
			}
			if seen[dep] {
				continue
			}
			seen[dep] = true
			resolved = append(resolved, dep)
		}
		tasks[i].DependsOn = resolved
	}
}
