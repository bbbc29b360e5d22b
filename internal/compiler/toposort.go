package compiler

import (
	"sort"

	"github.com/intent-solutions-io/iam-bobs-brain-sub000/pkg/domain"
)

// topoSort linearizes tasks with Kahn's algorithm. The ready queue is sorted
// by task ID before every pop — the tie-break is mandatory: two tasks with no
// dependency relation must emerge in the same relative order on every
// compile. Returns the order and whether a cycle was found (in which case the
// order is incomplete and must not be used).
func topoSort(tasks []domain.PlannedTask) (order []string, cycle bool) {
	indegree := make(map[string]int, len(tasks))
	dependents := make(map[string][]string, len(tasks))

	for i := range tasks {
		indegree[tasks[i].TaskID] = len(tasks[i].DependsOn)
		for _, dep := range tasks[i].DependsOn {
			dependents[dep] = append(dependents[dep], tasks[i].TaskID)
		}
	}

	var ready []string
	for i := range tasks {
		if indegree[tasks[i].TaskID] == 0 {
			ready = append(ready, tasks[i].TaskID)
		}
	}

	order = make([]string, 0, len(tasks))
	for len(ready) > 0 {
		sort.Strings(ready)
		next := ready[0]
		ready = ready[1:]
		order = append(order, next)

		for _, dependent := range dependents[next] {
			indegree[dependent]--
			if indegree[dependent] == 0 {
				ready = append(ready, dependent)
			}
		}
	}

	if len(order) < len(tasks) {
		return order, true
	}
	return order, false
}

// declarationOrder is the lenient cycle fallback: tasks in the order the
// workflow declared them. It does NOT respect dependencies.
func declarationOrder(tasks []domain.PlannedTask) []string {
	order := make([]string, len(tasks))
	for i := range tasks {
		order[i] = tasks[i].TaskID
	}
	return order
}
