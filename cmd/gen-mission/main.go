// Command gen-mission scaffolds a golden-path mission document used by the
// examples and smoke tests. The generated file is validated before the
// command reports success, so a drifting document format fails loudly here.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	brain "github.com/intent-solutions-io/iam-bobs-brain-sub000"
)

const goldenMission = `mission_id: golden-path
title: Golden path hygiene run
intent: exercise every mission construct end to end
version: "1"
scope:
  repos:
    - path: services/api
      ref: main
workflow:
  - step: scan
    agent: iam-qa
    inputs:
      target: ./...
    outputs:
      - findings.json
  - step: fix
    agent: iam-hygiene
    depends_on:
      - scan
    condition: findings_count > 0
  - loop:
      name: verify
      until: all checks green
      max_iterations: 3
      gates:
        - lint
      steps:
        - step: run-checks
          agent: iam-qa
mandate:
  budget_limit: 25
  budget_unit: USD
  max_iterations: 10
  authorized_specialists:
    - iam-qa
    - iam-hygiene
  risk_tier: R2
  data_classification: internal
evidence:
  bundle_required: true
  include:
    - findings.json
`

func main() {
	targetDir := "examples/golden-path"
	if len(os.Args) > 1 {
		targetDir = os.Args[1]
	}

	if err := os.MkdirAll(targetDir, 0755); err != nil {
		panic(err)
	}

	fmt.Printf("Generating golden-path mission in: %s\n", targetDir)

	path := filepath.Join(targetDir, "mission.yaml")
	check(os.WriteFile(path, []byte(goldenMission), 0644))

	// The scaffold must always pass its own validator.
	findings, err := brain.New().ValidateFile(path)
	check(err)
	if len(findings) > 0 {
		panic(fmt.Sprintf("generated mission is invalid: %v", findings))
	}

	fmt.Println("Done. Verify contents in", targetDir)
}

func check(err error) {
	if err != nil {
		panic(err)
	}
}
