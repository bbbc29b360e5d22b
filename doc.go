/*
Package brain compiles declarative mission documents into deterministic
execution plans and enforces the mandate that governs them.

It separates planning (the compiler), authorization (the policy gates and
the mandate ledger) and accountability (the evidence bundle), while the
actual execution of work stays behind the Dispatcher port. This keeps the
core embeddable in any surface: CLI, HTTP service, or MCP tooling.

# Concept

A mission is a YAML document describing what should happen: workflow steps,
loops with iteration caps, a budget envelope and evidence requirements.
Compiling a mission produces an ExecutionPlan whose task identifiers and
ordering are reproducible from the document content alone, plus the Mandate
that every subsequent specialist invocation is checked against.

# Key properties

  - Deterministic compilation: the same document always yields the same
    plan ID, task IDs and execution order.
  - Gate checks are pure and read-only; budget consumption happens only
    through ledger reservations, serialized per mandate.
  - Evidence bundles only ever move forward: records accumulate, status
    transitions are one-directional and terminal states freeze the bundle.

# Usage

	package main

	import (
		"context"
		"fmt"
		"log"

		brain "github.com/intent-solutions-io/iam-bobs-brain-sub000"
	)

	func main() {
		b := brain.New(brain.WithEvidenceDir("./runs"))

		res, err := b.CompileFile("mission.yaml")
		if err != nil {
			log.Fatal(err)
		}
		if !res.Success {
			log.Fatalf("invalid mission:\n%s", brain.FormatFindings(res.Errors))
		}

		runner := &brain.Runner{}
		bundle, err := runner.Run(context.Background(), b, res)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println("evidence bundle:", bundle.ID())
	}
*/
package brain
