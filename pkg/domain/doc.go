// Package domain contains the core data model of the mission compiler:
// mission specifications, execution plans, mandates and evidence manifests.
//
// Types in this package are plain data. Behavior lives in the compiler
// (internal/compiler), the policy gate engine (pkg/gate) and the evidence
// bundle manager (pkg/evidence). A MissionSpec is immutable after load; an
// ExecutionPlan is immutable after compilation; the Mandate is the one piece
// of shared mutable state and is only ever mutated through the gate ledger.
package domain
