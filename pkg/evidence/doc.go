// Package evidence accumulates the auditable record of a single run: which
// tasks were planned, executed and skipped, which agents and tools were
// invoked, which artifacts were produced and their content hashes.
//
// A Bundle is owned by exactly one run and needs no internal locking. Its
// collections only grow, and the status transition is one-directional: once
// completed, failed or aborted, the bundle rejects further mutation.
package evidence
