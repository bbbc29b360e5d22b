// Package schema parses declarative mission documents (YAML or JSON) into
// domain.MissionSpec values.
//
// Parsing happens in two layers: the raw document is first checked against an
// embedded OpenAPI schema (shape, required keys, field types), then decoded
// into the typed model. Workflow items are a tagged union — a plain step or a
// "loop:" wrapper — and the discriminant is resolved exactly once here.
//
// Parsing is strict about construction-time invariants (an unknown risk tier
// is an error, not a deferred validation finding) but does not apply the
// semantic rules of internal/validator; callers run validation separately.
package schema
