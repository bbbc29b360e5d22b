// Package gate is the policy decision engine. Every specialist invocation
// must pass a preflight check against the governing mandate before dispatch.
//
// The Engine is pure: it reads the mandate and an injected clock and returns
// named verdicts without mutating anything. The Ledger wraps the Engine with
// per-mandate serialization and a reserve-then-commit protocol so that
// concurrent dispatches cannot both pass a budget check only one of them can
// satisfy.
package gate
