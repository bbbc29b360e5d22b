// Package dsl provides a fluent builder for mission specs, for callers that
// assemble missions programmatically instead of loading YAML documents.
// Build runs the same validation as the file path, so a mission that builds
// successfully also compiles.
package dsl
