// Package middleware provides composable wrappers around a ManifestStore.
package middleware

import "github.com/intent-solutions-io/iam-bobs-brain-sub000/pkg/ports"

// Middleware allows wrapping a ManifestStore to add behavior.
type Middleware func(ports.ManifestStore) ports.ManifestStore
