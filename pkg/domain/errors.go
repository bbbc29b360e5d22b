package domain

import "errors"

// ErrUnknownRiskTier is returned when a risk tier string is not one of R0..R4.
var ErrUnknownRiskTier = errors.New("unknown risk tier")

// ErrApprovalTransition is returned on an invalid approval state transition.
var ErrApprovalTransition = errors.New("invalid approval transition")

// ErrManifestNotFound is returned when an evidence bundle manifest cannot be
// found on load. A bundle cannot be reconstructed without its manifest.
var ErrManifestNotFound = errors.New("evidence manifest not found")

// ErrBundleTerminal is returned when mutating a bundle whose status is final.
var ErrBundleTerminal = errors.New("evidence bundle already in terminal status")
