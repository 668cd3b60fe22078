// Package domain defines the core business entities for kycup.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Slot: One of the three fixed document roles (front, back, selfie)
//   - ImageFile: A selected or compressed image held in memory
//   - UploadCandidate: A validated image occupying a slot
//   - SubmissionAttempt: One upload of the three slots to the KYC endpoint
//   - PipelineSnapshot: A read-only view of the upload pipeline state
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
