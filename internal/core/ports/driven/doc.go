// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the upload pipeline to function:
//
//   - ImageCompressor: Shrinks a selected image before upload
//   - UploadTransport: Sends the multipart submission and reports progress
//   - PreviewStore: Creates and releases slot preview resources
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - KycStatusProvider: Supplies the account KYC status. Without it the status is unknown.
//   - AttemptStore: Submission history. Without it attempts are not recorded.
//   - ImageLoader: Reads images from disk for the CLI and watcher.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
