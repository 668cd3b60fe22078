// Package file provides the TOML configuration store.
//
// Settings live in ~/.kycup/config.toml by default, one table per
// settings group:
//
//	[api]
//	base_url = "https://kyc.example.com"
//
//	[upload]
//	timeout_seconds = 60
//	max_attempts = 3
//
// Keys are exposed to the application in dot notation ("upload.max_attempts").
package file
