// Package kycapi talks to the platform's KYC endpoints.
//
// Client implements driven.UploadTransport by posting the three document
// images as multipart/form-data, and driven.KycStatusProvider by reading
// the current user's record. A configured bearer token is attached through
// an oauth2 static token source.
package kycapi
