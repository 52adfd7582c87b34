package service

import "context"

// OTPService manages the short-lived numeric codes used for email
// verification. Codes are single-use: a successful Verify consumes the code
// so replaying it fails.
type OTPService interface {
	// Generate creates a fresh code for the identifier and stores it with
	// the verification-window TTL, silently invalidating any prior
	// pending code for the same identifier.
	Generate(ctx context.Context, identifier string) (string, error)

	// Verify checks the supplied code against the stored one and consumes
	// it on success. Absent, expired and mismatched codes all report
	// false; the pending code survives a mismatch.
	Verify(ctx context.Context, identifier, code string) (bool, error)
}
