package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound   = errors.New("not found")
	ErrBadRequest = errors.New("bad request")

	// ErrNotification means the OTP record was persisted but delivery failed.
	// The record stays live until TTL expiry; callers should offer a resend.
	ErrNotification = errors.New("notification delivery failed")

	// Verification outcomes. All three surface to the end user as the same
	// "invalid or expired code" message; they are distinguished only for logging.
	ErrNoRecord     = errors.New("no verification code found")
	ErrCodeMismatch = errors.New("verification code mismatch")
	ErrCodeExpired  = errors.New("verification code expired")
)
