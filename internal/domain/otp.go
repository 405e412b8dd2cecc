package domain

import "time"

// OTP is a one-time passcode bound to an email address.
// PK: otp_id (ULID). Records are immutable — a resend always creates a new row.
// ExpiresAt is a Unix timestamp used as the DynamoDB TTL attribute.
type OTP struct {
	OTPID     string    `json:"otp_id" dynamodbav:"otp_id"`
	Email     string    `json:"email" dynamodbav:"email"`
	Code      string    `json:"-" dynamodbav:"code"`
	CreatedAt time.Time `json:"created_at" dynamodbav:"created_at"`
	ExpiresAt int64     `json:"expires_at" dynamodbav:"expires_at"` // TTL (Unix seconds)
}

// Expired reports whether the record has passed its TTL. DynamoDB TTL deletion
// can lag by hours, so every read path must apply this check itself.
func (o *OTP) Expired(now time.Time) bool {
	return o.ExpiresAt <= now.Unix()
}

type IssueOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type VerifyOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,numeric"`
}
