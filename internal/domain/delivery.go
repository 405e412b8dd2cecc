package domain

import "time"

// Delivery statuses.
const (
	DeliverySent   = "sent"
	DeliveryFailed = "failed"
)

// Delivery is an audit record of a single notification attempt.
// PK: delivery_id (ULID). Written best-effort — a failed log write never
// changes the outcome of the issuance that produced it.
type Delivery struct {
	DeliveryID string    `json:"delivery_id" dynamodbav:"delivery_id"`
	Email      string    `json:"email" dynamodbav:"email"`
	Channel    string    `json:"channel" dynamodbav:"channel"` // "smtp" | "sns"
	Subject    string    `json:"subject" dynamodbav:"subject"`
	Status     string    `json:"status" dynamodbav:"status"` // "sent" | "failed"
	Error      string    `json:"error,omitempty" dynamodbav:"error,omitempty"`
	CreatedAt  time.Time `json:"created_at" dynamodbav:"created_at"`
}
