package otp

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mbuddy-api/internal/domain"
	"github.com/mbuddy-api/internal/mail"
	"github.com/mbuddy-api/internal/pkg/code"
	"github.com/mbuddy-api/internal/pkg/id"
)

// OTPStore is the minimal interface the service requires from the otps table.
type OTPStore interface {
	Put(ctx context.Context, o *domain.OTP) error
	// ListByEmail returns records newest-first. Expired rows awaiting the
	// store's TTL sweep may be included.
	ListByEmail(ctx context.Context, email string) ([]domain.OTP, error)
	Delete(ctx context.Context, otpID string) error
}

// DeliveryLog records notification attempts. Best-effort only.
type DeliveryLog interface {
	Put(ctx context.Context, d *domain.Delivery) error
}

// Notifier attempts a single delivery. No retries; retry is the caller's
// choice and takes the form of a resend, which issues a brand-new code.
type Notifier interface {
	Send(ctx context.Context, to, subject, body string) error
	Channel() string
}

type Service interface {
	// Issue generates a fresh code for email, persists it, and attempts
	// delivery. When delivery fails after a successful write, the record is
	// returned alongside an error wrapping domain.ErrNotification - the row
	// stays live until TTL expiry.
	Issue(ctx context.Context, email string) (*domain.OTP, error)
	// Verify checks submitted against the most recently issued live code for
	// email. Older live codes are superseded and rejected.
	Verify(ctx context.Context, email, submitted string) error
}

type ServiceDeps struct {
	OTPRepo         OTPStore
	DeliveryRepo    DeliveryLog
	Notifier        Notifier
	CodeLength      int
	TTL             time.Duration
	NotifierTimeout time.Duration
}

type service struct {
	otpRepo         OTPStore
	deliveryRepo    DeliveryLog
	notifier        Notifier
	codeLength      int
	ttl             time.Duration
	notifierTimeout time.Duration
}

func NewService(deps ServiceDeps) Service {
	if deps.CodeLength <= 0 {
		deps.CodeLength = 6
	}
	if deps.TTL <= 0 {
		deps.TTL = 10 * time.Minute
	}
	if deps.NotifierTimeout <= 0 {
		deps.NotifierTimeout = 5 * time.Second
	}
	return &service{
		otpRepo:         deps.OTPRepo,
		deliveryRepo:    deps.DeliveryRepo,
		notifier:        deps.Notifier,
		codeLength:      deps.CodeLength,
		ttl:             deps.TTL,
		notifierTimeout: deps.NotifierTimeout,
	}
}

func (s *service) Issue(ctx context.Context, email string) (*domain.OTP, error) {
	c, err := code.Numeric(s.codeLength)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	rec := &domain.OTP{
		OTPID:     id.New(),
		Email:     email,
		Code:      c,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl).Unix(),
	}
	if err := s.otpRepo.Put(ctx, rec); err != nil {
		return nil, fmt.Errorf("persist otp record: %w", err)
	}

	// The write above is the durability point. A delivery failure past it is
	// not rolled back: the record stays live until TTL expiry even though the
	// user may never have received the code.
	nctx, cancel := context.WithTimeout(ctx, s.notifierTimeout)
	defer cancel()
	sendErr := s.notifier.Send(nctx, email, mail.VerificationSubject, mail.VerificationBody(c))
	s.logDelivery(ctx, email, sendErr)
	if sendErr != nil {
		slog.Warn("verification email delivery failed", "email", email, "err", sendErr)
		return rec, fmt.Errorf("send verification email: %v: %w", sendErr, domain.ErrNotification)
	}
	return rec, nil
}

func (s *service) Verify(ctx context.Context, email, submitted string) error {
	records, err := s.otpRepo.ListByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("query otp records: %w", err)
	}
	if len(records) == 0 {
		return fmt.Errorf("no code issued for this email: %w", domain.ErrNoRecord)
	}

	now := time.Now()
	var live []domain.OTP
	for _, r := range records {
		if !r.Expired(now) {
			live = append(live, r)
		}
	}
	if len(live) == 0 {
		// Rows exist but all passed TTL - the store's sweep hasn't caught up.
		return fmt.Errorf("all issued codes expired: %w", domain.ErrCodeExpired)
	}

	// Latest wins: only the most recently issued live code counts. A match
	// against an older live code would admit a stale code after a resend.
	latest := live[0]
	if latest.Code != submitted {
		return fmt.Errorf("code does not match latest issued: %w", domain.ErrCodeMismatch)
	}

	// Consume on success to prevent replay of an accepted code.
	if err := s.otpRepo.Delete(ctx, latest.OTPID); err != nil {
		slog.Warn("failed to delete verified otp record", "email", email, "err", err)
	}
	return nil
}

func (s *service) logDelivery(ctx context.Context, email string, sendErr error) {
	if s.deliveryRepo == nil {
		return
	}
	d := &domain.Delivery{
		DeliveryID: id.New(),
		Email:      email,
		Channel:    s.notifier.Channel(),
		Subject:    mail.VerificationSubject,
		Status:     domain.DeliverySent,
		CreatedAt:  time.Now().UTC(),
	}
	if sendErr != nil {
		d.Status = domain.DeliveryFailed
		d.Error = sendErr.Error()
	}
	if err := s.deliveryRepo.Put(ctx, d); err != nil {
		slog.Warn("failed to record delivery attempt", "email", email, "err", err)
	}
}
