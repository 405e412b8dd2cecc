package otp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mbuddy-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockOTPStore struct{ mock.Mock }

func (m *mockOTPStore) Put(ctx context.Context, o *domain.OTP) error {
	return m.Called(ctx, o).Error(0)
}
func (m *mockOTPStore) ListByEmail(ctx context.Context, email string) ([]domain.OTP, error) {
	args := m.Called(ctx, email)
	if otps, _ := args.Get(0).([]domain.OTP); otps != nil {
		return otps, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockOTPStore) Delete(ctx context.Context, otpID string) error {
	return m.Called(ctx, otpID).Error(0)
}

type mockDeliveryLog struct{ mock.Mock }

func (m *mockDeliveryLog) Put(ctx context.Context, d *domain.Delivery) error {
	return m.Called(ctx, d).Error(0)
}

type mockNotifier struct{ mock.Mock }

func (m *mockNotifier) Send(ctx context.Context, to, subject, body string) error {
	return m.Called(ctx, to, subject, body).Error(0)
}
func (m *mockNotifier) Channel() string { return "smtp" }

// --- builder ---

func newService(os *mockOTPStore, dl *mockDeliveryLog, n *mockNotifier) Service {
	deps := ServiceDeps{
		OTPRepo:         os,
		Notifier:        n,
		CodeLength:      6,
		TTL:             10 * time.Minute,
		NotifierTimeout: time.Second,
	}
	if dl != nil {
		deps.DeliveryRepo = dl
	}
	return NewService(deps)
}

func record(email, code string, age time.Duration) domain.OTP {
	created := time.Now().UTC().Add(-age)
	return domain.OTP{
		OTPID:     "otp-" + code,
		Email:     email,
		Code:      code,
		CreatedAt: created,
		ExpiresAt: created.Add(10 * time.Minute).Unix(),
	}
}

// --- Issue ---

func TestIssue_HappyPath(t *testing.T) {
	os := &mockOTPStore{}
	n := &mockNotifier{}

	var stored *domain.OTP
	os.On("Put", mock.Anything, mock.AnythingOfType("*domain.OTP")).Run(func(args mock.Arguments) {
		stored = args.Get(1).(*domain.OTP)
	}).Return(nil)
	n.On("Send", mock.Anything, "a@x.com", mock.Anything, mock.Anything).Return(nil)

	svc := newService(os, nil, n)
	rec, err := svc.Issue(context.Background(), "a@x.com")

	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, stored, rec)
	assert.Equal(t, "a@x.com", rec.Email)
	assert.Len(t, rec.Code, 6)
	assert.Equal(t, rec.CreatedAt.Add(10*time.Minute).Unix(), rec.ExpiresAt)
	assert.WithinDuration(t, time.Now().UTC(), rec.CreatedAt, 5*time.Second)
	os.AssertExpectations(t)
	n.AssertExpectations(t)
}

func TestIssue_FreshTimestampPerCall(t *testing.T) {
	os := &mockOTPStore{}
	n := &mockNotifier{}
	os.On("Put", mock.Anything, mock.Anything).Return(nil)
	n.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	svc := newService(os, nil, n)
	r1, err := svc.Issue(context.Background(), "a@x.com")
	require.NoError(t, err)
	time.Sleep(10 * time.Millisecond)
	r2, err := svc.Issue(context.Background(), "a@x.com")
	require.NoError(t, err)

	assert.True(t, r2.CreatedAt.After(r1.CreatedAt), "timestamps must be computed per issuance")
	assert.NotEqual(t, r1.OTPID, r2.OTPID)
}

func TestIssue_BodyContainsCode(t *testing.T) {
	os := &mockOTPStore{}
	n := &mockNotifier{}
	os.On("Put", mock.Anything, mock.Anything).Return(nil)

	var sentBody string
	n.On("Send", mock.Anything, "a@x.com", "Verification Email From MBuddy", mock.Anything).Run(func(args mock.Arguments) {
		sentBody = args.String(3)
	}).Return(nil)

	svc := newService(os, nil, n)
	rec, err := svc.Issue(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.Contains(t, sentBody, rec.Code)
}

func TestIssue_StoreFailure_NoNotificationAttempted(t *testing.T) {
	os := &mockOTPStore{}
	n := &mockNotifier{}
	os.On("Put", mock.Anything, mock.Anything).Return(errors.New("connectivity"))

	svc := newService(os, nil, n)
	rec, err := svc.Issue(context.Background(), "a@x.com")

	require.Error(t, err)
	assert.Nil(t, rec)
	assert.False(t, errors.Is(err, domain.ErrNotification))
	n.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestIssue_NotifierFailure_RecordStaysLive(t *testing.T) {
	os := &mockOTPStore{}
	n := &mockNotifier{}
	os.On("Put", mock.Anything, mock.Anything).Return(nil)
	n.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("smtp down"))

	svc := newService(os, nil, n)
	rec, err := svc.Issue(context.Background(), "a@x.com")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotification))
	// The record is returned and was persisted; no rollback happens.
	require.NotNil(t, rec)
	os.AssertCalled(t, "Put", mock.Anything, rec)
	os.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestIssue_NotifierFailure_CodeStillVerifies(t *testing.T) {
	os := &mockOTPStore{}
	n := &mockNotifier{}

	var stored *domain.OTP
	os.On("Put", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		stored = args.Get(1).(*domain.OTP)
	}).Return(nil)
	n.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("smtp down"))

	svc := newService(os, nil, n)
	rec, err := svc.Issue(context.Background(), "a@x.com")
	require.Error(t, err)
	require.NotNil(t, rec)

	os.On("ListByEmail", mock.Anything, "a@x.com").Return([]domain.OTP{*stored}, nil)
	os.On("Delete", mock.Anything, stored.OTPID).Return(nil)
	assert.NoError(t, svc.Verify(context.Background(), "a@x.com", rec.Code))
}

func TestIssue_DeliveryLogged(t *testing.T) {
	os := &mockOTPStore{}
	dl := &mockDeliveryLog{}
	n := &mockNotifier{}
	os.On("Put", mock.Anything, mock.Anything).Return(nil)
	n.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	dl.On("Put", mock.Anything, mock.MatchedBy(func(d *domain.Delivery) bool {
		return d.Email == "a@x.com" && d.Status == domain.DeliverySent && d.Channel == "smtp"
	})).Return(nil)

	svc := newService(os, dl, n)
	_, err := svc.Issue(context.Background(), "a@x.com")
	require.NoError(t, err)
	dl.AssertExpectations(t)
}

func TestIssue_DeliveryLogFailureDoesNotChangeOutcome(t *testing.T) {
	os := &mockOTPStore{}
	dl := &mockDeliveryLog{}
	n := &mockNotifier{}
	os.On("Put", mock.Anything, mock.Anything).Return(nil)
	n.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	dl.On("Put", mock.Anything, mock.Anything).Return(errors.New("table missing"))

	svc := newService(os, dl, n)
	_, err := svc.Issue(context.Background(), "a@x.com")
	assert.NoError(t, err)
}

// --- Verify ---

func TestVerify_HappyPath(t *testing.T) {
	os := &mockOTPStore{}
	rec := record("a@x.com", "042137", time.Minute)
	os.On("ListByEmail", mock.Anything, "a@x.com").Return([]domain.OTP{rec}, nil)
	os.On("Delete", mock.Anything, rec.OTPID).Return(nil)

	svc := newService(os, nil, &mockNotifier{})
	require.NoError(t, svc.Verify(context.Background(), "a@x.com", "042137"))
	os.AssertExpectations(t)
}

func TestVerify_Mismatch(t *testing.T) {
	os := &mockOTPStore{}
	os.On("ListByEmail", mock.Anything, "a@x.com").Return([]domain.OTP{
		record("a@x.com", "111111", time.Minute),
	}, nil)

	svc := newService(os, nil, &mockNotifier{})
	err := svc.Verify(context.Background(), "a@x.com", "222222")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrCodeMismatch))
	os.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestVerify_NoRecords(t *testing.T) {
	os := &mockOTPStore{}
	os.On("ListByEmail", mock.Anything, "a@x.com").Return([]domain.OTP{}, nil)

	svc := newService(os, nil, &mockNotifier{})
	err := svc.Verify(context.Background(), "a@x.com", "123456")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNoRecord))
}

func TestVerify_WithinTTLWindow(t *testing.T) {
	os := &mockOTPStore{}
	rec := record("a@x.com", "042137", 599*time.Second)
	os.On("ListByEmail", mock.Anything, "a@x.com").Return([]domain.OTP{rec}, nil)
	os.On("Delete", mock.Anything, rec.OTPID).Return(nil)

	svc := newService(os, nil, &mockNotifier{})
	assert.NoError(t, svc.Verify(context.Background(), "a@x.com", "042137"))
}

func TestVerify_PastTTL_RejectedAsExpired(t *testing.T) {
	os := &mockOTPStore{}
	// TTL sweep hasn't removed the row yet; the read-side filter must catch it.
	os.On("ListByEmail", mock.Anything, "a@x.com").Return([]domain.OTP{
		record("a@x.com", "042137", 601*time.Second),
	}, nil)

	svc := newService(os, nil, &mockNotifier{})
	err := svc.Verify(context.Background(), "a@x.com", "042137")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrCodeExpired))
	os.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestVerify_LatestWins(t *testing.T) {
	newer := record("a@x.com", "222222", time.Minute)
	older := record("a@x.com", "111111", 2*time.Minute)

	// First code is superseded even though it hasn't expired.
	os1 := &mockOTPStore{}
	os1.On("ListByEmail", mock.Anything, "a@x.com").Return([]domain.OTP{newer, older}, nil)
	svc1 := newService(os1, nil, &mockNotifier{})
	err := svc1.Verify(context.Background(), "a@x.com", "111111")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrCodeMismatch))

	// The latest code is accepted.
	os2 := &mockOTPStore{}
	os2.On("ListByEmail", mock.Anything, "a@x.com").Return([]domain.OTP{newer, older}, nil)
	os2.On("Delete", mock.Anything, newer.OTPID).Return(nil)
	svc2 := newService(os2, nil, &mockNotifier{})
	assert.NoError(t, svc2.Verify(context.Background(), "a@x.com", "222222"))
}

func TestVerify_ExpiredLatestDoesNotReviveOlder(t *testing.T) {
	// The newest record expired; the older one is still live and becomes the
	// effective latest.
	expired := record("a@x.com", "333333", 11*time.Minute)
	liveOld := record("a@x.com", "111111", 5*time.Minute)

	os := &mockOTPStore{}
	os.On("ListByEmail", mock.Anything, "a@x.com").Return([]domain.OTP{expired, liveOld}, nil)
	os.On("Delete", mock.Anything, liveOld.OTPID).Return(nil)

	svc := newService(os, nil, &mockNotifier{})
	assert.NoError(t, svc.Verify(context.Background(), "a@x.com", "111111"))

	os2 := &mockOTPStore{}
	os2.On("ListByEmail", mock.Anything, "a@x.com").Return([]domain.OTP{expired, liveOld}, nil)
	svc2 := newService(os2, nil, &mockNotifier{})
	err := svc2.Verify(context.Background(), "a@x.com", "333333")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrCodeMismatch))
}

func TestVerify_DeleteFailureStillAccepts(t *testing.T) {
	os := &mockOTPStore{}
	rec := record("a@x.com", "042137", time.Minute)
	os.On("ListByEmail", mock.Anything, "a@x.com").Return([]domain.OTP{rec}, nil)
	os.On("Delete", mock.Anything, rec.OTPID).Return(errors.New("connectivity"))

	svc := newService(os, nil, &mockNotifier{})
	assert.NoError(t, svc.Verify(context.Background(), "a@x.com", "042137"))
}

func TestVerify_StoreError(t *testing.T) {
	os := &mockOTPStore{}
	os.On("ListByEmail", mock.Anything, "a@x.com").Return(nil, errors.New("connectivity"))

	svc := newService(os, nil, &mockNotifier{})
	err := svc.Verify(context.Background(), "a@x.com", "123456")
	require.Error(t, err)
	assert.False(t, errors.Is(err, domain.ErrNoRecord))
	assert.False(t, errors.Is(err, domain.ErrCodeMismatch))
}

// --- end to end through the service layer ---

func TestIssueThenVerify_RoundTrip(t *testing.T) {
	os := &mockOTPStore{}
	n := &mockNotifier{}

	var stored *domain.OTP
	os.On("Put", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		stored = args.Get(1).(*domain.OTP)
	}).Return(nil)
	n.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	svc := newService(os, nil, n)
	rec, err := svc.Issue(context.Background(), "a@x.com")
	require.NoError(t, err)

	os.On("ListByEmail", mock.Anything, "a@x.com").Return([]domain.OTP{*stored}, nil)
	os.On("Delete", mock.Anything, stored.OTPID).Return(nil)

	require.NoError(t, svc.Verify(context.Background(), "a@x.com", rec.Code))

	err = svc.Verify(context.Background(), "a@x.com", "000000")
	if rec.Code != "000000" {
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrCodeMismatch))
	}
}
