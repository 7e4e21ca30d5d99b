package services

import (
	"context"
	"testing"
	"time"

	"vipclub-backend/internal/adapters/persistence/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOTPIssueDeactivatesPrevious(t *testing.T) {
	repo := newFakeOTPRepo()
	svc := NewOTPService(repo)
	ctx := context.Background()

	first, err := svc.Issue(ctx, models.OTPTypeRegister, "111111", 10)
	require.NoError(t, err)

	second, err := svc.Issue(ctx, models.OTPTypeRegister, "222222", 10)
	require.NoError(t, err)

	// only the latest value verifies
	assert.ErrorIs(t, svc.Verify(ctx, models.OTPTypeRegister, first.Value), ErrInvalidOTP)
	assert.NoError(t, svc.Verify(ctx, models.OTPTypeRegister, second.Value))
}

func TestOTPIssuePerTypeSlots(t *testing.T) {
	repo := newFakeOTPRepo()
	svc := NewOTPService(repo)
	ctx := context.Background()

	_, err := svc.Issue(ctx, models.OTPTypeRegister, "111111", 10)
	require.NoError(t, err)
	_, err = svc.Issue(ctx, models.OTPTypeResetPassword, "222222", 10)
	require.NoError(t, err)

	// issuing a reset OTP does not touch the register slot
	assert.NoError(t, svc.Verify(ctx, models.OTPTypeRegister, "111111"))
	assert.NoError(t, svc.Verify(ctx, models.OTPTypeResetPassword, "222222"))
}

func TestOTPVerifyWrongValue(t *testing.T) {
	repo := newFakeOTPRepo()
	svc := NewOTPService(repo)
	ctx := context.Background()

	_, err := svc.Issue(ctx, models.OTPTypeRegister, "123456", 10)
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Verify(ctx, models.OTPTypeRegister, "654321"), ErrInvalidOTP)
}

func TestOTPVerifyExpiredDeactivates(t *testing.T) {
	repo := newFakeOTPRepo()
	svc := NewOTPService(repo)
	ctx := context.Background()

	repo.Create(ctx, &models.OTP{
		Type:      models.OTPTypeRegister,
		Value:     "123456",
		IsActive:  true,
		ExpiresAt: time.Now().Add(-time.Minute),
	})

	assert.ErrorIs(t, svc.Verify(ctx, models.OTPTypeRegister, "123456"), ErrInvalidOTP)

	// the expired record was deactivated as a side effect
	_, err := svc.Current(ctx, models.OTPTypeRegister)
	assert.ErrorIs(t, err, ErrOTPNotFound)
}

func TestOTPVerifySuccessDoesNotConsume(t *testing.T) {
	repo := newFakeOTPRepo()
	svc := NewOTPService(repo)
	ctx := context.Background()

	_, err := svc.Issue(ctx, models.OTPTypeRegister, "123456", 10)
	require.NoError(t, err)

	require.NoError(t, svc.Verify(ctx, models.OTPTypeRegister, "123456"))
	// a second verification with the same value still succeeds
	assert.NoError(t, svc.Verify(ctx, models.OTPTypeRegister, "123456"))
}

func TestOTPGenerate(t *testing.T) {
	repo := newFakeOTPRepo()
	svc := NewOTPService(repo)
	ctx := context.Background()

	otp, err := svc.Generate(ctx, models.OTPTypeRegister, 0)
	require.NoError(t, err)

	assert.Len(t, otp.Value, 6)
	assert.True(t, otp.IsActive)
	assert.True(t, otp.ExpiresAt.After(time.Now()))
}

func TestOTPDeactivate(t *testing.T) {
	repo := newFakeOTPRepo()
	svc := NewOTPService(repo)
	ctx := context.Background()

	assert.ErrorIs(t, svc.Deactivate(ctx, models.OTPTypeRegister), ErrOTPNotFound)

	_, err := svc.Issue(ctx, models.OTPTypeRegister, "123456", 10)
	require.NoError(t, err)

	require.NoError(t, svc.Deactivate(ctx, models.OTPTypeRegister))
	assert.ErrorIs(t, svc.Verify(ctx, models.OTPTypeRegister, "123456"), ErrInvalidOTP)
}
