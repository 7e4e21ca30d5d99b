package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"math/big"
	"time"

	"vipclub-backend/internal/adapters/persistence/models"
	"vipclub-backend/internal/adapters/persistence/repositories"

	"gorm.io/gorm"
)

// OTP errors
var (
	ErrOTPNotFound = errors.New("no active otp found")
	ErrInvalidOTP  = errors.New("invalid or expired otp")
)

// DefaultOTPMinutes is the default OTP validity window
const DefaultOTPMinutes = 10

// OTPService owns the one-active-per-type OTP slots
type OTPService struct {
	otpRepo repositories.OTPRepository
}

// NewOTPService creates a new OTP service
func NewOTPService(otpRepo repositories.OTPRepository) *OTPService {
	return &OTPService{otpRepo: otpRepo}
}

// Issue stores a new OTP of the given type, deactivating all prior
// active OTPs of that type
func (s *OTPService) Issue(ctx context.Context, otpType, value string, durationMinutes int) (*models.OTP, error) {
	if durationMinutes <= 0 {
		durationMinutes = DefaultOTPMinutes
	}

	if _, err := s.otpRepo.DeactivateByType(ctx, otpType); err != nil {
		return nil, err
	}

	otp := &models.OTP{
		Type:      otpType,
		Value:     value,
		IsActive:  true,
		ExpiresAt: time.Now().Add(time.Duration(durationMinutes) * time.Minute),
	}

	if err := s.otpRepo.Create(ctx, otp); err != nil {
		return nil, err
	}

	log.Printf("✅ OTP issued [type: %s, expires: %s]", otpType, otp.ExpiresAt.Format(time.RFC3339))
	return otp, nil
}

// Generate issues a fresh random 6-digit OTP of the given type
func (s *OTPService) Generate(ctx context.Context, otpType string, durationMinutes int) (*models.OTP, error) {
	value, err := generateSecureOTP(6)
	if err != nil {
		return nil, fmt.Errorf("failed to generate otp: %w", err)
	}
	return s.Issue(ctx, otpType, value, durationMinutes)
}

// Verify checks value against the most recent active OTP of the type.
// An expired match is deactivated as a side effect and verification
// fails. A successful verification leaves the record active; it is
// superseded by the next issuance.
func (s *OTPService) Verify(ctx context.Context, otpType, value string) error {
	otp, err := s.otpRepo.GetLatestActiveByValue(ctx, otpType, value)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidOTP
		}
		return err
	}

	if otp.IsExpired(time.Now()) {
		otp.IsActive = false
		if err := s.otpRepo.Update(ctx, otp); err != nil {
			return err
		}
		return ErrInvalidOTP
	}

	return nil
}

// Current returns the most recent active OTP of the type
func (s *OTPService) Current(ctx context.Context, otpType string) (*models.OTP, error) {
	otp, err := s.otpRepo.GetLatestActive(ctx, otpType)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOTPNotFound
		}
		return nil, err
	}
	return otp, nil
}

// Deactivate deactivates all active OTPs of the type
func (s *OTPService) Deactivate(ctx context.Context, otpType string) error {
	affected, err := s.otpRepo.DeactivateByType(ctx, otpType)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrOTPNotFound
	}
	return nil
}

// generateSecureOTP generates a cryptographically secure random OTP
func generateSecureOTP(length int) (string, error) {
	result := ""
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		result += fmt.Sprintf("%d", n.Int64())
	}
	return result, nil
}
