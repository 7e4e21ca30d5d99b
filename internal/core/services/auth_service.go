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
	"vipclub-backend/internal/config"
	"vipclub-backend/internal/pkg/jwt"
	"vipclub-backend/internal/pkg/password"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Auth errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotVerified    = errors.New("phone number not verified")
	ErrDeviceInUse        = errors.New("account is logged in on another device")
)

// DeviceInUseError carries the last login time so the caller can decide
// whether to force-logout the other device
type DeviceInUseError struct {
	LastLoginAt *time.Time
}

func (e *DeviceInUseError) Error() string {
	return ErrDeviceInUse.Error()
}

func (e *DeviceInUseError) Unwrap() error {
	return ErrDeviceInUse
}

// AuthService handles registration, login and credential recovery
type AuthService struct {
	userRepo   repositories.UserRepository
	otpService *OTPService
	cfg        *config.Config
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo repositories.UserRepository, otpService *OTPService, cfg *config.Config) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		otpService: otpService,
		cfg:        cfg,
	}
}

// RegisterInput represents registration input
type RegisterInput struct {
	Username    string `json:"username"`
	PhoneNumber string `json:"phone_number"`
	Password    string `json:"password"`
	OTP         string `json:"otp"`
}

// LoginInput represents login input
type LoginInput struct {
	PhoneNumber string `json:"phone_number"`
	Password    string `json:"password"`
	DeviceToken string `json:"device_token"`
}

// AuthResponse represents authentication response
type AuthResponse struct {
	User  *models.UserResponse `json:"user"`
	Token string               `json:"token"`
}

// Register registers a new user after OTP verification
func (s *AuthService) Register(ctx context.Context, input *RegisterInput) (*AuthResponse, error) {
	// 1. Check if username already exists
	exists, err := s.userRepo.ExistsByUsername(ctx, input.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUserAlreadyExists
	}

	// 2. Check if phone number already exists
	exists, err = s.userRepo.ExistsByPhoneNumber(ctx, input.PhoneNumber)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUserAlreadyExists
	}

	// 3. Verify registration OTP
	if err := s.otpService.Verify(ctx, models.OTPTypeRegister, input.OTP); err != nil {
		return nil, err
	}

	// 4. Hash password
	hashedPassword, err := password.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	// 5. Generate unique referral code
	refID, err := s.generateUniqueRefID(ctx)
	if err != nil {
		return nil, err
	}

	// 6. Create user (verified: OTP already checked)
	user := &models.User{
		Username:    input.Username,
		PhoneNumber: input.PhoneNumber,
		RefID:       refID,
		Password:    hashedPassword,
		Role:        models.RoleUser,
		IsVerified:  true,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	// 7. Issue session token
	token, err := s.generateToken(user)
	if err != nil {
		return nil, err
	}

	log.Printf("✅ User registered: %s (RefID: %s)", user.Username, user.RefID)

	return &AuthResponse{
		User:  user.ToResponse(nil, time.Now()),
		Token: token,
	}, nil
}

// Login authenticates a user by phone number and password, enforcing
// the single-device policy
func (s *AuthService) Login(ctx context.Context, input *LoginInput) (*AuthResponse, error) {
	// 1. Find user by phone number
	user, err := s.userRepo.GetByPhoneNumber(ctx, input.PhoneNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	// 2. Verify password
	if !password.Verify(input.Password, user.Password) {
		return nil, ErrInvalidCredentials
	}

	// 3. Check verification
	if !user.IsVerified {
		return nil, ErrUserNotVerified
	}

	// 4. Single-device policy: a different stored device token means the
	// account is active elsewhere
	if user.DeviceToken != nil && input.DeviceToken != "" && *user.DeviceToken != input.DeviceToken {
		return nil, &DeviceInUseError{LastLoginAt: user.LastLoginAt}
	}

	// 5. Record device and last login
	now := time.Now()
	if input.DeviceToken != "" {
		user.DeviceToken = &input.DeviceToken
	}
	user.LastLoginAt = &now
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	// 6. Issue session token
	token, err := s.generateToken(user)
	if err != nil {
		return nil, err
	}

	log.Printf("✅ User logged in: %s", user.Username)

	return &AuthResponse{
		User:  user.ToResponse(nil, now),
		Token: token,
	}, nil
}

// Logout clears the stored device token so a new device can log in
func (s *AuthService) Logout(ctx context.Context, userID uint) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	user.DeviceToken = nil
	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}

	log.Printf("✅ User logged out: %s", user.Username)
	return nil
}

// ForgotPassword issues a password-reset OTP with a 10-minute expiry.
// The OTP value is returned to the caller: there is no SMS channel.
func (s *AuthService) ForgotPassword(ctx context.Context, phoneNumber string) (string, error) {
	user, err := s.userRepo.GetByPhoneNumber(ctx, phoneNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrUserNotFound
		}
		return "", err
	}

	otp, err := s.otpService.Generate(ctx, models.OTPTypeResetPassword, DefaultOTPMinutes)
	if err != nil {
		return "", err
	}

	// Mirror onto the user record
	user.ResetPasswordOTP = &otp.Value
	user.ResetPasswordExpire = &otp.ExpiresAt
	if err := s.userRepo.Update(ctx, user); err != nil {
		return "", err
	}

	log.Printf("✅ Password reset OTP issued for user: %s", user.Username)
	return otp.Value, nil
}

// ResetPassword replaces the password after OTP verification
func (s *AuthService) ResetPassword(ctx context.Context, phoneNumber, otp, newPassword string) error {
	user, err := s.userRepo.GetByPhoneNumber(ctx, phoneNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if err := s.otpService.Verify(ctx, models.OTPTypeResetPassword, otp); err != nil {
		return err
	}

	hashedPassword, err := password.Hash(newPassword)
	if err != nil {
		return err
	}

	user.Password = hashedPassword
	user.ResetPasswordOTP = nil
	user.ResetPasswordExpire = nil
	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}

	log.Printf("✅ Password reset for user: %s", user.Username)
	return nil
}

// generateToken issues an access token for a user
func (s *AuthService) generateToken(user *models.User) (string, error) {
	return jwt.GenerateAccessToken(
		user.ID,
		user.Username,
		user.Role,
		uuid.New().String(),
		s.cfg.JWT.Secret,
		s.cfg.JWT.ExpireHours,
	)
}

// generateUniqueRefID draws random 6-digit codes until one is free
func (s *AuthService) generateUniqueRefID(ctx context.Context) (string, error) {
	for {
		n, err := rand.Int(rand.Reader, big.NewInt(900000))
		if err != nil {
			return "", err
		}
		refID := fmt.Sprintf("%d", n.Int64()+100000)

		exists, err := s.userRepo.ExistsByRefID(ctx, refID)
		if err != nil {
			return "", err
		}
		if !exists {
			return refID, nil
		}
	}
}
