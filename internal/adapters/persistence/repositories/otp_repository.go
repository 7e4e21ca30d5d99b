package repositories

import (
	"context"

	"vipclub-backend/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// otpRepository implements OTPRepository interface
type otpRepository struct {
	db *gorm.DB
}

// NewOTPRepository creates a new OTP repository
func NewOTPRepository(db *gorm.DB) OTPRepository {
	return &otpRepository{db: db}
}

// Create creates a new OTP record
func (r *otpRepository) Create(ctx context.Context, otp *models.OTP) error {
	return r.db.WithContext(ctx).Create(otp).Error
}

// GetLatestActive gets the most recently created active OTP of a type
func (r *otpRepository) GetLatestActive(ctx context.Context, otpType string) (*models.OTP, error) {
	var otp models.OTP
	err := r.db.WithContext(ctx).
		Where("type = ? AND is_active = ?", otpType, true).
		Order("created_at DESC").
		First(&otp).Error
	if err != nil {
		return nil, err
	}
	return &otp, nil
}

// GetLatestActiveByValue gets the most recently created active OTP
// matching type and value
func (r *otpRepository) GetLatestActiveByValue(ctx context.Context, otpType, value string) (*models.OTP, error) {
	var otp models.OTP
	err := r.db.WithContext(ctx).
		Where("type = ? AND value = ? AND is_active = ?", otpType, value, true).
		Order("created_at DESC").
		First(&otp).Error
	if err != nil {
		return nil, err
	}
	return &otp, nil
}

// DeactivateByType deactivates all active OTPs of a type. Returns the
// number of rows touched.
func (r *otpRepository) DeactivateByType(ctx context.Context, otpType string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.OTP{}).
		Where("type = ? AND is_active = ?", otpType, true).
		Update("is_active", false)
	return res.RowsAffected, res.Error
}

// Update updates an OTP record
func (r *otpRepository) Update(ctx context.Context, otp *models.OTP) error {
	return r.db.WithContext(ctx).Save(otp).Error
}
