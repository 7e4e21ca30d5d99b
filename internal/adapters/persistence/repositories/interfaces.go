package repositories

import (
	"context"
	"time"

	"vipclub-backend/internal/adapters/persistence/models"
)

// UserRepository defines user repository interface
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByPhoneNumber(ctx context.Context, phone string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	List(ctx context.Context, offset, limit int) ([]*models.User, int64, error)
	Search(ctx context.Context, query string, offset, limit int) ([]*models.User, int64, error)
	ListWithVip(ctx context.Context, status string, now time.Time, offset, limit int) ([]*models.User, int64, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByPhoneNumber(ctx context.Context, phone string) (bool, error)
	ExistsByRefID(ctx context.Context, refID string) (bool, error)
	DeactivateExpiredVip(ctx context.Context, now time.Time) (int64, error)
}

// OTPRepository defines OTP repository interface
type OTPRepository interface {
	Create(ctx context.Context, otp *models.OTP) error
	GetLatestActive(ctx context.Context, otpType string) (*models.OTP, error)
	GetLatestActiveByValue(ctx context.Context, otpType, value string) (*models.OTP, error)
	DeactivateByType(ctx context.Context, otpType string) (int64, error)
	Update(ctx context.Context, otp *models.OTP) error
}

// TransactionFilter narrows transaction listings
type TransactionFilter struct {
	Status string
	Type   string
}

// TransactionRepository defines transaction repository interface
type TransactionRepository interface {
	Create(ctx context.Context, tx *models.Transaction) error
	GetByID(ctx context.Context, id uint) (*models.Transaction, error)
	Update(ctx context.Context, tx *models.Transaction) error
	List(ctx context.Context, filter *TransactionFilter, offset, limit int) ([]*models.Transaction, int64, error)
	ListByUser(ctx context.Context, userID uint, filter *TransactionFilter, offset, limit int) ([]*models.Transaction, int64, error)
}

// VipPackageRepository defines VIP catalog repository interface
type VipPackageRepository interface {
	Create(ctx context.Context, pkg *models.VipPackage) error
	GetByID(ctx context.Context, id uint) (*models.VipPackage, error)
	ListActive(ctx context.Context) ([]*models.VipPackage, error)
	Count(ctx context.Context) (int64, error)
}
