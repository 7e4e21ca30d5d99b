package repositories

import (
	"context"
	"time"

	"vipclub-backend/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// userRepository implements UserRepository interface
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Create creates a new user
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// GetByID gets a user by ID
func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByPhoneNumber gets a user by phone number
func (r *userRepository) GetByPhoneNumber(ctx context.Context, phone string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("phone_number = ?", phone).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Update updates a user
func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

// List lists users with pagination, newest first
func (r *userRepository) List(ctx context.Context, offset, limit int) ([]*models.User, int64, error) {
	var users []*models.User
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

// Search matches ref_id, username or phone_number by case-insensitive
// substring
func (r *userRepository) Search(ctx context.Context, query string, offset, limit int) ([]*models.User, int64, error) {
	var users []*models.User
	var total int64

	pattern := "%" + query + "%"
	q := r.db.WithContext(ctx).Model(&models.User{}).
		Where("ref_id LIKE ? OR username LIKE ? OR phone_number LIKE ?", pattern, pattern, pattern)

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

// ListWithVip lists users carrying any VIP snapshot, optionally filtered
// to currently-active or expired subscriptions
func (r *userRepository) ListWithVip(ctx context.Context, status string, now time.Time, offset, limit int) ([]*models.User, int64, error) {
	var users []*models.User
	var total int64

	q := r.db.WithContext(ctx).Model(&models.User{}).
		Where("vip_package_id IS NOT NULL")

	switch status {
	case "active":
		q = q.Where("vip_is_active = ? AND vip_end_date > ?", true, now)
	case "expired":
		q = q.Where("vip_is_active = ? OR vip_end_date <= ?", false, now)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Order("vip_end_date DESC").
		Offset(offset).Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

// ExistsByUsername checks if username exists
func (r *userRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Where("username = ?", username).Count(&count).Error
	return count > 0, err
}

// ExistsByPhoneNumber checks if phone number exists
func (r *userRepository) ExistsByPhoneNumber(ctx context.Context, phone string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Where("phone_number = ?", phone).Count(&count).Error
	return count > 0, err
}

// ExistsByRefID checks if referral code exists
func (r *userRepository) ExistsByRefID(ctx context.Context, refID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Where("ref_id = ?", refID).Count(&count).Error
	return count > 0, err
}

// DeactivateExpiredVip flips the active flag on every subscription whose
// end date has passed. Returns the number of rows touched.
func (r *userRepository) DeactivateExpiredVip(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.User{}).
		Where("vip_is_active = ? AND vip_end_date <= ?", true, now).
		Update("vip_is_active", false)
	return res.RowsAffected, res.Error
}
