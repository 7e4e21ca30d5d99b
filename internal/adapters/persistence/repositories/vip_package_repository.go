package repositories

import (
	"context"

	"vipclub-backend/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// vipPackageRepository implements VipPackageRepository interface
type vipPackageRepository struct {
	db *gorm.DB
}

// NewVipPackageRepository creates a new VIP catalog repository
func NewVipPackageRepository(db *gorm.DB) VipPackageRepository {
	return &vipPackageRepository{db: db}
}

// Create creates a catalog entry (used by the seeder only)
func (r *vipPackageRepository) Create(ctx context.Context, pkg *models.VipPackage) error {
	return r.db.WithContext(ctx).Create(pkg).Error
}

// GetByID gets a package by ID
func (r *vipPackageRepository) GetByID(ctx context.Context, id uint) (*models.VipPackage, error) {
	var pkg models.VipPackage
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&pkg).Error
	if err != nil {
		return nil, err
	}
	return &pkg, nil
}

// ListActive lists active packages cheapest first
func (r *vipPackageRepository) ListActive(ctx context.Context) ([]*models.VipPackage, error) {
	var pkgs []*models.VipPackage
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("price ASC").
		Find(&pkgs).Error
	if err != nil {
		return nil, err
	}
	return pkgs, nil
}

// Count counts all catalog entries
func (r *vipPackageRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.VipPackage{}).Count(&count).Error
	return count, err
}
