package config

import (
	"context"
	"crypto/rand"
	"fmt"
	"log"
	"math/big"

	"vipclub-backend/internal/adapters/persistence/models"
	"vipclub-backend/internal/adapters/persistence/repositories"
	"vipclub-backend/internal/pkg/password"

	"gorm.io/gorm"
)

// Seeder handles database seeding
type Seeder struct {
	db      *gorm.DB
	vipRepo repositories.VipPackageRepository
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{
		db:      db,
		vipRepo: repositories.NewVipPackageRepository(db),
	}
}

// Run executes all seeders
func (s *Seeder) Run() error {
	log.Println("🌱 Running database seeders...")

	if err := s.seedVipPackages(); err != nil {
		return err
	}
	if err := s.seedAdminUser(); err != nil {
		log.Printf("⚠️ Admin seeder skipped: %v", err)
	}

	log.Println("✅ Database seeding completed")
	return nil
}

// seedVipPackages seeds the fixed VIP tier catalog
func (s *Seeder) seedVipPackages() error {
	ctx := context.Background()

	count, err := s.vipRepo.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil // Catalog already seeded
	}

	packages := []models.VipPackage{
		{
			Name:        "VIP 1",
			Price:       10000,
			Duration:    7,
			Description: "Premium benefits for 1 week",
			Benefits: []string{
				"Premium access for 1 week",
				"Priority support",
				"Special features access",
			},
			IsActive: true,
		},
		{
			Name:        "VIP 2",
			Price:       100000,
			Duration:    30,
			Description: "Premium benefits for 1 month",
			Benefits: []string{
				"Premium access for 1 month",
				"Priority support",
				"Special features access",
				"Extended benefits",
			},
			IsActive: true,
		},
		{
			Name:        "VIP 3",
			Price:       1000000,
			Duration:    365,
			Description: "Premium benefits for 1 year",
			Benefits: []string{
				"Premium access for 1 year",
				"Priority support",
				"Special features access",
				"Extended benefits",
				"Exclusive yearly rewards",
			},
			IsActive: true,
		},
	}

	for i := range packages {
		if err := s.vipRepo.Create(ctx, &packages[i]); err != nil {
			return err
		}
	}

	log.Printf("✅ VIP catalog seeded (%d packages)", len(packages))
	return nil
}

// seedAdminUser seeds the default admin user
// This is for development/testing only
// In production, create admin through secure process
func (s *Seeder) seedAdminUser() error {
	var count int64
	s.db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&count)
	if count > 0 {
		return nil // Admin already exists
	}

	hashedPassword, err := password.Hash("admin123456")
	if err != nil {
		return err
	}

	refID, err := s.generateRefID()
	if err != nil {
		return err
	}

	admin := &models.User{
		Username:    "admin",
		PhoneNumber: "0987654321",
		RefID:       refID,
		Password:    hashedPassword,
		Role:        models.RoleAdmin,
		IsVerified:  true,
	}

	if err := s.db.Create(admin).Error; err != nil {
		return err
	}

	log.Printf("✅ Admin user created: %s (RefID: %s)", admin.Username, admin.RefID)
	return nil
}

// generateRefID draws 6-digit codes until one is unused
func (s *Seeder) generateRefID() (string, error) {
	for {
		n, err := rand.Int(rand.Reader, big.NewInt(900000))
		if err != nil {
			return "", err
		}
		refID := fmt.Sprintf("%d", n.Int64()+100000)

		var count int64
		if err := s.db.Model(&models.User{}).Where("ref_id = ?", refID).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return refID, nil
		}
	}
}
