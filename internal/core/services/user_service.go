package services

import (
	"context"
	"errors"
	"time"

	"vipclub-backend/internal/adapters/persistence/models"
	"vipclub-backend/internal/adapters/persistence/repositories"

	"gorm.io/gorm"
)

// UserService handles user projections for profile and admin listings
type UserService struct {
	userRepo repositories.UserRepository
	vipRepo  repositories.VipPackageRepository
}

// NewUserService creates a new user service
func NewUserService(userRepo repositories.UserRepository, vipRepo repositories.VipPackageRepository) *UserService {
	return &UserService{
		userRepo: userRepo,
		vipRepo:  vipRepo,
	}
}

// ListOutput represents a paginated user listing
type ListOutput struct {
	Users []*models.UserResponse `json:"users"`
	Total int64                  `json:"total"`
}

// GetProfile returns the caller's public profile. Subscription expiry is
// re-evaluated on read and persisted if the end date has passed.
func (s *UserService) GetProfile(ctx context.Context, userID uint) (*models.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	now := time.Now()
	if err := s.expireVipIfNeeded(ctx, user, now); err != nil {
		return nil, err
	}

	return user.ToResponse(s.resolvePackage(ctx, user), now), nil
}

// ListUsers lists all users, newest first
func (s *UserService) ListUsers(ctx context.Context, offset, limit int) (*ListOutput, error) {
	users, total, err := s.userRepo.List(ctx, offset, limit)
	if err != nil {
		return nil, err
	}
	return s.buildListOutput(ctx, users, total)
}

// SearchUsers matches refId, username or phone number by
// case-insensitive substring
func (s *UserService) SearchUsers(ctx context.Context, query string, offset, limit int) (*ListOutput, error) {
	users, total, err := s.userRepo.Search(ctx, query, offset, limit)
	if err != nil {
		return nil, err
	}
	return s.buildListOutput(ctx, users, total)
}

func (s *UserService) buildListOutput(ctx context.Context, users []*models.User, total int64) (*ListOutput, error) {
	now := time.Now()
	out := &ListOutput{
		Users: make([]*models.UserResponse, 0, len(users)),
		Total: total,
	}
	// Resolve each distinct package once per listing
	cache := make(map[uint]*models.VipPackage)
	for _, user := range users {
		// Lazy expiry is persisted here too, not just on profile reads
		if err := s.expireVipIfNeeded(ctx, user, now); err != nil {
			return nil, err
		}
		var pkg *models.VipPackage
		if user.VipPackageID != nil {
			var ok bool
			if pkg, ok = cache[*user.VipPackageID]; !ok {
				pkg, _ = s.vipRepo.GetByID(ctx, *user.VipPackageID)
				cache[*user.VipPackageID] = pkg
			}
		}
		out.Users = append(out.Users, user.ToResponse(pkg, now))
	}
	return out, nil
}

// resolvePackage loads the catalog entry behind a user's snapshot
func (s *UserService) resolvePackage(ctx context.Context, user *models.User) *models.VipPackage {
	if user.VipPackageID == nil {
		return nil
	}
	pkg, err := s.vipRepo.GetByID(ctx, *user.VipPackageID)
	if err != nil {
		return nil
	}
	return pkg
}

// expireVipIfNeeded flips and persists the active flag when the end
// date has passed
func (s *UserService) expireVipIfNeeded(ctx context.Context, user *models.User, now time.Time) error {
	if !user.VipIsActive || !user.VipExpired(now) {
		return nil
	}
	user.VipIsActive = false
	return s.userRepo.Update(ctx, user)
}
