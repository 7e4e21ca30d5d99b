package services

import (
	"context"
	"errors"
	"log"
	"time"

	"vipclub-backend/internal/adapters/persistence/models"
	"vipclub-backend/internal/adapters/persistence/repositories"

	"gorm.io/gorm"
)

// VIP errors
var (
	ErrPackageNotFound      = errors.New("vip package not found or inactive")
	ErrPackageNotUpgradable = errors.New("vip package is not a higher tier than the current one")
	ErrNoActiveVip          = errors.New("user does not have an active vip package")
)

// VipService computes upgrade pricing and manages subscription windows
type VipService struct {
	userRepo repositories.UserRepository
	vipRepo  repositories.VipPackageRepository
}

// NewVipService creates a new VIP service
func NewVipService(userRepo repositories.UserRepository, vipRepo repositories.VipPackageRepository) *VipService {
	return &VipService{
		userRepo: userRepo,
		vipRepo:  vipRepo,
	}
}

// EffectivePrice returns what a holder of current pays for target: the
// target's list price minus the current tier's list price when an
// active subscription exists, the plain list price otherwise.
func EffectivePrice(current, target *models.VipPackage) float64 {
	if current == nil {
		return target.Price
	}
	return target.Price - current.Price
}

// Upgradable reports whether target is a strictly higher tier than
// current. Tiers are ordered by list price.
func Upgradable(current, target *models.VipPackage) bool {
	if current == nil {
		return true
	}
	return target.Price > current.Price
}

// PackageOffer is a catalog entry annotated with the caller's price
type PackageOffer struct {
	*models.VipPackage
	AdjustedPrice float64 `json:"adjusted_price"`
	RemainingDays int     `json:"remaining_days,omitempty"`
}

// PackageList represents the upgrade offers for one caller
type PackageList struct {
	Packages      []*PackageOffer `json:"packages"`
	CurrentVip    string          `json:"current_vip"`
	RemainingDays int             `json:"remaining_days"`
}

// PurchaseResult represents a completed purchase
type PurchaseResult struct {
	VipInfo          *models.VipInfoResponse `json:"vip_info"`
	RemainingBalance float64                 `json:"remaining_balance"`
	AdjustedPrice    float64                 `json:"adjusted_price"`
	OriginalPrice    float64                 `json:"original_price"`
}

// GrantResult represents an admin grant, with the snapshot it replaced
type GrantResult struct {
	User        *models.UserResponse    `json:"user"`
	GrantedVip  *models.VipInfoResponse `json:"granted_vip"`
	PreviousVip *models.VipInfoResponse `json:"previous_vip"`
}

// VipUserList represents the admin VIP-holder listing
type VipUserList struct {
	Users []*models.UserResponse `json:"users"`
	Total int64                  `json:"total"`
}

// ListPackages returns the active catalog filtered to tiers above the
// caller's, each annotated with the caller's adjusted price
func (s *VipService) ListPackages(ctx context.Context, userID uint) (*PackageList, error) {
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

	packages, err := s.vipRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	current := s.currentPackage(ctx, user)

	remaining := 0
	if user.VipIsActive && user.VipEndDate != nil {
		remaining = models.RemainingDays(*user.VipEndDate, now)
	}

	list := &PackageList{
		Packages:      make([]*PackageOffer, 0, len(packages)),
		CurrentVip:    "VIP 0",
		RemainingDays: remaining,
	}
	if current != nil {
		list.CurrentVip = current.Name
	}

	for _, pkg := range packages {
		if !Upgradable(current, pkg) {
			continue
		}
		offer := &PackageOffer{
			VipPackage:    pkg,
			AdjustedPrice: EffectivePrice(current, pkg),
		}
		if user.VipIsActive {
			offer.RemainingDays = remaining
		}
		list.Packages = append(list.Packages, offer)
	}

	return list, nil
}

// Purchase buys a package at the caller's effective price. The new
// window starts now; when an active subscription already ends later
// than now+duration, the later end date is kept.
func (s *VipService) Purchase(ctx context.Context, userID, packageID uint) (*PurchaseResult, error) {
	pkg, err := s.vipRepo.GetByID(ctx, packageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPackageNotFound
		}
		return nil, err
	}
	if !pkg.IsActive {
		return nil, ErrPackageNotFound
	}

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

	current := s.currentPackage(ctx, user)
	if !Upgradable(current, pkg) {
		return nil, ErrPackageNotUpgradable
	}
	adjustedPrice := EffectivePrice(current, pkg)

	if user.Balance < adjustedPrice {
		return nil, ErrInsufficientBalance
	}

	startDate := now
	endDate := now.AddDate(0, 0, pkg.Duration)
	// Extension keeps the later of the two end dates; durations do not
	// stack additively.
	if user.VipIsActive && user.VipEndDate != nil && user.VipEndDate.After(endDate) {
		endDate = *user.VipEndDate
	}

	user.Balance -= adjustedPrice
	user.VipPackageID = &pkg.ID
	user.VipStartDate = &startDate
	user.VipEndDate = &endDate
	user.VipIsActive = true

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	log.Printf("✅ VIP purchased [user: %d, package: %s, paid: %.2f]", user.ID, pkg.Name, adjustedPrice)

	return &PurchaseResult{
		VipInfo: &models.VipInfoResponse{
			Package:       pkg,
			StartDate:     user.VipStartDate,
			EndDate:       user.VipEndDate,
			IsActive:      true,
			RemainingDays: models.RemainingDays(endDate, now),
		},
		RemainingBalance: user.Balance,
		AdjustedPrice:    adjustedPrice,
		OriginalPrice:    pkg.Price,
	}, nil
}

// GetStatus returns the caller's subscription snapshot after lazy
// expiry re-evaluation
func (s *VipService) GetStatus(ctx context.Context, userID uint) (*models.VipInfoResponse, error) {
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

	return s.snapshot(ctx, user, now), nil
}

// GetUserStatus is the admin view of any user's subscription, including
// balance
func (s *VipService) GetUserStatus(ctx context.Context, userID uint) (*models.UserResponse, error) {
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

	return user.ToResponse(s.currentSnapshotPackage(ctx, user), now), nil
}

// Cancel deactivates a user's subscription, setting the end date to now
func (s *VipService) Cancel(ctx context.Context, userID uint) (*models.VipInfoResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if !user.VipIsActive {
		return nil, ErrNoActiveVip
	}

	pkg := s.currentSnapshotPackage(ctx, user)

	now := time.Now()
	user.VipIsActive = false
	user.VipEndDate = &now

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	log.Printf("✅ VIP cancelled [user: %d]", user.ID)

	return &models.VipInfoResponse{
		Package:   pkg,
		StartDate: user.VipStartDate,
		EndDate:   user.VipEndDate,
		IsActive:  false,
	}, nil
}

// Grant assigns a package to a user without any balance effect.
// durationDays overrides the package default when > 0.
func (s *VipService) Grant(ctx context.Context, userID, packageID uint, durationDays int) (*GrantResult, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	pkg, err := s.vipRepo.GetByID(ctx, packageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPackageNotFound
		}
		return nil, err
	}
	if !pkg.IsActive {
		return nil, ErrPackageNotFound
	}

	now := time.Now()

	var previous *models.VipInfoResponse
	if user.VipIsActive {
		previous = &models.VipInfoResponse{
			Package:   s.currentSnapshotPackage(ctx, user),
			StartDate: user.VipStartDate,
			EndDate:   user.VipEndDate,
			IsActive:  true,
		}
	}

	duration := pkg.Duration
	if durationDays > 0 {
		duration = durationDays
	}

	startDate := now
	endDate := now.AddDate(0, 0, duration)

	user.VipPackageID = &pkg.ID
	user.VipStartDate = &startDate
	user.VipEndDate = &endDate
	user.VipIsActive = true

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	log.Printf("✅ VIP granted [user: %d, package: %s, days: %d]", user.ID, pkg.Name, duration)

	return &GrantResult{
		User: user.ToResponse(pkg, now),
		GrantedVip: &models.VipInfoResponse{
			Package:       pkg,
			StartDate:     user.VipStartDate,
			EndDate:       user.VipEndDate,
			IsActive:      true,
			RemainingDays: duration,
		},
		PreviousVip: previous,
	}, nil
}

// ListVipUsers lists users carrying any subscription snapshot,
// optionally filtered to active or expired
func (s *VipService) ListVipUsers(ctx context.Context, status string, offset, limit int) (*VipUserList, error) {
	now := time.Now()
	users, total, err := s.userRepo.ListWithVip(ctx, status, now, offset, limit)
	if err != nil {
		return nil, err
	}

	list := &VipUserList{
		Users: make([]*models.UserResponse, 0, len(users)),
		Total: total,
	}
	cache := make(map[uint]*models.VipPackage)
	for _, user := range users {
		var pkg *models.VipPackage
		if user.VipPackageID != nil {
			var ok bool
			if pkg, ok = cache[*user.VipPackageID]; !ok {
				pkg, _ = s.vipRepo.GetByID(ctx, *user.VipPackageID)
				cache[*user.VipPackageID] = pkg
			}
		}
		list.Users = append(list.Users, user.ToResponse(pkg, now))
	}

	return list, nil
}

// currentPackage resolves the caller's active tier, nil when none
func (s *VipService) currentPackage(ctx context.Context, user *models.User) *models.VipPackage {
	if !user.VipIsActive || user.VipPackageID == nil {
		return nil
	}
	pkg, err := s.vipRepo.GetByID(ctx, *user.VipPackageID)
	if err != nil {
		return nil
	}
	return pkg
}

// currentSnapshotPackage resolves the snapshot's package regardless of
// the active flag
func (s *VipService) currentSnapshotPackage(ctx context.Context, user *models.User) *models.VipPackage {
	if user.VipPackageID == nil {
		return nil
	}
	pkg, err := s.vipRepo.GetByID(ctx, *user.VipPackageID)
	if err != nil {
		return nil
	}
	return pkg
}

// snapshot builds the subscription DTO for a user, nil when the user
// never held one
func (s *VipService) snapshot(ctx context.Context, user *models.User, now time.Time) *models.VipInfoResponse {
	if !user.HasVip() {
		return nil
	}
	info := &models.VipInfoResponse{
		Package:   s.currentSnapshotPackage(ctx, user),
		StartDate: user.VipStartDate,
		EndDate:   user.VipEndDate,
		IsActive:  user.VipIsActive,
	}
	if user.VipIsActive && user.VipEndDate != nil {
		info.RemainingDays = models.RemainingDays(*user.VipEndDate, now)
	}
	return info
}

// expireVipIfNeeded flips and persists the active flag when the end
// date has passed
func (s *VipService) expireVipIfNeeded(ctx context.Context, user *models.User, now time.Time) error {
	if !user.VipIsActive || !user.VipExpired(now) {
		return nil
	}
	user.VipIsActive = false
	return s.userRepo.Update(ctx, user)
}
