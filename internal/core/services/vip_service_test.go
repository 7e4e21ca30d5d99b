package services

import (
	"context"
	"testing"
	"time"

	"vipclub-backend/internal/adapters/persistence/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestVipService() (*VipService, *fakeUserRepo, *fakeVipPackageRepo) {
	userRepo := newFakeUserRepo()
	vipRepo := newFakeVipPackageRepo()
	seedPackages(vipRepo)
	return NewVipService(userRepo, vipRepo), userRepo, vipRepo
}

func createVipUser(t *testing.T, repo *fakeUserRepo, balance float64) *models.User {
	t.Helper()
	user := &models.User{
		Username:    "alice",
		PhoneNumber: "0351234567",
		RefID:       "100001",
		Role:        models.RoleUser,
		Balance:     balance,
		IsVerified:  true,
	}
	require.NoError(t, repo.Create(context.Background(), user))
	return user
}

func TestEffectivePrice(t *testing.T) {
	tier1 := &models.VipPackage{Price: 10000}
	tier2 := &models.VipPackage{Price: 100000}

	assert.Equal(t, float64(10000), EffectivePrice(nil, tier1))
	assert.Equal(t, float64(100000), EffectivePrice(nil, tier2))
	assert.Equal(t, float64(90000), EffectivePrice(tier1, tier2))
}

func TestUpgradable(t *testing.T) {
	tier1 := &models.VipPackage{Price: 10000}
	tier2 := &models.VipPackage{Price: 100000}

	assert.True(t, Upgradable(nil, tier1))
	assert.True(t, Upgradable(tier1, tier2))
	assert.False(t, Upgradable(tier1, tier1))
	assert.False(t, Upgradable(tier2, tier1))
}

func TestPurchaseFirstTier(t *testing.T) {
	svc, userRepo, _ := newTestVipService()
	ctx := context.Background()
	user := createVipUser(t, userRepo, 15000)

	result, err := svc.Purchase(ctx, user.ID, 1)
	require.NoError(t, err)

	assert.Equal(t, float64(10000), result.AdjustedPrice)
	assert.Equal(t, float64(5000), result.RemainingBalance)
	assert.Equal(t, 7, result.VipInfo.RemainingDays)
	assert.True(t, result.VipInfo.IsActive)

	stored, err := userRepo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, float64(5000), stored.Balance)
	assert.True(t, stored.VipIsActive)
	require.NotNil(t, stored.VipPackageID)
	assert.Equal(t, uint(1), *stored.VipPackageID)
}

func TestPurchaseInsufficientBalance(t *testing.T) {
	svc, userRepo, _ := newTestVipService()
	user := createVipUser(t, userRepo, 9999)

	_, err := svc.Purchase(context.Background(), user.ID, 1)
	assert.ErrorIs(t, err, ErrInsufficientBalance)
}

func TestPurchaseUpgradePricing(t *testing.T) {
	svc, userRepo, _ := newTestVipService()
	ctx := context.Background()
	user := createVipUser(t, userRepo, 110000)

	_, err := svc.Purchase(ctx, user.ID, 1)
	require.NoError(t, err)

	// tier 2 costs its list price minus tier 1's
	result, err := svc.Purchase(ctx, user.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, float64(90000), result.AdjustedPrice)
	assert.Equal(t, float64(100000), result.OriginalPrice)
	assert.Equal(t, float64(10000), result.RemainingBalance)
}

func TestPurchaseDowngradeRejected(t *testing.T) {
	svc, userRepo, _ := newTestVipService()
	ctx := context.Background()
	user := createVipUser(t, userRepo, 200000)

	_, err := svc.Purchase(ctx, user.ID, 2)
	require.NoError(t, err)

	_, err = svc.Purchase(ctx, user.ID, 1)
	assert.ErrorIs(t, err, ErrPackageNotUpgradable)
	_, err = svc.Purchase(ctx, user.ID, 2)
	assert.ErrorIs(t, err, ErrPackageNotUpgradable)
}

func TestPurchaseKeepsLaterEndDate(t *testing.T) {
	svc, userRepo, _ := newTestVipService()
	ctx := context.Background()
	user := createVipUser(t, userRepo, 200000)

	// a long-running tier 1 window granted out of band
	start := time.Now().AddDate(0, 0, -1)
	end := time.Now().AddDate(0, 0, 60)
	pkgID := uint(1)
	user.VipPackageID = &pkgID
	user.VipStartDate = &start
	user.VipEndDate = &end
	user.VipIsActive = true
	require.NoError(t, userRepo.Update(ctx, user))

	// tier 2 lasts 30 days, shorter than what remains
	result, err := svc.Purchase(ctx, user.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, end.Unix(), result.VipInfo.EndDate.Unix())

	stored, err := userRepo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, uint(2), *stored.VipPackageID)
}

func TestPurchaseAfterExpiryPaysFullPrice(t *testing.T) {
	svc, userRepo, _ := newTestVipService()
	ctx := context.Background()
	user := createVipUser(t, userRepo, 100000)

	start := time.Now().AddDate(0, 0, -10)
	end := time.Now().AddDate(0, 0, -3)
	pkgID := uint(1)
	user.VipPackageID = &pkgID
	user.VipStartDate = &start
	user.VipEndDate = &end
	user.VipIsActive = true
	require.NoError(t, userRepo.Update(ctx, user))

	result, err := svc.Purchase(ctx, user.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, float64(100000), result.AdjustedPrice)
	assert.Equal(t, float64(0), result.RemainingBalance)
}

func TestPurchaseUnknownOrInactivePackage(t *testing.T) {
	svc, userRepo, vipRepo := newTestVipService()
	ctx := context.Background()
	user := createVipUser(t, userRepo, 1000000)

	_, err := svc.Purchase(ctx, user.ID, 99)
	assert.ErrorIs(t, err, ErrPackageNotFound)

	vipRepo.packages[3].IsActive = false
	_, err = svc.Purchase(ctx, user.ID, 3)
	assert.ErrorIs(t, err, ErrPackageNotFound)
}

func TestListPackagesFiltersLowerTiers(t *testing.T) {
	svc, userRepo, _ := newTestVipService()
	ctx := context.Background()
	user := createVipUser(t, userRepo, 50000)

	list, err := svc.ListPackages(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "VIP 0", list.CurrentVip)
	assert.Len(t, list.Packages, 3)
	assert.Equal(t, float64(10000), list.Packages[0].AdjustedPrice)

	_, err = svc.Purchase(ctx, user.ID, 1)
	require.NoError(t, err)

	list, err = svc.ListPackages(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "VIP 1", list.CurrentVip)
	assert.Equal(t, 7, list.RemainingDays)
	require.Len(t, list.Packages, 2)
	assert.Equal(t, "VIP 2", list.Packages[0].Name)
	assert.Equal(t, float64(90000), list.Packages[0].AdjustedPrice)
	assert.Equal(t, float64(990000), list.Packages[1].AdjustedPrice)
}

func TestGetStatusLazyExpiry(t *testing.T) {
	svc, userRepo, _ := newTestVipService()
	ctx := context.Background()
	user := createVipUser(t, userRepo, 0)

	start := time.Now().AddDate(0, 0, -10)
	end := time.Now().AddDate(0, 0, -3)
	pkgID := uint(1)
	user.VipPackageID = &pkgID
	user.VipStartDate = &start
	user.VipEndDate = &end
	user.VipIsActive = true
	require.NoError(t, userRepo.Update(ctx, user))

	info, err := svc.GetStatus(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.False(t, info.IsActive)
	assert.Zero(t, info.RemainingDays)

	// the flip was persisted
	stored, err := userRepo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, stored.VipIsActive)
}

func TestGetStatusNeverSubscribed(t *testing.T) {
	svc, userRepo, _ := newTestVipService()
	user := createVipUser(t, userRepo, 0)

	info, err := svc.GetStatus(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Nil(t, info)
}

func TestCancel(t *testing.T) {
	svc, userRepo, _ := newTestVipService()
	ctx := context.Background()
	user := createVipUser(t, userRepo, 20000)

	_, err := svc.Cancel(ctx, user.ID)
	assert.ErrorIs(t, err, ErrNoActiveVip)

	_, err = svc.Purchase(ctx, user.ID, 1)
	require.NoError(t, err)

	info, err := svc.Cancel(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, info.IsActive)

	stored, err := userRepo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, stored.VipIsActive)
	require.NotNil(t, stored.VipEndDate)
	assert.False(t, stored.VipEndDate.After(time.Now()))
	// cancellation never refunds
	assert.Equal(t, float64(10000), stored.Balance)
}

func TestGrant(t *testing.T) {
	svc, userRepo, _ := newTestVipService()
	ctx := context.Background()
	user := createVipUser(t, userRepo, 500)

	result, err := svc.Grant(ctx, user.ID, 2, 0)
	require.NoError(t, err)
	assert.Nil(t, result.PreviousVip)
	assert.Equal(t, 30, result.GrantedVip.RemainingDays)

	// no balance effect
	stored, err := userRepo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, float64(500), stored.Balance)
	assert.True(t, stored.VipIsActive)
}

func TestGrantDurationOverride(t *testing.T) {
	svc, userRepo, _ := newTestVipService()
	ctx := context.Background()
	user := createVipUser(t, userRepo, 0)

	result, err := svc.Grant(ctx, user.ID, 1, 90)
	require.NoError(t, err)
	assert.Equal(t, 90, result.GrantedVip.RemainingDays)
}

func TestGrantReplacesPrevious(t *testing.T) {
	svc, userRepo, _ := newTestVipService()
	ctx := context.Background()
	user := createVipUser(t, userRepo, 20000)

	_, err := svc.Purchase(ctx, user.ID, 1)
	require.NoError(t, err)

	result, err := svc.Grant(ctx, user.ID, 3, 0)
	require.NoError(t, err)
	require.NotNil(t, result.PreviousVip)
	assert.Equal(t, "VIP 1", result.PreviousVip.Package.Name)
	assert.Equal(t, "VIP 3", result.GrantedVip.Package.Name)
}

func TestListVipUsers(t *testing.T) {
	svc, userRepo, _ := newTestVipService()
	ctx := context.Background()

	active := createVipUser(t, userRepo, 20000)
	_, err := svc.Purchase(ctx, active.ID, 1)
	require.NoError(t, err)

	expired := &models.User{Username: "bob", PhoneNumber: "0359999999", RefID: "100002", Role: models.RoleUser, IsVerified: true}
	require.NoError(t, userRepo.Create(ctx, expired))
	start := time.Now().AddDate(0, 0, -40)
	end := time.Now().AddDate(0, 0, -10)
	pkgID := uint(2)
	expired.VipPackageID = &pkgID
	expired.VipStartDate = &start
	expired.VipEndDate = &end
	require.NoError(t, userRepo.Update(ctx, expired))

	activeList, err := svc.ListVipUsers(ctx, "active", 0, 10)
	require.NoError(t, err)
	require.Equal(t, int64(1), activeList.Total)
	assert.Equal(t, "alice", activeList.Users[0].Username)
	assert.Equal(t, "VIP 1", activeList.Users[0].Vip)

	expiredList, err := svc.ListVipUsers(ctx, "expired", 0, 10)
	require.NoError(t, err)
	require.Equal(t, int64(1), expiredList.Total)
	assert.Equal(t, "bob", expiredList.Users[0].Username)
}

func TestListVipUsersWithoutStatusReturnsAllSnapshotHolders(t *testing.T) {
	svc, userRepo, _ := newTestVipService()
	ctx := context.Background()

	active := createVipUser(t, userRepo, 20000)
	_, err := svc.Purchase(ctx, active.ID, 1)
	require.NoError(t, err)

	expired := &models.User{Username: "bob", PhoneNumber: "0359999999", RefID: "100002", Role: models.RoleUser, IsVerified: true}
	require.NoError(t, userRepo.Create(ctx, expired))
	start := time.Now().AddDate(0, 0, -40)
	end := time.Now().AddDate(0, 0, -10)
	pkgID := uint(2)
	expired.VipPackageID = &pkgID
	expired.VipStartDate = &start
	expired.VipEndDate = &end
	require.NoError(t, userRepo.Update(ctx, expired))

	noVip := &models.User{Username: "carol", PhoneNumber: "0351111111", RefID: "100003", Role: models.RoleUser, IsVerified: true}
	require.NoError(t, userRepo.Create(ctx, noVip))

	all, err := svc.ListVipUsers(ctx, "", 0, 10)
	require.NoError(t, err)
	require.Equal(t, int64(2), all.Total)

	names := []string{all.Users[0].Username, all.Users[1].Username}
	assert.Contains(t, names, "alice")
	assert.Contains(t, names, "bob")
	assert.NotContains(t, names, "carol")
}

func TestGetUserStatusIncludesBalance(t *testing.T) {
	svc, userRepo, _ := newTestVipService()
	ctx := context.Background()
	user := createVipUser(t, userRepo, 15000)

	_, err := svc.Purchase(ctx, user.ID, 1)
	require.NoError(t, err)

	resp, err := svc.GetUserStatus(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, float64(5000), resp.Balance)
	assert.Equal(t, "VIP 1", resp.Vip)
	require.NotNil(t, resp.VipInfo)
	assert.True(t, resp.VipInfo.IsActive)

	_, err = svc.GetUserStatus(ctx, 999)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
