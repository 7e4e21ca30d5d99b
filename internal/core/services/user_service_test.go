package services

import (
	"context"
	"testing"
	"time"

	"vipclub-backend/internal/adapters/persistence/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestUserService() (*UserService, *fakeUserRepo, *fakeVipPackageRepo) {
	userRepo := newFakeUserRepo()
	vipRepo := newFakeVipPackageRepo()
	seedPackages(vipRepo)
	return NewUserService(userRepo, vipRepo), userRepo, vipRepo
}

func TestGetProfile(t *testing.T) {
	svc, userRepo, _ := newTestUserService()
	ctx := context.Background()

	user := &models.User{Username: "alice", PhoneNumber: "0351234567", RefID: "100001", Role: models.RoleUser, Balance: 2500, IsVerified: true}
	require.NoError(t, userRepo.Create(ctx, user))

	resp, err := svc.GetProfile(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", resp.Username)
	assert.Equal(t, float64(2500), resp.Balance)
	assert.Equal(t, "VIP 0", resp.Vip)
	assert.Nil(t, resp.VipInfo)

	_, err = svc.GetProfile(ctx, 999)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestGetProfilePersistsExpiry(t *testing.T) {
	svc, userRepo, _ := newTestUserService()
	ctx := context.Background()

	start := time.Now().AddDate(0, 0, -10)
	end := time.Now().AddDate(0, 0, -1)
	pkgID := uint(1)
	user := &models.User{
		Username: "alice", PhoneNumber: "0351234567", RefID: "100001",
		Role: models.RoleUser, IsVerified: true,
		VipPackageID: &pkgID, VipStartDate: &start, VipEndDate: &end, VipIsActive: true,
	}
	require.NoError(t, userRepo.Create(ctx, user))

	resp, err := svc.GetProfile(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "VIP 0", resp.Vip)
	require.NotNil(t, resp.VipInfo)
	assert.False(t, resp.VipInfo.IsActive)

	stored, err := userRepo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, stored.VipIsActive)
}

func TestListUsersPagination(t *testing.T) {
	svc, userRepo, _ := newTestUserService()
	ctx := context.Background()

	phones := []string{"0351111111", "0352222222", "0353333333"}
	for i, phone := range phones {
		require.NoError(t, userRepo.Create(ctx, &models.User{
			Username:    "user" + string(rune('a'+i)),
			PhoneNumber: phone,
			RefID:       "10000" + string(rune('1'+i)),
			Role:        models.RoleUser,
			IsVerified:  true,
		}))
	}

	out, err := svc.ListUsers(ctx, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), out.Total)
	assert.Len(t, out.Users, 2)

	out, err = svc.ListUsers(ctx, 2, 2)
	require.NoError(t, err)
	assert.Len(t, out.Users, 1)
}

func TestListUsersPersistsExpiry(t *testing.T) {
	svc, userRepo, _ := newTestUserService()
	ctx := context.Background()

	start := time.Now().AddDate(0, 0, -10)
	end := time.Now().AddDate(0, 0, -1)
	pkgID := uint(1)
	require.NoError(t, userRepo.Create(ctx, &models.User{
		Username: "alice", PhoneNumber: "0351234567", RefID: "100001",
		Role: models.RoleUser, IsVerified: true,
		VipPackageID: &pkgID, VipStartDate: &start, VipEndDate: &end, VipIsActive: true,
	}))

	out, err := svc.ListUsers(ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, out.Users, 1)
	assert.Equal(t, "VIP 0", out.Users[0].Vip)
	require.NotNil(t, out.Users[0].VipInfo)
	assert.False(t, out.Users[0].VipInfo.IsActive)

	// the lazy flip is persisted on the listing path as well
	stored, err := userRepo.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.False(t, stored.VipIsActive)
}

func TestSearchUsers(t *testing.T) {
	svc, userRepo, _ := newTestUserService()
	ctx := context.Background()

	require.NoError(t, userRepo.Create(ctx, &models.User{Username: "alice", PhoneNumber: "0351234567", RefID: "123456", Role: models.RoleUser, IsVerified: true}))
	require.NoError(t, userRepo.Create(ctx, &models.User{Username: "bob", PhoneNumber: "0359876543", RefID: "654321", Role: models.RoleUser, IsVerified: true}))

	out, err := svc.SearchUsers(ctx, "ali", 0, 10)
	require.NoError(t, err)
	require.Equal(t, int64(1), out.Total)
	assert.Equal(t, "alice", out.Users[0].Username)

	out, err = svc.SearchUsers(ctx, "654321", 0, 10)
	require.NoError(t, err)
	require.Equal(t, int64(1), out.Total)
	assert.Equal(t, "bob", out.Users[0].Username)

	out, err = svc.SearchUsers(ctx, "0351234", 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), out.Total)

	out, err = svc.SearchUsers(ctx, "nobody", 0, 10)
	require.NoError(t, err)
	assert.Zero(t, out.Total)
}

func TestDeactivateExpiredVipSweep(t *testing.T) {
	userRepo := newFakeUserRepo()
	ctx := context.Background()

	start := time.Now().AddDate(0, 0, -10)
	expiredEnd := time.Now().AddDate(0, 0, -1)
	activeEnd := time.Now().AddDate(0, 0, 5)
	pkgID := uint(1)

	require.NoError(t, userRepo.Create(ctx, &models.User{
		Username: "expired", PhoneNumber: "0351111111", RefID: "100001", Role: models.RoleUser,
		VipPackageID: &pkgID, VipStartDate: &start, VipEndDate: &expiredEnd, VipIsActive: true,
	}))
	require.NoError(t, userRepo.Create(ctx, &models.User{
		Username: "active", PhoneNumber: "0352222222", RefID: "100002", Role: models.RoleUser,
		VipPackageID: &pkgID, VipStartDate: &start, VipEndDate: &activeEnd, VipIsActive: true,
	}))

	affected, err := userRepo.DeactivateExpiredVip(ctx, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	expired, err := userRepo.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.False(t, expired.VipIsActive)

	active, err := userRepo.GetByID(ctx, 2)
	require.NoError(t, err)
	assert.True(t, active.VipIsActive)
}
