package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"vipclub-backend/internal/adapters/persistence/models"
	"vipclub-backend/internal/adapters/persistence/repositories"

	"gorm.io/gorm"
)

// --- in-memory fakes ---

type fakeUserRepo struct {
	users  map[uint]*models.User
	nextID uint
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uint]*models.User), nextID: 1}
}

func (f *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	user.ID = f.nextID
	f.nextID++
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id uint) (*models.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *user
	return &cp, nil
}

func (f *fakeUserRepo) GetByPhoneNumber(ctx context.Context, phone string) (*models.User, error) {
	for _, user := range f.users {
		if user.PhoneNumber == phone {
			cp := *user
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) Update(ctx context.Context, user *models.User) error {
	if _, ok := f.users[user.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeUserRepo) List(ctx context.Context, offset, limit int) ([]*models.User, int64, error) {
	all := f.sorted()
	return paginate(all, offset, limit), int64(len(all)), nil
}

func (f *fakeUserRepo) Search(ctx context.Context, query string, offset, limit int) ([]*models.User, int64, error) {
	q := strings.ToLower(query)
	var matched []*models.User
	for _, user := range f.sorted() {
		if strings.Contains(strings.ToLower(user.RefID), q) ||
			strings.Contains(strings.ToLower(user.Username), q) ||
			strings.Contains(strings.ToLower(user.PhoneNumber), q) {
			matched = append(matched, user)
		}
	}
	return paginate(matched, offset, limit), int64(len(matched)), nil
}

func (f *fakeUserRepo) ListWithVip(ctx context.Context, status string, now time.Time, offset, limit int) ([]*models.User, int64, error) {
	var matched []*models.User
	for _, user := range f.sorted() {
		if user.VipPackageID == nil {
			continue
		}
		active := user.VipIsActive && user.VipEndDate != nil && user.VipEndDate.After(now)
		if status == "" || (status == "active") == active {
			matched = append(matched, user)
		}
	}
	return paginate(matched, offset, limit), int64(len(matched)), nil
}

func (f *fakeUserRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	for _, user := range f.users {
		if user.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUserRepo) ExistsByPhoneNumber(ctx context.Context, phone string) (bool, error) {
	for _, user := range f.users {
		if user.PhoneNumber == phone {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUserRepo) ExistsByRefID(ctx context.Context, refID string) (bool, error) {
	for _, user := range f.users {
		if user.RefID == refID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUserRepo) DeactivateExpiredVip(ctx context.Context, now time.Time) (int64, error) {
	var affected int64
	for _, user := range f.users {
		if user.VipIsActive && user.VipEndDate != nil && !user.VipEndDate.After(now) {
			user.VipIsActive = false
			affected++
		}
	}
	return affected, nil
}

func (f *fakeUserRepo) sorted() []*models.User {
	out := make([]*models.User, 0, len(f.users))
	for _, user := range f.users {
		cp := *user
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func paginate(users []*models.User, offset, limit int) []*models.User {
	if offset >= len(users) {
		return nil
	}
	end := offset + limit
	if end > len(users) {
		end = len(users)
	}
	return users[offset:end]
}

type fakeOTPRepo struct {
	otps   []*models.OTP
	nextID uint
}

func newFakeOTPRepo() *fakeOTPRepo {
	return &fakeOTPRepo{nextID: 1}
}

func (f *fakeOTPRepo) Create(ctx context.Context, otp *models.OTP) error {
	otp.ID = f.nextID
	f.nextID++
	cp := *otp
	f.otps = append(f.otps, &cp)
	return nil
}

func (f *fakeOTPRepo) GetLatestActive(ctx context.Context, otpType string) (*models.OTP, error) {
	for i := len(f.otps) - 1; i >= 0; i-- {
		if f.otps[i].Type == otpType && f.otps[i].IsActive {
			cp := *f.otps[i]
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeOTPRepo) GetLatestActiveByValue(ctx context.Context, otpType, value string) (*models.OTP, error) {
	for i := len(f.otps) - 1; i >= 0; i-- {
		if f.otps[i].Type == otpType && f.otps[i].Value == value && f.otps[i].IsActive {
			cp := *f.otps[i]
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeOTPRepo) DeactivateByType(ctx context.Context, otpType string) (int64, error) {
	var affected int64
	for _, otp := range f.otps {
		if otp.Type == otpType && otp.IsActive {
			otp.IsActive = false
			affected++
		}
	}
	return affected, nil
}

func (f *fakeOTPRepo) Update(ctx context.Context, otp *models.OTP) error {
	for i, existing := range f.otps {
		if existing.ID == otp.ID {
			cp := *otp
			f.otps[i] = &cp
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

type fakeTransactionRepo struct {
	txs    map[uint]*models.Transaction
	nextID uint
}

func newFakeTransactionRepo() *fakeTransactionRepo {
	return &fakeTransactionRepo{txs: make(map[uint]*models.Transaction), nextID: 1}
}

func (f *fakeTransactionRepo) Create(ctx context.Context, tx *models.Transaction) error {
	tx.ID = f.nextID
	f.nextID++
	cp := *tx
	f.txs[tx.ID] = &cp
	return nil
}

func (f *fakeTransactionRepo) GetByID(ctx context.Context, id uint) (*models.Transaction, error) {
	tx, ok := f.txs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *tx
	return &cp, nil
}

func (f *fakeTransactionRepo) Update(ctx context.Context, tx *models.Transaction) error {
	if _, ok := f.txs[tx.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *tx
	f.txs[tx.ID] = &cp
	return nil
}

func (f *fakeTransactionRepo) List(ctx context.Context, filter *repositories.TransactionFilter, offset, limit int) ([]*models.Transaction, int64, error) {
	return f.list(filter, 0, offset, limit)
}

func (f *fakeTransactionRepo) ListByUser(ctx context.Context, userID uint, filter *repositories.TransactionFilter, offset, limit int) ([]*models.Transaction, int64, error) {
	return f.list(filter, userID, offset, limit)
}

func (f *fakeTransactionRepo) list(filter *repositories.TransactionFilter, userID uint, offset, limit int) ([]*models.Transaction, int64, error) {
	ids := make([]uint, 0, len(f.txs))
	for id := range f.txs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] > ids[j] })

	var matched []*models.Transaction
	for _, id := range ids {
		tx := f.txs[id]
		if userID != 0 && tx.UserID != userID {
			continue
		}
		if filter != nil && filter.Status != "" && tx.Status != filter.Status {
			continue
		}
		if filter != nil && filter.Type != "" && tx.Type != filter.Type {
			continue
		}
		cp := *tx
		matched = append(matched, &cp)
	}

	total := int64(len(matched))
	if offset >= len(matched) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

type fakeVipPackageRepo struct {
	packages map[uint]*models.VipPackage
	nextID   uint
}

func newFakeVipPackageRepo() *fakeVipPackageRepo {
	return &fakeVipPackageRepo{packages: make(map[uint]*models.VipPackage), nextID: 1}
}

func (f *fakeVipPackageRepo) Create(ctx context.Context, pkg *models.VipPackage) error {
	pkg.ID = f.nextID
	f.nextID++
	cp := *pkg
	f.packages[pkg.ID] = &cp
	return nil
}

func (f *fakeVipPackageRepo) GetByID(ctx context.Context, id uint) (*models.VipPackage, error) {
	pkg, ok := f.packages[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *pkg
	return &cp, nil
}

func (f *fakeVipPackageRepo) ListActive(ctx context.Context) ([]*models.VipPackage, error) {
	ids := make([]uint, 0, len(f.packages))
	for id := range f.packages {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return f.packages[ids[i]].Price < f.packages[ids[j]].Price
	})

	var out []*models.VipPackage
	for _, id := range ids {
		if f.packages[id].IsActive {
			cp := *f.packages[id]
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeVipPackageRepo) Count(ctx context.Context) (int64, error) {
	return int64(len(f.packages)), nil
}

// seedPackages installs the standard three-tier catalog
func seedPackages(repo *fakeVipPackageRepo) {
	repo.Create(context.Background(), &models.VipPackage{Name: "VIP 1", Price: 10000, Duration: 7, IsActive: true})
	repo.Create(context.Background(), &models.VipPackage{Name: "VIP 2", Price: 100000, Duration: 30, IsActive: true})
	repo.Create(context.Background(), &models.VipPackage{Name: "VIP 3", Price: 1000000, Duration: 365, IsActive: true})
}
