package models

import (
	"math"
	"time"

	"gorm.io/gorm"
)

// ============================================================
// Users
// ============================================================

// User roles
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents users table
type User struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	Username    string  `gorm:"uniqueIndex;size:50;not null" json:"username"`
	PhoneNumber string  `gorm:"uniqueIndex;size:20;not null" json:"phone_number"`
	RefID       string  `gorm:"uniqueIndex;size:6" json:"ref_id"`
	Password    string  `gorm:"size:255;not null" json:"-"`
	Role        string  `gorm:"size:20;default:'user'" json:"role"`
	Balance     float64 `gorm:"type:decimal(15,2);default:0" json:"balance"`
	IsVerified  bool    `gorm:"default:false" json:"is_verified"`

	// Single-device session: the device token supplied at the last
	// successful login. Login from a different device is refused until
	// the user logs out.
	DeviceToken *string    `gorm:"size:255" json:"-"`
	LastLoginAt *time.Time `json:"last_login_at"`

	// Denormalized snapshot of the active VIP subscription
	VipPackageID *uint      `json:"vip_package_id"`
	VipStartDate *time.Time `json:"vip_start_date"`
	VipEndDate   *time.Time `json:"vip_end_date"`
	VipIsActive  bool       `gorm:"default:false" json:"vip_is_active"`

	// Password reset OTP mirror, never serialized
	ResetPasswordOTP    *string    `gorm:"size:6" json:"-"`
	ResetPasswordExpire *time.Time `json:"-"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// HasVip reports whether the user carries any subscription snapshot
func (u *User) HasVip() bool {
	return u.VipPackageID != nil
}

// VipExpired reports whether the subscription end date has passed
func (u *User) VipExpired(now time.Time) bool {
	return u.VipEndDate != nil && u.VipEndDate.Before(now)
}

// VipInfoResponse DTO for the embedded subscription snapshot
type VipInfoResponse struct {
	Package       *VipPackage `json:"package,omitempty"`
	StartDate     *time.Time  `json:"start_date"`
	EndDate       *time.Time  `json:"end_date"`
	IsActive      bool        `json:"is_active"`
	RemainingDays int         `json:"remaining_days"`
}

// UserResponse DTO: public projection without password and reset fields
type UserResponse struct {
	ID          uint             `json:"id"`
	Username    string           `json:"username"`
	PhoneNumber string           `json:"phone_number"`
	RefID       string           `json:"ref_id"`
	Role        string           `json:"role"`
	Balance     float64          `json:"balance"`
	IsVerified  bool             `json:"is_verified"`
	Vip         string           `json:"vip"`
	VipInfo     *VipInfoResponse `json:"vip_info"`
	CreatedAt   time.Time        `json:"created_at"`
}

// ToResponse builds the public projection. pkg is the resolved catalog
// entry for the snapshot and may be nil when the user holds none.
func (u *User) ToResponse(pkg *VipPackage, now time.Time) *UserResponse {
	resp := &UserResponse{
		ID:          u.ID,
		Username:    u.Username,
		PhoneNumber: u.PhoneNumber,
		RefID:       u.RefID,
		Role:        u.Role,
		Balance:     u.Balance,
		IsVerified:  u.IsVerified,
		Vip:         "VIP 0",
		CreatedAt:   u.CreatedAt,
	}

	if u.HasVip() && pkg != nil {
		info := &VipInfoResponse{
			Package:   pkg,
			StartDate: u.VipStartDate,
			EndDate:   u.VipEndDate,
			IsActive:  u.VipIsActive,
		}
		if u.VipIsActive && u.VipEndDate != nil {
			info.RemainingDays = RemainingDays(*u.VipEndDate, now)
			resp.Vip = pkg.Name
		}
		resp.VipInfo = info
	}

	return resp
}

// RemainingDays returns the number of days (rounded up) until end,
// never negative
func RemainingDays(end, now time.Time) int {
	days := int(math.Ceil(end.Sub(now).Hours() / 24))
	if days < 0 {
		return 0
	}
	return days
}

// ============================================================
// OTPs
// ============================================================

// OTP types (purposes)
const (
	OTPTypeRegister      = "register"
	OTPTypeResetPassword = "reset-password"
)

// OTP represents otps table. At most one record per type is active:
// creating a new one deactivates all prior active records of that type.
type OTP struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Type      string    `gorm:"size:20;not null;index" json:"type"`
	Value     string    `gorm:"size:6;not null" json:"value"`
	IsActive  bool      `gorm:"default:true;index" json:"is_active"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (OTP) TableName() string {
	return "otps"
}

// IsExpired reports whether the OTP is past its expiry
func (o *OTP) IsExpired(now time.Time) bool {
	return now.After(o.ExpiresAt)
}

// ============================================================
// Transactions
// ============================================================

// Transaction types
const (
	TxTypeDeposit  = "deposit"
	TxTypeWithdraw = "withdraw"
)

// Transaction statuses. A transaction starts pending and transitions
// exactly once to approved or rejected.
const (
	TxStatusPending  = "pending"
	TxStatusApproved = "approved"
	TxStatusRejected = "rejected"
)

// Transaction represents transactions table: a deposit/withdraw request
// awaiting admin approval. Balance is mutated only on approval.
type Transaction struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	UserID          uint      `gorm:"not null;index" json:"user_id"`
	Type            string    `gorm:"size:20;not null" json:"type"`
	Amount          float64   `gorm:"type:decimal(15,2);not null" json:"amount"`
	Status          string    `gorm:"size:20;not null;default:'pending';index" json:"status"`
	RejectionReason string    `gorm:"size:255" json:"rejection_reason,omitempty"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (Transaction) TableName() string {
	return "transactions"
}

// IsPending reports whether the transaction still awaits a decision
func (t *Transaction) IsPending() bool {
	return t.Status == TxStatusPending
}

// TransactionUser DTO: the owner fields exposed on admin listings
type TransactionUser struct {
	ID          uint   `json:"id"`
	Username    string `json:"username"`
	PhoneNumber string `json:"phone_number"`
	RefID       string `json:"ref_id"`
}

// TransactionResponse DTO
type TransactionResponse struct {
	ID              uint             `json:"id"`
	Type            string           `json:"type"`
	Amount          float64          `json:"amount"`
	Status          string           `json:"status"`
	RejectionReason string           `json:"rejection_reason,omitempty"`
	User            *TransactionUser `json:"user,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

func (t *Transaction) ToResponse() *TransactionResponse {
	resp := &TransactionResponse{
		ID:              t.ID,
		Type:            t.Type,
		Amount:          t.Amount,
		Status:          t.Status,
		RejectionReason: t.RejectionReason,
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
	}

	if t.User != nil {
		resp.User = &TransactionUser{
			ID:          t.User.ID,
			Username:    t.User.Username,
			PhoneNumber: t.User.PhoneNumber,
			RefID:       t.User.RefID,
		}
	}

	return resp
}

// ============================================================
// VIP catalog
// ============================================================

// VipPackage represents vip_packages table. Reference data seeded
// out-of-band; never mutated by request handlers.
type VipPackage struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"uniqueIndex;size:50;not null" json:"name"`
	Price       float64   `gorm:"type:decimal(15,2);not null" json:"price"`
	Duration    int       `gorm:"not null" json:"duration"` // days
	Description string    `gorm:"size:255;not null" json:"description"`
	Benefits    []string  `gorm:"serializer:json" json:"benefits"`
	IsActive    bool      `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (VipPackage) TableName() string {
	return "vip_packages"
}

// ============================================================
// Auto Migration
// ============================================================

// AutoMigrate runs auto migration for all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&OTP{},
		&Transaction{},
		&VipPackage{},
	)
}
