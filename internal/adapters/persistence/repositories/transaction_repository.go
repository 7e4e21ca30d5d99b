package repositories

import (
	"context"

	"vipclub-backend/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// transactionRepository implements TransactionRepository interface
type transactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

// Create creates a new transaction
func (r *transactionRepository) Create(ctx context.Context, tx *models.Transaction) error {
	return r.db.WithContext(ctx).Create(tx).Error
}

// GetByID gets a transaction by ID
func (r *transactionRepository) GetByID(ctx context.Context, id uint) (*models.Transaction, error) {
	var tx models.Transaction
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&tx).Error
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

// Update updates a transaction
func (r *transactionRepository) Update(ctx context.Context, tx *models.Transaction) error {
	return r.db.WithContext(ctx).Save(tx).Error
}

// List lists all transactions with owner preloaded, newest first
func (r *transactionRepository) List(ctx context.Context, filter *TransactionFilter, offset, limit int) ([]*models.Transaction, int64, error) {
	var txs []*models.Transaction
	var total int64

	q := applyFilter(r.db.WithContext(ctx).Model(&models.Transaction{}), filter)

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Preload("User").
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&txs).Error
	if err != nil {
		return nil, 0, err
	}

	return txs, total, nil
}

// ListByUser lists one user's transactions, newest first
func (r *transactionRepository) ListByUser(ctx context.Context, userID uint, filter *TransactionFilter, offset, limit int) ([]*models.Transaction, int64, error) {
	var txs []*models.Transaction
	var total int64

	q := applyFilter(r.db.WithContext(ctx).Model(&models.Transaction{}), filter).
		Where("user_id = ?", userID)

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&txs).Error
	if err != nil {
		return nil, 0, err
	}

	return txs, total, nil
}

func applyFilter(q *gorm.DB, filter *TransactionFilter) *gorm.DB {
	if filter == nil {
		return q
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}
	return q
}
