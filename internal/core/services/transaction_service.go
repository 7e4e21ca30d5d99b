package services

import (
	"context"
	"errors"
	"log"

	"vipclub-backend/internal/adapters/persistence/models"
	"vipclub-backend/internal/adapters/persistence/repositories"

	"gorm.io/gorm"
)

// Transaction errors
var (
	ErrTransactionNotFound  = errors.New("transaction not found")
	ErrTransactionProcessed = errors.New("transaction has already been processed")
	ErrInsufficientBalance  = errors.New("insufficient balance")
	ErrInvalidAmount        = errors.New("amount must be at least 1")
	ErrInvalidStatus        = errors.New("status must be either approved or rejected")
)

// TransactionService handles the deposit/withdraw approval workflow.
// Request capture is decoupled from balance mutation: balance changes
// exactly once, at approval, gated by a fresh balance check.
type TransactionService struct {
	txRepo   repositories.TransactionRepository
	userRepo repositories.UserRepository
}

// NewTransactionService creates a new transaction service
func NewTransactionService(txRepo repositories.TransactionRepository, userRepo repositories.UserRepository) *TransactionService {
	return &TransactionService{
		txRepo:   txRepo,
		userRepo: userRepo,
	}
}

// CreateDeposit captures a pending deposit request
func (s *TransactionService) CreateDeposit(ctx context.Context, userID uint, amount float64) (*models.Transaction, error) {
	if amount < 1 {
		return nil, ErrInvalidAmount
	}

	tx := &models.Transaction{
		UserID: userID,
		Type:   models.TxTypeDeposit,
		Amount: amount,
		Status: models.TxStatusPending,
	}

	if err := s.txRepo.Create(ctx, tx); err != nil {
		return nil, err
	}

	log.Printf("✅ Deposit request created [user: %d, amount: %.2f]", userID, amount)
	return tx, nil
}

// CreateWithdraw captures a pending withdrawal request. Balance is
// checked at creation time and re-checked at approval.
func (s *TransactionService) CreateWithdraw(ctx context.Context, userID uint, amount float64) (*models.Transaction, error) {
	if amount < 1 {
		return nil, ErrInvalidAmount
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if user.Balance < amount {
		return nil, ErrInsufficientBalance
	}

	tx := &models.Transaction{
		UserID: userID,
		Type:   models.TxTypeWithdraw,
		Amount: amount,
		Status: models.TxStatusPending,
	}

	if err := s.txRepo.Create(ctx, tx); err != nil {
		return nil, err
	}

	log.Printf("✅ Withdrawal request created [user: %d, amount: %.2f]", userID, amount)
	return tx, nil
}

// ListAll lists all transactions with owner info
func (s *TransactionService) ListAll(ctx context.Context, filter *repositories.TransactionFilter, offset, limit int) ([]*models.Transaction, int64, error) {
	return s.txRepo.List(ctx, filter, offset, limit)
}

// ListByUser lists the caller's transactions
func (s *TransactionService) ListByUser(ctx context.Context, userID uint, filter *repositories.TransactionFilter, offset, limit int) ([]*models.Transaction, int64, error) {
	return s.txRepo.ListByUser(ctx, userID, filter, offset, limit)
}

// UpdateStatus transitions a pending transaction to approved or
// rejected. Approval mutates the owner's balance; an approved withdraw
// with insufficient balance fails and the transaction stays pending.
func (s *TransactionService) UpdateStatus(ctx context.Context, transactionID uint, status, rejectionReason string) (*models.Transaction, error) {
	if status != models.TxStatusApproved && status != models.TxStatusRejected {
		return nil, ErrInvalidStatus
	}

	tx, err := s.txRepo.GetByID(ctx, transactionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}

	if !tx.IsPending() {
		return nil, ErrTransactionProcessed
	}

	user, err := s.userRepo.GetByID(ctx, tx.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if status == models.TxStatusApproved {
		switch tx.Type {
		case models.TxTypeDeposit:
			user.Balance += tx.Amount
		case models.TxTypeWithdraw:
			if user.Balance < tx.Amount {
				return nil, ErrInsufficientBalance
			}
			user.Balance -= tx.Amount
		}
		if err := s.userRepo.Update(ctx, user); err != nil {
			return nil, err
		}
	}

	tx.Status = status
	if status == models.TxStatusRejected && rejectionReason != "" {
		tx.RejectionReason = rejectionReason
	}
	if err := s.txRepo.Update(ctx, tx); err != nil {
		return nil, err
	}

	log.Printf("✅ Transaction %d %s [user: %d, type: %s, amount: %.2f]",
		tx.ID, status, user.ID, tx.Type, tx.Amount)
	return tx, nil
}
