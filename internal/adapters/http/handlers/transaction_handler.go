package handlers

import (
	"errors"
	"strconv"
	"strings"

	"vipclub-backend/internal/adapters/persistence/models"
	"vipclub-backend/internal/adapters/persistence/repositories"
	"vipclub-backend/internal/core/services"
	"vipclub-backend/internal/pkg/pagination"
	"vipclub-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// TransactionHandler handles wallet transaction endpoints
type TransactionHandler struct {
	transactionService *services.TransactionService
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(transactionService *services.TransactionService) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService}
}

// AmountRequest represents deposit/withdraw request body
type AmountRequest struct {
	Amount float64 `json:"amount"`
}

// UpdateStatusRequest represents transaction review request body
type UpdateStatusRequest struct {
	Status          string `json:"status"`
	RejectionReason string `json:"rejectionReason"`
}

func transactionFilter(c *fiber.Ctx) *repositories.TransactionFilter {
	return &repositories.TransactionFilter{
		Status: c.Query("status"),
		Type:   c.Query("type"),
	}
}

// Deposit creates a pending deposit request
// @Summary Request deposit
// @Description Create a pending deposit request awaiting admin approval
// @Tags Transactions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body AmountRequest true "Amount"
// @Success 201 {object} response.Body
// @Failure 400 {object} response.Body
// @Router /transactions/deposit [post]
func (h *TransactionHandler) Deposit(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req AmountRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	tx, err := h.transactionService.CreateDeposit(c.Context(), userID, req.Amount)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidAmount):
			return response.BadRequest(c, "Amount must be a positive number")
		case errors.Is(err, services.ErrUserNotFound):
			return response.NotFound(c, "User not found")
		default:
			return response.InternalServerError(c, "Failed to create deposit request")
		}
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":     "Deposit request created successfully",
		"transaction": tx.ToResponse(),
	})
}

// Withdraw creates a pending withdraw request
// @Summary Request withdrawal
// @Description Create a pending withdraw request awaiting admin approval
// @Tags Transactions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body AmountRequest true "Amount"
// @Success 201 {object} response.Body
// @Failure 400 {object} response.Body
// @Router /transactions/withdraw [post]
func (h *TransactionHandler) Withdraw(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req AmountRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	tx, err := h.transactionService.CreateWithdraw(c.Context(), userID, req.Amount)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidAmount):
			return response.BadRequest(c, "Amount must be a positive number")
		case errors.Is(err, services.ErrInsufficientBalance):
			return response.BadRequest(c, "Insufficient balance")
		case errors.Is(err, services.ErrUserNotFound):
			return response.NotFound(c, "User not found")
		default:
			return response.InternalServerError(c, "Failed to create withdraw request")
		}
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":     "Withdraw request created successfully",
		"transaction": tx.ToResponse(),
	})
}

// MyTransactions lists the caller's transactions
// @Summary List own transactions
// @Description Paginated listing of the caller's transactions, newest first
// @Tags Transactions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param status query string false "Filter by status (pending, approved, rejected)"
// @Param type query string false "Filter by type (deposit, withdraw)"
// @Param page query int false "Page (1-indexed)"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Body
// @Router /transactions/my-transactions [get]
func (h *TransactionHandler) MyTransactions(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	params := pagination.GetParams(c)

	txs, total, err := h.transactionService.ListByUser(c.Context(), userID, transactionFilter(c), params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to fetch transactions")
	}

	items := make([]*models.TransactionResponse, 0, len(txs))
	for _, tx := range txs {
		items = append(items, tx.ToResponse())
	}

	return c.JSON(fiber.Map{
		"message":      "Transactions fetched successfully",
		"transactions": items,
		"pagination":   pagination.GetMeta(params, total),
	})
}

// ListAll lists all transactions (admin)
// @Summary List all transactions
// @Description Paginated listing of all transactions with optional status/type filters
// @Tags Transactions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param status query string false "Filter by status (pending, approved, rejected)"
// @Param type query string false "Filter by type (deposit, withdraw)"
// @Param page query int false "Page (1-indexed)"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Body
// @Failure 403 {object} response.Body
// @Router /transactions [get]
func (h *TransactionHandler) ListAll(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	txs, total, err := h.transactionService.ListAll(c.Context(), transactionFilter(c), params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to fetch transactions")
	}

	items := make([]*models.TransactionResponse, 0, len(txs))
	for _, tx := range txs {
		items = append(items, tx.ToResponse())
	}

	return c.JSON(fiber.Map{
		"message":      "Transactions fetched successfully",
		"transactions": items,
		"pagination":   pagination.GetMeta(params, total),
	})
}

// UpdateStatus approves or rejects a pending transaction (admin)
// @Summary Review transaction
// @Description Approve or reject a pending transaction; approval mutates the user balance
// @Tags Transactions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Transaction ID"
// @Param body body UpdateStatusRequest true "New status"
// @Success 200 {object} response.Body
// @Failure 400 {object} response.Body
// @Failure 404 {object} response.Body
// @Router /transactions/{id} [put]
func (h *TransactionHandler) UpdateStatus(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid transaction ID")
	}

	var req UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	req.Status = strings.ToLower(strings.TrimSpace(req.Status))

	tx, err := h.transactionService.UpdateStatus(c.Context(), uint(id), req.Status, req.RejectionReason)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidStatus):
			return response.BadRequest(c, "Status must be approved or rejected")
		case errors.Is(err, services.ErrTransactionProcessed):
			return response.BadRequest(c, "Transaction has already been processed")
		case errors.Is(err, services.ErrInsufficientBalance):
			return response.BadRequest(c, "User has insufficient balance for this withdrawal")
		case errors.Is(err, services.ErrTransactionNotFound):
			return response.NotFound(c, "Transaction not found")
		case errors.Is(err, services.ErrUserNotFound):
			return response.NotFound(c, "Transaction user not found")
		default:
			return response.InternalServerError(c, "Failed to update transaction")
		}
	}

	return c.JSON(fiber.Map{
		"message":     "Transaction updated successfully",
		"transaction": tx.ToResponse(),
	})
}
