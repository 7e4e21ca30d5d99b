package handlers

import (
	"errors"
	"strconv"

	"vipclub-backend/internal/core/services"
	"vipclub-backend/internal/pkg/pagination"
	"vipclub-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// VipHandler handles VIP subscription endpoints
type VipHandler struct {
	vipService *services.VipService
}

// NewVipHandler creates a new VIP handler
func NewVipHandler(vipService *services.VipService) *VipHandler {
	return &VipHandler{vipService: vipService}
}

// PurchaseRequest represents VIP purchase request body
type PurchaseRequest struct {
	PackageID uint `json:"packageId"`
}

// GrantRequest represents admin VIP grant request body. Duration in
// days overrides the package default when set.
type GrantRequest struct {
	UserID    uint `json:"userId"`
	PackageID uint `json:"packageId"`
	Duration  int  `json:"duration"`
}

// ListPackages lists packages the caller can buy or upgrade to
// @Summary List VIP packages
// @Description List active packages the caller is eligible for, with upgrade-adjusted prices
// @Tags VIP
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Body
// @Router /vip/packages [get]
func (h *VipHandler) ListPackages(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	list, err := h.vipService.ListPackages(c.Context(), userID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return response.NotFound(c, "User not found")
		}
		return response.InternalServerError(c, "Failed to fetch packages")
	}

	return c.JSON(fiber.Map{
		"message":       "Packages fetched successfully",
		"packages":      list.Packages,
		"currentVip":    list.CurrentVip,
		"remainingDays": list.RemainingDays,
	})
}

// Purchase buys or upgrades to a VIP package
// @Summary Purchase VIP package
// @Description Purchase or upgrade to a package, debiting the upgrade-adjusted price
// @Tags VIP
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body PurchaseRequest true "Package to purchase"
// @Success 200 {object} response.Body
// @Failure 400 {object} response.Body
// @Failure 404 {object} response.Body
// @Router /vip/purchase [post]
func (h *VipHandler) Purchase(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req PurchaseRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.PackageID == 0 {
		return response.BadRequest(c, "Package ID is required")
	}

	result, err := h.vipService.Purchase(c.Context(), userID, req.PackageID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrPackageNotFound):
			return response.NotFound(c, "Package not found or no longer available")
		case errors.Is(err, services.ErrPackageNotUpgradable):
			return response.BadRequest(c, "You can only upgrade to a higher package")
		case errors.Is(err, services.ErrInsufficientBalance):
			return response.BadRequest(c, "Insufficient balance to purchase this package")
		case errors.Is(err, services.ErrUserNotFound):
			return response.NotFound(c, "User not found")
		default:
			return response.InternalServerError(c, "Failed to purchase package")
		}
	}

	return c.JSON(fiber.Map{
		"message": "Package purchased successfully",
		"result":  result,
	})
}

// GetStatus returns the caller's VIP status
// @Summary Get VIP status
// @Description Get the caller's current VIP subscription status
// @Tags VIP
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Body
// @Router /vip/status [get]
func (h *VipHandler) GetStatus(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	info, err := h.vipService.GetStatus(c.Context(), userID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return response.NotFound(c, "User not found")
		}
		return response.InternalServerError(c, "Failed to fetch VIP status")
	}

	return c.JSON(fiber.Map{
		"message": "VIP status fetched successfully",
		"vip":     info,
	})
}

// GetUserStatus returns a user's VIP status and balance (admin)
// @Summary Get user VIP status
// @Description Get any user's VIP status and balance
// @Tags VIP
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param userId path int true "User ID"
// @Success 200 {object} response.Body
// @Failure 404 {object} response.Body
// @Router /vip/admin/users/{userId}/status [get]
func (h *VipHandler) GetUserStatus(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("userId"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid user ID")
	}

	user, err := h.vipService.GetUserStatus(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return response.NotFound(c, "User not found")
		}
		return response.InternalServerError(c, "Failed to fetch user VIP status")
	}

	return c.JSON(fiber.Map{
		"message": "User VIP status fetched successfully",
		"user":    user,
	})
}

// Cancel ends a user's active VIP immediately (admin)
// @Summary Cancel user VIP
// @Description End a user's active VIP subscription immediately, without refund
// @Tags VIP
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param userId path int true "User ID"
// @Success 200 {object} response.Body
// @Failure 400 {object} response.Body
// @Failure 404 {object} response.Body
// @Router /vip/admin/users/{userId} [delete]
func (h *VipHandler) Cancel(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("userId"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid user ID")
	}

	info, err := h.vipService.Cancel(c.Context(), uint(id))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNoActiveVip):
			return response.BadRequest(c, "User has no active VIP subscription")
		case errors.Is(err, services.ErrUserNotFound):
			return response.NotFound(c, "User not found")
		default:
			return response.InternalServerError(c, "Failed to cancel VIP")
		}
	}

	return c.JSON(fiber.Map{
		"message": "VIP subscription cancelled successfully",
		"vip":     info,
	})
}

// Grant assigns a VIP package to a user without charge (admin)
// @Summary Grant VIP package
// @Description Assign a package to a user without touching their balance, with optional duration override
// @Tags VIP
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body GrantRequest true "User, package and optional duration"
// @Success 200 {object} response.Body
// @Failure 400 {object} response.Body
// @Failure 404 {object} response.Body
// @Router /vip/admin/grant [post]
func (h *VipHandler) Grant(c *fiber.Ctx) error {
	var req GrantRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.UserID == 0 {
		return response.BadRequest(c, "User ID is required")
	}
	if req.PackageID == 0 {
		return response.BadRequest(c, "Package ID is required")
	}
	if req.Duration < 0 {
		return response.BadRequest(c, "Duration must be a positive number of days")
	}

	result, err := h.vipService.Grant(c.Context(), req.UserID, req.PackageID, req.Duration)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrPackageNotFound):
			return response.NotFound(c, "Package not found")
		case errors.Is(err, services.ErrUserNotFound):
			return response.NotFound(c, "User not found")
		default:
			return response.InternalServerError(c, "Failed to grant VIP")
		}
	}

	return c.JSON(fiber.Map{
		"message": "VIP package granted successfully",
		"result":  result,
	})
}

// ListVipUsers lists users by VIP status (admin)
// @Summary List VIP users
// @Description Paginated listing of users with active or expired VIP subscriptions
// @Tags VIP
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param status query string false "VIP status (active or expired; omit for all)"
// @Param page query int false "Page (1-indexed)"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Body
// @Failure 400 {object} response.Body
// @Router /vip/admin/users [get]
func (h *VipHandler) ListVipUsers(c *fiber.Ctx) error {
	status := c.Query("status")
	if status != "" && status != "active" && status != "expired" {
		return response.BadRequest(c, "Status must be active or expired")
	}

	params := pagination.GetParams(c)

	list, err := h.vipService.ListVipUsers(c.Context(), status, params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to fetch VIP users")
	}

	return c.JSON(fiber.Map{
		"message":    "VIP users fetched successfully",
		"users":      list.Users,
		"pagination": pagination.GetMeta(params, list.Total),
	})
}
