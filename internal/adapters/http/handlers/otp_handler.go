package handlers

import (
	"errors"

	"vipclub-backend/internal/adapters/persistence/models"
	"vipclub-backend/internal/core/services"
	"vipclub-backend/internal/pkg/response"
	"vipclub-backend/internal/pkg/validate"

	"github.com/gofiber/fiber/v2"
)

// OTPHandler handles admin OTP management endpoints
type OTPHandler struct {
	otpService *services.OTPService
}

// NewOTPHandler creates a new OTP handler
func NewOTPHandler(otpService *services.OTPService) *OTPHandler {
	return &OTPHandler{otpService: otpService}
}

// CreateOTPRequest represents OTP creation request body. Value is
// optional; a random 6-digit code is generated when omitted.
type CreateOTPRequest struct {
	Type              string `json:"type"`
	Value             string `json:"value"`
	DurationInMinutes int    `json:"durationInMinutes"`
}

func otpType(raw string) (string, bool) {
	switch raw {
	case "", models.OTPTypeRegister:
		return models.OTPTypeRegister, true
	case models.OTPTypeResetPassword:
		return models.OTPTypeResetPassword, true
	default:
		return "", false
	}
}

// GetCurrent returns the active OTP of the given type (admin)
// @Summary Get current OTP
// @Description Get the currently active OTP for a type
// @Tags OTP
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param type query string false "OTP type (register or reset-password)"
// @Success 200 {object} response.Body
// @Failure 404 {object} response.Body
// @Router /otp [get]
func (h *OTPHandler) GetCurrent(c *fiber.Ctx) error {
	t, ok := otpType(c.Query("type"))
	if !ok {
		return response.BadRequest(c, "Invalid OTP type")
	}

	otp, err := h.otpService.Current(c.Context(), t)
	if err != nil {
		if errors.Is(err, services.ErrOTPNotFound) {
			return response.NotFound(c, "No active OTP found")
		}
		return response.InternalServerError(c, "Failed to fetch OTP")
	}

	return c.JSON(fiber.Map{
		"message": "OTP fetched successfully",
		"otp":     otp,
	})
}

// Create issues a fresh OTP, deactivating any previous one (admin)
// @Summary Create OTP
// @Description Generate a new OTP for a type, deactivating the previous one
// @Tags OTP
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateOTPRequest true "OTP parameters"
// @Success 201 {object} response.Body
// @Failure 400 {object} response.Body
// @Router /otp [post]
func (h *OTPHandler) Create(c *fiber.Ctx) error {
	var req CreateOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	t, ok := otpType(req.Type)
	if !ok {
		return response.BadRequest(c, "Invalid OTP type")
	}
	if req.DurationInMinutes <= 0 {
		req.DurationInMinutes = services.DefaultOTPMinutes
	}

	var otp *models.OTP
	var err error
	if req.Value != "" {
		if !validate.OTP(req.Value) {
			return response.BadRequest(c, "OTP must be 6 digits")
		}
		otp, err = h.otpService.Issue(c.Context(), t, req.Value, req.DurationInMinutes)
	} else {
		otp, err = h.otpService.Generate(c.Context(), t, req.DurationInMinutes)
	}
	if err != nil {
		return response.InternalServerError(c, "Failed to create OTP")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "OTP created successfully",
		"otp":     otp,
	})
}

// Deactivate deactivates the active OTP of the given type (admin)
// @Summary Deactivate OTP
// @Description Deactivate the currently active OTP for a type
// @Tags OTP
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param type path string true "OTP type (register or reset-password)"
// @Success 200 {object} response.Body
// @Failure 404 {object} response.Body
// @Router /otp/{type} [delete]
func (h *OTPHandler) Deactivate(c *fiber.Ctx) error {
	t, ok := otpType(c.Params("type"))
	if !ok {
		return response.BadRequest(c, "Invalid OTP type")
	}

	if err := h.otpService.Deactivate(c.Context(), t); err != nil {
		if errors.Is(err, services.ErrOTPNotFound) {
			return response.NotFound(c, "No active OTP found")
		}
		return response.InternalServerError(c, "Failed to deactivate OTP")
	}

	return response.Success(c, "OTP deactivated successfully", nil)
}
