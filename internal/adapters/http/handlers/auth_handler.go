package handlers

import (
	"errors"
	"strings"

	"vipclub-backend/internal/core/services"
	"vipclub-backend/internal/pkg/pagination"
	"vipclub-backend/internal/pkg/password"
	"vipclub-backend/internal/pkg/response"
	"vipclub-backend/internal/pkg/validate"

	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authService *services.AuthService
	userService *services.UserService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *services.AuthService, userService *services.UserService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		userService: userService,
	}
}

// RegisterRequest represents registration request body
type RegisterRequest struct {
	Username    string `json:"username"`
	PhoneNumber string `json:"phoneNumber"`
	Password    string `json:"password"`
	OTP         string `json:"otp"`
}

// LoginRequest represents login request body
type LoginRequest struct {
	PhoneNumber string `json:"phoneNumber"`
	Password    string `json:"password"`
	DeviceToken string `json:"deviceToken"`
}

// ForgotPasswordRequest represents forgot-password request body
type ForgotPasswordRequest struct {
	PhoneNumber string `json:"phoneNumber"`
}

// ResetPasswordRequest represents reset-password request body
type ResetPasswordRequest struct {
	PhoneNumber string `json:"phoneNumber"`
	OTP         string `json:"otp"`
	NewPassword string `json:"newPassword"`
}

// Register handles user registration
// @Summary Register new user
// @Description Register a new user with OTP verification
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body RegisterRequest true "Registration data"
// @Success 201 {object} response.Body
// @Failure 400 {object} response.Body
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	req.Username = strings.TrimSpace(req.Username)
	req.PhoneNumber = strings.TrimSpace(req.PhoneNumber)

	if len(req.Username) < 3 {
		return response.BadRequest(c, "Username must be at least 3 characters long")
	}
	if !validate.Phone(req.PhoneNumber) {
		return response.BadRequest(c, "Please provide a valid Vietnamese phone number")
	}
	if !password.Validate(req.Password) {
		return response.BadRequest(c, "Password must be at least 6 characters long")
	}
	if !validate.OTP(req.OTP) {
		return response.BadRequest(c, "OTP must be 6 digits")
	}

	input := &services.RegisterInput{
		Username:    req.Username,
		PhoneNumber: req.PhoneNumber,
		Password:    req.Password,
		OTP:         req.OTP,
	}

	result, err := h.authService.Register(c.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUserAlreadyExists):
			return response.BadRequest(c, "User already exists with this phone number or username")
		case errors.Is(err, services.ErrInvalidOTP):
			return response.BadRequest(c, "Invalid OTP")
		default:
			return response.InternalServerError(c, "Failed to register user")
		}
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User registered successfully",
		"token":   result.Token,
		"user":    result.User,
	})
}

// Login handles user login
// An empty deviceToken skips the single-device check and leaves the
// stored token untouched, so tokenless clients can always sign in.
// @Summary Login user
// @Description Authenticate by phone number and password, enforcing the single-device policy
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body LoginRequest true "Login credentials"
// @Success 200 {object} response.Body
// @Failure 401 {object} response.Body
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	req.PhoneNumber = strings.TrimSpace(req.PhoneNumber)

	if !validate.Phone(req.PhoneNumber) {
		return response.BadRequest(c, "Please provide a valid Vietnamese phone number")
	}
	if req.Password == "" {
		return response.BadRequest(c, "Password is required")
	}

	input := &services.LoginInput{
		PhoneNumber: req.PhoneNumber,
		Password:    req.Password,
		DeviceToken: req.DeviceToken,
	}

	result, err := h.authService.Login(c.Context(), input)
	if err != nil {
		var deviceErr *services.DeviceInUseError
		switch {
		case errors.As(err, &deviceErr):
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message":       "Account is logged in on another device",
				"last_login_at": deviceErr.LastLoginAt,
			})
		case errors.Is(err, services.ErrInvalidCredentials):
			return response.Unauthorized(c, "Invalid credentials")
		case errors.Is(err, services.ErrUserNotVerified):
			return response.Unauthorized(c, "Please verify your phone number first")
		default:
			return response.InternalServerError(c, "Failed to login")
		}
	}

	return c.JSON(fiber.Map{
		"message": "Login successful",
		"token":   result.Token,
		"user":    result.User,
	})
}

// Logout handles user logout
// @Summary Logout user
// @Description Clear the stored device token so a new device can log in
// @Tags Auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Body
// @Failure 401 {object} response.Body
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	if err := h.authService.Logout(c.Context(), userID); err != nil {
		return response.InternalServerError(c, "Failed to logout")
	}

	return response.Success(c, "Logged out successfully", nil)
}

// ForgotPassword handles password reset OTP issuance
// @Summary Request password reset
// @Description Issue a password-reset OTP for the phone number
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body ForgotPasswordRequest true "Phone number"
// @Success 200 {object} response.Body
// @Failure 404 {object} response.Body
// @Router /auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var req ForgotPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	req.PhoneNumber = strings.TrimSpace(req.PhoneNumber)
	if !validate.Phone(req.PhoneNumber) {
		return response.BadRequest(c, "Please provide a valid Vietnamese phone number")
	}

	otp, err := h.authService.ForgotPassword(c.Context(), req.PhoneNumber)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUserNotFound):
			return response.NotFound(c, "User not found with this phone number")
		default:
			return response.InternalServerError(c, "Failed to issue reset OTP")
		}
	}

	// No SMS channel: the OTP is returned in the response
	return c.JSON(fiber.Map{
		"message": "Password reset OTP has been sent to your phone number",
		"otp":     otp,
	})
}

// ResetPassword handles OTP-gated password replacement
// @Summary Reset password
// @Description Replace the password after OTP verification
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body ResetPasswordRequest true "Reset data"
// @Success 200 {object} response.Body
// @Failure 400 {object} response.Body
// @Failure 404 {object} response.Body
// @Router /auth/reset-password [post]
func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	req.PhoneNumber = strings.TrimSpace(req.PhoneNumber)

	if !validate.Phone(req.PhoneNumber) {
		return response.BadRequest(c, "Please provide a valid Vietnamese phone number")
	}
	if !validate.OTP(req.OTP) {
		return response.BadRequest(c, "OTP must be 6 digits")
	}
	if !password.Validate(req.NewPassword) {
		return response.BadRequest(c, "New password must be at least 6 characters long")
	}

	err := h.authService.ResetPassword(c.Context(), req.PhoneNumber, req.OTP, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUserNotFound):
			return response.NotFound(c, "User not found with this phone number")
		case errors.Is(err, services.ErrInvalidOTP):
			return response.BadRequest(c, "Invalid or expired OTP")
		default:
			return response.InternalServerError(c, "Failed to reset password")
		}
	}

	return response.Success(c, "Password has been reset successfully", nil)
}

// GetProfile returns the caller's profile
// @Summary Get profile
// @Description Get the authenticated user's public profile
// @Tags Auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Body
// @Failure 401 {object} response.Body
// @Router /auth/profile [get]
func (h *AuthHandler) GetProfile(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	user, err := h.userService.GetProfile(c.Context(), userID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return response.NotFound(c, "User not found")
		}
		return response.InternalServerError(c, "Failed to fetch profile")
	}

	return c.JSON(fiber.Map{
		"message": "Profile fetched successfully",
		"user":    user,
	})
}

// GetAllUsers lists all users (admin)
// @Summary List users
// @Description Paginated user listing, newest first
// @Tags Auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page (1-indexed)"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Body
// @Failure 403 {object} response.Body
// @Router /auth/users [get]
func (h *AuthHandler) GetAllUsers(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	out, err := h.userService.ListUsers(c.Context(), params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to fetch users")
	}

	return c.JSON(fiber.Map{
		"message":    "Users fetched successfully",
		"users":      out.Users,
		"pagination": pagination.GetMeta(params, out.Total),
	})
}

// SearchUsers searches users by refId, username or phone number (admin)
// @Summary Search users
// @Description Case-insensitive substring search over refId, username and phone number
// @Tags Auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param query query string true "Search query"
// @Param page query int false "Page (1-indexed)"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Body
// @Failure 400 {object} response.Body
// @Router /auth/users/search [get]
func (h *AuthHandler) SearchUsers(c *fiber.Ctx) error {
	query := strings.TrimSpace(c.Query("query"))
	if query == "" {
		return response.BadRequest(c, "Search query is required")
	}

	params := pagination.GetParams(c)

	out, err := h.userService.SearchUsers(c.Context(), query, params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to search users")
	}

	return c.JSON(fiber.Map{
		"message":    "Users search completed",
		"users":      out.Users,
		"pagination": pagination.GetMeta(params, out.Total),
	})
}
