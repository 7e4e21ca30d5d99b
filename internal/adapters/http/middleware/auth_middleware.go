package middleware

import (
	"strings"

	"vipclub-backend/internal/adapters/persistence/models"
	"vipclub-backend/internal/config"
	"vipclub-backend/internal/pkg/jwt"
	"vipclub-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AuthMiddleware creates bearer-token authentication middleware
func AuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var accessToken string

		authHeader := c.Get("Authorization")
		if authHeader != "" && strings.HasPrefix(authHeader, "Bearer ") {
			accessToken = strings.TrimPrefix(authHeader, "Bearer ")
		}

		if accessToken == "" {
			return response.Unauthorized(c, "Not authorized to access this route. Please login first.")
		}

		claims, err := jwt.ValidateAccessToken(accessToken, cfg.JWT.Secret)
		if err != nil {
			if err == jwt.ErrTokenExpired {
				return response.Unauthorized(c, "Token expired. Please login again.")
			}
			return response.Unauthorized(c, "Invalid token. Please login again.")
		}

		// Attach caller identity to request context
		c.Locals("userID", claims.UserID)
		c.Locals("username", claims.Username)
		c.Locals("role", claims.Role)

		return c.Next()
	}
}

// RoleMiddleware creates role-based authorization middleware
func RoleMiddleware(allowedRoles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals("role").(string)
		if !ok {
			return response.Unauthorized(c, "Unauthorized")
		}

		for _, allowedRole := range allowedRoles {
			if role == allowedRole {
				return c.Next()
			}
		}

		return response.Forbidden(c, "You don't have permission to access this resource")
	}
}

// AdminOnly middleware allows only the admin role
func AdminOnly() fiber.Handler {
	return RoleMiddleware(models.RoleAdmin)
}
