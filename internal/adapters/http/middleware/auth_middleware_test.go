package middleware

import (
	"net/http/httptest"
	"testing"

	"vipclub-backend/internal/adapters/persistence/models"
	"vipclub-backend/internal/config"
	"vipclub-backend/internal/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testApp(cfg *config.Config) *fiber.App {
	app := fiber.New()
	app.Get("/protected", AuthMiddleware(cfg), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	app.Get("/admin", AuthMiddleware(cfg), AdminOnly(), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	return app
}

func testCfg() *config.Config {
	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.ExpireHours = 1
	return cfg
}

func TestAuthMiddleware(t *testing.T) {
	cfg := testCfg()
	app := testApp(cfg)

	token, err := jwt.GenerateAccessToken(1, "alice", models.RoleUser, "jti", cfg.JWT.Secret, 1)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"valid token", "Bearer " + token, fiber.StatusOK},
		{"missing header", "", fiber.StatusUnauthorized},
		{"not bearer", "Basic abc", fiber.StatusUnauthorized},
		{"garbage token", "Bearer garbage", fiber.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/protected", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			resp.Body.Close()
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestAuthMiddlewareExpiredToken(t *testing.T) {
	cfg := testCfg()
	app := testApp(cfg)

	token, err := jwt.GenerateAccessToken(1, "alice", models.RoleUser, "jti", cfg.JWT.Secret, -1)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAdminOnly(t *testing.T) {
	cfg := testCfg()
	app := testApp(cfg)

	userToken, err := jwt.GenerateAccessToken(1, "alice", models.RoleUser, "jti", cfg.JWT.Secret, 1)
	require.NoError(t, err)
	adminToken, err := jwt.GenerateAccessToken(2, "admin", models.RoleAdmin, "jti", cfg.JWT.Secret, 1)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+userToken)
	resp, err := app.Test(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	req = httptest.NewRequest("GET", "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	resp, err = app.Test(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
