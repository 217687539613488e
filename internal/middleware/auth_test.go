package middleware

import (
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/localnerve/ops-portal/internal/services"
	"github.com/localnerve/ops-portal/internal/types"
)

func newApp(sessions *services.SessionService) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var ce *types.CustomError
			if errors.As(err, &ce) {
				return c.Status(ce.Code).SendString(ce.Message)
			}
			return fiber.DefaultErrorHandler(c, err)
		},
	})
	app.Use(VersionMiddleware())
	app.Get("/client", AuthClient(sessions), func(c *fiber.Ctx) error {
		session, ok := CurrentSession(c)
		if !ok {
			return fiber.ErrInternalServerError
		}
		return c.SendString(session.Role)
	})
	app.Get("/admin", AuthAdmin(sessions), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	return app
}

func cookieFor(t *testing.T, sessions *services.SessionService, role string) string {
	t.Helper()
	value, err := sessions.Encode(services.Session{Role: role, ExpiresAt: time.Now().Add(time.Hour)})
	require.NoError(t, err)
	return services.SessionCookieName + "=" + value
}

func TestAuthorize(t *testing.T) {
	sessions := services.NewSessionService("middleware-secret", false)
	app := newApp(sessions)

	tests := []struct {
		name   string
		path   string
		cookie string
		want   int
	}{
		{"no session on client route", "/client", "", fiber.StatusUnauthorized},
		{"client on client route", "/client", cookieFor(t, sessions, services.RoleClient), fiber.StatusOK},
		{"admin on client route", "/client", cookieFor(t, sessions, services.RoleAdmin), fiber.StatusOK},
		{"client on admin route", "/admin", cookieFor(t, sessions, services.RoleClient), fiber.StatusForbidden},
		{"admin on admin route", "/admin", cookieFor(t, sessions, services.RoleAdmin), fiber.StatusOK},
		{"garbage cookie", "/admin", services.SessionCookieName + "=garbage", fiber.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.path, nil)
			if tt.cookie != "" {
				req.Header.Set("Cookie", tt.cookie)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestVersionMiddleware(t *testing.T) {
	app := fiber.New()
	app.Use(VersionMiddleware())
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(c.Locals("apiVersion").(string))
	})

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Api-Version", "1")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, APIVersion, resp.Header.Get("X-Api-Version"))
	assert.Equal(t, "no-store", resp.Header.Get("Cache-Control"))
}
