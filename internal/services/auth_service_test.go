package services

import (
	"context"
	"encoding/base64"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/localnerve/ops-portal/internal/models"
	"github.com/localnerve/ops-portal/internal/store"
	"github.com/localnerve/ops-portal/internal/types"
)

func TestAuthenticateRoles(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	settings := models.DefaultSettings()
	settings.ClientPassword = "pilot"
	settings.AdminPassword = "director"
	put(t, svc, store.Settings, settings)

	role, err := svc.Authenticate(ctx, "director")
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, role)

	role, err = svc.Authenticate(ctx, "pilot")
	require.NoError(t, err)
	assert.Equal(t, RoleClient, role)

	for _, bad := range []string{"", "Pilot", "directorx"} {
		_, err := svc.Authenticate(ctx, bad)
		assert.True(t, types.IsType(err, types.TypeAuth), "password %q", bad)
	}
}

func TestAuthenticateSharedPasswordIsAdmin(t *testing.T) {
	svc, _ := newTestService(t)
	settings := models.DefaultSettings()
	settings.ClientPassword = "same"
	settings.AdminPassword = "same"
	put(t, svc, store.Settings, settings)

	role, err := svc.Authenticate(context.Background(), "same")
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, role)
}

func TestSessionEncodeDecode(t *testing.T) {
	sessions := NewSessionService("test-secret", false)
	want := Session{Role: RoleAdmin, ExpiresAt: time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)}

	value, err := sessions.Encode(want)
	require.NoError(t, err)

	got, err := sessions.Decode(value)
	require.NoError(t, err)
	assert.Equal(t, want.Role, got.Role)
	assert.True(t, want.ExpiresAt.Equal(got.ExpiresAt))
	assert.True(t, got.Admin())
}

func TestSessionDecodeRejectsTampering(t *testing.T) {
	sessions := NewSessionService("test-secret", false)
	value, err := sessions.Encode(Session{Role: RoleClient, ExpiresAt: time.Now().Add(time.Hour)})
	require.NoError(t, err)

	raw, err := base64.URLEncoding.DecodeString(value)
	require.NoError(t, err)
	raw[len(raw)-1] ^= 0xff
	_, err = sessions.Decode(base64.URLEncoding.EncodeToString(raw))
	assert.Error(t, err)

	other := NewSessionService("other-secret", false)
	_, err = other.Decode(value)
	assert.Error(t, err)

	_, err = sessions.Decode("not base64!")
	assert.Error(t, err)

	forged, err := sessions.Encode(Session{Role: "root", ExpiresAt: time.Now().Add(time.Hour)})
	require.NoError(t, err)
	_, err = sessions.Decode(forged)
	assert.Error(t, err)
}

func TestSessionRequiresKey(t *testing.T) {
	_, err := NewSessionService("", false).Encode(Session{Role: RoleClient})
	assert.Error(t, err)
}

func TestSessionCookieRoundTrip(t *testing.T) {
	sessions := NewSessionService("test-secret", false)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	sessions.now = func() time.Time { return now }

	app := fiber.New()
	app.Post("/login", func(c *fiber.Ctx) error {
		_, err := sessions.CreateSession(c, RoleClient)
		return err
	})
	app.Get("/me", func(c *fiber.Ctx) error {
		session, err := sessions.GetSession(c)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, err.Error())
		}
		return c.SendString(session.Role)
	})

	resp, err := app.Test(httptest.NewRequest("POST", "/login", nil))
	require.NoError(t, err)
	var cookie string
	for _, c := range resp.Cookies() {
		if c.Name == SessionCookieName {
			cookie = c.Value
			assert.True(t, c.HttpOnly)
		}
	}
	require.NotEmpty(t, cookie)

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Cookie", SessionCookieName+"="+cookie)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	now = now.Add(SessionTTL)
	req = httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Cookie", SessionCookieName+"="+cookie)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/me", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
