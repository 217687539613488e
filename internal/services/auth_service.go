package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/localnerve/ops-portal/internal/types"
)

// Roles.
const (
	RoleClient = "client"
	RoleAdmin  = "admin"
)

// SessionCookieName is the cookie holding the signed session.
const SessionCookieName = "ops_session"

// SessionTTL is how long a login lasts.
const SessionTTL = 12 * time.Hour

// Session is the signed cookie payload.
type Session struct {
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Admin reports whether the session carries the admin role.
func (s Session) Admin() bool {
	return s.Role == RoleAdmin
}

// Authenticate compares password to the admin then client password in constant time
// and returns the matching role.
func (s *Service) Authenticate(ctx context.Context, password string) (string, error) {
	settings, err := s.loadSettings(ctx)
	if err != nil {
		return "", err
	}
	if password == "" {
		return "", types.AuthError("password is required")
	}
	admin := subtle.ConstantTimeCompare([]byte(password), []byte(settings.AdminPassword)) == 1
	client := subtle.ConstantTimeCompare([]byte(password), []byte(settings.ClientPassword)) == 1
	switch {
	case admin:
		return RoleAdmin, nil
	case client:
		return RoleClient, nil
	}
	return "", types.AuthError("invalid password")
}

// SessionService issues and verifies HMAC-signed session cookies.
type SessionService struct {
	key    []byte
	secure bool
	now    func() time.Time
}

// NewSessionService creates a session service signing with secret.
func NewSessionService(secret string, secure bool) *SessionService {
	return &SessionService{key: []byte(secret), secure: secure, now: time.Now}
}

// CreateSession sets a session cookie for role.
func (s *SessionService) CreateSession(c *fiber.Ctx, role string) (Session, error) {
	session := Session{Role: role, ExpiresAt: s.now().Add(SessionTTL)}
	value, err := s.Encode(session)
	if err != nil {
		return Session{}, err
	}

	c.Cookie(&fiber.Cookie{
		Name:     SessionCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   int(SessionTTL / time.Second),
		Secure:   s.secure,
		HTTPOnly: true,
		SameSite: "Lax",
	})

	slog.Info("Session created", slog.String("role", role), slog.String("ip", c.IP()))
	return session, nil
}

// GetSession returns the verified, unexpired session of the request.
func (s *SessionService) GetSession(c *fiber.Ctx) (Session, error) {
	value := c.Cookies(SessionCookieName)
	if value == "" {
		return Session{}, fmt.Errorf("no session cookie found")
	}
	session, err := s.Decode(value)
	if err != nil {
		return Session{}, err
	}
	if !s.now().Before(session.ExpiresAt) {
		return Session{}, fmt.Errorf("session expired")
	}
	return session, nil
}

// DestroySession clears the session cookie.
func (s *SessionService) DestroySession(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Secure:   s.secure,
		HTTPOnly: true,
		SameSite: "Lax",
	})
}

// Encode serializes and signs a session.
func (s *SessionService) Encode(session Session) (string, error) {
	if len(s.key) == 0 {
		return "", fmt.Errorf("session key not configured")
	}
	data, err := json.Marshal(session)
	if err != nil {
		return "", fmt.Errorf("failed to marshal session: %w", err)
	}
	return base64.URLEncoding.EncodeToString(append(data, s.sign(data)...)), nil
}

// Decode verifies and deserializes a signed session.
func (s *SessionService) Decode(value string) (Session, error) {
	if len(s.key) == 0 {
		return Session{}, fmt.Errorf("session key not configured")
	}
	combined, err := base64.URLEncoding.DecodeString(value)
	if err != nil {
		return Session{}, fmt.Errorf("failed to decode session: %w", err)
	}
	if len(combined) <= sha256.Size {
		return Session{}, fmt.Errorf("session too short")
	}
	data := combined[:len(combined)-sha256.Size]
	signature := combined[len(combined)-sha256.Size:]
	if !hmac.Equal(signature, s.sign(data)) {
		return Session{}, fmt.Errorf("invalid session signature")
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return Session{}, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	if session.Role != RoleClient && session.Role != RoleAdmin {
		return Session{}, fmt.Errorf("unknown session role %q", session.Role)
	}
	return session, nil
}

func (s *SessionService) sign(data []byte) []byte {
	h := hmac.New(sha256.New, s.key)
	h.Write(data)
	return h.Sum(nil)
}
