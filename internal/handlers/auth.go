package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/localnerve/ops-portal/internal/middleware"
	"github.com/localnerve/ops-portal/internal/services"
	"github.com/localnerve/ops-portal/internal/types"
	"github.com/localnerve/ops-portal/internal/utils"
)

// AuthHandler handles login, logout and role routes
type AuthHandler struct {
	Service  *services.Service
	Sessions *services.SessionService
}

// LoginInput is the login request body.
type LoginInput struct {
	Password string `json:"password"`
}

// Login handles POST /api/auth/login
// @Summary Log in
// @Description Exchange the client or admin password for a session cookie
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body LoginInput true "Password"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var body LoginInput
	if err := parseBody(c, &body); err != nil {
		return utils.AppErrorResponse(c, err)
	}

	role, err := h.Service.Authenticate(c.UserContext(), body.Password)
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}
	session, err := h.Sessions.CreateSession(c, role)
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}

	return utils.MutationSuccessResponse(c, fiber.StatusOK, "Logged in", fiber.Map{
		"role":      session.Role,
		"expiresAt": session.ExpiresAt,
	})
}

// Logout handles POST /api/auth/logout
// @Summary Log out
// @Tags Auth
// @Produce json
// @Success 200 {object} utils.SuccessResponseStruct
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	h.Sessions.DestroySession(c)
	return utils.MutationSuccessResponse(c, fiber.StatusOK, "Logged out", nil)
}

// Role handles GET /api/auth/role
// @Summary Current role
// @Tags Auth
// @Produce json
// @Success 200 {object} services.Session
// @Failure 401 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /auth/role [get]
func (h *AuthHandler) Role(c *fiber.Ctx) error {
	session, ok := middleware.CurrentSession(c)
	if !ok {
		return utils.ErrorResponse(c, "no session", fiber.StatusUnauthorized, types.TypeAuth)
	}
	return c.JSON(session)
}
