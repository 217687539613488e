// auth.go
//
// Operations portal for tabletop mech campaigns
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of ops-portal.
// ops-portal is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// ops-portal is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with ops-portal.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package middleware

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/localnerve/ops-portal/internal/services"
	"github.com/localnerve/ops-portal/internal/types"
)

// SessionKey is the fiber Locals key holding the verified services.Session.
const SessionKey = "session"

// AuthAdmin validates that the request has admin role authorization
func AuthAdmin(sessions *services.SessionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return authorize(c, sessions, true)
	}
}

// AuthClient validates that the request has client or admin role authorization
func AuthClient(sessions *services.SessionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return authorize(c, sessions, false)
	}
}

// authorize performs the authorization check
func authorize(c *fiber.Ctx, sessions *services.SessionService, admin bool) error {
	session, err := sessions.GetSession(c)
	if err != nil {
		return &types.CustomError{
			Code:    fiber.StatusUnauthorized,
			Message: fmt.Sprintf("Invalid session: %v", err),
			Type:    types.TypeAuth,
		}
	}
	if admin && !session.Admin() {
		return types.AuthError("admin role required")
	}

	c.Locals(SessionKey, session)
	return c.Next()
}

// CurrentSession returns the session stored by AuthClient or AuthAdmin.
func CurrentSession(c *fiber.Ctx) (services.Session, bool) {
	session, ok := c.Locals(SessionKey).(services.Session)
	return session, ok
}
