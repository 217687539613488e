// manna.go
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

package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/localnerve/ops-portal/internal/services"
	"github.com/localnerve/ops-portal/internal/utils"
	"github.com/localnerve/ops-portal/internal/validation"
)

// MannaHandler handles ledger routes
type MannaHandler struct {
	Service *services.Service
}

// Get handles GET /api/manna
// @Summary Shared manna history
// @Description Newest-first ledger history with per-entry totals and the total balance of active pilots
// @Tags Manna
// @Produce json
// @Success 200 {object} models.MannaView
// @Security CookieAuth
// @Router /manna [get]
func (h *MannaHandler) Get(c *fiber.Ctx) error {
	view, err := h.Service.Manna(c.UserContext())
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}
	return c.JSON(view)
}

// CreateTransaction handles POST /api/manna/transaction
// @Summary Record a transaction
// @Description Omitted pilotIds credits every active pilot
// @Tags Manna
// @Accept json
// @Produce json
// @Param body body validation.TransactionInput true "Transaction"
// @Success 201 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /manna/transaction [post]
func (h *MannaHandler) CreateTransaction(c *fiber.Ctx) error {
	var body validation.TransactionInput
	if err := parseBody(c, &body); err != nil {
		return utils.AppErrorResponse(c, err)
	}
	entry, err := h.Service.CreateTransaction(c.UserContext(), body)
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}
	return utils.MutationSuccessResponse(c, fiber.StatusCreated, "Transaction recorded", fiber.Map{"transaction": entry})
}

// DeleteTransaction handles DELETE /api/manna/transaction/:id
// @Summary Delete a transaction
// @Tags Manna
// @Produce json
// @Param id path string true "Transaction ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /manna/transaction/{id} [delete]
func (h *MannaHandler) DeleteTransaction(c *fiber.Ctx) error {
	id := c.Params("id")
	pruned, err := h.Service.DeleteTransaction(c.UserContext(), id)
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}
	return utils.MutationSuccessResponse(c, fiber.StatusOK, "Transaction deleted", fiber.Map{
		"id":           id,
		"pilotsPruned": pruned,
	})
}
