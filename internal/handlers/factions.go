package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/localnerve/ops-portal/internal/services"
	"github.com/localnerve/ops-portal/internal/utils"
	"github.com/localnerve/ops-portal/internal/validation"
)

// FactionHandler handles faction routes
type FactionHandler struct {
	Service *services.Service
}

// List handles GET /api/factions
// @Summary List factions
// @Description Every faction with its standing label and live job counts
// @Tags Factions
// @Produce json
// @Success 200 {array} models.FactionView
// @Security CookieAuth
// @Router /factions [get]
func (h *FactionHandler) List(c *fiber.Ctx) error {
	factions, err := h.Service.ListFactions(c.UserContext())
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}
	return c.JSON(factions)
}

// Create handles POST /api/factions
// @Summary Create a faction
// @Tags Factions
// @Accept json
// @Produce json
// @Param body body validation.FactionInput true "Faction"
// @Success 201 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /factions [post]
func (h *FactionHandler) Create(c *fiber.Ctx) error {
	var body validation.FactionInput
	if err := parseBody(c, &body); err != nil {
		return utils.AppErrorResponse(c, err)
	}
	faction, err := h.Service.CreateFaction(c.UserContext(), body)
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}
	return utils.MutationSuccessResponse(c, fiber.StatusCreated, "Faction created", fiber.Map{"faction": faction})
}

// Update handles PUT /api/factions/:id
// @Summary Replace a faction
// @Tags Factions
// @Accept json
// @Produce json
// @Param id path string true "Faction ID"
// @Param body body validation.FactionInput true "Faction"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /factions/{id} [put]
func (h *FactionHandler) Update(c *fiber.Ctx) error {
	var body validation.FactionInput
	if err := parseBody(c, &body); err != nil {
		return utils.AppErrorResponse(c, err)
	}
	faction, err := h.Service.UpdateFaction(c.UserContext(), c.Params("id"), body)
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}
	return utils.MutationSuccessResponse(c, fiber.StatusOK, "Faction updated", fiber.Map{"faction": faction})
}

// Delete handles DELETE /api/factions/:id. Jobs of the faction keep existing with no faction.
// @Summary Delete a faction
// @Tags Factions
// @Produce json
// @Param id path string true "Faction ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /factions/{id} [delete]
func (h *FactionHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.Service.DeleteFaction(c.UserContext(), id); err != nil {
		return utils.AppErrorResponse(c, err)
	}
	return utils.MutationSuccessResponse(c, fiber.StatusOK, "Faction deleted", fiber.Map{"id": id})
}
