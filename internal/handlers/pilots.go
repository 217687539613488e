package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/localnerve/ops-portal/internal/services"
	"github.com/localnerve/ops-portal/internal/utils"
	"github.com/localnerve/ops-portal/internal/validation"
)

// PilotHandler handles pilot routes
type PilotHandler struct {
	Service *services.Service
}

// List handles GET /api/pilots
// @Summary List pilots
// @Description Every pilot with derived balance and held reserves
// @Tags Pilots
// @Produce json
// @Success 200 {array} models.PilotView
// @Security CookieAuth
// @Router /pilots [get]
func (h *PilotHandler) List(c *fiber.Ctx) error {
	pilots, err := h.Service.ListPilots(c.UserContext())
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}
	return c.JSON(pilots)
}

// Get handles GET /api/pilots/:id
// @Summary Get a pilot
// @Tags Pilots
// @Produce json
// @Param id path string true "Pilot ID"
// @Success 200 {object} models.PilotView
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /pilots/{id} [get]
func (h *PilotHandler) Get(c *fiber.Ctx) error {
	pilot, err := h.Service.GetPilot(c.UserContext(), c.Params("id"))
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}
	return c.JSON(pilot)
}

// Create handles POST /api/pilots
// @Summary Create a pilot
// @Tags Pilots
// @Accept json
// @Produce json
// @Param body body validation.PilotInput true "Pilot"
// @Success 201 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /pilots [post]
func (h *PilotHandler) Create(c *fiber.Ctx) error {
	var body validation.PilotInput
	if err := parseBody(c, &body); err != nil {
		return utils.AppErrorResponse(c, err)
	}
	pilot, err := h.Service.CreatePilot(c.UserContext(), body)
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}
	return utils.MutationSuccessResponse(c, fiber.StatusCreated, "Pilot created", fiber.Map{"pilot": pilot})
}

// Update handles PUT /api/pilots/:id
// @Summary Replace a pilot
// @Tags Pilots
// @Accept json
// @Produce json
// @Param id path string true "Pilot ID"
// @Param body body validation.PilotInput true "Pilot"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /pilots/{id} [put]
func (h *PilotHandler) Update(c *fiber.Ctx) error {
	var body validation.PilotInput
	if err := parseBody(c, &body); err != nil {
		return utils.AppErrorResponse(c, err)
	}
	pilot, err := h.Service.UpdatePilot(c.UserContext(), c.Params("id"), body)
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}
	return utils.MutationSuccessResponse(c, fiber.StatusOK, "Pilot updated", fiber.Map{"pilot": pilot})
}

// Delete handles DELETE /api/pilots/:id
// @Summary Delete a pilot
// @Tags Pilots
// @Produce json
// @Param id path string true "Pilot ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /pilots/{id} [delete]
func (h *PilotHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.Service.DeletePilot(c.UserContext(), id); err != nil {
		return utils.AppErrorResponse(c, err)
	}
	return utils.MutationSuccessResponse(c, fiber.StatusOK, "Pilot deleted", fiber.Map{"id": id})
}

// SetReserveStatus handles PATCH /api/pilots/:id/reserves/:index
// @Summary Change a held reserve's deployment status
// @Tags Pilots
// @Accept json
// @Produce json
// @Param id path string true "Pilot ID"
// @Param index path int true "Reserve index"
// @Param body body object true "{deploymentStatus}"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /pilots/{id}/reserves/{index} [patch]
func (h *PilotHandler) SetReserveStatus(c *fiber.Ctx) error {
	index, err := intParam(c, "index")
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}
	var body struct {
		DeploymentStatus string `json:"deploymentStatus"`
	}
	if err := parseBody(c, &body); err != nil {
		return utils.AppErrorResponse(c, err)
	}
	pilot, err := h.Service.SetReserveStatus(c.UserContext(), c.Params("id"), index, body.DeploymentStatus)
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}
	return utils.MutationSuccessResponse(c, fiber.StatusOK, "Reserve status updated", fiber.Map{"pilot": pilot})
}

// OperationProgress handles POST /api/pilots/operation-progress
// @Summary Advance or reset operation progress of active pilots
// @Tags Pilots
// @Accept json
// @Produce json
// @Param body body object false "{action: advance|reset}"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /pilots/operation-progress [post]
func (h *PilotHandler) OperationProgress(c *fiber.Ctx) error {
	var body struct {
		Action string `json:"action"`
	}
	if err := parseBody(c, &body); err != nil {
		return utils.AppErrorResponse(c, err)
	}
	changed, err := h.Service.ProgressOperation(c.UserContext(), body.Action)
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}
	return utils.MutationSuccessResponse(c, fiber.StatusOK, "Operation progress updated", fiber.Map{"changed": changed})
}
