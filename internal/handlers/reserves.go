package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/localnerve/ops-portal/internal/services"
	"github.com/localnerve/ops-portal/internal/utils"
	"github.com/localnerve/ops-portal/internal/validation"
)

// ReserveHandler handles reserve catalog routes
type ReserveHandler struct {
	Service *services.Service
}

// List handles GET /api/reserves
// @Summary List reserves
// @Tags Reserves
// @Produce json
// @Success 200 {array} models.Reserve
// @Security CookieAuth
// @Router /reserves [get]
func (h *ReserveHandler) List(c *fiber.Ctx) error {
	reserves, err := h.Service.ListReserves(c.UserContext())
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}
	return c.JSON(reserves)
}

// Create handles POST /api/reserves
// @Summary Create a reserve
// @Tags Reserves
// @Accept json
// @Produce json
// @Param body body validation.ReserveInput true "Reserve"
// @Success 201 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /reserves [post]
func (h *ReserveHandler) Create(c *fiber.Ctx) error {
	var body validation.ReserveInput
	if err := parseBody(c, &body); err != nil {
		return utils.AppErrorResponse(c, err)
	}
	reserve, err := h.Service.CreateReserve(c.UserContext(), body)
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}
	return utils.MutationSuccessResponse(c, fiber.StatusCreated, "Reserve created", fiber.Map{"reserve": reserve})
}

// Update handles PUT /api/reserves/:id
// @Summary Replace a reserve
// @Tags Reserves
// @Accept json
// @Produce json
// @Param id path string true "Reserve ID"
// @Param body body validation.ReserveInput true "Reserve"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /reserves/{id} [put]
func (h *ReserveHandler) Update(c *fiber.Ctx) error {
	var body validation.ReserveInput
	if err := parseBody(c, &body); err != nil {
		return utils.AppErrorResponse(c, err)
	}
	reserve, err := h.Service.UpdateReserve(c.UserContext(), c.Params("id"), body)
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}
	return utils.MutationSuccessResponse(c, fiber.StatusOK, "Reserve updated", fiber.Map{"reserve": reserve})
}

// Delete handles DELETE /api/reserves/:id. Refused while any pilot holds the reserve.
// @Summary Delete a reserve
// @Tags Reserves
// @Produce json
// @Param id path string true "Reserve ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /reserves/{id} [delete]
func (h *ReserveHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.Service.DeleteReserve(c.UserContext(), id); err != nil {
		return utils.AppErrorResponse(c, err)
	}
	return utils.MutationSuccessResponse(c, fiber.StatusOK, "Reserve deleted", fiber.Map{"id": id})
}
