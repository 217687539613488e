package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/localnerve/ops-portal/internal/services"
	"github.com/localnerve/ops-portal/internal/utils"
)

// ProcurementHandler handles store purchases
type ProcurementHandler struct {
	Service *services.Service
}

// Purchase handles POST /api/procurement/purchase
// @Summary Buy a reserve or resupply item
// @Description The listed price is split evenly across expensePilots; reserves go to assigneePilotId
// @Tags Procurement
// @Accept json
// @Produce json
// @Param body body services.ProcurementInput true "Purchase"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /procurement/purchase [post]
func (h *ProcurementHandler) Purchase(c *fiber.Ctx) error {
	var body services.ProcurementInput
	if err := parseBody(c, &body); err != nil {
		return utils.AppErrorResponse(c, err)
	}
	result, err := h.Service.Purchase(c.UserContext(), body)
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}
	return utils.MutationSuccessResponse(c, fiber.StatusOK, "Purchase complete", fiber.Map{"purchase": result})
}
