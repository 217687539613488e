// facilities.go
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

// FacilityHandler handles core/major facility and minor slot routes
type FacilityHandler struct {
	Service *services.Service
}

// List handles GET /api/facilities/core-major
// @Summary List core and major facilities
// @Tags Facilities
// @Produce json
// @Success 200 {array} models.Facility
// @Security CookieAuth
// @Router /facilities/core-major [get]
func (h *FacilityHandler) List(c *fiber.Ctx) error {
	facilities, err := h.Service.ListFacilities(c.UserContext())
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}
	return c.JSON(facilities)
}

// Create handles POST /api/facilities/core-major
// @Summary Create a facility
// @Tags Facilities
// @Accept json
// @Produce json
// @Param body body validation.FacilityInput true "Facility"
// @Success 201 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /facilities/core-major [post]
func (h *FacilityHandler) Create(c *fiber.Ctx) error {
	var body validation.FacilityInput
	if err := parseBody(c, &body); err != nil {
		return utils.AppErrorResponse(c, err)
	}
	facility, err := h.Service.CreateFacility(c.UserContext(), body)
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}
	return utils.MutationSuccessResponse(c, fiber.StatusCreated, "Facility created", fiber.Map{"facility": facility})
}

// Update handles PUT /api/facilities/core-major/:id
// @Summary Replace a facility
// @Tags Facilities
// @Accept json
// @Produce json
// @Param id path string true "Facility ID"
// @Param body body validation.FacilityInput true "Facility"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /facilities/core-major/{id} [put]
func (h *FacilityHandler) Update(c *fiber.Ctx) error {
	var body validation.FacilityInput
	if err := parseBody(c, &body); err != nil {
		return utils.AppErrorResponse(c, err)
	}
	facility, err := h.Service.UpdateFacility(c.UserContext(), c.Params("id"), body)
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}
	return utils.MutationSuccessResponse(c, fiber.StatusOK, "Facility updated", fiber.Map{"facility": facility})
}

// Delete handles DELETE /api/facilities/core-major/:id
// @Summary Delete a facility
// @Tags Facilities
// @Produce json
// @Param id path string true "Facility ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /facilities/core-major/{id} [delete]
func (h *FacilityHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.Service.DeleteFacility(c.UserContext(), id); err != nil {
		return utils.AppErrorResponse(c, err)
	}
	return utils.MutationSuccessResponse(c, fiber.StatusOK, "Facility deleted", fiber.Map{"id": id})
}

// Purchase handles POST /api/facilities/core-major/:id/purchase
// @Summary Purchase a facility
// @Description The modified price is split evenly across expensePilots
// @Tags Facilities
// @Accept json
// @Produce json
// @Param id path string true "Facility ID"
// @Param body body services.PurchaseInput true "Payers"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Failure 503 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /facilities/core-major/{id}/purchase [post]
func (h *FacilityHandler) Purchase(c *fiber.Ctx) error {
	var body services.PurchaseInput
	if err := parseBody(c, &body); err != nil {
		return utils.AppErrorResponse(c, err)
	}
	result, err := h.Service.PurchaseFacility(c.UserContext(), c.Params("id"), body)
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}
	return utils.MutationSuccessResponse(c, fiber.StatusOK, "Facility purchased", fiber.Map{
		"facility": result.Facility,
		"payment":  result.Payment,
	})
}

// PurchaseUpgrade handles POST /api/facilities/core-major/:id/upgrades/:upgradeId/purchase
// @Summary Purchase a facility upgrade
// @Tags Facilities
// @Accept json
// @Produce json
// @Param id path string true "Facility ID"
// @Param upgradeId path string true "Upgrade ID"
// @Param body body services.PurchaseInput true "Payers"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /facilities/core-major/{id}/upgrades/{upgradeId}/purchase [post]
func (h *FacilityHandler) PurchaseUpgrade(c *fiber.Ctx) error {
	var body services.PurchaseInput
	if err := parseBody(c, &body); err != nil {
		return utils.AppErrorResponse(c, err)
	}
	result, err := h.Service.PurchaseUpgrade(c.UserContext(), c.Params("id"), c.Params("upgradeId"), body)
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}
	return utils.MutationSuccessResponse(c, fiber.StatusOK, "Upgrade purchased", fiber.Map{
		"facility": result.Facility,
		"upgrade":  result.Upgrade,
		"payment":  result.Payment,
	})
}

// ListMinorSlots handles GET /api/facilities/minor-slots
// @Summary List minor facility slots
// @Tags Facilities
// @Produce json
// @Success 200 {array} models.MinorSlot
// @Security CookieAuth
// @Router /facilities/minor-slots [get]
func (h *FacilityHandler) ListMinorSlots(c *fiber.Ctx) error {
	slots, err := h.Service.ListMinorSlots(c.UserContext())
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}
	return c.JSON(slots)
}

// EnableSlot handles POST /api/facilities/minor-slots/:n/enable
// @Summary Unlock minor slot 5 or 6
// @Tags Facilities
// @Accept json
// @Produce json
// @Param n path int true "Slot number"
// @Param body body services.PurchaseInput false "Payers"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /facilities/minor-slots/{n}/enable [post]
func (h *FacilityHandler) EnableSlot(c *fiber.Ctx) error {
	n, err := intParam(c, "n")
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}
	var body services.PurchaseInput
	if err := parseBody(c, &body); err != nil {
		return utils.AppErrorResponse(c, err)
	}
	result, err := h.Service.EnableMinorSlot(c.UserContext(), n, body)
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}
	return utils.MutationSuccessResponse(c, fiber.StatusOK, "Minor slot enabled", fiber.Map{
		"slot":    result.Slot,
		"payment": result.Payment,
	})
}

// DisableSlot handles POST /api/facilities/minor-slots/:n/disable
// @Summary Lock an empty minor slot 5 or 6
// @Tags Facilities
// @Produce json
// @Param n path int true "Slot number"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /facilities/minor-slots/{n}/disable [post]
func (h *FacilityHandler) DisableSlot(c *fiber.Ctx) error {
	n, err := intParam(c, "n")
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}
	slot, err := h.Service.DisableMinorSlot(c.UserContext(), n)
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}
	return utils.MutationSuccessResponse(c, fiber.StatusOK, "Minor slot disabled", fiber.Map{"slot": slot})
}

// AssignSlot handles POST /api/facilities/minor-slots/:n/assign
// @Summary Build a minor facility in an empty slot
// @Tags Facilities
// @Accept json
// @Produce json
// @Param n path int true "Slot number"
// @Param body body services.AssignInput true "Facility and payers"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /facilities/minor-slots/{n}/assign [post]
func (h *FacilityHandler) AssignSlot(c *fiber.Ctx) error {
	n, err := intParam(c, "n")
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}
	var body services.AssignInput
	if err := parseBody(c, &body); err != nil {
		return utils.AppErrorResponse(c, err)
	}
	result, err := h.Service.AssignMinorSlot(c.UserContext(), n, body)
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}
	return utils.MutationSuccessResponse(c, fiber.StatusOK, "Minor facility built", fiber.Map{
		"slot":    result.Slot,
		"payment": result.Payment,
	})
}

// ClearSlot handles POST /api/facilities/minor-slots/:n/clear
// @Summary Remove the facility from a minor slot
// @Tags Facilities
// @Produce json
// @Param n path int true "Slot number"
// @Success 200 {object} utils.SuccessResponseStruct
// @Security CookieAuth
// @Router /facilities/minor-slots/{n}/clear [post]
func (h *FacilityHandler) ClearSlot(c *fiber.Ctx) error {
	n, err := intParam(c, "n")
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}
	slot, err := h.Service.ClearMinorSlot(c.UserContext(), n)
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}
	return utils.MutationSuccessResponse(c, fiber.StatusOK, "Minor slot cleared", fiber.Map{"slot": slot})
}
