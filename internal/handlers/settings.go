package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/localnerve/ops-portal/internal/services"
	"github.com/localnerve/ops-portal/internal/utils"
	"github.com/localnerve/ops-portal/internal/validation"
)

// SettingsHandler handles settings, store configuration and pricing routes
type SettingsHandler struct {
	Service *services.Service
}

// Get handles GET /api/settings. Passwords are never returned.
// @Summary Portal settings
// @Tags Settings
// @Produce json
// @Success 200 {object} models.Settings
// @Security CookieAuth
// @Router /settings [get]
func (h *SettingsHandler) Get(c *fiber.Ctx) error {
	settings, err := h.Service.GetSettings(c.UserContext(), true)
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}
	return c.JSON(settings)
}

// Update handles PUT /api/settings
// @Summary Update portal settings
// @Description Omitted fields keep their value; blank passwords are ignored
// @Tags Settings
// @Accept json
// @Produce json
// @Param body body validation.SettingsInput true "Settings"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /settings [put]
func (h *SettingsHandler) Update(c *fiber.Ctx) error {
	var body validation.SettingsInput
	if err := parseBody(c, &body); err != nil {
		return utils.AppErrorResponse(c, err)
	}
	settings, err := h.Service.UpdateSettings(c.UserContext(), body)
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}
	return utils.MutationSuccessResponse(c, fiber.StatusOK, "Settings updated", fiber.Map{"settings": settings})
}

// GetStoreConfig handles GET /api/store-config
// @Summary Store configuration
// @Tags Settings
// @Produce json
// @Success 200 {object} models.StoreConfig
// @Security CookieAuth
// @Router /store-config [get]
func (h *SettingsHandler) GetStoreConfig(c *fiber.Ctx) error {
	cfg, err := h.Service.GetStoreConfig(c.UserContext())
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}
	return c.JSON(cfg)
}

// UpdateStoreConfig handles PUT /api/store-config
// @Summary Replace the store configuration
// @Tags Settings
// @Accept json
// @Produce json
// @Param body body validation.StoreConfigInput true "Store configuration"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /store-config [put]
func (h *SettingsHandler) UpdateStoreConfig(c *fiber.Ctx) error {
	var body validation.StoreConfigInput
	if err := parseBody(c, &body); err != nil {
		return utils.AppErrorResponse(c, err)
	}
	cfg, err := h.Service.UpdateStoreConfig(c.UserContext(), body)
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}
	return utils.MutationSuccessResponse(c, fiber.StatusOK, "Store configuration updated", fiber.Map{"storeConfig": cfg})
}

// PreviewCost handles GET /api/pricing/preview?price=&modifier=
// @Summary Preview a modified facility cost
// @Tags Settings
// @Produce json
// @Param price query int true "Base price"
// @Param modifier query number false "Modifier percent, defaults to the current setting"
// @Success 200 {object} services.CostPreview
// @Failure 400 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /pricing/preview [get]
func (h *SettingsHandler) PreviewCost(c *fiber.Ctx) error {
	price, err := queryFloat(c, "price")
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}
	if price == nil {
		return utils.ErrorResponse(c, "price is required", fiber.StatusBadRequest, "validation")
	}
	modifier, err := queryFloat(c, "modifier")
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}
	preview, err := h.Service.PreviewCost(c.UserContext(), int64(*price), modifier)
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}
	return c.JSON(preview)
}
