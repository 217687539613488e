package handlers

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/localnerve/ops-portal/internal/services"
	"github.com/localnerve/ops-portal/internal/types"
	"github.com/localnerve/ops-portal/internal/utils"
)

// EmblemHandler handles the SVG emblem library
type EmblemHandler struct {
	Service *services.Service
}

// List handles GET /api/emblems
// @Summary List emblem file names
// @Tags Emblems
// @Produce json
// @Success 200 {array} string
// @Security CookieAuth
// @Router /emblems [get]
func (h *EmblemHandler) List(c *fiber.Ctx) error {
	names, err := h.Service.ListEmblems(c.UserContext())
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}
	return c.JSON(names)
}

// Get handles GET /api/emblems/:name
// @Summary Fetch an emblem
// @Tags Emblems
// @Produce image/svg+xml
// @Param name path string true "Emblem file name"
// @Success 200 {file} file
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /emblems/{name} [get]
func (h *EmblemHandler) Get(c *fiber.Ctx) error {
	path, err := h.Service.EmblemPath(c.Params("name"))
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}
	c.Type("svg")
	return c.SendFile(path)
}

// Upload handles POST /api/emblems as multipart form data with a "file" part and an
// optional "name" field.
// @Summary Upload an SVG emblem
// @Tags Emblems
// @Accept mpfd
// @Produce json
// @Param file formData file true "SVG file"
// @Param name formData string false "File name, defaults to the uploaded name"
// @Success 201 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /emblems [post]
func (h *EmblemHandler) Upload(c *fiber.Ctx) error {
	header, err := c.FormFile("file")
	if err != nil {
		return utils.AppErrorResponse(c, types.ValidationError("file is required"))
	}
	name := strings.TrimSpace(c.FormValue("name"))
	if name == "" {
		name = filepath.Base(header.Filename)
	}

	f, err := header.Open()
	if err != nil {
		return utils.AppErrorResponse(c, types.StorageError(err))
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return utils.AppErrorResponse(c, types.StorageError(err))
	}

	saved, err := h.Service.SaveEmblem(c.UserContext(), name, data)
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}
	return utils.MutationSuccessResponse(c, fiber.StatusCreated, "Emblem uploaded", fiber.Map{"name": saved})
}

// Delete handles DELETE /api/emblems/:name
// @Summary Delete an unused emblem
// @Tags Emblems
// @Produce json
// @Param name path string true "Emblem file name"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /emblems/{name} [delete]
func (h *EmblemHandler) Delete(c *fiber.Ctx) error {
	name := c.Params("name")
	if err := h.Service.DeleteEmblem(c.UserContext(), name); err != nil {
		return utils.AppErrorResponse(c, err)
	}
	return utils.MutationSuccessResponse(c, fiber.StatusOK, "Emblem deleted", fiber.Map{"name": name})
}
