// server.go
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

// Package server assembles the HTTP application.
package server

import (
	"errors"
	"log/slog"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	swagger "github.com/gofiber/swagger"

	"github.com/localnerve/ops-portal/internal/broadcast"
	"github.com/localnerve/ops-portal/internal/config"
	"github.com/localnerve/ops-portal/internal/handlers"
	"github.com/localnerve/ops-portal/internal/middleware"
	"github.com/localnerve/ops-portal/internal/services"
	"github.com/localnerve/ops-portal/internal/types"
	"github.com/localnerve/ops-portal/internal/utils"
)

// EventsPath is the server-sent events route.
const EventsPath = "/api/events"

// Deps are the collaborators of the HTTP application.
type Deps struct {
	Config   *config.Config
	Service  *services.Service
	Sessions *services.SessionService
	Hub      *broadcast.Hub
	Logger   *slog.Logger

	// Metrics registers the Prometheus middleware and /metrics. Collectors are
	// process-global, so only one app per process may enable it.
	Metrics bool
	// AccessLog enables the request logger middleware.
	AccessLog bool
}

// New returns the configured fiber application with every route registered.
func New(d Deps) *fiber.App {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}

	app := fiber.New(fiber.Config{
		ErrorHandler:          customErrorHandler,
		BodyLimit:             d.Config.MaxUploadSize,
		DisableStartupMessage: d.Config.Production,
	})

	// Global middleware
	app.Use(recover.New())
	if d.AccessLog {
		app.Use(logger.New())
	}
	app.Use(compress.New(compress.Config{
		Next: func(c *fiber.Ctx) bool { return c.Path() == EventsPath },
	}))

	// Prometheus metrics
	if d.Metrics {
		prometheus := fiberprometheus.New("ops_portal")
		prometheus.RegisterAt(app, "/metrics")
		app.Use(prometheus.Middleware)
	}

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	app.Get("/healthz", handlers.Healthz)

	api := app.Group("/api")
	api.Use(middleware.VersionMiddleware())

	client := middleware.AuthClient(d.Sessions)
	admin := middleware.AuthAdmin(d.Sessions)

	auth := &handlers.AuthHandler{Service: d.Service, Sessions: d.Sessions}
	api.Post("/auth/login", auth.Login)
	api.Post("/auth/logout", auth.Logout)
	api.Get("/auth/role", client, auth.Role)

	events := &handlers.EventsHandler{Hub: d.Hub, Heartbeat: d.Config.HeartbeatInterval, Buffer: 64, Logger: d.Logger}
	api.Get("/events", client, events.Stream)

	jobs := &handlers.JobHandler{Service: d.Service}
	api.Get("/jobs", client, jobs.List)
	api.Post("/jobs/progress", admin, jobs.Progress)
	api.Get("/jobs/:id", client, jobs.Get)
	api.Post("/jobs", admin, jobs.Create)
	api.Put("/jobs/:id", admin, jobs.Update)
	api.Patch("/jobs/:id/state", admin, jobs.SetState)
	api.Delete("/jobs/:id", admin, jobs.Delete)

	factions := &handlers.FactionHandler{Service: d.Service}
	api.Get("/factions", client, factions.List)
	api.Post("/factions", admin, factions.Create)
	api.Put("/factions/:id", admin, factions.Update)
	api.Delete("/factions/:id", admin, factions.Delete)

	pilots := &handlers.PilotHandler{Service: d.Service}
	api.Get("/pilots", client, pilots.List)
	api.Post("/pilots/operation-progress", admin, pilots.OperationProgress)
	api.Get("/pilots/:id", client, pilots.Get)
	api.Post("/pilots", admin, pilots.Create)
	api.Put("/pilots/:id", admin, pilots.Update)
	api.Patch("/pilots/:id/reserves/:index", admin, pilots.SetReserveStatus)
	api.Delete("/pilots/:id", admin, pilots.Delete)

	manna := &handlers.MannaHandler{Service: d.Service}
	api.Get("/manna", client, manna.Get)
	api.Post("/manna/transaction", admin, manna.CreateTransaction)
	api.Delete("/manna/transaction/:id", admin, manna.DeleteTransaction)

	reserves := &handlers.ReserveHandler{Service: d.Service}
	api.Get("/reserves", client, reserves.List)
	api.Post("/reserves", admin, reserves.Create)
	api.Put("/reserves/:id", admin, reserves.Update)
	api.Delete("/reserves/:id", admin, reserves.Delete)

	facilities := &handlers.FacilityHandler{Service: d.Service}
	api.Get("/facilities/core-major", client, facilities.List)
	api.Post("/facilities/core-major", admin, facilities.Create)
	api.Put("/facilities/core-major/:id", admin, facilities.Update)
	api.Delete("/facilities/core-major/:id", admin, facilities.Delete)
	api.Post("/facilities/core-major/:id/purchase", client, facilities.Purchase)
	api.Post("/facilities/core-major/:id/upgrades/:upgradeId/purchase", client, facilities.PurchaseUpgrade)
	api.Get("/facilities/minor-slots", client, facilities.ListMinorSlots)
	api.Post("/facilities/minor-slots/:n/enable", client, facilities.EnableSlot)
	api.Post("/facilities/minor-slots/:n/assign", client, facilities.AssignSlot)
	api.Post("/facilities/minor-slots/:n/disable", admin, facilities.DisableSlot)
	api.Post("/facilities/minor-slots/:n/clear", admin, facilities.ClearSlot)

	procurement := &handlers.ProcurementHandler{Service: d.Service}
	api.Post("/procurement/purchase", client, procurement.Purchase)

	settings := &handlers.SettingsHandler{Service: d.Service}
	api.Get("/settings", client, settings.Get)
	api.Put("/settings", admin, settings.Update)
	api.Get("/store-config", client, settings.GetStoreConfig)
	api.Put("/store-config", admin, settings.UpdateStoreConfig)
	api.Get("/pricing/preview", client, settings.PreviewCost)

	emblems := &handlers.EmblemHandler{Service: d.Service}
	api.Get("/emblems", client, emblems.List)
	api.Get("/emblems/:name", client, emblems.Get)
	api.Post("/emblems", admin, emblems.Upload)
	api.Delete("/emblems/:name", admin, emblems.Delete)

	// 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return utils.ErrorResponse(c, "[404] Resource Not Found", fiber.StatusNotFound, types.TypeNotFound)
	})

	return app
}

// customErrorHandler handles errors globally
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := err.Error()
	errorType := "unknown"

	var ce *types.CustomError
	var fe *fiber.Error
	switch {
	case errors.As(err, &ce):
		code, message, errorType = ce.Code, ce.Message, ce.Type
	case errors.As(err, &fe):
		code, message = fe.Code, fe.Message
	}

	return c.Status(code).JSON(fiber.Map{
		"status":    code,
		"message":   message,
		"ok":        false,
		"success":   false,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"url":       c.OriginalURL(),
		"type":      errorType,
	})
}
