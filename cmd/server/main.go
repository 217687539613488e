// main.go
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

package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/localnerve/ops-portal/internal/broadcast"
	"github.com/localnerve/ops-portal/internal/config"
	"github.com/localnerve/ops-portal/internal/locks"
	"github.com/localnerve/ops-portal/internal/logging"
	"github.com/localnerve/ops-portal/internal/server"
	"github.com/localnerve/ops-portal/internal/services"
	"github.com/localnerve/ops-portal/internal/store"

	_ "github.com/localnerve/ops-portal/docs/api" // Swagger docs
)

// @title Ops Portal API
// @version 1.0.0
// @description Campaign companion dashboard for tabletop mech operations
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url https://github.com/localnerve/ops-portal
// @contact.email info@localnerve.com

// @license.name AGPL-3.0
// @license.url https://www.gnu.org/licenses/agpl-3.0.html

// @host localhost:3000
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey CookieAuth
// @in cookie
// @name ops_session

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.New(cfg)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	slog.SetDefault(logger)
	logger.Info("Starting ops-portal", cfg.LogAttrs()...)
	if cfg.SessionGenerated {
		logger.Warn("SESSION_SECRET not set; sessions will not survive a restart")
	}

	// Open the collection store
	st, err := store.Open(cfg)
	if err != nil {
		logger.Error("Failed to open store", slog.Any("error", err))
		os.Exit(1)
	}
	defer st.Close()

	seedCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	seeded, err := store.Seed(seedCtx, st, logger)
	cancel()
	if err != nil {
		logger.Error("Failed to seed store", slog.Any("error", err))
		os.Exit(1)
	}
	if len(seeded) > 0 {
		logger.Info("Seeded default collections", slog.Any("collections", seeded))
	}

	hub := broadcast.NewHub(logger)
	svc, err := services.New(services.Options{
		Store:     st,
		Locks:     locks.New(cfg.LockTimeout),
		Publisher: hub,
		EmblemDir: cfg.EmblemDir,
		Logger:    logger,
	})
	if err != nil {
		logger.Error("Failed to create service", slog.Any("error", err))
		os.Exit(1)
	}

	app := server.New(server.Deps{
		Config:    cfg,
		Service:   svc,
		Sessions:  services.NewSessionService(cfg.SessionSecret, cfg.Production),
		Hub:       hub,
		Logger:    logger,
		Metrics:   true,
		AccessLog: true,
	})

	// Graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		logger.Info("Gracefully shutting down...")
		hub.Close()
		_ = app.ShutdownWithTimeout(10 * time.Second)
	}()

	// Start server
	logger.Info("Starting server", slog.String("port", cfg.Port))
	if err := app.Listen(":" + cfg.Port); err != nil {
		logger.Error("Failed to start server", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("Server stopped")
}
