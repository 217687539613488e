// events.go
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
	"bufio"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"

	"github.com/localnerve/ops-portal/internal/broadcast"
)

// EventsHandler streams push events to subscribed clients
type EventsHandler struct {
	Hub       *broadcast.Hub
	Heartbeat time.Duration
	Buffer    int
	Logger    *slog.Logger
}

// Stream handles GET /api/events
// @Summary Subscribe to live updates
// @Description Server-sent events: a "connected" ack, one event per changed collection, and periodic "heartbeat" events
// @Tags Events
// @Produce text/event-stream
// @Success 200 {string} string "event stream"
// @Security CookieAuth
// @Router /events [get]
func (h *EventsHandler) Stream(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	stream := broadcast.NewStream(h.Buffer)
	h.Hub.Subscribe(stream)
	logger := h.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var body fasthttp.StreamWriter = func(w *bufio.Writer) {
		defer h.Hub.Unsubscribe(stream.ID())
		if err := stream.Serve(w, h.Heartbeat); err != nil {
			logger.Debug("Event stream ended", slog.String("subscriber", stream.ID()), slog.Any("error", err))
		}
	}
	c.Context().SetBodyStreamWriter(body)
	return nil
}
