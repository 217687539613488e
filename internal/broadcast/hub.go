// hub.go
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

// Package broadcast fans state-change events out to connected push subscribers.
package broadcast

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/localnerve/ops-portal/internal/metrics"
)

// Subscriber receives encoded event frames. Send must not block.
type Subscriber interface {
	ID() string
	Send(frame []byte) error
}

// Event is one typed state change. Payload is the full enriched collection.
type Event struct {
	Type    string
	Payload any
}

// Publisher is what mutation code needs from the hub.
type Publisher interface {
	Publish(events ...Event)
}

// Hub holds the subscriber set. Delivery failures are never returned to publishers;
// a subscriber whose send fails is removed.
type Hub struct {
	mu     sync.RWMutex
	subs   map[string]Subscriber
	logger *slog.Logger
}

// NewHub returns an empty hub.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{subs: make(map[string]Subscriber), logger: logger}
}

// Subscribe adds s. Re-subscribing an ID replaces the previous subscriber.
func (h *Hub) Subscribe(s Subscriber) {
	h.mu.Lock()
	_, existed := h.subs[s.ID()]
	h.subs[s.ID()] = s
	h.mu.Unlock()

	if !existed {
		metrics.Subscribers.Inc()
	}
	h.logger.Debug("Subscriber connected", slog.String("subscriber", s.ID()))
}

// Unsubscribe removes the subscriber with id, if present.
func (h *Hub) Unsubscribe(id string) {
	if h.remove(id) != nil {
		h.logger.Debug("Subscriber disconnected", slog.String("subscriber", id))
	}
}

func (h *Hub) remove(id string) Subscriber {
	h.mu.Lock()
	s, ok := h.subs[id]
	delete(h.subs, id)
	h.mu.Unlock()

	if !ok {
		return nil
	}
	metrics.Subscribers.Dec()
	return s
}

// Count returns the number of subscribers.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Publish encodes each event once and sends it to every subscriber.
func (h *Hub) Publish(events ...Event) {
	for _, e := range events {
		frame, err := Frame(e.Type, e.Payload)
		if err != nil {
			h.logger.Error("Failed to encode event", slog.String("event", e.Type), slog.Any("error", err))
			continue
		}
		metrics.Broadcasts.WithLabelValues(e.Type).Inc()
		h.deliver(e.Type, frame)
	}
}

func (h *Hub) deliver(eventType string, frame []byte) {
	h.mu.RLock()
	subs := make([]Subscriber, 0, len(h.subs))
	for _, s := range h.subs {
		subs = append(subs, s)
	}
	h.mu.RUnlock()

	for _, s := range subs {
		if err := s.Send(frame); err != nil {
			h.drop(s, eventType, err)
		}
	}
}

func (h *Hub) drop(s Subscriber, eventType string, cause error) {
	if h.remove(s.ID()) == nil {
		return
	}
	metrics.DroppedSubscribers.Inc()
	if c, ok := s.(io.Closer); ok {
		_ = c.Close()
	}
	h.logger.Warn("Dropped subscriber after failed send",
		slog.String("subscriber", s.ID()),
		slog.String("event", eventType),
		slog.Any("error", cause))
}

// Close disconnects every subscriber.
func (h *Hub) Close() {
	h.mu.Lock()
	subs := h.subs
	h.subs = make(map[string]Subscriber)
	h.mu.Unlock()

	for _, s := range subs {
		metrics.Subscribers.Dec()
		if c, ok := s.(io.Closer); ok {
			_ = c.Close()
		}
	}
}

// Frame encodes an event in text/event-stream format.
func Frame(eventType string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return []byte(fmt.Sprintf("event: %s\ndata: %s\n\n", eventType, data)), nil
}
