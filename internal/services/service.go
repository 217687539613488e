// service.go
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

// Package services implements every read and mutation of the portal. Mutations run as a
// unit of work: lock the touched collections, load, validate, stage, commit, broadcast.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/localnerve/ops-portal/internal/broadcast"
	"github.com/localnerve/ops-portal/internal/locks"
	"github.com/localnerve/ops-portal/internal/metrics"
	"github.com/localnerve/ops-portal/internal/models"
	"github.com/localnerve/ops-portal/internal/store"
	"github.com/localnerve/ops-portal/internal/types"
)

// Options configures a Service.
type Options struct {
	Store     store.Store
	Locks     *locks.Keyed
	Publisher broadcast.Publisher
	EmblemDir string
	Logger    *slog.Logger
	Now       func() time.Time
	NewID     func() string
}

// Service is the application core shared by all handlers.
type Service struct {
	store     store.Store
	locks     *locks.Keyed
	publisher broadcast.Publisher
	emblemDir string
	logger    *slog.Logger
	now       func() time.Time
	newID     func() string
}

// New validates options and returns a Service.
func New(opts Options) (*Service, error) {
	if opts.Store == nil {
		return nil, errors.New("store is required")
	}
	if opts.Locks == nil {
		opts.Locks = locks.New(locks.DefaultTimeout)
	}
	if opts.Publisher == nil {
		opts.Publisher = nopPublisher{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	if opts.EmblemDir != "" {
		if err := os.MkdirAll(opts.EmblemDir, 0o755); err != nil {
			return nil, errors.Wrapf(err, "failed to create emblem directory %s", opts.EmblemDir)
		}
	}

	return &Service{
		store:     opts.Store,
		locks:     opts.Locks,
		publisher: opts.Publisher,
		emblemDir: opts.EmblemDir,
		logger:    opts.Logger,
		now:       opts.Now,
		newID:     opts.NewID,
	}, nil
}

type nopPublisher struct{}

func (nopPublisher) Publish(...broadcast.Event) {}

// Store returns the backing store.
func (s *Service) Store() store.Store {
	return s.store
}

func load[T any](ctx context.Context, s *Service, c store.Collection, fallback T) (T, error) {
	v, err := store.Load(ctx, s.store, c, fallback)
	if err != nil {
		return fallback, types.StorageError(err)
	}
	return v, nil
}

func (s *Service) loadJobs(ctx context.Context) ([]models.Job, error) {
	return load(ctx, s, store.Jobs, []models.Job{})
}

func (s *Service) loadFactions(ctx context.Context) ([]models.Faction, error) {
	return load(ctx, s, store.Factions, []models.Faction{})
}

func (s *Service) loadPilots(ctx context.Context) ([]models.Pilot, error) {
	return load(ctx, s, store.Pilots, []models.Pilot{})
}

func (s *Service) loadLedger(ctx context.Context) ([]models.Transaction, error) {
	return load(ctx, s, store.Ledger, []models.Transaction{})
}

func (s *Service) loadReserves(ctx context.Context) ([]models.Reserve, error) {
	return load(ctx, s, store.Reserves, []models.Reserve{})
}

func (s *Service) loadFacilities(ctx context.Context) ([]models.Facility, error) {
	return load(ctx, s, store.CoreMajor, []models.Facility{})
}

func (s *Service) loadMinorSlots(ctx context.Context) ([]models.MinorSlot, error) {
	slots, err := load(ctx, s, store.MinorSlots, []models.MinorSlot{})
	if err != nil {
		return nil, err
	}
	return models.NormalizeMinorSlots(slots), nil
}

func (s *Service) loadStoreConfig(ctx context.Context) (models.StoreConfig, error) {
	cfg, err := load(ctx, s, store.StoreConfig, models.StoreConfig{ResupplyItems: []models.StoreItem{}})
	if cfg.ResupplyItems == nil {
		cfg.ResupplyItems = []models.StoreItem{}
	}
	return cfg, err
}

func (s *Service) loadSettings(ctx context.Context) (models.Settings, error) {
	return load(ctx, s, store.Settings, models.DefaultSettings())
}

func (s *Service) timestamp() string {
	return s.now().UTC().Format(models.TransactionDateLayout)
}

// mutation collects the writes of one operation.
type mutation struct {
	op     string
	locked map[store.Collection]bool
	staged map[store.Collection]any
}

// stage replaces the whole collection c at commit.
func (m *mutation) stage(c store.Collection, value any) {
	m.staged[c] = value
}

// commitOrder writes item collections before the ledger, and the ledger before pilots,
// so a pilot never references a transaction that was not written.
var commitOrder = []store.Collection{
	store.Settings,
	store.StoreConfig,
	store.Reserves,
	store.Factions,
	store.Jobs,
	store.CoreMajor,
	store.MinorSlots,
	store.Ledger,
	store.Pilots,
}

// mutate runs fn holding the locks of collections, then commits what fn staged and
// broadcasts the changes. Locks are released on every exit path.
func (s *Service) mutate(ctx context.Context, op string, collections []store.Collection, fn func(m *mutation) error) error {
	keys := make([]string, len(collections))
	locked := make(map[store.Collection]bool, len(collections))
	for i, c := range collections {
		keys[i] = string(c)
		locked[c] = true
	}

	release, err := s.locks.Acquire(ctx, keys...)
	if err != nil {
		metrics.Mutations.WithLabelValues(op, "lock_timeout").Inc()
		s.logger.Warn("Mutation timed out waiting for locks", slog.String("op", op), slog.Any("keys", keys))
		return err
	}
	defer release()

	start := time.Now()
	m := &mutation{op: op, locked: locked, staged: make(map[store.Collection]any)}
	if err := fn(m); err != nil {
		metrics.Mutations.WithLabelValues(op, "rejected").Inc()
		return err
	}

	written, err := s.commit(ctx, m)
	if err != nil {
		metrics.Mutations.WithLabelValues(op, "error").Inc()
		return err
	}

	s.publishChanged(ctx, written)
	metrics.Mutations.WithLabelValues(op, "ok").Inc()
	s.logger.Info("Mutation committed",
		slog.String("op", op),
		slog.Any("collections", written),
		slog.Duration("duration", time.Since(start)))
	return nil
}

// commit writes staged collections in commitOrder. If a write fails, collections already
// written by this mutation are restored to their previous contents.
func (s *Service) commit(ctx context.Context, m *mutation) ([]store.Collection, error) {
	for c := range m.staged {
		if !m.locked[c] {
			return nil, types.StorageError(fmt.Errorf("%s staged unlocked collection %s", m.op, c))
		}
	}

	var written []store.Collection
	previous := make(map[store.Collection][]byte)
	for _, c := range commitOrder {
		value, ok := m.staged[c]
		if !ok {
			continue
		}

		prev, err := s.store.Read(ctx, c)
		if err != nil && !errors.Is(err, store.ErrNotExist) {
			s.restore(ctx, m.op, written, previous)
			return nil, types.StorageError(err)
		}
		if prev == nil {
			prev = []byte("null")
		}
		previous[c] = prev

		if err := store.Save(ctx, s.store, c, value); err != nil {
			s.logger.Error("Collection write failed", slog.String("op", m.op), slog.String("collection", string(c)), slog.Any("error", err))
			s.restore(ctx, m.op, written, previous)
			return nil, types.StorageError(err)
		}
		written = append(written, c)
	}
	return written, nil
}

func (s *Service) restore(ctx context.Context, op string, written []store.Collection, previous map[store.Collection][]byte) {
	ctx = context.WithoutCancel(ctx)
	for i := len(written) - 1; i >= 0; i-- {
		c := written[i]
		if err := s.store.Write(ctx, c, previous[c]); err != nil {
			s.logger.Error("Failed to restore collection after partial write",
				slog.String("op", op), slog.String("collection", string(c)), slog.Any("error", err))
		}
	}
}

// dependents lists the events a changed collection invalidates, because enriched views
// of one collection are derived from another.
var dependents = map[store.Collection][]store.Collection{
	store.Jobs:     {store.Jobs, store.Factions},
	store.Factions: {store.Factions, store.Jobs},
	store.Pilots:   {store.Pilots, store.Ledger},
	store.Ledger:   {store.Ledger, store.Pilots},
	store.Reserves: {store.Reserves, store.Pilots},
}

// eventsFor expands changed collections to the ordered set of events to publish.
func eventsFor(changed []store.Collection) []store.Collection {
	want := make(map[store.Collection]bool)
	for _, c := range changed {
		if deps, ok := dependents[c]; ok {
			for _, d := range deps {
				want[d] = true
			}
			continue
		}
		want[c] = true
	}
	out := make([]store.Collection, 0, len(want))
	for _, c := range commitOrder {
		if want[c] {
			out = append(out, c)
		}
	}
	return out
}

func (s *Service) publishChanged(ctx context.Context, changed []store.Collection) {
	events := make([]broadcast.Event, 0, len(changed))
	for _, c := range eventsFor(changed) {
		payload, err := s.Snapshot(ctx, c)
		if err != nil {
			s.logger.Error("Failed to build event payload", slog.String("event", string(c)), slog.Any("error", err))
			continue
		}
		events = append(events, broadcast.Event{Type: string(c), Payload: payload})
	}
	s.publisher.Publish(events...)
}

// Snapshot returns the enriched, client-safe view of a collection.
func (s *Service) Snapshot(ctx context.Context, c store.Collection) (any, error) {
	switch c {
	case store.Jobs:
		return s.ListJobs(ctx)
	case store.Factions:
		return s.ListFactions(ctx)
	case store.Pilots:
		return s.ListPilots(ctx)
	case store.Ledger:
		return s.Manna(ctx)
	case store.Reserves:
		return s.ListReserves(ctx)
	case store.CoreMajor:
		return s.ListFacilities(ctx)
	case store.MinorSlots:
		return s.ListMinorSlots(ctx)
	case store.StoreConfig:
		return s.GetStoreConfig(ctx)
	case store.Settings:
		return s.GetSettings(ctx, true)
	}
	return nil, types.NotFoundError("unknown collection %s", c)
}
