// store.go
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

// Package store persists whole collections. Every write replaces the full collection;
// callers serialize read-modify-write cycles through the lock coordinator.
package store

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/localnerve/ops-portal/internal/config"
	"github.com/localnerve/ops-portal/internal/database"
)

// Collection names a persisted collection. The names double as push event types.
type Collection string

const (
	Jobs        Collection = "jobs"
	Factions    Collection = "factions"
	Pilots      Collection = "pilots"
	Ledger      Collection = "manna"
	Reserves    Collection = "reserves"
	CoreMajor   Collection = "facilities-core-major"
	MinorSlots  Collection = "facilities-minor-slots"
	StoreConfig Collection = "store-config"
	Settings    Collection = "settings"
)

// All lists every collection.
var All = []Collection{Jobs, Factions, Pilots, Ledger, Reserves, CoreMajor, MinorSlots, StoreConfig, Settings}

// Valid reports whether c is a known collection.
func (c Collection) Valid() bool {
	for _, known := range All {
		if c == known {
			return true
		}
	}
	return false
}

// ErrNotExist is returned by Read when a collection has never been written.
var ErrNotExist = errors.New("collection does not exist")

// Store reads and writes encoded collections.
type Store interface {
	Read(ctx context.Context, c Collection) ([]byte, error)
	Write(ctx context.Context, c Collection, data []byte) error
	Ping(ctx context.Context) error
	Close() error
}

// Load decodes a collection over fallback. An absent, empty or null collection yields fallback,
// and keys missing from a stored object keep their fallback values.
func Load[T any](ctx context.Context, s Store, c Collection, fallback T) (T, error) {
	data, err := s.Read(ctx, c)
	if errors.Is(err, ErrNotExist) {
		return fallback, nil
	}
	if err != nil {
		return fallback, err
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return fallback, nil
	}

	out := fallback
	if err := json.Unmarshal(data, &out); err != nil {
		return fallback, errors.Wrapf(err, "failed to decode collection %s", c)
	}
	return out, nil
}

// Save encodes and writes a whole collection.
func Save[T any](ctx context.Context, s Store, c Collection, value T) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return errors.Wrapf(err, "failed to encode collection %s", c)
	}
	return s.Write(ctx, c, data)
}

// Open returns the store selected by configuration.
func Open(cfg *config.Config) (Store, error) {
	if cfg.StoreType == config.StoreFile {
		return NewFileStore(cfg.DataDir)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return nil, err
	}
	s, err := NewSQLStore(db)
	if err != nil {
		_ = database.Close(db)
		return nil, err
	}
	return s, nil
}
