// keyed.go
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

// Package locks provides named advisory locks for serializing read-modify-write cycles.
package locks

import (
	"context"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/localnerve/ops-portal/internal/metrics"
	"github.com/localnerve/ops-portal/internal/types"
)

// DefaultTimeout bounds how long Acquire waits for all of its keys.
const DefaultTimeout = 5 * time.Second

// Keyed hands out one exclusive lock per key. Locks are in-process only.
type Keyed struct {
	timeout time.Duration

	mu   sync.Mutex
	sems map[string]*semaphore.Weighted
}

// New returns a lock set whose acquisitions give up after timeout.
func New(timeout time.Duration) *Keyed {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Keyed{timeout: timeout, sems: make(map[string]*semaphore.Weighted)}
}

func (k *Keyed) sem(key string) *semaphore.Weighted {
	k.mu.Lock()
	defer k.mu.Unlock()
	s, ok := k.sems[key]
	if !ok {
		s = semaphore.NewWeighted(1)
		k.sems[key] = s
	}
	return s
}

// Acquire takes every key, in sorted order so overlapping key sets cannot deadlock.
// The whole set must be acquired within the timeout, otherwise nothing is held and a
// lock timeout error is returned. The returned release func is safe to call more than once.
func (k *Keyed) Acquire(ctx context.Context, keys ...string) (func(), error) {
	keys = slices.Clone(keys)
	slices.Sort(keys)
	keys = slices.Compact(keys)

	ctx, cancel := context.WithTimeout(ctx, k.timeout)
	defer cancel()

	held := make([]*semaphore.Weighted, 0, len(keys))
	releaseHeld := func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].Release(1)
		}
	}

	for _, key := range keys {
		s := k.sem(key)
		start := time.Now()
		if err := s.Acquire(ctx, 1); err != nil {
			releaseHeld()
			metrics.LockTimeouts.WithLabelValues(key).Inc()
			return nil, types.LockTimeoutError(key, err)
		}
		metrics.LockWait.WithLabelValues(key).Observe(time.Since(start).Seconds())
		held = append(held, s)
	}

	var once sync.Once
	return func() { once.Do(releaseHeld) }, nil
}

// With runs fn while holding keys.
func (k *Keyed) With(ctx context.Context, keys []string, fn func() error) error {
	release, err := k.Acquire(ctx, keys...)
	if err != nil {
		return err
	}
	defer release()
	return fn()
}
