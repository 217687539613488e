package services

import (
	"context"
	"slices"

	"github.com/localnerve/ops-portal/internal/models"
	"github.com/localnerve/ops-portal/internal/store"
	"github.com/localnerve/ops-portal/internal/types"
	"github.com/localnerve/ops-portal/internal/validation"
)

// ListReserves returns the reserve catalog.
func (s *Service) ListReserves(ctx context.Context) ([]models.Reserve, error) {
	return s.loadReserves(ctx)
}

func findReserve(reserves []models.Reserve, id string) int {
	return slices.IndexFunc(reserves, func(r models.Reserve) bool { return r.ID == id })
}

// CreateReserve validates and appends a catalog reserve.
func (s *Service) CreateReserve(ctx context.Context, in validation.ReserveInput) (models.Reserve, error) {
	var out models.Reserve
	err := s.mutate(ctx, "reserve.create", []store.Collection{store.Reserves}, func(m *mutation) error {
		reserve, err := validation.Reserve(in)
		if err != nil {
			return err
		}
		reserves, err := s.loadReserves(ctx)
		if err != nil {
			return err
		}
		reserve.ID = s.newID()
		m.stage(store.Reserves, append(reserves, reserve))
		out = reserve
		return nil
	})
	return out, err
}

// UpdateReserve replaces every field of a reserve except its ID.
func (s *Service) UpdateReserve(ctx context.Context, id string, in validation.ReserveInput) (models.Reserve, error) {
	var out models.Reserve
	err := s.mutate(ctx, "reserve.update", []store.Collection{store.Reserves}, func(m *mutation) error {
		reserves, err := s.loadReserves(ctx)
		if err != nil {
			return err
		}
		i := findReserve(reserves, id)
		if i < 0 {
			return types.NotFoundError("reserve %s not found", id)
		}
		reserve, err := validation.Reserve(in)
		if err != nil {
			return err
		}
		reserve.ID = id
		reserves[i] = reserve
		m.stage(store.Reserves, reserves)
		out = reserve
		return nil
	})
	return out, err
}

// DeleteReserve removes a reserve nobody holds.
func (s *Service) DeleteReserve(ctx context.Context, id string) error {
	return s.mutate(ctx, "reserve.delete", []store.Collection{store.Reserves, store.Pilots}, func(m *mutation) error {
		reserves, err := s.loadReserves(ctx)
		if err != nil {
			return err
		}
		i := findReserve(reserves, id)
		if i < 0 {
			return types.NotFoundError("reserve %s not found", id)
		}
		pilots, err := s.loadPilots(ctx)
		if err != nil {
			return err
		}
		var holders []string
		for _, p := range pilots {
			if slices.ContainsFunc(p.Reserves, func(r models.PilotReserve) bool { return r.ReserveID == id }) {
				holders = append(holders, pilotLabel(p))
			}
		}
		if len(holders) > 0 {
			return types.ConflictError("reserve %s is held by %d pilot(s): %v", id, len(holders), holders)
		}
		m.stage(store.Reserves, slices.Delete(reserves, i, i+1))
		return nil
	})
}
