package services

import (
	"context"
	"slices"

	"github.com/localnerve/ops-portal/internal/models"
	"github.com/localnerve/ops-portal/internal/store"
	"github.com/localnerve/ops-portal/internal/types"
	"github.com/localnerve/ops-portal/internal/validation"
)

// ListFactions returns every faction with derived job counts.
func (s *Service) ListFactions(ctx context.Context) ([]models.FactionView, error) {
	factions, err := s.loadFactions(ctx)
	if err != nil {
		return nil, err
	}
	jobs, err := s.loadJobs(ctx)
	if err != nil {
		return nil, err
	}
	return enrichFactions(factions, jobs), nil
}

func findFaction(factions []models.Faction, id string) int {
	return slices.IndexFunc(factions, func(f models.Faction) bool { return f.ID == id })
}

// CreateFaction validates and appends a faction.
func (s *Service) CreateFaction(ctx context.Context, in validation.FactionInput) (models.FactionView, error) {
	var out models.FactionView
	err := s.mutate(ctx, "faction.create", []store.Collection{store.Factions}, func(m *mutation) error {
		faction, err := validation.Faction(in, validation.Refs{EmblemExists: s.emblemExists})
		if err != nil {
			return err
		}
		factions, err := s.loadFactions(ctx)
		if err != nil {
			return err
		}
		faction.ID = s.newID()
		factions = append(factions, faction)
		m.stage(store.Factions, factions)

		out = enrichFactions([]models.Faction{faction}, nil)[0]
		return nil
	})
	return out, err
}

// UpdateFaction replaces every field of a faction except its ID.
func (s *Service) UpdateFaction(ctx context.Context, id string, in validation.FactionInput) (models.FactionView, error) {
	var out models.FactionView
	err := s.mutate(ctx, "faction.update", []store.Collection{store.Factions}, func(m *mutation) error {
		factions, err := s.loadFactions(ctx)
		if err != nil {
			return err
		}
		i := findFaction(factions, id)
		if i < 0 {
			return types.NotFoundError("faction %s not found", id)
		}
		faction, err := validation.Faction(in, validation.Refs{EmblemExists: s.emblemExists})
		if err != nil {
			return err
		}
		faction.ID = id
		factions[i] = faction
		m.stage(store.Factions, factions)

		jobs, err := s.loadJobs(ctx)
		if err != nil {
			return err
		}
		out = enrichFactions([]models.Faction{faction}, jobs)[0]
		return nil
	})
	return out, err
}

// DeleteFaction removes a faction and clears it from every job that referenced it.
func (s *Service) DeleteFaction(ctx context.Context, id string) error {
	return s.mutate(ctx, "faction.delete", []store.Collection{store.Factions, store.Jobs}, func(m *mutation) error {
		factions, err := s.loadFactions(ctx)
		if err != nil {
			return err
		}
		i := findFaction(factions, id)
		if i < 0 {
			return types.NotFoundError("faction %s not found", id)
		}
		m.stage(store.Factions, slices.Delete(factions, i, i+1))

		jobs, err := s.loadJobs(ctx)
		if err != nil {
			return err
		}
		cleared := false
		for k := range jobs {
			if jobs[k].FactionID != nil && *jobs[k].FactionID == id {
				jobs[k].FactionID = nil
				cleared = true
			}
		}
		if cleared {
			m.stage(store.Jobs, jobs)
		}
		return nil
	})
}
