package services

import (
	"context"
	"slices"

	"github.com/localnerve/ops-portal/internal/models"
	"github.com/localnerve/ops-portal/internal/store"
	"github.com/localnerve/ops-portal/internal/types"
	"github.com/localnerve/ops-portal/internal/validation"
)

// ListPilots returns every pilot with derived balance and resolved reserves.
func (s *Service) ListPilots(ctx context.Context) ([]models.PilotView, error) {
	pilots, err := s.loadPilots(ctx)
	if err != nil {
		return nil, err
	}
	transactions, err := s.loadLedger(ctx)
	if err != nil {
		return nil, err
	}
	reserves, err := s.loadReserves(ctx)
	if err != nil {
		return nil, err
	}
	return enrichPilots(pilots, transactions, reserves), nil
}

// GetPilot returns one enriched pilot.
func (s *Service) GetPilot(ctx context.Context, id string) (models.PilotView, error) {
	views, err := s.ListPilots(ctx)
	if err != nil {
		return models.PilotView{}, err
	}
	for _, v := range views {
		if v.ID == id {
			return v, nil
		}
	}
	return models.PilotView{}, types.NotFoundError("pilot %s not found", id)
}

func findPilot(pilots []models.Pilot, id string) int {
	return slices.IndexFunc(pilots, func(p models.Pilot) bool { return p.ID == id })
}

// pilotRefs loads everything a pilot may reference.
func (s *Service) pilotRefs(ctx context.Context) (validation.Refs, []models.Transaction, []models.Reserve, error) {
	jobs, err := s.loadJobs(ctx)
	if err != nil {
		return validation.Refs{}, nil, nil, err
	}
	transactions, err := s.loadLedger(ctx)
	if err != nil {
		return validation.Refs{}, nil, nil, err
	}
	reserves, err := s.loadReserves(ctx)
	if err != nil {
		return validation.Refs{}, nil, nil, err
	}
	refs := validation.Refs{
		Jobs:         validation.IDsOf(jobs, func(j models.Job) string { return j.ID }),
		Transactions: validation.IDsOf(transactions, func(t models.Transaction) string { return t.ID }),
		Reserves:     validation.IDsOf(reserves, func(r models.Reserve) string { return r.ID }),
	}
	return refs, transactions, reserves, nil
}

var pilotLocks = []store.Collection{store.Pilots, store.Jobs, store.Ledger, store.Reserves}

// CreatePilot validates and appends a pilot.
func (s *Service) CreatePilot(ctx context.Context, in validation.PilotInput) (models.PilotView, error) {
	var out models.PilotView
	err := s.mutate(ctx, "pilot.create", pilotLocks, func(m *mutation) error {
		refs, transactions, reserves, err := s.pilotRefs(ctx)
		if err != nil {
			return err
		}
		pilot, err := validation.Pilot(in, refs)
		if err != nil {
			return err
		}
		pilots, err := s.loadPilots(ctx)
		if err != nil {
			return err
		}
		pilot.ID = s.newID()
		pilots = append(pilots, pilot)
		m.stage(store.Pilots, pilots)

		out = enrichPilots([]models.Pilot{pilot}, transactions, reserves)[0]
		return nil
	})
	return out, err
}

// UpdatePilot replaces every field of a pilot except its ID.
func (s *Service) UpdatePilot(ctx context.Context, id string, in validation.PilotInput) (models.PilotView, error) {
	var out models.PilotView
	err := s.mutate(ctx, "pilot.update", pilotLocks, func(m *mutation) error {
		pilots, err := s.loadPilots(ctx)
		if err != nil {
			return err
		}
		i := findPilot(pilots, id)
		if i < 0 {
			return types.NotFoundError("pilot %s not found", id)
		}
		refs, transactions, reserves, err := s.pilotRefs(ctx)
		if err != nil {
			return err
		}
		pilot, err := validation.Pilot(in, refs)
		if err != nil {
			return err
		}
		pilot.ID = id
		pilots[i] = pilot
		m.stage(store.Pilots, pilots)

		out = enrichPilots([]models.Pilot{pilot}, transactions, reserves)[0]
		return nil
	})
	return out, err
}

// DeletePilot removes a pilot. Ledger entries it referenced stay in the ledger.
func (s *Service) DeletePilot(ctx context.Context, id string) error {
	return s.mutate(ctx, "pilot.delete", []store.Collection{store.Pilots}, func(m *mutation) error {
		pilots, err := s.loadPilots(ctx)
		if err != nil {
			return err
		}
		i := findPilot(pilots, id)
		if i < 0 {
			return types.NotFoundError("pilot %s not found", id)
		}
		m.stage(store.Pilots, slices.Delete(pilots, i, i+1))
		return nil
	})
}

// SetReserveStatus changes the deployment status of the reserve at index in a pilot's reserves.
func (s *Service) SetReserveStatus(ctx context.Context, pilotID string, index int, status string) (models.PilotView, error) {
	var out models.PilotView
	err := s.mutate(ctx, "pilot.reserve", []store.Collection{store.Pilots}, func(m *mutation) error {
		next, err := validation.DeploymentStatus(status)
		if err != nil {
			return err
		}
		pilots, err := s.loadPilots(ctx)
		if err != nil {
			return err
		}
		i := findPilot(pilots, pilotID)
		if i < 0 {
			return types.NotFoundError("pilot %s not found", pilotID)
		}
		if index < 0 || index >= len(pilots[i].Reserves) {
			return types.NotFoundError("pilot %s has no reserve at index %d", pilotID, index)
		}
		pilots[i].Reserves[index].DeploymentStatus = next
		m.stage(store.Pilots, pilots)

		transactions, err := s.loadLedger(ctx)
		if err != nil {
			return err
		}
		reserves, err := s.loadReserves(ctx)
		if err != nil {
			return err
		}
		out = enrichPilots([]models.Pilot{pilots[i]}, transactions, reserves)[0]
		return nil
	})
	return out, err
}

// Operation progress actions.
const (
	ProgressAdvance = "advance"
	ProgressReset   = "reset"
)

// ProgressOperation advances (capped) or resets the operation progress of every active pilot.
// It returns the number of pilots changed.
func (s *Service) ProgressOperation(ctx context.Context, action string) (int, error) {
	if action == "" {
		action = ProgressAdvance
	}
	if action != ProgressAdvance && action != ProgressReset {
		return 0, types.ValidationError("action must be %q or %q", ProgressAdvance, ProgressReset)
	}

	changed := 0
	err := s.mutate(ctx, "pilot.operation", []store.Collection{store.Pilots}, func(m *mutation) error {
		pilots, err := s.loadPilots(ctx)
		if err != nil {
			return err
		}
		for i := range pilots {
			if !pilots[i].Active {
				continue
			}
			next := 0
			if action == ProgressAdvance {
				next = min(pilots[i].PersonalOperationProgress+1, models.MaxOperationProgress)
			}
			if next != pilots[i].PersonalOperationProgress {
				pilots[i].PersonalOperationProgress = next
				changed++
			}
		}
		if changed > 0 {
			m.stage(store.Pilots, pilots)
		}
		return nil
	})
	return changed, err
}
