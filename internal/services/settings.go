package services

import (
	"context"

	"github.com/localnerve/ops-portal/internal/models"
	"github.com/localnerve/ops-portal/internal/pricing"
	"github.com/localnerve/ops-portal/internal/store"
	"github.com/localnerve/ops-portal/internal/types"
	"github.com/localnerve/ops-portal/internal/validation"
)

// GetSettings returns the portal settings, without passwords when redacted.
func (s *Service) GetSettings(ctx context.Context, redacted bool) (models.Settings, error) {
	settings, err := s.loadSettings(ctx)
	if err != nil {
		return models.Settings{}, err
	}
	if redacted {
		return settings.Redacted(), nil
	}
	return settings, nil
}

// UpdateSettings merges a partial update into the current settings.
func (s *Service) UpdateSettings(ctx context.Context, in validation.SettingsInput) (models.Settings, error) {
	var out models.Settings
	err := s.mutate(ctx, "settings.update", []store.Collection{store.Settings}, func(m *mutation) error {
		current, err := s.loadSettings(ctx)
		if err != nil {
			return err
		}
		next, err := validation.Settings(in, current)
		if err != nil {
			return err
		}
		m.stage(store.Settings, next)
		out = next.Redacted()
		return nil
	})
	return out, err
}

// CostPreview is a price with the facility cost modifier applied.
type CostPreview struct {
	Price    int64   `json:"price"`
	Modifier float64 `json:"modifier"`
	Cost     int64   `json:"cost"`
}

// PreviewCost applies modifier, or the current settings modifier when nil, to price.
func (s *Service) PreviewCost(ctx context.Context, price int64, modifier *float64) (CostPreview, error) {
	if price < 0 {
		return CostPreview{}, types.ValidationError("price must be 0 or greater")
	}
	m := 0.0
	if modifier != nil {
		m = *modifier
	} else {
		settings, err := s.loadSettings(ctx)
		if err != nil {
			return CostPreview{}, err
		}
		m = settings.FacilityCostModifier
	}
	m = pricing.ClampModifier(m)
	return CostPreview{Price: price, Modifier: m, Cost: pricing.ApplyCostModifier(price, m)}, nil
}
