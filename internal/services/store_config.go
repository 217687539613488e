package services

import (
	"context"

	"github.com/localnerve/ops-portal/internal/models"
	"github.com/localnerve/ops-portal/internal/store"
	"github.com/localnerve/ops-portal/internal/validation"
)

// GetStoreConfig returns the resupply catalog and minor facility prices.
func (s *Service) GetStoreConfig(ctx context.Context) (models.StoreConfig, error) {
	return s.loadStoreConfig(ctx)
}

// UpdateStoreConfig replaces the store configuration. New items receive IDs.
func (s *Service) UpdateStoreConfig(ctx context.Context, in validation.StoreConfigInput) (models.StoreConfig, error) {
	var out models.StoreConfig
	err := s.mutate(ctx, "store-config.update", []store.Collection{store.StoreConfig}, func(m *mutation) error {
		cfg, err := validation.StoreConfig(in)
		if err != nil {
			return err
		}
		for i := range cfg.ResupplyItems {
			if cfg.ResupplyItems[i].ID == "" {
				cfg.ResupplyItems[i].ID = s.newID()
			}
		}
		m.stage(store.StoreConfig, cfg)
		out = cfg
		return nil
	})
	return out, err
}
