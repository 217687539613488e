package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/localnerve/ops-portal/internal/logging"
	"github.com/localnerve/ops-portal/internal/models"
	"github.com/localnerve/ops-portal/internal/testutil"
)

// TestSQLStoreWithContainers runs the store against real Postgres and MariaDB servers.
func TestSQLStoreWithContainers(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	starters := map[string]func(context.Context) (*testutil.DBContainer, error){
		"postgres": testutil.StartPostgres,
		"mariadb":  testutil.StartMariaDB,
	}
	for name, start := range starters {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			db, err := start(ctx)
			require.NoError(t, err)
			t.Cleanup(func() {
				if err := db.Terminate(context.Background()); err != nil {
					t.Logf("Failed to terminate %s container: %v", name, err)
				}
			})

			s, err := Open(db.Config)
			require.NoError(t, err)
			t.Cleanup(func() { _ = s.Close() })

			require.NoError(t, s.Ping(ctx))

			seeded, err := Seed(ctx, s, logging.Discard())
			require.NoError(t, err)
			assert.NotEmpty(t, seeded)

			slots, err := Load(ctx, s, MinorSlots, []models.MinorSlot{})
			require.NoError(t, err)
			assert.Len(t, slots, models.MinorSlotCount)

			settings := models.DefaultSettings()
			settings.PortalHeading = "INTEGRATION"
			require.NoError(t, Save(ctx, s, Settings, settings))
			require.NoError(t, Save(ctx, s, Settings, settings))

			loaded, err := Load(ctx, s, Settings, models.DefaultSettings())
			require.NoError(t, err)
			assert.Equal(t, settings, loaded)

			if sqlStore, ok := s.(*SQLStore); ok {
				version, err := sqlStore.Version(ctx, Settings)
				require.NoError(t, err)
				assert.Equal(t, uint64(2), version)
			}
		})
	}
}
