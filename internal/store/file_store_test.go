package store

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/localnerve/ops-portal/internal/logging"
	"github.com/localnerve/ops-portal/internal/models"
)

func newFileStore(t *testing.T) *FileStore {
	t.Helper()
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	return s
}

func TestFileStoreAbsentCollectionYieldsDefault(t *testing.T) {
	s := newFileStore(t)
	ctx := context.Background()

	_, err := s.Read(ctx, Jobs)
	assert.ErrorIs(t, err, ErrNotExist)

	jobs, err := Load(ctx, s, Jobs, []models.Job{})
	require.NoError(t, err)
	assert.NotNil(t, jobs)
	assert.Empty(t, jobs)

	settings, err := Load(ctx, s, Settings, models.DefaultSettings())
	require.NoError(t, err)
	assert.Equal(t, models.DefaultSettings(), settings)
}

func TestFileStoreWriteThenReadIsIdempotent(t *testing.T) {
	s := newFileStore(t)
	ctx := context.Background()

	faction := "f-1"
	jobs := []models.Job{{ID: "j-1", Name: "Escort", Rank: 2, State: models.JobActive, FactionID: &faction}}
	require.NoError(t, Save(ctx, s, Jobs, jobs))

	first, err := Load(ctx, s, Jobs, []models.Job{})
	require.NoError(t, err)
	second, err := Load(ctx, s, Jobs, []models.Job{})
	require.NoError(t, err)

	assert.Equal(t, jobs, first)
	assert.Equal(t, first, second)
}

func TestFileStoreSettingsMergeWithDefaults(t *testing.T) {
	s := newFileStore(t)
	ctx := context.Background()

	require.NoError(t, s.Write(ctx, Settings, []byte(`{"portalHeading":"NORTHERN OPS","colorScheme":"red"}`)))

	settings, err := Load(ctx, s, Settings, models.DefaultSettings())
	require.NoError(t, err)
	assert.Equal(t, "NORTHERN OPS", settings.PortalHeading)
	assert.Equal(t, "red", settings.ColorScheme)
	assert.Equal(t, models.DefaultSettings().AdminPassword, settings.AdminPassword)
	assert.True(t, settings.ShowStore)
}

func TestFileStoreWriteLeavesNoTempFiles(t *testing.T) {
	s := newFileStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, Save(ctx, s, Ledger, []models.Transaction{{ID: "t", Amount: int64(i)}}))
	}

	entries, err := os.ReadDir(s.Dir())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "manna.json", entries[0].Name())
}

func TestFileStoreConcurrentReadsSeeWholeDocuments(t *testing.T) {
	s := newFileStore(t)
	ctx := context.Background()
	require.NoError(t, Save(ctx, s, Pilots, []models.Pilot{{ID: "p-0"}}))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = Save(ctx, s, Pilots, []models.Pilot{{ID: "p-1"}, {ID: "p-2"}})
		}()
		go func() {
			defer wg.Done()
			_, err := Load(ctx, s, Pilots, []models.Pilot{})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
}

func TestFileStoreCorruptDocumentIsAnError(t *testing.T) {
	s := newFileStore(t)
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), "jobs.json"), []byte("{not json"), 0o644))

	_, err := Load(context.Background(), s, Jobs, []models.Job{})
	assert.Error(t, err)
}

func TestSeedOnlyWritesAbsentCollections(t *testing.T) {
	s := newFileStore(t)
	ctx := context.Background()
	require.NoError(t, s.Write(ctx, Reserves, []byte(`[]`)))

	fsys := fstest.MapFS{
		"seed/reserves.json":               {Data: []byte(`[{"id":"r-1","name":"Seeded"}]`)},
		"seed/facilities-minor-slots.json": {Data: []byte(`[{"slotNumber":1,"enabled":true}]`)},
		"seed/unknown.json":                {Data: []byte(`{}`)},
	}

	seeded, err := SeedFrom(ctx, s, fsys, "seed", logging.Discard())
	require.NoError(t, err)
	assert.Equal(t, []Collection{MinorSlots}, seeded)

	reserves, err := Load(ctx, s, Reserves, []models.Reserve{})
	require.NoError(t, err)
	assert.Empty(t, reserves)
}

func TestSeedEmbeddedDocumentsDecode(t *testing.T) {
	s := newFileStore(t)
	ctx := context.Background()

	_, err := Seed(ctx, s, logging.Discard())
	require.NoError(t, err)

	slots, err := Load(ctx, s, MinorSlots, []models.MinorSlot{})
	require.NoError(t, err)
	assert.Len(t, slots, models.MinorSlotCount)

	facilities, err := Load(ctx, s, CoreMajor, []models.Facility{})
	require.NoError(t, err)
	assert.NotEmpty(t, facilities)

	cfg, err := Load(ctx, s, StoreConfig, models.StoreConfig{})
	require.NoError(t, err)
	assert.NotEmpty(t, cfg.ResupplyItems)
}
