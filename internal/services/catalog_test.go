package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/localnerve/ops-portal/internal/models"
	"github.com/localnerve/ops-portal/internal/store"
	"github.com/localnerve/ops-portal/internal/types"
	"github.com/localnerve/ops-portal/internal/validation"
)

func strPtr(s string) *string { return &s }

func intPtr(n int) *int { return &n }

func TestFactionCountsIncludeOffsets(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	faction, err := svc.CreateFaction(ctx, validation.FactionInput{
		Title:               "Union",
		Standing:            types.NewFlexNumber(3),
		JobsCompletedOffset: types.NewFlexNumber(2),
		JobsFailedOffset:    types.NewFlexNumber(1),
	})
	require.NoError(t, err)
	assert.Equal(t, "FRIENDLY", faction.StandingLabel)

	states := []string{"Complete", "Complete", "Failed", "Active"}
	for i, state := range states {
		_, err := svc.CreateJob(ctx, validation.JobInput{
			Name:      "Job " + string(rune('A'+i)),
			Rank:      types.NewFlexNumber(1),
			State:     strPtr(state),
			FactionID: strPtr(faction.ID),
		})
		require.NoError(t, err)
	}

	factions, err := svc.ListFactions(ctx)
	require.NoError(t, err)
	require.Len(t, factions, 1)
	assert.Equal(t, 4, factions[0].JobsCompleted)
	assert.Equal(t, 2, factions[0].JobsFailed)
}

func TestCreateJobRejectsUnknownFaction(t *testing.T) {
	svc, pub := newTestService(t)
	_, err := svc.CreateJob(context.Background(), validation.JobInput{
		Name:      "Escort",
		Rank:      types.NewFlexNumber(2),
		FactionID: strPtr("nope"),
	})
	assert.True(t, types.IsType(err, types.TypeValidation))
	assert.Empty(t, pub.eventTypes())
}

func TestDeleteFactionClearsJobs(t *testing.T) {
	svc, pub := newTestService(t)
	ctx := context.Background()

	faction, err := svc.CreateFaction(ctx, validation.FactionInput{Title: "Harrison Armory"})
	require.NoError(t, err)
	job, err := svc.CreateJob(ctx, validation.JobInput{Name: "Salvage", Rank: types.NewFlexNumber(1), FactionID: strPtr(faction.ID)})
	require.NoError(t, err)
	require.NotNil(t, job.Faction)

	pub.events = nil
	require.NoError(t, svc.DeleteFaction(ctx, faction.ID))

	got, err := svc.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Nil(t, got.FactionID)
	assert.Nil(t, got.Faction)
	assert.Equal(t, []string{string(store.Factions), string(store.Jobs)}, pub.eventTypes())

	assert.True(t, types.IsType(svc.DeleteFaction(ctx, faction.ID), types.TypeNotFound))
}

func TestProgressJobs(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	put(t, svc, store.Jobs, []models.Job{
		{ID: "a", Name: "A", Rank: 1, State: models.JobActive},
		{ID: "p", Name: "P", Rank: 1, State: models.JobPending},
		{ID: "c", Name: "C", Rank: 1, State: models.JobComplete},
	})

	progress, err := svc.ProgressJobs(ctx)
	require.NoError(t, err)
	assert.Equal(t, JobProgress{Activated: 1, Ignored: 1}, progress)

	jobs, err := svc.ListJobs(ctx)
	require.NoError(t, err)
	got := map[string]models.JobState{}
	for _, j := range jobs {
		got[j.ID] = j.State
	}
	assert.Equal(t, map[string]models.JobState{"a": models.JobIgnored, "p": models.JobActive, "c": models.JobComplete}, got)
}

func TestSetJobStateRejectsUnknownState(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	job, err := svc.CreateJob(ctx, validation.JobInput{Name: "Recon", Rank: types.NewFlexNumber(1)})
	require.NoError(t, err)
	assert.Equal(t, models.JobPending, job.State)

	_, err = svc.SetJobState(ctx, job.ID, "Abandoned")
	assert.True(t, types.IsType(err, types.TypeValidation))

	updated, err := svc.SetJobState(ctx, job.ID, "Active")
	require.NoError(t, err)
	assert.Equal(t, models.JobActive, updated.State)
}

func TestDeleteJobPrunesRelatedJobs(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	put(t, svc, store.Jobs, []models.Job{{ID: "j1", Name: "J1", Rank: 1, State: models.JobPending}})
	put(t, svc, store.Pilots, []models.Pilot{{ID: "alpha", Name: "Alpha", Active: true, RelatedJobs: []string{"j1"}}})

	require.NoError(t, svc.DeleteJob(ctx, "j1"))

	pilot, err := svc.GetPilot(ctx, "alpha")
	require.NoError(t, err)
	assert.Empty(t, pilot.RelatedJobs)
}

func TestProcureReserveAssignsAndDecrementsStock(t *testing.T) {
	svc, pub := newTestService(t)
	ctx := context.Background()
	fund(t, svc, map[string]int64{"alpha": 500, "bravo": 500})
	put(t, svc, store.Reserves, []models.Reserve{{ID: "r1", Name: "Extra Repairs", Price: 300, Stock: intPtr(1)}})

	result, err := svc.Purchase(ctx, ProcurementInput{
		ItemType:        "Reserve",
		ItemID:          "r1",
		ExpensePilots:   []string{"alpha", "bravo"},
		AssigneePilotID: "bravo",
	})
	require.NoError(t, err)
	require.NotNil(t, result.Stock)
	assert.Equal(t, 0, *result.Stock)
	require.NotNil(t, result.Assignee)
	assert.Equal(t, "bravo", result.Assignee.ID)
	require.Len(t, result.Assignee.Reserves, 1)
	assert.Equal(t, models.InReserve, result.Assignee.Reserves[0].DeploymentStatus)
	assert.Equal(t, int64(150), result.Payment.Share)

	assert.Equal(t, map[string]int64{"alpha": 350, "bravo": 350}, balances(t, svc))
	assert.Equal(t, []string{string(store.Reserves), string(store.Ledger), string(store.Pilots)}, pub.eventTypes())

	_, err = svc.Purchase(ctx, ProcurementInput{ItemType: ItemReserve, ItemID: "r1", ExpensePilots: []string{"alpha"}})
	assert.True(t, types.IsType(err, types.TypeConflict))
}

func TestProcureReserveNeedsAssigneeForSeveralPayers(t *testing.T) {
	svc, _ := newTestService(t)
	fund(t, svc, map[string]int64{"alpha": 500, "bravo": 500})
	put(t, svc, store.Reserves, []models.Reserve{{ID: "r1", Name: "Bombard", Price: 100}})

	_, err := svc.Purchase(context.Background(), ProcurementInput{
		ItemType:      ItemReserve,
		ItemID:        "r1",
		ExpensePilots: []string{"alpha", "bravo"},
	})
	assert.True(t, types.IsType(err, types.TypeValidation))
}

func TestProcureResupplyUnlimitedStock(t *testing.T) {
	svc, pub := newTestService(t)
	ctx := context.Background()
	fund(t, svc, map[string]int64{"alpha": 100})
	put(t, svc, store.StoreConfig, models.StoreConfig{ResupplyItems: []models.StoreItem{{ID: "s1", Name: "Ammo", Price: 40}}})

	result, err := svc.Purchase(ctx, ProcurementInput{ItemType: ItemResupply, ItemID: "s1", ExpensePilots: []string{"alpha"}})
	require.NoError(t, err)
	assert.Nil(t, result.Stock)
	assert.Nil(t, result.Assignee)
	assert.Equal(t, int64(60), balances(t, svc)["alpha"])
	assert.NotContains(t, pub.eventTypes(), string(store.StoreConfig))

	_, err = svc.Purchase(ctx, ProcurementInput{ItemType: "weapon", ItemID: "s1"})
	assert.True(t, types.IsType(err, types.TypeValidation))
	_, err = svc.Purchase(ctx, ProcurementInput{ItemType: ItemResupply, ItemID: "missing", ExpensePilots: []string{"alpha"}})
	assert.True(t, types.IsType(err, types.TypeNotFound))
}

func TestDeleteReserveHeldByPilot(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	put(t, svc, store.Reserves, []models.Reserve{{ID: "r1", Name: "Scouting"}, {ID: "r2", Name: "Bribes"}})
	put(t, svc, store.Pilots, []models.Pilot{{ID: "alpha", Name: "Alpha", Active: true,
		Reserves: []models.PilotReserve{{ReserveID: "r1", DeploymentStatus: models.InReserve}}}})

	err := svc.DeleteReserve(ctx, "r1")
	assert.True(t, types.IsType(err, types.TypeConflict))

	require.NoError(t, svc.DeleteReserve(ctx, "r2"))
	reserves, err := svc.ListReserves(ctx)
	require.NoError(t, err)
	require.Len(t, reserves, 1)
	assert.Equal(t, "r1", reserves[0].ID)
}

func TestMinorSlotLifecycle(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	fund(t, svc, map[string]int64{"alpha": 1000})
	put(t, svc, store.StoreConfig, models.StoreConfig{MinorSlotUnlockPrice: 200, MinorFacilityPrice: 100})

	slots, err := svc.ListMinorSlots(ctx)
	require.NoError(t, err)
	require.Len(t, slots, models.MinorSlotCount)
	assert.True(t, slots[0].Enabled)
	assert.False(t, slots[5].Enabled)

	_, err = svc.EnableMinorSlot(ctx, 2, payers("alpha"))
	assert.True(t, types.IsType(err, types.TypeValidation))
	_, err = svc.AssignMinorSlot(ctx, 6, AssignInput{MinorFacilityInput: validation.MinorFacilityInput{FacilityName: "Shrine"}, ExpensePilots: []string{"alpha"}})
	assert.True(t, types.IsType(err, types.TypeConflict))

	enabled, err := svc.EnableMinorSlot(ctx, 6, payers("alpha"))
	require.NoError(t, err)
	assert.True(t, enabled.Slot.Enabled)
	assert.Equal(t, int64(200), enabled.Payment.Cost)

	assigned, err := svc.AssignMinorSlot(ctx, 1, AssignInput{MinorFacilityInput: validation.MinorFacilityInput{FacilityName: "Shrine"}, ExpensePilots: []string{"alpha"}})
	require.NoError(t, err)
	assert.Equal(t, "Shrine", assigned.Slot.FacilityName)

	_, err = svc.AssignMinorSlot(ctx, 6, AssignInput{MinorFacilityInput: validation.MinorFacilityInput{FacilityName: "shrine"}, ExpensePilots: []string{"alpha"}})
	assert.True(t, types.IsType(err, types.TypeConflict))

	assert.Equal(t, int64(700), balances(t, svc)["alpha"])

	_, err = svc.DisableMinorSlot(ctx, 1)
	assert.True(t, types.IsType(err, types.TypeValidation))

	cleared, err := svc.ClearMinorSlot(ctx, 1)
	require.NoError(t, err)
	assert.True(t, cleared.Enabled)
	assert.Empty(t, cleared.FacilityName)

	disabled, err := svc.DisableMinorSlot(ctx, 6)
	require.NoError(t, err)
	assert.False(t, disabled.Enabled)

	_, err = svc.ClearMinorSlot(ctx, 7)
	assert.True(t, types.IsType(err, types.TypeNotFound))
}

func TestPurchaseUpgradeRequiresPurchasedFacility(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	fund(t, svc, map[string]int64{"alpha": 1000})
	put(t, svc, store.CoreMajor, []models.Facility{{
		ID: "bay", Name: "Repair Bay", Category: models.CategoryMajor, Price: 400,
		Upgrades: []models.FacilityUpgrade{{ID: "u1", Name: "Cranes", Price: 100, MaxPurchases: 1}},
	}})

	_, err := svc.PurchaseUpgrade(ctx, "bay", "u1", payers("alpha"))
	assert.True(t, types.IsType(err, types.TypeConflict))

	_, err = svc.PurchaseFacility(ctx, "bay", payers("alpha"))
	require.NoError(t, err)

	result, err := svc.PurchaseUpgrade(ctx, "bay", "u1", payers("alpha"))
	require.NoError(t, err)
	require.NotNil(t, result.Upgrade)
	assert.Equal(t, 1, result.Upgrade.PurchaseCount)

	_, err = svc.PurchaseUpgrade(ctx, "bay", "u1", payers("alpha"))
	assert.True(t, types.IsType(err, types.TypeConflict))
	_, err = svc.PurchaseUpgrade(ctx, "bay", "u9", payers("alpha"))
	assert.True(t, types.IsType(err, types.TypeNotFound))

	assert.Equal(t, int64(500), balances(t, svc)["alpha"])
}

func TestPreviewCostUsesSettingsModifier(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	settings := models.DefaultSettings()
	settings.FacilityCostModifier = 50
	put(t, svc, store.Settings, settings)

	preview, err := svc.PreviewCost(ctx, 200, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(300), preview.Cost)

	override := -20.0
	preview, err = svc.PreviewCost(ctx, 200, &override)
	require.NoError(t, err)
	assert.Equal(t, int64(150), preview.Cost)
}

func TestUpdateSettingsRedactsPasswords(t *testing.T) {
	svc, pub := newTestService(t)
	ctx := context.Background()

	updated, err := svc.UpdateSettings(ctx, validation.SettingsInput{
		PortalHeading: strPtr("Ops Portal"),
		AdminPassword: strPtr("hunter2"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Ops Portal", updated.PortalHeading)
	assert.NotEqual(t, "hunter2", updated.AdminPassword)

	full, err := svc.GetSettings(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, "hunter2", full.AdminPassword)
	assert.Equal(t, []string{string(store.Settings)}, pub.eventTypes())
}

func TestEmblemLifecycle(t *testing.T) {
	svc, pub := newTestService(t)
	ctx := context.Background()
	svg := []byte(`<svg xmlns="http://www.w3.org/2000/svg"></svg>`)

	name, err := svc.SaveEmblem(ctx, "crest", svg)
	require.NoError(t, err)
	assert.Equal(t, "crest.svg", name)

	_, err = svc.SaveEmblem(ctx, "crest.svg", svg)
	assert.True(t, types.IsType(err, types.TypeConflict))
	_, err = svc.SaveEmblem(ctx, "../etc", svg)
	assert.True(t, types.IsType(err, types.TypeValidation))
	_, err = svc.SaveEmblem(ctx, "plain", []byte("hello"))
	assert.True(t, types.IsType(err, types.TypeValidation))

	names, err := svc.ListEmblems(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"crest.svg"}, names)

	_, err = svc.CreateFaction(ctx, validation.FactionInput{Title: "Crested", Emblem: "crest.svg"})
	require.NoError(t, err)
	assert.True(t, types.IsType(svc.DeleteEmblem(ctx, "crest.svg"), types.TypeConflict))

	_, err = svc.CreateFaction(ctx, validation.FactionInput{Title: "Ghost", Emblem: "ghost.svg"})
	assert.True(t, types.IsType(err, types.TypeValidation))

	assert.Contains(t, pub.eventTypes(), EventEmblems)
}

func TestSplitPurchaseRejectedWhenOnePayerIsShort(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	fund(t, svc, map[string]int64{"alpha": 100, "bravo": 40})
	put(t, svc, store.CoreMajor, []models.Facility{{ID: "bay", Name: "Bay", Category: models.CategoryMajor, Price: 150}})

	before, err := svc.loadPilots(ctx)
	require.NoError(t, err)

	_, err = svc.PurchaseFacility(ctx, "bay", payers("alpha", "bravo"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "share of 75")

	after, err := svc.loadPilots(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestFactionCountsFollowJobState(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	put(t, svc, store.Factions, []models.Faction{{ID: "f", Title: "F", Standing: 2, JobsCompletedOffset: 3}})
	put(t, svc, store.Jobs, []models.Job{
		{ID: "j1", Name: "J1", Rank: 1, State: models.JobComplete, FactionID: strPtr("f")},
		{ID: "j2", Name: "J2", Rank: 1, State: models.JobComplete, FactionID: strPtr("f")},
	})

	factions, err := svc.ListFactions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, factions[0].JobsCompleted)

	_, err = svc.SetJobState(ctx, "j2", "Failed")
	require.NoError(t, err)

	factions, err = svc.ListFactions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, factions[0].JobsCompleted)
	assert.Equal(t, 1, factions[0].JobsFailed)
}
