package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/localnerve/ops-portal/internal/broadcast"
	"github.com/localnerve/ops-portal/internal/locks"
	"github.com/localnerve/ops-portal/internal/logging"
	"github.com/localnerve/ops-portal/internal/models"
	"github.com/localnerve/ops-portal/internal/store"
	"github.com/localnerve/ops-portal/internal/types"
	"github.com/localnerve/ops-portal/internal/validation"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []broadcast.Event
}

func (p *recordingPublisher) Publish(events ...broadcast.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
}

func (p *recordingPublisher) eventTypes() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

// failingStore fails every write of one collection.
type failingStore struct {
	store.Store
	failOn store.Collection
}

func (f *failingStore) Write(ctx context.Context, c store.Collection, data []byte) error {
	if c == f.failOn {
		return errors.New("disk full")
	}
	return f.Store.Write(ctx, c, data)
}

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, configure ...func(*Options)) (*Service, *recordingPublisher) {
	t.Helper()
	fs, err := store.NewFileStore(t.TempDir())
	require.NoError(t, err)

	var n atomic.Int64
	pub := &recordingPublisher{}
	opts := Options{
		Store:     fs,
		Locks:     locks.New(time.Second),
		Publisher: pub,
		EmblemDir: t.TempDir(),
		Logger:    logging.Discard(),
		Now:       func() time.Time { return testNow },
		NewID:     func() string { return fmt.Sprintf("id-%d", n.Add(1)) },
	}
	for _, fn := range configure {
		fn(&opts)
	}
	svc, err := New(opts)
	require.NoError(t, err)
	return svc, pub
}

func put[T any](t *testing.T, svc *Service, c store.Collection, v T) {
	t.Helper()
	require.NoError(t, store.Save(context.Background(), svc.Store(), c, v))
}

// fund gives each pilot ID a starting transaction of the given amount.
func fund(t *testing.T, svc *Service, balances map[string]int64, inactive ...string) {
	t.Helper()
	var pilots []models.Pilot
	var ledger []models.Transaction
	for _, id := range []string{"alpha", "bravo", "charlie"} {
		amount, ok := balances[id]
		if !ok {
			continue
		}
		tx := models.Transaction{ID: "seed-" + id, Date: "2026-01-01T00:00:00.000Z", Amount: amount, Description: "Starting funds"}
		ledger = append(ledger, tx)
		p := models.Pilot{ID: id, Name: id, Callsign: id, Active: true, PersonalTransactions: []string{tx.ID}}
		for _, off := range inactive {
			if off == id {
				p.Active = false
			}
		}
		pilots = append(pilots, p)
	}
	put(t, svc, store.Ledger, ledger)
	put(t, svc, store.Pilots, pilots)
}

func balances(t *testing.T, svc *Service) map[string]int64 {
	t.Helper()
	views, err := svc.ListPilots(context.Background())
	require.NoError(t, err)
	out := make(map[string]int64, len(views))
	for _, v := range views {
		out[v.ID] = v.Balance
	}
	return out
}

func payers(ids ...string) PurchaseInput {
	return PurchaseInput{ExpensePilots: ids}
}

func TestNewRequiresStore(t *testing.T) {
	_, err := New(Options{})
	assert.Error(t, err)
}

func TestPurchaseFacilitySplitsModifiedCost(t *testing.T) {
	svc, pub := newTestService(t)
	ctx := context.Background()

	fund(t, svc, map[string]int64{"alpha": 1000, "bravo": 600})
	put(t, svc, store.CoreMajor, []models.Facility{{ID: "hangar", Name: "Hangar", Category: models.CategoryMajor, Price: 1000}})
	settings := models.DefaultSettings()
	settings.FacilityCostModifier = -30
	put(t, svc, store.Settings, settings)

	result, err := svc.PurchaseFacility(ctx, "hangar", payers("alpha", "bravo"))
	require.NoError(t, err)

	assert.True(t, result.Facility.Purchased)
	assert.Equal(t, int64(700), result.Payment.Cost)
	assert.Equal(t, int64(350), result.Payment.Share)
	require.NotNil(t, result.Payment.Transaction)
	assert.Equal(t, int64(-350), result.Payment.Transaction.Amount)

	assert.Equal(t, map[string]int64{"alpha": 650, "bravo": 250}, balances(t, svc))

	ledger, err := svc.loadLedger(ctx)
	require.NoError(t, err)
	assert.Len(t, ledger, 3)

	assert.Equal(t, []string{string(store.CoreMajor), string(store.Ledger), string(store.Pilots)}, pub.eventTypes())
}

func TestPurchaseFacilityInsufficientFundsChangesNothing(t *testing.T) {
	svc, pub := newTestService(t)
	ctx := context.Background()

	fund(t, svc, map[string]int64{"alpha": 1000, "bravo": 100})
	put(t, svc, store.CoreMajor, []models.Facility{{ID: "hangar", Name: "Hangar", Category: models.CategoryMajor, Price: 1000}})

	_, err := svc.PurchaseFacility(ctx, "hangar", payers("alpha", "bravo"))
	require.Error(t, err)
	assert.True(t, types.IsType(err, types.TypeConflict))
	assert.Contains(t, err.Error(), "bravo")

	facilities, err := svc.ListFacilities(ctx)
	require.NoError(t, err)
	assert.False(t, facilities[0].Purchased)
	assert.Equal(t, map[string]int64{"alpha": 1000, "bravo": 100}, balances(t, svc))
	assert.Empty(t, pub.eventTypes())
}

func TestPurchaseFacilityRejections(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	fund(t, svc, map[string]int64{"alpha": 5000, "bravo": 5000}, "bravo")
	put(t, svc, store.CoreMajor, []models.Facility{
		{ID: "owned", Name: "Command Center", Category: models.CategoryCore, Purchased: true},
		{ID: "free", Name: "Shed", Category: models.CategoryMajor, Price: 0},
		{ID: "lab", Name: "Lab", Category: models.CategoryMajor, Price: 500},
	})

	tests := []struct {
		name     string
		id       string
		input    PurchaseInput
		wantType string
	}{
		{"unknown facility", "nope", payers("alpha"), types.TypeNotFound},
		{"already purchased", "owned", payers("alpha"), types.TypeConflict},
		{"no price", "free", payers("alpha"), types.TypeValidation},
		{"no payers", "lab", payers(), types.TypeValidation},
		{"unknown payer", "lab", payers("zulu"), types.TypeValidation},
		{"inactive payer", "lab", payers("bravo"), types.TypeValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.PurchaseFacility(ctx, tt.id, tt.input)
			require.Error(t, err)
			assert.True(t, types.IsType(err, tt.wantType), "got %v", err)
		})
	}
}

func TestConcurrentPurchasesSerialize(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	fund(t, svc, map[string]int64{"alpha": 1000})
	put(t, svc, store.CoreMajor, []models.Facility{
		{ID: "f1", Name: "Foundry", Category: models.CategoryMajor, Price: 700},
		{ID: "f2", Name: "Forge", Category: models.CategoryMajor, Price: 700},
	})

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, id := range []string{"f1", "f2"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = svc.PurchaseFacility(ctx, id, payers("alpha"))
		}()
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.True(t, types.IsType(err, types.TypeConflict), "got %v", err)
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, int64(300), balances(t, svc)["alpha"])
}

func TestMutationLockTimeout(t *testing.T) {
	svc, pub := newTestService(t, func(o *Options) {
		o.Locks = locks.New(20 * time.Millisecond)
	})
	ctx := context.Background()
	fund(t, svc, map[string]int64{"alpha": 10})

	release, err := svc.locks.Acquire(ctx, string(store.Pilots))
	require.NoError(t, err)
	defer release()

	_, err = svc.ProgressOperation(ctx, ProgressAdvance)
	require.Error(t, err)
	assert.True(t, types.IsType(err, types.TypeLockTimeout))
	assert.Empty(t, pub.eventTypes())
}

func TestFailedWriteRestoresEarlierCollections(t *testing.T) {
	var inner store.Store
	svc, pub := newTestService(t, func(o *Options) {
		inner = o.Store
		o.Store = &failingStore{Store: o.Store, failOn: store.Pilots}
	})
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, inner, store.Pilots, []models.Pilot{{ID: "alpha", Name: "Alpha", Active: true}}))

	_, err := svc.CreateTransaction(ctx, validation.TransactionInput{Amount: types.NewFlexNumber(250), Description: "Bounty"})
	require.Error(t, err)
	assert.True(t, types.IsType(err, types.TypeStorage))

	ledger, err := store.Load(ctx, inner, store.Ledger, []models.Transaction{})
	require.NoError(t, err)
	assert.Empty(t, ledger)
	assert.Empty(t, pub.eventTypes())
}

func TestCreateTransactionDefaultsToActivePilots(t *testing.T) {
	svc, pub := newTestService(t)
	ctx := context.Background()
	fund(t, svc, map[string]int64{"alpha": 100, "bravo": 100, "charlie": 100}, "charlie")

	entry, err := svc.CreateTransaction(ctx, validation.TransactionInput{Amount: types.NewFlexNumber(500), Description: "Mission pay"})
	require.NoError(t, err)
	assert.Equal(t, 2, entry.PilotCount)
	assert.Equal(t, int64(1000), entry.TotalAmount)
	assert.Equal(t, "2026-03-01T12:00:00.000Z", entry.Date)

	assert.Equal(t, map[string]int64{"alpha": 600, "bravo": 600, "charlie": 100}, balances(t, svc))
	assert.Equal(t, []string{string(store.Ledger), string(store.Pilots)}, pub.eventTypes())
}

func TestCreateTransactionExplicitPilots(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	fund(t, svc, map[string]int64{"alpha": 0, "bravo": 0})

	ids := types.FlexList[string]{"bravo", "bravo"}
	entry, err := svc.CreateTransaction(ctx, validation.TransactionInput{Amount: types.NewFlexNumber(-40), PilotIDs: &ids})
	require.NoError(t, err)
	assert.Equal(t, []string{"bravo"}, entry.PilotIDs)
	assert.Equal(t, map[string]int64{"alpha": 0, "bravo": -40}, balances(t, svc))

	empty := types.FlexList[string]{}
	_, err = svc.CreateTransaction(ctx, validation.TransactionInput{Amount: types.NewFlexNumber(10), PilotIDs: &empty})
	assert.True(t, types.IsType(err, types.TypeValidation))

	unknown := types.FlexList[string]{"zulu"}
	_, err = svc.CreateTransaction(ctx, validation.TransactionInput{Amount: types.NewFlexNumber(10), PilotIDs: &unknown})
	assert.True(t, types.IsType(err, types.TypeValidation))
	assert.Contains(t, err.Error(), "zulu")
}

func TestCreateTransactionWithoutActivePilots(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.CreateTransaction(context.Background(), validation.TransactionInput{Amount: types.NewFlexNumber(10)})
	assert.True(t, types.IsType(err, types.TypeValidation))
}

func TestCreateTransactionForInactivePilotStaysOutOfFeed(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	fund(t, svc, map[string]int64{"alpha": 100, "charlie": 0}, "charlie")

	ids := types.FlexList[string]{"charlie"}
	entry, err := svc.CreateTransaction(ctx, validation.TransactionInput{Amount: types.NewFlexNumber(75), Description: "Back pay", PilotIDs: &ids})
	require.NoError(t, err)
	assert.NotEmpty(t, entry.ID)
	assert.Equal(t, "Back pay", entry.Description)
	assert.Equal(t, 0, entry.PilotCount)
	assert.Empty(t, entry.PilotIDs)
	assert.Equal(t, int64(75), balances(t, svc)["charlie"])

	view, err := svc.Manna(ctx)
	require.NoError(t, err)
	require.Len(t, view.Transactions, 1)
	assert.Equal(t, "seed-alpha", view.Transactions[0].ID)
	assert.Equal(t, int64(100), view.TotalBalance)
}

func TestDeleteTransactionPrunesReferences(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	fund(t, svc, map[string]int64{"alpha": 100, "bravo": 100})

	entry, err := svc.CreateTransaction(ctx, validation.TransactionInput{Amount: types.NewFlexNumber(50)})
	require.NoError(t, err)

	pruned, err := svc.DeleteTransaction(ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, pruned)

	pilots, err := svc.loadPilots(ctx)
	require.NoError(t, err)
	for _, p := range pilots {
		assert.NotContains(t, p.PersonalTransactions, entry.ID)
	}
	assert.Equal(t, map[string]int64{"alpha": 100, "bravo": 100}, balances(t, svc))

	_, err = svc.DeleteTransaction(ctx, entry.ID)
	assert.True(t, types.IsType(err, types.TypeNotFound))
}

func TestMannaViewTotals(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	fund(t, svc, map[string]int64{"alpha": 100, "bravo": 200})

	view, err := svc.Manna(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(300), view.TotalBalance)
	assert.Len(t, view.Transactions, 2)
}

func TestProgressOperationCapsAndResets(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	put(t, svc, store.Pilots, []models.Pilot{
		{ID: "alpha", Name: "Alpha", Active: true, PersonalOperationProgress: 2},
		{ID: "bravo", Name: "Bravo", Active: false, PersonalOperationProgress: 1},
	})

	for range 3 {
		_, err := svc.ProgressOperation(ctx, ProgressAdvance)
		require.NoError(t, err)
	}
	pilots, err := svc.loadPilots(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.MaxOperationProgress, pilots[0].PersonalOperationProgress)
	assert.Equal(t, 1, pilots[1].PersonalOperationProgress)

	changed, err := svc.ProgressOperation(ctx, ProgressReset)
	require.NoError(t, err)
	assert.Equal(t, 1, changed)

	_, err = svc.ProgressOperation(ctx, "rewind")
	assert.True(t, types.IsType(err, types.TypeValidation))
}
