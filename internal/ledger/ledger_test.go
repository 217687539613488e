package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/localnerve/ops-portal/internal/models"
)

func fixture() ([]models.Pilot, []models.Transaction) {
	ledger := []models.Transaction{
		{ID: "t1", Date: "2026-01-01T10:00:00.000Z", Amount: 1000, Description: "Job pay"},
		{ID: "t2", Date: "2026-01-02T10:00:00.000Z", Amount: -300, Description: "Split purchase"},
		{ID: "t3", Date: "2026-01-03T10:00:00.000Z", Amount: 50, Description: "Bonus"},
	}
	pilots := []models.Pilot{
		{ID: "p1", Active: true, PersonalTransactions: []string{"t1", "t2"}},
		{ID: "p2", Active: true, PersonalTransactions: []string{"t1", "t2", "t3"}},
		{ID: "p3", Active: false, PersonalTransactions: []string{"t1", "t3"}},
	}
	return pilots, ledger
}

func TestBalanceSumsReferencedTransactions(t *testing.T) {
	pilots, ledger := fixture()
	balances := Balances(pilots, ledger)

	assert.Equal(t, int64(700), balances["p1"])
	assert.Equal(t, int64(750), balances["p2"])
	assert.Equal(t, int64(1050), balances["p3"])
}

func TestBalanceIgnoresDanglingAndDuplicateReferences(t *testing.T) {
	_, ledger := fixture()
	p := models.Pilot{ID: "p", PersonalTransactions: []string{"t1", "missing", "t1"}}
	assert.Equal(t, int64(1000), Balance(p, NewIndex(ledger)))
}

func TestSharedTransactionIsNotDuplicatedInLedger(t *testing.T) {
	pilots, ledger := fixture()
	history := SharedHistory(pilots, ledger)
	require.Len(t, history, len(ledger))

	seen := map[string]int{}
	for _, e := range history {
		seen[e.ID]++
	}
	for id, n := range seen {
		assert.Equal(t, 1, n, "transaction %s", id)
	}
}

func TestTotalCountsSharedTransactionPerActivePilot(t *testing.T) {
	pilots, ledger := fixture()
	// t1: 2 active x 1000, t2: 2 active x -300, t3: 1 active x 50
	assert.Equal(t, int64(2000-600+50), TotalActiveBalance(pilots, ledger))
}

func TestSharedHistoryNewestFirstWithCumulative(t *testing.T) {
	pilots, ledger := fixture()
	history := SharedHistory(pilots, ledger)

	require.Len(t, history, 3)
	assert.Equal(t, "t3", history[0].ID)
	assert.Equal(t, "t1", history[2].ID)

	assert.Equal(t, 2, history[2].PilotCount)
	assert.Equal(t, int64(2000), history[2].TotalAmount)
	assert.Equal(t, int64(2000), history[2].CumulativeBalance)
	assert.Equal(t, int64(1400), history[1].CumulativeBalance)
	assert.Equal(t, int64(1450), history[0].CumulativeBalance)
	assert.Equal(t, TotalActiveBalance(pilots, ledger), history[0].CumulativeBalance)
	assert.ElementsMatch(t, []string{"p2"}, history[0].PilotIDs)
}

func TestSharedHistoryOmitsTransactionsWithoutActiveReferences(t *testing.T) {
	ledger := []models.Transaction{
		{ID: "t1", Date: "2026-01-01T00:00:00.000Z", Amount: 400, Description: "Escort pay"},
		{ID: "t2", Date: "2026-01-02T00:00:00.000Z", Amount: 250, Description: "Retired pilot bonus"},
		{ID: "t3", Date: "2026-01-03T00:00:00.000Z", Amount: 99, Description: "Unclaimed"},
	}
	pilots := []models.Pilot{
		{ID: "a", Active: true, PersonalTransactions: []string{"t1"}},
		{ID: "b", Active: false, PersonalTransactions: []string{"t2"}},
	}

	history := SharedHistory(pilots, ledger)
	require.Len(t, history, 1)
	assert.Equal(t, "t1", history[0].ID)
	assert.Equal(t, []string{"a"}, history[0].PilotIDs)
	assert.Equal(t, int64(400), history[0].CumulativeBalance)
	assert.Equal(t, TotalActiveBalance(pilots, ledger), history[0].CumulativeBalance)

	// the inactive pilot still holds its own transaction
	assert.Equal(t, int64(250), Balances(pilots, ledger)["b"])
}

func TestSharedHistoryEmptyWithoutActivePilots(t *testing.T) {
	ledger := []models.Transaction{{ID: "orphan", Date: "2026-01-01T00:00:00.000Z", Amount: 99}}

	assert.Empty(t, SharedHistory(nil, ledger))
	view := View(nil, ledger)
	assert.NotNil(t, view.Transactions)
	assert.Equal(t, int64(0), view.TotalBalance)
}

func TestViewTotalsMatchHistory(t *testing.T) {
	pilots, ledger := fixture()
	view := View(pilots, ledger)
	assert.Equal(t, view.Transactions[0].CumulativeBalance, view.TotalBalance)
}
