// ledger.go
//
// Operations portal for tabletop mech campaigns
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of ops-portal.
// ops-portal is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// ops-portal is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with ops-portal.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

// Package ledger derives balances and the shared history feed from the transaction ledger.
// Balances are never stored: a pilot's balance is the sum of the transactions it references.
package ledger

import (
	"sort"

	"github.com/localnerve/ops-portal/internal/models"
)

// Index maps transaction IDs to transactions.
type Index map[string]models.Transaction

// NewIndex indexes a ledger by transaction ID.
func NewIndex(ledger []models.Transaction) Index {
	idx := make(Index, len(ledger))
	for _, tx := range ledger {
		idx[tx.ID] = tx
	}
	return idx
}

// Balance sums the transactions referenced by the pilot. Unknown IDs contribute nothing
// and a repeated reference counts once.
func Balance(p models.Pilot, idx Index) int64 {
	seen := make(map[string]struct{}, len(p.PersonalTransactions))
	var total int64
	for _, id := range p.PersonalTransactions {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if tx, ok := idx[id]; ok {
			total += tx.Amount
		}
	}
	return total
}

// Balances returns the derived balance of every pilot by ID.
func Balances(pilots []models.Pilot, ledger []models.Transaction) map[string]int64 {
	idx := NewIndex(ledger)
	out := make(map[string]int64, len(pilots))
	for _, p := range pilots {
		out[p.ID] = Balance(p, idx)
	}
	return out
}

// TotalActiveBalance sums the balances of active pilots. A transaction shared by N active
// pilots contributes N times its amount.
func TotalActiveBalance(pilots []models.Pilot, ledger []models.Transaction) int64 {
	idx := NewIndex(ledger)
	var total int64
	for _, p := range pilots {
		if p.Active {
			total += Balance(p, idx)
		}
	}
	return total
}

// SharedHistory returns the transactions referenced by at least one active pilot, newest
// first, each annotated with the active pilots that reference it, the amount times that
// count, and the running total after the entry. Transactions no active pilot references
// are left out; they still count toward the balances of the inactive pilots holding them.
func SharedHistory(pilots []models.Pilot, ledger []models.Transaction) []models.HistoryEntry {
	refs := make(map[string][]string)
	for _, p := range pilots {
		if !p.Active {
			continue
		}
		seen := make(map[string]struct{}, len(p.PersonalTransactions))
		for _, id := range p.PersonalTransactions {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			refs[id] = append(refs[id], p.ID)
		}
	}

	entries := make([]models.HistoryEntry, 0, len(ledger))
	for _, tx := range ledger {
		ids := refs[tx.ID]
		if len(ids) == 0 {
			continue
		}
		entries = append(entries, models.HistoryEntry{
			Transaction: tx,
			PilotIDs:    ids,
			PilotCount:  len(ids),
			TotalAmount: tx.Amount * int64(len(ids)),
		})
	}

	// Oldest first for the running total; ledger order breaks date ties.
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Time().Before(entries[j].Time())
	})
	var running int64
	for i := range entries {
		running += entries[i].TotalAmount
		entries[i].CumulativeBalance = running
	}

	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries
}

// View builds the ledger payload sent to clients.
func View(pilots []models.Pilot, ledger []models.Transaction) models.MannaView {
	return models.MannaView{
		Transactions: SharedHistory(pilots, ledger),
		TotalBalance: TotalActiveBalance(pilots, ledger),
	}
}
