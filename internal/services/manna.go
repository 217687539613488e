// manna.go
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

package services

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/localnerve/ops-portal/internal/ledger"
	"github.com/localnerve/ops-portal/internal/models"
	"github.com/localnerve/ops-portal/internal/pricing"
	"github.com/localnerve/ops-portal/internal/store"
	"github.com/localnerve/ops-portal/internal/types"
	"github.com/localnerve/ops-portal/internal/validation"
)

// Manna returns the shared history feed and the total balance of active pilots.
func (s *Service) Manna(ctx context.Context) (models.MannaView, error) {
	pilots, err := s.loadPilots(ctx)
	if err != nil {
		return models.MannaView{}, err
	}
	transactions, err := s.loadLedger(ctx)
	if err != nil {
		return models.MannaView{}, err
	}
	return ledger.View(pilots, transactions), nil
}

// CreateTransaction appends a ledger entry referenced by the given pilots, or by every
// active pilot when no pilot IDs were supplied.
func (s *Service) CreateTransaction(ctx context.Context, in validation.TransactionInput) (models.HistoryEntry, error) {
	var out models.HistoryEntry
	err := s.mutate(ctx, "manna.create", []store.Collection{store.Ledger, store.Pilots}, func(m *mutation) error {
		tx, err := validation.Transaction(in, s.now())
		if err != nil {
			return err
		}
		pilots, err := s.loadPilots(ctx)
		if err != nil {
			return err
		}

		var targets []string
		if in.PilotIDs == nil {
			for _, p := range pilots {
				if p.Active {
					targets = append(targets, p.ID)
				}
			}
			if len(targets) == 0 {
				return types.ValidationError("there are no active pilots to receive the transaction")
			}
		} else {
			targets = dedupe(in.PilotIDs.Slice())
			if len(targets) == 0 {
				return types.ValidationError("pilotIds must name at least one pilot")
			}
			if unknown := unknownPilots(pilots, targets); len(unknown) > 0 {
				return types.ValidationError("unknown pilot IDs: %s", strings.Join(unknown, ", "))
			}
		}

		transactions, err := s.loadLedger(ctx)
		if err != nil {
			return err
		}
		tx.ID = s.newID()
		transactions = append(transactions, tx)
		for _, id := range targets {
			i := findPilot(pilots, id)
			pilots[i].PersonalTransactions = append(pilots[i].PersonalTransactions, tx.ID)
		}
		m.stage(store.Ledger, transactions)
		m.stage(store.Pilots, pilots)

		out = historyEntry(pilots, transactions, tx)
		return nil
	})
	return out, err
}

// DeleteTransaction removes a ledger entry and prunes it from every pilot.
// It returns the number of pilots that referenced it.
func (s *Service) DeleteTransaction(ctx context.Context, id string) (int, error) {
	pruned := 0
	err := s.mutate(ctx, "manna.delete", []store.Collection{store.Ledger, store.Pilots}, func(m *mutation) error {
		transactions, err := s.loadLedger(ctx)
		if err != nil {
			return err
		}
		i := slices.IndexFunc(transactions, func(t models.Transaction) bool { return t.ID == id })
		if i < 0 {
			return types.NotFoundError("transaction %s not found", id)
		}
		m.stage(store.Ledger, slices.Delete(transactions, i, i+1))

		pilots, err := s.loadPilots(ctx)
		if err != nil {
			return err
		}
		for k := range pilots {
			if pilots[k].HasTransaction(id) {
				pilots[k].PersonalTransactions = removeString(pilots[k].PersonalTransactions, id)
				pruned++
			}
		}
		if pruned > 0 {
			m.stage(store.Pilots, pilots)
		}
		return nil
	})
	return pruned, err
}

// historyEntry returns the feed entry for tx. A transaction held only by inactive pilots is
// not in the feed, so it comes back bare with no active references.
func historyEntry(pilots []models.Pilot, transactions []models.Transaction, tx models.Transaction) models.HistoryEntry {
	for _, e := range ledger.SharedHistory(pilots, transactions) {
		if e.ID == tx.ID {
			return e
		}
	}
	return models.HistoryEntry{Transaction: tx, PilotIDs: []string{}}
}

func dedupe(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id != "" && !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}

func unknownPilots(pilots []models.Pilot, ids []string) []string {
	var out []string
	for _, id := range ids {
		if findPilot(pilots, id) < 0 {
			out = append(out, id)
		}
	}
	return out
}

// Payment describes a split charge.
type Payment struct {
	Cost        int64               `json:"cost"`
	Share       int64               `json:"share"`
	Payers      []string            `json:"payers"`
	Transaction *models.Transaction `json:"transaction,omitempty"`
}

// splitCharge divides cost evenly (rounded up) across payers. Every payer must exist, be
// active and afford the share; otherwise nothing changes. On success a single negative
// transaction is appended and referenced by every payer. A zero cost charges nobody.
func (s *Service) splitCharge(pilots []models.Pilot, transactions []models.Transaction, payerIDs []string, cost int64, what string) ([]models.Pilot, []models.Transaction, Payment, error) {
	payment := Payment{Cost: cost, Payers: []string{}}
	if cost <= 0 {
		return pilots, transactions, payment, nil
	}

	payers := dedupe(payerIDs)
	if len(payers) == 0 {
		return nil, nil, payment, types.ValidationError("expensePilots must name at least one paying pilot")
	}
	if unknown := unknownPilots(pilots, payers); len(unknown) > 0 {
		return nil, nil, payment, types.ValidationError("unknown pilot IDs: %s", strings.Join(unknown, ", "))
	}

	share := pricing.SplitShare(cost, len(payers))
	idx := ledger.NewIndex(transactions)
	var inactive, short []string
	for _, id := range payers {
		p := pilots[findPilot(pilots, id)]
		if !p.Active {
			inactive = append(inactive, pilotLabel(p))
			continue
		}
		if ledger.Balance(p, idx) < share {
			short = append(short, pilotLabel(p))
		}
	}
	if len(inactive) > 0 {
		return nil, nil, payment, types.ValidationError("inactive pilots cannot pay: %s", strings.Join(inactive, ", "))
	}
	if len(short) > 0 {
		return nil, nil, payment, types.ConflictError("insufficient funds for a share of %d: %s", share, strings.Join(short, ", "))
	}

	description := what
	if len(payers) > 1 {
		description = fmt.Sprintf("%s (split %d ways)", what, len(payers))
	}
	tx := models.Transaction{
		ID:          s.newID(),
		Date:        s.timestamp(),
		Amount:      -share,
		Description: description,
	}

	nextTransactions := append(slices.Clone(transactions), tx)
	nextPilots := slices.Clone(pilots)
	for _, id := range payers {
		i := findPilot(nextPilots, id)
		nextPilots[i].PersonalTransactions = append(slices.Clone(nextPilots[i].PersonalTransactions), tx.ID)
	}

	payment.Share = share
	payment.Payers = payers
	payment.Transaction = &tx
	return nextPilots, nextTransactions, payment, nil
}

// stagePayment stages the ledger and pilots when a charge was made.
func stagePayment(m *mutation, p Payment, pilots []models.Pilot, transactions []models.Transaction) {
	if p.Transaction == nil {
		return
	}
	m.stage(store.Ledger, transactions)
	m.stage(store.Pilots, pilots)
}

func pilotLabel(p models.Pilot) string {
	if p.Callsign != "" {
		return p.Callsign
	}
	if p.Name != "" {
		return p.Name
	}
	return p.ID
}
