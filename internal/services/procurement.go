// procurement.go
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

	"github.com/localnerve/ops-portal/internal/models"
	"github.com/localnerve/ops-portal/internal/store"
	"github.com/localnerve/ops-portal/internal/types"
)

// Procurement item types.
const (
	ItemReserve  = "reserve"
	ItemResupply = "resupply"
)

// ProcurementInput is a request to buy a reserve or a resupply item.
type ProcurementInput struct {
	ItemType        string                 `json:"itemType"`
	ItemID          string                 `json:"itemId"`
	ExpensePilots   types.FlexList[string] `json:"expensePilots"`
	AssigneePilotID string                 `json:"assigneePilotId"`
}

// ProcurementResult is the outcome of a procurement purchase.
type ProcurementResult struct {
	ItemType string            `json:"itemType"`
	ItemID   string            `json:"itemId"`
	ItemName string            `json:"itemName"`
	Stock    *int              `json:"stock"`
	Assignee *models.PilotView `json:"assignee,omitempty"`
	Payment  Payment           `json:"payment"`
}

var procurementLocks = []store.Collection{store.Reserves, store.StoreConfig, store.Ledger, store.Pilots}

// Purchase buys one unit of a catalog item at its listed price, split across payers.
// Reserves are added to the assignee, who defaults to the sole payer.
func (s *Service) Purchase(ctx context.Context, in ProcurementInput) (ProcurementResult, error) {
	itemType := strings.ToLower(strings.TrimSpace(in.ItemType))
	if itemType != ItemReserve && itemType != ItemResupply {
		return ProcurementResult{}, types.ValidationError("itemType must be %q or %q", ItemReserve, ItemResupply)
	}
	itemID := strings.TrimSpace(in.ItemID)
	if itemID == "" {
		return ProcurementResult{}, types.ValidationError("itemId is required")
	}

	var out ProcurementResult
	err := s.mutate(ctx, "procurement."+itemType, procurementLocks, func(m *mutation) error {
		pilots, err := s.loadPilots(ctx)
		if err != nil {
			return err
		}
		transactions, err := s.loadLedger(ctx)
		if err != nil {
			return err
		}
		payers := dedupe(in.ExpensePilots.Slice())

		var (
			name     string
			price    int64
			stock    **int
			reserves []models.Reserve
			catalog  models.StoreConfig
		)
		switch itemType {
		case ItemReserve:
			if reserves, err = s.loadReserves(ctx); err != nil {
				return err
			}
			i := findReserve(reserves, itemID)
			if i < 0 {
				return types.NotFoundError("reserve %s not found", itemID)
			}
			name, price, stock = reserves[i].Name, reserves[i].Price, &reserves[i].Stock
		case ItemResupply:
			if catalog, err = s.loadStoreConfig(ctx); err != nil {
				return err
			}
			i := slices.IndexFunc(catalog.ResupplyItems, func(item models.StoreItem) bool { return item.ID == itemID })
			if i < 0 {
				return types.NotFoundError("resupply item %s not found", itemID)
			}
			item := &catalog.ResupplyItems[i]
			name, price, stock = item.Name, item.Price, &item.Stock
		}

		if *stock != nil && **stock <= 0 {
			return types.ConflictError("%s is out of stock", name)
		}

		assignee := -1
		if itemType == ItemReserve {
			assigneeID := strings.TrimSpace(in.AssigneePilotID)
			if assigneeID == "" && len(payers) == 1 {
				assigneeID = payers[0]
			}
			if assigneeID == "" {
				return types.ValidationError("assigneePilotId is required when several pilots pay for a reserve")
			}
			if assignee = findPilot(pilots, assigneeID); assignee < 0 {
				return types.ValidationError("unknown pilot ID: %s", assigneeID)
			}
		}

		pilots, transactions, payment, err := s.splitCharge(pilots, transactions, payers, price,
			fmt.Sprintf("Procurement: %s", name))
		if err != nil {
			return err
		}

		if *stock != nil {
			left := **stock - 1
			*stock = &left
		}
		switch itemType {
		case ItemReserve:
			p := &pilots[assignee]
			p.Reserves = append(slices.Clone(p.Reserves), models.PilotReserve{
				ReserveID:        itemID,
				DeploymentStatus: models.InReserve,
			})
			if *stock != nil {
				m.stage(store.Reserves, reserves)
			}
			m.stage(store.Pilots, pilots)
			if payment.Transaction != nil {
				m.stage(store.Ledger, transactions)
			}
		case ItemResupply:
			if *stock != nil {
				m.stage(store.StoreConfig, catalog)
			}
			stagePayment(m, payment, pilots, transactions)
		}

		out = ProcurementResult{ItemType: itemType, ItemID: itemID, ItemName: name, Stock: *stock, Payment: payment}
		if assignee >= 0 {
			view := enrichPilots([]models.Pilot{pilots[assignee]}, transactions, reserves)[0]
			out.Assignee = &view
		}
		return nil
	})
	return out, err
}
