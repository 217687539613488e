// facilities.go
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
	"github.com/localnerve/ops-portal/internal/pricing"
	"github.com/localnerve/ops-portal/internal/store"
	"github.com/localnerve/ops-portal/internal/types"
	"github.com/localnerve/ops-portal/internal/validation"
)

// PurchaseInput names the pilots splitting the cost of a purchase.
type PurchaseInput struct {
	ExpensePilots types.FlexList[string] `json:"expensePilots"`
}

// AssignInput places a facility into an empty minor slot.
type AssignInput struct {
	validation.MinorFacilityInput
	ExpensePilots types.FlexList[string] `json:"expensePilots"`
}

// FacilityPurchase is the outcome of a core/major facility or upgrade purchase.
type FacilityPurchase struct {
	Facility models.Facility         `json:"facility"`
	Upgrade  *models.FacilityUpgrade `json:"upgrade,omitempty"`
	Payment  Payment                 `json:"payment"`
}

// SlotPurchase is the outcome of a minor slot unlock or assignment.
type SlotPurchase struct {
	Slot    models.MinorSlot `json:"slot"`
	Payment Payment          `json:"payment"`
}

// ListFacilities returns the core and major facilities.
func (s *Service) ListFacilities(ctx context.Context) ([]models.Facility, error) {
	return s.loadFacilities(ctx)
}

// ListMinorSlots returns the six minor slots in slot order.
func (s *Service) ListMinorSlots(ctx context.Context) ([]models.MinorSlot, error) {
	return s.loadMinorSlots(ctx)
}

func findFacility(facilities []models.Facility, id string) int {
	return slices.IndexFunc(facilities, func(f models.Facility) bool { return f.ID == id })
}

func (s *Service) assignUpgradeIDs(f *models.Facility) {
	for i := range f.Upgrades {
		if f.Upgrades[i].ID == "" {
			f.Upgrades[i].ID = s.newID()
		}
	}
}

// CreateFacility validates and appends a core or major facility.
func (s *Service) CreateFacility(ctx context.Context, in validation.FacilityInput) (models.Facility, error) {
	var out models.Facility
	err := s.mutate(ctx, "facility.create", []store.Collection{store.CoreMajor}, func(m *mutation) error {
		facility, err := validation.Facility(in)
		if err != nil {
			return err
		}
		facilities, err := s.loadFacilities(ctx)
		if err != nil {
			return err
		}
		facility.ID = s.newID()
		s.assignUpgradeIDs(&facility)
		m.stage(store.CoreMajor, append(facilities, facility))
		out = facility
		return nil
	})
	return out, err
}

// UpdateFacility replaces every field of a facility except its ID.
func (s *Service) UpdateFacility(ctx context.Context, id string, in validation.FacilityInput) (models.Facility, error) {
	var out models.Facility
	err := s.mutate(ctx, "facility.update", []store.Collection{store.CoreMajor}, func(m *mutation) error {
		facilities, err := s.loadFacilities(ctx)
		if err != nil {
			return err
		}
		i := findFacility(facilities, id)
		if i < 0 {
			return types.NotFoundError("facility %s not found", id)
		}
		facility, err := validation.Facility(in)
		if err != nil {
			return err
		}
		facility.ID = id
		s.assignUpgradeIDs(&facility)
		facilities[i] = facility
		m.stage(store.CoreMajor, facilities)
		out = facility
		return nil
	})
	return out, err
}

// DeleteFacility removes a core or major facility.
func (s *Service) DeleteFacility(ctx context.Context, id string) error {
	return s.mutate(ctx, "facility.delete", []store.Collection{store.CoreMajor}, func(m *mutation) error {
		facilities, err := s.loadFacilities(ctx)
		if err != nil {
			return err
		}
		i := findFacility(facilities, id)
		if i < 0 {
			return types.NotFoundError("facility %s not found", id)
		}
		m.stage(store.CoreMajor, slices.Delete(facilities, i, i+1))
		return nil
	})
}

// chargeContext loads what a split charge reads.
type chargeContext struct {
	settings     models.Settings
	pilots       []models.Pilot
	transactions []models.Transaction
}

func (s *Service) loadCharge(ctx context.Context) (chargeContext, error) {
	var cc chargeContext
	var err error
	if cc.settings, err = s.loadSettings(ctx); err != nil {
		return cc, err
	}
	if cc.pilots, err = s.loadPilots(ctx); err != nil {
		return cc, err
	}
	if cc.transactions, err = s.loadLedger(ctx); err != nil {
		return cc, err
	}
	return cc, nil
}

var facilityPurchaseLocks = []store.Collection{store.CoreMajor, store.Settings, store.Ledger, store.Pilots}

// PurchaseFacility buys an unpurchased facility at the modified price, split across payers.
func (s *Service) PurchaseFacility(ctx context.Context, id string, in PurchaseInput) (FacilityPurchase, error) {
	var out FacilityPurchase
	err := s.mutate(ctx, "facility.purchase", facilityPurchaseLocks, func(m *mutation) error {
		facilities, err := s.loadFacilities(ctx)
		if err != nil {
			return err
		}
		i := findFacility(facilities, id)
		if i < 0 {
			return types.NotFoundError("facility %s not found", id)
		}
		facility := facilities[i]
		if facility.Purchased {
			return types.ConflictError("facility %s is already purchased", facility.Name)
		}
		if facility.Price <= 0 {
			return types.ValidationError("facility %s has no purchase price", facility.Name)
		}

		cc, err := s.loadCharge(ctx)
		if err != nil {
			return err
		}
		cost := pricing.ApplyCostModifier(facility.Price, cc.settings.FacilityCostModifier)
		pilots, transactions, payment, err := s.splitCharge(cc.pilots, cc.transactions, in.ExpensePilots.Slice(), cost,
			fmt.Sprintf("Facility purchase: %s", facility.Name))
		if err != nil {
			return err
		}

		facilities[i].Purchased = true
		m.stage(store.CoreMajor, facilities)
		stagePayment(m, payment, pilots, transactions)

		out = FacilityPurchase{Facility: facilities[i], Payment: payment}
		return nil
	})
	return out, err
}

// PurchaseUpgrade buys one more level of an upgrade on a purchased facility.
func (s *Service) PurchaseUpgrade(ctx context.Context, facilityID, upgradeID string, in PurchaseInput) (FacilityPurchase, error) {
	var out FacilityPurchase
	err := s.mutate(ctx, "facility.upgrade", facilityPurchaseLocks, func(m *mutation) error {
		facilities, err := s.loadFacilities(ctx)
		if err != nil {
			return err
		}
		i := findFacility(facilities, facilityID)
		if i < 0 {
			return types.NotFoundError("facility %s not found", facilityID)
		}
		facility := &facilities[i]
		upgrade, ok := facility.Upgrade(upgradeID)
		if !ok {
			return types.NotFoundError("upgrade %s not found on facility %s", upgradeID, facility.Name)
		}
		if !facility.Purchased {
			return types.ConflictError("facility %s must be purchased before its upgrades", facility.Name)
		}
		if upgrade.PurchaseCount >= upgrade.MaxPurchases {
			return types.ConflictError("upgrade %s is already at its maximum of %d", upgrade.Name, upgrade.MaxPurchases)
		}

		cc, err := s.loadCharge(ctx)
		if err != nil {
			return err
		}
		cost := pricing.ApplyCostModifier(upgrade.Price, cc.settings.FacilityCostModifier)
		pilots, transactions, payment, err := s.splitCharge(cc.pilots, cc.transactions, in.ExpensePilots.Slice(), cost,
			fmt.Sprintf("Facility upgrade: %s - %s", facility.Name, upgrade.Name))
		if err != nil {
			return err
		}

		upgrade.PurchaseCount++
		m.stage(store.CoreMajor, facilities)
		stagePayment(m, payment, pilots, transactions)

		u := *upgrade
		out = FacilityPurchase{Facility: *facility, Upgrade: &u, Payment: payment}
		return nil
	})
	return out, err
}

func slotIndex(slots []models.MinorSlot, number int) (int, error) {
	if number < 1 || number > len(slots) {
		return -1, types.NotFoundError("minor slot %d does not exist", number)
	}
	return number - 1, nil
}

var minorPurchaseLocks = []store.Collection{store.MinorSlots, store.StoreConfig, store.Settings, store.Ledger, store.Pilots}

// EnableMinorSlot unlocks a disabled toggleable slot at the modified unlock price.
func (s *Service) EnableMinorSlot(ctx context.Context, number int, in PurchaseInput) (SlotPurchase, error) {
	var out SlotPurchase
	err := s.mutate(ctx, "minor.enable", minorPurchaseLocks, func(m *mutation) error {
		slots, err := s.loadMinorSlots(ctx)
		if err != nil {
			return err
		}
		i, err := slotIndex(slots, number)
		if err != nil {
			return err
		}
		if !slots[i].Toggleable() {
			return types.ValidationError("minor slot %d is always enabled", number)
		}
		if slots[i].Enabled {
			return types.ConflictError("minor slot %d is already enabled", number)
		}

		storeConfig, err := s.loadStoreConfig(ctx)
		if err != nil {
			return err
		}
		cc, err := s.loadCharge(ctx)
		if err != nil {
			return err
		}
		cost := pricing.ApplyCostModifier(storeConfig.MinorSlotUnlockPrice, cc.settings.FacilityCostModifier)
		pilots, transactions, payment, err := s.splitCharge(cc.pilots, cc.transactions, in.ExpensePilots.Slice(), cost,
			fmt.Sprintf("Minor facility slot %d unlock", number))
		if err != nil {
			return err
		}

		slots[i].Enabled = true
		m.stage(store.MinorSlots, slots)
		stagePayment(m, payment, pilots, transactions)

		out = SlotPurchase{Slot: slots[i], Payment: payment}
		return nil
	})
	return out, err
}

// DisableMinorSlot locks an empty toggleable slot again. Nothing is refunded.
func (s *Service) DisableMinorSlot(ctx context.Context, number int) (models.MinorSlot, error) {
	var out models.MinorSlot
	err := s.mutate(ctx, "minor.disable", []store.Collection{store.MinorSlots}, func(m *mutation) error {
		slots, err := s.loadMinorSlots(ctx)
		if err != nil {
			return err
		}
		i, err := slotIndex(slots, number)
		if err != nil {
			return err
		}
		if !slots[i].Toggleable() {
			return types.ValidationError("minor slot %d is always enabled", number)
		}
		if !slots[i].Empty() {
			return types.ConflictError("minor slot %d holds %s; clear it first", number, slots[i].FacilityName)
		}
		if !slots[i].Enabled {
			out = slots[i]
			return nil
		}
		slots[i].Enabled = false
		m.stage(store.MinorSlots, slots)
		out = slots[i]
		return nil
	})
	return out, err
}

// AssignMinorSlot builds a named minor facility in an enabled empty slot at the modified price.
func (s *Service) AssignMinorSlot(ctx context.Context, number int, in AssignInput) (SlotPurchase, error) {
	var out SlotPurchase
	err := s.mutate(ctx, "minor.assign", minorPurchaseLocks, func(m *mutation) error {
		name, description, err := validation.MinorFacility(in.MinorFacilityInput)
		if err != nil {
			return err
		}
		slots, err := s.loadMinorSlots(ctx)
		if err != nil {
			return err
		}
		i, err := slotIndex(slots, number)
		if err != nil {
			return err
		}
		if !slots[i].Enabled {
			return types.ConflictError("minor slot %d is not enabled", number)
		}
		if !slots[i].Empty() {
			return types.ConflictError("minor slot %d already holds %s", number, slots[i].FacilityName)
		}
		for _, other := range slots {
			if strings.EqualFold(other.FacilityName, name) {
				return types.ConflictError("minor facility %s is already built in slot %d", name, other.SlotNumber)
			}
		}

		storeConfig, err := s.loadStoreConfig(ctx)
		if err != nil {
			return err
		}
		cc, err := s.loadCharge(ctx)
		if err != nil {
			return err
		}
		cost := pricing.ApplyCostModifier(storeConfig.MinorFacilityPrice, cc.settings.FacilityCostModifier)
		pilots, transactions, payment, err := s.splitCharge(cc.pilots, cc.transactions, in.ExpensePilots.Slice(), cost,
			fmt.Sprintf("Minor facility: %s", name))
		if err != nil {
			return err
		}

		slots[i].FacilityName = name
		slots[i].Description = description
		m.stage(store.MinorSlots, slots)
		stagePayment(m, payment, pilots, transactions)

		out = SlotPurchase{Slot: slots[i], Payment: payment}
		return nil
	})
	return out, err
}

// ClearMinorSlot removes the facility from a slot. The slot stays enabled.
func (s *Service) ClearMinorSlot(ctx context.Context, number int) (models.MinorSlot, error) {
	var out models.MinorSlot
	err := s.mutate(ctx, "minor.clear", []store.Collection{store.MinorSlots}, func(m *mutation) error {
		slots, err := s.loadMinorSlots(ctx)
		if err != nil {
			return err
		}
		i, err := slotIndex(slots, number)
		if err != nil {
			return err
		}
		if slots[i].Empty() {
			out = slots[i]
			return nil
		}
		slots[i].FacilityName = ""
		slots[i].Description = ""
		m.stage(store.MinorSlots, slots)
		out = slots[i]
		return nil
	})
	return out, err
}
