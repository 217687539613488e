package validation

import (
	"math"
	"strings"
	"time"

	"github.com/localnerve/ops-portal/internal/models"
	"github.com/localnerve/ops-portal/internal/types"
)

// TransactionInput is the request body for a manual ledger entry.
// Omitted PilotIDs means every active pilot.
type TransactionInput struct {
	Amount      types.FlexNumber        `json:"amount"`
	Description string                  `json:"description"`
	Date        string                  `json:"date"`
	PilotIDs    *types.FlexList[string] `json:"pilotIds"`
}

// Transaction validates a ledger entry. The ID is assigned by the caller; an omitted
// date becomes now.
func Transaction(in TransactionInput, now time.Time) (models.Transaction, error) {
	if !in.Amount.Present() {
		return models.Transaction{}, types.ValidationError("amount is required")
	}
	amount, err := intField("amount", in.Amount, 0)
	if err != nil {
		return models.Transaction{}, err
	}
	if amount == 0 {
		return models.Transaction{}, types.ValidationError("amount must not be zero")
	}
	if amount > 10_000_000 || amount < -10_000_000 {
		return models.Transaction{}, types.ValidationError("amount is out of range")
	}

	date := now.UTC()
	if raw := strings.TrimSpace(in.Date); raw != "" {
		date, err = parseDate(raw)
		if err != nil {
			return models.Transaction{}, err
		}
	}

	tx := models.Transaction{
		Date:        date.UTC().Format(models.TransactionDateLayout),
		Amount:      amount,
		Description: strings.TrimSpace(in.Description),
	}
	if err := checkStruct(tx); err != nil {
		return models.Transaction{}, err
	}
	return tx, nil
}

func parseDate(raw string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339Nano, models.TransactionDateLayout, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, types.ValidationError("date %q is not an ISO-8601 date", raw)
}

// ReserveInput is the request body for a reserve catalog entry.
type ReserveInput struct {
	Name        string           `json:"name"`
	ReserveType string           `json:"reserveType"`
	Description string           `json:"description"`
	Price       types.FlexNumber `json:"price"`
	Stock       types.FlexNumber `json:"stock"`
}

// Reserve validates a reserve catalog entry.
func Reserve(in ReserveInput) (models.Reserve, error) {
	price, err := intField("price", in.Price, 0)
	if err != nil {
		return models.Reserve{}, err
	}
	stock, err := optionalStock("stock", in.Stock)
	if err != nil {
		return models.Reserve{}, err
	}

	reserve := models.Reserve{
		Name:        strings.TrimSpace(in.Name),
		ReserveType: strings.TrimSpace(in.ReserveType),
		Description: strings.TrimSpace(in.Description),
		Price:       price,
		Stock:       stock,
	}
	if err := checkStruct(reserve); err != nil {
		return models.Reserve{}, err
	}
	return reserve, nil
}

// StoreItemInput is one resupply item. An empty ID marks a new item.
type StoreItemInput struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Price       types.FlexNumber `json:"price"`
	Stock       types.FlexNumber `json:"stock"`
}

// StoreConfigInput is the request body for the store configuration.
type StoreConfigInput struct {
	ResupplyItems        []StoreItemInput `json:"resupplyItems"`
	MinorSlotUnlockPrice types.FlexNumber `json:"minorSlotUnlockPrice"`
	MinorFacilityPrice   types.FlexNumber `json:"minorFacilityPrice"`
}

// StoreConfig validates the store configuration. Item IDs are passed through; the caller
// assigns IDs to new items.
func StoreConfig(in StoreConfigInput) (models.StoreConfig, error) {
	unlock, err := intField("minorSlotUnlockPrice", in.MinorSlotUnlockPrice, 0)
	if err != nil {
		return models.StoreConfig{}, err
	}
	facility, err := intField("minorFacilityPrice", in.MinorFacilityPrice, 0)
	if err != nil {
		return models.StoreConfig{}, err
	}

	cfg := models.StoreConfig{
		ResupplyItems:        make([]models.StoreItem, 0, len(in.ResupplyItems)),
		MinorSlotUnlockPrice: unlock,
		MinorFacilityPrice:   facility,
	}
	seen := make(map[string]struct{})
	for _, item := range in.ResupplyItems {
		price, err := intField("resupplyItems.price", item.Price, 0)
		if err != nil {
			return models.StoreConfig{}, err
		}
		stock, err := optionalStock("resupplyItems.stock", item.Stock)
		if err != nil {
			return models.StoreConfig{}, err
		}
		id := strings.TrimSpace(item.ID)
		if id != "" {
			if _, dup := seen[id]; dup {
				return models.StoreConfig{}, types.ValidationError("duplicate resupply item ID: %s", id)
			}
			seen[id] = struct{}{}
		}
		cfg.ResupplyItems = append(cfg.ResupplyItems, models.StoreItem{
			ID:          id,
			Name:        strings.TrimSpace(item.Name),
			Description: strings.TrimSpace(item.Description),
			Price:       price,
			Stock:       stock,
		})
	}
	if err := checkStruct(cfg); err != nil {
		return models.StoreConfig{}, err
	}
	return cfg, nil
}

// UpgradeInput is one facility upgrade. An empty ID marks a new upgrade.
type UpgradeInput struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"`
	Description   string           `json:"description"`
	Price         types.FlexNumber `json:"price"`
	PurchaseCount types.FlexNumber `json:"purchaseCount"`
	MaxPurchases  types.FlexNumber `json:"maxPurchases"`
}

// FacilityInput is the request body for a core or major facility.
type FacilityInput struct {
	Name        string           `json:"name"`
	Category    string           `json:"category"`
	Description string           `json:"description"`
	Price       types.FlexNumber `json:"price"`
	Purchased   *bool            `json:"purchased"`
	Upgrades    []UpgradeInput   `json:"upgrades"`
}

// Facility validates a core or major facility.
func Facility(in FacilityInput) (models.Facility, error) {
	price, err := intField("price", in.Price, 0)
	if err != nil {
		return models.Facility{}, err
	}

	facility := models.Facility{
		Name:        strings.TrimSpace(in.Name),
		Category:    strings.ToLower(strings.TrimSpace(in.Category)),
		Description: strings.TrimSpace(in.Description),
		Price:       price,
		Purchased:   in.Purchased != nil && *in.Purchased,
		Upgrades:    make([]models.FacilityUpgrade, 0, len(in.Upgrades)),
	}
	seen := make(map[string]struct{})
	for _, u := range in.Upgrades {
		upgradePrice, err := intField("upgrades.price", u.Price, 0)
		if err != nil {
			return models.Facility{}, err
		}
		count, err := intField("upgrades.purchaseCount", u.PurchaseCount, 0)
		if err != nil {
			return models.Facility{}, err
		}
		maxPurchases, err := intField("upgrades.maxPurchases", u.MaxPurchases, 1)
		if err != nil {
			return models.Facility{}, err
		}
		id := strings.TrimSpace(u.ID)
		if id != "" {
			if _, dup := seen[id]; dup {
				return models.Facility{}, types.ValidationError("duplicate upgrade ID: %s", id)
			}
			seen[id] = struct{}{}
		}
		facility.Upgrades = append(facility.Upgrades, models.FacilityUpgrade{
			ID:            id,
			Name:          strings.TrimSpace(u.Name),
			Description:   strings.TrimSpace(u.Description),
			Price:         upgradePrice,
			PurchaseCount: int(count),
			MaxPurchases:  int(maxPurchases),
		})
	}
	if err := checkStruct(facility); err != nil {
		return models.Facility{}, err
	}
	return facility, nil
}

// MinorFacilityInput names the facility placed in a minor slot.
type MinorFacilityInput struct {
	FacilityName string `json:"facilityName"`
	Description  string `json:"description"`
}

// MinorFacility validates a minor facility assignment.
func MinorFacility(in MinorFacilityInput) (name, description string, err error) {
	name = strings.TrimSpace(in.FacilityName)
	description = strings.TrimSpace(in.Description)
	switch {
	case name == "":
		return "", "", types.ValidationError("facilityName is required")
	case len(name) > 100:
		return "", "", types.ValidationError("facilityName must be at most 100 characters")
	case len(description) > 2000:
		return "", "", types.ValidationError("description must be at most 2000 characters")
	}
	return name, description, nil
}

// SettingsInput is a partial settings update. Omitted fields keep their current value.
type SettingsInput struct {
	PortalHeading        *string          `json:"portalHeading"`
	PortalDate           *string          `json:"portalDate"`
	ColorScheme          *string          `json:"colorScheme"`
	ClientPassword       *string          `json:"clientPassword"`
	AdminPassword        *string          `json:"adminPassword"`
	FacilityCostModifier types.FlexNumber `json:"facilityCostModifier"`
	OperationProgress    types.FlexNumber `json:"operationProgress"`
	ShowStore            *bool            `json:"showStore"`
	ShowFacilities       *bool            `json:"showFacilities"`
	ShowReserves         *bool            `json:"showReserves"`
}

// Settings merges a partial update over current and validates the result.
// Blank passwords are ignored so redacted settings can be sent back unchanged.
func Settings(in SettingsInput, current models.Settings) (models.Settings, error) {
	next := current
	if in.PortalHeading != nil {
		next.PortalHeading = strings.TrimSpace(*in.PortalHeading)
	}
	if in.PortalDate != nil {
		next.PortalDate = strings.TrimSpace(*in.PortalDate)
	}
	if in.ColorScheme != nil {
		next.ColorScheme = strings.ToLower(strings.TrimSpace(*in.ColorScheme))
	}
	if in.ClientPassword != nil && strings.TrimSpace(*in.ClientPassword) != "" {
		next.ClientPassword = strings.TrimSpace(*in.ClientPassword)
	}
	if in.AdminPassword != nil && strings.TrimSpace(*in.AdminPassword) != "" {
		next.AdminPassword = strings.TrimSpace(*in.AdminPassword)
	}
	if in.FacilityCostModifier.Present() {
		if !in.FacilityCostModifier.Valid() {
			return models.Settings{}, types.ValidationError("facilityCostModifier must be a number")
		}
		m := in.FacilityCostModifier.Float()
		if math.IsInf(m, 0) {
			return models.Settings{}, types.ValidationError("facilityCostModifier must be a number")
		}
		next.FacilityCostModifier = m
	}
	if in.OperationProgress.Present() {
		progress, err := intField("operationProgress", in.OperationProgress, 0)
		if err != nil {
			return models.Settings{}, err
		}
		next.OperationProgress = int(progress)
	}
	if in.ShowStore != nil {
		next.ShowStore = *in.ShowStore
	}
	if in.ShowFacilities != nil {
		next.ShowFacilities = *in.ShowFacilities
	}
	if in.ShowReserves != nil {
		next.ShowReserves = *in.ShowReserves
	}

	if err := checkStruct(next); err != nil {
		return models.Settings{}, err
	}
	return next, nil
}
