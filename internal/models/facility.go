package models

// Facility categories.
const (
	CategoryCore  = "core"
	CategoryMajor = "major"
)

// MinorSlotCount is the fixed number of minor facility slots.
const MinorSlotCount = 6

// FirstToggleableSlot is the first minor slot that can be enabled or disabled.
// Slots before it are always enabled.
const FirstToggleableSlot = 5

// FacilityUpgrade is a purchasable improvement to a core or major facility.
type FacilityUpgrade struct {
	ID            string `json:"id"`
	Name          string `json:"name" validate:"required,max=100"`
	Description   string `json:"description" validate:"max=2000"`
	Price         int64  `json:"price" validate:"min=0,max=1000000"`
	PurchaseCount int    `json:"purchaseCount" validate:"min=0,ltefield=MaxPurchases"`
	MaxPurchases  int    `json:"maxPurchases" validate:"min=1,max=10"`
}

// Facility is a core or major facility of the base.
type Facility struct {
	ID          string            `json:"id"`
	Name        string            `json:"name" validate:"required,max=100"`
	Category    string            `json:"category" validate:"oneof=core major"`
	Description string            `json:"description" validate:"max=2000"`
	Price       int64             `json:"price" validate:"min=0,max=1000000"`
	Purchased   bool              `json:"purchased"`
	Upgrades    []FacilityUpgrade `json:"upgrades" validate:"dive"`
}

// Upgrade returns the upgrade with the given ID.
func (f *Facility) Upgrade(id string) (*FacilityUpgrade, bool) {
	for i := range f.Upgrades {
		if f.Upgrades[i].ID == id {
			return &f.Upgrades[i], true
		}
	}
	return nil, false
}

// MinorSlot is one of the six minor facility slots.
type MinorSlot struct {
	SlotNumber   int    `json:"slotNumber"`
	Enabled      bool   `json:"enabled"`
	FacilityName string `json:"facilityName"`
	Description  string `json:"description"`
}

// Toggleable reports whether the slot can be enabled or disabled.
func (s MinorSlot) Toggleable() bool {
	return s.SlotNumber >= FirstToggleableSlot
}

// Empty reports whether no facility is assigned to the slot.
func (s MinorSlot) Empty() bool {
	return s.FacilityName == ""
}

// DefaultMinorSlots returns the initial minor slot layout.
func DefaultMinorSlots() []MinorSlot {
	slots := make([]MinorSlot, MinorSlotCount)
	for i := range slots {
		slots[i] = MinorSlot{SlotNumber: i + 1, Enabled: i+1 < FirstToggleableSlot}
	}
	return slots
}

// NormalizeMinorSlots returns exactly MinorSlotCount slots in slot order,
// filling gaps from a stored array that is short, padded, or out of order.
func NormalizeMinorSlots(stored []MinorSlot) []MinorSlot {
	slots := DefaultMinorSlots()
	for _, s := range stored {
		if s.SlotNumber < 1 || s.SlotNumber > MinorSlotCount {
			continue
		}
		if !s.Toggleable() {
			s.Enabled = true
		}
		slots[s.SlotNumber-1] = s
	}
	return slots
}
