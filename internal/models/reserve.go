package models

// Reserve is a catalog entry that pilots can procure. A nil Stock means unlimited.
type Reserve struct {
	ID          string `json:"id"`
	Name        string `json:"name" validate:"required,max=100"`
	ReserveType string `json:"reserveType" validate:"max=50"`
	Description string `json:"description" validate:"max=2000"`
	Price       int64  `json:"price" validate:"min=0,max=1000000"`
	Stock       *int   `json:"stock" validate:"omitempty,min=0"`
}

// StoreItem is a resupply item sold through procurement. A nil Stock means unlimited.
type StoreItem struct {
	ID          string `json:"id"`
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=2000"`
	Price       int64  `json:"price" validate:"min=0,max=1000000"`
	Stock       *int   `json:"stock" validate:"omitempty,min=0"`
}

// StoreConfig holds the procurement catalog and minor facility prices.
type StoreConfig struct {
	ResupplyItems        []StoreItem `json:"resupplyItems" validate:"dive"`
	MinorSlotUnlockPrice int64       `json:"minorSlotUnlockPrice" validate:"min=0,max=1000000"`
	MinorFacilityPrice   int64       `json:"minorFacilityPrice" validate:"min=0,max=1000000"`
}
