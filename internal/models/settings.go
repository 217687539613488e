package models

// Cost modifier bounds in percent.
const (
	MinCostModifier = -100
	MaxCostModifier = 300
)

// ColorSchemes lists the supported portal color schemes.
var ColorSchemes = []string{"grey", "orange", "green", "blue", "purple", "red"}

// Settings is the portal configuration singleton.
type Settings struct {
	PortalHeading        string  `json:"portalHeading" validate:"required,max=100"`
	PortalDate           string  `json:"portalDate" validate:"max=50"`
	ColorScheme          string  `json:"colorScheme" validate:"oneof=grey orange green blue purple red"`
	ClientPassword       string  `json:"clientPassword,omitempty" validate:"required,min=4,max=100"`
	AdminPassword        string  `json:"adminPassword,omitempty" validate:"required,min=4,max=100,nefield=ClientPassword"`
	FacilityCostModifier float64 `json:"facilityCostModifier" validate:"min=-100,max=300"`
	OperationProgress    int     `json:"operationProgress" validate:"min=0,max=3"`
	ShowStore            bool    `json:"showStore"`
	ShowFacilities       bool    `json:"showFacilities"`
	ShowReserves         bool    `json:"showReserves"`
}

// DefaultSettings returns the settings used for any key missing from storage.
func DefaultSettings() Settings {
	return Settings{
		PortalHeading:  "OPERATIONS PORTAL",
		PortalDate:     "",
		ColorScheme:    "grey",
		ClientPassword: "client",
		AdminPassword:  "admin",
		ShowStore:      true,
		ShowFacilities: true,
		ShowReserves:   true,
	}
}

// Redacted returns a copy safe to send to any client.
func (s Settings) Redacted() Settings {
	s.ClientPassword = ""
	s.AdminPassword = ""
	return s
}
