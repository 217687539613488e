package models

// DeploymentStatus is the state of a reserve held by a pilot.
type DeploymentStatus string

const (
	InReserve DeploymentStatus = "In Reserve"
	Deployed  DeploymentStatus = "Deployed"
	Expended  DeploymentStatus = "Expended"
)

// Valid reports whether s is a known deployment status.
func (s DeploymentStatus) Valid() bool {
	return s == InReserve || s == Deployed || s == Expended
}

// MaxOperationProgress is the highest value of an operation progress counter.
const MaxOperationProgress = 3

// PilotReserve is a reserve held by a pilot.
type PilotReserve struct {
	ReserveID        string           `json:"reserveId" validate:"required"`
	DeploymentStatus DeploymentStatus `json:"deploymentStatus" validate:"oneof='In Reserve' Deployed Expended"`
}

// Pilot is a player character. A pilot's balance is never stored; it is the sum of
// the ledger transactions listed in PersonalTransactions.
type Pilot struct {
	ID                        string         `json:"id"`
	Name                      string         `json:"name" validate:"required,max=100"`
	Callsign                  string         `json:"callsign" validate:"max=50"`
	LicenseLevel              int            `json:"licenseLevel" validate:"min=0,max=12"`
	Notes                     string         `json:"notes" validate:"max=5000"`
	Active                    bool           `json:"active"`
	RelatedJobs               []string       `json:"relatedJobs"`
	PersonalOperationProgress int            `json:"personalOperationProgress" validate:"min=0,max=3"`
	PersonalTransactions      []string       `json:"personalTransactions"`
	Reserves                  []PilotReserve `json:"reserves" validate:"dive"`
}

// HasTransaction reports whether the pilot references the transaction.
func (p *Pilot) HasTransaction(id string) bool {
	for _, txID := range p.PersonalTransactions {
		if txID == id {
			return true
		}
	}
	return false
}

// PilotReserveView is a held reserve with its catalog entry resolved (nil when dangling).
type PilotReserveView struct {
	PilotReserve
	Reserve *Reserve `json:"reserve"`
}

// PilotView is a pilot enriched with the derived balance and resolved reserves.
type PilotView struct {
	Pilot
	Balance        int64              `json:"balance"`
	ReserveDetails []PilotReserveView `json:"reserveDetails"`
}
