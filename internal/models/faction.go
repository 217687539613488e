package models

// StandingLabels maps a faction standing (0..4) to its display label.
var StandingLabels = []string{"DISTRUSTED", "WARY", "NEUTRAL", "FRIENDLY", "TRUSTED"}

// StandingLabel returns the label for a standing value, clamping out of range values.
func StandingLabel(standing int) string {
	if standing < 0 {
		standing = 0
	}
	if standing >= len(StandingLabels) {
		standing = len(StandingLabels) - 1
	}
	return StandingLabels[standing]
}

// Faction is an organization that offers jobs.
// The completed/failed offsets are manual adjustments added to the live job counts.
type Faction struct {
	ID                  string `json:"id"`
	Title               string `json:"title" validate:"required,max=100"`
	Brief               string `json:"brief" validate:"max=2000"`
	Emblem              string `json:"emblem"`
	Standing            int    `json:"standing" validate:"min=0,max=4"`
	JobsCompletedOffset int    `json:"jobsCompletedOffset" validate:"min=0,max=1000"`
	JobsFailedOffset    int    `json:"jobsFailedOffset" validate:"min=0,max=1000"`
}

// FactionView is a faction with derived counts. The counts are never persisted.
type FactionView struct {
	Faction
	StandingLabel string `json:"standingLabel"`
	JobsCompleted int    `json:"jobsCompleted"`
	JobsFailed    int    `json:"jobsFailed"`
}
