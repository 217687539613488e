package models

// JobState is the lifecycle state of a job.
type JobState string

const (
	JobPending  JobState = "Pending"
	JobActive   JobState = "Active"
	JobComplete JobState = "Complete"
	JobFailed   JobState = "Failed"
	JobIgnored  JobState = "Ignored"
)

// JobStates lists every valid job state.
var JobStates = []JobState{JobPending, JobActive, JobComplete, JobFailed, JobIgnored}

// Valid reports whether s is a known job state.
func (s JobState) Valid() bool {
	for _, state := range JobStates {
		if s == state {
			return true
		}
	}
	return false
}

// Job is a contract offered to the pilots.
type Job struct {
	ID            string   `json:"id"`
	Name          string   `json:"name" validate:"required,max=100"`
	Rank          int      `json:"rank" validate:"min=1,max=3"`
	JobType       string   `json:"jobType" validate:"max=50"`
	Description   string   `json:"description" validate:"max=2000"`
	ClientBrief   string   `json:"clientBrief" validate:"max=2000"`
	CurrencyPay   string   `json:"currencyPay" validate:"max=500"`
	AdditionalPay string   `json:"additionalPay" validate:"max=500"`
	Emblem        string   `json:"emblem"`
	State         JobState `json:"state" validate:"oneof=Pending Active Complete Failed Ignored"`
	FactionID     *string  `json:"factionId"`
}

// JobView is a job enriched with its resolved faction.
type JobView struct {
	Job
	Faction *FactionView `json:"faction"`
}
