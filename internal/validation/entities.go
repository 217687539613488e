package validation

import (
	"strings"

	"github.com/localnerve/ops-portal/internal/models"
	"github.com/localnerve/ops-portal/internal/types"
)

// JobInput is the request body for creating or replacing a job.
type JobInput struct {
	Name          string           `json:"name"`
	Rank          types.FlexNumber `json:"rank"`
	JobType       string           `json:"jobType"`
	Description   string           `json:"description"`
	ClientBrief   string           `json:"clientBrief"`
	CurrencyPay   types.FlexString `json:"currencyPay"`
	AdditionalPay string           `json:"additionalPay"`
	Emblem        string           `json:"emblem"`
	State         *string          `json:"state"`
	FactionID     *string          `json:"factionId"`
}

// Job validates a job. An omitted state defaults to Pending, an unknown one is rejected.
func Job(in JobInput, refs Refs) (models.Job, error) {
	rank, err := intField("rank", in.Rank, 1)
	if err != nil {
		return models.Job{}, err
	}

	state := models.JobPending
	if in.State != nil {
		state, err = JobState(*in.State)
		if err != nil {
			return models.Job{}, err
		}
	}

	job := models.Job{
		Name:          strings.TrimSpace(in.Name),
		Rank:          int(rank),
		JobType:       strings.TrimSpace(in.JobType),
		Description:   strings.TrimSpace(in.Description),
		ClientBrief:   strings.TrimSpace(in.ClientBrief),
		CurrencyPay:   strings.TrimSpace(in.CurrencyPay.String()),
		AdditionalPay: strings.TrimSpace(in.AdditionalPay),
		State:         state,
	}
	if err := checkStruct(job); err != nil {
		return models.Job{}, err
	}

	if job.Emblem, err = emblem(in.Emblem, refs); err != nil {
		return models.Job{}, err
	}

	if in.FactionID != nil {
		if id := strings.TrimSpace(*in.FactionID); id != "" {
			if refs.Factions != nil && !refs.Factions.Has(id) {
				return models.Job{}, types.ValidationError("unknown faction ID: %s", id)
			}
			job.FactionID = &id
		}
	}
	return job, nil
}

// JobState validates a job state value.
func JobState(raw string) (models.JobState, error) {
	state := models.JobState(strings.TrimSpace(raw))
	if !state.Valid() {
		return "", types.ValidationError("invalid job state %q", raw)
	}
	return state, nil
}

// FactionInput is the request body for creating or replacing a faction.
type FactionInput struct {
	Title               string           `json:"title"`
	Brief               string           `json:"brief"`
	Emblem              string           `json:"emblem"`
	Standing            types.FlexNumber `json:"standing"`
	JobsCompletedOffset types.FlexNumber `json:"jobsCompletedOffset"`
	JobsFailedOffset    types.FlexNumber `json:"jobsFailedOffset"`
}

// Faction validates a faction. Standing defaults to neutral.
func Faction(in FactionInput, refs Refs) (models.Faction, error) {
	standing, err := intField("standing", in.Standing, 2)
	if err != nil {
		return models.Faction{}, err
	}
	completed, err := intField("jobsCompletedOffset", in.JobsCompletedOffset, 0)
	if err != nil {
		return models.Faction{}, err
	}
	failed, err := intField("jobsFailedOffset", in.JobsFailedOffset, 0)
	if err != nil {
		return models.Faction{}, err
	}

	faction := models.Faction{
		Title:               strings.TrimSpace(in.Title),
		Brief:               strings.TrimSpace(in.Brief),
		Standing:            int(standing),
		JobsCompletedOffset: int(completed),
		JobsFailedOffset:    int(failed),
	}
	if err := checkStruct(faction); err != nil {
		return models.Faction{}, err
	}
	if faction.Emblem, err = emblem(in.Emblem, refs); err != nil {
		return models.Faction{}, err
	}
	return faction, nil
}

// PilotReserveInput is a reserve held by a pilot.
type PilotReserveInput struct {
	ReserveID        string `json:"reserveId"`
	DeploymentStatus string `json:"deploymentStatus"`
}

// PilotInput is the request body for creating or replacing a pilot.
type PilotInput struct {
	Name                      string                 `json:"name"`
	Callsign                  string                 `json:"callsign"`
	LicenseLevel              types.FlexNumber       `json:"licenseLevel"`
	Notes                     string                 `json:"notes"`
	Active                    *bool                  `json:"active"`
	RelatedJobs               types.FlexList[string] `json:"relatedJobs"`
	PersonalOperationProgress types.FlexNumber       `json:"personalOperationProgress"`
	PersonalTransactions      types.FlexList[string] `json:"personalTransactions"`
	Reserves                  []PilotReserveInput    `json:"reserves"`
}

// Pilot validates a pilot and every ID it references. All unknown IDs of a kind are
// reported together.
func Pilot(in PilotInput, refs Refs) (models.Pilot, error) {
	license, err := intField("licenseLevel", in.LicenseLevel, 0)
	if err != nil {
		return models.Pilot{}, err
	}
	progress, err := intField("personalOperationProgress", in.PersonalOperationProgress, 0)
	if err != nil {
		return models.Pilot{}, err
	}

	active := true
	if in.Active != nil {
		active = *in.Active
	}

	pilot := models.Pilot{
		Name:                      strings.TrimSpace(in.Name),
		Callsign:                  strings.TrimSpace(in.Callsign),
		LicenseLevel:              int(license),
		Notes:                     strings.TrimSpace(in.Notes),
		Active:                    active,
		RelatedJobs:               uniqueIDs(in.RelatedJobs.Slice()),
		PersonalOperationProgress: int(progress),
		PersonalTransactions:      uniqueIDs(in.PersonalTransactions.Slice()),
		Reserves:                  make([]models.PilotReserve, 0, len(in.Reserves)),
	}
	for _, r := range in.Reserves {
		status := models.InReserve
		if s := strings.TrimSpace(r.DeploymentStatus); s != "" {
			status = models.DeploymentStatus(s)
		}
		pilot.Reserves = append(pilot.Reserves, models.PilotReserve{
			ReserveID:        strings.TrimSpace(r.ReserveID),
			DeploymentStatus: status,
		})
	}

	if err := checkStruct(pilot); err != nil {
		return models.Pilot{}, err
	}

	if ids := missing(pilot.RelatedJobs, refs.Jobs); len(ids) > 0 {
		return models.Pilot{}, unknownIDs("job", ids)
	}
	if ids := missing(pilot.PersonalTransactions, refs.Transactions); len(ids) > 0 {
		return models.Pilot{}, unknownIDs("transaction", ids)
	}
	reserveIDs := make([]string, 0, len(pilot.Reserves))
	for _, r := range pilot.Reserves {
		reserveIDs = append(reserveIDs, r.ReserveID)
	}
	if ids := missing(uniqueIDs(reserveIDs), refs.Reserves); len(ids) > 0 {
		return models.Pilot{}, unknownIDs("reserve", ids)
	}
	return pilot, nil
}

// DeploymentStatus validates a reserve deployment status.
func DeploymentStatus(raw string) (models.DeploymentStatus, error) {
	status := models.DeploymentStatus(strings.TrimSpace(raw))
	if !status.Valid() {
		return "", types.ValidationError("invalid deployment status %q", raw)
	}
	return status, nil
}
