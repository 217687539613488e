package services

import (
	"github.com/localnerve/ops-portal/internal/ledger"
	"github.com/localnerve/ops-portal/internal/models"
)

// enrichFactions adds the standing label and live job counts to each faction.
func enrichFactions(factions []models.Faction, jobs []models.Job) []models.FactionView {
	completed := make(map[string]int)
	failed := make(map[string]int)
	for _, j := range jobs {
		if j.FactionID == nil {
			continue
		}
		switch j.State {
		case models.JobComplete:
			completed[*j.FactionID]++
		case models.JobFailed:
			failed[*j.FactionID]++
		}
	}

	out := make([]models.FactionView, len(factions))
	for i, f := range factions {
		out[i] = models.FactionView{
			Faction:       f,
			StandingLabel: models.StandingLabel(f.Standing),
			JobsCompleted: f.JobsCompletedOffset + completed[f.ID],
			JobsFailed:    f.JobsFailedOffset + failed[f.ID],
		}
	}
	return out
}

// enrichJobs resolves each job's faction. A dangling faction ID resolves to nil.
func enrichJobs(jobs []models.Job, factions []models.Faction) []models.JobView {
	views := enrichFactions(factions, jobs)
	byID := make(map[string]*models.FactionView, len(views))
	for i := range views {
		byID[views[i].ID] = &views[i]
	}

	out := make([]models.JobView, len(jobs))
	for i, j := range jobs {
		out[i] = models.JobView{Job: j}
		if j.FactionID != nil {
			if f, ok := byID[*j.FactionID]; ok {
				fv := *f
				out[i].Faction = &fv
			}
		}
	}
	return out
}

// enrichPilots adds derived balances and resolves held reserves.
func enrichPilots(pilots []models.Pilot, transactions []models.Transaction, reserves []models.Reserve) []models.PilotView {
	idx := ledger.NewIndex(transactions)
	catalog := make(map[string]models.Reserve, len(reserves))
	for _, r := range reserves {
		catalog[r.ID] = r
	}

	out := make([]models.PilotView, len(pilots))
	for i, p := range pilots {
		details := make([]models.PilotReserveView, len(p.Reserves))
		for k, held := range p.Reserves {
			details[k] = models.PilotReserveView{PilotReserve: held}
			if r, ok := catalog[held.ReserveID]; ok {
				details[k].Reserve = &r
			}
		}
		out[i] = models.PilotView{
			Pilot:          normalizePilot(p),
			Balance:        ledger.Balance(p, idx),
			ReserveDetails: details,
		}
	}
	return out
}

// normalizePilot replaces nil lists so clients always see arrays.
func normalizePilot(p models.Pilot) models.Pilot {
	if p.RelatedJobs == nil {
		p.RelatedJobs = []string{}
	}
	if p.PersonalTransactions == nil {
		p.PersonalTransactions = []string{}
	}
	if p.Reserves == nil {
		p.Reserves = []models.PilotReserve{}
	}
	return p
}
