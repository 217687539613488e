package services

import (
	"context"
	"slices"

	"github.com/localnerve/ops-portal/internal/models"
	"github.com/localnerve/ops-portal/internal/store"
	"github.com/localnerve/ops-portal/internal/types"
	"github.com/localnerve/ops-portal/internal/validation"
)

// ListJobs returns every job with its faction resolved.
func (s *Service) ListJobs(ctx context.Context) ([]models.JobView, error) {
	jobs, err := s.loadJobs(ctx)
	if err != nil {
		return nil, err
	}
	factions, err := s.loadFactions(ctx)
	if err != nil {
		return nil, err
	}
	return enrichJobs(jobs, factions), nil
}

// GetJob returns one enriched job.
func (s *Service) GetJob(ctx context.Context, id string) (models.JobView, error) {
	views, err := s.ListJobs(ctx)
	if err != nil {
		return models.JobView{}, err
	}
	for _, v := range views {
		if v.ID == id {
			return v, nil
		}
	}
	return models.JobView{}, types.NotFoundError("job %s not found", id)
}

func (s *Service) jobRefs(factions []models.Faction) validation.Refs {
	return validation.Refs{
		Factions:     validation.IDsOf(factions, func(f models.Faction) string { return f.ID }),
		EmblemExists: s.emblemExists,
	}
}

func findJob(jobs []models.Job, id string) int {
	return slices.IndexFunc(jobs, func(j models.Job) bool { return j.ID == id })
}

// CreateJob validates and appends a job.
func (s *Service) CreateJob(ctx context.Context, in validation.JobInput) (models.JobView, error) {
	var out models.JobView
	err := s.mutate(ctx, "job.create", []store.Collection{store.Jobs, store.Factions}, func(m *mutation) error {
		jobs, err := s.loadJobs(ctx)
		if err != nil {
			return err
		}
		factions, err := s.loadFactions(ctx)
		if err != nil {
			return err
		}

		job, err := validation.Job(in, s.jobRefs(factions))
		if err != nil {
			return err
		}
		job.ID = s.newID()
		jobs = append(jobs, job)
		m.stage(store.Jobs, jobs)

		views := enrichJobs(jobs, factions)
		out = views[len(views)-1]
		return nil
	})
	return out, err
}

// UpdateJob replaces every field of a job except its ID.
func (s *Service) UpdateJob(ctx context.Context, id string, in validation.JobInput) (models.JobView, error) {
	var out models.JobView
	err := s.mutate(ctx, "job.update", []store.Collection{store.Jobs, store.Factions}, func(m *mutation) error {
		jobs, err := s.loadJobs(ctx)
		if err != nil {
			return err
		}
		i := findJob(jobs, id)
		if i < 0 {
			return types.NotFoundError("job %s not found", id)
		}
		factions, err := s.loadFactions(ctx)
		if err != nil {
			return err
		}

		job, err := validation.Job(in, s.jobRefs(factions))
		if err != nil {
			return err
		}
		job.ID = id
		jobs[i] = job
		m.stage(store.Jobs, jobs)

		out = enrichJobs(jobs, factions)[i]
		return nil
	})
	return out, err
}

// SetJobState changes only the state of a job.
func (s *Service) SetJobState(ctx context.Context, id, state string) (models.JobView, error) {
	var out models.JobView
	err := s.mutate(ctx, "job.state", []store.Collection{store.Jobs}, func(m *mutation) error {
		next, err := validation.JobState(state)
		if err != nil {
			return err
		}
		jobs, err := s.loadJobs(ctx)
		if err != nil {
			return err
		}
		i := findJob(jobs, id)
		if i < 0 {
			return types.NotFoundError("job %s not found", id)
		}
		jobs[i].State = next
		m.stage(store.Jobs, jobs)

		factions, err := s.loadFactions(ctx)
		if err != nil {
			return err
		}
		out = enrichJobs(jobs, factions)[i]
		return nil
	})
	return out, err
}

// JobProgress summarizes a bulk progression.
type JobProgress struct {
	Activated int `json:"activated"`
	Ignored   int `json:"ignored"`
}

// ProgressJobs moves every Active job to Ignored and every Pending job to Active, in one step.
func (s *Service) ProgressJobs(ctx context.Context) (JobProgress, error) {
	var out JobProgress
	err := s.mutate(ctx, "job.progress", []store.Collection{store.Jobs}, func(m *mutation) error {
		jobs, err := s.loadJobs(ctx)
		if err != nil {
			return err
		}
		for i := range jobs {
			switch jobs[i].State {
			case models.JobActive:
				jobs[i].State = models.JobIgnored
				out.Ignored++
			case models.JobPending:
				jobs[i].State = models.JobActive
				out.Activated++
			}
		}
		if out.Activated+out.Ignored > 0 {
			m.stage(store.Jobs, jobs)
		}
		return nil
	})
	return out, err
}

// DeleteJob removes a job and prunes it from every pilot's related jobs.
func (s *Service) DeleteJob(ctx context.Context, id string) error {
	return s.mutate(ctx, "job.delete", []store.Collection{store.Jobs, store.Pilots}, func(m *mutation) error {
		jobs, err := s.loadJobs(ctx)
		if err != nil {
			return err
		}
		i := findJob(jobs, id)
		if i < 0 {
			return types.NotFoundError("job %s not found", id)
		}
		m.stage(store.Jobs, slices.Delete(jobs, i, i+1))

		pilots, err := s.loadPilots(ctx)
		if err != nil {
			return err
		}
		pruned := false
		for k := range pilots {
			if slices.Contains(pilots[k].RelatedJobs, id) {
				pilots[k].RelatedJobs = removeString(pilots[k].RelatedJobs, id)
				pruned = true
			}
		}
		if pruned {
			m.stage(store.Pilots, pilots)
		}
		return nil
	})
}

func removeString(list []string, value string) []string {
	out := make([]string, 0, len(list))
	for _, v := range list {
		if v != value {
			out = append(out, v)
		}
	}
	return out
}
