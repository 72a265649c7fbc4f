package store

import (
	"context"
	"fmt"

	"jobmate/hiring-service/internal/model"
)

// Snapshot is the persisted-state shape: flat collections keyed by string id,
// serialisable as JSON or YAML.
type Snapshot struct {
	Pipelines    []model.Pipeline    `json:"pipelines" yaml:"pipelines"`
	Jobs         []model.Job         `json:"jobs" yaml:"jobs"`
	Applicants   []model.Applicant   `json:"applicants" yaml:"applicants"`
	Applications []model.Application `json:"applications" yaml:"applications"`
}

// Export reads every collection of s.
func Export(ctx context.Context, s *Store) (*Snapshot, error) {
	pipelines, err := s.Pipelines.ListPipelines(ctx)
	if err != nil {
		return nil, fmt.Errorf("export pipelines: %w", err)
	}
	jobs, err := s.Jobs.ListJobs(ctx)
	if err != nil {
		return nil, fmt.Errorf("export jobs: %w", err)
	}
	applicants, err := s.Applicants.ListApplicants(ctx)
	if err != nil {
		return nil, fmt.Errorf("export applicants: %w", err)
	}
	apps, err := s.Applications.ListApplications(ctx)
	if err != nil {
		return nil, fmt.Errorf("export applications: %w", err)
	}
	return &Snapshot{Pipelines: pipelines, Jobs: jobs, Applicants: applicants, Applications: apps}, nil
}

// Import creates every record of snap in s. Records are written in dependency
// order; the first failure aborts the import.
func Import(ctx context.Context, s *Store, snap *Snapshot) error {
	for i := range snap.Pipelines {
		if err := s.Pipelines.CreatePipeline(ctx, &snap.Pipelines[i]); err != nil {
			return fmt.Errorf("import pipeline %s: %w", snap.Pipelines[i].ID, err)
		}
	}
	for i := range snap.Jobs {
		if err := s.Jobs.CreateJob(ctx, &snap.Jobs[i]); err != nil {
			return fmt.Errorf("import job %s: %w", snap.Jobs[i].ID, err)
		}
	}
	for i := range snap.Applicants {
		if err := s.Applicants.CreateApplicant(ctx, &snap.Applicants[i]); err != nil {
			return fmt.Errorf("import applicant %s: %w", snap.Applicants[i].ID, err)
		}
	}
	for i := range snap.Applications {
		if err := s.Applications.CreateApplication(ctx, &snap.Applications[i]); err != nil {
			return fmt.Errorf("import application %s: %w", snap.Applications[i].ID, err)
		}
	}
	return nil
}
