// Package store declares the repository contracts the hiring service depends
// on. Concrete backends live in the memory, sqlite and postgres subpackages.
//
// Single-item reads return (nil, nil) for an unknown id; updates of an
// unknown id return a *model.NotFoundError. Every backend hands out copies.
package store

import (
	"context"

	"jobmate/hiring-service/internal/model"
)

type PipelineRepo interface {
	CreatePipeline(ctx context.Context, p *model.Pipeline) error
	GetPipeline(ctx context.Context, id string) (*model.Pipeline, error)
	ListPipelines(ctx context.Context) ([]model.Pipeline, error)
	UpdatePipeline(ctx context.Context, p *model.Pipeline) error
}

type JobRepo interface {
	CreateJob(ctx context.Context, j *model.Job) error
	GetJob(ctx context.Context, id string) (*model.Job, error)
	ListJobs(ctx context.Context) ([]model.Job, error)
	UpdateJob(ctx context.Context, j *model.Job) error
}

type ApplicantRepo interface {
	CreateApplicant(ctx context.Context, a *model.Applicant) error
	GetApplicant(ctx context.Context, id string) (*model.Applicant, error)
	GetApplicantByEmail(ctx context.Context, email string) (*model.Applicant, error)
	ListApplicants(ctx context.Context) ([]model.Applicant, error)
	UpdateApplicant(ctx context.Context, a *model.Applicant) error
}

type ApplicationRepo interface {
	CreateApplication(ctx context.Context, a *model.Application) error
	GetApplication(ctx context.Context, id string) (*model.Application, error)
	ListApplications(ctx context.Context) ([]model.Application, error)
	// ListApplicationsByJob and ListApplicationsByEmail order by submission
	// date ascending.
	ListApplicationsByJob(ctx context.Context, jobID string) ([]model.Application, error)
	ListApplicationsByEmail(ctx context.Context, email string) ([]model.Application, error)
	// AppendStage sets the current stage and appends entry to the history in
	// a single record write.
	AppendStage(ctx context.Context, id string, entry model.StatusEntry) (*model.Application, error)
	SetScreeningResult(ctx context.Context, id string, r model.ScreeningResult) (*model.Application, error)
}

// Store bundles the four repositories. Backends usually implement all of
// them on one type and fill every field with it.
type Store struct {
	Pipelines    PipelineRepo
	Jobs         JobRepo
	Applicants   ApplicantRepo
	Applications ApplicationRepo
}

// Backend is implemented by types that serve every repository.
type Backend interface {
	PipelineRepo
	JobRepo
	ApplicantRepo
	ApplicationRepo
}

// FromBackend fills every Store field with b.
func FromBackend(b Backend) *Store {
	return &Store{Pipelines: b, Jobs: b, Applicants: b, Applications: b}
}
