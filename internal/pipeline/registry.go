// Package pipeline owns hiring pipelines: named, ordered stage lists that a
// job's applications move through.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"jobmate/hiring-service/internal/model"
	"jobmate/hiring-service/internal/store"
)

// Registry creates, edits and reads pipelines.
type Registry struct {
	repo   store.PipelineRepo
	logger *slog.Logger
}

// NewRegistry returns a Registry over repo. A nil logger uses slog.Default().
func NewRegistry(repo store.PipelineRepo, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{repo: repo, logger: logger}
}

type createInput struct {
	Name   string   `json:"name" validate:"notblank"`
	Stages []string `json:"stages" validate:"min=1,dive,notblank"`
}

type stageInput struct {
	ID   string `json:"id"`
	Name string `json:"name" validate:"notblank"`
}

type updateInput struct {
	ID     string       `json:"id" validate:"notblank"`
	Name   string       `json:"name" validate:"notblank"`
	Stages []stageInput `json:"stages" validate:"min=1,dive"`
}

// Create stores a new pipeline whose stages take order 1..N in the given
// sequence.
func (r *Registry) Create(ctx context.Context, name string, stageNames []string) (*model.Pipeline, error) {
	if err := model.Validate(createInput{Name: name, Stages: stageNames}); err != nil {
		return nil, err
	}
	p := &model.Pipeline{
		ID:     "pipeline-" + uuid.NewString(),
		Name:   name,
		Stages: make([]model.Stage, 0, len(stageNames)),
	}
	for i, n := range stageNames {
		p.Stages = append(p.Stages, model.Stage{ID: newStageID(), Name: n, Order: i + 1})
	}
	if err := r.repo.CreatePipeline(ctx, p); err != nil {
		return nil, fmt.Errorf("create pipeline: %w", err)
	}
	r.logger.Info("pipeline created", "pipelineId", p.ID, "stages", len(p.Stages))
	return p, nil
}

// Update replaces the stored definition of p.ID. Stages are renumbered 1..N
// in list order; stages without an id get a fresh one. Applications already
// in flight are neither migrated nor revalidated.
func (r *Registry) Update(ctx context.Context, p *model.Pipeline) (*model.Pipeline, error) {
	in := updateInput{ID: p.ID, Name: p.Name, Stages: make([]stageInput, 0, len(p.Stages))}
	for _, s := range p.Stages {
		in.Stages = append(in.Stages, stageInput{ID: s.ID, Name: s.Name})
	}
	if err := model.Validate(in); err != nil {
		return nil, err
	}

	next := &model.Pipeline{ID: p.ID, Name: p.Name, Stages: make([]model.Stage, 0, len(p.Stages))}
	for i, s := range p.Stages {
		id := s.ID
		if id == "" {
			id = newStageID()
		}
		next.Stages = append(next.Stages, model.Stage{ID: id, Name: s.Name, Order: i + 1})
	}
	if err := r.repo.UpdatePipeline(ctx, next); err != nil {
		return nil, err
	}
	r.logger.Info("pipeline updated", "pipelineId", next.ID, "stages", len(next.Stages))
	return next, nil
}

// Get returns the pipeline or nil when id is unknown.
func (r *Registry) Get(ctx context.Context, id string) (*model.Pipeline, error) {
	return r.repo.GetPipeline(ctx, id)
}

func (r *Registry) List(ctx context.Context) ([]model.Pipeline, error) {
	return r.repo.ListPipelines(ctx)
}

func newStageID() string { return "stage-" + uuid.NewString() }
