// Package jobs manages job postings: creation, edits, pipeline assignment and
// the deadline views.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"jobmate/hiring-service/internal/events"
	"jobmate/hiring-service/internal/model"
	"jobmate/hiring-service/internal/store"
)

// Catalog owns Job records.
type Catalog struct {
	jobs      store.JobRepo
	pipelines store.PipelineRepo
	pub       events.Publisher
	now       func() time.Time
	logger    *slog.Logger
}

type Option func(*Catalog)

func WithClock(now func() time.Time) Option { return func(c *Catalog) { c.now = now } }

func WithPublisher(p events.Publisher) Option { return func(c *Catalog) { c.pub = p } }

func WithLogger(l *slog.Logger) Option { return func(c *Catalog) { c.logger = l } }

func NewCatalog(jobs store.JobRepo, pipelines store.PipelineRepo, opts ...Option) *Catalog {
	c := &Catalog{
		jobs:      jobs,
		pipelines: pipelines,
		pub:       events.LogPublisher{},
		now:       func() time.Time { return time.Now().UTC() },
		logger:    slog.Default(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Input is the editable part of a Job.
type Input struct {
	Title        string          `json:"title" validate:"notblank"`
	Location     string          `json:"location"`
	Description  string          `json:"description" validate:"notblank"`
	Requirements []string        `json:"requirements"`
	Deadline     time.Time       `json:"deadline"`
	Status       model.JobStatus `json:"status" validate:"omitempty,oneof=Open Closed"`
	PipelineID   string          `json:"pipelineId" validate:"notblank"`
}

func (c *Catalog) validate(ctx context.Context, in Input) error {
	if err := model.Validate(in); err != nil {
		return err
	}
	if in.Deadline.IsZero() {
		return model.Invalid("deadline is required")
	}
	return c.requirePipeline(ctx, in.PipelineID)
}

func (c *Catalog) requirePipeline(ctx context.Context, id string) error {
	p, err := c.pipelines.GetPipeline(ctx, id)
	if err != nil {
		return fmt.Errorf("get pipeline: %w", err)
	}
	if p == nil {
		return model.Invalid("pipeline %s does not exist", id)
	}
	return nil
}

// Create posts a new job. Status defaults to Open and the posted date is now.
func (c *Catalog) Create(ctx context.Context, in Input) (*model.Job, error) {
	if err := c.validate(ctx, in); err != nil {
		return nil, err
	}
	j := &model.Job{
		ID:         "job-" + uuid.NewString(),
		PostedDate: c.now(),
	}
	fill(j, in)
	if err := c.jobs.CreateJob(ctx, j); err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}
	c.logger.Info("job created", "jobId", j.ID, "pipelineId", j.PipelineID)
	return j, nil
}

// Update replaces the editable fields of job id.
func (c *Catalog) Update(ctx context.Context, id string, in Input) (*model.Job, error) {
	if err := c.validate(ctx, in); err != nil {
		return nil, err
	}
	j, err := c.jobs.GetJob(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	if j == nil {
		return nil, model.NotFound("job", id)
	}
	fill(j, in)
	if err := c.jobs.UpdateJob(ctx, j); err != nil {
		return nil, err
	}
	return j, nil
}

func fill(j *model.Job, in Input) {
	j.Title = strings.TrimSpace(in.Title)
	j.Location = strings.TrimSpace(in.Location)
	j.Description = in.Description
	j.Requirements = normalizeRequirements(in.Requirements)
	j.Deadline = in.Deadline.UTC()
	j.PipelineID = in.PipelineID
	if in.Status != "" {
		j.Status = in.Status
	}
	if j.Status == "" {
		j.Status = model.JobOpen
	}
}

// normalizeRequirements trims entries and drops blanks and repeats, keeping
// first-seen order.
func normalizeRequirements(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, r := range in {
		r = strings.TrimSpace(r)
		if r == "" || seen[r] {
			continue
		}
		seen[r] = true
		out = append(out, r)
	}
	return out
}

// AssignPipeline points the job at another pipeline. Applications keep their
// current stage string; only its interpretation changes.
func (c *Catalog) AssignPipeline(ctx context.Context, jobID, pipelineID string) (*model.Job, error) {
	if err := c.requirePipeline(ctx, pipelineID); err != nil {
		return nil, err
	}
	j, err := c.jobs.GetJob(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	if j == nil {
		return nil, model.NotFound("job", jobID)
	}
	j.PipelineID = pipelineID
	if err := c.jobs.UpdateJob(ctx, j); err != nil {
		return nil, err
	}
	c.logger.Info("job pipeline reassigned", "jobId", jobID, "pipelineId", pipelineID)
	return j, nil
}

// Get returns the job or nil when id is unknown.
func (c *Catalog) Get(ctx context.Context, id string) (*model.Job, error) {
	return c.jobs.GetJob(ctx, id)
}

// List returns jobs in posting order, optionally only those with status.
func (c *Catalog) List(ctx context.Context, status model.JobStatus) ([]model.Job, error) {
	all, err := c.jobs.ListJobs(ctx)
	if err != nil {
		return nil, err
	}
	if status == "" {
		return all, nil
	}
	out := make([]model.Job, 0, len(all))
	for _, j := range all {
		if j.Status == status {
			out = append(out, j)
		}
	}
	return out, nil
}

// UpcomingDeadlines lists jobs whose deadline is not before now, soonest
// first.
func (c *Catalog) UpcomingDeadlines(ctx context.Context, openOnly bool) ([]model.Job, error) {
	all, err := c.jobs.ListJobs(ctx)
	if err != nil {
		return nil, err
	}
	now := c.now()
	out := make([]model.Job, 0, len(all))
	for _, j := range all {
		if j.Deadline.Before(now) {
			continue
		}
		if openOnly && j.Status != model.JobOpen {
			continue
		}
		out = append(out, j)
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].Deadline.Before(out[b].Deadline) })
	return out, nil
}

// CloseExpired closes every open job whose deadline has passed and returns
// the closed jobs.
func (c *Catalog) CloseExpired(ctx context.Context) ([]model.Job, error) {
	all, err := c.jobs.ListJobs(ctx)
	if err != nil {
		return nil, err
	}
	now := c.now()
	closed := make([]model.Job, 0)
	for _, j := range all {
		if j.Status != model.JobOpen || !j.Deadline.Before(now) {
			continue
		}
		j.Status = model.JobClosed
		if err := c.jobs.UpdateJob(ctx, &j); err != nil {
			return closed, fmt.Errorf("close job %s: %w", j.ID, err)
		}
		closed = append(closed, j)
		c.pub.Publish(ctx, events.JobClosed, map[string]any{
			"jobId":    j.ID,
			"deadline": j.Deadline.Format(time.RFC3339),
		})
	}
	if len(closed) > 0 {
		c.logger.Info("closed expired jobs", "count", len(closed))
	}
	return closed, nil
}
