// Package kanban is the application lifecycle store: it places new
// applications at their pipeline's first stage, records stage transitions
// with a timestamped history and serves the per-job and per-applicant views.
// It is transport-agnostic: used by the REST api and the gRPC server.
package kanban

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"jobmate/hiring-service/internal/events"
	"jobmate/hiring-service/internal/identity"
	"jobmate/hiring-service/internal/model"
	"jobmate/hiring-service/internal/pipeline"
	"jobmate/hiring-service/internal/progress"
	"jobmate/hiring-service/internal/store"
)

// ─── Service ─────────────────────────────────────────────────────────────────

// Service exclusively owns applications and their history.
type Service struct {
	apps       store.ApplicationRepo
	jobs       store.JobRepo
	pipelines  store.PipelineRepo
	applicants store.ApplicantRepo
	identity   *identity.Resolver
	pub        events.Publisher
	now        func() time.Time
	logger     *slog.Logger
}

type Option func(*Service)

// WithClock sets the source of history timestamps.
func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

func WithPublisher(p events.Publisher) Option { return func(s *Service) { s.pub = p } }

func WithLogger(l *slog.Logger) Option { return func(s *Service) { s.logger = l } }

// NewService returns a Service over st. The resolver is used by Apply.
func NewService(st *store.Store, resolver *identity.Resolver, opts ...Option) *Service {
	s := &Service{
		apps:       st.Applications,
		jobs:       st.Jobs,
		pipelines:  st.Pipelines,
		applicants: st.Applicants,
		identity:   resolver,
		pub:        events.LogPublisher{},
		now:        func() time.Time { return time.Now().UTC() },
		logger:     slog.Default(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// ─── Submission ──────────────────────────────────────────────────────────────

// Submit creates an application for an already resolved applicant, placed at
// the stage with order 1 of the job's pipeline. Repeated submissions create
// separate applications.
func (s *Service) Submit(ctx context.Context, jobID, applicantID, applicantName, applicantEmail string) (*model.Application, error) {
	job, p, err := s.jobWithPipeline(ctx, jobID)
	if err != nil {
		return nil, err
	}
	return s.submit(ctx, job, p, applicantID, applicantName, applicantEmail)
}

func (s *Service) jobWithPipeline(ctx context.Context, jobID string) (*model.Job, *model.Pipeline, error) {
	job, err := s.jobs.GetJob(ctx, jobID)
	if err != nil {
		return nil, nil, fmt.Errorf("get job: %w", err)
	}
	if job == nil {
		return nil, nil, model.NotFound("job", jobID)
	}
	p, err := s.pipelines.GetPipeline(ctx, job.PipelineID)
	if err != nil {
		return nil, nil, fmt.Errorf("get pipeline: %w", err)
	}
	if p == nil {
		return nil, nil, &model.ConfigurationError{
			Msg: fmt.Sprintf("job %s references missing pipeline %s", job.ID, job.PipelineID),
		}
	}
	return job, p, nil
}

func (s *Service) submit(ctx context.Context, job *model.Job, p *model.Pipeline, applicantID, name, email string) (*model.Application, error) {
	first, err := pipeline.Initial(p)
	if err != nil {
		return nil, err
	}
	now := s.now()
	app := &model.Application{
		ID:             "app-" + uuid.NewString(),
		JobID:          job.ID,
		ApplicantID:    applicantID,
		ApplicantName:  name,
		ApplicantEmail: email,
		SubmissionDate: now,
		CurrentStage:   first.Name,
		StatusHistory:  []model.StatusEntry{{Stage: first.Name, Date: now}},
	}
	if err := s.apps.CreateApplication(ctx, app); err != nil {
		return nil, fmt.Errorf("create application: %w", err)
	}

	s.pub.Publish(ctx, events.ApplicationSubmitted, map[string]any{
		"applicationId": app.ID,
		"jobId":         job.ID,
		"applicantId":   applicantID,
		"stage":         first.Name,
	})
	s.logger.Info("application submitted", "applicationId", app.ID, "jobId", job.ID)
	return app, nil
}

// ApplyInput is the public application form.
type ApplyInput struct {
	Name       string `json:"name" validate:"notblank,min=2"`
	Email      string `json:"email" validate:"required,email"`
	Phone      string `json:"phone"`
	ResumeText string `json:"resumeText" validate:"min=50"`
	ResumeURL  string `json:"resumeUrl" validate:"omitempty,url"`
}

// Apply resolves the applicant by email and submits in one operation. Every
// check that can fail runs before the applicant record is touched, so a
// rejected application never leaves a stray applicant behind.
func (s *Service) Apply(ctx context.Context, jobID string, in ApplyInput) (*model.Application, error) {
	in.Email = strings.TrimSpace(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	if err := model.Validate(in); err != nil {
		return nil, err
	}
	job, p, err := s.jobWithPipeline(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status == model.JobClosed {
		return nil, model.Invalid("job %s is closed to new applications", job.ID)
	}
	if _, err := pipeline.Initial(p); err != nil {
		return nil, err
	}

	fields := model.ProfileFields{Name: in.Name, ResumeText: &in.ResumeText}
	if in.Phone != "" {
		fields.Phone = &in.Phone
	}
	if in.ResumeURL != "" {
		fields.ResumeURL = &in.ResumeURL
	}
	applicant, err := s.identity.Resolve(ctx, in.Email, fields)
	if err != nil {
		return nil, err
	}
	return s.submit(ctx, job, p, applicant.ID, applicant.Name, applicant.Email)
}

// ─── Transitions ─────────────────────────────────────────────────────────────

// Transition moves the application to stage. The stage is not checked against
// the job's pipeline: ad-hoc stage names are allowed.
func (s *Service) Transition(ctx context.Context, appID, stage string) (*model.Application, error) {
	return s.TransitionWithNotes(ctx, appID, stage, "")
}

// TransitionWithNotes is Transition with a note on the history entry.
func (s *Service) TransitionWithNotes(ctx context.Context, appID, stage, notes string) (*model.Application, error) {
	current, err := s.apps.GetApplication(ctx, appID)
	if err != nil {
		return nil, fmt.Errorf("get application: %w", err)
	}
	if current == nil {
		return nil, model.NotFound("application", appID)
	}

	app, err := s.apps.AppendStage(ctx, appID, model.StatusEntry{Stage: stage, Date: s.now(), Notes: notes})
	if err != nil {
		return nil, err
	}

	m := newMove(app, current.CurrentStage)
	s.pub.Publish(ctx, events.StageChanged, m.fields())
	s.logger.Info("application moved", "applicationId", appID, "from", m.From, "to", m.To)
	return app, nil
}

// ─── Reads ───────────────────────────────────────────────────────────────────

// Get returns the application or nil when id is unknown.
func (s *Service) Get(ctx context.Context, appID string) (*model.Application, error) {
	return s.apps.GetApplication(ctx, appID)
}

// ListForJob returns the job's applications by submission date, each joined
// with the applicant's current resume URL.
func (s *Service) ListForJob(ctx context.Context, jobID string) ([]model.ApplicationView, error) {
	apps, err := s.apps.ListApplicationsByJob(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("list applications for job: %w", err)
	}
	return s.withResumeURLs(ctx, apps)
}

// ListForApplicantEmail returns every application submitted under email.
func (s *Service) ListForApplicantEmail(ctx context.Context, email string) ([]model.ApplicationView, error) {
	apps, err := s.apps.ListApplicationsByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("list applications for applicant: %w", err)
	}
	return s.withResumeURLs(ctx, apps)
}

func (s *Service) withResumeURLs(ctx context.Context, apps []model.Application) ([]model.ApplicationView, error) {
	urls := make(map[string]string)
	out := make([]model.ApplicationView, 0, len(apps))
	for _, a := range apps {
		url, seen := urls[a.ApplicantID]
		if !seen {
			applicant, err := s.applicants.GetApplicant(ctx, a.ApplicantID)
			if err != nil {
				return nil, fmt.Errorf("get applicant: %w", err)
			}
			if applicant != nil {
				url = applicant.ResumeURL
			}
			urls[a.ApplicantID] = url
		}
		out = append(out, model.ApplicationView{Application: a, ResumeURL: url})
	}
	return out, nil
}

// PipelineFor returns the pipeline currently assigned to the job, or nil if
// the job or its pipeline is gone.
func (s *Service) PipelineFor(ctx context.Context, jobID string) (*model.Pipeline, error) {
	job, err := s.jobs.GetJob(ctx, jobID)
	if err != nil || job == nil {
		return nil, err
	}
	return s.pipelines.GetPipeline(ctx, job.PipelineID)
}

// Progress returns the completion percentage of a under its job's current
// pipeline.
func (s *Service) Progress(ctx context.Context, a *model.Application) (int, error) {
	p, err := s.PipelineFor(ctx, a.JobID)
	if err != nil {
		return 0, err
	}
	return progress.Percent(a.CurrentStage, p), nil
}
