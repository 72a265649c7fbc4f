// Package screening attaches externally computed match assessments to
// applications and runs screening batches through the prompt executor.
package screening

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"jobmate/hiring-service/internal/events"
	"jobmate/hiring-service/internal/model"
	"jobmate/hiring-service/internal/pipeline"
	"jobmate/hiring-service/internal/prompt"
	"jobmate/hiring-service/internal/resume"
	"jobmate/hiring-service/internal/store"
)

const (
	// AutoAdvanceStage is the stage an application must be in for
	// auto-advance to move it on.
	AutoAdvanceStage = "AI Screening"
	AutoAdvanceNote  = "Automatically moved after AI screening."

	noResumeText = "No resume text provided."
	fetchWorkers = 4
)

// Advancer records a stage transition. *kanban.Service satisfies it.
type Advancer interface {
	TransitionWithNotes(ctx context.Context, appID, stage, notes string) (*model.Application, error)
}

// Service owns the screening result of applications. It never changes stage
// history itself; only a configured Advancer can.
type Service struct {
	apps       store.ApplicationRepo
	jobs       store.JobRepo
	applicants store.ApplicantRepo
	pipelines  store.PipelineRepo
	exec       prompt.Executor
	fetcher    *resume.Fetcher
	advancer   Advancer
	pub        events.Publisher
	logger     *slog.Logger
}

type Option func(*Service)

// WithAutoAdvance moves an application sitting in AutoAdvanceStage to the
// next pipeline stage once a result is attached. Without it attachment is
// inert.
func WithAutoAdvance(a Advancer) Option { return func(s *Service) { s.advancer = a } }

// WithFetcher enables fetching resume text from resume URLs.
func WithFetcher(f *resume.Fetcher) Option { return func(s *Service) { s.fetcher = f } }

func WithPublisher(p events.Publisher) Option { return func(s *Service) { s.pub = p } }

func WithLogger(l *slog.Logger) Option { return func(s *Service) { s.logger = l } }

func NewService(st *store.Store, exec prompt.Executor, opts ...Option) *Service {
	s := &Service{
		apps:       st.Applications,
		jobs:       st.Jobs,
		applicants: st.Applicants,
		pipelines:  st.Pipelines,
		exec:       exec,
		pub:        events.LogPublisher{},
		logger:     slog.Default(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// ─── Attachment ──────────────────────────────────────────────────────────────

// Attach sets the application's screening result, replacing any earlier one.
// Stage and history are left untouched unless auto-advance is configured.
func (s *Service) Attach(ctx context.Context, appID string, result model.ScreeningResult) (*model.Application, error) {
	app, err := s.apps.SetScreeningResult(ctx, appID, result)
	if err != nil {
		return nil, err
	}
	s.pub.Publish(ctx, events.ScreeningAttached, map[string]any{
		"applicationId": app.ID,
		"jobId":         app.JobID,
		"match":         result.Match,
	})
	if s.advancer == nil {
		return app, nil
	}
	return s.advance(ctx, app), nil
}

func (s *Service) advance(ctx context.Context, app *model.Application) *model.Application {
	if app.CurrentStage != AutoAdvanceStage {
		return app
	}
	job, err := s.jobs.GetJob(ctx, app.JobID)
	if err != nil || job == nil {
		s.logger.Warn("auto-advance: job lookup failed", "applicationId", app.ID, "err", err)
		return app
	}
	p, err := s.pipelines.GetPipeline(ctx, job.PipelineID)
	if err != nil {
		s.logger.Warn("auto-advance: pipeline lookup failed", "applicationId", app.ID, "err", err)
		return app
	}
	next, ok := pipeline.Next(p, app.CurrentStage)
	if !ok {
		return app
	}
	moved, err := s.advancer.TransitionWithNotes(ctx, app.ID, next.Name, AutoAdvanceNote)
	if err != nil {
		s.logger.Warn("auto-advance failed", "applicationId", app.ID, "err", err)
		return app
	}
	return moved
}

// ─── Batch screening ─────────────────────────────────────────────────────────

// Attached is one assessment that found its application.
type Attached struct {
	ApplicationID string `json:"applicationId"`
	ApplicantName string `json:"applicantName"`
	Match         bool   `json:"match"`
	Reason        string `json:"reason"`
}

// Report summarises one ScreenJob run.
type Report struct {
	JobID     string     `json:"jobId"`
	Requested int        `json:"requested"`
	Attached  []Attached `json:"attached"`
	// Unmatched lists assessment names that matched no selected application.
	Unmatched []string `json:"unmatched"`
	// Unscreened lists selected applications that received no assessment.
	Unscreened []string `json:"unscreened"`
}

// ScreenJob screens applications of jobID. With no appIDs it selects every
// application that has no screening result yet.
//
// Assessments are correlated by exact applicant name: each one attaches to
// the first selected application with that name that is still unmatched.
func (s *Service) ScreenJob(ctx context.Context, jobID string, appIDs []string) (*Report, error) {
	job, err := s.jobs.GetJob(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	if job == nil {
		return nil, model.NotFound("job", jobID)
	}
	all, err := s.apps.ListApplicationsByJob(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	selected, err := selectApplications(all, appIDs)
	if err != nil {
		return nil, err
	}

	report := &Report{JobID: jobID, Requested: len(selected), Attached: []Attached{}, Unmatched: []string{}, Unscreened: []string{}}
	if len(selected) == 0 {
		return report, nil
	}

	inputs, err := s.applicantInputs(ctx, selected)
	if err != nil {
		return nil, err
	}
	resp, err := s.exec.Screen(ctx, prompt.Request{
		JobPosting: prompt.JobPosting{Title: job.Title, Description: job.Description, Skills: job.Requirements},
		Applicants: inputs,
	})
	if err != nil {
		return nil, err
	}

	matched := make([]bool, len(selected))
	for _, a := range resp.Assessments {
		i := firstUnmatched(selected, matched, a.Name)
		if i < 0 {
			report.Unmatched = append(report.Unmatched, a.Name)
			continue
		}
		matched[i] = true
		if _, err := s.Attach(ctx, selected[i].ID, model.ScreeningResult{Match: a.Match, Reason: a.Reason}); err != nil {
			return report, fmt.Errorf("attach %s: %w", selected[i].ID, err)
		}
		report.Attached = append(report.Attached, Attached{
			ApplicationID: selected[i].ID, ApplicantName: a.Name, Match: a.Match, Reason: a.Reason,
		})
	}
	for i, ok := range matched {
		if !ok {
			report.Unscreened = append(report.Unscreened, selected[i].ID)
		}
	}
	s.logger.Info("screening batch done", "jobId", jobID,
		"requested", report.Requested, "attached", len(report.Attached), "unmatched", len(report.Unmatched))
	return report, nil
}

func selectApplications(all []model.Application, ids []string) ([]model.Application, error) {
	if len(ids) == 0 {
		out := make([]model.Application, 0, len(all))
		for _, a := range all {
			if a.ScreeningResult == nil {
				out = append(out, a)
			}
		}
		return out, nil
	}
	byID := make(map[string]model.Application, len(all))
	for _, a := range all {
		byID[a.ID] = a
	}
	out := make([]model.Application, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		a, ok := byID[id]
		if !ok {
			return nil, model.Invalid("application %s does not belong to this job", id)
		}
		if !seen[id] {
			seen[id] = true
			out = append(out, a)
		}
	}
	return out, nil
}

func firstUnmatched(apps []model.Application, matched []bool, name string) int {
	for i, a := range apps {
		if !matched[i] && a.ApplicantName == name {
			return i
		}
	}
	return -1
}

// applicantInputs builds one prompt entry per application. Missing resume
// text is fetched from the resume URL when possible. Applicant records are
// loaded before any fetch starts, so a lookup failure leaves nothing running.
func (s *Service) applicantInputs(ctx context.Context, apps []model.Application) ([]prompt.ApplicantInput, error) {
	inputs := make([]prompt.ApplicantInput, len(apps))
	urls := make([]string, len(apps))
	for i, app := range apps {
		inputs[i].Name = app.ApplicantName
		applicant, err := s.applicants.GetApplicant(ctx, app.ApplicantID)
		if err != nil {
			return nil, fmt.Errorf("get applicant: %w", err)
		}
		if applicant != nil && strings.TrimSpace(applicant.ResumeText) != "" {
			inputs[i].ResumeText = applicant.ResumeText
			continue
		}
		inputs[i].ResumeText = noResumeText
		if applicant != nil && s.fetcher != nil && resume.Fetchable(applicant.ResumeURL) {
			urls[i] = applicant.ResumeURL
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchWorkers)
	for i, resumeURL := range urls {
		if resumeURL == "" {
			continue
		}
		g.Go(func() error {
			text, err := s.fetcher.Text(gctx, resumeURL)
			if err != nil {
				s.logger.Warn("resume fetch failed", "applicationId", apps[i].ID, "err", err)
				return nil
			}
			if text != "" {
				inputs[i].ResumeText = text
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return inputs, nil
}
