// Package memory is the in-process store backend. It stands in for a remote
// store: every call optionally waits a simulated latency before it runs.
//
// A single mutex keeps the maps consistent. There are no cross-call
// transactions or version checks, so two concurrent AppendStage calls on one
// application both land in the history and the later one wins currentStage.
package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"jobmate/hiring-service/internal/model"
	"jobmate/hiring-service/internal/store"
)

var _ store.Backend = (*Store)(nil)

// Store keeps each collection as a map plus an insertion-order index.
type Store struct {
	mu      sync.Mutex
	latency time.Duration

	pipelines     map[string]*model.Pipeline
	pipelineOrder []string

	jobs     map[string]*model.Job
	jobOrder []string

	applicants     map[string]*model.Applicant
	applicantEmail map[string]string
	applicantOrder []string

	applications     map[string]*model.Application
	applicationOrder []string
}

// Option configures a Store.
type Option func(*Store)

// WithLatency makes every call wait d before touching state.
func WithLatency(d time.Duration) Option {
	return func(s *Store) { s.latency = d }
}

// New returns an empty Store.
func New(opts ...Option) *Store {
	s := &Store{
		pipelines:      make(map[string]*model.Pipeline),
		jobs:           make(map[string]*model.Job),
		applicants:     make(map[string]*model.Applicant),
		applicantEmail: make(map[string]string),
		applications:   make(map[string]*model.Application),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Store) wait(ctx context.Context) error {
	if s.latency <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(s.latency)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// ─── Pipelines ────────────────────────────────────────────────────────────────

func (s *Store) CreatePipeline(ctx context.Context, p *model.Pipeline) error {
	if err := s.wait(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.pipelines[p.ID]; dup || p.ID == "" {
		return fmt.Errorf("create pipeline: invalid or duplicate id %q", p.ID)
	}
	s.pipelines[p.ID] = p.Clone()
	s.pipelineOrder = append(s.pipelineOrder, p.ID)
	return nil
}

func (s *Store) GetPipeline(ctx context.Context, id string) (*model.Pipeline, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pipelines[id]
	if !ok {
		return nil, nil
	}
	return p.Clone(), nil
}

func (s *Store) ListPipelines(ctx context.Context) ([]model.Pipeline, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Pipeline, 0, len(s.pipelineOrder))
	for _, id := range s.pipelineOrder {
		out = append(out, *s.pipelines[id].Clone())
	}
	return out, nil
}

func (s *Store) UpdatePipeline(ctx context.Context, p *model.Pipeline) error {
	if err := s.wait(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.pipelines[p.ID]; !ok {
		return model.NotFound("pipeline", p.ID)
	}
	s.pipelines[p.ID] = p.Clone()
	return nil
}

// ─── Jobs ─────────────────────────────────────────────────────────────────────

func (s *Store) CreateJob(ctx context.Context, j *model.Job) error {
	if err := s.wait(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.jobs[j.ID]; dup || j.ID == "" {
		return fmt.Errorf("create job: invalid or duplicate id %q", j.ID)
	}
	s.jobs[j.ID] = j.Clone()
	s.jobOrder = append(s.jobOrder, j.ID)
	return nil
}

func (s *Store) GetJob(ctx context.Context, id string) (*model.Job, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return nil, nil
	}
	return j.Clone(), nil
}

func (s *Store) ListJobs(ctx context.Context) ([]model.Job, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Job, 0, len(s.jobOrder))
	for _, id := range s.jobOrder {
		out = append(out, *s.jobs[id].Clone())
	}
	return out, nil
}

func (s *Store) UpdateJob(ctx context.Context, j *model.Job) error {
	if err := s.wait(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[j.ID]; !ok {
		return model.NotFound("job", j.ID)
	}
	s.jobs[j.ID] = j.Clone()
	return nil
}

// ─── Applicants ───────────────────────────────────────────────────────────────

func emailKey(email string) string { return strings.ToLower(strings.TrimSpace(email)) }

func (s *Store) CreateApplicant(ctx context.Context, a *model.Applicant) error {
	if err := s.wait(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.applicants[a.ID]; dup || a.ID == "" {
		return fmt.Errorf("create applicant: invalid or duplicate id %q", a.ID)
	}
	key := emailKey(a.Email)
	if _, dup := s.applicantEmail[key]; dup {
		return fmt.Errorf("create applicant: email %q already registered", a.Email)
	}
	s.applicants[a.ID] = a.Clone()
	s.applicantEmail[key] = a.ID
	s.applicantOrder = append(s.applicantOrder, a.ID)
	return nil
}

func (s *Store) GetApplicant(ctx context.Context, id string) (*model.Applicant, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.applicants[id]
	if !ok {
		return nil, nil
	}
	return a.Clone(), nil
}

func (s *Store) GetApplicantByEmail(ctx context.Context, email string) (*model.Applicant, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.applicantEmail[emailKey(email)]
	if !ok {
		return nil, nil
	}
	return s.applicants[id].Clone(), nil
}

func (s *Store) ListApplicants(ctx context.Context) ([]model.Applicant, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Applicant, 0, len(s.applicantOrder))
	for _, id := range s.applicantOrder {
		out = append(out, *s.applicants[id].Clone())
	}
	return out, nil
}

func (s *Store) UpdateApplicant(ctx context.Context, a *model.Applicant) error {
	if err := s.wait(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, ok := s.applicants[a.ID]
	if !ok {
		return model.NotFound("applicant", a.ID)
	}
	newKey := emailKey(a.Email)
	if oldKey := emailKey(prev.Email); oldKey != newKey {
		if owner, taken := s.applicantEmail[newKey]; taken && owner != a.ID {
			return fmt.Errorf("update applicant: email %q already registered", a.Email)
		}
		delete(s.applicantEmail, oldKey)
		s.applicantEmail[newKey] = a.ID
	}
	s.applicants[a.ID] = a.Clone()
	return nil
}

// ─── Applications ─────────────────────────────────────────────────────────────

func (s *Store) CreateApplication(ctx context.Context, a *model.Application) error {
	if err := s.wait(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.applications[a.ID]; dup || a.ID == "" {
		return fmt.Errorf("create application: invalid or duplicate id %q", a.ID)
	}
	s.applications[a.ID] = a.Clone()
	s.applicationOrder = append(s.applicationOrder, a.ID)
	return nil
}

func (s *Store) GetApplication(ctx context.Context, id string) (*model.Application, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.applications[id]
	if !ok {
		return nil, nil
	}
	return a.Clone(), nil
}

func (s *Store) ListApplications(ctx context.Context) ([]model.Application, error) {
	return s.filterApplications(ctx, func(*model.Application) bool { return true })
}

func (s *Store) ListApplicationsByJob(ctx context.Context, jobID string) ([]model.Application, error) {
	return s.filterApplications(ctx, func(a *model.Application) bool { return a.JobID == jobID })
}

func (s *Store) ListApplicationsByEmail(ctx context.Context, email string) ([]model.Application, error) {
	key := emailKey(email)
	return s.filterApplications(ctx, func(a *model.Application) bool { return emailKey(a.ApplicantEmail) == key })
}

func (s *Store) filterApplications(ctx context.Context, keep func(*model.Application) bool) ([]model.Application, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	out := make([]model.Application, 0)
	for _, id := range s.applicationOrder {
		if a := s.applications[id]; keep(a) {
			out = append(out, *a.Clone())
		}
	}
	s.mu.Unlock()
	model.SortApplications(out)
	return out, nil
}

func (s *Store) AppendStage(ctx context.Context, id string, entry model.StatusEntry) (*model.Application, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.applications[id]
	if !ok {
		return nil, model.NotFound("application", id)
	}
	a.Advance(entry)
	return a.Clone(), nil
}

func (s *Store) SetScreeningResult(ctx context.Context, id string, r model.ScreeningResult) (*model.Application, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.applications[id]
	if !ok {
		return nil, model.NotFound("application", id)
	}
	a.ScreeningResult = &r
	return a.Clone(), nil
}
