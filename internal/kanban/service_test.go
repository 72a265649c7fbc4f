package kanban_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"jobmate/hiring-service/internal/events"
	"jobmate/hiring-service/internal/identity"
	"jobmate/hiring-service/internal/kanban"
	"jobmate/hiring-service/internal/model"
	"jobmate/hiring-service/internal/pipeline"
	"jobmate/hiring-service/internal/progress"
	"jobmate/hiring-service/internal/store"
	"jobmate/hiring-service/internal/store/memory"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var resume = strings.Repeat("Go services, PostgreSQL, Redis and gRPC. ", 3)

type fixture struct {
	st       *store.Store
	svc      *kanban.Service
	resolver *identity.Resolver
	rec      *events.Recorder
	pipe     *model.Pipeline
	clock    *clock
}

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Minute)
	return c.t
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	st := store.FromBackend(memory.New())
	p, err := pipeline.NewRegistry(st.Pipelines, nil).Create(ctx, "Scenario",
		[]string{"Received", "Screening", "Hired", "Rejected"})
	require.NoError(t, err)
	require.NoError(t, st.Jobs.CreateJob(ctx, &model.Job{
		ID: "job-1", Title: "Backend Developer", Description: "Go", Status: model.JobOpen,
		PipelineID: p.ID, Deadline: time.Now().Add(24 * time.Hour), PostedDate: time.Now(),
	}))

	f := &fixture{st: st, rec: &events.Recorder{}, pipe: p,
		clock: &clock{t: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}}
	f.resolver = identity.NewResolver(st.Applicants)
	f.svc = kanban.NewService(st, f.resolver, kanban.WithClock(f.clock.now), kanban.WithPublisher(f.rec))
	return f
}

func (f *fixture) apply(t *testing.T, name, email string) *model.Application {
	t.Helper()
	app, err := f.svc.Apply(context.Background(), "job-1", kanban.ApplyInput{Name: name, Email: email, ResumeText: resume})
	require.NoError(t, err)
	return app
}

func assertHistoryInvariant(t *testing.T, a *model.Application) {
	t.Helper()
	require.NotEmpty(t, a.StatusHistory)
	assert.Equal(t, a.CurrentStage, a.StatusHistory[len(a.StatusHistory)-1].Stage)
}

// ── Submit ─────────────────────────────────────────────────────────────────

func TestSubmit_PlacesAtOrderOneStage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Stored order differs from traversal order.
	reordered := f.pipe.Clone()
	reordered.Stages = []model.Stage{
		{ID: "b", Name: "Interview", Order: 2}, {ID: "a", Name: "Applied", Order: 1},
	}
	require.NoError(t, f.st.Pipelines.UpdatePipeline(ctx, reordered))

	app, err := f.svc.Submit(ctx, "job-1", "applicant-1", "Alice", "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Applied", app.CurrentStage)
	require.Len(t, app.StatusHistory, 1)
	assert.Equal(t, app.SubmissionDate, app.StatusHistory[0].Date)
	require.Len(t, f.rec.On(events.ApplicationSubmitted), 1)
}

func TestSubmit_ConfigurationErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	empty := f.pipe.Clone()
	empty.Stages = nil
	require.NoError(t, f.st.Pipelines.UpdatePipeline(ctx, empty))
	_, err := f.svc.Submit(ctx, "job-1", "applicant-1", "Alice", "alice@example.com")
	assert.True(t, model.IsConfiguration(err), "got %v", err)

	require.NoError(t, f.st.Jobs.UpdateJob(ctx, &model.Job{ID: "job-1", PipelineID: "pipeline-gone", Status: model.JobOpen}))
	_, err = f.svc.Submit(ctx, "job-1", "applicant-1", "Alice", "alice@example.com")
	assert.True(t, model.IsConfiguration(err))

	_, err = f.svc.Submit(ctx, "job-missing", "applicant-1", "Alice", "alice@example.com")
	assert.True(t, errors.Is(err, model.ErrNotFound))

	all, err := f.st.Applications.ListApplications(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestSubmit_DuplicatesAreSeparateApplications(t *testing.T) {
	f := newFixture(t)
	a := f.apply(t, "Alice", "alice@example.com")
	b := f.apply(t, "Alice", "alice@example.com")
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, a.ApplicantID, b.ApplicantID)
}

// ── Apply ──────────────────────────────────────────────────────────────────

func TestApply_ReusesApplicantByEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.svc.Apply(ctx, "job-1", kanban.ApplyInput{
		Name: "Alice", Email: "alice@example.com", ResumeText: resume,
	})
	require.NoError(t, err)
	second, err := f.svc.Apply(ctx, "job-1", kanban.ApplyInput{
		Name: "Alice Wonderland", Email: "alice@example.com", ResumeText: resume + " Kubernetes.",
		ResumeURL: "https://example.com/alice.html",
	})
	require.NoError(t, err)
	assert.Equal(t, first.ApplicantID, second.ApplicantID)

	applicant, err := f.resolver.GetByID(ctx, first.ApplicantID)
	require.NoError(t, err)
	assert.Equal(t, "Alice Wonderland", applicant.Name)
	assert.Equal(t, resume+" Kubernetes.", applicant.ResumeText)
}

func TestApply_Validation(t *testing.T) {
	cases := []struct {
		name string
		in   kanban.ApplyInput
	}{
		{"short name", kanban.ApplyInput{Name: "A", Email: "a@example.com", ResumeText: resume}},
		{"bad email", kanban.ApplyInput{Name: "Alice", Email: "alice", ResumeText: resume}},
		{"short resume", kanban.ApplyInput{Name: "Alice", Email: "a@example.com", ResumeText: "too short"}},
		{"bad url", kanban.ApplyInput{Name: "Alice", Email: "a@example.com", ResumeText: resume, ResumeURL: "not a url"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			_, err := f.svc.Apply(context.Background(), "job-1", tc.in)
			assert.True(t, model.IsValidation(err), "got %v", err)
		})
	}
}

func TestApply_FailuresLeaveNoApplicant(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	in := kanban.ApplyInput{Name: "Alice", Email: "alice@example.com", ResumeText: resume}

	require.NoError(t, f.st.Jobs.UpdateJob(ctx, &model.Job{ID: "job-1", PipelineID: f.pipe.ID, Status: model.JobClosed}))
	_, err := f.svc.Apply(ctx, "job-1", in)
	assert.True(t, model.IsValidation(err), "closed jobs reject applications")

	_, err = f.svc.Apply(ctx, "job-missing", in)
	assert.True(t, errors.Is(err, model.ErrNotFound))

	applicants, err := f.st.Applicants.ListApplicants(ctx)
	require.NoError(t, err)
	assert.Empty(t, applicants)
}

// ── Transition ─────────────────────────────────────────────────────────────

func TestTransition_Scenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	app := f.apply(t, "Alice", "alice@example.com")

	pct, err := f.svc.Progress(ctx, app)
	require.NoError(t, err)
	assert.Equal(t, 33, pct)

	app, err = f.svc.Transition(ctx, app.ID, "Hired")
	require.NoError(t, err)
	assertHistoryInvariant(t, app)
	pct, err = f.svc.Progress(ctx, app)
	require.NoError(t, err)
	assert.Equal(t, 100, pct)

	app, err = f.svc.Transition(ctx, app.ID, "Rejected")
	require.NoError(t, err)
	assertHistoryInvariant(t, app)
	assert.Len(t, app.StatusHistory, 3)
	pct, err = f.svc.Progress(ctx, app)
	require.NoError(t, err)
	assert.Equal(t, 100, pct)

	moves := f.rec.On(events.StageChanged)
	require.Len(t, moves, 2)
	assert.Equal(t, "Received", moves[0].Fields["from"])
	assert.Equal(t, "Hired", moves[0].Fields["to"])
	assert.Equal(t, true, moves[0].Fields["hired"])
	assert.Equal(t, true, moves[1].Fields["terminal"])
	assert.Equal(t, false, moves[1].Fields["hired"])
}

func TestTransition_AcceptsAdHocStages(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	app := f.apply(t, "Alice", "alice@example.com")

	app, err := f.svc.TransitionWithNotes(ctx, app.ID, "Coffee chat", "informal")
	require.NoError(t, err)
	assertHistoryInvariant(t, app)
	assert.Equal(t, "informal", app.StatusHistory[1].Notes)
	assert.False(t, app.StatusHistory[1].Date.Before(app.StatusHistory[0].Date))

	pct, err := f.svc.Progress(ctx, app)
	require.NoError(t, err)
	assert.Equal(t, 0, pct, "stages outside the pipeline have no progress")
}

func TestTransition_UnknownApplication(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Transition(context.Background(), "app-missing", "Hired")
	assert.True(t, errors.Is(err, model.ErrNotFound))
	assert.Empty(t, f.rec.On(events.StageChanged))
}

func TestTransition_ConcurrentMovesKeepAllHistory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	app := f.apply(t, "Alice", "alice@example.com")

	var wg sync.WaitGroup
	for _, stage := range []string{"Screening", "Hired", "Rejected"} {
		wg.Add(1)
		go func(stage string) {
			defer wg.Done()
			_, err := f.svc.Transition(ctx, app.ID, stage)
			assert.NoError(t, err)
		}(stage)
	}
	wg.Wait()

	got, err := f.svc.Get(ctx, app.ID)
	require.NoError(t, err)
	assert.Len(t, got.StatusHistory, 4)
	assertHistoryInvariant(t, got)
}

// Removing a stage that an application sits in leaves the application alone;
// its progress drops to 0.
func TestPipelineEdit_OrphansCurrentStage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	app := f.apply(t, "Alice", "alice@example.com")
	app, err := f.svc.Transition(ctx, app.ID, "Screening")
	require.NoError(t, err)

	edited := f.pipe.Clone()
	edited.Stages = []model.Stage{edited.Stages[0], edited.Stages[2], edited.Stages[3]}
	_, err = pipeline.NewRegistry(f.st.Pipelines, nil).Update(ctx, edited)
	require.NoError(t, err)

	got, err := f.svc.Get(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, "Screening", got.CurrentStage)
	pct, err := f.svc.Progress(ctx, got)
	require.NoError(t, err)
	assert.Equal(t, 0, pct)
}

// ── Reads ──────────────────────────────────────────────────────────────────

func TestListViews_JoinResumeURLAtReadTime(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.apply(t, "Alice", "alice@example.com")
	bob := f.apply(t, "Bob", "bob@example.com")

	url := "https://example.com/alice-v2.html"
	_, err := f.resolver.UpdateProfile(ctx, alice.ApplicantID, model.ProfileFields{ResumeURL: &url})
	require.NoError(t, err)

	views, err := f.svc.ListForJob(ctx, "job-1")
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, alice.ID, views[0].ID, "ordered by submission date")
	assert.Equal(t, url, views[0].ResumeURL)
	assert.Equal(t, bob.ID, views[1].ID)
	assert.Empty(t, views[1].ResumeURL)

	mine, err := f.svc.ListForApplicantEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, url, mine[0].ResumeURL)

	none, err := f.svc.ListForJob(ctx, "job-missing")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestGet_UnknownIsAbsent(t *testing.T) {
	f := newFixture(t)
	got, err := f.svc.Get(context.Background(), "app-missing")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestProgress_ReassignedPipeline(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	app := f.apply(t, "Alice", "alice@example.com")

	other, err := pipeline.NewRegistry(f.st.Pipelines, nil).Create(ctx, "Other", []string{"Intro", "Received", "Offer"})
	require.NoError(t, err)
	job, err := f.st.Jobs.GetJob(ctx, "job-1")
	require.NoError(t, err)
	job.PipelineID = other.ID
	require.NoError(t, f.st.Jobs.UpdateJob(ctx, job))

	got, err := f.svc.Get(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, "Received", got.CurrentStage, "reassignment does not touch applications")
	pct, err := f.svc.Progress(ctx, got)
	require.NoError(t, err)
	assert.Equal(t, progress.Percent("Received", other), pct)
	assert.Equal(t, 67, pct)
}
