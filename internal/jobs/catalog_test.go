package jobs_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobmate/hiring-service/internal/events"
	"jobmate/hiring-service/internal/jobs"
	"jobmate/hiring-service/internal/model"
	"jobmate/hiring-service/internal/store/memory"
)

var now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func setup(t *testing.T) (*jobs.Catalog, *events.Recorder) {
	t.Helper()
	st := memory.New()
	for _, id := range []string{"pipeline-a", "pipeline-b"} {
		require.NoError(t, st.CreatePipeline(context.Background(), &model.Pipeline{
			ID: id, Name: id, Stages: []model.Stage{{ID: id + "-1", Name: "Received", Order: 1}},
		}))
	}
	rec := &events.Recorder{}
	c := jobs.NewCatalog(st, st, jobs.WithClock(func() time.Time { return now }), jobs.WithPublisher(rec))
	return c, rec
}

func input(deadline time.Time) jobs.Input {
	return jobs.Input{
		Title: "Backend Developer", Location: "Remote", Description: "Build services",
		Requirements: []string{"Go", " Go ", "", "PostgreSQL"},
		Deadline:     deadline, PipelineID: "pipeline-a",
	}
}

func TestCreate(t *testing.T) {
	c, _ := setup(t)
	j, err := c.Create(context.Background(), input(now.Add(48*time.Hour)))
	require.NoError(t, err)
	assert.Equal(t, model.JobOpen, j.Status)
	assert.Equal(t, now, j.PostedDate)
	assert.Equal(t, []string{"Go", "PostgreSQL"}, j.Requirements, "requirements behave as a set")
}

func TestCreate_Validation(t *testing.T) {
	c, _ := setup(t)
	ctx := context.Background()

	bad := input(now)
	bad.Title = ""
	_, err := c.Create(ctx, bad)
	assert.True(t, model.IsValidation(err))

	bad = input(time.Time{})
	_, err = c.Create(ctx, bad)
	assert.True(t, model.IsValidation(err))

	bad = input(now)
	bad.PipelineID = "pipeline-missing"
	_, err = c.Create(ctx, bad)
	assert.True(t, model.IsValidation(err))

	bad = input(now)
	bad.Status = "Paused"
	_, err = c.Create(ctx, bad)
	assert.True(t, model.IsValidation(err))
}

func TestUpdateAndAssignPipeline(t *testing.T) {
	c, _ := setup(t)
	ctx := context.Background()
	j, err := c.Create(ctx, input(now.Add(time.Hour)))
	require.NoError(t, err)

	in := input(now.Add(2 * time.Hour))
	in.Title = "Senior Backend Developer"
	in.Status = model.JobClosed
	updated, err := c.Update(ctx, j.ID, in)
	require.NoError(t, err)
	assert.Equal(t, "Senior Backend Developer", updated.Title)
	assert.Equal(t, model.JobClosed, updated.Status)
	assert.Equal(t, j.PostedDate, updated.PostedDate)

	_, err = c.Update(ctx, "job-missing", in)
	assert.True(t, errors.Is(err, model.ErrNotFound))

	moved, err := c.AssignPipeline(ctx, j.ID, "pipeline-b")
	require.NoError(t, err)
	assert.Equal(t, "pipeline-b", moved.PipelineID)

	_, err = c.AssignPipeline(ctx, j.ID, "pipeline-missing")
	assert.True(t, model.IsValidation(err))
	_, err = c.AssignPipeline(ctx, "job-missing", "pipeline-a")
	assert.True(t, errors.Is(err, model.ErrNotFound))
}

func TestListAndDeadlines(t *testing.T) {
	c, _ := setup(t)
	ctx := context.Background()

	late, err := c.Create(ctx, input(now.Add(72*time.Hour)))
	require.NoError(t, err)
	soon, err := c.Create(ctx, input(now.Add(time.Hour)))
	require.NoError(t, err)
	past, err := c.Create(ctx, input(now.Add(-time.Hour)))
	require.NoError(t, err)
	closedIn := input(now.Add(24 * time.Hour))
	closedIn.Status = model.JobClosed
	closed, err := c.Create(ctx, closedIn)
	require.NoError(t, err)

	open, err := c.List(ctx, model.JobOpen)
	require.NoError(t, err)
	assert.Len(t, open, 3)
	all, err := c.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 4)

	upcoming, err := c.UpcomingDeadlines(ctx, true)
	require.NoError(t, err)
	require.Len(t, upcoming, 2)
	assert.Equal(t, soon.ID, upcoming[0].ID)
	assert.Equal(t, late.ID, upcoming[1].ID)

	withClosed, err := c.UpcomingDeadlines(ctx, false)
	require.NoError(t, err)
	require.Len(t, withClosed, 3)
	assert.Equal(t, closed.ID, withClosed[1].ID)
	_ = past
}

func TestCloseExpired(t *testing.T) {
	c, rec := setup(t)
	ctx := context.Background()
	expired, err := c.Create(ctx, input(now.Add(-time.Minute)))
	require.NoError(t, err)
	_, err = c.Create(ctx, input(now.Add(time.Minute)))
	require.NoError(t, err)

	closed, err := c.CloseExpired(ctx)
	require.NoError(t, err)
	require.Len(t, closed, 1)
	assert.Equal(t, expired.ID, closed[0].ID)

	got, err := c.Get(ctx, expired.ID)
	require.NoError(t, err)
	assert.Equal(t, model.JobClosed, got.Status)
	require.Len(t, rec.On(events.JobClosed), 1)

	again, err := c.CloseExpired(ctx)
	require.NoError(t, err)
	assert.Empty(t, again, "already closed jobs are left alone")
}

func TestUpdate_BlankStatusKeepsStored(t *testing.T) {
	c, _ := setup(t)
	ctx := context.Background()
	j, err := c.Create(ctx, input(now.Add(time.Hour)))
	require.NoError(t, err)

	in := input(now.Add(time.Hour))
	in.Status = model.JobClosed
	_, err = c.Update(ctx, j.ID, in)
	require.NoError(t, err)

	in = input(now.Add(time.Hour))
	in.Title = "Platform Engineer"
	updated, err := c.Update(ctx, j.ID, in)
	require.NoError(t, err)
	assert.Equal(t, "Platform Engineer", updated.Title)
	assert.Equal(t, model.JobClosed, updated.Status, "a title-only edit does not reopen the job")
}
