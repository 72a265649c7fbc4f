// Package storetest holds the behaviour every store backend must share. Each
// backend's tests call Run with a constructor for a fresh, empty backend.
package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobmate/hiring-service/internal/model"
	"jobmate/hiring-service/internal/store"
)

var base = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

// Run exercises b against the repository contracts.
func Run(t *testing.T, newBackend func(t *testing.T) store.Backend) {
	t.Run("pipelines", func(t *testing.T) { testPipelines(t, newBackend(t)) })
	t.Run("jobs", func(t *testing.T) { testJobs(t, newBackend(t)) })
	t.Run("applicants", func(t *testing.T) { testApplicants(t, newBackend(t)) })
	t.Run("applications", func(t *testing.T) { testApplications(t, newBackend(t)) })
	t.Run("snapshot", func(t *testing.T) { testSnapshot(t, newBackend(t), newBackend(t)) })
}

func samplePipeline(id string) *model.Pipeline {
	return &model.Pipeline{ID: id, Name: "Standard", Stages: []model.Stage{
		{ID: id + "-s1", Name: "Received", Order: 1},
		{ID: id + "-s2", Name: "Screening", Order: 2},
		{ID: id + "-s3", Name: "Hired", Order: 3},
		{ID: id + "-s4", Name: "Rejected", Order: 4},
	}}
}

func sampleJob(id, pipelineID string) *model.Job {
	return &model.Job{
		ID: id, Title: "Backend Developer", Location: "Remote", Description: "Go services",
		Requirements: []string{"Go", "PostgreSQL"}, Deadline: base.Add(30 * 24 * time.Hour),
		Status: model.JobOpen, PipelineID: pipelineID, PostedDate: base,
	}
}

func sampleApplication(id, jobID, email string, submitted time.Time) *model.Application {
	return &model.Application{
		ID: id, JobID: jobID, ApplicantID: "applicant-" + email, ApplicantName: "Alice",
		ApplicantEmail: email, SubmissionDate: submitted, CurrentStage: "Received",
		StatusHistory: []model.StatusEntry{{Stage: "Received", Date: submitted}},
	}
}

func testPipelines(t *testing.T, b store.Backend) {
	ctx := context.Background()

	got, err := b.GetPipeline(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, got)

	p := samplePipeline("pipeline-1")
	require.NoError(t, b.CreatePipeline(ctx, p))
	require.NoError(t, b.CreatePipeline(ctx, samplePipeline("pipeline-2")))

	got, err = b.GetPipeline(ctx, "pipeline-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, p.Name, got.Name)
	assert.Equal(t, p.Stages, got.Stages)

	got.Stages[0].Name = "mutated"
	again, err := b.GetPipeline(ctx, "pipeline-1")
	require.NoError(t, err)
	assert.Equal(t, "Received", again.Stages[0].Name, "returned values must be copies")

	list, err := b.ListPipelines(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "pipeline-1", list[0].ID)

	p.Name = "Renamed"
	p.Stages = p.Stages[:2]
	require.NoError(t, b.UpdatePipeline(ctx, p))
	got, err = b.GetPipeline(ctx, "pipeline-1")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)
	assert.Len(t, got.Stages, 2)

	err = b.UpdatePipeline(ctx, samplePipeline("nope"))
	assert.True(t, errors.Is(err, model.ErrNotFound))
}

func testJobs(t *testing.T, b store.Backend) {
	ctx := context.Background()

	got, err := b.GetJob(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, got)

	j := sampleJob("job-1", "pipeline-1")
	require.NoError(t, b.CreateJob(ctx, j))

	got, err = b.GetJob(ctx, "job-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, j.Title, got.Title)
	assert.Equal(t, j.Requirements, got.Requirements)
	assert.True(t, j.Deadline.Equal(got.Deadline))
	assert.Equal(t, model.JobOpen, got.Status)

	j.Status = model.JobClosed
	j.PipelineID = "pipeline-2"
	require.NoError(t, b.UpdateJob(ctx, j))
	got, err = b.GetJob(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, model.JobClosed, got.Status)
	assert.Equal(t, "pipeline-2", got.PipelineID)

	list, err := b.ListJobs(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	assert.True(t, errors.Is(b.UpdateJob(ctx, sampleJob("nope", "p")), model.ErrNotFound))
}

func testApplicants(t *testing.T, b store.Backend) {
	ctx := context.Background()

	got, err := b.GetApplicantByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Nil(t, got)

	a := &model.Applicant{ID: "applicant-1", Name: "Alice", Email: "alice@example.com", ResumeText: "Go"}
	require.NoError(t, b.CreateApplicant(ctx, a))
	assert.Error(t, b.CreateApplicant(ctx, &model.Applicant{ID: "applicant-2", Email: "alice@example.com"}),
		"email is a unique key")

	got, err = b.GetApplicantByEmail(ctx, "Alice@Example.com")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "applicant-1", got.ID)

	a.Name = "Alice W."
	a.Phone = "555-0100"
	require.NoError(t, b.UpdateApplicant(ctx, a))
	got, err = b.GetApplicant(ctx, "applicant-1")
	require.NoError(t, err)
	assert.Equal(t, "Alice W.", got.Name)
	assert.Equal(t, "555-0100", got.Phone)

	missing, err := b.GetApplicant(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
	assert.True(t, errors.Is(b.UpdateApplicant(ctx, &model.Applicant{ID: "nope"}), model.ErrNotFound))

	list, err := b.ListApplicants(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func testApplications(t *testing.T, b store.Backend) {
	ctx := context.Background()

	later := sampleApplication("app-b", "job-1", "alice@example.com", base.Add(time.Hour))
	earlier := sampleApplication("app-a", "job-1", "alice@example.com", base)
	other := sampleApplication("app-c", "job-2", "bob@example.com", base)
	for _, a := range []*model.Application{later, earlier, other} {
		require.NoError(t, b.CreateApplication(ctx, a))
	}

	byJob, err := b.ListApplicationsByJob(ctx, "job-1")
	require.NoError(t, err)
	require.Len(t, byJob, 2)
	assert.Equal(t, "app-a", byJob[0].ID, "ordered by submission date")
	assert.Equal(t, "app-b", byJob[1].ID)

	byEmail, err := b.ListApplicationsByEmail(ctx, "bob@example.com")
	require.NoError(t, err)
	require.Len(t, byEmail, 1)
	assert.Equal(t, "app-c", byEmail[0].ID)

	moved, err := b.AppendStage(ctx, "app-a", model.StatusEntry{Stage: "Screening", Date: base.Add(2 * time.Hour), Notes: "fast track"})
	require.NoError(t, err)
	assert.Equal(t, "Screening", moved.CurrentStage)
	require.Len(t, moved.StatusHistory, 2)
	assert.Equal(t, "fast track", moved.StatusHistory[1].Notes)

	stored, err := b.GetApplication(ctx, "app-a")
	require.NoError(t, err)
	assert.Equal(t, "Screening", stored.CurrentStage)
	assert.Equal(t, stored.CurrentStage, stored.StatusHistory[len(stored.StatusHistory)-1].Stage)
	assert.Nil(t, stored.ScreeningResult)

	_, err = b.AppendStage(ctx, "nope", model.StatusEntry{Stage: "x", Date: base})
	assert.True(t, errors.Is(err, model.ErrNotFound))

	screened, err := b.SetScreeningResult(ctx, "app-a", model.ScreeningResult{Match: true, Reason: "strong Go"})
	require.NoError(t, err)
	require.NotNil(t, screened.ScreeningResult)
	assert.True(t, screened.ScreeningResult.Match)
	assert.Len(t, screened.StatusHistory, 2, "screening leaves history untouched")

	_, err = b.SetScreeningResult(ctx, "nope", model.ScreeningResult{})
	assert.True(t, errors.Is(err, model.ErrNotFound))

	missing, err := b.GetApplication(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	all, err := b.ListApplications(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func testSnapshot(t *testing.T, src, dst store.Backend) {
	ctx := context.Background()
	require.NoError(t, src.CreatePipeline(ctx, samplePipeline("pipeline-1")))
	require.NoError(t, src.CreateJob(ctx, sampleJob("job-1", "pipeline-1")))
	require.NoError(t, src.CreateApplicant(ctx, &model.Applicant{ID: "applicant-1", Name: "Alice", Email: "alice@example.com"}))
	require.NoError(t, src.CreateApplication(ctx, sampleApplication("app-1", "job-1", "alice@example.com", base)))

	snap, err := store.Export(ctx, store.FromBackend(src))
	require.NoError(t, err)
	require.NoError(t, store.Import(ctx, store.FromBackend(dst), snap))

	again, err := store.Export(ctx, store.FromBackend(dst))
	require.NoError(t, err)
	assert.Len(t, again.Pipelines, 1)
	assert.Len(t, again.Jobs, 1)
	assert.Len(t, again.Applicants, 1)
	require.Len(t, again.Applications, 1)
	assert.Equal(t, "Received", again.Applications[0].CurrentStage)
}
