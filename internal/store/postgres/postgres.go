// Package postgres implements the store contracts on a pgx connection pool.
// JSONB columns are encoded and decoded by pgx directly from the model types.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"jobmate/hiring-service/internal/model"
	"jobmate/hiring-service/internal/store"
)

var _ store.Backend = (*Repo)(nil)

// Repo is a store.Backend over a migrated pool (see db.MigratePostgres).
type Repo struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// ─── Pipelines ────────────────────────────────────────────────────────────────

func (r *Repo) CreatePipeline(ctx context.Context, p *model.Pipeline) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO pipelines (id, name, stages) VALUES ($1, $2, $3)`,
		p.ID, p.Name, stagesOrEmpty(p.Stages))
	if err != nil {
		return fmt.Errorf("create pipeline: %w", err)
	}
	return nil
}

func (r *Repo) GetPipeline(ctx context.Context, id string) (*model.Pipeline, error) {
	var p model.Pipeline
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, stages FROM pipelines WHERE id = $1`, id,
	).Scan(&p.ID, &p.Name, &p.Stages)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get pipeline: %w", err)
	}
	return &p, nil
}

func (r *Repo) ListPipelines(ctx context.Context) ([]model.Pipeline, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, stages FROM pipelines ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("list pipelines: %w", err)
	}
	defer rows.Close()

	out := make([]model.Pipeline, 0)
	for rows.Next() {
		var p model.Pipeline
		if err := rows.Scan(&p.ID, &p.Name, &p.Stages); err != nil {
			return nil, fmt.Errorf("list pipelines scan: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Repo) UpdatePipeline(ctx context.Context, p *model.Pipeline) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE pipelines SET name = $2, stages = $3 WHERE id = $1`,
		p.ID, p.Name, stagesOrEmpty(p.Stages))
	if err != nil {
		return fmt.Errorf("update pipeline: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.NotFound("pipeline", p.ID)
	}
	return nil
}

func stagesOrEmpty(s []model.Stage) []model.Stage {
	if s == nil {
		return []model.Stage{}
	}
	return s
}

// ─── Jobs ─────────────────────────────────────────────────────────────────────

const jobColumns = `id, title, location, description, requirements, deadline, status, pipeline_id, posted_date`

func (r *Repo) CreateJob(ctx context.Context, j *model.Job) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO jobs (`+jobColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		j.ID, j.Title, j.Location, j.Description, requirementsOrEmpty(j.Requirements),
		j.Deadline, string(j.Status), j.PipelineID, j.PostedDate)
	if err != nil {
		return fmt.Errorf("create job: %w", err)
	}
	return nil
}

func (r *Repo) GetJob(ctx context.Context, id string) (*model.Job, error) {
	j, err := scanJob(r.pool.QueryRow(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return j, nil
}

func (r *Repo) ListJobs(ctx context.Context) ([]model.Job, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+jobColumns+` FROM jobs ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	out := make([]model.Job, 0)
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("list jobs scan: %w", err)
		}
		out = append(out, *j)
	}
	return out, rows.Err()
}

func (r *Repo) UpdateJob(ctx context.Context, j *model.Job) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE jobs SET title = $2, location = $3, description = $4, requirements = $5,
		        deadline = $6, status = $7, pipeline_id = $8, posted_date = $9
		 WHERE id = $1`,
		j.ID, j.Title, j.Location, j.Description, requirementsOrEmpty(j.Requirements),
		j.Deadline, string(j.Status), j.PipelineID, j.PostedDate)
	if err != nil {
		return fmt.Errorf("update job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.NotFound("job", j.ID)
	}
	return nil
}

func scanJob(row pgx.Row) (*model.Job, error) {
	var j model.Job
	var status string
	if err := row.Scan(&j.ID, &j.Title, &j.Location, &j.Description, &j.Requirements,
		&j.Deadline, &status, &j.PipelineID, &j.PostedDate); err != nil {
		return nil, err
	}
	j.Status = model.JobStatus(status)
	j.Deadline = j.Deadline.UTC()
	j.PostedDate = j.PostedDate.UTC()
	return &j, nil
}

func requirementsOrEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// ─── Applicants ───────────────────────────────────────────────────────────────

const applicantColumns = `id, name, email, phone, resume_text, resume_url, credentials, is_admin`

func (r *Repo) CreateApplicant(ctx context.Context, a *model.Applicant) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO applicants (`+applicantColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		a.ID, a.Name, a.Email, a.Phone, a.ResumeText, a.ResumeURL, a.Credentials, a.IsAdmin)
	if err != nil {
		return fmt.Errorf("create applicant: %w", err)
	}
	return nil
}

func (r *Repo) GetApplicant(ctx context.Context, id string) (*model.Applicant, error) {
	return r.applicantOrNil(r.pool.QueryRow(ctx,
		`SELECT `+applicantColumns+` FROM applicants WHERE id = $1`, id))
}

func (r *Repo) GetApplicantByEmail(ctx context.Context, email string) (*model.Applicant, error) {
	return r.applicantOrNil(r.pool.QueryRow(ctx,
		`SELECT `+applicantColumns+` FROM applicants WHERE lower(email) = $1`,
		strings.ToLower(strings.TrimSpace(email))))
}

func (r *Repo) applicantOrNil(row pgx.Row) (*model.Applicant, error) {
	a, err := scanApplicant(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get applicant: %w", err)
	}
	return a, nil
}

func scanApplicant(row pgx.Row) (*model.Applicant, error) {
	var a model.Applicant
	if err := row.Scan(&a.ID, &a.Name, &a.Email, &a.Phone, &a.ResumeText, &a.ResumeURL, &a.Credentials, &a.IsAdmin); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *Repo) ListApplicants(ctx context.Context) ([]model.Applicant, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+applicantColumns+` FROM applicants ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("list applicants: %w", err)
	}
	defer rows.Close()

	out := make([]model.Applicant, 0)
	for rows.Next() {
		a, err := scanApplicant(rows)
		if err != nil {
			return nil, fmt.Errorf("list applicants scan: %w", err)
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func (r *Repo) UpdateApplicant(ctx context.Context, a *model.Applicant) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE applicants SET name = $2, email = $3, phone = $4, resume_text = $5,
		        resume_url = $6, credentials = $7, is_admin = $8
		 WHERE id = $1`,
		a.ID, a.Name, a.Email, a.Phone, a.ResumeText, a.ResumeURL, a.Credentials, a.IsAdmin)
	if err != nil {
		return fmt.Errorf("update applicant: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.NotFound("applicant", a.ID)
	}
	return nil
}

// ─── Applications ─────────────────────────────────────────────────────────────

const applicationColumns = `id, job_id, applicant_id, applicant_name, applicant_email,
	submission_date, current_stage, status_history, screening_result`

func (r *Repo) CreateApplication(ctx context.Context, a *model.Application) error {
	history := a.StatusHistory
	if history == nil {
		history = []model.StatusEntry{}
	}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO applications (`+applicationColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		a.ID, a.JobID, a.ApplicantID, a.ApplicantName, a.ApplicantEmail,
		a.SubmissionDate, a.CurrentStage, history, a.ScreeningResult)
	if err != nil {
		return fmt.Errorf("create application: %w", err)
	}
	return nil
}

func (r *Repo) GetApplication(ctx context.Context, id string) (*model.Application, error) {
	a, err := scanApplication(r.pool.QueryRow(ctx,
		`SELECT `+applicationColumns+` FROM applications WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get application: %w", err)
	}
	return a, nil
}

func (r *Repo) ListApplications(ctx context.Context) ([]model.Application, error) {
	return r.queryApplications(ctx, `SELECT `+applicationColumns+` FROM applications
		ORDER BY submission_date, id`)
}

func (r *Repo) ListApplicationsByJob(ctx context.Context, jobID string) ([]model.Application, error) {
	return r.queryApplications(ctx, `SELECT `+applicationColumns+` FROM applications
		WHERE job_id = $1 ORDER BY submission_date, id`, jobID)
}

func (r *Repo) ListApplicationsByEmail(ctx context.Context, email string) ([]model.Application, error) {
	return r.queryApplications(ctx, `SELECT `+applicationColumns+` FROM applications
		WHERE lower(applicant_email) = $1 ORDER BY submission_date, id`,
		strings.ToLower(strings.TrimSpace(email)))
}

func (r *Repo) queryApplications(ctx context.Context, query string, args ...any) ([]model.Application, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	defer rows.Close()

	out := make([]model.Application, 0)
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("list applications scan: %w", err)
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

// AppendStage moves the pointer and appends to the JSONB history in a single
// statement.
func (r *Repo) AppendStage(ctx context.Context, id string, entry model.StatusEntry) (*model.Application, error) {
	a, err := scanApplication(r.pool.QueryRow(ctx,
		`UPDATE applications
		 SET current_stage  = $2,
		     status_history = status_history || $3::jsonb
		 WHERE id = $1
		 RETURNING `+applicationColumns,
		id, entry.Stage, []model.StatusEntry{entry}))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.NotFound("application", id)
	}
	if err != nil {
		return nil, fmt.Errorf("append stage: %w", err)
	}
	return a, nil
}

func (r *Repo) SetScreeningResult(ctx context.Context, id string, result model.ScreeningResult) (*model.Application, error) {
	a, err := scanApplication(r.pool.QueryRow(ctx,
		`UPDATE applications SET screening_result = $2 WHERE id = $1
		 RETURNING `+applicationColumns,
		id, result))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.NotFound("application", id)
	}
	if err != nil {
		return nil, fmt.Errorf("set screening result: %w", err)
	}
	return a, nil
}

func scanApplication(row pgx.Row) (*model.Application, error) {
	var a model.Application
	if err := row.Scan(&a.ID, &a.JobID, &a.ApplicantID, &a.ApplicantName, &a.ApplicantEmail,
		&a.SubmissionDate, &a.CurrentStage, &a.StatusHistory, &a.ScreeningResult); err != nil {
		return nil, err
	}
	a.SubmissionDate = a.SubmissionDate.UTC()
	return &a, nil
}
