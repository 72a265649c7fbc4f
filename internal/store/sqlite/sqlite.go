// Package sqlite implements the store contracts on modernc.org/sqlite.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"jobmate/hiring-service/internal/model"
	"jobmate/hiring-service/internal/store"
)

var _ store.Backend = (*Repo)(nil)

// Repo is a store.Backend over a migrated *sql.DB (see db.OpenSQLite).
type Repo struct {
	conn   *sql.DB
	logger *slog.Logger
}

// New wraps conn. A nil logger falls back to slog.Default().
func New(conn *sql.DB, logger *slog.Logger) *Repo {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repo{conn: conn, logger: logger}
}

func millis(t time.Time) int64 { return t.UTC().UnixMilli() }

func fromMillis(ms int64) time.Time { return time.UnixMilli(ms).UTC() }

func lowerEmail(e string) string { return strings.ToLower(strings.TrimSpace(e)) }

// ─── Pipelines ────────────────────────────────────────────────────────────────

func (r *Repo) CreatePipeline(ctx context.Context, p *model.Pipeline) error {
	stages, err := json.Marshal(p.Stages)
	if err != nil {
		return fmt.Errorf("marshal stages: %w", err)
	}
	_, err = r.conn.ExecContext(ctx,
		`INSERT INTO pipelines (id, name, stages) VALUES (?, ?, ?)`,
		p.ID, p.Name, string(stages))
	if err != nil {
		return fmt.Errorf("create pipeline: %w", err)
	}
	return nil
}

func (r *Repo) GetPipeline(ctx context.Context, id string) (*model.Pipeline, error) {
	row := r.conn.QueryRowContext(ctx, `SELECT id, name, stages FROM pipelines WHERE id = ?`, id)
	p, err := scanPipeline(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get pipeline: %w", err)
	}
	return p, nil
}

func (r *Repo) ListPipelines(ctx context.Context) ([]model.Pipeline, error) {
	rows, err := r.conn.QueryContext(ctx, `SELECT id, name, stages FROM pipelines ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("list pipelines: %w", err)
	}
	defer rows.Close()

	out := make([]model.Pipeline, 0)
	for rows.Next() {
		p, err := scanPipeline(rows)
		if err != nil {
			return nil, fmt.Errorf("list pipelines scan: %w", err)
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (r *Repo) UpdatePipeline(ctx context.Context, p *model.Pipeline) error {
	stages, err := json.Marshal(p.Stages)
	if err != nil {
		return fmt.Errorf("marshal stages: %w", err)
	}
	res, err := r.conn.ExecContext(ctx,
		`UPDATE pipelines SET name = ?, stages = ? WHERE id = ?`,
		p.Name, string(stages), p.ID)
	if err != nil {
		return fmt.Errorf("update pipeline: %w", err)
	}
	return requireRow(res, "pipeline", p.ID)
}

type scanner interface{ Scan(dest ...any) error }

func scanPipeline(s scanner) (*model.Pipeline, error) {
	var p model.Pipeline
	var stages string
	if err := s.Scan(&p.ID, &p.Name, &stages); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(stages), &p.Stages); err != nil {
		return nil, fmt.Errorf("decode stages of %s: %w", p.ID, err)
	}
	return &p, nil
}

// ─── Jobs ─────────────────────────────────────────────────────────────────────

const jobColumns = `id, title, location, description, requirements, deadline, status, pipeline_id, posted_date`

func (r *Repo) CreateJob(ctx context.Context, j *model.Job) error {
	reqs, err := json.Marshal(nonNil(j.Requirements))
	if err != nil {
		return fmt.Errorf("marshal requirements: %w", err)
	}
	_, err = r.conn.ExecContext(ctx,
		`INSERT INTO jobs (`+jobColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		j.ID, j.Title, j.Location, j.Description, string(reqs),
		millis(j.Deadline), string(j.Status), j.PipelineID, millis(j.PostedDate))
	if err != nil {
		return fmt.Errorf("create job: %w", err)
	}
	return nil
}

func (r *Repo) GetJob(ctx context.Context, id string) (*model.Job, error) {
	row := r.conn.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = ?`, id)
	j, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return j, nil
}

func (r *Repo) ListJobs(ctx context.Context) ([]model.Job, error) {
	rows, err := r.conn.QueryContext(ctx, `SELECT `+jobColumns+` FROM jobs ORDER BY seq`)
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
	reqs, err := json.Marshal(nonNil(j.Requirements))
	if err != nil {
		return fmt.Errorf("marshal requirements: %w", err)
	}
	res, err := r.conn.ExecContext(ctx,
		`UPDATE jobs SET title = ?, location = ?, description = ?, requirements = ?,
		        deadline = ?, status = ?, pipeline_id = ?, posted_date = ?
		 WHERE id = ?`,
		j.Title, j.Location, j.Description, string(reqs),
		millis(j.Deadline), string(j.Status), j.PipelineID, millis(j.PostedDate), j.ID)
	if err != nil {
		return fmt.Errorf("update job: %w", err)
	}
	return requireRow(res, "job", j.ID)
}

func scanJob(s scanner) (*model.Job, error) {
	var j model.Job
	var reqs, status string
	var deadline, posted int64
	if err := s.Scan(&j.ID, &j.Title, &j.Location, &j.Description, &reqs,
		&deadline, &status, &j.PipelineID, &posted); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(reqs), &j.Requirements); err != nil {
		return nil, fmt.Errorf("decode requirements of %s: %w", j.ID, err)
	}
	j.Status = model.JobStatus(status)
	j.Deadline = fromMillis(deadline)
	j.PostedDate = fromMillis(posted)
	return &j, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// ─── Applicants ───────────────────────────────────────────────────────────────

const applicantColumns = `id, name, email, phone, resume_text, resume_url, credentials, is_admin`

func (r *Repo) CreateApplicant(ctx context.Context, a *model.Applicant) error {
	_, err := r.conn.ExecContext(ctx,
		`INSERT INTO applicants (`+applicantColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Name, a.Email, a.Phone, a.ResumeText, a.ResumeURL, a.Credentials, a.IsAdmin)
	if err != nil {
		return fmt.Errorf("create applicant: %w", err)
	}
	return nil
}

func (r *Repo) GetApplicant(ctx context.Context, id string) (*model.Applicant, error) {
	row := r.conn.QueryRowContext(ctx, `SELECT `+applicantColumns+` FROM applicants WHERE id = ?`, id)
	return r.applicantOrNil(row)
}

func (r *Repo) GetApplicantByEmail(ctx context.Context, email string) (*model.Applicant, error) {
	row := r.conn.QueryRowContext(ctx,
		`SELECT `+applicantColumns+` FROM applicants WHERE lower(email) = ?`, lowerEmail(email))
	return r.applicantOrNil(row)
}

func (r *Repo) applicantOrNil(row *sql.Row) (*model.Applicant, error) {
	var a model.Applicant
	err := row.Scan(&a.ID, &a.Name, &a.Email, &a.Phone, &a.ResumeText, &a.ResumeURL, &a.Credentials, &a.IsAdmin)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get applicant: %w", err)
	}
	return &a, nil
}

func (r *Repo) ListApplicants(ctx context.Context) ([]model.Applicant, error) {
	rows, err := r.conn.QueryContext(ctx, `SELECT `+applicantColumns+` FROM applicants ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("list applicants: %w", err)
	}
	defer rows.Close()

	out := make([]model.Applicant, 0)
	for rows.Next() {
		var a model.Applicant
		if err := rows.Scan(&a.ID, &a.Name, &a.Email, &a.Phone, &a.ResumeText, &a.ResumeURL, &a.Credentials, &a.IsAdmin); err != nil {
			return nil, fmt.Errorf("list applicants scan: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *Repo) UpdateApplicant(ctx context.Context, a *model.Applicant) error {
	res, err := r.conn.ExecContext(ctx,
		`UPDATE applicants SET name = ?, email = ?, phone = ?, resume_text = ?, resume_url = ?,
		        credentials = ?, is_admin = ?
		 WHERE id = ?`,
		a.Name, a.Email, a.Phone, a.ResumeText, a.ResumeURL, a.Credentials, a.IsAdmin, a.ID)
	if err != nil {
		return fmt.Errorf("update applicant: %w", err)
	}
	return requireRow(res, "applicant", a.ID)
}

// ─── Applications ─────────────────────────────────────────────────────────────

const applicationColumns = `id, job_id, applicant_id, applicant_name, applicant_email,
	submission_date, current_stage, status_history, screening_result`

func (r *Repo) CreateApplication(ctx context.Context, a *model.Application) error {
	entries := a.StatusHistory
	if entries == nil {
		entries = []model.StatusEntry{}
	}
	history, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}
	var screening sql.NullString
	if a.ScreeningResult != nil {
		b, err := json.Marshal(a.ScreeningResult)
		if err != nil {
			return fmt.Errorf("marshal screening result: %w", err)
		}
		screening = sql.NullString{String: string(b), Valid: true}
	}
	_, err = r.conn.ExecContext(ctx,
		`INSERT INTO applications (`+applicationColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.JobID, a.ApplicantID, a.ApplicantName, a.ApplicantEmail,
		millis(a.SubmissionDate), a.CurrentStage, string(history), screening)
	if err != nil {
		return fmt.Errorf("create application: %w", err)
	}
	return nil
}

func (r *Repo) GetApplication(ctx context.Context, id string) (*model.Application, error) {
	row := r.conn.QueryRowContext(ctx, `SELECT `+applicationColumns+` FROM applications WHERE id = ?`, id)
	a, err := scanApplication(row)
	if errors.Is(err, sql.ErrNoRows) {
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
		WHERE job_id = ? ORDER BY submission_date, id`, jobID)
}

func (r *Repo) ListApplicationsByEmail(ctx context.Context, email string) ([]model.Application, error) {
	return r.queryApplications(ctx, `SELECT `+applicationColumns+` FROM applications
		WHERE lower(applicant_email) = ? ORDER BY submission_date, id`, lowerEmail(email))
}

func (r *Repo) queryApplications(ctx context.Context, query string, args ...any) ([]model.Application, error) {
	rows, err := r.conn.QueryContext(ctx, query, args...)
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

// AppendStage relies on json_insert so the pointer and the history change in
// one statement.
func (r *Repo) AppendStage(ctx context.Context, id string, entry model.StatusEntry) (*model.Application, error) {
	b, err := json.Marshal(entry)
	if err != nil {
		return nil, fmt.Errorf("marshal history entry: %w", err)
	}
	res, err := r.conn.ExecContext(ctx,
		`UPDATE applications
		 SET current_stage  = ?,
		     status_history = json_insert(status_history, '$[#]', json(?))
		 WHERE id = ?`,
		entry.Stage, string(b), id)
	if err != nil {
		return nil, fmt.Errorf("append stage: %w", err)
	}
	if err := requireRow(res, "application", id); err != nil {
		return nil, err
	}
	return r.GetApplication(ctx, id)
}

func (r *Repo) SetScreeningResult(ctx context.Context, id string, result model.ScreeningResult) (*model.Application, error) {
	b, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("marshal screening result: %w", err)
	}
	res, err := r.conn.ExecContext(ctx,
		`UPDATE applications SET screening_result = ? WHERE id = ?`, string(b), id)
	if err != nil {
		return nil, fmt.Errorf("set screening result: %w", err)
	}
	if err := requireRow(res, "application", id); err != nil {
		return nil, err
	}
	return r.GetApplication(ctx, id)
}

func scanApplication(s scanner) (*model.Application, error) {
	var a model.Application
	var submitted int64
	var history string
	var screening sql.NullString
	if err := s.Scan(&a.ID, &a.JobID, &a.ApplicantID, &a.ApplicantName, &a.ApplicantEmail,
		&submitted, &a.CurrentStage, &history, &screening); err != nil {
		return nil, err
	}
	a.SubmissionDate = fromMillis(submitted)
	if err := json.Unmarshal([]byte(history), &a.StatusHistory); err != nil {
		return nil, fmt.Errorf("decode history of %s: %w", a.ID, err)
	}
	if screening.Valid {
		var res model.ScreeningResult
		if err := json.Unmarshal([]byte(screening.String), &res); err != nil {
			return nil, fmt.Errorf("decode screening result of %s: %w", a.ID, err)
		}
		a.ScreeningResult = &res
	}
	return &a, nil
}

func requireRow(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", entity, err)
	}
	if n == 0 {
		return model.NotFound(entity, id)
	}
	return nil
}
