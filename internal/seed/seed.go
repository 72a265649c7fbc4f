// Package seed loads the embedded demo data set: two pipelines, four jobs,
// four applicants with three applications, and an admin account.
package seed

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"time"

	"gopkg.in/yaml.v3"

	"jobmate/hiring-service/internal/identity"
	"jobmate/hiring-service/internal/model"
	"jobmate/hiring-service/internal/store"
)

//go:embed demo.yaml
var demoYAML []byte

const day = 24 * time.Hour

type fixture struct {
	Pipelines []model.Pipeline `yaml:"pipelines"`
	Jobs      []struct {
		ID             string   `yaml:"id"`
		Title          string   `yaml:"title"`
		Location       string   `yaml:"location"`
		Description    string   `yaml:"description"`
		Requirements   []string `yaml:"requirements"`
		DeadlineInDays int      `yaml:"deadlineInDays"`
		PostedDaysAgo  int      `yaml:"postedDaysAgo"`
		PipelineID     string   `yaml:"pipelineId"`
	} `yaml:"jobs"`
	Applicants   []model.Applicant `yaml:"applicants"`
	Applications []struct {
		ID               string `yaml:"id"`
		JobID            string `yaml:"jobId"`
		ApplicantID      string `yaml:"applicantId"`
		SubmittedDaysAgo int    `yaml:"submittedDaysAgo"`
		History          []struct {
			Stage   string `yaml:"stage"`
			DaysAgo int    `yaml:"daysAgo"`
		} `yaml:"history"`
		ScreeningResult *model.ScreeningResult `yaml:"screeningResult"`
	} `yaml:"applications"`
	Admin model.Applicant `yaml:"admin"`
}

// Options controls Load.
type Options struct {
	// Now anchors the relative dates. Zero means time.Now().
	Now time.Time
	// AdminPassword, when set, lets the admin account sign in.
	AdminPassword string
	Hasher        *identity.PasswordHasher
	Logger        *slog.Logger
}

// Demo returns the demo data set with dates anchored at now.
func Demo(now time.Time) (*store.Snapshot, error) {
	var f fixture
	if err := yaml.Unmarshal(demoYAML, &f); err != nil {
		return nil, fmt.Errorf("parse demo fixture: %w", err)
	}
	now = now.UTC()

	snap := &store.Snapshot{Pipelines: f.Pipelines, Applicants: f.Applicants}
	for _, j := range f.Jobs {
		snap.Jobs = append(snap.Jobs, model.Job{
			ID:           j.ID,
			Title:        j.Title,
			Location:     j.Location,
			Description:  j.Description,
			Requirements: j.Requirements,
			Deadline:     now.Add(time.Duration(j.DeadlineInDays) * day),
			Status:       model.JobOpen,
			PipelineID:   j.PipelineID,
			PostedDate:   now.Add(-time.Duration(j.PostedDaysAgo) * day),
		})
	}

	byID := make(map[string]model.Applicant, len(f.Applicants))
	for _, a := range f.Applicants {
		byID[a.ID] = a
	}
	for _, a := range f.Applications {
		applicant, ok := byID[a.ApplicantID]
		if !ok {
			return nil, fmt.Errorf("demo application %s: unknown applicant %s", a.ID, a.ApplicantID)
		}
		if len(a.History) == 0 {
			return nil, fmt.Errorf("demo application %s: empty history", a.ID)
		}
		app := model.Application{
			ID:              a.ID,
			JobID:           a.JobID,
			ApplicantID:     applicant.ID,
			ApplicantName:   applicant.Name,
			ApplicantEmail:  applicant.Email,
			SubmissionDate:  now.Add(-time.Duration(a.SubmittedDaysAgo) * day),
			ScreeningResult: a.ScreeningResult,
		}
		for _, h := range a.History {
			app.Advance(model.StatusEntry{Stage: h.Stage, Date: now.Add(-time.Duration(h.DaysAgo) * day)})
		}
		snap.Applications = append(snap.Applications, app)
	}

	admin := f.Admin
	admin.IsAdmin = true
	snap.Applicants = append(snap.Applicants, admin)
	return snap, nil
}

// Load writes the demo data set into st. A store that already holds the demo
// pipelines is left untouched and Load returns (nil, nil).
func Load(ctx context.Context, st *store.Store, opts Options) (*store.Snapshot, error) {
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}
	if opts.Hasher == nil {
		opts.Hasher = identity.DefaultHasher()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	snap, err := Demo(opts.Now)
	if err != nil {
		return nil, err
	}
	existing, err := st.Pipelines.GetPipeline(ctx, snap.Pipelines[0].ID)
	if err != nil {
		return nil, fmt.Errorf("check seed: %w", err)
	}
	if existing != nil {
		opts.Logger.Info("demo data already present, skipping seed")
		return nil, nil
	}

	if opts.AdminPassword != "" {
		hash, err := opts.Hasher.Hash(opts.AdminPassword)
		if err != nil {
			return nil, err
		}
		snap.Applicants[len(snap.Applicants)-1].Credentials = hash
	} else {
		opts.Logger.Warn("no admin password configured; the demo admin cannot sign in")
	}

	if err := store.Import(ctx, st, snap); err != nil {
		return nil, fmt.Errorf("seed: %w", err)
	}
	opts.Logger.Info("demo data loaded",
		"pipelines", len(snap.Pipelines), "jobs", len(snap.Jobs),
		"applicants", len(snap.Applicants), "applications", len(snap.Applications))
	return snap, nil
}
