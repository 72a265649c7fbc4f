// Package identity owns applicant records. An applicant is keyed by email:
// repeated submissions from one address reuse one record and refresh its
// profile fields.
package identity

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"jobmate/hiring-service/internal/model"
	"jobmate/hiring-service/internal/store"
)

// Resolver is the only writer of applicant profile fields.
type Resolver struct {
	repo   store.ApplicantRepo
	hasher *PasswordHasher
	logger *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithHasher replaces the default bcrypt settings.
func WithHasher(h *PasswordHasher) Option {
	return func(r *Resolver) { r.hasher = h }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) { r.logger = l }
}

func NewResolver(repo store.ApplicantRepo, opts ...Option) *Resolver {
	r := &Resolver{repo: repo, hasher: DefaultHasher(), logger: slog.Default()}
	for _, o := range opts {
		o(r)
	}
	return r
}

type resolveInput struct {
	Email string `json:"email" validate:"required,email"`
}

// Resolve returns the applicant for email, creating it on first sight.
// An existing record gets fields applied over its stored values.
func (r *Resolver) Resolve(ctx context.Context, email string, fields model.ProfileFields) (*model.Applicant, error) {
	email = strings.TrimSpace(email)
	if err := model.Validate(resolveInput{Email: email}); err != nil {
		return nil, err
	}

	existing, err := r.repo.GetApplicantByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("resolve applicant: %w", err)
	}
	if existing != nil {
		return r.apply(ctx, existing, fields)
	}

	a := &model.Applicant{ID: "applicant-" + uuid.NewString(), Email: email}
	applyFields(a, fields)
	if err := r.repo.CreateApplicant(ctx, a); err != nil {
		// A concurrent submission may have created the record first.
		again, lookupErr := r.repo.GetApplicantByEmail(ctx, email)
		if lookupErr != nil || again == nil {
			return nil, fmt.Errorf("create applicant: %w", err)
		}
		return r.apply(ctx, again, fields)
	}
	r.logger.Info("applicant created", "applicantId", a.ID)
	return a, nil
}

func (r *Resolver) apply(ctx context.Context, a *model.Applicant, fields model.ProfileFields) (*model.Applicant, error) {
	applyFields(a, fields)
	if err := r.repo.UpdateApplicant(ctx, a); err != nil {
		return nil, fmt.Errorf("update applicant: %w", err)
	}
	return a, nil
}

func applyFields(a *model.Applicant, f model.ProfileFields) {
	if name := strings.TrimSpace(f.Name); name != "" {
		a.Name = name
	}
	if f.Phone != nil {
		a.Phone = *f.Phone
	}
	if f.ResumeText != nil {
		a.ResumeText = *f.ResumeText
	}
	if f.ResumeURL != nil {
		a.ResumeURL = *f.ResumeURL
	}
}

// GetByID returns the applicant or nil when id is unknown.
func (r *Resolver) GetByID(ctx context.Context, id string) (*model.Applicant, error) {
	return r.repo.GetApplicant(ctx, id)
}

// GetByEmail returns the applicant or nil when no record uses email.
func (r *Resolver) GetByEmail(ctx context.Context, email string) (*model.Applicant, error) {
	return r.repo.GetApplicantByEmail(ctx, email)
}

// UpdateProfile edits the profile of applicant id.
func (r *Resolver) UpdateProfile(ctx context.Context, id string, fields model.ProfileFields) (*model.Applicant, error) {
	a, err := r.repo.GetApplicant(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get applicant: %w", err)
	}
	if a == nil {
		return nil, model.NotFound("applicant", id)
	}
	return r.apply(ctx, a, fields)
}
