package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"jobmate/hiring-service/internal/model"
)

// ErrInvalidCredentials is returned by Authenticate for an unknown email or a
// wrong password alike.
var ErrInvalidCredentials = errors.New("invalid email or password")

// PasswordHasher wraps bcrypt with a fixed cost.
type PasswordHasher struct {
	Cost int
}

// DefaultHasher uses bcrypt.DefaultCost.
func DefaultHasher() *PasswordHasher {
	return &PasswordHasher{Cost: bcrypt.DefaultCost}
}

func (h *PasswordHasher) Hash(pw string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pw), h.Cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

func (h *PasswordHasher) Verify(pw, storedHash string) bool {
	if storedHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(pw)) == nil
}

type registerInput struct {
	Name     string `json:"name" validate:"notblank"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"min=6"`
}

// Register creates a sign-in capable applicant. An applicant record that was
// created by an earlier submission and has no credentials yet is claimed;
// one that already has credentials, or is an admin, is a validation failure.
func (r *Resolver) Register(ctx context.Context, name, email, password string) (*model.Applicant, error) {
	email = strings.TrimSpace(email)
	if err := model.Validate(registerInput{Name: name, Email: email, Password: password}); err != nil {
		return nil, err
	}
	hash, err := r.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	existing, err := r.repo.GetApplicantByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	if existing != nil {
		if existing.Credentials != "" || existing.IsAdmin {
			return nil, model.Invalid("an account with email %s already exists", email)
		}
		existing.Name = strings.TrimSpace(name)
		existing.Credentials = hash
		if err := r.repo.UpdateApplicant(ctx, existing); err != nil {
			return nil, fmt.Errorf("register: %w", err)
		}
		r.logger.Info("applicant claimed account", "applicantId", existing.ID)
		return existing, nil
	}

	a := &model.Applicant{
		ID:          "applicant-" + uuid.NewString(),
		Name:        strings.TrimSpace(name),
		Email:       email,
		Credentials: hash,
	}
	if err := r.repo.CreateApplicant(ctx, a); err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	r.logger.Info("applicant registered", "applicantId", a.ID)
	return a, nil
}

// Authenticate checks email and password and returns the applicant.
func (r *Resolver) Authenticate(ctx context.Context, email, password string) (*model.Applicant, error) {
	a, err := r.repo.GetApplicantByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("authenticate: %w", err)
	}
	if a == nil || !r.hasher.Verify(password, a.Credentials) {
		return nil, ErrInvalidCredentials
	}
	return a, nil
}
