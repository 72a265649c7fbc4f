// Package prompt runs the applicant screening prompt against an LLM and
// returns one assessment per applicant.
package prompt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// ErrDisabled is returned when no prompt provider is configured.
var ErrDisabled = errors.New("prompt execution is disabled; set HIRING_PROMPT_PROVIDER to ollama or gemini")

// JobPosting is the job half of a screening request.
type JobPosting struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Skills      []string `json:"skills"`
}

// ApplicantInput is one applicant to assess.
type ApplicantInput struct {
	Name       string `json:"name"`
	ResumeText string `json:"resumeText"`
}

type Request struct {
	JobPosting JobPosting       `json:"jobPosting"`
	Applicants []ApplicantInput `json:"applicants"`
}

// Assessment is the model's verdict for the applicant called Name.
type Assessment struct {
	Name   string `json:"name"`
	Match  bool   `json:"match"`
	Reason string `json:"reason"`
}

type Response struct {
	Assessments []Assessment `json:"assessments"`
}

// Executor screens a batch of applicants against one job.
type Executor interface {
	Screen(ctx context.Context, req Request) (*Response, error)
}

// Generator turns a prompt into a JSON document.
type Generator interface {
	GenerateJSON(ctx context.Context, prompt string) (string, error)
	Close() error
}

// LLMExecutor renders the screening prompt, runs it on a Generator and
// checks the output against the assessment schema.
type LLMExecutor struct {
	gen     Generator
	timeout time.Duration
	logger  *slog.Logger
}

// NewLLMExecutor wraps gen. A zero timeout means no per-call deadline.
func NewLLMExecutor(gen Generator, timeout time.Duration, logger *slog.Logger) *LLMExecutor {
	if logger == nil {
		logger = slog.Default()
	}
	return &LLMExecutor{gen: gen, timeout: timeout, logger: logger}
}

func (e *LLMExecutor) Screen(ctx context.Context, req Request) (*Response, error) {
	if len(req.Applicants) == 0 {
		return &Response{Assessments: []Assessment{}}, nil
	}
	text, err := Render(req)
	if err != nil {
		return nil, err
	}
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	start := time.Now()
	raw, err := e.gen.GenerateJSON(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("generate screening: %w", err)
	}
	raw = cleanJSONBlock(raw)
	if err := validateOutput(raw); err != nil {
		return nil, err
	}

	var resp Response
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return nil, fmt.Errorf("decode screening output: %w", err)
	}
	e.logger.Info("screening completed",
		"applicants", len(req.Applicants),
		"assessments", len(resp.Assessments),
		"latency_ms", time.Since(start).Milliseconds())
	return &resp, nil
}

// Close releases the generator.
func (e *LLMExecutor) Close() error { return e.gen.Close() }

// cleanJSONBlock removes markdown code fences around a JSON document.
func cleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

// Disabled rejects every request with ErrDisabled.
type Disabled struct{}

func (Disabled) Screen(context.Context, Request) (*Response, error) { return nil, ErrDisabled }
