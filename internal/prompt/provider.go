package prompt

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"
)

// Provider names accepted by New.
const (
	ProviderNone   = "none"
	ProviderOllama = "ollama"
	ProviderGemini = "gemini"
)

// Settings selects and configures a provider.
type Settings struct {
	Provider     string
	Model        string
	OllamaURL    string
	GeminiAPIKey string
	Timeout      time.Duration
}

// New builds the Executor for s. The returned closer releases provider
// clients and is never nil.
func New(ctx context.Context, s Settings, logger *slog.Logger) (Executor, io.Closer, error) {
	var gen Generator
	var err error
	switch s.Provider {
	case "", ProviderNone:
		return Disabled{}, nopCloser{}, nil
	case ProviderOllama:
		gen, err = NewOllamaGenerator(s.OllamaURL, s.Model, nil)
	case ProviderGemini:
		gen, err = NewGeminiGenerator(ctx, s.GeminiAPIKey, s.Model)
	default:
		return nil, nil, fmt.Errorf("unknown prompt provider %q", s.Provider)
	}
	if err != nil {
		return nil, nil, err
	}
	e := NewLLMExecutor(gen, s.Timeout, logger)
	return e, e, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
