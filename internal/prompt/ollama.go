package prompt

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ollama/ollama/api"
)

// OllamaGenerator runs prompts on a local Ollama server in JSON mode.
type OllamaGenerator struct {
	api    *api.Client
	client *http.Client
	model  string
}

// NewOllamaGenerator targets baseURL. A nil httpClient uses a default one.
func NewOllamaGenerator(baseURL, model string, httpClient *http.Client) (*OllamaGenerator, error) {
	u, err := url.ParseRequestURI(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama url: %w", err)
	}
	if model == "" {
		return nil, fmt.Errorf("ollama model is required")
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &OllamaGenerator{api: api.NewClient(u, httpClient), client: httpClient, model: model}, nil
}

func (g *OllamaGenerator) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	stream := false
	req := &api.GenerateRequest{
		Model:  g.model,
		Prompt: prompt,
		Format: json.RawMessage(`"json"`),
		Stream: &stream,
	}
	var out strings.Builder
	err := g.api.Generate(ctx, req, func(r api.GenerateResponse) error {
		out.WriteString(r.Response)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("ollama generate: %w", err)
	}
	return out.String(), nil
}

// Close drops idle connections held by the HTTP transport.
func (g *OllamaGenerator) Close() error {
	g.client.CloseIdleConnections()
	return nil
}
