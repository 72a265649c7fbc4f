package prompt_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobmate/hiring-service/internal/prompt"
)

type stubGenerator struct {
	out    string
	err    error
	prompt string
}

func (g *stubGenerator) GenerateJSON(_ context.Context, p string) (string, error) {
	g.prompt = p
	return g.out, g.err
}

func (g *stubGenerator) Close() error { return nil }

func sampleRequest() prompt.Request {
	return prompt.Request{
		JobPosting: prompt.JobPosting{
			Title: "Frontend Developer", Description: "React and Next.js",
			Skills: []string{"React", "Next.js", "TypeScript"},
		},
		Applicants: []prompt.ApplicantInput{
			{Name: "Alice Wonderland", ResumeText: "5 years of React"},
			{Name: "Diana Prince", ResumeText: "Vue.js and Angular"},
		},
	}
}

func TestRender(t *testing.T) {
	text, err := prompt.Render(sampleRequest())
	require.NoError(t, err)
	assert.Contains(t, text, "Title: Frontend Developer")
	assert.Contains(t, text, "Required Skills: React, Next.js, TypeScript")
	assert.Contains(t, text, "Name: Alice Wonderland")
	assert.Contains(t, text, "Resume Text: Vue.js and Angular")
}

func TestScreen_ParsesFencedJSON(t *testing.T) {
	gen := &stubGenerator{out: "```json\n" + `{"assessments":[
		{"name":"Alice Wonderland","match":true,"reason":"Strong React"},
		{"name":"Diana Prince","match":false,"reason":"No React"}]}` + "\n```"}
	e := prompt.NewLLMExecutor(gen, 0, nil)

	resp, err := e.Screen(context.Background(), sampleRequest())
	require.NoError(t, err)
	require.Len(t, resp.Assessments, 2)
	assert.True(t, resp.Assessments[0].Match)
	assert.Equal(t, "No React", resp.Assessments[1].Reason)
	assert.Contains(t, gen.prompt, "Diana Prince")
}

func TestScreen_RejectsOffSchemaOutput(t *testing.T) {
	cases := map[string]string{
		"missing assessments": `{"results":[]}`,
		"match not boolean":   `{"assessments":[{"name":"A","match":"yes","reason":"r"}]}`,
		"missing reason":      `{"assessments":[{"name":"A","match":true}]}`,
		"not json":            `The applicants look great.`,
	}
	for name, out := range cases {
		t.Run(name, func(t *testing.T) {
			e := prompt.NewLLMExecutor(&stubGenerator{out: out}, 0, nil)
			_, err := e.Screen(context.Background(), sampleRequest())
			var oe *prompt.OutputError
			assert.True(t, errors.As(err, &oe), "got %v", err)
		})
	}
}

func TestScreen_GeneratorError(t *testing.T) {
	boom := errors.New("boom")
	e := prompt.NewLLMExecutor(&stubGenerator{err: boom}, 0, nil)
	_, err := e.Screen(context.Background(), sampleRequest())
	assert.ErrorIs(t, err, boom)
}

func TestScreen_NoApplicantsSkipsModel(t *testing.T) {
	gen := &stubGenerator{err: errors.New("must not be called")}
	e := prompt.NewLLMExecutor(gen, 0, nil)
	resp, err := e.Screen(context.Background(), prompt.Request{})
	require.NoError(t, err)
	assert.Empty(t, resp.Assessments)
	assert.Empty(t, gen.prompt)
}

func TestOllamaGenerator(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			http.NotFound(w, r)
			return
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"model":    "llama3",
			"response": `{"assessments":[{"name":"Alice Wonderland","match":true,"reason":"ok"}]}`,
			"done":     true,
		})
	}))
	defer srv.Close()

	gen, err := prompt.NewOllamaGenerator(srv.URL, "llama3", srv.Client())
	require.NoError(t, err)
	defer gen.Close()

	resp, err := prompt.NewLLMExecutor(gen, 0, nil).Screen(context.Background(), sampleRequest())
	require.NoError(t, err)
	require.Len(t, resp.Assessments, 1)
	assert.Equal(t, "llama3", got["model"])
	assert.Equal(t, "json", got["format"])
	assert.Equal(t, false, got["stream"])
}

func TestNew(t *testing.T) {
	ctx := context.Background()

	e, closer, err := prompt.New(ctx, prompt.Settings{Provider: prompt.ProviderNone}, nil)
	require.NoError(t, err)
	require.NoError(t, closer.Close())
	_, err = e.Screen(ctx, sampleRequest())
	assert.ErrorIs(t, err, prompt.ErrDisabled)

	_, _, err = prompt.New(ctx, prompt.Settings{Provider: "openai"}, nil)
	assert.Error(t, err)

	_, _, err = prompt.New(ctx, prompt.Settings{Provider: prompt.ProviderGemini, Model: "gemini-2.5-flash"}, nil)
	assert.Error(t, err, "gemini needs an API key")

	_, _, err = prompt.New(ctx, prompt.Settings{Provider: prompt.ProviderOllama, OllamaURL: "http://localhost:11434"}, nil)
	assert.Error(t, err, "ollama needs a model")
}
