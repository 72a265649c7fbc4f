package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"jobmate/hiring-service/internal/api"
	"jobmate/hiring-service/internal/identity"
	"jobmate/hiring-service/internal/jobs"
	"jobmate/hiring-service/internal/kanban"
	"jobmate/hiring-service/internal/model"
	"jobmate/hiring-service/internal/pipeline"
	"jobmate/hiring-service/internal/prompt"
	"jobmate/hiring-service/internal/screening"
	"jobmate/hiring-service/internal/session"
	"jobmate/hiring-service/internal/store"
	"jobmate/hiring-service/internal/store/memory"
)

var resumeText = strings.Repeat("Five years building React and Next.js apps. ", 2)

type stubExecutor struct {
	out []prompt.Assessment
	err error
}

func (e *stubExecutor) Screen(context.Context, prompt.Request) (*prompt.Response, error) {
	if e.err != nil {
		return nil, e.err
	}
	return &prompt.Response{Assessments: e.out}, nil
}

type env struct {
	t     *testing.T
	srv   *httptest.Server
	st    *store.Store
	exec  *stubExecutor
	admin string
}

func newEnv(t *testing.T) *env {
	t.Helper()
	st := store.FromBackend(memory.New())
	resolver := identity.NewResolver(st.Applicants, identity.WithHasher(&identity.PasswordHasher{Cost: bcrypt.MinCost}))
	sessions := session.NewIssuer("test-secret", time.Hour)
	exec := &stubExecutor{}
	k := kanban.NewService(st, resolver)

	router := api.NewRouter(api.Deps{
		Pipelines: pipeline.NewRegistry(st.Pipelines, nil),
		Jobs:      jobs.NewCatalog(st.Jobs, st.Pipelines),
		Identity:  resolver,
		Kanban:    k,
		Screening: screening.NewService(st, exec),
		Sessions:  sessions,
		Version:   "test",
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	token, err := sessions.Issue(session.Identity{ApplicantID: "applicant-admin", Email: "admin@jobmate.test", Admin: true})
	require.NoError(t, err)
	return &env{t: t, srv: srv, st: st, exec: exec, admin: token}
}

func (e *env) do(method, path, token string, body any, out any) int {
	e.t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(e.t, err)
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, e.srv.URL+path, rd)
	require.NoError(e.t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := e.srv.Client().Do(req)
	require.NoError(e.t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(e.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

// setupJob creates the scenario pipeline and one open job through the API.
func (e *env) setupJob() (model.Pipeline, model.Job) {
	e.t.Helper()
	var p model.Pipeline
	code := e.do(http.MethodPost, "/v1/pipelines", e.admin, map[string]any{
		"name": "Scenario",
		"stages": []map[string]string{
			{"name": "Received"}, {"name": "Screening"}, {"name": "Hired"}, {"name": "Rejected"},
		},
	}, &p)
	require.Equal(e.t, http.StatusCreated, code)

	var j model.Job
	code = e.do(http.MethodPost, "/v1/jobs", e.admin, map[string]any{
		"title": "Frontend Developer", "location": "Remote", "description": "React and Next.js",
		"requirements": []string{"React"}, "deadline": time.Now().Add(72 * time.Hour).Format(time.RFC3339),
		"pipelineId": p.ID,
	}, &j)
	require.Equal(e.t, http.StatusCreated, code)
	return p, j
}

type appResponse struct {
	model.Application
	ResumeURL string `json:"resumeUrl"`
	Progress  int    `json:"progress"`
}

func TestHealth(t *testing.T) {
	e := newEnv(t)
	var body map[string]string
	assert.Equal(t, http.StatusOK, e.do(http.MethodGet, "/health", "", nil, &body))
	assert.Equal(t, "ok", body["status"])
}

func TestApplicationFlow(t *testing.T) {
	e := newEnv(t)
	_, job := e.setupJob()
	assert.Equal(t, model.JobOpen, job.Status)

	var created appResponse
	code := e.do(http.MethodPost, "/v1/jobs/"+job.ID+"/applications", "", map[string]any{
		"name": "Alice Wonderland", "email": "alice@example.com", "resumeText": resumeText,
		"resumeUrl": "https://example.com/alice.pdf",
	}, &created)
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "Received", created.CurrentStage)
	assert.Equal(t, 33, created.Progress)

	var list []appResponse
	require.Equal(t, http.StatusOK, e.do(http.MethodGet, "/v1/jobs/"+job.ID+"/applications", e.admin, nil, &list))
	require.Len(t, list, 1)
	assert.Equal(t, "https://example.com/alice.pdf", list[0].ResumeURL)

	var moved appResponse
	code = e.do(http.MethodPost, "/v1/applications/"+created.ID+"/move", e.admin,
		map[string]string{"stage": "Screening"}, &moved)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 67, moved.Progress)
	assert.Len(t, moved.StatusHistory, 2)

	code = e.do(http.MethodPost, "/v1/applications/"+created.ID+"/move", e.admin,
		map[string]string{"stage": "Hired"}, &moved)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 100, moved.Progress)

	assert.Equal(t, http.StatusBadRequest, e.do(http.MethodPost, "/v1/applications/"+created.ID+"/move",
		e.admin, map[string]string{"stage": "  "}, nil))
	assert.Equal(t, http.StatusNotFound, e.do(http.MethodPost, "/v1/applications/app-missing/move",
		e.admin, map[string]string{"stage": "Hired"}, nil))

	// The applicant signs up later and sees the application under their email.
	var tok struct {
		Token     string          `json:"token"`
		Applicant model.Applicant `json:"applicant"`
	}
	code = e.do(http.MethodPost, "/v1/auth/signup", "", map[string]string{
		"name": "Alice Wonderland", "email": "alice@example.com", "password": "wonderland",
	}, &tok)
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, created.ApplicantID, tok.Applicant.ID)
	assert.Empty(t, tok.Applicant.Credentials)

	var mine []appResponse
	require.Equal(t, http.StatusOK, e.do(http.MethodGet, "/v1/me/applications", tok.Token, nil, &mine))
	require.Len(t, mine, 1)
	assert.Equal(t, 100, mine[0].Progress)
}

func TestApply_Errors(t *testing.T) {
	e := newEnv(t)
	_, job := e.setupJob()

	cases := []struct {
		name string
		path string
		body map[string]any
		code int
	}{
		{"short resume", "/v1/jobs/" + job.ID + "/applications",
			map[string]any{"name": "Al", "email": "al@example.com", "resumeText": "short"}, http.StatusBadRequest},
		{"bad email", "/v1/jobs/" + job.ID + "/applications",
			map[string]any{"name": "Alice", "email": "nope", "resumeText": resumeText}, http.StatusBadRequest},
		{"unknown job", "/v1/jobs/job-missing/applications",
			map[string]any{"name": "Alice", "email": "alice@example.com", "resumeText": resumeText}, http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var body map[string]string
			assert.Equal(t, tc.code, e.do(http.MethodPost, tc.path, "", tc.body, &body))
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestAuthorization(t *testing.T) {
	e := newEnv(t)
	_, job := e.setupJob()

	var tok struct {
		Token string `json:"token"`
	}
	require.Equal(t, http.StatusCreated, e.do(http.MethodPost, "/v1/auth/signup", "",
		map[string]string{"name": "Bob", "email": "bob@example.com", "password": "builder"}, &tok))

	path := "/v1/jobs/" + job.ID + "/applications"
	assert.Equal(t, http.StatusUnauthorized, e.do(http.MethodGet, path, "", nil, nil))
	assert.Equal(t, http.StatusForbidden, e.do(http.MethodGet, path, tok.Token, nil, nil))
	assert.Equal(t, http.StatusOK, e.do(http.MethodGet, path, e.admin, nil, nil))

	assert.Equal(t, http.StatusUnauthorized, e.do(http.MethodGet, "/v1/pipelines", "not-a-token", nil, nil))
	assert.Equal(t, http.StatusOK, e.do(http.MethodGet, "/v1/pipelines", tok.Token, nil, nil))

	assert.Equal(t, http.StatusUnauthorized, e.do(http.MethodPost, "/v1/auth/signin", "",
		map[string]string{"email": "bob@example.com", "password": "wrong"}, nil))
	assert.Equal(t, http.StatusOK, e.do(http.MethodPost, "/v1/auth/signin", "",
		map[string]string{"email": "bob@example.com", "password": "builder"}, nil))
}

func TestPipelineEndpoints(t *testing.T) {
	e := newEnv(t)
	p, _ := e.setupJob()

	assert.Equal(t, http.StatusNotFound, e.do(http.MethodGet, "/v1/pipelines/pipeline-missing", e.admin, nil, nil))
	assert.Equal(t, http.StatusBadRequest, e.do(http.MethodPost, "/v1/pipelines", e.admin,
		map[string]any{"name": "Empty", "stages": []any{}}, nil))

	stages := append([]model.Stage{{Name: "Phone Screen"}}, p.Stages...)
	var updated model.Pipeline
	require.Equal(t, http.StatusOK, e.do(http.MethodPut, "/v1/pipelines/"+p.ID, e.admin,
		map[string]any{"name": p.Name, "stages": stages}, &updated))
	require.Len(t, updated.Stages, 5)
	assert.Equal(t, "Phone Screen", updated.Stages[0].Name)
	assert.Equal(t, 1, updated.Stages[0].Order)
	assert.Equal(t, p.Stages[0].ID, updated.Stages[1].ID)
}

func TestScreeningEndpoints(t *testing.T) {
	e := newEnv(t)
	_, job := e.setupJob()
	var created appResponse
	require.Equal(t, http.StatusCreated, e.do(http.MethodPost, "/v1/jobs/"+job.ID+"/applications", "",
		map[string]any{"name": "Alice Wonderland", "email": "alice@example.com", "resumeText": resumeText}, &created))

	assert.Equal(t, http.StatusBadRequest, e.do(http.MethodPost, "/v1/applications/"+created.ID+"/screening",
		e.admin, map[string]any{"reason": "no verdict"}, nil))

	var attached appResponse
	require.Equal(t, http.StatusOK, e.do(http.MethodPost, "/v1/applications/"+created.ID+"/screening",
		e.admin, map[string]any{"match": false, "reason": "No React"}, &attached))
	require.NotNil(t, attached.ScreeningResult)
	assert.False(t, attached.ScreeningResult.Match)
	assert.Len(t, attached.StatusHistory, 1)

	e.exec.out = []prompt.Assessment{{Name: "Alice Wonderland", Match: true, Reason: "Strong React"}}
	var report screening.Report
	require.Equal(t, http.StatusOK, e.do(http.MethodPost, "/v1/jobs/"+job.ID+"/screen", e.admin,
		map[string]any{"applicationIds": []string{created.ID}}, &report))
	require.Len(t, report.Attached, 1)
	assert.Equal(t, created.ID, report.Attached[0].ApplicationID)
}

func TestJobEndpoints(t *testing.T) {
	e := newEnv(t)
	p, job := e.setupJob()

	var open []model.Job
	require.Equal(t, http.StatusOK, e.do(http.MethodGet, "/v1/jobs?status=Open", "", nil, &open))
	assert.Len(t, open, 1)

	var deadlines []model.Job
	require.Equal(t, http.StatusOK, e.do(http.MethodGet, "/v1/deadlines?openOnly=true", "", nil, &deadlines))
	assert.Len(t, deadlines, 1)

	assert.Equal(t, http.StatusNotFound, e.do(http.MethodGet, "/v1/jobs/job-missing", "", nil, nil))
	assert.Equal(t, http.StatusBadRequest, e.do(http.MethodPut, "/v1/jobs/"+job.ID+"/pipeline", e.admin,
		map[string]string{"pipelineId": "pipeline-missing"}, nil))

	var updated model.Job
	require.Equal(t, http.StatusOK, e.do(http.MethodPut, "/v1/jobs/"+job.ID, e.admin, map[string]any{
		"title": "Senior Frontend Developer", "description": "React", "status": "Closed",
		"deadline": job.Deadline.Format(time.RFC3339), "pipelineId": p.ID,
	}, &updated))
	assert.Equal(t, model.JobClosed, updated.Status)

	assert.Equal(t, http.StatusBadRequest, e.do(http.MethodPost, "/v1/jobs/"+job.ID+"/applications", "",
		map[string]any{"name": "Alice", "email": "alice@example.com", "resumeText": resumeText}, nil),
		"closed jobs take no applications")
}

func TestScreenJob_ProviderDisabled(t *testing.T) {
	e := newEnv(t)
	_, job := e.setupJob()
	require.Equal(t, http.StatusCreated, e.do(http.MethodPost, "/v1/jobs/"+job.ID+"/applications", "",
		map[string]any{"name": "Alice Wonderland", "email": "alice@example.com", "resumeText": resumeText}, nil))

	e.exec.err = prompt.ErrDisabled
	var body map[string]string
	assert.Equal(t, http.StatusServiceUnavailable, e.do(http.MethodPost, "/v1/jobs/"+job.ID+"/screen", e.admin, nil, &body))
	assert.Contains(t, body["error"], "disabled")
}

func TestApply_ReportsStoredResumeURL(t *testing.T) {
	e := newEnv(t)
	_, job := e.setupJob()
	require.Equal(t, http.StatusCreated, e.do(http.MethodPost, "/v1/jobs/"+job.ID+"/applications", "", map[string]any{
		"name": "Alice Wonderland", "email": "alice@example.com", "resumeText": resumeText,
		"resumeUrl": "https://example.com/alice.pdf",
	}, nil))

	var second appResponse
	require.Equal(t, http.StatusCreated, e.do(http.MethodPost, "/v1/jobs/"+job.ID+"/applications", "", map[string]any{
		"name": "Alice Wonderland", "email": "alice@example.com", "resumeText": resumeText,
	}, &second))
	assert.Equal(t, "https://example.com/alice.pdf", second.ResumeURL, "omitting the URL keeps the stored one")
}
