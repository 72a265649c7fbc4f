package api

import (
	"context"
	"net/http"
	"strings"

	"jobmate/hiring-service/internal/jobs"
	"jobmate/hiring-service/internal/kanban"
	"jobmate/hiring-service/internal/model"
	"jobmate/hiring-service/internal/progress"
	"jobmate/hiring-service/internal/session"
)

// ─── Auth ────────────────────────────────────────────────────────────────────

type credentialsRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token     string           `json:"token"`
	Applicant *model.Applicant `json:"applicant"`
}

func (h *Handler) signup(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, err)
		return
	}
	a, err := h.Identity.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.respondToken(w, http.StatusCreated, a)
}

func (h *Handler) signin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, err)
		return
	}
	a, err := h.Identity.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.respondToken(w, http.StatusOK, a)
}

func (h *Handler) respondToken(w http.ResponseWriter, code int, a *model.Applicant) {
	token, err := h.Sessions.Issue(session.Identity{ApplicantID: a.ID, Email: a.Email, Admin: a.IsAdmin})
	if err != nil {
		h.fail(w, err)
		return
	}
	jsonStatus(w, code, tokenResponse{Token: token, Applicant: a.Public()})
}

// ─── Pipelines ───────────────────────────────────────────────────────────────

type pipelineRequest struct {
	Name   string        `json:"name"`
	Stages []model.Stage `json:"stages"`
}

func (h *Handler) listPipelines(w http.ResponseWriter, r *http.Request) {
	ps, err := h.Pipelines.List(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	jsonOK(w, ps)
}

func (h *Handler) getPipeline(w http.ResponseWriter, r *http.Request) {
	p, err := h.Pipelines.Get(r.Context(), pathID(r))
	if err != nil {
		h.fail(w, err)
		return
	}
	if p == nil {
		h.fail(w, model.NotFound("pipeline", pathID(r)))
		return
	}
	jsonOK(w, p)
}

func (h *Handler) createPipeline(w http.ResponseWriter, r *http.Request) {
	var req pipelineRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, err)
		return
	}
	names := make([]string, 0, len(req.Stages))
	for _, s := range req.Stages {
		names = append(names, s.Name)
	}
	p, err := h.Pipelines.Create(r.Context(), req.Name, names)
	if err != nil {
		h.fail(w, err)
		return
	}
	jsonStatus(w, http.StatusCreated, p)
}

func (h *Handler) updatePipeline(w http.ResponseWriter, r *http.Request) {
	var req pipelineRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, err)
		return
	}
	p, err := h.Pipelines.Update(r.Context(), &model.Pipeline{ID: pathID(r), Name: req.Name, Stages: req.Stages})
	if err != nil {
		h.fail(w, err)
		return
	}
	jsonOK(w, p)
}

// ─── Jobs ────────────────────────────────────────────────────────────────────

func (h *Handler) listJobs(w http.ResponseWriter, r *http.Request) {
	js, err := h.Jobs.List(r.Context(), model.JobStatus(r.URL.Query().Get("status")))
	if err != nil {
		h.fail(w, err)
		return
	}
	jsonOK(w, js)
}

func (h *Handler) deadlines(w http.ResponseWriter, r *http.Request) {
	openOnly := r.URL.Query().Get("openOnly") == "true"
	js, err := h.Jobs.UpcomingDeadlines(r.Context(), openOnly)
	if err != nil {
		h.fail(w, err)
		return
	}
	jsonOK(w, js)
}

func (h *Handler) getJob(w http.ResponseWriter, r *http.Request) {
	j, err := h.Jobs.Get(r.Context(), pathID(r))
	if err != nil {
		h.fail(w, err)
		return
	}
	if j == nil {
		h.fail(w, model.NotFound("job", pathID(r)))
		return
	}
	jsonOK(w, j)
}

func (h *Handler) createJob(w http.ResponseWriter, r *http.Request) {
	var in jobs.Input
	if err := decode(r, &in); err != nil {
		h.fail(w, err)
		return
	}
	j, err := h.Jobs.Create(r.Context(), in)
	if err != nil {
		h.fail(w, err)
		return
	}
	jsonStatus(w, http.StatusCreated, j)
}

func (h *Handler) updateJob(w http.ResponseWriter, r *http.Request) {
	var in jobs.Input
	if err := decode(r, &in); err != nil {
		h.fail(w, err)
		return
	}
	j, err := h.Jobs.Update(r.Context(), pathID(r), in)
	if err != nil {
		h.fail(w, err)
		return
	}
	jsonOK(w, j)
}

func (h *Handler) assignPipeline(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PipelineID string `json:"pipelineId"`
	}
	if err := decode(r, &req); err != nil {
		h.fail(w, err)
		return
	}
	j, err := h.Jobs.AssignPipeline(r.Context(), pathID(r), req.PipelineID)
	if err != nil {
		h.fail(w, err)
		return
	}
	jsonOK(w, j)
}

// ─── Applications ────────────────────────────────────────────────────────────

// applicationResponse is an application as shown on the board: joined with
// the applicant's resume URL and its progress under the current pipeline.
type applicationResponse struct {
	model.ApplicationView
	Progress int `json:"progress"`
}

// withProgress computes progress for views, loading each job's pipeline
// once.
func (h *Handler) withProgress(ctx context.Context, views []model.ApplicationView) ([]applicationResponse, error) {
	pipelines := make(map[string]*model.Pipeline)
	out := make([]applicationResponse, 0, len(views))
	for _, v := range views {
		p, seen := pipelines[v.JobID]
		if !seen {
			var err error
			if p, err = h.Kanban.PipelineFor(ctx, v.JobID); err != nil {
				return nil, err
			}
			pipelines[v.JobID] = p
		}
		out = append(out, applicationResponse{ApplicationView: v, Progress: progress.Percent(v.CurrentStage, p)})
	}
	return out, nil
}

func (h *Handler) single(ctx context.Context, a *model.Application) (applicationResponse, error) {
	pct, err := h.Kanban.Progress(ctx, a)
	if err != nil {
		return applicationResponse{}, err
	}
	return applicationResponse{ApplicationView: model.ApplicationView{Application: *a}, Progress: pct}, nil
}

func (h *Handler) apply(w http.ResponseWriter, r *http.Request) {
	var in kanban.ApplyInput
	if err := decode(r, &in); err != nil {
		h.fail(w, err)
		return
	}
	app, err := h.Kanban.Apply(r.Context(), pathID(r), in)
	if err != nil {
		h.fail(w, err)
		return
	}
	resp, err := h.single(r.Context(), app)
	if err != nil {
		h.fail(w, err)
		return
	}
	applicant, err := h.Identity.GetByID(r.Context(), app.ApplicantID)
	if err != nil {
		h.fail(w, err)
		return
	}
	if applicant != nil {
		resp.ResumeURL = applicant.ResumeURL
	}
	jsonStatus(w, http.StatusCreated, resp)
}

func (h *Handler) listJobApplications(w http.ResponseWriter, r *http.Request) {
	job, err := h.Jobs.Get(r.Context(), pathID(r))
	if err != nil {
		h.fail(w, err)
		return
	}
	if job == nil {
		h.fail(w, model.NotFound("job", pathID(r)))
		return
	}
	views, err := h.Kanban.ListForJob(r.Context(), job.ID)
	if err != nil {
		h.fail(w, err)
		return
	}
	out, err := h.withProgress(r.Context(), views)
	if err != nil {
		h.fail(w, err)
		return
	}
	jsonOK(w, out)
}

func (h *Handler) myApplications(w http.ResponseWriter, r *http.Request) {
	id, _ := session.FromContext(r.Context())
	views, err := h.Kanban.ListForApplicantEmail(r.Context(), id.Email)
	if err != nil {
		h.fail(w, err)
		return
	}
	out, err := h.withProgress(r.Context(), views)
	if err != nil {
		h.fail(w, err)
		return
	}
	jsonOK(w, out)
}

func (h *Handler) moveApplication(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Stage string `json:"stage"`
		Notes string `json:"notes"`
	}
	if err := decode(r, &req); err != nil {
		h.fail(w, err)
		return
	}
	if strings.TrimSpace(req.Stage) == "" {
		h.fail(w, model.Invalid("stage is required"))
		return
	}
	app, err := h.Kanban.TransitionWithNotes(r.Context(), pathID(r), req.Stage, req.Notes)
	if err != nil {
		h.fail(w, err)
		return
	}
	resp, err := h.single(r.Context(), app)
	if err != nil {
		h.fail(w, err)
		return
	}
	jsonOK(w, resp)
}

func (h *Handler) attachScreening(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Match  *bool  `json:"match"`
		Reason string `json:"reason"`
	}
	if err := decode(r, &req); err != nil {
		h.fail(w, err)
		return
	}
	if req.Match == nil {
		h.fail(w, model.Invalid("match is required"))
		return
	}
	app, err := h.Screening.Attach(r.Context(), pathID(r), model.ScreeningResult{Match: *req.Match, Reason: req.Reason})
	if err != nil {
		h.fail(w, err)
		return
	}
	resp, err := h.single(r.Context(), app)
	if err != nil {
		h.fail(w, err)
		return
	}
	jsonOK(w, resp)
}

func (h *Handler) screenJob(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ApplicationIDs []string `json:"applicationIds"`
	}
	if r.ContentLength != 0 {
		if err := decode(r, &req); err != nil {
			h.fail(w, err)
			return
		}
	}
	report, err := h.Screening.ScreenJob(r.Context(), pathID(r), req.ApplicationIDs)
	if err != nil {
		h.fail(w, err)
		return
	}
	jsonOK(w, report)
}

// ─── Applicants ──────────────────────────────────────────────────────────────

type profileRequest struct {
	Name       string  `json:"name"`
	Phone      *string `json:"phone"`
	ResumeText *string `json:"resumeText"`
	ResumeURL  *string `json:"resumeUrl"`
}

func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	id, _ := session.FromContext(r.Context())
	var req profileRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, err)
		return
	}
	a, err := h.Identity.UpdateProfile(r.Context(), id.ApplicantID, model.ProfileFields{
		Name: req.Name, Phone: req.Phone, ResumeText: req.ResumeText, ResumeURL: req.ResumeURL,
	})
	if err != nil {
		h.fail(w, err)
		return
	}
	jsonOK(w, a.Public())
}

func (h *Handler) getApplicant(w http.ResponseWriter, r *http.Request) {
	a, err := h.Identity.GetByID(r.Context(), pathID(r))
	if err != nil {
		h.fail(w, err)
		return
	}
	if a == nil {
		h.fail(w, model.NotFound("applicant", pathID(r)))
		return
	}
	jsonOK(w, a.Public())
}
