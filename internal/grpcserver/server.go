// Package grpcserver implements the HiringService gRPC server.
//
// It delegates all business logic to the kanban and screening services and
// handles only the gRPC transport concerns: bearer-token metadata, error
// mapping, and conversion between the domain model and the Struct messages
// declared in internal/pb/hiring.proto.
package grpcserver

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"jobmate/hiring-service/internal/kanban"
	"jobmate/hiring-service/internal/model"
	"jobmate/hiring-service/internal/pb"
	"jobmate/hiring-service/internal/progress"
	"jobmate/hiring-service/internal/prompt"
	"jobmate/hiring-service/internal/screening"
	"jobmate/hiring-service/internal/session"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "jobmate.hiring.v1.HiringService"

// ─── Server ──────────────────────────────────────────────────────────────────

// Server implements pb.HiringServiceServer.
type Server struct {
	pb.UnimplementedHiringServiceServer
	kanban    *kanban.Service
	screening *screening.Service
	logger    *slog.Logger
}

// NewServer constructs a Server backed by the given services.
func NewServer(k *kanban.Service, s *screening.Service, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{kanban: k, screening: s, logger: logger}
}

// New returns a grpc.Server serving srv and the standard health service,
// authenticating callers with sessions.
func New(srv *Server, sessions *session.Issuer, opts ...grpc.ServerOption) *grpc.Server {
	opts = append(opts, grpc.ChainUnaryInterceptor(authInterceptor(sessions)))
	gs := grpc.NewServer(opts...)
	pb.RegisterHiringServiceServer(gs, srv)

	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(gs, hs)
	return gs
}

// authInterceptor attaches the bearer identity to the context. Calls without
// a token proceed anonymously; each RPC decides what it requires.
func authInterceptor(sessions *session.Issuer) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		ctx, err := sessions.FromMetadata(ctx)
		if err != nil {
			return nil, toGRPCError(err)
		}
		return handler(ctx, req)
	}
}

// ─── RPC implementations ─────────────────────────────────────────────────────

// ListApplications lists a job's applications for admins when jobId is set,
// otherwise the caller's own applications.
func (s *Server) ListApplications(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var (
		views []model.ApplicationView
		err   error
	)
	if jobID := stringField(req, "jobId"); jobID != "" {
		if _, err := session.RequireAdmin(ctx); err != nil {
			return nil, toGRPCError(err)
		}
		views, err = s.kanban.ListForJob(ctx, jobID)
	} else {
		id, rerr := session.Require(ctx)
		if rerr != nil {
			return nil, toGRPCError(rerr)
		}
		views, err = s.kanban.ListForApplicantEmail(ctx, id.Email)
	}
	if err != nil {
		return nil, toGRPCError(err)
	}

	pipelines := make(map[string]*model.Pipeline)
	list := make([]any, 0, len(views))
	for _, v := range views {
		p, seen := pipelines[v.JobID]
		if !seen {
			if p, err = s.kanban.PipelineFor(ctx, v.JobID); err != nil {
				return nil, toGRPCError(err)
			}
			pipelines[v.JobID] = p
		}
		m := appToMap(&v.Application, progress.Percent(v.CurrentStage, p))
		if v.ResumeURL != "" {
			m["resumeUrl"] = v.ResumeURL
		}
		list = append(list, m)
	}
	return newStruct(map[string]any{"applications": list})
}

// TransitionApplication moves an application to another stage. Admin only.
func (s *Server) TransitionApplication(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if _, err := session.RequireAdmin(ctx); err != nil {
		return nil, toGRPCError(err)
	}
	stage := stringField(req, "stage")
	if strings.TrimSpace(stage) == "" {
		return nil, status.Error(codes.InvalidArgument, "stage is required")
	}
	app, err := s.kanban.TransitionWithNotes(ctx, stringField(req, "applicationId"), stage, stringField(req, "notes"))
	if err != nil {
		return nil, toGRPCError(err)
	}
	return s.withProgress(ctx, app)
}

// AttachScreening sets the screening result of an application. Admin only.
func (s *Server) AttachScreening(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if _, err := session.RequireAdmin(ctx); err != nil {
		return nil, toGRPCError(err)
	}
	match, ok := boolField(req, "match")
	if !ok {
		return nil, status.Error(codes.InvalidArgument, "match is required")
	}
	app, err := s.screening.Attach(ctx, stringField(req, "applicationId"),
		model.ScreeningResult{Match: match, Reason: stringField(req, "reason")})
	if err != nil {
		return nil, toGRPCError(err)
	}
	return s.withProgress(ctx, app)
}

// GetProgress reports the completion percentage of one application. Callers
// other than admins may only query their own applications.
func (s *Server) GetProgress(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := session.Require(ctx)
	if err != nil {
		return nil, toGRPCError(err)
	}
	appID := stringField(req, "applicationId")
	app, err := s.kanban.Get(ctx, appID)
	if err != nil {
		return nil, toGRPCError(err)
	}
	if app == nil {
		return nil, toGRPCError(model.NotFound("application", appID))
	}
	if !id.Admin && !strings.EqualFold(app.ApplicantEmail, id.Email) {
		return nil, toGRPCError(session.ErrForbidden)
	}
	pct, err := s.kanban.Progress(ctx, app)
	if err != nil {
		return nil, toGRPCError(err)
	}
	return newStruct(map[string]any{
		"applicationId": app.ID,
		"currentStage":  app.CurrentStage,
		"progress":      pct,
		"terminal":      progress.IsTerminal(app.CurrentStage),
	})
}

func (s *Server) withProgress(ctx context.Context, app *model.Application) (*structpb.Struct, error) {
	pct, err := s.kanban.Progress(ctx, app)
	if err != nil {
		return nil, toGRPCError(err)
	}
	return newStruct(appToMap(app, pct))
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

// toGRPCError maps domain errors to gRPC status errors.
func toGRPCError(err error) error {
	switch {
	case model.IsValidation(err):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, model.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, session.ErrUnauthenticated):
		return status.Error(codes.Unauthenticated, err.Error())
	case errors.Is(err, session.ErrForbidden):
		return status.Error(codes.PermissionDenied, err.Error())
	case errors.Is(err, prompt.ErrDisabled):
		return status.Error(codes.Unavailable, err.Error())
	}
	return status.Error(codes.Internal, "internal server error")
}

func stringField(s *structpb.Struct, key string) string {
	return s.GetFields()[key].GetStringValue()
}

func boolField(s *structpb.Struct, key string) (bool, bool) {
	v, ok := s.GetFields()[key]
	if !ok {
		return false, false
	}
	b, ok := v.GetKind().(*structpb.Value_BoolValue)
	if !ok {
		return false, false
	}
	return b.BoolValue, true
}

func newStruct(m map[string]any) (*structpb.Struct, error) {
	st, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return st, nil
}

// appToMap converts an application to its Struct representation. Dates are
// RFC 3339 strings.
func appToMap(a *model.Application, pct int) map[string]any {
	history := make([]any, 0, len(a.StatusHistory))
	for _, e := range a.StatusHistory {
		entry := map[string]any{"stage": e.Stage, "date": e.Date.UTC().Format(time.RFC3339Nano)}
		if e.Notes != "" {
			entry["notes"] = e.Notes
		}
		history = append(history, entry)
	}
	m := map[string]any{
		"id":             a.ID,
		"jobId":          a.JobID,
		"applicantId":    a.ApplicantID,
		"applicantName":  a.ApplicantName,
		"applicantEmail": a.ApplicantEmail,
		"submissionDate": a.SubmissionDate.UTC().Format(time.RFC3339Nano),
		"currentStage":   a.CurrentStage,
		"statusHistory":  history,
		"progress":       pct,
	}
	if a.ScreeningResult != nil {
		m["screeningResult"] = map[string]any{
			"match":  a.ScreeningResult.Match,
			"reason": a.ScreeningResult.Reason,
		}
	}
	return m
}
