package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	api "reportctx/internal/api"
	"reportctx/internal/domain"
	"reportctx/internal/services/reportcontext"
)

// ContextBuilder is satisfied by *reportcontext.Builder.
type ContextBuilder interface {
	Build(ctx context.Context, reportID string) (*reportcontext.ReportContext, error)
}

// Pinger reports store reachability for /healthz.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server implements the generated StrictServerInterface.
type Server struct {
	builder ContextBuilder
	store   Pinger
	metrics http.Handler
	log     *slog.Logger
}

var _ api.StrictServerInterface = (*Server)(nil)

// New builds the HTTP surface. store and metrics may be nil.
func New(builder ContextBuilder, store Pinger, metrics http.Handler, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{builder: builder, store: store, metrics: metrics, log: logger}
}

// Routes returns a chi.Router mounting the generated handlers plus /metrics.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLog)

	// Generated handler wiring
	handler := api.NewStrictHandlerWithOptions(s, nil, api.StrictHTTPServerOptions{
		RequestErrorHandlerFunc:  s.requestError,
		ResponseErrorHandlerFunc: s.responseError,
	})
	api.HandlerWithOptions(handler, api.ChiServerOptions{
		BaseRouter:       r,
		ErrorHandlerFunc: s.requestError,
	})
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}
	return r
}

// Strict handler methods

func (s *Server) GetHealthz(ctx context.Context, _ api.GetHealthzRequestObject) (api.GetHealthzResponseObject, error) {
	if s.store != nil {
		ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if err := s.store.Ping(ctx); err != nil {
			s.log.Warn("health check failed", "error", err)
			return api.GetHealthz503JSONResponse{Status: "unavailable"}, nil
		}
	}
	return api.GetHealthz200JSONResponse{Status: "ok"}, nil
}

// GetReportContext returns the flattened template mapping, or the typed context when
// format=structured.
func (s *Server) GetReportContext(ctx context.Context, req api.GetReportContextRequestObject) (api.GetReportContextResponseObject, error) {
	format := api.GetReportContextParamsFormatFlat
	if req.Params.Format != nil {
		format = *req.Params.Format
	}
	if format != api.GetReportContextParamsFormatFlat && format != api.GetReportContextParamsFormatStructured {
		return nil, &runtimeError{code: http.StatusBadRequest, msg: "format must be flat or structured"}
	}

	rc, err := s.builder.Build(ctx, req.Id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return api.GetReportContext404JSONResponse{Error: "report not found"}, nil
		}
		return nil, err
	}
	if format == api.GetReportContextParamsFormatStructured {
		payload, err := structuredPayload(rc)
		if err != nil {
			return nil, err
		}
		return api.GetReportContext200JSONResponse(payload), nil
	}
	return api.GetReportContext200JSONResponse(reportcontext.ContextToMap(rc)), nil
}

// structuredPayload re-decodes the typed context into the schema's free-form object.
func structuredPayload(rc *reportcontext.ReportContext) (api.ReportContextPayload, error) {
	b, err := json.Marshal(rc)
	if err != nil {
		return nil, fmt.Errorf("encoding report context: %w", err)
	}
	var payload api.ReportContextPayload
	if err := json.Unmarshal(b, &payload); err != nil {
		return nil, fmt.Errorf("encoding report context: %w", err)
	}
	return payload, nil
}

// requestError handles parameters the generated binder rejects.
func (s *Server) requestError(w http.ResponseWriter, r *http.Request, err error) {
	writeJSON(w, http.StatusBadRequest, api.Error{Error: err.Error()})
}

func (s *Server) responseError(w http.ResponseWriter, r *http.Request, err error) {
	var rt *runtimeError
	switch {
	case errors.As(err, &rt):
		writeJSON(w, rt.code, api.Error{Error: rt.msg})
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, api.Error{Error: "report not found"})
	case errors.Is(err, context.Canceled):
		// client went away; nothing useful to write
		s.log.Debug("request cancelled", "path", r.URL.Path)
	default:
		s.log.Error("request failed", "path", r.URL.Path, "request_id", middleware.GetReqID(r.Context()), "error", err)
		writeJSON(w, http.StatusInternalServerError, api.Error{Error: "internal error"})
	}
}

func (s *Server) requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

type runtimeError struct {
	code int
	msg  string
}

func (e *runtimeError) Error() string { return e.msg }
