package main

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/Simplici0/movequote/internal/calculator"
	"github.com/Simplici0/movequote/internal/geo"
	"github.com/Simplici0/movequote/internal/migrations"
	"github.com/Simplici0/movequote/internal/notify"
	"github.com/Simplici0/movequote/internal/session"
)

const maxBodyBytes = 64 << 10

type server struct {
	db             *sql.DB
	engine         *calculator.Engine
	sessions       session.Store
	geo            geo.Provider
	dispatcher     *notify.Dispatcher
	defaultMileage float64
	log            *zap.Logger
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Post("/sessions", s.handleSessionCreate)
		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Use(s.requireSessionID)
			r.Get("/", s.handleSessionGet)
			r.Delete("/", s.handleSessionDelete)
			r.Post("/advance", s.handleSessionAdvance)
			r.Post("/back", s.handleSessionBack)
			r.Get("/quote", s.handleSessionQuote)
			r.Post("/finalize", s.handleSessionFinalize)
		})
		r.Post("/override/validate", s.handleOverrideValidate)
		r.Get("/rates", s.handleRatesGet)
		r.Put("/rates", s.handleRatesUpdate)
	})

	return r
}

func (s *server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			s.log.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		}()
		next.ServeHTTP(ww, r)
	})
}

func (s *server) requireSessionID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !session.ValidID(chi.URLParam(r, "id")) {
			writeJSON(w, http.StatusNotFound, errorBody{Error: "session_not_found"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.db.PingContext(r.Context()); err != nil {
		s.log.Error("health check ping failed", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	version, err := migrations.Version(s.db)
	if err != nil {
		s.log.Error("health check schema version failed", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "schema_version": version})
}

type errorBody struct {
	Error   string                  `json:"error"`
	Message string                  `json:"message,omitempty"`
	Step    calculator.StepID       `json:"step,omitempty"`
	Fields  []calculator.FieldError `json:"fields,omitempty"`
	Details any                     `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid_json", Message: err.Error()})
		return false
	}
	return true
}

// writeError maps engine and store errors onto HTTP responses. Validation
// failures are the user's to fix; sequencing errors are the client's.
func (s *server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		verr *calculator.StepValidationError
		oerr *calculator.ManualOverrideBoundsError
		ierr *calculator.InapplicableStepError
	)
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{
			Error:  "validation",
			Step:   verr.Step,
			Fields: verr.Fields,
		})
	case errors.As(err, &oerr):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{
			Error:   "manual_override_bounds",
			Message: oerr.Error(),
			Step:    calculator.StepRecommendation,
			Details: oerr,
		})
	case errors.As(err, &ierr):
		s.log.Warn("inapplicable step",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err),
		)
		writeJSON(w, http.StatusConflict, errorBody{
			Error:   "inapplicable_step",
			Message: ierr.Error(),
			Step:    ierr.Current,
		})
	case errors.Is(err, calculator.ErrNegativeMileage):
		s.log.Error("negative mileage from geo provider", zap.Error(err))
		writeJSON(w, http.StatusBadGateway, errorBody{Error: "mileage_unavailable"})
	case errors.Is(err, session.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: "session_not_found"})
	default:
		s.log.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err),
		)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal"})
	}
}
