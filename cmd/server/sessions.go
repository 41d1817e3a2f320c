package main

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Simplici0/movequote/internal/calculator"
	"github.com/Simplici0/movequote/internal/notify"
	"github.com/Simplici0/movequote/internal/pricing"
	"github.com/Simplici0/movequote/internal/session"
)

const geoTimeout = 5 * time.Second

type sessionView struct {
	ID      string              `json:"id"`
	State   calculator.State    `json:"state"`
	Derived calculator.Derived  `json:"derived"`
	Path    []calculator.StepID `json:"path"`
	Quote   *calculator.Quote   `json:"quote,omitempty"`
}

type callbackView struct {
	RequestID string `json:"request_id,omitempty"`
	Recorded  bool   `json:"recorded"`
}

// finalView is the response of finalize: the quote plus, for escalated
// sessions, the recorded callback request.
type finalView struct {
	calculator.Quote
	Callback *callbackView `json:"callback,omitempty"`
}

func (s *server) view(id string, state calculator.State) sessionView {
	return sessionView{
		ID:      id,
		State:   state,
		Derived: s.engine.Derive(state),
		Path:    s.engine.Path(state),
	}
}

func (s *server) handleSessionCreate(w http.ResponseWriter, r *http.Request) {
	id := session.NewID()
	state := s.engine.Start()
	if err := s.sessions.Save(r.Context(), id, state); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, s.view(id, state))
}

func (s *server) handleSessionGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	state, err := s.sessions.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.view(id, state))
}

func (s *server) handleSessionDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleSessionAdvance(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	state, err := s.sessions.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var answer calculator.Answer
	if !decodeJSON(w, r, &answer) {
		return
	}
	s.normalizeAddress(r.Context(), state, &answer)

	next, err := s.engine.Advance(state, answer)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if s.engine.NeedsMileage(next) {
		if next, err = s.resolveMileage(r.Context(), next); err != nil {
			s.writeError(w, r, err)
			return
		}
	}
	if err := s.sessions.Save(r.Context(), id, next); err != nil {
		s.writeError(w, r, err)
		return
	}

	view := s.view(id, next)
	if calculator.IsTerminal(next.CurrentStep) {
		q, err := s.quote(r.Context(), next)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		view.Quote = &q
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *server) handleSessionBack(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	state, err := s.sessions.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	prev := s.engine.Retreat(state)
	if err := s.sessions.Save(r.Context(), id, prev); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.view(id, prev))
}

func (s *server) handleSessionQuote(w http.ResponseWriter, r *http.Request) {
	state, err := s.sessions.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	q, err := s.quote(r.Context(), state)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

// handleSessionFinalize returns the final quote and discards the session.
// Escalated sessions are handed to the dispatcher here, with the state the
// user finished with.
func (s *server) handleSessionFinalize(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	state, err := s.sessions.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	q, err := s.quote(r.Context(), state)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	view := finalView{Quote: q}
	if q.CallbackRequired {
		if view.Callback, err = s.requestCallback(r.Context(), id, state, q); err != nil {
			s.writeError(w, r, err)
			return
		}
	}

	if err := s.sessions.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// requestCallback records the escalated session and notifies on the first
// recording. A delivery failure is logged by the dispatcher and does not
// fail the request; the outbox keeps the record.
func (s *server) requestCallback(ctx context.Context, id string, state calculator.State, q calculator.Quote) (*callbackView, error) {
	inserted, err := s.dispatcher.Dispatch(ctx, notify.CallbackRequest{
		SessionID:      id,
		Reasons:        q.CallbackReasons,
		EstimatedCubes: q.EstimatedCubes,
		Contact:        state.Contact,
		State:          state,
	})
	if err != nil && !inserted {
		return nil, err
	}
	return &callbackView{Recorded: true, RequestID: s.callbackID(ctx, id)}, nil
}

func (s *server) callbackID(ctx context.Context, sessionID string) string {
	req, err := s.dispatcher.Find(ctx, sessionID)
	if err != nil {
		s.log.Warn("look up callback request", zap.String("session_id", sessionID), zap.Error(err))
		return ""
	}
	return req.ID
}

func (s *server) quote(ctx context.Context, state calculator.State) (calculator.Quote, error) {
	rates, err := s.getRateConfig(ctx)
	if err != nil {
		return calculator.Quote{}, err
	}
	return s.engine.ComputeQuote(state, calculator.QuoteInputs{Rates: rates})
}

// resolveMileage stores the driving distance between the state's addresses,
// falling back to the configured default when the lookup fails. It runs once
// per address pair; quotes read the stored value.
func (s *server) resolveMileage(ctx context.Context, state calculator.State) (calculator.State, error) {
	lookupCtx, cancel := context.WithTimeout(ctx, geoTimeout)
	defer cancel()

	miles, err := s.geo.Mileage(lookupCtx, *state.FromAddress, *state.ToAddress)
	if err == nil {
		next, werr := s.engine.WithMileage(state, miles)
		if werr == nil {
			return next, nil
		}
		err = werr
	}
	s.log.Warn("mileage lookup failed, using default",
		zap.Float64("default_mileage", s.defaultMileage),
		zap.Error(err),
	)
	return s.engine.WithMileage(state, s.defaultMileage)
}

func (s *server) handleOverrideValidate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Candidate      pricing.Resources `json:"candidate"`
		Recommendation pricing.Resources `json:"recommendation"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	if err := calculator.ValidateManualOverride(body.Candidate, body.Recommendation); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"valid": true})
}
