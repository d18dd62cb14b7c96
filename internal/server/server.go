// Package server exposes the schedule catalog and presence control over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ConorMacBride/smart/internal/schedule"
	"github.com/ConorMacBride/smart/internal/tado"
)

// Controller is the activation surface the server exposes.
type Controller interface {
	List() []schedule.Info
	Active() (schedule.Record, bool)
	Activate(ctx context.Context, name, variantName string, overrides map[string]schedule.TimeOfDay) (schedule.Plan, error)
	Reset(ctx context.Context) (schedule.Plan, error)
	SetPresence(ctx context.Context, presence tado.Presence) error
}

type Server struct {
	controller Controller
	apiKey     string
	version    string
	logger     *slog.Logger
	router     *http.ServeMux
}

func New(controller Controller, apiKey, version string, logger *slog.Logger) *Server {
	s := Server{
		controller: controller,
		apiKey:     apiKey,
		version:    version,
		logger:     logger,
		router:     http.NewServeMux(),
	}
	s.router.HandleFunc("GET /{$}", s.getVersion)
	s.router.HandleFunc("GET /schedules", s.getSchedules)
	s.router.HandleFunc("POST /schedules/activate", s.postActivate)
	s.router.HandleFunc("GET /schedules/active", s.getActive)
	s.router.HandleFunc("POST /schedules/reset", s.postReset)
	s.router.HandleFunc("GET /tado/home", s.setPresence(tado.Home))
	s.router.HandleFunc("GET /tado/away", s.setPresence(tado.Away))
	return &s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("x-api-key") != s.apiKey {
		http.Error(w, "invalid or missing API key", http.StatusUnauthorized)
		return
	}
	s.router.ServeHTTP(w, r)
}

func (s *Server) getVersion(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, struct {
		Version string `json:"version"`
	}{Version: s.version})
}

func (s *Server) getSchedules(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, struct {
		Schedules []schedule.Info `json:"schedules"`
	}{Schedules: s.controller.List()})
}

func (s *Server) getActive(w http.ResponseWriter, _ *http.Request) {
	record, ok := s.controller.Active()
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, record)
}

type activateRequest struct {
	Name      string                        `json:"name"`
	Variant   string                        `json:"variant,omitempty"`
	Overrides map[string]schedule.TimeOfDay `json:"overrides,omitempty"`
}

func (s *Server) postActivate(w http.ResponseWriter, r *http.Request) {
	var request activateRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	if request.Name == "" {
		http.Error(w, "name is required", http.StatusUnprocessableEntity)
		return
	}

	plan, err := s.controller.Activate(r.Context(), request.Name, request.Variant, request.Overrides)
	if err != nil {
		s.logger.Error("activation failed", "schedule", request.Name, "err", err)
		http.Error(w, err.Error(), activationStatusCode(err))
		return
	}
	writeJSON(w, plan)
}

func (s *Server) postReset(w http.ResponseWriter, r *http.Request) {
	plan, err := s.controller.Reset(r.Context())
	if err != nil {
		s.logger.Error("reset failed", "err", err)
		http.Error(w, err.Error(), activationStatusCode(err))
		return
	}
	writeJSON(w, plan)
}

func (s *Server) setPresence(presence tado.Presence) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.controller.SetPresence(r.Context(), presence); err != nil {
			s.logger.Error("failed to set presence", "presence", presence, "err", err)
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func activationStatusCode(err error) int {
	switch {
	case errors.Is(err, schedule.ErrScheduleNotFound), errors.Is(err, schedule.ErrVariantNotFound):
		return http.StatusNotFound
	case errors.Is(err, schedule.ErrUnknownVariable), errors.Is(err, schedule.ErrUnboundVariable), errors.Is(err, schedule.ErrMalformedExpression):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadGateway
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
