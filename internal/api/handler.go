// Package api provides HTTP handlers for the CrushCourt API.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ashureev/crushcourt/internal/domain"
	"github.com/ashureev/crushcourt/internal/exchange"
	"github.com/ashureev/crushcourt/internal/health"
	"github.com/ashureev/crushcourt/internal/identity"
	"github.com/ashureev/crushcourt/internal/matches"
	"github.com/ashureev/crushcourt/internal/points"
	"github.com/ashureev/crushcourt/internal/suggest"
)

const maxBodyBytes = 1 << 20

// Deps are the services the handlers call.
type Deps struct {
	Exchange *exchange.Service
	Points   *points.Service
	Health   *health.Service
	Matches  *matches.Service
	Suggest  *suggest.Client
	Sessions *identity.Sessions
	Pair     domain.Pair
}

// Handler serves the JSON API and the court pages.
type Handler struct {
	Deps
	log *slog.Logger
}

// NewHandler creates a new Handler.
func NewHandler(logger *slog.Logger, deps Deps) *Handler {
	return &Handler{Deps: deps, log: logger.With("component", "api")}
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// fail maps a service error to a status code and writes it.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		JSON(w, http.StatusBadRequest, map[string]any{"error": "validation failed", "fields": ve.Errors})
	case errors.Is(err, domain.ErrNotFound):
		Error(w, http.StatusNotFound, "not found")
	case errors.Is(err, domain.ErrAlreadyResponded):
		Error(w, http.StatusConflict, "already responded")
	case errors.Is(err, domain.ErrConflict):
		Error(w, http.StatusConflict, "conflict")
	case errors.Is(err, domain.ErrUnauthorized):
		Error(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, suggest.ErrNotConfigured):
		Error(w, http.StatusServiceUnavailable, "ai suggestions are not configured")
	default:
		h.log.ErrorContext(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		Error(w, http.StatusInternalServerError, "internal error")
	}
}

// decode reads a JSON body into v.
func decode(w http.ResponseWriter, r *http.Request, v any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return domain.NewValidationError("body", "malformed JSON: "+err.Error())
	}
	return nil
}

// me returns the signed-in participant. Routes that call it sit behind
// identity.RequireParticipant.
func me(r *http.Request) domain.Participant {
	p, _ := identity.ParticipantFromContext(r.Context())
	return p
}

func idParam(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.NewValidationError("id", fmt.Sprintf("invalid id %q", raw))
	}
	return id, nil
}

func intQuery(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, domain.NewValidationError(name, "must be a non-negative integer")
	}
	return n, nil
}

func (h *Handler) participantQuery(r *http.Request, name string, fallback domain.Participant) (domain.Participant, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	p := domain.Participant(raw)
	if !h.Pair.Contains(p) {
		return "", domain.NewValidationError(name, fmt.Sprintf("unknown participant %q", raw))
	}
	return p, nil
}

func (h *Handler) partner(r *http.Request) domain.Participant {
	other, _ := h.Pair.Other(me(r))
	return other
}
