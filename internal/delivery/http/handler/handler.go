package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/user/counterteams-service/internal/delivery/http/response"
	"github.com/user/counterteams-service/internal/repository"
	"github.com/user/counterteams-service/internal/usecase"
)

const imageCacheControl = "public, max-age=31536000"

type Handler struct {
	teams  usecase.TeamManager
	checks map[string]repository.Pinger
}

// NewHandler creates a Handler. checks are pinged by the health endpoint,
// keyed by backend name.
func NewHandler(teams usecase.TeamManager, checks map[string]repository.Pinger) *Handler {
	return &Handler{
		teams:  teams,
		checks: checks,
	}
}

// HandleTeam serves the stored entry of one boss.
func (h *Handler) HandleTeam(bossID string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.writeEntry(w, r, bossID)
	}
}

func (h *Handler) HandleTeamByParam(w http.ResponseWriter, r *http.Request) {
	h.writeEntry(w, r, chi.URLParam(r, "boss"))
}

func (h *Handler) writeEntry(w http.ResponseWriter, r *http.Request, bossID string) {
	entry, err := h.teams.GetEntry(r.Context(), bossID)
	if err != nil {
		if errors.Is(err, usecase.ErrUnknownBoss) {
			h.writeJSONError(w, "Unknown boss", http.StatusNotFound)
			return
		}
		slog.Error("Failed to get entry", "boss", bossID, "error", err)
		h.writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, entry)
}

func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.teams.GetStatus(r.Context()))
}

// HandleRefresh runs a refresh synchronously. ?force=true re-extracts every
// boss regardless of staleness.
func (h *Handler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	force := false
	if raw := r.URL.Query().Get("force"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			h.writeJSONError(w, "Invalid force parameter", http.StatusBadRequest)
			return
		}
		force = parsed
	}

	summary, err := h.teams.RefreshNow(r.Context(), force)
	switch {
	case errors.Is(err, usecase.ErrRefreshInProgress):
		h.writeJSONError(w, err.Error(), http.StatusConflict)
	case err != nil:
		slog.Error("Manual refresh failed to persist", "error", err)
		h.writeJSON(w, http.StatusInternalServerError, response.RefreshResponse{
			Message: "Refresh ran but data could not be saved",
			Summary: summary,
		})
	case len(summary.Failed) > 0:
		h.writeJSON(w, http.StatusOK, response.RefreshResponse{
			Message: "Data partially refreshed",
			Summary: summary,
		})
	default:
		h.writeJSON(w, http.StatusOK, response.RefreshResponse{
			Message: "Data refreshed successfully",
			Summary: summary,
		})
	}
}

func (h *Handler) HandleImage(w http.ResponseWriter, r *http.Request) {
	key, err := url.PathUnescape(chi.URLParam(r, "key"))
	if err != nil {
		h.writeJSONError(w, "Invalid image key", http.StatusBadRequest)
		return
	}

	loc, err := h.teams.ResolveImage(r.Context(), key)
	switch {
	case errors.Is(err, usecase.ErrInvalidImageKey):
		h.writeJSONError(w, "Invalid image key", http.StatusBadRequest)
		return
	case errors.Is(err, repository.ErrImageNotFound):
		h.writeJSONError(w, "Image not found", http.StatusNotFound)
		return
	case err != nil:
		slog.Error("Failed to resolve image", "key", key, "error", err)
		h.writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	if loc.RedirectURL != "" {
		http.Redirect(w, r, loc.RedirectURL, http.StatusFound)
		return
	}
	if loc.ContentType != "" {
		w.Header().Set("Content-Type", loc.ContentType)
	}
	w.Header().Set("Cache-Control", imageCacheControl)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(loc.Data); err != nil {
		slog.Error("Failed to write image response", "key", key, "error", err)
	}
}

func (h *Handler) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := response.HealthResponse{Status: "ok", Backends: make(map[string]string, len(h.checks))}
	for name, pinger := range h.checks {
		if err := pinger.Ping(ctx); err != nil {
			slog.Error("Health check failed", "backend", name, "error", err)
			resp.Backends[name] = "unhealthy"
			resp.Status = "degraded"
			continue
		}
		resp.Backends[name] = "healthy"
	}

	if resp.Status != "ok" {
		h.writeJSON(w, http.StatusServiceUnavailable, resp)
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Failed to write JSON response", "error", err)
	}
}

func (h *Handler) writeJSONError(w http.ResponseWriter, message string, status int) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
