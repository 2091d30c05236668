package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/skyops/tafboard/internal/board"
	"github.com/skyops/tafboard/internal/routes"
	"github.com/skyops/tafboard/pkg/logger"
)

// initialDataTimeout bounds how long the first API call waits for the
// initial refresh to produce a snapshot.
const initialDataTimeout = 30 * time.Second

// BoardService is the board surface the API depends on.
type BoardService interface {
	Snapshot() *board.Snapshot
	RefreshNow()
	Regions() []string
	HasRegion(region string) bool
	IsStale() bool
	WaitReady(ctx context.Context) error
}

// Handler contains the API handlers
type Handler struct {
	boardService BoardService
	logger       *logger.Logger
}

// NewHandler creates a new API handler
func NewHandler(boardService BoardService, log *logger.Logger) *Handler {
	return &Handler{
		boardService: boardService,
		logger:       log.Named("api-handler"),
	}
}

// boardResponse wraps a snapshot with its staleness marker so the UI
// can show stale data distinctly rather than hiding it.
type boardResponse struct {
	Stale bool            `json:"stale"`
	Board *board.Snapshot `json:"board"`
}

// GetBoard returns the current board snapshot, optionally narrowed to
// one region and to airports with significant weather only.
func (h *Handler) GetBoard(w http.ResponseWriter, r *http.Request) {
	snapshot := h.currentSnapshot(w, r)
	if snapshot == nil {
		return
	}

	region := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("region")))
	if region != "" && !h.boardService.HasRegion(region) {
		http.Error(w, "Unknown region", http.StatusNotFound)
		return
	}
	significantOnly := r.URL.Query().Get("significant_only") == "true"

	writeJSON(w, h.logger, boardResponse{
		Stale: h.boardService.IsStale(),
		Board: snapshot.Filter(region, significantOnly),
	})
}

// GetRegions returns the configured region names plus the "ALL" selector.
func (h *Handler) GetRegions(w http.ResponseWriter, r *http.Request) {
	regions := append(h.boardService.Regions(), routes.RegionAll)
	writeJSON(w, h.logger, map[string]any{"regions": regions})
}

// GetAirportTAF returns the classified TAF for one airport from the
// current snapshot.
func (h *Handler) GetAirportTAF(w http.ResponseWriter, r *http.Request) {
	snapshot := h.currentSnapshot(w, r)
	if snapshot == nil {
		return
	}

	code := strings.ToUpper(chi.URLParam(r, "code"))
	weather, ok := snapshot.AirportTAF(code)
	if !ok {
		http.Error(w, "Airport not on the board", http.StatusNotFound)
		return
	}
	writeJSON(w, h.logger, weather)
}

// GetAirportNotams returns the active NOTAMs for one destination
// airport, runway notices first.
func (h *Handler) GetAirportNotams(w http.ResponseWriter, r *http.Request) {
	snapshot := h.currentSnapshot(w, r)
	if snapshot == nil {
		return
	}

	code := strings.ToUpper(chi.URLParam(r, "code"))
	notams, ok := snapshot.AirportNotams(code)
	if !ok {
		http.Error(w, "Airport is not a destination", http.StatusNotFound)
		return
	}
	writeJSON(w, h.logger, map[string]any{"airport": code, "notams": notams})
}

// TriggerRefresh starts an immediate refresh cycle (the dashboard's
// manual refresh button).
func (h *Handler) TriggerRefresh(w http.ResponseWriter, r *http.Request) {
	h.boardService.RefreshNow()
	w.WriteHeader(http.StatusAccepted)
	writeJSON(w, h.logger, map[string]any{"status": "refresh started"})
}

// GetHealth is a basic liveness probe.
func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.logger, map[string]any{"status": "ok"})
}

// currentSnapshot waits for initial data (bounded) and returns the
// active snapshot, writing the error response itself when none exists.
func (h *Handler) currentSnapshot(w http.ResponseWriter, r *http.Request) *board.Snapshot {
	ctx, cancel := context.WithTimeout(r.Context(), initialDataTimeout)
	defer cancel()

	if err := h.boardService.WaitReady(ctx); err != nil {
		h.logger.Warn("Timeout waiting for initial board snapshot", logger.Error(err))
		http.Error(w, "Board data is still being fetched, please try again in a moment", http.StatusServiceUnavailable)
		return nil
	}

	snapshot := h.boardService.Snapshot()
	if snapshot == nil {
		http.Error(w, "Board data temporarily unavailable", http.StatusServiceUnavailable)
		return nil
	}
	return snapshot
}

func writeJSON(w http.ResponseWriter, log *logger.Logger, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error("Failed to encode response", logger.Error(err))
	}
}
