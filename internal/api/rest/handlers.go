package rest

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/fortuna/gridiron/internal/reconciliation"
	"github.com/fortuna/gridiron/internal/service"
	"github.com/fortuna/gridiron/internal/store"
)

// GameReader serves weekly slates.
type GameReader interface {
	Games(ctx context.Context, season, week int) ([]store.GameRecord, error)
	Game(ctx context.Context, gameID string) (*store.GameRecord, error)
}

// TeamReader serves team and league statistics.
type TeamReader interface {
	Teams() []reconciliation.Team
	TeamStats(ctx context.Context, team string, season, week int) (*store.TeamStatRecord, error)
	Roster(ctx context.Context, teamID string) (store.Roster, error)
	TeamStatistics(ctx context.Context, season int) ([]store.EntityStats, error)
	PlayerStatistics(ctx context.Context, season int) ([]store.EntityStats, error)
}

// ParlayReader suggests parlays for a week.
type ParlayReader interface {
	Suggest(ctx context.Context, season, week int) ([]store.Parlay, error)
}

// Telemetry returns counters reported under "metrics" on /health.
type Telemetry func() map[string]any

// Handler contains dependencies for HTTP handlers
type Handler struct {
	games     GameReader
	teams     TeamReader
	parlays   ParlayReader
	health    func(ctx context.Context) error
	telemetry Telemetry
	logger    *zap.Logger
	now       func() time.Time
}

// NewHandler creates a new handler. health and telemetry may be nil.
func NewHandler(games GameReader, teams TeamReader, parlays ParlayReader, health func(ctx context.Context) error, telemetry Telemetry, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		games:     games,
		teams:     teams,
		parlays:   parlays,
		health:    health,
		telemetry: telemetry,
		logger:    logger,
		now:       time.Now,
	}
}

// HealthCheck handles health check requests
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status, code := "healthy", http.StatusOK
	body := map[string]any{"service": "gridiron"}
	if h.health != nil {
		if err := h.health(r.Context()); err != nil {
			status, code = "degraded", http.StatusServiceUnavailable
			body["details"] = err.Error()
		}
	}
	if h.telemetry != nil {
		body["metrics"] = h.telemetry()
	}
	body["status"] = status
	respondJSON(w, code, body)
}

// GetGames returns the normalized slate for ?season=&week=.
func (h *Handler) GetGames(w http.ResponseWriter, r *http.Request) {
	season, err := h.season(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	week, err := intParam(r, "week", 0, true)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	games, err := h.games.Games(r.Context(), season, week)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, games)
}

// GetGame returns one game by canonical id.
func (h *Handler) GetGame(w http.ResponseWriter, r *http.Request) {
	game, err := h.games.Game(r.Context(), mux.Vars(r)["gameID"])
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, game)
}

// GetTeams lists every club.
func (h *Handler) GetTeams(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.teams.Teams())
}

// GetTeamStats returns one team's record for ?season=&week=.
func (h *Handler) GetTeamStats(w http.ResponseWriter, r *http.Request) {
	season, err := h.season(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	week, err := intParam(r, "week", 0, false)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	rec, err := h.teams.TeamStats(r.Context(), mux.Vars(r)["code"], season, week)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, rec)
}

// GetTeamRoster returns a team's roster.
func (h *Handler) GetTeamRoster(w http.ResponseWriter, r *http.Request) {
	roster, err := h.teams.Roster(r.Context(), mux.Vars(r)["teamID"])
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, roster)
}

// GetTeamStatistics returns every team's season line.
func (h *Handler) GetTeamStatistics(w http.ResponseWriter, r *http.Request) {
	season, err := h.season(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	stats, err := h.teams.TeamStatistics(r.Context(), season)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

// GetPlayerStatistics returns every player's season line.
func (h *Handler) GetPlayerStatistics(w http.ResponseWriter, r *http.Request) {
	season, err := h.season(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	stats, err := h.teams.PlayerStatistics(r.Context(), season)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

// SuggestParlays hands the week's slate to the suggester.
func (h *Handler) SuggestParlays(w http.ResponseWriter, r *http.Request) {
	season, err := h.season(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	week, err := intParam(r, "week", 0, true)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	parlays, err := h.parlays.Suggest(r.Context(), season, week)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"parlays": parlays})
}

// season reads ?season=, defaulting to the season in progress. The NFL
// season is named after the year it starts; January and February belong to
// the previous year's season.
func (h *Handler) season(r *http.Request) (int, error) {
	now := h.now()
	def := now.Year()
	if now.Month() < time.March {
		def--
	}
	return intParam(r, "season", def, false)
}

func intParam(r *http.Request, name string, def int, required bool) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		if required {
			return 0, errors.Wrapf(service.ErrInvalidInput, "%s is required", name)
		}
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.Wrapf(service.ErrInvalidInput, "%s must be an integer, got %q", name, raw)
	}
	return n, nil
}

// statusFor maps service errors onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrGameNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrSourcesUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, service.ErrBadSuggestion):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.String("request_id", RequestID(r.Context())),
			zap.Error(err))
	}
	respondError(w, status, http.StatusText(status), err)
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data any) {
	body, err := sonic.Marshal(data)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "encode response", err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// respondError writes an error response
func respondError(w http.ResponseWriter, status int, message string, err error) {
	response := map[string]any{
		"error":  message,
		"status": status,
	}
	if err != nil {
		response["details"] = err.Error()
	}
	body, _ := sonic.Marshal(response)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
