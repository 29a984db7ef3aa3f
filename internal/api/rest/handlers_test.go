package rest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fortuna/gridiron/internal/reconciliation"
	"github.com/fortuna/gridiron/internal/service"
	"github.com/fortuna/gridiron/internal/store"
)

type fakeGames struct {
	err     error
	gameErr error
	season  int
	week    int
}

func (f *fakeGames) Games(_ context.Context, season, week int) ([]store.GameRecord, error) {
	f.season, f.week = season, week
	if f.err != nil {
		return nil, f.err
	}
	return []store.GameRecord{{GameID: "kan-lac-2025-5", Season: season, Week: week, Status: store.StatusFinal}}, nil
}

func (f *fakeGames) Game(_ context.Context, id string) (*store.GameRecord, error) {
	if f.gameErr != nil {
		return nil, f.gameErr
	}
	return &store.GameRecord{GameID: id}, nil
}

type fakeTeams struct {
	week int
}

func (f *fakeTeams) Teams() []reconciliation.Team { return reconciliation.Teams }

func (f *fakeTeams) TeamStats(_ context.Context, team string, season, week int) (*store.TeamStatRecord, error) {
	f.week = week
	return &store.TeamStatRecord{TeamID: team, Season: season, Week: week}, nil
}

func (f *fakeTeams) Roster(_ context.Context, teamID string) (store.Roster, error) {
	return store.Roster{TeamID: teamID, Players: []store.RosterPlayer{}}, nil
}

func (f *fakeTeams) TeamStatistics(context.Context, int) ([]store.EntityStats, error) {
	return nil, errors.Wrap(service.ErrSourcesUnavailable, "espn down")
}

func (f *fakeTeams) PlayerStatistics(context.Context, int) ([]store.EntityStats, error) {
	return []store.EntityStats{{ID: "1", Name: "Patrick Mahomes"}}, nil
}

type fakeParlays struct {
	err error
}

func (f *fakeParlays) Suggest(context.Context, int, int) ([]store.Parlay, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []store.Parlay{{ID: "p1"}}, nil
}

func newTestRouter(games *fakeGames, parlays *fakeParlays, health func(context.Context) error) http.Handler {
	return newTestRouterWithTelemetry(games, parlays, health, nil)
}

func newTestRouterWithTelemetry(games *fakeGames, parlays *fakeParlays, health func(context.Context) error, telemetry Telemetry) http.Handler {
	h := NewHandler(games, &fakeTeams{}, parlays, health, telemetry, nil)
	h.now = func() time.Time { return time.Date(2026, time.January, 10, 0, 0, 0, 0, time.UTC) }
	return NewRouter(h, Options{CORSAllowOrigins: []string{"*"}})
}

func do(t *testing.T, router http.Handler, method, target string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var body map[string]any
	if strings.HasPrefix(strings.TrimSpace(rec.Body.String()), "{") {
		require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec, body
}

func TestRouter_Statuses(t *testing.T) {
	tests := []struct {
		name    string
		method  string
		target  string
		games   *fakeGames
		parlays *fakeParlays
		want    int
	}{
		{"games ok", http.MethodGet, "/api/v1/games?season=2025&week=5", &fakeGames{}, &fakeParlays{}, http.StatusOK},
		{"week missing", http.MethodGet, "/api/v1/games?season=2025", &fakeGames{}, &fakeParlays{}, http.StatusBadRequest},
		{"week not an integer", http.MethodGet, "/api/v1/games?week=five", &fakeGames{}, &fakeParlays{}, http.StatusBadRequest},
		{"service rejects input", http.MethodGet, "/api/v1/games?week=30", &fakeGames{err: errors.Wrap(service.ErrInvalidInput, "week")}, &fakeParlays{}, http.StatusBadRequest},
		{"sources down", http.MethodGet, "/api/v1/games?week=5", &fakeGames{err: errors.Wrap(service.ErrSourcesUnavailable, "down")}, &fakeParlays{}, http.StatusServiceUnavailable},
		{"unexpected error", http.MethodGet, "/api/v1/games?week=5", &fakeGames{err: errors.New("boom")}, &fakeParlays{}, http.StatusInternalServerError},
		{"game not found", http.MethodGet, "/api/v1/games/kan-lac-2025-5", &fakeGames{gameErr: errors.Wrap(service.ErrGameNotFound, "kan-lac-2025-5")}, &fakeParlays{}, http.StatusNotFound},
		{"team stats", http.MethodGet, "/api/v1/teams/kan/stats?season=2025&week=5", &fakeGames{}, &fakeParlays{}, http.StatusOK},
		{"roster", http.MethodGet, "/api/v1/teams/kc/roster", &fakeGames{}, &fakeParlays{}, http.StatusOK},
		{"team statistics down", http.MethodGet, "/api/v1/stats/teams", &fakeGames{}, &fakeParlays{}, http.StatusServiceUnavailable},
		{"player statistics", http.MethodGet, "/api/v1/stats/players?season=2025", &fakeGames{}, &fakeParlays{}, http.StatusOK},
		{"parlays", http.MethodPost, "/api/v1/parlays?week=5", &fakeGames{}, &fakeParlays{}, http.StatusOK},
		{"parlays bad suggestion", http.MethodPost, "/api/v1/parlays?week=5", &fakeGames{}, &fakeParlays{err: errors.Wrap(service.ErrBadSuggestion, "none valid")}, http.StatusBadGateway},
		{"parlays wrong method", http.MethodGet, "/api/v1/parlays?week=5", &fakeGames{}, &fakeParlays{}, http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, body := do(t, newTestRouter(tt.games, tt.parlays, nil), tt.method, tt.target)
			assert.Equal(t, tt.want, rec.Code)
			if tt.want >= http.StatusBadRequest && tt.want != http.StatusMethodNotAllowed {
				assert.EqualValues(t, tt.want, body["status"])
				assert.NotEmpty(t, body["error"])
			}
		})
	}
}

func TestRouter_DefaultSeason(t *testing.T) {
	games := &fakeGames{}
	rec, _ := do(t, newTestRouter(games, &fakeParlays{}, nil), http.MethodGet, "/api/v1/games?week=18")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2025, games.season)
	assert.Equal(t, 18, games.week)
}

func TestRouter_GamesBody(t *testing.T) {
	router := newTestRouter(&fakeGames{}, &fakeParlays{}, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/games?season=2025&week=5", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))

	var games []store.GameRecord
	require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &games))
	require.Len(t, games, 1)
	assert.Equal(t, "kan-lac-2025-5", games[0].GameID)
}

func TestRouter_RequestIDPassthrough(t *testing.T) {
	router := newTestRouter(&fakeGames{}, &fakeParlays{}, nil)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
}

func TestHealthCheck(t *testing.T) {
	rec, body := do(t, newTestRouter(&fakeGames{}, &fakeParlays{}, nil), http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", body["status"])

	down := func(context.Context) error { return errors.New("redis unreachable") }
	rec, body = do(t, newTestRouter(&fakeGames{}, &fakeParlays{}, down), http.MethodGet, "/health")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "degraded", body["status"])
	assert.Equal(t, "redis unreachable", body["details"])
	assert.NotContains(t, body, "metrics")
}

func TestHealthCheck_ReportsTelemetry(t *testing.T) {
	telemetry := func() map[string]any {
		return map[string]any{"unresolvedTeams": int64(2), "websocketClients": 1}
	}
	rec, body := do(t, newTestRouterWithTelemetry(&fakeGames{}, &fakeParlays{}, nil, telemetry), http.MethodGet, "/health")

	require.Equal(t, http.StatusOK, rec.Code)
	metrics, ok := body["metrics"].(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 2, metrics["unresolvedTeams"])
	assert.EqualValues(t, 1, metrics["websocketClients"])
}

func TestGetTeams_CamelCaseKeys(t *testing.T) {
	router := newTestRouter(&fakeGames{}, &fakeParlays{}, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/teams", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var teams []map[string]any
	require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &teams))
	require.Len(t, teams, 32)

	var chargers map[string]any
	for _, team := range teams {
		if team["code"] == "lac" {
			chargers = team
		}
	}
	require.NotNil(t, chargers)
	assert.Equal(t, "Los Angeles Chargers", chargers["name"])
	assert.Equal(t, "LAC", chargers["espnAbbr"])
	assert.Equal(t, "sdg", chargers["pfrPath"])
	assert.NotContains(t, chargers, "Code")
	assert.NotContains(t, chargers, "PFRPath")
}

func TestRateLimitMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })
	limited := RateLimitMiddleware(1)(next)

	first := httptest.NewRecorder()
	limited.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/api/v1/teams", nil))
	assert.Equal(t, http.StatusNoContent, first.Code)

	second := httptest.NewRecorder()
	limited.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/api/v1/teams", nil))
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "1", second.Header().Get("Retry-After"))

	other := httptest.NewRequest(http.MethodGet, "/api/v1/teams", nil)
	other.RemoteAddr = "10.0.0.9:5555"
	third := httptest.NewRecorder()
	limited.ServeHTTP(third, other)
	assert.Equal(t, http.StatusNoContent, third.Code)
}

func TestRecoveryMiddleware(t *testing.T) {
	panicky := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("kaboom") })
	rec := httptest.NewRecorder()
	RecoveryMiddleware(zap.NewNop())(panicky).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
