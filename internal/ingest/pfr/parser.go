// Package pfr scrapes schedule and team statistics pages from
// pro-football-reference.com.
package pfr

import (
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/fortuna/gridiron/internal/logging"
	"github.com/fortuna/gridiron/internal/reconciliation"
	"github.com/fortuna/gridiron/internal/store"
)

// Table ids in priority order.
var (
	ScheduleTableIDs    = []string{"games", "schedule"}
	TeamGamesTableIDs   = []string{"games", "team_schedule"}
	TeamStatsTableIDs   = []string{"team_stats"}
	ConversionsTableIDs = []string{"team_conversions"}
)

// MinCells is the fewest cells a schedule row needs to be considered a game.
const MinCells = 6

// LocationAway is the marker for the away side.
const LocationAway = "@"

// Parser turns extracted tables into schedule rows and team records.
type Parser struct {
	reconciler *reconciliation.Reconciler
	logger     *zap.Logger
	now        func() time.Time
}

// NewParser creates a parser. A nil reconciler gets a fresh one.
func NewParser(reconciler *reconciliation.Reconciler, logger *zap.Logger) *Parser {
	logger = logging.OrNop(logger)
	if reconciler == nil {
		reconciler = reconciliation.NewReconciler(logger)
	}
	return &Parser{
		reconciler: reconciler,
		logger:     logger,
		now:        time.Now,
	}
}

// gameRow reports the week of a row that looks like a regular-season game.
func gameRow(row Row, weekKey string) (int, bool) {
	if len(row) < MinCells {
		return 0, false
	}
	week, err := strconv.Atoi(row.Text(weekKey))
	if err != nil || reconciliation.ValidateWeek(week) != nil {
		return 0, false
	}
	return week, true
}

// kickoff builds the ISO kickoff and logs a malformed clock.
func (p *Parser) kickoff(dateCell Cell, clock string, season int, fields ...zap.Field) (string, time.Time, bool) {
	day, err := ParseGameDate(dateCell, season)
	if err != nil {
		p.logger.Warn("skipping row with bad date", append(fields, zap.Error(err))...)
		return "", time.Time{}, false
	}
	iso, clockOK, err := KickoffISO(day.Format("2006-01-02"), clock)
	if err != nil {
		p.logger.Warn("skipping row with bad date", append(fields, zap.Error(err))...)
		return "", time.Time{}, false
	}
	if !clockOK {
		p.logger.Warn("malformed kickoff clock, using default",
			append(fields, zap.String("clock", clock), zap.String("default", DefaultKickoff))...)
	}
	t, _ := parseKickoff(iso)
	return iso, t, true
}

// status prefers scores over the clock: a scored game is final.
func (p *Parser) status(scored bool, kickoff time.Time) store.GameStatus {
	if scored {
		return store.StatusFinal
	}
	return InferStatus(kickoff, easternWallClock(p.now()))
}

var eastern = loadEastern()

func loadEastern() *time.Location {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		return time.UTC
	}
	return loc
}

// easternWallClock re-labels t's Eastern wall-clock reading as UTC, the frame
// kickoff times are written in.
func easternWallClock(t time.Time) time.Time {
	e := t.In(eastern)
	return time.Date(e.Year(), e.Month(), e.Day(), e.Hour(), e.Minute(), e.Second(), 0, time.UTC)
}

func scorePtr(s string) *int {
	if s == "" {
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &v
}

func side(ref reconciliation.TeamRef, score *int) store.RawSide {
	return store.RawSide{
		Code:   ref.Code,
		Name:   ref.Name,
		Abbrev: ref.Abbrev,
		Score:  score,
	}
}

func tbdVenue() store.Venue {
	return store.Venue{Name: store.VenueTBD, City: store.VenueTBD, State: store.VenueTBD}
}
