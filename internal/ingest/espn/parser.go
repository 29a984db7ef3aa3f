package espn

import (
	"bytes"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"

	"github.com/fortuna/gridiron/internal/logging"
	"github.com/fortuna/gridiron/internal/reconciliation"
	"github.com/fortuna/gridiron/internal/stats"
	"github.com/fortuna/gridiron/internal/store"
)

// DateTimeLayout matches the kickoff format used for every game record.
const DateTimeLayout = "2006-01-02T15:04:05.000Z"

// Leader categories read from a competition.
const (
	LeaderPassing   = "passingYards"
	LeaderRushing   = "rushingYards"
	LeaderReceiving = "receivingYards"
)

var eventDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04Z",
}

// Parser decodes ESPN payloads into store types.
type Parser struct {
	reconciler *reconciliation.Reconciler
	logger     *zap.Logger
}

// NewParser creates a parser. A nil reconciler gets a fresh one.
func NewParser(reconciler *reconciliation.Reconciler, logger *zap.Logger) *Parser {
	logger = logging.OrNop(logger)
	if reconciler == nil {
		reconciler = reconciliation.NewReconciler(logger)
	}
	return &Parser{reconciler: reconciler, logger: logger}
}

// decode rejects HTML error pages before handing the body to sonic.
func decode(body []byte, v any) error {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return ErrMalformed
	}
	if trimmed[0] == '<' {
		return ErrMalformed
	}
	return sonic.Unmarshal(trimmed, v)
}

// ParseScoreboard turns a scoreboard payload into schedule rows for the
// given season and week. Events whose teams or week cannot form a game id
// are skipped with a warning.
func (p *Parser) ParseScoreboard(body []byte, season, week int) Result[[]store.GameRaw] {
	var board Scoreboard
	if err := decode(body, &board); err != nil {
		return malformed[[]store.GameRaw](err, "scoreboard %d week %d", season, week)
	}
	if len(board.Events) == 0 {
		return notFound[[]store.GameRaw]("no events for %d week %d", season, week)
	}

	games := make([]store.GameRaw, 0, len(board.Events))
	for _, ev := range board.Events {
		g, keep := p.event(ev, season, week)
		if !keep {
			continue
		}
		games = append(games, g)
	}
	if len(games) == 0 {
		return notFound[[]store.GameRaw]("no usable events for %d week %d", season, week)
	}
	return ok(games)
}

func (p *Parser) event(ev Event, season, week int) (store.GameRaw, bool) {
	if len(ev.Competitions) == 0 {
		p.logger.Warn("event without competitions", zap.String("event_id", ev.ID))
		return store.GameRaw{}, false
	}
	comp := ev.Competitions[0]

	var home, away *Competitor
	for i := range comp.Competitors {
		switch strings.ToLower(comp.Competitors[i].HomeAway) {
		case "home":
			home = &comp.Competitors[i]
		case "away":
			away = &comp.Competitors[i]
		}
	}
	if home == nil || away == nil {
		p.logger.Warn("event missing a home or away competitor", zap.String("event_id", ev.ID))
		return store.GameRaw{}, false
	}

	if ev.Season.Year > 0 {
		season = ev.Season.Year
	}
	if ev.Week.Number > 0 {
		week = ev.Week.Number
	}

	homeRef := p.team(home.Team)
	awayRef := p.team(away.Team)
	id, err := reconciliation.GameID(homeRef.Code, awayRef.Code, season, week)
	if err != nil {
		p.logger.Warn("skipping event", zap.String("event_id", ev.ID), zap.Error(err))
		return store.GameRaw{}, false
	}

	status := gameStatus(ev.Status)
	g := store.GameRaw{
		GameID:   id,
		Season:   season,
		Week:     week,
		Status:   status,
		DateTime: p.dateTime(ev),
		Venue:    venue(comp.Venue),
		Home:     side(homeRef, *home, status),
		Away:     side(awayRef, *away, status),
		Source:   store.SourceESPN,
	}

	codes := map[string]string{
		home.Team.ID: homeRef.Code,
		away.Team.ID: awayRef.Code,
	}
	if top := leaders(comp.Leaders, codes); !top.Empty() {
		g.Leaders = top
	}
	return g, true
}

// team resolves by abbreviation first, then by display name.
func (p *Parser) team(t Team) reconciliation.TeamRef {
	if known, found := reconciliation.Lookup(t.Abbreviation); found {
		return reconciliation.TeamRef{
			Code:     known.Code,
			Name:     known.Name,
			Abbrev:   known.ESPNAbbr,
			PFRPath:  known.PFRPath,
			Resolved: true,
		}
	}
	name := t.DisplayName
	if name == "" {
		name = t.Abbreviation
	}
	return p.reconciler.Resolve(name)
}

func (p *Parser) dateTime(ev Event) string {
	raw := ev.Date
	if raw == "" && len(ev.Competitions) > 0 {
		raw = ev.Competitions[0].Date
	}
	for _, layout := range eventDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC().Format(DateTimeLayout)
		}
	}
	if raw != "" {
		p.logger.Warn("unparseable event date", zap.String("event_id", ev.ID), zap.String("date", raw))
	}
	return ""
}

func gameStatus(s Status) store.GameStatus {
	status := stats.ParseStatus(s.Type.Name + " " + s.Type.State)
	if s.Type.Completed && status != store.StatusPostponed {
		return store.StatusFinal
	}
	return status
}

func venue(v Venue) store.Venue {
	return store.Venue{
		Name:  orTBD(v.FullName),
		City:  orTBD(v.Address.City),
		State: orTBD(v.Address.State),
	}
}

func orTBD(s string) string {
	if strings.TrimSpace(s) == "" {
		return store.VenueTBD
	}
	return s
}

func side(ref reconciliation.TeamRef, c Competitor, status store.GameStatus) store.RawSide {
	s := store.RawSide{
		Code:       ref.Code,
		Name:       ref.Name,
		Abbrev:     ref.Abbrev,
		ExternalID: c.Team.ID,
	}
	if !ref.Resolved {
		s.Name = c.Team.DisplayName
		s.Abbrev = c.Team.Abbreviation
	}
	for _, r := range c.Records {
		kind := strings.ToLower(r.Type)
		if kind == "" {
			kind = strings.ToLower(r.Name)
		}
		switch kind {
		case "total", "overall", "ytd":
			s.Record = r.Summary
		case "home":
			s.HomeRecord = r.Summary
		case "road", "away":
			s.RoadRecord = r.Summary
		}
	}
	if status != store.StatusScheduled && status != store.StatusPostponed {
		if n, err := strconv.Atoi(strings.TrimSpace(c.Score)); err == nil {
			s.Score = &n
		}
	}
	return s
}

func leaders(categories []LeaderCategory, codes map[string]string) *store.Leaders {
	out := &store.Leaders{}
	for _, cat := range categories {
		if len(cat.Leaders) == 0 {
			continue
		}
		top := cat.Leaders[0]
		l := &store.Leader{
			Name:         top.Athlete.Name(),
			Team:         codes[top.Team.ID],
			Value:        top.Value,
			DisplayValue: top.DisplayValue,
		}
		switch cat.Name {
		case LeaderPassing:
			out.Passing = l
		case LeaderRushing:
			out.Rushing = l
		case LeaderReceiving:
			out.Receiving = l
		}
	}
	return out
}

// ParseRoster flattens the positional groups of a roster payload.
func (p *Parser) ParseRoster(body []byte, teamID string) Result[store.Roster] {
	var resp RosterResponse
	if err := decode(body, &resp); err != nil {
		return malformed[store.Roster](err, "roster %s", teamID)
	}

	roster := store.Roster{
		TeamID:  teamID,
		Name:    resp.Team.DisplayName,
		Players: []store.RosterPlayer{},
	}
	if resp.Team.Abbreviation != "" {
		roster.TeamID = p.team(resp.Team).Code
	}
	for _, group := range resp.Athletes {
		for _, a := range group.Items {
			roster.Players = append(roster.Players, store.RosterPlayer{
				ID:       a.ID,
				Name:     a.Name(),
				Jersey:   a.Jersey,
				Position: a.Position.Abbreviation,
				Group:    group.Position,
				Age:      a.Age,
				Height:   a.DisplayHeight,
				Weight:   a.DisplayWeight,
				Status:   a.Status.Name,
			})
		}
	}
	if len(roster.Players) == 0 {
		return notFound[store.Roster]("empty roster for %s", teamID)
	}
	return ok(roster)
}

// ParseTeamStatistics reads league-wide team stat lines.
func (p *Parser) ParseTeamStatistics(body []byte) Result[[]store.EntityStats] {
	var resp StatisticsResponse
	if err := decode(body, &resp); err != nil {
		return malformed[[]store.EntityStats](err, "team statistics")
	}
	out := make([]store.EntityStats, 0, len(resp.Teams))
	for _, line := range resp.Teams {
		if line.Team == nil {
			continue
		}
		code := p.team(*line.Team).Code
		out = append(out, store.EntityStats{
			ID:     line.Team.ID,
			Name:   line.Team.DisplayName,
			TeamID: code,
			Stats:  statMap(line.Stats),
		})
	}
	if len(out) == 0 {
		return notFound[[]store.EntityStats]("no team statistics")
	}
	return ok(out)
}

// ParsePlayerStatistics reads league-wide player stat lines.
func (p *Parser) ParsePlayerStatistics(body []byte) Result[[]store.EntityStats] {
	var resp StatisticsResponse
	if err := decode(body, &resp); err != nil {
		return malformed[[]store.EntityStats](err, "player statistics")
	}
	out := make([]store.EntityStats, 0, len(resp.Athletes))
	for _, line := range resp.Athletes {
		if line.Athlete == nil {
			continue
		}
		a := line.Athlete
		var teamCode string
		if a.Team != nil {
			teamCode = p.team(*a.Team).Code
		}
		out = append(out, store.EntityStats{
			ID:       a.ID,
			Name:     a.Name(),
			TeamID:   teamCode,
			Position: a.Position.Abbreviation,
			Stats:    statMap(line.Stats),
		})
	}
	if len(out) == 0 {
		return notFound[[]store.EntityStats]("no player statistics")
	}
	return ok(out)
}

func statMap(lines []NamedStat) map[string]float64 {
	m := make(map[string]float64, len(lines))
	for _, s := range lines {
		if s.Name == "" {
			continue
		}
		m[s.Name] = s.Value
	}
	return m
}
