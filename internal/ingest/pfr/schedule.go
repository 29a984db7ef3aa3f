package pfr

import (
	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/fortuna/gridiron/internal/reconciliation"
	"github.com/fortuna/gridiron/internal/store"
)

// ParseSchedule reads the league schedule page (/years/{season}/games.htm).
// week 0 returns every regular-season week.
//
// Played games list the winner first; an "@" in game_location means the
// winner was the away team. Unplayed games list visitor then home.
func (p *Parser) ParseSchedule(doc *goquery.Document, season, week int) ([]store.GameRaw, error) {
	table, err := ExtractTable(doc, ScheduleTableIDs...)
	if err != nil {
		p.logger.Warn("schedule table missing", zap.Int("season", season), zap.Error(err))
		return nil, err
	}

	var games []store.GameRaw
	for _, row := range table.Rows {
		w, ok := gameRow(row, "week_num")
		if !ok || (week > 0 && w != week) {
			continue
		}
		if g, ok := p.scheduleGame(row, season, w); ok {
			games = append(games, g)
		}
	}

	p.logger.Debug("parsed schedule",
		zap.Int("season", season),
		zap.Int("week", week),
		zap.Int("games", len(games)),
	)
	return games, nil
}

func (p *Parser) scheduleGame(row Row, season, week int) (store.GameRaw, bool) {
	first, second := row.Text("winner"), row.Text("loser")
	firstPts, secondPts := row.Text("pts_win"), row.Text("pts_lose")
	firstAway := row.Text("game_location") == LocationAway

	if first == "" && second == "" {
		first, second = row.Text("visitor_team"), row.Text("home_team")
		firstPts, secondPts = row.Text("pts_visitor"), row.Text("pts_home")
		firstAway = true
	}
	if first == "" || second == "" {
		return store.GameRaw{}, false
	}

	home, away := p.reconciler.Resolve(first), p.reconciler.Resolve(second)
	homeScore, awayScore := scorePtr(firstPts), scorePtr(secondPts)
	if firstAway {
		home, away = away, home
		homeScore, awayScore = awayScore, homeScore
	}

	id, err := reconciliation.GameID(home.Code, away.Code, season, week)
	if err != nil {
		p.logger.Warn("skipping schedule row", zap.Error(err))
		return store.GameRaw{}, false
	}

	iso, kick, ok := p.kickoff(row["game_date"], row.Text("gametime"), season, zap.String("game_id", id))
	if !ok {
		return store.GameRaw{}, false
	}

	return store.GameRaw{
		GameID:   id,
		Season:   season,
		Week:     week,
		Status:   p.status(homeScore != nil && awayScore != nil, kick),
		DateTime: iso,
		Venue:    tbdVenue(),
		Home:     side(home, homeScore),
		Away:     side(away, awayScore),
		Source:   store.SourcePFR,
	}, true
}
