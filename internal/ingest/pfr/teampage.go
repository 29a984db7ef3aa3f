package pfr

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/fortuna/gridiron/internal/assemble"
	"github.com/fortuna/gridiron/internal/reconciliation"
	"github.com/fortuna/gridiron/internal/stats"
	"github.com/fortuna/gridiron/internal/store"
)

// Row labels in the team stats and conversions tables.
const (
	labelTeam        = "team stats"
	labelOpponent    = "opp stats"
	labelRankOffense = "lg rank offense"
	labelRankDefense = "lg rank defense"
)

// statColumn binds a ranked stat to its data-stat column.
type statColumn struct {
	key     string
	column  string
	percent bool
	table   string
}

var rankedColumns = []statColumn{
	{key: store.StatTotalYards, column: "total_yards"},
	{key: store.StatPassingYards, column: "pass_yds"},
	{key: store.StatRushingYards, column: "rush_yds"},
	{key: store.StatPoints, column: "points"},
	{key: store.StatTurnovers, column: "turnovers"},
	{key: store.StatSacks, column: "pass_sacked"},
	{key: store.StatThirdDownPct, column: "third_down_pct", percent: true, table: "conversions"},
	{key: store.StatRedZonePct, column: "red_zone_pct", percent: true, table: "conversions"},
}

// TeamPage is what one team season page yields.
type TeamPage struct {
	Stats *store.TeamStatRecord
	// Games are the team's schedule rows, every week.
	Games []store.GameRaw
}

// labelled is the four summary rows of a stats table.
type labelled struct {
	team, opp, rankOff, rankDef Row
}

func labelRows(t *RawTable) labelled {
	var out labelled
	if t == nil {
		return out
	}
	for _, row := range t.Rows {
		label := strings.ToLower(strings.ReplaceAll(row.Text("player"), ".", ""))
		switch {
		case strings.HasPrefix(label, labelTeam):
			out.team = row
		case strings.HasPrefix(label, labelOpponent):
			out.opp = row
		case strings.HasPrefix(label, labelRankOffense):
			out.rankOff = row
		case strings.HasPrefix(label, labelRankDefense):
			out.rankDef = row
		}
	}
	return out
}

// ParseTeamPage reads /teams/{path}/{season}.htm for the team with canonical
// code teamCode. The page only carries season-to-date totals, so per-game
// values and GamesPlayed cover every game played so far; only the W-L
// records stop at week (0 = all). A missing team stats table is an error; a
// missing conversions or games table only degrades the record.
func (p *Parser) ParseTeamPage(doc *goquery.Document, teamCode string, season, week int) (*TeamPage, error) {
	team := p.reconciler.Resolve(teamCode)
	log := p.logger.With(zap.String("team", team.Code), zap.Int("season", season))

	statsTable, err := ExtractTable(doc, TeamStatsTableIDs...)
	if err != nil {
		log.Warn("team stats table missing", zap.Error(err))
		return nil, err
	}
	summary := labelRows(statsTable)
	if summary.team == nil {
		return nil, errors.Wrapf(ErrTableNotFound, "team stats row for %s", team.Code)
	}

	var conv labelled
	if convTable, err := ExtractTable(doc, ConversionsTableIDs...); err != nil {
		log.Warn("conversions table missing", zap.Error(err))
	} else {
		conv = labelRows(convTable)
	}

	page := &TeamPage{}
	var overall, home, road, toDate stats.RecordTally
	if gamesTable, err := ExtractTable(doc, TeamGamesTableIDs...); err != nil {
		log.Warn("games table missing", zap.Error(err))
	} else {
		for _, row := range gamesTable.Rows {
			w, ok := gameRow(row, "week_num")
			if !ok {
				continue
			}
			opp := row.Text("opp")
			if opp == "" || strings.EqualFold(opp, "bye week") {
				continue
			}
			away := row.Text("game_location") == LocationAway

			outcome := row.Text("game_outcome")
			toDate.Add(outcome)
			if week == 0 || w <= week {
				if overall.Add(outcome) {
					if away {
						road.Add(outcome)
					} else {
						home.Add(outcome)
					}
				}
			}

			if g, ok := p.teamGame(row, team, opp, away, season, w); ok {
				page.Games = append(page.Games, g)
			}
		}
	}

	// The divisor must match the totals: prefer the stats table's own games
	// column, then every played row regardless of week.
	gamesPlayed := stats.ParseStatInt(summary.team, "g")
	if gamesPlayed == 0 {
		gamesPlayed = toDate.Games()
	}

	rec := &store.TeamStatRecord{
		TeamID:      team.Code,
		TeamName:    team.Name,
		Season:      season,
		Week:        week,
		GamesPlayed: gamesPlayed,
		Record: store.Record{
			Overall: overall.String(),
			Home:    home.String(),
			Road:    road.String(),
		},
		OffenseRankings: make(map[string]store.RankedStat, len(rankedColumns)),
		DefenseRankings: make(map[string]store.RankedStat, len(rankedColumns)),
		Passing: assemble.Passing(
			stats.ParseStatInt(summary.team, "pass_cmp"),
			stats.ParseStatInt(summary.team, "pass_att"),
			stats.ParseStatInt(summary.team, "pass_yds"),
			stats.ParseStatInt(summary.team, "pass_td"),
			stats.ParseStatInt(summary.team, "pass_int"),
		),
	}

	for _, col := range rankedColumns {
		src := summary
		if col.table == "conversions" {
			src = conv
		}
		rec.OffenseRankings[col.key] = rankedStat(src.team, src.rankOff, col, gamesPlayed)
		rec.DefenseRankings[col.key] = rankedStat(src.opp, src.rankDef, col, gamesPlayed)
	}
	stats.ApplyComposites(rec)

	page.Stats = rec
	return page, nil
}

// rankedStat reads one stat's rank and per-game value. Percentages are
// already rates and are not divided.
func rankedStat(values, ranks Row, col statColumn, gamesPlayed int) store.RankedStat {
	v := stats.ParseStat(values, col.column)
	perGame := stats.Round1(v)
	if !col.percent {
		perGame = stats.Round2(stats.SafeDiv(v, float64(gamesPlayed)))
	}
	return store.RankedStat{
		Rank:         stats.NormalizeRank(stats.ParseStatInt(ranks, col.column)),
		ValuePerGame: perGame,
	}
}

// teamGame turns a row of the team's own schedule into a schedule row. The
// "@" marker puts the page team on the road.
func (p *Parser) teamGame(row Row, team reconciliation.TeamRef, oppName string, away bool, season, week int) (store.GameRaw, bool) {
	opp := p.reconciler.Resolve(oppName)
	ours, theirs := scorePtr(row.Text("pts_off")), scorePtr(row.Text("pts_def"))

	homeRef, awayRef := team, opp
	homeScore, awayScore := ours, theirs
	if away {
		homeRef, awayRef = opp, team
		homeScore, awayScore = theirs, ours
	}

	id, err := reconciliation.GameID(homeRef.Code, awayRef.Code, season, week)
	if err != nil {
		p.logger.Warn("skipping team schedule row", zap.Error(err))
		return store.GameRaw{}, false
	}

	iso, kick, ok := p.kickoff(row["game_date"], row.Text("gametime"), season, zap.String("game_id", id))
	if !ok {
		return store.GameRaw{}, false
	}

	scored := homeScore != nil && awayScore != nil
	if !scored && row.Text("game_outcome") != "" {
		scored = true
	}

	g := store.GameRaw{
		GameID:   id,
		Season:   season,
		Week:     week,
		Status:   p.status(scored, kick),
		DateTime: iso,
		Venue:    tbdVenue(),
		Home:     side(homeRef, homeScore),
		Away:     side(awayRef, awayScore),
		Source:   store.SourcePFR,
	}
	if rec := row.Text("team_record"); rec != "" {
		if away {
			g.Away.Record = rec
		} else {
			g.Home.Record = rec
		}
	}
	return g, true
}
