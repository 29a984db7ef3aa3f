package espn

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fortuna/gridiron/internal/store"
)

const scoreboardFixture = `{
  "season": {"year": 2025, "type": 2},
  "week": {"number": 5},
  "events": [
    {
      "id": "401772001",
      "date": "2025-10-05T20:25Z",
      "name": "Los Angeles Chargers at Kansas City Chiefs",
      "season": {"year": 2025, "type": 2},
      "week": {"number": 5},
      "status": {"period": 4, "displayClock": "0:00", "type": {"name": "STATUS_FINAL", "state": "post", "completed": true}},
      "competitions": [{
        "id": "401772001",
        "venue": {"fullName": "GEHA Field at Arrowhead Stadium", "address": {"city": "Kansas City", "state": "MO"}},
        "competitors": [
          {"id": "12", "homeAway": "home", "score": "27", "winner": true,
           "team": {"id": "12", "abbreviation": "KC", "displayName": "Kansas City Chiefs"},
           "records": [
             {"name": "overall", "type": "total", "summary": "3-2"},
             {"name": "Home", "type": "home", "summary": "2-0"},
             {"name": "Road", "type": "road", "summary": "1-2"}
           ]},
          {"id": "24", "homeAway": "away", "score": "20",
           "team": {"id": "24", "abbreviation": "LAC", "displayName": "Los Angeles Chargers"},
           "records": [{"name": "overall", "summary": "3-2"}]}
        ],
        "leaders": [
          {"name": "passingYards", "leaders": [
            {"displayValue": "25/34, 300 YDS", "value": 300, "athlete": {"fullName": "Justin Herbert"}, "team": {"id": "24"}}
          ]},
          {"name": "rushingYards", "leaders": []}
        ]
      }]
    },
    {
      "id": "401772002",
      "date": "2025-10-05T17:00Z",
      "week": {"number": 5},
      "status": {"type": {"name": "STATUS_SCHEDULED", "state": "pre", "completed": false}},
      "competitions": [{
        "competitors": [
          {"homeAway": "home", "score": "0", "team": {"id": "2", "abbreviation": "BUF", "displayName": "Buffalo Bills"}},
          {"homeAway": "away", "score": "0", "team": {"id": "15", "abbreviation": "MIA", "displayName": "Miami Dolphins"}}
        ]
      }]
    },
    {
      "id": "401772003",
      "date": "2025-10-05T17:00Z",
      "week": {"number": 5},
      "status": {"type": {"name": "STATUS_IN_PROGRESS", "state": "in"}},
      "competitions": [{
        "competitors": [
          {"homeAway": "home", "score": "7", "team": {"id": "99", "abbreviation": "TST", "displayName": "Test Squad"}},
          {"homeAway": "away", "score": "3", "team": {"id": "20", "abbreviation": "NYJ", "displayName": "New York Jets"}}
        ]
      }]
    },
    {
      "id": "401772004",
      "week": {"number": 5},
      "competitions": [{"competitors": [{"homeAway": "home", "team": {"abbreviation": "DAL"}}]}]
    }
  ]
}`

func TestParseScoreboard(t *testing.T) {
	p := NewParser(nil, nil)

	games, err := p.ParseScoreboard([]byte(scoreboardFixture), 2025, 5).Get()
	require.NoError(t, err)
	require.Len(t, games, 3, "event without an away competitor is skipped")

	final := games[0]
	assert.Equal(t, "kan-lac-2025-5", final.GameID)
	assert.Equal(t, store.StatusFinal, final.Status)
	assert.Equal(t, "2025-10-05T20:25:00.000Z", final.DateTime)
	assert.Equal(t, store.SourceESPN, final.Source)
	assert.Equal(t, store.Venue{Name: "GEHA Field at Arrowhead Stadium", City: "Kansas City", State: "MO"}, final.Venue)
	require.NotNil(t, final.Home.Score)
	require.NotNil(t, final.Away.Score)
	assert.Equal(t, 27, *final.Home.Score)
	assert.Equal(t, 20, *final.Away.Score)
	assert.Equal(t, "3-2", final.Home.Record)
	assert.Equal(t, "2-0", final.Home.HomeRecord)
	assert.Equal(t, "1-2", final.Home.RoadRecord)
	assert.Equal(t, "3-2", final.Away.Record)
	assert.Equal(t, "12", final.Home.ExternalID)

	require.NotNil(t, final.Leaders)
	require.NotNil(t, final.Leaders.Passing)
	assert.Nil(t, final.Leaders.Rushing)
	assert.Equal(t, "Justin Herbert", final.Leaders.Passing.Name)
	assert.Equal(t, "lac", final.Leaders.Passing.Team)
	assert.Equal(t, 300.0, final.Leaders.Passing.Value)

	scheduled := games[1]
	assert.Equal(t, "buf-mia-2025-5", scheduled.GameID)
	assert.Equal(t, store.StatusScheduled, scheduled.Status)
	assert.Nil(t, scheduled.Home.Score)
	assert.Nil(t, scheduled.Away.Score)
	assert.Nil(t, scheduled.Leaders)
	assert.Equal(t, store.VenueTBD, scheduled.Venue.Name)

	live := games[2]
	assert.Equal(t, "testsquad-nyj-2025-5", live.GameID)
	assert.Equal(t, store.StatusInProgress, live.Status)
	assert.Equal(t, "Test Squad", live.Home.Name)
	assert.Equal(t, "TST", live.Home.Abbrev)
}

func TestParseScoreboard_Outcomes(t *testing.T) {
	p := NewParser(nil, nil)

	tests := []struct {
		name string
		body string
		kind Kind
		is   error
	}{
		{"html error page", "<!DOCTYPE html><html>blocked</html>", KindMalformed, ErrMalformed},
		{"empty body", "   ", KindMalformed, ErrMalformed},
		{"invalid json", `{"events": [`, KindMalformed, ErrMalformed},
		{"no events", `{"events": []}`, KindNotFound, ErrNotFound},
		{"week out of range", `{"events": [{"week": {"number": 22}, "competitions": [{"competitors": [
			{"homeAway": "home", "team": {"abbreviation": "KC"}},
			{"homeAway": "away", "team": {"abbreviation": "LAC"}}]}]}]}`, KindNotFound, ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := p.ParseScoreboard([]byte(tt.body), 2025, 5)
			assert.Equal(t, tt.kind, res.Kind)
			_, err := res.Get()
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.is))
		})
	}
}

func TestGameStatus(t *testing.T) {
	tests := []struct {
		name string
		typ  StatusType
		want store.GameStatus
	}{
		{"scheduled", StatusType{Name: "STATUS_SCHEDULED", State: "pre"}, store.StatusScheduled},
		{"in progress", StatusType{Name: "STATUS_IN_PROGRESS", State: "in"}, store.StatusInProgress},
		{"halftime", StatusType{Name: "STATUS_HALFTIME", State: "in"}, store.StatusInProgress},
		{"end of period", StatusType{Name: "STATUS_END_PERIOD", State: "in"}, store.StatusInProgress},
		{"final", StatusType{Name: "STATUS_FINAL", State: "post", Completed: true}, store.StatusFinal},
		{"postponed", StatusType{Name: "STATUS_POSTPONED", State: "post", Completed: true}, store.StatusPostponed},
		{"empty", StatusType{}, store.StatusScheduled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, gameStatus(Status{Type: tt.typ}))
		})
	}
}

func TestParseRoster(t *testing.T) {
	body := `{
	  "team": {"id": "24", "abbreviation": "LAC", "displayName": "Los Angeles Chargers"},
	  "athletes": [
	    {"position": "offense", "items": [
	      {"id": "4038941", "fullName": "Justin Herbert", "jersey": "10", "age": 27,
	       "displayHeight": "6' 6\"", "displayWeight": "236 lbs",
	       "position": {"name": "Quarterback", "abbreviation": "QB"}, "status": {"name": "Active"}}
	    ]},
	    {"position": "specialTeam", "items": [
	      {"id": "4362081", "displayName": "Cameron Dicker", "position": {"abbreviation": "PK"}}
	    ]}
	  ]
	}`
	p := NewParser(nil, nil)

	roster, err := p.ParseRoster([]byte(body), "24").Get()
	require.NoError(t, err)
	assert.Equal(t, "lac", roster.TeamID)
	assert.Equal(t, "Los Angeles Chargers", roster.Name)
	require.Len(t, roster.Players, 2)
	assert.Equal(t, store.RosterPlayer{
		ID:       "4038941",
		Name:     "Justin Herbert",
		Jersey:   "10",
		Position: "QB",
		Group:    "offense",
		Age:      27,
		Height:   `6' 6"`,
		Weight:   "236 lbs",
		Status:   "Active",
	}, roster.Players[0])
	assert.Equal(t, "Cameron Dicker", roster.Players[1].Name)
	assert.Equal(t, "specialTeam", roster.Players[1].Group)

	res := p.ParseRoster([]byte(`{"team": {}, "athletes": []}`), "24")
	assert.Equal(t, KindNotFound, res.Kind)
}

func TestParseStatistics(t *testing.T) {
	body := `{
	  "teams": [
	    {"team": {"id": "12", "abbreviation": "KC", "displayName": "Kansas City Chiefs"},
	     "stats": [{"name": "totalYards", "value": 1850}, {"name": "", "value": 1}, {"name": "points", "value": 120}]}
	  ],
	  "athletes": [
	    {"athlete": {"id": "3139477", "fullName": "Patrick Mahomes", "position": {"abbreviation": "QB"},
	                 "team": {"id": "12", "abbreviation": "KC"}},
	     "stats": [{"name": "passingYards", "value": 1300}]},
	    {"stats": [{"name": "passingYards", "value": 1}]}
	  ]
	}`
	p := NewParser(nil, nil)

	teams, err := p.ParseTeamStatistics([]byte(body)).Get()
	require.NoError(t, err)
	require.Len(t, teams, 1)
	assert.Equal(t, "kan", teams[0].TeamID)
	assert.Equal(t, map[string]float64{"totalYards": 1850, "points": 120}, teams[0].Stats)

	players, err := p.ParsePlayerStatistics([]byte(body)).Get()
	require.NoError(t, err)
	require.Len(t, players, 1, "lines without an athlete are skipped")
	assert.Equal(t, store.EntityStats{
		ID:       "3139477",
		Name:     "Patrick Mahomes",
		TeamID:   "kan",
		Position: "QB",
		Stats:    map[string]float64{"passingYards": 1300},
	}, players[0])

	res := p.ParsePlayerStatistics([]byte(`{"athletes": []}`))
	assert.Equal(t, KindNotFound, res.Kind)
}
