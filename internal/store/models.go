package store

// GameStatus is the normalized lifecycle state of a game.
type GameStatus string

const (
	StatusScheduled  GameStatus = "scheduled"
	StatusInProgress GameStatus = "in_progress"
	StatusFinal      GameStatus = "final"
	StatusPostponed  GameStatus = "postponed"
)

// Per-stat ranking keys shared by offenseRankings and defenseRankings.
const (
	StatTotalYards   = "totalYards"
	StatPassingYards = "passingYards"
	StatRushingYards = "rushingYards"
	StatPoints       = "points"
	StatTurnovers    = "turnovers"
	StatSacks        = "sacks"
	StatThirdDownPct = "thirdDownPct"
	StatRedZonePct   = "redZonePct"
)

// RankedStatKeys lists every ranked stat in a stable order.
var RankedStatKeys = []string{
	StatTotalYards,
	StatPassingYards,
	StatRushingYards,
	StatPoints,
	StatTurnovers,
	StatSacks,
	StatThirdDownPct,
	StatRedZonePct,
}

// LeagueSize bounds every real rank. Rank 0 means unavailable.
const LeagueSize = 32

// SourceESPN and SourcePFR tag where a game's schedule row came from.
const (
	SourceESPN = "espn"
	SourcePFR  = "pfr"
)

// VenueTBD is used for every venue field the source does not provide.
const VenueTBD = "TBD"

// RankedStat is one league rank plus the per-game value behind it.
type RankedStat struct {
	Rank         int     `json:"rank"`
	ValuePerGame float64 `json:"valuePerGame"`
}

// Record holds win-loss strings ("W-L").
type Record struct {
	Overall string `json:"overall"`
	Home    string `json:"home"`
	Road    string `json:"road"`
}

// PassingSummary is a team's season passing line.
type PassingSummary struct {
	Completions     int     `json:"completions"`
	Attempts        int     `json:"attempts"`
	Yards           int     `json:"yards"`
	Touchdowns      int     `json:"touchdowns"`
	Interceptions   int     `json:"interceptions"`
	CompletionPct   float64 `json:"completionPct"`
	YardsPerAttempt float64 `json:"yardsPerAttempt"`
	PasserRating    float64 `json:"passerRating"`
}

// TeamStatRecord is one team's statistics for one season/week.
// Rankings, per-game values, GamesPlayed and Passing are season-to-date as of
// the scrape; only Record is cut off at Week. It is built once per scrape and
// never mutated afterwards.
type TeamStatRecord struct {
	TeamID             string                `json:"teamId"`
	TeamName           string                `json:"teamName"`
	Season             int                   `json:"season"`
	Week               int                   `json:"week"`
	GamesPlayed        int                   `json:"gamesPlayed"`
	Record             Record                `json:"record"`
	OffenseRankings    map[string]RankedStat `json:"offenseRankings"`
	DefenseRankings    map[string]RankedStat `json:"defenseRankings"`
	OverallOffenseRank int                   `json:"overallOffenseRank"`
	OverallDefenseRank int                   `json:"overallDefenseRank"`
	OverallTeamRank    int                   `json:"overallTeamRank"`
	Passing            PassingSummary        `json:"passing"`
}

// Venue is where a game is played.
type Venue struct {
	Name  string `json:"name"`
	City  string `json:"city"`
	State string `json:"state"`
}

// TeamSide is the home or away view of a game.
// Stats is null (never omitted) when statistics could not be scraped.
type TeamSide struct {
	TeamID        string          `json:"teamId"`
	Name          string          `json:"name"`
	Abbrev        string          `json:"abbrev"`
	Record        string          `json:"record"`
	OverallRecord string          `json:"overallRecord"`
	HomeRecord    string          `json:"homeRecord"`
	RoadRecord    string          `json:"roadRecord"`
	Stats         *TeamStatRecord `json:"stats"`
}

// Leader is a single statistical leader for a game.
type Leader struct {
	Name         string  `json:"name"`
	Team         string  `json:"team"`
	Value        float64 `json:"value"`
	DisplayValue string  `json:"displayValue"`
}

// Leaders is the top passing/rushing/receiving performer summary.
type Leaders struct {
	Passing   *Leader `json:"passing,omitempty"`
	Rushing   *Leader `json:"rushing,omitempty"`
	Receiving *Leader `json:"receiving,omitempty"`
}

// Empty reports whether no leader category is populated.
func (l *Leaders) Empty() bool {
	return l == nil || (l.Passing == nil && l.Rushing == nil && l.Receiving == nil)
}

// GameRecord is the normalized game shape served to collaborators.
// Every key is always present except Leaders, which is omitted when the
// source has no leader data.
type GameRecord struct {
	GameID    string     `json:"gameId"`
	Season    int        `json:"season"`
	Week      int        `json:"week"`
	Status    GameStatus `json:"status"`
	DateTime  string     `json:"dateTime"`
	Venue     Venue      `json:"venue"`
	Home      TeamSide   `json:"home"`
	Away      TeamSide   `json:"away"`
	HomeScore *int       `json:"homeScore"`
	AwayScore *int       `json:"awayScore"`
	Source    string     `json:"source"`
	Leaders   *Leaders   `json:"leaders,omitempty"`
}

// RawSide is one team of a reconciled schedule row before assembly.
type RawSide struct {
	Code       string
	Name       string
	Abbrev     string
	ExternalID string
	Record     string
	HomeRecord string
	RoadRecord string
	Score      *int
}

// GameRaw is a reconciled schedule row from either source.
type GameRaw struct {
	GameID   string
	Season   int
	Week     int
	Status   GameStatus
	DateTime string
	Venue    Venue
	Home     RawSide
	Away     RawSide
	Leaders  *Leaders
	Source   string
}

// RosterPlayer is one athlete on a team roster.
type RosterPlayer struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Jersey   string `json:"jersey"`
	Position string `json:"position"`
	Group    string `json:"group"`
	Age      int    `json:"age"`
	Height   string `json:"height"`
	Weight   string `json:"weight"`
	Status   string `json:"status"`
}

// Roster is a team's current roster.
type Roster struct {
	TeamID  string         `json:"teamId"`
	Name    string         `json:"name"`
	Players []RosterPlayer `json:"players"`
}

// EntityStats is a flat stat line for one team or player. Keys are the
// source's stat names.
type EntityStats struct {
	ID       string             `json:"id"`
	Name     string             `json:"name"`
	TeamID   string             `json:"teamId"`
	Position string             `json:"position,omitempty"`
	Stats    map[string]float64 `json:"stats"`
}

// SlateEvent announces that a week's normalized slate was rewritten.
type SlateEvent struct {
	Season    int    `json:"season"`
	Week      int    `json:"week"`
	Games     int    `json:"games"`
	Source    string `json:"source"`
	UpdatedAt int64  `json:"updatedAt"`
}

// ParlayLeg is one pick inside a suggested parlay.
type ParlayLeg struct {
	GameID string `json:"gameId" validate:"required"`
	Pick   string `json:"pick" validate:"required"`
	Market string `json:"market" validate:"required,oneof=moneyline spread total"`
}

// Parlay is a suggested multi-leg bet over one slate.
type Parlay struct {
	ID        string      `json:"id" validate:"required"`
	Legs      []ParlayLeg `json:"legs" validate:"required,min=2,dive"`
	Rationale string      `json:"rationale"`
}
