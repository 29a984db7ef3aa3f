package espn

// Scoreboard is the /scoreboard payload.
type Scoreboard struct {
	Season struct {
		Year int `json:"year"`
		Type int `json:"type"`
	} `json:"season"`
	Week struct {
		Number int `json:"number"`
	} `json:"week"`
	Events []Event `json:"events"`
}

// Event is one game on the scoreboard.
type Event struct {
	ID     string `json:"id"`
	Date   string `json:"date"`
	Name   string `json:"name"`
	Season struct {
		Year int `json:"year"`
		Type int `json:"type"`
	} `json:"season"`
	Week struct {
		Number int `json:"number"`
	} `json:"week"`
	Status       Status        `json:"status"`
	Competitions []Competition `json:"competitions"`
}

// Status is a game's state as ESPN reports it.
type Status struct {
	Period       int        `json:"period"`
	DisplayClock string     `json:"displayClock"`
	Type         StatusType `json:"type"`
}

// StatusType carries the machine and display names of a status.
type StatusType struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	State       string `json:"state"`
	Completed   bool   `json:"completed"`
	Description string `json:"description"`
	Detail      string `json:"detail"`
}

// Competition is the matchup inside an event.
type Competition struct {
	ID          string           `json:"id"`
	Date        string           `json:"date"`
	NeutralSite bool             `json:"neutralSite"`
	Venue       Venue            `json:"venue"`
	Competitors []Competitor     `json:"competitors"`
	Leaders     []LeaderCategory `json:"leaders"`
	Status      Status           `json:"status"`
}

// Venue is where the competition is played.
type Venue struct {
	ID       string `json:"id"`
	FullName string `json:"fullName"`
	Address  struct {
		City  string `json:"city"`
		State string `json:"state"`
	} `json:"address"`
}

// Competitor is one side of a competition.
type Competitor struct {
	ID       string   `json:"id"`
	HomeAway string   `json:"homeAway"`
	Winner   bool     `json:"winner"`
	Score    string   `json:"score"`
	Team     Team     `json:"team"`
	Records  []Record `json:"records"`
}

// Team identifies a club.
type Team struct {
	ID               string `json:"id"`
	Abbreviation     string `json:"abbreviation"`
	DisplayName      string `json:"displayName"`
	ShortDisplayName string `json:"shortDisplayName"`
	Name             string `json:"name"`
	Location         string `json:"location"`
}

// Record is a win-loss summary split.
type Record struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Summary string `json:"summary"`
}

// LeaderCategory is e.g. passingYards with its leaders.
type LeaderCategory struct {
	Name        string        `json:"name"`
	DisplayName string        `json:"displayName"`
	Leaders     []LeaderEntry `json:"leaders"`
}

// LeaderEntry is one leader within a category.
type LeaderEntry struct {
	DisplayValue string  `json:"displayValue"`
	Value        float64 `json:"value"`
	Athlete      Athlete `json:"athlete"`
	Team         struct {
		ID string `json:"id"`
	} `json:"team"`
}

// Athlete is a player reference.
type Athlete struct {
	ID            string `json:"id"`
	FullName      string `json:"fullName"`
	DisplayName   string `json:"displayName"`
	Jersey        string `json:"jersey"`
	Age           int    `json:"age"`
	DisplayHeight string `json:"displayHeight"`
	DisplayWeight string `json:"displayWeight"`
	Position      struct {
		Name         string `json:"name"`
		Abbreviation string `json:"abbreviation"`
	} `json:"position"`
	Status struct {
		Name string `json:"name"`
	} `json:"status"`
	Team *Team `json:"team,omitempty"`
}

// Name prefers the full name.
func (a Athlete) Name() string {
	if a.FullName != "" {
		return a.FullName
	}
	return a.DisplayName
}

// RosterResponse is the /teams/{id}/roster payload.
type RosterResponse struct {
	Team     Team           `json:"team"`
	Athletes []AthleteGroup `json:"athletes"`
}

// AthleteGroup is a positional group (offense, defense, specialTeam).
type AthleteGroup struct {
	Position string    `json:"position"`
	Items    []Athlete `json:"items"`
}

// StatisticsResponse is the flat per-entity payload of the team and player
// statistics endpoints.
type StatisticsResponse struct {
	Teams    []EntityStatLine `json:"teams"`
	Athletes []EntityStatLine `json:"athletes"`
}

// EntityStatLine is one team or athlete with its {name, value} pairs.
type EntityStatLine struct {
	Team    *Team       `json:"team,omitempty"`
	Athlete *Athlete    `json:"athlete,omitempty"`
	Stats   []NamedStat `json:"stats"`
}

// NamedStat is a single {name, value} pair.
type NamedStat struct {
	Name         string  `json:"name"`
	Value        float64 `json:"value"`
	DisplayValue string  `json:"displayValue"`
}
