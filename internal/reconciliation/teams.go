package reconciliation

import (
	"strings"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/fortuna/gridiron/internal/logging"
)

// Team is one row of the fixed league table.
type Team struct {
	Code     string   `json:"code"` // canonical code, used in game ids
	Name     string   `json:"name"` // full name as both sources print it
	ESPNAbbr string   `json:"espnAbbr"`
	PFRPath  string   `json:"pfrPath"` // path segment on pro-football-reference team pages
	Aliases  []string `json:"aliases"`
}

// Teams is the fixed 32-team table.
var Teams = []Team{
	{Code: "ari", Name: "Arizona Cardinals", ESPNAbbr: "ARI", PFRPath: "crd", Aliases: []string{"cardinals", "arizona", "st. louis cardinals"}},
	{Code: "atl", Name: "Atlanta Falcons", ESPNAbbr: "ATL", PFRPath: "atl", Aliases: []string{"falcons", "atlanta"}},
	{Code: "bal", Name: "Baltimore Ravens", ESPNAbbr: "BAL", PFRPath: "rav", Aliases: []string{"ravens", "baltimore"}},
	{Code: "buf", Name: "Buffalo Bills", ESPNAbbr: "BUF", PFRPath: "buf", Aliases: []string{"bills", "buffalo"}},
	{Code: "car", Name: "Carolina Panthers", ESPNAbbr: "CAR", PFRPath: "car", Aliases: []string{"panthers", "carolina"}},
	{Code: "chi", Name: "Chicago Bears", ESPNAbbr: "CHI", PFRPath: "chi", Aliases: []string{"bears", "chicago"}},
	{Code: "cin", Name: "Cincinnati Bengals", ESPNAbbr: "CIN", PFRPath: "cin", Aliases: []string{"bengals", "cincinnati"}},
	{Code: "cle", Name: "Cleveland Browns", ESPNAbbr: "CLE", PFRPath: "cle", Aliases: []string{"browns", "cleveland"}},
	{Code: "dal", Name: "Dallas Cowboys", ESPNAbbr: "DAL", PFRPath: "dal", Aliases: []string{"cowboys", "dallas"}},
	{Code: "den", Name: "Denver Broncos", ESPNAbbr: "DEN", PFRPath: "den", Aliases: []string{"broncos", "denver"}},
	{Code: "det", Name: "Detroit Lions", ESPNAbbr: "DET", PFRPath: "det", Aliases: []string{"lions", "detroit"}},
	{Code: "gnb", Name: "Green Bay Packers", ESPNAbbr: "GB", PFRPath: "gnb", Aliases: []string{"packers", "green bay"}},
	{Code: "hou", Name: "Houston Texans", ESPNAbbr: "HOU", PFRPath: "htx", Aliases: []string{"texans", "houston"}},
	{Code: "ind", Name: "Indianapolis Colts", ESPNAbbr: "IND", PFRPath: "clt", Aliases: []string{"colts", "indianapolis"}},
	{Code: "jax", Name: "Jacksonville Jaguars", ESPNAbbr: "JAX", PFRPath: "jax", Aliases: []string{"jaguars", "jacksonville"}},
	{Code: "kan", Name: "Kansas City Chiefs", ESPNAbbr: "KC", PFRPath: "kan", Aliases: []string{"chiefs", "kansas city"}},
	{Code: "lvr", Name: "Las Vegas Raiders", ESPNAbbr: "LV", PFRPath: "rai", Aliases: []string{"raiders", "las vegas", "oakland raiders"}},
	{Code: "lac", Name: "Los Angeles Chargers", ESPNAbbr: "LAC", PFRPath: "sdg", Aliases: []string{"chargers", "san diego chargers"}},
	{Code: "lar", Name: "Los Angeles Rams", ESPNAbbr: "LAR", PFRPath: "ram", Aliases: []string{"rams", "st. louis rams"}},
	{Code: "mia", Name: "Miami Dolphins", ESPNAbbr: "MIA", PFRPath: "mia", Aliases: []string{"dolphins", "miami"}},
	{Code: "min", Name: "Minnesota Vikings", ESPNAbbr: "MIN", PFRPath: "min", Aliases: []string{"vikings", "minnesota"}},
	{Code: "nwe", Name: "New England Patriots", ESPNAbbr: "NE", PFRPath: "nwe", Aliases: []string{"patriots", "new england"}},
	{Code: "nor", Name: "New Orleans Saints", ESPNAbbr: "NO", PFRPath: "nor", Aliases: []string{"saints", "new orleans"}},
	{Code: "nyg", Name: "New York Giants", ESPNAbbr: "NYG", PFRPath: "nyg", Aliases: []string{"giants"}},
	{Code: "nyj", Name: "New York Jets", ESPNAbbr: "NYJ", PFRPath: "nyj", Aliases: []string{"jets"}},
	{Code: "phi", Name: "Philadelphia Eagles", ESPNAbbr: "PHI", PFRPath: "phi", Aliases: []string{"eagles", "philadelphia"}},
	{Code: "pit", Name: "Pittsburgh Steelers", ESPNAbbr: "PIT", PFRPath: "pit", Aliases: []string{"steelers", "pittsburgh"}},
	{Code: "sfo", Name: "San Francisco 49ers", ESPNAbbr: "SF", PFRPath: "sfo", Aliases: []string{"49ers", "niners", "san francisco"}},
	{Code: "sea", Name: "Seattle Seahawks", ESPNAbbr: "SEA", PFRPath: "sea", Aliases: []string{"seahawks", "seattle"}},
	{Code: "tam", Name: "Tampa Bay Buccaneers", ESPNAbbr: "TB", PFRPath: "tam", Aliases: []string{"buccaneers", "bucs", "tampa bay"}},
	{Code: "ten", Name: "Tennessee Titans", ESPNAbbr: "TEN", PFRPath: "oti", Aliases: []string{"titans", "tennessee"}},
	{Code: "was", Name: "Washington Commanders", ESPNAbbr: "WSH", PFRPath: "was", Aliases: []string{"commanders", "washington", "washington football team", "wsh"}},
}

var teamIndex = buildTeamIndex()

func buildTeamIndex() map[string]*Team {
	idx := make(map[string]*Team, len(Teams)*6)
	for i := range Teams {
		t := &Teams[i]
		for _, key := range []string{t.Code, t.Name, t.ESPNAbbr, t.PFRPath} {
			idx[normalizeKey(key)] = t
		}
		for _, alias := range t.Aliases {
			idx[normalizeKey(alias)] = t
		}
	}
	return idx
}

// Lookup finds a team by canonical code, full name, ESPN abbreviation,
// pro-football-reference path or alias. Matching is case-insensitive.
func Lookup(nameOrCode string) (Team, bool) {
	if t, ok := teamIndex[normalizeKey(nameOrCode)]; ok {
		return *t, true
	}
	return Team{}, false
}

// ByCode returns the team for a canonical code.
func ByCode(code string) (Team, bool) {
	t, ok := Lookup(code)
	if !ok || t.Code != strings.ToLower(strings.TrimSpace(code)) {
		return Team{}, false
	}
	return t, true
}

// TeamRef is a resolved (or synthesized) team reference.
type TeamRef struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	Abbrev   string `json:"abbrev"`
	PFRPath  string `json:"pfrPath,omitempty"`
	Resolved bool   `json:"resolved"`
}

// Reconciler resolves source-specific team identities onto canonical ones.
// Unknown teams get a synthetic code and are counted for telemetry.
type Reconciler struct {
	logger     *zap.Logger
	unresolved atomic.Int64
}

// NewReconciler creates a reconciler that logs unresolved teams to logger.
func NewReconciler(logger *zap.Logger) *Reconciler {
	return &Reconciler{logger: logging.OrNop(logger)}
}

// Resolve maps a source name or code onto a TeamRef. It never fails: an
// unknown value yields a best-effort synthetic code with Resolved=false.
func (r *Reconciler) Resolve(nameOrCode string) TeamRef {
	if t, ok := Lookup(nameOrCode); ok {
		return TeamRef{
			Code:     t.Code,
			Name:     t.Name,
			Abbrev:   t.ESPNAbbr,
			PFRPath:  t.PFRPath,
			Resolved: true,
		}
	}

	r.unresolved.Add(1)
	code := SyntheticCode(nameOrCode)
	r.logger.Warn("unresolved team, using synthetic code",
		zap.String("input", nameOrCode),
		zap.String("code", code),
	)
	return TeamRef{
		Code:     code,
		Name:     strings.TrimSpace(nameOrCode),
		Abbrev:   strings.ToUpper(code),
		Resolved: false,
	}
}

// Unresolved returns how many lookups fell back to a synthetic code.
func (r *Reconciler) Unresolved() int64 {
	return r.unresolved.Load()
}

// SyntheticCode lower-cases s and strips whitespace and dashes so the result
// stays usable inside a game id.
func SyntheticCode(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch r {
		case ' ', '\t', '\n', '\r', '-':
			continue
		}
		b.WriteRune(r)
	}
	if b.Len() == 0 {
		return "unknown"
	}
	return b.String()
}

func normalizeKey(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
