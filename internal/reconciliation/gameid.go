package reconciliation

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

// Regular season bounds.
const (
	MinWeek = 1
	MaxWeek = 18
)

var (
	// ErrInvalidWeek is returned for weeks outside the regular season.
	ErrInvalidWeek = errors.New("week out of range")
	// ErrInvalidGameID is returned when an id cannot be split into its parts.
	ErrInvalidGameID = errors.New("invalid game id")
)

// GameKey is the four components a canonical game id is built from.
type GameKey struct {
	Home   string
	Away   string
	Season int
	Week   int
}

// String renders the canonical id "home-away-season-week".
func (k GameKey) String() string {
	return fmt.Sprintf("%s-%s-%d-%d", k.Home, k.Away, k.Season, k.Week)
}

// ValidateWeek rejects weeks outside [MinWeek, MaxWeek]. Out-of-range weeks
// are never clamped.
func ValidateWeek(week int) error {
	if week < MinWeek || week > MaxWeek {
		return errors.Wrapf(ErrInvalidWeek, "week %d", week)
	}
	return nil
}

// GameID builds the canonical id from two team codes, a season and a week.
func GameID(homeCode, awayCode string, season, week int) (string, error) {
	if err := ValidateWeek(week); err != nil {
		return "", err
	}
	if season <= 0 {
		return "", errors.Wrapf(ErrInvalidGameID, "season %d", season)
	}
	home, away := strings.ToLower(strings.TrimSpace(homeCode)), strings.ToLower(strings.TrimSpace(awayCode))
	if !validCode(home) || !validCode(away) {
		return "", errors.Wrapf(ErrInvalidGameID, "team codes %q/%q", homeCode, awayCode)
	}
	return GameKey{Home: home, Away: away, Season: season, Week: week}.String(), nil
}

// ParseGameID recovers the four components of a canonical id.
func ParseGameID(id string) (GameKey, error) {
	parts := strings.Split(strings.TrimSpace(id), "-")
	if len(parts) != 4 {
		return GameKey{}, errors.Wrapf(ErrInvalidGameID, "%q", id)
	}
	season, err := strconv.Atoi(parts[2])
	if err != nil || season <= 0 {
		return GameKey{}, errors.Wrapf(ErrInvalidGameID, "season in %q", id)
	}
	week, err := strconv.Atoi(parts[3])
	if err != nil {
		return GameKey{}, errors.Wrapf(ErrInvalidGameID, "week in %q", id)
	}
	if err := ValidateWeek(week); err != nil {
		return GameKey{}, err
	}
	if !validCode(parts[0]) || !validCode(parts[1]) {
		return GameKey{}, errors.Wrapf(ErrInvalidGameID, "team codes in %q", id)
	}
	return GameKey{Home: parts[0], Away: parts[1], Season: season, Week: week}, nil
}

func validCode(code string) bool {
	return code != "" && !strings.ContainsAny(code, "- \t")
}
