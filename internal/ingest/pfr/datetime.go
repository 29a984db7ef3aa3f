package pfr

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/fortuna/gridiron/internal/store"
)

// ISOLayout is the kickoff format: the listed wall-clock time written with a
// Z suffix and milliseconds.
const ISOLayout = "2006-01-02T15:04:05.000Z"

// GameDuration is how long after kickoff a game is assumed to be over.
const GameDuration = 4 * time.Hour

// DefaultKickoff is used when the listed clock cannot be parsed.
const DefaultKickoff = "12:00"

var clockRe = regexp.MustCompile(`(?i)^(\d{1,2}):(\d{2})\s*(AM|PM)$`)

// zone tokens the site appends to kickoff times
var zoneTokens = []string{"ET", "EST", "EDT", "CT", "PT", "MT"}

var dateLayouts = []string{
	"2006-01-02",
	"January 2, 2006",
	"Jan 2, 2006",
	"January 2 2006",
}

var yearlessLayouts = []string{
	"January 2",
	"Jan 2",
}

// ParseGameDate reads a date cell. The csk sort key is preferred when it is
// an ISO date; yearless text ("September 8") is placed in season, with
// January and February belonging to the following calendar year.
func ParseGameDate(c Cell, season int) (time.Time, error) {
	for _, v := range []string{c.CSK, c.Text} {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if len(v) >= 10 {
			if t, err := time.Parse("2006-01-02", v[:10]); err == nil {
				return t, nil
			}
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, v); err == nil {
				return t, nil
			}
		}
		for _, layout := range yearlessLayouts {
			t, err := time.Parse(layout, v)
			if err != nil {
				continue
			}
			year := season
			if t.Month() <= time.February {
				year++
			}
			return time.Date(year, t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, errors.Newf("unparseable date %q", c.Text)
}

// KickoffISO combines a YYYY-MM-DD date with a "H:MM AM/PM" clock. A trailing
// zone token is ignored. When the clock is malformed the kickoff falls back to
// 12:00 and clockOK is false so the caller can log it.
func KickoffISO(date, clock string) (iso string, clockOK bool, err error) {
	day, err := time.Parse("2006-01-02", strings.TrimSpace(date))
	if err != nil {
		return "", false, errors.Wrapf(err, "kickoff date %q", date)
	}

	hour, minute, ok := parseClock(clock)
	if !ok {
		hour, minute = 12, 0
	}
	t := time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, time.UTC)
	return t.Format(ISOLayout), ok, nil
}

func parseClock(clock string) (hour, minute int, ok bool) {
	s := strings.TrimSpace(clock)
	if fields := strings.Fields(s); len(fields) > 1 {
		last := strings.ToUpper(fields[len(fields)-1])
		for _, z := range zoneTokens {
			if last == z {
				s = strings.Join(fields[:len(fields)-1], " ")
				break
			}
		}
	}

	m := clockRe.FindStringSubmatch(s)
	if m == nil {
		return 0, 0, false
	}
	hour, _ = strconv.Atoi(m[1])
	minute, _ = strconv.Atoi(m[2])
	if hour < 1 || hour > 12 || minute > 59 {
		return 0, 0, false
	}

	pm := strings.EqualFold(m[3], "PM")
	switch {
	case pm && hour != 12:
		hour += 12
	case !pm && hour == 12:
		hour = 0
	}
	return hour, minute, true
}

// InferStatus derives a status from kickoff alone: final once GameDuration
// has passed, in progress between kickoff and then, scheduled before.
func InferStatus(kickoff, now time.Time) store.GameStatus {
	switch {
	case now.Before(kickoff):
		return store.StatusScheduled
	case now.Before(kickoff.Add(GameDuration)):
		return store.StatusInProgress
	default:
		return store.StatusFinal
	}
}

// parseKickoff parses an ISOLayout string back to a time.
func parseKickoff(iso string) (time.Time, error) {
	t, err := time.Parse(ISOLayout, iso)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "kickoff %q", iso)
	}
	return t, nil
}
