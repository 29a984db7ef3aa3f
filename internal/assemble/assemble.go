// Package assemble builds the normalized GameRecord served to collaborators.
package assemble

import (
	"strings"

	"github.com/fortuna/gridiron/internal/store"
)

// Assemble combines a reconciled schedule row with both teams' statistics.
// home and away may be nil; the record keeps every key either way and the
// side's stats is null. Leaders are dropped when the source had none.
func Assemble(raw store.GameRaw, home, away *store.TeamStatRecord) store.GameRecord {
	status := raw.Status
	if status == "" {
		status = store.StatusScheduled
	}

	var leaders *store.Leaders
	if !raw.Leaders.Empty() {
		l := *raw.Leaders
		leaders = &l
	}

	return store.GameRecord{
		GameID:    raw.GameID,
		Season:    raw.Season,
		Week:      raw.Week,
		Status:    status,
		DateTime:  raw.DateTime,
		Venue:     venue(raw.Venue),
		Home:      teamSide(raw.Home, home),
		Away:      teamSide(raw.Away, away),
		HomeScore: raw.Home.Score,
		AwayScore: raw.Away.Score,
		Source:    raw.Source,
		Leaders:   leaders,
	}
}

func teamSide(raw store.RawSide, rec *store.TeamStatRecord) store.TeamSide {
	overall, home, road := raw.Record, raw.HomeRecord, raw.RoadRecord
	if rec != nil {
		overall = firstNonEmpty(overall, rec.Record.Overall)
		home = firstNonEmpty(home, rec.Record.Home)
		road = firstNonEmpty(road, rec.Record.Road)
	}
	name := raw.Name
	if name == "" && rec != nil {
		name = rec.TeamName
	}

	return store.TeamSide{
		TeamID:        raw.Code,
		Name:          name,
		Abbrev:        raw.Abbrev,
		Record:        overall,
		OverallRecord: overall,
		HomeRecord:    home,
		RoadRecord:    road,
		Stats:         rec,
	}
}

func venue(v store.Venue) store.Venue {
	return store.Venue{
		Name:  orTBD(v.Name),
		City:  orTBD(v.City),
		State: orTBD(v.State),
	}
}

func orTBD(s string) string {
	if strings.TrimSpace(s) == "" {
		return store.VenueTBD
	}
	return s
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
