// Package stats turns raw cell text into numbers and combines per-stat ranks
// into composite rankings.
package stats

import (
	"math"
	"strconv"
	"strings"
)

// CellSource is anything that can look a cell up by its stable name.
type CellSource interface {
	Text(name string) string
}

// ParseStat reads the named cell as a number. Absent, empty and unparsable
// cells are 0.
func ParseStat(cells CellSource, name string) float64 {
	if cells == nil {
		return 0
	}
	return ParseNumber(cells.Text(name))
}

// ParseStatInt is ParseStat truncated to an int.
func ParseStatInt(cells CellSource, name string) int {
	return int(ParseStat(cells, name))
}

// ParseNumber parses "1,234", "45.6%", " 12 " and similar. Anything else is 0.
func ParseNumber(text string) float64 {
	s := strings.TrimSpace(text)
	if s == "" {
		return 0
	}
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSuffix(s, "%")
	s = strings.TrimSpace(s)

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// ParseInt parses an integer cell, 0 on failure.
func ParseInt(text string) int {
	v := ParseNumber(text)
	if v != math.Trunc(v) {
		return 0
	}
	return int(v)
}

// SafeDiv divides, returning 0 for a zero denominator or a non-finite result.
func SafeDiv(numerator, denominator float64) float64 {
	if denominator == 0 {
		return 0
	}
	v := numerator / denominator
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// Percent is SafeDiv scaled to 0-100 and rounded to one decimal.
func Percent(numerator, denominator float64) float64 {
	return Round1(SafeDiv(numerator, denominator) * 100)
}

// Round1 rounds to one decimal place.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// Round2 rounds to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
