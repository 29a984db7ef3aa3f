// Package espn reads the public ESPN NFL JSON API.
package espn

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/fortuna/gridiron/internal/fetch"
	"github.com/fortuna/gridiron/internal/logging"
	"github.com/fortuna/gridiron/internal/store"
)

// BaseURL is the NFL root of the site API.
const BaseURL = "https://site.api.espn.com/apis/site/v2/sports/football/nfl"

// RegularSeason is ESPN's seasontype for regular-season games.
const RegularSeason = 2

// Client fetches and parses ESPN endpoints. It does not retry; callers wrap
// calls in a retry policy.
type Client struct {
	fetcher fetch.Fetcher
	baseURL string
	headers http.Header
	parser  *Parser
	logger  *zap.Logger
}

// NewClient creates a client on top of any fetcher.
func NewClient(fetcher fetch.Fetcher, baseURL string, parser *Parser, logger *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = BaseURL
	}
	logger = logging.OrNop(logger)
	if parser == nil {
		parser = NewParser(nil, logger)
	}
	return &Client{
		fetcher: fetcher,
		baseURL: strings.TrimRight(baseURL, "/"),
		headers: fetch.JSONHeaders(),
		parser:  parser,
		logger:  logger,
	}
}

func (c *Client) ScoreboardURL(season, week int) string {
	return fmt.Sprintf("%s/scoreboard?seasontype=%d&week=%d&year=%d", c.baseURL, RegularSeason, week, season)
}

func (c *Client) RosterURL(teamID string) string {
	return fmt.Sprintf("%s/teams/%s/roster", c.baseURL, strings.ToLower(teamID))
}

func (c *Client) TeamStatisticsURL(season int) string {
	return fmt.Sprintf("%s/teams/statistics?season=%d&seasontype=%d", c.baseURL, season, RegularSeason)
}

func (c *Client) PlayerStatisticsURL(season int) string {
	return fmt.Sprintf("%s/players/statistics?season=%d&seasontype=%d", c.baseURL, season, RegularSeason)
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	payload, err := c.fetcher.Fetch(ctx, url, c.headers)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("espn payload", zap.String("url", url), zap.Int("bytes", len(payload.Body)))
	return payload.Body, nil
}

// Scoreboard returns the schedule rows of one regular-season week.
func (c *Client) Scoreboard(ctx context.Context, season, week int) ([]store.GameRaw, error) {
	body, err := c.get(ctx, c.ScoreboardURL(season, week))
	if err != nil {
		return nil, err
	}
	return c.parser.ParseScoreboard(body, season, week).Get()
}

// Roster returns a team's roster. teamID is an ESPN team id or abbreviation.
func (c *Client) Roster(ctx context.Context, teamID string) (store.Roster, error) {
	body, err := c.get(ctx, c.RosterURL(teamID))
	if err != nil {
		return store.Roster{}, err
	}
	return c.parser.ParseRoster(body, teamID).Get()
}

// TeamStatistics returns every team's season stat line.
func (c *Client) TeamStatistics(ctx context.Context, season int) ([]store.EntityStats, error) {
	body, err := c.get(ctx, c.TeamStatisticsURL(season))
	if err != nil {
		return nil, err
	}
	return c.parser.ParseTeamStatistics(body).Get()
}

// PlayerStatistics returns every player's season stat line.
func (c *Client) PlayerStatistics(ctx context.Context, season int) ([]store.EntityStats, error) {
	body, err := c.get(ctx, c.PlayerStatisticsURL(season))
	if err != nil {
		return nil, err
	}
	return c.parser.ParsePlayerStatistics(body).Get()
}
