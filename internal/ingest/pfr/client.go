package pfr

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/fortuna/gridiron/internal/fetch"
	"github.com/fortuna/gridiron/internal/logging"
	"github.com/fortuna/gridiron/internal/reconciliation"
	"github.com/fortuna/gridiron/internal/store"
)

// BaseURL is the public site.
const BaseURL = "https://www.pro-football-reference.com"

// ErrUnknownTeam is returned for a team code with no page on the site.
var ErrUnknownTeam = errors.New("unknown team")

// Client fetches and parses pro-football-reference pages. It does not retry;
// callers wrap calls in a retry policy.
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
		headers: fetch.DefaultBrowserHeaders(),
		parser:  parser,
		logger:  logger,
	}
}

// ScheduleURL is the league schedule page for a season.
func (c *Client) ScheduleURL(season int) string {
	return fmt.Sprintf("%s/years/%d/games.htm", c.baseURL, season)
}

// TeamPageURL is a team's season page.
func (c *Client) TeamPageURL(pfrPath string, season int) string {
	return fmt.Sprintf("%s/teams/%s/%d.htm", c.baseURL, pfrPath, season)
}

// Schedule returns the regular-season games of one week (0 = all weeks).
func (c *Client) Schedule(ctx context.Context, season, week int) ([]store.GameRaw, error) {
	payload, err := c.fetcher.Fetch(ctx, c.ScheduleURL(season), c.headers)
	if err != nil {
		return nil, err
	}
	doc, err := ParseHTML(payload.Body)
	if err != nil {
		return nil, err
	}
	return c.parser.ParseSchedule(doc, season, week)
}

// TeamPage fetches and parses the season page of the team with canonical
// code teamCode.
func (c *Client) TeamPage(ctx context.Context, teamCode string, season, week int) (*TeamPage, error) {
	team, ok := reconciliation.ByCode(teamCode)
	if !ok {
		return nil, errors.Wrapf(ErrUnknownTeam, "%q", teamCode)
	}

	payload, err := c.fetcher.Fetch(ctx, c.TeamPageURL(team.PFRPath, season), c.headers)
	if err != nil {
		return nil, err
	}
	doc, err := ParseHTML(payload.Body)
	if err != nil {
		return nil, err
	}
	return c.parser.ParseTeamPage(doc, team.Code, season, week)
}
