// Package github talks to the GitHub REST API on behalf of a resolved
// credential. Each call carries its own Authorization header, so one Client
// serves every caller.
package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	gh "github.com/google/go-github/v59/github"
	"github.com/sofatutor/copilot-metrics-gateway/internal/copilot"
	"github.com/sofatutor/copilot-metrics-gateway/internal/obfuscate"
	"go.uber.org/zap"
)

const (
	// DefaultAPIURL is the public GitHub API.
	DefaultAPIURL = "https://api.github.com/"
	// APIVersion pins the REST API version sent with every request.
	APIVersion = "2022-11-28"
	// MediaType is the Accept header GitHub recommends.
	MediaType = "application/vnd.github+json"

	seatsPerPage = 100
	teamsPerPage = 100
)

// UpstreamError carries the HTTP status of a failed upstream call.
type UpstreamError struct {
	Status int
	Err    error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("github api: status %d: %v", e.Status, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// StatusCode returns the upstream status.
func (e *UpstreamError) StatusCode() int { return e.Status }

// Client issues GitHub API calls.
type Client struct {
	baseURL *url.URL
	base    http.RoundTripper
	timeout time.Duration
	logger  *zap.Logger
}

// NewClient creates a Client for apiURL. Outbound requests honour the
// HTTP_PROXY family of environment variables.
func NewClient(apiURL string, timeout time.Duration, logger *zap.Logger) (*Client, error) {
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	if !strings.HasSuffix(apiURL, "/") {
		apiURL += "/"
	}
	u, err := url.Parse(apiURL)
	if err != nil {
		return nil, fmt.Errorf("invalid GitHub API URL %q: %w", apiURL, err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = http.ProxyFromEnvironment
	return &Client{baseURL: u, base: transport, timeout: timeout, logger: logger}, nil
}

// headerTransport stamps the API version headers and a fixed Authorization
// value onto each outgoing request.
type headerTransport struct {
	base          http.RoundTripper
	authorization string
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	r.Header.Set("Accept", MediaType)
	r.Header.Set("X-GitHub-Api-Version", APIVersion)
	if t.authorization != "" {
		r.Header.Set("Authorization", t.authorization)
	}
	return t.base.RoundTrip(r)
}

// api returns a go-github client authenticated with authorization.
func (c *Client) api(authorization string) *gh.Client {
	api := gh.NewClient(&http.Client{
		Timeout:   c.timeout,
		Transport: &headerTransport{base: c.base, authorization: authorization},
	})
	api.BaseURL = c.baseURL
	return api
}

// get decodes the JSON body of GET path into out. Logs carry the
// credential in redacted form only.
func (c *Client) get(ctx context.Context, api *gh.Client, authorization, path string, out any) (*gh.Response, error) {
	req, err := api.NewRequest(http.MethodGet, path, nil)
	if err != nil {
		return nil, &UpstreamError{Status: http.StatusInternalServerError, Err: err}
	}
	start := time.Now()
	resp, err := api.Do(ctx, req, out)
	fields := []zap.Field{
		zap.String("path", path),
		zap.String("authorization", obfuscate.ObfuscateAuthorization(authorization)),
		zap.Duration("duration", time.Since(start)),
	}
	if resp != nil {
		fields = append(fields, zap.Int("status", resp.StatusCode))
	}
	if err != nil {
		c.logger.Warn("GitHub API request failed", append(fields, zap.Error(err))...)
		return resp, wrap(err)
	}
	c.logger.Debug("GitHub API request", fields...)
	return resp, nil
}

// wrap converts go-github errors into an UpstreamError, defaulting to 500.
func wrap(err error) error {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return err
	}
	status := http.StatusInternalServerError
	var (
		errResp   *gh.ErrorResponse
		rateErr   *gh.RateLimitError
		abuseErr  *gh.AbuseRateLimitError
		acceptErr *gh.AcceptedError
	)
	switch {
	case errors.As(err, &errResp) && errResp.Response != nil:
		status = errResp.Response.StatusCode
	case errors.As(err, &rateErr) && rateErr.Response != nil:
		status = rateErr.Response.StatusCode
	case errors.As(err, &abuseErr) && abuseErr.Response != nil:
		status = abuseErr.Response.StatusCode
	case errors.As(err, &acceptErr):
		status = http.StatusAccepted
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
	}
	return &UpstreamError{Status: status, Err: err}
}

// FetchMetrics returns the Copilot metrics days at path.
func (c *Client) FetchMetrics(ctx context.Context, authorization, path string) ([]copilot.MetricsDay, error) {
	var days []copilot.MetricsDay
	if _, err := c.get(ctx, c.api(authorization), authorization, path, &days); err != nil {
		return nil, err
	}
	if days == nil {
		days = []copilot.MetricsDay{}
	}
	return days, nil
}

// FetchSeats reads every page of the seat billing listing at path. The page
// count comes from total_seats on the first page.
func (c *Client) FetchSeats(ctx context.Context, authorization, path string) ([]copilot.Seat, error) {
	api := c.api(authorization)
	var seats []copilot.Seat
	pages := 1
	for page := 1; page <= pages; page++ {
		var p copilot.SeatsPage
		if _, err := c.get(ctx, api, authorization, fmt.Sprintf("%s?per_page=%d&page=%d", path, seatsPerPage, page), &p); err != nil {
			return nil, err
		}
		if page == 1 {
			seats = make([]copilot.Seat, 0, p.TotalSeats)
			pages = (p.TotalSeats + seatsPerPage - 1) / seatsPerPage
		}
		seats = append(seats, p.Projected()...)
	}
	return seats, nil
}

// ListTeams lists the teams of the organization or enterprise in opts.
func (c *Client) ListTeams(ctx context.Context, authorization string, opts copilot.QueryOptions) ([]copilot.Team, error) {
	api := c.api(authorization)
	teams := []copilot.Team{}

	if !opts.Scope.Enterprise() {
		if opts.GitHubOrg == "" {
			return nil, fmt.Errorf("%w: GitHub organization must be set", copilot.ErrInvalidOptions)
		}
		list := &gh.ListOptions{PerPage: teamsPerPage, Page: 1}
		for {
			page, resp, err := api.Teams.ListTeams(ctx, opts.GitHubOrg, list)
			if err != nil {
				return nil, wrap(err)
			}
			for _, t := range page {
				teams = append(teams, copilot.Team{Name: t.GetName(), Slug: t.GetSlug()})
			}
			if resp.NextPage == 0 {
				return teams, nil
			}
			list.Page = resp.NextPage
		}
	}

	path, err := opts.TeamsPath()
	if err != nil {
		return nil, err
	}
	for page := 1; page != 0; {
		var batch []copilot.Team
		resp, err := c.get(ctx, api, authorization, fmt.Sprintf("%s?per_page=%d&page=%d", path, teamsPerPage, page), &batch)
		if err != nil {
			return nil, err
		}
		teams = append(teams, batch...)
		page = resp.NextPage
	}
	return teams, nil
}

// ListTeamMembers lists the members of the team in opts.
func (c *Client) ListTeamMembers(ctx context.Context, authorization string, opts copilot.QueryOptions) ([]copilot.TeamMember, error) {
	api := c.api(authorization)
	members := []copilot.TeamMember{}

	if !opts.Scope.Enterprise() {
		if opts.GitHubOrg == "" || opts.GitHubTeam == "" {
			return nil, fmt.Errorf("%w: GitHub organization and team must be set", copilot.ErrInvalidOptions)
		}
		list := &gh.TeamListTeamMembersOptions{ListOptions: gh.ListOptions{PerPage: teamsPerPage, Page: 1}}
		for {
			users, resp, err := api.Teams.ListTeamMembersBySlug(ctx, opts.GitHubOrg, opts.GitHubTeam, list)
			if err != nil {
				return nil, wrap(err)
			}
			for _, u := range users {
				members = append(members, copilot.TeamMember{Login: u.GetLogin(), ID: u.GetID()})
			}
			if resp.NextPage == 0 {
				return members, nil
			}
			list.Page = resp.NextPage
		}
	}

	path, err := opts.TeamMembersPath()
	if err != nil {
		return nil, err
	}
	for page := 1; page != 0; {
		var batch []copilot.TeamMember
		resp, err := c.get(ctx, api, authorization, fmt.Sprintf("%s?per_page=%d&page=%d", path, teamsPerPage, page), &batch)
		if err != nil {
			return nil, err
		}
		members = append(members, batch...)
		page = resp.NextPage
	}
	return members, nil
}

// ExchangeInstallationToken trades a signed app assertion for an
// installation access token.
func (c *Client) ExchangeInstallationToken(ctx context.Context, installationID int64, assertion string) (string, error) {
	api := c.api("Bearer " + assertion)
	tok, _, err := api.Apps.CreateInstallationToken(ctx, installationID, nil)
	if err != nil {
		return "", wrap(err)
	}
	if tok.GetToken() == "" {
		return "", &UpstreamError{Status: http.StatusBadGateway, Err: errors.New("installation token response carried no token")}
	}
	return tok.GetToken(), nil
}
