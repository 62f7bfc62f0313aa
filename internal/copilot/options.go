package copilot

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidOptions is wrapped by every option validation failure.
var ErrInvalidOptions = errors.New("invalid options")

// Scope selects which GitHub entity the metrics belong to.
type Scope string

const (
	ScopeOrganization     Scope = "organization"
	ScopeEnterprise       Scope = "enterprise"
	ScopeTeamOrganization Scope = "team-organization"
	ScopeTeamEnterprise   Scope = "team-enterprise"
)

// Valid reports whether s is a known scope.
func (s Scope) Valid() bool {
	switch s {
	case ScopeOrganization, ScopeEnterprise, ScopeTeamOrganization, ScopeTeamEnterprise:
		return true
	}
	return false
}

// Enterprise reports whether s addresses an enterprise.
func (s Scope) Enterprise() bool {
	return s == ScopeEnterprise || s == ScopeTeamEnterprise
}

// Defaults supply values for options the request leaves out.
type Defaults struct {
	Scope      Scope
	GitHubOrg  string
	GitHubEnt  string
	GitHubTeam string
}

// QueryOptions are the normalized request parameters every endpoint consumes.
type QueryOptions struct {
	Since           string
	Until           string
	Scope           Scope
	GitHubOrg       string
	GitHubEnt       string
	GitHubTeam      string
	Mock            bool
	Locale          string
	ExcludeHolidays bool
}

// ParseQuery builds QueryOptions from request query values.
func ParseQuery(q url.Values, d Defaults) QueryOptions {
	opts := QueryOptions{
		Since:      strings.TrimSpace(q.Get("since")),
		Until:      strings.TrimSpace(q.Get("until")),
		Scope:      Scope(firstNonEmpty(q.Get("scope"), string(d.Scope))),
		GitHubOrg:  firstNonEmpty(q.Get("githubOrg"), d.GitHubOrg),
		GitHubEnt:  firstNonEmpty(q.Get("githubEnt"), d.GitHubEnt),
		GitHubTeam: firstNonEmpty(q.Get("githubTeam"), d.GitHubTeam),
		Locale:     strings.TrimSpace(q.Get("locale")),
	}
	if opts.Scope == "" {
		opts.Scope = ScopeOrganization
	}
	opts.Mock = flag(q, "mock") || flag(q, "isDataMocked")
	opts.ExcludeHolidays = flag(q, "excludeHolidays")
	return opts
}

// flag treats a present parameter as true unless it parses as false.
func flag(q url.Values, key string) bool {
	if !q.Has(key) {
		return false
	}
	v := strings.TrimSpace(q.Get(key))
	if v == "" {
		return true
	}
	b, err := strconv.ParseBool(v)
	return err != nil || b
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// Validate checks scope requirements and the date range.
func (o QueryOptions) Validate() error {
	if !o.Scope.Valid() {
		return fmt.Errorf("%w: unknown scope %q", ErrInvalidOptions, o.Scope)
	}
	if (o.Scope == ScopeTeamOrganization || o.Scope == ScopeTeamEnterprise) && o.GitHubTeam == "" {
		return fmt.Errorf("%w: GitHub team must be set for team scopes", ErrInvalidOptions)
	}
	if o.Scope.Enterprise() {
		if o.GitHubEnt == "" {
			return fmt.Errorf("%w: GitHub enterprise must be set for enterprise scopes", ErrInvalidOptions)
		}
	} else if o.GitHubOrg == "" {
		return fmt.Errorf("%w: GitHub organization must be set for organization scopes", ErrInvalidOptions)
	}
	var since, until time.Time
	var err error
	if o.Since != "" {
		if since, err = ParseDate(o.Since); err != nil {
			return fmt.Errorf("%w: since: %v", ErrInvalidOptions, err)
		}
	}
	if o.Until != "" {
		if until, err = ParseDate(o.Until); err != nil {
			return fmt.Errorf("%w: until: %v", ErrInvalidOptions, err)
		}
	}
	if !since.IsZero() && !until.IsZero() && since.After(until) {
		return fmt.Errorf("%w: since date must be before until date", ErrInvalidOptions)
	}
	if !since.IsZero() && !until.IsZero() {
		return checkSpan(since, until)
	}
	return nil
}

// MetricsPath returns the upstream metrics path, relative to the API base URL.
func (o QueryOptions) MetricsPath() (string, error) {
	var p string
	switch o.Scope {
	case ScopeOrganization:
		if o.GitHubOrg == "" {
			return "", fmt.Errorf("%w: GitHub organization must be set for organization scope", ErrInvalidOptions)
		}
		p = fmt.Sprintf("orgs/%s/copilot/metrics", url.PathEscape(o.GitHubOrg))
	case ScopeTeamOrganization:
		if o.GitHubOrg == "" || o.GitHubTeam == "" {
			return "", fmt.Errorf("%w: GitHub organization and team must be set for team-organization scope", ErrInvalidOptions)
		}
		p = fmt.Sprintf("orgs/%s/team/%s/copilot/metrics", url.PathEscape(o.GitHubOrg), url.PathEscape(o.GitHubTeam))
	case ScopeEnterprise:
		if o.GitHubEnt == "" {
			return "", fmt.Errorf("%w: GitHub enterprise must be set for enterprise scope", ErrInvalidOptions)
		}
		p = fmt.Sprintf("enterprises/%s/copilot/metrics", url.PathEscape(o.GitHubEnt))
	case ScopeTeamEnterprise:
		if o.GitHubEnt == "" || o.GitHubTeam == "" {
			return "", fmt.Errorf("%w: GitHub enterprise and team must be set for team-enterprise scope", ErrInvalidOptions)
		}
		p = fmt.Sprintf("enterprises/%s/team/%s/copilot/metrics", url.PathEscape(o.GitHubEnt), url.PathEscape(o.GitHubTeam))
	default:
		return "", fmt.Errorf("%w: unknown scope %q", ErrInvalidOptions, o.Scope)
	}

	q := url.Values{}
	if o.Since != "" {
		q.Set("since", o.Since)
	}
	if o.Until != "" {
		q.Set("until", o.Until)
	}
	if len(q) > 0 {
		p += "?" + q.Encode()
	}
	return p, nil
}

// SeatsPath returns the upstream seat billing path. Seats are not available
// per team, so team scopes use their parent organization or enterprise.
func (o QueryOptions) SeatsPath() (string, error) {
	if o.Scope.Enterprise() {
		if o.GitHubEnt == "" {
			return "", fmt.Errorf("%w: GitHub enterprise must be set for enterprise scope", ErrInvalidOptions)
		}
		return fmt.Sprintf("enterprises/%s/copilot/billing/seats", url.PathEscape(o.GitHubEnt)), nil
	}
	if !o.Scope.Valid() {
		return "", fmt.Errorf("%w: unknown scope %q", ErrInvalidOptions, o.Scope)
	}
	if o.GitHubOrg == "" {
		return "", fmt.Errorf("%w: GitHub organization must be set for organization scope", ErrInvalidOptions)
	}
	return fmt.Sprintf("orgs/%s/copilot/billing/seats", url.PathEscape(o.GitHubOrg)), nil
}

// TeamsPath returns the upstream team listing path.
func (o QueryOptions) TeamsPath() (string, error) {
	if o.Scope.Enterprise() {
		if o.GitHubEnt == "" {
			return "", fmt.Errorf("%w: GitHub enterprise must be set for enterprise scope", ErrInvalidOptions)
		}
		return fmt.Sprintf("enterprises/%s/teams", url.PathEscape(o.GitHubEnt)), nil
	}
	if !o.Scope.Valid() {
		return "", fmt.Errorf("%w: unknown scope %q", ErrInvalidOptions, o.Scope)
	}
	if o.GitHubOrg == "" {
		return "", fmt.Errorf("%w: GitHub organization must be set for organization scope", ErrInvalidOptions)
	}
	return fmt.Sprintf("orgs/%s/teams", url.PathEscape(o.GitHubOrg)), nil
}

// TeamMembersPath returns the upstream team member listing path.
func (o QueryOptions) TeamMembersPath() (string, error) {
	if o.GitHubTeam == "" {
		return "", fmt.Errorf("%w: GitHub team must be set to list members", ErrInvalidOptions)
	}
	base, err := o.TeamsPath()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/%s/members", base, url.PathEscape(o.GitHubTeam)), nil
}
