package copilot

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQuery(t *testing.T) {
	defaults := Defaults{Scope: ScopeEnterprise, GitHubEnt: "corp", GitHubOrg: "default-org"}

	t.Run("request overrides defaults", func(t *testing.T) {
		q := url.Values{
			"since":           {"2024-01-01"},
			"until":           {"2024-01-31"},
			"scope":           {"team-organization"},
			"githubOrg":       {"octo"},
			"githubTeam":      {"core"},
			"locale":          {"de-DE"},
			"excludeHolidays": {"true"},
		}
		opts := ParseQuery(q, defaults)
		assert.Equal(t, "2024-01-01", opts.Since)
		assert.Equal(t, "2024-01-31", opts.Until)
		assert.Equal(t, ScopeTeamOrganization, opts.Scope)
		assert.Equal(t, "octo", opts.GitHubOrg)
		assert.Equal(t, "corp", opts.GitHubEnt)
		assert.Equal(t, "core", opts.GitHubTeam)
		assert.Equal(t, "de-DE", opts.Locale)
		assert.True(t, opts.ExcludeHolidays)
		assert.False(t, opts.Mock)
	})

	t.Run("defaults fill gaps", func(t *testing.T) {
		opts := ParseQuery(url.Values{}, defaults)
		assert.Equal(t, ScopeEnterprise, opts.Scope)
		assert.Equal(t, "corp", opts.GitHubEnt)
		assert.Equal(t, "default-org", opts.GitHubOrg)
	})

	t.Run("organization when nothing configured", func(t *testing.T) {
		assert.Equal(t, ScopeOrganization, ParseQuery(url.Values{}, Defaults{}).Scope)
	})

	t.Run("mock flag", func(t *testing.T) {
		cases := map[string]bool{
			"mock":               true,
			"mock=true":          true,
			"mock=1":             true,
			"mock=false":         false,
			"isDataMocked=true":  true,
			"isDataMocked=false": false,
			"":                   false,
		}
		for raw, want := range cases {
			q, err := url.ParseQuery(raw)
			require.NoError(t, err)
			assert.Equal(t, want, ParseQuery(q, Defaults{}).Mock, raw)
		}
	})
}

func TestQueryOptions_MetricsPath(t *testing.T) {
	tests := []struct {
		name    string
		opts    QueryOptions
		want    string
		wantErr bool
	}{
		{name: "organization", opts: QueryOptions{Scope: ScopeOrganization, GitHubOrg: "octo"}, want: "orgs/octo/copilot/metrics"},
		{name: "team organization", opts: QueryOptions{Scope: ScopeTeamOrganization, GitHubOrg: "octo", GitHubTeam: "core"}, want: "orgs/octo/team/core/copilot/metrics"},
		{name: "enterprise", opts: QueryOptions{Scope: ScopeEnterprise, GitHubEnt: "corp"}, want: "enterprises/corp/copilot/metrics"},
		{name: "team enterprise", opts: QueryOptions{Scope: ScopeTeamEnterprise, GitHubEnt: "corp", GitHubTeam: "core"}, want: "enterprises/corp/team/core/copilot/metrics"},
		{name: "date range", opts: QueryOptions{Scope: ScopeOrganization, GitHubOrg: "octo", Since: "2024-01-01", Until: "2024-01-31"}, want: "orgs/octo/copilot/metrics?since=2024-01-01&until=2024-01-31"},
		{name: "escaped segments", opts: QueryOptions{Scope: ScopeOrganization, GitHubOrg: "a/b"}, want: "orgs/a%2Fb/copilot/metrics"},
		{name: "missing org", opts: QueryOptions{Scope: ScopeOrganization}, wantErr: true},
		{name: "missing team", opts: QueryOptions{Scope: ScopeTeamEnterprise, GitHubEnt: "corp"}, wantErr: true},
		{name: "unknown scope", opts: QueryOptions{Scope: "galaxy", GitHubOrg: "octo"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.opts.MetricsPath()
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidOptions)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestQueryOptions_SeatsAndTeamsPaths(t *testing.T) {
	org := QueryOptions{Scope: ScopeTeamOrganization, GitHubOrg: "octo", GitHubTeam: "core"}
	ent := QueryOptions{Scope: ScopeEnterprise, GitHubEnt: "corp", GitHubTeam: "platform"}

	p, err := org.SeatsPath()
	require.NoError(t, err)
	assert.Equal(t, "orgs/octo/copilot/billing/seats", p)

	p, err = ent.SeatsPath()
	require.NoError(t, err)
	assert.Equal(t, "enterprises/corp/copilot/billing/seats", p)

	p, err = org.TeamsPath()
	require.NoError(t, err)
	assert.Equal(t, "orgs/octo/teams", p)

	p, err = ent.TeamsPath()
	require.NoError(t, err)
	assert.Equal(t, "enterprises/corp/teams", p)

	p, err = org.TeamMembersPath()
	require.NoError(t, err)
	assert.Equal(t, "orgs/octo/teams/core/members", p)

	p, err = ent.TeamMembersPath()
	require.NoError(t, err)
	assert.Equal(t, "enterprises/corp/teams/platform/members", p)

	_, err = QueryOptions{Scope: ScopeOrganization, GitHubOrg: "octo"}.TeamMembersPath()
	assert.ErrorIs(t, err, ErrInvalidOptions)

	_, err = QueryOptions{Scope: ScopeEnterprise}.SeatsPath()
	assert.ErrorIs(t, err, ErrInvalidOptions)
}

func TestQueryOptions_Validate(t *testing.T) {
	tests := []struct {
		name    string
		opts    QueryOptions
		wantErr bool
	}{
		{name: "valid organization", opts: QueryOptions{Scope: ScopeOrganization, GitHubOrg: "octo"}},
		{name: "valid range", opts: QueryOptions{Scope: ScopeOrganization, GitHubOrg: "octo", Since: "2024-01-01", Until: "2024-01-02"}},
		{name: "inverted range", opts: QueryOptions{Scope: ScopeOrganization, GitHubOrg: "octo", Since: "2024-02-01", Until: "2024-01-02"}, wantErr: true},
		{name: "full year range", opts: QueryOptions{Scope: ScopeOrganization, GitHubOrg: "octo", Since: "2024-01-01", Until: "2024-12-31"}},
		{name: "range too long", opts: QueryOptions{Scope: ScopeOrganization, GitHubOrg: "octo", Since: "2023-01-01", Until: "2024-12-31"}, wantErr: true},
		{name: "bad date", opts: QueryOptions{Scope: ScopeOrganization, GitHubOrg: "octo", Since: "yesterday"}, wantErr: true},
		{name: "team scope without team", opts: QueryOptions{Scope: ScopeTeamOrganization, GitHubOrg: "octo"}, wantErr: true},
		{name: "enterprise without ent", opts: QueryOptions{Scope: ScopeEnterprise, GitHubOrg: "octo"}, wantErr: true},
		{name: "unknown scope", opts: QueryOptions{Scope: "x"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidOptions)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
