package copilot

import (
	"fmt"
	"hash/fnv"
	"math/rand"
	"strings"
	"time"
)

// TeamDayMetrics is one synthetic day of usage for a team.
type TeamDayMetrics struct {
	Team                string  `json:"team"`
	Day                 string  `json:"day"`
	AcceptanceRateCount float64 `json:"acceptance_rate_count"`
	AcceptanceRateLines float64 `json:"acceptance_rate_lines"`
	TotalSuggestions    int     `json:"total_suggestions"`
	TotalAcceptances    int     `json:"total_acceptances"`
	TotalLinesSuggested int     `json:"total_lines_suggested"`
	TotalLinesAccepted  int     `json:"total_lines_accepted"`
	TotalActiveUsers    int     `json:"total_active_users"`
	IDECompletionsUsers int     `json:"ide_completions_users"`
	IDEChatUsers        int     `json:"ide_chat_users"`
	GitHubChatUsers     int     `json:"github_chat_users"`
	GitHubPRUsers       int     `json:"github_pr_users"`
}

// LanguageTeamData is a team's acceptance rate for one language.
type LanguageTeamData struct {
	Team           string  `json:"team"`
	Language       string  `json:"language"`
	AcceptanceRate float64 `json:"acceptance_rate"`
}

// EditorTeamData is a team's active users for one editor.
type EditorTeamData struct {
	Team        string `json:"team"`
	Editor      string `json:"editor"`
	ActiveUsers int    `json:"active_users"`
}

// TeamComparison groups per team language and editor breakdowns.
type TeamComparison struct {
	Languages []LanguageTeamData `json:"languages"`
	Editors   []EditorTeamData   `json:"editors"`
}

var (
	comparisonLanguages = []string{"TypeScript", "JavaScript", "Python", "Java", "Go"}
	comparisonEditors   = []string{"VS Code", "IntelliJ IDEA", "WebStorm", "PyCharm", "GoLand"}
)

// ParseTeams splits a comma separated team list, dropping blanks.
func ParseTeams(list string) []string {
	var teams []string
	for _, t := range strings.Split(list, ",") {
		if t = strings.TrimSpace(t); t != "" {
			teams = append(teams, t)
		}
	}
	return teams
}

// seeded returns a generator fixed by the given parts, so the same team and
// day always produce the same numbers.
func seeded(parts ...string) *rand.Rand {
	h := fnv.New64a()
	for _, p := range parts {
		_, _ = h.Write([]byte(p))
		_, _ = h.Write([]byte{0})
	}
	return rand.New(rand.NewSource(int64(h.Sum64())))
}

// TeamSeriesDays resolves the day list for team series: the given bounds, or
// the trailing seven days ending on until (or now).
func TeamSeriesDays(since, until string, now time.Time) ([]string, error) {
	end, err := ParseDate(now.UTC().Format(DateLayout))
	if err != nil {
		return nil, err
	}
	if until != "" {
		if end, err = ParseDate(until); err != nil {
			return nil, fmt.Errorf("%w: until: %v", ErrInvalidOptions, err)
		}
	}
	start := end.AddDate(0, 0, -6)
	if since != "" {
		if start, err = ParseDate(since); err != nil {
			return nil, fmt.Errorf("%w: since: %v", ErrInvalidOptions, err)
		}
	}
	if err := checkSpan(start, end); err != nil {
		return nil, err
	}
	var days []string
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d.Format(DateLayout))
	}
	return days, nil
}

// MockTeamSeries generates deterministic daily metrics for every team.
func MockTeamSeries(teams, days []string) []TeamDayMetrics {
	out := make([]TeamDayMetrics, 0, len(teams)*len(days))
	for _, team := range teams {
		for _, day := range days {
			r := seeded("series", team, day)
			out = append(out, TeamDayMetrics{
				Team:                team,
				Day:                 day,
				AcceptanceRateCount: 70 + r.Float64()*20,
				AcceptanceRateLines: 65 + r.Float64()*25,
				TotalSuggestions:    100 + r.Intn(200),
				TotalAcceptances:    70 + r.Intn(150),
				TotalLinesSuggested: 500 + r.Intn(1000),
				TotalLinesAccepted:  350 + r.Intn(700),
				TotalActiveUsers:    10 + r.Intn(15),
				IDECompletionsUsers: 8 + r.Intn(12),
				IDEChatUsers:        5 + r.Intn(8),
				GitHubChatUsers:     3 + r.Intn(6),
				GitHubPRUsers:       2 + r.Intn(5),
			})
		}
	}
	return out
}

// MockTeamComparison generates deterministic language and editor breakdowns.
func MockTeamComparison(teams []string) TeamComparison {
	cmp := TeamComparison{Languages: []LanguageTeamData{}, Editors: []EditorTeamData{}}
	for _, team := range teams {
		r := seeded("comparison", team)
		for _, lang := range comparisonLanguages {
			if r.Float64() > 0.3 {
				cmp.Languages = append(cmp.Languages, LanguageTeamData{Team: team, Language: lang, AcceptanceRate: 65 + r.Float64()*25})
			}
		}
		for _, editor := range comparisonEditors {
			if r.Float64() > 0.4 {
				cmp.Editors = append(cmp.Editors, EditorTeamData{Team: team, Editor: editor, ActiveUsers: 1 + r.Intn(8)})
			}
		}
	}
	return cmp
}
