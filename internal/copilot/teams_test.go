package copilot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTeams(t *testing.T) {
	assert.Equal(t, []string{"core", "web"}, ParseTeams(" core, ,web,"))
	assert.Empty(t, ParseTeams(""))
}

func TestTeamSeriesDays(t *testing.T) {
	now := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

	days, err := TeamSeriesDays("", "", now)
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-02-24", "2024-02-25", "2024-02-26", "2024-02-27", "2024-02-28", "2024-02-29", "2024-03-01"}, days)

	days, err = TeamSeriesDays("2024-01-01", "2024-01-03", now)
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-01-01", "2024-01-02", "2024-01-03"}, days)

	_, err = TeamSeriesDays("", "bad", now)
	assert.ErrorIs(t, err, ErrInvalidOptions)

	_, err = TeamSeriesDays("1000-01-01", "9999-12-31", now)
	assert.ErrorIs(t, err, ErrInvalidOptions)

	_, err = TeamSeriesDays("1000-01-01", "", now)
	assert.ErrorIs(t, err, ErrInvalidOptions)
}

func TestMockTeamSeries_Deterministic(t *testing.T) {
	teams := []string{"core", "web"}
	days := []string{"2024-01-01", "2024-01-02"}

	first := MockTeamSeries(teams, days)
	second := MockTeamSeries(teams, days)
	require.Len(t, first, 4)
	assert.Equal(t, first, second)

	for _, m := range first {
		assert.GreaterOrEqual(t, m.AcceptanceRateCount, 70.0)
		assert.Less(t, m.AcceptanceRateCount, 90.0)
		assert.GreaterOrEqual(t, m.TotalActiveUsers, 10)
	}
	assert.Equal(t, "core", first[0].Team)
	assert.Equal(t, "2024-01-02", first[1].Day)
	assert.NotEqual(t, first[0], first[2])
}

func TestMockTeamComparison(t *testing.T) {
	cmp := MockTeamComparison([]string{"core", "web"})
	assert.Equal(t, cmp, MockTeamComparison([]string{"core", "web"}))
	for _, l := range cmp.Languages {
		assert.Contains(t, comparisonLanguages, l.Language)
	}
	for _, e := range cmp.Editors {
		assert.GreaterOrEqual(t, e.ActiveUsers, 1)
	}

	empty := MockTeamComparison(nil)
	assert.NotNil(t, empty.Languages)
	assert.Empty(t, empty.Editors)
}
