package copilot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := ParseDate(s)
	require.NoError(t, err)
	return d
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-03-09")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC), d)

	d, err = ParseDate("2024-03-09T23:30:00-05:00")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-09", d.Format(DateLayout))

	_, err = ParseDate("03/09/2024")
	assert.Error(t, err)
}

func TestIsHoliday(t *testing.T) {
	tests := []struct {
		name   string
		date   string
		locale string
		want   bool
	}{
		{name: "saturday any locale", date: "2024-01-06", locale: "", want: true},
		{name: "sunday unknown locale", date: "2024-01-07", locale: "xx-ZZ", want: true},
		{name: "plain weekday", date: "2024-01-09", locale: "en-US", want: false},
		{name: "us independence day", date: "2024-07-04", locale: "en-US", want: true},
		{name: "independence day not german", date: "2024-07-04", locale: "de-DE", want: false},
		{name: "german unity day", date: "2024-10-03", locale: "de-DE", want: true},
		{name: "bare language tag", date: "2024-10-03", locale: "de", want: true},
		{name: "underscore locale", date: "2024-12-25", locale: "en_GB", want: true},
		{name: "unknown locale weekday", date: "2024-12-25", locale: "tlh", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsHoliday(mustDate(t, tt.date), tt.locale))
		})
	}
}

func TestFilterHolidays(t *testing.T) {
	days := []MetricsDay{
		{Date: "2024-07-03"},
		{Date: "2024-07-04"},
		{Date: "2024-07-06"},
		{Date: "not-a-date"},
		{Date: "2024-07-08"},
	}

	t.Run("disabled returns input", func(t *testing.T) {
		assert.Len(t, FilterHolidays(days, false, "en-US", nil), len(days))
	})

	t.Run("drops holidays and keeps unparseable", func(t *testing.T) {
		core, recorded := observer.New(zapcore.WarnLevel)
		got := FilterHolidays(days, true, "en-US", zap.New(core))

		var dates []string
		for _, d := range got {
			dates = append(dates, d.Date)
		}
		assert.Equal(t, []string{"2024-07-03", "not-a-date", "2024-07-08"}, dates)
		assert.Equal(t, 1, recorded.Len())
	})
}
