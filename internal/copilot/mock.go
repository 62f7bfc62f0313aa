package copilot

import (
	"embed"
	"encoding/json"
	"fmt"
	"time"
)

//go:embed mockdata/*.json
var mockData embed.FS

func loadMock(name string, v any) error {
	raw, err := mockData.ReadFile("mockdata/" + name)
	if err != nil {
		return fmt.Errorf("read mock template %s: %w", name, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode mock template %s: %w", name, err)
	}
	return nil
}

// MetricsTemplates returns a fresh copy of the mock metrics days for scope.
func MetricsTemplates(scope Scope) ([]MetricsDay, error) {
	name := "organization_metrics.json"
	if scope.Enterprise() {
		name = "enterprise_metrics.json"
	}
	var days []MetricsDay
	if err := loadMock(name, &days); err != nil {
		return nil, err
	}
	return days, nil
}

// SeatTemplates returns the mock seats for scope.
func SeatTemplates(scope Scope) ([]Seat, error) {
	name := "organization_seats.json"
	if scope.Enterprise() {
		name = "enterprise_seats.json"
	}
	var page SeatsPage
	if err := loadMock(name, &page); err != nil {
		return nil, err
	}
	return page.Projected(), nil
}

// TeamTemplates returns the mock team list.
func TeamTemplates() ([]Team, error) {
	var teams []Team
	if err := loadMock("teams.json", &teams); err != nil {
		return nil, err
	}
	return teams, nil
}

// DefaultWindowDays is the length of the window used when no bounds are given.
const DefaultWindowDays = 28

// MaxWindowDays bounds how many days, inclusive, a date range may cover.
const MaxWindowDays = 366

// checkSpan rejects ranges longer than MaxWindowDays. Reversed ranges pass;
// they are empty.
func checkSpan(start, end time.Time) error {
	if end.Sub(start) > (MaxWindowDays-1)*24*time.Hour {
		return fmt.Errorf("%w: date range exceeds %d days", ErrInvalidOptions, MaxWindowDays)
	}
	return nil
}

// Window resolves since/until into an inclusive day range. Missing bounds
// default to a trailing DefaultWindowDays window ending on now's date.
// Ranges longer than MaxWindowDays are rejected.
func Window(since, until string, now time.Time) (start, end time.Time, err error) {
	today, _ := ParseDate(now.UTC().Format(DateLayout))
	start = today.AddDate(0, 0, -(DefaultWindowDays - 1))
	end = today
	if since != "" {
		if start, err = ParseDate(since); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: since: %v", ErrInvalidOptions, err)
		}
	}
	if until != "" {
		if end, err = ParseDate(until); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: until: %v", ErrInvalidOptions, err)
		}
	}
	if err := checkSpan(start, end); err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

// Shift rewrites template days onto the requested date range. Each retained
// day takes template index%len(templates) with only its date replaced. With
// excludeHolidays, weekends and locale holidays are skipped, not zeroed.
func Shift(templates []MetricsDay, since, until string, excludeHolidays bool, locale string, now time.Time) ([]MetricsDay, error) {
	start, end, err := Window(since, until, now)
	if err != nil {
		return nil, err
	}
	out := []MetricsDay{}
	if len(templates) == 0 {
		return out, nil
	}
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if excludeHolidays && IsHoliday(d, locale) {
			continue
		}
		entry := templates[len(out)%len(templates)]
		entry.Date = d.Format(DateLayout)
		out = append(out, entry)
	}
	return out, nil
}
