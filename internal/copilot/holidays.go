package copilot

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/de"
	"github.com/rickar/cal/v2/fr"
	"github.com/rickar/cal/v2/gb"
	"github.com/rickar/cal/v2/nl"
	"github.com/rickar/cal/v2/us"
	"go.uber.org/zap"
)

// DateLayout is the upstream day format.
const DateLayout = "2006-01-02"

var regionHolidays = map[string][]*cal.Holiday{
	"US": us.Holidays,
	"GB": gb.Holidays,
	"DE": de.Holidays,
	"FR": fr.Holidays,
	"NL": nl.Holidays,
}

// languageRegions resolves bare language tags such as "de".
var languageRegions = map[string]string{
	"en": "US",
	"de": "DE",
	"fr": "FR",
	"nl": "NL",
}

var (
	calendarsMu sync.Mutex
	calendars   = map[string]*cal.BusinessCalendar{}
)

// ParseDate parses a YYYY-MM-DD day (or an RFC 3339 timestamp, keeping its
// date) as noon UTC so weekday checks do not depend on the server timezone.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if len(s) > len(DateLayout) {
		if ts, err := time.Parse(time.RFC3339, s); err == nil {
			s = ts.Format(DateLayout)
		}
	}
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", s)
	}
	return d.Add(12 * time.Hour), nil
}

// IsWeekend reports whether t falls on Saturday or Sunday.
func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// IsHoliday reports whether t is a weekend or a public holiday in the region
// named by locale. Unknown locales only treat weekends as holidays.
func IsHoliday(t time.Time, locale string) bool {
	if IsWeekend(t) {
		return true
	}
	c := calendarFor(locale)
	if c == nil {
		return false
	}
	actual, observed, _ := c.IsHoliday(t)
	return actual || observed
}

func calendarFor(locale string) *cal.BusinessCalendar {
	region := regionFor(locale)
	if region == "" {
		return nil
	}
	calendarsMu.Lock()
	defer calendarsMu.Unlock()
	if c, ok := calendars[region]; ok {
		return c
	}
	holidays, ok := regionHolidays[region]
	if !ok {
		return nil
	}
	c := cal.NewBusinessCalendar()
	c.AddHoliday(holidays...)
	calendars[region] = c
	return c
}

// regionFor extracts an ISO region from a locale like "en-GB", "de_DE" or "fr".
func regionFor(locale string) string {
	locale = strings.TrimSpace(strings.ReplaceAll(locale, "_", "-"))
	if locale == "" {
		return ""
	}
	parts := strings.Split(locale, "-")
	if len(parts) > 1 {
		if region := strings.ToUpper(parts[len(parts)-1]); len(region) == 2 {
			return region
		}
	}
	lang := strings.ToLower(parts[0])
	if region, ok := languageRegions[lang]; ok {
		return region
	}
	if len(lang) == 2 {
		return strings.ToUpper(lang)
	}
	return ""
}

// FilterHolidays drops days that are holidays for locale when exclude is set.
// Days whose date cannot be parsed are kept.
func FilterHolidays(days []MetricsDay, exclude bool, locale string, logger *zap.Logger) []MetricsDay {
	if !exclude {
		return days
	}
	kept := make([]MetricsDay, 0, len(days))
	for _, day := range days {
		if day.Date == "" {
			kept = append(kept, day)
			continue
		}
		d, err := ParseDate(day.Date)
		if err != nil {
			if logger != nil {
				logger.Warn("Keeping metrics day with unparseable date", zap.String("date", day.Date), zap.Error(err))
			}
			kept = append(kept, day)
			continue
		}
		if !IsHoliday(d, locale) {
			kept = append(kept, day)
		}
	}
	return kept
}
