// Package gallery narrows a photo collection by tag, location and date taken.
package gallery

import (
	"fmt"
	"time"

	"github.com/ahmetcoskunkizilkaya/travel-gallery/internal/models"
)

const DateLayout = "2006-01-02"

// Filter holds the active criteria. Empty strings and nil bounds are unset.
type Filter struct {
	Tag      string
	Location string
	DateFrom *time.Time
	DateTo   *time.Time
}

// IsEmpty reports whether no criterion is active.
func (f Filter) IsEmpty() bool {
	return f.Tag == "" && f.Location == "" && f.DateFrom == nil && f.DateTo == nil
}

// Apply returns the photos matching every active criterion, in input order.
// With no criteria the input slice is returned as is.
func Apply(photos []models.Photo, f Filter) []models.Photo {
	if f.IsEmpty() {
		return photos
	}

	result := make([]models.Photo, 0, len(photos))
	for i := range photos {
		if f.Match(&photos[i]) {
			result = append(result, photos[i])
		}
	}
	return result
}

// Match reports whether p satisfies every active criterion.
func (f Filter) Match(p *models.Photo) bool {
	if f.Tag != "" && !p.HasTag(f.Tag) {
		return false
	}

	if f.Location != "" && (p.Location == nil || *p.Location != f.Location) {
		return false
	}

	if f.DateFrom == nil && f.DateTo == nil {
		return true
	}
	if p.DateTaken == nil {
		return false
	}

	taken := *p.DateTaken
	if f.DateFrom != nil && taken.Before(StartOfDay(*f.DateFrom)) {
		return false
	}
	if f.DateTo != nil && taken.After(EndOfDay(*f.DateTo)) {
		return false
	}
	return true
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the last nanosecond of t's calendar day.
func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// ParseDate accepts a calendar date (2006-01-02) or an RFC 3339 timestamp and
// returns the calendar date at midnight UTC.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
}

// ParseFilter builds a Filter from raw query values. Blank values stay unset.
func ParseFilter(tag, location, dateFrom, dateTo string) (Filter, error) {
	f := Filter{Tag: tag, Location: location}

	if dateFrom != "" {
		t, err := ParseDate(dateFrom)
		if err != nil {
			return Filter{}, fmt.Errorf("date_from: %w", err)
		}
		f.DateFrom = &t
	}
	if dateTo != "" {
		t, err := ParseDate(dateTo)
		if err != nil {
			return Filter{}, fmt.Errorf("date_to: %w", err)
		}
		f.DateTo = &t
	}
	return f, nil
}
