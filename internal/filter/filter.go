// Package filter resolves raw, untrusted list-query parameters into a
// normalized set of criteria for the expense store. Resolution is pure
// and independent of the caller's identity.
package filter

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jinzhu/now"
)

// ErrInvalidRange indicates contradictory or incomplete filter bounds.
var ErrInvalidRange = errors.New("invalid filter range")

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// Date preset keywords.
const (
	PresetWeek    = "week"
	PresetMonth   = "month"
	Preset3Months = "3months"
)

// Params holds the raw query parameters of a list request.
type Params struct {
	Filter      string
	StartDate   string
	EndDate     string
	Category    string
	MinAmount   string
	MaxAmount   string
	Description string
}

// Criteria is the normalized predicate derived from Params.
// Nil pointer fields impose no restriction. Date bounds are inclusive
// and normalized to midnight UTC.
type Criteria struct {
	DateFrom    *time.Time
	DateTo      *time.Time
	Categories  []string
	MinAmount   *float64
	MaxAmount   *float64
	Description string
}

// Resolve maps raw parameters to Criteria, evaluated relative to at.
//
// Date modes are mutually exclusive; the first matching mode wins:
// a recognized preset keyword, then a custom [StartDate, EndDate] range
// (both bounds required, StartDate <= EndDate), then unbounded.
// Amount bounds are lenient: a value that does not parse as a positive
// float is silently dropped. The min <= max cross-field invariant is
// enforced before anything else.
func Resolve(p Params, at time.Time) (Criteria, error) {
	c := Criteria{}

	// Amount bounds. Dropping bad values is deliberate, unlike the
	// strict date handling below.
	c.MinAmount = parseAmount(p.MinAmount)
	c.MaxAmount = parseAmount(p.MaxAmount)
	if c.MinAmount != nil && c.MaxAmount != nil && *c.MinAmount > *c.MaxAmount {
		return Criteria{}, fmt.Errorf("%w: minAmount greater than maxAmount", ErrInvalidRange)
	}

	from, to, err := resolveDateRange(p, at)
	if err != nil {
		return Criteria{}, err
	}
	c.DateFrom = from
	c.DateTo = to

	// Categories are not validated against the closed enum here; an
	// unknown category simply matches nothing.
	if p.Category != "" {
		for _, raw := range strings.Split(p.Category, ",") {
			if trimmed := strings.TrimSpace(raw); trimmed != "" {
				c.Categories = append(c.Categories, trimmed)
			}
		}
	}

	c.Description = p.Description

	return c, nil
}

// resolveDateRange picks the date mode and returns inclusive bounds.
func resolveDateRange(p Params, at time.Time) (*time.Time, *time.Time, error) {
	cal := now.New(midnightUTC(at))

	switch p.Filter {
	case PresetWeek:
		// Sunday-to-Saturday span containing at.
		start := midnightUTC(cal.BeginningOfWeek())
		end := start.AddDate(0, 0, 6)
		return &start, &end, nil

	case PresetMonth:
		start := midnightUTC(cal.BeginningOfMonth())
		end := midnightUTC(cal.EndOfMonth())
		return &start, &end, nil

	case Preset3Months:
		// First day of (current month - 2) through last day of the
		// current month. Stepping back from the first of the month
		// avoids day-of-month overflow.
		start := midnightUTC(cal.BeginningOfMonth()).AddDate(0, -2, 0)
		end := midnightUTC(cal.EndOfMonth())
		return &start, &end, nil
	}

	if p.StartDate == "" && p.EndDate == "" {
		return nil, nil, nil
	}

	if p.StartDate == "" || p.EndDate == "" {
		return nil, nil, fmt.Errorf("%w: both startDate and endDate are required", ErrInvalidRange)
	}

	start, err := time.ParseInLocation(DateLayout, p.StartDate, time.UTC)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: unparseable startDate %q", ErrInvalidRange, p.StartDate)
	}
	end, err := time.ParseInLocation(DateLayout, p.EndDate, time.UTC)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: unparseable endDate %q", ErrInvalidRange, p.EndDate)
	}
	if start.After(end) {
		return nil, nil, fmt.Errorf("%w: startDate after endDate", ErrInvalidRange)
	}

	return &start, &end, nil
}

// parseAmount parses a positive float bound, returning nil for anything
// that does not qualify.
func parseAmount(raw string) *float64 {
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v <= 0 {
		return nil
	}
	return &v
}

// midnightUTC truncates a time to its calendar day in UTC.
func midnightUTC(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
