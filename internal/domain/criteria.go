package domain

import (
	"strings"
	"time"
)

// DateLayout is the wire form of criteria dates.
const DateLayout = "2006-01-02"

// FilterCriteria constrains which enriched quotations are kept.
// Empty strings and nil dates mean "no constraint".
type FilterCriteria struct {
	Company   string
	Email     string
	StartDate *time.Time
	EndDate   *time.Time
}

// ResetCriteria returns criteria with every constraint cleared.
// Filtering with it returns the input unchanged.
func ResetCriteria() FilterCriteria {
	return FilterCriteria{}
}

// IsEmpty reports whether no constraint is set.
func (c FilterCriteria) IsEmpty() bool {
	return c.Company == "" && c.Email == "" && c.StartDate == nil && c.EndDate == nil
}

// ParseDate parses a YYYY-MM-DD calendar date as midnight UTC.
func ParseDate(field, value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}

	t, err := time.ParseInLocation(DateLayout, value, time.UTC)
	if err != nil {
		return nil, NewValidationErrorWithValue(field, "must be a date in YYYY-MM-DD format", value)
	}

	return &t, nil
}

// NewFilterCriteria builds criteria from raw text inputs, rejecting
// malformed dates with a validation error.
func NewFilterCriteria(company, email, startDate, endDate string) (FilterCriteria, error) {
	start, err := ParseDate("start_date", startDate)
	if err != nil {
		return FilterCriteria{}, err
	}

	end, err := ParseDate("end_date", endDate)
	if err != nil {
		return FilterCriteria{}, err
	}

	return FilterCriteria{
		Company:   company,
		Email:     email,
		StartDate: start,
		EndDate:   end,
	}, nil
}

// startOfDay truncates t to midnight in its own location.
func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
