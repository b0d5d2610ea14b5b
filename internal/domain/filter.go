package domain

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Enrich joins each quotation with the client sharing its ClientID.
//
// The result has one entry per quotation in input order. When clients holds
// several records with the same ClientID the last one wins. A quotation
// without a matching client keeps a nil Client.
func Enrich(quotations []Quotation, clients []Client) []EnrichedQuotation {
	byID := make(map[int]*Client, len(clients))
	for i := range clients {
		c := clients[i]
		byID[c.ClientID] = &c
	}

	out := make([]EnrichedQuotation, len(quotations))
	for i, q := range quotations {
		out[i] = EnrichedQuotation{Quotation: q, Client: byID[q.ClientID]}
	}

	return out
}

// Filter returns the records that satisfy every constraint in criteria,
// keeping their relative order. The input slice is not modified.
//
// Text constraints are case-insensitive substring matches against the
// joined client. Dates are compared at day granularity: the end date is
// inclusive, so a record created any time on that day is kept. A record
// without valid_until passes the end date check for that field, while a
// record without created_at never passes a date constraint.
func Filter(items []EnrichedQuotation, criteria FilterCriteria) []EnrichedQuotation {
	m := newMatcher(criteria)

	out := make([]EnrichedQuotation, 0, len(items))
	for _, item := range items {
		if m.match(item) {
			out = append(out, item)
		}
	}

	return out
}

type matcher struct {
	caser       cases.Caser
	company     string
	email       string
	start       *time.Time
	adjustedEnd *time.Time
}

func newMatcher(c FilterCriteria) *matcher {
	m := &matcher{caser: cases.Lower(language.Und)}
	m.company = m.caser.String(c.Company)
	m.email = m.caser.String(c.Email)

	if c.StartDate != nil {
		s := startOfDay(*c.StartDate)
		m.start = &s
	}

	if c.EndDate != nil {
		e := startOfDay(*c.EndDate).AddDate(0, 0, 1)
		m.adjustedEnd = &e
	}

	return m
}

func (m *matcher) match(item EnrichedQuotation) bool {
	return m.matchCompany(item.Client) &&
		m.matchEmail(item.Client) &&
		m.matchStart(item.CreatedAt) &&
		m.matchEnd(item.CreatedAt) &&
		m.matchValidUntil(item.ValidUntil)
}

func (m *matcher) matchCompany(c *Client) bool {
	if m.company == "" {
		return true
	}

	return c != nil && strings.Contains(m.caser.String(c.CompanyName), m.company)
}

func (m *matcher) matchEmail(c *Client) bool {
	if m.email == "" {
		return true
	}

	return c != nil && strings.Contains(m.caser.String(c.Email), m.email)
}

func (m *matcher) matchStart(createdAt *time.Time) bool {
	if m.start == nil {
		return true
	}

	return createdAt != nil && !createdAt.Before(*m.start)
}

func (m *matcher) matchEnd(createdAt *time.Time) bool {
	if m.adjustedEnd == nil {
		return true
	}

	return createdAt != nil && createdAt.Before(*m.adjustedEnd)
}

// matchValidUntil treats a missing valid_until as open-ended.
func (m *matcher) matchValidUntil(validUntil *time.Time) bool {
	if m.adjustedEnd == nil || validUntil == nil {
		return true
	}

	return validUntil.Before(*m.adjustedEnd)
}
