// Package dates implements the DateNormalizer interface.
// It turns an email Date header into a calendar date (YYYY-MM-DD),
// keeping the offset the header was written in.
package dates

import (
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"
	"unicode"

	"github.com/araddon/dateparse"
	"github.com/gaurav-prasanna/letterpipe/core"
)

// Layout is the canonical calendar-date format stored in records.
const Layout = "2006-01-02"

// HeaderNormalizer parses Date headers, falling back to the current date.
type HeaderNormalizer struct {
	// Now supplies the fallback date. Defaults to time.Now.
	Now    func() time.Time
	logger *slog.Logger
}

// New creates a HeaderNormalizer that logs parse failures to logger.
func New(logger *slog.Logger) *HeaderNormalizer {
	return &HeaderNormalizer{
		Now:    time.Now,
		logger: core.ComponentLogger(logger, "dates"),
	}
}

// Normalize returns the date component of header in its own offset.
// A missing or unparseable header yields today's date and a warning.
func (n *HeaderNormalizer) Normalize(header string) string {
	t, err := Parse(header)
	if err != nil {
		now := time.Now
		if n.Now != nil {
			now = n.Now
		}
		fallback := now().Format(Layout)
		n.logger.Warn("unparseable date header, using current date",
			slog.String("header", header),
			slog.String("fallback", fallback),
			slog.Any("error", err),
		)
		return fallback
	}
	return t.Format(Layout)
}

// Parse reads an RFC 5322 date, trailing comments such as "(UTC)" included.
// Headers outside that grammar get a second chance with a layout detector,
// but only when it sees a full calendar date.
func Parse(header string) (time.Time, error) {
	trimmed := strings.TrimSpace(header)
	if trimmed == "" {
		return time.Time{}, fmt.Errorf("empty date header")
	}

	t, err := mail.ParseDate(trimmed)
	if err == nil {
		return t, nil
	}

	if !hasCalendarDate(trimmed) {
		return time.Time{}, fmt.Errorf("parsing date %q: %w", trimmed, err)
	}
	t, lerr := dateparse.ParseAny(trimmed)
	if lerr != nil {
		return time.Time{}, fmt.Errorf("parsing date %q: %w", trimmed, err)
	}
	return t, nil
}

// hasCalendarDate reports whether the layout detector finds a day of the
// month in s. Bare numbers ("1234", unix timestamps) and year or
// month-year values are rejected.
func hasCalendarDate(s string) bool {
	if strings.IndexFunc(s, func(r rune) bool { return !unicode.IsDigit(r) }) < 0 {
		return false
	}
	layout, err := dateparse.ParseFormat(s)
	if err != nil {
		return false
	}
	// Day-of-month verbs are "2", "02" and "_2"; the year verbs contain a
	// "2" too, so drop them first.
	layout = strings.ReplaceAll(layout, "2006", "")
	return strings.Contains(layout, "2")
}
