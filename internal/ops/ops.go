// Package ops implements burner's user-facing operations on top of the
// record store. The CLI, the MCP server and the web UI all call into it.
package ops

import (
	"strings"
	"time"

	"github.com/burnerhq/burner/internal/daily"
	"github.com/burnerhq/burner/internal/errors"
)

// now is replaced in tests that depend on "today".
var now = time.Now

// ParseDate parses a YYYY-MM-DD date, "today" or "yesterday" in loc.
// Empty means today.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	t, err := daily.ParseDay(s, loc, now())
	if err != nil {
		return time.Time{}, errors.NewInvalidRequest(err.Error())
	}
	return t, nil
}

// parseRequiredDate is ParseDate without the empty-means-today default.
func parseRequiredDate(field, s string, loc *time.Location) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return time.Time{}, errors.NewInvalidRequest(field + " is required")
	}
	return ParseDate(s, loc)
}

// ParseMonth parses YYYY-MM in loc. Empty means the current month.
func ParseMonth(s string, loc *time.Location) (time.Time, error) {
	t, err := daily.ParseMonth(s, loc, now())
	if err != nil {
		return time.Time{}, errors.NewInvalidRequest(err.Error())
	}
	return t, nil
}

// ParseMood parses an optional mood name.
func ParseMood(s *string) (*daily.Mood, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, nil
	}
	m, err := daily.ParseMood(*s)
	if err != nil {
		return nil, errors.NewInvalidRequest(err.Error())
	}
	return &m, nil
}
