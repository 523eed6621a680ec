package server

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

const dateOnlyLayout = "2006-01-02"

func parseOptionalBool(value string) (*bool, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, nil
	}
	parsed, err := strconv.ParseBool(trimmed)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

func parseOptionalTime(value string, endOfDay bool) (*time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, nil
	}
	if parsed, err := time.Parse(time.RFC3339, trimmed); err == nil {
		return &parsed, nil
	}
	if parsed, err := time.Parse(dateOnlyLayout, trimmed); err == nil {
		if endOfDay {
			parsed = time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), time.UTC)
		} else {
			parsed = time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, time.UTC)
		}
		return &parsed, nil
	}
	return nil, errors.New("invalid_time")
}

// parseDateRange reads from/to query values, reporting the offending field.
func parseDateRange(fromField, fromValue, toField, toValue string, toEndOfDay bool) (*time.Time, *time.Time, error) {
	from, err := parseOptionalTime(fromValue, false)
	if err != nil {
		return nil, nil, newValidationError(fromField, "invalid_"+fromField, "invalid "+fromField)
	}
	to, err := parseOptionalTime(toValue, toEndOfDay)
	if err != nil {
		return nil, nil, newValidationError(toField, "invalid_"+toField, "invalid "+toField)
	}
	return from, to, nil
}

func pathID(value string) string {
	return strings.TrimSpace(value)
}
