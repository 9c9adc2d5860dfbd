package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

// ParseStartDate accepts YYYY-MM-DD (start of that day, UTC) or RFC3339.
func ParseStartDate(raw string) (time.Time, error) {
	return parseDate(raw, false)
}

// ParseEndDate accepts YYYY-MM-DD (last nanosecond of that day, UTC) or RFC3339.
func ParseEndDate(raw string) (time.Time, error) {
	return parseDate(raw, true)
}

func parseDate(raw string, endOfDay bool) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("%w: empty", ErrInvalidDate)
	}
	if t, err := time.Parse(dateLayout, raw); err == nil {
		if endOfDay {
			t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
		}
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q is neither YYYY-MM-DD nor RFC3339", ErrInvalidDate, raw)
	}
	return t.UTC(), nil
}

// ParseOptionalUUID returns nil for an empty string.
func ParseOptionalUUID(raw string) (*uuid.UUID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// QueryInt parses an optional integer query value, falling back to def.
func QueryInt(raw string, def int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}
