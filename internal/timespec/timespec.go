package timespec

import (
	"fmt"
	"time"
)

// Parse parses a time specification. Two formats are supported:
//   - Go duration format: "24h", "30m", "1h30m" — relative to now, in the
//     past ("24h" means "24 hours ago")
//   - RFC3339 timestamps: "2026-08-01T00:00:00Z"
func Parse(spec string) (time.Time, error) {
	if spec == "" {
		return time.Time{}, fmt.Errorf("empty time specification")
	}

	if t, err := time.Parse(time.RFC3339, spec); err == nil {
		return t, nil
	}

	if d, err := time.ParseDuration(spec); err == nil {
		return time.Now().Add(-d), nil
	}

	return time.Time{}, fmt.Errorf("invalid time specification: %s (use a duration like '24h' or RFC3339 like '2026-08-01T00:00:00Z')", spec)
}

// ParseRange parses --since and --until flags into a time window. Zero
// times mean "no bound" on that side. When both bounds are given, since
// must precede until.
func ParseRange(since, until string) (time.Time, time.Time, error) {
	var sinceAt, untilAt time.Time
	var err error

	if since != "" {
		sinceAt, err = Parse(since)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --since: %w", err)
		}
	}

	if until != "" {
		untilAt, err = Parse(until)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --until: %w", err)
		}
	}

	if !sinceAt.IsZero() && !untilAt.IsZero() && !sinceAt.Before(untilAt) {
		return time.Time{}, time.Time{}, fmt.Errorf("--since must be before --until")
	}

	return sinceAt, untilAt, nil
}

// InRange reports whether t falls inside the window. Zero bounds are open.
func InRange(t, since, until time.Time) bool {
	if !since.IsZero() && t.Before(since) {
		return false
	}
	if !until.IsZero() && t.After(until) {
		return false
	}
	return true
}
