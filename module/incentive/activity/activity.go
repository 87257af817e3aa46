// Package activity decides whether an incentive currently counts as active.
package activity

import (
	"fmt"
	"strings"
	"time"

	"github.com/TristanXpress/recall-alchemy-portal/module/incentive/domain"
)

// DefaultBuffer absorbs clock and timezone skew between the moment a record
// is read and the moment it is evaluated.
const DefaultBuffer = time.Minute

// The dashboard writes datetime-local values without an offset, in
// Philippine Time.
var manilaZone = time.FixedZone("PHT", 8*60*60)

type Filter struct {
	Buffer time.Duration
}

// NewFilter clamps a negative buffer to zero, which makes the filter the
// plain end > now check. config.Load rejects negative ACTIVITY_BUFFER values
// before they reach here.
func NewFilter(buffer time.Duration) Filter {
	if buffer < 0 {
		buffer = 0
	}
	return Filter{Buffer: buffer}
}

// IsCurrentlyActive reports enabled && end > now-Buffer. The start date is
// deliberately not consulted: an enabled incentive that has not started yet
// already counts as active.
func (f Filter) IsCurrentlyActive(enabled bool, end, now time.Time) (bool, error) {
	if end.IsZero() {
		return false, fmt.Errorf("%w: end timestamp is missing", domain.ErrInvalidTimestamp)
	}
	return enabled && end.After(now.Add(-f.Buffer)), nil
}

func IsCurrentlyActive(enabled bool, end, now time.Time) (bool, error) {
	return Filter{Buffer: DefaultBuffer}.IsCurrentlyActive(enabled, end, now)
}

// IsCurrentlyActiveRaw parses a stored end timestamp before evaluating it.
func (f Filter) IsCurrentlyActiveRaw(enabled bool, rawEnd string, now time.Time) (bool, error) {
	end, err := ParseTimestamp(rawEnd)
	if err != nil {
		return false, err
	}
	return f.IsCurrentlyActive(enabled, end, now)
}

// IsWithinWindow is the strict start <= now <= end check. It is only used by
// the customer listing that still requires an incentive to have started.
func IsWithinWindow(start, end, now time.Time) (bool, error) {
	if start.IsZero() {
		return false, fmt.Errorf("%w: start timestamp is missing", domain.ErrInvalidTimestamp)
	}
	if end.IsZero() {
		return false, fmt.Errorf("%w: end timestamp is missing", domain.ErrInvalidTimestamp)
	}
	return !now.Before(start) && !now.After(end), nil
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// ParseTimestamp accepts RFC 3339 and the dashboard's datetime-local format.
// Values without an offset are read as Philippine time.
func ParseTimestamp(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("%w: timestamp is missing", domain.ErrInvalidTimestamp)
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, raw, manilaZone); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: cannot parse %q", domain.ErrInvalidTimestamp, raw)
}
