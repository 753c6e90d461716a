package domain

import (
	"fmt"
	"time"
)

// TimeRange is a half-open interval [Start, End). Start is always strictly
// before End; construct values through NewTimeRange to keep that invariant.
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewTimeRange returns a TimeRange covering [start, end).
// Returns ErrInvalidInput when start is not strictly before end.
func NewTimeRange(start, end time.Time) (TimeRange, error) {
	if !start.Before(end) {
		return TimeRange{}, fmt.Errorf("%w: time range start must be before end", ErrInvalidInput)
	}
	return TimeRange{Start: start, End: end}, nil
}

// IsZero reports whether the range is the zero value.
func (t TimeRange) IsZero() bool {
	return t.Start.IsZero() && t.End.IsZero()
}

// Overlaps reports whether the two half-open intervals intersect.
// Touching endpoints do not overlap: [10:00, 11:00) and [11:00, 12:00)
// are compatible bookings.
func (t TimeRange) Overlaps(other TimeRange) bool {
	return t.Start.Before(other.End) && other.Start.Before(t.End)
}

// Contains reports whether other lies entirely within t.
func (t TimeRange) Contains(other TimeRange) bool {
	return !other.Start.Before(t.Start) && !other.End.After(t.End)
}

// Equal reports whether both ranges cover the same instant pair.
func (t TimeRange) Equal(other TimeRange) bool {
	return t.Start.Equal(other.Start) && t.End.Equal(other.End)
}

func (t TimeRange) String() string {
	return fmt.Sprintf("[%s, %s)", t.Start.Format(time.RFC3339), t.End.Format(time.RFC3339))
}

// FindConflict returns the first interval in existing that overlaps
// candidate. The second return value is false when there is no conflict.
func FindConflict(candidate TimeRange, existing []TimeRange) (TimeRange, bool) {
	for _, r := range existing {
		if candidate.Overlaps(r) {
			return r, true
		}
	}
	return TimeRange{}, false
}
