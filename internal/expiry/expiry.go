// Package expiry classifies expiration dates against a reference instant.
package expiry

import (
	"fmt"
	"time"

	"medcabinet/m/domain"
)

// Layout is the only accepted expiration date format.
const Layout = time.DateOnly

// Status is the verdict for one expiration date.
type Status int

const (
	Valid Status = iota
	Expired
	Unparseable
)

func (s Status) String() string {
	switch s {
	case Valid:
		return "valid"
	case Expired:
		return "expired"
	case Unparseable:
		return "unparseable"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// MarshalText renders the status by name in JSON and logs.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Parse reads text as a YYYY-MM-DD calendar date at midnight in loc.
func Parse(text string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(Layout, text, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q is not YYYY-MM-DD", domain.ErrParse, text)
	}
	return t, nil
}

// Classify reports whether the date in text lies strictly before now.
// The date is taken as midnight in now's location, so a unit expiring today
// is already expired once the day has started.
func Classify(text string, now time.Time) Status {
	t, err := Parse(text, now.Location())
	if err != nil {
		return Unparseable
	}
	if t.Before(now) {
		return Expired
	}
	return Valid
}
