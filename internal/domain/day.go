package domain

import (
	"bytes"
	"fmt"
	"time"
)

const dayLayout = "2006-01-02"

// Day is a calendar date as typed in forms. It accepts "2006-01-02" or an
// RFC 3339 timestamp and always encodes as "2006-01-02".
type Day struct {
	time.Time
}

// NewDay truncates t to its calendar date in UTC.
func NewDay(t time.Time) Day {
	y, m, d := t.Date()
	return Day{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

func (d *Day) UnmarshalJSON(b []byte) error {
	b = bytes.Trim(b, `"`)
	if len(b) == 0 || string(b) == "null" {
		d.Time = time.Time{}
		return nil
	}
	s := string(b)
	if t, err := time.Parse(dayLayout, s); err == nil {
		d.Time = t
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return fmt.Errorf("invalid date %q", s)
	}
	*d = NewDay(t)
	return nil
}

func (d Day) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.Format(dayLayout) + `"`), nil
}

// BeforeDay reports whether d is an earlier calendar date than the date of t.
func (d Day) BeforeDay(t time.Time) bool {
	return d.Time.Before(NewDay(t).Time)
}
