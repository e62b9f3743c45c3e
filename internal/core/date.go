package core

import (
	"strings"
	"time"
)

// Date is a calendar day without a time component. It marshals as
// "YYYY-MM-DD" and compares date-only, matching the ledger's convention
// that a transaction belongs to a day, not an instant.
type Date struct {
	time.Time
}

const dateLayout = "2006-01-02"

// NewDate builds a Date for the given calendar day (UTC midnight).
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// Today returns the current calendar day.
func Today() Date {
	return DateOf(time.Now())
}

// DateOf truncates t to its calendar day.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// ParseDate parses a bare date, tolerating a trailing time component as
// produced by looser remote encoders. Unparseable input yields a zero Date.
func ParseDate(s string) Date {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}
	}
	for _, layout := range []string{dateLayout, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return DateOf(t)
		}
	}
	return Date{}
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

// InRange reports whether d falls within [start, end], inclusive,
// comparing calendar days only.
func (d Date) InRange(start, end Date) bool {
	day := DateOf(d.Time).Time
	return !day.Before(DateOf(start.Time).Time) && !day.After(DateOf(end.Time).Time)
}

// SameMonth reports whether d falls in the given year and month.
func (d Date) SameMonth(year int, month time.Month) bool {
	return d.Year() == year && d.Month() == month
}

// MonthRange returns the first and last day of a month.
func MonthRange(year int, month time.Month) (Date, Date) {
	first := NewDate(year, month, 1)
	last := Date{Time: first.AddDate(0, 1, -1)}
	return first, last
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte(`""`), nil
	}
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

// UnmarshalJSON never fails on malformed dates: the record is kept with a
// zero Date and simply falls outside every range query, which is what the
// date-string convention of the wire format demands.
func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	*d = ParseDate(s)
	return nil
}

// Timestamp is an instant with a tolerant decoder. Remote snapshots have
// been observed carrying several datetime shapes; a shape we cannot parse
// decodes to zero rather than failing the whole pull.
type Timestamp struct {
	time.Time
}

// Now returns the current instant as a Timestamp.
func Now() Timestamp {
	return Timestamp{Time: time.Now().UTC()}
}

func (ts Timestamp) MarshalJSON() ([]byte, error) {
	if ts.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + ts.UTC().Format("2006-01-02T15:04:05.000Z07:00") + `"`), nil
}

func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*ts = Timestamp{}
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05", dateLayout} {
		if t, err := time.Parse(layout, s); err == nil {
			*ts = Timestamp{Time: t}
			return nil
		}
	}
	*ts = Timestamp{}
	return nil
}
