package civil

import (
	"fmt"
	"time"
)

// TimeOfDay is a clock time expressed as minutes since midnight. The value
// 1440 (EndOfDay) is valid as an exclusive window end.
type TimeOfDay int

// EndOfDay marks the exclusive upper bound of a civil day.
const EndOfDay TimeOfDay = 24 * 60

// NewTimeOfDay builds a TimeOfDay from an hour and minute pair.
func NewTimeOfDay(hour, minute int) TimeOfDay {
	return TimeOfDay(hour*60 + minute)
}

// ParseTimeOfDay parses a "15:04" formatted string.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	if h < 0 || h > 24 || m < 0 || m > 59 || (h == 24 && m != 0) {
		return 0, fmt.Errorf("invalid time of day %q", s)
	}
	return NewTimeOfDay(h, m), nil
}

// Hour returns the hour component.
func (t TimeOfDay) Hour() int { return int(t) / 60 }

// Minute returns the minute component.
func (t TimeOfDay) Minute() int { return int(t) % 60 }

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

// Date is a calendar date on the organizational civil calendar.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// Before reports whether d precedes other.
func (d Date) Before(other Date) bool {
	if d.Year != other.Year {
		return d.Year < other.Year
	}
	if d.Month != other.Month {
		return d.Month < other.Month
	}
	return d.Day < other.Day
}

// After reports whether d follows other.
func (d Date) After(other Date) bool { return other.Before(d) }

// ParseDate parses a "2006-01-02" formatted string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}, nil
}

// Window is a half-open [Start, End) time-of-day interval.
type Window struct {
	Start TimeOfDay
	End   TimeOfDay
}

// Minutes returns the window length in minutes.
func (w Window) Minutes() int { return int(w.End - w.Start) }

func (w Window) String() string {
	return fmt.Sprintf("[%s, %s)", w.Start, w.End)
}

// Calendar converts absolute instants to civil dates and times of day using a
// fixed organizational UTC offset. The offset is configured once at startup so
// day boundaries do not move when the service is deployed in another region.
type Calendar struct {
	loc *time.Location
}

// NewCalendar creates a Calendar with the given offset in minutes east of UTC.
func NewCalendar(offsetMinutes int) Calendar {
	name := fmt.Sprintf("org%+03d:%02d", offsetMinutes/60, abs(offsetMinutes%60))
	return Calendar{loc: time.FixedZone(name, offsetMinutes*60)}
}

// DateOf returns the civil date containing the instant.
func (c Calendar) DateOf(t time.Time) Date {
	lt := t.In(c.location())
	return Date{Year: lt.Year(), Month: lt.Month(), Day: lt.Day()}
}

// TimeOf returns the time of day of the instant, truncated to the minute.
func (c Calendar) TimeOf(t time.Time) TimeOfDay {
	lt := t.In(c.location())
	return NewTimeOfDay(lt.Hour(), lt.Minute())
}

func (c Calendar) location() *time.Location {
	if c.loc == nil {
		return time.UTC
	}
	return c.loc
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
