package attendance

import "fmt"

// Config defines attendance tracking settings.
type Config struct {
	// GraceMinutes is the tolerance applied before a check-in is flagged
	// late and before a check-out is flagged as an early leave.
	GraceMinutes int `json:"grace_minutes"`
	// BreakMinutes is deducted from worked time to obtain net working hours.
	BreakMinutes int `json:"break_minutes"`
	// CivilOffsetMinutes is the fixed organizational offset from UTC used
	// for day boundaries and time-of-day arithmetic.
	CivilOffsetMinutes int `json:"civil_offset_minutes"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.GraceMinutes == 0 {
		c.GraceMinutes = 15
	}
	if c.BreakMinutes == 0 {
		c.BreakMinutes = 60
	}
}

// Validate checks field ranges.
func (c Config) Validate() error {
	if c.GraceMinutes < 0 {
		return fmt.Errorf("grace_minutes must not be negative")
	}
	if c.BreakMinutes < 0 {
		return fmt.Errorf("break_minutes must not be negative")
	}
	if c.CivilOffsetMinutes < -14*60 || c.CivilOffsetMinutes > 14*60 {
		return fmt.Errorf("civil_offset_minutes out of range: %d", c.CivilOffsetMinutes)
	}
	return nil
}
