package model

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/wrenchworks/dispatch/core/civil"
)

// ErrUnknownShiftLabel is returned when a caller supplies a shift label
// outside the closed enumeration.
var ErrUnknownShiftLabel = errors.New("unknown shift label")

// ShiftLabel is the closed set of shift classifications.
type ShiftLabel string

const (
	ShiftFullDay   ShiftLabel = "FullDay"
	ShiftMorning   ShiftLabel = "Morning"
	ShiftAfternoon ShiftLabel = "Afternoon"
	ShiftEvening   ShiftLabel = "Evening"
	ShiftNight     ShiftLabel = "Night"
)

// ParseShiftLabel validates a caller-supplied label. The empty string is
// accepted and means "classify from the check-in time".
func ParseShiftLabel(s string) (ShiftLabel, error) {
	if s == "" {
		return "", nil
	}
	for _, l := range []ShiftLabel{ShiftFullDay, ShiftMorning, ShiftAfternoon, ShiftEvening, ShiftNight} {
		if strings.EqualFold(s, string(l)) {
			return l, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownShiftLabel, s)
}

// AttendanceStatus is the lifecycle state of an attendance record.
type AttendanceStatus string

const (
	AttendanceOpen   AttendanceStatus = "open"
	AttendanceClosed AttendanceStatus = "closed"
)

// AttendanceRecord is the per-technician-per-day shift record. Check-in and
// check-out instants are absolute; Date and Window are civil values resolved
// under the organizational calendar.
type AttendanceRecord struct {
	ID           string
	TechnicianID string
	CenterID     string
	Date         civil.Date

	CheckIn  *time.Time
	CheckOut *time.Time

	Label  ShiftLabel
	Window civil.Window

	Late        bool
	LateMinutes int
	EarlyLeave  bool

	WorkedHours     float64
	NetWorkingHours float64

	// Reopened counts how many times a closed record was re-opened by a
	// later check-in on the same civil date.
	Reopened int
	Notes    string
}

// Open reports whether the technician is checked in without a check-out.
func (r *AttendanceRecord) Open() bool {
	return r != nil && r.CheckIn != nil && r.CheckOut == nil
}

// Status returns the lifecycle state of the record.
func (r *AttendanceRecord) Status() AttendanceStatus {
	if r.Open() {
		return AttendanceOpen
	}
	return AttendanceClosed
}
