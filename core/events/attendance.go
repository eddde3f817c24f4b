// Package events defines the attendance transition events published on the
// internal bus. Downstream consumers (metrics, the MQTT forwarder) subscribe
// to these rather than polling the store.
package events

import (
	"time"

	"github.com/wrenchworks/dispatch/core/model"
)

// AttendanceCheckedIn is emitted when a technician opens a shift.
type AttendanceCheckedIn struct {
	RecordID     string           `json:"record_id"`
	TechnicianID string           `json:"technician_id"`
	CenterID     string           `json:"center_id"`
	Date         string           `json:"date"`
	At           time.Time        `json:"at"`
	Label        model.ShiftLabel `json:"label"`
	Late         bool             `json:"late"`
	LateMinutes  int              `json:"late_minutes"`
}

// AttendanceCheckedOut is emitted when a technician closes a shift.
type AttendanceCheckedOut struct {
	RecordID     string    `json:"record_id"`
	TechnicianID string    `json:"technician_id"`
	CenterID     string    `json:"center_id"`
	Date         string    `json:"date"`
	At           time.Time `json:"at"`
	EarlyLeave   bool      `json:"early_leave"`
	WorkedHours  float64   `json:"worked_hours"`
}

// AttendanceReopened is emitted when a check-in re-opens a closed record on
// the same civil date. The discarded check-out is carried here so the
// overwrite leaves an audit trail.
type AttendanceReopened struct {
	RecordID          string    `json:"record_id"`
	TechnicianID      string    `json:"technician_id"`
	CenterID          string    `json:"center_id"`
	Date              string    `json:"date"`
	At                time.Time `json:"at"`
	DiscardedCheckOut time.Time `json:"discarded_check_out"`
	PriorWorkedHours  float64   `json:"prior_worked_hours"`
	Reopened          int       `json:"reopened"`
}
