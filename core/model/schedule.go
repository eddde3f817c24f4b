package model

import "github.com/wrenchworks/dispatch/core/civil"

// ScheduleEntry is one technician's planned presence at a center on a date,
// as exposed by the scheduling collaborator.
type ScheduleEntry struct {
	TechnicianID    string
	CenterID        string
	Date            civil.Date
	Start           civil.TimeOfDay
	End             civil.TimeOfDay
	Available       bool
	CapacityMinutes int
	BookedMinutes   int
	Label           ShiftLabel
}

// ServiceCenter carries the operating hours needed to resolve shift windows.
type ServiceCenter struct {
	ID    string
	Name  string
	Hours civil.Window
}
