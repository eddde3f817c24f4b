package metrics

import "time"

// AttendanceKind distinguishes the attendance transitions recorded by sinks.
type AttendanceKind string

const (
	AttendanceCheckIn  AttendanceKind = "checkin"
	AttendanceCheckOut AttendanceKind = "checkout"
	AttendanceReopen   AttendanceKind = "reopen"
)

// AttendanceEvent describes one attendance transition.
type AttendanceEvent struct {
	Kind         AttendanceKind
	RecordID     string
	TechnicianID string
	CenterID     string
	Late         bool
	EarlyLeave   bool
	Time         time.Time
}

// MatchEvent describes one matching/ranking request.
type MatchEvent struct {
	RequestID  string
	CenterID   string
	Candidates int
	Returned   int
	BestScore  float64
	Duration   time.Duration
	Time       time.Time
}

// BalanceEvent describes one workload-balance analysis.
type BalanceEvent struct {
	CenterID    string
	Technicians int
	Mean        float64
	StdDev      float64
	Balanced    bool
	Time        time.Time
}

// MetricsSink records core events for observability purposes. Implementations
// must be safe for concurrent use.
type MetricsSink interface {
	RecordAttendance(ev AttendanceEvent) error
	RecordMatch(ev MatchEvent) error
	RecordBalance(ev BalanceEvent) error
}

// NopSink discards all events.
type NopSink struct{}

func (NopSink) RecordAttendance(AttendanceEvent) error { return nil }
func (NopSink) RecordMatch(MatchEvent) error           { return nil }
func (NopSink) RecordBalance(BalanceEvent) error       { return nil }
