package metrics

import coremetrics "github.com/wrenchworks/dispatch/core/metrics"

// MultiSink fans events out to multiple sinks.
type MultiSink struct {
	Sinks []coremetrics.MetricsSink
}

// NewMultiSink creates a MultiSink over the provided sinks.
func NewMultiSink(sinks ...coremetrics.MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordAttendance forwards the event, returning the first error encountered.
func (m *MultiSink) RecordAttendance(ev coremetrics.AttendanceEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordAttendance(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordMatch forwards the event.
func (m *MultiSink) RecordMatch(ev coremetrics.MatchEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordMatch(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordBalance forwards the event.
func (m *MultiSink) RecordBalance(ev coremetrics.BalanceEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordBalance(ev); err != nil {
			return err
		}
	}
	return nil
}
