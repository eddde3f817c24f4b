package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/wrenchworks/dispatch/core/metrics"
)

// PromSink records core events as Prometheus metrics.
type PromSink struct {
	attendance *prometheus.CounterVec
	matches    *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	stddev     *prometheus.GaugeVec
}

// NewPromSink registers metrics on the default Prometheus registerer. The
// metrics endpoint is served separately on cfg.PrometheusPort.
func NewPromSink(cfg coremetrics.Config) (coremetrics.MetricsSink, error) {
	return NewPromSinkWithRegistry(cfg, prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer. A nil
// registerer defaults to the global one.
func NewPromSinkWithRegistry(_ coremetrics.Config, reg prometheus.Registerer) (coremetrics.MetricsSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	attendance := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "attendance_events_total",
		Help: "Attendance transitions by kind",
	}, []string{"center_id", "kind", "late"})
	matches := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "match_requests_total",
		Help: "Technician matching requests",
	}, []string{"center_id"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "match_duration_seconds",
		Help:    "Time spent filtering, scoring and ranking candidates",
		Buckets: prometheus.DefBuckets,
	}, []string{"center_id"})
	stddev := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "workload_stddev",
		Help: "Population standard deviation of the center's workload distribution",
	}, []string{"center_id"})

	if err := reg.Register(attendance); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			attendance = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(matches); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			matches = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(duration); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			duration = are.ExistingCollector.(*prometheus.HistogramVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(stddev); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			stddev = are.ExistingCollector.(*prometheus.GaugeVec)
		} else {
			return nil, err
		}
	}
	return &PromSink{attendance: attendance, matches: matches, duration: duration, stddev: stddev}, nil
}

// RecordAttendance counts the transition.
func (s *PromSink) RecordAttendance(ev coremetrics.AttendanceEvent) error {
	s.attendance.WithLabelValues(ev.CenterID, string(ev.Kind), strconv.FormatBool(ev.Late)).Inc()
	return nil
}

// RecordMatch counts the request and observes its duration.
func (s *PromSink) RecordMatch(ev coremetrics.MatchEvent) error {
	s.matches.WithLabelValues(ev.CenterID).Inc()
	s.duration.WithLabelValues(ev.CenterID).Observe(ev.Duration.Seconds())
	return nil
}

// RecordBalance exposes the latest stddev for the center.
func (s *PromSink) RecordBalance(ev coremetrics.BalanceEvent) error {
	s.stddev.WithLabelValues(ev.CenterID).Set(ev.StdDev)
	return nil
}
