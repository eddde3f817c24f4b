package metrics

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/wrenchworks/dispatch/core/metrics"
	"github.com/wrenchworks/dispatch/infra/logger"
)

// InfluxSink writes core events to an InfluxDB instance using the official
// client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a sink for the given InfluxDB endpoint.
func NewInfluxSink(cfg coremetrics.Config) *InfluxSink {
	base := strings.TrimSuffix(cfg.InfluxURL, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, cfg.InfluxToken,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.InfluxOrg, cfg.InfluxBucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback pings the InfluxDB instance and returns a NopSink
// when the health check fails, so a broken metrics backend never blocks
// startup.
func NewInfluxSinkWithFallback(cfg coremetrics.Config) coremetrics.MetricsSink {
	sink := NewInfluxSink(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// Close releases the underlying client.
func (s *InfluxSink) Close() {
	s.client.Close()
}

// RecordAttendance writes the transition as a point.
func (s *InfluxSink) RecordAttendance(ev coremetrics.AttendanceEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("attendance_event").
		AddTag("technician_id", ev.TechnicianID).
		AddTag("center_id", ev.CenterID).
		AddTag("kind", string(ev.Kind)).
		AddField("late", ev.Late).
		AddField("early_leave", ev.EarlyLeave).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordMatch writes the ranking request as a point.
func (s *InfluxSink) RecordMatch(ev coremetrics.MatchEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("match_event").
		AddTag("request_id", ev.RequestID).
		AddTag("center_id", ev.CenterID).
		AddField("candidates", ev.Candidates).
		AddField("returned", ev.Returned).
		AddField("best_score", ev.BestScore).
		AddField("duration_ms", float64(ev.Duration.Milliseconds())).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordBalance writes the analysis result as a point.
func (s *InfluxSink) RecordBalance(ev coremetrics.BalanceEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("balance_event").
		AddTag("center_id", ev.CenterID).
		AddTag("balanced", strconv.FormatBool(ev.Balanced)).
		AddField("technicians", ev.Technicians).
		AddField("mean", ev.Mean).
		AddField("stddev", ev.StdDev).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}
