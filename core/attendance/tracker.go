package attendance

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wrenchworks/dispatch/core/civil"
	"github.com/wrenchworks/dispatch/core/events"
	"github.com/wrenchworks/dispatch/core/logger"
	"github.com/wrenchworks/dispatch/core/metrics"
	"github.com/wrenchworks/dispatch/core/model"
	"github.com/wrenchworks/dispatch/internal/eventbus"
)

// State conflicts surfaced to callers. They are expected outcomes, not
// internal failures, and are never retried here.
var (
	ErrAlreadyCheckedIn  = errors.New("technician already checked in")
	ErrNoActiveShift     = errors.New("no active shift")
	ErrAlreadyCheckedOut = errors.New("technician already checked out")
	ErrNoAttendance      = errors.New("no attendance record")
)

// Tracker is the per-technician-per-day check-in/check-out state machine.
// State transitions per (technician, civil date): none -> open -> closed,
// plus an audited closed -> open re-open on a repeated check-in.
type Tracker struct {
	store   Store
	centers CenterDirectory
	cal     civil.Calendar
	cfg     Config
	log     logger.Logger
	bus     eventbus.EventBus
	sink    metrics.MetricsSink
}

// NewTracker wires a Tracker. bus and sink may be nil.
func NewTracker(store Store, centers CenterDirectory, cfg Config, log logger.Logger, bus eventbus.EventBus, sink metrics.MetricsSink) *Tracker {
	if sink == nil {
		sink = metrics.NopSink{}
	}
	return &Tracker{
		store:   store,
		centers: centers,
		cal:     civil.NewCalendar(cfg.CivilOffsetMinutes),
		cfg:     cfg,
		log:     log,
		bus:     bus,
		sink:    sink,
	}
}

// CheckIn opens (or re-opens) the technician's attendance record for the
// civil date of now. A supplied label other than FullDay overrides the
// classified label only; the classified window still applies. An empty label
// means classify from the check-in time.
func (t *Tracker) CheckIn(ctx context.Context, technicianID, centerID string, label model.ShiftLabel, notes string, now time.Time) (*model.AttendanceRecord, error) {
	date := t.cal.DateOf(now)
	existing, err := t.store.Find(ctx, technicianID, date)
	if err != nil {
		return nil, fmt.Errorf("find attendance: %w", err)
	}
	if existing.Open() {
		return nil, fmt.Errorf("%w: since %s", ErrAlreadyCheckedIn, existing.CheckIn.Format(time.RFC3339))
	}

	hours, err := t.centers.OperatingHours(ctx, centerID)
	if err != nil {
		return nil, fmt.Errorf("operating hours for center %s: %w", centerID, err)
	}

	checkInTime := t.cal.TimeOf(now)
	resolvedLabel, window := t.resolveShift(hours, checkInTime, label)

	lateThreshold := window.Start + civil.TimeOfDay(t.cfg.GraceMinutes)
	late := checkInTime > lateThreshold
	lateMinutes := 0
	if late {
		// Measured from the window start, not from the grace threshold.
		lateMinutes = int(checkInTime - window.Start)
	}

	rec := existing
	reopen := rec != nil
	if reopen {
		prior := *rec
		rec.Reopened++
		rec.Notes = appendNote(rec.Notes, fmt.Sprintf(
			"reopened at %s; discarded check-out %s (%.2fh worked)",
			now.Format(time.RFC3339), prior.CheckOut.Format(time.RFC3339), prior.WorkedHours))
		t.publish(events.AttendanceReopened{
			RecordID:          rec.ID,
			TechnicianID:      technicianID,
			CenterID:          centerID,
			Date:              date.String(),
			At:                now,
			DiscardedCheckOut: *prior.CheckOut,
			PriorWorkedHours:  prior.WorkedHours,
			Reopened:          rec.Reopened,
		})
		t.record(metrics.AttendanceEvent{
			Kind: metrics.AttendanceReopen, RecordID: rec.ID,
			TechnicianID: technicianID, CenterID: centerID, Time: now,
		})
	} else {
		rec = &model.AttendanceRecord{
			ID:           uuid.NewString(),
			TechnicianID: technicianID,
			Date:         date,
		}
	}

	checkIn := now
	rec.CenterID = centerID
	rec.CheckIn = &checkIn
	rec.CheckOut = nil
	rec.Label = resolvedLabel
	rec.Window = window
	rec.Late = late
	rec.LateMinutes = lateMinutes
	rec.EarlyLeave = false
	rec.WorkedHours = 0
	rec.NetWorkingHours = 0
	rec.Notes = appendNote(rec.Notes, notes)

	if reopen {
		err = t.store.Update(ctx, rec)
	} else {
		err = t.store.Create(ctx, rec)
		if errors.Is(err, ErrDuplicateRecord) {
			// Lost the race against a concurrent check-in.
			return nil, fmt.Errorf("%w: concurrent check-in detected", ErrAlreadyCheckedIn)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("save attendance: %w", err)
	}

	t.log.Infof("technician %s checked in at center %s (%s %s, late=%v)",
		technicianID, centerID, resolvedLabel, window, late)
	t.publish(events.AttendanceCheckedIn{
		RecordID:     rec.ID,
		TechnicianID: technicianID,
		CenterID:     centerID,
		Date:         date.String(),
		At:           now,
		Label:        resolvedLabel,
		Late:         late,
		LateMinutes:  lateMinutes,
	})
	t.record(metrics.AttendanceEvent{
		Kind: metrics.AttendanceCheckIn, RecordID: rec.ID,
		TechnicianID: technicianID, CenterID: centerID, Late: late, Time: now,
	})
	return rec, nil
}

// resolveShift applies the label/window rules: FullDay spans the operating
// hours; otherwise the window is classified from the check-in time and an
// explicit label overrides the classified label only.
func (t *Tracker) resolveShift(hours civil.Window, checkIn civil.TimeOfDay, requested model.ShiftLabel) (model.ShiftLabel, civil.Window) {
	if requested == model.ShiftFullDay {
		return model.ShiftFullDay, hours
	}
	label, window := classifyShift(hours, checkIn)
	if requested != "" {
		label = requested
	}
	return label, window
}

// CheckOut closes the technician's open record for the civil date of now.
func (t *Tracker) CheckOut(ctx context.Context, technicianID string, now time.Time) (*model.AttendanceRecord, error) {
	date := t.cal.DateOf(now)
	rec, err := t.store.Find(ctx, technicianID, date)
	if err != nil {
		return nil, fmt.Errorf("find attendance: %w", err)
	}
	if rec == nil || rec.CheckIn == nil {
		return nil, fmt.Errorf("%w: technician %s has not checked in on %s", ErrNoActiveShift, technicianID, date)
	}
	if rec.CheckOut != nil {
		return nil, fmt.Errorf("%w: at %s", ErrAlreadyCheckedOut, rec.CheckOut.Format(time.RFC3339))
	}

	worked := now.Sub(*rec.CheckIn)
	netMinutes := worked.Minutes() - float64(t.cfg.BreakMinutes)
	if netMinutes < 0 {
		netMinutes = 0
	}

	checkOut := now
	rec.CheckOut = &checkOut
	rec.WorkedHours = worked.Hours()
	rec.NetWorkingHours = netMinutes / 60

	earlyThreshold := rec.Window.End - civil.TimeOfDay(t.cfg.GraceMinutes)
	rec.EarlyLeave = t.cal.TimeOf(now) < earlyThreshold

	if err := t.store.Update(ctx, rec); err != nil {
		return nil, fmt.Errorf("save attendance: %w", err)
	}

	t.log.Infof("technician %s checked out (worked=%.2fh net=%.2fh early=%v)",
		technicianID, rec.WorkedHours, rec.NetWorkingHours, rec.EarlyLeave)
	t.publish(events.AttendanceCheckedOut{
		RecordID:     rec.ID,
		TechnicianID: technicianID,
		CenterID:     rec.CenterID,
		Date:         date.String(),
		At:           now,
		EarlyLeave:   rec.EarlyLeave,
		WorkedHours:  rec.WorkedHours,
	})
	t.record(metrics.AttendanceEvent{
		Kind: metrics.AttendanceCheckOut, RecordID: rec.ID,
		TechnicianID: technicianID, CenterID: rec.CenterID,
		EarlyLeave: rec.EarlyLeave, Time: now,
	})
	return rec, nil
}

// Today returns the technician's record for the civil date of now, or
// ErrNoAttendance when no record exists.
func (t *Tracker) Today(ctx context.Context, technicianID string, now time.Time) (*model.AttendanceRecord, error) {
	rec, err := t.store.Find(ctx, technicianID, t.cal.DateOf(now))
	if err != nil {
		return nil, fmt.Errorf("find attendance: %w", err)
	}
	if rec == nil {
		return nil, fmt.Errorf("%w: technician %s on %s", ErrNoAttendance, technicianID, t.cal.DateOf(now))
	}
	return rec, nil
}

// IsOnShift reports whether the technician has an open record on the civil
// date of the instant. Used by callers to gate "start work" actions.
func (t *Tracker) IsOnShift(ctx context.Context, technicianID string, at time.Time) (bool, error) {
	rec, err := t.store.Find(ctx, technicianID, t.cal.DateOf(at))
	if err != nil {
		return false, fmt.Errorf("find attendance: %w", err)
	}
	return rec.Open(), nil
}

// History returns the technician's records between from and to inclusive,
// newest date first.
func (t *Tracker) History(ctx context.Context, technicianID string, from, to civil.Date) ([]model.AttendanceRecord, error) {
	recs, err := t.store.History(ctx, technicianID, from, to)
	if err != nil {
		return nil, fmt.Errorf("attendance history: %w", err)
	}
	return recs, nil
}

func (t *Tracker) publish(e eventbus.Event) {
	if t.bus != nil {
		t.bus.Publish(e)
	}
}

func (t *Tracker) record(ev metrics.AttendanceEvent) {
	if err := t.sink.RecordAttendance(ev); err != nil {
		t.log.Warnf("record attendance metric: %v", err)
	}
}

func appendNote(existing, note string) string {
	note = strings.TrimSpace(note)
	if note == "" {
		return existing
	}
	if existing == "" {
		return note
	}
	return existing + "; " + note
}
