package attendance

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/wrenchworks/dispatch/core/civil"
	"github.com/wrenchworks/dispatch/core/events"
	"github.com/wrenchworks/dispatch/core/model"
	"github.com/wrenchworks/dispatch/internal/eventbus"
)

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any)         {}
func (nopLogger) Debugw(string, map[string]any) {}
func (nopLogger) Infof(string, ...any)          {}
func (nopLogger) Warnf(string, ...any)          {}
func (nopLogger) Errorf(string, ...any)         {}

// stubStore keeps records in memory keyed by (technician, date).
type stubStore struct {
	recs       map[string]*model.AttendanceRecord
	failCreate bool
}

func newStubStore() *stubStore {
	return &stubStore{recs: make(map[string]*model.AttendanceRecord)}
}

func key(techID string, d civil.Date) string { return techID + "/" + d.String() }

func (s *stubStore) Find(_ context.Context, techID string, d civil.Date) (*model.AttendanceRecord, error) {
	rec, ok := s.recs[key(techID, d)]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (s *stubStore) Create(_ context.Context, rec *model.AttendanceRecord) error {
	k := key(rec.TechnicianID, rec.Date)
	if s.failCreate {
		return ErrDuplicateRecord
	}
	if _, ok := s.recs[k]; ok {
		return ErrDuplicateRecord
	}
	cp := *rec
	s.recs[k] = &cp
	return nil
}

func (s *stubStore) Update(_ context.Context, rec *model.AttendanceRecord) error {
	cp := *rec
	s.recs[key(rec.TechnicianID, rec.Date)] = &cp
	return nil
}

func (s *stubStore) History(_ context.Context, techID string, from, to civil.Date) ([]model.AttendanceRecord, error) {
	var out []model.AttendanceRecord
	for _, rec := range s.recs {
		if rec.TechnicianID != techID || rec.Date.Before(from) || rec.Date.After(to) {
			continue
		}
		out = append(out, *rec)
	}
	// newest first
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[i].Date.Before(out[j].Date) {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out, nil
}

type stubCenters struct{ hours map[string]civil.Window }

func (s stubCenters) OperatingHours(_ context.Context, centerID string) (civil.Window, error) {
	w, ok := s.hours[centerID]
	if !ok {
		return civil.Window{}, fmt.Errorf("%w: %s", ErrCenterNotFound, centerID)
	}
	return w, nil
}

func newTestTracker(store Store) *Tracker {
	cfg := Config{}
	cfg.SetDefaults()
	centers := stubCenters{hours: map[string]civil.Window{
		"c1": {Start: civil.NewTimeOfDay(8, 0), End: civil.NewTimeOfDay(18, 0)},
	}}
	return NewTracker(store, centers, cfg, nopLogger{}, nil, nil)
}

func at(h, m int) time.Time {
	return time.Date(2025, 4, 7, h, m, 0, 0, time.UTC)
}

func TestCheckInOnTimeMorning(t *testing.T) {
	tr := newTestTracker(newStubStore())
	rec, err := tr.CheckIn(context.Background(), "t1", "c1", "", "", at(8, 0))
	if err != nil {
		t.Fatalf("CheckIn: %v", err)
	}
	if rec.Label != model.ShiftMorning {
		t.Errorf("label = %s, want Morning", rec.Label)
	}
	want := civil.Window{Start: civil.NewTimeOfDay(8, 0), End: civil.NewTimeOfDay(11, 30)}
	if rec.Window != want {
		t.Errorf("window = %s, want %s", rec.Window, want)
	}
	if rec.Late || rec.LateMinutes != 0 {
		t.Errorf("late = %v/%d, want on time", rec.Late, rec.LateMinutes)
	}
	if rec.Status() != model.AttendanceOpen {
		t.Errorf("status = %s, want open", rec.Status())
	}
}

func TestCheckInLateMeasuredFromWindowStart(t *testing.T) {
	tr := newTestTracker(newStubStore())
	rec, err := tr.CheckIn(context.Background(), "t1", "c1", "", "", at(8, 20))
	if err != nil {
		t.Fatalf("CheckIn: %v", err)
	}
	if rec.Label != model.ShiftMorning {
		t.Errorf("label = %s, want Morning", rec.Label)
	}
	if !rec.Late {
		t.Error("expected late check-in past the 08:15 threshold")
	}
	if rec.LateMinutes != 20 {
		t.Errorf("lateMinutes = %d, want 20 (from window start, not grace threshold)", rec.LateMinutes)
	}
}

func TestCheckInBeforeOpenIsNight(t *testing.T) {
	tr := newTestTracker(newStubStore())
	rec, err := tr.CheckIn(context.Background(), "t1", "c1", "", "", at(7, 0))
	if err != nil {
		t.Fatalf("CheckIn: %v", err)
	}
	if rec.Label != model.ShiftNight {
		t.Errorf("label = %s, want Night", rec.Label)
	}
	want := civil.Window{Start: 0, End: civil.NewTimeOfDay(8, 0)}
	if rec.Window != want {
		t.Errorf("window = %s, want %s", rec.Window, want)
	}
}

func TestCheckInAfterCloseIsNight(t *testing.T) {
	tr := newTestTracker(newStubStore())
	rec, err := tr.CheckIn(context.Background(), "t1", "c1", "", "", at(18, 0))
	if err != nil {
		t.Fatalf("CheckIn: %v", err)
	}
	if rec.Label != model.ShiftNight {
		t.Errorf("label = %s, want Night", rec.Label)
	}
	want := civil.Window{Start: civil.NewTimeOfDay(18, 0), End: civil.EndOfDay}
	if rec.Window != want {
		t.Errorf("window = %s, want %s", rec.Window, want)
	}
}

func TestCheckInShiftClassification(t *testing.T) {
	cases := []struct {
		h, m  int
		label model.ShiftLabel
	}{
		{8, 0, model.ShiftMorning},
		{11, 29, model.ShiftMorning},
		{11, 30, model.ShiftAfternoon},
		{14, 59, model.ShiftAfternoon},
		{15, 0, model.ShiftEvening},
		{17, 59, model.ShiftEvening},
	}
	for _, c := range cases {
		tr := newTestTracker(newStubStore())
		rec, err := tr.CheckIn(context.Background(), "t1", "c1", "", "", at(c.h, c.m))
		if err != nil {
			t.Fatalf("CheckIn %02d:%02d: %v", c.h, c.m, err)
		}
		if rec.Label != c.label {
			t.Errorf("%02d:%02d: label = %s, want %s", c.h, c.m, rec.Label, c.label)
		}
	}
}

func TestCheckInFullDayUsesOperatingHours(t *testing.T) {
	tr := newTestTracker(newStubStore())
	rec, err := tr.CheckIn(context.Background(), "t1", "c1", model.ShiftFullDay, "", at(10, 0))
	if err != nil {
		t.Fatalf("CheckIn: %v", err)
	}
	if rec.Label != model.ShiftFullDay {
		t.Errorf("label = %s, want FullDay", rec.Label)
	}
	want := civil.Window{Start: civil.NewTimeOfDay(8, 0), End: civil.NewTimeOfDay(18, 0)}
	if rec.Window != want {
		t.Errorf("window = %s, want %s", rec.Window, want)
	}
}

func TestCheckInExplicitLabelOverridesLabelOnly(t *testing.T) {
	tr := newTestTracker(newStubStore())
	// 10:00 classifies as Morning; the caller insists on Evening.
	rec, err := tr.CheckIn(context.Background(), "t1", "c1", model.ShiftEvening, "", at(10, 0))
	if err != nil {
		t.Fatalf("CheckIn: %v", err)
	}
	if rec.Label != model.ShiftEvening {
		t.Errorf("label = %s, want Evening", rec.Label)
	}
	want := civil.Window{Start: civil.NewTimeOfDay(8, 0), End: civil.NewTimeOfDay(11, 30)}
	if rec.Window != want {
		t.Errorf("window = %s, want the classified Morning window %s", rec.Window, want)
	}
}

func TestCheckInTwiceFails(t *testing.T) {
	tr := newTestTracker(newStubStore())
	if _, err := tr.CheckIn(context.Background(), "t1", "c1", "", "", at(8, 0)); err != nil {
		t.Fatalf("first CheckIn: %v", err)
	}
	_, err := tr.CheckIn(context.Background(), "t1", "c1", "", "", at(9, 0))
	if !errors.Is(err, ErrAlreadyCheckedIn) {
		t.Fatalf("second CheckIn err = %v, want ErrAlreadyCheckedIn", err)
	}
}

func TestCheckInUnknownCenter(t *testing.T) {
	tr := newTestTracker(newStubStore())
	_, err := tr.CheckIn(context.Background(), "t1", "nope", "", "", at(8, 0))
	if !errors.Is(err, ErrCenterNotFound) {
		t.Fatalf("err = %v, want ErrCenterNotFound", err)
	}
}

func TestCheckInStoreConflictSurfacesAsAlreadyCheckedIn(t *testing.T) {
	store := newStubStore()
	store.failCreate = true
	tr := newTestTracker(store)
	_, err := tr.CheckIn(context.Background(), "t1", "c1", "", "", at(8, 0))
	if !errors.Is(err, ErrAlreadyCheckedIn) {
		t.Fatalf("err = %v, want ErrAlreadyCheckedIn on uniqueness conflict", err)
	}
}

func TestCheckOutComputesHours(t *testing.T) {
	tr := newTestTracker(newStubStore())
	ctx := context.Background()
	if _, err := tr.CheckIn(ctx, "t1", "c1", model.ShiftFullDay, "", at(8, 0)); err != nil {
		t.Fatalf("CheckIn: %v", err)
	}
	rec, err := tr.CheckOut(ctx, "t1", at(17, 0))
	if err != nil {
		t.Fatalf("CheckOut: %v", err)
	}
	if rec.WorkedHours != 9 {
		t.Errorf("workedHours = %v, want 9", rec.WorkedHours)
	}
	if rec.NetWorkingHours != 8 {
		t.Errorf("netWorkingHours = %v, want 8 after 60min break deduction", rec.NetWorkingHours)
	}
	// FullDay window ends 18:00, grace 15 -> threshold 17:45; 17:00 is early.
	if !rec.EarlyLeave {
		t.Error("expected early leave before 17:45")
	}
	if rec.Status() != model.AttendanceClosed {
		t.Errorf("status = %s, want closed", rec.Status())
	}
}

func TestCheckOutWithinGraceIsNotEarly(t *testing.T) {
	tr := newTestTracker(newStubStore())
	ctx := context.Background()
	if _, err := tr.CheckIn(ctx, "t1", "c1", model.ShiftFullDay, "", at(8, 0)); err != nil {
		t.Fatalf("CheckIn: %v", err)
	}
	rec, err := tr.CheckOut(ctx, "t1", at(17, 50))
	if err != nil {
		t.Fatalf("CheckOut: %v", err)
	}
	if rec.EarlyLeave {
		t.Error("17:50 is within the grace window, should not be early")
	}
}

func TestCheckOutShorterThanBreakClampsToZero(t *testing.T) {
	tr := newTestTracker(newStubStore())
	ctx := context.Background()
	if _, err := tr.CheckIn(ctx, "t1", "c1", "", "", at(8, 0)); err != nil {
		t.Fatalf("CheckIn: %v", err)
	}
	rec, err := tr.CheckOut(ctx, "t1", at(8, 30))
	if err != nil {
		t.Fatalf("CheckOut: %v", err)
	}
	if rec.NetWorkingHours != 0 {
		t.Errorf("netWorkingHours = %v, want 0", rec.NetWorkingHours)
	}
}

func TestCheckOutWithoutCheckIn(t *testing.T) {
	tr := newTestTracker(newStubStore())
	_, err := tr.CheckOut(context.Background(), "t1", at(17, 0))
	if !errors.Is(err, ErrNoActiveShift) {
		t.Fatalf("err = %v, want ErrNoActiveShift", err)
	}
}

func TestCheckOutTwiceFails(t *testing.T) {
	tr := newTestTracker(newStubStore())
	ctx := context.Background()
	if _, err := tr.CheckIn(ctx, "t1", "c1", "", "", at(8, 0)); err != nil {
		t.Fatalf("CheckIn: %v", err)
	}
	if _, err := tr.CheckOut(ctx, "t1", at(12, 0)); err != nil {
		t.Fatalf("CheckOut: %v", err)
	}
	_, err := tr.CheckOut(ctx, "t1", at(13, 0))
	if !errors.Is(err, ErrAlreadyCheckedOut) {
		t.Fatalf("err = %v, want ErrAlreadyCheckedOut", err)
	}
}

func TestReopenIsAuditedAndClearsCheckOut(t *testing.T) {
	store := newStubStore()
	cfg := Config{}
	cfg.SetDefaults()
	centers := stubCenters{hours: map[string]civil.Window{
		"c1": {Start: civil.NewTimeOfDay(8, 0), End: civil.NewTimeOfDay(18, 0)},
	}}
	bus := eventbus.New()
	sub := bus.Subscribe()
	tr := NewTracker(store, centers, cfg, nopLogger{}, bus, nil)

	ctx := context.Background()
	if _, err := tr.CheckIn(ctx, "t1", "c1", "", "", at(8, 0)); err != nil {
		t.Fatalf("CheckIn: %v", err)
	}
	if _, err := tr.CheckOut(ctx, "t1", at(12, 0)); err != nil {
		t.Fatalf("CheckOut: %v", err)
	}
	rec, err := tr.CheckIn(ctx, "t1", "c1", "", "", at(15, 30))
	if err != nil {
		t.Fatalf("re-open CheckIn: %v", err)
	}
	if rec.CheckOut != nil {
		t.Error("re-open should clear the prior check-out")
	}
	if rec.Reopened != 1 {
		t.Errorf("reopened = %d, want 1", rec.Reopened)
	}
	if rec.Label != model.ShiftEvening {
		t.Errorf("label after re-open = %s, want Evening", rec.Label)
	}
	if rec.Notes == "" {
		t.Error("re-open should leave an audit note")
	}

	var sawReopen bool
	for len(sub) > 0 {
		if ev, ok := (<-sub).(events.AttendanceReopened); ok {
			sawReopen = true
			if ev.PriorWorkedHours != 4 {
				t.Errorf("event prior worked hours = %v, want 4", ev.PriorWorkedHours)
			}
		}
	}
	if !sawReopen {
		t.Error("expected AttendanceReopened event on the bus")
	}

	// The single-open-record invariant holds after the re-open.
	open, err := tr.IsOnShift(ctx, "t1", at(16, 0))
	if err != nil || !open {
		t.Fatalf("IsOnShift = %v, %v, want true", open, err)
	}
}

func TestIsOnShift(t *testing.T) {
	tr := newTestTracker(newStubStore())
	ctx := context.Background()
	if on, err := tr.IsOnShift(ctx, "t1", at(9, 0)); err != nil || on {
		t.Fatalf("before check-in: IsOnShift = %v, %v", on, err)
	}
	if _, err := tr.CheckIn(ctx, "t1", "c1", "", "", at(8, 0)); err != nil {
		t.Fatalf("CheckIn: %v", err)
	}
	if on, err := tr.IsOnShift(ctx, "t1", at(9, 0)); err != nil || !on {
		t.Fatalf("after check-in: IsOnShift = %v, %v", on, err)
	}
	if _, err := tr.CheckOut(ctx, "t1", at(17, 0)); err != nil {
		t.Fatalf("CheckOut: %v", err)
	}
	if on, err := tr.IsOnShift(ctx, "t1", at(17, 30)); err != nil || on {
		t.Fatalf("after check-out: IsOnShift = %v, %v", on, err)
	}
}

func TestTodayIsIdempotent(t *testing.T) {
	tr := newTestTracker(newStubStore())
	ctx := context.Background()
	if _, err := tr.Today(ctx, "t1", at(9, 0)); !errors.Is(err, ErrNoAttendance) {
		t.Fatalf("Today without record: err = %v, want ErrNoAttendance", err)
	}
	if _, err := tr.CheckIn(ctx, "t1", "c1", "", "note", at(8, 0)); err != nil {
		t.Fatalf("CheckIn: %v", err)
	}
	first, err := tr.Today(ctx, "t1", at(9, 0))
	if err != nil {
		t.Fatalf("Today: %v", err)
	}
	second, err := tr.Today(ctx, "t1", at(10, 0))
	if err != nil {
		t.Fatalf("Today: %v", err)
	}
	if *first != *second {
		t.Error("repeated reads without a mutation should return identical data")
	}
}

func TestCivilOffsetControlsDayBoundary(t *testing.T) {
	store := newStubStore()
	cfg := Config{CivilOffsetMinutes: 330} // +05:30
	cfg.SetDefaults()
	centers := stubCenters{hours: map[string]civil.Window{
		"c1": {Start: civil.NewTimeOfDay(8, 0), End: civil.NewTimeOfDay(18, 0)},
	}}
	tr := NewTracker(store, centers, cfg, nopLogger{}, nil, nil)

	// 03:00 UTC is 08:30 on the organizational calendar.
	rec, err := tr.CheckIn(context.Background(), "t1", "c1", "", "", at(3, 0))
	if err != nil {
		t.Fatalf("CheckIn: %v", err)
	}
	if rec.Label != model.ShiftMorning {
		t.Errorf("label = %s, want Morning under +05:30 offset", rec.Label)
	}
	if !rec.Late || rec.LateMinutes != 30 {
		t.Errorf("late = %v/%d, want late by 30 civil minutes", rec.Late, rec.LateMinutes)
	}
}

func TestHistoryNewestFirst(t *testing.T) {
	store := newStubStore()
	tr := newTestTracker(store)
	ctx := context.Background()
	for day := 1; day <= 3; day++ {
		now := time.Date(2025, 4, day, 8, 0, 0, 0, time.UTC)
		if _, err := tr.CheckIn(ctx, "t1", "c1", "", "", now); err != nil {
			t.Fatalf("CheckIn day %d: %v", day, err)
		}
	}
	recs, err := tr.History(ctx, "t1",
		civil.Date{Year: 2025, Month: time.April, Day: 1},
		civil.Date{Year: 2025, Month: time.April, Day: 3})
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("len = %d, want 3", len(recs))
	}
	for i := 1; i < len(recs); i++ {
		if recs[i-1].Date.Before(recs[i].Date) {
			t.Fatalf("history not newest-first: %s before %s", recs[i-1].Date, recs[i].Date)
		}
	}
}
