package matching

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/wrenchworks/dispatch/core/civil"
	"github.com/wrenchworks/dispatch/core/model"
)

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any)         {}
func (nopLogger) Debugw(string, map[string]any) {}
func (nopLogger) Infof(string, ...any)          {}
func (nopLogger) Warnf(string, ...any)          {}
func (nopLogger) Errorf(string, ...any)         {}

// fixture implements all four source contracts over in-memory maps.
type fixture struct {
	techs     []model.Technician
	skills    map[string][]model.Skill
	schedules map[string]*model.ScheduleEntry // keyed tech/center/date
	workloads map[string]int
	skillErrs map[string]error
	schedErrs map[string]error
}

func newFixture() *fixture {
	return &fixture{
		skills:    make(map[string][]model.Skill),
		schedules: make(map[string]*model.ScheduleEntry),
		workloads: make(map[string]int),
		skillErrs: make(map[string]error),
		schedErrs: make(map[string]error),
	}
}

func (f *fixture) addTech(id string, workload int, rating *float64, skills ...model.Skill) {
	f.techs = append(f.techs, model.Technician{ID: id, Name: id, Active: true, CenterID: "c1", Rating: rating})
	f.workloads[id] = workload
	f.skills[id] = skills
	f.schedules[schedKey(id, "c1", testDate())] = &model.ScheduleEntry{
		TechnicianID: id, CenterID: "c1", Date: testDate(), Available: true,
	}
}

func schedKey(techID, centerID string, d civil.Date) string {
	return techID + "/" + centerID + "/" + d.String()
}

func testDate() civil.Date { return civil.Date{Year: 2025, Month: time.April, Day: 7} }

func (f *fixture) Technicians(context.Context) ([]model.Technician, error) { return f.techs, nil }

func (f *fixture) Skills(_ context.Context, techID string) ([]model.Skill, error) {
	if err := f.skillErrs[techID]; err != nil {
		return nil, err
	}
	return f.skills[techID], nil
}

func (f *fixture) Entry(_ context.Context, techID, centerID string, d civil.Date) (*model.ScheduleEntry, error) {
	if err := f.schedErrs[techID]; err != nil {
		return nil, err
	}
	return f.schedules[schedKey(techID, centerID, d)], nil
}

func (f *fixture) OpenOrders(_ context.Context, techID string) (int, error) {
	return f.workloads[techID], nil
}

func newTestFilter(f *fixture) *Filter {
	return NewFilter(f, f, f, f, testConfig(), nopLogger{})
}

func verified(name string) model.Skill { return model.Skill{Name: name, Verified: true} }

func TestFilterHardConstraints(t *testing.T) {
	f := newFixture()
	f.addTech("ok", 1, nil, verified("Diagnostics"))
	f.addTech("overloaded", 5, nil, verified("Diagnostics"))
	f.addTech("unskilled", 1, nil, verified("Bodywork"))
	f.addTech("unavailable", 1, nil, verified("Diagnostics"))
	f.schedules[schedKey("unavailable", "c1", testDate())].Available = false
	f.addTech("unscheduled", 1, nil, verified("Diagnostics"))
	delete(f.schedules, schedKey("unscheduled", "c1", testDate()))
	f.addTech("inactive", 1, nil, verified("Diagnostics"))
	f.techs[len(f.techs)-1].Active = false

	got, err := newTestFilter(f).FindAvailable(context.Background(), Criteria{
		CenterID: "c1", Date: testDate(), RequiredSkills: []string{"Diagnostics"},
	}, time.Now())
	if err != nil {
		t.Fatalf("FindAvailable: %v", err)
	}
	if len(got) != 1 || got[0].Technician.ID != "ok" {
		t.Fatalf("got %d candidates %+v, want only 'ok'", len(got), got)
	}
}

func TestFilterOrdering(t *testing.T) {
	high := 4.8
	low := 3.1
	f := newFixture()
	f.addTech("busy", 3, &high)
	f.addTech("idle-low", 1, &low)
	f.addTech("idle-high", 1, &high)

	got, err := newTestFilter(f).FindAvailable(context.Background(), Criteria{
		CenterID: "c1", Date: testDate(),
	}, time.Now())
	if err != nil {
		t.Fatalf("FindAvailable: %v", err)
	}
	var ids []string
	for _, c := range got {
		ids = append(ids, c.Technician.ID)
	}
	want := []string{"idle-high", "idle-low", "busy"}
	if fmt.Sprint(ids) != fmt.Sprint(want) {
		t.Fatalf("order = %v, want %v", ids, want)
	}
}

func TestFilterCriteriaCeilingOverride(t *testing.T) {
	f := newFixture()
	f.addTech("t1", 2, nil)

	got, err := newTestFilter(f).FindAvailable(context.Background(), Criteria{
		CenterID: "c1", Date: testDate(), WorkloadCeiling: 2,
	}, time.Now())
	if err != nil {
		t.Fatalf("FindAvailable: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("got %d candidates, want 0 under ceiling 2", len(got))
	}
}

func TestFilterSkipsFailingCandidate(t *testing.T) {
	f := newFixture()
	f.addTech("good", 1, nil, verified("Diagnostics"))
	f.addTech("broken", 1, nil, verified("Diagnostics"))
	f.skillErrs["broken"] = fmt.Errorf("skill service unavailable")

	got, err := newTestFilter(f).FindAvailable(context.Background(), Criteria{
		CenterID: "c1", Date: testDate(), RequiredSkills: []string{"Diagnostics"},
	}, time.Now())
	if err != nil {
		t.Fatalf("a single candidate failure must not abort the request: %v", err)
	}
	if len(got) != 1 || got[0].Technician.ID != "good" {
		t.Fatalf("got %+v, want only 'good'", got)
	}
}

func TestFilterHonorsCancellation(t *testing.T) {
	f := newFixture()
	f.addTech("t1", 1, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := newTestFilter(f).FindAvailable(ctx, Criteria{CenterID: "c1", Date: testDate()}, time.Now()); err == nil {
		t.Fatal("expected context error after cancellation")
	}
}
