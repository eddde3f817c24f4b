// Package memory provides in-memory implementations of the collaborator data
// contracts. They back the CLI demo commands and tests; production deployments
// plug real directory/schedule/work-order services in instead.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/wrenchworks/dispatch/core/attendance"
	"github.com/wrenchworks/dispatch/core/civil"
	"github.com/wrenchworks/dispatch/core/model"
)

// Fixture holds technicians, skills, schedules, workloads and center hours
// behind every source interface the core consumes. Safe for concurrent use.
type Fixture struct {
	mu        sync.RWMutex
	techs     []model.Technician
	skills    map[string][]model.Skill
	schedules map[string]model.ScheduleEntry
	workloads map[string]int
	centers   map[string]model.ServiceCenter
}

// NewFixture creates an empty Fixture.
func NewFixture() *Fixture {
	return &Fixture{
		skills:    make(map[string][]model.Skill),
		schedules: make(map[string]model.ScheduleEntry),
		workloads: make(map[string]int),
		centers:   make(map[string]model.ServiceCenter),
	}
}

func scheduleKey(technicianID, centerID string, date civil.Date) string {
	return technicianID + "/" + centerID + "/" + date.String()
}

// AddTechnician registers a technician.
func (f *Fixture) AddTechnician(t model.Technician) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.techs = append(f.techs, t)
}

// AddSkill attaches a skill record to its technician.
func (f *Fixture) AddSkill(s model.Skill) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.skills[s.TechnicianID] = append(f.skills[s.TechnicianID], s)
}

// AddSchedule registers a schedule entry.
func (f *Fixture) AddSchedule(e model.ScheduleEntry) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.schedules[scheduleKey(e.TechnicianID, e.CenterID, e.Date)] = e
}

// SetWorkload sets a technician's open order count.
func (f *Fixture) SetWorkload(technicianID string, count int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.workloads[technicianID] = count
}

// AddCenter registers a service center.
func (f *Fixture) AddCenter(c model.ServiceCenter) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.centers[c.ID] = c
}

// Technicians implements the directory contract.
func (f *Fixture) Technicians(context.Context) ([]model.Technician, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]model.Technician, len(f.techs))
	copy(out, f.techs)
	return out, nil
}

// Skills implements the skill source contract.
func (f *Fixture) Skills(_ context.Context, technicianID string) ([]model.Skill, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]model.Skill, len(f.skills[technicianID]))
	copy(out, f.skills[technicianID])
	return out, nil
}

// Entry implements the schedule source contract.
func (f *Fixture) Entry(_ context.Context, technicianID, centerID string, date civil.Date) (*model.ScheduleEntry, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	e, ok := f.schedules[scheduleKey(technicianID, centerID, date)]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

// OpenOrders implements the workload source contract.
func (f *Fixture) OpenOrders(_ context.Context, technicianID string) (int, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.workloads[technicianID], nil
}

// OperatingHours implements the center directory contract.
func (f *Fixture) OperatingHours(_ context.Context, centerID string) (civil.Window, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	c, ok := f.centers[centerID]
	if !ok {
		return civil.Window{}, fmt.Errorf("%w: %s", attendance.ErrCenterNotFound, centerID)
	}
	return c.Hours, nil
}

// AttendanceStore is an in-memory attendance.Store keyed by (technician,
// civil date). The mutex makes Create atomic, so concurrent first check-ins
// serialize the same way the SQLite uniqueness constraint does.
type AttendanceStore struct {
	mu   sync.Mutex
	recs map[string]model.AttendanceRecord
}

// NewAttendanceStore creates an empty store.
func NewAttendanceStore() *AttendanceStore {
	return &AttendanceStore{recs: make(map[string]model.AttendanceRecord)}
}

func recordKey(technicianID string, date civil.Date) string {
	return technicianID + "/" + date.String()
}

// Find returns the record for the pair, or (nil, nil) when none exists.
func (s *AttendanceStore) Find(_ context.Context, technicianID string, date civil.Date) (*model.AttendanceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.recs[recordKey(technicianID, date)]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

// Create inserts a record, rejecting duplicates on (technician, date).
func (s *AttendanceStore) Create(_ context.Context, rec *model.AttendanceRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := recordKey(rec.TechnicianID, rec.Date)
	if _, ok := s.recs[k]; ok {
		return attendance.ErrDuplicateRecord
	}
	s.recs[k] = *rec
	return nil
}

// Update overwrites the record for rec's (technician, date).
func (s *AttendanceStore) Update(_ context.Context, rec *model.AttendanceRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := recordKey(rec.TechnicianID, rec.Date)
	if _, ok := s.recs[k]; !ok {
		return fmt.Errorf("no attendance record for %s on %s", rec.TechnicianID, rec.Date)
	}
	s.recs[k] = *rec
	return nil
}

// History returns records with from <= date <= to, newest date first.
func (s *AttendanceStore) History(_ context.Context, technicianID string, from, to civil.Date) ([]model.AttendanceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.AttendanceRecord
	for _, rec := range s.recs {
		if rec.TechnicianID != technicianID || rec.Date.Before(from) || rec.Date.After(to) {
			continue
		}
		out = append(out, rec)
	}
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[i].Date.Before(out[j].Date) {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out, nil
}
