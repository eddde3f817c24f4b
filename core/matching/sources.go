package matching

import (
	"context"

	"github.com/wrenchworks/dispatch/core/civil"
	"github.com/wrenchworks/dispatch/core/model"
)

// Data contracts consumed from external collaborators. Only the read surfaces
// needed by the matching pipeline are declared here.

// Directory lists the technician pool.
type Directory interface {
	Technicians(ctx context.Context) ([]model.Technician, error)
}

// SkillSource returns a technician's skill records.
type SkillSource interface {
	Skills(ctx context.Context, technicianID string) ([]model.Skill, error)
}

// ScheduleSource resolves a technician's schedule entry for a center and
// date. A nil entry means the technician is not scheduled there.
type ScheduleSource interface {
	Entry(ctx context.Context, technicianID, centerID string, date civil.Date) (*model.ScheduleEntry, error)
}

// WorkloadSource counts a technician's work orders in Assigned or InProgress
// status.
type WorkloadSource interface {
	OpenOrders(ctx context.Context, technicianID string) (int, error)
}

// Criteria describes the job a technician is being matched for.
type Criteria struct {
	CenterID       string
	Date           civil.Date
	Start          *civil.TimeOfDay
	RequiredSkills []string
	EstimatedMin   int
	// WorkloadCeiling overrides the configured ceiling when positive.
	WorkloadCeiling int
}

// Candidate is a point-in-time snapshot of a technician that passed the hard
// availability filter, carrying the data the scorer needs.
type Candidate struct {
	Technician model.Technician
	Skills     []model.Skill
	Workload   int
}
