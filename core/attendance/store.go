package attendance

import (
	"context"
	"errors"

	"github.com/wrenchworks/dispatch/core/civil"
	"github.com/wrenchworks/dispatch/core/model"
)

// ErrDuplicateRecord is returned by Store.Create when a record already exists
// for the (technician, civil date) pair. Stores must enforce this uniqueness
// so two concurrent first check-ins cannot both succeed.
var ErrDuplicateRecord = errors.New("attendance record already exists for technician and date")

// ErrCenterNotFound is returned when the center is unknown to the directory.
var ErrCenterNotFound = errors.New("service center not found")

// Store persists attendance records keyed by (technician, civil date).
type Store interface {
	// Find returns the record for the pair, or (nil, nil) when none exists.
	Find(ctx context.Context, technicianID string, date civil.Date) (*model.AttendanceRecord, error)
	// Create inserts a new record. ErrDuplicateRecord signals a conflict on
	// the (technician, date) uniqueness constraint.
	Create(ctx context.Context, rec *model.AttendanceRecord) error
	// Update overwrites the existing record for rec's (technician, date).
	Update(ctx context.Context, rec *model.AttendanceRecord) error
	// History returns records with from <= date <= to, newest date first.
	History(ctx context.Context, technicianID string, from, to civil.Date) ([]model.AttendanceRecord, error)
}

// CenterDirectory resolves service-center operating hours. It is owned by an
// external collaborator; only the data contract lives here.
type CenterDirectory interface {
	OperatingHours(ctx context.Context, centerID string) (civil.Window, error)
}
