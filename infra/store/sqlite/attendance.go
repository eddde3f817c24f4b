// Package sqlite persists attendance records in an embedded SQLite database.
// The (technician_id, civil_date) uniqueness constraint is the serialization
// point for concurrent check-ins.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/wrenchworks/dispatch/core/attendance"
	"github.com/wrenchworks/dispatch/core/civil"
	"github.com/wrenchworks/dispatch/core/model"
)

// Store implements attendance.Store over SQLite.
type Store struct {
	db *sql.DB
}

// New opens or creates the database at path and ensures the schema.
func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	schema := `CREATE TABLE IF NOT EXISTS attendance (
        id TEXT PRIMARY KEY,
        technician_id TEXT NOT NULL,
        center_id TEXT NOT NULL,
        civil_date TEXT NOT NULL,
        check_in INTEGER,
        check_out INTEGER,
        label TEXT NOT NULL,
        window_start INTEGER NOT NULL,
        window_end INTEGER NOT NULL,
        late INTEGER NOT NULL,
        late_minutes INTEGER NOT NULL,
        early_leave INTEGER NOT NULL,
        worked_hours REAL NOT NULL,
        net_working_hours REAL NOT NULL,
        reopened INTEGER NOT NULL,
        notes TEXT NOT NULL,
        UNIQUE (technician_id, civil_date)
    );`
	if _, err := db.Exec(schema); err != nil {
		if cerr := db.Close(); cerr != nil {
			return nil, fmt.Errorf("close db: %v (schema err: %w)", cerr, err)
		}
		return nil, err
	}
	return &Store{db: db}, nil
}

// Find returns the record for the pair, or (nil, nil) when none exists.
func (s *Store) Find(ctx context.Context, technicianID string, date civil.Date) (*model.AttendanceRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, technician_id, center_id, civil_date, check_in, check_out,
                label, window_start, window_end, late, late_minutes, early_leave,
                worked_hours, net_working_hours, reopened, notes
         FROM attendance WHERE technician_id = ? AND civil_date = ?`,
		technicianID, date.String())
	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// Create inserts a new record, returning attendance.ErrDuplicateRecord when
// the (technician, date) pair already exists.
func (s *Store) Create(ctx context.Context, rec *model.AttendanceRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO attendance (id, technician_id, center_id, civil_date, check_in,
                check_out, label, window_start, window_end, late, late_minutes,
                early_leave, worked_hours, net_working_hours, reopened, notes)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.TechnicianID, rec.CenterID, rec.Date.String(),
		nullInstant(rec.CheckIn), nullInstant(rec.CheckOut),
		string(rec.Label), int(rec.Window.Start), int(rec.Window.End),
		boolInt(rec.Late), rec.LateMinutes, boolInt(rec.EarlyLeave),
		rec.WorkedHours, rec.NetWorkingHours, rec.Reopened, rec.Notes)
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return attendance.ErrDuplicateRecord
	}
	return err
}

// Update overwrites the record for rec's (technician, date).
func (s *Store) Update(ctx context.Context, rec *model.AttendanceRecord) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE attendance SET center_id = ?, check_in = ?, check_out = ?,
                label = ?, window_start = ?, window_end = ?, late = ?,
                late_minutes = ?, early_leave = ?, worked_hours = ?,
                net_working_hours = ?, reopened = ?, notes = ?
         WHERE technician_id = ? AND civil_date = ?`,
		rec.CenterID, nullInstant(rec.CheckIn), nullInstant(rec.CheckOut),
		string(rec.Label), int(rec.Window.Start), int(rec.Window.End),
		boolInt(rec.Late), rec.LateMinutes, boolInt(rec.EarlyLeave),
		rec.WorkedHours, rec.NetWorkingHours, rec.Reopened, rec.Notes,
		rec.TechnicianID, rec.Date.String())
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("no attendance record for %s on %s", rec.TechnicianID, rec.Date)
	}
	return nil
}

// History returns records with from <= date <= to, newest date first.
func (s *Store) History(ctx context.Context, technicianID string, from, to civil.Date) ([]model.AttendanceRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, technician_id, center_id, civil_date, check_in, check_out,
                label, window_start, window_end, late, late_minutes, early_leave,
                worked_hours, net_working_hours, reopened, notes
         FROM attendance
         WHERE technician_id = ? AND civil_date >= ? AND civil_date <= ?
         ORDER BY civil_date DESC`,
		technicianID, from.String(), to.String())
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []model.AttendanceRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*model.AttendanceRecord, error) {
	var (
		rec              model.AttendanceRecord
		dateStr, label   string
		checkIn          sql.NullInt64
		checkOut         sql.NullInt64
		winStart, winEnd int
		late, early      int
	)
	err := row.Scan(&rec.ID, &rec.TechnicianID, &rec.CenterID, &dateStr,
		&checkIn, &checkOut, &label, &winStart, &winEnd, &late,
		&rec.LateMinutes, &early, &rec.WorkedHours, &rec.NetWorkingHours,
		&rec.Reopened, &rec.Notes)
	if err != nil {
		return nil, err
	}
	date, err := civil.ParseDate(dateStr)
	if err != nil {
		return nil, err
	}
	rec.Date = date
	rec.Label = model.ShiftLabel(label)
	rec.Window = civil.Window{Start: civil.TimeOfDay(winStart), End: civil.TimeOfDay(winEnd)}
	rec.Late = late != 0
	rec.EarlyLeave = early != 0
	if checkIn.Valid {
		t := time.Unix(checkIn.Int64, 0).UTC()
		rec.CheckIn = &t
	}
	if checkOut.Valid {
		t := time.Unix(checkOut.Int64, 0).UTC()
		rec.CheckOut = &t
	}
	return &rec, nil
}

func nullInstant(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Unix()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
