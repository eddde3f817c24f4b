package model

// DefaultWorkloadCeiling is the maximum number of concurrent work orders a
// technician may hold.
const DefaultWorkloadCeiling = 5

// Technician is a snapshot of a field worker as exposed by the technician
// directory. Workload is intentionally absent: it is a derived count owned by
// the work-order collaborator and fetched per request.
type Technician struct {
	ID         string
	Name       string
	Active     bool
	CenterID   string
	Department string

	// Rating is the average customer rating on a 1-5 scale, nil when the
	// technician has not been rated yet.
	Rating *float64
}
