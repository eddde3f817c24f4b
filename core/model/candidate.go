package model

// MatchCandidate is the scored result of evaluating one technician against a
// job request. It is computed per request and never persisted.
type MatchCandidate struct {
	Technician Technician
	Workload   int

	SkillScore        float64
	WorkloadScore     float64
	PerformanceScore  float64
	AvailabilityScore float64
	WeightedScore     float64

	MatchedSkills []string
	MissingSkills []string

	// Reason is a deterministic human-readable explanation of the score.
	Reason string
}
