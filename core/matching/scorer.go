package matching

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/wrenchworks/dispatch/core/model"
)

// neutralPerformance is the score assumed for technicians without a rating.
const neutralPerformance = 70

// Scorer computes the weighted 0-100 match score for one candidate. It is
// pure and safe to run concurrently over a snapshot.
type Scorer struct {
	weights Weights
	ceiling int
}

// NewScorer builds a Scorer from the matching configuration.
func NewScorer(cfg Config) Scorer {
	return Scorer{weights: cfg.Weights, ceiling: cfg.WorkloadCeiling}
}

// Score evaluates the candidate against the required skills.
func (s Scorer) Score(c Candidate, required []string, now time.Time) model.MatchCandidate {
	matched, missing := matchSkills(c.Skills, required, now)

	skillScore := 100.0
	if len(required) > 0 {
		skillScore = 100 * float64(len(matched)) / float64(len(required))
	}

	workloadScore := 100 * float64(s.ceiling-c.Workload) / float64(s.ceiling)
	if workloadScore < 0 {
		workloadScore = 0
	}

	performanceScore := float64(neutralPerformance)
	if c.Technician.Rating != nil {
		// Map the 1-5 rating scale onto 0-100.
		performanceScore = 100 * (*c.Technician.Rating - 1) / 4
	}

	const availabilityScore = 100.0 // hard filter already passed

	weighted := s.weights.Skill*skillScore +
		s.weights.Workload*workloadScore +
		s.weights.Performance*performanceScore +
		s.weights.Availability*availabilityScore

	mc := model.MatchCandidate{
		Technician:        c.Technician,
		Workload:          c.Workload,
		SkillScore:        round2(skillScore),
		WorkloadScore:     round2(workloadScore),
		PerformanceScore:  round2(performanceScore),
		AvailabilityScore: availabilityScore,
		WeightedScore:     round2(weighted),
		MatchedSkills:     matched,
		MissingSkills:     missing,
	}
	mc.Reason = buildReason(mc)
	return mc
}

// matchSkills partitions the required skill names into matched and missing,
// preserving the caller's order. Only usable skills count.
func matchSkills(skills []model.Skill, required []string, now time.Time) (matched, missing []string) {
	for _, req := range required {
		found := false
		for _, s := range skills {
			if s.Usable(now) && s.Matches(req) {
				found = true
				break
			}
		}
		if found {
			matched = append(matched, req)
		} else {
			missing = append(missing, req)
		}
	}
	return matched, missing
}

// buildReason renders the deterministic explanation string from score tiers.
func buildReason(c model.MatchCandidate) string {
	var parts []string
	switch {
	case c.SkillScore == 100:
		parts = append(parts, "perfect skill match")
	case c.SkillScore >= 75:
		parts = append(parts, "good skill match")
	case c.SkillScore >= 50:
		parts = append(parts, "partial skill match")
	}
	if c.WorkloadScore >= 80 {
		parts = append(parts, "low current workload")
	} else if c.WorkloadScore <= 40 {
		parts = append(parts, "high current workload")
	}
	if c.PerformanceScore >= 80 {
		parts = append(parts, "excellent customer rating")
	}
	if len(parts) == 0 {
		parts = append(parts, "meets availability requirements")
	}
	reason := strings.Join(parts, ", ")
	if len(c.MissingSkills) > 0 {
		reason += fmt.Sprintf(" (missing: %s)", strings.Join(c.MissingSkills, ", "))
	}
	return reason
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
