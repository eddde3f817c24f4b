package model

import (
	"fmt"
	"strings"
	"time"
)

// SkillLevel grades a technician's proficiency.
type SkillLevel int

const (
	LevelBeginner SkillLevel = iota + 1
	LevelIntermediate
	LevelExpert
)

func (l SkillLevel) String() string {
	switch l {
	case LevelBeginner:
		return "Beginner"
	case LevelIntermediate:
		return "Intermediate"
	case LevelExpert:
		return "Expert"
	default:
		return fmt.Sprintf("SkillLevel(%d)", int(l))
	}
}

// ParseSkillLevel converts a display string back to a SkillLevel.
func ParseSkillLevel(s string) (SkillLevel, error) {
	switch strings.ToLower(s) {
	case "beginner":
		return LevelBeginner, nil
	case "intermediate":
		return LevelIntermediate, nil
	case "expert":
		return LevelExpert, nil
	default:
		return 0, fmt.Errorf("unknown skill level %q", s)
	}
}

// Skill is one certified capability held by a technician. Code is the
// canonical identifier used for matching; Name is the display form.
type Skill struct {
	TechnicianID string
	Code         string
	Name         string
	Level        SkillLevel
	Verified     bool

	// ExpiresAt is the certification expiry, nil when the certification
	// does not expire.
	ExpiresAt *time.Time
}

// Usable reports whether the skill counts toward matching: it must be
// verified and its certification must not have expired.
func (s Skill) Usable(now time.Time) bool {
	if !s.Verified {
		return false
	}
	return s.ExpiresAt == nil || s.ExpiresAt.After(now)
}

// Matches reports whether the skill satisfies a required skill name. The
// comparison is case-insensitive containment in either direction, so a
// "EV Battery Replacement Specialist" skill satisfies a "Battery Replacement"
// requirement and vice versa. Both Code and Name are consulted.
func (s Skill) Matches(required string) bool {
	req := strings.ToLower(strings.TrimSpace(required))
	if req == "" {
		return false
	}
	for _, own := range []string{s.Code, s.Name} {
		o := strings.ToLower(strings.TrimSpace(own))
		if o == "" {
			continue
		}
		if strings.Contains(o, req) || strings.Contains(req, o) {
			return true
		}
	}
	return false
}
