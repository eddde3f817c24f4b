package matching

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/wrenchworks/dispatch/core/logger"
	"github.com/wrenchworks/dispatch/core/model"
)

// Filter applies the hard availability constraints over the technician pool:
// active, scheduled and available at the center on the date, under the
// workload ceiling, and holding every required skill (verified, unexpired,
// containment match). A failure fetching one technician's data skips that
// technician rather than aborting the request.
type Filter struct {
	dir       Directory
	skills    SkillSource
	schedules ScheduleSource
	workloads WorkloadSource
	cfg       Config
	log       logger.Logger
}

// NewFilter wires a Filter.
func NewFilter(dir Directory, skills SkillSource, schedules ScheduleSource, workloads WorkloadSource, cfg Config, log logger.Logger) *Filter {
	return &Filter{dir: dir, skills: skills, schedules: schedules, workloads: workloads, cfg: cfg, log: log}
}

// FindAvailable returns the candidates passing every hard filter, ordered by
// workload ascending then rating descending (ties by technician ID).
func (f *Filter) FindAvailable(ctx context.Context, c Criteria, now time.Time) ([]Candidate, error) {
	pool, err := f.dir.Technicians(ctx)
	if err != nil {
		return nil, fmt.Errorf("list technicians: %w", err)
	}

	ceiling := c.WorkloadCeiling
	if ceiling <= 0 {
		ceiling = f.cfg.WorkloadCeiling
	}

	var out []Candidate
	for _, tech := range pool {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if !tech.Active {
			continue
		}
		entry, err := f.schedules.Entry(ctx, tech.ID, c.CenterID, c.Date)
		if err != nil {
			f.log.Warnf("schedule lookup for %s failed, skipping: %v", tech.ID, err)
			continue
		}
		if entry == nil || !entry.Available {
			continue
		}
		workload, err := f.workloads.OpenOrders(ctx, tech.ID)
		if err != nil {
			f.log.Warnf("workload lookup for %s failed, skipping: %v", tech.ID, err)
			continue
		}
		if workload >= ceiling {
			continue
		}
		skills, err := f.skills.Skills(ctx, tech.ID)
		if err != nil {
			f.log.Warnf("skill lookup for %s failed, skipping: %v", tech.ID, err)
			continue
		}
		if !hasAllSkills(skills, c.RequiredSkills, now) {
			continue
		}
		out = append(out, Candidate{Technician: tech, Skills: skills, Workload: workload})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Workload != out[j].Workload {
			return out[i].Workload < out[j].Workload
		}
		ri, rj := ratingOf(out[i].Technician), ratingOf(out[j].Technician)
		if ri != rj {
			return ri > rj
		}
		return out[i].Technician.ID < out[j].Technician.ID
	})
	return out, nil
}

// hasAllSkills reports whether every required skill is covered by at least
// one usable skill record.
func hasAllSkills(skills []model.Skill, required []string, now time.Time) bool {
	for _, req := range required {
		matched := false
		for _, s := range skills {
			if s.Usable(now) && s.Matches(req) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return true
}

// ratingOf treats an absent rating as below any real one for ordering.
func ratingOf(t model.Technician) float64 {
	if t.Rating == nil {
		return 0
	}
	return *t.Rating
}
