package cmd

import (
	"time"

	"github.com/wrenchworks/dispatch/core/civil"
	"github.com/wrenchworks/dispatch/core/model"
	"github.com/wrenchworks/dispatch/infra/store/memory"
)

// demoFixture seeds a small roster so the subcommands can be exercised
// without external directory or work-order services.
func demoFixture() *memory.Fixture {
	f := memory.NewFixture()
	f.AddCenter(model.ServiceCenter{
		ID:    "center-1",
		Name:  "Downtown Service Center",
		Hours: civil.Window{Start: 8 * 60, End: 18 * 60},
	})

	r1, r2 := 4.5, 3.0
	f.AddTechnician(model.Technician{ID: "tech-1", Name: "Alice Ko", Active: true, CenterID: "center-1", Department: "mechanical", Rating: &r1})
	f.AddTechnician(model.Technician{ID: "tech-2", Name: "Ben Ortiz", Active: true, CenterID: "center-1", Department: "mechanical", Rating: &r2})
	f.AddTechnician(model.Technician{ID: "tech-3", Name: "Cara Singh", Active: true, CenterID: "center-1", Department: "electrical"})

	f.AddSkill(model.Skill{TechnicianID: "tech-1", Code: "brake_service", Name: "Brake Service", Level: model.LevelExpert, Verified: true})
	f.AddSkill(model.Skill{TechnicianID: "tech-1", Code: "oil_change", Name: "Oil Change", Level: model.LevelIntermediate, Verified: true})
	f.AddSkill(model.Skill{TechnicianID: "tech-2", Code: "oil_change", Name: "Oil Change", Level: model.LevelBeginner, Verified: true})
	f.AddSkill(model.Skill{TechnicianID: "tech-3", Code: "ev_diagnostics", Name: "EV Diagnostics", Level: model.LevelExpert, Verified: true})

	now := time.Now().UTC()
	today := civil.Date{Year: now.Year(), Month: now.Month(), Day: now.Day()}
	for _, id := range []string{"tech-1", "tech-2", "tech-3"} {
		f.AddSchedule(model.ScheduleEntry{
			TechnicianID: id,
			CenterID:     "center-1",
			Date:         today,
			Start:        8 * 60,
			End:          17 * 60,
			Available:    true,
		})
	}
	f.SetWorkload("tech-1", 2)
	f.SetWorkload("tech-2", 1)
	f.SetWorkload("tech-3", 4)
	return f
}
