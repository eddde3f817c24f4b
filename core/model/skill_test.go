package model

import (
	"testing"
	"time"
)

func TestSkillMatches(t *testing.T) {
	s := Skill{Code: "battery-replacement", Name: "EV Battery Replacement Specialist"}
	cases := []struct {
		required string
		want     bool
	}{
		{"Battery Replacement", true},
		{"battery replacement", true},
		{"EV Battery Replacement Specialist and more", true}, // skill name contained in requirement
		{"Diagnostics", false},
		{"", false},
	}
	for _, c := range cases {
		if got := s.Matches(c.required); got != c.want {
			t.Errorf("Matches(%q) = %v, want %v", c.required, got, c.want)
		}
	}
}

func TestSkillUsable(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(24 * time.Hour)

	cases := []struct {
		name  string
		skill Skill
		want  bool
	}{
		{"verified no expiry", Skill{Verified: true}, true},
		{"verified future expiry", Skill{Verified: true, ExpiresAt: &future}, true},
		{"verified expired", Skill{Verified: true, ExpiresAt: &past}, false},
		{"unverified", Skill{Verified: false}, false},
	}
	for _, c := range cases {
		if got := c.skill.Usable(now); got != c.want {
			t.Errorf("%s: Usable = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestParseShiftLabel(t *testing.T) {
	if l, err := ParseShiftLabel("fullday"); err != nil || l != ShiftFullDay {
		t.Fatalf("ParseShiftLabel(fullday) = %v, %v", l, err)
	}
	if l, err := ParseShiftLabel(""); err != nil || l != "" {
		t.Fatalf("ParseShiftLabel(empty) = %v, %v", l, err)
	}
	if _, err := ParseShiftLabel("graveyard"); err == nil {
		t.Fatal("expected error for unknown label")
	}
}

func TestParseSkillLevel(t *testing.T) {
	if l, err := ParseSkillLevel("Expert"); err != nil || l != LevelExpert {
		t.Fatalf("ParseSkillLevel(Expert) = %v, %v", l, err)
	}
	if _, err := ParseSkillLevel("guru"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestAttendanceRecordStatus(t *testing.T) {
	now := time.Now()
	rec := &AttendanceRecord{CheckIn: &now}
	if !rec.Open() || rec.Status() != AttendanceOpen {
		t.Fatal("record with check-in only should be open")
	}
	rec.CheckOut = &now
	if rec.Open() || rec.Status() != AttendanceClosed {
		t.Fatal("record with check-out should be closed")
	}
	var nilRec *AttendanceRecord
	if nilRec.Open() {
		t.Fatal("nil record should not be open")
	}
}
