package attendance

import (
	"math"

	"github.com/wrenchworks/dispatch/core/civil"
	"github.com/wrenchworks/dispatch/core/model"
)

// Shares of the operating span that bound the morning and afternoon windows.
const (
	morningShare   = 0.35
	afternoonShare = 0.70
)

// classifyShift resolves the shift label and window for a check-in time
// within the center's operating hours. Check-ins before opening or at/after
// closing fall into the night windows bordering the operating span.
func classifyShift(hours civil.Window, checkIn civil.TimeOfDay) (model.ShiftLabel, civil.Window) {
	if checkIn < hours.Start {
		return model.ShiftNight, civil.Window{Start: 0, End: hours.Start}
	}
	if checkIn >= hours.End {
		return model.ShiftNight, civil.Window{Start: hours.End, End: civil.EndOfDay}
	}

	span := hours.Minutes()
	morningEnd := hours.Start + civil.TimeOfDay(math.Round(float64(span)*morningShare))
	afternoonEnd := hours.Start + civil.TimeOfDay(math.Round(float64(span)*afternoonShare))

	p := float64(checkIn-hours.Start) / float64(span)
	switch {
	case p < morningShare:
		return model.ShiftMorning, civil.Window{Start: hours.Start, End: morningEnd}
	case p < afternoonShare:
		return model.ShiftAfternoon, civil.Window{Start: morningEnd, End: afternoonEnd}
	default:
		return model.ShiftEvening, civil.Window{Start: afternoonEnd, End: hours.End}
	}
}
