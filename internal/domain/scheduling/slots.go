package scheduling

import (
	"sort"
	"time"
)

// GenerateSlots expands one session into its candidate slots for date. The
// result is empty when the session is inactive or date falls on a different
// weekday; neither case is an error. Slots start at StartTime and repeat
// every SlotInterval while the whole interval still fits before EndTime, so
// a partial trailing period is dropped. Pure function of its inputs.
func GenerateSlots(s Session, date time.Time) []Slot {
	if !s.Active || int(date.Weekday()) != s.DayOfWeek {
		return nil
	}
	start, err := ParseClock(s.StartTime)
	if err != nil {
		return nil
	}
	end, err := ParseClock(s.EndTime)
	if err != nil || end <= start {
		return nil
	}

	step := int(SlotInterval.Minutes())
	var slots []Slot
	for cur := start; cur+step <= end; cur += step {
		slots = append(slots, Slot{Time: FormatClock(cur), SessionID: s.ID, Available: true})
	}
	return slots
}

// BuildAvailability merges the candidate slots of every session matching
// date's weekday with that day's booked appointments. A slot becomes
// unavailable when a pending or confirmed appointment holds its exact time,
// or when the owning session has reached MaxPatients for the day; the
// capacity gate closes the whole session, not just the filled times. Slots
// are returned in ascending time order.
func BuildAvailability(date time.Time, sessions []Session, appointments []Appointment) []Slot {
	taken := make(map[string]bool)
	for _, a := range appointments {
		if a.Status.Occupies() {
			taken[a.Time] = true
		}
	}

	var out []Slot
	for _, s := range sessions {
		slots := GenerateSlots(s, date)
		if len(slots) == 0 {
			continue
		}
		full := sessionFull(s, appointments)
		for _, sl := range slots {
			if full || taken[sl.Time] {
				sl.Available = false
			}
			out = append(out, sl)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Time < out[j].Time })
	return out
}

// sessionFull counts the day's occupying appointments that fall inside the
// session's window and compares against MaxPatients. A nil cap never fills.
func sessionFull(s Session, appointments []Appointment) bool {
	if s.MaxPatients == nil {
		return false
	}
	start, err := ParseClock(s.StartTime)
	if err != nil {
		return false
	}
	end, err := ParseClock(s.EndTime)
	if err != nil {
		return false
	}

	n := 0
	for _, a := range appointments {
		if !a.Status.Occupies() {
			continue
		}
		m, err := ParseClock(a.Time)
		if err != nil {
			continue
		}
		if m >= start && m < end {
			n++
		}
	}
	return n >= *s.MaxPatients
}
