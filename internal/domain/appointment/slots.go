package appointment

import (
	"time"

	"github.com/barberbook/barberbook-api/internal/models"
)

// Interval is a half-open [Start, End) busy window.
type Interval struct {
	Start time.Time
	End   time.Time
}

// AvailableSlots walks candidate start times from dayStart to dayEnd in
// fixed steps and keeps every start whose [t, t+duration) fits inside the
// working window, begins strictly after now, and does not intersect a busy
// interval. The step is independent of the duration so short services can
// pack between longer bookings.
//
// Degenerate input (non-positive duration/step, end not after start) yields
// an empty result, never an error: "no slots" is always a valid answer.
func AvailableSlots(dayStart, dayEnd time.Time, duration, step time.Duration, busy []Interval, now time.Time) []time.Time {
	if duration <= 0 || step <= 0 {
		return nil
	}
	if !dayEnd.After(dayStart) {
		return nil
	}

	var slots []time.Time
	for t := dayStart; ; t = t.Add(step) {
		slotEnd := t.Add(duration)

		// Starts only grow, so once the service no longer fits before
		// dayEnd nothing later will either.
		if slotEnd.After(dayEnd) {
			break
		}
		if !t.After(now) {
			continue
		}
		if overlapsAny(t, slotEnd, busy) {
			continue
		}
		slots = append(slots, t)
	}

	return slots
}

func overlapsAny(start, end time.Time, busy []Interval) bool {
	for _, b := range busy {
		// [start,end) intersects [b.Start,b.End) iff start < b.End && b.Start < end.
		if start.Before(b.End) && b.Start.Before(end) {
			return true
		}
	}
	return false
}

// Window is a barber's working window for one calendar day, with an
// optional lunch break already expressed as a busy interval.
type Window struct {
	Start time.Time
	End   time.Time
	Lunch *Interval
}

// ResolveWindow anchors a WorkingHours row onto a concrete date in the
// date's location. ok is false when the barber is off that day or the row
// is malformed (missing or inverted bounds).
func ResolveWindow(wh *models.WorkingHours, date time.Time) (Window, bool) {
	if wh == nil || !wh.Active || wh.StartTime == "" || wh.EndTime == "" {
		return Window{}, false
	}

	loc := date.Location()

	parseHM := func(hm string) (time.Time, bool) {
		t, err := time.Parse("15:04", hm)
		if err != nil {
			return time.Time{}, false
		}
		return time.Date(
			date.Year(), date.Month(), date.Day(),
			t.Hour(), t.Minute(), 0, 0,
			loc,
		), true
	}

	start, ok := parseHM(wh.StartTime)
	if !ok {
		return Window{}, false
	}
	end, ok := parseHM(wh.EndTime)
	if !ok {
		return Window{}, false
	}
	if !end.After(start) {
		return Window{}, false
	}

	w := Window{Start: start, End: end}

	if wh.LunchStart != "" && wh.LunchEnd != "" {
		ls, ok1 := parseHM(wh.LunchStart)
		le, ok2 := parseHM(wh.LunchEnd)
		if ok1 && ok2 && le.After(ls) {
			w.Lunch = &Interval{Start: ls, End: le}
		}
	}

	return w, true
}
