package timetable

import (
	"fmt"

	appErrors "github.com/campushq/timetable-api/pkg/errors"
)

// The working day runs 08:00-22:00 in one-hour slots. The slot list is a
// process-wide constant; persisted entries reference slots by start label, so
// changing this window invalidates stored timetables.
const (
	dayStartHour = 8
	dayEndHour   = 22
)

// SlotCount is the number of hourly slots in a working day.
const SlotCount = dayEndHour - dayStartHour

// Days is the fixed ordered teaching-day list.
var Days = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"}

// DayCount is the number of teaching days per week.
var DayCount = len(Days)

var (
	slotLabels []string
	slotIndex  map[string]int
	dayIndex   map[string]int
)

func init() {
	slotLabels = make([]string, 0, SlotCount)
	slotIndex = make(map[string]int, SlotCount)
	for i := 0; i < SlotCount; i++ {
		label := fmt.Sprintf("%s - %s", clockLabel(dayStartHour+i), clockLabel(dayStartHour+i+1))
		slotLabels = append(slotLabels, label)
		slotIndex[label] = i
	}
	dayIndex = make(map[string]int, len(Days))
	for i, d := range Days {
		dayIndex[d] = i
	}
}

func clockLabel(hour int) string {
	suffix := "AM"
	display := hour
	switch {
	case hour == 12:
		suffix = "PM"
	case hour > 12:
		suffix = "PM"
		display = hour - 12
	case hour == 24 || hour == 0:
		display = 12
	}
	return fmt.Sprintf("%d:00 %s", display, suffix)
}

// SlotLabels returns the ordered slot label list.
func SlotLabels() []string {
	out := make([]string, len(slotLabels))
	copy(out, slotLabels)
	return out
}

// SlotIndex resolves a slot label to its index. Persisted labels may predate
// the current slot window, so callers must treat NotFound as a per-entry skip.
func SlotIndex(label string) (int, error) {
	idx, ok := slotIndex[label]
	if !ok {
		return 0, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("unknown time slot %q", label))
	}
	return idx, nil
}

// SlotLabel returns the label for a slot index.
func SlotLabel(idx int) (string, error) {
	if idx < 0 || idx >= len(slotLabels) {
		return "", appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("time slot index %d out of range", idx))
	}
	return slotLabels[idx], nil
}

// SlotStart returns the start clock label of a slot ("8:00 AM").
func SlotStart(idx int) (string, error) {
	if idx < 0 || idx >= SlotCount {
		return "", appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("time slot index %d out of range", idx))
	}
	return clockLabel(dayStartHour + idx), nil
}

// RangeLabel renders the inclusive slot range [start, end] as a clock range
// ("8:00 AM - 10:00 AM"). The end bound is clamped to the last slot so that
// overflow reports still render a readable range.
func RangeLabel(start, end int) (string, error) {
	if start < 0 || start >= SlotCount || end < start {
		return "", appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("invalid slot range [%d, %d]", start, end))
	}
	if end >= SlotCount {
		end = SlotCount - 1
	}
	return fmt.Sprintf("%s - %s", clockLabel(dayStartHour+start), clockLabel(dayStartHour+end+1)), nil
}

// DayIndex resolves a day name to its index.
func DayIndex(name string) (int, error) {
	idx, ok := dayIndex[name]
	if !ok {
		return 0, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("unknown day %q", name))
	}
	return idx, nil
}

// DayLabel returns the day name for an index.
func DayLabel(idx int) (string, error) {
	if idx < 0 || idx >= len(Days) {
		return "", appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("day index %d out of range", idx))
	}
	return Days[idx], nil
}
