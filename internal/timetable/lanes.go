package timetable

// Layout is the lane-packed rendering of one (day, room): each lane is a
// slot-indexed array holding at most one entry per slot range. Lanes are
// derived per render and never persisted.
type Layout struct {
	Lanes    [][]*Entry
	MaxLanes int
}

// PackLanes assigns entries to parallel lanes with first-fit interval
// packing: each entry lands in the first lane whose slots
// [start, start+duration-1] are all free, otherwise a new lane is appended.
//
// Input order is significant and must be the stable grid order (start slot
// ascending, insertion order within a slot): interactive rendering and export
// both call this with the same order so the two views agree on lane
// assignment. First-fit is not guaranteed minimal but is deterministic, which
// is what rendering needs.
//
// Entries hidden by a display filter must still be passed in; filtering the
// input would reshuffle lanes every time a filter toggles.
func PackLanes(entries []*Entry) Layout {
	var lanes [][]*Entry
	for _, e := range entries {
		start := e.StartSlot
		end := e.EndSlot()
		if start < 0 || start >= SlotCount {
			continue
		}
		if end >= SlotCount {
			end = SlotCount - 1
		}
		placed := false
		for _, lane := range lanes {
			if laneFree(lane, start, end) {
				occupy(lane, e, start, end)
				placed = true
				break
			}
		}
		if !placed {
			lane := make([]*Entry, SlotCount)
			occupy(lane, e, start, end)
			lanes = append(lanes, lane)
		}
	}
	return Layout{Lanes: lanes, MaxLanes: len(lanes)}
}

func laneFree(lane []*Entry, start, end int) bool {
	for i := start; i <= end; i++ {
		if lane[i] != nil {
			return false
		}
	}
	return true
}

func occupy(lane []*Entry, e *Entry, start, end int) {
	for i := start; i <= end; i++ {
		lane[i] = e
	}
}
