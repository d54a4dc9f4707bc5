package timetable

import (
	"fmt"
	"sort"

	appErrors "github.com/campushq/timetable-api/pkg/errors"
)

// EntryKind distinguishes lecture and tutorial occurrences.
type EntryKind string

const (
	KindLecture  EntryKind = "LECTURE"
	KindTutorial EntryKind = "TUTORIAL"
)

// InstructorAssignment is a tagged variant: an entry is either unassigned,
// assigned by instructor id (name optional), or carries a display name only
// (legacy imports predating instructor ids).
type InstructorAssignment struct {
	ID   string
	Name string
}

// Unassigned reports whether the entry has no instructor at all.
func (a InstructorAssignment) Unassigned() bool {
	return a.ID == "" && a.Name == ""
}

// Key returns the canonical comparison key: id wins over name.
func (a InstructorAssignment) Key() string {
	if a.ID != "" {
		return a.ID
	}
	return a.Name
}

// Display returns the human-readable form of the assignment.
func (a InstructorAssignment) Display() string {
	if a.Name != "" {
		return a.Name
	}
	return a.ID
}

// Entry is one scheduled occurrence of a course. It occupies slots
// [StartSlot, StartSlot+Duration-1] in one room on one day and is indexed in
// the grid only at its start slot.
type Entry struct {
	ID          string
	CourseCode  string
	Kind        EntryKind
	Occurrences []int
	Day         int
	StartSlot   int
	Duration    int
	RoomID      string
	Instructor  InstructorAssignment
}

// EndSlot returns the inclusive last slot the entry occupies.
func (e *Entry) EndSlot() int {
	return e.StartSlot + e.Duration - 1
}

// Overlaps reports whether two entries intersect in time (day-agnostic).
func (e *Entry) Overlaps(other *Entry) bool {
	return !(e.EndSlot() < other.StartSlot || e.StartSlot > other.EndSlot())
}

// Grid is the authoritative in-memory timetable: day -> room -> start slot ->
// entries. An entry appears only under its start slot; occupied slots are
// reconstructed from Duration.
type Grid struct {
	cells map[int]map[string][][]*Entry
}

// NewGrid returns an empty grid.
func NewGrid() *Grid {
	return &Grid{cells: make(map[int]map[string][][]*Entry)}
}

// Place inserts an entry at its start slot. Day and start slot must be within
// grid bounds; duration overflow is allowed here and reported by detection.
func (g *Grid) Place(e *Entry) error {
	if e == nil {
		return appErrors.Clone(appErrors.ErrValidation, "cannot place nil entry")
	}
	if e.Day < 0 || e.Day >= DayCount {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("day index %d out of range", e.Day))
	}
	if e.StartSlot < 0 || e.StartSlot >= SlotCount {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("start slot %d out of range", e.StartSlot))
	}
	if e.Duration < 1 {
		return appErrors.Clone(appErrors.ErrValidation, "duration must be at least one slot")
	}
	room := g.roomCells(e.Day, e.RoomID)
	room[e.StartSlot] = append(room[e.StartSlot], e)
	return nil
}

func (g *Grid) roomCells(day int, roomID string) [][]*Entry {
	if g.cells[day] == nil {
		g.cells[day] = make(map[string][][]*Entry)
	}
	if g.cells[day][roomID] == nil {
		g.cells[day][roomID] = make([][]*Entry, SlotCount)
	}
	return g.cells[day][roomID]
}

// EntriesAt returns the entries for one (day, room) in start-slot order with
// insertion order preserved within a slot. This ordering feeds lane packing
// and must stay stable.
func (g *Grid) EntriesAt(day int, roomID string) []*Entry {
	rooms, ok := g.cells[day]
	if !ok {
		return nil
	}
	slots, ok := rooms[roomID]
	if !ok {
		return nil
	}
	var out []*Entry
	for _, cell := range slots {
		out = append(out, cell...)
	}
	return out
}

// Rooms returns the room ids present on a day, sorted for determinism.
func (g *Grid) Rooms(day int) []string {
	rooms, ok := g.cells[day]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(rooms))
	for id := range rooms {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// FindByID locates an entry anywhere in the grid.
func (g *Grid) FindByID(id string) (*Entry, bool) {
	for _, rooms := range g.cells {
		for _, slots := range rooms {
			for _, cell := range slots {
				for _, e := range cell {
					if e.ID == id {
						return e, true
					}
				}
			}
		}
	}
	return nil, false
}

// RemoveByID sweeps the whole grid and removes every reference carrying the
// id. Returns the number of references removed. The full sweep is the
// defensive guard against stale duplicates left by earlier moves.
func (g *Grid) RemoveByID(id string) int {
	removed := 0
	for _, rooms := range g.cells {
		for roomID, slots := range rooms {
			for i, cell := range slots {
				if len(cell) == 0 {
					continue
				}
				kept := cell[:0]
				for _, e := range cell {
					if e.ID == id {
						removed++
						continue
					}
					kept = append(kept, e)
				}
				rooms[roomID][i] = kept
			}
		}
	}
	return removed
}

// EntryCount returns the total number of entry references in the grid.
func (g *Grid) EntryCount() int {
	count := 0
	g.ForEach(func(e *Entry) {
		count++
	})
	return count
}

// ForEach visits every entry in deterministic day/room/slot order.
func (g *Grid) ForEach(fn func(e *Entry)) {
	for day := 0; day < DayCount; day++ {
		for _, roomID := range g.Rooms(day) {
			for _, e := range g.EntriesAt(day, roomID) {
				fn(e)
			}
		}
	}
}

// Flatten returns every entry as a flat slice in deterministic order,
// suitable for a full-replace save.
func (g *Grid) Flatten() []*Entry {
	var out []*Entry
	g.ForEach(func(e *Entry) {
		out = append(out, e)
	})
	return out
}
