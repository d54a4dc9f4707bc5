package timetable

import (
	"fmt"

	appErrors "github.com/campushq/timetable-api/pkg/errors"
)

// Warning is an advisory conflict reason attached to an applied mutation.
// Mutations follow a soft conflict model: they always go through, warnings
// only inform the caller, and permanent conflict records are created at the
// next reconciliation pass rather than at edit time.
type Warning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// MoveRequest relocates an entry to a new day/room/start slot.
type MoveRequest struct {
	EntryID   string
	Day       int
	RoomID    string
	StartSlot int
}

// Move applies the relocation and returns advisory warnings for the
// destination (capacity, double-booking, instructor overlap, day overflow).
// The entry's old references are swept from the entire grid so no stale
// duplicate survives. Moving an entry onto its current position is a no-op.
func (d *Detector) Move(g *Grid, req MoveRequest) ([]Warning, error) {
	entry, ok := g.FindByID(req.EntryID)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("entry %s not found", req.EntryID))
	}
	if req.Day < 0 || req.Day >= DayCount {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("day index %d out of range", req.Day))
	}
	if req.StartSlot < 0 || req.StartSlot >= SlotCount {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("start slot %d out of range", req.StartSlot))
	}
	if entry.Day == req.Day && entry.RoomID == req.RoomID && entry.StartSlot == req.StartSlot {
		return nil, nil
	}

	warnings := d.destinationWarnings(g, entry, req)

	g.RemoveByID(entry.ID)
	entry.Day = req.Day
	entry.RoomID = req.RoomID
	entry.StartSlot = req.StartSlot
	if err := g.Place(entry); err != nil {
		return warnings, err
	}
	return warnings, nil
}

func (d *Detector) destinationWarnings(g *Grid, entry *Entry, req MoveRequest) []Warning {
	var warnings []Warning

	end := req.StartSlot + entry.Duration - 1
	if end >= SlotCount {
		warnings = append(warnings, Warning{
			Code:    string(ConflictTimeSlotExceeded),
			Message: fmt.Sprintf("entry needs %d slots but only %d remain in the day", entry.Duration, SlotCount-req.StartSlot),
		})
	}

	if room, ok := d.rooms[req.RoomID]; ok {
		if required, courseOK := d.RequiredCapacity(entry); courseOK && room.Capacity < required {
			warnings = append(warnings, Warning{
				Code:    string(ConflictRoomCapacity),
				Message: fmt.Sprintf("room %s holds %d but %s requires %d seats", room.Code, room.Capacity, entry.CourseCode, required),
			})
		}
	}

	moved := *entry
	moved.Day = req.Day
	moved.RoomID = req.RoomID
	moved.StartSlot = req.StartSlot

	for _, other := range g.EntriesAt(req.Day, req.RoomID) {
		if other.ID == entry.ID || !moved.Overlaps(other) {
			continue
		}
		warnings = append(warnings, Warning{
			Code:    string(ConflictRoomDoubleBook),
			Message: fmt.Sprintf("overlaps %s in room %s", other.CourseCode, d.roomCode(req.RoomID)),
		})
	}

	if !entry.Instructor.Unassigned() {
		for _, roomID := range g.Rooms(req.Day) {
			for _, other := range g.EntriesAt(req.Day, roomID) {
				if other.ID == entry.ID || other.Instructor.Unassigned() {
					continue
				}
				if other.Instructor.Key() != entry.Instructor.Key() || !moved.Overlaps(other) {
					continue
				}
				warnings = append(warnings, Warning{
					Code:    string(ConflictInstructor),
					Message: fmt.Sprintf("%s already teaches %s at this time", entry.Instructor.Display(), other.CourseCode),
				})
			}
		}
	}
	return warnings
}

// Reassign sets the instructor on every grid reference sharing the entry id,
// atomically: either all linked copies change or none do. The eligibility
// and overlap checks are advisory only.
func (d *Detector) Reassign(g *Grid, entryID string, instructor InstructorAssignment) ([]Warning, error) {
	entry, ok := g.FindByID(entryID)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("entry %s not found", entryID))
	}

	var warnings []Warning
	if entry.Kind == KindTutorial && !instructor.Unassigned() {
		if w, violated := d.tutorialEligibility(g, entry, instructor); violated {
			warnings = append(warnings, w)
		}
	}
	warnings = append(warnings, d.reassignOverlapWarnings(g, entry, instructor)...)

	g.ForEach(func(e *Entry) {
		if e.ID == entryID {
			e.Instructor = instructor
		}
	})
	return warnings, nil
}

// tutorialEligibility enforces the occurrence-linking rule: a tutorial may
// only go to an instructor whose lectures for the same course cover an
// overlapping occurrence-number set. An instructor with no lectures for the
// course is unrestricted.
func (d *Detector) tutorialEligibility(g *Grid, entry *Entry, instructor InstructorAssignment) (Warning, bool) {
	teachesLecture := false
	overlapping := false
	g.ForEach(func(e *Entry) {
		if e.Kind != KindLecture || e.CourseCode != entry.CourseCode {
			return
		}
		if e.Instructor.Unassigned() || e.Instructor.Key() != instructor.Key() {
			return
		}
		teachesLecture = true
		if occurrencesOverlap(e.Occurrences, entry.Occurrences) {
			overlapping = true
		}
	})
	if !teachesLecture || overlapping {
		return Warning{}, false
	}
	return Warning{
		Code:    "OCCURRENCE_MISMATCH",
		Message: fmt.Sprintf("%s lectures %s for different occurrence numbers than this tutorial", instructor.Display(), entry.CourseCode),
	}, true
}

func (d *Detector) reassignOverlapWarnings(g *Grid, entry *Entry, instructor InstructorAssignment) []Warning {
	if instructor.Unassigned() {
		return nil
	}
	var warnings []Warning
	for _, roomID := range g.Rooms(entry.Day) {
		for _, other := range g.EntriesAt(entry.Day, roomID) {
			if other.ID == entry.ID || other.Instructor.Unassigned() {
				continue
			}
			if other.Instructor.Key() != instructor.Key() || !entry.Overlaps(other) {
				continue
			}
			warnings = append(warnings, Warning{
				Code:    string(ConflictInstructor),
				Message: fmt.Sprintf("%s already teaches %s at this time", instructor.Display(), other.CourseCode),
			})
		}
	}
	return warnings
}

func occurrencesOverlap(a, b []int) bool {
	set := make(map[int]struct{}, len(a))
	for _, n := range a {
		set[n] = struct{}{}
	}
	for _, n := range b {
		if _, ok := set[n]; ok {
			return true
		}
	}
	return false
}
