package dto

import (
	"github.com/campushq/timetable-api/internal/timetable"
)

// TimetableQuery selects one term's timetable.
type TimetableQuery struct {
	Year          int  `form:"year" validate:"required"`
	Semester      int  `form:"semester" validate:"required,min=1,max=2"`
	PublishedOnly bool `form:"publishedOnly"`
}

// EntryPayload is the wire shape of one timetable entry. Day and StartTime
// use the human labels the grid is keyed by ("Monday", "8:00 AM - 9:00 AM").
type EntryPayload struct {
	ID             string `json:"id"`
	CourseCode     string `json:"course_code" validate:"required"`
	OccType        string `json:"occ_type" validate:"required,oneof=LECTURE TUTORIAL"`
	OccNumbers     []int  `json:"occ_numbers" validate:"required,min=1"`
	Day            string `json:"day" validate:"required"`
	StartTime      string `json:"start_time" validate:"required"`
	Duration       int    `json:"duration" validate:"required,min=1"`
	RoomID         string `json:"room_id" validate:"required"`
	InstructorID   string `json:"instructor_id"`
	InstructorName string `json:"instructor_name"`
}

// TimetableView is one term's timetable as returned by reads.
type TimetableView struct {
	Year      int            `json:"year"`
	Semester  int            `json:"semester"`
	Published bool           `json:"published"`
	Entries   []EntryPayload `json:"entries"`
	Skipped   int            `json:"skipped,omitempty"`
}

// SaveTimetableRequest replaces a term's entire timetable and triggers
// conflict reconciliation.
type SaveTimetableRequest struct {
	Year     int            `json:"year" validate:"required"`
	Semester int            `json:"semester" validate:"required,min=1,max=2"`
	Entries  []EntryPayload `json:"entries" validate:"dive"`
}

// SaveTimetableResponse summarises a save/reconcile cycle.
type SaveTimetableResponse struct {
	Saved        int               `json:"saved"`
	NewConflicts int               `json:"new_conflicts"`
	Skipped      int               `json:"skipped"`
	Summary      timetable.Summary `json:"summary"`
}

// MoveEntryRequest relocates one entry inside a term's grid.
type MoveEntryRequest struct {
	Year      int    `json:"year" validate:"required"`
	Semester  int    `json:"semester" validate:"required,min=1,max=2"`
	EntryID   string `json:"entry_id" validate:"required"`
	Day       string `json:"day" validate:"required"`
	RoomID    string `json:"room_id" validate:"required"`
	StartTime string `json:"start_time" validate:"required"`
}

// ReassignEntryRequest changes the instructor on one entry (all linked
// occurrence copies included). Empty instructor fields unassign.
type ReassignEntryRequest struct {
	Year           int    `json:"year" validate:"required"`
	Semester       int    `json:"semester" validate:"required,min=1,max=2"`
	EntryID        string `json:"entry_id" validate:"required"`
	InstructorID   string `json:"instructor_id"`
	InstructorName string `json:"instructor_name"`
}

// MutationResponse returns the mutated timetable plus advisory warnings;
// mutations are never blocked by conflicts.
type MutationResponse struct {
	Entries  []EntryPayload      `json:"entries"`
	Warnings []timetable.Warning `json:"warnings,omitempty"`
	Skipped  int                 `json:"skipped,omitempty"`
}

// DetectResponse is an on-demand conflict report for a term.
type DetectResponse struct {
	Report  *timetable.Report `json:"report"`
	Summary timetable.Summary `json:"summary"`
}

// LaneView is one packed lane: slot-indexed entry references, null where
// empty.
type LaneView struct {
	Slots []*EntryPayload `json:"slots"`
}

// RoomLayout is the lane-packed layout for one room on one day.
type RoomLayout struct {
	RoomID   string     `json:"room_id"`
	RoomCode string     `json:"room_code"`
	MaxLanes int        `json:"max_lanes"`
	Lanes    []LaneView `json:"lanes"`
}

// LayoutResponse renders one day of the grid for interactive display.
type LayoutResponse struct {
	Day       string       `json:"day"`
	SlotTimes []string     `json:"slot_times"`
	Rooms     []RoomLayout `json:"rooms"`
}

// PublishRequest toggles the per-term publish flag.
type PublishRequest struct {
	Year      int  `json:"year" validate:"required"`
	Semester  int  `json:"semester" validate:"required,min=1,max=2"`
	Published bool `json:"published"`
}

// AutoResolveResponse reports how many conflicts were retired.
type AutoResolveResponse struct {
	Resolved int `json:"resolved"`
}
