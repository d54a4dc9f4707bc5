package timetable

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// ConflictKind enumerates the four detected conflict categories.
type ConflictKind string

const (
	ConflictRoomCapacity     ConflictKind = "ROOM_CAPACITY"
	ConflictRoomDoubleBook   ConflictKind = "ROOM_DOUBLE_BOOKING"
	ConflictInstructor       ConflictKind = "INSTRUCTOR_CONFLICT"
	ConflictTimeSlotExceeded ConflictKind = "TIME_SLOT_EXCEEDED"
)

// CourseInfo is the read-only course reference needed for capacity checks.
type CourseInfo struct {
	Code           string
	TargetStudents int
	LectureCount   int
	TutorialCount  int
}

// RoomInfo is the read-only room reference needed for capacity checks and
// report rendering.
type RoomInfo struct {
	ID       string
	Code     string
	Capacity int
}

// Conflict is one detected scheduling conflict. It carries the structured
// fields needed both for a human-readable report and for the stable identity
// string; generated ids and timestamps never participate in identity.
type Conflict struct {
	Kind             ConflictKind `json:"kind"`
	CourseCodes      []string     `json:"course_codes"`
	RoomID           string       `json:"room_id,omitempty"`
	RoomCode         string       `json:"room_code,omitempty"`
	RoomCapacity     int          `json:"room_capacity,omitempty"`
	RequiredCapacity int          `json:"required_capacity,omitempty"`
	InstructorID     string       `json:"instructor_id,omitempty"`
	InstructorName   string       `json:"instructor_name,omitempty"`
	Day              string       `json:"day"`
	TimeRange        string       `json:"time_range"`
	SlotsAvailable   int          `json:"slots_available,omitempty"`
	SlotsRequired    int          `json:"slots_required,omitempty"`
	EntryIDs         []string     `json:"entry_ids"`
	Description      string       `json:"description"`
}

// Summary holds per-category and total conflict counts.
type Summary struct {
	RoomCapacity     int `json:"room_capacity"`
	RoomDoubleBook   int `json:"room_double_booking"`
	Instructor       int `json:"instructor_conflict"`
	TimeSlotExceeded int `json:"time_slot_exceeded"`
	Total            int `json:"total"`
}

// Report is the outcome of one full detection pass. Skipped counts entries
// that could not be checked for capacity because a course or room reference
// was missing; the pass never aborts on a malformed entry.
type Report struct {
	RoomCapacity     []Conflict `json:"room_capacity"`
	RoomDoubleBook   []Conflict `json:"room_double_booking"`
	Instructor       []Conflict `json:"instructor_conflict"`
	TimeSlotExceeded []Conflict `json:"time_slot_exceeded"`
	Skipped          int        `json:"skipped"`
}

// All returns every conflict in the report as one slice.
func (r *Report) All() []Conflict {
	out := make([]Conflict, 0, len(r.RoomCapacity)+len(r.RoomDoubleBook)+len(r.Instructor)+len(r.TimeSlotExceeded))
	out = append(out, r.RoomCapacity...)
	out = append(out, r.RoomDoubleBook...)
	out = append(out, r.Instructor...)
	out = append(out, r.TimeSlotExceeded...)
	return out
}

// Summarize computes category counts.
func (r *Report) Summarize() Summary {
	s := Summary{
		RoomCapacity:     len(r.RoomCapacity),
		RoomDoubleBook:   len(r.RoomDoubleBook),
		Instructor:       len(r.Instructor),
		TimeSlotExceeded: len(r.TimeSlotExceeded),
	}
	s.Total = s.RoomCapacity + s.RoomDoubleBook + s.Instructor + s.TimeSlotExceeded
	return s
}

// Detector runs conflict detection over a grid against course and room
// reference data.
type Detector struct {
	courses map[string]CourseInfo
	rooms   map[string]RoomInfo
	logger  *zap.Logger
}

// NewDetector indexes the reference lists.
func NewDetector(courses []CourseInfo, rooms []RoomInfo, logger *zap.Logger) *Detector {
	if logger == nil {
		logger = zap.NewNop()
	}
	courseIdx := make(map[string]CourseInfo, len(courses))
	for _, c := range courses {
		courseIdx[c.Code] = c
	}
	roomIdx := make(map[string]RoomInfo, len(rooms))
	for _, r := range rooms {
		roomIdx[r.ID] = r
	}
	return &Detector{courses: courseIdx, rooms: roomIdx, logger: logger}
}

// Detect runs the four detection passes over the grid.
func (d *Detector) Detect(g *Grid) *Report {
	report := &Report{}
	for day := 0; day < DayCount; day++ {
		dayLabel := Days[day]
		var dayEntries []*Entry
		for _, roomID := range g.Rooms(day) {
			entries := g.EntriesAt(day, roomID)
			dayEntries = append(dayEntries, entries...)
			for _, e := range entries {
				d.checkCapacity(report, e, dayLabel)
				d.checkOverflow(report, e, dayLabel)
			}
			d.checkDoubleBookings(report, entries, dayLabel)
		}
		d.checkInstructors(report, dayEntries, dayLabel)
	}
	return report
}

// RequiredCapacity computes seats needed for one entry: the course target
// divided (ceiling) across its lecture or tutorial occurrence count. An
// unknown occurrence kind falls back to the full target student count; that
// mirrors long-standing behavior and is kept as-is.
func (d *Detector) RequiredCapacity(e *Entry) (int, bool) {
	course, ok := d.courses[e.CourseCode]
	if !ok {
		return 0, false
	}
	divisor := 1
	switch e.Kind {
	case KindLecture:
		if course.LectureCount > 0 {
			divisor = course.LectureCount
		}
	case KindTutorial:
		if course.TutorialCount > 0 {
			divisor = course.TutorialCount
		}
	default:
		return course.TargetStudents, true
	}
	return (course.TargetStudents + divisor - 1) / divisor, true
}

func (d *Detector) checkCapacity(report *Report, e *Entry, dayLabel string) {
	room, roomOK := d.rooms[e.RoomID]
	required, courseOK := d.RequiredCapacity(e)
	if !roomOK || !courseOK {
		report.Skipped++
		d.logger.Warn("capacity check skipped",
			zap.String("entry_id", e.ID),
			zap.String("course_code", e.CourseCode),
			zap.String("room_id", e.RoomID),
			zap.Bool("room_found", roomOK),
			zap.Bool("course_found", courseOK))
		return
	}
	if room.Capacity >= required {
		return
	}
	timeRange, err := RangeLabel(e.StartSlot, e.EndSlot())
	if err != nil {
		report.Skipped++
		return
	}
	report.RoomCapacity = append(report.RoomCapacity, Conflict{
		Kind:             ConflictRoomCapacity,
		CourseCodes:      []string{e.CourseCode},
		RoomID:           room.ID,
		RoomCode:         room.Code,
		RoomCapacity:     room.Capacity,
		RequiredCapacity: required,
		Day:              dayLabel,
		TimeRange:        timeRange,
		EntryIDs:         []string{e.ID},
		Description: fmt.Sprintf("%s requires %d seats but room %s holds %d (%s %s)",
			e.CourseCode, required, room.Code, room.Capacity, dayLabel, timeRange),
	})
}

func (d *Detector) checkOverflow(report *Report, e *Entry, dayLabel string) {
	if e.EndSlot() < SlotCount {
		return
	}
	available := SlotCount - e.StartSlot
	start, err := SlotStart(e.StartSlot)
	if err != nil {
		report.Skipped++
		return
	}
	report.TimeSlotExceeded = append(report.TimeSlotExceeded, Conflict{
		Kind:           ConflictTimeSlotExceeded,
		CourseCodes:    []string{e.CourseCode},
		RoomID:         e.RoomID,
		RoomCode:       d.roomCode(e.RoomID),
		Day:            dayLabel,
		TimeRange:      start,
		SlotsAvailable: available,
		SlotsRequired:  e.Duration,
		EntryIDs:       []string{e.ID},
		Description: fmt.Sprintf("%s starting %s %s needs %d slots but only %d remain in the day",
			e.CourseCode, dayLabel, start, e.Duration, available),
	})
}

func (d *Detector) checkDoubleBookings(report *Report, entries []*Entry, dayLabel string) {
	seen := make(map[string]bool)
	for i := 0; i < len(entries); i++ {
		for j := i + 1; j < len(entries); j++ {
			a, b := entries[i], entries[j]
			if a.ID == b.ID || !a.Overlaps(b) {
				continue
			}
			key := pairKey(a.ID, b.ID)
			if seen[key] {
				continue
			}
			seen[key] = true
			overlapStart := maxInt(a.StartSlot, b.StartSlot)
			overlapEnd := minInt(a.EndSlot(), b.EndSlot())
			timeRange, err := RangeLabel(overlapStart, overlapEnd)
			if err != nil {
				report.Skipped++
				continue
			}
			codes := sortedCodes(a.CourseCode, b.CourseCode)
			report.RoomDoubleBook = append(report.RoomDoubleBook, Conflict{
				Kind:        ConflictRoomDoubleBook,
				CourseCodes: codes,
				RoomID:      a.RoomID,
				RoomCode:    d.roomCode(a.RoomID),
				Day:         dayLabel,
				TimeRange:   timeRange,
				EntryIDs:    sortedCodes(a.ID, b.ID),
				Description: fmt.Sprintf("%s double-booked in room %s (%s %s)",
					strings.Join(codes, " and "), d.roomCode(a.RoomID), dayLabel, timeRange),
			})
		}
	}
}

func (d *Detector) checkInstructors(report *Report, entries []*Entry, dayLabel string) {
	seen := make(map[string]bool)
	for i := 0; i < len(entries); i++ {
		for j := i + 1; j < len(entries); j++ {
			a, b := entries[i], entries[j]
			if a.ID == b.ID {
				continue
			}
			if a.Instructor.Unassigned() || b.Instructor.Unassigned() {
				continue
			}
			if a.Instructor.Key() != b.Instructor.Key() || !a.Overlaps(b) {
				continue
			}
			key := pairKey(a.ID, b.ID)
			if seen[key] {
				continue
			}
			seen[key] = true
			overlapStart := maxInt(a.StartSlot, b.StartSlot)
			overlapEnd := minInt(a.EndSlot(), b.EndSlot())
			timeRange, err := RangeLabel(overlapStart, overlapEnd)
			if err != nil {
				report.Skipped++
				continue
			}
			codes := sortedCodes(a.CourseCode, b.CourseCode)
			report.Instructor = append(report.Instructor, Conflict{
				Kind:           ConflictInstructor,
				CourseCodes:    codes,
				InstructorID:   a.Instructor.Key(),
				InstructorName: a.Instructor.Display(),
				Day:            dayLabel,
				TimeRange:      timeRange,
				EntryIDs:       sortedCodes(a.ID, b.ID),
				Description: fmt.Sprintf("%s teaches %s at the same time (%s %s)",
					a.Instructor.Display(), strings.Join(codes, " and "), dayLabel, timeRange),
			})
		}
	}
}

func (d *Detector) roomCode(roomID string) string {
	if room, ok := d.rooms[roomID]; ok {
		return room.Code
	}
	return roomID
}

func pairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "|" + b
}

func sortedCodes(codes ...string) []string {
	out := make([]string, len(codes))
	copy(out, codes)
	sort.Strings(out)
	return out
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
