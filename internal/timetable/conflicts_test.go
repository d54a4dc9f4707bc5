package timetable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDetector() *Detector {
	courses := []CourseInfo{
		{Code: "CS101", TargetStudents: 100, LectureCount: 2, TutorialCount: 4},
		{Code: "CS102", TargetStudents: 60, LectureCount: 1, TutorialCount: 2},
	}
	rooms := []RoomInfo{
		{ID: "r1", Code: "B1-101", Capacity: 40},
		{ID: "r2", Code: "B1-102", Capacity: 50},
		{ID: "r3", Code: "B2-201", Capacity: 200},
	}
	return NewDetector(courses, rooms, nil)
}

func buildGrid(t *testing.T, entries ...*Entry) *Grid {
	t.Helper()
	g := NewGrid()
	for _, e := range entries {
		require.NoError(t, g.Place(e))
	}
	return g
}

func TestDetectRoomCapacity(t *testing.T) {
	d := testDetector()

	// 100 students across 2 lectures -> 50 seats required.
	g := buildGrid(t, testEntry("e1", "CS101", 0, 0, 1, "r1"))
	report := d.Detect(g)
	require.Len(t, report.RoomCapacity, 1)
	c := report.RoomCapacity[0]
	assert.Equal(t, 50, c.RequiredCapacity)
	assert.Equal(t, 40, c.RoomCapacity)
	assert.Equal(t, "B1-101", c.RoomCode)
	assert.Equal(t, "Monday", c.Day)

	// Capacity exactly matching raises nothing.
	g = buildGrid(t, testEntry("e1", "CS101", 0, 0, 1, "r2"))
	report = d.Detect(g)
	assert.Empty(t, report.RoomCapacity)
}

func TestRequiredCapacityCeiling(t *testing.T) {
	d := testDetector()

	tutorial := testEntry("e1", "CS101", 0, 0, 1, "r1")
	tutorial.Kind = KindTutorial
	required, ok := d.RequiredCapacity(tutorial)
	require.True(t, ok)
	assert.Equal(t, 25, required)

	// Unknown occurrence kinds fall back to the full target count.
	odd := testEntry("e2", "CS101", 0, 0, 1, "r1")
	odd.Kind = EntryKind("LAB")
	required, ok = d.RequiredCapacity(odd)
	require.True(t, ok)
	assert.Equal(t, 100, required)
}

func TestDetectSkipsMissingReferences(t *testing.T) {
	d := testDetector()
	g := buildGrid(t,
		testEntry("e1", "UNKNOWN", 0, 0, 1, "r1"),
		testEntry("e2", "CS102", 0, 2, 1, "ghost-room"),
	)
	report := d.Detect(g)
	assert.Equal(t, 2, report.Skipped)
	assert.Empty(t, report.RoomCapacity)
}

func TestDetectDoubleBookingSinglePair(t *testing.T) {
	d := testDetector()
	g := buildGrid(t,
		testEntry("a", "CS101", 0, 2, 2, "r3"),
		testEntry("b", "CS102", 0, 3, 1, "r3"),
	)
	report := d.Detect(g)
	require.Len(t, report.RoomDoubleBook, 1)
	c := report.RoomDoubleBook[0]
	assert.Equal(t, []string{"CS101", "CS102"}, c.CourseCodes)
	assert.Equal(t, []string{"a", "b"}, c.EntryIDs)
	// Overlap is slot 3 only: 11:00 AM - 12:00 PM.
	assert.Equal(t, "11:00 AM - 12:00 PM", c.TimeRange)
}

func TestDetectDoubleBookingIgnoresDifferentRoomsAndDays(t *testing.T) {
	d := testDetector()
	g := buildGrid(t,
		testEntry("a", "CS101", 0, 2, 2, "r3"),
		testEntry("b", "CS102", 1, 2, 2, "r3"),
		testEntry("c", "CS102", 0, 2, 2, "r2"),
	)
	report := d.Detect(g)
	assert.Empty(t, report.RoomDoubleBook)
}

func TestDetectInstructorConflict(t *testing.T) {
	d := testDetector()
	a := testEntry("a", "CS101", 0, 2, 2, "r3")
	a.Instructor = InstructorAssignment{ID: "i1", Name: "Dr. Tan"}
	b := testEntry("b", "CS102", 0, 3, 2, "r2")
	b.Instructor = InstructorAssignment{ID: "i1", Name: "Dr. Tan"}
	unassigned := testEntry("c", "CS102", 0, 3, 1, "r1")

	report := d.Detect(buildGrid(t, a, b, unassigned))
	require.Len(t, report.Instructor, 1)
	c := report.Instructor[0]
	assert.Equal(t, "i1", c.InstructorID)
	assert.Equal(t, []string{"CS101", "CS102"}, c.CourseCodes)
}

func TestDetectInstructorNoSelfConflict(t *testing.T) {
	d := testDetector()
	a := testEntry("a", "CS101", 0, 2, 2, "r3")
	a.Instructor = InstructorAssignment{ID: "i1"}
	report := d.Detect(buildGrid(t, a))
	assert.Empty(t, report.Instructor)
}

func TestDetectInstructorDifferentDaysNoConflict(t *testing.T) {
	d := testDetector()
	a := testEntry("a", "CS101", 0, 2, 2, "r3")
	a.Instructor = InstructorAssignment{ID: "i1"}
	b := testEntry("b", "CS102", 1, 2, 2, "r2")
	b.Instructor = InstructorAssignment{ID: "i1"}
	report := d.Detect(buildGrid(t, a, b))
	assert.Empty(t, report.Instructor)
}

func TestDetectTimeSlotExceededBoundary(t *testing.T) {
	d := testDetector()

	over := testEntry("a", "CS102", 0, SlotCount-1, 2, "r3")
	report := d.Detect(buildGrid(t, over))
	require.Len(t, report.TimeSlotExceeded, 1)
	c := report.TimeSlotExceeded[0]
	assert.Equal(t, 1, c.SlotsAvailable)
	assert.Equal(t, 2, c.SlotsRequired)

	fits := testEntry("b", "CS102", 0, SlotCount-1, 1, "r3")
	report = d.Detect(buildGrid(t, fits))
	assert.Empty(t, report.TimeSlotExceeded)
}

func TestReportSummarize(t *testing.T) {
	d := testDetector()
	a := testEntry("a", "CS101", 0, 2, 2, "r1") // needs 50 seats, room holds 40
	b := testEntry("b", "CS102", 0, 3, 1, "r1") // needs 60 seats and overlaps a
	report := d.Detect(buildGrid(t, a, b))

	summary := report.Summarize()
	assert.Equal(t, 2, summary.RoomCapacity)
	assert.Equal(t, 1, summary.RoomDoubleBook)
	assert.Equal(t, summary.RoomCapacity+summary.RoomDoubleBook, summary.Total)
	assert.Len(t, report.All(), summary.Total)
}
