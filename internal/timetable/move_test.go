package timetable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoveRelocatesEntry(t *testing.T) {
	d := testDetector()
	g := buildGrid(t, testEntry("a", "CS102", 0, 2, 2, "r3"))
	before := g.EntryCount()

	warnings, err := d.Move(g, MoveRequest{EntryID: "a", Day: 2, RoomID: "r2", StartSlot: 5})
	require.NoError(t, err)
	assert.Empty(t, warnings)

	assert.Equal(t, before, g.EntryCount())
	moved, ok := g.FindByID("a")
	require.True(t, ok)
	assert.Equal(t, 2, moved.Day)
	assert.Equal(t, "r2", moved.RoomID)
	assert.Equal(t, 5, moved.StartSlot)
	assert.Equal(t, 2, moved.Duration)
	assert.Empty(t, g.EntriesAt(0, "r3"))
}

func TestMoveNoOpOnSamePosition(t *testing.T) {
	d := testDetector()
	g := buildGrid(t, testEntry("a", "CS102", 0, 2, 2, "r3"))
	warnings, err := d.Move(g, MoveRequest{EntryID: "a", Day: 0, RoomID: "r3", StartSlot: 2})
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, 1, g.EntryCount())
}

func TestMoveUnknownEntry(t *testing.T) {
	d := testDetector()
	g := NewGrid()
	_, err := d.Move(g, MoveRequest{EntryID: "ghost", Day: 0, RoomID: "r1", StartSlot: 0})
	require.Error(t, err)
}

func TestMoveAppliedDespiteWarnings(t *testing.T) {
	d := testDetector()
	occupant := testEntry("b", "CS102", 1, 4, 2, "r1")
	g := buildGrid(t, testEntry("a", "CS101", 0, 2, 2, "r3"), occupant)

	// Destination overlaps b and the room is too small for CS101.
	warnings, err := d.Move(g, MoveRequest{EntryID: "a", Day: 1, RoomID: "r1", StartSlot: 5})
	require.NoError(t, err)

	codes := make([]string, 0, len(warnings))
	for _, w := range warnings {
		codes = append(codes, w.Code)
	}
	assert.Contains(t, codes, string(ConflictRoomDoubleBook))
	assert.Contains(t, codes, string(ConflictRoomCapacity))

	moved, ok := g.FindByID("a")
	require.True(t, ok)
	assert.Equal(t, 1, moved.Day)
	assert.Equal(t, "r1", moved.RoomID)
}

func TestMoveWarnsOnDayOverflow(t *testing.T) {
	d := testDetector()
	g := buildGrid(t, testEntry("a", "CS102", 0, 2, 3, "r3"))
	warnings, err := d.Move(g, MoveRequest{EntryID: "a", Day: 0, RoomID: "r3", StartSlot: SlotCount - 1})
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Equal(t, string(ConflictTimeSlotExceeded), warnings[0].Code)
}

func TestMoveWarnsOnInstructorOverlap(t *testing.T) {
	d := testDetector()
	a := testEntry("a", "CS101", 0, 2, 2, "r3")
	a.Instructor = InstructorAssignment{ID: "i1", Name: "Dr. Tan"}
	b := testEntry("b", "CS102", 1, 4, 2, "r2")
	b.Instructor = InstructorAssignment{ID: "i1", Name: "Dr. Tan"}
	g := buildGrid(t, a, b)

	warnings, err := d.Move(g, MoveRequest{EntryID: "a", Day: 1, RoomID: "r3", StartSlot: 4})
	require.NoError(t, err)
	codes := make([]string, 0, len(warnings))
	for _, w := range warnings {
		codes = append(codes, w.Code)
	}
	assert.Contains(t, codes, string(ConflictInstructor))
}

func TestReassignUpdatesAllLinkedCopies(t *testing.T) {
	d := testDetector()
	// A lecture linked across two occurrence copies sharing one entry id.
	first := testEntry("a", "CS101", 0, 2, 2, "r3")
	second := testEntry("a", "CS101", 2, 4, 2, "r2")
	g := buildGrid(t, first, second)

	warnings, err := d.Reassign(g, "a", InstructorAssignment{ID: "i2", Name: "Dr. Lim"})
	require.NoError(t, err)
	assert.Empty(t, warnings)

	g.ForEach(func(e *Entry) {
		assert.Equal(t, "i2", e.Instructor.ID)
	})
}

func TestReassignTutorialEligibility(t *testing.T) {
	d := testDetector()
	lecture := testEntry("lec", "CS101", 0, 2, 2, "r3")
	lecture.Occurrences = []int{1, 2}
	lecture.Instructor = InstructorAssignment{ID: "i1", Name: "Dr. Tan"}

	tutorial := testEntry("tut", "CS101", 1, 4, 1, "r2")
	tutorial.Kind = KindTutorial
	tutorial.Occurrences = []int{3}

	g := buildGrid(t, lecture, tutorial)

	// i1 lectures occurrences {1,2}; tutorial covers {3} -> advisory warning,
	// still applied.
	warnings, err := d.Reassign(g, "tut", InstructorAssignment{ID: "i1", Name: "Dr. Tan"})
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Equal(t, "OCCURRENCE_MISMATCH", warnings[0].Code)

	updated, ok := g.FindByID("tut")
	require.True(t, ok)
	assert.Equal(t, "i1", updated.Instructor.ID)

	// An instructor with no lectures for the course is unrestricted.
	warnings, err = d.Reassign(g, "tut", InstructorAssignment{ID: "i9", Name: "Dr. New"})
	require.NoError(t, err)
	assert.Empty(t, warnings)
}

func TestReassignWarnsOnTimeOverlap(t *testing.T) {
	d := testDetector()
	a := testEntry("a", "CS101", 0, 2, 2, "r3")
	b := testEntry("b", "CS102", 0, 3, 2, "r2")
	b.Instructor = InstructorAssignment{ID: "i1", Name: "Dr. Tan"}
	g := buildGrid(t, a, b)

	warnings, err := d.Reassign(g, "a", InstructorAssignment{ID: "i1", Name: "Dr. Tan"})
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Equal(t, string(ConflictInstructor), warnings[0].Code)
}

func TestGridRemoveByIDSweepsEverything(t *testing.T) {
	g := buildGrid(t,
		testEntry("a", "CS101", 0, 2, 2, "r1"),
		testEntry("a", "CS101", 3, 5, 2, "r2"),
		testEntry("b", "CS102", 0, 2, 1, "r1"),
	)
	removed := g.RemoveByID("a")
	assert.Equal(t, 2, removed)
	assert.Equal(t, 1, g.EntryCount())
	_, ok := g.FindByID("a")
	assert.False(t, ok)
}

func TestGridFlattenDeterministic(t *testing.T) {
	g := buildGrid(t,
		testEntry("c", "CS102", 1, 0, 1, "r2"),
		testEntry("a", "CS101", 0, 2, 2, "r1"),
		testEntry("b", "CS102", 0, 4, 1, "r1"),
	)
	first := g.Flatten()
	second := g.Flatten()
	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
	}
	assert.Equal(t, "a", first[0].ID)
	assert.Equal(t, "b", first[1].ID)
	assert.Equal(t, "c", first[2].ID)
}
