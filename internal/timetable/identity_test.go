package timetable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentityStableAcrossPasses(t *testing.T) {
	d := testDetector()
	g := buildGrid(t,
		testEntry("a", "CS101", 0, 2, 2, "r3"),
		testEntry("b", "CS102", 0, 3, 1, "r3"),
	)
	first := d.Detect(g).All()
	second := d.Detect(g).All()
	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].Identity(), second[i].Identity())
	}
}

func TestIdentityIgnoresCourseOrder(t *testing.T) {
	a := Conflict{Kind: ConflictRoomDoubleBook, CourseCodes: []string{"CS102", "CS101"}, RoomCode: "B1-101", Day: "Monday", TimeRange: "9:00 AM - 10:00 AM"}
	b := Conflict{Kind: ConflictRoomDoubleBook, CourseCodes: []string{"CS101", "CS102"}, RoomCode: "B1-101", Day: "Monday", TimeRange: "9:00 AM - 10:00 AM"}
	assert.Equal(t, a.Identity(), b.Identity())
}

func TestIdentityShapes(t *testing.T) {
	cases := []struct {
		name     string
		conflict Conflict
		want     string
	}{
		{
			name:     "capacity",
			conflict: Conflict{Kind: ConflictRoomCapacity, CourseCodes: []string{"CS101"}, RoomCode: "B1-101", Day: "Monday", TimeRange: "8:00 AM - 9:00 AM"},
			want:     "capacity|CS101|B1-101|Monday|8:00 AM - 9:00 AM",
		},
		{
			name:     "instructor",
			conflict: Conflict{Kind: ConflictInstructor, CourseCodes: []string{"CS102", "CS101"}, InstructorID: "i1", Day: "Tuesday", TimeRange: "9:00 AM - 10:00 AM"},
			want:     "instructor|i1|CS101,CS102|Tuesday|9:00 AM - 10:00 AM",
		},
		{
			name:     "timeslot",
			conflict: Conflict{Kind: ConflictTimeSlotExceeded, CourseCodes: []string{"CS101"}, Day: "Friday", TimeRange: "9:00 PM"},
			want:     "timeslot|CS101|Friday|9:00 PM",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.conflict.Identity())
		})
	}
}

func TestFallbackIdentityUsesStructuredFieldsOnly(t *testing.T) {
	id := FallbackIdentity(ConflictInstructor, "i1", "", "Monday", "9:00 AM - 10:00 AM")
	assert.Equal(t, "instructor|i1||Monday|9:00 AM - 10:00 AM", id)
}

func TestReconcileSubmitsOnlyNewConflicts(t *testing.T) {
	d := testDetector()
	g := buildGrid(t,
		testEntry("a", "CS101", 0, 2, 2, "r3"),
		testEntry("b", "CS102", 0, 3, 1, "r3"),
	)
	fresh := d.Detect(g).All()
	require.NotEmpty(t, fresh)

	active := map[string]struct{}{}
	first := Reconcile(fresh, active, nil)
	assert.Len(t, first, len(fresh))

	// Simulate persisting the first batch, then rerun with no grid change.
	for _, c := range first {
		active[c.Identity()] = struct{}{}
	}
	second := Reconcile(d.Detect(g).All(), active, nil)
	assert.Empty(t, second)
}

func TestReconcileDeduplicatesWithinBatch(t *testing.T) {
	c := Conflict{Kind: ConflictRoomCapacity, CourseCodes: []string{"CS101"}, RoomCode: "B1-101", Day: "Monday", TimeRange: "8:00 AM - 9:00 AM"}
	out := Reconcile([]Conflict{c, c}, map[string]struct{}{}, nil)
	assert.Len(t, out, 1)
}

func TestStaleIdentities(t *testing.T) {
	fresh := []Conflict{
		{Kind: ConflictRoomCapacity, CourseCodes: []string{"CS101"}, RoomCode: "B1-101", Day: "Monday", TimeRange: "8:00 AM - 9:00 AM"},
	}
	active := map[string]struct{}{
		fresh[0].Identity(): {},
		"capacity|CS999|B9-999|Friday|8:00 AM - 9:00 AM": {},
	}
	stale := StaleIdentities(fresh, active)
	require.Len(t, stale, 1)
	assert.Equal(t, "capacity|CS999|B9-999|Friday|8:00 AM - 9:00 AM", stale[0])
}
