package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campushq/timetable-api/internal/models"
)

func TestExportCSVContainsLanePackedRows(t *testing.T) {
	repo := &timetableRepoStub{entries: []models.TimetableEntry{
		{
			ID: "e1", CourseCode: "CS101", OccType: "LECTURE", OccNumbers: []int64{1},
			Day: "Monday", StartTime: "9:00 AM - 10:00 AM", Duration: 2, RoomID: "r1",
			InstructorName: "Dr. Ada",
		},
		{
			ID: "e2", CourseCode: "CS205", OccType: "TUTORIAL", OccNumbers: []int64{1, 2},
			Day: "Monday", StartTime: "10:00 AM - 11:00 AM", Duration: 1, RoomID: "r1",
		},
	}}
	_, rooms := testReferenceData()
	svc := NewExportService(repo, rooms, zap.NewNop(), true)

	payload, filename, err := svc.ExportCSV(context.Background(), 2026, 1)
	require.NoError(t, err)
	assert.Equal(t, "timetable_2026_s1.csv", filename)

	body := string(payload)
	lines := strings.Split(strings.TrimSpace(body), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Day,Time,Room,Lane,Course,Type,Occurrences,Instructor,Duration", lines[0])
	assert.Contains(t, body, "Monday,9:00 AM - 11:00 AM,B1-201,1,CS101,LECTURE,1,Dr. Ada,2h")
	// The overlapping tutorial lands in lane 2.
	assert.Contains(t, body, "Monday,10:00 AM - 11:00 AM,B1-201,2,CS205,TUTORIAL,1;2,,1h")
}

func TestExportPDFProducesDocument(t *testing.T) {
	repo := &timetableRepoStub{entries: []models.TimetableEntry{
		{
			ID: "e1", CourseCode: "CS101", OccType: "LECTURE", OccNumbers: []int64{1},
			Day: "Friday", StartTime: "8:00 AM - 9:00 AM", Duration: 1, RoomID: "r2",
		},
	}}
	_, rooms := testReferenceData()
	svc := NewExportService(repo, rooms, zap.NewNop(), true)

	payload, filename, err := svc.ExportPDF(context.Background(), 2026, 2)
	require.NoError(t, err)
	assert.Equal(t, "timetable_2026_s2.pdf", filename)
	assert.True(t, strings.HasPrefix(string(payload), "%PDF"))
}

func TestExportDisabled(t *testing.T) {
	svc := NewExportService(&timetableRepoStub{}, roomCatalogStub{}, zap.NewNop(), false)
	assert.False(t, svc.Enabled())
}
