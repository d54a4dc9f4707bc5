package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campushq/timetable-api/internal/dto"
	"github.com/campushq/timetable-api/internal/models"
	"github.com/campushq/timetable-api/internal/timetable"
	appErrors "github.com/campushq/timetable-api/pkg/errors"
)

type freshDetectorStub struct {
	report *timetable.Report
}

func (s freshDetectorStub) Detect(ctx context.Context, year, semester int) (*dto.DetectResponse, error) {
	return &dto.DetectResponse{Report: s.report, Summary: s.report.Summarize()}, nil
}

func pendingConflict(id string, kind timetable.ConflictKind, codes []string, room, day, timeRange string) models.Conflict {
	return models.Conflict{
		ID:          id,
		Year:        2026,
		Semester:    1,
		Kind:        string(kind),
		Status:      models.ConflictPending,
		CourseCodes: codes,
		RoomCode:    room,
		Day:         day,
		TimeRange:   timeRange,
	}
}

func TestAutoResolveRetiresVanishedConflicts(t *testing.T) {
	store := &conflictRecorderStub{active: []models.Conflict{
		pendingConflict("c1", timetable.ConflictRoomDoubleBook, []string{"CS101", "CS205"}, "B1-201", "Monday", "10:00 AM - 11:00 AM"),
	}}
	detector := freshDetectorStub{report: &timetable.Report{}}
	svc := NewConflictService(store, detector, nil, zap.NewNop())

	result, err := svc.AutoResolve(context.Background(), 2026, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Resolved)
	assert.Equal(t, models.ConflictResolved, store.active[0].Status)
}

func TestAutoResolveKeepsReproducingConflicts(t *testing.T) {
	store := &conflictRecorderStub{active: []models.Conflict{
		pendingConflict("c1", timetable.ConflictRoomDoubleBook, []string{"CS101", "CS205"}, "B1-201", "Monday", "10:00 AM - 11:00 AM"),
	}}
	detector := freshDetectorStub{report: &timetable.Report{
		RoomDoubleBook: []timetable.Conflict{
			{
				Kind:        timetable.ConflictRoomDoubleBook,
				CourseCodes: []string{"CS101", "CS205"},
				RoomCode:    "B1-201",
				Day:         "Monday",
				TimeRange:   "10:00 AM - 11:00 AM",
			},
		},
	}}
	svc := NewConflictService(store, detector, nil, zap.NewNop())

	result, err := svc.AutoResolve(context.Background(), 2026, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Resolved)
	assert.Equal(t, models.ConflictPending, store.active[0].Status)
}

func TestAutoResolveMatchesLegacyRowsByFallbackIdentity(t *testing.T) {
	legacy := pendingConflict("c1", timetable.ConflictRoomCapacity, nil, "B2-105", "Tuesday", "8:00 AM - 10:00 AM")
	store := &conflictRecorderStub{active: []models.Conflict{legacy}}
	detector := freshDetectorStub{report: &timetable.Report{}}
	svc := NewConflictService(store, detector, nil, zap.NewNop())

	result, err := svc.AutoResolve(context.Background(), 2026, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Resolved)
}

func TestSummaryCountsByKind(t *testing.T) {
	store := &conflictRecorderStub{active: []models.Conflict{
		pendingConflict("c1", timetable.ConflictRoomDoubleBook, []string{"CS101", "CS205"}, "B1-201", "Monday", "10:00 AM - 11:00 AM"),
		pendingConflict("c2", timetable.ConflictRoomCapacity, []string{"CS205"}, "B2-105", "Monday", "8:00 AM - 9:00 AM"),
		pendingConflict("c3", timetable.ConflictRoomCapacity, []string{"CS301"}, "B2-105", "Friday", "9:00 AM - 10:00 AM"),
	}}
	svc := NewConflictService(store, freshDetectorStub{report: &timetable.Report{}}, nil, zap.NewNop())

	summary, err := svc.Summary(context.Background(), 2026, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.RoomCapacity)
	assert.Equal(t, 1, summary.RoomDoubleBook)
	assert.Equal(t, 0, summary.Instructor)
	assert.Equal(t, 3, summary.Total)
}

func TestUpdateStatusRejectsUnknownState(t *testing.T) {
	store := &conflictRecorderStub{active: []models.Conflict{
		pendingConflict("c1", timetable.ConflictInstructor, []string{"CS101"}, "", "Monday", "8:00 AM - 9:00 AM"),
	}}
	svc := NewConflictService(store, freshDetectorStub{report: &timetable.Report{}}, nil, zap.NewNop())

	_, err := svc.UpdateStatus(context.Background(), "c1", models.ConflictStatus("ARCHIVED"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestUpdateStatusDismissesConflict(t *testing.T) {
	store := &conflictRecorderStub{active: []models.Conflict{
		pendingConflict("c1", timetable.ConflictInstructor, []string{"CS101"}, "", "Monday", "8:00 AM - 9:00 AM"),
	}}
	svc := NewConflictService(store, freshDetectorStub{report: &timetable.Report{}}, nil, zap.NewNop())

	updated, err := svc.UpdateStatus(context.Background(), "c1", models.ConflictDismissed)
	require.NoError(t, err)
	assert.Equal(t, models.ConflictDismissed, updated.Status)
}

func TestGetUnknownConflict(t *testing.T) {
	svc := NewConflictService(&conflictRecorderStub{}, freshDetectorStub{report: &timetable.Report{}}, nil, zap.NewNop())

	_, err := svc.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
