package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campushq/timetable-api/internal/dto"
	"github.com/campushq/timetable-api/internal/models"
	appErrors "github.com/campushq/timetable-api/pkg/errors"
)

type timetableRepoStub struct {
	entries  []models.TimetableEntry
	pub      *models.TimetablePublication
	replaced [][]models.TimetableEntry
	listErr  error
}

func (s *timetableRepoStub) ListByTerm(ctx context.Context, year, semester int) ([]models.TimetableEntry, error) {
	return s.entries, s.listErr
}

func (s *timetableRepoStub) ReplaceTerm(ctx context.Context, year, semester int, entries []models.TimetableEntry) error {
	s.replaced = append(s.replaced, entries)
	s.entries = entries
	return nil
}

func (s *timetableRepoStub) GetPublication(ctx context.Context, year, semester int) (*models.TimetablePublication, error) {
	if s.pub == nil {
		return &models.TimetablePublication{Year: year, Semester: semester}, nil
	}
	return s.pub, nil
}

func (s *timetableRepoStub) SetPublication(ctx context.Context, year, semester int, published bool) error {
	s.pub = &models.TimetablePublication{Year: year, Semester: semester, Published: published}
	return nil
}

type courseCatalogStub struct {
	courses []models.Course
}

func (s courseCatalogStub) ListByTerm(ctx context.Context, year, semester int) ([]models.Course, error) {
	return s.courses, nil
}

type roomCatalogStub struct {
	rooms []models.Room
}

func (s roomCatalogStub) ListAll(ctx context.Context) ([]models.Room, error) {
	return s.rooms, nil
}

type conflictRecorderStub struct {
	active  []models.Conflict
	created []*models.Conflict
}

func (s *conflictRecorderStub) ListActive(ctx context.Context, year, semester int) ([]models.Conflict, error) {
	return s.active, nil
}

func (s *conflictRecorderStub) Create(ctx context.Context, conflict *models.Conflict) error {
	s.created = append(s.created, conflict)
	return nil
}

func (s *conflictRecorderStub) List(ctx context.Context, filter models.ConflictFilter) ([]models.Conflict, int, error) {
	return s.active, len(s.active), nil
}

func (s *conflictRecorderStub) FindByID(ctx context.Context, id string) (*models.Conflict, error) {
	for i := range s.active {
		if s.active[i].ID == id {
			return &s.active[i], nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *conflictRecorderStub) UpdateStatus(ctx context.Context, id string, status models.ConflictStatus) error {
	for i := range s.active {
		if s.active[i].ID == id {
			s.active[i].Status = status
			return nil
		}
	}
	return sql.ErrNoRows
}

func newTestTimetableService(repo *timetableRepoStub, courses courseCatalogStub, rooms roomCatalogStub, conflicts *conflictRecorderStub) *TimetableService {
	cacheSvc := NewCacheService(nil, nil, 0, nil, false)
	return NewTimetableService(repo, courses, rooms, conflicts, cacheSvc, nil, nil, zap.NewNop())
}

func testPayload(id, code, day, start string, duration int, room string) dto.EntryPayload {
	return dto.EntryPayload{
		ID:         id,
		CourseCode: code,
		OccType:    "LECTURE",
		OccNumbers: []int{1},
		Day:        day,
		StartTime:  start,
		Duration:   duration,
		RoomID:     room,
	}
}

func testReferenceData() (courseCatalogStub, roomCatalogStub) {
	courses := courseCatalogStub{courses: []models.Course{
		{Code: "CS101", TargetStudents: 30, LectureCount: 1, TutorialCount: 2},
		{Code: "CS205", TargetStudents: 40, LectureCount: 1},
	}}
	rooms := roomCatalogStub{rooms: []models.Room{
		{ID: "r1", Code: "B1-201", Capacity: 100},
		{ID: "r2", Code: "B2-105", Capacity: 35},
	}}
	return courses, rooms
}

func TestSaveRecordsDetectedConflicts(t *testing.T) {
	repo := &timetableRepoStub{}
	courses, rooms := testReferenceData()
	conflicts := &conflictRecorderStub{}
	svc := newTestTimetableService(repo, courses, rooms, conflicts)

	req := dto.SaveTimetableRequest{
		Year:     2026,
		Semester: 1,
		Entries: []dto.EntryPayload{
			testPayload("e1", "CS101", "Monday", "9:00 AM - 10:00 AM", 2, "r1"),
			testPayload("e2", "CS205", "Monday", "10:00 AM - 11:00 AM", 1, "r1"),
		},
	}
	result, err := svc.Save(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Saved)
	assert.Equal(t, 0, result.Skipped)
	assert.Equal(t, 1, result.Summary.RoomDoubleBook)
	assert.Equal(t, 1, result.NewConflicts)
	require.Len(t, conflicts.created, 1)
	assert.Equal(t, "ROOM_DOUBLE_BOOKING", conflicts.created[0].Kind)
	assert.Equal(t, models.ConflictPending, conflicts.created[0].Status)
	assert.ElementsMatch(t, []string{"CS101", "CS205"}, conflicts.created[0].CourseCodes)
}

func TestSaveReconciliationIsIdempotent(t *testing.T) {
	repo := &timetableRepoStub{}
	courses, rooms := testReferenceData()
	conflicts := &conflictRecorderStub{}
	svc := newTestTimetableService(repo, courses, rooms, conflicts)

	req := dto.SaveTimetableRequest{
		Year:     2026,
		Semester: 1,
		Entries: []dto.EntryPayload{
			testPayload("e1", "CS101", "Monday", "9:00 AM - 10:00 AM", 2, "r1"),
			testPayload("e2", "CS205", "Monday", "10:00 AM - 11:00 AM", 1, "r1"),
		},
	}
	first, err := svc.Save(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, 1, first.NewConflicts)

	// Make the recorded conflict visible as active and save the identical
	// grid again: nothing new may be recorded.
	for _, c := range conflicts.created {
		conflicts.active = append(conflicts.active, *c)
	}
	second, err := svc.Save(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 0, second.NewConflicts)
	assert.Len(t, conflicts.created, 1)
}

func TestSaveSkipsMalformedEntries(t *testing.T) {
	repo := &timetableRepoStub{}
	courses, rooms := testReferenceData()
	conflicts := &conflictRecorderStub{}
	svc := newTestTimetableService(repo, courses, rooms, conflicts)

	req := dto.SaveTimetableRequest{
		Year:     2026,
		Semester: 1,
		Entries: []dto.EntryPayload{
			testPayload("e1", "CS101", "Monday", "9:00 AM - 10:00 AM", 1, "r1"),
			testPayload("e2", "CS205", "Funday", "9:00 AM - 10:00 AM", 1, "r1"),
		},
	}
	result, err := svc.Save(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Saved)
	assert.Equal(t, 1, result.Skipped)
	require.Len(t, repo.replaced, 1)
	require.Len(t, repo.replaced[0], 1)
	assert.Equal(t, "e1", repo.replaced[0][0].ID)
}

func TestLoadRefusesUnpublishedTerm(t *testing.T) {
	repo := &timetableRepoStub{}
	courses, rooms := testReferenceData()
	svc := newTestTimetableService(repo, courses, rooms, &conflictRecorderStub{})

	_, _, err := svc.Load(context.Background(), dto.TimetableQuery{Year: 2026, Semester: 1, PublishedOnly: true})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotPublished.Code, appErrors.FromError(err).Code)
}

func TestLoadReturnsStoredEntries(t *testing.T) {
	repo := &timetableRepoStub{entries: []models.TimetableEntry{
		{
			ID:         "e1",
			Year:       2026,
			Semester:   1,
			CourseCode: "CS101",
			OccType:    "LECTURE",
			OccNumbers: []int64{1},
			Day:        "Tuesday",
			StartTime:  "8:00 AM - 9:00 AM",
			Duration:   2,
			RoomID:     "r1",
		},
	}}
	courses, rooms := testReferenceData()
	svc := newTestTimetableService(repo, courses, rooms, &conflictRecorderStub{})

	view, cacheHit, err := svc.Load(context.Background(), dto.TimetableQuery{Year: 2026, Semester: 1})
	require.NoError(t, err)
	assert.False(t, cacheHit)
	require.Len(t, view.Entries, 1)
	assert.Equal(t, "Tuesday", view.Entries[0].Day)
	assert.Equal(t, "8:00 AM - 9:00 AM", view.Entries[0].StartTime)
	assert.False(t, view.Published)
	assert.Zero(t, view.Skipped)
}

func TestMoveRelocatesAndPersists(t *testing.T) {
	repo := &timetableRepoStub{entries: []models.TimetableEntry{
		{
			ID:         "e1",
			CourseCode: "CS101",
			OccType:    "LECTURE",
			OccNumbers: []int64{1},
			Day:        "Monday",
			StartTime:  "8:00 AM - 9:00 AM",
			Duration:   1,
			RoomID:     "r1",
		},
	}}
	courses, rooms := testReferenceData()
	svc := newTestTimetableService(repo, courses, rooms, &conflictRecorderStub{})

	result, err := svc.Move(context.Background(), dto.MoveEntryRequest{
		Year:      2026,
		Semester:  1,
		EntryID:   "e1",
		Day:       "Wednesday",
		RoomID:    "r2",
		StartTime: "10:00 AM - 11:00 AM",
	})
	require.NoError(t, err)
	assert.Empty(t, result.Warnings)
	require.Len(t, result.Entries, 1)
	assert.Equal(t, "Wednesday", result.Entries[0].Day)
	assert.Equal(t, "r2", result.Entries[0].RoomID)

	require.Len(t, repo.replaced, 1)
	assert.Equal(t, "Wednesday", repo.replaced[0][0].Day)
	assert.Equal(t, "10:00 AM - 11:00 AM", repo.replaced[0][0].StartTime)
}

func TestMoveUnknownEntryFails(t *testing.T) {
	repo := &timetableRepoStub{}
	courses, rooms := testReferenceData()
	svc := newTestTimetableService(repo, courses, rooms, &conflictRecorderStub{})

	_, err := svc.Move(context.Background(), dto.MoveEntryRequest{
		Year:      2026,
		Semester:  1,
		EntryID:   "ghost",
		Day:       "Monday",
		RoomID:    "r1",
		StartTime: "8:00 AM - 9:00 AM",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.replaced)
}

func TestReassignUpdatesAllLinkedCopies(t *testing.T) {
	shared := models.TimetableEntry{
		ID:         "e1",
		CourseCode: "CS101",
		OccType:    "LECTURE",
		OccNumbers: []int64{1, 2},
		Duration:   1,
		RoomID:     "r1",
	}
	monday := shared
	monday.Day = "Monday"
	monday.StartTime = "8:00 AM - 9:00 AM"
	thursday := shared
	thursday.Day = "Thursday"
	thursday.StartTime = "2:00 PM - 3:00 PM"

	repo := &timetableRepoStub{entries: []models.TimetableEntry{monday, thursday}}
	courses, rooms := testReferenceData()
	svc := newTestTimetableService(repo, courses, rooms, &conflictRecorderStub{})

	result, err := svc.Reassign(context.Background(), dto.ReassignEntryRequest{
		Year:         2026,
		Semester:     1,
		EntryID:      "e1",
		InstructorID: "inst-7",
	})
	require.NoError(t, err)
	require.Len(t, result.Entries, 2)
	for _, e := range result.Entries {
		assert.Equal(t, "inst-7", e.InstructorID)
	}
}

func TestLayoutPacksOverlappingEntriesIntoLanes(t *testing.T) {
	repo := &timetableRepoStub{entries: []models.TimetableEntry{
		{
			ID: "e1", CourseCode: "CS101", OccType: "LECTURE", OccNumbers: []int64{1},
			Day: "Monday", StartTime: "9:00 AM - 10:00 AM", Duration: 2, RoomID: "r1",
		},
		{
			ID: "e2", CourseCode: "CS205", OccType: "LECTURE", OccNumbers: []int64{1},
			Day: "Monday", StartTime: "10:00 AM - 11:00 AM", Duration: 1, RoomID: "r1",
		},
	}}
	courses, rooms := testReferenceData()
	svc := newTestTimetableService(repo, courses, rooms, &conflictRecorderStub{})

	layout, err := svc.Layout(context.Background(), 2026, 1, "Monday")
	require.NoError(t, err)
	require.Len(t, layout.Rooms, 1)
	assert.Equal(t, "B1-201", layout.Rooms[0].RoomCode)
	assert.Equal(t, 2, layout.Rooms[0].MaxLanes)

	// The overlapping entry sits in the second lane at its start slot.
	second := layout.Rooms[0].Lanes[1]
	require.NotNil(t, second.Slots[2])
	assert.Equal(t, "CS205", second.Slots[2].CourseCode)
}

func TestLayoutUnknownDay(t *testing.T) {
	repo := &timetableRepoStub{}
	courses, rooms := testReferenceData()
	svc := newTestTimetableService(repo, courses, rooms, &conflictRecorderStub{})

	_, err := svc.Layout(context.Background(), 2026, 1, "Caturday")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestPublishTogglesFlag(t *testing.T) {
	repo := &timetableRepoStub{}
	courses, rooms := testReferenceData()
	svc := newTestTimetableService(repo, courses, rooms, &conflictRecorderStub{})

	pub, err := svc.Publish(context.Background(), dto.PublishRequest{Year: 2026, Semester: 1, Published: true})
	require.NoError(t, err)
	assert.True(t, pub.Published)

	view, _, err := svc.Load(context.Background(), dto.TimetableQuery{Year: 2026, Semester: 1, PublishedOnly: true})
	require.NoError(t, err)
	assert.True(t, view.Published)
}

func TestDetectReportsWithoutPersisting(t *testing.T) {
	repo := &timetableRepoStub{entries: []models.TimetableEntry{
		{
			ID: "e1", CourseCode: "CS205", OccType: "LECTURE", OccNumbers: []int64{1},
			Day: "Monday", StartTime: "8:00 AM - 9:00 AM", Duration: 1, RoomID: "r2",
		},
	}}
	courses, rooms := testReferenceData()
	conflicts := &conflictRecorderStub{}
	svc := newTestTimetableService(repo, courses, rooms, conflicts)

	// CS205 needs 40 seats, room r2 holds 35.
	result, err := svc.Detect(context.Background(), 2026, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Summary.RoomCapacity)
	assert.Empty(t, conflicts.created)
	assert.Empty(t, repo.replaced)
}
