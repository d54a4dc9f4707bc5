package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campushq/timetable-api/internal/models"
)

func TestTimetableRepositoryListByTerm(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	rows := sqlmock.NewRows([]string{"id", "year", "semester", "course_code", "occ_type", "occ_numbers", "day", "start_time", "duration", "room_id", "instructor_id", "instructor_name", "created_at", "updated_at"}).
		AddRow("e1", 2026, 1, "CS101", "LECTURE", "{1}", "Monday", "9:00 AM - 10:00 AM", 2, "r1", "inst-1", "Dr. Ada", time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, year, semester, course_code, occ_type, occ_numbers, day, start_time, duration, room_id, instructor_id, instructor_name, created_at, updated_at FROM timetable_entries WHERE year = $1 AND semester = $2 ORDER BY day ASC, room_id ASC, start_time ASC, id ASC")).
		WithArgs(2026, 1).
		WillReturnRows(rows)

	entries, err := repo.ListByTerm(context.Background(), 2026, 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "CS101", entries[0].CourseCode)
	assert.Equal(t, []int64{1}, []int64(entries[0].OccNumbers))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryReplaceTerm(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM timetable_entries WHERE year = $1 AND semester = $2")).
		WithArgs(2026, 1).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("INSERT INTO timetable_entries").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	entries := []models.TimetableEntry{
		{CourseCode: "CS101", OccType: "LECTURE", OccNumbers: []int64{1}, Day: "Monday", StartTime: "9:00 AM - 10:00 AM", Duration: 2, RoomID: "r1"},
	}
	require.NoError(t, repo.ReplaceTerm(context.Background(), 2026, 1, entries))
	assert.NotEmpty(t, entries[0].ID)
	assert.Equal(t, 2026, entries[0].Year)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryGetPublicationDefaultsUnpublished(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT year, semester, published, updated_at FROM timetable_publications WHERE year = $1 AND semester = $2")).
		WithArgs(2026, 2).
		WillReturnError(sql.ErrNoRows)

	pub, err := repo.GetPublication(context.Background(), 2026, 2)
	require.NoError(t, err)
	assert.False(t, pub.Published)
	assert.Equal(t, 2026, pub.Year)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositorySetPublication(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	mock.ExpectExec("INSERT INTO timetable_publications").
		WithArgs(2026, 1, true, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.SetPublication(context.Background(), 2026, 1, true))
	assert.NoError(t, mock.ExpectationsWereMet())
}
