package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campushq/timetable-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestConflictRepositoryListActive(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewConflictRepository(db)

	rows := sqlmock.NewRows([]string{"id", "year", "semester", "kind", "status", "course_codes", "room_code", "instructor_id", "day", "time_range", "room_capacity", "required_capacity", "description", "created_at", "updated_at"}).
		AddRow("c1", 2026, 1, "ROOM_DOUBLE_BOOKING", "PENDING", "{CS101,CS205}", "B1-201", "", "Monday", "10:00 AM - 11:00 AM", 0, 0, "Room B1-201 is double-booked", time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, year, semester, kind, status, course_codes, room_code, instructor_id, day, time_range, room_capacity, required_capacity, description, created_at, updated_at FROM conflicts WHERE year = $1 AND semester = $2 AND status = $3 ORDER BY created_at ASC")).
		WithArgs(2026, 1, models.ConflictPending).
		WillReturnRows(rows)

	active, err := repo.ListActive(context.Background(), 2026, 1)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, []string{"CS101", "CS205"}, []string(active[0].CourseCodes))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConflictRepositoryCreateAssignsDefaults(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewConflictRepository(db)

	mock.ExpectExec("INSERT INTO conflicts").
		WithArgs(sqlmock.AnyArg(), 2026, 1, "ROOM_CAPACITY", string(models.ConflictPending), sqlmock.AnyArg(), "B2-105", "", "Tuesday", "8:00 AM - 10:00 AM", 35, 40, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	conflict := &models.Conflict{
		Year:             2026,
		Semester:         1,
		Kind:             "ROOM_CAPACITY",
		CourseCodes:      []string{"CS205"},
		RoomCode:         "B2-105",
		Day:              "Tuesday",
		TimeRange:        "8:00 AM - 10:00 AM",
		RoomCapacity:     35,
		RequiredCapacity: 40,
		Description:      "Room B2-105 seats 35 but CS205 needs 40",
	}
	require.NoError(t, repo.Create(context.Background(), conflict))
	assert.NotEmpty(t, conflict.ID)
	assert.Equal(t, models.ConflictPending, conflict.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConflictRepositoryListFilters(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewConflictRepository(db)

	rows := sqlmock.NewRows([]string{"id", "year", "semester", "kind", "status", "course_codes", "room_code", "instructor_id", "day", "time_range", "room_capacity", "required_capacity", "description", "created_at", "updated_at"}).
		AddRow("c1", 2026, 1, "INSTRUCTOR_CONFLICT", "PENDING", "{CS101,CS301}", "", "inst-1", "Friday", "9:00 AM - 10:00 AM", 0, 0, "Instructor is double-booked", time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, year, semester, kind, status, course_codes, room_code, instructor_id, day, time_range, room_capacity, required_capacity, description, created_at, updated_at FROM conflicts WHERE 1=1 AND year = $1 AND kind = $2 ORDER BY created_at DESC LIMIT 20 OFFSET 0")).
		WithArgs(2026, "INSTRUCTOR_CONFLICT").
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM conflicts WHERE 1=1 AND year = $1 AND kind = $2")).
		WithArgs(2026, "INSTRUCTOR_CONFLICT").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	list, total, err := repo.List(context.Background(), models.ConflictFilter{Year: 2026, Kind: "INSTRUCTOR_CONFLICT"})
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConflictRepositoryUpdateStatusMissingRow(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewConflictRepository(db)

	mock.ExpectExec("UPDATE conflicts SET status").
		WithArgs(models.ConflictResolved, sqlmock.AnyArg(), "missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateStatus(context.Background(), "missing", models.ConflictResolved)
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
