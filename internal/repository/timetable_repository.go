package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campushq/timetable-api/internal/models"
)

// TimetableRepository persists the flat timetable entry list and the
// per-term publish flag. Saves are full-replace: the grid owns the truth in
// memory and the stored list always mirrors the latest save.
type TimetableRepository struct {
	db *sqlx.DB
}

// NewTimetableRepository creates a new timetable repository.
func NewTimetableRepository(db *sqlx.DB) *TimetableRepository {
	return &TimetableRepository{db: db}
}

const entryColumns = `id, year, semester, course_code, occ_type, occ_numbers, day, start_time, duration, room_id, instructor_id, instructor_name, created_at, updated_at`

// ListByTerm returns all entries for a year/semester in stable order.
func (r *TimetableRepository) ListByTerm(ctx context.Context, year, semester int) ([]models.TimetableEntry, error) {
	query := fmt.Sprintf("SELECT %s FROM timetable_entries WHERE year = $1 AND semester = $2 ORDER BY day ASC, room_id ASC, start_time ASC, id ASC", entryColumns)
	var entries []models.TimetableEntry
	if err := r.db.SelectContext(ctx, &entries, query, year, semester); err != nil {
		return nil, fmt.Errorf("list timetable entries: %w", err)
	}
	return entries, nil
}

// ReplaceTerm swaps the stored entry list for a year/semester inside one
// transaction (full-replace semantics).
func (r *TimetableRepository) ReplaceTerm(ctx context.Context, year, semester int, entries []models.TimetableEntry) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin timetable replace: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, "DELETE FROM timetable_entries WHERE year = $1 AND semester = $2", year, semester); err != nil {
		return fmt.Errorf("clear timetable entries: %w", err)
	}

	now := time.Now().UTC()
	const query = `
INSERT INTO timetable_entries (id, year, semester, course_code, occ_type, occ_numbers, day, start_time, duration, room_id, instructor_id, instructor_name, created_at, updated_at)
VALUES (:id, :year, :semester, :course_code, :occ_type, :occ_numbers, :day, :start_time, :duration, :room_id, :instructor_id, :instructor_name, :created_at, :updated_at)`
	for i := range entries {
		entry := &entries[i]
		if entry.ID == "" {
			entry.ID = uuid.NewString()
		}
		entry.Year = year
		entry.Semester = semester
		if entry.CreatedAt.IsZero() {
			entry.CreatedAt = now
		}
		entry.UpdatedAt = now
		if _, err := tx.NamedExecContext(ctx, query, entry); err != nil {
			return fmt.Errorf("insert timetable entry %s: %w", entry.ID, err)
		}
	}
	return tx.Commit()
}

// GetPublication returns the publish flag for a year/semester; an absent row
// means unpublished.
func (r *TimetableRepository) GetPublication(ctx context.Context, year, semester int) (*models.TimetablePublication, error) {
	const query = `SELECT year, semester, published, updated_at FROM timetable_publications WHERE year = $1 AND semester = $2`
	var pub models.TimetablePublication
	if err := r.db.GetContext(ctx, &pub, query, year, semester); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &models.TimetablePublication{Year: year, Semester: semester, Published: false}, nil
		}
		return nil, fmt.Errorf("get timetable publication: %w", err)
	}
	return &pub, nil
}

// SetPublication upserts the publish flag for a year/semester.
func (r *TimetableRepository) SetPublication(ctx context.Context, year, semester int, published bool) error {
	const query = `
INSERT INTO timetable_publications (year, semester, published, updated_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (year, semester) DO UPDATE SET published = EXCLUDED.published, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.ExecContext(ctx, query, year, semester, published, time.Now().UTC()); err != nil {
		return fmt.Errorf("set timetable publication: %w", err)
	}
	return nil
}
