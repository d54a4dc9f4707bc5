package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campushq/timetable-api/internal/models"
)

// ConflictRepository is the system of record for conflict status. Detection
// is recomputed freely; rows here track what administrators still have to
// act on.
type ConflictRepository struct {
	db *sqlx.DB
}

// NewConflictRepository creates a new conflict repository.
func NewConflictRepository(db *sqlx.DB) *ConflictRepository {
	return &ConflictRepository{db: db}
}

const conflictColumns = `id, year, semester, kind, status, course_codes, room_code, instructor_id, day, time_range, room_capacity, required_capacity, description, created_at, updated_at`

// Create records one new Pending conflict with its structured identity
// fields.
func (r *ConflictRepository) Create(ctx context.Context, conflict *models.Conflict) error {
	if conflict.ID == "" {
		conflict.ID = uuid.NewString()
	}
	if conflict.Status == "" {
		conflict.Status = models.ConflictPending
	}
	now := time.Now().UTC()
	conflict.CreatedAt = now
	conflict.UpdatedAt = now

	const query = `
INSERT INTO conflicts (id, year, semester, kind, status, course_codes, room_code, instructor_id, day, time_range, room_capacity, required_capacity, description, created_at, updated_at)
VALUES (:id, :year, :semester, :kind, :status, :course_codes, :room_code, :instructor_id, :day, :time_range, :room_capacity, :required_capacity, :description, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, conflict); err != nil {
		return fmt.Errorf("create conflict: %w", err)
	}
	return nil
}

// ListActive returns all Pending conflicts for a year/semester; these form
// the identity set reconciliation checks against.
func (r *ConflictRepository) ListActive(ctx context.Context, year, semester int) ([]models.Conflict, error) {
	query := fmt.Sprintf("SELECT %s FROM conflicts WHERE year = $1 AND semester = $2 AND status = $3 ORDER BY created_at ASC", conflictColumns)
	var conflicts []models.Conflict
	if err := r.db.SelectContext(ctx, &conflicts, query, year, semester, models.ConflictPending); err != nil {
		return nil, fmt.Errorf("list active conflicts: %w", err)
	}
	return conflicts, nil
}

// List returns conflicts with filtering and pagination.
func (r *ConflictRepository) List(ctx context.Context, filter models.ConflictFilter) ([]models.Conflict, int, error) {
	base := "FROM conflicts WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.Year != 0 {
		conditions = append(conditions, fmt.Sprintf("year = $%d", len(args)+1))
		args = append(args, filter.Year)
	}
	if filter.Semester != 0 {
		conditions = append(conditions, fmt.Sprintf("semester = $%d", len(args)+1))
		args = append(args, filter.Semester)
	}
	if filter.Kind != "" {
		conditions = append(conditions, fmt.Sprintf("kind = $%d", len(args)+1))
		args = append(args, filter.Kind)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY created_at DESC LIMIT %d OFFSET %d", conflictColumns, base, size, offset)
	var conflicts []models.Conflict
	if err := r.db.SelectContext(ctx, &conflicts, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list conflicts: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count conflicts: %w", err)
	}
	return conflicts, total, nil
}

// FindByID loads a conflict by id.
func (r *ConflictRepository) FindByID(ctx context.Context, id string) (*models.Conflict, error) {
	query := fmt.Sprintf("SELECT %s FROM conflicts WHERE id = $1", conflictColumns)
	var conflict models.Conflict
	if err := r.db.GetContext(ctx, &conflict, query, id); err != nil {
		return nil, err
	}
	return &conflict, nil
}

// UpdateStatus transitions a conflict's lifecycle state.
func (r *ConflictRepository) UpdateStatus(ctx context.Context, id string, status models.ConflictStatus) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE conflicts SET status = $1, updated_at = $2 WHERE id = $3",
		status, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update conflict status: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("update conflict %s: no rows affected", id)
	}
	return nil
}
