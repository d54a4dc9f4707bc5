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

// CourseRepository provides persistence for course reference data.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository creates a new course repository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

const courseColumns = `id, code, name, year, semester, course_type, target_students, lecture_count, tutorial_count, eligible_years, instructors, created_at, updated_at`

// List returns courses with optional filtering and pagination.
func (r *CourseRepository) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, int, error) {
	base := "FROM courses WHERE 1=1"
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
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(code ILIKE $%d OR name ILIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+filter.Search+"%")
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

	query := fmt.Sprintf("SELECT %s %s ORDER BY code ASC LIMIT %d OFFSET %d", courseColumns, base, size, offset)
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list courses: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count courses: %w", err)
	}
	return courses, total, nil
}

// ListByTerm returns all courses for a year/semester without pagination.
// This feeds the conflict detector's reference index.
func (r *CourseRepository) ListByTerm(ctx context.Context, year, semester int) ([]models.Course, error) {
	query := fmt.Sprintf("SELECT %s FROM courses WHERE year = $1 AND semester = $2 ORDER BY code ASC", courseColumns)
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query, year, semester); err != nil {
		return nil, fmt.Errorf("list courses by term: %w", err)
	}
	return courses, nil
}

// FindByID loads a course by id.
func (r *CourseRepository) FindByID(ctx context.Context, id string) (*models.Course, error) {
	query := fmt.Sprintf("SELECT %s FROM courses WHERE id = $1", courseColumns)
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, id); err != nil {
		return nil, err
	}
	return &course, nil
}

// Create inserts a course.
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	if course.ID == "" {
		course.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	course.CreatedAt = now
	course.UpdatedAt = now

	const query = `
INSERT INTO courses (id, code, name, year, semester, course_type, target_students, lecture_count, tutorial_count, eligible_years, instructors, created_at, updated_at)
VALUES (:id, :code, :name, :year, :semester, :course_type, :target_students, :lecture_count, :tutorial_count, :eligible_years, :instructors, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, course); err != nil {
		return fmt.Errorf("create course: %w", err)
	}
	return nil
}

// Update modifies a course.
func (r *CourseRepository) Update(ctx context.Context, course *models.Course) error {
	course.UpdatedAt = time.Now().UTC()
	const query = `
UPDATE courses SET code = :code, name = :name, year = :year, semester = :semester, course_type = :course_type,
       target_students = :target_students, lecture_count = :lecture_count, tutorial_count = :tutorial_count,
       eligible_years = :eligible_years, instructors = :instructors, updated_at = :updated_at
WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, course); err != nil {
		return fmt.Errorf("update course: %w", err)
	}
	return nil
}

// Delete removes a course.
func (r *CourseRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM courses WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete course: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("delete course %s: no rows affected", id)
	}
	return nil
}

// BulkCreate inserts multiple courses inside one transaction.
func (r *CourseRepository) BulkCreate(ctx context.Context, courses []models.Course) error {
	if len(courses) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin bulk course insert: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	now := time.Now().UTC()
	const query = `
INSERT INTO courses (id, code, name, year, semester, course_type, target_students, lecture_count, tutorial_count, eligible_years, instructors, created_at, updated_at)
VALUES (:id, :code, :name, :year, :semester, :course_type, :target_students, :lecture_count, :tutorial_count, :eligible_years, :instructors, :created_at, :updated_at)`
	for i := range courses {
		course := &courses[i]
		if course.ID == "" {
			course.ID = uuid.NewString()
		}
		course.CreatedAt = now
		course.UpdatedAt = now
		if _, err := tx.NamedExecContext(ctx, query, course); err != nil {
			return fmt.Errorf("bulk insert course %s: %w", course.Code, err)
		}
	}
	return tx.Commit()
}
