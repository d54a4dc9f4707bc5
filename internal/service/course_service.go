package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gocarina/gocsv"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/campushq/timetable-api/internal/dto"
	"github.com/campushq/timetable-api/internal/models"
	appErrors "github.com/campushq/timetable-api/pkg/errors"
)

type courseRepository interface {
	List(ctx context.Context, filter models.CourseFilter) ([]models.Course, int, error)
	ListByTerm(ctx context.Context, year, semester int) ([]models.Course, error)
	FindByID(ctx context.Context, id string) (*models.Course, error)
	Create(ctx context.Context, course *models.Course) error
	Update(ctx context.Context, course *models.Course) error
	Delete(ctx context.Context, id string) error
	BulkCreate(ctx context.Context, courses []models.Course) error
}

// CourseService manages course reference data.
type CourseService struct {
	repo      courseRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCourseService constructs a CourseService instance.
func NewCourseService(repo courseRepository, validate *validator.Validate, logger *zap.Logger) *CourseService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &CourseService{repo: repo, validator: validate, logger: logger}
}

// List returns courses matching the filter with pagination metadata.
func (s *CourseService) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, *models.Pagination, error) {
	courses, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return courses, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get loads one course by id.
func (s *CourseService) Get(ctx context.Context, id string) (*models.Course, error) {
	course, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	return course, nil
}

// Create validates and inserts a course.
func (s *CourseService) Create(ctx context.Context, req dto.CreateCourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}
	course := courseFromRequest(req)
	if err := s.repo.Create(ctx, course); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create course")
	}
	return course, nil
}

// Update validates and replaces a course's fields.
func (s *CourseService) Update(ctx context.Context, id string, req dto.UpdateCourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	course := courseFromRequest(req)
	course.ID = existing.ID
	course.CreatedAt = existing.CreatedAt
	if err := s.repo.Update(ctx, course); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update course")
	}
	return course, nil
}

// Delete removes a course.
func (s *CourseService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete course")
	}
	return nil
}

// ImportCSV bulk-loads courses for a term from a CSV stream. Rows failing
// validation are reported and skipped; valid rows are inserted in one
// transaction.
func (s *CourseService) ImportCSV(ctx context.Context, year, semester int, r io.Reader) (*dto.ImportResult, error) {
	var rows []models.CourseCSVRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "failed to parse course CSV")
	}

	result := &dto.ImportResult{}
	var courses []models.Course
	for i, row := range rows {
		if row.Code == "" || row.Name == "" {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: code and name are required", i+1))
			continue
		}
		courses = append(courses, models.Course{
			Code:           row.Code,
			Name:           row.Name,
			Year:           year,
			Semester:       semester,
			CourseType:     row.CourseType,
			TargetStudents: row.TargetStudents,
			LectureCount:   row.LectureCount,
			TutorialCount:  row.TutorialCount,
			EligibleYears:  splitCSVList(row.EligibleYears),
			Instructors:    splitCSVList(row.Instructors),
		})
	}

	if err := s.repo.BulkCreate(ctx, courses); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to import courses")
	}
	result.Imported = len(courses)
	s.logger.Info("imported courses",
		zap.Int("year", year),
		zap.Int("semester", semester),
		zap.Int("imported", result.Imported),
		zap.Int("rejected", len(result.Errors)))
	return result, nil
}

func courseFromRequest(req dto.CreateCourseRequest) *models.Course {
	return &models.Course{
		Code:           req.Code,
		Name:           req.Name,
		Year:           req.Year,
		Semester:       req.Semester,
		CourseType:     req.CourseType,
		TargetStudents: req.TargetStudents,
		LectureCount:   req.LectureCount,
		TutorialCount:  req.TutorialCount,
		EligibleYears:  pq.StringArray(req.EligibleYears),
		Instructors:    pq.StringArray(req.Instructors),
	}
}

// splitCSVList splits a semicolon-delimited cell into trimmed values.
func splitCSVList(raw string) pq.StringArray {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ";")
	out := make(pq.StringArray, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
