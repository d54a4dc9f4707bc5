package service

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campushq/timetable-api/internal/dto"
	"github.com/campushq/timetable-api/internal/models"
	appErrors "github.com/campushq/timetable-api/pkg/errors"
)

type courseRepoStub struct {
	courses map[string]*models.Course
	created []*models.Course
	bulk    [][]models.Course
	deleted []string
}

func (s *courseRepoStub) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, int, error) {
	var out []models.Course
	for _, c := range s.courses {
		out = append(out, *c)
	}
	return out, len(out), nil
}

func (s *courseRepoStub) ListByTerm(ctx context.Context, year, semester int) ([]models.Course, error) {
	list, _, err := s.List(ctx, models.CourseFilter{})
	return list, err
}

func (s *courseRepoStub) FindByID(ctx context.Context, id string) (*models.Course, error) {
	if c, ok := s.courses[id]; ok {
		return c, nil
	}
	return nil, sql.ErrNoRows
}

func (s *courseRepoStub) Create(ctx context.Context, course *models.Course) error {
	s.created = append(s.created, course)
	return nil
}

func (s *courseRepoStub) Update(ctx context.Context, course *models.Course) error {
	s.courses[course.ID] = course
	return nil
}

func (s *courseRepoStub) Delete(ctx context.Context, id string) error {
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *courseRepoStub) BulkCreate(ctx context.Context, courses []models.Course) error {
	s.bulk = append(s.bulk, courses)
	return nil
}

func TestCourseCreateValidatesPayload(t *testing.T) {
	repo := &courseRepoStub{courses: map[string]*models.Course{}}
	svc := NewCourseService(repo, nil, zap.NewNop())

	_, err := svc.Create(context.Background(), dto.CreateCourseRequest{Name: "Algorithms"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.created)
}

func TestCourseCreatePersistsArrays(t *testing.T) {
	repo := &courseRepoStub{courses: map[string]*models.Course{}}
	svc := NewCourseService(repo, nil, zap.NewNop())

	course, err := svc.Create(context.Background(), dto.CreateCourseRequest{
		Code:           "CS101",
		Name:           "Algorithms",
		Year:           2026,
		Semester:       1,
		TargetStudents: 120,
		LectureCount:   2,
		TutorialCount:  6,
		EligibleYears:  []string{"Y1", "Y2"},
		Instructors:    []string{"inst-1"},
	})
	require.NoError(t, err)
	require.Len(t, repo.created, 1)
	assert.Equal(t, "CS101", course.Code)
	assert.Equal(t, []string{"Y1", "Y2"}, []string(course.EligibleYears))
}

func TestCourseImportCSVSkipsInvalidRows(t *testing.T) {
	repo := &courseRepoStub{courses: map[string]*models.Course{}}
	svc := NewCourseService(repo, nil, zap.NewNop())

	csvData := strings.Join([]string{
		"code,name,course_type,target_students,lecture_count,tutorial_count,eligible_years,instructors",
		"CS101,Algorithms,CORE,120,2,6,Y1;Y2,Dr. Ada;Dr. Boole",
		",Missing Code,CORE,40,1,2,Y1,",
		"CS205,Databases,CORE,80,1,4,Y2,Dr. Codd",
	}, "\n")

	result, err := svc.ImportCSV(context.Background(), 2026, 1, strings.NewReader(csvData))
	require.NoError(t, err)
	assert.Equal(t, 2, result.Imported)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "row 2")

	require.Len(t, repo.bulk, 1)
	imported := repo.bulk[0]
	require.Len(t, imported, 2)
	assert.Equal(t, "CS101", imported[0].Code)
	assert.Equal(t, 2026, imported[0].Year)
	assert.Equal(t, []string{"Y1", "Y2"}, []string(imported[0].EligibleYears))
	assert.Equal(t, []string{"Dr. Ada", "Dr. Boole"}, []string(imported[0].Instructors))
}

func TestCourseDeleteUnknown(t *testing.T) {
	repo := &courseRepoStub{courses: map[string]*models.Course{}}
	svc := NewCourseService(repo, nil, zap.NewNop())

	err := svc.Delete(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.deleted)
}
