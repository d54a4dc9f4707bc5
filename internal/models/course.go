package models

import (
	"time"

	"github.com/lib/pq"
)

// Course represents a course offered in a given year and semester. Courses
// are reference data for the timetable core: capacity checks divide the
// target student count across lecture or tutorial occurrences.
type Course struct {
	ID             string         `db:"id" json:"id"`
	Code           string         `db:"code" json:"code"`
	Name           string         `db:"name" json:"name"`
	Year           int            `db:"year" json:"year"`
	Semester       int            `db:"semester" json:"semester"`
	CourseType     string         `db:"course_type" json:"course_type"`
	TargetStudents int            `db:"target_students" json:"target_students"`
	LectureCount   int            `db:"lecture_count" json:"lecture_count"`
	TutorialCount  int            `db:"tutorial_count" json:"tutorial_count"`
	EligibleYears  pq.StringArray `db:"eligible_years" json:"eligible_years"`
	Instructors    pq.StringArray `db:"instructors" json:"instructors"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updated_at"`
}

// CourseFilter captures listing criteria for courses.
type CourseFilter struct {
	Year     int
	Semester int
	Search   string
	Page     int
	PageSize int
}

// CourseCSVRow is the gocsv-tagged shape for bulk course import.
type CourseCSVRow struct {
	Code           string `csv:"code"`
	Name           string `csv:"name"`
	CourseType     string `csv:"course_type"`
	TargetStudents int    `csv:"target_students"`
	LectureCount   int    `csv:"lecture_count"`
	TutorialCount  int    `csv:"tutorial_count"`
	EligibleYears  string `csv:"eligible_years"`
	Instructors    string `csv:"instructors"`
}
