package models

import (
	"time"

	"github.com/lib/pq"
)

// TimetableEntry is the persisted flat form of one scheduled occurrence. The
// in-memory grid is rebuilt from these rows; StartTime stores the slot label
// ("8:00 AM - 9:00 AM") rather than an index so the stored timetable survives
// reorderings of the slot list but not removals.
type TimetableEntry struct {
	ID             string        `db:"id" json:"id"`
	Year           int           `db:"year" json:"year"`
	Semester       int           `db:"semester" json:"semester"`
	CourseCode     string        `db:"course_code" json:"course_code"`
	OccType        string        `db:"occ_type" json:"occ_type"`
	OccNumbers     pq.Int64Array `db:"occ_numbers" json:"occ_numbers"`
	Day            string        `db:"day" json:"day"`
	StartTime      string        `db:"start_time" json:"start_time"`
	Duration       int           `db:"duration" json:"duration"`
	RoomID         string        `db:"room_id" json:"room_id"`
	InstructorID   string        `db:"instructor_id" json:"instructor_id,omitempty"`
	InstructorName string        `db:"instructor_name" json:"instructor_name,omitempty"`
	CreatedAt      time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time     `db:"updated_at" json:"updated_at"`
}

// TimetablePublication is the per-year/semester publish flag gating
// non-admin reads.
type TimetablePublication struct {
	Year      int       `db:"year" json:"year"`
	Semester  int       `db:"semester" json:"semester"`
	Published bool      `db:"published" json:"published"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
