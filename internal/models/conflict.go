package models

import (
	"time"

	"github.com/lib/pq"
)

// ConflictStatus enumerates the lifecycle of a recorded conflict. Only
// Pending conflicts count as active during reconciliation.
type ConflictStatus string

const (
	ConflictPending   ConflictStatus = "PENDING"
	ConflictResolved  ConflictStatus = "RESOLVED"
	ConflictDismissed ConflictStatus = "DISMISSED"
)

// Conflict is a persisted scheduling conflict. The structured identity
// fields (course codes, room code, day, time range, instructor id) are
// written at first recording so identity never has to be re-derived by
// parsing the human-readable description.
type Conflict struct {
	ID               string         `db:"id" json:"id"`
	Year             int            `db:"year" json:"year"`
	Semester         int            `db:"semester" json:"semester"`
	Kind             string         `db:"kind" json:"kind"`
	Status           ConflictStatus `db:"status" json:"status"`
	CourseCodes      pq.StringArray `db:"course_codes" json:"course_codes"`
	RoomCode         string         `db:"room_code" json:"room_code,omitempty"`
	InstructorID     string         `db:"instructor_id" json:"instructor_id,omitempty"`
	Day              string         `db:"day" json:"day"`
	TimeRange        string         `db:"time_range" json:"time_range"`
	RoomCapacity     int            `db:"room_capacity" json:"room_capacity,omitempty"`
	RequiredCapacity int            `db:"required_capacity" json:"required_capacity,omitempty"`
	Description      string         `db:"description" json:"description"`
	CreatedAt        time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at" json:"updated_at"`
}

// ConflictFilter captures listing criteria for conflicts.
type ConflictFilter struct {
	Year     int
	Semester int
	Kind     string
	Status   ConflictStatus
	Page     int
	PageSize int
}
