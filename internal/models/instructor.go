package models

import "time"

// InstructorStatus enumerates instructor availability states.
type InstructorStatus string

const (
	InstructorActive   InstructorStatus = "ACTIVE"
	InstructorInactive InstructorStatus = "INACTIVE"
)

// Instructor represents a teaching staff member.
type Instructor struct {
	ID        string           `db:"id" json:"id"`
	Name      string           `db:"name" json:"name"`
	Email     string           `db:"email" json:"email"`
	Status    InstructorStatus `db:"status" json:"status"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt time.Time        `db:"updated_at" json:"updated_at"`
}

// InstructorFilter captures listing criteria for instructors.
type InstructorFilter struct {
	Status   InstructorStatus
	Search   string
	Page     int
	PageSize int
}
