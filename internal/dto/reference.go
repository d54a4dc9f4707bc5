package dto

// CreateCourseRequest describes payload for creating a course.
type CreateCourseRequest struct {
	Code           string   `json:"code" validate:"required"`
	Name           string   `json:"name" validate:"required"`
	Year           int      `json:"year" validate:"required"`
	Semester       int      `json:"semester" validate:"required,min=1,max=2"`
	CourseType     string   `json:"course_type"`
	TargetStudents int      `json:"target_students" validate:"min=0"`
	LectureCount   int      `json:"lecture_count" validate:"min=0"`
	TutorialCount  int      `json:"tutorial_count" validate:"min=0"`
	EligibleYears  []string `json:"eligible_years"`
	Instructors    []string `json:"instructors"`
}

// UpdateCourseRequest mirrors the create payload for updates.
type UpdateCourseRequest = CreateCourseRequest

// CreateRoomRequest describes payload for creating a room.
type CreateRoomRequest struct {
	Code     string `json:"code" validate:"required"`
	Building string `json:"building"`
	RoomType string `json:"room_type"`
	Capacity int    `json:"capacity" validate:"min=0"`
}

// UpdateRoomRequest mirrors the create payload for updates.
type UpdateRoomRequest = CreateRoomRequest

// CreateInstructorRequest describes payload for creating an instructor.
type CreateInstructorRequest struct {
	Name   string `json:"name" validate:"required"`
	Email  string `json:"email" validate:"omitempty,email"`
	Status string `json:"status" validate:"omitempty,oneof=ACTIVE INACTIVE"`
}

// UpdateInstructorRequest mirrors the create payload for updates.
type UpdateInstructorRequest = CreateInstructorRequest

// ImportResult summarises a CSV bulk import.
type ImportResult struct {
	Imported int      `json:"imported"`
	Errors   []string `json:"errors,omitempty"`
}
