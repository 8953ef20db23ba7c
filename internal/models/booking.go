package models

import "time"

// Booking is a confirmed reservation of a room for a date range and set of day blocks.
type Booking struct {
	ID           string      `db:"id" json:"id"`
	RoomID       int64       `db:"room_id" json:"roomId"`
	EnrollmentID string      `db:"enrollment_id" json:"enrollmentId"`
	StartDate    time.Time   `db:"start_date" json:"startDate"`
	EndDate      time.Time   `db:"end_date" json:"endDate"`
	DayBlocks    DayBlockSet `db:"day_blocks" json:"dayBlocks"`
	CreatedBy    string      `db:"created_by" json:"createdBy"`
	CreatedAt    time.Time   `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time   `db:"updated_at" json:"updatedAt"`
}

// BookingFilter narrows booking listings.
type BookingFilter struct {
	RoomID       *int64
	EnrollmentID string
	ProfessorID  string
	From         *time.Time
	To           *time.Time
	Page         int
	PageSize     int
}

// BookingDetail joins course and professor data onto a booking for listings and exports.
type BookingDetail struct {
	Booking
	CourseCode    string `db:"course_code" json:"courseCode"`
	CourseName    string `db:"course_name" json:"courseName"`
	Section       string `db:"section" json:"section"`
	ProfessorID   string `db:"professor_id" json:"professorId"`
	ProfessorName string `db:"professor_name" json:"professorName"`
}
