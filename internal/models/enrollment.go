package models

import "time"

// Enrollment is a course section taught by one professor.
type Enrollment struct {
	ID                   string    `db:"id" json:"id"`
	CourseID             string    `db:"course_id" json:"courseId"`
	ProfessorID          string    `db:"professor_id" json:"professorId"`
	Section              string    `db:"section" json:"section"`
	Headcount            int       `db:"headcount" json:"headcount"`
	Margin               int       `db:"margin" json:"margin"`
	RegistrationDeadline time.Time `db:"registration_deadline" json:"registrationDeadline"`
	CreatedAt            time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt            time.Time `db:"updated_at" json:"updatedAt"`
}

// RegistrationOpen reports whether today is on or before the registration deadline.
func (e Enrollment) RegistrationOpen(today time.Time) bool {
	return !DateOf(today).After(DateOf(e.RegistrationDeadline))
}

// RequiredSeats is the headcount, plus the margin while registration is still open.
func (e Enrollment) RequiredSeats(today time.Time) int {
	if e.RegistrationOpen(today) {
		return e.Headcount + e.Margin
	}
	return e.Headcount
}

// EnrollmentDetail joins the course onto an enrollment.
type EnrollmentDetail struct {
	Enrollment
	CourseCode  string `db:"course_code" json:"courseCode"`
	CourseName  string `db:"course_name" json:"courseName"`
	RequiresLab bool   `db:"requires_lab" json:"requiresLab"`
}

// EnrollmentFilter narrows enrollment listings.
type EnrollmentFilter struct {
	CourseID    string
	ProfessorID string
	Page        int
	PageSize    int
}
