package dto

// CourseRequest is the payload for creating or updating a course.
type CourseRequest struct {
	Code        string `json:"code" validate:"required,max=32"`
	Name        string `json:"name" validate:"required,max=200"`
	RequiresLab bool   `json:"requiresLab"`
}

// EnrollmentRequest is the payload for creating or updating a course section.
type EnrollmentRequest struct {
	CourseID             string `json:"courseId" validate:"required"`
	ProfessorID          string `json:"professorId" validate:"required"`
	Section              string `json:"section" validate:"required,max=32"`
	Headcount            int    `json:"headcount" validate:"min=0"`
	Margin               int    `json:"margin" validate:"min=0"`
	RegistrationDeadline string `json:"registrationDeadline" validate:"required"`
}
