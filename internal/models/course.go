package models

import "time"

// Course is a subject offered by the institution.
type Course struct {
	ID          string    `db:"id" json:"id"`
	Code        string    `db:"code" json:"code"`
	Name        string    `db:"name" json:"name"`
	RequiresLab bool      `db:"requires_lab" json:"requiresLab"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}

// CourseFilter narrows course listings.
type CourseFilter struct {
	Search   string
	Page     int
	PageSize int
}
