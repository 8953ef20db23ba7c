package dto

import "github.com/noah-isme/roomsched-api/internal/models"

// BookingRequest creates or replaces a booking. Dates use YYYY-MM-DD.
type BookingRequest struct {
	RoomID       int64              `json:"roomId" validate:"required,gt=0"`
	EnrollmentID string             `json:"enrollmentId" validate:"required"`
	StartDate    string             `json:"startDate" validate:"required"`
	EndDate      string             `json:"endDate" validate:"required"`
	DayBlocks    models.DayBlockSet `json:"dayBlocks"`
}

// BookingQuery captures listing filters.
type BookingQuery struct {
	RoomID       *int64 `form:"roomId"`
	EnrollmentID string `form:"enrollmentId"`
	From         string `form:"from"`
	To           string `form:"to"`
	Page         int    `form:"page"`
	PageSize     int    `form:"pageSize"`
}
