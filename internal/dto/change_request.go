package dto

import "github.com/noah-isme/roomsched-api/internal/models"

// CreateChangeRequest asks to move a booking to another room.
type CreateChangeRequest struct {
	BookingID    string                   `json:"bookingId" validate:"required"`
	TargetRoomID int64                    `json:"targetRoomId" validate:"required,gt=0"`
	Kind         models.ChangeRequestKind `json:"kind" validate:"required,oneof=TEMPORARY PERMANENT"`
	StartDate    string                   `json:"startDate" validate:"required"`
	EndDate      string                   `json:"endDate" validate:"required"`
	DayBlocks    models.DayBlockSet       `json:"dayBlocks"`
	Comments     string                   `json:"comments" validate:"max=1000"`
}

// ReviewChangeRequest captures the reviewer decision and optional note.
type ReviewChangeRequest struct {
	Status models.ChangeRequestStatus `json:"status" validate:"required,oneof=APPROVED REJECTED"`
	Note   string                     `json:"note" validate:"max=1000"`
}

// ChangeRequestQuery mirrors supported listing filters.
type ChangeRequestQuery struct {
	Status       []models.ChangeRequestStatus
	BookingID    string
	TargetRoomID *int64
	Limit        int
	Offset       int
}
