package dto

import "github.com/noah-isme/roomsched-api/internal/models"

// AvailabilityQuery mirrors GET /rooms/available query parameters.
type AvailabilityQuery struct {
	Start        string           `form:"start" json:"start" validate:"required"`
	End          string           `form:"end" json:"end" validate:"required"`
	Slots        string           `form:"slots" json:"slots" validate:"required"`
	MinCapacity  *int             `form:"minCapacity" json:"minCapacity,omitempty" validate:"omitempty,min=1"`
	Projector    *bool            `form:"projector" json:"projector,omitempty"`
	TV           *bool            `form:"tv" json:"tv,omitempty"`
	MinComputers *int             `form:"minComputers" json:"minComputers,omitempty" validate:"omitempty,min=0"`
	Kind         *models.RoomKind `form:"kind" json:"kind,omitempty" validate:"omitempty,oneof=CLASSROOM LAB"`
}

// AvailabilityResponse lists rooms free for the requested period.
type AvailabilityResponse struct {
	Start     string             `json:"start"`
	End       string             `json:"end"`
	DayBlocks models.DayBlockSet `json:"dayBlocks"`
	Rooms     []models.Room      `json:"rooms"`
	// Cached is set when the answer came from the availability cache.
	Cached bool `json:"-"`
}

// TimeBlockResponse describes one entry of the block calendar.
type TimeBlockResponse struct {
	Code  models.TimeBlock `json:"code"`
	Label string           `json:"label"`
	Start string           `json:"start"`
	End   string           `json:"end"`
}
