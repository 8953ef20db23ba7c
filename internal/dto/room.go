package dto

import "github.com/noah-isme/roomsched-api/internal/models"

// RoomRequest is the payload for creating or replacing a room.
type RoomRequest struct {
	ID            int64           `json:"id" validate:"required,gt=0"`
	Name          string          `json:"name" validate:"required,max=120"`
	Building      string          `json:"building" validate:"required,max=120"`
	Capacity      int             `json:"capacity" validate:"required,gt=0"`
	HasProjector  bool            `json:"hasProjector"`
	HasTV         bool            `json:"hasTv"`
	Kind          models.RoomKind `json:"kind" validate:"required,oneof=CLASSROOM LAB"`
	ComputerCount *int            `json:"computerCount,omitempty" validate:"omitempty,min=0"`
}

// RoomQuery captures listing filters.
type RoomQuery struct {
	Building     string           `form:"building"`
	Kind         *models.RoomKind `form:"kind" validate:"omitempty,oneof=CLASSROOM LAB"`
	MinCapacity  *int             `form:"minCapacity" validate:"omitempty,min=1"`
	Projector    *bool            `form:"projector"`
	TV           *bool            `form:"tv"`
	MinComputers *int             `form:"minComputers" validate:"omitempty,min=0"`
	Page         int              `form:"page"`
	PageSize     int              `form:"pageSize"`
}
