package models

import (
	"errors"
	"time"
)

// RoomKind tags a room as a plain classroom or a computer lab.
type RoomKind string

const (
	RoomKindClassroom RoomKind = "CLASSROOM"
	RoomKindLab       RoomKind = "LAB"
)

// Valid reports whether k is a known room kind.
func (k RoomKind) Valid() bool { return k == RoomKindClassroom || k == RoomKindLab }

// Room is a bookable space. Labs carry a computer count; classrooms never do.
type Room struct {
	ID            int64     `db:"id" json:"id"`
	Name          string    `db:"name" json:"name"`
	Building      string    `db:"building" json:"building"`
	Capacity      int       `db:"capacity" json:"capacity"`
	HasProjector  bool      `db:"has_projector" json:"hasProjector"`
	HasTV         bool      `db:"has_tv" json:"hasTv"`
	Kind          RoomKind  `db:"kind" json:"kind"`
	ComputerCount *int      `db:"computer_count" json:"computerCount,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time `db:"updated_at" json:"updatedAt"`
}

// IsLab reports whether the room is a computer lab.
func (r Room) IsLab() bool { return r.Kind == RoomKindLab }

// Computers returns the lab's computer count, zero for classrooms.
func (r Room) Computers() int {
	if r.ComputerCount == nil {
		return 0
	}
	return *r.ComputerCount
}

// Validate enforces the room variant rules.
func (r Room) Validate() error {
	switch {
	case r.ID <= 0:
		return errors.New("room number must be positive")
	case r.Capacity <= 0:
		return errors.New("capacity must be positive")
	case !r.Kind.Valid():
		return errors.New("kind must be CLASSROOM or LAB")
	case r.IsLab() && r.ComputerCount == nil:
		return errors.New("labs require a computer count")
	case r.IsLab() && *r.ComputerCount < 0:
		return errors.New("computer count cannot be negative")
	case !r.IsLab() && r.ComputerCount != nil:
		return errors.New("only labs have a computer count")
	}
	return nil
}

// RoomFilter narrows room listings.
type RoomFilter struct {
	Building string
	Kind     *RoomKind
	Page     int
	PageSize int
}
