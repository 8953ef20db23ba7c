package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEnrollmentRequiredSeats(t *testing.T) {
	e := Enrollment{Headcount: 25, Margin: 5, RegistrationDeadline: time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)}

	assert.Equal(t, 30, e.RequiredSeats(time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)))
	assert.Equal(t, 30, e.RequiredSeats(time.Date(2025, 5, 1, 23, 59, 0, 0, time.UTC)))
	assert.Equal(t, 25, e.RequiredSeats(time.Date(2025, 5, 2, 0, 0, 0, 0, time.UTC)))
}

func TestRoomValidate(t *testing.T) {
	computers := 20
	negative := -1

	assert.NoError(t, Room{ID: 101, Capacity: 30, Kind: RoomKindClassroom}.Validate())
	assert.NoError(t, Room{ID: 301, Capacity: 20, Kind: RoomKindLab, ComputerCount: &computers}.Validate())
	assert.Error(t, Room{ID: 0, Capacity: 30, Kind: RoomKindClassroom}.Validate())
	assert.Error(t, Room{ID: 101, Capacity: 0, Kind: RoomKindClassroom}.Validate())
	assert.Error(t, Room{ID: 101, Capacity: 30, Kind: "HALL"}.Validate())
	assert.Error(t, Room{ID: 301, Capacity: 20, Kind: RoomKindLab}.Validate())
	assert.Error(t, Room{ID: 301, Capacity: 20, Kind: RoomKindLab, ComputerCount: &negative}.Validate())
	assert.Error(t, Room{ID: 101, Capacity: 30, Kind: RoomKindClassroom, ComputerCount: &computers}.Validate())
}
