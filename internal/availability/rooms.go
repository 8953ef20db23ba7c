package availability

import (
	"time"

	"github.com/noah-isme/roomsched-api/internal/models"
)

// Query describes a candidate reservation.
type Query struct {
	Start     time.Time
	End       time.Time
	DayBlocks models.DayBlockSet
	// ExcludeBookingIDs are ignored when looking for conflicts, e.g. the
	// booking a permanent change is about to move.
	ExcludeBookingIDs []string
}

// Conflicts reports whether b occupies any part of the queried period.
func (q Query) Conflicts(b models.Booking) bool {
	for _, id := range q.ExcludeBookingIDs {
		if id == b.ID {
			return false
		}
	}
	return DateRangesOverlap(b.StartDate, b.EndDate, q.Start, q.End) &&
		DayBlocksIntersect(b.DayBlocks, q.DayBlocks)
}

// ConflictingRoomIDs returns the ids of rooms with a booking that clashes with q.
func ConflictingRoomIDs(bookings []models.Booking, q Query) map[int64]struct{} {
	busy := make(map[int64]struct{})
	for _, b := range bookings {
		if _, seen := busy[b.RoomID]; seen {
			continue
		}
		if q.Conflicts(b) {
			busy[b.RoomID] = struct{}{}
		}
	}
	return busy
}

// AvailableRooms returns the rooms with no booking clashing with q, in input order.
func AvailableRooms(rooms []models.Room, bookings []models.Booking, q Query) []models.Room {
	busy := ConflictingRoomIDs(bookings, q)
	out := make([]models.Room, 0, len(rooms))
	for _, r := range rooms {
		if _, taken := busy[r.ID]; !taken {
			out = append(out, r)
		}
	}
	return out
}

// IsRoomAvailable reports whether roomID is among the available rooms for q.
func IsRoomAvailable(roomID int64, rooms []models.Room, bookings []models.Booking, q Query) bool {
	for _, r := range AvailableRooms(rooms, bookings, q) {
		if r.ID == roomID {
			return true
		}
	}
	return false
}

// CompetingRequests returns the pending change requests, other than excludeID,
// that target roomID over an overlapping period with intersecting day blocks.
func CompetingRequests(requests []models.ChangeRequest, roomID int64, q Query, excludeID string) []models.ChangeRequest {
	var out []models.ChangeRequest
	for _, cr := range requests {
		if cr.ID == excludeID || !cr.IsPending() || cr.TargetRoomID != roomID {
			continue
		}
		if DateRangesOverlap(cr.StartDate, cr.EndDate, q.Start, q.End) && DayBlocksIntersect(cr.DayBlocks, q.DayBlocks) {
			out = append(out, cr)
		}
	}
	return out
}
