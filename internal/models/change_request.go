package models

import "time"

// ChangeRequestKind distinguishes one-off moves from permanent relocations.
type ChangeRequestKind string

const (
	ChangeRequestTemporary ChangeRequestKind = "TEMPORARY"
	ChangeRequestPermanent ChangeRequestKind = "PERMANENT"
)

// ChangeRequestStatus captures the review workflow. APPROVED and REJECTED are terminal.
type ChangeRequestStatus string

const (
	ChangeRequestPending  ChangeRequestStatus = "PENDING"
	ChangeRequestApproved ChangeRequestStatus = "APPROVED"
	ChangeRequestRejected ChangeRequestStatus = "REJECTED"
)

// ChangeRequest asks to move a booking to another room.
type ChangeRequest struct {
	ID              string              `db:"id" json:"id"`
	RequestedBy     string              `db:"requested_by" json:"requestedBy"`
	BookingID       string              `db:"booking_id" json:"bookingId"`
	TargetRoomID    int64               `db:"target_room_id" json:"targetRoomId"`
	Kind            ChangeRequestKind   `db:"kind" json:"kind"`
	StartDate       time.Time           `db:"start_date" json:"startDate"`
	EndDate         time.Time           `db:"end_date" json:"endDate"`
	DayBlocks       DayBlockSet         `db:"day_blocks" json:"dayBlocks"`
	Status          ChangeRequestStatus `db:"status" json:"status"`
	Comments        string              `db:"comments" json:"comments"`
	ReviewedBy      *string             `db:"reviewed_by" json:"reviewedBy,omitempty"`
	ReviewedAt      *time.Time          `db:"reviewed_at" json:"reviewedAt,omitempty"`
	ReviewNote      *string             `db:"review_note" json:"reviewNote,omitempty"`
	ResultBookingID *string             `db:"result_booking_id" json:"resultBookingId,omitempty"`
	RequestedAt     time.Time           `db:"requested_at" json:"requestedAt"`
}

// IsPending reports whether the request is still awaiting review.
func (r ChangeRequest) IsPending() bool { return r.Status == ChangeRequestPending }

// ChangeRequestFilter constrains listing queries.
type ChangeRequestFilter struct {
	Status       []ChangeRequestStatus
	RequestedBy  string
	TargetRoomID *int64
	BookingID    string
	Limit        int
	Offset       int
}
