package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/roomsched-api/internal/models"
	"github.com/noah-isme/roomsched-api/pkg/database"
)

const changeRequestColumns = `id, requested_by, booking_id, target_room_id, kind, start_date, end_date, day_blocks, status, comments,
       reviewed_by, reviewed_at, review_note, result_booking_id, requested_at`

// ChangeRequestRepository persists room change requests and applies approved ones.
type ChangeRequestRepository struct {
	db *sqlx.DB
}

// NewChangeRequestRepository constructs the repository.
func NewChangeRequestRepository(db *sqlx.DB) *ChangeRequestRepository {
	return &ChangeRequestRepository{db: db}
}

// Create inserts a new request, defaulting to PENDING.
func (r *ChangeRequestRepository) Create(ctx context.Context, cr *models.ChangeRequest) error {
	if cr.ID == "" {
		cr.ID = uuid.NewString()
	}
	if cr.Status == "" {
		cr.Status = models.ChangeRequestPending
	}
	if cr.RequestedAt.IsZero() {
		cr.RequestedAt = time.Now().UTC()
	}
	const query = `INSERT INTO change_requests
	(id, requested_by, booking_id, target_room_id, kind, start_date, end_date, day_blocks, status, comments, requested_at)
	VALUES (:id, :requested_by, :booking_id, :target_room_id, :kind, :start_date, :end_date, :day_blocks, :status, :comments, :requested_at)`
	if _, err := r.db.NamedExecContext(ctx, query, cr); err != nil {
		return fmt.Errorf("create change request: %w", err)
	}
	return nil
}

// GetByID fetches a change request.
func (r *ChangeRequestRepository) GetByID(ctx context.Context, id string) (*models.ChangeRequest, error) {
	query := fmt.Sprintf(`SELECT %s FROM change_requests WHERE id = $1`, changeRequestColumns)
	var cr models.ChangeRequest
	if err := r.db.GetContext(ctx, &cr, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("get change request: %w", err)
	}
	return &cr, nil
}

// List returns requests matching the filter, newest first.
func (r *ChangeRequestRepository) List(ctx context.Context, filter models.ChangeRequestFilter) ([]models.ChangeRequest, error) {
	builder := strings.Builder{}
	args := make([]interface{}, 0, 6)
	builder.WriteString(fmt.Sprintf(`SELECT %s FROM change_requests`, changeRequestColumns))

	conditions := make([]string, 0, 4)
	if len(filter.Status) > 0 {
		placeholders := make([]string, len(filter.Status))
		for i, status := range filter.Status {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		conditions = append(conditions, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.RequestedBy != "" {
		args = append(args, filter.RequestedBy)
		conditions = append(conditions, fmt.Sprintf("requested_by = $%d", len(args)))
	}
	if filter.TargetRoomID != nil {
		args = append(args, *filter.TargetRoomID)
		conditions = append(conditions, fmt.Sprintf("target_room_id = $%d", len(args)))
	}
	if filter.BookingID != "" {
		args = append(args, filter.BookingID)
		conditions = append(conditions, fmt.Sprintf("booking_id = $%d", len(args)))
	}
	if len(conditions) > 0 {
		builder.WriteString(" WHERE ")
		builder.WriteString(strings.Join(conditions, " AND "))
	}
	builder.WriteString(" ORDER BY requested_at DESC")

	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	builder.WriteString(fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset))

	var requests []models.ChangeRequest
	if err := r.db.SelectContext(ctx, &requests, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("list change requests: %w", err)
	}
	return requests, nil
}

// ListPendingForRoom returns PENDING requests for a room whose date range touches [start, end].
func (r *ChangeRequestRepository) ListPendingForRoom(ctx context.Context, roomID int64, start, end time.Time) ([]models.ChangeRequest, error) {
	query := fmt.Sprintf(`SELECT %s FROM change_requests
	WHERE target_room_id = $1 AND status = '%s' AND start_date <= $3 AND end_date >= $2`,
		changeRequestColumns, models.ChangeRequestPending)
	var requests []models.ChangeRequest
	if err := r.db.SelectContext(ctx, &requests, query, roomID, start, end); err != nil {
		return nil, fmt.Errorf("list pending change requests: %w", err)
	}
	return requests, nil
}

// ReviewParams carries the reviewer's decision.
type ReviewParams struct {
	ID         string
	Status     models.ChangeRequestStatus
	ReviewedBy string
	ReviewedAt time.Time
	Note       *string
}

// Reject marks a pending request as rejected. sql.ErrNoRows means it was no longer pending.
func (r *ChangeRequestRepository) Reject(ctx context.Context, params ReviewParams) error {
	params.Status = models.ChangeRequestRejected
	return markReviewed(ctx, r.db, params, nil)
}

// Approve applies the request and marks it approved in one transaction.
// Temporary requests insert booking as a new row; permanent ones overwrite
// the original booking with the same id.
func (r *ChangeRequestRepository) Approve(ctx context.Context, params ReviewParams, kind models.ChangeRequestKind, booking *models.Booking) error {
	params.Status = models.ChangeRequestApproved
	return database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var err error
		if kind == models.ChangeRequestTemporary {
			err = insertBooking(ctx, tx, booking)
		} else {
			err = updateBooking(ctx, tx, booking)
		}
		if err != nil {
			return err
		}
		return markReviewed(ctx, tx, params, &booking.ID)
	})
}

func markReviewed(ctx context.Context, ext sqlx.ExtContext, params ReviewParams, resultBookingID *string) error {
	query := fmt.Sprintf(`UPDATE change_requests SET status = :status, reviewed_by = :reviewed_by, reviewed_at = :reviewed_at,
	review_note = :review_note, result_booking_id = :result_booking_id WHERE id = :id AND status = '%s'`, models.ChangeRequestPending)
	res, err := sqlx.NamedExecContext(ctx, ext, query, map[string]interface{}{
		"id":                params.ID,
		"status":            params.Status,
		"reviewed_by":       params.ReviewedBy,
		"reviewed_at":       params.ReviewedAt,
		"review_note":       params.Note,
		"result_booking_id": resultBookingID,
	})
	if err != nil {
		return fmt.Errorf("update change request status: %w", err)
	}
	return expectAffected(res, "update change request status")
}
