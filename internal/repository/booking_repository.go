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
)

const bookingColumns = `b.id, b.room_id, b.enrollment_id, b.start_date, b.end_date, b.day_blocks, b.created_by, b.created_at, b.updated_at`

// BookingRepository persists confirmed room bookings.
type BookingRepository struct {
	db *sqlx.DB
}

// NewBookingRepository constructs the repository.
func NewBookingRepository(db *sqlx.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// ListOverlapping returns bookings whose date range touches [start, end].
// Day-block matching is left to the caller.
func (r *BookingRepository) ListOverlapping(ctx context.Context, start, end time.Time) ([]models.Booking, error) {
	query := fmt.Sprintf(`SELECT %s FROM bookings b WHERE b.start_date <= $2 AND b.end_date >= $1 ORDER BY b.room_id, b.start_date`, bookingColumns)
	var bookings []models.Booking
	if err := r.db.SelectContext(ctx, &bookings, query, start, end); err != nil {
		return nil, fmt.Errorf("list overlapping bookings: %w", err)
	}
	return bookings, nil
}

// List returns a page of bookings with course and professor details.
func (r *BookingRepository) List(ctx context.Context, filter models.BookingFilter) ([]models.BookingDetail, int, error) {
	where, args := bookingConditions(filter)
	page, size := normalisePage(filter.Page, filter.PageSize)

	listQuery := fmt.Sprintf(`SELECT %s, c.code AS course_code, c.name AS course_name, e.section, e.professor_id, u.full_name AS professor_name
	FROM bookings b
	JOIN enrollments e ON e.id = b.enrollment_id
	JOIN courses c ON c.id = e.course_id
	JOIN users u ON u.id = e.professor_id%s
	ORDER BY b.start_date, b.room_id LIMIT %d OFFSET %d`, bookingColumns, where, size, (page-1)*size)

	var bookings []models.BookingDetail
	if err := r.db.SelectContext(ctx, &bookings, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list bookings: %w", err)
	}

	countQuery := `SELECT COUNT(*) FROM bookings b JOIN enrollments e ON e.id = b.enrollment_id` + where
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count bookings: %w", err)
	}
	return bookings, total, nil
}

func bookingConditions(filter models.BookingFilter) (string, []interface{}) {
	var (
		conditions []string
		args       []interface{}
	)
	if filter.RoomID != nil {
		args = append(args, *filter.RoomID)
		conditions = append(conditions, fmt.Sprintf("b.room_id = $%d", len(args)))
	}
	if filter.EnrollmentID != "" {
		args = append(args, filter.EnrollmentID)
		conditions = append(conditions, fmt.Sprintf("b.enrollment_id = $%d", len(args)))
	}
	if filter.ProfessorID != "" {
		args = append(args, filter.ProfessorID)
		conditions = append(conditions, fmt.Sprintf("e.professor_id = $%d", len(args)))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		conditions = append(conditions, fmt.Sprintf("b.end_date >= $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		conditions = append(conditions, fmt.Sprintf("b.start_date <= $%d", len(args)))
	}
	if len(conditions) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

// FindByID returns a booking.
func (r *BookingRepository) FindByID(ctx context.Context, id string) (*models.Booking, error) {
	query := fmt.Sprintf(`SELECT %s FROM bookings b WHERE b.id = $1`, bookingColumns)
	var booking models.Booking
	if err := r.db.GetContext(ctx, &booking, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find booking: %w", err)
	}
	return &booking, nil
}

// CountByRoom returns how many bookings reference a room.
func (r *BookingRepository) CountByRoom(ctx context.Context, roomID int64) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM bookings WHERE room_id = $1`, roomID); err != nil {
		return 0, fmt.Errorf("count room bookings: %w", err)
	}
	return total, nil
}

// Create inserts a booking.
func (r *BookingRepository) Create(ctx context.Context, booking *models.Booking) error {
	return insertBooking(ctx, r.db, booking)
}

// Update rewrites the booking's room, period and day blocks.
func (r *BookingRepository) Update(ctx context.Context, booking *models.Booking) error {
	return updateBooking(ctx, r.db, booking)
}

// Delete removes a booking.
func (r *BookingRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM bookings WHERE id = $1`, id)
	if err != nil {
		return constraintError("delete booking", err)
	}
	return expectAffected(res, "delete booking")
}

func insertBooking(ctx context.Context, ext sqlx.ExtContext, booking *models.Booking) error {
	if booking.ID == "" {
		booking.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	booking.CreatedAt = now
	booking.UpdatedAt = now
	const query = `INSERT INTO bookings (id, room_id, enrollment_id, start_date, end_date, day_blocks, created_by, created_at, updated_at)
	VALUES (:id, :room_id, :enrollment_id, :start_date, :end_date, :day_blocks, :created_by, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, ext, query, booking); err != nil {
		return fmt.Errorf("create booking: %w", err)
	}
	return nil
}

func updateBooking(ctx context.Context, ext sqlx.ExtContext, booking *models.Booking) error {
	booking.UpdatedAt = time.Now().UTC()
	const query = `UPDATE bookings SET room_id = :room_id, enrollment_id = :enrollment_id, start_date = :start_date, end_date = :end_date,
	day_blocks = :day_blocks, updated_at = :updated_at WHERE id = :id`
	res, err := sqlx.NamedExecContext(ctx, ext, query, booking)
	if err != nil {
		return fmt.Errorf("update booking: %w", err)
	}
	return expectAffected(res, "update booking")
}
