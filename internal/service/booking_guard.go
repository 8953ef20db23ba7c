package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/roomsched-api/internal/availability"
	"github.com/noah-isme/roomsched-api/internal/models"
	appErrors "github.com/noah-isme/roomsched-api/pkg/errors"
)

type guardRoomStore interface {
	FindByID(ctx context.Context, id int64) (*models.Room, error)
}

type guardEnrollmentStore interface {
	FindDetailByID(ctx context.Context, id string) (*models.EnrollmentDetail, error)
}

type guardBookingStore interface {
	ListOverlapping(ctx context.Context, start, end time.Time) ([]models.Booking, error)
}

type guardRequestStore interface {
	ListPendingForRoom(ctx context.Context, roomID int64, start, end time.Time) ([]models.ChangeRequest, error)
}

// GuardRequest is a candidate reservation of a room for one enrollment.
type GuardRequest struct {
	RoomID       int64
	EnrollmentID string
	Start        time.Time
	End          time.Time
	DayBlocks    models.DayBlockSet
	// ExcludeBookingIDs are ignored by the availability check.
	ExcludeBookingIDs []string
	// ExcludeRequestID is ignored by the pending request check.
	ExcludeRequestID string
}

// GuardResult carries what the checks loaded so callers need not reload it.
type GuardResult struct {
	Room          *models.Room
	Enrollment    *models.EnrollmentDetail
	RequiredSeats int
}

// BookingGuard runs the conflict checks shared by bookings and change requests.
// It never writes.
type BookingGuard struct {
	rooms       guardRoomStore
	enrollments guardEnrollmentStore
	bookings    guardBookingStore
	requests    guardRequestStore
	location    *time.Location
	now         func() time.Time
	metrics     *MetricsService
	logger      *zap.Logger
}

// NewBookingGuard builds a guard. location decides which calendar day is "today".
func NewBookingGuard(rooms guardRoomStore, enrollments guardEnrollmentStore, bookings guardBookingStore, requests guardRequestStore, location *time.Location, metrics *MetricsService, logger *zap.Logger) *BookingGuard {
	if location == nil {
		location = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BookingGuard{
		rooms:       rooms,
		enrollments: enrollments,
		bookings:    bookings,
		requests:    requests,
		location:    location,
		now:         time.Now,
		metrics:     metrics,
		logger:      logger,
	}
}

// Check runs the checks in order and returns the first failure.
func (g *BookingGuard) Check(ctx context.Context, req GuardRequest) (*GuardResult, error) {
	if err := availability.ValidatePeriod(req.Start, req.End, req.DayBlocks); err != nil {
		return nil, validationError(err, err.Error())
	}

	room, err := g.rooms.FindByID(ctx, req.RoomID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, g.reject(req, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("room %d not found", req.RoomID)))
		}
		return nil, internalError(err, "failed to load room")
	}

	enrollment, err := g.enrollments.FindDetailByID(ctx, req.EnrollmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, g.reject(req, appErrors.Clone(appErrors.ErrNotFound, "enrollment or course not found"))
		}
		return nil, internalError(err, "failed to load enrollment")
	}

	query := availability.Query{
		Start:             req.Start,
		End:               req.End,
		DayBlocks:         req.DayBlocks,
		ExcludeBookingIDs: req.ExcludeBookingIDs,
	}
	bookings, err := g.bookings.ListOverlapping(ctx, req.Start, req.End)
	if err != nil {
		return nil, internalError(err, "failed to load bookings")
	}
	if !availability.IsRoomAvailable(room.ID, []models.Room{*room}, bookings, query) {
		return nil, g.reject(req, appErrors.Clone(appErrors.ErrRoomUnavailable,
			fmt.Sprintf("room %d is already booked for part of %s", room.ID, req.DayBlocks)))
	}

	today := g.now().In(g.location)
	required := enrollment.RequiredSeats(today)
	if room.Capacity < required {
		return nil, g.reject(req, appErrors.Clone(appErrors.ErrInsufficientCapacity,
			fmt.Sprintf("room %d seats %d but %s-%s needs %d", room.ID, room.Capacity, enrollment.CourseCode, enrollment.Section, required)))
	}

	if enrollment.RequiresLab && !room.IsLab() {
		return nil, g.reject(req, appErrors.Clone(appErrors.ErrLabRequired,
			fmt.Sprintf("course %s requires a laboratory", enrollment.CourseCode)))
	}

	pending, err := g.requests.ListPendingForRoom(ctx, room.ID, req.Start, req.End)
	if err != nil {
		return nil, internalError(err, "failed to load pending change requests")
	}
	if competing := availability.CompetingRequests(pending, room.ID, query, req.ExcludeRequestID); len(competing) > 0 {
		return nil, g.reject(req, appErrors.Clone(appErrors.ErrPendingRequestConflict,
			fmt.Sprintf("change request %s is already pending for room %d", competing[0].ID, room.ID)))
	}

	return &GuardResult{Room: room, Enrollment: enrollment, RequiredSeats: required}, nil
}

func (g *BookingGuard) reject(req GuardRequest, err *appErrors.Error) error {
	g.metrics.RecordGuardRejection(err.Code)
	g.logger.Info("booking rejected",
		zap.String("code", err.Code),
		zap.Int64("room_id", req.RoomID),
		zap.String("enrollment_id", req.EnrollmentID),
		zap.String("reason", err.Message),
	)
	return err
}
