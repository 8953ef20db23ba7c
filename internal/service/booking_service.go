package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/roomsched-api/internal/dto"
	"github.com/noah-isme/roomsched-api/internal/models"
	appErrors "github.com/noah-isme/roomsched-api/pkg/errors"
)

type bookingRepository interface {
	List(ctx context.Context, filter models.BookingFilter) ([]models.BookingDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.Booking, error)
	Create(ctx context.Context, booking *models.Booking) error
	Update(ctx context.Context, booking *models.Booking) error
	Delete(ctx context.Context, id string) error
}

type bookingChecker interface {
	Check(ctx context.Context, req GuardRequest) (*GuardResult, error)
}

// BookingService creates and maintains room bookings. Every write that
// places a booking goes through the guard first.
type BookingService struct {
	repo        bookingRepository
	enrollments guardEnrollmentStore
	guard       bookingChecker
	cache       availabilityInvalidator
	audit       auditLogger
	logger      *zap.Logger
}

// NewBookingService constructs BookingService.
func NewBookingService(repo bookingRepository, enrollments guardEnrollmentStore, guard bookingChecker, cache availabilityInvalidator, audit auditLogger, logger *zap.Logger) *BookingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cache == nil {
		cache = noopInvalidator{}
	}
	return &BookingService{repo: repo, enrollments: enrollments, guard: guard, cache: cache, audit: audit, logger: logger}
}

// List returns bookings with course and professor details.
func (s *BookingService) List(ctx context.Context, q dto.BookingQuery, actor *models.JWTClaims) ([]models.BookingDetail, *models.Pagination, error) {
	if actor == nil {
		return nil, nil, appErrors.ErrUnauthorized
	}
	filter := models.BookingFilter{RoomID: q.RoomID, EnrollmentID: q.EnrollmentID, Page: q.Page, PageSize: q.PageSize}
	if !actor.IsAdmin() {
		filter.ProfessorID = actor.UserID
	}
	if q.From != "" {
		from, err := models.ParseDate(strings.TrimSpace(q.From))
		if err != nil {
			return nil, nil, validationError(err, "from must use YYYY-MM-DD")
		}
		filter.From = &from
	}
	if q.To != "" {
		to, err := models.ParseDate(strings.TrimSpace(q.To))
		if err != nil {
			return nil, nil, validationError(err, "to must use YYYY-MM-DD")
		}
		filter.To = &to
	}
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, internalError(err, "failed to list bookings")
	}
	return items, paginate(q.Page, q.PageSize, total), nil
}

// Get returns a booking visible to actor.
func (s *BookingService) Get(ctx context.Context, id string, actor *models.JWTClaims) (*models.Booking, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "booking", "load")
	}
	if err := s.authorize(ctx, booking, actor); err != nil {
		return nil, err
	}
	return booking, nil
}

// Create books a room after the guard accepts it.
func (s *BookingService) Create(ctx context.Context, req dto.BookingRequest, actor *models.JWTClaims) (*models.Booking, error) {
	if !actor.IsAdmin() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only administrators create bookings")
	}
	query, err := parsePeriod(req.StartDate, req.EndDate, req.DayBlocks)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.EnrollmentID) == "" || req.RoomID <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "roomId and enrollmentId are required")
	}
	if _, err := s.guard.Check(ctx, GuardRequest{
		RoomID:       req.RoomID,
		EnrollmentID: req.EnrollmentID,
		Start:        query.Start,
		End:          query.End,
		DayBlocks:    query.DayBlocks,
	}); err != nil {
		return nil, err
	}

	booking := &models.Booking{
		RoomID:       req.RoomID,
		EnrollmentID: req.EnrollmentID,
		StartDate:    query.Start,
		EndDate:      query.End,
		DayBlocks:    query.DayBlocks,
		CreatedBy:    actor.UserID,
	}
	if err := s.repo.Create(ctx, booking); err != nil {
		return nil, storeError(err, "booking", "create")
	}
	s.cache.Invalidate(ctx)
	emitAudit(ctx, s.audit, s.logger, actor, models.AuditActionBookingCreate, "bookings", booking.ID, nil, booking)
	s.logger.Info("booking created",
		zap.String("booking_id", booking.ID),
		zap.Int64("room_id", booking.RoomID),
		zap.String("day_blocks", booking.DayBlocks.String()),
	)
	return booking, nil
}

// Update moves or reshapes a booking. The booking itself is ignored by the availability check.
func (s *BookingService) Update(ctx context.Context, id string, req dto.BookingRequest, actor *models.JWTClaims) (*models.Booking, error) {
	if !actor.IsAdmin() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only administrators update bookings")
	}
	query, err := parsePeriod(req.StartDate, req.EndDate, req.DayBlocks)
	if err != nil {
		return nil, err
	}
	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "booking", "load")
	}
	before := *booking
	if req.EnrollmentID != "" {
		booking.EnrollmentID = req.EnrollmentID
	}
	if req.RoomID > 0 {
		booking.RoomID = req.RoomID
	}
	if _, err := s.guard.Check(ctx, GuardRequest{
		RoomID:            booking.RoomID,
		EnrollmentID:      booking.EnrollmentID,
		Start:             query.Start,
		End:               query.End,
		DayBlocks:         query.DayBlocks,
		ExcludeBookingIDs: []string{booking.ID},
	}); err != nil {
		return nil, err
	}
	booking.StartDate = query.Start
	booking.EndDate = query.End
	booking.DayBlocks = query.DayBlocks
	if err := s.repo.Update(ctx, booking); err != nil {
		return nil, storeError(err, "booking", "update")
	}
	s.cache.Invalidate(ctx)
	emitAudit(ctx, s.audit, s.logger, actor, models.AuditActionBookingUpdate, "bookings", booking.ID, before, booking)
	return booking, nil
}

// Delete cancels a booking.
func (s *BookingService) Delete(ctx context.Context, id string, actor *models.JWTClaims) error {
	if !actor.IsAdmin() {
		return appErrors.Clone(appErrors.ErrForbidden, "only administrators delete bookings")
	}
	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return storeError(err, "booking", "load")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return storeError(err, "booking", "delete")
	}
	s.cache.Invalidate(ctx)
	emitAudit(ctx, s.audit, s.logger, actor, models.AuditActionBookingDelete, "bookings", id, booking, nil)
	return nil
}

// authorize lets admins see everything and professors see bookings of their sections.
func (s *BookingService) authorize(ctx context.Context, booking *models.Booking, actor *models.JWTClaims) error {
	if actor.IsAdmin() {
		return nil
	}
	enrollment, err := s.enrollments.FindDetailByID(ctx, booking.EnrollmentID)
	if err != nil {
		return storeError(err, "enrollment", "load")
	}
	if enrollment.ProfessorID != actor.UserID {
		return appErrors.Clone(appErrors.ErrForbidden, "booking belongs to another professor")
	}
	return nil
}
