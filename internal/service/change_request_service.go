package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/roomsched-api/internal/dto"
	"github.com/noah-isme/roomsched-api/internal/models"
	"github.com/noah-isme/roomsched-api/internal/repository"
	appErrors "github.com/noah-isme/roomsched-api/pkg/errors"
)

type changeRequestStore interface {
	Create(ctx context.Context, cr *models.ChangeRequest) error
	GetByID(ctx context.Context, id string) (*models.ChangeRequest, error)
	List(ctx context.Context, filter models.ChangeRequestFilter) ([]models.ChangeRequest, error)
	Reject(ctx context.Context, params repository.ReviewParams) error
	Approve(ctx context.Context, params repository.ReviewParams, kind models.ChangeRequestKind, booking *models.Booking) error
}

type bookingReader interface {
	FindByID(ctx context.Context, id string) (*models.Booking, error)
}

// ChangeRequestService runs the PENDING -> APPROVED | REJECTED workflow for room changes.
type ChangeRequestService struct {
	repo        changeRequestStore
	bookings    bookingReader
	enrollments guardEnrollmentStore
	guard       bookingChecker
	cache       availabilityInvalidator
	audit       auditLogger
	validator   *validator.Validate
	logger      *zap.Logger
	now         func() time.Time
}

// NewChangeRequestService constructs the service with defaults.
func NewChangeRequestService(repo changeRequestStore, bookings bookingReader, enrollments guardEnrollmentStore, guard bookingChecker, cache availabilityInvalidator, audit auditLogger, validate *validator.Validate, logger *zap.Logger) *ChangeRequestService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if cache == nil {
		cache = noopInvalidator{}
	}
	return &ChangeRequestService{
		repo:        repo,
		bookings:    bookings,
		enrollments: enrollments,
		guard:       guard,
		cache:       cache,
		audit:       audit,
		validator:   validate,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Create files a request after the guard accepts the target room.
// Permanent requests ignore the booking they would move.
func (s *ChangeRequestService) Create(ctx context.Context, req dto.CreateChangeRequest, actor *models.JWTClaims) (*models.ChangeRequest, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid change request payload")
	}
	query, err := parsePeriod(req.StartDate, req.EndDate, req.DayBlocks)
	if err != nil {
		return nil, err
	}
	booking, err := s.loadOwnedBooking(ctx, req.BookingID, actor)
	if err != nil {
		return nil, err
	}

	check := GuardRequest{
		RoomID:       req.TargetRoomID,
		EnrollmentID: booking.EnrollmentID,
		Start:        query.Start,
		End:          query.End,
		DayBlocks:    query.DayBlocks,
	}
	if req.Kind == models.ChangeRequestPermanent {
		check.ExcludeBookingIDs = []string{booking.ID}
	}
	if _, err := s.guard.Check(ctx, check); err != nil {
		return nil, err
	}

	cr := &models.ChangeRequest{
		RequestedBy:  actor.UserID,
		BookingID:    booking.ID,
		TargetRoomID: req.TargetRoomID,
		Kind:         req.Kind,
		StartDate:    query.Start,
		EndDate:      query.End,
		DayBlocks:    query.DayBlocks,
		Status:       models.ChangeRequestPending,
		Comments:     req.Comments,
		RequestedAt:  s.now(),
	}
	if err := s.repo.Create(ctx, cr); err != nil {
		return nil, internalError(err, "failed to create change request")
	}
	emitAudit(ctx, s.audit, s.logger, actor, models.AuditActionChangeRequestCreate, "change_requests", cr.ID, nil, cr)
	return cr, nil
}

// List returns requests visible to actor. Professors only see their own.
func (s *ChangeRequestService) List(ctx context.Context, query dto.ChangeRequestQuery, actor *models.JWTClaims) ([]models.ChangeRequest, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	filter := models.ChangeRequestFilter{
		Status:       query.Status,
		BookingID:    query.BookingID,
		TargetRoomID: query.TargetRoomID,
		Limit:        query.Limit,
		Offset:       query.Offset,
	}
	switch actor.Role {
	case models.RoleAdmin:
	case models.RoleProfessor:
		filter.RequestedBy = actor.UserID
	default:
		return nil, appErrors.ErrForbidden
	}
	requests, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, internalError(err, "failed to list change requests")
	}
	return requests, nil
}

// Get returns a request enforcing ownership for professors.
func (s *ChangeRequestService) Get(ctx context.Context, id string, actor *models.JWTClaims) (*models.ChangeRequest, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	cr, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "change request", "load")
	}
	if !actor.IsAdmin() && cr.RequestedBy != actor.UserID {
		return nil, appErrors.ErrForbidden
	}
	return cr, nil
}

// Review approves or rejects a pending request. Approval re-runs the guard
// against current data and applies the move in the same transaction as the
// status change.
func (s *ChangeRequestService) Review(ctx context.Context, id string, req dto.ReviewChangeRequest, actor *models.JWTClaims) (*models.ChangeRequest, error) {
	if !actor.IsAdmin() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only administrators review change requests")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "status must be APPROVED or REJECTED")
	}
	cr, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "change request", "load")
	}
	if !cr.IsPending() {
		return nil, appErrors.Clone(appErrors.ErrConflict, "change request already reviewed")
	}
	before := *cr

	params := repository.ReviewParams{
		ID:         cr.ID,
		Status:     req.Status,
		ReviewedBy: actor.UserID,
		ReviewedAt: s.now(),
		Note:       optionalString(req.Note),
	}

	var result *models.Booking
	if req.Status == models.ChangeRequestApproved {
		result, err = s.approve(ctx, cr, params, actor)
	} else {
		err = s.repo.Reject(ctx, params)
	}
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "change request already processed")
		}
		var appErr *appErrors.Error
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, internalError(err, "failed to review change request")
	}

	cr.Status = params.Status
	cr.ReviewedBy = &params.ReviewedBy
	cr.ReviewedAt = &params.ReviewedAt
	cr.ReviewNote = params.Note
	if result != nil {
		cr.ResultBookingID = &result.ID
		s.cache.Invalidate(ctx)
	}
	emitAudit(ctx, s.audit, s.logger, actor, models.AuditActionChangeRequestReview, "change_requests", cr.ID, before, cr)
	s.logger.Info("change request reviewed",
		zap.String("change_request_id", cr.ID),
		zap.String("status", string(cr.Status)),
		zap.String("kind", string(cr.Kind)),
	)
	return cr, nil
}

func (s *ChangeRequestService) approve(ctx context.Context, cr *models.ChangeRequest, params repository.ReviewParams, actor *models.JWTClaims) (*models.Booking, error) {
	original, err := s.bookings.FindByID(ctx, cr.BookingID)
	if err != nil {
		return nil, storeError(err, "booking", "load")
	}
	check := GuardRequest{
		RoomID:           cr.TargetRoomID,
		EnrollmentID:     original.EnrollmentID,
		Start:            cr.StartDate,
		End:              cr.EndDate,
		DayBlocks:        cr.DayBlocks,
		ExcludeRequestID: cr.ID,
	}
	if cr.Kind == models.ChangeRequestPermanent {
		check.ExcludeBookingIDs = []string{original.ID}
	}
	if _, err := s.guard.Check(ctx, check); err != nil {
		return nil, err
	}

	var target models.Booking
	switch cr.Kind {
	case models.ChangeRequestTemporary:
		target = models.Booking{EnrollmentID: original.EnrollmentID, CreatedBy: actor.UserID}
	case models.ChangeRequestPermanent:
		target = *original
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown change request kind")
	}
	target.RoomID = cr.TargetRoomID
	target.StartDate = cr.StartDate
	target.EndDate = cr.EndDate
	target.DayBlocks = cr.DayBlocks

	if err := s.repo.Approve(ctx, params, cr.Kind, &target); err != nil {
		return nil, err
	}
	return &target, nil
}

func (s *ChangeRequestService) loadOwnedBooking(ctx context.Context, id string, actor *models.JWTClaims) (*models.Booking, error) {
	booking, err := s.bookings.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "booking", "load")
	}
	if actor.IsAdmin() {
		return booking, nil
	}
	enrollment, err := s.enrollments.FindDetailByID(ctx, booking.EnrollmentID)
	if err != nil {
		return nil, storeError(err, "enrollment", "load")
	}
	if enrollment.ProfessorID != actor.UserID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "booking belongs to another professor")
	}
	return booking, nil
}
