package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/roomsched-api/internal/dto"
	"github.com/noah-isme/roomsched-api/internal/models"
	appErrors "github.com/noah-isme/roomsched-api/pkg/errors"
)

type enrollmentRepository interface {
	List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, int, error)
	FindDetailByID(ctx context.Context, id string) (*models.EnrollmentDetail, error)
	Create(ctx context.Context, enrollment *models.Enrollment) error
	Update(ctx context.Context, enrollment *models.Enrollment) error
	Delete(ctx context.Context, id string) error
}

type courseReader interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
}

type userReader interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// EnrollmentService manages course sections and their headcounts.
type EnrollmentService struct {
	repo      enrollmentRepository
	courses   courseReader
	users     userReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEnrollmentService constructs EnrollmentService.
func NewEnrollmentService(repo enrollmentRepository, courses courseReader, users userReader, validate *validator.Validate, logger *zap.Logger) *EnrollmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{repo: repo, courses: courses, users: users, validator: validate, logger: logger}
}

// List returns enrollments. Professors only see their own sections.
func (s *EnrollmentService) List(ctx context.Context, filter models.EnrollmentFilter, actor *models.JWTClaims) ([]models.EnrollmentDetail, *models.Pagination, error) {
	if actor == nil {
		return nil, nil, appErrors.ErrUnauthorized
	}
	if !actor.IsAdmin() {
		filter.ProfessorID = actor.UserID
	}
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, internalError(err, "failed to list enrollments")
	}
	return items, paginate(filter.Page, filter.PageSize, total), nil
}

// Get returns one enrollment with its course.
func (s *EnrollmentService) Get(ctx context.Context, id string, actor *models.JWTClaims) (*models.EnrollmentDetail, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	detail, err := s.repo.FindDetailByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "enrollment", "load")
	}
	if !actor.IsAdmin() && detail.ProfessorID != actor.UserID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "enrollment belongs to another professor")
	}
	return detail, nil
}

// Create opens a section for an existing course and professor.
func (s *EnrollmentService) Create(ctx context.Context, req dto.EnrollmentRequest) (*models.EnrollmentDetail, error) {
	enrollment, err := s.build(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, enrollment); err != nil {
		return nil, storeError(err, "enrollment", "create")
	}
	return s.detail(ctx, enrollment.ID)
}

// Update replaces a section's attributes.
func (s *EnrollmentService) Update(ctx context.Context, id string, req dto.EnrollmentRequest) (*models.EnrollmentDetail, error) {
	enrollment, err := s.build(ctx, req)
	if err != nil {
		return nil, err
	}
	enrollment.ID = id
	if err := s.repo.Update(ctx, enrollment); err != nil {
		return nil, storeError(err, "enrollment", "update")
	}
	return s.detail(ctx, id)
}

// Delete removes a section without bookings.
func (s *EnrollmentService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return storeError(err, "enrollment", "delete")
	}
	return nil
}

func (s *EnrollmentService) build(ctx context.Context, req dto.EnrollmentRequest) (*models.Enrollment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid enrollment payload")
	}
	deadline, err := models.ParseDate(strings.TrimSpace(req.RegistrationDeadline))
	if err != nil {
		return nil, validationError(err, "registrationDeadline must use YYYY-MM-DD")
	}
	if _, err := s.courses.FindByID(ctx, req.CourseID); err != nil {
		return nil, storeError(err, "course", "load")
	}
	professor, err := s.users.FindByID(ctx, req.ProfessorID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "professor not found")
		}
		return nil, internalError(err, "failed to load professor")
	}
	if professor.Role != models.RoleProfessor || !professor.Active {
		return nil, appErrors.Clone(appErrors.ErrValidation, "professorId must reference an active professor")
	}
	return &models.Enrollment{
		CourseID:             req.CourseID,
		ProfessorID:          req.ProfessorID,
		Section:              strings.TrimSpace(req.Section),
		Headcount:            req.Headcount,
		Margin:               req.Margin,
		RegistrationDeadline: deadline,
	}, nil
}

func (s *EnrollmentService) detail(ctx context.Context, id string) (*models.EnrollmentDetail, error) {
	detail, err := s.repo.FindDetailByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "enrollment", "load")
	}
	return detail, nil
}
