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

const enrollmentDetailSelect = `SELECT e.id, e.course_id, e.professor_id, e.section, e.headcount, e.margin, e.registration_deadline,
       e.created_at, e.updated_at, c.code AS course_code, c.name AS course_name, c.requires_lab
FROM enrollments e JOIN courses c ON c.id = e.course_id`

// EnrollmentRepository persists course sections.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// FindDetailByID returns an enrollment joined with its course.
func (r *EnrollmentRepository) FindDetailByID(ctx context.Context, id string) (*models.EnrollmentDetail, error) {
	var detail models.EnrollmentDetail
	if err := r.db.GetContext(ctx, &detail, enrollmentDetailSelect+` WHERE e.id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find enrollment: %w", err)
	}
	return &detail, nil
}

// List returns enrollments with course info.
func (r *EnrollmentRepository) List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, int, error) {
	var (
		conditions []string
		args       []interface{}
	)
	if filter.CourseID != "" {
		args = append(args, filter.CourseID)
		conditions = append(conditions, fmt.Sprintf("e.course_id = $%d", len(args)))
	}
	if filter.ProfessorID != "" {
		args = append(args, filter.ProfessorID)
		conditions = append(conditions, fmt.Sprintf("e.professor_id = $%d", len(args)))
	}
	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	page, size := normalisePage(filter.Page, filter.PageSize)
	query := fmt.Sprintf(`%s%s ORDER BY c.code, e.section LIMIT %d OFFSET %d`, enrollmentDetailSelect, where, size, (page-1)*size)
	var items []models.EnrollmentDetail
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list enrollments: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM enrollments e"+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count enrollments: %w", err)
	}
	return items, total, nil
}

// Create inserts an enrollment.
func (r *EnrollmentRepository) Create(ctx context.Context, e *models.Enrollment) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	e.CreatedAt = now
	e.UpdatedAt = now
	const query = `INSERT INTO enrollments (id, course_id, professor_id, section, headcount, margin, registration_deadline, created_at, updated_at)
	VALUES (:id, :course_id, :professor_id, :section, :headcount, :margin, :registration_deadline, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, e); err != nil {
		return constraintError("create enrollment", err)
	}
	return nil
}

// Update overwrites an enrollment.
func (r *EnrollmentRepository) Update(ctx context.Context, e *models.Enrollment) error {
	e.UpdatedAt = time.Now().UTC()
	const query = `UPDATE enrollments SET course_id = :course_id, professor_id = :professor_id, section = :section, headcount = :headcount,
	margin = :margin, registration_deadline = :registration_deadline, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, e)
	if err != nil {
		return constraintError("update enrollment", err)
	}
	return expectAffected(res, "update enrollment")
}

// Delete removes an enrollment.
func (r *EnrollmentRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM enrollments WHERE id = $1`, id)
	if err != nil {
		return constraintError("delete enrollment", err)
	}
	return expectAffected(res, "delete enrollment")
}
