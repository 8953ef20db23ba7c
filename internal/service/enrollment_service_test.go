package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/roomsched-api/internal/dto"
	"github.com/noah-isme/roomsched-api/internal/models"
	appErrors "github.com/noah-isme/roomsched-api/pkg/errors"
)

type enrollmentRepoStub struct {
	*enrollmentStoreStub
	lastFilter models.EnrollmentFilter
}

func (r *enrollmentRepoStub) List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, int, error) {
	r.lastFilter = filter
	var out []models.EnrollmentDetail
	for _, e := range r.items {
		if filter.ProfessorID == "" || e.ProfessorID == filter.ProfessorID {
			out = append(out, e)
		}
	}
	return out, len(out), nil
}

func (r *enrollmentRepoStub) Create(ctx context.Context, enrollment *models.Enrollment) error {
	enrollment.ID = "enr-new"
	r.items[enrollment.ID] = models.EnrollmentDetail{Enrollment: *enrollment, CourseCode: "CS101"}
	return nil
}

func (r *enrollmentRepoStub) Update(ctx context.Context, enrollment *models.Enrollment) error {
	current, ok := r.items[enrollment.ID]
	if !ok {
		return sql.ErrNoRows
	}
	current.Enrollment = *enrollment
	r.items[enrollment.ID] = current
	return nil
}

func (r *enrollmentRepoStub) Delete(ctx context.Context, id string) error {
	if _, ok := r.items[id]; !ok {
		return sql.ErrNoRows
	}
	delete(r.items, id)
	return nil
}

type userReaderStub map[string]models.User

func (s userReaderStub) FindByID(ctx context.Context, id string) (*models.User, error) {
	u, ok := s[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &u, nil
}

func newEnrollmentServiceForTest(t *testing.T) (*EnrollmentService, *enrollmentRepoStub) {
	t.Helper()
	f := newScheduleFixture(t)
	repo := &enrollmentRepoStub{enrollmentStoreStub: f.enrollments}
	users := userReaderStub{
		"prof-1":  {ID: "prof-1", Role: models.RoleProfessor, Active: true},
		"prof-x":  {ID: "prof-x", Role: models.RoleProfessor, Active: false},
		"admin-1": {ID: "admin-1", Role: models.RoleAdmin, Active: true},
	}
	return NewEnrollmentService(repo, newCourseRepoStub(), users, nil, nil), repo
}

func sectionRequest(professor string) dto.EnrollmentRequest {
	return dto.EnrollmentRequest{
		CourseID:             "c-1",
		ProfessorID:          professor,
		Section:              " 03 ",
		Headcount:            28,
		Margin:               4,
		RegistrationDeadline: "2024-03-15",
	}
}

func TestEnrollmentServiceCreate(t *testing.T) {
	svc, repo := newEnrollmentServiceForTest(t)

	detail, err := svc.Create(context.Background(), sectionRequest("prof-1"))
	require.NoError(t, err)
	assert.Equal(t, "enr-new", detail.ID)
	assert.Equal(t, "03", detail.Section)
	assert.Equal(t, "2024-03-15", detail.RegistrationDeadline.Format(models.DateLayout))
	assert.Contains(t, repo.items, "enr-new")
}

func TestEnrollmentServiceCreateRejectsBadReferences(t *testing.T) {
	svc, _ := newEnrollmentServiceForTest(t)

	_, err := svc.Create(context.Background(), sectionRequest("admin-1"))
	requireCode(t, err, appErrors.ErrValidation.Code)

	_, err = svc.Create(context.Background(), sectionRequest("prof-x"))
	requireCode(t, err, appErrors.ErrValidation.Code)

	_, err = svc.Create(context.Background(), sectionRequest("nobody"))
	requireCode(t, err, appErrors.ErrNotFound.Code)

	req := sectionRequest("prof-1")
	req.CourseID = "c-404"
	_, err = svc.Create(context.Background(), req)
	requireCode(t, err, appErrors.ErrNotFound.Code)

	req = sectionRequest("prof-1")
	req.RegistrationDeadline = "15/03/2024"
	_, err = svc.Create(context.Background(), req)
	requireCode(t, err, appErrors.ErrValidation.Code)

	req = sectionRequest("prof-1")
	req.Headcount = -1
	_, err = svc.Create(context.Background(), req)
	requireCode(t, err, appErrors.ErrValidation.Code)
}

func TestEnrollmentServiceUpdate(t *testing.T) {
	svc, repo := newEnrollmentServiceForTest(t)

	detail, err := svc.Update(context.Background(), "enr-1", sectionRequest("prof-1"))
	require.NoError(t, err)
	assert.Equal(t, 28, detail.Headcount)
	assert.Equal(t, "CS101", repo.items["enr-1"].CourseCode)

	_, err = svc.Update(context.Background(), "enr-404", sectionRequest("prof-1"))
	requireCode(t, err, appErrors.ErrNotFound.Code)
}

func TestEnrollmentServiceVisibility(t *testing.T) {
	svc, repo := newEnrollmentServiceForTest(t)

	items, _, err := svc.List(context.Background(), models.EnrollmentFilter{}, professorClaims)
	require.NoError(t, err)
	assert.Equal(t, "prof-1", repo.lastFilter.ProfessorID)
	assert.Len(t, items, 2)

	items, _, err = svc.List(context.Background(), models.EnrollmentFilter{}, adminClaims)
	require.NoError(t, err)
	assert.Len(t, items, 3)

	_, err = svc.Get(context.Background(), "enr-small", professorClaims)
	requireCode(t, err, appErrors.ErrForbidden.Code)

	detail, err := svc.Get(context.Background(), "enr-lab", professorClaims)
	require.NoError(t, err)
	assert.True(t, detail.RequiresLab)
}

func TestEnrollmentServiceDelete(t *testing.T) {
	svc, repo := newEnrollmentServiceForTest(t)

	require.NoError(t, svc.Delete(context.Background(), "enr-small"))
	assert.NotContains(t, repo.items, "enr-small")
	requireCode(t, svc.Delete(context.Background(), "enr-small"), appErrors.ErrNotFound.Code)
}
