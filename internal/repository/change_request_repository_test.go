package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/roomsched-api/internal/models"
)

var changeRequestRowColumns = []string{"id", "requested_by", "booking_id", "target_room_id", "kind", "start_date", "end_date", "day_blocks",
	"status", "comments", "reviewed_by", "reviewed_at", "review_note", "result_booking_id", "requested_at"}

func TestChangeRequestRepositoryCreateAndGet(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewChangeRequestRepository(db)

	cr := &models.ChangeRequest{
		RequestedBy:  "prof-1",
		BookingID:    "b-1",
		TargetRoomID: 102,
		Kind:         models.ChangeRequestTemporary,
		StartDate:    time.Date(2025, 4, 7, 0, 0, 0, 0, time.UTC),
		EndDate:      time.Date(2025, 4, 7, 0, 0, 0, 0, time.UTC),
		DayBlocks:    models.MustDayBlockSet(models.DayBlock{Day: models.Monday, Block: models.BlockMorning1}),
		Comments:     "projector broken",
	}
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO change_requests")).
		WithArgs(sqlmock.AnyArg(), "prof-1", "b-1", int64(102), models.ChangeRequestTemporary, cr.StartDate, cr.EndDate, mondayMorningJSON,
			models.ChangeRequestPending, "projector broken", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Create(context.Background(), cr))
	assert.Equal(t, models.ChangeRequestPending, cr.Status)

	rows := sqlmock.NewRows(changeRequestRowColumns).
		AddRow(cr.ID, "prof-1", "b-1", 102, "TEMPORARY", cr.StartDate, cr.EndDate, mondayMorningJSON, "PENDING", "projector broken", nil, nil, nil, nil, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM change_requests WHERE id = $1")).WithArgs(cr.ID).WillReturnRows(rows)

	found, err := repo.GetByID(context.Background(), cr.ID)
	require.NoError(t, err)
	assert.True(t, found.IsPending())
	assert.Equal(t, 1, found.DayBlocks.Len())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChangeRequestRepositoryListFilters(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()

	rows := sqlmock.NewRows(changeRequestRowColumns).
		AddRow("cr-1", "prof-1", "b-1", 102, "PERMANENT", time.Now(), time.Now(), mondayMorningJSON, "PENDING", "", nil, nil, nil, nil, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("WHERE status IN ($1) AND requested_by = $2 ORDER BY requested_at DESC LIMIT 50 OFFSET 0")).
		WithArgs(models.ChangeRequestPending, "prof-1").
		WillReturnRows(rows)

	list, err := NewChangeRequestRepository(db).List(context.Background(), models.ChangeRequestFilter{
		Status:      []models.ChangeRequestStatus{models.ChangeRequestPending},
		RequestedBy: "prof-1",
	})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, models.ChangeRequestPermanent, list[0].Kind)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChangeRequestRepositoryListPendingForRoom(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()

	start := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 4, 30, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE target_room_id = $1 AND status = 'PENDING' AND start_date <= $3 AND end_date >= $2")).
		WithArgs(int64(102), start, end).
		WillReturnRows(sqlmock.NewRows(changeRequestRowColumns))

	list, err := NewChangeRequestRepository(db).ListPendingForRoom(context.Background(), 102, start, end)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChangeRequestRepositoryApproveTemporary(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()

	booking := &models.Booking{
		RoomID:       102,
		EnrollmentID: "e-1",
		StartDate:    time.Date(2025, 4, 7, 0, 0, 0, 0, time.UTC),
		EndDate:      time.Date(2025, 4, 7, 0, 0, 0, 0, time.UTC),
		DayBlocks:    models.MustDayBlockSet(models.DayBlock{Day: models.Monday, Block: models.BlockMorning1}),
	}
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO bookings")).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE change_requests SET status = ")).
		WithArgs(models.ChangeRequestApproved, "admin-1", sqlmock.AnyArg(), nil, sqlmock.AnyArg(), "cr-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := NewChangeRequestRepository(db).Approve(context.Background(), ReviewParams{ID: "cr-1", ReviewedBy: "admin-1", ReviewedAt: time.Now()},
		models.ChangeRequestTemporary, booking)
	require.NoError(t, err)
	assert.NotEmpty(t, booking.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChangeRequestRepositoryApproveRollsBackWhenAlreadyReviewed(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()

	booking := &models.Booking{ID: "b-1", RoomID: 102, DayBlocks: models.MustDayBlockSet(models.DayBlock{Day: models.Monday, Block: models.BlockMorning1})}
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE bookings SET")).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE change_requests SET status = ")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := NewChangeRequestRepository(db).Approve(context.Background(), ReviewParams{ID: "cr-1", ReviewedBy: "admin-1", ReviewedAt: time.Now()},
		models.ChangeRequestPermanent, booking)
	require.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChangeRequestRepositoryReject(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()

	note := "room reserved for exams"
	mock.ExpectExec(regexp.QuoteMeta("AND status = 'PENDING'")).
		WithArgs(models.ChangeRequestRejected, "admin-1", sqlmock.AnyArg(), note, nil, "cr-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := NewChangeRequestRepository(db).Reject(context.Background(), ReviewParams{ID: "cr-1", ReviewedBy: "admin-1", ReviewedAt: time.Now(), Note: &note})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
