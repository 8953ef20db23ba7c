package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/roomsched-api/internal/models"
)

var roomRowColumns = []string{"id", "name", "building", "capacity", "has_projector", "has_tv", "kind", "computer_count", "created_at", "updated_at"}

func TestRoomRepositoryListAll(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()

	now := time.Now()
	rows := sqlmock.NewRows(roomRowColumns).
		AddRow(101, "Room 101", "A", 30, false, false, "CLASSROOM", nil, now, now).
		AddRow(301, "Lab 1", "C", 24, true, true, "LAB", 24, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM rooms ORDER BY id")).WillReturnRows(rows)

	rooms, err := NewRoomRepository(db).ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, rooms, 2)
	assert.Nil(t, rooms[0].ComputerCount)
	assert.True(t, rooms[1].IsLab())
	assert.Equal(t, 24, rooms[1].Computers())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoomRepositoryListFilters(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()

	kind := models.RoomKindLab
	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("FROM rooms WHERE building = $1 AND kind = $2 ORDER BY id LIMIT 10 OFFSET 10")).
		WithArgs("C", kind).
		WillReturnRows(sqlmock.NewRows(roomRowColumns).AddRow(301, "Lab 1", "C", 24, true, true, "LAB", 24, now, now))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM rooms WHERE building = $1 AND kind = $2")).
		WithArgs("C", kind).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(11))

	rooms, total, err := NewRoomRepository(db).List(context.Background(), models.RoomFilter{Building: "C", Kind: &kind, Page: 2, PageSize: 10})
	require.NoError(t, err)
	assert.Len(t, rooms, 1)
	assert.Equal(t, 11, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoomRepositoryFindMissing(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta("FROM rooms WHERE id = $1")).WithArgs(int64(999)).WillReturnRows(sqlmock.NewRows(roomRowColumns))

	_, err := NewRoomRepository(db).FindByID(context.Background(), 999)
	require.ErrorIs(t, err, sql.ErrNoRows)
}

func TestRoomRepositoryCreateUpdateDelete(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRoomRepository(db)

	computers := 20
	room := &models.Room{ID: 301, Name: "Lab 1", Building: "C", Capacity: 24, Kind: models.RoomKindLab, ComputerCount: &computers}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO rooms")).
		WithArgs(int64(301), "Lab 1", "C", 24, false, false, models.RoomKindLab, 20, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Create(context.Background(), room))

	mock.ExpectExec(regexp.QuoteMeta("UPDATE rooms SET")).WillReturnResult(sqlmock.NewResult(0, 0))
	require.ErrorIs(t, repo.Update(context.Background(), room), sql.ErrNoRows)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM rooms WHERE id = $1")).WithArgs(int64(301)).WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Delete(context.Background(), 301))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoomRepositoryConstraintViolations(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRoomRepository(db)

	room := &models.Room{ID: 101, Name: "Room 101", Building: "A", Capacity: 40, Kind: models.RoomKindClassroom}
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO rooms")).WillReturnError(&pq.Error{Code: "23505", Constraint: "rooms_pkey"})
	err := repo.Create(context.Background(), room)
	require.ErrorIs(t, err, ErrDuplicate)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM rooms")).WithArgs(int64(101)).WillReturnError(&pq.Error{Code: "23503"})
	err = repo.Delete(context.Background(), 101)
	require.ErrorIs(t, err, ErrInUse)
	var pqErr *pq.Error
	assert.ErrorAs(t, err, &pqErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}
