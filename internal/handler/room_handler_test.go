package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/roomsched-api/internal/dto"
	"github.com/noah-isme/roomsched-api/internal/middleware"
	"github.com/noah-isme/roomsched-api/internal/models"
	appErrors "github.com/noah-isme/roomsched-api/pkg/errors"
)

type roomServiceMock struct {
	rooms     []models.Room
	room      *models.Room
	err       error
	lastQuery dto.RoomQuery
	lastID    int64
	deleted   bool
}

func (m *roomServiceMock) List(ctx context.Context, q dto.RoomQuery) ([]models.Room, *models.Pagination, error) {
	m.lastQuery = q
	return m.rooms, &models.Pagination{Page: 1, PageSize: 20, TotalCount: len(m.rooms)}, m.err
}

func (m *roomServiceMock) Get(ctx context.Context, id int64) (*models.Room, error) {
	m.lastID = id
	return m.room, m.err
}

func (m *roomServiceMock) Create(ctx context.Context, req dto.RoomRequest) (*models.Room, error) {
	return m.room, m.err
}

func (m *roomServiceMock) Update(ctx context.Context, id int64, req dto.RoomRequest) (*models.Room, error) {
	m.lastID = id
	return m.room, m.err
}

func (m *roomServiceMock) Delete(ctx context.Context, id int64) error {
	m.lastID = id
	m.deleted = m.err == nil
	return m.err
}

type availabilityFinderMock struct {
	resp      *dto.AvailabilityResponse
	err       error
	lastQuery dto.AvailabilityQuery
}

func (m *availabilityFinderMock) FindAvailableRooms(ctx context.Context, q dto.AvailabilityQuery) (*dto.AvailabilityResponse, error) {
	m.lastQuery = q
	return m.resp, m.err
}

func TestRoomHandlerListBindsFilters(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rooms := &roomServiceMock{rooms: []models.Room{{ID: 101, Name: "A-101"}}}
	handler := NewRoomHandler(rooms, &availabilityFinderMock{})

	c, w := newGinContext(http.MethodGet, "/rooms?building=A&kind=LAB&minCapacity=30&projector=true&page=2", nil)
	handler.List(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "A", rooms.lastQuery.Building)
	require.NotNil(t, rooms.lastQuery.Kind)
	assert.Equal(t, models.RoomKindLab, *rooms.lastQuery.Kind)
	require.NotNil(t, rooms.lastQuery.MinCapacity)
	assert.Equal(t, 30, *rooms.lastQuery.MinCapacity)
	require.NotNil(t, rooms.lastQuery.Projector)
	assert.True(t, *rooms.lastQuery.Projector)
	assert.Nil(t, rooms.lastQuery.TV)
	assert.Equal(t, 2, rooms.lastQuery.Page)
}

func TestRoomHandlerRejectsNonNumericID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rooms := &roomServiceMock{}
	handler := NewRoomHandler(rooms, &availabilityFinderMock{})

	c, w := newGinContext(http.MethodGet, "/rooms/abc", nil)
	c.Params = gin.Params{{Key: "id", Value: "abc"}}
	handler.Get(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, rooms.lastID)
}

func TestRoomHandlerDeleteInUse(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rooms := &roomServiceMock{err: appErrors.Clone(appErrors.ErrConflict, "room has bookings")}
	handler := NewRoomHandler(rooms, &availabilityFinderMock{})

	c, w := newGinContext(http.MethodDelete, "/rooms/101", nil)
	c.Params = gin.Params{{Key: "id", Value: "101"}}
	handler.Delete(c)

	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, int64(101), rooms.lastID)
	assert.False(t, rooms.deleted)
}

func TestRoomHandlerAvailableReportsCacheHit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	finder := &availabilityFinderMock{resp: &dto.AvailabilityResponse{
		Start:  "2024-03-04",
		End:    "2024-03-08",
		Rooms:  []models.Room{{ID: 102}},
		Cached: true,
	}}
	handler := NewRoomHandler(&roomServiceMock{}, finder)

	c, w := newGinContext(http.MethodGet, "/rooms/available?start=2024-03-04&end=2024-03-08&slots=MONDAY:MORNING_1&minCapacity=10", nil)
	middleware.WithResponseMeta()(c)
	handler.Available(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "MONDAY:MORNING_1", finder.lastQuery.Slots)
	require.NotNil(t, finder.lastQuery.MinCapacity)
	assert.Equal(t, 10, *finder.lastQuery.MinCapacity)

	body := decodeEnvelope(t, w)
	assert.Equal(t, true, body.Meta["cache_hit"])
	assert.Contains(t, body.Meta, "processing_time_ms")

	var data dto.AvailabilityResponse
	require.NoError(t, json.Unmarshal(body.Data, &data))
	require.Len(t, data.Rooms, 1)
	assert.Equal(t, int64(102), data.Rooms[0].ID)
}

func TestRoomHandlerAvailablePropagatesValidation(t *testing.T) {
	gin.SetMode(gin.TestMode)
	finder := &availabilityFinderMock{err: appErrors.Clone(appErrors.ErrValidation, "start must not be after end")}
	handler := NewRoomHandler(&roomServiceMock{}, finder)

	c, w := newGinContext(http.MethodGet, "/rooms/available?start=2024-03-08&end=2024-03-04&slots=MONDAY:MORNING_1", nil)
	handler.Available(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeEnvelope(t, w)
	require.NotNil(t, body.Error)
	assert.Equal(t, appErrors.ErrValidation.Code, body.Error.Code)
}

func TestTimeBlocksListsCalendar(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, w := newGinContext(http.MethodGet, "/time-blocks", nil)
	TimeBlocks(c)

	require.Equal(t, http.StatusOK, w.Code)
	var items []dto.TimeBlockResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &items))
	require.Len(t, items, len(models.TimeBlocks()))
	assert.Equal(t, models.BlockMorning1, items[0].Code)
	assert.Equal(t, models.BlockMorning1.Start().String(), items[0].Start)
}
