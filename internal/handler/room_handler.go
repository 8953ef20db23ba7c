package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/roomsched-api/internal/dto"
	"github.com/noah-isme/roomsched-api/internal/middleware"
	"github.com/noah-isme/roomsched-api/internal/models"
	"github.com/noah-isme/roomsched-api/pkg/response"
)

type roomService interface {
	List(ctx context.Context, q dto.RoomQuery) ([]models.Room, *models.Pagination, error)
	Get(ctx context.Context, id int64) (*models.Room, error)
	Create(ctx context.Context, req dto.RoomRequest) (*models.Room, error)
	Update(ctx context.Context, id int64, req dto.RoomRequest) (*models.Room, error)
	Delete(ctx context.Context, id int64) error
}

type availabilityFinder interface {
	FindAvailableRooms(ctx context.Context, q dto.AvailabilityQuery) (*dto.AvailabilityResponse, error)
}

// RoomHandler exposes room inventory and availability endpoints.
type RoomHandler struct {
	rooms        roomService
	availability availabilityFinder
}

// NewRoomHandler constructs the handler.
func NewRoomHandler(rooms roomService, availability availabilityFinder) *RoomHandler {
	return &RoomHandler{rooms: rooms, availability: availability}
}

// List godoc
// @Summary List rooms
// @Tags Rooms
// @Produce json
// @Param building query string false "Building"
// @Param kind query string false "CLASSROOM or LAB"
// @Param minCapacity query int false "Minimum capacity"
// @Param projector query bool false "Requires projector"
// @Param tv query bool false "Requires TV"
// @Param minComputers query int false "Minimum lab computers"
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /rooms [get]
func (h *RoomHandler) List(c *gin.Context) {
	var q dto.RoomQuery
	if !bindQuery(c, &q) {
		return
	}
	rooms, pagination, err := h.rooms.List(c.Request.Context(), q)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rooms, pagination)
}

// Get godoc
// @Summary Get room
// @Tags Rooms
// @Produce json
// @Param id path int true "Room number"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /rooms/{id} [get]
func (h *RoomHandler) Get(c *gin.Context) {
	id, ok := roomNumber(c)
	if !ok {
		return
	}
	room, err := h.rooms.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, room)
}

// Create godoc
// @Summary Create room
// @Tags Rooms
// @Accept json
// @Produce json
// @Param payload body dto.RoomRequest true "Room payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /rooms [post]
func (h *RoomHandler) Create(c *gin.Context) {
	var req dto.RoomRequest
	if !bindJSON(c, &req) {
		return
	}
	room, err := h.rooms.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, room)
}

// Update godoc
// @Summary Update room
// @Tags Rooms
// @Accept json
// @Produce json
// @Param id path int true "Room number"
// @Param payload body dto.RoomRequest true "Room payload"
// @Success 200 {object} response.Envelope
// @Router /rooms/{id} [put]
func (h *RoomHandler) Update(c *gin.Context) {
	id, ok := roomNumber(c)
	if !ok {
		return
	}
	var req dto.RoomRequest
	if !bindJSON(c, &req) {
		return
	}
	room, err := h.rooms.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, room)
}

// Delete godoc
// @Summary Delete room
// @Description Rooms referenced by bookings cannot be deleted.
// @Tags Rooms
// @Param id path int true "Room number"
// @Success 204
// @Failure 409 {object} response.Envelope
// @Router /rooms/{id} [delete]
func (h *RoomHandler) Delete(c *gin.Context) {
	id, ok := roomNumber(c)
	if !ok {
		return
	}
	if err := h.rooms.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Available godoc
// @Summary Find available rooms
// @Description Rooms matching the attribute filter with no booking on any requested day-block within the period.
// @Tags Rooms
// @Produce json
// @Param start query string true "Start date (YYYY-MM-DD)"
// @Param end query string true "End date (YYYY-MM-DD)"
// @Param slots query string true "Comma separated DAY:BLOCK pairs"
// @Param minCapacity query int false "Minimum capacity"
// @Param projector query bool false "Requires projector"
// @Param tv query bool false "Requires TV"
// @Param minComputers query int false "Minimum lab computers"
// @Param kind query string false "CLASSROOM or LAB"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /rooms/available [get]
func (h *RoomHandler) Available(c *gin.Context) {
	var q dto.AvailabilityQuery
	if !bindQuery(c, &q) {
		return
	}
	res, err := h.availability.FindAvailableRooms(c.Request.Context(), q)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, res.Cached)
	response.JSON(c, http.StatusOK, res, nil, middleware.ResponseMeta(c))
}

// TimeBlocks godoc
// @Summary List the block calendar
// @Tags Rooms
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /time-blocks [get]
func TimeBlocks(c *gin.Context) {
	blocks := models.TimeBlocks()
	items := make([]dto.TimeBlockResponse, 0, len(blocks))
	for _, block := range blocks {
		items = append(items, dto.TimeBlockResponse{
			Code:  block,
			Label: block.Label(),
			Start: block.Start().String(),
			End:   block.End().String(),
		})
	}
	response.OK(c, items)
}
