package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/roomsched-api/internal/dto"
	"github.com/noah-isme/roomsched-api/internal/models"
	"github.com/noah-isme/roomsched-api/pkg/response"
)

type bookingService interface {
	List(ctx context.Context, q dto.BookingQuery, actor *models.JWTClaims) ([]models.BookingDetail, *models.Pagination, error)
	Get(ctx context.Context, id string, actor *models.JWTClaims) (*models.Booking, error)
	Create(ctx context.Context, req dto.BookingRequest, actor *models.JWTClaims) (*models.Booking, error)
	Update(ctx context.Context, id string, req dto.BookingRequest, actor *models.JWTClaims) (*models.Booking, error)
	Delete(ctx context.Context, id string, actor *models.JWTClaims) error
}

// BookingHandler exposes booking endpoints. Writes go through the booking guard.
type BookingHandler struct {
	service bookingService
}

// NewBookingHandler constructs the handler.
func NewBookingHandler(svc bookingService) *BookingHandler {
	return &BookingHandler{service: svc}
}

// List godoc
// @Summary List bookings
// @Tags Bookings
// @Produce json
// @Param roomId query int false "Room number"
// @Param enrollmentId query string false "Enrollment ID"
// @Param from query string false "Period start (YYYY-MM-DD)"
// @Param to query string false "Period end (YYYY-MM-DD)"
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /bookings [get]
func (h *BookingHandler) List(c *gin.Context) {
	claims, ok := currentUser(c)
	if !ok {
		return
	}
	var q dto.BookingQuery
	if !bindQuery(c, &q) {
		return
	}
	items, pagination, err := h.service.List(c.Request.Context(), q, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// Get godoc
// @Summary Get booking
// @Tags Bookings
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} response.Envelope
// @Router /bookings/{id} [get]
func (h *BookingHandler) Get(c *gin.Context) {
	claims, ok := currentUser(c)
	if !ok {
		return
	}
	booking, err := h.service.Get(c.Request.Context(), c.Param("id"), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, booking)
}

// Create godoc
// @Summary Create booking
// @Description Rejected with ROOM_UNAVAILABLE, INSUFFICIENT_CAPACITY, LAB_REQUIRED or PENDING_REQUEST_CONFLICT.
// @Tags Bookings
// @Accept json
// @Produce json
// @Param payload body dto.BookingRequest true "Booking payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /bookings [post]
func (h *BookingHandler) Create(c *gin.Context) {
	claims, ok := currentUser(c)
	if !ok {
		return
	}
	var req dto.BookingRequest
	if !bindJSON(c, &req) {
		return
	}
	booking, err := h.service.Create(c.Request.Context(), req, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, booking)
}

// Update godoc
// @Summary Replace booking
// @Tags Bookings
// @Accept json
// @Produce json
// @Param id path string true "Booking ID"
// @Param payload body dto.BookingRequest true "Booking payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /bookings/{id} [put]
func (h *BookingHandler) Update(c *gin.Context) {
	claims, ok := currentUser(c)
	if !ok {
		return
	}
	var req dto.BookingRequest
	if !bindJSON(c, &req) {
		return
	}
	booking, err := h.service.Update(c.Request.Context(), c.Param("id"), req, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, booking)
}

// Delete godoc
// @Summary Delete booking
// @Tags Bookings
// @Param id path string true "Booking ID"
// @Success 204
// @Router /bookings/{id} [delete]
func (h *BookingHandler) Delete(c *gin.Context) {
	claims, ok := currentUser(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), c.Param("id"), claims); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
