package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/roomsched-api/internal/dto"
	"github.com/noah-isme/roomsched-api/internal/models"
	"github.com/noah-isme/roomsched-api/pkg/response"
)

type changeRequestService interface {
	Create(ctx context.Context, req dto.CreateChangeRequest, actor *models.JWTClaims) (*models.ChangeRequest, error)
	List(ctx context.Context, query dto.ChangeRequestQuery, actor *models.JWTClaims) ([]models.ChangeRequest, error)
	Get(ctx context.Context, id string, actor *models.JWTClaims) (*models.ChangeRequest, error)
	Review(ctx context.Context, id string, req dto.ReviewChangeRequest, actor *models.JWTClaims) (*models.ChangeRequest, error)
}

// ChangeRequestHandler exposes the room change workflow.
type ChangeRequestHandler struct {
	service changeRequestService
}

// NewChangeRequestHandler constructs the handler.
func NewChangeRequestHandler(svc changeRequestService) *ChangeRequestHandler {
	return &ChangeRequestHandler{service: svc}
}

// Create godoc
// @Summary Submit a room change request
// @Tags Change Requests
// @Accept json
// @Produce json
// @Param payload body dto.CreateChangeRequest true "Change request payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /change-requests [post]
func (h *ChangeRequestHandler) Create(c *gin.Context) {
	claims, ok := currentUser(c)
	if !ok {
		return
	}
	var req dto.CreateChangeRequest
	if !bindJSON(c, &req) {
		return
	}
	request, err := h.service.Create(c.Request.Context(), req, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, request)
}

// List godoc
// @Summary List change requests
// @Description Professors only see their own requests.
// @Tags Change Requests
// @Produce json
// @Param status query string false "Comma separated statuses"
// @Param bookingId query string false "Booking ID"
// @Param targetRoomId query int false "Target room number"
// @Param limit query int false "Limit"
// @Param offset query int false "Offset"
// @Success 200 {object} response.Envelope
// @Router /change-requests [get]
func (h *ChangeRequestHandler) List(c *gin.Context) {
	claims, ok := currentUser(c)
	if !ok {
		return
	}
	query := dto.ChangeRequestQuery{
		BookingID: strings.TrimSpace(c.Query("bookingId")),
	}
	if rawStatus := c.Query("status"); rawStatus != "" {
		for _, part := range strings.Split(rawStatus, ",") {
			part = strings.ToUpper(strings.TrimSpace(part))
			if part == "" {
				continue
			}
			query.Status = append(query.Status, models.ChangeRequestStatus(part))
		}
	}
	if raw := c.Query("targetRoomId"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			query.TargetRoomID = &id
		}
	}
	query.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "50"))
	query.Offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))

	requests, err := h.service.List(c.Request.Context(), query, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, requests, nil)
}

// Get godoc
// @Summary Get change request
// @Tags Change Requests
// @Produce json
// @Param id path string true "Change request ID"
// @Success 200 {object} response.Envelope
// @Router /change-requests/{id} [get]
func (h *ChangeRequestHandler) Get(c *gin.Context) {
	claims, ok := currentUser(c)
	if !ok {
		return
	}
	request, err := h.service.Get(c.Request.Context(), c.Param("id"), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, request)
}

// Review godoc
// @Summary Approve or reject a change request
// @Description Approval re-runs the booking guard and applies the move.
// @Tags Change Requests
// @Accept json
// @Produce json
// @Param id path string true "Change request ID"
// @Param payload body dto.ReviewChangeRequest true "Review decision"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /change-requests/{id}/review [post]
func (h *ChangeRequestHandler) Review(c *gin.Context) {
	claims, ok := currentUser(c)
	if !ok {
		return
	}
	var req dto.ReviewChangeRequest
	if !bindJSON(c, &req) {
		return
	}
	request, err := h.service.Review(c.Request.Context(), c.Param("id"), req, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, request)
}
