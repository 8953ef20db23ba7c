package dto

import "github.com/noah-isme/roomsched-api/internal/models"

// ReportRequest captures POST /reports payload.
type ReportRequest struct {
	Type   models.ReportType   `json:"type" validate:"required,oneof=bookings rooms"`
	Format models.ReportFormat `json:"format" validate:"required,oneof=csv pdf xlsx"`
	RoomID *int64              `json:"roomId,omitempty" validate:"omitempty,gt=0"`
	From   *string             `json:"from,omitempty"`
	To     *string             `json:"to,omitempty"`
}

// ReportJobResponse is returned after enqueueing a report.
type ReportJobResponse struct {
	ID       string              `json:"id"`
	Status   models.ReportStatus `json:"status"`
	Progress int                 `json:"progress"`
}

// ReportStatusResponse exposes job progress metadata.
type ReportStatusResponse struct {
	ID        string              `json:"id"`
	Status    models.ReportStatus `json:"status"`
	Progress  int                 `json:"progress"`
	ResultURL *string             `json:"resultUrl,omitempty"`
	Error     *string             `json:"error,omitempty"`
}
