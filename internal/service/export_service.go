package service

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/roomsched-api/internal/models"
	"github.com/noah-isme/roomsched-api/pkg/export"
	"github.com/noah-isme/roomsched-api/pkg/storage"
)

const exportPageSize = 100

type exportRoomSource interface {
	ListAll(ctx context.Context) ([]models.Room, error)
}

type exportBookingSource interface {
	List(ctx context.Context, filter models.BookingFilter) ([]models.BookingDetail, int, error)
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportResult captures successful generation metadata.
type ExportResult struct {
	RelativePath string
	Token        string
	URL          string
	Format       models.ReportFormat
	ExpiresAt    time.Time
}

// ExportService builds schedule datasets and persists rendered files.
type ExportService struct {
	rooms    exportRoomSource
	bookings exportBookingSource
	storage  fileStorage
	signer   *storage.SignedURLSigner
	logger   *zap.Logger
	cfg      ExportConfig
	now      func() time.Time
}

// NewExportService constructs an ExportService.
func NewExportService(rooms exportRoomSource, bookings exportBookingSource, files fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	return &ExportService{
		rooms:    rooms,
		bookings: bookings,
		storage:  files,
		signer:   signer,
		logger:   logger,
		cfg:      cfg,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Generate renders the job's dataset, stores it and signs a download URL.
func (s *ExportService) Generate(ctx context.Context, job *models.ReportJob) (*ExportResult, error) {
	if job == nil {
		return nil, fmt.Errorf("report job is nil")
	}
	format, err := export.ParseFormat(string(job.Params.Format))
	if err != nil {
		return nil, err
	}
	renderer, err := export.NewRenderer(format)
	if err != nil {
		return nil, err
	}
	dataset, err := s.BuildDataset(ctx, job)
	if err != nil {
		return nil, err
	}
	payload, err := renderer.Render(dataset)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", format, err)
	}

	relPath, err := s.storage.Save(s.filename(job, format), payload)
	if err != nil {
		return nil, err
	}
	token, expiresAt, err := s.signer.Generate(job.ID, relPath)
	if err != nil {
		return nil, err
	}
	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}
	s.logger.Debug("report rendered", zap.String("job_id", job.ID), zap.String("path", relPath), zap.Int("bytes", len(payload)))
	return &ExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          fmt.Sprintf("%s/reports/download/%s", prefix, token),
		Format:       job.Params.Format,
		ExpiresAt:    expiresAt,
	}, nil
}

// BuildDataset loads the rows a report job describes.
func (s *ExportService) BuildDataset(ctx context.Context, job *models.ReportJob) (export.Dataset, error) {
	switch job.Type {
	case models.ReportTypeRooms:
		return s.roomDataset(ctx)
	case models.ReportTypeBookings:
		return s.bookingDataset(ctx, job.Params)
	default:
		return export.Dataset{}, fmt.Errorf("unsupported report type %q", job.Type)
	}
}

func (s *ExportService) roomDataset(ctx context.Context) (export.Dataset, error) {
	rooms, err := s.rooms.ListAll(ctx)
	if err != nil {
		return export.Dataset{}, fmt.Errorf("load rooms: %w", err)
	}
	ds := export.Dataset{
		Title:   "Rooms",
		Headers: []string{"Room", "Name", "Building", "Kind", "Capacity", "Projector", "TV", "Computers"},
	}
	for _, r := range rooms {
		computers := ""
		if r.IsLab() {
			computers = strconv.Itoa(r.Computers())
		}
		ds.Rows = append(ds.Rows, map[string]string{
			"Room":      strconv.FormatInt(r.ID, 10),
			"Name":      r.Name,
			"Building":  r.Building,
			"Kind":      string(r.Kind),
			"Capacity":  strconv.Itoa(r.Capacity),
			"Projector": yesNo(r.HasProjector),
			"TV":        yesNo(r.HasTV),
			"Computers": computers,
		})
	}
	return ds, nil
}

func (s *ExportService) bookingDataset(ctx context.Context, params models.ReportJobParams) (export.Dataset, error) {
	filter := models.BookingFilter{RoomID: params.RoomID, PageSize: exportPageSize}
	if params.ProfessorID != nil {
		filter.ProfessorID = *params.ProfessorID
	}
	if params.From != nil {
		from, err := models.ParseDate(*params.From)
		if err != nil {
			return export.Dataset{}, fmt.Errorf("parse from: %w", err)
		}
		filter.From = &from
	}
	if params.To != nil {
		to, err := models.ParseDate(*params.To)
		if err != nil {
			return export.Dataset{}, fmt.Errorf("parse to: %w", err)
		}
		filter.To = &to
	}

	title := "Bookings"
	if params.RoomID != nil {
		title = fmt.Sprintf("Room %d bookings", *params.RoomID)
	}
	ds := export.Dataset{
		Title:   title,
		Headers: []string{"Room", "Course", "Section", "Professor", "Start", "End", "Day blocks"},
	}
	for page := 1; ; page++ {
		filter.Page = page
		items, total, err := s.bookings.List(ctx, filter)
		if err != nil {
			return export.Dataset{}, fmt.Errorf("load bookings: %w", err)
		}
		for _, b := range items {
			ds.Rows = append(ds.Rows, map[string]string{
				"Room":       strconv.FormatInt(b.RoomID, 10),
				"Course":     b.CourseCode + " " + b.CourseName,
				"Section":    b.Section,
				"Professor":  b.ProfessorName,
				"Start":      b.StartDate.Format(models.DateLayout),
				"End":        b.EndDate.Format(models.DateLayout),
				"Day blocks": describeBlocks(b.DayBlocks),
			})
		}
		if len(items) < exportPageSize || page*exportPageSize >= total {
			break
		}
	}
	return ds, nil
}

// ParseToken validates download token metadata.
func (s *ExportService) ParseToken(token string, allowExpired bool) (jobID, relPath string, expiresAt time.Time, err error) {
	return s.signer.Parse(token, allowExpired)
}

// Open returns a handle to the stored file.
func (s *ExportService) Open(relPath string) (*os.File, error) {
	return s.storage.Open(relPath)
}

// Delete removes a stored export file.
func (s *ExportService) Delete(relPath string) error {
	return s.storage.Delete(relPath)
}

// Cleanup removes stored files older than ttl.
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	return s.storage.CleanupOlderThan(ttl)
}

func (s *ExportService) filename(job *models.ReportJob, format export.Format) string {
	return fmt.Sprintf("%s_%s_%s.%s", job.Type, s.now().Format("20060102T150405"), job.ID, format.Extension())
}

// describeBlocks renders "MONDAY: 08:00-10:00, 10:15-12:15; ..." for humans.
func describeBlocks(set models.DayBlockSet) string {
	byDay := set.ByDay()
	parts := make([]string, 0, len(byDay))
	for _, day := range set.Days() {
		spans := make([]string, 0, len(byDay[day]))
		for _, b := range byDay[day] {
			spans = append(spans, b.Start().String()+"-"+b.End().String())
		}
		parts = append(parts, string(day)+": "+strings.Join(spans, ", "))
	}
	return strings.Join(parts, "; ")
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
