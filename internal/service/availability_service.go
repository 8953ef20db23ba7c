package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/roomsched-api/internal/availability"
	"github.com/noah-isme/roomsched-api/internal/dto"
	"github.com/noah-isme/roomsched-api/internal/models"
)

const (
	availabilityCachePrefix  = "availability:"
	availabilityCachePattern = availabilityCachePrefix + "*"
)

type availabilityRoomStore interface {
	ListAll(ctx context.Context) ([]models.Room, error)
}

type availabilityBookingStore interface {
	ListOverlapping(ctx context.Context, start, end time.Time) ([]models.Booking, error)
}

// AvailabilityService answers "which rooms are free" from a fresh store snapshot.
type AvailabilityService struct {
	rooms     availabilityRoomStore
	bookings  availabilityBookingStore
	cache     *CacheService
	cacheTTL  time.Duration
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAvailabilityService wires the dependencies. cache and metrics may be nil.
func NewAvailabilityService(rooms availabilityRoomStore, bookings availabilityBookingStore, cache *CacheService, cacheTTL time.Duration, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *AvailabilityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AvailabilityService{rooms: rooms, bookings: bookings, cache: cache, cacheTTL: cacheTTL, metrics: metrics, validator: validate, logger: logger}
}

// FindAvailableRooms resolves the query string form, then filters by bookings and attributes.
func (s *AvailabilityService) FindAvailableRooms(ctx context.Context, q dto.AvailabilityQuery) (*dto.AvailabilityResponse, error) {
	if err := s.validator.Struct(q); err != nil {
		return nil, validationError(err, "invalid availability query")
	}
	blocks, err := models.ParseDayBlocks(q.Slots)
	if err != nil {
		return nil, validationError(err, "slots must look like MONDAY:MORNING_1,WEDNESDAY:NIGHT_2")
	}
	query, err := parsePeriod(q.Start, q.End, blocks)
	if err != nil {
		return nil, err
	}
	filter := availability.AttributeFilter{
		MinCapacity:  q.MinCapacity,
		Projector:    q.Projector,
		TV:           q.TV,
		MinComputers: q.MinComputers,
		Kind:         q.Kind,
	}

	key := availabilityCacheKey(query, filter)
	var cached dto.AvailabilityResponse
	if s.cache.Get(ctx, key, &cached) {
		cached.Cached = true
		return &cached, nil
	}

	free, err := s.Available(ctx, query)
	if err != nil {
		return nil, err
	}
	resp := &dto.AvailabilityResponse{
		Start:     query.Start.Format(models.DateLayout),
		End:       query.End.Format(models.DateLayout),
		DayBlocks: blocks,
		Rooms:     availability.FilterByAttributes(free, filter),
	}
	s.cache.Set(ctx, key, resp, s.cacheTTL)
	return resp, nil
}

// Available returns every room with no booking clashing with q. It never reads the cache.
func (s *AvailabilityService) Available(ctx context.Context, q availability.Query) ([]models.Room, error) {
	start := time.Now()
	rooms, err := s.rooms.ListAll(ctx)
	if err != nil {
		return nil, internalError(err, "failed to load rooms")
	}
	bookings, err := s.bookings.ListOverlapping(ctx, q.Start, q.End)
	if err != nil {
		return nil, internalError(err, "failed to load bookings")
	}
	free := availability.AvailableRooms(rooms, bookings, q)
	s.metrics.ObserveAvailability(time.Since(start))
	s.logger.Debug("availability computed",
		zap.Int("rooms", len(rooms)),
		zap.Int("bookings", len(bookings)),
		zap.Int("free", len(free)),
	)
	return free, nil
}

// Invalidate drops every cached availability answer.
func (s *AvailabilityService) Invalidate(ctx context.Context) {
	s.cache.Invalidate(ctx, availabilityCachePattern)
}

func availabilityCacheKey(q availability.Query, f availability.AttributeFilter) string {
	parts := []string{
		q.Start.Format(models.DateLayout),
		q.End.Format(models.DateLayout),
		q.DayBlocks.String(),
		"cap=" + optionalInt(f.MinCapacity),
		"proj=" + optionalBool(f.Projector),
		"tv=" + optionalBool(f.TV),
		"pc=" + optionalInt(f.MinComputers),
	}
	kind := "*"
	if f.Kind != nil {
		kind = string(*f.Kind)
	}
	parts = append(parts, "kind="+kind)
	return availabilityCachePrefix + strings.Join(parts, "|")
}

func optionalInt(v *int) string {
	if v == nil {
		return "*"
	}
	return strconv.Itoa(*v)
}

func optionalBool(v *bool) string {
	if v == nil {
		return "*"
	}
	return fmt.Sprintf("%t", *v)
}
