package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/roomsched-api/internal/availability"
	"github.com/noah-isme/roomsched-api/internal/dto"
	"github.com/noah-isme/roomsched-api/internal/models"
	appErrors "github.com/noah-isme/roomsched-api/pkg/errors"
)

type roomRepository interface {
	ListAll(ctx context.Context) ([]models.Room, error)
	List(ctx context.Context, filter models.RoomFilter) ([]models.Room, int, error)
	FindByID(ctx context.Context, id int64) (*models.Room, error)
	Create(ctx context.Context, room *models.Room) error
	Update(ctx context.Context, room *models.Room) error
	Delete(ctx context.Context, id int64) error
}

type roomBookingCounter interface {
	CountByRoom(ctx context.Context, roomID int64) (int, error)
}

type availabilityInvalidator interface {
	Invalidate(ctx context.Context)
}

type noopInvalidator struct{}

func (noopInvalidator) Invalidate(context.Context) {}

// RoomService manages the room inventory.
type RoomService struct {
	repo      roomRepository
	bookings  roomBookingCounter
	cache     availabilityInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewRoomService constructs RoomService.
func NewRoomService(repo roomRepository, bookings roomBookingCounter, cache availabilityInvalidator, validate *validator.Validate, logger *zap.Logger) *RoomService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cache == nil {
		cache = noopInvalidator{}
	}
	return &RoomService{repo: repo, bookings: bookings, cache: cache, validator: validate, logger: logger}
}

// List returns rooms. Attribute predicates are evaluated in memory over the
// building and kind matches, so pagination then happens after filtering.
func (s *RoomService) List(ctx context.Context, q dto.RoomQuery) ([]models.Room, *models.Pagination, error) {
	if err := s.validator.Struct(q); err != nil {
		return nil, nil, validationError(err, "invalid room query")
	}
	attrs := availability.AttributeFilter{MinCapacity: q.MinCapacity, Projector: q.Projector, TV: q.TV, MinComputers: q.MinComputers}
	if attrs.IsZero() {
		rooms, total, err := s.repo.List(ctx, models.RoomFilter{Building: q.Building, Kind: q.Kind, Page: q.Page, PageSize: q.PageSize})
		if err != nil {
			return nil, nil, internalError(err, "failed to list rooms")
		}
		return rooms, paginate(q.Page, q.PageSize, total), nil
	}

	all, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, nil, internalError(err, "failed to list rooms")
	}
	attrs.Kind = q.Kind
	matched := availability.FilterByAttributes(all, attrs)
	if q.Building != "" {
		inBuilding := matched[:0:0]
		for _, r := range matched {
			if strings.EqualFold(r.Building, q.Building) {
				inBuilding = append(inBuilding, r)
			}
		}
		matched = inBuilding
	}
	page := paginate(q.Page, q.PageSize, len(matched))
	from := (page.Page - 1) * page.PageSize
	if from > len(matched) {
		from = len(matched)
	}
	to := from + page.PageSize
	if to > len(matched) {
		to = len(matched)
	}
	return matched[from:to], page, nil
}

// Get returns a room by number.
func (s *RoomService) Get(ctx context.Context, id int64) (*models.Room, error) {
	room, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "room", "load")
	}
	return room, nil
}

// Create registers a new room.
func (s *RoomService) Create(ctx context.Context, req dto.RoomRequest) (*models.Room, error) {
	room, err := s.buildRoom(req)
	if err != nil {
		return nil, err
	}
	if _, err := s.repo.FindByID(ctx, room.ID); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("room %d already exists", room.ID))
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, internalError(err, "failed to check room number")
	}
	if err := s.repo.Create(ctx, room); err != nil {
		return nil, storeError(err, "room", "create")
	}
	s.cache.Invalidate(ctx)
	s.logger.Info("room created", zap.Int64("room_id", room.ID), zap.String("kind", string(room.Kind)))
	return room, nil
}

// Update replaces the attributes of room id. The room number itself never changes.
func (s *RoomService) Update(ctx context.Context, id int64, req dto.RoomRequest) (*models.Room, error) {
	req.ID = id
	room, err := s.buildRoom(req)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, room); err != nil {
		return nil, storeError(err, "room", "update")
	}
	s.cache.Invalidate(ctx)
	return room, nil
}

// Delete removes a room that has no bookings.
func (s *RoomService) Delete(ctx context.Context, id int64) error {
	count, err := s.bookings.CountByRoom(ctx, id)
	if err != nil {
		return internalError(err, "failed to count room bookings")
	}
	if count > 0 {
		return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("room %d still has %d bookings", id, count))
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return storeError(err, "room", "delete")
	}
	s.cache.Invalidate(ctx)
	return nil
}

func (s *RoomService) buildRoom(req dto.RoomRequest) (*models.Room, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid room payload")
	}
	room := &models.Room{
		ID:            req.ID,
		Name:          strings.TrimSpace(req.Name),
		Building:      strings.TrimSpace(req.Building),
		Capacity:      req.Capacity,
		HasProjector:  req.HasProjector,
		HasTV:         req.HasTV,
		Kind:          req.Kind,
		ComputerCount: req.ComputerCount,
	}
	if err := room.Validate(); err != nil {
		return nil, validationError(err, err.Error())
	}
	return room, nil
}
