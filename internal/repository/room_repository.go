package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/roomsched-api/internal/models"
)

const roomColumns = `id, name, building, capacity, has_projector, has_tv, kind, computer_count, created_at, updated_at`

// RoomRepository persists the room inventory.
type RoomRepository struct {
	db *sqlx.DB
}

// NewRoomRepository constructs the repository.
func NewRoomRepository(db *sqlx.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

// ListAll returns every room ordered by room number.
func (r *RoomRepository) ListAll(ctx context.Context) ([]models.Room, error) {
	query := fmt.Sprintf(`SELECT %s FROM rooms ORDER BY id`, roomColumns)
	var rooms []models.Room
	if err := r.db.SelectContext(ctx, &rooms, query); err != nil {
		return nil, fmt.Errorf("list all rooms: %w", err)
	}
	return rooms, nil
}

// List returns a page of rooms with total count.
func (r *RoomRepository) List(ctx context.Context, filter models.RoomFilter) ([]models.Room, int, error) {
	var (
		conditions []string
		args       []interface{}
	)
	if filter.Building != "" {
		args = append(args, filter.Building)
		conditions = append(conditions, fmt.Sprintf("building = $%d", len(args)))
	}
	if filter.Kind != nil {
		args = append(args, *filter.Kind)
		conditions = append(conditions, fmt.Sprintf("kind = $%d", len(args)))
	}
	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	page, size := normalisePage(filter.Page, filter.PageSize)
	listQuery := fmt.Sprintf("SELECT %s FROM rooms%s ORDER BY id LIMIT %d OFFSET %d", roomColumns, where, size, (page-1)*size)

	var rooms []models.Room
	if err := r.db.SelectContext(ctx, &rooms, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list rooms: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM rooms"+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count rooms: %w", err)
	}
	return rooms, total, nil
}

// FindByID returns a room by its number.
func (r *RoomRepository) FindByID(ctx context.Context, id int64) (*models.Room, error) {
	query := fmt.Sprintf(`SELECT %s FROM rooms WHERE id = $1`, roomColumns)
	var room models.Room
	if err := r.db.GetContext(ctx, &room, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find room: %w", err)
	}
	return &room, nil
}

// Create inserts a room. The caller supplies the room number.
func (r *RoomRepository) Create(ctx context.Context, room *models.Room) error {
	now := time.Now().UTC()
	room.CreatedAt = now
	room.UpdatedAt = now
	const query = `INSERT INTO rooms (id, name, building, capacity, has_projector, has_tv, kind, computer_count, created_at, updated_at)
	VALUES (:id, :name, :building, :capacity, :has_projector, :has_tv, :kind, :computer_count, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, room); err != nil {
		return constraintError("create room", err)
	}
	return nil
}

// Update overwrites the mutable room attributes.
func (r *RoomRepository) Update(ctx context.Context, room *models.Room) error {
	room.UpdatedAt = time.Now().UTC()
	const query = `UPDATE rooms SET name = :name, building = :building, capacity = :capacity, has_projector = :has_projector,
	has_tv = :has_tv, kind = :kind, computer_count = :computer_count, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, room)
	if err != nil {
		return fmt.Errorf("update room: %w", err)
	}
	return expectAffected(res, "update room")
}

// Delete removes a room.
func (r *RoomRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM rooms WHERE id = $1`, id)
	if err != nil {
		return constraintError("delete room", err)
	}
	return expectAffected(res, "delete room")
}
