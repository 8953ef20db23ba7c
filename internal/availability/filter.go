package availability

import "github.com/noah-isme/roomsched-api/internal/models"

// AttributeFilter holds optional room predicates. A nil field does not filter.
type AttributeFilter struct {
	MinCapacity  *int
	Projector    *bool
	TV           *bool
	MinComputers *int
	Kind         *models.RoomKind
}

// IsZero reports whether no predicate is set.
func (f AttributeFilter) IsZero() bool {
	return f.MinCapacity == nil && f.Projector == nil && f.TV == nil && f.MinComputers == nil && f.Kind == nil
}

// Matches evaluates every non-nil predicate. MinComputers only applies to labs.
func (f AttributeFilter) Matches(r models.Room) bool {
	if f.MinCapacity != nil && r.Capacity < *f.MinCapacity {
		return false
	}
	if f.Projector != nil && r.HasProjector != *f.Projector {
		return false
	}
	if f.TV != nil && r.HasTV != *f.TV {
		return false
	}
	if f.Kind != nil && r.Kind != *f.Kind {
		return false
	}
	if f.MinComputers != nil && r.IsLab() && r.Computers() < *f.MinComputers {
		return false
	}
	return true
}

// FilterByAttributes returns the rooms matching f, preserving order.
// With no predicates set the input slice is returned as is.
func FilterByAttributes(rooms []models.Room, f AttributeFilter) []models.Room {
	if f.IsZero() {
		return rooms
	}
	out := make([]models.Room, 0, len(rooms))
	for _, r := range rooms {
		if f.Matches(r) {
			out = append(out, r)
		}
	}
	return out
}
