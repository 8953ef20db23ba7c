package availability

import (
	"errors"
	"time"

	"github.com/noah-isme/roomsched-api/internal/models"
)

var (
	ErrInvalidRange    = errors.New("start date must not be after end date")
	ErrEmptyDayBlocks  = errors.New("at least one day block is required")
	ErrMissingDateSpan = errors.New("start and end dates are required")
)

// DateRangesOverlap reports whether the inclusive ranges [a1,b1] and [a2,b2]
// share at least one calendar day. Time of day is ignored.
func DateRangesOverlap(a1, b1, a2, b2 time.Time) bool {
	a1, b1 = models.DateOf(a1), models.DateOf(b1)
	a2, b2 = models.DateOf(a2), models.DateOf(b2)
	return !b1.Before(a2) && !a1.After(b2)
}

// DayBlocksIntersect reports whether some weekday/block pair is in both sets.
// Blocks are atomic: adjacent blocks on the same day do not intersect.
func DayBlocksIntersect(a, b models.DayBlockSet) bool {
	small, large := a, b
	if small.Len() > large.Len() {
		small, large = large, small
	}
	for _, db := range small.Blocks() {
		if large.Contains(db) {
			return true
		}
	}
	return false
}

// ValidateDateRange rejects a range whose start falls after its end.
func ValidateDateRange(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return ErrMissingDateSpan
	}
	if models.DateOf(start).After(models.DateOf(end)) {
		return ErrInvalidRange
	}
	return nil
}

// ValidatePeriod checks a candidate reservation period.
func ValidatePeriod(start, end time.Time, blocks models.DayBlockSet) error {
	if err := ValidateDateRange(start, end); err != nil {
		return err
	}
	if blocks.IsEmpty() {
		return ErrEmptyDayBlocks
	}
	return nil
}
