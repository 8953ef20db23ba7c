package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// Constraint violations surfaced to services.
var (
	ErrDuplicate = errors.New("record already exists")
	ErrInUse     = errors.New("record is still referenced")
)

func normalisePage(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 20
	}
	return page, size
}

// expectAffected turns a zero-row write into sql.ErrNoRows so services can report NotFound.
func expectAffected(res sql.Result, op string) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", op, err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// constraintError maps postgres unique and foreign key violations onto
// ErrDuplicate and ErrInUse, keeping the driver error in the chain.
func constraintError(op string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505":
			return fmt.Errorf("%s: %w: %w", op, ErrDuplicate, err)
		case "23503":
			return fmt.Errorf("%s: %w: %w", op, ErrInUse, err)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
