package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrNotFound    = errors.New("record not found")
	ErrOverbooking = errors.New("time slot is already taken")
	ErrDuplicate   = errors.New("record already exists")
	// ErrStatusChanged means the row exists but no longer has the expected status.
	ErrStatusChanged = errors.New("record status changed")
)

// mapError translates driver errors into repository sentinels.
// 23P01 is an exclusion constraint violation, 23505 a unique violation.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23P01":
			return ErrOverbooking
		case "23505":
			return ErrDuplicate
		}
	}
	return err
}
