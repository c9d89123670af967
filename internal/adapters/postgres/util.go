package postgres

import (
	"errors"
	"fmt"
	"strings"

	"github.com/abx15/JanSankalp-AI-sub002/internal/domain"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const (
	uniqueViolationCode     = "23505"
	foreignKeyViolationCode = "23503"
)

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolationCode
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}

func isForeignKeyViolation(err error) bool {
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolationCode
}

// translate maps driver errors onto domain errors callers branch on.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domain.ErrNotFound
	case isUniqueViolation(err):
		return fmt.Errorf("%w: %v", domain.ErrConflict, err)
	case isForeignKeyViolation(err):
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	default:
		return fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}
}
