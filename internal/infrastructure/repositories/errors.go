package repositories

import (
	"errors"
	"strings"

	"gorm.io/gorm"
	domainerrors "payment-broker.backend/internal/domain/errors"
)

// isDuplicateKey covers drivers opened without gorm's TranslateError
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}

func translateError(err error, conflictMessage string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domainerrors.ErrNotFound
	case isDuplicateKey(err):
		return domainerrors.Conflict(conflictMessage)
	default:
		return err
	}
}

func applyPage(q *gorm.DB, limit, offset int) *gorm.DB {
	if limit > 0 {
		q = q.Limit(limit)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}
	return q
}
