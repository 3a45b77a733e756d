package service

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

var (
	ErrNotFound              = errors.New("not found")
	ErrIntegrityViolation    = errors.New("integrity violation")
	ErrEmailTaken            = errors.New("email already registered")
	ErrNotClient             = errors.New("account is not a client of this coach")
	ErrServingChoiceRequired = errors.New("food has several servings; choose one")
)

// MissingDataError reports a serving that cannot be logged.
type MissingDataError struct {
	Food  string
	Field string
}

func (e *MissingDataError) Error() string {
	return fmt.Sprintf("no %s info available for this serving of %q", e.Field, e.Food)
}

func notFound(what string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return fmt.Errorf("lookup %s: %w", what, err)
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "constraint failed: UNIQUE")
}
