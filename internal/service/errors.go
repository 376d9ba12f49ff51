package service

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

var (
	ErrValidation           = errors.New("validation")              // 400
	ErrInvalidCode          = errors.New("invalid or expired code") // 400
	ErrUnauthorized         = errors.New("unauthorized")            // 401
	ErrForbidden            = errors.New("forbidden")               // 403
	ErrNotFound             = errors.New("not found")               // 404
	ErrConflict             = errors.New("conflict")                // 409
	ErrInsufficientStock    = errors.New("insufficient stock")      // 409
	ErrPrescriptionRequired = errors.New("prescription required")   // 422
	ErrTooManyRequests      = errors.New("too many requests")       // 429
	ErrUnavailable          = errors.New("service unavailable")     // 503
)

// notFound turns a missing row into ErrNotFound and passes other errors through.
func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, what)
	}
	return err
}

func duplicate(err error, what string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %s already exists", ErrConflict, what)
	}
	return err
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

var fields = validator.New()

// optionalURL accepts "" so PATCH requests can clear a link.
func optionalURL(name, v string) error {
	if v == "" {
		return nil
	}
	if err := fields.Var(v, "url"); err != nil {
		return fmt.Errorf("%w: %s must be a valid URL", ErrValidation, name)
	}
	return nil
}
