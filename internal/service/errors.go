package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/nurpe/fleet-rental/internal/repository"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidDateRange   = errors.New("invalid date range")
	ErrInvalidOdometer    = errors.New("invalid odometer reading")
	ErrVehicleUnavailable = errors.New("vehicle unavailable")
	ErrVehicleBusy        = errors.New("vehicle busy")
	ErrClientBlacklisted  = errors.New("client blacklisted")
	ErrAlreadyCompleted   = errors.New("location already completed")
)

// ValidationError carries per-field messages keyed by the JSON field name.
type ValidationError struct {
	Fields map[string]string
}

func newValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "invalid input: " + strings.Join(parts, ", ")
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// storeError translates repository sentinels into service errors.
func storeError(err error, entity string) error {
	if err == nil {
		return nil
	}
	var dup *repository.DuplicateError
	switch {
	case errors.As(err, &dup):
		return newValidationError(dup.Field, "already exists")
	case errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("%w: %s", ErrNotFound, entity)
	}
	return err
}
