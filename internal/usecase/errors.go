package usecase

import (
	"errors"

	"go-interview-backend/internal/domain"
	"go-interview-backend/pkg/apperror"
)

// mapNotFound converts the repository sentinel into a client-visible 404;
// any other error passes through untouched for the 500 path.
func mapNotFound(err error, message string) error {
	if errors.Is(err, domain.ErrNotFound) {
		return apperror.NotFound(message)
	}
	return err
}

// mapConflict converts the repository sentinel for write-once and status
// races into a client-visible 409.
func mapConflict(err error, message string) error {
	if errors.Is(err, domain.ErrConflict) {
		return apperror.Conflict(message)
	}
	return err
}
