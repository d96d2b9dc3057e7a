package services

import (
	"errors"
	"net/http"

	"edulab-backend-go/internal/store"
)

// ServiceError carries the HTTP status a failure should map to.
type ServiceError struct {
	Status  int
	Message string
}

func (e ServiceError) Error() string {
	return e.Message
}

func ErrBadRequest(msg string) error {
	return ServiceError{Status: http.StatusBadRequest, Message: msg}
}

func ErrUnauthorized(msg string) error {
	return ServiceError{Status: http.StatusUnauthorized, Message: msg}
}

func ErrForbidden(msg string) error {
	return ServiceError{Status: http.StatusForbidden, Message: msg}
}

func ErrNotFound(msg string) error {
	return ServiceError{Status: http.StatusNotFound, Message: msg}
}

func ErrConflict(msg string) error {
	return ServiceError{Status: http.StatusConflict, Message: msg}
}

func ErrInternal(msg string) error {
	return ServiceError{Status: http.StatusInternalServerError, Message: msg}
}

// storeErr translates store sentinel errors into ServiceErrors. notFound and
// conflict name the entity for the client; anything unclassified becomes a
// plain database error.
func storeErr(err error, notFound, conflict string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return ErrNotFound(notFound)
	case errors.Is(err, store.ErrConflict):
		return ErrConflict(conflict)
	default:
		return ErrInternal("Database error: " + err.Error())
	}
}
