package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrRoomNotFound        = fmt.Errorf("room not found")
	ErrRoomAlreadyExists   = fmt.Errorf("room already exists")
	ErrViewerNotFound      = fmt.Errorf("viewer not found")
	ErrViewerAlreadyExists = fmt.Errorf("viewer already exists")
	ErrActionNotAllowed    = fmt.Errorf("action not allowed")
	ErrChangeFilmSeries    = fmt.Errorf("film is not a series")
	ErrOutOfRange          = fmt.Errorf("value out of range")
	ErrConcurrentUpdate    = fmt.Errorf("room was modified concurrently")
	ErrInvalidPayload      = fmt.Errorf("invalid payload")
	ErrInvalidToken        = fmt.Errorf("invalid token")
	ErrWorkerPanic         = fmt.Errorf("worker panic")
	ErrEmptyWords          = fmt.Errorf("no words have been found")
	ErrSinkFull            = fmt.Errorf("sink buffer is full")
)

// MapToHTTPStatus translates a domain or infrastructure error into the status
// code returned to REST and websocket clients.
func MapToHTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrRoomNotFound), errors.Is(err, ErrViewerNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrRoomAlreadyExists),
		errors.Is(err, ErrViewerAlreadyExists),
		errors.Is(err, ErrConcurrentUpdate):
		return http.StatusConflict
	case errors.Is(err, ErrActionNotAllowed):
		return http.StatusForbidden
	case errors.Is(err, ErrChangeFilmSeries),
		errors.Is(err, ErrOutOfRange),
		errors.Is(err, ErrInvalidPayload):
		return http.StatusBadRequest
	case errors.Is(err, ErrInvalidToken):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
