package api

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is a non-2xx backend reply. It covers transport-level and HTTP-level
// failures only; negotiation outcomes like "slot taken" are response shapes,
// not errors.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("backend replied %d: %s", e.Status, e.Message)
}

// IsUnauthorized reports whether err is a 401 reply, the backend's signal
// that the stored credential no longer works.
func IsUnauthorized(err error) bool { return hasStatus(err, http.StatusUnauthorized) }

// IsConflict reports whether err is a 409 reply, the backend's signal that
// the addressed resource is no longer in the expected state.
func IsConflict(err error) bool { return hasStatus(err, http.StatusConflict) }

// IsNotFound reports whether err is a 404 reply.
func IsNotFound(err error) bool { return hasStatus(err, http.StatusNotFound) }

func hasStatus(err error, status int) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == status
}
