package api

import (
	"errors"
	"fmt"
)

// ErrUnavailable marks requests that got no response at all.
var ErrUnavailable = errors.New("no response from server")

// NoResponseMessage is shown when the backend could not be reached.
const NoResponseMessage = "No response from server. Please check your connection."

// APIError is a non-2xx response. Detail is the backend's {"detail"}
// message, empty when the body had none.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("api error %d: %s", e.Status, e.Detail)
	}
	return fmt.Sprintf("api error %d", e.Status)
}

// IsStatus reports whether err is an APIError with the given status.
func IsStatus(err error, status int) bool {
	var ae *APIError
	return errors.As(err, &ae) && ae.Status == status
}

// Describe turns err into the message shown to users: the backend detail
// when present, the connection notice when there was no response, and
// fallback otherwise.
func Describe(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var ae *APIError
	if errors.As(err, &ae) {
		if ae.Detail != "" {
			return ae.Detail
		}
		if fallback == "" {
			return fmt.Sprintf("Server error (%d)", ae.Status)
		}
		return fallback
	}
	if errors.Is(err, ErrUnavailable) {
		return NoResponseMessage
	}
	if fallback == "" {
		return "An unexpected error occurred"
	}
	return fallback
}
