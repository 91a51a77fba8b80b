package kabinet

import (
	"errors"
	"fmt"
)

var (
	// ErrStructureNotFound means the page no longer has the expected shape.
	ErrStructureNotFound = errors.New("expected page structure not found")
	// ErrNotAuthenticated means the portal served a login page instead of the requested one.
	ErrNotAuthenticated = errors.New("portal session is not authenticated")
)

// TransportError is a non-2xx status or a network failure on a call-fatal request.
type TransportError struct {
	Endpoint string
	// Status is 0 when the request never got a response.
	Status int
	Cause  error
}

func (e *TransportError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Endpoint, e.Cause)
	}
	return fmt.Sprintf("%s: HTTP error! status: %d", e.Endpoint, e.Status)
}

func (e *TransportError) Unwrap() error {
	return e.Cause
}

// DetailFetchError is the failure of a single course's detail request.
type DetailFetchError struct {
	LessonId string
	Status   int
	Cause    error
}

func (e *DetailFetchError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch detail of lesson %s: %v", e.LessonId, e.Cause)
	}
	return fmt.Sprintf("fetch detail of lesson %s: HTTP error! status: %d", e.LessonId, e.Status)
}

func (e *DetailFetchError) Unwrap() error {
	return e.Cause
}
