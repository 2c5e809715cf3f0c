package toggl

import (
	"errors"
	"fmt"
)

// ErrNoRunningEntry is returned by StopRunningEntry when nothing is being
// tracked. No stop request is sent in that case.
var ErrNoRunningEntry = errors.New("toggl: no running time entry")

// ErrInvalidEntryID is returned for non-positive time entry ids.
var ErrInvalidEntryID = errors.New("toggl: time entry id must be positive")

// ConfigurationError reports a missing or malformed credential at client
// construction time.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("toggl: %s is required", e.Field)
	}
	return fmt.Sprintf("toggl: invalid %s: %s", e.Field, e.Reason)
}

// TransportError reports a network failure or a non-2xx response.
// StatusCode is zero when no response was received; Body is capped at 4 KiB.
type TransportError struct {
	Op         string
	StatusCode int
	Body       string
	Err        error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("toggl: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("toggl: %s: unexpected status %d: %s", e.Op, e.StatusCode, e.Body)
}

func (e *TransportError) Unwrap() error { return e.Err }

// DecodeError reports a response body that does not match the expected
// record shape.
type DecodeError struct {
	Op  string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("toggl: %s: decode response: %v", e.Op, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
