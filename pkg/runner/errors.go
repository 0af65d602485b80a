package runner

import (
	"fmt"
)

// TransportError is returned when no HTTP response could be obtained
// from the coordinator. It is retried.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("request to %s failed: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ProtocolError is returned when the coordinator answered with an error
// status or a body that could not be decoded. It is never retried.
type ProtocolError struct {
	StatusCode int
	Err        error
}

func (e *ProtocolError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("coordinator responded with HTTP status %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("coordinator responded with HTTP status %d", e.StatusCode)
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}

// ConfigurationError is returned when a client is constructed with
// missing or invalid settings.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid runner configuration: %s %s", e.Field, e.Reason)
}
