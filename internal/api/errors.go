package api

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Error is a non-2xx answer from the backend.
type Error struct {
	Status    int
	Message   string
	RequestID string
}

func (e *Error) Error() string {
	return e.Message
}

// TransportError means no response was received at all.
type TransportError struct {
	Method string
	Path   string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

type errorBody struct {
	Error string `json:"error"`
}

// newError builds the error for a failed response. The body's "error" field
// wins; anything else falls back to the status code.
func newError(status int, body []byte, requestID string) *Error {
	msg := fmt.Sprintf("Request failed: %d", status)
	var eb errorBody
	if len(body) > 0 && json.Unmarshal(body, &eb) == nil {
		if s := strings.TrimSpace(eb.Error); s != "" {
			msg = s
		}
	}
	return &Error{Status: status, Message: msg, RequestID: requestID}
}
