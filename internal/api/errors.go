package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrTransport matches any failure to get a response at all
	ErrTransport = errors.New("transport failure")

	// ErrMalformedPayload matches responses that do not follow the envelope contract
	ErrMalformedPayload = errors.New("malformed payload")
)

// TransportError wraps a network-level failure
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// StatusError is returned for any non-2xx response
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("%s %s: server error %d: %s", e.Method, e.URL, e.StatusCode, msg)
}

func newStatusError(method, url string, status int, body []byte) *StatusError {
	msg := strings.TrimSpace(string(body))

	// Prefer {"error": "..."} or {"message": "..."} when the server sends one
	var parsed struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &parsed) == nil {
		switch {
		case parsed.Error != "":
			msg = parsed.Error
		case parsed.Message != "":
			msg = parsed.Message
		}
	}

	return &StatusError{Method: method, URL: url, StatusCode: status, Message: msg}
}

// IsNotFound reports whether err is a 404 from the server
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == http.StatusNotFound
}

// IsUnauthorized reports whether the server rejected the credentials
func IsUnauthorized(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == http.StatusUnauthorized
}
