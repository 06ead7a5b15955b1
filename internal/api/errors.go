package api

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrNetwork      = errors.New("network error")
	ErrTimeout      = errors.New("request timeout")
	ErrUnauthorized = errors.New("unauthorized")
)

// APIError is the only error shape that leaves this package for responses
// the server actually produced. Status is the HTTP status code, Message a
// user-facing string, Fields the 422 validation payload when present.
type APIError struct {
	Status  int
	Message string
	Fields  map[string][]string
}

func (e *APIError) Error() string {
	return e.Message
}

// FieldMessages flattens 422 field errors into a single user-facing string,
// fields in name order, messages joined with ", ".
func (e *APIError) FieldMessages() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	var msgs []string
	for _, name := range names {
		msgs = append(msgs, e.Fields[name]...)
	}
	return strings.Join(msgs, ", ")
}

// StatusOf extracts the HTTP status carried by err, or 0 for errors that
// never reached the server (network failures, timeouts).
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// IsNetworkError reports whether err is a transport-level failure rather
// than a server response. The session layer keeps cached state on these.
func IsNetworkError(err error) bool {
	if errors.Is(err, ErrNetwork) || errors.Is(err, ErrTimeout) {
		return true
	}
	msg := strings.ToLower(errMsg(err))
	return strings.Contains(msg, "network error") || strings.Contains(msg, "timeout")
}

func errMsg(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
