package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// Error is a non-2xx response from the API. Detail carries the
// server's top-level message when one was provided; Fields carries
// field-level validation messages.
type Error struct {
	Status int
	Detail string
	Fields map[string][]string
	Body   []byte
}

func newError(status int, body []byte) *Error {
	e := &Error{Status: status, Body: body}

	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return e
	}

	if raw, ok := payload["detail"]; ok {
		var detail string
		if json.Unmarshal(raw, &detail) == nil {
			e.Detail = detail
		}
		delete(payload, "detail")
	}

	for field, raw := range payload {
		var messages []string
		if json.Unmarshal(raw, &messages) != nil {
			var single string
			if json.Unmarshal(raw, &single) != nil {
				continue
			}
			messages = []string{single}
		}
		if len(messages) == 0 {
			continue
		}
		if e.Fields == nil {
			e.Fields = make(map[string][]string)
		}
		e.Fields[field] = messages
	}

	return e
}

func (e *Error) Error() string {
	if msg := e.Message(); msg != "" {
		return fmt.Sprintf("api: status %d: %s", e.Status, msg)
	}
	return fmt.Sprintf("api: status %d", e.Status)
}

// Message returns the user-visible form of the error: the server's
// detail when present, otherwise a flattened summary of field-level
// validation messages, otherwise "".
func (e *Error) Message() string {
	if e.Detail != "" {
		return e.Detail
	}
	if len(e.Fields) == 0 {
		return ""
	}

	fields := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, strings.Join(e.Fields[field], " ")))
	}
	return strings.Join(parts, "; ")
}

// IsUnauthorized reports whether err is an API authorization failure.
func IsUnauthorized(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}
