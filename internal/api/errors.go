package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// RequestError is returned for every non-2xx response from the library API.
type RequestError struct {
	Status  int
	Message string
	Errors  ValidationErrors
}

func (e *RequestError) Error() string {
	return e.Message
}

// UserMessage prefers the first field-level validation message over the
// general message.
func (e *RequestError) UserMessage() string {
	if first, ok := e.Errors.First(); ok && first.Message != "" {
		return first.Message
	}
	return e.Message
}

func FallbackMessage(status int) string {
	return fmt.Sprintf("Request failed with status %d", status)
}

func IsUnauthorized(err error) bool {
	return StatusOf(err) == http.StatusUnauthorized
}

// StatusOf returns the HTTP status carried by a RequestError, or 0.
func StatusOf(err error) int {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.Status
	}
	return 0
}

type FieldError struct {
	Field   string
	Message string
}

// ValidationErrors keeps the server's field order so that the "first" entry
// is stable.
type ValidationErrors []FieldError

func (v ValidationErrors) First() (FieldError, bool) {
	if len(v) == 0 {
		return FieldError{}, false
	}
	return v[0], true
}

func (v ValidationErrors) Map() map[string]string {
	if v == nil {
		return nil
	}
	m := make(map[string]string, len(v))
	for _, fe := range v {
		m[fe.Field] = fe.Message
	}
	return m
}

func (v *ValidationErrors) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*v = nil
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("validation errors: expected object, got %v", tok)
	}

	out := ValidationErrors{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := keyTok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		var msg string
		if err := json.Unmarshal(raw, &msg); err != nil {
			msg = string(raw)
		}
		out = append(out, FieldError{Field: key, Message: msg})
	}
	*v = out
	return nil
}

type errorBody struct {
	Message string           `json:"message"`
	Errors  ValidationErrors `json:"errors"`
}

func newRequestError(status int, payload []byte) *RequestError {
	reqErr := &RequestError{Status: status, Message: FallbackMessage(status)}
	if len(payload) == 0 {
		return reqErr
	}

	var body errorBody
	if err := json.Unmarshal(payload, &body); err != nil {
		return reqErr
	}
	if body.Message != "" {
		reqErr.Message = body.Message
	}
	reqErr.Errors = body.Errors
	return reqErr
}
