package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind classifies gateway failures.
type Kind string

const (
	// KindNetwork means no HTTP response was received. Status is always 0.
	KindNetwork Kind = "network"
	// KindHTTP means the backend answered with a status >= 400.
	KindHTTP Kind = "http"
	// KindValidation means the call was rejected client-side before any request was sent.
	KindValidation Kind = "validation"
)

// ErrNoConvocation is returned when a candidature has no interview invitation.
var ErrNoConvocation = errors.New("convocation not found")

// Error is the normalized failure returned by every gateway call.
type Error struct {
	Kind    Kind              `json:"kind"`
	Status  int               `json:"status"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
	Err     error             `json:"-"`
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindNetwork:
		if e.Err != nil {
			return fmt.Sprintf("gateway: network error: %v", e.Err)
		}
		return "gateway: network error"
	case KindValidation:
		return fmt.Sprintf("gateway: validation failed: %s", e.Message)
	default:
		return fmt.Sprintf("gateway: http %d: %s", e.Status, e.Message)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// StatusOf returns the HTTP status carried by err, or 0 when there is none.
func StatusOf(err error) int {
	var gwErr *Error
	if errors.As(err, &gwErr) {
		return gwErr.Status
	}
	return 0
}

// IsUnauthorized reports whether the backend rejected the token.
func IsUnauthorized(err error) bool {
	return StatusOf(err) == http.StatusUnauthorized
}

// IsForbidden reports whether the backend refused the action for this role.
func IsForbidden(err error) bool {
	return StatusOf(err) == http.StatusForbidden
}

// IsValidation reports whether err was raised before any request was sent.
func IsValidation(err error) bool {
	var gwErr *Error
	return errors.As(err, &gwErr) && gwErr.Kind == KindValidation
}

// IsNetwork reports whether err is a transport failure.
func IsNetwork(err error) bool {
	var gwErr *Error
	return errors.As(err, &gwErr) && gwErr.Kind == KindNetwork
}

func networkError(err error) *Error {
	return &Error{Kind: KindNetwork, Status: 0, Message: "backend unreachable", Err: err}
}

func tooLarge(path string) *Error {
	return &Error{
		Kind:    KindHTTP,
		Status:  http.StatusBadGateway,
		Message: "response too large",
		Err:     fmt.Errorf("%s response exceeds %d bytes", path, maxResponseBytes),
	}
}

func invalid(field, rule, message string) *Error {
	return &Error{
		Kind:    KindValidation,
		Message: message,
		Fields:  map[string]string{field: rule},
	}
}

type errorPayload struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func httpError(status int, body []byte) *Error {
	e := &Error{Kind: KindHTTP, Status: status}

	trimmed := strings.TrimSpace(string(body))
	if json.Valid(body) && trimmed != "" {
		e.Data = json.RawMessage(append([]byte(nil), body...))
		var parsed errorPayload
		if err := json.Unmarshal(body, &parsed); err == nil {
			e.Message = firstNonEmpty(parsed.Message, parsed.Error)
		} else {
			var text string
			if err := json.Unmarshal(body, &text); err == nil {
				e.Message = text
			}
		}
	} else if trimmed != "" {
		const maxMessage = 512
		if len(trimmed) > maxMessage {
			trimmed = trimmed[:maxMessage]
		}
		e.Message = trimmed
	}

	if e.Message == "" {
		e.Message = http.StatusText(status)
	}
	return e
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// UserMessage renders err for display next to the list or form that failed.
func UserMessage(err error) string {
	var gwErr *Error
	if !errors.As(err, &gwErr) {
		return "Something went wrong. Please try again."
	}
	if gwErr.Kind == KindNetwork {
		return "The server could not be reached."
	}
	return gwErr.Message
}
