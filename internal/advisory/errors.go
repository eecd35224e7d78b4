// Package advisory classifies the failures a session reports to the user.
// Every failure becomes one advisory line; none of them ends the session.
package advisory

import (
	"errors"
	"fmt"
	"net/http"
)

// Error categories
const (
	CategoryOffline     = "OFFLINE"
	CategoryNotFound    = "NOT_FOUND"
	CategoryServerError = "SERVER_ERROR"
	CategoryTimeout     = "TIMEOUT"
	CategoryMalformed   = "MALFORMED_DOCUMENT"
	CategoryApplication = "APPLICATION_ERROR"
	CategoryTransport   = "TRANSPORT_ERROR"
)

// OfflineAdvisory is shown when the health check fails
const OfflineAdvisory = "AI Service is currently offline. Please check your connection."

// User-facing messages for each category
var userMessages = map[string]string{
	CategoryOffline:     OfflineAdvisory,
	CategoryNotFound:    "Resource not found",
	CategoryServerError: "Server error occurred",
	CategoryTimeout:     "Request timeout - analysis took too long",
	CategoryMalformed:   "Invalid configuration file",
	CategoryApplication: "Analysis failed",
	CategoryTransport:   "Backend service is not available",
}

// Error is a categorized failure
type Error struct {
	Category   string `json:"category"`
	StatusCode int    `json:"statusCode,omitempty"`
	Message    string `json:"message"`
	Err        error  `json:"-"`
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New returns an Error of the given category. An empty message is replaced
// by the category's user message.
func New(category, message string) *Error {
	if message == "" {
		message = UserMessage(category)
	}
	return &Error{Category: category, Message: message}
}

// Wrap categorizes err, keeping it reachable through errors.Unwrap
func Wrap(category string, err error) *Error {
	e := New(category, "")
	if err != nil {
		e.Message = err.Error()
		e.Err = err
	}
	return e
}

// CategorizeStatus maps an HTTP status code to a category
func CategorizeStatus(statusCode int) string {
	switch statusCode {
	case http.StatusNotFound:
		return CategoryNotFound
	case http.StatusInternalServerError:
		return CategoryServerError
	default:
		return CategoryTransport
	}
}

// FromStatus builds the error for a non-2xx response. 404 and 500 always
// carry their fixed messages; other statuses carry detail when the backend
// sent one.
func FromStatus(statusCode int, detail string) *Error {
	category := CategorizeStatus(statusCode)
	message := UserMessage(category)
	if category == CategoryTransport {
		message = fmt.Sprintf("Request failed with status code %d", statusCode)
		if detail != "" {
			message = detail
		}
	}
	return &Error{Category: category, StatusCode: statusCode, Message: message}
}

// WithPrefix returns a copy of err whose message starts with prefix. The
// category of an *Error is kept; other errors become TRANSPORT_ERROR.
func WithPrefix(prefix string, err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return &Error{Category: e.Category, StatusCode: e.StatusCode, Message: prefix + e.Message, Err: err}
	}
	return &Error{Category: CategoryTransport, Message: prefix + err.Error(), Err: err}
}

// CategoryOf returns the category of err, or "" when err is not categorized
func CategoryOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Category
	}
	return ""
}

// Is reports whether err carries the given category
func Is(err error, category string) bool {
	return err != nil && CategoryOf(err) == category
}

// UserMessage returns the user-facing message for a category
func UserMessage(category string) string {
	if msg, ok := userMessages[category]; ok {
		return msg
	}
	return userMessages[CategoryTransport]
}
