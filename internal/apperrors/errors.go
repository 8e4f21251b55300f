package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorType string

const (
	ValidationError          ErrorType = "VALIDATION_ERROR"
	NotFoundError            ErrorType = "NOT_FOUND"
	WeatherUnavailableError  ErrorType = "WEATHER_UNAVAILABLE"
	AdvisoryUnavailableError ErrorType = "ADVISORY_UNAVAILABLE"
	ServiceUnavailableError  ErrorType = "SERVICE_UNAVAILABLE"
	GeolocationError         ErrorType = "GEOLOCATION_ERROR"
	MalformedResponseError   ErrorType = "MALFORMED_RESPONSE"
	ServerError              ErrorType = "SERVER_ERROR"
)

// AppError represents a structured application error
type AppError struct {
	Type       ErrorType `json:"type"`
	Code       string    `json:"code,omitempty"`
	Message    string    `json:"message"`
	Detail     string    `json:"detail,omitempty"`
	HTTPStatus int       `json:"-"`
	Raw        error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Detail)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Raw
}

// Is matches any AppError of the same type, so errors.Is(err, &AppError{Type: NotFoundError})
// works regardless of message.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Type == e.Type
}

// New creates a new AppError
func New(errType ErrorType, message string, detail string) *AppError {
	return &AppError{
		Type:       errType,
		Message:    message,
		Detail:     detail,
		HTTPStatus: getHTTPStatus(errType),
	}
}

// Wrap wraps a raw error with AppError context
func Wrap(err error, errType ErrorType, message string) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{
		Type:       errType,
		Message:    message,
		Detail:     err.Error(),
		HTTPStatus: getHTTPStatus(errType),
		Raw:        err,
	}
}

func NotFound(entity string, id interface{}) *AppError {
	return &AppError{
		Type:       NotFoundError,
		Message:    fmt.Sprintf("%s not found", entity),
		Detail:     fmt.Sprintf("query: %v", id),
		HTTPStatus: http.StatusNotFound,
	}
}

func ValidationFailed(message string, details string) *AppError {
	return New(ValidationError, message, details)
}

func WeatherUnavailable(err error) *AppError {
	return Wrap(err, WeatherUnavailableError, "weather data unavailable")
}

func AdvisoryUnavailable(source string, err error) *AppError {
	return Wrap(err, AdvisoryUnavailableError, source+" unavailable")
}

func Malformed(source string, detail string) *AppError {
	return New(MalformedResponseError, "malformed "+source+" response", detail)
}

// ErrAPIKeyMissing is returned by every provider call when no credential is configured.
var ErrAPIKeyMissing = New(ServiceUnavailableError, "weather service unavailable", "API key not configured")

// TypeOf returns the ErrorType of the first AppError in err's chain, or ServerError.
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return ServerError
}

// Is reports whether any error in err's chain is an AppError of the given type.
func Is(err error, errType ErrorType) bool {
	return errors.Is(err, &AppError{Type: errType})
}

// HTTPStatus resolves the response status for err.
func HTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.HTTPStatus != 0 {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

func getHTTPStatus(errType ErrorType) int {
	switch errType {
	case ValidationError:
		return http.StatusBadRequest
	case NotFoundError:
		return http.StatusNotFound
	case WeatherUnavailableError, MalformedResponseError:
		return http.StatusBadGateway
	case ServiceUnavailableError:
		return http.StatusServiceUnavailable
	case GeolocationError:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
