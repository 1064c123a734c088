package errors

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

var (
	// ErrUnauthenticated is returned when no valid session credential is present.
	ErrUnauthenticated = errors.New("Unauthorized")
	// ErrInvalidCredentials is returned when email or password do not match a user.
	ErrInvalidCredentials = errors.New("Unauthorized")
	// ErrForbidden is returned when the caller does not own the requested nota.
	ErrForbidden = errors.New("Unauthorized")
	// ErrNoteNotFound is returned when a nota id has no backing record.
	ErrNoteNotFound = errors.New("nota not found")
	// ErrUserNotFound is returned when a user id has no backing record.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserAlreadyExists is returned when the email is already registered.
	ErrUserAlreadyExists = errors.New("The email has already been taken.")
	// ErrValidation is matched by every *ValidationError.
	ErrValidation = errors.New("The given data was invalid.")
	// ErrImageDecode is returned when an image payload is not valid base64.
	ErrImageDecode = errors.New("could not decode image")
	// ErrStoragePermission is returned when the blob destination is not writable.
	ErrStoragePermission = errors.New("storage directory is not writable")
	// ErrStorageWrite is returned when writing a blob fails.
	ErrStorageWrite = errors.New("could not store image")
	// ErrTokenIssue is returned when a credential cannot be signed.
	ErrTokenIssue = errors.New("Could not create token")
)

// ValidationError carries per-field failure reasons.
type ValidationError struct {
	Messages map[string][]string
}

// NewValidationError returns an empty ValidationError ready for Add.
func NewValidationError() *ValidationError {
	return &ValidationError{Messages: make(map[string][]string)}
}

// Add records a reason for field.
func (e *ValidationError) Add(field, reason string) {
	e.Messages[field] = append(e.Messages[field], reason)
}

// HasErrors reports whether any field failed.
func (e *ValidationError) HasErrors() bool {
	return len(e.Messages) > 0
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Messages))
	for f := range e.Messages {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fmt.Sprintf("%s (%s)", ErrValidation.Error(), strings.Join(fields, ", "))
}

// Is makes errors.Is(err, ErrValidation) match.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error    string              `json:"error"`
	Messages map[string][]string `json:"messages,omitempty"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Messages   map[string][]string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error:    e.Message,
		Messages: e.Messages,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors. Wrapped errors are
// matched with errors.Is, so callers may annotate with %w freely.
func MapErrorToHTTP(err error) *HTTPError {
	var verr *ValidationError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &verr):
		httpErr := NewHTTPError(http.StatusUnprocessableEntity, ErrValidation.Error())
		httpErr.Messages = verr.Messages
		return httpErr
	case errors.Is(err, ErrUnauthenticated), errors.Is(err, ErrInvalidCredentials):
		return NewHTTPError(http.StatusUnauthorized, "Unauthorized")
	case errors.Is(err, ErrForbidden):
		return NewHTTPError(http.StatusForbidden, "Unauthorized")
	case errors.Is(err, ErrNoteNotFound):
		return NewHTTPError(http.StatusNotFound, "Nota not found")
	case errors.Is(err, ErrUserNotFound):
		return NewHTTPError(http.StatusNotFound, "User not found")
	case errors.Is(err, ErrUserAlreadyExists):
		return NewHTTPError(http.StatusConflict, ErrUserAlreadyExists.Error())
	case errors.Is(err, ErrStoragePermission):
		return NewHTTPError(http.StatusForbidden, ErrStoragePermission.Error())
	case errors.Is(err, ErrImageDecode):
		return NewHTTPError(http.StatusInternalServerError, ErrImageDecode.Error())
	case errors.Is(err, ErrStorageWrite):
		return NewHTTPError(http.StatusInternalServerError, ErrStorageWrite.Error())
	case errors.Is(err, ErrTokenIssue):
		return NewHTTPError(http.StatusInternalServerError, ErrTokenIssue.Error())
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
}
