package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapErrorToHTTP(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"unauthenticated", ErrUnauthenticated, http.StatusUnauthorized, "Unauthorized"},
		{"bad credentials", ErrInvalidCredentials, http.StatusUnauthorized, "Unauthorized"},
		{"forbidden", ErrForbidden, http.StatusForbidden, "Unauthorized"},
		{"wrapped not found", fmt.Errorf("load nota 7: %w", ErrNoteNotFound), http.StatusNotFound, "Nota not found"},
		{"duplicate email", ErrUserAlreadyExists, http.StatusConflict, "The email has already been taken."},
		{"storage permission", fmt.Errorf("%w: /srv/storage", ErrStoragePermission), http.StatusForbidden, ErrStoragePermission.Error()},
		{"decode", ErrImageDecode, http.StatusInternalServerError, ErrImageDecode.Error()},
		{"write", ErrStorageWrite, http.StatusInternalServerError, ErrStorageWrite.Error()},
		{"token", ErrTokenIssue, http.StatusInternalServerError, "Could not create token"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			httpErr := MapErrorToHTTP(tt.err)
			assert.Equal(t, tt.wantStatus, httpErr.StatusCode)
			assert.Equal(t, tt.wantMsg, httpErr.ToErrorResponse().Error)
			assert.Nil(t, httpErr.ToErrorResponse().Messages)
		})
	}
}

func TestMapErrorToHTTP_Validation(t *testing.T) {
	verr := NewValidationError()
	verr.Add("title", "The title field is required.")
	verr.Add("title", "The title must be a string.")

	httpErr := MapErrorToHTTP(fmt.Errorf("create nota: %w", verr))

	assert.Equal(t, http.StatusUnprocessableEntity, httpErr.StatusCode)
	resp := httpErr.ToErrorResponse()
	assert.Equal(t, "The given data was invalid.", resp.Error)
	assert.Len(t, resp.Messages["title"], 2)
	assert.True(t, errors.Is(verr, ErrValidation))
	assert.True(t, verr.HasErrors())
}

func TestMapErrorToHTTP_Nil(t *testing.T) {
	assert.Nil(t, MapErrorToHTTP(nil))
}
