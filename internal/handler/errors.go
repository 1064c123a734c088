package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/labstack/echo/v4"

	apperrors "notas/internal/errors"
)

// httpError converts a service error into the echo error the router renders.
// The original error is kept as the internal cause for the request log.
func httpError(err error) error {
	mapped := apperrors.MapErrorToHTTP(err)
	return echo.NewHTTPError(mapped.StatusCode, mapped.ToErrorResponse()).SetInternal(err)
}

// bindError reports a JSON value of the wrong type as a validation failure
// on that field. Anything else is a malformed body.
func bindError(err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		field := typeErr.Field
		if i := strings.LastIndex(field, "."); i >= 0 {
			field = field[i+1:]
		}
		verr := apperrors.NewValidationError()
		verr.Add(field, fmt.Sprintf("The %s must be a %s.", strings.ReplaceAll(field, "_", " "), typeName(typeErr.Type)))
		return httpError(verr)
	}
	return echo.NewHTTPError(http.StatusBadRequest, "invalid request body").SetInternal(err)
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "valid value"
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "integer"
	default:
		return t.Kind().String()
	}
}
