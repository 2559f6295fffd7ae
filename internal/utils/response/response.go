// Package response provides helpers for writing consistent JSON HTTP responses.
//
// Every response body, success or failure, is a types.Result envelope:
//
//	{ "success": false, "message": "Student not found", "data": null }
//
// so API consumers always know what to expect.
package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aanand-mishra/student-records/internal/types"
	"github.com/go-playground/validator/v10"
)

// WriteJSON writes a JSON-encoded response with the given HTTP status code.
//
// IMPORTANT ORDER: Header() → WriteHeader() → body writes.
// Once WriteHeader is called (or the first Write), headers are locked.
func WriteJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// Write sends result with the given status. An encoding failure can't be
// reported to the client any more (the status line is already out), so it
// is only logged.
func Write[T any](w http.ResponseWriter, status int, result types.Result[T]) {
	if err := WriteJSON(w, status, result); err != nil {
		slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
	}
}

// Failure is the envelope for a request rejected before it reached the
// service. Data is always null.
func Failure(message string, err error) types.Result[any] {
	return types.Fail[any](message, nil, err)
}

// InternalError is the envelope for an unexpected fault:
//
//	{ "success": false, "message": "Internal Server Error: <detail>", "data": null }
func InternalError(detail string) types.Result[any] {
	return types.Fail[any]("Internal Server Error: "+detail, nil, errors.New(detail))
}

// ValidationError converts a decode or validation error into a failure
// envelope. Each validator.FieldError becomes one plain English
// sentence; sentences are joined with "; ":
//
//	{ "success": false,
//	  "message": "Validation failed: field name is required; field email must be a valid email address",
//	  "data": null }
func ValidationError(err error) types.Result[any] {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return Failure("Validation failed: "+err.Error(), err)
	}

	messages := make([]string, 0, len(errs))
	for _, e := range errs {
		switch e.ActualTag() {
		case "required":
			messages = append(messages, fmt.Sprintf("field %s is required", e.Field()))
		case "notblank":
			messages = append(messages, fmt.Sprintf("field %s must not be blank", e.Field()))
		case "max":
			messages = append(messages,
				fmt.Sprintf("field %s must be at most %s characters long", e.Field(), e.Param()))
		case "email", "studentemail":
			messages = append(messages,
				fmt.Sprintf("field %s must be a valid email address with a proper domain (e.g., user@example.com)", e.Field()))
		default:
			messages = append(messages, fmt.Sprintf("field %s is invalid", e.Field()))
		}
	}

	return Failure("Validation failed: "+strings.Join(messages, "; "), err)
}
