// Package shared centralizes JSON response and domain error translation for
// the HTTP handlers, so every endpoint returns the same error envelope.
package shared

import (
	"encoding/json"
	"net/http"

	dErrors "github.com/Soozey/MADAVOLA/pkg/domain-errors"
)

type errorBody struct {
	Error       string `json:"error"`
	Description string `json:"error_description,omitempty"`
}

// WriteJSON writes a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

// WriteError translates a domain error to its HTTP status and envelope.
// Internal errors hide their message from the caller.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	status, token := statusFor(code)

	body := errorBody{Error: token}
	if status < http.StatusInternalServerError {
		body.Description = err.Error()
	}
	WriteJSON(w, status, body)
}

func statusFor(code dErrors.Code) (int, string) {
	switch code {
	case dErrors.CodeValidation:
		return http.StatusBadRequest, "validation_error"
	case dErrors.CodeInvalidInput:
		return http.StatusBadRequest, "invalid_input"
	case dErrors.CodeBadRequest:
		return http.StatusBadRequest, "bad_request"
	case dErrors.CodeUnauthorized:
		return http.StatusUnauthorized, "unauthorized"
	case dErrors.CodeForbidden:
		return http.StatusForbidden, "forbidden"
	case dErrors.CodeNotFound:
		return http.StatusNotFound, "not_found"
	case dErrors.CodeConflict:
		return http.StatusConflict, "conflict"
	case dErrors.CodeTimeout:
		return http.StatusGatewayTimeout, "timeout"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
