package common

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/bolsatrabajo/api/internal/apperror"
)

// WriteJSON serializes payload to JSON with status and logs on failure.
func WriteJSON(logger *log.Logger, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil && logger != nil {
		logger.Printf("JSON encode failed: %v", err)
	}
}

// ErrorBody is the JSON shape of every 4xx/5xx response.
type ErrorBody struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

// StatusFor maps an error kind to its HTTP status. Duplicates are reported as
// 400 so clients see the same status as any other rejected submission.
func StatusFor(err error) int {
	switch apperror.KindOf(err) {
	case apperror.KindValidation, apperror.KindDuplicate:
		return http.StatusBadRequest
	case apperror.KindAuthentication:
		return http.StatusUnauthorized
	case apperror.KindAuthorization:
		return http.StatusForbidden
	case apperror.KindNotFound:
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// WriteError writes err as {error: code}. Validation details are echoed back;
// authorization and not-found failures carry the code only. Internal errors
// are logged with the request id and answered with a generic body.
func WriteError(logger *log.Logger, w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		if logger != nil {
			logger.Printf("request failed id=%s %s %s: %v", middleware.GetReqID(r.Context()), r.Method, r.URL.Path, err)
		}
		WriteJSON(logger, w, status, ErrorBody{Error: "InternalError"})
		return
	}

	body := ErrorBody{Error: apperror.CodeOf(err)}
	if apperror.KindOf(err) == apperror.KindValidation {
		var appErr *apperror.Error
		if errors.As(err, &appErr) {
			body.Detail = appErr.Detail
		}
	}
	WriteJSON(logger, w, status, body)
}
