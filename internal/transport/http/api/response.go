package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sort"

	"hrms/internal/platform/apperr"
)

type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type Envelope struct {
	Success   bool   `json:"success"`
	Data      any    `json:"data,omitempty"`
	Error     *Error `json:"error,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

// FieldIssue is one entry of a validation failure's details.
type FieldIssue struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func WriteJSON(w http.ResponseWriter, status int, payload Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Warn("write json failed", "err", err)
	}
}

func Success(w http.ResponseWriter, data any, requestID string) {
	WriteJSON(w, http.StatusOK, Envelope{Success: true, Data: data, RequestID: requestID})
}

func Created(w http.ResponseWriter, data any, requestID string) {
	WriteJSON(w, http.StatusCreated, Envelope{Success: true, Data: data, RequestID: requestID})
}

func Fail(w http.ResponseWriter, status int, code, message, requestID string) {
	WriteJSON(w, status, Envelope{Success: false, Error: &Error{Code: code, Message: message}, RequestID: requestID})
}

func FailWithDetails(w http.ResponseWriter, status int, code, message string, details any, requestID string) {
	WriteJSON(w, status, Envelope{Success: false, Error: &Error{Code: code, Message: message, Details: details}, RequestID: requestID})
}

// FailError maps a classified domain error to its status and code. Errors
// without a kind are logged and reported as internal.
func FailError(w http.ResponseWriter, err error, requestID string) {
	appErr, ok := apperr.As(err)
	if !ok {
		slog.Error("unclassified error", "requestId", requestID, "err", err)
		Fail(w, http.StatusInternalServerError, "internal_error", "internal server error", requestID)
		return
	}
	switch appErr.Kind {
	case apperr.KindValidation:
		var details any
		if len(appErr.Fields) > 0 {
			details = map[string]any{"fields": fieldIssues(appErr.Fields)}
		}
		FailWithDetails(w, http.StatusBadRequest, string(appErr.Kind), appErr.Message, details, requestID)
	case apperr.KindRemote:
		slog.Warn("remote call failed", "requestId", requestID, "op", appErr.Message, "err", errors.Unwrap(appErr))
		Fail(w, http.StatusBadGateway, string(appErr.Kind), appErr.Error(), requestID)
	case apperr.KindAuthorization:
		Fail(w, http.StatusForbidden, string(appErr.Kind), appErr.Message, requestID)
	case apperr.KindNotFound:
		Fail(w, http.StatusNotFound, string(appErr.Kind), appErr.Message, requestID)
	case apperr.KindInvalidState:
		Fail(w, http.StatusConflict, string(appErr.Kind), appErr.Message, requestID)
	default:
		Fail(w, http.StatusInternalServerError, "internal_error", appErr.Error(), requestID)
	}
}

func fieldIssues(fields map[string]string) []FieldIssue {
	out := make([]FieldIssue, 0, len(fields))
	for field, reason := range fields {
		out = append(out, FieldIssue{Field: field, Reason: reason})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Field < out[j].Field })
	return out
}
