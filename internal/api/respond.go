package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/hackgods/interview-scheduling/internal/auth"
	"github.com/hackgods/interview-scheduling/internal/scheduling"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, details string) {
	writeJSON(w, status, ErrorResponse{Error: code, Details: details})
}

var statusByCode = map[string]int{
	scheduling.CodeInvalidRequest:    http.StatusBadRequest,
	scheduling.CodeInvalidWindow:     http.StatusBadRequest,
	scheduling.CodePastDate:          http.StatusBadRequest,
	scheduling.CodeInvalidDate:       http.StatusBadRequest,
	scheduling.CodeDuplicateSlot:     http.StatusBadRequest,
	scheduling.CodeSlotUnavailable:   http.StatusBadRequest,
	scheduling.CodeAlreadyFinalized:  http.StatusBadRequest,
	scheduling.CodeNotFound:          http.StatusNotFound,
	scheduling.CodeForbidden:         http.StatusForbidden,
	scheduling.CodeRetryable:         http.StatusServiceUnavailable,
	scheduling.CodeInconsistentState: http.StatusInternalServerError,
	scheduling.CodeInternal:          http.StatusInternalServerError,
}

// Details shown to callers. Wrapped driver errors never reach the client.
var messageByCode = map[string]string{
	scheduling.CodeInvalidWindow:     scheduling.ErrInvalidWindow.Error(),
	scheduling.CodePastDate:          scheduling.ErrPastDate.Error(),
	scheduling.CodeInvalidDate:       scheduling.ErrInvalidDate.Error(),
	scheduling.CodeDuplicateSlot:     scheduling.ErrDuplicateSlot.Error(),
	scheduling.CodeSlotUnavailable:   scheduling.ErrSlotUnavailable.Error(),
	scheduling.CodeAlreadyFinalized:  scheduling.ErrAlreadyFinalized.Error(),
	scheduling.CodeForbidden:         scheduling.ErrForbidden.Error(),
	scheduling.CodeRetryable:         scheduling.ErrRetryable.Error(),
	scheduling.CodeInconsistentState: "booking failed and needs operator attention",
	scheduling.CodeInternal:          "internal server error",
}

func notFoundMessage(err error) string {
	switch {
	case errors.Is(err, scheduling.ErrSlotNotFound):
		return scheduling.ErrSlotNotFound.Error()
	case errors.Is(err, scheduling.ErrInterviewerNotFound):
		return scheduling.ErrInterviewerNotFound.Error()
	default:
		return scheduling.ErrInterviewNotFound.Error()
	}
}

// handleDomainError maps a scheduling error to its HTTP status and body.
func handleDomainError(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	code := scheduling.Code(err)
	status := statusByCode[code]

	var details string
	switch code {
	case scheduling.CodeInvalidRequest:
		details = err.Error()
	case scheduling.CodeNotFound:
		details = notFoundMessage(err)
	default:
		details = messageByCode[code]
	}

	fields := []zap.Field{
		zap.String("request_id", GetRequestID(r.Context())),
		zap.String("code", code),
		zap.Error(err),
	}
	switch {
	case status >= http.StatusInternalServerError && code != scheduling.CodeRetryable:
		log.Error("request failed", fields...)
	case code == scheduling.CodeRetryable:
		log.Warn("request failed", fields...)
	default:
		log.Debug("request rejected", fields...)
	}

	writeError(w, status, code, details)
}

func writeAuthError(w http.ResponseWriter, err error) {
	if errors.Is(err, auth.ErrMissingToken) {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}
	writeError(w, http.StatusUnauthorized, "unauthorized", "invalid or expired token")
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: could not parse JSON body", scheduling.ErrInvalidInput)
	}
	return nil
}
