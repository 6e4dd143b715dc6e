package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/srgjo27/class_booking/internal/core/domain"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// statusFor maps an error class to the HTTP status clients see.
func statusFor(class domain.ErrorClass) int {
	switch class {
	case domain.ClassValidation:
		return http.StatusBadRequest
	case domain.ClassNotFound:
		return http.StatusNotFound
	case domain.ClassBusinessRule:
		return http.StatusUnprocessableEntity
	case domain.ClassConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (h *BookingHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	class := domain.ClassOf(err)
	status := statusFor(class)

	body := errorResponse{Error: string(domain.ReasonOf(err)), Message: err.Error()}
	if status == http.StatusInternalServerError {
		h.log.Error().Err(err).
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("path", r.URL.Path).
			Msg("request failed")
		body = errorResponse{Error: "internal_error", Message: "internal server error"}
	}

	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
