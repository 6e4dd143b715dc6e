package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/srgjo27/class_booking/internal/core/domain"
	"github.com/srgjo27/class_booking/internal/core/services"
)

const maxBodyBytes = 1 << 20

type BookingHandler struct {
	svc *services.BookingService
	log zerolog.Logger
}

func NewBookingHandler(svc *services.BookingService, log zerolog.Logger) *BookingHandler {
	return &BookingHandler{svc: svc, log: log}
}

func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req services.CreateBookingRequest
	if err := decodeJSON(r, &req, false); err != nil {
		h.writeError(w, r, err)
		return
	}

	resp, err := h.svc.CreateBooking(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

func (h *BookingHandler) ConfirmBooking(w http.ResponseWriter, r *http.Request) {
	var payment services.PaymentConfirmation
	if err := decodeJSON(r, &payment, true); err != nil {
		h.writeError(w, r, err)
		return
	}

	resp, err := h.svc.ConfirmBooking(r.Context(), chi.URLParam(r, "id"), payment)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *BookingHandler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	resp, err := h.svc.CancelBooking(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *BookingHandler) GetBooking(w http.ResponseWriter, r *http.Request) {
	resp, err := h.svc.GetBooking(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *BookingHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	resp, err := h.svc.SessionStatus(r.Context(), sessionKeyFromQuery(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *BookingHandler) GetSessionOccupancy(w http.ResponseWriter, r *http.Request) {
	resp, err := h.svc.SessionOccupancy(r.Context(), sessionKeyFromQuery(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

type closeSessionRequest struct {
	Date      string           `json:"date"`
	TimeSlot  string           `json:"time_slot"`
	ClassType domain.ClassType `json:"class_type"`
}

func (h *BookingHandler) CloseSession(w http.ResponseWriter, r *http.Request) {
	var req closeSessionRequest
	if err := decodeJSON(r, &req, false); err != nil {
		h.writeError(w, r, err)
		return
	}

	key := domain.SessionKey{
		Date:      strings.TrimSpace(req.Date),
		TimeSlot:  strings.TrimSpace(req.TimeSlot),
		ClassType: domain.ClassType(strings.ToUpper(strings.TrimSpace(string(req.ClassType)))),
	}
	resp, err := h.svc.CloseSession(r.Context(), key)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func sessionKeyFromQuery(r *http.Request) domain.SessionKey {
	q := r.URL.Query()
	return domain.SessionKey{
		Date:      strings.TrimSpace(q.Get("date")),
		TimeSlot:  strings.TrimSpace(q.Get("time_slot")),
		ClassType: domain.ClassType(strings.ToUpper(strings.TrimSpace(q.Get("class_type")))),
	}
}

// decodeJSON reads a single JSON object. With allowEmpty set, an empty body
// leaves v untouched.
func decodeJSON(r *http.Request, v any, allowEmpty bool) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		if allowEmpty && errors.Is(err, io.EOF) {
			return nil
		}
		return errors.Join(domain.ErrInvalidRequest, errors.New("invalid json body: "+err.Error()))
	}
	return nil
}
