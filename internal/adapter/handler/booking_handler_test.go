package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/srgjo27/class_booking/internal/adapter/repository/memory"
	"github.com/srgjo27/class_booking/internal/core/domain"
	"github.com/srgjo27/class_booking/internal/core/services"
	"github.com/srgjo27/class_booking/internal/platform/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validBooking = `{"time_slot":"10:00","date":"2030-06-01","class_type":"NORMAL","language":"en",
	"adults":2,"children":1,"currency":"USD","customer_name":"Ada","customer_email":"ada@example.com",
	"customer_phone":"+34600000000"}`

func newTestRouter(t *testing.T, cfg RouterConfig) http.Handler {
	t.Helper()

	catalog := memory.NewCatalog()
	catalog.AddLanguage("en")
	catalog.AddSlot(domain.SlotDefinition{ClassType: domain.ClassTypeNormal, StartTime: "10:00"})
	catalog.SetCapacity(domain.CapacityRule{ClassType: domain.ClassTypeNormal, MinCapacity: 1, MaxCapacity: 8})
	catalog.SetPrice(domain.PriceRule{ClassType: domain.ClassTypeNormal, Currency: "USD", Category: domain.CategoryAdult, UnitPrice: 1000})
	catalog.SetPrice(domain.PriceRule{ClassType: domain.ClassTypeNormal, Currency: "USD", Category: domain.CategoryChild, UnitPrice: 500})

	svc, err := services.NewBookingService(&services.Config{
		Store:        memory.NewStore(),
		Catalog:      catalog,
		Clock:        clock.NewManual(time.Date(2030, 6, 1, 8, 0, 0, 0, time.UTC)),
		Logger:       zerolog.Nop(),
		Location:     time.UTC,
		Window:       domain.RegistrationWindow{CloseBeforeStart: 30, FinalRegistrationClose: 15},
		HoldDuration: 10 * time.Minute,
	})
	require.NoError(t, err)

	return NewRouter(NewBookingHandler(svc, zerolog.Nop()), cfg, zerolog.Nop())
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestBookingLifecycle(t *testing.T) {
	h := newTestRouter(t, RouterConfig{})

	rec := do(t, h, http.MethodPost, "/bookings", validBooking)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[services.BookingResponse](t, rec)
	assert.Equal(t, "PENDING", created.Status)
	assert.Equal(t, int64(2500), created.TotalPrice)

	rec = do(t, h, http.MethodGet, "/bookings/"+created.BookingID, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodPost, "/bookings/"+created.BookingID+"/confirm", `{"provider":"paypal","reference":"PAY-1"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "CONFIRMED", decode[services.BookingResponse](t, rec).Status)

	rec = do(t, h, http.MethodPost, "/bookings/"+created.BookingID+"/confirm", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "already_confirmed", decode[errorResponse](t, rec).Error)

	rec = do(t, h, http.MethodGet, "/sessions?date=2030-06-01&time_slot=10:00&class_type=normal", "")
	require.Equal(t, http.StatusOK, rec.Code)
	status := decode[services.SessionStatusResponse](t, rec)
	assert.Equal(t, 3, status.TotalParticipants)
	assert.Equal(t, 5, status.Remaining)

	rec = do(t, h, http.MethodGet, "/sessions/occupancy?date=2030-06-01&time_slot=10:00&class_type=NORMAL", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[services.OccupancyResponse](t, rec).Registrations, 1)

	rec = do(t, h, http.MethodPost, "/sessions/close", `{"date":"2030-06-01","time_slot":"10:00","class_type":"NORMAL"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodPost, "/bookings", validBooking)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "session_closed", decode[errorResponse](t, rec).Error)
}

func TestErrorStatusMapping(t *testing.T) {
	h := newTestRouter(t, RouterConfig{})

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
		code   string
	}{
		{"malformed json", http.MethodPost, "/bookings", `{"adults":`, http.StatusBadRequest, "invalid_request"},
		{"unknown field", http.MethodPost, "/bookings", `{"seats":["A1"]}`, http.StatusBadRequest, "invalid_request"},
		{"validation", http.MethodPost, "/bookings", strings.Replace(validBooking, `"USD"`, `"US"`, 1), http.StatusBadRequest, "invalid_currency"},
		{"unknown slot", http.MethodPost, "/bookings", strings.Replace(validBooking, `"10:00"`, `"11:00"`, 1), http.StatusNotFound, "slot_not_found"},
		{"capacity", http.MethodPost, "/bookings", strings.Replace(validBooking, `"adults":2`, `"adults":9`, 1), http.StatusUnprocessableEntity, "capacity_exceeded"},
		{"bad id", http.MethodGet, "/bookings/nope", "", http.StatusBadRequest, "invalid_request"},
		{"missing booking", http.MethodPost, "/bookings/3f1c9a5e-0000-4000-8000-000000000001/cancel", "", http.StatusNotFound, "registration_not_found"},
		{"missing session", http.MethodGet, "/sessions/occupancy?date=2030-06-01&time_slot=10:00&class_type=NORMAL", "", http.StatusNotFound, "session_not_found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.Equal(t, tt.code, decode[errorResponse](t, rec).Error)
		})
	}
}

func TestBookingRateLimit(t *testing.T) {
	h := newTestRouter(t, RouterConfig{BookingRateLimit: 1, BookingRateWindow: time.Minute})

	rec := do(t, h, http.MethodPost, "/bookings", validBooking)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, h, http.MethodPost, "/bookings", validBooking)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	assert.Equal(t, "rate_limit_exceeded", decode[errorResponse](t, rec).Error)

	// Reads are not limited.
	rec = do(t, h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestRouter(t, RouterConfig{})

	do(t, h, http.MethodPost, "/bookings", validBooking)

	rec := do(t, h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "class_booking_outcomes_total")
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, statusFor(domain.ClassValidation))
	assert.Equal(t, http.StatusNotFound, statusFor(domain.ClassNotFound))
	assert.Equal(t, http.StatusUnprocessableEntity, statusFor(domain.ClassBusinessRule))
	assert.Equal(t, http.StatusConflict, statusFor(domain.ClassConflict))
	assert.Equal(t, http.StatusInternalServerError, statusFor(domain.ClassInfrastructure))
}
