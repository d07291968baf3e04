package create_booking

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SchedulingService/internal/api/handlers"
	"github.com/m04kA/SMC-SchedulingService/internal/api/middleware"
	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	createBooking "github.com/m04kA/SMC-SchedulingService/internal/usecase/create_booking"
	"github.com/m04kA/SMC-SchedulingService/pkg/logger"
)

type stubUseCase struct {
	got  *createBooking.Request
	resp *createBooking.Response
	err  error
}

func (s *stubUseCase) Execute(_ context.Context, req *createBooking.Request) (*createBooking.Response, error) {
	s.got = req
	return s.resp, s.err
}

const validBody = `{
	"date": "2025-06-02",
	"startTime": "10:00",
	"durationMinutes": 90,
	"timezone": "Europe/Paris",
	"serviceId": 7,
	"serviceName": "Plumbing repair",
	"serviceCategory": "plumbing",
	"amount": 12000,
	"paymentCustomer": "cus_123",
	"paymentMethod": "pm_card_visa",
	"clientName": "Jane Roe",
	"clientEmail": "jane@example.com",
	"clientPhone": "+33612345678",
	"location": {"lat": 48.85, "lng": 2.35}
}`

func newRequest(body string, actor *domain.Actor) *http.Request {
	r := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(body))
	if actor != nil {
		r = r.WithContext(middleware.WithActor(r.Context(), *actor))
	}
	return r
}

func TestHandle_Created(t *testing.T) {
	scheduledAt := time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)
	uc := &stubUseCase{resp: &createBooking.Response{
		ID:              11,
		ClientID:        3,
		ServiceID:       7,
		ScheduledAt:     scheduledAt,
		Timezone:        "Europe/Paris",
		DurationMinutes: 90,
		Status:          "pending",
		PaymentStatus:   "authorized",
		ServiceAmount:   12000,
		Currency:        "eur",
		Requests: []createBooking.RequestSummary{
			{ID: 21, ContractorID: 5, ExpiresAt: scheduledAt.Add(-time.Hour)},
		},
		CreatedAt: scheduledAt.Add(-48 * time.Hour),
	}}
	h := NewHandler(uc, logger.Nop())
	actor := domain.Actor{UserID: 3, Role: domain.RoleClient}

	w := httptest.NewRecorder()
	h.Handle(w, newRequest(validBody, &actor))

	require.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, uc.got)
	assert.Equal(t, actor, uc.got.Actor)
	assert.Nil(t, uc.got.ContractorID)
	assert.Equal(t, "10:00", uc.got.StartTime)
	assert.Equal(t, 90, uc.got.DurationMinutes)
	require.NotNil(t, uc.got.Location)
	assert.InDelta(t, 48.85, uc.got.Location.Lat, 1e-9)

	var body BookingResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, int64(11), body.ID)
	assert.Equal(t, "2025-06-02T08:00:00Z", body.ScheduledAt)
	require.Len(t, body.Requests, 1)
	assert.Equal(t, int64(5), body.Requests[0].ContractorID)
}

func TestHandle_Errors(t *testing.T) {
	actor := domain.Actor{UserID: 3, Role: domain.RoleClient}

	tests := []struct {
		name     string
		body     string
		actor    *domain.Actor
		err      error
		wantCode int
	}{
		{name: "no actor", body: validBody, wantCode: http.StatusUnauthorized},
		{name: "malformed json", body: `{"date":`, actor: &actor, wantCode: http.StatusBadRequest},
		{name: "missing fields", body: `{"date":"2025-06-02"}`, actor: &actor, wantCode: http.StatusBadRequest},
		{
			name:     "slot taken",
			body:     validBody,
			actor:    &actor,
			err:      &createBooking.SlotUnavailableError{Verdict: domain.SlotVerdict{Reason: domain.SlotBookingConflict}},
			wantCode: http.StatusConflict,
		},
		{name: "contractor busy", body: validBody, actor: &actor, err: createBooking.ErrContractorBusy, wantCode: http.StatusConflict},
		{name: "payment declined", body: validBody, actor: &actor, err: createBooking.ErrPaymentDeclined, wantCode: http.StatusPaymentRequired},
		{name: "payment unavailable", body: validBody, actor: &actor, err: createBooking.ErrPaymentUnavailable, wantCode: http.StatusServiceUnavailable},
		{name: "too late", body: validBody, actor: &actor, err: createBooking.ErrTooLateToBook, wantCode: http.StatusBadRequest},
		{name: "not a client", body: validBody, actor: &actor, err: createBooking.ErrAccessDenied, wantCode: http.StatusForbidden},
		{name: "contractor not found", body: validBody, actor: &actor, err: createBooking.ErrContractorNotFound, wantCode: http.StatusNotFound},
		{name: "internal", body: validBody, actor: &actor, err: createBooking.ErrInternal, wantCode: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(&stubUseCase{err: tt.err}, logger.Nop())

			w := httptest.NewRecorder()
			h.Handle(w, newRequest(tt.body, tt.actor))

			assert.Equal(t, tt.wantCode, w.Code)
		})
	}
}

func TestHandle_SlotTakenReportsReason(t *testing.T) {
	uc := &stubUseCase{err: &createBooking.SlotUnavailableError{
		Verdict: domain.SlotVerdict{Reason: domain.SlotBlockedByUnavailability},
	}}
	h := NewHandler(uc, logger.Nop())
	actor := domain.Actor{UserID: 3, Role: domain.RoleClient}

	w := httptest.NewRecorder()
	h.Handle(w, newRequest(validBody, &actor))

	var body handlers.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "blocked_by_unavailability", body.Details["reason"])
}
