package refuse_request

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SchedulingService/internal/api/middleware"
	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	transitionRequest "github.com/m04kA/SMC-SchedulingService/internal/usecase/transition_request"
	"github.com/m04kA/SMC-SchedulingService/pkg/logger"
)

type stubUseCase struct {
	got  *transitionRequest.Request
	resp *transitionRequest.Response
	err  error
}

func (s *stubUseCase) Refuse(_ context.Context, req *transitionRequest.Request) (*transitionRequest.Response, error) {
	s.got = req
	return s.resp, s.err
}

func newRequest(id, body string) *http.Request {
	r := httptest.NewRequest(http.MethodPost, "/api/v1/booking-requests/"+id+"/refuse", strings.NewReader(body))
	r = mux.SetURLVars(r, map[string]string{"requestId": id})
	return r.WithContext(middleware.WithActor(r.Context(), domain.Actor{UserID: 5, Role: domain.RoleContractor}))
}

func TestHandle_Refused(t *testing.T) {
	uc := &stubUseCase{resp: &transitionRequest.Response{RequestID: 21, Status: "refused", BookingStatus: "pending"}}
	h := NewHandler(uc, logger.Nop())

	w := httptest.NewRecorder()
	h.Handle(w, newRequest("21", `{"reason":"Занят в это время","message":"Извините"}`))

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, uc.got)
	require.NotNil(t, uc.got.Reason)
	assert.Equal(t, "Занят в это время", *uc.got.Reason)
	require.NotNil(t, uc.got.Message)
	assert.Equal(t, "Извините", *uc.got.Message)
}

func TestHandle_ReasonRequired(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "empty body", body: ""},
		{name: "no reason", body: `{"message":"Извините"}`},
		{name: "blank reason", body: `{"reason":""}`},
		{name: "reason too long", body: `{"reason":"` + strings.Repeat("я", 501) + `"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &stubUseCase{}
			h := NewHandler(uc, logger.Nop())

			w := httptest.NewRecorder()
			h.Handle(w, newRequest("21", tt.body))

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Nil(t, uc.got)
		})
	}
}

func TestHandle_Errors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{name: "not found", err: transitionRequest.ErrRequestNotFound, status: http.StatusNotFound},
		{name: "other contractor", err: transitionRequest.ErrAccessDenied, status: http.StatusForbidden},
		{name: "already handled", err: transitionRequest.ErrRequestNotPending, status: http.StatusConflict},
		{name: "invalid input", err: transitionRequest.ErrInvalidInput, status: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(&stubUseCase{err: tt.err}, logger.Nop())

			w := httptest.NewRecorder()
			h.Handle(w, newRequest("21", `{"reason":"Занят"}`))

			assert.Equal(t, tt.status, w.Code)
		})
	}
}
