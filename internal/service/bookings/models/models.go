package models

import (
	"errors"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

var (
	// ErrInvalidEvent возвращается при неизвестном событии
	ErrInvalidEvent = errors.New("invalid booking event, expected start, complete or close")
)

// Request модели

// AdvanceStatusRequest запрос на смену статуса бронирования
type AdvanceStatusRequest struct {
	Event string `json:"event"`
}

// ToDomainEvent конвертирует событие API в событие машины состояний
func (r *AdvanceStatusRequest) ToDomainEvent() (domain.BookingEvent, error) {
	switch r.Event {
	case "start":
		return domain.EventStart, nil
	case "complete":
		return domain.EventFinish, nil
	case "close":
		return domain.EventClose, nil
	}
	return "", ErrInvalidEvent
}

// Response модели

// BookingResponse ответ с данными бронирования
type BookingResponse struct {
	ID              int64     `json:"id"`
	ClientID        int64     `json:"clientId"`
	ContractorID    *int64    `json:"contractorId,omitempty"`
	ServiceID       int64     `json:"serviceId"`
	ScheduledAt     time.Time `json:"scheduledAt"`
	LocalDate       string    `json:"localDate"`      // "2025-06-02" в часовом поясе бронирования
	LocalStartTime  string    `json:"localStartTime"` // "10:00"
	Timezone        string    `json:"timezone"`
	DurationMinutes int       `json:"durationMinutes"`
	Status          string    `json:"status"`

	PaymentStatus                 string `json:"paymentStatus"`
	ServiceAmount                 int64  `json:"serviceAmount"`
	Currency                      string `json:"currency"`
	PaymentReconciliationRequired bool   `json:"paymentReconciliationRequired"`

	// Денормализованные данные на момент бронирования
	ClientName      string  `json:"clientName"`
	ClientEmail     string  `json:"clientEmail"`
	ClientPhone     *string `json:"clientPhone,omitempty"`
	ContractorName  *string `json:"contractorName,omitempty"`
	ServiceName     string  `json:"serviceName"`
	ServiceCategory string  `json:"serviceCategory"`
	Address         *string `json:"address,omitempty"`
	Notes           *string `json:"notes,omitempty"`

	CancellationReason *string    `json:"cancellationReason,omitempty"`
	CancelledAt        *time.Time `json:"cancelledAt,omitempty"`
	CompletedAt        *time.Time `json:"completedAt,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// PlanningResponse недельный план исполнителя
type PlanningResponse struct {
	ContractorID int64             `json:"contractorId"`
	WeekStart    string            `json:"weekStart"`
	WeekEnd      string            `json:"weekEnd"`
	Bookings     []BookingResponse `json:"bookings"`
}

// Методы конвертации

// FromDomainBooking конвертирует domain модель в DTO
func FromDomainBooking(b *domain.Booking) *BookingResponse {
	if b == nil {
		return nil
	}

	local := b.LocalStart()
	return &BookingResponse{
		ID:                            b.ID,
		ClientID:                      b.ClientID,
		ContractorID:                  b.ContractorID,
		ServiceID:                     b.ServiceID,
		ScheduledAt:                   b.ScheduledAt.UTC(),
		LocalDate:                     local.Format(domain.DateFormat),
		LocalStartTime:                local.Format(domain.TimeFormat),
		Timezone:                      b.Timezone,
		DurationMinutes:               b.DurationMinutes,
		Status:                        string(b.Status),
		PaymentStatus:                 string(b.PaymentStatus),
		ServiceAmount:                 b.ServiceAmount,
		Currency:                      b.Currency,
		PaymentReconciliationRequired: b.PaymentReconciliationRequired,
		ClientName:                    b.Snapshot.ClientName,
		ClientEmail:                   b.Snapshot.ClientEmail,
		ClientPhone:                   b.Snapshot.ClientPhone,
		ContractorName:                b.Snapshot.ContractorName,
		ServiceName:                   b.Snapshot.ServiceName,
		ServiceCategory:               b.Snapshot.ServiceCategory,
		Address:                       b.Snapshot.Address,
		Notes:                         b.Notes,
		CancellationReason:            b.CancellationReason,
		CancelledAt:                   b.CancelledAt,
		CompletedAt:                   b.CompletedAt,
		CreatedAt:                     b.CreatedAt,
		UpdatedAt:                     b.UpdatedAt,
	}
}

// FromDomainBookingList конвертирует список domain моделей в DTO
func FromDomainBookingList(bookings []*domain.Booking) []BookingResponse {
	resp := make([]BookingResponse, 0, len(bookings))
	for _, b := range bookings {
		if item := FromDomainBooking(b); item != nil {
			resp = append(resp, *item)
		}
	}
	return resp
}
