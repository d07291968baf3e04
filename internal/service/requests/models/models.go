package models

import (
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

// PendingRequestResponse запрос, ожидающий ответа исполнителя, с данными бронирования
type PendingRequestResponse struct {
	ID          int64     `json:"id"`
	BookingID   int64     `json:"bookingId"`
	RequestedAt time.Time `json:"requestedAt"`
	ExpiresAt   time.Time `json:"expiresAt"`

	ScheduledAt     time.Time `json:"scheduledAt"`
	LocalDate       string    `json:"localDate"`
	LocalStartTime  string    `json:"localStartTime"`
	Timezone        string    `json:"timezone"`
	DurationMinutes int       `json:"durationMinutes"`
	ServiceName     string    `json:"serviceName"`
	ServiceCategory string    `json:"serviceCategory"`
	ServiceAmount   int64     `json:"serviceAmount"`
	Currency        string    `json:"currency"`
	ClientName      string    `json:"clientName"`
	Address         *string   `json:"address,omitempty"`
	Notes           *string   `json:"notes,omitempty"`
}

// PendingRequestListResponse ответ со списком запросов
type PendingRequestListResponse struct {
	ContractorID int64                    `json:"contractorId"`
	Requests     []PendingRequestResponse `json:"requests"`
}

// FromDomain объединяет запрос и снимок бронирования
func FromDomain(r *domain.BookingRequest, b *domain.Booking) PendingRequestResponse {
	local := b.LocalStart()
	return PendingRequestResponse{
		ID:              r.ID,
		BookingID:       r.BookingID,
		RequestedAt:     r.RequestedAt,
		ExpiresAt:       r.ExpiresAt,
		ScheduledAt:     b.ScheduledAt.UTC(),
		LocalDate:       local.Format(domain.DateFormat),
		LocalStartTime:  local.Format(domain.TimeFormat),
		Timezone:        b.Timezone,
		DurationMinutes: b.DurationMinutes,
		ServiceName:     b.Snapshot.ServiceName,
		ServiceCategory: b.Snapshot.ServiceCategory,
		ServiceAmount:   b.ServiceAmount,
		Currency:        b.Currency,
		ClientName:      b.Snapshot.ClientName,
		Address:         b.Snapshot.Address,
		Notes:           b.Notes,
	}
}
