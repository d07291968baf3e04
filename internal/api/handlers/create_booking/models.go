package create_booking

import (
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	createBooking "github.com/m04kA/SMC-SchedulingService/internal/usecase/create_booking"
)

// LocationRequest координаты адреса
type LocationRequest struct {
	Lat float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lng float64 `json:"lng" validate:"gte=-180,lte=180"`
}

// CreateBookingRequest HTTP request model
type CreateBookingRequest struct {
	ContractorID    *int64 `json:"contractorId,omitempty" validate:"omitempty,gt=0"`
	Date            string `json:"date" validate:"required,datetime=2006-01-02"` // "2025-06-02"
	StartTime       string `json:"startTime" validate:"required,datetime=15:04"` // "10:00"
	DurationMinutes int    `json:"durationMinutes,omitempty" validate:"omitempty,min=15,max=720"`
	Timezone        string `json:"timezone,omitempty" validate:"omitempty,timezone"`

	ServiceID       int64  `json:"serviceId" validate:"required,gt=0"`
	ServiceName     string `json:"serviceName" validate:"required,max=255"`
	ServiceCategory string `json:"serviceCategory" validate:"required,max=100"`
	Amount          int64  `json:"amount" validate:"required,gt=0"`
	Currency        string `json:"currency,omitempty" validate:"omitempty,len=3,alpha"`

	PaymentCustomer string `json:"paymentCustomer" validate:"required,max=255"`
	PaymentMethod   string `json:"paymentMethod" validate:"required,max=255"`

	ClientName  string           `json:"clientName" validate:"required,max=255"`
	ClientEmail string           `json:"clientEmail" validate:"required,email"`
	ClientPhone *string          `json:"clientPhone,omitempty" validate:"omitempty,e164"`
	Address     *string          `json:"address,omitempty" validate:"omitempty,max=500"`
	Location    *LocationRequest `json:"location,omitempty"`
	Notes       *string          `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

// RequestSummaryResponse запрос, отправленный исполнителю
type RequestSummaryResponse struct {
	ID           int64  `json:"id"`
	ContractorID int64  `json:"contractorId"`
	ExpiresAt    string `json:"expiresAt"`
}

// BookingResponse HTTP response model
type BookingResponse struct {
	ID              int64                    `json:"id"`
	ClientID        int64                    `json:"clientId"`
	ServiceID       int64                    `json:"serviceId"`
	ScheduledAt     string                   `json:"scheduledAt"`
	Timezone        string                   `json:"timezone"`
	DurationMinutes int                      `json:"durationMinutes"`
	Status          string                   `json:"status"`
	PaymentStatus   string                   `json:"paymentStatus"`
	ServiceAmount   int64                    `json:"serviceAmount"`
	Currency        string                   `json:"currency"`
	ServiceName     string                   `json:"serviceName"`
	Notes           *string                  `json:"notes,omitempty"`
	Requests        []RequestSummaryResponse `json:"requests"`
	CreatedAt       string                   `json:"createdAt"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateBookingRequest) ToUseCaseRequest(actor domain.Actor) (*createBooking.Request, error) {
	// Формат уже проверен тегом datetime
	date, err := time.Parse(domain.DateFormat, r.Date)
	if err != nil {
		return nil, err
	}

	req := &createBooking.Request{
		Actor:           actor,
		ContractorID:    r.ContractorID,
		Date:            date,
		StartTime:       r.StartTime,
		DurationMinutes: r.DurationMinutes,
		Timezone:        r.Timezone,
		ServiceID:       r.ServiceID,
		ServiceName:     r.ServiceName,
		ServiceCategory: r.ServiceCategory,
		Amount:          r.Amount,
		Currency:        r.Currency,
		PaymentCustomer: r.PaymentCustomer,
		PaymentMethod:   r.PaymentMethod,
		ClientName:      r.ClientName,
		ClientEmail:     r.ClientEmail,
		ClientPhone:     r.ClientPhone,
		Address:         r.Address,
		Notes:           r.Notes,
	}
	if r.Location != nil {
		req.Location = &domain.GeoPoint{Lat: r.Location.Lat, Lng: r.Location.Lng}
	}
	return req, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createBooking.Response) *BookingResponse {
	requests := make([]RequestSummaryResponse, 0, len(resp.Requests))
	for _, r := range resp.Requests {
		requests = append(requests, RequestSummaryResponse{
			ID:           r.ID,
			ContractorID: r.ContractorID,
			ExpiresAt:    r.ExpiresAt.UTC().Format(time.RFC3339),
		})
	}

	return &BookingResponse{
		ID:              resp.ID,
		ClientID:        resp.ClientID,
		ServiceID:       resp.ServiceID,
		ScheduledAt:     resp.ScheduledAt.UTC().Format(time.RFC3339),
		Timezone:        resp.Timezone,
		DurationMinutes: resp.DurationMinutes,
		Status:          resp.Status,
		PaymentStatus:   resp.PaymentStatus,
		ServiceAmount:   resp.ServiceAmount,
		Currency:        resp.Currency,
		ServiceName:     resp.ServiceName,
		Notes:           resp.Notes,
		Requests:        requests,
		CreatedAt:       resp.CreatedAt.UTC().Format(time.RFC3339),
	}
}
