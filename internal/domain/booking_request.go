package domain

import (
	"errors"
	"fmt"
	"time"
)

// RequestStatus статус запроса исполнителю
type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestAccepted RequestStatus = "accepted"
	RequestRefused  RequestStatus = "refused"
	RequestExpired  RequestStatus = "expired"
)

// IsTerminal из терминального статуса переходов нет
func (s RequestStatus) IsTerminal() bool {
	return s == RequestAccepted || s == RequestRefused || s == RequestExpired
}

// RequestAction действие исполнителя или системы над pending запросом
type RequestAction string

const (
	ActionAccept RequestAction = "accept"
	ActionRefuse RequestAction = "refuse"
	ActionExpire RequestAction = "expire"
)

var (
	ErrRequestNotPending = errors.New("domain: booking request is no longer pending")
	ErrRequestExpired    = errors.New("domain: booking request has expired")
	ErrRequestNotExpired = errors.New("domain: booking request has not expired yet")
	ErrUnknownAction     = errors.New("domain: unknown booking request action")
	ErrInvalidRequestTTL = errors.New("domain: booking request ttl must be positive")
)

// BookingRequest предложение бронирования одному исполнителю
type BookingRequest struct {
	ID                int64
	BookingID         int64
	ContractorID      int64
	Status            RequestStatus
	RequestedAt       time.Time
	ExpiresAt         time.Time
	RespondedAt       *time.Time
	RefusalReason     *string
	ContractorMessage *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewBookingRequest создает pending запрос, истекающий через ttl
func NewBookingRequest(bookingID, contractorID int64, now time.Time, ttl time.Duration) (*BookingRequest, error) {
	if ttl <= 0 {
		return nil, ErrInvalidRequestTTL
	}
	return &BookingRequest{
		BookingID:    bookingID,
		ContractorID: contractorID,
		Status:       RequestPending,
		RequestedAt:  now.UTC(),
		ExpiresAt:    now.UTC().Add(ttl),
	}, nil
}

// IsExpiredAt now >= ExpiresAt
func (r *BookingRequest) IsExpiredAt(now time.Time) bool {
	return !now.Before(r.ExpiresAt)
}

// Transition единственная функция переходов запроса.
// r не изменяется, результат сохраняется условным UPDATE.
func (r *BookingRequest) Transition(action RequestAction, now time.Time) (RequestStatus, error) {
	if r.Status != RequestPending {
		return "", fmt.Errorf("%w: status=%s", ErrRequestNotPending, r.Status)
	}

	switch action {
	case ActionAccept:
		if r.IsExpiredAt(now) {
			return "", fmt.Errorf("%w: expired at %s", ErrRequestExpired, r.ExpiresAt.Format(time.RFC3339))
		}
		return RequestAccepted, nil
	case ActionRefuse:
		return RequestRefused, nil
	case ActionExpire:
		if !r.IsExpiredAt(now) {
			return "", fmt.Errorf("%w: expires at %s", ErrRequestNotExpired, r.ExpiresAt.Format(time.RFC3339))
		}
		return RequestExpired, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}
}
