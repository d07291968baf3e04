package domain

import (
	"errors"
	"fmt"
	"time"
)

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	StatusPending               BookingStatus = "pending"
	StatusConfirmed             BookingStatus = "confirmed"
	StatusInProgress            BookingStatus = "in_progress"
	StatusCompletedByContractor BookingStatus = "completed_by_contractor"
	StatusCompleted             BookingStatus = "completed"
	StatusCancelled             BookingStatus = "cancelled"
)

// PaymentStatus represents the state of the payment hold attached to a booking
type PaymentStatus string

const (
	PaymentPending    PaymentStatus = "pending"
	PaymentAuthorized PaymentStatus = "authorized"
	PaymentCaptured   PaymentStatus = "captured"
	PaymentCancelled  PaymentStatus = "cancelled"
	PaymentRefunded   PaymentStatus = "refunded"
)

// BookingEvent drives the booking state machine
type BookingEvent string

const (
	EventConfirm BookingEvent = "confirm"
	EventCancel  BookingEvent = "cancel"
	EventStart   BookingEvent = "start"
	EventFinish  BookingEvent = "finish"
	EventClose   BookingEvent = "close"
)

var (
	ErrIllegalBookingTransition = errors.New("domain: illegal booking status transition")
	ErrPaymentInconsistent      = errors.New("domain: booking and payment status are inconsistent")
)

// bookingTransitions all legal (status, event) pairs
var bookingTransitions = map[BookingStatus]map[BookingEvent]BookingStatus{
	StatusPending: {
		EventConfirm: StatusConfirmed,
		EventCancel:  StatusCancelled,
	},
	StatusConfirmed: {
		EventStart:  StatusInProgress,
		EventCancel: StatusCancelled,
	},
	StatusInProgress: {
		EventFinish: StatusCompletedByContractor,
	},
	StatusCompletedByContractor: {
		EventClose: StatusCompleted,
	},
}

// NextBookingStatus the single transition function of the booking state machine
func NextBookingStatus(current BookingStatus, event BookingEvent) (BookingStatus, error) {
	next, ok := bookingTransitions[current][event]
	if !ok {
		return "", fmt.Errorf("%w: %s on %s", ErrIllegalBookingTransition, event, current)
	}
	return next, nil
}

// BookingSnapshot contact and service data copied at booking time.
// Never refreshed from the live client/contractor/service records.
type BookingSnapshot struct {
	ClientName      string
	ClientEmail     string
	ClientPhone     *string
	ContractorName  *string // filled when a contractor accepts
	ServiceName     string
	ServiceCategory string
	Address         *string
}

// Booking represents an appointment between a client and (eventually) a contractor
type Booking struct {
	ID              int64
	ClientID        int64
	ContractorID    *int64
	ServiceID       int64
	ScheduledAt     time.Time // UTC
	Timezone        string    // IANA, for display
	DurationMinutes int
	Status          BookingStatus

	PaymentStatus                 PaymentStatus
	ServiceAmount                 int64 // minor currency units
	Currency                      string
	PaymentIntentID               *string
	PaymentReconciliationRequired bool

	Snapshot BookingSnapshot
	Notes    *string

	CancellationReason *string
	CancelledAt        *time.Time
	CompletedAt        *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Interval absolute time occupied by the booking
func (b *Booking) Interval() Interval {
	start := b.ScheduledAt.UTC()
	return Interval{Start: start, End: start.Add(time.Duration(b.DurationMinutes) * time.Minute)}
}

// IsActive returns true if the booking still occupies a calendar
func (b *Booking) IsActive() bool {
	return b.Status != StatusCancelled
}

// LocalStart start time in the booking timezone
func (b *Booking) LocalStart() time.Time {
	return b.LocalTime(b.ScheduledAt)
}

// IsParticipant client or assigned contractor
func (b *Booking) IsParticipant(userID int64) bool {
	if b.ClientID == userID {
		return true
	}
	return b.ContractorID != nil && *b.ContractorID == userID
}

// CheckPaymentConsistency verifies status and paymentStatus are jointly valid
func (b *Booking) CheckPaymentConsistency() error {
	ok := true
	switch b.Status {
	case StatusPending:
		ok = b.PaymentStatus == PaymentPending || b.PaymentStatus == PaymentAuthorized
	case StatusConfirmed, StatusInProgress, StatusCompletedByContractor, StatusCompleted:
		ok = b.PaymentStatus == PaymentCaptured
	case StatusCancelled:
		ok = b.PaymentStatus != PaymentCaptured
	}
	if !ok {
		return fmt.Errorf("%w: status=%s payment=%s", ErrPaymentInconsistent, b.Status, b.PaymentStatus)
	}
	return nil
}
