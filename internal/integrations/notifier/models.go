package notifier

import "time"

// Kind тип уведомления
type Kind string

const (
	KindRequestCreated   Kind = "request_created"
	KindRequestAccepted  Kind = "request_accepted"
	KindRequestRefused   Kind = "request_refused"
	KindRequestExpired   Kind = "request_expired"
	KindBookingConfirmed Kind = "booking_confirmed"
	KindBookingReminder  Kind = "booking_reminder"
)

// Recipient получатель уведомления
type Recipient struct {
	UserID int64
	Name   string
	Email  string
	Phone  *string
}

// Payload данные для шаблона уведомления
type Payload struct {
	BookingID      int64
	RequestID      int64
	ServiceName    string
	ScheduledAt    time.Time
	Timezone       string
	ClientName     string
	ContractorName string
	Address        string
	Reason         string
	Message        string
	ExpiresAt      time.Time
}

// EmailMessage письмо
type EmailMessage struct {
	To      string
	ToName  string
	Subject string
	Body    string
}
