package transition_request

import (
	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/integrations/notifier"
	"github.com/m04kA/SMC-SchedulingService/pkg/ptr"
)

func clientRecipient(b *domain.Booking) notifier.Recipient {
	return notifier.Recipient{
		UserID: b.ClientID,
		Name:   b.Snapshot.ClientName,
		Email:  b.Snapshot.ClientEmail,
		Phone:  b.Snapshot.ClientPhone,
	}
}

func contractorRecipient(c *domain.Contractor) notifier.Recipient {
	return notifier.Recipient{
		UserID: c.ID,
		Name:   c.FullName,
		Email:  c.Email,
		Phone:  c.Phone,
	}
}

// payloadFor данные шаблона из снимка бронирования
func payloadFor(b *domain.Booking, br *domain.BookingRequest, message *string) notifier.Payload {
	return notifier.Payload{
		BookingID:      b.ID,
		RequestID:      br.ID,
		ServiceName:    b.Snapshot.ServiceName,
		ScheduledAt:    b.ScheduledAt,
		Timezone:       b.Timezone,
		ClientName:     b.Snapshot.ClientName,
		ContractorName: ptr.Value(b.Snapshot.ContractorName),
		Address:        ptr.Value(b.Snapshot.Address),
		Message:        ptr.Value(message),
		ExpiresAt:      br.ExpiresAt,
	}
}
