package transition_request

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

// validateReason причина отказа обязательна
func validateReason(reason *string) error {
	if reason == nil || strings.TrimSpace(*reason) == "" {
		return fmt.Errorf("%w: reason is required", ErrInvalidInput)
	}
	if utf8.RuneCountInString(*reason) > domain.MaxReasonLength {
		return fmt.Errorf("%w: reason exceeds %d characters", ErrInvalidInput, domain.MaxReasonLength)
	}
	return nil
}

func validateMessage(message *string) error {
	if message != nil && utf8.RuneCountInString(*message) > domain.MaxContractorMessageSize {
		return fmt.Errorf("%w: message exceeds %d characters", ErrInvalidInput, domain.MaxContractorMessageSize)
	}
	return nil
}

func toResponse(br *domain.BookingRequest, b *domain.Booking) *Response {
	var respondedAt *time.Time
	if br.RespondedAt != nil {
		t := br.RespondedAt.UTC()
		respondedAt = &t
	}
	return &Response{
		RequestID:     br.ID,
		BookingID:     br.BookingID,
		ContractorID:  br.ContractorID,
		Status:        string(br.Status),
		RespondedAt:   respondedAt,
		BookingStatus: string(b.Status),
		PaymentStatus: string(b.PaymentStatus),
	}
}
