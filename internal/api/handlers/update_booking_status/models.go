package update_booking_status

import "github.com/m04kA/SMC-SchedulingService/internal/service/bookings/models"

// UpdateStatusRequest HTTP request model
type UpdateStatusRequest struct {
	Event string `json:"event" validate:"required,oneof=start complete close"`
}

// ToServiceRequest конвертирует HTTP запрос в модель сервиса
func (r *UpdateStatusRequest) ToServiceRequest() *models.AdvanceStatusRequest {
	return &models.AdvanceStatusRequest{Event: r.Event}
}
