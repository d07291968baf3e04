package assign_contractor

import (
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

// Request модель запроса на подбор исполнителя
type Request struct {
	Date            time.Time        // Календарная дата слота
	StartTime       string           // "HH:MM"
	EndTime         string           // "HH:MM"
	Timezone        string           // IANA; пустая строка - часовой пояс по умолчанию
	ServiceCategory string           // Категория услуги для бонуса за специализацию
	Location        *domain.GeoPoint // Адрес клиента (только для информации о расстоянии)
}

// Candidate исполнитель с рассчитанным баллом
type Candidate struct {
	ContractorID      int64
	FullName          string
	Email             string
	Phone             *string
	Score             int
	CompletedBookings int
	SpecialtyMatch    bool
	DistanceKm        *float64
}

// Response результат подбора
type Response struct {
	Recommended    Candidate
	Alternatives   []Candidate
	TotalAvailable int
}
