package create_booking

import (
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

// Request модель запроса на создание бронирования
type Request struct {
	Actor        domain.Actor // Клиент, создающий бронирование
	ContractorID *int64       // Выбранный исполнитель; nil - подбор по баллу

	Date            time.Time // Календарная дата слота (без времени)
	StartTime       string    // "HH:MM" в часовом поясе Timezone
	DurationMinutes int       // Длительность услуги
	Timezone        string    // IANA; пустая строка - часовой пояс по умолчанию

	ServiceID       int64  // ID услуги
	ServiceName     string // Название услуги (снимок)
	ServiceCategory string // Категория для бонуса за специализацию
	Amount          int64  // Сумма в минимальных единицах валюты
	Currency        string // ISO 4217, по умолчанию eur

	PaymentCustomer string // ID клиента у платежного провайдера
	PaymentMethod   string // Платежный метод

	ClientName  string           // Контакты клиента (снимок)
	ClientEmail string           //
	ClientPhone *string          //
	Address     *string          // Адрес оказания услуги (снимок)
	Location    *domain.GeoPoint // Координаты адреса (для расстояния)
	Notes       *string          // Дополнительные заметки
}

// RequestSummary созданный запрос исполнителю
type RequestSummary struct {
	ID           int64
	ContractorID int64
	ExpiresAt    time.Time
}

// Response модель ответа с созданным бронированием
type Response struct {
	ID              int64
	ClientID        int64
	ServiceID       int64
	ScheduledAt     time.Time
	Timezone        string
	DurationMinutes int
	Status          string
	PaymentStatus   string
	ServiceAmount   int64
	Currency        string
	ServiceName     string
	Notes           *string
	Requests        []RequestSummary
	CreatedAt       time.Time
}
