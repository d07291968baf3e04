package check_slot

import "time"

// Request модель запроса на проверку слота
type Request struct {
	ContractorID int64     // ID исполнителя
	Date         time.Time // Календарная дата слота (без времени)
	StartTime    string    // "HH:MM" в часовом поясе Timezone
	EndTime      string    // "HH:MM" в часовом поясе Timezone
	Timezone     string    // IANA; пустая строка - часовой пояс по умолчанию
}

// Response модель ответа с результатом проверки
type Response struct {
	ContractorID int64
	Date         time.Time
	StartTime    string
	EndTime      string
	Timezone     string
	Available    bool
	Reason       string
	PeriodID     *int64 // период недоступности, блокирующий слот
	BookingID    *int64 // бронирование, пересекающееся со слотом
}
