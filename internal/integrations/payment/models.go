package payment

// Intent платежное намерение провайдера
type Intent struct {
	ID       string `json:"id"`
	Status   string `json:"status"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// Статусы намерения, которые возвращает провайдер
const (
	IntentRequiresCapture = "requires_capture"
	IntentSucceeded       = "succeeded"
	IntentCanceled        = "canceled"
)

// AuthorizeParams параметры авторизации (холдирования) суммы
type AuthorizeParams struct {
	Amount         int64
	Currency       string
	Customer       string
	PaymentMethod  string
	Description    string
	IdempotencyKey string
}

// ErrorResponse модель ошибки провайдера
type ErrorResponse struct {
	Error struct {
		Type        string `json:"type"`
		Code        string `json:"code"`
		DeclineCode string `json:"decline_code"`
		Message     string `json:"message"`
	} `json:"error"`
}
