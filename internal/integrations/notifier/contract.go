package notifier

import "context"

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// EmailSender отправка email (SendGrid, SES или заглушка)
type EmailSender interface {
	Send(ctx context.Context, msg EmailMessage) error
}

// SMSSender отправка SMS
type SMSSender interface {
	SendSMS(ctx context.Context, to, body string) error
}
