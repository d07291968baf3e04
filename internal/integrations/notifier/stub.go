package notifier

import "context"

// LogSender пишет письма и SMS в лог вместо отправки (провайдер не настроен)
type LogSender struct {
	log Logger
}

// NewLogSender создает заглушку
func NewLogSender(log Logger) *LogSender {
	return &LogSender{log: log}
}

// Send логирует письмо
func (s *LogSender) Send(_ context.Context, msg EmailMessage) error {
	s.log.Info("LogSender: email to=%s subject=%q", msg.To, msg.Subject)
	return nil
}

// SendSMS логирует SMS
func (s *LogSender) SendSMS(_ context.Context, to, body string) error {
	s.log.Info("LogSender: sms to=%s len=%d", to, len(body))
	return nil
}
