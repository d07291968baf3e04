package notifier

import (
	"context"
	"fmt"
	"time"
)

// Settings выбор провайдеров email и SMS
type Settings struct {
	EmailProvider string // sendgrid, ses, log
	SMSProvider   string // twilio, log
	FromEmail     string
	FromName      string

	SendGridAPIKey string
	SESRegion      string

	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFrom       string
	Timeout          time.Duration
}

// NewFromSettings собирает диспетчер с выбранными провайдерами
func NewFromSettings(ctx context.Context, s Settings, log Logger) (*Notifier, error) {
	var email EmailSender
	switch s.EmailProvider {
	case "sendgrid":
		email = NewSendGridSender(s.SendGridAPIKey, s.FromEmail, s.FromName)
	case "ses":
		sender, err := NewSESSender(ctx, s.SESRegion, s.FromEmail, s.FromName)
		if err != nil {
			return nil, err
		}
		email = sender
	case "", "log":
		email = NewLogSender(log)
	default:
		return nil, fmt.Errorf("%w: unknown email provider %q", ErrNotConfigured, s.EmailProvider)
	}

	var sms SMSSender
	switch s.SMSProvider {
	case "twilio":
		sms = NewTwilioSender(s.TwilioAccountSID, s.TwilioAuthToken, s.TwilioFrom, s.Timeout)
	case "", "log":
		sms = NewLogSender(log)
	default:
		return nil, fmt.Errorf("%w: unknown sms provider %q", ErrNotConfigured, s.SMSProvider)
	}

	log.Info("Notifier: email=%s sms=%s", s.EmailProvider, s.SMSProvider)
	return New(email, sms, log), nil
}
