package notifier

import (
	"context"
	"strings"
)

// Notifier рассылает уведомления по доступным каналам получателя.
// Ошибки каналов логируются и не возвращаются вызывающему.
type Notifier struct {
	email EmailSender
	sms   SMSSender
	log   Logger
}

// New создает диспетчер; email и sms могут быть nil
func New(email EmailSender, sms SMSSender, log Logger) *Notifier {
	return &Notifier{email: email, sms: sms, log: log}
}

// Notify отправляет уведомление kind получателю
func (n *Notifier) Notify(ctx context.Context, recipient Recipient, kind Kind, payload Payload) {
	subject, body, err := Render(kind, payload)
	if err != nil {
		n.log.Error("Notify: render kind=%s user_id=%d: %v", kind, recipient.UserID, err)
		return
	}

	if n.email != nil && strings.TrimSpace(recipient.Email) != "" {
		err := n.email.Send(ctx, EmailMessage{
			To:      recipient.Email,
			ToName:  recipient.Name,
			Subject: subject,
			Body:    body,
		})
		if err != nil {
			n.log.Error("Notify: email kind=%s user_id=%d: %v", kind, recipient.UserID, err)
		}
	}

	if n.sms != nil && recipient.Phone != nil && strings.TrimSpace(*recipient.Phone) != "" {
		if err := n.sms.SendSMS(ctx, *recipient.Phone, body); err != nil {
			n.log.Error("Notify: sms kind=%s user_id=%d: %v", kind, recipient.UserID, err)
		}
	}

	n.log.Info("Notify: kind=%s sent to user_id=%d", kind, recipient.UserID)
}
