package notifier

import (
	"bytes"
	"fmt"
	"text/template"
	"time"
)

type messageTemplate struct {
	subject string
	body    *template.Template
}

var funcs = template.FuncMap{
	"local": func(t time.Time, tz string) string {
		loc, err := time.LoadLocation(tz)
		if err != nil || tz == "" {
			loc = time.UTC
		}
		return t.In(loc).Format("02.01.2006 15:04")
	},
}

var templates = map[Kind]messageTemplate{
	KindRequestCreated: {
		subject: "Новая заявка на бронирование",
		body: template.Must(template.New("request_created").Funcs(funcs).Parse(
			`Здравствуйте, {{.ContractorName}}! Новая заявка #{{.RequestID}}: {{.ServiceName}}, {{local .ScheduledAt .Timezone}}{{if .Address}}, {{.Address}}{{end}}. Ответьте до {{local .ExpiresAt .Timezone}}.`)),
	},
	KindRequestAccepted: {
		subject: "Заявка принята",
		body: template.Must(template.New("request_accepted").Funcs(funcs).Parse(
			`Вы приняли заявку #{{.RequestID}}: {{.ServiceName}}, {{local .ScheduledAt .Timezone}}. Клиент: {{.ClientName}}.`)),
	},
	KindRequestRefused: {
		subject: "Бронирование отменено",
		body: template.Must(template.New("request_refused").Funcs(funcs).Parse(
			`Здравствуйте, {{.ClientName}}! Бронирование #{{.BookingID}} ({{.ServiceName}}, {{local .ScheduledAt .Timezone}}) не подтверждено исполнителем.{{if .Reason}} Причина: {{.Reason}}.{{end}} Холдирование средств снято.`)),
	},
	KindRequestExpired: {
		subject: "Бронирование не подтверждено",
		body: template.Must(template.New("request_expired").Funcs(funcs).Parse(
			`Здравствуйте, {{.ClientName}}! Исполнитель не ответил на бронирование #{{.BookingID}} ({{.ServiceName}}, {{local .ScheduledAt .Timezone}}) вовремя. Холдирование средств снято.`)),
	},
	KindBookingConfirmed: {
		subject: "Бронирование подтверждено",
		body: template.Must(template.New("booking_confirmed").Funcs(funcs).Parse(
			`Здравствуйте, {{.ClientName}}! Бронирование #{{.BookingID}} подтверждено: {{.ServiceName}}, {{local .ScheduledAt .Timezone}}, исполнитель {{.ContractorName}}.{{if .Message}} Сообщение: {{.Message}}{{end}}`)),
	},
	KindBookingReminder: {
		subject: "Напоминание о бронировании",
		body: template.Must(template.New("booking_reminder").Funcs(funcs).Parse(
			`Напоминание: {{.ServiceName}}, {{local .ScheduledAt .Timezone}}{{if .ContractorName}}, исполнитель {{.ContractorName}}{{end}}. Адрес: {{if .Address}}{{.Address}}{{else}}не указан{{end}}. До встречи!`)),
	},
}

// Render тема и текст уведомления
func Render(kind Kind, payload Payload) (subject, body string, err error) {
	tmpl, ok := templates[kind]
	if !ok {
		return "", "", fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}

	var buf bytes.Buffer
	if err := tmpl.body.Execute(&buf, payload); err != nil {
		return "", "", fmt.Errorf("%w: render %s: %v", ErrRender, kind, err)
	}
	return tmpl.subject, buf.String(), nil
}
