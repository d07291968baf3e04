package notifier

import "errors"

var (
	// ErrUnknownKind возвращается для неизвестного типа уведомления
	ErrUnknownKind = errors.New("notifier: unknown notification kind")

	// ErrRender возвращается при ошибке рендеринга шаблона
	ErrRender = errors.New("notifier: failed to render template")

	// ErrNotConfigured возвращается, когда канал отправки не настроен
	ErrNotConfigured = errors.New("notifier: sender not configured")

	// ErrSendFailed возвращается при ошибке провайдера
	ErrSendFailed = errors.New("notifier: send failed")
)
