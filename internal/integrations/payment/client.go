package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("smc.scheduling.integrations.payment")

// Client клиент платежного провайдера (PaymentIntents с ручным списанием)
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	log        Logger
}

// NewClient создает новый экземпляр клиента платежного провайдера
func NewClient(baseURL, apiKey string, timeout time.Duration, log Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// NewIdempotencyKey случайный ключ идемпотентности для операции op
func NewIdempotencyKey(op string) string {
	return op + "-" + uuid.NewString()
}

// Authorize холдирует сумму на платежном средстве клиента
func (c *Client) Authorize(ctx context.Context, params AuthorizeParams) (*Intent, error) {
	ctx, span := tracer.Start(ctx, "payment.authorize")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("payment.amount", params.Amount),
		attribute.String("payment.currency", params.Currency),
	)

	form := url.Values{}
	form.Set("amount", strconv.FormatInt(params.Amount, 10))
	form.Set("currency", params.Currency)
	form.Set("capture_method", "manual")
	form.Set("confirm", "true")
	if params.Customer != "" {
		form.Set("customer", params.Customer)
	}
	if params.PaymentMethod != "" {
		form.Set("payment_method", params.PaymentMethod)
	}
	if params.Description != "" {
		form.Set("description", params.Description)
	}

	key := params.IdempotencyKey
	if key == "" {
		key = NewIdempotencyKey("authorize")
	}

	intent, err := c.post(ctx, span, "/v1/payment_intents", form, key)
	if err != nil {
		return nil, err
	}
	if intent.Status != IntentRequiresCapture {
		err := fmt.Errorf("%w: authorize - intent %s has status %s", ErrDeclined, intent.ID, intent.Status)
		recordError(span, err)
		return nil, err
	}

	c.log.Info("Payment authorized: intent=%s amount=%d %s", intent.ID, params.Amount, params.Currency)
	return intent, nil
}

// Capture списывает ранее авторизованную сумму
func (c *Client) Capture(ctx context.Context, intentID string, amount int64, idempotencyKey string) (*Intent, error) {
	ctx, span := tracer.Start(ctx, "payment.capture")
	defer span.End()
	span.SetAttributes(attribute.String("payment.intent_id", intentID), attribute.Int64("payment.amount", amount))

	form := url.Values{}
	form.Set("amount_to_capture", strconv.FormatInt(amount, 10))

	intent, err := c.post(ctx, span, "/v1/payment_intents/"+url.PathEscape(intentID)+"/capture", form, idempotencyKey)
	if err != nil {
		return nil, err
	}

	c.log.Info("Payment captured: intent=%s amount=%d", intent.ID, amount)
	return intent, nil
}

// CancelAuthorization снимает холдирование
func (c *Client) CancelAuthorization(ctx context.Context, intentID string, idempotencyKey string) error {
	ctx, span := tracer.Start(ctx, "payment.cancel_authorization")
	defer span.End()
	span.SetAttributes(attribute.String("payment.intent_id", intentID))

	form := url.Values{}
	form.Set("cancellation_reason", "abandoned")

	intent, err := c.post(ctx, span, "/v1/payment_intents/"+url.PathEscape(intentID)+"/cancel", form, idempotencyKey)
	if err != nil {
		return err
	}

	c.log.Info("Payment authorization cancelled: intent=%s status=%s", intent.ID, intent.Status)
	return nil
}

func (c *Client) post(ctx context.Context, span trace.Span, path string, form url.Values, idempotencyKey string) (*Intent, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		err = fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
		recordError(span, err)
		return nil, err
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		err = fmt.Errorf("%w: failed to execute request %s: %v", ErrUnavailable, path, err)
		recordError(span, err)
		return nil, err
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	// Обработка статус-кодов
	switch {
	case resp.StatusCode >= http.StatusInternalServerError:
		body, _ := io.ReadAll(resp.Body)
		err = fmt.Errorf("%w: status %d: %s", ErrUnavailable, resp.StatusCode, string(body))
	case resp.StatusCode == http.StatusTooManyRequests:
		err = fmt.Errorf("%w: rate limited by processor", ErrUnavailable)
	case resp.StatusCode >= http.StatusBadRequest:
		err = fmt.Errorf("%w: %s", ErrDeclined, declineMessage(resp))
	}
	if err != nil {
		c.log.Warn("Payment processor rejected %s: %v", path, err)
		recordError(span, err)
		return nil, err
	}

	var intent Intent
	if err := json.NewDecoder(resp.Body).Decode(&intent); err != nil {
		err = fmt.Errorf("%w: failed to decode response: %v", ErrInvalidResponse, err)
		recordError(span, err)
		return nil, err
	}
	if intent.ID == "" {
		err = fmt.Errorf("%w: response without intent id", ErrInvalidResponse)
		recordError(span, err)
		return nil, err
	}
	return &intent, nil
}

func declineMessage(resp *http.Response) string {
	body, _ := io.ReadAll(resp.Body)

	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err != nil || errResp.Error.Message == "" {
		return fmt.Sprintf("status %d: %s", resp.StatusCode, string(body))
	}
	if errResp.Error.DeclineCode != "" {
		return fmt.Sprintf("%s (%s)", errResp.Error.Message, errResp.Error.DeclineCode)
	}
	return errResp.Error.Message
}

func recordError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// IsDeclined true, если ошибка - явный отказ провайдера
func IsDeclined(err error) bool {
	return errors.Is(err, ErrDeclined)
}
