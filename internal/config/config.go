package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/m04kA/SMC-SchedulingService/pkg/types"
)

// ErrInvalidConfig возвращается, когда значения конфигурации несовместимы
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config конфигурация сервиса
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Database  DatabaseConfig  `toml:"database"`
	Redis     RedisConfig     `toml:"redis"`
	Logs      LogsConfig      `toml:"logs"`
	Metrics   MetricsConfig   `toml:"metrics"`
	Auth      AuthConfig      `toml:"auth"`
	RateLimit RateLimitConfig `toml:"rate_limit"`
	Booking   BookingConfig   `toml:"booking"`
	Payment   PaymentConfig   `toml:"payment"`
	Notifier  NotifierConfig  `toml:"notifier"`
	Worker    WorkerConfig    `toml:"worker"`
	Reminder  ReminderConfig  `toml:"reminder"`
}

// ServerConfig HTTP сервер; таймауты в секундах
type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`
	WriteTimeout    int `toml:"write_timeout"`
	IdleTimeout     int `toml:"idle_timeout"`
	ShutdownTimeout int `toml:"shutdown_timeout"`
}

// DatabaseConfig подключение к PostgreSQL
type DatabaseConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"` // секунды
}

// DSN строка подключения для lib/pq
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// URL строка подключения в формате URL (для golang-migrate)
func (c DatabaseConfig) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
}

// RedisConfig подключение к Redis (блокировки и rate limit)
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`

	LockTTLSeconds     int `toml:"lock_ttl_seconds"`
	LockRetries        int `toml:"lock_retries"`
	LockRetryDelayMsec int `toml:"lock_retry_delay_ms"`
}

// LogsConfig логирование
type LogsConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// MetricsConfig Prometheus
type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

// AuthConfig JWT (HS256)
type AuthConfig struct {
	JWTSecret string `toml:"jwt_secret"`
}

// RateLimitConfig общий для инстансов лимит запросов
type RateLimitConfig struct {
	Enabled       bool `toml:"enabled"`
	Requests      int  `toml:"requests"`
	WindowSeconds int  `toml:"window_seconds"`
}

// BookingConfig параметры бронирования
type BookingConfig struct {
	RequestTTLMinutes  int    `toml:"request_ttl_minutes"`
	MinNoticeMinutes   int    `toml:"min_notice_minutes"`
	AssignmentTieBreak string `toml:"assignment_tie_break"` // "id" или "experience"
	DefaultTimezone    string `toml:"default_timezone"`
}

// PaymentConfig платежный провайдер
type PaymentConfig struct {
	BaseURL string `toml:"base_url"`
	APIKey  string `toml:"api_key"`
	Timeout int    `toml:"timeout"` // секунды
}

// NotifierConfig уведомления
type NotifierConfig struct {
	EmailProvider string `toml:"email_provider"` // sendgrid, ses, log
	SMSProvider   string `toml:"sms_provider"`   // twilio, log
	FromEmail     string `toml:"from_email"`
	FromName      string `toml:"from_name"`

	SendGridAPIKey string `toml:"sendgrid_api_key"`
	SESRegion      string `toml:"ses_region"`

	TwilioAccountSID string `toml:"twilio_account_sid"`
	TwilioAuthToken  string `toml:"twilio_auth_token"`
	TwilioFrom       string `toml:"twilio_from"`
	Timeout          int    `toml:"timeout"` // секунды
}

// WorkerConfig expiry worker
type WorkerConfig struct {
	IntervalSeconds int `toml:"interval_seconds"`
	BatchSize       int `toml:"batch_size"`
	RunTimeout      int `toml:"run_timeout"` // секунды
}

// ReminderConfig напоминания клиентам о подтвержденных бронированиях.
// Тихие часы задаются в часовом поясе бронирования и могут переходить через полночь.
type ReminderConfig struct {
	Enabled         bool   `toml:"enabled"`
	HoursBefore     int    `toml:"hours_before"`
	QuietHoursStart string `toml:"quiet_hours_start"` // "22:00", пусто = без тихих часов
	QuietHoursEnd   string `toml:"quiet_hours_end"`
	IntervalSeconds int    `toml:"interval_seconds"`
	BatchSize       int    `toml:"batch_size"`
	RunTimeout      int    `toml:"run_timeout"` // секунды
}

// Load читает .env (если есть), TOML файл и переменные окружения.
// CONFIG_PATH переопределяет путь к файлу.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	if p := os.Getenv("CONFIG_PATH"); p != "" {
		path = p
	}

	cfg := &Config{}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	overrides := []struct {
		env string
		dst *string
	}{
		{"DB_PASSWORD", &c.Database.Password},
		{"REDIS_PASSWORD", &c.Redis.Password},
		{"JWT_SECRET", &c.Auth.JWTSecret},
		{"PAYMENT_API_KEY", &c.Payment.APIKey},
		{"SENDGRID_API_KEY", &c.Notifier.SendGridAPIKey},
		{"TWILIO_AUTH_TOKEN", &c.Notifier.TwilioAuthToken},
	}
	for _, o := range overrides {
		if v, ok := os.LookupEnv(o.env); ok && v != "" {
			*o.dst = v
		}
	}
}

func (c *Config) applyDefaults() {
	setDefault(&c.Server.HTTPPort, 8080)
	setDefault(&c.Server.ReadTimeout, 15)
	setDefault(&c.Server.WriteTimeout, 15)
	setDefault(&c.Server.IdleTimeout, 60)
	setDefault(&c.Server.ShutdownTimeout, 30)

	setDefault(&c.Database.Port, 5432)
	setDefault(&c.Database.MaxOpenConns, 25)
	setDefault(&c.Database.MaxIdleConns, 5)
	setDefault(&c.Database.ConnMaxLifetime, 300)
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}

	if c.Redis.Addr == "" {
		c.Redis.Addr = "localhost:6379"
	}
	setDefault(&c.Redis.LockTTLSeconds, 10)
	setDefault(&c.Redis.LockRetries, 3)
	setDefault(&c.Redis.LockRetryDelayMsec, 50)

	if c.Logs.Level == "" {
		c.Logs.Level = "info"
	}

	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if c.Metrics.ServiceName == "" {
		c.Metrics.ServiceName = "scheduling_service"
	}

	setDefault(&c.RateLimit.Requests, 100)
	setDefault(&c.RateLimit.WindowSeconds, 60)

	setDefault(&c.Booking.RequestTTLMinutes, 1440)
	setDefault(&c.Booking.MinNoticeMinutes, 60)
	if c.Booking.AssignmentTieBreak == "" {
		c.Booking.AssignmentTieBreak = "id"
	}
	if c.Booking.DefaultTimezone == "" {
		c.Booking.DefaultTimezone = "Europe/Paris"
	}

	setDefault(&c.Payment.Timeout, 10)

	if c.Notifier.EmailProvider == "" {
		c.Notifier.EmailProvider = "log"
	}
	if c.Notifier.SMSProvider == "" {
		c.Notifier.SMSProvider = "log"
	}
	setDefault(&c.Notifier.Timeout, 10)

	setDefault(&c.Worker.IntervalSeconds, 60)
	setDefault(&c.Worker.BatchSize, 100)
	setDefault(&c.Worker.RunTimeout, 30)

	setDefault(&c.Reminder.HoursBefore, 24)
	setDefault(&c.Reminder.IntervalSeconds, 3600)
	setDefault(&c.Reminder.BatchSize, 100)
	setDefault(&c.Reminder.RunTimeout, 60)
}

func setDefault(v *int, def int) {
	if *v == 0 {
		*v = def
	}
}

// Validate проверяет согласованность значений
func (c *Config) Validate() error {
	var problems []string

	if c.Database.Host == "" || c.Database.DBName == "" {
		problems = append(problems, "database.host and database.dbname are required")
	}
	if c.Auth.JWTSecret == "" {
		problems = append(problems, "auth.jwt_secret (or JWT_SECRET) is required")
	}
	if c.Booking.RequestTTLMinutes < 1 {
		problems = append(problems, "booking.request_ttl_minutes must be positive")
	}
	if c.Booking.MinNoticeMinutes < 0 {
		problems = append(problems, "booking.min_notice_minutes must not be negative")
	}
	switch c.Booking.AssignmentTieBreak {
	case "id", "experience":
	default:
		problems = append(problems, fmt.Sprintf("booking.assignment_tie_break %q must be id or experience", c.Booking.AssignmentTieBreak))
	}
	if _, err := time.LoadLocation(c.Booking.DefaultTimezone); err != nil {
		problems = append(problems, fmt.Sprintf("booking.default_timezone %q: %v", c.Booking.DefaultTimezone, err))
	}
	if c.Payment.BaseURL == "" {
		problems = append(problems, "payment.base_url is required")
	}

	switch c.Notifier.EmailProvider {
	case "log":
	case "sendgrid":
		if c.Notifier.SendGridAPIKey == "" {
			problems = append(problems, "notifier.sendgrid_api_key (or SENDGRID_API_KEY) is required for sendgrid")
		}
	case "ses":
		if c.Notifier.SESRegion == "" {
			problems = append(problems, "notifier.ses_region is required for ses")
		}
	default:
		problems = append(problems, fmt.Sprintf("notifier.email_provider %q must be sendgrid, ses or log", c.Notifier.EmailProvider))
	}
	switch c.Notifier.SMSProvider {
	case "log":
	case "twilio":
		if c.Notifier.TwilioAccountSID == "" || c.Notifier.TwilioAuthToken == "" || c.Notifier.TwilioFrom == "" {
			problems = append(problems, "notifier.twilio_account_sid, twilio_auth_token and twilio_from are required for twilio")
		}
	default:
		problems = append(problems, fmt.Sprintf("notifier.sms_provider %q must be twilio or log", c.Notifier.SMSProvider))
	}

	if c.Reminder.HoursBefore < 1 {
		problems = append(problems, "reminder.hours_before must be positive")
	}
	if (c.Reminder.QuietHoursStart == "") != (c.Reminder.QuietHoursEnd == "") {
		problems = append(problems, "reminder.quiet_hours_start and quiet_hours_end must be set together")
	}
	for _, v := range []string{c.Reminder.QuietHoursStart, c.Reminder.QuietHoursEnd} {
		if v == "" {
			continue
		}
		if _, err := types.NewTimeStringFromString(v); err != nil {
			problems = append(problems, fmt.Sprintf("reminder quiet hours %q: %v", v, err))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

// RequestTTL время жизни запроса исполнителю
func (c BookingConfig) RequestTTL() time.Duration {
	return time.Duration(c.RequestTTLMinutes) * time.Minute
}

// MinNotice минимальный срок до начала слота
func (c BookingConfig) MinNotice() time.Duration {
	return time.Duration(c.MinNoticeMinutes) * time.Minute
}

// Location часовой пояс по умолчанию; вызывать после Validate
func (c BookingConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.DefaultTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Lead за сколько до начала отправляется напоминание
func (c ReminderConfig) Lead() time.Duration {
	return time.Duration(c.HoursBefore) * time.Hour
}
