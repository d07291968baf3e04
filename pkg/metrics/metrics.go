package metrics

import (
	"database/sql"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics набор метрик сервиса.
// Все методы безопасны для nil-получателя, поэтому компоненты работают и с выключенными метриками.
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	DBQueryDuration   *prometheus.HistogramVec
	DBOpenConnections *prometheus.GaugeVec
	DBInUse           *prometheus.GaugeVec
	DBIdle            *prometheus.GaugeVec
	DBWaitCount       *prometheus.GaugeVec

	RequestTransitions     *prometheus.CounterVec
	PaymentReconciliations *prometheus.CounterVec
	SweepRuns              *prometheus.CounterVec
	SweepExpired           prometheus.Counter
	SlotChecks             *prometheus.CounterVec
	Reminders              *prometheus.CounterVec
}

// New создает метрики и регистрирует их в DefaultRegisterer
func New(serviceName string) *Metrics {
	return NewWithRegisterer(serviceName, prometheus.DefaultRegisterer)
}

// NewWithRegisterer создает метрики и регистрирует их в reg
func NewWithRegisterer(serviceName string, reg prometheus.Registerer) *Metrics {
	constLabels := prometheus.Labels{"service": serviceName}

	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests",
			ConstLabels: constLabels,
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request latency",
			Buckets:     prometheus.DefBuckets,
			ConstLabels: constLabels,
		}, []string{"method", "route"}),

		DBQueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "db_query_duration_seconds",
			Help:        "Database query latency",
			Buckets:     []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
			ConstLabels: constLabels,
		}, []string{"operation", "status"}),
		DBOpenConnections: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "db_open_connections",
			Help:        "Number of established connections",
			ConstLabels: constLabels,
		}, []string{"db"}),
		DBInUse: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "db_in_use_connections",
			Help:        "Number of connections currently in use",
			ConstLabels: constLabels,
		}, []string{"db"}),
		DBIdle: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "db_idle_connections",
			Help:        "Number of idle connections",
			ConstLabels: constLabels,
		}, []string{"db"}),
		DBWaitCount: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "db_wait_count",
			Help:        "Total number of connections waited for",
			ConstLabels: constLabels,
		}, []string{"db"}),

		RequestTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "booking_request_transitions_total",
			Help:        "Booking request transitions by action and outcome",
			ConstLabels: constLabels,
		}, []string{"action", "outcome"}),
		PaymentReconciliations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "payment_reconciliation_required_total",
			Help:        "Payment holds that could not be released automatically",
			ConstLabels: constLabels,
		}, []string{"reason"}),
		SweepRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "expiry_sweep_runs_total",
			Help:        "Expiry sweep runs by result",
			ConstLabels: constLabels,
		}, []string{"result"}),
		SweepExpired: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "expiry_sweep_expired_total",
			Help:        "Booking requests expired by the sweep",
			ConstLabels: constLabels,
		}),
		SlotChecks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "slot_checks_total",
			Help:        "Slot availability checks by verdict",
			ConstLabels: constLabels,
		}, []string{"verdict"}),
		Reminders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "booking_reminders_total",
			Help:        "Booking reminders by outcome",
			ConstLabels: constLabels,
		}, []string{"outcome"}),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.DBQueryDuration,
		m.DBOpenConnections,
		m.DBInUse,
		m.DBIdle,
		m.DBWaitCount,
		m.RequestTransitions,
		m.PaymentReconciliations,
		m.SweepRuns,
		m.SweepExpired,
		m.SlotChecks,
		m.Reminders,
	)

	return m
}

// ObserveHTTP записывает метрики HTTP запроса
func (m *Metrics) ObserveHTTP(method, route, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// ObserveQuery записывает длительность запроса к БД
func (m *Metrics) ObserveQuery(operation string, err error, duration time.Duration) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.DBQueryDuration.WithLabelValues(operation, status).Observe(duration.Seconds())
}

// RecordTransition фиксирует попытку перехода запроса на бронирование
func (m *Metrics) RecordTransition(action, outcome string) {
	if m == nil {
		return
	}
	m.RequestTransitions.WithLabelValues(action, outcome).Inc()
}

// RecordReconciliation фиксирует платеж, требующий ручной сверки
func (m *Metrics) RecordReconciliation(reason string) {
	if m == nil {
		return
	}
	m.PaymentReconciliations.WithLabelValues(reason).Inc()
}

// RecordSweep фиксирует результат прогона expiry sweep
func (m *Metrics) RecordSweep(result string, expired int) {
	if m == nil {
		return
	}
	m.SweepRuns.WithLabelValues(result).Inc()
	m.SweepExpired.Add(float64(expired))
}

// RecordSlotCheck фиксирует вердикт проверки слота
func (m *Metrics) RecordSlotCheck(verdict string) {
	if m == nil {
		return
	}
	m.SlotChecks.WithLabelValues(verdict).Inc()
}

// RecordReminder фиксирует исход обработки напоминания
func (m *Metrics) RecordReminder(outcome string) {
	if m == nil {
		return
	}
	m.Reminders.WithLabelValues(outcome).Inc()
}

// ObservePool записывает статистику пула соединений
func (m *Metrics) ObservePool(dbName string, stats sql.DBStats) {
	if m == nil {
		return
	}
	m.DBOpenConnections.WithLabelValues(dbName).Set(float64(stats.OpenConnections))
	m.DBInUse.WithLabelValues(dbName).Set(float64(stats.InUse))
	m.DBIdle.WithLabelValues(dbName).Set(float64(stats.Idle))
	m.DBWaitCount.WithLabelValues(dbName).Set(float64(stats.WaitCount))
}
