package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	acceptRequestHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/accept_request"
	assignContractorHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/assign_contractor"
	checkSlotHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/check_slot"
	createBookingHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/create_booking"
	createScheduleEntryHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/create_schedule_entry"
	createUnavailabilityHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/create_unavailability"
	deactivateScheduleEntryHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/deactivate_schedule_entry"
	deactivateUnavailabilityHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/deactivate_unavailability"
	getBookingHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/get_booking"
	getPendingRequestsHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/get_pending_requests"
	getWeeklyPlanningHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/get_weekly_planning"
	getWeeklyScheduleHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/get_weekly_schedule"
	listUnavailabilitiesHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/list_unavailabilities"
	refuseRequestHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/refuse_request"
	updateBookingStatusHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/update_booking_status"
	updateScheduleEntryHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/update_schedule_entry"
	"github.com/m04kA/SMC-SchedulingService/internal/api/handlers"
	"github.com/m04kA/SMC-SchedulingService/internal/api/middleware"
	"github.com/m04kA/SMC-SchedulingService/internal/config"
	"github.com/m04kA/SMC-SchedulingService/internal/infra/lock"
	"github.com/m04kA/SMC-SchedulingService/internal/infra/ratelimit"
	bookingRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/booking"
	bookingRequestRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/bookingrequest"
	contractorRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/contractor"
	scheduleRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/schedule"
	unavailabilityRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/unavailability"
	"github.com/m04kA/SMC-SchedulingService/internal/integrations/notifier"
	"github.com/m04kA/SMC-SchedulingService/internal/integrations/payment"
	bookingsService "github.com/m04kA/SMC-SchedulingService/internal/service/bookings"
	requestsService "github.com/m04kA/SMC-SchedulingService/internal/service/requests"
	scheduleService "github.com/m04kA/SMC-SchedulingService/internal/service/schedule"
	unavailabilityService "github.com/m04kA/SMC-SchedulingService/internal/service/unavailability"
	assignContractorUC "github.com/m04kA/SMC-SchedulingService/internal/usecase/assign_contractor"
	checkSlotUC "github.com/m04kA/SMC-SchedulingService/internal/usecase/check_slot"
	createBookingUC "github.com/m04kA/SMC-SchedulingService/internal/usecase/create_booking"
	transitionRequestUC "github.com/m04kA/SMC-SchedulingService/internal/usecase/transition_request"
	"github.com/m04kA/SMC-SchedulingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-SchedulingService/pkg/logger"
	"github.com/m04kA/SMC-SchedulingService/pkg/metrics"
	"github.com/m04kA/SMC-SchedulingService/pkg/txmanager"
)

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load("config.toml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting SMC-SchedulingService...")

	// Метрики; nil-коллектор безопасен, если метрики выключены
	var metricsCollector *metrics.Metrics
	stopMetricsCh := make(chan struct{})
	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	var dbCollector dbmetrics.Collector
	if metricsCollector != nil {
		dbCollector = metricsCollector
	}
	wrappedDB := dbmetrics.WrapWithDefault(db, dbCollector, cfg.Database.DBName, stopMetricsCh)
	txMgr := txmanager.NewTransactionManager(wrappedDB)

	// Подключаемся к Redis (блокировки календарей и rate limit)
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	err = rdb.Ping(pingCtx).Err()
	cancelPing()
	if err != nil {
		log.Fatal("Failed to ping redis: %v", err)
	}
	log.Info("Successfully connected to redis (addr=%s)", cfg.Redis.Addr)

	locker := lock.NewRedisLocker(rdb, lock.Options{
		TTL:        time.Duration(cfg.Redis.LockTTLSeconds) * time.Second,
		Retries:    cfg.Redis.LockRetries,
		RetryDelay: time.Duration(cfg.Redis.LockRetryDelayMsec) * time.Millisecond,
	})

	// Интеграции
	paymentClient := payment.NewClient(
		cfg.Payment.BaseURL,
		cfg.Payment.APIKey,
		time.Duration(cfg.Payment.Timeout)*time.Second,
		log,
	)
	notify, err := notifier.NewFromSettings(context.Background(), notifierSettings(cfg.Notifier), log)
	if err != nil {
		log.Fatal("Failed to initialize notifier: %v", err)
	}

	// Репозитории
	scheduleRepository := scheduleRepo.NewRepository(wrappedDB)
	unavailabilityRepository := unavailabilityRepo.NewRepository(wrappedDB)
	bookingRepository := bookingRepo.NewRepository(wrappedDB)
	requestRepository := bookingRequestRepo.NewRepository(wrappedDB)
	contractorRepository := contractorRepo.NewRepository(wrappedDB)

	// Сервисы
	scheduleSvc := scheduleService.NewService(scheduleRepository, txMgr, log)
	unavailabilitySvc := unavailabilityService.NewService(unavailabilityRepository, log)
	bookingSvc := bookingsService.NewService(bookingRepository, log)
	requestSvc := requestsService.NewService(requestRepository, bookingRepository, log)

	// Use cases
	defaultLocation := cfg.Booking.Location()
	tieBreak, err := assignContractorUC.ParseTieBreak(cfg.Booking.AssignmentTieBreak)
	if err != nil {
		log.Fatal("Invalid assignment tie-break: %v", err)
	}

	checkSlotUseCase := checkSlotUC.NewUseCase(
		scheduleRepository,
		unavailabilityRepository,
		bookingRepository,
		metricsCollector,
		defaultLocation,
		log,
	)
	assignContractorUseCase := assignContractorUC.NewUseCase(
		contractorRepository,
		checkSlotUseCase,
		tieBreak,
		defaultLocation,
		log,
	)
	createBookingUseCase := createBookingUC.NewUseCase(
		bookingRepository,
		requestRepository,
		contractorRepository,
		checkSlotUseCase,
		assignContractorUseCase,
		paymentClient,
		locker,
		notify,
		txMgr,
		createBookingUC.Options{
			RequestTTL:      cfg.Booking.RequestTTL(),
			MinNotice:       cfg.Booking.MinNotice(),
			DefaultLocation: defaultLocation,
		},
		log,
	)
	transitionRequestUseCase := transitionRequestUC.NewUseCase(
		bookingRepository,
		requestRepository,
		contractorRepository,
		paymentClient,
		notify,
		txMgr,
		metricsCollector,
		log,
	)

	// Инициализируем handlers
	getWeeklySchedule := getWeeklyScheduleHandler.NewHandler(scheduleSvc, log)
	createScheduleEntry := createScheduleEntryHandler.NewHandler(scheduleSvc, log)
	updateScheduleEntry := updateScheduleEntryHandler.NewHandler(scheduleSvc, log)
	deactivateScheduleEntry := deactivateScheduleEntryHandler.NewHandler(scheduleSvc, log)
	createUnavailability := createUnavailabilityHandler.NewHandler(unavailabilitySvc, log)
	listUnavailabilities := listUnavailabilitiesHandler.NewHandler(unavailabilitySvc, log)
	deactivateUnavailability := deactivateUnavailabilityHandler.NewHandler(unavailabilitySvc, log)
	checkSlot := checkSlotHandler.NewHandler(checkSlotUseCase, log)
	assignContractor := assignContractorHandler.NewHandler(assignContractorUseCase, log)
	createBooking := createBookingHandler.NewHandler(createBookingUseCase, log)
	getBooking := getBookingHandler.NewHandler(bookingSvc, log)
	updateBookingStatus := updateBookingStatusHandler.NewHandler(bookingSvc, log)
	getWeeklyPlanning := getWeeklyPlanningHandler.NewHandler(bookingSvc, log)
	getPendingRequests := getPendingRequestsHandler.NewHandler(requestSvc, log)
	acceptRequest := acceptRequestHandler.NewHandler(transitionRequestUseCase, log)
	refuseRequest := refuseRequestHandler.NewHandler(transitionRequestUseCase, log)

	// Настраиваем роутер
	r := mux.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging(log))
	if cfg.Metrics.Enabled {
		r.Use(middleware.Metrics(metricsCollector))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		handlers.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	// API prefix; Auth только извлекает актора, обязательность проверяет RequireActor
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.Auth(cfg.Auth.JWTSecret, log))
	if cfg.RateLimit.Enabled {
		limiter := ratelimit.NewRedisLimiter(rdb, cfg.RateLimit.Requests, time.Duration(cfg.RateLimit.WindowSeconds)*time.Second)
		api.Use(middleware.RateLimit(limiter, log))
		log.Info("Rate limit enabled: %d requests per %ds", cfg.RateLimit.Requests, cfg.RateLimit.WindowSeconds)
	}

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	api.HandleFunc("/contractors/{contractorId}/schedule", getWeeklySchedule.Handle).Methods(http.MethodGet)
	api.HandleFunc("/contractors/{contractorId}/availability", checkSlot.Handle).Methods(http.MethodGet)
	api.HandleFunc("/assignments", assignContractor.Handle).Methods(http.MethodPost)

	// ============================================================
	// PROTECTED ROUTES (требуют Authorization: Bearer <jwt>)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.RequireActor)

	// --- Расписание ---
	protected.HandleFunc("/contractors/{contractorId}/schedule", createScheduleEntry.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/schedule-entries/{entryId}", updateScheduleEntry.Handle).Methods(http.MethodPut)
	protected.HandleFunc("/schedule-entries/{entryId}", deactivateScheduleEntry.Handle).Methods(http.MethodDelete)

	// --- Недоступность ---
	protected.HandleFunc("/contractors/{contractorId}/unavailabilities", createUnavailability.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/contractors/{contractorId}/unavailabilities", listUnavailabilities.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/unavailabilities/{unavailabilityId}", deactivateUnavailability.Handle).Methods(http.MethodDelete)

	// --- Бронирования ---
	protected.HandleFunc("/bookings", createBooking.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/bookings/{bookingId}", getBooking.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/bookings/{bookingId}/status", updateBookingStatus.Handle).Methods(http.MethodPost)

	// --- Исполнитель ---
	protected.HandleFunc("/contractors/{contractorId}/planning", getWeeklyPlanning.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/contractors/{contractorId}/requests", getPendingRequests.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/booking-requests/{requestId}/accept", acceptRequest.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/booking-requests/{requestId}/refuse", refuseRequest.Handle).Methods(http.MethodPost)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	close(stopMetricsCh)

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	log.Info("Server stopped gracefully")
}

func notifierSettings(c config.NotifierConfig) notifier.Settings {
	return notifier.Settings{
		EmailProvider:    c.EmailProvider,
		SMSProvider:      c.SMSProvider,
		FromEmail:        c.FromEmail,
		FromName:         c.FromName,
		SendGridAPIKey:   c.SendGridAPIKey,
		SESRegion:        c.SESRegion,
		TwilioAccountSID: c.TwilioAccountSID,
		TwilioAuthToken:  c.TwilioAuthToken,
		TwilioFrom:       c.TwilioFrom,
		Timeout:          time.Duration(c.Timeout) * time.Second,
	}
}
