package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"github.com/m04kA/SMC-SchedulingService/internal/config"
	bookingRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/booking"
	bookingRequestRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/bookingrequest"
	contractorRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/contractor"
	"github.com/m04kA/SMC-SchedulingService/internal/integrations/notifier"
	"github.com/m04kA/SMC-SchedulingService/internal/integrations/payment"
	transitionRequestUC "github.com/m04kA/SMC-SchedulingService/internal/usecase/transition_request"
	"github.com/m04kA/SMC-SchedulingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-SchedulingService/pkg/logger"
	"github.com/m04kA/SMC-SchedulingService/pkg/txmanager"
)

// Фоновый процесс: переводит просроченные запросы исполнителям в expired
// и отменяет бронирования, у которых не осталось живых запросов.
func main() {
	cfg, err := config.Load("config.toml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	interval := time.Duration(cfg.Worker.IntervalSeconds) * time.Second
	log.Info("expiry-worker starting (interval=%s, batch=%d)", interval, cfg.Worker.BatchSize)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.PingContext(rootCtx); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Connected to database %s", cfg.Database.DBName)

	wrappedDB := dbmetrics.Wrap(db, nil)
	txMgr := txmanager.NewTransactionManager(wrappedDB)

	paymentClient := payment.NewClient(
		cfg.Payment.BaseURL,
		cfg.Payment.APIKey,
		time.Duration(cfg.Payment.Timeout)*time.Second,
		log,
	)
	notify, err := notifier.NewFromSettings(rootCtx, notifier.Settings{
		EmailProvider:    cfg.Notifier.EmailProvider,
		SMSProvider:      cfg.Notifier.SMSProvider,
		FromEmail:        cfg.Notifier.FromEmail,
		FromName:         cfg.Notifier.FromName,
		SendGridAPIKey:   cfg.Notifier.SendGridAPIKey,
		SESRegion:        cfg.Notifier.SESRegion,
		TwilioAccountSID: cfg.Notifier.TwilioAccountSID,
		TwilioAuthToken:  cfg.Notifier.TwilioAuthToken,
		TwilioFrom:       cfg.Notifier.TwilioFrom,
		Timeout:          time.Duration(cfg.Notifier.Timeout) * time.Second,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize notifier: %v", err)
	}

	uc := transitionRequestUC.NewUseCase(
		bookingRepo.NewRepository(wrappedDB),
		bookingRequestRepo.NewRepository(wrappedDB),
		contractorRepo.NewRepository(wrappedDB),
		paymentClient,
		notify,
		txMgr,
		nil,
		log,
	)

	w := &worker{
		uc:         uc,
		batchSize:  cfg.Worker.BatchSize,
		runTimeout: time.Duration(cfg.Worker.RunTimeout) * time.Second,
		logger:     log,
	}

	// Первый проход сразу после старта
	w.runOnce(rootCtx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-rootCtx.Done():
			log.Info("Shutdown signal received, stopping expiry worker")
			return
		case <-ticker.C:
			w.runOnce(rootCtx)
		}
	}
}

type sweeper interface {
	Sweep(ctx context.Context, limit int) (int, error)
}

type worker struct {
	uc         sweeper
	batchSize  int
	runTimeout time.Duration
	logger     *logger.Logger
}

func (w *worker) runOnce(ctx context.Context) {
	runCtx, cancel := context.WithTimeout(ctx, w.runTimeout)
	defer cancel()

	start := time.Now()
	expired, err := w.uc.Sweep(runCtx, w.batchSize)
	if err != nil {
		w.logger.Error("expiry run failed after %d requests: %v", expired, err)
		return
	}
	if expired > 0 {
		w.logger.Info("expiry run complete: expired=%d in %s", expired, time.Since(start))
		return
	}
	w.logger.Debug("expiry run complete: nothing to expire (%s)", time.Since(start))
}
