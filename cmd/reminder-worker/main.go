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
	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/booking"
	"github.com/m04kA/SMC-SchedulingService/internal/integrations/notifier"
	sendRemindersUC "github.com/m04kA/SMC-SchedulingService/internal/usecase/send_reminders"
	"github.com/m04kA/SMC-SchedulingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-SchedulingService/pkg/logger"
	"github.com/m04kA/SMC-SchedulingService/pkg/types"
)

// Фоновый процесс: напоминает клиентам о подтвержденных бронированиях
// за reminder.hours_before часов до начала.
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

	if !cfg.Reminder.Enabled {
		log.Info("reminder-worker disabled (reminder.enabled = false)")
		return
	}

	interval := time.Duration(cfg.Reminder.IntervalSeconds) * time.Second
	log.Info("reminder-worker starting (interval=%s, lead=%s, quiet=%s-%s)",
		interval, cfg.Reminder.Lead(), cfg.Reminder.QuietHoursStart, cfg.Reminder.QuietHoursEnd)

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

	uc := sendRemindersUC.NewUseCase(
		bookingRepo.NewRepository(wrappedDB),
		notify,
		nil,
		sendRemindersUC.Options{
			Lead: cfg.Reminder.Lead(),
			Quiet: domain.QuietHours{
				Start: types.TimeString(cfg.Reminder.QuietHoursStart),
				End:   types.TimeString(cfg.Reminder.QuietHoursEnd),
			},
		},
		log,
	)

	w := &worker{
		uc:         uc,
		batchSize:  cfg.Reminder.BatchSize,
		runTimeout: time.Duration(cfg.Reminder.RunTimeout) * time.Second,
		logger:     log,
	}

	w.runOnce(rootCtx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-rootCtx.Done():
			log.Info("Shutdown signal received, stopping reminder worker")
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
	sent, err := w.uc.Sweep(runCtx, w.batchSize)
	if err != nil {
		w.logger.Error("reminder run failed: %v", err)
		return
	}
	if sent > 0 {
		w.logger.Info("reminder run complete: sent=%d in %s", sent, time.Since(start))
		return
	}
	w.logger.Debug("reminder run complete: nothing to send (%s)", time.Since(start))
}
