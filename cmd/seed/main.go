package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	_ "github.com/lib/pq"

	"github.com/m04kA/SMC-SchedulingService/internal/api/middleware"
	"github.com/m04kA/SMC-SchedulingService/internal/config"
	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	contractorRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/contractor"
	scheduleRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/schedule"
	"github.com/m04kA/SMC-SchedulingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-SchedulingService/pkg/logger"
	"github.com/m04kA/SMC-SchedulingService/pkg/ptr"
	"github.com/m04kA/SMC-SchedulingService/pkg/txmanager"
	"github.com/m04kA/SMC-SchedulingService/pkg/types"
)

var specialties = []string{
	"cleaning",
	"plumbing",
	"electrical",
	"gardening",
	"painting",
	"moving",
	"appliance_repair",
}

// Рабочие смены по будням: утро и вечер с перерывом на обед
var shifts = [][2]types.TimeString{
	{"09:00", "12:00"},
	{"13:00", "18:00"},
}

func main() {
	count := flag.Int("contractors", 20, "number of contractors to create")
	tokenTTL := flag.Duration("token-ttl", 24*time.Hour, "lifetime of printed demo tokens")
	flag.Parse()

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

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("open db: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		log.Fatal("ping db: %v", err)
	}

	gofakeit.Seed(time.Now().UnixNano())

	wrappedDB := dbmetrics.Wrap(db, nil)
	s := &seeder{
		contractors: contractorRepo.NewRepository(wrappedDB),
		schedules:   scheduleRepo.NewRepository(wrappedDB),
		txManager:   txmanager.NewTransactionManager(wrappedDB),
		logger:      log,
	}

	ids, err := s.seed(ctx, *count)
	if err != nil {
		log.Fatal("seed: %v", err)
	}
	log.Info("seed complete: %d contractors", len(ids))

	if len(ids) > 0 {
		printToken(cfg.Auth.JWTSecret, domain.Actor{UserID: ids[0], Role: domain.RoleContractor}, *tokenTTL)
	}
	printToken(cfg.Auth.JWTSecret, domain.Actor{UserID: int64(gofakeit.Number(1000, 9999)), Role: domain.RoleClient}, *tokenTTL)
	printToken(cfg.Auth.JWTSecret, domain.Actor{UserID: 1, Role: domain.RoleAdmin}, *tokenTTL)
}

type seeder struct {
	contractors *contractorRepo.Repository
	schedules   *scheduleRepo.Repository
	txManager   *txmanager.TransactionManager
	logger      *logger.Logger
}

func (s *seeder) seed(ctx context.Context, count int) ([]int64, error) {
	ids := make([]int64, 0, count)

	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		for i := 0; i < count; i++ {
			c, err := s.contractors.Create(ctx, fakeContractor())
			if err != nil {
				return fmt.Errorf("create contractor: %w", err)
			}

			for _, entry := range weekSchedule(c.ID) {
				if _, err := s.schedules.Create(ctx, entry); err != nil {
					return fmt.Errorf("create schedule for contractor %d: %w", c.ID, err)
				}
			}

			s.logger.Debug("seeded contractor %d (%s, %v)", c.ID, c.FullName, c.Specialties)
			ids = append(ids, c.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func fakeContractor() *domain.Contractor {
	first := specialties[gofakeit.Number(0, len(specialties)-1)]
	skills := []string{first}
	if second := specialties[gofakeit.Number(0, len(specialties)-1)]; second != first {
		skills = append(skills, second)
	}

	return &domain.Contractor{
		FullName:    gofakeit.Name(),
		Email:       gofakeit.Email(),
		Phone:       ptr.Ptr(gofakeit.Phone()),
		Specialties: skills,
		Location: &domain.GeoPoint{
			// окрестности Парижа
			Lat: 48.8566 + gofakeit.Float64Range(-0.2, 0.2),
			Lng: 2.3522 + gofakeit.Float64Range(-0.3, 0.3),
		},
		IsActive: true,
	}
}

func weekSchedule(contractorID int64) []*domain.ScheduleEntry {
	today := domain.DateOnly(time.Now().UTC())
	entries := make([]*domain.ScheduleEntry, 0, 5*len(shifts))
	for day := time.Monday; day <= time.Friday; day++ {
		for _, shift := range shifts {
			entries = append(entries, &domain.ScheduleEntry{
				ContractorID:  contractorID,
				DayOfWeek:     day,
				TimeRange:     domain.TimeRange{Start: shift[0], End: shift[1]},
				IsRecurring:   true,
				EffectiveFrom: today,
				IsActive:      true,
			})
		}
	}
	return entries
}

func printToken(secret string, actor domain.Actor, ttl time.Duration) {
	token, err := middleware.NewToken(secret, actor, ttl)
	if err != nil {
		fmt.Printf("%s token: error: %v\n", actor.Role, err)
		return
	}
	fmt.Printf("%s (user_id=%d): %s\n", actor.Role, actor.UserID, token)
}
