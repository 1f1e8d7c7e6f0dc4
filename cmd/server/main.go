// @title Scheduler Module API
// @version 1.0
// @description Multi-tenant calendar-and-booking backend: recurrence expansion, availability, booking slots, and reminder webhooks.

// @license.name MIT

// @securityDefinitions.apikey AdminAuth
// @in header
// @name x-api-key

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the end-user JWT.

// @tag.name accounts
// @tag.description Tenant account registration and configuration

// @tag.name users
// @tag.description Users owned by an account

// @tag.name calendars
// @tag.description Per-user event containers

// @tag.name events
// @tag.description Recurring and single calendar events

// @tag.name schedules
// @tag.description Weekly availability templates

// @tag.name services
// @tag.description Bookable resources composed of users' availability

// @host localhost:5000
// @BasePath /api/v1
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	cronv3 "github.com/robfig/cron/v3"

	_ "github.com/unburdy/scheduler-module/docs"
	"github.com/unburdy/scheduler-module/internal/clockport"
	"github.com/unburdy/scheduler-module/internal/config"
	"github.com/unburdy/scheduler-module/internal/httpapi"
	"github.com/unburdy/scheduler-module/internal/logging"
	"github.com/unburdy/scheduler-module/internal/reminder"
	"github.com/unburdy/scheduler-module/internal/store/memory"
	sqlstore "github.com/unburdy/scheduler-module/internal/store/sql"
	"github.com/unburdy/scheduler-module/internal/webhook"
)

func main() {
	inMemoryFlag := flag.Bool("inmemory", false, "force the in-memory DomainStore adapter regardless of POSTGRES_CONNECTION_STRING")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		fmt.Println("[config] .env file not found, using process environment")
	}

	logger := logging.New()
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid configuration", "err", err)
	}

	deps, err := wire(cfg, logger, *inMemoryFlag)
	if err != nil {
		logger.Fatal("startup failed", "err", err)
	}

	// Both ticks run once a minute: the expander at second 55, just before
	// the minute boundary, and the sender at second 0.
	scheduler := cronv3.New(cronv3.WithSeconds())
	if _, err := scheduler.AddFunc("55 * * * * *", func() { runExpanderTick(deps) }); err != nil {
		logger.Fatal("failed to schedule expander tick", "err", err)
	}
	sender := &reminder.Sender{
		Reminders: deps.Expander.Reminders,
		Accounts:  deps.Stores.Accounts,
		Webhook:   webhook.NewClient(cfg.Webhook.Timeout),
		Clock:     deps.Clock,
		Grace:     cfg.Limits.ReminderGrace,
		Logger:    logger,
	}
	if _, err := scheduler.AddFunc("0 * * * * *", func() {
		if err := sender.Tick(context.Background()); err != nil {
			logger.Error("reminder send tick failed", "err", err)
		}
	}); err != nil {
		logger.Fatal("failed to schedule sender tick", "err", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	engine := httpapi.NewEngine(deps, cfg.RateLimit)
	srv := &http.Server{Addr: ":" + cfg.Server.Port, Handler: engine}

	go func() {
		logger.Info("listening", "addr", srv.Addr)
		logger.Info("API documentation", "url", fmt.Sprintf("http://localhost%s/swagger/index.html", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", "err", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", "err", err)
	}
}

// wire builds Deps over either the in-memory or SQL DomainStore backend,
// selected per §6: POSTGRES_CONNECTION_STRING present (and -inmemory not
// forced) selects SQL/GORM, otherwise in-memory.
func wire(cfg config.Config, logger logging.Logger, forceInMemory bool) (*httpapi.Deps, error) {
	clock := clockport.Real{}

	var stores httpapi.Stores
	var jobStore reminder.JobStore
	var reminderStore reminder.ReminderStore
	var eventLoader reminder.EventLoader

	if !forceInMemory && !cfg.Database.InMemory {
		db, err := sqlstore.Connect(sqlstore.Config{
			Host:     os.Getenv("PGHOST"),
			Port:     os.Getenv("PGPORT"),
			User:     os.Getenv("PGUSER"),
			Password: os.Getenv("PGPASSWORD"),
			DBName:   os.Getenv("PGDATABASE"),
			SSLMode:  envOr("PGSSLMODE", "disable"),
		})
		if err != nil {
			return nil, fmt.Errorf("connect sql store: %w", err)
		}
		s := sqlstore.New(db)
		stores = httpapi.Stores{
			Accounts: s.Accounts, Users: s.Users, Calendars: s.Calendars, Events: s.Events,
			Schedules: s.Schedules, Services: s.Services, ServiceUsers: s.ServiceUsers,
			Reservations: s.Reservations, Cascade: s,
		}
		jobStore, reminderStore, eventLoader = s.Jobs, s.Reminders, s.Events
	} else {
		s := memory.New()
		stores = httpapi.Stores{
			Accounts: s.Accounts, Users: s.Users, Calendars: s.Calendars, Events: s.Events,
			Schedules: s.Schedules, Services: s.Services, ServiceUsers: s.ServiceUsers,
			Reservations: s.Reservations, Cascade: s,
		}
		jobStore, reminderStore, eventLoader = s.Jobs, s.Reminders, s.Events
	}

	expander := &reminder.Expander{
		Jobs:      jobStore,
		Reminders: reminderStore,
		Events:    eventLoader,
		Clock:     clock,
		Horizon:   cfg.Limits.ExpansionHorizon,
		MaxWindow: cfg.Limits.EventInstancesQueryDuration,
		Logger:    logger,
	}

	validator, err := httpapi.NewRequestValidator()
	if err != nil {
		return nil, fmt.Errorf("compile request schemas: %w", err)
	}

	return &httpapi.Deps{
		Stores:                      stores,
		Expander:                    expander,
		Clock:                       clock,
		Logger:                      logger,
		Validator:                   validator,
		CreateSecretCode:            cfg.Account.CreateSecretCode,
		EventInstancesQueryDuration: cfg.Limits.EventInstancesQueryDuration,
		BookingSlotsQueryDuration:   cfg.Limits.BookingSlotsQueryDuration,
	}, nil
}

func runExpanderTick(deps *httpapi.Deps) {
	if err := deps.Expander.Tick(context.Background()); err != nil {
		deps.Logger.Error("reminder expansion tick failed", "err", err)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
