package main // Entry point package

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata" // reminder time zone on hosts without zoneinfo

	"github.com/google/logger"

	"github.com/iliyamo/festa-do-viso/internal/config"
	"github.com/iliyamo/festa-do-viso/internal/database"
	"github.com/iliyamo/festa-do-viso/internal/handler"
	"github.com/iliyamo/festa-do-viso/internal/middleware"
	"github.com/iliyamo/festa-do-viso/internal/queue"
	"github.com/iliyamo/festa-do-viso/internal/repository"
	"github.com/iliyamo/festa-do-viso/internal/router"
	"github.com/iliyamo/festa-do-viso/internal/service"
)

func main() {
	defer logger.Init("festa-do-viso", true, false, os.Stderr).Close()

	cfg := config.Load() // fatal on bad env
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ---- Storage ----
	db, dialect, err := database.Open(cfg)
	if err != nil {
		logger.Fatalf("database: %v", err)
	}
	defer db.Close()
	if err := database.Migrate(ctx, db, dialect); err != nil {
		logger.Fatalf("migrate: %v", err)
	}
	seeded, err := database.Seed(ctx, db, database.SeedOptions{
		AdminUsername: cfg.AdminUsername,
		AdminPassword: cfg.AdminPassword,
		BcryptCost:    cfg.BcryptCost,
		SheetName:     cfg.SeedSheetName,
	})
	if err != nil {
		logger.Fatalf("seed: %v", err)
	}
	if seeded.AdminCreated {
		logger.Warningf("seeded default admin %q; change its password", cfg.AdminUsername)
	}
	if seeded.SheetCreated {
		logger.Infof("seeded first sheet %q", cfg.SeedSheetName)
	}

	sheetRepo := repository.NewSheetRepo(db, dialect)
	claimRepo := repository.NewClaimRepo(db, dialect)
	winnerRepo := repository.NewWinnerRepo(db, dialect)

	// ---- Events ----
	evCfg, err := config.LoadEventsConfig()
	if err != nil {
		logger.Fatalf("events config: %v", err)
	}
	pub, err := queue.NewPublisher(evCfg)
	if err != nil {
		logger.Fatalf("events publisher: %v", err)
	}
	defer pub.Close()
	if evCfg.Consume && evCfg.Backend != config.EventsNone {
		elog := queue.NewEventLog(evCfg.LogDir)
		go func() {
			logger.Infof("events: consuming %s into %s", evCfg.Backend, elog.Path())
			if err := queue.StartConsumer(ctx, evCfg, elog.Handle); err != nil && !errors.Is(err, context.Canceled) {
				logger.Errorf("events consumer stopped: %v", err)
			}
		}()
	}

	// ---- Services ----
	opts := []service.Option{service.WithPublisher(pub)}
	sheets := service.NewSheetService(sheetRepo, opts...)
	claims := service.NewClaimService(sheetRepo, claimRepo, cfg.ClaimsRequireActiveSheet, opts...)
	winners := service.NewWinnerService(sheetRepo, winnerRepo, opts...)
	stats := service.NewStatsService(repository.NewStatsRepo(db), cfg.StatsAvailableScope)
	auth := service.NewAuthService(service.AuthConfig{
		JWTSecret:      cfg.JWTSecret,
		AccessTTLMin:   cfg.AccessTTLMin,
		RefreshTTLDays: cfg.RefreshTTLDays,
	}, repository.NewAdminRepo(db), repository.NewTokenRepo(db))

	// ---- Reminder ----
	remCfg, err := config.LoadReminderConfig()
	if err != nil {
		logger.Fatalf("reminder config: %v", err)
	}
	if remCfg.Enabled {
		loc, err := time.LoadLocation(remCfg.Timezone)
		if err != nil {
			logger.Fatalf("reminder time zone %q: %v", remCfg.Timezone, err)
		}
		r := &queue.Reminder{
			Sheets:  sheets,
			Events:  pub,
			Weekday: remCfg.Weekday,
			Hour:    remCfg.Hour,
			Minute:  remCfg.Minute,
			Loc:     loc,
			Timeout: remCfg.Timeout,
		}
		go r.Run(ctx)
	}

	// ---- HTTP ----
	rdb := config.NewRedisClient() // nil disables cache and rate limit
	if rdb != nil {
		defer rdb.Close()
	}
	rc := middleware.NewResponseCache(config.LoadCacheConfig(), rdb)

	e := router.NewEcho(rc)
	router.RegisterRoutes(e, &handler.HealthHandler{DB: db})
	router.RegisterAuth(e, handler.NewAuthHandler(auth), cfg.JWTSecret)
	router.RegisterPublic(e, handler.NewPublicHandler(sheets, claims, winners, stats), rc, config.LoadRateLimitConfig(), rdb)
	router.RegisterAdmin(e, handler.NewAdminHandler(sheets, claims, winners), cfg.JWTSecret)

	addr := ":" + cfg.Port
	go func() {
		logger.Infof("listening on %s (env=%s, db=%s)", addr, cfg.Env, dialect)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("http: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("http shutdown: %v", err)
	}
}
