package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	hellbot "github.com/hellbot-id/hellbot"
	"github.com/hellbot-id/hellbot/internal/api"
	"github.com/hellbot-id/hellbot/internal/chat"
	"github.com/hellbot-id/hellbot/internal/config"
	"github.com/hellbot-id/hellbot/internal/handler"
	"github.com/hellbot-id/hellbot/internal/repository"
	"github.com/hellbot-id/hellbot/internal/service"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	loc, err := cfg.Location()
	if err != nil {
		slog.Error("failed to resolve operating timezone", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := repository.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	migrationsFS, err := fs.Sub(hellbot.MigrationsFS, "migrations")
	if err != nil {
		slog.Error("failed to load embedded migrations", "error", err)
		os.Exit(1)
	}
	if err := repository.RunMigrations(cfg.DatabaseURL, migrationsFS); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	settingsRepo := repository.NewSettingsRepo(pool)
	orderRepo := repository.NewOrderRepo(pool)
	trackingRepo := repository.NewTrackingRepo(pool)
	eventRepo := repository.NewEventRepo(pool)

	wa, err := chat.NewWhatsApp(ctx, cfg.SessionDSN)
	if err != nil {
		slog.Error("failed to init whatsapp client", "error", err)
		os.Exit(1)
	}

	prices := service.DefaultPriceTable()
	rental := service.NewRentalService(settingsRepo, loc, cfg.TrialDays)
	payment := service.NewPaymentService(orderRepo, prices, cfg)
	webhookSvc := service.NewWebhookService(rental, orderRepo, eventRepo, prices, wa, loc)
	notifier := service.NewNotifier(settingsRepo, trackingRepo, rental, wa, loc, cfg.SendDelay)
	hellEvents := service.NewHellEventService(settingsRepo, wa, cfg.SendDelay)
	rotation := service.NewRotationService(settingsRepo, wa, loc, cfg.SendDelay)
	gate := service.NewPermissionGate(settingsRepo, wa, cfg)

	h := handler.New(handler.Deps{
		Cfg:       cfg,
		Gate:      gate,
		Rental:    rental,
		Payment:   payment,
		Rotation:  rotation,
		Prices:    prices,
		Settings:  settingsRepo,
		Messenger: wa,
	})
	handler.RegisterWhatsApp(wa.Client(), h)

	if err := connectWhatsApp(ctx, wa); err != nil {
		slog.Error("failed to connect whatsapp", "error", err)
		os.Exit(1)
	}

	c := cron.New(cron.WithLocation(loc))
	mustSchedule(c, config.ScheduleHourlySweep, func() {
		notifier.SweepExpired(ctx)
		notifier.SweepRenewals(ctx)
	})
	mustSchedule(c, config.ScheduleStaleSweep, func() { notifier.SweepStale(ctx) })
	mustSchedule(c, config.ScheduleRotationRemind, func() { rotation.BroadcastDaily(ctx) })
	c.Start()

	gin.SetMode(gin.ReleaseMode)
	router := api.NewRouter(
		api.NewPaymentWebhookHandler(webhookSvc, cfg.GatewayWebhookSecret),
		api.NewHellEventHandler(hellEvents, cfg.HellIngestToken),
	)
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: router,
	}
	go func() {
		slog.Info("http server listening", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server failed", "error", err)
			stop()
		}
	}()

	slog.Info("bot running", "timezone", cfg.OperatingTZ)
	<-ctx.Done()

	slog.Info("shutting down")
	cronCtx := c.Stop()
	<-cronCtx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http shutdown", "error", err)
	}
	wa.Client().Disconnect()
	slog.Info("stopped gracefully")
}

// mustSchedule registers a job and exits on a bad schedule expression. A
// sweep that silently never runs is worse than a crash at boot.
func mustSchedule(c *cron.Cron, spec string, job func()) {
	if _, err := c.AddFunc(spec, job); err != nil {
		slog.Error("failed to register cron schedule", "schedule", spec, "error", err)
		os.Exit(1)
	}
}

// connectWhatsApp connects the client, driving the QR pairing flow when no
// session exists yet. The QR code is logged; ops scans it from the log
// stream on first deploy.
func connectWhatsApp(ctx context.Context, wa *chat.WhatsApp) error {
	client := wa.Client()
	if client.Store.ID != nil {
		return client.Connect()
	}

	qrChan, err := client.GetQRChannel(ctx)
	if err != nil {
		return fmt.Errorf("get qr channel: %w", err)
	}
	if err := client.Connect(); err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	go func() {
		for evt := range qrChan {
			if evt.Event == "code" {
				slog.Info("scan this QR code to pair", "code", evt.Code)
			} else {
				slog.Info("pairing event", "event", evt.Event)
			}
		}
	}()
	return nil
}
