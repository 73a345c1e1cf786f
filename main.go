package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"decorbook/config"
	"decorbook/cron"
	"decorbook/database"
	"decorbook/handlers"
	"decorbook/middleware"
	"decorbook/routes"
	"decorbook/services/admin"
	"decorbook/services/booking"
	"decorbook/services/contact"
	"decorbook/services/notification"
	"decorbook/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

const notificationQueue = "notifications"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	logger, err := utils.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("main: exiting", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := database.Open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	pingers := map[string]utils.Pinger{"store": store}

	// Redis is optional: it backs the cross-instance day lock and the
	// notification queue.
	var lockClient *redis.Client
	if cfg.RedisAddr != "" {
		lockClient, err = database.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisLockDB)
		if err != nil {
			logger.Warn("redis unavailable; day lock stays process-local", zap.Error(err))
		} else {
			pingers["redis"] = utils.PingFunc(func(ctx context.Context) error { return lockClient.Ping(ctx).Err() })
		}
	}

	mailer, err := newMailer(cfg, logger)
	if err != nil {
		return err
	}

	composer := notification.NewComposer(cfg.BusinessName, cfg.AdminEmail, cfg.Location())
	deliverer, err := notification.NewEmailNotifier(composer, mailer, logger)
	if err != nil {
		return err
	}

	// In queue mode the request path only enqueues; the worker delivers.
	notifier := deliverer
	var (
		queueClient *asynq.Client
		worker      *cron.NotificationWorker
	)
	if cfg.NotifyMode == "queue" {
		redisOpt := asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisQueueDB}
		queueClient = asynq.NewClient(redisOpt)
		notifier, err = notification.NewEmailNotifier(composer, notification.NewQueueMailer(queueClient, notificationQueue), logger)
		if err != nil {
			return err
		}
		worker = cron.NewNotificationWorker(redisOpt, notificationQueue, 5, deliverer, logger)
		go func() {
			if err := worker.Start(ctx); err != nil {
				logger.Error("notification worker not running; queued emails wait in Redis", zap.Error(err))
			}
		}()
	}

	var locker booking.DayLocker = booking.NewLocalDayLocker()
	if lockClient != nil {
		locker = booking.NewRedisDayLocker(lockClient, cfg.DayLockTTL, logger)
	}
	bookingSvc := booking.NewService(store.Bookings, notifier, cfg.Location(), logger,
		booking.WithDayLocker(locker),
		booking.WithNotifyTimeout(cfg.NotifyTimeout),
	)
	contactSvc := contact.NewService(store.Contacts, notifier, logger, cfg.NotifyTimeout)

	monitor := utils.NewHealthMonitor(pingers)
	go monitor.Run(ctx, 30*time.Second)

	limiter := middleware.NewRateLimiter(cfg.MaxRequestsPerMin, logger)

	scheduler := cron.NewScheduler(cfg.Location(), logger)
	if err := scheduler.Every(cfg.CompletionSweepSpec, "completion-sweep", cron.CompletionSweep(bookingSvc, logger)); err != nil {
		return err
	}
	if err := scheduler.Every("@every 10m", "rate-limiter-sweep", func(context.Context) error {
		limiter.Sweep()
		return nil
	}); err != nil {
		return err
	}
	scheduler.Start()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	adminSvc := admin.NewService(store.Bookings, store.Contacts, cfg.Location(), logger)

	debug := cfg.ExposeErrorDetail()
	router := routes.NewRouter(&handlers.HandlerBundle{
		Booking: handlers.NewBookingHandler(bookingSvc, logger, cfg.Location(), debug),
		Contact: handlers.NewContactHandler(contactSvc, logger, debug),
		Admin:   handlers.NewAdminHandler(adminSvc, logger, debug),
		Health:  &handlers.HealthHandler{Monitor: monitor, MaxAge: time.Minute},
	}, routes.Options{
		Logger:         logger,
		AllowedOrigins: cfg.AllowedOrigins(),
		Limiter:        limiter,
	})

	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.AppPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("starting server", zap.String("addr", srv.Addr), zap.String("storage", store.Driver), zap.String("notify_mode", cfg.NotifyMode))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
		logger.Info("main: server is shutting down...")
	case err := <-serveErr:
		if err != nil {
			logger.Error("main: server failed", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.NotifyTimeout+5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("main: server forced to shutdown", zap.Error(err))
	}
	if err := scheduler.Stop(shutdownCtx); err != nil {
		logger.Warn("scheduled jobs still running at shutdown", zap.Error(err))
	}
	if err := bookingSvc.Drain(shutdownCtx); err != nil {
		logger.Warn("booking notifications still pending at shutdown", zap.Error(err))
	}
	if err := contactSvc.Drain(shutdownCtx); err != nil {
		logger.Warn("contact notifications still pending at shutdown", zap.Error(err))
	}
	if worker != nil {
		worker.Shutdown()
	}
	if queueClient != nil {
		_ = queueClient.Close()
	}
	if lockClient != nil {
		_ = lockClient.Close()
	}
	if err := store.Close(shutdownCtx); err != nil {
		logger.Warn("failed to close store", zap.Error(err))
	}
	logger.Info("main: server stopped gracefully")
	return nil
}

// newMailer picks SMTP when it is configured and falls back to logging the
// rendered messages.
func newMailer(cfg *config.Config, logger *zap.Logger) (notification.Mailer, error) {
	if !cfg.SMTPEnabled() {
		logger.Warn("SMTP not configured; emails are only logged")
		return notification.NewLogMailer(logger), nil
	}
	smtp, err := notification.NewSMTPMailer(notification.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.MailFrom,
	})
	if err != nil {
		return nil, err
	}
	return smtp, nil
}
