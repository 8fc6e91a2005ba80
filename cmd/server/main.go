package main // Entry point package

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/venue-booking/internal/clock"
	"github.com/iliyamo/venue-booking/internal/config"
	"github.com/iliyamo/venue-booking/internal/handler"
	"github.com/iliyamo/venue-booking/internal/logging"
	"github.com/iliyamo/venue-booking/internal/middleware"
	"github.com/iliyamo/venue-booking/internal/notify"
	"github.com/iliyamo/venue-booking/internal/queue"
	"github.com/iliyamo/venue-booking/internal/repository"
	"github.com/iliyamo/venue-booking/internal/router"
	"github.com/iliyamo/venue-booking/internal/service"
)

func main() {
	_ = godotenv.Load() // .env is optional
	cfg := config.Load()

	lc := config.LoadLogConfig()
	log, err := logging.New(logging.Options{Level: lc.Level, File: lc.File, RotateEvery: lc.RotateEvery, MaxAge: lc.MaxAge})
	if err != nil {
		logrus.WithError(err).Fatal("logger setup failed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	clk := clock.Real()
	store, err := repository.Open(ctx, cfg.DBParams(), clk, true)
	if err != nil {
		log.WithError(err).Fatal("store unavailable")
	}
	defer func() { _ = store.Close() }()

	rdb := config.NewRedisClient(log) // nil when Redis is down
	mc := config.LoadMailConfig()
	mail, waitMail := mailDispatcher(ctx, mc, log)

	d := service.Deps{Store: store, Clock: clk, Mail: mail, Log: log, Policy: config.LoadBookingConfig()}
	cacheCfg := config.LoadCacheConfig()
	var cooldown service.Cooldown
	if rdb != nil {
		cooldown = service.NewRedisCooldown(rdb, "cooldown")
	}
	users := service.NewUserService(d, cfg.BcryptCost)
	b := handler.Base{Log: log}

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(logging.RequestLogger(log))
	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{AllowOrigins: cfg.CORSOrigins}))
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, log))

	router.Mount(e, router.Handlers{
		Health:        &handler.HealthHandler{Base: b, Store: store, Redis: rdb},
		Auth:          handler.NewAuthHandler(b, cfg, users, store),
		Requests:      handler.NewRequestHandler(b, service.NewReservationService(d)),
		Venues:        handler.NewVenueHandler(b, service.NewVenueService(d, middleware.NewCacheInvalidator(cacheCfg, rdb))),
		Users:         handler.NewUserHandler(b, users),
		Reports:       handler.NewReportHandler(b, service.NewReportService(d)),
		Notifications: handler.NewNotificationHandler(b, service.NewNotificationService(d)),
		Contact:       handler.NewContactHandler(b, service.NewContactService(d, cooldown, mc.AdminInbox)),
	}, router.Guards{JWTSecret: cfg.JWTSecret, Users: store.Users()}, middleware.NewRedisCache(cacheCfg, rdb, log))

	addr := ":" + cfg.Port
	go func() {
		log.WithFields(logrus.Fields{"addr": addr, "env": cfg.Env, "db": cfg.DBDriver}).Info("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(sctx); err != nil {
		log.WithError(err).Warn("shutdown")
	}
	waitMail()
	if rdb != nil {
		_ = rdb.Close()
	}
}

// mailDispatcher wires SMTP or the log mailer behind an async dispatcher
// and, when RabbitMQ is configured, puts the queue in front of it.  The
// returned func waits for direct sends still in flight.
func mailDispatcher(ctx context.Context, mc config.MailConfig, log *logrus.Logger) (notify.Dispatcher, func()) {
	var mailer notify.Mailer = notify.LogMailer{Log: log}
	if mc.SMTPHost != "" {
		mailer = notify.NewSMTPMailer(notify.SMTPConfig{
			Host: mc.SMTPHost, Port: mc.SMTPPort, User: mc.SMTPUser, Password: mc.SMTPPassword, From: mc.From,
		}, log)
	}
	direct := notify.NewAsyncDispatcher(mailer, log)
	if mc.QueueURL == "" {
		return direct, direct.Wait
	}

	if mc.ConsumeQueue {
		c := &queue.Consumer{URL: mc.QueueURL, Queue: mc.Queue, Mailer: mailer, AuditPath: mc.AuditPath, Log: log}
		go func() {
			if err := c.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.WithError(err).Error("mail consumer stopped")
			}
		}()
	}
	return queue.NewPublisher(mc.QueueURL, mc.Queue, direct, log), direct.Wait
}
