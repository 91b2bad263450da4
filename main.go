package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/campusconnect/rsvp-service/config"
	"github.com/campusconnect/rsvp-service/internal/consumer"
	"github.com/campusconnect/rsvp-service/internal/handler"
	"github.com/campusconnect/rsvp-service/internal/middleware"
	"github.com/campusconnect/rsvp-service/internal/repository"
	"github.com/campusconnect/rsvp-service/internal/service"
	"github.com/campusconnect/rsvp-service/pkg/database"
	"github.com/campusconnect/rsvp-service/pkg/rabbitmq"
	"github.com/labstack/echo/v4"
	echoMw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	db := database.NewPostgresDB(cfg.DSN())

	// Event sync: the directory service owns events, we mirror them.
	mqConsumer, err := rabbitmq.NewConsumer(cfg.RabbitURL)
	if err != nil {
		log.Fatal().Err(err).Msg("connect to RabbitMQ consumer")
	}
	defer mqConsumer.Close()

	msgs, err := mqConsumer.Consume()
	if err != nil {
		log.Fatal().Err(err).Msg("start consuming")
	}

	eventConsumer := consumer.NewEventConsumer(db, log.With().Str("component", "event-consumer").Logger())
	eventConsumer.Start(msgs)

	publisher, err := rabbitmq.NewPublisher(cfg.RabbitURL)
	if err != nil {
		log.Fatal().Err(err).Msg("connect to RabbitMQ publisher")
	}
	defer publisher.Close()

	// Repositories
	eventRepo := repository.NewEventRepository(db)
	rsvpRepo := repository.NewRsvpRepository(db)
	notifRepo := repository.NewNotificationRepository(db)

	// Services
	promoter := service.NewWaitlistPromoter(rsvpRepo, eventRepo, notifRepo, publisher,
		log.With().Str("component", "waitlist-promoter").Logger())
	rsvpSvc := service.NewRsvpService(rsvpRepo, eventRepo, promoter,
		log.With().Str("component", "rsvp-service").Logger())

	// Scheduled sweep: retries promotions missed on cancellation.
	go func() {
		ticker := time.NewTicker(cfg.SweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				promoted, err := promoter.Sweep(ctx, time.Now())
				if err != nil {
					log.Warn().Err(err).Msg("waitlist sweep failed")
					continue
				}
				if promoted > 0 {
					log.Info().Int("promoted", promoted).Msg("waitlist sweep")
				}
			}
		}
	}()

	// Echo
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = middleware.ErrorHandler
	e.Use(echoMw.RequestLoggerWithConfig(echoMw.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v echoMw.RequestLoggerValues) error {
			log.Info().Str("method", v.Method).Str("uri", v.URI).Int("status", v.Status).Msg("request")
			return nil
		},
	}))
	e.Use(echoMw.Recover())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok", "service": "rsvp-service"})
	})

	handler.NewRsvpHandler(rsvpSvc, eventRepo, rsvpRepo).RegisterRoutes(e)

	go func() {
		log.Info().Str("port", cfg.ServerPort).Msg("RSVP service starting")
		if err := e.Start(":" + cfg.ServerPort); err != nil {
			log.Info().Err(err).Msg("server stopped")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown server")
	}
}
