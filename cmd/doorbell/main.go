package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/example/house-doorbell/internal/application"
	"github.com/example/house-doorbell/internal/config"
	"github.com/example/house-doorbell/internal/hardware"
	httptransport "github.com/example/house-doorbell/internal/http"
	"github.com/example/house-doorbell/internal/notify"
	"github.com/example/house-doorbell/internal/persistence/sqlite"
	"github.com/example/house-doorbell/internal/routing"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	pool, err := sqlite.NewConnectionPool(cfg.SQLitePath)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := pool.Close(); cerr != nil {
			logger.Error("failed to close database", "error", cerr)
		}
	}()

	if err := sqlite.Migrate(context.Background(), pool); err != nil {
		logger.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	idGenerator := uuid.NewString
	now := time.Now

	userRepo := sqlite.NewUserRepository(pool)
	partyRepo := sqlite.NewPartyRepository(pool)
	logRepo := sqlite.NewLogRepository(pool)
	houseStateRepo := sqlite.NewHouseStateRepository(pool)
	notificationRepo := sqlite.NewNotificationRepository(pool, idGenerator, now)

	sinks := []application.NotificationSink{notify.NewDashboardSink(notificationRepo)}
	if cfg.PushGatewayURL != "" {
		sinks = append(sinks, notify.NewPushSink(cfg.PushGatewayURL, userRepo, nil, logger))
	}
	notifications := application.NewNotificationService(notify.NewFanout(sinks...), logger)

	broker, err := hardware.DialAMQP(cfg.AMQPURL, cfg.AMQPExchange)
	if err != nil {
		logger.Error("failed to connect to the door broker", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := broker.Close(); cerr != nil {
			logger.Error("failed to close broker connection", "error", cerr)
		}
	}()
	actuator := hardware.NewActuator(broker, hardware.DefaultTopics(), cfg.DoorAckWait, logger)

	travel := routing.NewOSRMClient(cfg.OSRMBaseURL, routing.Coordinate{
		Latitude:  cfg.HouseLatitude,
		Longitude: cfg.HouseLongitude,
	}, nil)

	partyService := application.NewPartyService(partyRepo, userRepo, logRepo, notifications, idGenerator, now, logger)
	userService := application.NewUserService(userRepo, houseStateRepo, logRepo, notifications, idGenerator, now, logger)
	houseService := application.NewHouseService(houseStateRepo, userRepo, logRepo, notifications, idGenerator, now, logger)
	doorService := application.NewDoorService(userRepo, partyRepo, logRepo, houseStateRepo, actuator, travel, notifications, idGenerator, now, cfg.InnerTravelThreshold, logger)
	feedService := application.NewFeedService(notificationRepo, logger)
	reminderService := application.NewReminderService(partyRepo, userRepo, notifications, now, cfg.ReminderInterval, logger)

	go reminderService.Run(ctx)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Users:         httptransport.NewUserHandler(userService, logger),
		Parties:       httptransport.NewPartyHandler(partyService, logger),
		Door:          httptransport.NewDoorHandler(doorService, logger),
		House:         httptransport.NewHouseHandler(houseService, logger),
		Notifications: httptransport.NewNotificationHandler(feedService, logger),
		Authenticate:  httptransport.RequireUser(userService, logger),
		Middleware: []func(http.Handler) http.Handler{
			httptransport.RequestLogger(logger),
		},
	})

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("doorbell API listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}
