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

	"github.com/gin-gonic/gin"

	"github.com/TristanXpress/recall-alchemy-portal/config"
	"github.com/TristanXpress/recall-alchemy-portal/module/incentive"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := config.NewLogger(os.Stdout, cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	db, err := config.NewPostgres(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	if err := incentive.Migrate(ctx, db); err != nil {
		return err
	}

	amqpConn, err := config.NewRabbitMQ(cfg, "incentive-server")
	if err != nil {
		return err
	}
	defer func() { _ = amqpConn.Close() }()

	var mqttHooks config.ConnectHooks
	mqttClient, err := config.NewMQTT(cfg, logger, &mqttHooks)
	if err != nil {
		return err
	}
	defer mqttClient.Disconnect(250)

	incentiveModule, err := incentive.Build(db, amqpConn, mqttClient, incentive.Options{
		ActivityBuffer:        cfg.ActivityBuffer,
		DefaultSearchRadiusKm: cfg.DefaultSearchRadiusKm,
		Logger:                logger,
	})
	if err != nil {
		return err
	}

	mqttHooks.Add(incentiveModule.OnMQTTConnect)
	if err := incentiveModule.StartSubscribers(); err != nil {
		return err
	}
	logger.Info("subscribed", slog.String("topic", incentive.LocationTopic))

	r := gin.New()
	r.Use(gin.Recovery())

	health := config.NewHealthChecker(db, amqpConn, mqttClient)
	health.Register(r)

	incentiveModule.RegisterRoutes(&r.RouterGroup)

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
