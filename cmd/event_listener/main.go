package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/TristanXpress/recall-alchemy-portal/config"
	"github.com/TristanXpress/recall-alchemy-portal/module/incentive"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := config.NewLogger(os.Stderr, cfg.LogLevel)

	conn, err := config.NewRabbitMQ(cfg, "incentive-event-listener")
	if err != nil {
		logger.Error("rabbitmq", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		logger.Error("rabbitmq channel", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() { _ = ch.Close() }()

	if err := incentive.DeclareEvents(ch); err != nil {
		logger.Error("declare", slog.Any("error", err))
		os.Exit(1)
	}

	for _, queue := range []string{incentive.ChangeQueue, incentive.ZoneAlertQueue} {
		msgs, err := ch.Consume(queue, "", true, false, false, false, nil)
		if err != nil {
			logger.Error("consume", slog.String("queue", queue), slog.Any("error", err))
			os.Exit(1)
		}
		go printEvents(queue, msgs)
		logger.Info("consuming", slog.String("queue", queue))
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	logger.Info("shutting down")
}

func printEvents(queue string, msgs <-chan amqp.Delivery) {
	for msg := range msgs {
		var event struct {
			EventType string `json:"eventType"`
			Event     string `json:"event"`
		}
		if err := json.Unmarshal(msg.Body, &event); err != nil {
			continue
		}
		kind := event.EventType
		if kind == "" {
			kind = event.Event
		}
		fmt.Printf("[%s] %s %s\n", queue, kind, string(msg.Body))
	}
}
