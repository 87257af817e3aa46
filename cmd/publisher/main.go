package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"syscall"
	"time"

	"github.com/TristanXpress/recall-alchemy-portal/config"
	"github.com/TristanXpress/recall-alchemy-portal/module/incentive/domain"
)

type locationMessage struct {
	SubjectID string  `json:"subject_id"`
	UserType  string  `json:"user_type"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timestamp int64   `json:"timestamp"`
}

type subject struct {
	id       string
	userType domain.UserType
}

func randomSubject() subject {
	if rand.IntN(4) == 0 {
		return subject{id: fmt.Sprintf("CUS-%04d", rand.IntN(10000)), userType: domain.UserTypeCustomer}
	}
	return subject{id: fmt.Sprintf("DRV-%04d", rand.IntN(10000)), userType: domain.UserTypeDriver}
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <interval_seconds>\n", os.Args[0])
		os.Exit(1)
	}

	intervalSec, err := strconv.Atoi(os.Args[1])
	if err != nil || intervalSec <= 0 {
		fmt.Fprintf(os.Stderr, "error: interval must be a positive integer\n")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := config.NewLogger(os.Stdout, cfg.LogLevel)

	client, err := config.NewMQTTClient(cfg.MQTTBroker, cfg.MQTTClientID+"-mock-publisher", logger, nil)
	if err != nil {
		logger.Error("mqtt", slog.Any("error", err))
		os.Exit(1)
	}
	defer client.Disconnect(250)

	cities := make([]string, 0, len(domain.PhilippineCityCoordinates))
	for name := range domain.PhilippineCityCoordinates {
		cities = append(cities, name)
	}
	sort.Strings(cities)

	pool := make([]subject, 5)
	for i := range pool {
		pool[i] = randomSubject()
	}

	logger.Info("publishing mock pings",
		slog.String("broker", cfg.MQTTBroker),
		slog.Int("interval_seconds", intervalSec),
		slog.Int("subjects", len(pool)),
	)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(time.Duration(intervalSec) * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-sig:
			logger.Info("shutting down")
			return
		case <-ticker.C:
		}

		s := pool[rand.IntN(len(pool))]
		city := cities[rand.IntN(len(cities))]
		center := domain.PhilippineCityCoordinates[city]

		// ~2km drift around the city center
		msg := locationMessage{
			SubjectID: s.id,
			UserType:  string(s.userType),
			Latitude:  center.Lat + (rand.Float64()-0.5)*0.036,
			Longitude: center.Lng + (rand.Float64()-0.5)*0.036,
			Timestamp: time.Now().Unix(),
		}

		payload, _ := json.Marshal(msg)
		topic := fmt.Sprintf("/incentives/%s/%s/location", s.userType, s.id)

		token := client.Publish(topic, 1, false, payload)
		token.Wait()
		if err := token.Error(); err != nil {
			logger.Warn("publish failed", slog.String("topic", topic), slog.Any("error", err))
			continue
		}

		logger.Info("published", slog.String("topic", topic), slog.String("city", city))
	}
}
