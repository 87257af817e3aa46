package subscriber

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/TristanXpress/recall-alchemy-portal/module/incentive/domain"
)

// TopicPattern carries the user type and subject id:
// /incentives/{user_type}/{subject_id}/location
const TopicPattern = "/incentives/+/+/location"

type zoneService interface {
	CheckAndAlert(ctx context.Context, ping *domain.LocationPing) error
}

type locationMessage struct {
	SubjectID string  `json:"subject_id"`
	UserType  string  `json:"user_type"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timestamp int64   `json:"timestamp"`
}

type LocationSubscriber struct {
	client  mqtt.Client
	zoneSvc zoneService
	logger  *slog.Logger
}

func NewLocationSubscriber(client mqtt.Client, zoneSvc zoneService, logger *slog.Logger) *LocationSubscriber {
	return &LocationSubscriber{
		client:  client,
		zoneSvc: zoneSvc,
		logger:  logger,
	}
}

func (s *LocationSubscriber) Start() error {
	return s.subscribe(s.client)
}

// OnConnect subscribes again after the client reconnects. A clean-session
// reconnect drops every subscription on the broker side.
func (s *LocationSubscriber) OnConnect(client mqtt.Client) {
	if err := s.subscribe(client); err != nil {
		s.logger.Error("mqtt resubscribe failed", slog.String("topic", TopicPattern), slog.Any("error", err))
		return
	}
	s.logger.Info("mqtt subscribed", slog.String("topic", TopicPattern))
}

func (s *LocationSubscriber) subscribe(client mqtt.Client) error {
	token := client.Subscribe(TopicPattern, 1, s.handleMessage)
	token.Wait()
	return token.Error()
}

func (s *LocationSubscriber) handleMessage(_ mqtt.Client, msg mqtt.Message) {
	var raw locationMessage
	if err := json.Unmarshal(msg.Payload(), &raw); err != nil {
		s.logger.Warn("invalid location message", slog.String("topic", msg.Topic()), slog.Any("error", err))
		return
	}

	if err := fillFromTopic(&raw, msg.Topic()); err != nil {
		s.logger.Warn("topic mismatch", slog.String("topic", msg.Topic()), slog.Any("error", err))
		return
	}

	if err := validateLocationMessage(&raw); err != nil {
		s.logger.Warn("validation error", slog.String("topic", msg.Topic()), slog.Any("error", err))
		return
	}

	ping := &domain.LocationPing{
		SubjectID: raw.SubjectID,
		UserType:  domain.UserType(raw.UserType),
		Location:  domain.Coordinate{Lat: raw.Latitude, Lng: raw.Longitude},
		Timestamp: time.Unix(raw.Timestamp, 0),
	}

	if err := s.zoneSvc.CheckAndAlert(context.Background(), ping); err != nil {
		s.logger.Error("zone check error",
			slog.String("subject_id", ping.SubjectID),
			slog.Any("error", err),
		)
	}
}

// fillFromTopic takes user type and subject id from the topic when the
// payload omits them, and rejects payloads that disagree with it.
func fillFromTopic(msg *locationMessage, topic string) error {
	parts := strings.Split(strings.Trim(topic, "/"), "/")
	if len(parts) != 4 || parts[0] != "incentives" || parts[3] != "location" {
		return fmt.Errorf("unexpected topic %q", topic)
	}
	userType, subjectID := parts[1], parts[2]

	if msg.UserType == "" {
		msg.UserType = userType
	} else if msg.UserType != userType {
		return fmt.Errorf("user_type %q does not match topic %q", msg.UserType, userType)
	}
	if msg.SubjectID == "" {
		msg.SubjectID = subjectID
	} else if msg.SubjectID != subjectID {
		return fmt.Errorf("subject_id %q does not match topic %q", msg.SubjectID, subjectID)
	}
	return nil
}

func validateLocationMessage(msg *locationMessage) error {
	if msg.SubjectID == "" {
		return fmt.Errorf("subject_id: required")
	}
	if !domain.UserType(msg.UserType).Valid() {
		return fmt.Errorf("user_type: must be customer or driver")
	}
	if err := (domain.Coordinate{Lat: msg.Latitude, Lng: msg.Longitude}).Validate(); err != nil {
		return fmt.Errorf("location: %w", err)
	}
	if msg.Timestamp <= 0 {
		return fmt.Errorf("timestamp: must be positive")
	}
	return nil
}
