package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/TristanXpress/recall-alchemy-portal/module/incentive/domain"
	"github.com/TristanXpress/recall-alchemy-portal/module/incentive/internal/repository/publisher"
)

var _ publisher.EventPublisher = (*EventPublisher)(nil)

const (
	ExchangeName   = "incentive.events"
	ChangeQueue    = "incentive_changes"
	ZoneAlertQueue = "incentive_zone_alerts"

	ChangeRoutingKey    = "change"
	ZoneAlertRoutingKey = "zone_alert"
)

type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type EventPublisher struct {
	ch channel
}

// Declare sets up the exchange and both queues. Consumers call it too so
// either side can start first.
func Declare(ch *amqp.Channel) error {
	if err := ch.ExchangeDeclare(ExchangeName, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	bindings := map[string]string{
		ChangeQueue:    ChangeRoutingKey,
		ZoneAlertQueue: ZoneAlertRoutingKey,
	}
	for queue, key := range bindings {
		if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
			return fmt.Errorf("declare queue %s: %w", queue, err)
		}
		if err := ch.QueueBind(queue, key, ExchangeName, false, nil); err != nil {
			return fmt.Errorf("bind queue %s: %w", queue, err)
		}
	}
	return nil
}

func NewEventPublisher(conn *amqp.Connection) (*EventPublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}
	if err := Declare(ch); err != nil {
		return nil, err
	}
	return &EventPublisher{ch: ch}, nil
}

type changeMessage struct {
	EventType domain.ChangeEventType `json:"eventType"`
	Table     string                 `json:"table"`
	Old       any                    `json:"old,omitempty"`
	New       any                    `json:"new,omitempty"`
	Timestamp string                 `json:"timestamp"`
}

type zoneAlertMessage struct {
	IncentiveID string               `json:"incentive_id"`
	SubjectID   string               `json:"subject_id"`
	UserType    domain.UserType      `json:"user_type"`
	Event       domain.ZoneEventType `json:"event"`
	Location    alertLocation        `json:"location"`
	Timestamp   int64                `json:"timestamp"`
}

type alertLocation struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (p *EventPublisher) PublishChange(ctx context.Context, event *domain.ChangeEvent) error {
	msg := changeMessage{
		EventType: event.EventType,
		Table:     event.Table,
		Old:       event.Old,
		New:       event.New,
		Timestamp: event.Timestamp.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	}
	return p.publish(ctx, ChangeRoutingKey, msg)
}

func (p *EventPublisher) PublishZoneAlert(ctx context.Context, alert *domain.ZoneAlert) error {
	msg := zoneAlertMessage{
		IncentiveID: alert.IncentiveID,
		SubjectID:   alert.SubjectID,
		UserType:    alert.UserType,
		Event:       alert.Event,
		Location: alertLocation{
			Latitude:  alert.Location.Lat,
			Longitude: alert.Location.Lng,
		},
		Timestamp: alert.Timestamp,
	}
	return p.publish(ctx, ZoneAlertRoutingKey, msg)
}

func (p *EventPublisher) publish(ctx context.Context, key string, msg any) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}

	return p.ch.PublishWithContext(ctx, ExchangeName, key, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
}
