package incentive

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gin-gonic/gin"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/TristanXpress/recall-alchemy-portal/module/incentive/activity"
	handler "github.com/TristanXpress/recall-alchemy-portal/module/incentive/internal/handler/http"
	"github.com/TristanXpress/recall-alchemy-portal/module/incentive/internal/handler/subscriber"
	"github.com/TristanXpress/recall-alchemy-portal/module/incentive/internal/repository/database/postgres"
	"github.com/TristanXpress/recall-alchemy-portal/module/incentive/internal/repository/publisher/rabbitmq"
	"github.com/TristanXpress/recall-alchemy-portal/module/incentive/service"
)

// Queues consumed by the event listener.
const (
	ChangeQueue    = rabbitmq.ChangeQueue
	ZoneAlertQueue = rabbitmq.ZoneAlertQueue
	LocationTopic  = subscriber.TopicPattern
)

type Options struct {
	ActivityBuffer        time.Duration
	DefaultSearchRadiusKm float64
	Logger                *slog.Logger
}

type Module struct {
	IncentiveSvc *service.IncentiveService
	DynamicSvc   *service.DynamicIncentiveService
	QuerySvc     *service.QueryService
	ZoneSvc      *service.ZoneService

	incentiveHandler *handler.IncentiveHandler
	dynamicHandler   *handler.DynamicIncentiveHandler
	subscriber       *subscriber.LocationSubscriber
}

func Build(db *sql.DB, amqpConn *amqp.Connection, mqttClient mqtt.Client, opts Options) (*Module, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	incentiveRepo := postgres.NewIncentiveRepo(db)
	dynamicRepo := postgres.NewDynamicIncentiveRepo(db)

	eventPub, err := rabbitmq.NewEventPublisher(amqpConn)
	if err != nil {
		return nil, fmt.Errorf("event publisher: %w", err)
	}

	incentiveSvc := service.NewIncentiveService(incentiveRepo, eventPub, logger)
	dynamicSvc := service.NewDynamicIncentiveService(dynamicRepo, eventPub, logger)
	querySvc := service.NewQueryService(incentiveRepo, dynamicRepo, activity.NewFilter(opts.ActivityBuffer), logger)
	zoneSvc := service.NewZoneService(querySvc, eventPub, opts.DefaultSearchRadiusKm, logger)

	return &Module{
		IncentiveSvc:     incentiveSvc,
		DynamicSvc:       dynamicSvc,
		QuerySvc:         querySvc,
		ZoneSvc:          zoneSvc,
		incentiveHandler: handler.NewIncentiveHandler(incentiveSvc, querySvc),
		dynamicHandler:   handler.NewDynamicIncentiveHandler(dynamicSvc, querySvc, opts.DefaultSearchRadiusKm),
		subscriber:       subscriber.NewLocationSubscriber(mqttClient, zoneSvc, logger),
	}, nil
}

func (m *Module) RegisterRoutes(r *gin.RouterGroup) {
	m.incentiveHandler.Register(r)
	m.dynamicHandler.Register(r)
}

func (m *Module) StartSubscribers() error {
	return m.subscriber.Start()
}

// OnMQTTConnect restores the module's subscriptions after a reconnect.
func (m *Module) OnMQTTConnect(client mqtt.Client) {
	m.subscriber.OnConnect(client)
}

// DeclareEvents declares the exchange and queues the module publishes to.
func DeclareEvents(ch *amqp.Channel) error {
	return rabbitmq.Declare(ch)
}

// Migrate creates the incentive tables if they are missing.
func Migrate(ctx context.Context, db *sql.DB) error {
	return postgres.Migrate(ctx, db)
}
