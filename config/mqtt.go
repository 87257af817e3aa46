package config

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// ConnectHooks runs registered handlers on every (re)connect of an MQTT
// client. Handlers can be added after the client is created.
type ConnectHooks struct {
	mu       sync.Mutex
	handlers []mqtt.OnConnectHandler
}

func (h *ConnectHooks) Add(handler mqtt.OnConnectHandler) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handlers = append(h.handlers, handler)
}

func (h *ConnectHooks) run(client mqtt.Client) {
	h.mu.Lock()
	handlers := append([]mqtt.OnConnectHandler(nil), h.handlers...)
	h.mu.Unlock()

	for _, handler := range handlers {
		handler(client)
	}
}

func NewMQTT(cfg *Config, logger *slog.Logger, hooks *ConnectHooks) (mqtt.Client, error) {
	return NewMQTTClient(cfg.MQTTBroker, cfg.MQTTClientID, logger, hooks)
}

func NewMQTTClient(broker, clientID string, logger *slog.Logger, hooks *ConnectHooks) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetMaxReconnectInterval(30 * time.Second).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			logger.Warn("mqtt connection lost", slog.String("broker", broker), slog.Any("error", err))
		})
	if hooks != nil {
		opts.SetOnConnectHandler(hooks.run)
	}

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect: %w", token.Error())
	}
	return client, nil
}
