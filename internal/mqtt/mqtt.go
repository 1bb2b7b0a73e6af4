// Package mqtt publishes weather alert events to an MQTT broker.
package mqtt

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"weatherdash/internal/config"
	"weatherdash/internal/modules/weather/alerts"
)

var errStopped = errors.New("publisher stopped")

type Publisher struct {
	client    mqtt.Client
	cfg       config.AlertsConfig
	logger    *slog.Logger
	mu        sync.RWMutex
	connected bool

	stopCh   chan struct{}
	stopOnce sync.Once
}

func NewPublisher(cfg config.AlertsConfig, logger *slog.Logger) *Publisher {
	p := newPublisher(nil, cfg, logger)

	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", cfg.MQTTBroker, cfg.MQTTPort))
	opts.SetClientID(cfg.MQTTClientID)

	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(5 * time.Second)
	opts.SetMaxReconnectInterval(60 * time.Second)

	opts.SetKeepAlive(30 * time.Second)
	opts.SetPingTimeout(10 * time.Second)

	opts.SetOnConnectHandler(func(_ mqtt.Client) {
		p.setConnected(true)
		p.logger.Info("mqtt connected", "broker", cfg.MQTTBroker, "port", cfg.MQTTPort)
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		p.setConnected(false)
		p.logger.Warn("mqtt connection lost", "error", err)
	})

	p.client = mqtt.NewClient(opts)
	return p
}

func newPublisher(client mqtt.Client, cfg config.AlertsConfig, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{
		client: client,
		cfg:    cfg,
		logger: logger,
		stopCh: make(chan struct{}),
	}
}

func (p *Publisher) Name() string { return "mqtt" }

// Connect waits for the initial connection, honouring ctx and Disconnect.
func (p *Publisher) Connect(ctx context.Context) error {
	select {
	case <-p.stopCh:
		return errStopped
	default:
	}
	if p.IsConnected() {
		return nil
	}
	if err := p.wait(ctx, p.client.Connect()); err != nil {
		return fmt.Errorf("mqtt connect: %w", err)
	}
	p.setConnected(true)
	return nil
}

// Topic is <prefix>/<country code>, or <prefix>/global without one.
func (p *Publisher) Topic(ev alerts.Event) string {
	cc := strings.ToLower(strings.TrimSpace(ev.CountryCode))
	if cc == "" {
		cc = "global"
	}
	return p.cfg.MQTTTopicPrefix + "/" + cc
}

// PublishAlerts sends ev with QoS 1. It implements alerts.Sink.
func (p *Publisher) PublishAlerts(ctx context.Context, ev alerts.Event) error {
	if !p.IsConnected() {
		return fmt.Errorf("mqtt client not connected")
	}
	data, err := ev.Encode()
	if err != nil {
		return fmt.Errorf("marshal alerts: %w", err)
	}

	topic := p.Topic(ev)
	if err := p.wait(ctx, p.client.Publish(topic, 1, false, data)); err != nil {
		p.logger.Error("failed to publish alerts", "topic", topic, "error", err)
		return fmt.Errorf("publish alerts: %w", err)
	}
	p.logger.Debug("published alerts", "topic", topic, "count", len(ev.Alerts))
	return nil
}

func (p *Publisher) wait(ctx context.Context, token mqtt.Token) error {
	const poll = 200 * time.Millisecond
	for {
		if token.WaitTimeout(poll) {
			return token.Error()
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-p.stopCh:
			return errStopped
		default:
		}
	}
}

func (p *Publisher) IsConnected() bool {
	p.mu.RLock()
	connected := p.connected
	p.mu.RUnlock()
	return connected && p.client.IsConnected()
}

// Disconnect is idempotent. After it, Connect returns errStopped.
func (p *Publisher) Disconnect() {
	p.stopOnce.Do(func() { close(p.stopCh) })
	if p.client != nil {
		p.client.Disconnect(250)
	}
	p.setConnected(false)
	p.logger.Info("mqtt publisher disconnected")
}

func (p *Publisher) setConnected(v bool) {
	p.mu.Lock()
	p.connected = v
	p.mu.Unlock()
}
