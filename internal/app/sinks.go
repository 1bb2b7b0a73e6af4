package app

import (
	"context"
	"log/slog"
	"time"

	"weatherdash/internal/config"
	"weatherdash/internal/modules/weather/alerts"
	"weatherdash/internal/mqtt"
	"weatherdash/internal/queue"
)

const mqttConnectTimeout = 5 * time.Second

// buildSinks creates the configured alert sink. The returned close func is
// never nil.
func buildSinks(ctx context.Context, cfg config.AlertsConfig, logger *slog.Logger) ([]alerts.Sink, func()) {
	switch cfg.Sink {
	case "mqtt":
		publisher := mqtt.NewPublisher(cfg, logger)
		// Short timeout so startup does not block when the broker is down.
		connectCtx, cancel := context.WithTimeout(ctx, mqttConnectTimeout)
		err := publisher.Connect(connectCtx)
		cancel()
		if err != nil {
			logger.Warn("mqtt connection failed (continuing, paho keeps retrying)", "error", err)
		}
		return []alerts.Sink{publisher}, func() {
			logger.Info("mqtt disconnecting")
			publisher.Disconnect()
		}
	case "kafka":
		producer := queue.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
		return []alerts.Sink{producer}, func() {
			if err := producer.Close(); err != nil {
				logger.Error("kafka producer close", "error", err)
			}
		}
	default:
		return nil, func() {}
	}
}
