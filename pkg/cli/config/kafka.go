package config

import (
	"context"
	"log/slog"
	"strings"

	"github.com/secmon-lab/retention/pkg/domain/model"
	"github.com/secmon-lab/retention/pkg/service/event"
	"github.com/urfave/cli/v3"
)

// Kafka holds configuration of the connection event stream
type Kafka struct {
	Brokers []string
	Topic   string
}

// Flags returns CLI flags for Kafka configuration
func (k *Kafka) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringSliceFlag{
			Name:        "kafka-brokers",
			Usage:       "Kafka brokers receiving connector events (host:port)",
			Category:    "Events",
			Sources:     cli.EnvVars("RETENTION_KAFKA_BROKERS"),
			Destination: &k.Brokers,
		},
		&cli.StringFlag{
			Name:        "kafka-topic",
			Usage:       "Kafka topic of connector events",
			Category:    "Events",
			Value:       "retention.connector.events",
			Sources:     cli.EnvVars("RETENTION_KAFKA_TOPIC"),
			Destination: &k.Topic,
		},
	}
}

// Publisher is an EventPublisher that may hold a connection
type Publisher interface {
	Publish(ctx context.Context, ev *model.ConnectionEvent) error
	Close() error
}

// Configure returns a Kafka publisher, or a logging publisher when no
// broker is configured
func (k *Kafka) Configure(logger *slog.Logger) Publisher {
	if !k.IsConfigured() {
		logger.Info("Kafka not configured, connector events are logged only")
		return nopCloser{event.NewLogger()}
	}

	logger.Info("Configuring Kafka event publisher",
		slog.String("brokers", strings.Join(k.Brokers, ",")),
		slog.String("topic", k.Topic),
	)
	return event.NewKafka(k.Brokers, k.Topic)
}

// IsConfigured checks if at least one broker is set
func (k *Kafka) IsConfigured() bool {
	return len(k.Brokers) > 0 && k.Topic != ""
}

// LogValue returns structured log value
func (k Kafka) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("brokers", strings.Join(k.Brokers, ",")),
		slog.String("topic", k.Topic),
	)
}

type nopCloser struct {
	*event.Logger
}

func (nopCloser) Close() error { return nil }
