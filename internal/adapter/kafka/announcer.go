// Package kafka publishes refresh announcements so downstream consumers
// learn about a new dataset without polling the store.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/regionpulse/prosperity-index/internal/config"
)

// Announcement is the message body published after a successful refresh.
type Announcement struct {
	CompletedAt time.Time `json:"completed_at"`
	Records     int       `json:"records"`
}

// Announcer produces refresh announcements to a Kafka topic.
// It implements pipeline.Announcer.
type Announcer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewAnnouncer creates a Kafka producer for the configured announcement
// topic.
func NewAnnouncer(cfg *config.Config, logger *slog.Logger) *Announcer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaAnnounceTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Announcer{writer: w, logger: logger}
}

// Announce publishes one announcement message keyed by completion time.
func (a *Announcer) Announce(ctx context.Context, completedAt time.Time, records int) error {
	data, err := json.Marshal(Announcement{CompletedAt: completedAt, Records: records})
	if err != nil {
		return fmt.Errorf("serialize announcement: %w", err)
	}
	msg := kafkago.Message{
		Key:   []byte(completedAt.Format(time.RFC3339)),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "records", Value: []byte(strconv.Itoa(records))},
		},
	}
	return a.writer.WriteMessages(ctx, msg)
}

// Close flushes and closes the producer.
func (a *Announcer) Close() error {
	return a.writer.Close()
}
