// Package events publishes wake session notifications to Kafka.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/segmentio/kafka-go"

	"example.com/riserite/internal/domain"
)

// EventTypeSessionRecorded is carried in the event_type header.
const EventTypeSessionRecorded = "wake_session.recorded"

var (
	publishedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "riserite",
		Subsystem: "events",
		Name:      "published_total",
		Help:      "Number of wake session events written to Kafka.",
	})
	failedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "riserite",
		Subsystem: "events",
		Name:      "failed_total",
		Help:      "Number of wake session events that could not be written.",
	})
)

func init() {
	prometheus.MustRegister(publishedCounter, failedCounter)
}

// MessageWriter is satisfied by KafkaProducer.
type MessageWriter interface {
	WriteMessages(ctx context.Context, topic string, msgs ...kafka.Message) error
}

// SessionRecorded is the JSON payload of a wake_session.recorded event.
type SessionRecorded struct {
	UserID          string    `json:"userId"`
	Date            string    `json:"date"`
	PushupCount     int       `json:"pushupCount"`
	BrushingSeconds int       `json:"brushingSeconds"`
	WakeCompleted   bool      `json:"wakeCompleted"`
	MotivationTrack string    `json:"motivationTrack,omitempty"`
	Timestamp       int64     `json:"timestamp"`
	RecordedAt      time.Time `json:"recordedAt"`
}

// DefaultPublishTimeout caps how long a publish may hold the request that triggered it.
const DefaultPublishTimeout = 2 * time.Second

// KafkaPublisher implements domain.EventPublisher.
type KafkaPublisher struct {
	writer  MessageWriter
	topic   string
	timeout time.Duration
	now     func() time.Time
}

// PublisherOption configures a KafkaPublisher.
type PublisherOption func(*KafkaPublisher)

// WithPublishTimeout overrides DefaultPublishTimeout. Non-positive values are ignored.
func WithPublishTimeout(d time.Duration) PublisherOption {
	return func(p *KafkaPublisher) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// NewKafkaPublisher constructs a publisher writing to topic.
func NewKafkaPublisher(writer MessageWriter, topic string, opts ...PublisherOption) *KafkaPublisher {
	p := &KafkaPublisher{writer: writer, topic: topic, timeout: DefaultPublishTimeout, now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// PublishSessionRecorded writes one message keyed by user so a user's events stay ordered.
func (p *KafkaPublisher) PublishSessionRecorded(ctx context.Context, record domain.SessionRecord) error {
	body, err := json.Marshal(SessionRecorded{
		UserID:          record.UserID,
		Date:            record.Date,
		PushupCount:     record.PushupCount,
		BrushingSeconds: record.BrushingSeconds,
		WakeCompleted:   record.WakeCompleted.IsCompleted(),
		MotivationTrack: record.MotivationTrack,
		Timestamp:       record.Timestamp,
		RecordedAt:      p.now().UTC(),
	})
	if err != nil {
		failedCounter.Inc()
		return fmt.Errorf("marshal session event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(record.UserID),
		Value: body,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(EventTypeSessionRecorded)},
			{Key: "user_id", Value: []byte(record.UserID)},
		},
	}
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	if err := p.writer.WriteMessages(ctx, p.topic, msg); err != nil {
		failedCounter.Inc()
		return fmt.Errorf("publish session event: %w", err)
	}
	publishedCounter.Inc()
	return nil
}

// NoopPublisher drops events; used when no brokers are configured.
type NoopPublisher struct{}

// PublishSessionRecorded implements domain.EventPublisher.
func (NoopPublisher) PublishSessionRecorded(context.Context, domain.SessionRecord) error { return nil }
