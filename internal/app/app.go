// Package app assembles the wake session service from configuration.
package app

import (
	"context"
	"log"
	"os"

	"example.com/riserite/internal/config"
	"example.com/riserite/internal/domain"
	"example.com/riserite/internal/events"
	"example.com/riserite/internal/persistence"
)

// Components holds everything built from configuration.
type Components struct {
	Store     *persistence.Store
	Service   *domain.Service
	Publisher domain.EventPublisher
	producer  *events.KafkaProducer
}

// Close releases the store and any Kafka writers.
func (c *Components) Close() {
	if c.producer != nil {
		if err := c.producer.Close(); err != nil {
			log.Printf("close kafka producer: %v", err)
		}
	}
	c.Store.Close()
}

// Build opens the configured store and wires the domain service around it.
func Build(ctx context.Context, cfg config.Config) (*Components, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	store, err := persistence.Open(ctx, cfg, log.New(os.Stderr, "[store] ", log.LstdFlags))
	if err != nil {
		return nil, err
	}

	c := &Components{Store: store, Publisher: events.NoopPublisher{}}
	if len(cfg.KafkaBrokers) > 0 {
		c.producer = events.NewKafkaProducer(cfg.KafkaBrokers)
		c.Publisher = events.NewKafkaPublisher(c.producer, cfg.SessionTopic)
	}

	c.Service = domain.NewService(store,
		domain.WithPublisher(c.Publisher),
		domain.WithLocation(loc),
		domain.WithLogger(log.New(os.Stderr, "[domain] ", log.LstdFlags)),
	)
	return c, nil
}
