package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"example.com/riserite/internal/config"
	"example.com/riserite/internal/domain"
	"example.com/riserite/internal/events"
)

func TestBuildMemoryWithoutBrokers(t *testing.T) {
	cfg := config.Defaults()
	cfg.StoreBackend = config.BackendMemory
	cfg.StreakTimezone = "UTC"

	c, err := Build(context.Background(), cfg)
	require.NoError(t, err)
	defer c.Close()

	require.IsType(t, events.NoopPublisher{}, c.Publisher)

	ctx := context.Background()
	require.NoError(t, c.Service.RecordSession(ctx, domain.WakeSession{UserID: "u", Date: "2026-10-18", WakeCompleted: true}))
	got, err := c.Service.GetSession(ctx, "u", "2026-10-18")
	require.NoError(t, err)
	require.Equal(t, domain.Completed, got.WakeCompleted)
}

func TestBuildWithBrokersUsesKafkaPublisher(t *testing.T) {
	cfg := config.Defaults()
	cfg.StoreBackend = config.BackendMemory
	cfg.KafkaBrokers = []string{"localhost:9092"}

	c, err := Build(context.Background(), cfg)
	require.NoError(t, err)
	defer c.Close()

	require.IsType(t, &events.KafkaPublisher{}, c.Publisher)
}
