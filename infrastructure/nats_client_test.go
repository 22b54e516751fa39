package infrastructure

import (
	"context"
	"testing"
	"time"

	"casino/economy-bot/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsumerName(t *testing.T) {
	assert.Equal(t, "economy-bot-economy_temprole_expired", consumerName("economy.temprole.expired"))
	assert.Equal(t, "economy-bot-economy_wildcard", consumerName("economy.*"))
	assert.Equal(t, "economy-bot-economy_all", consumerName("economy.>"))
}

func TestRedeliveryDelay(t *testing.T) {
	assert.Equal(t, 5*time.Second, redeliveryDelay(0))
	assert.Equal(t, 5*time.Second, redeliveryDelay(1))
	assert.Equal(t, 10*time.Second, redeliveryDelay(2))
	assert.Equal(t, 40*time.Second, redeliveryDelay(4))
	assert.Equal(t, 2*time.Minute, redeliveryDelay(10))
	assert.Equal(t, 2*time.Minute, redeliveryDelay(1000))
}

func TestMissingSubjects(t *testing.T) {
	have := []string{"economy.balance.changed", "economy.crate.opened"}

	assert.Empty(t, missingSubjects(have, []string{"economy.crate.opened"}))
	assert.Equal(t,
		[]string{"economy.roulette.resolved"},
		missingSubjects(have, []string{"economy.balance.changed", "economy.roulette.resolved"}),
	)
}

func TestNATSClientConfigFrom(t *testing.T) {
	cfg := config.NewTestConfig()
	cfg.NATSServers = "nats://localhost:4222"

	natsCfg := NATSClientConfigFrom(cfg)

	assert.Equal(t, "nats://localhost:4222", natsCfg.Servers)
	assert.Equal(t, 7*24*time.Hour, natsCfg.StreamMaxAge)
	assert.Equal(t, 2*time.Minute, natsCfg.DuplicateWindow)
	assert.Equal(t, 5, natsCfg.MaxDeliver)
	assert.Equal(t, 30*time.Second, natsCfg.AckWait)
}

func TestNATSClient_RequiresConnection(t *testing.T) {
	client := NewNATSClient(NATSClientConfig{})

	require.Error(t, client.Publish(context.Background(), "economy.crate.opened", "id", []byte("{}")))
	require.Error(t, client.Subscribe("economy.crate.opened", func([]byte) error { return nil }))
	require.Error(t, client.ensureStream(EconomyStreamName, "Economy domain events", nil))
	assert.NoError(t, client.Close())
}
