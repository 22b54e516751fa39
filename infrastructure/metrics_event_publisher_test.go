package infrastructure

import (
	"context"
	"testing"

	"casino/economy-bot/config"
	"casino/economy-bot/domain/entities"
	"casino/economy-bot/domain/events"
	"casino/economy-bot/infrastructure/observability"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func sumOf(t *testing.T, rm metricdata.ResourceMetrics, name string) int64 {
	t.Helper()
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok, "metric %s is not an int64 sum", name)
			var total int64
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
			return total
		}
	}
	return 0
}

func TestMetricsEventPublisher_RecordsAndForwards(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	metrics, err := observability.NewMetricsProviderWithReader(config.NewTestConfig(), reader)
	require.NoError(t, err)

	next := &MockEventPublisher{}
	publisher := NewMetricsEventPublisher(next, metrics)

	published := []events.Event{
		events.BalanceChangeEvent{Kind: entities.BalanceKindCash, ChangeAmount: 90, TransactionType: entities.TransactionTypeTransferIn},
		events.BalanceChangeEvent{Kind: entities.BalanceKindCash, ChangeAmount: -100, TransactionType: entities.TransactionTypeTransferOut},
		events.CrateOpenedEvent{CrateExternalID: "gold", Opened: 3},
		events.BlackjackSettledEvent{Result: entities.BlackjackResultPush},
		events.RouletteResolvedEvent{TotalWagered: 250},
		events.TempRoleExpiredEvent{},
	}
	for _, event := range published {
		require.NoError(t, publisher.Publish(event))
	}
	assert.Equal(t, published, next.PublishedEvents)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	assert.Equal(t, int64(2), sumOf(t, rm, observability.BalanceMutationsTotal))
	assert.Equal(t, int64(90), sumOf(t, rm, observability.TransferVolumeTotal))
	assert.Equal(t, int64(3), sumOf(t, rm, observability.CratesOpenedTotal))
	assert.Equal(t, int64(1), sumOf(t, rm, observability.GameSettlementsTotal))
	assert.Equal(t, int64(1), sumOf(t, rm, observability.RouletteRoundsTotal))
	assert.Equal(t, int64(250), sumOf(t, rm, observability.RouletteWageredTotal))
	assert.Equal(t, int64(1), sumOf(t, rm, observability.TempRolesExpiredTotal))
}

func TestMetricsEventPublisher_NilProvider(t *testing.T) {
	next := &MockEventPublisher{}
	publisher := NewMetricsEventPublisher(next, nil)

	require.NoError(t, publisher.Publish(events.CrateOpenedEvent{Opened: 1}))
	assert.Len(t, next.PublishedEvents, 1)
}
