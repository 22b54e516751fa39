package observability

import (
	"context"
	"fmt"
	"sync"
	"time"

	"casino/economy-bot/config"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

// MetricsProvider manages OpenTelemetry metrics for the economy bot
type MetricsProvider struct {
	config        *config.Config
	meterProvider *sdkmetric.MeterProvider
	meter         metric.Meter
	initialized   bool
	mu            sync.RWMutex

	// Metric instruments
	balanceMutationsCounter      metric.Int64Counter
	transferVolumeCounter        metric.Int64Counter
	cratesOpenedCounter          metric.Int64Counter
	gameSettlementsCounter       metric.Int64Counter
	rouletteRoundsCounter        metric.Int64Counter
	rouletteWageredCounter       metric.Int64Counter
	revocationsGauge             metric.Int64UpDownCounter
	tempRolesExpiredCounter      metric.Int64Counter
	conflictRetriesCounter       metric.Int64Counter
	natsMessagesReceivedCounter  metric.Int64Counter
	natsMessagesPublishedCounter metric.Int64Counter
}

// NewMetricsProvider creates a new metrics provider
func NewMetricsProvider(cfg *config.Config) *MetricsProvider {
	return &MetricsProvider{
		config: cfg,
	}
}

// NewMetricsProviderWithReader builds an enabled provider around a custom reader.
// Tests pass an sdkmetric.ManualReader to collect what was recorded.
func NewMetricsProviderWithReader(cfg *config.Config, reader sdkmetric.Reader) (*MetricsProvider, error) {
	mp := &MetricsProvider{config: cfg}
	mp.meterProvider = sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	mp.meter = mp.meterProvider.Meter("economy-bot")
	if err := mp.createInstruments(); err != nil {
		return nil, err
	}
	mp.initialized = true
	return mp, nil
}

// Initialize sets up the OpenTelemetry metrics provider
func (mp *MetricsProvider) Initialize(ctx context.Context) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if mp.initialized {
		log.Info("Metrics provider already initialized")
		return nil
	}

	if !mp.config.OTelEnabled {
		log.Info("OpenTelemetry metrics disabled")
		mp.initialized = true
		return nil
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(mp.config.OTelServiceName),
			attribute.String("environment", mp.config.Environment),
		),
	)
	if err != nil {
		return fmt.Errorf("failed to create resource: %w", err)
	}

	var exporter sdkmetric.Exporter
	switch mp.config.OTelExporterType {
	case "console":
		exporter, err = stdoutmetric.New()
		if err != nil {
			return fmt.Errorf("failed to create console exporter: %w", err)
		}
		log.Info("Using console metric exporter")

	case "otlp":
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		exporter, err = otlpmetricgrpc.New(ctx,
			otlpmetricgrpc.WithEndpoint(mp.config.OTelOTLPEndpoint),
			otlpmetricgrpc.WithInsecure(),
		)
		if err != nil {
			return fmt.Errorf("failed to create OTLP exporter: %w", err)
		}
		log.WithField("endpoint", mp.config.OTelOTLPEndpoint).Info("Using OTLP metric exporter")

	case "none":
		log.Info("Metrics export disabled (exporter_type='none')")
		mp.initialized = true
		return nil

	default:
		return fmt.Errorf("unknown exporter type: %s", mp.config.OTelExporterType)
	}

	mp.meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(
			sdkmetric.NewPeriodicReader(
				exporter,
				sdkmetric.WithInterval(time.Duration(mp.config.OTelExportIntervalMillis)*time.Millisecond),
			),
		),
	)

	otel.SetMeterProvider(mp.meterProvider)
	mp.meter = mp.meterProvider.Meter("economy-bot")

	if err := mp.createInstruments(); err != nil {
		return fmt.Errorf("failed to create instruments: %w", err)
	}

	mp.initialized = true
	log.Info("Metrics provider initialized successfully")
	return nil
}

// createInstruments creates all metric instruments
func (mp *MetricsProvider) createInstruments() error {
	counters := []struct {
		target      *metric.Int64Counter
		name        string
		description string
	}{
		{&mp.balanceMutationsCounter, BalanceMutationsTotal, "Total number of committed balance mutations"},
		{&mp.transferVolumeCounter, TransferVolumeTotal, "Total coins moved between members"},
		{&mp.cratesOpenedCounter, CratesOpenedTotal, "Total number of crates opened"},
		{&mp.gameSettlementsCounter, GameSettlementsTotal, "Total number of settled games"},
		{&mp.rouletteRoundsCounter, RouletteRoundsTotal, "Total number of resolved roulette rounds"},
		{&mp.rouletteWageredCounter, RouletteWageredTotal, "Total coins wagered on roulette"},
		{&mp.tempRolesExpiredCounter, TempRolesExpiredTotal, "Total number of revoked temporary roles"},
		{&mp.conflictRetriesCounter, ConflictRetriesTotal, "Total number of transactions retried after a conflict"},
		{&mp.natsMessagesReceivedCounter, NATSMessagesReceivedTotal, "Total number of NATS messages received"},
		{&mp.natsMessagesPublishedCounter, NATSMessagesPublishedTotal, "Total number of NATS messages published"},
	}

	for _, c := range counters {
		counter, err := mp.meter.Int64Counter(c.name, metric.WithDescription(c.description), metric.WithUnit("1"))
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", c.name, err)
		}
		*c.target = counter
	}

	// UpDownCounter for gauge-like behavior
	var err error
	mp.revocationsGauge, err = mp.meter.Int64UpDownCounter(
		RevocationsScheduled,
		metric.WithDescription("Current number of scheduled role revocations"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create revocations gauge: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the metrics provider
func (mp *MetricsProvider) Shutdown(ctx context.Context) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if mp.meterProvider != nil {
		return mp.meterProvider.Shutdown(ctx)
	}
	return nil
}

// RecordBalanceMutation records a committed balance change
func (mp *MetricsProvider) RecordBalanceMutation(transactionType, kind string) {
	if !mp.isEnabled() {
		return
	}

	mp.balanceMutationsCounter.Add(context.Background(), 1,
		metric.WithAttributes(
			attribute.String(LabelType, transactionType),
			attribute.String(LabelKind, kind),
		),
	)
}

// RecordTransfer records coins moved from one member to another
func (mp *MetricsProvider) RecordTransfer(amount int64) {
	if !mp.isEnabled() {
		return
	}
	mp.transferVolumeCounter.Add(context.Background(), amount)
}

// RecordCratesOpened records crates consumed by one opening
func (mp *MetricsProvider) RecordCratesOpened(crateExternalID string, count int) {
	if !mp.isEnabled() {
		return
	}

	mp.cratesOpenedCounter.Add(context.Background(), int64(count),
		metric.WithAttributes(
			attribute.String(LabelType, crateExternalID),
		),
	)
}

// RecordGameSettlement records a finished game
func (mp *MetricsProvider) RecordGameSettlement(game, result string) {
	if !mp.isEnabled() {
		return
	}

	mp.gameSettlementsCounter.Add(context.Background(), 1,
		metric.WithAttributes(
			attribute.String(LabelGame, game),
			attribute.String(LabelResult, result),
		),
	)
}

// RecordRouletteRound records a resolved betting window
func (mp *MetricsProvider) RecordRouletteRound(wagered int64) {
	if !mp.isEnabled() {
		return
	}

	mp.rouletteRoundsCounter.Add(context.Background(), 1)
	mp.rouletteWageredCounter.Add(context.Background(), wagered)
}

// UpdateScheduledRevocations moves the scheduled revocation gauge
func (mp *MetricsProvider) UpdateScheduledRevocations(delta int64) {
	if !mp.isEnabled() {
		return
	}
	mp.revocationsGauge.Add(context.Background(), delta)
}

// RecordTempRoleExpired records a revoked temporary role
func (mp *MetricsProvider) RecordTempRoleExpired() {
	if !mp.isEnabled() {
		return
	}
	mp.tempRolesExpiredCounter.Add(context.Background(), 1)
}

// RecordConflictRetry records a transaction retried after a serialization failure or deadlock
func (mp *MetricsProvider) RecordConflictRetry() {
	if !mp.isEnabled() {
		return
	}
	mp.conflictRetriesCounter.Add(context.Background(), 1)
}

// RecordNATSMessageReceived records a NATS message being received
func (mp *MetricsProvider) RecordNATSMessageReceived(eventType string) {
	if !mp.isEnabled() {
		return
	}

	mp.natsMessagesReceivedCounter.Add(context.Background(), 1,
		metric.WithAttributes(
			attribute.String(LabelEventType, eventType),
		),
	)
}

// RecordNATSMessagePublished records a NATS message being published
func (mp *MetricsProvider) RecordNATSMessagePublished(eventType string) {
	if !mp.isEnabled() {
		return
	}

	mp.natsMessagesPublishedCounter.Add(context.Background(), 1,
		metric.WithAttributes(
			attribute.String(LabelEventType, eventType),
		),
	)
}

// isEnabled checks if instruments exist. A nil provider records nothing.
func (mp *MetricsProvider) isEnabled() bool {
	if mp == nil {
		return false
	}
	mp.mu.RLock()
	defer mp.mu.RUnlock()
	return mp.initialized && mp.meter != nil
}

// Global metrics provider instance
var (
	globalMetrics *MetricsProvider
	metricsOnce   sync.Once
)

// InitializeGlobalMetrics initializes the global metrics provider
func InitializeGlobalMetrics(ctx context.Context, cfg *config.Config) error {
	var err error
	metricsOnce.Do(func() {
		globalMetrics = NewMetricsProvider(cfg)
		err = globalMetrics.Initialize(ctx)
	})
	return err
}

// GetMetrics returns the global metrics provider, nil before initialization
func GetMetrics() *MetricsProvider {
	return globalMetrics
}

// ShutdownGlobalMetrics shuts down the global metrics provider
func ShutdownGlobalMetrics(ctx context.Context) error {
	if globalMetrics != nil {
		return globalMetrics.Shutdown(ctx)
	}
	return nil
}
