package infrastructure

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"casino/economy-bot/config"

	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"
)

const (
	clientName           = "economy-bot"
	maxRedeliveryDelay   = 2 * time.Minute
	baseRedeliveryDelay  = 5 * time.Second
	maxReconnectAttempts = 10
	reconnectWait        = 2 * time.Second
)

// NATSClientConfig tunes the economy stream and its consumers
type NATSClientConfig struct {
	Servers         string
	StreamMaxAge    time.Duration
	DuplicateWindow time.Duration
	MaxDeliver      int
	AckWait         time.Duration
}

// NATSClientConfigFrom reads the NATS settings of the application config
func NATSClientConfigFrom(cfg *config.Config) NATSClientConfig {
	return NATSClientConfig{
		Servers:         cfg.NATSServers,
		StreamMaxAge:    cfg.NATSStreamMaxAge,
		DuplicateWindow: cfg.NATSDuplicateWindow,
		MaxDeliver:      cfg.NATSMaxDeliver,
		AckWait:         cfg.NATSAckWait,
	}
}

// NATSClient publishes economy events to JetStream and runs durable consumers.
// Publishes carry the envelope id, so a publish retried inside the duplicate window is stored once.
type NATSClient struct {
	cfg           NATSClientConfig
	nc            *nats.Conn
	js            nats.JetStreamContext
	subscriptions map[string]*nats.Subscription
	mu            sync.RWMutex
}

// NewNATSClient creates a disconnected client
func NewNATSClient(cfg NATSClientConfig) *NATSClient {
	return &NATSClient{
		cfg:           cfg,
		subscriptions: make(map[string]*nats.Subscription),
	}
}

// Connect opens the connection and its JetStream context
func (c *NATSClient) Connect(ctx context.Context) error {
	opts := []nats.Option{
		nats.Name(clientName),
		nats.MaxReconnects(maxReconnectAttempts),
		nats.ReconnectWait(reconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				log.WithError(err).Error("NATS disconnected with error")
			} else {
				log.Warn("NATS disconnected")
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("NATS reconnected")
		}),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			fields := log.Fields{"error": err}
			if sub != nil {
				fields["subject"] = sub.Subject
			}
			log.WithFields(fields).Error("NATS async error")
		}),
	}

	nc, err := nats.Connect(c.cfg.Servers, opts...)
	if err != nil {
		return fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return fmt.Errorf("failed to create JetStream context: %w", err)
	}

	c.nc = nc
	c.js = js

	log.WithField("servers", c.cfg.Servers).Info("Connected to NATS with JetStream")
	return nil
}

// Publish stores one message. msgID deduplicates retried publishes of the same event.
func (c *NATSClient) Publish(ctx context.Context, subject, msgID string, data []byte) error {
	if c.js == nil {
		return fmt.Errorf("not connected to NATS JetStream")
	}

	opts := []nats.PubOpt{nats.Context(ctx)}
	if msgID != "" {
		opts = append(opts, nats.MsgId(msgID))
	}
	ack, err := c.js.Publish(subject, data, opts...)
	if err != nil {
		return fmt.Errorf("failed to publish message to subject %s: %w", subject, err)
	}

	log.WithFields(log.Fields{
		"subject":   subject,
		"msgId":     msgID,
		"size":      len(data),
		"duplicate": ack.Duplicate,
	}).Debug("Published message to NATS")
	return nil
}

// Subscribe runs handler on a durable consumer of the subject. A failed message is
// redelivered with a growing delay and terminated after MaxDeliver attempts.
func (c *NATSClient) Subscribe(subject string, handler func([]byte) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.js == nil {
		return fmt.Errorf("not connected to NATS JetStream")
	}

	sub, err := c.js.Subscribe(
		subject,
		func(msg *nats.Msg) {
			c.handle(subject, msg, handler)
		},
		nats.Durable(consumerName(subject)),
		nats.ManualAck(),
		nats.AckExplicit(),
		nats.MaxDeliver(c.cfg.MaxDeliver),
		nats.AckWait(c.cfg.AckWait),
	)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", subject, err)
	}

	c.subscriptions[subject] = sub
	log.WithField("subject", subject).Info("Subscribed to NATS subject")
	return nil
}

func (c *NATSClient) handle(subject string, msg *nats.Msg, handler func([]byte) error) {
	err := handler(msg.Data)
	if err == nil {
		if ackErr := msg.Ack(); ackErr != nil {
			log.WithError(ackErr).Error("Failed to ACK message")
		}
		return
	}

	var delivered uint64 = 1
	if meta, metaErr := msg.Metadata(); metaErr == nil {
		delivered = meta.NumDelivered
	}
	fields := log.Fields{
		"subject":   subject,
		"delivered": delivered,
		"error":     err,
	}

	if c.cfg.MaxDeliver > 0 && delivered >= uint64(c.cfg.MaxDeliver) {
		log.WithFields(fields).Error("Dropping economy event after repeated handler failures")
		if termErr := msg.Term(); termErr != nil {
			log.WithError(termErr).Error("Failed to terminate message")
		}
		return
	}

	delay := redeliveryDelay(delivered)
	fields["retryIn"] = delay
	log.WithFields(fields).Warn("Failed to process message, redelivering")
	if nakErr := msg.NakWithDelay(delay); nakErr != nil {
		log.WithError(nakErr).Error("Failed to NAK message")
	}
}

// Close unsubscribes every consumer and drains the connection
func (c *NATSClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for subject, sub := range c.subscriptions {
		if err := sub.Unsubscribe(); err != nil {
			log.WithFields(log.Fields{
				"subject": subject,
				"error":   err,
			}).Error("Failed to unsubscribe")
		}
	}
	c.subscriptions = make(map[string]*nats.Subscription)

	if c.nc == nil {
		return nil
	}
	// Drain flushes pending publishes and acks before closing
	if err := c.nc.Drain(); err != nil {
		c.nc.Close()
		return fmt.Errorf("failed to drain NATS connection: %w", err)
	}
	log.Info("NATS connection closed")
	return nil
}

// ensureStream creates the stream, or widens an existing one to cover subjects it lacks.
// Event types added by a release are picked up without recreating the stream.
func (c *NATSClient) ensureStream(streamName, description string, subjects []string) error {
	if c.js == nil {
		return fmt.Errorf("not connected to NATS JetStream")
	}

	info, err := c.js.StreamInfo(streamName)
	if err == nil {
		missing := missingSubjects(info.Config.Subjects, subjects)
		if len(missing) == 0 {
			log.WithField("stream", streamName).Info("JetStream stream already exists")
			return nil
		}
		updated := info.Config
		updated.Subjects = append(slices.Clone(updated.Subjects), missing...)
		if _, err := c.js.UpdateStream(&updated); err != nil {
			return fmt.Errorf("failed to add subjects to stream %s: %w", streamName, err)
		}
		log.WithFields(log.Fields{
			"stream": streamName,
			"added":  missing,
		}).Info("Added subjects to JetStream stream")
		return nil
	}

	cfg := &nats.StreamConfig{
		Name:        streamName,
		Subjects:    subjects,
		Retention:   nats.LimitsPolicy,
		MaxAge:      c.cfg.StreamMaxAge,
		Duplicates:  c.cfg.DuplicateWindow,
		Storage:     nats.FileStorage,
		Replicas:    1,
		Description: description,
	}
	if _, err := c.js.AddStream(cfg); err != nil {
		return fmt.Errorf("failed to create stream %s: %w", streamName, err)
	}

	log.WithFields(log.Fields{
		"stream":   streamName,
		"subjects": subjects,
	}).Info("Created JetStream stream")
	return nil
}

// consumerName derives a durable name, which may not contain dots or wildcards
func consumerName(subject string) string {
	replacer := strings.NewReplacer(".", "_", "*", "wildcard", ">", "all")
	return clientName + "-" + replacer.Replace(subject)
}

// redeliveryDelay doubles per delivery, capped
func redeliveryDelay(delivered uint64) time.Duration {
	delay := baseRedeliveryDelay
	for i := uint64(1); i < delivered && delay < maxRedeliveryDelay; i++ {
		delay *= 2
	}
	return min(delay, maxRedeliveryDelay)
}

func missingSubjects(have, want []string) []string {
	var missing []string
	for _, subject := range want {
		if !slices.Contains(have, subject) {
			missing = append(missing, subject)
		}
	}
	return missing
}
