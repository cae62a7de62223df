// Package kafka publishes the events of a built log to Kafka as CloudEvents.
package kafka

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/IBM/sarama"
	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/google/uuid"
	"github.com/valyala/fastjson"

	"github.com/jittakal/xesgen/internal/errors"
	"github.com/jittakal/xesgen/pkg/event"
)

// DefaultEventType is used when no event type is configured.
const DefaultEventType = "org.xes-standard.event"

// SequenceExtension carries the position of the event in the log.
const SequenceExtension = "sequence"

// PublisherConfig contains Kafka producer configuration.
type PublisherConfig struct {
	BootstrapServers []string
	Topic            string
	EventType        string
	// Source is the CloudEvents source, normally the log name.
	Source      string
	Compression string
	Security    SecurityConfig
}

// MetricsCollector defines metrics operations for publishing.
type MetricsCollector interface {
	AddEventsPublished(topic string, status string, n int)
}

// Publisher sends every event of a log as one CloudEvents JSON message.
type Publisher struct {
	producer  sarama.SyncProducer
	topic     string
	eventType string
	source    string
	now       func() time.Time
	logger    *slog.Logger
	metrics   MetricsCollector
	mu        sync.Mutex
	closed    bool
}

// NewPublisher connects a sync producer to the configured brokers.
func NewPublisher(cfg PublisherConfig, logger *slog.Logger, metrics MetricsCollector) (*Publisher, error) {
	if len(cfg.BootstrapServers) == 0 {
		return nil, fmt.Errorf("kafka bootstrap servers are required")
	}

	saramaConfig := sarama.NewConfig()
	saramaConfig.Version = sarama.V2_8_0_0
	saramaConfig.Producer.RequiredAcks = sarama.WaitForAll
	saramaConfig.Producer.Retry.Max = 5
	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Return.Errors = true
	saramaConfig.Producer.Compression = compressionCodec(cfg.Compression)
	saramaConfig.Producer.Idempotent = true
	saramaConfig.Net.MaxOpenRequests = 1

	if err := configureSecurity(saramaConfig, cfg.Security); err != nil {
		return nil, fmt.Errorf("failed to configure security: %w", err)
	}

	producer, err := sarama.NewSyncProducer(cfg.BootstrapServers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create sync producer: %w", err)
	}

	logger.Info("kafka publisher created",
		"bootstrap_servers", cfg.BootstrapServers,
		"topic", cfg.Topic,
		"security_protocol", cfg.Security.Protocol,
	)

	return NewPublisherWithProducer(producer, cfg, logger, metrics)
}

// NewPublisherWithProducer wraps an existing producer.
func NewPublisherWithProducer(
	producer sarama.SyncProducer,
	cfg PublisherConfig,
	logger *slog.Logger,
	metrics MetricsCollector,
) (*Publisher, error) {
	if cfg.Topic == "" {
		return nil, fmt.Errorf("kafka topic is required")
	}

	eventType := cfg.EventType
	if eventType == "" {
		eventType = DefaultEventType
	}
	source := cfg.Source
	if source == "" {
		source = "xesgen"
	}

	return &Publisher{
		producer:  producer,
		topic:     cfg.Topic,
		eventType: eventType,
		source:    source,
		now:       time.Now,
		logger:    logger,
		metrics:   metrics,
	}, nil
}

// Publish sends all events of log in one batch and returns how many were
// acknowledged.
func (p *Publisher) Publish(ctx context.Context, log *event.Log) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return 0, errors.ErrPublisherClosed
	}
	if log == nil {
		return 0, nil
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	msgs := make([]*sarama.ProducerMessage, 0, log.EventCount())
	seq := 0
	for _, trace := range log.Traces {
		for _, ev := range trace.Events {
			msg, err := p.message(ev, seq)
			if err != nil {
				return 0, fmt.Errorf("event %d: %w", seq, err)
			}
			msgs = append(msgs, msg)
			seq++
		}
	}
	if len(msgs) == 0 {
		return 0, nil
	}

	if err := p.producer.SendMessages(msgs); err != nil {
		failed := len(msgs)
		var perrs sarama.ProducerErrors
		if stderrors.As(err, &perrs) {
			failed = len(perrs)
		}
		p.record("success", len(msgs)-failed)
		p.record("error", failed)

		p.logger.Error("failed to publish events",
			"topic", p.topic,
			"failed", failed,
			"total", len(msgs),
			"error", err,
		)
		return len(msgs) - failed, fmt.Errorf("failed to send events: %w", err)
	}

	p.record("success", len(msgs))
	p.logger.Info("published events",
		"topic", p.topic,
		"count", len(msgs),
		"source", p.source,
	)

	return len(msgs), nil
}

func (p *Publisher) record(status string, n int) {
	if p.metrics != nil && n > 0 {
		p.metrics.AddEventsPublished(p.topic, status, n)
	}
}

func (p *Publisher) message(ev event.Event, seq int) (*sarama.ProducerMessage, error) {
	ce, err := p.cloudEvent(ev, seq)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(ce)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal CloudEvent: %w", err)
	}

	return &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(ce.ID()),
		Value: sarama.ByteEncoder(payload),
		Headers: []sarama.RecordHeader{
			{Key: []byte("ce_specversion"), Value: []byte(ce.SpecVersion())},
			{Key: []byte("ce_type"), Value: []byte(ce.Type())},
			{Key: []byte("ce_source"), Value: []byte(ce.Source())},
			{Key: []byte("ce_id"), Value: []byte(ce.ID())},
		},
	}, nil
}

// cloudEvent converts ev. The subject is the concept:name attribute when it
// is present; data is the attribute map with typed JSON values.
func (p *Publisher) cloudEvent(ev event.Event, seq int) (cloudevents.Event, error) {
	ce := cloudevents.NewEvent()
	ce.SetSpecVersion(cloudevents.VersionV1)
	ce.SetID(uuid.NewString())
	ce.SetSource(p.source)
	ce.SetType(p.eventType)
	ce.SetTime(p.now().UTC())
	ce.SetExtension(SequenceExtension, strconv.Itoa(seq))

	if name, ok := ev.Get("concept:name"); ok {
		ce.SetSubject(name.Value.String())
	}

	if err := ce.SetData(cloudevents.ApplicationJSON, eventData(ev)); err != nil {
		return ce, fmt.Errorf("failed to set event data: %w", err)
	}
	if err := ce.Validate(); err != nil {
		return ce, fmt.Errorf("invalid CloudEvent: %w", err)
	}

	return ce, nil
}

// eventData renders the attributes of ev as a JSON object in order.
func eventData(ev event.Event) []byte {
	var a fastjson.Arena
	o := a.NewObject()
	for _, attr := range ev.Attributes() {
		var v *fastjson.Value
		switch attr.Value.Kind() {
		case event.KindDiscrete:
			i, _ := attr.Value.AsDiscrete()
			v = a.NewNumberString(strconv.FormatInt(i, 10))
		case event.KindContinuous:
			f, _ := attr.Value.AsContinuous()
			v = a.NewNumberFloat64(f)
		case event.KindBoolean:
			if b, _ := attr.Value.AsBoolean(); b {
				v = a.NewTrue()
			} else {
				v = a.NewFalse()
			}
		default:
			s, _ := attr.Value.AsLiteral()
			v = a.NewString(s)
		}
		o.Set(attr.Key, v)
	}
	return o.MarshalTo(nil)
}

// Close closes the underlying producer.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true
	p.logger.Info("closing kafka publisher")

	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

func compressionCodec(name string) sarama.CompressionCodec {
	switch name {
	case "gzip":
		return sarama.CompressionGZIP
	case "snappy":
		return sarama.CompressionSnappy
	case "lz4":
		return sarama.CompressionLZ4
	case "zstd":
		return sarama.CompressionZSTD
	default:
		return sarama.CompressionNone
	}
}
