package eventbridge

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"propcore-backend/application/ports"
	"propcore-backend/domain/events"
	"propcore-backend/pkg/observability"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// PutEventsAPI is the slice of the EventBridge client the publisher needs
type PutEventsAPI interface {
	PutEvents(ctx context.Context, params *eventbridge.PutEventsInput, optFns ...func(*eventbridge.Options)) (*eventbridge.PutEventsOutput, error)
}

// Publisher implements the EventBus interface using AWS EventBridge. Calls
// run through a circuit breaker so a bus outage degrades to dropped events
// instead of stalling every write path.
type Publisher struct {
	client       PutEventsAPI
	eventBusName string
	source       string
	breaker      *gobreaker.CircuitBreaker
	metrics      *observability.Collector
	logger       *zap.Logger
}

// NewPublisher creates a new EventBridge publisher
func NewPublisher(
	client PutEventsAPI,
	eventBusName string,
	metrics *observability.Collector,
	logger *zap.Logger,
) ports.EventBus {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "eventbridge",
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     15 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("event bus circuit state changed",
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return &Publisher{
		client:       client,
		eventBusName: eventBusName,
		source:       events.Source,
		breaker:      breaker,
		metrics:      metrics,
		logger:       logger,
	}
}

// Publish sends a single envelope to EventBridge
func (p *Publisher) Publish(ctx context.Context, envelope events.Envelope) error {
	return p.PublishBatch(ctx, []events.Envelope{envelope})
}

// PublishBatch sends multiple envelopes to EventBridge
func (p *Publisher) PublishBatch(ctx context.Context, envelopes []events.Envelope) error {
	if len(envelopes) == 0 {
		return nil
	}

	// EventBridge limits PutEvents to 10 entries per call
	const batchSize = 10

	for i := 0; i < len(envelopes); i += batchSize {
		end := i + batchSize
		if end > len(envelopes) {
			end = len(envelopes)
		}
		if err := p.putEvents(ctx, envelopes[i:end]); err != nil {
			return err
		}
	}
	return nil
}

func (p *Publisher) putEvents(ctx context.Context, envelopes []events.Envelope) error {
	// sources pairs each entry with the envelope it was built from. A
	// marshal failure drops the envelope, so entry index i is not
	// envelope index i.
	entries := make([]types.PutEventsRequestEntry, 0, len(envelopes))
	sources := make([]events.Envelope, 0, len(envelopes))
	for _, env := range envelopes {
		detail, err := json.Marshal(env)
		if err != nil {
			p.logger.Error("failed to marshal event envelope",
				zap.Error(err),
				zap.String("eventType", env.EventType),
				zap.String("eventId", env.EventID),
			)
			p.metrics.EventsPublished.WithLabelValues(env.EventType, "failure").Inc()
			continue
		}
		entries = append(entries, types.PutEventsRequestEntry{
			EventBusName: aws.String(p.eventBusName),
			Source:       aws.String(p.source),
			DetailType:   aws.String(env.EventType),
			Detail:       aws.String(string(detail)),
			Time:         aws.Time(env.Timestamp),
		})
		sources = append(sources, env)
	}
	if len(entries) == 0 {
		return nil
	}

	result, err := p.breaker.Execute(func() (interface{}, error) {
		return p.client.PutEvents(ctx, &eventbridge.PutEventsInput{Entries: entries})
	})
	if err != nil {
		for _, env := range sources {
			p.metrics.EventsPublished.WithLabelValues(env.EventType, "failure").Inc()
		}
		return fmt.Errorf("put events: %w", err)
	}

	out := result.(*eventbridge.PutEventsOutput)
	for i, entry := range out.Entries {
		if i >= len(sources) {
			break
		}
		if entry.ErrorCode != nil {
			p.logger.Error("event entry rejected",
				zap.String("eventType", sources[i].EventType),
				zap.String("errorCode", aws.ToString(entry.ErrorCode)),
				zap.String("errorMessage", aws.ToString(entry.ErrorMessage)),
			)
			p.metrics.EventsPublished.WithLabelValues(sources[i].EventType, "failure").Inc()
			continue
		}
		p.metrics.EventsPublished.WithLabelValues(sources[i].EventType, "success").Inc()
	}
	if out.FailedEntryCount > 0 {
		return fmt.Errorf("%d events failed to publish", out.FailedEntryCount)
	}

	p.logger.Debug("events published",
		zap.Int("count", len(entries)),
		zap.String("eventBus", p.eventBusName),
	)
	return nil
}
