package local

import (
	"context"
	"sync"

	"propcore-backend/application/ports"
	"propcore-backend/domain/events"

	"go.uber.org/zap"
)

// Bus is an in-process EventBus for local development and tests. It logs
// every envelope and keeps them in memory for inspection.
type Bus struct {
	mu        sync.Mutex
	published []events.Envelope
	logger    *zap.Logger
}

// NewBus creates an empty local bus
func NewBus(logger *zap.Logger) *Bus {
	return &Bus{logger: logger}
}

var _ ports.EventBus = (*Bus)(nil)

// Publish records a single envelope
func (b *Bus) Publish(ctx context.Context, envelope events.Envelope) error {
	return b.PublishBatch(ctx, []events.Envelope{envelope})
}

// PublishBatch records multiple envelopes
func (b *Bus) PublishBatch(ctx context.Context, envelopes []events.Envelope) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, env := range envelopes {
		b.published = append(b.published, env)
		b.logger.Debug("event published locally",
			zap.String("eventType", env.EventType),
			zap.String("eventId", env.EventID),
			zap.String("tenantId", env.TenantID),
		)
	}
	return nil
}

// Published returns a copy of everything published so far
func (b *Bus) Published() []events.Envelope {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]events.Envelope, len(b.published))
	copy(out, b.published)
	return out
}

// Reset clears the recorded envelopes
func (b *Bus) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.published = nil
}
