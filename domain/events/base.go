package events

import (
	"time"

	"github.com/google/uuid"
)

// Event type names published by the aggregate service
const (
	TypePropertyCreated        = "property.created"
	TypePropertyUpdated        = "property.updated"
	TypePropertyDeleted        = "property.deleted"
	TypePropertyManagerChanged = "property.manager_changed"
	TypeUnitCreated            = "unit.created"
	TypeUnitUpdated            = "unit.updated"
	TypeUnitDeleted            = "unit.deleted"
	TypeBulkUnitsCreated       = "unit.bulk_created"
	TypeBulkUnitStatusUpdated  = "unit.bulk_status_updated"
	TypeBlockCreated           = "block.created"
	TypeBlockUpdated           = "block.updated"
	TypeBlockDeleted           = "block.deleted"
)

// Source identifies this service on the shared event bus
const Source = "propcore.properties"

// MetadataActorKey is the metadata entry naming the acting user
const MetadataActorKey = "actor_id"

// Envelope is the standard wrapper for every domain event the service
// publishes. Delivery is at-least-once and best-effort: a failed publish
// never rolls back committed repository writes.
type Envelope struct {
	EventID       string            `json:"event_id"`
	EventType     string            `json:"event_type"`
	Timestamp     time.Time         `json:"timestamp"`
	TenantID      string            `json:"tenant_id"`
	CorrelationID string            `json:"correlation_id"`
	CausationID   string            `json:"causation_id,omitempty"`
	Metadata      map[string]string `json:"metadata,omitempty"`
	Payload       interface{}       `json:"payload"`
}

// NewEnvelope wraps a payload in a fully populated envelope. The causation
// id defaults to the correlation id when the event is the first in a chain.
func NewEnvelope(eventType, tenantID, correlationID, actorID string, payload interface{}) Envelope {
	return Envelope{
		EventID:       uuid.New().String(),
		EventType:     eventType,
		Timestamp:     time.Now().UTC(),
		TenantID:      tenantID,
		CorrelationID: correlationID,
		CausationID:   correlationID,
		Metadata:      map[string]string{MetadataActorKey: actorID},
		Payload:       payload,
	}
}
