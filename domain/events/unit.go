package events

// UnitCreatedPayload is published after a unit is persisted and the parent
// property counters have been recomputed
type UnitCreatedPayload struct {
	UnitID     string `json:"unit_id"`
	PropertyID string `json:"property_id"`
	UnitNumber string `json:"unit_number"`
	Status     string `json:"status"`
}

// NewUnitCreated builds the unit.created envelope
func NewUnitCreated(tenantID, correlationID, actorID string, payload UnitCreatedPayload) Envelope {
	return NewEnvelope(TypeUnitCreated, tenantID, correlationID, actorID, payload)
}

// UnitUpdatedPayload is published after a unit update settles
type UnitUpdatedPayload struct {
	UnitID        string `json:"unit_id"`
	PropertyID    string `json:"property_id"`
	StatusChanged bool   `json:"status_changed"`
	Status        string `json:"status"`
}

// NewUnitUpdated builds the unit.updated envelope
func NewUnitUpdated(tenantID, correlationID, actorID string, payload UnitUpdatedPayload) Envelope {
	return NewEnvelope(TypeUnitUpdated, tenantID, correlationID, actorID, payload)
}

// UnitDeletedPayload is published after a unit soft-delete
type UnitDeletedPayload struct {
	UnitID     string `json:"unit_id"`
	PropertyID string `json:"property_id"`
	UnitNumber string `json:"unit_number"`
}

// NewUnitDeleted builds the unit.deleted envelope
func NewUnitDeleted(tenantID, correlationID, actorID string, payload UnitDeletedPayload) Envelope {
	return NewEnvelope(TypeUnitDeleted, tenantID, correlationID, actorID, payload)
}

// BulkUnitsCreatedPayload carries every unit id of a persisted batch in a
// single event
type BulkUnitsCreatedPayload struct {
	PropertyID string   `json:"property_id"`
	UnitIDs    []string `json:"unit_ids"`
	Count      int      `json:"count"`
}

// NewBulkUnitsCreated builds the unit.bulk_created envelope
func NewBulkUnitsCreated(tenantID, correlationID, actorID string, payload BulkUnitsCreatedPayload) Envelope {
	return NewEnvelope(TypeBulkUnitsCreated, tenantID, correlationID, actorID, payload)
}

// BulkUnitStatusUpdatedPayload is published after an all-or-nothing batch
// status transition
type BulkUnitStatusUpdatedPayload struct {
	UnitIDs     []string `json:"unit_ids"`
	Status      string   `json:"status"`
	PropertyIDs []string `json:"property_ids"`
}

// NewBulkUnitStatusUpdated builds the unit.bulk_status_updated envelope
func NewBulkUnitStatusUpdated(tenantID, correlationID, actorID string, payload BulkUnitStatusUpdatedPayload) Envelope {
	return NewEnvelope(TypeBulkUnitStatusUpdated, tenantID, correlationID, actorID, payload)
}
