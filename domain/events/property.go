package events

// PropertyCreatedPayload is published after a property is persisted
type PropertyCreatedPayload struct {
	PropertyID string `json:"property_id"`
	Code       string `json:"code"`
	Name       string `json:"name"`
	OwnerID    string `json:"owner_id"`
}

// NewPropertyCreated builds the property.created envelope
func NewPropertyCreated(tenantID, correlationID, actorID string, payload PropertyCreatedPayload) Envelope {
	return NewEnvelope(TypePropertyCreated, tenantID, correlationID, actorID, payload)
}

// PropertyUpdatedPayload is published after a property update settles
type PropertyUpdatedPayload struct {
	PropertyID string `json:"property_id"`
}

// NewPropertyUpdated builds the property.updated envelope
func NewPropertyUpdated(tenantID, correlationID, actorID string, payload PropertyUpdatedPayload) Envelope {
	return NewEnvelope(TypePropertyUpdated, tenantID, correlationID, actorID, payload)
}

// PropertyDeletedPayload is published after a property soft-delete
type PropertyDeletedPayload struct {
	PropertyID string `json:"property_id"`
	Code       string `json:"code"`
}

// NewPropertyDeleted builds the property.deleted envelope
func NewPropertyDeleted(tenantID, correlationID, actorID string, payload PropertyDeletedPayload) Envelope {
	return NewEnvelope(TypePropertyDeleted, tenantID, correlationID, actorID, payload)
}

// PropertyManagerChangedPayload is published after a manager assignment
type PropertyManagerChangedPayload struct {
	PropertyID string `json:"property_id"`
	ManagerID  string `json:"manager_id"`
}

// NewPropertyManagerChanged builds the property.manager_changed envelope
func NewPropertyManagerChanged(tenantID, correlationID, actorID string, payload PropertyManagerChangedPayload) Envelope {
	return NewEnvelope(TypePropertyManagerChanged, tenantID, correlationID, actorID, payload)
}
