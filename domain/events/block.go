package events

// BlockCreatedPayload is published after a block is persisted
type BlockCreatedPayload struct {
	BlockID    string `json:"block_id"`
	PropertyID string `json:"property_id"`
	BlockCode  string `json:"block_code"`
	Name       string `json:"name"`
}

// NewBlockCreated builds the block.created envelope
func NewBlockCreated(tenantID, correlationID, actorID string, payload BlockCreatedPayload) Envelope {
	return NewEnvelope(TypeBlockCreated, tenantID, correlationID, actorID, payload)
}

// BlockUpdatedPayload is published after a block update settles
type BlockUpdatedPayload struct {
	BlockID    string `json:"block_id"`
	PropertyID string `json:"property_id"`
}

// NewBlockUpdated builds the block.updated envelope
func NewBlockUpdated(tenantID, correlationID, actorID string, payload BlockUpdatedPayload) Envelope {
	return NewEnvelope(TypeBlockUpdated, tenantID, correlationID, actorID, payload)
}

// BlockDeletedPayload is published after a block soft-delete
type BlockDeletedPayload struct {
	BlockID    string `json:"block_id"`
	PropertyID string `json:"property_id"`
	BlockCode  string `json:"block_code"`
}

// NewBlockDeleted builds the block.deleted envelope
func NewBlockDeleted(tenantID, correlationID, actorID string, payload BlockDeletedPayload) Envelope {
	return NewEnvelope(TypeBlockDeleted, tenantID, correlationID, actorID, payload)
}
