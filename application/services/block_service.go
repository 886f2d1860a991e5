package services

import (
	"context"

	"propcore-backend/application/ports"
	"propcore-backend/domain/core/entities"
	"propcore-backend/domain/core/valueobjects"
	"propcore-backend/domain/events"
	pkgerrors "propcore-backend/pkg/errors"
	"propcore-backend/pkg/observability"

	"go.uber.org/zap"
)

// BlockService orchestrates the block sub-aggregate: property-unique block
// codes from a per-property sequence, partial updates with explicit-null
// handling, and occupancy-gated deletion.
type BlockService struct {
	blocks     ports.BlockRepository
	units      ports.UnitRepository
	properties ports.PropertyRepository
	eventBus   ports.EventBus
	metrics    *observability.Collector
	logger     *zap.Logger
}

// NewBlockService creates a new block service
func NewBlockService(
	blocks ports.BlockRepository,
	units ports.UnitRepository,
	properties ports.PropertyRepository,
	eventBus ports.EventBus,
	metrics *observability.Collector,
	logger *zap.Logger,
) *BlockService {
	return &BlockService{
		blocks:     blocks,
		units:      units,
		properties: properties,
		eventBus:   eventBus,
		metrics:    metrics,
		logger:     logger,
	}
}

// CreateBlockInput carries the block creation payload. BlockCode is
// optional; when absent a BLK-<seq> code is generated from the property's
// sequence.
type CreateBlockInput struct {
	BlockCode string
	Name      string
	entities.BlockAttributes
}

// CreateBlock creates a block under an existing property and publishes
// block.created
func (s *BlockService) CreateBlock(
	ctx context.Context,
	tenantID string,
	propertyID valueobjects.PropertyID,
	input CreateBlockInput,
	actorID string,
	correlationID string,
) (*entities.Block, error) {
	if _, err := s.properties.FindByID(ctx, tenantID, propertyID); err != nil {
		return nil, err
	}

	seq, err := s.blocks.GetNextSequence(ctx, tenantID, propertyID)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to allocate block code sequence")
	}

	blockCode := input.BlockCode
	if blockCode == "" {
		blockCode = valueobjects.FormatBlockCode(seq)
	}

	existing, err := s.blocks.FindByBlockCode(ctx, tenantID, propertyID, blockCode)
	if err != nil && !pkgerrors.IsNotFound(err) {
		return nil, err
	}
	if existing != nil {
		return nil, pkgerrors.NewConflictError("block code already in use").
			WithCode(pkgerrors.CodeBlockCodeExists).
			WithDetails(map[string]interface{}{"block_code": blockCode})
	}

	block, err := entities.NewBlock(tenantID, propertyID, blockCode, input.Name,
		input.BlockAttributes, actorID)
	if err != nil {
		return nil, err
	}

	if err := s.blocks.Create(ctx, block); err != nil {
		return nil, err
	}
	s.metrics.BlocksCreated.Inc()

	s.logger.Info("block created",
		zap.String("tenantID", tenantID),
		zap.String("propertyID", propertyID.String()),
		zap.String("blockCode", block.BlockCode()),
	)

	s.publish(ctx, events.NewBlockCreated(tenantID, correlationID, actorID,
		events.BlockCreatedPayload{
			BlockID:    block.ID().String(),
			PropertyID: propertyID.String(),
			BlockCode:  block.BlockCode(),
			Name:       block.Name(),
		}))

	return block, nil
}

// UpdateBlock applies a partial update, including explicit-null resets for
// the nullable manager and description fields, and publishes block.updated
func (s *BlockService) UpdateBlock(
	ctx context.Context,
	tenantID string,
	blockID valueobjects.BlockID,
	patch entities.BlockPatch,
	actorID string,
	correlationID string,
) (*entities.Block, error) {
	block, err := s.blocks.FindByID(ctx, tenantID, blockID)
	if err != nil {
		return nil, err
	}

	if err := block.ApplyUpdate(patch, actorID); err != nil {
		return nil, err
	}
	if err := s.blocks.Update(ctx, block); err != nil {
		return nil, err
	}

	s.publish(ctx, events.NewBlockUpdated(tenantID, correlationID, actorID,
		events.BlockUpdatedPayload{
			BlockID:    block.ID().String(),
			PropertyID: block.PropertyID().String(),
		}))

	return block, nil
}

// DeleteBlock soft-deletes a block unless it still has occupied units, and
// publishes block.deleted
func (s *BlockService) DeleteBlock(
	ctx context.Context,
	tenantID string,
	blockID valueobjects.BlockID,
	actorID string,
	correlationID string,
) error {
	block, err := s.blocks.FindByID(ctx, tenantID, blockID)
	if err != nil {
		return err
	}

	counts, err := s.units.CountByBlock(ctx, tenantID, blockID)
	if err != nil {
		return err
	}
	if counts.Occupied > 0 {
		return pkgerrors.NewConflictError("block has occupied units").
			WithCode(pkgerrors.CodeActiveLeases).
			WithDetails(map[string]interface{}{"occupied_units": counts.Occupied})
	}

	if err := s.blocks.Delete(ctx, tenantID, blockID, actorID); err != nil {
		return err
	}

	s.logger.Info("block deleted",
		zap.String("tenantID", tenantID),
		zap.String("blockID", blockID.String()),
	)

	s.publish(ctx, events.NewBlockDeleted(tenantID, correlationID, actorID,
		events.BlockDeletedPayload{
			BlockID:    block.ID().String(),
			PropertyID: block.PropertyID().String(),
			BlockCode:  block.BlockCode(),
		}))

	return nil
}

// GetBlock retrieves a single block
func (s *BlockService) GetBlock(
	ctx context.Context,
	tenantID string,
	blockID valueobjects.BlockID,
) (*entities.Block, error) {
	return s.blocks.FindByID(ctx, tenantID, blockID)
}

// ListBlocksByProperty lists a property's live blocks in sort order
func (s *BlockService) ListBlocksByProperty(
	ctx context.Context,
	tenantID string,
	propertyID valueobjects.PropertyID,
) ([]*entities.Block, error) {
	return s.blocks.FindByProperty(ctx, tenantID, propertyID)
}

// publish sends an envelope best-effort; failures never roll back writes
func (s *BlockService) publish(ctx context.Context, envelope events.Envelope) {
	if err := s.eventBus.Publish(ctx, envelope); err != nil {
		s.logger.Warn("failed to publish event",
			zap.String("eventType", envelope.EventType),
			zap.Error(err),
		)
	}
}
