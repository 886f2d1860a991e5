package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"propcore-backend/domain/core/entities"
	"propcore-backend/domain/core/valueobjects"
	pkgerrors "propcore-backend/pkg/errors"
)

// BlockRepository is an in-memory BlockRepository used by tests and local
// development
type BlockRepository struct {
	mu        sync.RWMutex
	items     map[string]entities.BlockRecord // tenantID|blockID
	sequences map[string]int64                // tenantID|propertyID
}

// NewBlockRepository creates an empty in-memory block repository
func NewBlockRepository() *BlockRepository {
	return &BlockRepository{
		items:     make(map[string]entities.BlockRecord),
		sequences: make(map[string]int64),
	}
}

func blockKey(tenantID, id string) string {
	return tenantID + "|" + id
}

// FindByID retrieves a live block by id
func (r *BlockRepository) FindByID(ctx context.Context, tenantID string, id valueobjects.BlockID) (*entities.Block, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.items[blockKey(tenantID, id.String())]
	if !ok || rec.DeletedAt != nil {
		return nil, pkgerrors.NewNotFoundError("block").
			WithCode(pkgerrors.CodeBlockNotFound)
	}
	return entities.ReconstructBlock(rec), nil
}

// FindByBlockCode retrieves a live block by its property-unique code
func (r *BlockRepository) FindByBlockCode(ctx context.Context, tenantID string, propertyID valueobjects.PropertyID, blockCode string) (*entities.Block, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, rec := range r.items {
		if rec.TenantID == tenantID && rec.PropertyID == propertyID.String() &&
			rec.BlockCode == blockCode && rec.DeletedAt == nil {
			return entities.ReconstructBlock(rec), nil
		}
	}
	return nil, pkgerrors.NewNotFoundError("block").
		WithCode(pkgerrors.CodeBlockNotFound)
}

// FindByProperty lists a property's live blocks ordered by sort order
func (r *BlockRepository) FindByProperty(ctx context.Context, tenantID string, propertyID valueobjects.PropertyID) ([]*entities.Block, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	blocks := make([]*entities.Block, 0)
	for _, rec := range r.items {
		if rec.TenantID == tenantID && rec.PropertyID == propertyID.String() &&
			rec.DeletedAt == nil {
			blocks = append(blocks, entities.ReconstructBlock(rec))
		}
	}
	sort.Slice(blocks, func(i, j int) bool {
		if blocks[i].SortOrder() != blocks[j].SortOrder() {
			return blocks[i].SortOrder() < blocks[j].SortOrder()
		}
		return blocks[i].BlockCode() < blocks[j].BlockCode()
	})
	return blocks, nil
}

// Create persists a new block
func (r *BlockRepository) Create(ctx context.Context, block *entities.Block) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec := block.Record()
	key := blockKey(rec.TenantID, rec.ID)
	if _, exists := r.items[key]; exists {
		return pkgerrors.NewConflictError("block already exists")
	}
	for _, existing := range r.items {
		if existing.TenantID == rec.TenantID && existing.PropertyID == rec.PropertyID &&
			existing.BlockCode == rec.BlockCode && existing.DeletedAt == nil {
			return pkgerrors.NewConflictError("block code already in use").
				WithCode(pkgerrors.CodeBlockCodeExists)
		}
	}
	r.items[key] = rec
	return nil
}

// Update persists changes to a block
func (r *BlockRepository) Update(ctx context.Context, block *entities.Block) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec := block.Record()
	key := blockKey(rec.TenantID, rec.ID)
	if stored, ok := r.items[key]; !ok || stored.DeletedAt != nil {
		return pkgerrors.NewNotFoundError("block").
			WithCode(pkgerrors.CodeBlockNotFound)
	}
	r.items[key] = rec
	return nil
}

// Delete soft-deletes a block
func (r *BlockRepository) Delete(ctx context.Context, tenantID string, id valueobjects.BlockID, actor string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := blockKey(tenantID, id.String())
	stored, ok := r.items[key]
	if !ok || stored.DeletedAt != nil {
		return pkgerrors.NewNotFoundError("block").
			WithCode(pkgerrors.CodeBlockNotFound)
	}
	now := time.Now().UTC()
	stored.DeletedAt = &now
	stored.DeletedBy = actor
	stored.UpdatedAt = now
	stored.UpdatedBy = actor
	r.items[key] = stored
	return nil
}

// GetNextSequence atomically allocates the next per-property block code
// sequence number
func (r *BlockRepository) GetNextSequence(ctx context.Context, tenantID string, propertyID valueobjects.PropertyID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := tenantID + "|" + propertyID.String()
	r.sequences[key]++
	return r.sequences[key], nil
}
