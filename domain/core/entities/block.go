package entities

import (
	"strings"
	"time"

	"propcore-backend/domain/core/valueobjects"
	pkgerrors "propcore-backend/pkg/errors"
)

// BlockStatus represents the lifecycle state of a block
type BlockStatus string

const (
	BlockStatusActive            BlockStatus = "active"
	BlockStatusUnderConstruction BlockStatus = "under_construction"
	BlockStatusInactive          BlockStatus = "inactive"
)

// Block is an optional sub-aggregate of a Property used to group units,
// e.g. a wing or tower. Its blockCode is unique within the property.
type Block struct {
	id          valueobjects.BlockID
	propertyID  valueobjects.PropertyID
	tenantID    string
	blockCode   string
	name        string
	description string
	status      BlockStatus
	amenities   []string
	features    []string
	managerID   *string
	sortOrder   int
	createdAt   time.Time
	updatedAt   time.Time
	createdBy   string
	updatedBy   string
	deletedAt   *time.Time
	deletedBy   string
}

// BlockAttributes carries the optional fields for block creation
type BlockAttributes struct {
	Description string
	Amenities   []string
	Features    []string
	ManagerID   *string
	SortOrder   int
	Status      BlockStatus
}

// NewBlock creates a block under the given property
func NewBlock(
	tenantID string,
	propertyID valueobjects.PropertyID,
	blockCode string,
	name string,
	attrs BlockAttributes,
	actor string,
) (*Block, error) {
	if tenantID == "" {
		return nil, pkgerrors.NewValidationError("tenantID cannot be empty")
	}
	if strings.TrimSpace(blockCode) == "" || strings.TrimSpace(name) == "" {
		return nil, pkgerrors.NewValidationError("blockCode and name are required")
	}

	status := attrs.Status
	if status == "" {
		status = BlockStatusActive
	}

	now := time.Now().UTC()
	return &Block{
		id:          valueobjects.NewBlockID(),
		propertyID:  propertyID,
		tenantID:    tenantID,
		blockCode:   strings.TrimSpace(blockCode),
		name:        strings.TrimSpace(name),
		description: attrs.Description,
		status:      status,
		amenities:   attrs.Amenities,
		features:    attrs.Features,
		managerID:   attrs.ManagerID,
		sortOrder:   attrs.SortOrder,
		createdAt:   now,
		updatedAt:   now,
		createdBy:   actor,
		updatedBy:   actor,
	}, nil
}

// BlockPatch is a partial block update. ManagerID and Description are
// nullable: the Clear flags reset them explicitly, a nil pointer leaves
// them untouched.
type BlockPatch struct {
	Name             *string
	Description      *string
	ClearDescription bool
	Status           *BlockStatus
	Amenities        *[]string
	Features         *[]string
	ManagerID        *string
	RemoveManager    bool
	SortOrder        *int
}

// ApplyUpdate merges the patch into the block
func (b *Block) ApplyUpdate(patch BlockPatch, actor string) error {
	if patch.Name != nil {
		if strings.TrimSpace(*patch.Name) == "" {
			return pkgerrors.NewValidationError("block name cannot be empty")
		}
		b.name = strings.TrimSpace(*patch.Name)
	}
	if patch.ClearDescription {
		b.description = ""
	} else if patch.Description != nil {
		b.description = *patch.Description
	}
	if patch.Status != nil {
		b.status = *patch.Status
	}
	if patch.Amenities != nil {
		b.amenities = *patch.Amenities
	}
	if patch.Features != nil {
		b.features = *patch.Features
	}
	if patch.RemoveManager {
		b.managerID = nil
	} else if patch.ManagerID != nil {
		b.managerID = patch.ManagerID
	}
	if patch.SortOrder != nil {
		b.sortOrder = *patch.SortOrder
	}
	b.updatedAt = time.Now().UTC()
	b.updatedBy = actor
	return nil
}

// MarkDeleted soft-deletes the block. The occupancy gate (no occupied units
// in the block) is enforced by the service against a fresh count.
func (b *Block) MarkDeleted(actor string, at time.Time) {
	b.deletedAt = &at
	b.deletedBy = actor
	b.updatedAt = at
	b.updatedBy = actor
}

// IsDeleted reports whether the block is soft-deleted
func (b *Block) IsDeleted() bool {
	return b.deletedAt != nil
}

// Getters

func (b *Block) ID() valueobjects.BlockID            { return b.id }
func (b *Block) PropertyID() valueobjects.PropertyID { return b.propertyID }
func (b *Block) TenantID() string                    { return b.tenantID }
func (b *Block) BlockCode() string                   { return b.blockCode }
func (b *Block) Name() string                        { return b.name }
func (b *Block) Description() string                 { return b.description }
func (b *Block) Status() BlockStatus                 { return b.status }
func (b *Block) Amenities() []string                 { return b.amenities }
func (b *Block) Features() []string                  { return b.features }
func (b *Block) ManagerID() *string                  { return b.managerID }
func (b *Block) SortOrder() int                      { return b.sortOrder }
func (b *Block) CreatedAt() time.Time                { return b.createdAt }
func (b *Block) UpdatedAt() time.Time                { return b.updatedAt }
func (b *Block) DeletedAt() *time.Time               { return b.deletedAt }

// BlockRecord is the flat representation repositories persist and load
type BlockRecord struct {
	ID          string
	PropertyID  string
	TenantID    string
	BlockCode   string
	Name        string
	Description string
	Status      string
	Amenities   []string
	Features    []string
	ManagerID   *string
	SortOrder   int
	CreatedAt   time.Time
	UpdatedAt   time.Time
	CreatedBy   string
	UpdatedBy   string
	DeletedAt   *time.Time
	DeletedBy   string
}

// Record flattens the block for persistence
func (b *Block) Record() BlockRecord {
	return BlockRecord{
		ID:          b.id.String(),
		PropertyID:  b.propertyID.String(),
		TenantID:    b.tenantID,
		BlockCode:   b.blockCode,
		Name:        b.name,
		Description: b.description,
		Status:      string(b.status),
		Amenities:   b.amenities,
		Features:    b.features,
		ManagerID:   b.managerID,
		SortOrder:   b.sortOrder,
		CreatedAt:   b.createdAt,
		UpdatedAt:   b.updatedAt,
		CreatedBy:   b.createdBy,
		UpdatedBy:   b.updatedBy,
		DeletedAt:   b.deletedAt,
		DeletedBy:   b.deletedBy,
	}
}

// ReconstructBlock rebuilds a block from a persisted record
func ReconstructBlock(rec BlockRecord) *Block {
	return &Block{
		id:          valueobjects.BlockID(rec.ID),
		propertyID:  valueobjects.PropertyID(rec.PropertyID),
		tenantID:    rec.TenantID,
		blockCode:   rec.BlockCode,
		name:        rec.Name,
		description: rec.Description,
		status:      BlockStatus(rec.Status),
		amenities:   rec.Amenities,
		features:    rec.Features,
		managerID:   rec.ManagerID,
		sortOrder:   rec.SortOrder,
		createdAt:   rec.CreatedAt,
		updatedAt:   rec.UpdatedAt,
		createdBy:   rec.CreatedBy,
		updatedBy:   rec.UpdatedBy,
		deletedAt:   rec.DeletedAt,
		deletedBy:   rec.DeletedBy,
	}
}
