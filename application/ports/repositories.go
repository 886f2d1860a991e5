package ports

import (
	"context"

	"propcore-backend/domain/core/aggregates"
	"propcore-backend/domain/core/entities"
	"propcore-backend/domain/core/valueobjects"
	"propcore-backend/domain/events"
	"propcore-backend/pkg/common"
)

// UnitCounts is the result of a fresh count query over live (non-deleted)
// units, partitioned by status
type UnitCounts struct {
	Total            int
	Occupied         int
	Vacant           int
	UnderMaintenance int
}

// PropertyFilter narrows property listings
type PropertyFilter struct {
	Status       string
	PropertyType string
	Search       string
}

// PropertyRepository defines the persistence port for property aggregates.
// Every method is tenant-scoped; implementations must exclude soft-deleted
// rows from reads.
type PropertyRepository interface {
	// FindByID retrieves a live property by id
	FindByID(ctx context.Context, tenantID string, id valueobjects.PropertyID) (*aggregates.Property, error)

	// FindByCode retrieves a live property by its tenant-unique code
	FindByCode(ctx context.Context, tenantID, code string) (*aggregates.Property, error)

	// FindMany lists properties matching the filter, newest first, and
	// returns the total match count for pagination
	FindMany(ctx context.Context, tenantID string, filter PropertyFilter, page common.PaginationParams) ([]*aggregates.Property, int, error)

	// FindByOwner lists properties owned by the given owner
	FindByOwner(ctx context.Context, tenantID, ownerID string) ([]*aggregates.Property, error)

	// FindByManager lists properties assigned to the given manager
	FindByManager(ctx context.Context, tenantID, managerID string) ([]*aggregates.Property, error)

	// Create persists a new property
	Create(ctx context.Context, property *aggregates.Property) error

	// Update persists changes to a property. The write is conditional on
	// the aggregate's version token; a stale token fails with
	// CodeVersionConflict and the stored row is left untouched.
	Update(ctx context.Context, property *aggregates.Property) error

	// Delete soft-deletes a property
	Delete(ctx context.Context, tenantID string, id valueobjects.PropertyID, actor string) error

	// GetNextSequence atomically allocates the next per-tenant, per-year
	// property code sequence number
	GetNextSequence(ctx context.Context, tenantID string, year int) (int64, error)
}

// UnitRepository defines the persistence port for units
type UnitRepository interface {
	// FindByID retrieves a live unit by id
	FindByID(ctx context.Context, tenantID string, id valueobjects.UnitID) (*entities.Unit, error)

	// FindByUnitNumber retrieves a live unit by its property-unique number
	FindByUnitNumber(ctx context.Context, tenantID string, propertyID valueobjects.PropertyID, unitNumber string) (*entities.Unit, error)

	// FindByProperty lists all live units under a property
	FindByProperty(ctx context.Context, tenantID string, propertyID valueobjects.PropertyID) ([]*entities.Unit, error)

	// FindByBlock lists all live units grouped under a block
	FindByBlock(ctx context.Context, tenantID string, blockID valueobjects.BlockID) ([]*entities.Unit, error)

	// FindByStatus lists live units of a property in the given status
	FindByStatus(ctx context.Context, tenantID string, propertyID valueobjects.PropertyID, status entities.UnitStatus) ([]*entities.Unit, error)

	// FindVacant lists a property's vacant units
	FindVacant(ctx context.Context, tenantID string, propertyID valueobjects.PropertyID) ([]*entities.Unit, error)

	// Create persists a new unit
	Create(ctx context.Context, unit *entities.Unit) error

	// CreateMany persists a validated batch of units
	CreateMany(ctx context.Context, units []*entities.Unit) error

	// Update persists changes to a unit
	Update(ctx context.Context, unit *entities.Unit) error

	// UpdateMany persists changes to a validated batch of units
	UpdateMany(ctx context.Context, units []*entities.Unit) error

	// Delete soft-deletes a unit
	Delete(ctx context.Context, tenantID string, id valueobjects.UnitID, actor string) error

	// CountByProperty counts a property's live units partitioned by status
	CountByProperty(ctx context.Context, tenantID string, propertyID valueobjects.PropertyID) (UnitCounts, error)

	// CountByBlock counts a block's live units partitioned by status
	CountByBlock(ctx context.Context, tenantID string, blockID valueobjects.BlockID) (UnitCounts, error)
}

// BlockRepository defines the persistence port for blocks
type BlockRepository interface {
	// FindByID retrieves a live block by id
	FindByID(ctx context.Context, tenantID string, id valueobjects.BlockID) (*entities.Block, error)

	// FindByBlockCode retrieves a live block by its property-unique code
	FindByBlockCode(ctx context.Context, tenantID string, propertyID valueobjects.PropertyID, blockCode string) (*entities.Block, error)

	// FindByProperty lists a property's live blocks ordered by sort order
	FindByProperty(ctx context.Context, tenantID string, propertyID valueobjects.PropertyID) ([]*entities.Block, error)

	// Create persists a new block
	Create(ctx context.Context, block *entities.Block) error

	// Update persists changes to a block
	Update(ctx context.Context, block *entities.Block) error

	// Delete soft-deletes a block
	Delete(ctx context.Context, tenantID string, id valueobjects.BlockID, actor string) error

	// GetNextSequence atomically allocates the next per-property block code
	// sequence number
	GetNextSequence(ctx context.Context, tenantID string, propertyID valueobjects.PropertyID) (int64, error)
}

// EventBus defines the publishing port for domain event envelopes.
// Publication is fire-and-forget from the service's perspective: a publish
// failure must not roll back committed repository writes.
type EventBus interface {
	// Publish sends a single envelope
	Publish(ctx context.Context, envelope events.Envelope) error

	// PublishBatch sends multiple envelopes
	PublishBatch(ctx context.Context, envelopes []events.Envelope) error
}

// LeaseChecker reports whether a property has active leases. Leasing is
// owned by another service; this port gates property deletion.
type LeaseChecker interface {
	HasActiveLeases(ctx context.Context, tenantID string, propertyID valueobjects.PropertyID) (bool, error)
}
