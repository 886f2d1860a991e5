package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"propcore-backend/application/ports"
	"propcore-backend/domain/core/entities"
	"propcore-backend/domain/core/valueobjects"
	pkgerrors "propcore-backend/pkg/errors"
)

// UnitRepository is an in-memory UnitRepository used by tests and local
// development
type UnitRepository struct {
	mu    sync.RWMutex
	items map[string]entities.UnitRecord // tenantID|unitID
}

// NewUnitRepository creates an empty in-memory unit repository
func NewUnitRepository() *UnitRepository {
	return &UnitRepository{items: make(map[string]entities.UnitRecord)}
}

func unitKey(tenantID, id string) string {
	return tenantID + "|" + id
}

// FindByID retrieves a live unit by id
func (r *UnitRepository) FindByID(ctx context.Context, tenantID string, id valueobjects.UnitID) (*entities.Unit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.items[unitKey(tenantID, id.String())]
	if !ok || rec.DeletedAt != nil {
		return nil, pkgerrors.NewNotFoundError("unit").
			WithCode(pkgerrors.CodeUnitNotFound)
	}
	return entities.ReconstructUnit(rec), nil
}

// FindByUnitNumber retrieves a live unit by its property-unique number
func (r *UnitRepository) FindByUnitNumber(ctx context.Context, tenantID string, propertyID valueobjects.PropertyID, unitNumber string) (*entities.Unit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, rec := range r.items {
		if rec.TenantID == tenantID && rec.PropertyID == propertyID.String() &&
			rec.UnitNumber == unitNumber && rec.DeletedAt == nil {
			return entities.ReconstructUnit(rec), nil
		}
	}
	return nil, pkgerrors.NewNotFoundError("unit").
		WithCode(pkgerrors.CodeUnitNotFound)
}

// FindByProperty lists all live units under a property
func (r *UnitRepository) FindByProperty(ctx context.Context, tenantID string, propertyID valueobjects.PropertyID) ([]*entities.Unit, error) {
	return r.scan(tenantID, func(rec entities.UnitRecord) bool {
		return rec.PropertyID == propertyID.String()
	})
}

// FindByBlock lists all live units grouped under a block
func (r *UnitRepository) FindByBlock(ctx context.Context, tenantID string, blockID valueobjects.BlockID) ([]*entities.Unit, error) {
	return r.scan(tenantID, func(rec entities.UnitRecord) bool {
		return rec.BlockID == blockID.String()
	})
}

// FindByStatus lists live units of a property in the given status
func (r *UnitRepository) FindByStatus(ctx context.Context, tenantID string, propertyID valueobjects.PropertyID, status entities.UnitStatus) ([]*entities.Unit, error) {
	return r.scan(tenantID, func(rec entities.UnitRecord) bool {
		return rec.PropertyID == propertyID.String() && rec.Status == string(status)
	})
}

// FindVacant lists a property's vacant units
func (r *UnitRepository) FindVacant(ctx context.Context, tenantID string, propertyID valueobjects.PropertyID) ([]*entities.Unit, error) {
	return r.FindByStatus(ctx, tenantID, propertyID, entities.UnitStatusVacant)
}

// Create persists a new unit
func (r *UnitRepository) Create(ctx context.Context, unit *entities.Unit) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.insert(unit.Record())
}

// CreateMany persists a validated batch of units
func (r *UnitRepository) CreateMany(ctx context.Context, units []*entities.Unit) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, unit := range units {
		if err := r.insert(unit.Record()); err != nil {
			return err
		}
	}
	return nil
}

// Update persists changes to a unit
func (r *UnitRepository) Update(ctx context.Context, unit *entities.Unit) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec := unit.Record()
	key := unitKey(rec.TenantID, rec.ID)
	if stored, ok := r.items[key]; !ok || stored.DeletedAt != nil {
		return pkgerrors.NewNotFoundError("unit").
			WithCode(pkgerrors.CodeUnitNotFound)
	}
	r.items[key] = rec
	return nil
}

// UpdateMany persists changes to a validated batch of units
func (r *UnitRepository) UpdateMany(ctx context.Context, units []*entities.Unit) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, unit := range units {
		rec := unit.Record()
		key := unitKey(rec.TenantID, rec.ID)
		if stored, ok := r.items[key]; !ok || stored.DeletedAt != nil {
			return pkgerrors.NewNotFoundError("unit").
				WithCode(pkgerrors.CodeUnitNotFound)
		}
		r.items[key] = rec
	}
	return nil
}

// Delete soft-deletes a unit
func (r *UnitRepository) Delete(ctx context.Context, tenantID string, id valueobjects.UnitID, actor string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := unitKey(tenantID, id.String())
	stored, ok := r.items[key]
	if !ok || stored.DeletedAt != nil {
		return pkgerrors.NewNotFoundError("unit").
			WithCode(pkgerrors.CodeUnitNotFound)
	}
	now := time.Now().UTC()
	stored.DeletedAt = &now
	stored.DeletedBy = actor
	stored.UpdatedAt = now
	stored.UpdatedBy = actor
	r.items[key] = stored
	return nil
}

// CountByProperty counts a property's live units partitioned by status
func (r *UnitRepository) CountByProperty(ctx context.Context, tenantID string, propertyID valueobjects.PropertyID) (ports.UnitCounts, error) {
	return r.count(tenantID, func(rec entities.UnitRecord) bool {
		return rec.PropertyID == propertyID.String()
	})
}

// CountByBlock counts a block's live units partitioned by status
func (r *UnitRepository) CountByBlock(ctx context.Context, tenantID string, blockID valueobjects.BlockID) (ports.UnitCounts, error) {
	return r.count(tenantID, func(rec entities.UnitRecord) bool {
		return rec.BlockID == blockID.String()
	})
}

// insert assumes the write lock is held
func (r *UnitRepository) insert(rec entities.UnitRecord) error {
	key := unitKey(rec.TenantID, rec.ID)
	if _, exists := r.items[key]; exists {
		return pkgerrors.NewConflictError("unit already exists")
	}
	for _, existing := range r.items {
		if existing.TenantID == rec.TenantID && existing.PropertyID == rec.PropertyID &&
			existing.UnitNumber == rec.UnitNumber && existing.DeletedAt == nil {
			return pkgerrors.NewConflictError("unit number already in use").
				WithCode(pkgerrors.CodeUnitNumberExists)
		}
	}
	r.items[key] = rec
	return nil
}

func (r *UnitRepository) scan(tenantID string, match func(entities.UnitRecord) bool) ([]*entities.Unit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	units := make([]*entities.Unit, 0)
	for _, rec := range r.items {
		if rec.TenantID != tenantID || rec.DeletedAt != nil {
			continue
		}
		if match(rec) {
			units = append(units, entities.ReconstructUnit(rec))
		}
	}
	sort.Slice(units, func(i, j int) bool {
		return units[i].UnitNumber() < units[j].UnitNumber()
	})
	return units, nil
}

func (r *UnitRepository) count(tenantID string, match func(entities.UnitRecord) bool) (ports.UnitCounts, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var counts ports.UnitCounts
	for _, rec := range r.items {
		if rec.TenantID != tenantID || rec.DeletedAt != nil || !match(rec) {
			continue
		}
		counts.Total++
		switch entities.UnitStatus(rec.Status) {
		case entities.UnitStatusOccupied:
			counts.Occupied++
		case entities.UnitStatusVacant:
			counts.Vacant++
		case entities.UnitStatusUnderMaintenance:
			counts.UnderMaintenance++
		}
	}
	return counts, nil
}
