package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"propcore-backend/application/ports"
	"propcore-backend/domain/core/aggregates"
	"propcore-backend/domain/core/valueobjects"
	"propcore-backend/pkg/common"
	pkgerrors "propcore-backend/pkg/errors"
)

// PropertyRepository is an in-memory PropertyRepository used by tests and
// local development. It enforces the same contract as the DynamoDB
// implementation, including the optimistic version check on Update.
type PropertyRepository struct {
	mu        sync.RWMutex
	items     map[string]aggregates.PropertyRecord // tenantID|propertyID
	sequences map[string]int64                     // tenantID|year
}

// NewPropertyRepository creates an empty in-memory property repository
func NewPropertyRepository() *PropertyRepository {
	return &PropertyRepository{
		items:     make(map[string]aggregates.PropertyRecord),
		sequences: make(map[string]int64),
	}
}

func propertyKey(tenantID, id string) string {
	return tenantID + "|" + id
}

// FindByID retrieves a live property by id
func (r *PropertyRepository) FindByID(ctx context.Context, tenantID string, id valueobjects.PropertyID) (*aggregates.Property, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.items[propertyKey(tenantID, id.String())]
	if !ok || rec.DeletedAt != nil {
		return nil, pkgerrors.NewNotFoundError("property").
			WithCode(pkgerrors.CodePropertyNotFound)
	}
	return aggregates.ReconstructProperty(rec), nil
}

// FindByCode retrieves a live property by its tenant-unique code
func (r *PropertyRepository) FindByCode(ctx context.Context, tenantID, code string) (*aggregates.Property, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, rec := range r.items {
		if rec.TenantID == tenantID && rec.Code == code && rec.DeletedAt == nil {
			return aggregates.ReconstructProperty(rec), nil
		}
	}
	return nil, pkgerrors.NewNotFoundError("property").
		WithCode(pkgerrors.CodePropertyNotFound)
}

// FindMany lists properties matching the filter, newest first
func (r *PropertyRepository) FindMany(ctx context.Context, tenantID string, filter ports.PropertyFilter, page common.PaginationParams) ([]*aggregates.Property, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]aggregates.PropertyRecord, 0)
	for _, rec := range r.items {
		if rec.TenantID != tenantID || rec.DeletedAt != nil {
			continue
		}
		if filter.Status != "" && rec.Status != filter.Status {
			continue
		}
		if filter.PropertyType != "" && rec.PropertyType != filter.PropertyType {
			continue
		}
		if filter.Search != "" {
			needle := strings.ToLower(filter.Search)
			if !strings.Contains(strings.ToLower(rec.Name), needle) &&
				!strings.Contains(strings.ToLower(rec.Code), needle) {
				continue
			}
		}
		matched = append(matched, rec)
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	offset := page.CalculateOffset()
	if offset > total {
		offset = total
	}
	end := offset + page.PageSize
	if page.PageSize <= 0 || end > total {
		end = total
	}

	properties := make([]*aggregates.Property, 0, end-offset)
	for _, rec := range matched[offset:end] {
		properties = append(properties, aggregates.ReconstructProperty(rec))
	}
	return properties, total, nil
}

// FindByOwner lists live properties owned by the given owner
func (r *PropertyRepository) FindByOwner(ctx context.Context, tenantID, ownerID string) ([]*aggregates.Property, error) {
	return r.scan(tenantID, func(rec aggregates.PropertyRecord) bool {
		return rec.OwnerID == ownerID
	})
}

// FindByManager lists live properties assigned to the given manager
func (r *PropertyRepository) FindByManager(ctx context.Context, tenantID, managerID string) ([]*aggregates.Property, error) {
	return r.scan(tenantID, func(rec aggregates.PropertyRecord) bool {
		return rec.ManagerID != nil && *rec.ManagerID == managerID
	})
}

// Create persists a new property
func (r *PropertyRepository) Create(ctx context.Context, property *aggregates.Property) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec := property.Record()
	key := propertyKey(rec.TenantID, rec.ID)
	if _, exists := r.items[key]; exists {
		return pkgerrors.NewConflictError("property already exists")
	}
	r.items[key] = rec
	return nil
}

// Update persists changes conditional on the aggregate's version token
func (r *PropertyRepository) Update(ctx context.Context, property *aggregates.Property) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec := property.Record()
	key := propertyKey(rec.TenantID, rec.ID)
	stored, ok := r.items[key]
	if !ok || stored.DeletedAt != nil {
		return pkgerrors.NewNotFoundError("property").
			WithCode(pkgerrors.CodePropertyNotFound)
	}
	if stored.Version != rec.Version {
		return pkgerrors.NewConflictError("property was modified concurrently").
			WithCode(pkgerrors.CodeVersionConflict)
	}
	rec.Version++
	r.items[key] = rec
	return nil
}

// Delete soft-deletes a property
func (r *PropertyRepository) Delete(ctx context.Context, tenantID string, id valueobjects.PropertyID, actor string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := propertyKey(tenantID, id.String())
	stored, ok := r.items[key]
	if !ok || stored.DeletedAt != nil {
		return pkgerrors.NewNotFoundError("property").
			WithCode(pkgerrors.CodePropertyNotFound)
	}
	now := time.Now().UTC()
	stored.DeletedAt = &now
	stored.DeletedBy = actor
	stored.UpdatedAt = now
	stored.UpdatedBy = actor
	stored.Version++
	r.items[key] = stored
	return nil
}

// GetNextSequence atomically allocates the next per-tenant, per-year code
// sequence number
func (r *PropertyRepository) GetNextSequence(ctx context.Context, tenantID string, year int) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := fmt.Sprintf("%s|%d", tenantID, year)
	r.sequences[key]++
	return r.sequences[key], nil
}

func (r *PropertyRepository) scan(tenantID string, match func(aggregates.PropertyRecord) bool) ([]*aggregates.Property, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	properties := make([]*aggregates.Property, 0)
	for _, rec := range r.items {
		if rec.TenantID != tenantID || rec.DeletedAt != nil {
			continue
		}
		if match(rec) {
			properties = append(properties, aggregates.ReconstructProperty(rec))
		}
	}
	sort.Slice(properties, func(i, j int) bool {
		return properties[i].CreatedAt().After(properties[j].CreatedAt())
	})
	return properties, nil
}
