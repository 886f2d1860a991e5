package services

import (
	"context"
	"time"

	"propcore-backend/application/ports"
	"propcore-backend/domain/core/aggregates"
	"propcore-backend/domain/core/valueobjects"
	"propcore-backend/domain/events"
	"propcore-backend/pkg/common"
	pkgerrors "propcore-backend/pkg/errors"
	"propcore-backend/pkg/observability"

	"go.uber.org/zap"
)

// PropertyService orchestrates the property aggregate lifecycle: creation
// with tenant-unique codes, partial updates, occupancy-gated soft deletion,
// stats and health scoring.
type PropertyService struct {
	properties ports.PropertyRepository
	units      ports.UnitRepository
	leases     ports.LeaseChecker
	eventBus   ports.EventBus
	metrics    *observability.Collector
	logger     *zap.Logger
}

// NewPropertyService creates a new property service
func NewPropertyService(
	properties ports.PropertyRepository,
	units ports.UnitRepository,
	leases ports.LeaseChecker,
	eventBus ports.EventBus,
	metrics *observability.Collector,
	logger *zap.Logger,
) *PropertyService {
	return &PropertyService{
		properties: properties,
		units:      units,
		leases:     leases,
		eventBus:   eventBus,
		metrics:    metrics,
		logger:     logger,
	}
}

// CreatePropertyInput carries the property creation payload. Code is
// optional; when absent a PROP-<year>-<seq> code is generated from the
// tenant's sequence.
type CreatePropertyInput struct {
	OwnerID      string
	Name         string
	Code         string
	PropertyType aggregates.PropertyType
	Status       aggregates.PropertyStatus
	Address      valueobjects.Address
	Amenities    []string
	ManagerID    *string
}

// CreateProperty creates a property under the tenant and publishes
// property.created
func (s *PropertyService) CreateProperty(
	ctx context.Context,
	tenantID string,
	input CreatePropertyInput,
	actorID string,
	correlationID string,
) (*aggregates.Property, error) {
	code := input.Code
	if code == "" {
		year := time.Now().UTC().Year()
		seq, err := s.properties.GetNextSequence(ctx, tenantID, year)
		if err != nil {
			return nil, pkgerrors.Wrap(err, "failed to allocate property code sequence")
		}
		code = valueobjects.FormatPropertyCode(year, seq)
	}

	existing, err := s.properties.FindByCode(ctx, tenantID, code)
	if err != nil && !pkgerrors.IsNotFound(err) {
		return nil, err
	}
	if existing != nil {
		return nil, pkgerrors.NewConflictError("property code already in use").
			WithCode(pkgerrors.CodePropertyCodeExists).
			WithDetails(map[string]interface{}{"code": code})
	}

	property, err := aggregates.NewProperty(
		tenantID,
		input.OwnerID,
		input.Name,
		code,
		input.PropertyType,
		aggregates.PropertyAttributes{
			Status:    input.Status,
			Address:   input.Address,
			Amenities: input.Amenities,
			ManagerID: input.ManagerID,
		},
		actorID,
	)
	if err != nil {
		return nil, err
	}

	if err := s.properties.Create(ctx, property); err != nil {
		return nil, err
	}
	s.metrics.PropertiesCreated.Inc()

	s.logger.Info("property created",
		zap.String("tenantID", tenantID),
		zap.String("propertyID", property.ID().String()),
		zap.String("code", property.Code()),
	)

	s.publish(ctx, events.NewPropertyCreated(tenantID, correlationID, actorID,
		events.PropertyCreatedPayload{
			PropertyID: property.ID().String(),
			Code:       property.Code(),
			Name:       property.Name(),
			OwnerID:    property.OwnerID(),
		}))

	return property, nil
}

// UpdateProperty applies a partial update and publishes property.updated
func (s *PropertyService) UpdateProperty(
	ctx context.Context,
	tenantID string,
	propertyID valueobjects.PropertyID,
	patch aggregates.PropertyPatch,
	actorID string,
	correlationID string,
) (*aggregates.Property, error) {
	property, err := s.saveWithRetry(ctx, tenantID, propertyID, func(p *aggregates.Property) error {
		return p.ApplyUpdate(patch, actorID)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.NewPropertyUpdated(tenantID, correlationID, actorID,
		events.PropertyUpdatedPayload{PropertyID: property.ID().String()}))

	return property, nil
}

// AssignManager is a thin wrapper over update that sets the manager and
// publishes property.manager_changed
func (s *PropertyService) AssignManager(
	ctx context.Context,
	tenantID string,
	propertyID valueobjects.PropertyID,
	managerID string,
	actorID string,
	correlationID string,
) (*aggregates.Property, error) {
	property, err := s.saveWithRetry(ctx, tenantID, propertyID, func(p *aggregates.Property) error {
		return p.AssignManager(managerID, actorID)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.NewPropertyManagerChanged(tenantID, correlationID, actorID,
		events.PropertyManagerChangedPayload{
			PropertyID: property.ID().String(),
			ManagerID:  managerID,
		}))

	return property, nil
}

// DeleteProperty soft-deletes a property after checking the lease gate and
// publishes property.deleted
func (s *PropertyService) DeleteProperty(
	ctx context.Context,
	tenantID string,
	propertyID valueobjects.PropertyID,
	actorID string,
	correlationID string,
) error {
	property, err := s.properties.FindByID(ctx, tenantID, propertyID)
	if err != nil {
		return err
	}

	hasLeases, err := s.leases.HasActiveLeases(ctx, tenantID, propertyID)
	if err != nil {
		return pkgerrors.Wrap(err, "lease check failed")
	}
	if hasLeases {
		return pkgerrors.NewConflictError("property has active leases").
			WithCode(pkgerrors.CodeActiveLeases)
	}

	if err := s.properties.Delete(ctx, tenantID, propertyID, actorID); err != nil {
		return err
	}
	s.metrics.PropertiesDeleted.Inc()

	s.logger.Info("property deleted",
		zap.String("tenantID", tenantID),
		zap.String("propertyID", propertyID.String()),
	)

	s.publish(ctx, events.NewPropertyDeleted(tenantID, correlationID, actorID,
		events.PropertyDeletedPayload{
			PropertyID: property.ID().String(),
			Code:       property.Code(),
		}))

	return nil
}

// GetProperty retrieves a single property
func (s *PropertyService) GetProperty(
	ctx context.Context,
	tenantID string,
	propertyID valueobjects.PropertyID,
) (*aggregates.Property, error) {
	return s.properties.FindByID(ctx, tenantID, propertyID)
}

// ListProperties lists properties matching the filter with pagination
func (s *PropertyService) ListProperties(
	ctx context.Context,
	tenantID string,
	filter ports.PropertyFilter,
	page common.PaginationParams,
) ([]*aggregates.Property, int, error) {
	return s.properties.FindMany(ctx, tenantID, filter, page)
}

// ListByOwner lists properties owned by the given owner
func (s *PropertyService) ListByOwner(
	ctx context.Context,
	tenantID string,
	ownerID string,
) ([]*aggregates.Property, error) {
	return s.properties.FindByOwner(ctx, tenantID, ownerID)
}

// ListByManager lists properties assigned to the given manager
func (s *PropertyService) ListByManager(
	ctx context.Context,
	tenantID string,
	managerID string,
) ([]*aggregates.Property, error) {
	return s.properties.FindByManager(ctx, tenantID, managerID)
}

// saveWithRetry loads the property, applies the mutation and persists it,
// retrying the whole read-modify-write on an optimistic version conflict.
func (s *PropertyService) saveWithRetry(
	ctx context.Context,
	tenantID string,
	propertyID valueobjects.PropertyID,
	mutate func(*aggregates.Property) error,
) (*aggregates.Property, error) {
	const maxAttempts = 3

	for attempt := 1; ; attempt++ {
		property, err := s.properties.FindByID(ctx, tenantID, propertyID)
		if err != nil {
			return nil, err
		}
		if err := mutate(property); err != nil {
			return nil, err
		}

		err = s.properties.Update(ctx, property)
		if err == nil {
			return property, nil
		}
		if pkgerrors.HasCode(err, pkgerrors.CodeVersionConflict) && attempt < maxAttempts {
			s.metrics.VersionConflicts.Inc()
			s.logger.Debug("property version conflict, retrying",
				zap.String("propertyID", propertyID.String()),
				zap.Int("attempt", attempt),
			)
			continue
		}
		return nil, err
	}
}

// publish sends an envelope best-effort. Repository writes are already
// committed by the time events go out, so failures are logged and dropped.
func (s *PropertyService) publish(ctx context.Context, envelope events.Envelope) {
	if err := s.eventBus.Publish(ctx, envelope); err != nil {
		s.logger.Warn("failed to publish event",
			zap.String("eventType", envelope.EventType),
			zap.Error(err),
		)
	}
}
