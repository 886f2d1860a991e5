package services

import (
	"context"
	"fmt"
	"sort"

	"propcore-backend/application/ports"
	"propcore-backend/domain/core/entities"
	"propcore-backend/domain/core/valueobjects"
	"propcore-backend/domain/events"
	pkgerrors "propcore-backend/pkg/errors"
	"propcore-backend/pkg/observability"

	"go.uber.org/zap"
)

// Bulk operations accept between 1 and maxBulkSize items per call
const maxBulkSize = 200

// UnitService orchestrates the unit lifecycle. Every operation that changes
// the unit population recomputes the parent property's denormalized
// counters from a fresh count query before returning.
type UnitService struct {
	units      ports.UnitRepository
	properties ports.PropertyRepository
	eventBus   ports.EventBus
	metrics    *observability.Collector
	logger     *zap.Logger
}

// NewUnitService creates a new unit service
func NewUnitService(
	units ports.UnitRepository,
	properties ports.PropertyRepository,
	eventBus ports.EventBus,
	metrics *observability.Collector,
	logger *zap.Logger,
) *UnitService {
	return &UnitService{
		units:      units,
		properties: properties,
		eventBus:   eventBus,
		metrics:    metrics,
		logger:     logger,
	}
}

// CreateUnitInput carries the unit creation payload
type CreateUnitInput struct {
	UnitNumber  string
	UnitType    string
	MonthlyRent valueobjects.Money
	entities.UnitAttributes
}

// CreateUnit creates a unit under an existing property, recomputes the
// property counters and publishes unit.created
func (s *UnitService) CreateUnit(
	ctx context.Context,
	tenantID string,
	propertyID valueobjects.PropertyID,
	input CreateUnitInput,
	actorID string,
	correlationID string,
) (*entities.Unit, error) {
	if _, err := s.properties.FindByID(ctx, tenantID, propertyID); err != nil {
		return nil, err
	}

	if input.UnitNumber != "" {
		if err := s.ensureUnitNumberFree(ctx, tenantID, propertyID, input.UnitNumber); err != nil {
			return nil, err
		}
	}

	unit, err := entities.NewUnit(
		tenantID, propertyID,
		input.UnitNumber, input.UnitType, input.MonthlyRent,
		input.UnitAttributes, actorID,
	)
	if err != nil {
		return nil, err
	}

	if err := s.ensureCurrencyConsistent(ctx, tenantID, propertyID, input.MonthlyRent); err != nil {
		return nil, err
	}

	if err := s.units.Create(ctx, unit); err != nil {
		return nil, err
	}
	s.metrics.UnitsCreated.Inc()

	if err := s.refreshPropertyCounters(ctx, tenantID, propertyID, actorID); err != nil {
		return nil, err
	}

	s.logger.Info("unit created",
		zap.String("tenantID", tenantID),
		zap.String("propertyID", propertyID.String()),
		zap.String("unitNumber", unit.UnitNumber()),
	)

	s.publish(ctx, events.NewUnitCreated(tenantID, correlationID, actorID,
		events.UnitCreatedPayload{
			UnitID:     unit.ID().String(),
			PropertyID: propertyID.String(),
			UnitNumber: unit.UnitNumber(),
			Status:     string(unit.Status()),
		}))

	return unit, nil
}

// UpdateUnit applies a partial update. When the patch touches the status
// field the parent property counters are recomputed.
func (s *UnitService) UpdateUnit(
	ctx context.Context,
	tenantID string,
	unitID valueobjects.UnitID,
	patch entities.UnitPatch,
	actorID string,
	correlationID string,
) (*entities.Unit, error) {
	unit, err := s.units.FindByID(ctx, tenantID, unitID)
	if err != nil {
		return nil, err
	}

	if patch.UnitNumber != nil && *patch.UnitNumber != unit.UnitNumber() {
		if err := s.ensureUnitNumberFree(ctx, tenantID, unit.PropertyID(), *patch.UnitNumber); err != nil {
			return nil, err
		}
	}
	if patch.MonthlyRent != nil && patch.MonthlyRent.Currency != unit.MonthlyRent().Currency {
		if err := s.ensureCurrencyConsistent(ctx, tenantID, unit.PropertyID(), *patch.MonthlyRent); err != nil {
			return nil, err
		}
	}

	if err := unit.ApplyUpdate(patch, actorID); err != nil {
		return nil, err
	}
	if err := s.units.Update(ctx, unit); err != nil {
		return nil, err
	}

	if patch.ChangesStatus() {
		if err := s.refreshPropertyCounters(ctx, tenantID, unit.PropertyID(), actorID); err != nil {
			return nil, err
		}
	}

	s.publish(ctx, events.NewUnitUpdated(tenantID, correlationID, actorID,
		events.UnitUpdatedPayload{
			UnitID:        unit.ID().String(),
			PropertyID:    unit.PropertyID().String(),
			StatusChanged: patch.ChangesStatus(),
			Status:        string(unit.Status()),
		}))

	return unit, nil
}

// UpdateUnitStatus is a convenience wrapper over UpdateUnit that only
// transitions the status. Direct single-unit edits may set any status,
// including occupied->vacant; only bulk transitions are guarded.
func (s *UnitService) UpdateUnitStatus(
	ctx context.Context,
	tenantID string,
	unitID valueobjects.UnitID,
	status entities.UnitStatus,
	actorID string,
	correlationID string,
) (*entities.Unit, error) {
	return s.UpdateUnit(ctx, tenantID, unitID,
		entities.UnitPatch{Status: &status}, actorID, correlationID)
}

// DeleteUnit soft-deletes a non-occupied unit and recomputes the parent
// property counters
func (s *UnitService) DeleteUnit(
	ctx context.Context,
	tenantID string,
	unitID valueobjects.UnitID,
	actorID string,
	correlationID string,
) error {
	unit, err := s.units.FindByID(ctx, tenantID, unitID)
	if err != nil {
		return err
	}
	if unit.IsOccupied() {
		return pkgerrors.NewConflictError(
			fmt.Sprintf("unit %s is occupied", unit.UnitNumber())).
			WithCode(pkgerrors.CodeUnitOccupied)
	}

	if err := s.units.Delete(ctx, tenantID, unitID, actorID); err != nil {
		return err
	}
	s.metrics.UnitsDeleted.Inc()
	if err := s.refreshPropertyCounters(ctx, tenantID, unit.PropertyID(), actorID); err != nil {
		return err
	}

	s.publish(ctx, events.NewUnitDeleted(tenantID, correlationID, actorID,
		events.UnitDeletedPayload{
			UnitID:     unit.ID().String(),
			PropertyID: unit.PropertyID().String(),
			UnitNumber: unit.UnitNumber(),
		}))

	return nil
}

// GetUnit retrieves a single unit
func (s *UnitService) GetUnit(
	ctx context.Context,
	tenantID string,
	unitID valueobjects.UnitID,
) (*entities.Unit, error) {
	return s.units.FindByID(ctx, tenantID, unitID)
}

// ListUnitsByProperty lists all live units under a property
func (s *UnitService) ListUnitsByProperty(
	ctx context.Context,
	tenantID string,
	propertyID valueobjects.PropertyID,
) ([]*entities.Unit, error) {
	return s.units.FindByProperty(ctx, tenantID, propertyID)
}

// ListUnitsByBlock lists all live units grouped under a block
func (s *UnitService) ListUnitsByBlock(
	ctx context.Context,
	tenantID string,
	blockID valueobjects.BlockID,
) ([]*entities.Unit, error) {
	return s.units.FindByBlock(ctx, tenantID, blockID)
}

// ListUnitsByStatus lists a property's live units in the given status
func (s *UnitService) ListUnitsByStatus(
	ctx context.Context,
	tenantID string,
	propertyID valueobjects.PropertyID,
	status entities.UnitStatus,
) ([]*entities.Unit, error) {
	if !entities.IsValidUnitStatus(status) {
		return nil, pkgerrors.NewValidationError("unknown unit status").
			WithCode(pkgerrors.CodeInvalidUnitData)
	}
	return s.units.FindByStatus(ctx, tenantID, propertyID, status)
}

// ListVacantUnits lists a property's vacant units
func (s *UnitService) ListVacantUnits(
	ctx context.Context,
	tenantID string,
	propertyID valueobjects.PropertyID,
) ([]*entities.Unit, error) {
	return s.units.FindVacant(ctx, tenantID, propertyID)
}

// refreshPropertyCounters recomputes the parent property's denormalized
// counters from a fresh count query. The counter write is conditional on
// the property's version token, so two concurrent refreshes cannot
// interleave a stale count between read and write; the loser reloads and
// recounts.
func (s *UnitService) refreshPropertyCounters(
	ctx context.Context,
	tenantID string,
	propertyID valueobjects.PropertyID,
	actorID string,
) error {
	const maxAttempts = 3

	for attempt := 1; ; attempt++ {
		property, err := s.properties.FindByID(ctx, tenantID, propertyID)
		if err != nil {
			return err
		}
		counts, err := s.units.CountByProperty(ctx, tenantID, propertyID)
		if err != nil {
			return err
		}
		property.ApplyUnitCounts(counts.Total, counts.Occupied, counts.Vacant, actorID)

		err = s.properties.Update(ctx, property)
		if err == nil {
			return nil
		}
		if pkgerrors.HasCode(err, pkgerrors.CodeVersionConflict) && attempt < maxAttempts {
			s.metrics.VersionConflicts.Inc()
			s.logger.Debug("counter refresh lost the version race, retrying",
				zap.String("propertyID", propertyID.String()),
				zap.Int("attempt", attempt),
			)
			continue
		}
		return err
	}
}

// ensureUnitNumberFree fails with UNIT_NUMBER_EXISTS when the number is
// already taken within the property
func (s *UnitService) ensureUnitNumberFree(
	ctx context.Context,
	tenantID string,
	propertyID valueobjects.PropertyID,
	unitNumber string,
) error {
	existing, err := s.units.FindByUnitNumber(ctx, tenantID, propertyID, unitNumber)
	if err != nil && !pkgerrors.IsNotFound(err) {
		return err
	}
	if existing != nil {
		return pkgerrors.NewConflictError("unit number already in use").
			WithCode(pkgerrors.CodeUnitNumberExists).
			WithDetails(map[string]interface{}{"unit_number": unitNumber})
	}
	return nil
}

// ensureCurrencyConsistent rejects a rent whose currency disagrees with the
// property's existing units. Revenue aggregation assumes one currency per
// property.
func (s *UnitService) ensureCurrencyConsistent(
	ctx context.Context,
	tenantID string,
	propertyID valueobjects.PropertyID,
	rent valueobjects.Money,
) error {
	units, err := s.units.FindByProperty(ctx, tenantID, propertyID)
	if err != nil {
		return err
	}
	for _, existing := range units {
		if existing.MonthlyRent().Currency != rent.Currency {
			return pkgerrors.NewValidationError(
				fmt.Sprintf("property units use %s, got %s",
					existing.MonthlyRent().Currency, rent.Currency)).
				WithCode(pkgerrors.CodeInvalidUnitData)
		}
	}
	return nil
}

// publish sends an envelope best-effort; failures never roll back writes
func (s *UnitService) publish(ctx context.Context, envelope events.Envelope) {
	if err := s.eventBus.Publish(ctx, envelope); err != nil {
		s.logger.Warn("failed to publish event",
			zap.String("eventType", envelope.EventType),
			zap.Error(err),
		)
	}
}

// distinctProperties returns the distinct parent property ids of a unit
// batch in stable order
func distinctProperties(units []*entities.Unit) []valueobjects.PropertyID {
	seen := make(map[valueobjects.PropertyID]struct{}, len(units))
	ids := make([]valueobjects.PropertyID, 0, len(units))
	for _, unit := range units {
		if _, ok := seen[unit.PropertyID()]; ok {
			continue
		}
		seen[unit.PropertyID()] = struct{}{}
		ids = append(ids, unit.PropertyID())
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
