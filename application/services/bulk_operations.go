package services

import (
	"context"
	"fmt"

	"propcore-backend/domain/core/entities"
	"propcore-backend/domain/core/valueobjects"
	"propcore-backend/domain/events"
	pkgerrors "propcore-backend/pkg/errors"

	"go.uber.org/zap"
)

// BulkCreateUnitsInput describes a numbered run of units sharing one set of
// attributes. Unit numbers are generated as prefix + zero-padded running
// number starting at StartNumber.
type BulkCreateUnitsInput struct {
	NumberPrefix  string
	StartNumber   int
	Count         int
	Floor         int
	UnitType      string
	Bedrooms      int
	Bathrooms     int
	AreaSqm       float64
	MonthlyRent   valueobjects.Money
	DepositAmount valueobjects.Money
	Amenities     []string
	BlockID       *valueobjects.BlockID
}

// BulkCreateUnits creates a run of units with all-or-nothing semantics:
// every generated number is checked for uniqueness before anything is
// written, so the first collision aborts the call with no partial batch.
// The property counters are recomputed once and a single unit.bulk_created
// event carries all new unit ids.
func (s *UnitService) BulkCreateUnits(
	ctx context.Context,
	tenantID string,
	propertyID valueobjects.PropertyID,
	input BulkCreateUnitsInput,
	actorID string,
	correlationID string,
) (created []*entities.Unit, err error) {
	defer func() { s.countBulkOperation("create_units", err) }()

	if input.Count < 1 || input.Count > maxBulkSize {
		return nil, pkgerrors.NewValidationError(
			fmt.Sprintf("count must be between 1 and %d", maxBulkSize)).
			WithCode(pkgerrors.CodeInvalidUnitData)
	}

	if _, err := s.properties.FindByID(ctx, tenantID, propertyID); err != nil {
		return nil, err
	}
	if err := s.ensureCurrencyConsistent(ctx, tenantID, propertyID, input.MonthlyRent); err != nil {
		return nil, err
	}

	// Validation precedes any write: check every candidate number first.
	numbers := make([]string, 0, input.Count)
	for i := 0; i < input.Count; i++ {
		number := valueobjects.FormatUnitNumber(input.NumberPrefix, input.StartNumber+i)
		if err := s.ensureUnitNumberFree(ctx, tenantID, propertyID, number); err != nil {
			return nil, err
		}
		numbers = append(numbers, number)
	}

	units := make([]*entities.Unit, 0, input.Count)
	for _, number := range numbers {
		unit, err := entities.NewUnit(
			tenantID, propertyID, number, input.UnitType, input.MonthlyRent,
			entities.UnitAttributes{
				BlockID:       input.BlockID,
				Floor:         input.Floor,
				Bedrooms:      input.Bedrooms,
				Bathrooms:     input.Bathrooms,
				AreaSqm:       input.AreaSqm,
				DepositAmount: input.DepositAmount,
				Amenities:     input.Amenities,
			},
			actorID,
		)
		if err != nil {
			return nil, err
		}
		units = append(units, unit)
	}

	if err := s.units.CreateMany(ctx, units); err != nil {
		return nil, err
	}
	s.metrics.UnitsCreated.Add(float64(len(units)))
	if err := s.refreshPropertyCounters(ctx, tenantID, propertyID, actorID); err != nil {
		return nil, err
	}

	unitIDs := make([]string, len(units))
	for i, unit := range units {
		unitIDs[i] = unit.ID().String()
	}

	s.logger.Info("bulk units created",
		zap.String("tenantID", tenantID),
		zap.String("propertyID", propertyID.String()),
		zap.Int("count", len(units)),
	)

	s.publish(ctx, events.NewBulkUnitsCreated(tenantID, correlationID, actorID,
		events.BulkUnitsCreatedPayload{
			PropertyID: propertyID.String(),
			UnitIDs:    unitIDs,
			Count:      len(unitIDs),
		}))

	return units, nil
}

// BulkUpdateUnitStatusInput names the units to transition and the target
// status
type BulkUpdateUnitStatusInput struct {
	UnitIDs []string
	Status  entities.UnitStatus
}

// BulkUpdateUnitStatus transitions a batch of units to one status with
// all-or-nothing semantics. Every unit must exist, and transitioning an
// occupied unit to vacant is refused for the whole batch: vacating an
// occupied unit requires an explicit lease termination, which is not this
// service's call to make.
func (s *UnitService) BulkUpdateUnitStatus(
	ctx context.Context,
	tenantID string,
	input BulkUpdateUnitStatusInput,
	actorID string,
	correlationID string,
) (updated []*entities.Unit, err error) {
	defer func() { s.countBulkOperation("update_status", err) }()

	if len(input.UnitIDs) < 1 || len(input.UnitIDs) > maxBulkSize {
		return nil, pkgerrors.NewValidationError(
			fmt.Sprintf("unit ids must number between 1 and %d", maxBulkSize)).
			WithCode(pkgerrors.CodeInvalidUnitData)
	}
	if !entities.IsValidUnitStatus(input.Status) {
		return nil, pkgerrors.NewValidationError("unknown unit status").
			WithCode(pkgerrors.CodeInvalidUnitData)
	}

	// Validate the whole batch before touching any unit.
	units := make([]*entities.Unit, 0, len(input.UnitIDs))
	for _, rawID := range input.UnitIDs {
		unitID, err := valueobjects.NewUnitIDFromString(rawID)
		if err != nil {
			return nil, err
		}
		unit, err := s.units.FindByID(ctx, tenantID, unitID)
		if err != nil {
			return nil, err
		}
		if input.Status == entities.UnitStatusVacant && unit.IsOccupied() {
			return nil, pkgerrors.NewConflictError(
				fmt.Sprintf("unit %s is occupied and cannot be vacated in bulk", unit.UnitNumber())).
				WithCode(pkgerrors.CodeUnitOccupied).
				WithDetails(map[string]interface{}{"unit_id": unit.ID().String()})
		}
		units = append(units, unit)
	}

	status := input.Status
	for _, unit := range units {
		if err := unit.ApplyUpdate(entities.UnitPatch{Status: &status}, actorID); err != nil {
			return nil, err
		}
	}

	if err := s.units.UpdateMany(ctx, units); err != nil {
		return nil, err
	}

	propertyIDs := distinctProperties(units)
	for _, propertyID := range propertyIDs {
		if err := s.refreshPropertyCounters(ctx, tenantID, propertyID, actorID); err != nil {
			return nil, err
		}
	}

	rawPropertyIDs := make([]string, len(propertyIDs))
	for i, id := range propertyIDs {
		rawPropertyIDs[i] = id.String()
	}

	s.logger.Info("bulk unit status updated",
		zap.String("tenantID", tenantID),
		zap.String("status", string(status)),
		zap.Int("count", len(units)),
		zap.Int("properties", len(propertyIDs)),
	)

	s.publish(ctx, events.NewBulkUnitStatusUpdated(tenantID, correlationID, actorID,
		events.BulkUnitStatusUpdatedPayload{
			UnitIDs:     input.UnitIDs,
			Status:      string(status),
			PropertyIDs: rawPropertyIDs,
		}))

	return units, nil
}

// countBulkOperation records the outcome of a bulk call
func (s *UnitService) countBulkOperation(operation string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "rejected"
	}
	s.metrics.BulkOperations.WithLabelValues(operation, outcome).Inc()
}
