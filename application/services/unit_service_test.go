package services

import (
	"context"
	"testing"

	"propcore-backend/domain/core/entities"
	"propcore-backend/domain/core/valueobjects"
	"propcore-backend/domain/events"
	pkgerrors "propcore-backend/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUnit_RefreshesPropertyCounters(t *testing.T) {
	env := newTestEnv(false)
	ctx := context.Background()
	property := env.seedProperty(t)

	unit, err := env.unit.CreateUnit(ctx, testTenant, property.ID(),
		CreateUnitInput{
			UnitNumber:  "A01",
			UnitType:    "apartment",
			MonthlyRent: rent(120000),
		},
		testActor, testCorrID,
	)
	require.NoError(t, err)
	assert.Equal(t, entities.UnitStatusVacant, unit.Status())

	reloaded, err := env.property.GetProperty(ctx, testTenant, property.ID())
	require.NoError(t, err)
	assert.Equal(t, 1, reloaded.TotalUnits())
	assert.Equal(t, 0, reloaded.OccupiedUnits())
	assert.Equal(t, 1, reloaded.VacantUnits())

	assert.Equal(t, []string{events.TypeUnitCreated}, env.eventTypes())
}

func TestCreateUnit_RejectsDuplicateNumber(t *testing.T) {
	env := newTestEnv(false)
	ctx := context.Background()
	property := env.seedProperty(t)

	input := CreateUnitInput{
		UnitNumber:  "A01",
		UnitType:    "apartment",
		MonthlyRent: rent(120000),
	}
	_, err := env.unit.CreateUnit(ctx, testTenant, property.ID(), input, testActor, testCorrID)
	require.NoError(t, err)

	_, err = env.unit.CreateUnit(ctx, testTenant, property.ID(), input, testActor, testCorrID)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeUnitNumberExists))
}

func TestCreateUnit_RejectsMixedCurrencies(t *testing.T) {
	env := newTestEnv(false)
	ctx := context.Background()
	property := env.seedProperty(t)

	_, err := env.unit.CreateUnit(ctx, testTenant, property.ID(),
		CreateUnitInput{
			UnitNumber:  "A01",
			UnitType:    "apartment",
			MonthlyRent: rent(120000),
		},
		testActor, testCorrID,
	)
	require.NoError(t, err)

	_, err = env.unit.CreateUnit(ctx, testTenant, property.ID(),
		CreateUnitInput{
			UnitNumber:  "A02",
			UnitType:    "apartment",
			MonthlyRent: valueobjects.Money{Amount: 95000, Currency: "EUR"},
		},
		testActor, testCorrID,
	)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeInvalidUnitData))
}

func TestUpdateUnitStatus_RecountsOnTransition(t *testing.T) {
	env := newTestEnv(false)
	ctx := context.Background()
	property := env.seedProperty(t)

	unit, err := env.unit.CreateUnit(ctx, testTenant, property.ID(),
		CreateUnitInput{
			UnitNumber:  "A01",
			UnitType:    "apartment",
			MonthlyRent: rent(120000),
		},
		testActor, testCorrID,
	)
	require.NoError(t, err)
	env.bus.Reset()

	updated, err := env.unit.UpdateUnitStatus(ctx, testTenant, unit.ID(),
		entities.UnitStatusOccupied, testActor, testCorrID)
	require.NoError(t, err)
	assert.Equal(t, entities.UnitStatusOccupied, updated.Status())

	reloaded, err := env.property.GetProperty(ctx, testTenant, property.ID())
	require.NoError(t, err)
	assert.Equal(t, 1, reloaded.TotalUnits())
	assert.Equal(t, 1, reloaded.OccupiedUnits())
	assert.Equal(t, 0, reloaded.VacantUnits())

	assert.Equal(t, []string{events.TypeUnitUpdated}, env.eventTypes())
}

func TestUpdateUnit_RejectsUnknownStatus(t *testing.T) {
	env := newTestEnv(false)
	ctx := context.Background()
	property := env.seedProperty(t)

	unit, err := env.unit.CreateUnit(ctx, testTenant, property.ID(),
		CreateUnitInput{
			UnitNumber:  "A01",
			UnitType:    "apartment",
			MonthlyRent: rent(120000),
		},
		testActor, testCorrID,
	)
	require.NoError(t, err)

	bogus := entities.UnitStatus("haunted")
	_, err = env.unit.UpdateUnit(ctx, testTenant, unit.ID(),
		entities.UnitPatch{Status: &bogus}, testActor, testCorrID)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeInvalidUnitData))
}

func TestDeleteUnit_RefusesOccupiedUnit(t *testing.T) {
	env := newTestEnv(false)
	ctx := context.Background()
	property := env.seedProperty(t)

	unit, err := env.unit.CreateUnit(ctx, testTenant, property.ID(),
		CreateUnitInput{
			UnitNumber:  "A01",
			UnitType:    "apartment",
			MonthlyRent: rent(120000),
		},
		testActor, testCorrID,
	)
	require.NoError(t, err)
	_, err = env.unit.UpdateUnitStatus(ctx, testTenant, unit.ID(),
		entities.UnitStatusOccupied, testActor, testCorrID)
	require.NoError(t, err)
	env.bus.Reset()

	err = env.unit.DeleteUnit(ctx, testTenant, unit.ID(), testActor, testCorrID)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeUnitOccupied))

	// Counters are untouched by the refused delete.
	reloaded, err := env.property.GetProperty(ctx, testTenant, property.ID())
	require.NoError(t, err)
	assert.Equal(t, 1, reloaded.TotalUnits())
	assert.Equal(t, 1, reloaded.OccupiedUnits())
	assert.Empty(t, env.bus.Published())
}

func TestDeleteUnit_RecountsAfterDelete(t *testing.T) {
	env := newTestEnv(false)
	ctx := context.Background()
	property := env.seedProperty(t)

	unit, err := env.unit.CreateUnit(ctx, testTenant, property.ID(),
		CreateUnitInput{
			UnitNumber:  "A01",
			UnitType:    "apartment",
			MonthlyRent: rent(120000),
		},
		testActor, testCorrID,
	)
	require.NoError(t, err)
	env.bus.Reset()

	err = env.unit.DeleteUnit(ctx, testTenant, unit.ID(), testActor, testCorrID)
	require.NoError(t, err)

	_, err = env.unit.GetUnit(ctx, testTenant, unit.ID())
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeUnitNotFound))

	reloaded, err := env.property.GetProperty(ctx, testTenant, property.ID())
	require.NoError(t, err)
	assert.Equal(t, 0, reloaded.TotalUnits())
	assert.Equal(t, 0, reloaded.VacantUnits())

	assert.Equal(t, []string{events.TypeUnitDeleted}, env.eventTypes())
}

func TestListUnitsByStatus_RejectsUnknownStatus(t *testing.T) {
	env := newTestEnv(false)
	property := env.seedProperty(t)

	_, err := env.unit.ListUnitsByStatus(context.Background(), testTenant,
		property.ID(), entities.UnitStatus("haunted"))
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeInvalidUnitData))
}

func TestListVacantUnits(t *testing.T) {
	env := newTestEnv(false)
	ctx := context.Background()
	property := env.seedProperty(t)

	for _, number := range []string{"A01", "A02"} {
		_, err := env.unit.CreateUnit(ctx, testTenant, property.ID(),
			CreateUnitInput{
				UnitNumber:  number,
				UnitType:    "apartment",
				MonthlyRent: rent(120000),
			},
			testActor, testCorrID,
		)
		require.NoError(t, err)
	}

	units, err := env.unit.ListUnitsByProperty(ctx, testTenant, property.ID())
	require.NoError(t, err)
	require.Len(t, units, 2)

	_, err = env.unit.UpdateUnitStatus(ctx, testTenant, units[0].ID(),
		entities.UnitStatusOccupied, testActor, testCorrID)
	require.NoError(t, err)

	vacant, err := env.unit.ListVacantUnits(ctx, testTenant, property.ID())
	require.NoError(t, err)
	require.Len(t, vacant, 1)
	assert.Equal(t, "A02", vacant[0].UnitNumber())
}
