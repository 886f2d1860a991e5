package services

import (
	"context"
	"testing"

	"propcore-backend/domain/core/entities"
	"propcore-backend/domain/events"
	pkgerrors "propcore-backend/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBulkCreateUnits_GeneratesNumberedRun(t *testing.T) {
	env := newTestEnv(false)
	ctx := context.Background()
	property := env.seedProperty(t)

	units, err := env.unit.BulkCreateUnits(ctx, testTenant, property.ID(),
		BulkCreateUnitsInput{
			NumberPrefix: "A",
			StartNumber:  1,
			Count:        3,
			UnitType:     "apartment",
			MonthlyRent:  rent(120000),
		},
		testActor, testCorrID,
	)
	require.NoError(t, err)
	require.Len(t, units, 3)
	assert.Equal(t, "A01", units[0].UnitNumber())
	assert.Equal(t, "A02", units[1].UnitNumber())
	assert.Equal(t, "A03", units[2].UnitNumber())

	reloaded, err := env.property.GetProperty(ctx, testTenant, property.ID())
	require.NoError(t, err)
	assert.Equal(t, 3, reloaded.TotalUnits())
	assert.Equal(t, 3, reloaded.VacantUnits())

	// One batch event, not three unit.created events.
	published := env.bus.Published()
	require.Len(t, published, 1)
	assert.Equal(t, events.TypeBulkUnitsCreated, published[0].EventType)
	payload, ok := published[0].Payload.(events.BulkUnitsCreatedPayload)
	require.True(t, ok)
	assert.Equal(t, 3, payload.Count)
}

func TestBulkCreateUnits_RejectsOutOfRangeCount(t *testing.T) {
	env := newTestEnv(false)
	ctx := context.Background()
	property := env.seedProperty(t)

	for _, count := range []int{0, 201} {
		_, err := env.unit.BulkCreateUnits(ctx, testTenant, property.ID(),
			BulkCreateUnitsInput{
				NumberPrefix: "A",
				StartNumber:  1,
				Count:        count,
				UnitType:     "apartment",
				MonthlyRent:  rent(120000),
			},
			testActor, testCorrID,
		)
		require.Error(t, err)
		assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeInvalidUnitData))
	}
	assert.Empty(t, env.bus.Published())
}

func TestBulkCreateUnits_CollisionAbortsWholeBatch(t *testing.T) {
	env := newTestEnv(false)
	ctx := context.Background()
	property := env.seedProperty(t)

	_, err := env.unit.CreateUnit(ctx, testTenant, property.ID(),
		CreateUnitInput{
			UnitNumber:  "A02",
			UnitType:    "apartment",
			MonthlyRent: rent(120000),
		},
		testActor, testCorrID,
	)
	require.NoError(t, err)
	env.bus.Reset()

	_, err = env.unit.BulkCreateUnits(ctx, testTenant, property.ID(),
		BulkCreateUnitsInput{
			NumberPrefix: "A",
			StartNumber:  1,
			Count:        3,
			UnitType:     "apartment",
			MonthlyRent:  rent(120000),
		},
		testActor, testCorrID,
	)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeUnitNumberExists))

	// Nothing was written, not even A01 which precedes the collision.
	units, err := env.unit.ListUnitsByProperty(ctx, testTenant, property.ID())
	require.NoError(t, err)
	require.Len(t, units, 1)
	assert.Equal(t, "A02", units[0].UnitNumber())

	reloaded, err := env.property.GetProperty(ctx, testTenant, property.ID())
	require.NoError(t, err)
	assert.Equal(t, 1, reloaded.TotalUnits())
	assert.Empty(t, env.bus.Published())
}

func TestBulkUpdateUnitStatus_TransitionsWholeBatch(t *testing.T) {
	env := newTestEnv(false)
	ctx := context.Background()
	property := env.seedProperty(t)

	units, err := env.unit.BulkCreateUnits(ctx, testTenant, property.ID(),
		BulkCreateUnitsInput{
			NumberPrefix: "A",
			StartNumber:  1,
			Count:        4,
			UnitType:     "apartment",
			MonthlyRent:  rent(120000),
		},
		testActor, testCorrID,
	)
	require.NoError(t, err)
	env.bus.Reset()

	ids := make([]string, len(units))
	for i, unit := range units {
		ids[i] = unit.ID().String()
	}

	updated, err := env.unit.BulkUpdateUnitStatus(ctx, testTenant,
		BulkUpdateUnitStatusInput{UnitIDs: ids, Status: entities.UnitStatusOccupied},
		testActor, testCorrID,
	)
	require.NoError(t, err)
	require.Len(t, updated, 4)
	for _, unit := range updated {
		assert.Equal(t, entities.UnitStatusOccupied, unit.Status())
	}

	reloaded, err := env.property.GetProperty(ctx, testTenant, property.ID())
	require.NoError(t, err)
	assert.Equal(t, 4, reloaded.TotalUnits())
	assert.Equal(t, 4, reloaded.OccupiedUnits())
	assert.Equal(t, 0, reloaded.VacantUnits())

	assert.Equal(t, []string{events.TypeBulkUnitStatusUpdated}, env.eventTypes())
}

func TestBulkUpdateUnitStatus_OccupiedUnitBlocksBulkVacate(t *testing.T) {
	env := newTestEnv(false)
	ctx := context.Background()
	property := env.seedProperty(t)

	units, err := env.unit.BulkCreateUnits(ctx, testTenant, property.ID(),
		BulkCreateUnitsInput{
			NumberPrefix: "A",
			StartNumber:  1,
			Count:        3,
			UnitType:     "apartment",
			MonthlyRent:  rent(120000),
		},
		testActor, testCorrID,
	)
	require.NoError(t, err)

	ids := make([]string, len(units))
	for i, unit := range units {
		ids[i] = unit.ID().String()
	}

	// Reserve two, occupy one, then try to vacate all three.
	_, err = env.unit.BulkUpdateUnitStatus(ctx, testTenant,
		BulkUpdateUnitStatusInput{UnitIDs: ids[:2], Status: entities.UnitStatusReserved},
		testActor, testCorrID,
	)
	require.NoError(t, err)
	occupied, err := env.unit.UpdateUnitStatus(ctx, testTenant, units[2].ID(),
		entities.UnitStatusOccupied, testActor, testCorrID)
	require.NoError(t, err)
	env.bus.Reset()

	_, err = env.unit.BulkUpdateUnitStatus(ctx, testTenant,
		BulkUpdateUnitStatusInput{UnitIDs: ids, Status: entities.UnitStatusVacant},
		testActor, testCorrID,
	)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeUnitOccupied))

	appErr := pkgerrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, occupied.ID().String(), appErr.Details["unit_id"])

	// No unit in the batch changed state.
	for i, reserved := range units[:2] {
		unit, err := env.unit.GetUnit(ctx, testTenant, reserved.ID())
		require.NoError(t, err)
		assert.Equal(t, entities.UnitStatusReserved, unit.Status(), "unit %d", i)
	}
	unit, err := env.unit.GetUnit(ctx, testTenant, units[2].ID())
	require.NoError(t, err)
	assert.Equal(t, entities.UnitStatusOccupied, unit.Status())
	assert.Empty(t, env.bus.Published())
}

func TestBulkUpdateUnitStatus_RejectsBadInput(t *testing.T) {
	env := newTestEnv(false)
	ctx := context.Background()
	env.seedProperty(t)

	_, err := env.unit.BulkUpdateUnitStatus(ctx, testTenant,
		BulkUpdateUnitStatusInput{UnitIDs: nil, Status: entities.UnitStatusVacant},
		testActor, testCorrID,
	)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeInvalidUnitData))

	ids := make([]string, maxBulkSize+1)
	for i := range ids {
		ids[i] = "unit"
	}
	_, err = env.unit.BulkUpdateUnitStatus(ctx, testTenant,
		BulkUpdateUnitStatusInput{UnitIDs: ids, Status: entities.UnitStatusVacant},
		testActor, testCorrID,
	)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeInvalidUnitData))

	_, err = env.unit.BulkUpdateUnitStatus(ctx, testTenant,
		BulkUpdateUnitStatusInput{UnitIDs: []string{"missing"}, Status: entities.UnitStatus("haunted")},
		testActor, testCorrID,
	)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeInvalidUnitData))
}

func TestBulkUpdateUnitStatus_MissingUnitAbortsBatch(t *testing.T) {
	env := newTestEnv(false)
	ctx := context.Background()
	property := env.seedProperty(t)

	units, err := env.unit.BulkCreateUnits(ctx, testTenant, property.ID(),
		BulkCreateUnitsInput{
			NumberPrefix: "A",
			StartNumber:  1,
			Count:        2,
			UnitType:     "apartment",
			MonthlyRent:  rent(120000),
		},
		testActor, testCorrID,
	)
	require.NoError(t, err)

	ids := []string{units[0].ID().String(), "2e9b0a53-7e3c-4ac1-9a57-000000000000"}
	_, err = env.unit.BulkUpdateUnitStatus(ctx, testTenant,
		BulkUpdateUnitStatusInput{UnitIDs: ids, Status: entities.UnitStatusReserved},
		testActor, testCorrID,
	)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeUnitNotFound))

	unit, err := env.unit.GetUnit(ctx, testTenant, units[0].ID())
	require.NoError(t, err)
	assert.Equal(t, entities.UnitStatusVacant, unit.Status())
}
