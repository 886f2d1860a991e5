package services

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The collector is a process-wide singleton, so every assertion works on
// deltas rather than absolute counts.
func TestBusinessMetrics_CountServiceOperations(t *testing.T) {
	env := newTestEnv(false)
	ctx := context.Background()

	propertiesBefore := testutil.ToFloat64(env.metrics.PropertiesCreated)
	property := env.seedProperty(t)
	assert.Equal(t, propertiesBefore+1, testutil.ToFloat64(env.metrics.PropertiesCreated))

	unitsBefore := testutil.ToFloat64(env.metrics.UnitsCreated)
	bulkOKBefore := testutil.ToFloat64(env.metrics.BulkOperations.WithLabelValues("create_units", "ok"))

	unit, err := env.unit.CreateUnit(ctx, testTenant, property.ID(),
		CreateUnitInput{
			UnitNumber:  "A01",
			UnitType:    "apartment",
			MonthlyRent: rent(120000),
		},
		testActor, testCorrID,
	)
	require.NoError(t, err)

	_, err = env.unit.BulkCreateUnits(ctx, testTenant, property.ID(),
		BulkCreateUnitsInput{
			NumberPrefix: "B",
			StartNumber:  1,
			Count:        2,
			UnitType:     "apartment",
			MonthlyRent:  rent(120000),
		},
		testActor, testCorrID,
	)
	require.NoError(t, err)

	assert.Equal(t, unitsBefore+3, testutil.ToFloat64(env.metrics.UnitsCreated))
	assert.Equal(t, bulkOKBefore+1,
		testutil.ToFloat64(env.metrics.BulkOperations.WithLabelValues("create_units", "ok")))

	rejectedBefore := testutil.ToFloat64(env.metrics.BulkOperations.WithLabelValues("create_units", "rejected"))
	_, err = env.unit.BulkCreateUnits(ctx, testTenant, property.ID(),
		BulkCreateUnitsInput{NumberPrefix: "C", StartNumber: 1, Count: 0},
		testActor, testCorrID,
	)
	require.Error(t, err)
	assert.Equal(t, rejectedBefore+1,
		testutil.ToFloat64(env.metrics.BulkOperations.WithLabelValues("create_units", "rejected")))

	deletedBefore := testutil.ToFloat64(env.metrics.UnitsDeleted)
	require.NoError(t, env.unit.DeleteUnit(ctx, testTenant, unit.ID(), testActor, testCorrID))
	assert.Equal(t, deletedBefore+1, testutil.ToFloat64(env.metrics.UnitsDeleted))
}

func TestBusinessMetrics_CountBlockAndPropertyLifecycle(t *testing.T) {
	env := newTestEnv(false)
	ctx := context.Background()
	property := env.seedProperty(t)

	blocksBefore := testutil.ToFloat64(env.metrics.BlocksCreated)
	_, err := env.block.CreateBlock(ctx, testTenant, property.ID(),
		CreateBlockInput{Name: "North Wing"}, testActor, testCorrID)
	require.NoError(t, err)
	assert.Equal(t, blocksBefore+1, testutil.ToFloat64(env.metrics.BlocksCreated))

	deletedBefore := testutil.ToFloat64(env.metrics.PropertiesDeleted)
	require.NoError(t, env.property.DeleteProperty(ctx, testTenant, property.ID(),
		testActor, testCorrID))
	assert.Equal(t, deletedBefore+1, testutil.ToFloat64(env.metrics.PropertiesDeleted))
}
