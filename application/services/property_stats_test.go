package services

import (
	"context"
	"testing"
	"time"

	"propcore-backend/domain/core/aggregates"
	"propcore-backend/domain/core/entities"
	"propcore-backend/domain/core/valueobjects"
	pkgerrors "propcore-backend/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedUnits creates count equal-rent units and transitions the first
// occupied of them to occupied, the next maintenance of them to
// under_maintenance. The rest stay vacant.
func seedUnits(t *testing.T, env *testEnv, property *aggregates.Property, count, occupied, maintenance int) []*entities.Unit {
	t.Helper()
	ctx := context.Background()

	units, err := env.unit.BulkCreateUnits(ctx, testTenant, property.ID(),
		BulkCreateUnitsInput{
			NumberPrefix: "A",
			StartNumber:  1,
			Count:        count,
			UnitType:     "apartment",
			MonthlyRent:  rent(100000),
		},
		testActor, testCorrID,
	)
	require.NoError(t, err)

	for i := 0; i < occupied; i++ {
		_, err := env.unit.UpdateUnitStatus(ctx, testTenant, units[i].ID(),
			entities.UnitStatusOccupied, testActor, testCorrID)
		require.NoError(t, err)
	}
	for i := occupied; i < occupied+maintenance; i++ {
		_, err := env.unit.UpdateUnitStatus(ctx, testTenant, units[i].ID(),
			entities.UnitStatusUnderMaintenance, testActor, testCorrID)
		require.NoError(t, err)
	}
	return units
}

func TestGetPropertyStats_EmptyPropertyIsAllZeros(t *testing.T) {
	env := newTestEnv(false)
	property := env.seedProperty(t)

	stats, err := env.property.GetPropertyStats(context.Background(), testTenant, property.ID())
	require.NoError(t, err)
	assert.Equal(t, &PropertyStats{}, stats)
}

func TestGetPropertyStats_ComputesOccupancyAndRevenue(t *testing.T) {
	env := newTestEnv(false)
	property := env.seedProperty(t)
	seedUnits(t, env, property, 4, 3, 0)

	stats, err := env.property.GetPropertyStats(context.Background(), testTenant, property.ID())
	require.NoError(t, err)

	assert.Equal(t, 4, stats.TotalUnits)
	assert.Equal(t, 3, stats.OccupiedUnits)
	assert.Equal(t, 1, stats.VacantUnits)
	assert.Equal(t, 75, stats.OccupancyRate)
	assert.Equal(t, valueobjects.Money{Amount: 400000, Currency: "USD"}, stats.PotentialRevenue)
	assert.Equal(t, valueobjects.Money{Amount: 300000, Currency: "USD"}, stats.ActualRevenue)
	assert.Equal(t, 75, stats.RevenueEfficiency)
}

func TestGetPropertyStats_UnknownProperty(t *testing.T) {
	env := newTestEnv(false)

	_, err := env.property.GetPropertyStats(context.Background(), testTenant,
		"4f2a9c11-0000-0000-0000-000000000000")
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodePropertyNotFound))
}

func TestCalculatePropertyHealthScore_WeightedComposite(t *testing.T) {
	env := newTestEnv(false)
	property := env.seedProperty(t)

	// 10 equal-rent units: 8 occupied, 1 under maintenance, 1 vacant, no
	// overdue inspections.
	seedUnits(t, env, property, 10, 8, 1)

	score, err := env.property.CalculatePropertyHealthScore(context.Background(),
		testTenant, property.ID())
	require.NoError(t, err)

	assert.Equal(t, 80, score.OccupancyScore)
	assert.Equal(t, 80, score.RevenueScore)
	assert.Equal(t, 50, score.MaintenanceScore)
	assert.Equal(t, 100, score.ComplianceScore)
	// 80*0.35 + 80*0.30 + 50*0.20 + 100*0.15
	assert.Equal(t, 77, score.OverallScore)

	assert.Equal(t, 10, score.Factors.TotalUnits)
	assert.Equal(t, 1, score.Factors.VacantUnits)
	assert.InDelta(t, 80.0, score.Factors.OccupancyRate, 0.001)
	assert.Equal(t, int64(100000), score.Factors.AverageRent)
	assert.False(t, score.CalculatedAt.IsZero())
}

func TestCalculatePropertyHealthScore_OverdueInspectionsLowerCompliance(t *testing.T) {
	env := newTestEnv(false)
	ctx := context.Background()
	property := env.seedProperty(t)
	units := seedUnits(t, env, property, 10, 0, 0)

	overdue := time.Now().UTC().Add(-24 * time.Hour)
	_, err := env.unit.UpdateUnit(ctx, testTenant, units[0].ID(),
		entities.UnitPatch{NextInspectionDue: &overdue},
		testActor, testCorrID,
	)
	require.NoError(t, err)

	score, err := env.property.CalculatePropertyHealthScore(ctx, testTenant, property.ID())
	require.NoError(t, err)

	// 10% overdue costs 30 compliance points.
	assert.Equal(t, 70, score.ComplianceScore)
	assert.Equal(t, 0, score.OccupancyScore)
	assert.Equal(t, 100, score.MaintenanceScore)
}

func TestCalculatePropertyHealthScore_MaintenanceFloorIsZero(t *testing.T) {
	env := newTestEnv(false)
	property := env.seedProperty(t)

	// 3 of 10 units under maintenance drives the raw score below zero; it
	// clamps at 0.
	seedUnits(t, env, property, 10, 0, 3)

	score, err := env.property.CalculatePropertyHealthScore(context.Background(),
		testTenant, property.ID())
	require.NoError(t, err)
	assert.Equal(t, 0, score.MaintenanceScore)
}

func TestCalculatePropertyHealthScore_NoUnits(t *testing.T) {
	env := newTestEnv(false)
	property := env.seedProperty(t)

	score, err := env.property.CalculatePropertyHealthScore(context.Background(),
		testTenant, property.ID())
	require.NoError(t, err)
	assert.Equal(t, 0, score.OverallScore)
	assert.Equal(t, 0, score.Factors.TotalUnits)
	assert.False(t, score.CalculatedAt.IsZero())
}
