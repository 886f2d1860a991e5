package services

import (
	"context"
	"testing"

	"propcore-backend/application/ports"
	"propcore-backend/domain/core/aggregates"
	pkgerrors "propcore-backend/pkg/errors"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stalePropertyWrites wraps a property repository and, for the first
// `injections` Update calls, slips a rival write in ahead of the caller so
// the caller's version token is stale by the time its own write lands.
type stalePropertyWrites struct {
	ports.PropertyRepository
	injections int
	updates    int
}

func (r *stalePropertyWrites) Update(ctx context.Context, property *aggregates.Property) error {
	r.updates++
	if r.injections > 0 {
		r.injections--
		rival, err := r.PropertyRepository.FindByID(ctx, property.TenantID(), property.ID())
		if err != nil {
			return err
		}
		if err := r.PropertyRepository.Update(ctx, rival); err != nil {
			return err
		}
	}
	return r.PropertyRepository.Update(ctx, property)
}

func TestCreateUnit_CounterRefreshRetriesOnVersionConflict(t *testing.T) {
	env := newTestEnv(false)
	ctx := context.Background()
	property := env.seedProperty(t)

	repo := &stalePropertyWrites{PropertyRepository: env.properties, injections: 1}
	unitSvc := NewUnitService(env.units, repo, env.bus, env.metrics, zap.NewNop())

	conflictsBefore := testutil.ToFloat64(env.metrics.VersionConflicts)

	_, err := unitSvc.CreateUnit(ctx, testTenant, property.ID(),
		CreateUnitInput{
			UnitNumber:  "A01",
			UnitType:    "apartment",
			MonthlyRent: rent(120000),
		},
		testActor, testCorrID,
	)
	require.NoError(t, err)

	// First counter write lost the race, second settled after a recount.
	assert.Equal(t, 2, repo.updates)
	assert.Equal(t, conflictsBefore+1, testutil.ToFloat64(env.metrics.VersionConflicts))

	reloaded, err := env.property.GetProperty(ctx, testTenant, property.ID())
	require.NoError(t, err)
	assert.Equal(t, 1, reloaded.TotalUnits())
	assert.Equal(t, 1, reloaded.VacantUnits())
}

func TestUpdateProperty_RetriesOnVersionConflict(t *testing.T) {
	env := newTestEnv(false)
	ctx := context.Background()
	property := env.seedProperty(t)

	repo := &stalePropertyWrites{PropertyRepository: env.properties, injections: 1}
	propertySvc := NewPropertyService(repo, env.units, env.property.leases,
		env.bus, env.metrics, zap.NewNop())

	updated, err := propertySvc.UpdateProperty(ctx, testTenant, property.ID(),
		aggregates.PropertyPatch{Name: strPtr("Sunrise Towers Renovated")},
		testActor, testCorrID,
	)
	require.NoError(t, err)
	assert.Equal(t, "Sunrise Towers Renovated", updated.Name())
	assert.Equal(t, 2, repo.updates)

	reloaded, err := env.property.GetProperty(ctx, testTenant, property.ID())
	require.NoError(t, err)
	assert.Equal(t, "Sunrise Towers Renovated", reloaded.Name())
}

func TestUpdateProperty_GivesUpAfterRepeatedConflicts(t *testing.T) {
	env := newTestEnv(false)
	ctx := context.Background()
	property := env.seedProperty(t)

	repo := &stalePropertyWrites{PropertyRepository: env.properties, injections: 3}
	propertySvc := NewPropertyService(repo, env.units, env.property.leases,
		env.bus, env.metrics, zap.NewNop())

	_, err := propertySvc.UpdateProperty(ctx, testTenant, property.ID(),
		aggregates.PropertyPatch{Name: strPtr("Never Lands")},
		testActor, testCorrID,
	)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeVersionConflict))
	assert.Equal(t, 3, repo.updates)
}
