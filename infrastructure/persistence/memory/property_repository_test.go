package memory

import (
	"context"
	"fmt"
	"testing"

	"propcore-backend/application/ports"
	"propcore-backend/domain/core/aggregates"
	"propcore-backend/pkg/common"
	pkgerrors "propcore-backend/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProperty(t *testing.T, tenantID, name, code string) *aggregates.Property {
	t.Helper()
	property, err := aggregates.NewProperty(tenantID, "owner-1", name, code,
		aggregates.PropertyTypeResidential, aggregates.PropertyAttributes{}, "user-1")
	require.NoError(t, err)
	return property
}

func TestPropertyRepository_UpdateDetectsVersionConflict(t *testing.T) {
	repo := NewPropertyRepository()
	ctx := context.Background()

	property := newProperty(t, "tenant-1", "Sunrise Towers", "PROP-2026-0001")
	require.NoError(t, repo.Create(ctx, property))

	// Two readers load the same version.
	first, err := repo.FindByID(ctx, "tenant-1", property.ID())
	require.NoError(t, err)
	second, err := repo.FindByID(ctx, "tenant-1", property.ID())
	require.NoError(t, err)

	first.ApplyUnitCounts(5, 2, 3, "user-1")
	require.NoError(t, repo.Update(ctx, first))

	// The second writer holds a stale version token.
	second.ApplyUnitCounts(4, 4, 0, "user-2")
	err = repo.Update(ctx, second)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeVersionConflict))

	// The first write's counts survive; the stale write never landed.
	reloaded, err := repo.FindByID(ctx, "tenant-1", property.ID())
	require.NoError(t, err)
	assert.Equal(t, 5, reloaded.TotalUnits())
	assert.Equal(t, 2, reloaded.OccupiedUnits())
	assert.Equal(t, 2, reloaded.Version())
}

func TestPropertyRepository_SoftDeleteHidesFromReads(t *testing.T) {
	repo := NewPropertyRepository()
	ctx := context.Background()

	property := newProperty(t, "tenant-1", "Sunrise Towers", "PROP-2026-0001")
	require.NoError(t, repo.Create(ctx, property))
	require.NoError(t, repo.Delete(ctx, "tenant-1", property.ID(), "user-1"))

	_, err := repo.FindByID(ctx, "tenant-1", property.ID())
	assert.True(t, pkgerrors.IsNotFound(err))

	_, err = repo.FindByCode(ctx, "tenant-1", "PROP-2026-0001")
	assert.True(t, pkgerrors.IsNotFound(err))

	_, total, err := repo.FindMany(ctx, "tenant-1", ports.PropertyFilter{},
		common.PaginationParams{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Zero(t, total)

	// Deleting twice reports not found rather than silently succeeding.
	err = repo.Delete(ctx, "tenant-1", property.ID(), "user-1")
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestPropertyRepository_FindManyFiltersAndPaginates(t *testing.T) {
	repo := NewPropertyRepository()
	ctx := context.Background()

	for i, name := range []string{"Sunrise Towers", "Harbour View", "Sunset Lofts"} {
		property := newProperty(t, "tenant-1", name,
			fmt.Sprintf("PROP-2026-%04d", i+1))
		require.NoError(t, repo.Create(ctx, property))
	}

	results, total, err := repo.FindMany(ctx, "tenant-1",
		ports.PropertyFilter{Search: "sun"},
		common.PaginationParams{Page: 1, PageSize: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, results, 1)

	results, total, err = repo.FindMany(ctx, "tenant-1",
		ports.PropertyFilter{Search: "sun"},
		common.PaginationParams{Page: 2, PageSize: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, results, 1)

	// Other tenants see nothing.
	_, total, err = repo.FindMany(ctx, "tenant-2", ports.PropertyFilter{},
		common.PaginationParams{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestPropertyRepository_SequencesArePerTenantAndYear(t *testing.T) {
	repo := NewPropertyRepository()
	ctx := context.Background()

	seq, err := repo.GetNextSequence(ctx, "tenant-1", 2026)
	require.NoError(t, err)
	assert.Equal(t, int64(1), seq)

	seq, err = repo.GetNextSequence(ctx, "tenant-1", 2026)
	require.NoError(t, err)
	assert.Equal(t, int64(2), seq)

	seq, err = repo.GetNextSequence(ctx, "tenant-1", 2027)
	require.NoError(t, err)
	assert.Equal(t, int64(1), seq)

	seq, err = repo.GetNextSequence(ctx, "tenant-2", 2026)
	require.NoError(t, err)
	assert.Equal(t, int64(1), seq)
}
