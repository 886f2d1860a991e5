package services

import (
	"context"
	"testing"
	"time"

	"propcore-backend/domain/core/aggregates"
	"propcore-backend/domain/core/valueobjects"
	"propcore-backend/domain/events"
	"propcore-backend/infrastructure/acl"
	"propcore-backend/infrastructure/messaging/local"
	"propcore-backend/infrastructure/persistence/memory"
	pkgerrors "propcore-backend/pkg/errors"
	"propcore-backend/pkg/observability"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	testTenant = "tenant-1"
	testActor  = "user-1"
	testCorrID = "corr-1"
)

type testEnv struct {
	properties *memory.PropertyRepository
	units      *memory.UnitRepository
	blocks     *memory.BlockRepository
	bus        *local.Bus
	metrics    *observability.Collector
	property   *PropertyService
	unit       *UnitService
	block      *BlockService
}

func newTestEnv(hasLeases bool) *testEnv {
	logger := zap.NewNop()
	properties := memory.NewPropertyRepository()
	units := memory.NewUnitRepository()
	blocks := memory.NewBlockRepository()
	bus := local.NewBus(logger)
	leases := acl.NewStaticLeaseChecker(hasLeases)
	metrics := observability.NewCollector("propcore_test")

	return &testEnv{
		properties: properties,
		units:      units,
		blocks:     blocks,
		bus:        bus,
		metrics:    metrics,
		property:   NewPropertyService(properties, units, leases, bus, metrics, logger),
		unit:       NewUnitService(units, properties, bus, metrics, logger),
		block:      NewBlockService(blocks, units, properties, bus, metrics, logger),
	}
}

func (e *testEnv) seedProperty(t *testing.T) *aggregates.Property {
	t.Helper()

	property, err := e.property.CreateProperty(context.Background(), testTenant,
		CreatePropertyInput{
			OwnerID:      "owner-1",
			Name:         "Sunrise Towers",
			PropertyType: aggregates.PropertyTypeResidential,
			Address: valueobjects.Address{
				Line1:   "12 Harbour Road",
				City:    "Cape Town",
				Country: "ZA",
			},
		},
		testActor, testCorrID,
	)
	require.NoError(t, err)
	e.bus.Reset()
	return property
}

func (e *testEnv) eventTypes() []string {
	published := e.bus.Published()
	types := make([]string, len(published))
	for i, env := range published {
		types[i] = env.EventType
	}
	return types
}

func rent(amount int64) valueobjects.Money {
	return valueobjects.Money{Amount: amount, Currency: "USD"}
}

func strPtr(s string) *string {
	return &s
}

func TestCreateProperty_GeneratesSequentialCodes(t *testing.T) {
	env := newTestEnv(false)
	ctx := context.Background()
	year := time.Now().UTC().Year()

	first, err := env.property.CreateProperty(ctx, testTenant,
		CreatePropertyInput{
			OwnerID:      "owner-1",
			Name:         "Sunrise Towers",
			PropertyType: aggregates.PropertyTypeResidential,
		},
		testActor, testCorrID,
	)
	require.NoError(t, err)
	assert.Equal(t, valueobjects.FormatPropertyCode(year, 1), first.Code())
	assert.Equal(t, aggregates.PropertyStatusActive, first.Status())
	assert.Equal(t, 1, first.Version())

	second, err := env.property.CreateProperty(ctx, testTenant,
		CreatePropertyInput{
			OwnerID:      "owner-1",
			Name:         "Harbour View",
			PropertyType: aggregates.PropertyTypeCommercial,
		},
		testActor, testCorrID,
	)
	require.NoError(t, err)
	assert.Equal(t, valueobjects.FormatPropertyCode(year, 2), second.Code())

	// Each tenant draws from its own sequence.
	other, err := env.property.CreateProperty(ctx, "tenant-2",
		CreatePropertyInput{
			OwnerID:      "owner-9",
			Name:         "Other Tenant Estate",
			PropertyType: aggregates.PropertyTypeResidential,
		},
		testActor, testCorrID,
	)
	require.NoError(t, err)
	assert.Equal(t, valueobjects.FormatPropertyCode(year, 1), other.Code())

	assert.Equal(t,
		[]string{events.TypePropertyCreated, events.TypePropertyCreated, events.TypePropertyCreated},
		env.eventTypes())
}

func TestCreateProperty_RejectsDuplicateCode(t *testing.T) {
	env := newTestEnv(false)
	ctx := context.Background()

	input := CreatePropertyInput{
		OwnerID:      "owner-1",
		Name:         "Sunrise Towers",
		Code:         "PROP-CUSTOM-01",
		PropertyType: aggregates.PropertyTypeResidential,
	}
	_, err := env.property.CreateProperty(ctx, testTenant, input, testActor, testCorrID)
	require.NoError(t, err)

	input.Name = "Sunrise Towers II"
	_, err = env.property.CreateProperty(ctx, testTenant, input, testActor, testCorrID)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodePropertyCodeExists))
	assert.True(t, pkgerrors.IsConflict(err))
}

func TestCreateProperty_RejectsMissingRequiredFields(t *testing.T) {
	env := newTestEnv(false)

	_, err := env.property.CreateProperty(context.Background(), testTenant,
		CreatePropertyInput{
			OwnerID:      "",
			Name:         "No Owner",
			PropertyType: aggregates.PropertyTypeResidential,
		},
		testActor, testCorrID,
	)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeInvalidPropertyData))
	assert.Empty(t, env.bus.Published())
}

func TestUpdateProperty_MergesPatch(t *testing.T) {
	env := newTestEnv(false)
	ctx := context.Background()
	property := env.seedProperty(t)

	city := "Johannesburg"
	updated, err := env.property.UpdateProperty(ctx, testTenant, property.ID(),
		aggregates.PropertyPatch{
			Name:    strPtr("Sunrise Towers Renovated"),
			Address: &valueobjects.AddressPatch{City: &city},
		},
		testActor, testCorrID,
	)
	require.NoError(t, err)
	assert.Equal(t, "Sunrise Towers Renovated", updated.Name())
	assert.Equal(t, "Johannesburg", updated.Address().City)
	// Untouched address fields survive the merge.
	assert.Equal(t, "12 Harbour Road", updated.Address().Line1)
	assert.Equal(t, property.Code(), updated.Code())

	assert.Equal(t, []string{events.TypePropertyUpdated}, env.eventTypes())
}

func TestUpdateProperty_RemoveManagerClearsAssignment(t *testing.T) {
	env := newTestEnv(false)
	ctx := context.Background()
	property := env.seedProperty(t)

	_, err := env.property.AssignManager(ctx, testTenant, property.ID(),
		"manager-1", testActor, testCorrID)
	require.NoError(t, err)

	updated, err := env.property.UpdateProperty(ctx, testTenant, property.ID(),
		aggregates.PropertyPatch{RemoveManager: true},
		testActor, testCorrID,
	)
	require.NoError(t, err)
	assert.Nil(t, updated.ManagerID())
}

func TestAssignManager_PublishesManagerChanged(t *testing.T) {
	env := newTestEnv(false)
	ctx := context.Background()
	property := env.seedProperty(t)

	updated, err := env.property.AssignManager(ctx, testTenant, property.ID(),
		"manager-1", testActor, testCorrID)
	require.NoError(t, err)
	require.NotNil(t, updated.ManagerID())
	assert.Equal(t, "manager-1", *updated.ManagerID())

	assert.Equal(t, []string{events.TypePropertyManagerChanged}, env.eventTypes())

	managed, err := env.property.ListByManager(ctx, testTenant, "manager-1")
	require.NoError(t, err)
	require.Len(t, managed, 1)
	assert.Equal(t, property.ID(), managed[0].ID())
}

func TestDeleteProperty_BlockedByActiveLeases(t *testing.T) {
	env := newTestEnv(true)
	property := env.seedProperty(t)

	err := env.property.DeleteProperty(context.Background(), testTenant,
		property.ID(), testActor, testCorrID)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeActiveLeases))

	// The property is still retrievable.
	_, err = env.property.GetProperty(context.Background(), testTenant, property.ID())
	assert.NoError(t, err)
	assert.Empty(t, env.bus.Published())
}

func TestDeleteProperty_SoftDeletes(t *testing.T) {
	env := newTestEnv(false)
	ctx := context.Background()
	property := env.seedProperty(t)

	err := env.property.DeleteProperty(ctx, testTenant, property.ID(), testActor, testCorrID)
	require.NoError(t, err)

	_, err = env.property.GetProperty(ctx, testTenant, property.ID())
	require.Error(t, err)
	assert.True(t, pkgerrors.IsNotFound(err))
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodePropertyNotFound))

	assert.Equal(t, []string{events.TypePropertyDeleted}, env.eventTypes())
}

func TestGetProperty_UnknownTenantSeesNothing(t *testing.T) {
	env := newTestEnv(false)
	property := env.seedProperty(t)

	_, err := env.property.GetProperty(context.Background(), "tenant-2", property.ID())
	require.Error(t, err)
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestListByOwner(t *testing.T) {
	env := newTestEnv(false)
	ctx := context.Background()
	property := env.seedProperty(t)

	_, err := env.property.CreateProperty(ctx, testTenant,
		CreatePropertyInput{
			OwnerID:      "owner-2",
			Name:         "Another Owner Estate",
			PropertyType: aggregates.PropertyTypeResidential,
		},
		testActor, testCorrID,
	)
	require.NoError(t, err)

	owned, err := env.property.ListByOwner(ctx, testTenant, "owner-1")
	require.NoError(t, err)
	require.Len(t, owned, 1)
	assert.Equal(t, property.ID(), owned[0].ID())
}
