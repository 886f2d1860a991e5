package entities

import (
	"testing"
	"time"

	"propcore-backend/domain/core/valueobjects"
	pkgerrors "propcore-backend/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func usd(amount int64) valueobjects.Money {
	return valueobjects.Money{Amount: amount, Currency: "USD"}
}

func newTestUnit(t *testing.T) *Unit {
	t.Helper()
	unit, err := NewUnit("tenant-1", valueobjects.NewPropertyID(), "A01",
		"apartment", usd(120000), UnitAttributes{}, "user-1")
	require.NoError(t, err)
	return unit
}

func TestNewUnit_Defaults(t *testing.T) {
	unit := newTestUnit(t)

	assert.Equal(t, UnitStatusVacant, unit.Status())
	assert.Equal(t, "A01", unit.UnitNumber())
	assert.False(t, unit.IsOccupied())
	assert.False(t, unit.IsDeleted())
	assert.Nil(t, unit.BlockID())
}

func TestNewUnit_Validation(t *testing.T) {
	propertyID := valueobjects.NewPropertyID()

	_, err := NewUnit("tenant-1", propertyID, "", "apartment", usd(1), UnitAttributes{}, "user-1")
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeInvalidUnitData))

	_, err = NewUnit("tenant-1", propertyID, "A01", "apartment",
		valueobjects.Money{}, UnitAttributes{}, "user-1")
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeInvalidUnitData))

	_, err = NewUnit("tenant-1", propertyID, "A01", "apartment", usd(1),
		UnitAttributes{Status: UnitStatus("haunted")}, "user-1")
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeInvalidUnitData))

	_, err = NewUnit("tenant-1", propertyID, "A01", "apartment", usd(1),
		UnitAttributes{DepositAmount: valueobjects.Money{Amount: 1, Currency: "EUR"}}, "user-1")
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeInvalidUnitData))
}

func TestUnit_ApplyUpdate_BlockMembership(t *testing.T) {
	unit := newTestUnit(t)

	blockID := valueobjects.NewBlockID()
	require.NoError(t, unit.ApplyUpdate(UnitPatch{BlockID: &blockID}, "user-1"))
	require.NotNil(t, unit.BlockID())
	assert.Equal(t, blockID, *unit.BlockID())

	require.NoError(t, unit.ApplyUpdate(UnitPatch{RemoveFromBlock: true}, "user-1"))
	assert.Nil(t, unit.BlockID())
}

func TestUnit_ApplyUpdate_InspectionSchedule(t *testing.T) {
	unit := newTestUnit(t)

	due := time.Now().UTC().Add(30 * 24 * time.Hour)
	require.NoError(t, unit.ApplyUpdate(UnitPatch{NextInspectionDue: &due}, "user-1"))
	require.NotNil(t, unit.NextInspectionDue())

	require.NoError(t, unit.ApplyUpdate(UnitPatch{ClearNextInspection: true}, "user-1"))
	assert.Nil(t, unit.NextInspectionDue())
}

func TestUnit_MarkDeleted_RefusesOccupied(t *testing.T) {
	unit := newTestUnit(t)
	occupied := UnitStatusOccupied
	require.NoError(t, unit.ApplyUpdate(UnitPatch{Status: &occupied}, "user-1"))

	err := unit.MarkDeleted("user-1", time.Now().UTC())
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeUnitOccupied))
	assert.False(t, unit.IsDeleted())

	vacant := UnitStatusVacant
	require.NoError(t, unit.ApplyUpdate(UnitPatch{Status: &vacant}, "user-1"))
	require.NoError(t, unit.MarkDeleted("user-1", time.Now().UTC()))
	assert.True(t, unit.IsDeleted())
}

func TestUnit_RecordRoundTrip(t *testing.T) {
	blockID := valueobjects.NewBlockID()
	unit, err := NewUnit("tenant-1", valueobjects.NewPropertyID(), "A01",
		"apartment", usd(120000),
		UnitAttributes{
			BlockID:       &blockID,
			Floor:         3,
			Bedrooms:      2,
			Bathrooms:     1,
			AreaSqm:       84.5,
			DepositAmount: usd(240000),
			Amenities:     []string{"balcony"},
		},
		"user-1",
	)
	require.NoError(t, err)

	rebuilt := ReconstructUnit(unit.Record())
	assert.Equal(t, unit.ID(), rebuilt.ID())
	assert.Equal(t, unit.UnitNumber(), rebuilt.UnitNumber())
	assert.Equal(t, unit.MonthlyRent(), rebuilt.MonthlyRent())
	assert.Equal(t, unit.DepositAmount(), rebuilt.DepositAmount())
	require.NotNil(t, rebuilt.BlockID())
	assert.Equal(t, blockID, *rebuilt.BlockID())
	assert.Equal(t, unit.Status(), rebuilt.Status())
}
