package entities

import (
	"strings"
	"time"

	"propcore-backend/domain/core/valueobjects"
	pkgerrors "propcore-backend/pkg/errors"
)

// UnitStatus represents the occupancy state of a unit
type UnitStatus string

const (
	UnitStatusVacant           UnitStatus = "vacant"
	UnitStatusOccupied         UnitStatus = "occupied"
	UnitStatusUnderMaintenance UnitStatus = "under_maintenance"
	UnitStatusReserved         UnitStatus = "reserved"
	UnitStatusUnavailable      UnitStatus = "unavailable"
)

// IsValidUnitStatus reports whether s is a known unit status
func IsValidUnitStatus(s UnitStatus) bool {
	switch s {
	case UnitStatusVacant, UnitStatusOccupied, UnitStatusUnderMaintenance,
		UnitStatusReserved, UnitStatusUnavailable:
		return true
	}
	return false
}

// Unit is a leaf entity owned by a Property, optionally grouped under a
// Block. All mutation goes through methods so occupancy rules cannot be
// bypassed.
type Unit struct {
	id                valueobjects.UnitID
	propertyID        valueobjects.PropertyID
	tenantID          string
	blockID           *valueobjects.BlockID
	unitNumber        string
	floor             int
	unitType          string
	bedrooms          int
	bathrooms         int
	areaSqm           float64
	monthlyRent       valueobjects.Money
	depositAmount     valueobjects.Money
	status            UnitStatus
	amenities         []string
	nextInspectionDue *time.Time
	createdAt         time.Time
	updatedAt         time.Time
	createdBy         string
	updatedBy         string
	deletedAt         *time.Time
	deletedBy         string
}

// UnitAttributes carries the optional fields for unit creation
type UnitAttributes struct {
	BlockID           *valueobjects.BlockID
	Floor             int
	Bedrooms          int
	Bathrooms         int
	AreaSqm           float64
	DepositAmount     valueobjects.Money
	Amenities         []string
	NextInspectionDue *time.Time
	Status            UnitStatus
}

// NewUnit creates a unit under the given property. unitNumber, unitType and
// a non-zero monthly rent are required.
func NewUnit(
	tenantID string,
	propertyID valueobjects.PropertyID,
	unitNumber string,
	unitType string,
	monthlyRent valueobjects.Money,
	attrs UnitAttributes,
	actor string,
) (*Unit, error) {
	if tenantID == "" {
		return nil, pkgerrors.NewValidationError("tenantID cannot be empty")
	}
	if strings.TrimSpace(unitNumber) == "" || strings.TrimSpace(unitType) == "" ||
		monthlyRent.IsZero() {
		return nil, pkgerrors.NewValidationError(
			"unitNumber, type and monthlyRent are required").
			WithCode(pkgerrors.CodeInvalidUnitData)
	}

	status := attrs.Status
	if status == "" {
		status = UnitStatusVacant
	}
	if !IsValidUnitStatus(status) {
		return nil, pkgerrors.NewValidationError("unknown unit status").
			WithCode(pkgerrors.CodeInvalidUnitData)
	}
	if !attrs.DepositAmount.IsZero() && !attrs.DepositAmount.SameCurrency(monthlyRent) {
		return nil, pkgerrors.NewValidationError(
			"deposit currency must match rent currency").
			WithCode(pkgerrors.CodeInvalidUnitData)
	}

	now := time.Now().UTC()
	return &Unit{
		id:                valueobjects.NewUnitID(),
		propertyID:        propertyID,
		tenantID:          tenantID,
		blockID:           attrs.BlockID,
		unitNumber:        strings.TrimSpace(unitNumber),
		floor:             attrs.Floor,
		unitType:          strings.TrimSpace(unitType),
		bedrooms:          attrs.Bedrooms,
		bathrooms:         attrs.Bathrooms,
		areaSqm:           attrs.AreaSqm,
		monthlyRent:       monthlyRent,
		depositAmount:     attrs.DepositAmount,
		status:            status,
		amenities:         attrs.Amenities,
		nextInspectionDue: attrs.NextInspectionDue,
		createdAt:         now,
		updatedAt:         now,
		createdBy:         actor,
		updatedBy:         actor,
	}, nil
}

// UnitPatch is a partial unit update; nil fields keep their previous value
type UnitPatch struct {
	UnitNumber          *string
	Floor               *int
	UnitType            *string
	Bedrooms            *int
	Bathrooms           *int
	AreaSqm             *float64
	MonthlyRent         *valueobjects.Money
	DepositAmount       *valueobjects.Money
	Status              *UnitStatus
	Amenities           *[]string
	BlockID             *valueobjects.BlockID
	RemoveFromBlock     bool
	NextInspectionDue   *time.Time
	ClearNextInspection bool
}

// ChangesStatus reports whether the patch touches the status field
func (p UnitPatch) ChangesStatus() bool {
	return p.Status != nil
}

// ApplyUpdate merges the patch into the unit
func (u *Unit) ApplyUpdate(patch UnitPatch, actor string) error {
	if patch.Status != nil && !IsValidUnitStatus(*patch.Status) {
		return pkgerrors.NewValidationError("unknown unit status").
			WithCode(pkgerrors.CodeInvalidUnitData)
	}
	if patch.UnitNumber != nil {
		if strings.TrimSpace(*patch.UnitNumber) == "" {
			return pkgerrors.NewValidationError("unitNumber cannot be empty").
				WithCode(pkgerrors.CodeInvalidUnitData)
		}
		u.unitNumber = strings.TrimSpace(*patch.UnitNumber)
	}
	if patch.Floor != nil {
		u.floor = *patch.Floor
	}
	if patch.UnitType != nil {
		u.unitType = strings.TrimSpace(*patch.UnitType)
	}
	if patch.Bedrooms != nil {
		u.bedrooms = *patch.Bedrooms
	}
	if patch.Bathrooms != nil {
		u.bathrooms = *patch.Bathrooms
	}
	if patch.AreaSqm != nil {
		u.areaSqm = *patch.AreaSqm
	}
	if patch.MonthlyRent != nil {
		u.monthlyRent = *patch.MonthlyRent
	}
	if patch.DepositAmount != nil {
		u.depositAmount = *patch.DepositAmount
	}
	if patch.Status != nil {
		u.status = *patch.Status
	}
	if patch.Amenities != nil {
		u.amenities = *patch.Amenities
	}
	if patch.RemoveFromBlock {
		u.blockID = nil
	} else if patch.BlockID != nil {
		u.blockID = patch.BlockID
	}
	if patch.ClearNextInspection {
		u.nextInspectionDue = nil
	} else if patch.NextInspectionDue != nil {
		u.nextInspectionDue = patch.NextInspectionDue
	}
	u.updatedAt = time.Now().UTC()
	u.updatedBy = actor
	return nil
}

// MarkDeleted soft-deletes the unit. Occupied units cannot be deleted
// without terminating the lease first.
func (u *Unit) MarkDeleted(actor string, at time.Time) error {
	if u.status == UnitStatusOccupied {
		return pkgerrors.NewConflictError(
			"occupied unit cannot be deleted").
			WithCode(pkgerrors.CodeUnitOccupied)
	}
	u.deletedAt = &at
	u.deletedBy = actor
	u.updatedAt = at
	u.updatedBy = actor
	return nil
}

// IsOccupied reports whether the unit currently has a tenant
func (u *Unit) IsOccupied() bool {
	return u.status == UnitStatusOccupied
}

// IsDeleted reports whether the unit is soft-deleted
func (u *Unit) IsDeleted() bool {
	return u.deletedAt != nil
}

// Getters

func (u *Unit) ID() valueobjects.UnitID             { return u.id }
func (u *Unit) PropertyID() valueobjects.PropertyID { return u.propertyID }
func (u *Unit) TenantID() string                    { return u.tenantID }
func (u *Unit) BlockID() *valueobjects.BlockID      { return u.blockID }
func (u *Unit) UnitNumber() string                  { return u.unitNumber }
func (u *Unit) Floor() int                          { return u.floor }
func (u *Unit) UnitType() string                    { return u.unitType }
func (u *Unit) Bedrooms() int                       { return u.bedrooms }
func (u *Unit) Bathrooms() int                      { return u.bathrooms }
func (u *Unit) AreaSqm() float64                    { return u.areaSqm }
func (u *Unit) MonthlyRent() valueobjects.Money     { return u.monthlyRent }
func (u *Unit) DepositAmount() valueobjects.Money   { return u.depositAmount }
func (u *Unit) Status() UnitStatus                  { return u.status }
func (u *Unit) Amenities() []string                 { return u.amenities }
func (u *Unit) NextInspectionDue() *time.Time       { return u.nextInspectionDue }
func (u *Unit) CreatedAt() time.Time                { return u.createdAt }
func (u *Unit) UpdatedAt() time.Time                { return u.updatedAt }
func (u *Unit) DeletedAt() *time.Time               { return u.deletedAt }

// UnitRecord is the flat representation repositories persist and load
type UnitRecord struct {
	ID                string
	PropertyID        string
	TenantID          string
	BlockID           string
	UnitNumber        string
	Floor             int
	UnitType          string
	Bedrooms          int
	Bathrooms         int
	AreaSqm           float64
	RentAmount        int64
	RentCurrency      string
	DepositAmount     int64
	DepositCurrency   string
	Status            string
	Amenities         []string
	NextInspectionDue *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
	CreatedBy         string
	UpdatedBy         string
	DeletedAt         *time.Time
	DeletedBy         string
}

// Record flattens the unit for persistence
func (u *Unit) Record() UnitRecord {
	rec := UnitRecord{
		ID:                u.id.String(),
		PropertyID:        u.propertyID.String(),
		TenantID:          u.tenantID,
		UnitNumber:        u.unitNumber,
		Floor:             u.floor,
		UnitType:          u.unitType,
		Bedrooms:          u.bedrooms,
		Bathrooms:         u.bathrooms,
		AreaSqm:           u.areaSqm,
		RentAmount:        u.monthlyRent.Amount,
		RentCurrency:      u.monthlyRent.Currency,
		DepositAmount:     u.depositAmount.Amount,
		DepositCurrency:   u.depositAmount.Currency,
		Status:            string(u.status),
		Amenities:         u.amenities,
		NextInspectionDue: u.nextInspectionDue,
		CreatedAt:         u.createdAt,
		UpdatedAt:         u.updatedAt,
		CreatedBy:         u.createdBy,
		UpdatedBy:         u.updatedBy,
		DeletedAt:         u.deletedAt,
		DeletedBy:         u.deletedBy,
	}
	if u.blockID != nil {
		rec.BlockID = u.blockID.String()
	}
	return rec
}

// ReconstructUnit rebuilds a unit from a persisted record
func ReconstructUnit(rec UnitRecord) *Unit {
	u := &Unit{
		id:                valueobjects.UnitID(rec.ID),
		propertyID:        valueobjects.PropertyID(rec.PropertyID),
		tenantID:          rec.TenantID,
		unitNumber:        rec.UnitNumber,
		floor:             rec.Floor,
		unitType:          rec.UnitType,
		bedrooms:          rec.Bedrooms,
		bathrooms:         rec.Bathrooms,
		areaSqm:           rec.AreaSqm,
		monthlyRent:       valueobjects.Money{Amount: rec.RentAmount, Currency: rec.RentCurrency},
		depositAmount:     valueobjects.Money{Amount: rec.DepositAmount, Currency: rec.DepositCurrency},
		status:            UnitStatus(rec.Status),
		amenities:         rec.Amenities,
		nextInspectionDue: rec.NextInspectionDue,
		createdAt:         rec.CreatedAt,
		updatedAt:         rec.UpdatedAt,
		createdBy:         rec.CreatedBy,
		updatedBy:         rec.UpdatedBy,
		deletedAt:         rec.DeletedAt,
		deletedBy:         rec.DeletedBy,
	}
	if rec.BlockID != "" {
		blockID := valueobjects.BlockID(rec.BlockID)
		u.blockID = &blockID
	}
	return u
}
