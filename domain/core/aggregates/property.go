package aggregates

import (
	"strings"
	"time"

	"propcore-backend/domain/core/valueobjects"
	pkgerrors "propcore-backend/pkg/errors"
)

// PropertyStatus represents the lifecycle state of a property
type PropertyStatus string

const (
	PropertyStatusActive            PropertyStatus = "active"
	PropertyStatusUnderConstruction PropertyStatus = "under_construction"
	PropertyStatusInactive          PropertyStatus = "inactive"
)

// PropertyType classifies a property
type PropertyType string

const (
	PropertyTypeResidential PropertyType = "residential"
	PropertyTypeCommercial  PropertyType = "commercial"
	PropertyTypeMixedUse    PropertyType = "mixed_use"
)

// Property is the aggregate root of the resource hierarchy. It is the
// consistency boundary for its child Units and Blocks and carries the
// denormalized occupancy counters.
//
// Invariant: after any mutating operation settles, totalUnits equals the
// live (non-deleted) unit population and occupiedUnits+vacantUnits plus the
// other status buckets sum to totalUnits. The version field is the
// optimistic-concurrency token repositories check on every update, which is
// what keeps concurrent counter recomputations from clobbering each other.
type Property struct {
	id            valueobjects.PropertyID
	tenantID      string
	ownerID       string
	name          string
	code          string
	propertyType  PropertyType
	status        PropertyStatus
	address       valueobjects.Address
	totalUnits    int
	occupiedUnits int
	vacantUnits   int
	amenities     []string
	managerID     *string
	createdAt     time.Time
	updatedAt     time.Time
	createdBy     string
	updatedBy     string
	deletedAt     *time.Time
	deletedBy     string
	version       int
}

// PropertyAttributes carries the optional fields for property creation
type PropertyAttributes struct {
	Status    PropertyStatus
	Address   valueobjects.Address
	Amenities []string
	ManagerID *string
}

// NewProperty creates a property aggregate. Name, type and owner are
// required; the code must already be allocated (generated or supplied).
func NewProperty(
	tenantID string,
	ownerID string,
	name string,
	code string,
	propertyType PropertyType,
	attrs PropertyAttributes,
	actor string,
) (*Property, error) {
	if tenantID == "" {
		return nil, pkgerrors.NewValidationError("tenantID cannot be empty")
	}
	if strings.TrimSpace(name) == "" || propertyType == "" || strings.TrimSpace(ownerID) == "" {
		return nil, pkgerrors.NewValidationError(
			"name, type and owner are required").
			WithCode(pkgerrors.CodeInvalidPropertyData)
	}
	if strings.TrimSpace(code) == "" {
		return nil, pkgerrors.NewValidationError("property code cannot be empty").
			WithCode(pkgerrors.CodeInvalidPropertyData)
	}

	status := attrs.Status
	if status == "" {
		status = PropertyStatusActive
	}

	now := time.Now().UTC()
	return &Property{
		id:           valueobjects.NewPropertyID(),
		tenantID:     tenantID,
		ownerID:      strings.TrimSpace(ownerID),
		name:         strings.TrimSpace(name),
		code:         strings.TrimSpace(code),
		propertyType: propertyType,
		status:       status,
		address:      attrs.Address,
		amenities:    attrs.Amenities,
		managerID:    attrs.ManagerID,
		createdAt:    now,
		updatedAt:    now,
		createdBy:    actor,
		updatedBy:    actor,
		version:      1,
	}, nil
}

// PropertyPatch is a partial property update; nil fields keep their
// previous value, the address patch merges shallowly
type PropertyPatch struct {
	Name          *string
	OwnerID       *string
	PropertyType  *PropertyType
	Status        *PropertyStatus
	Address       *valueobjects.AddressPatch
	Amenities     *[]string
	ManagerID     *string
	RemoveManager bool
}

// ApplyUpdate merges the patch into the property
func (p *Property) ApplyUpdate(patch PropertyPatch, actor string) error {
	if patch.Name != nil {
		if strings.TrimSpace(*patch.Name) == "" {
			return pkgerrors.NewValidationError("property name cannot be empty").
				WithCode(pkgerrors.CodeInvalidPropertyData)
		}
		p.name = strings.TrimSpace(*patch.Name)
	}
	if patch.OwnerID != nil {
		if strings.TrimSpace(*patch.OwnerID) == "" {
			return pkgerrors.NewValidationError("ownerID cannot be empty").
				WithCode(pkgerrors.CodeInvalidPropertyData)
		}
		p.ownerID = strings.TrimSpace(*patch.OwnerID)
	}
	if patch.PropertyType != nil {
		p.propertyType = *patch.PropertyType
	}
	if patch.Status != nil {
		p.status = *patch.Status
	}
	p.address = p.address.Merge(patch.Address)
	if patch.Amenities != nil {
		p.amenities = *patch.Amenities
	}
	if patch.RemoveManager {
		p.managerID = nil
	} else if patch.ManagerID != nil {
		p.managerID = patch.ManagerID
	}
	p.updatedAt = time.Now().UTC()
	p.updatedBy = actor
	return nil
}

// AssignManager sets the property manager
func (p *Property) AssignManager(managerID string, actor string) error {
	if strings.TrimSpace(managerID) == "" {
		return pkgerrors.NewValidationError("managerID cannot be empty").
			WithCode(pkgerrors.CodeInvalidPropertyData)
	}
	id := strings.TrimSpace(managerID)
	return p.ApplyUpdate(PropertyPatch{ManagerID: &id}, actor)
}

// ApplyUnitCounts replaces the denormalized counters with a fresh count
func (p *Property) ApplyUnitCounts(total, occupied, vacant int, actor string) {
	p.totalUnits = total
	p.occupiedUnits = occupied
	p.vacantUnits = vacant
	p.updatedAt = time.Now().UTC()
	p.updatedBy = actor
}

// MarkDeleted soft-deletes the property
func (p *Property) MarkDeleted(actor string, at time.Time) {
	p.deletedAt = &at
	p.deletedBy = actor
	p.updatedAt = at
	p.updatedBy = actor
}

// IsDeleted reports whether the property is soft-deleted
func (p *Property) IsDeleted() bool {
	return p.deletedAt != nil
}

// Getters

func (p *Property) ID() valueobjects.PropertyID   { return p.id }
func (p *Property) TenantID() string              { return p.tenantID }
func (p *Property) OwnerID() string               { return p.ownerID }
func (p *Property) Name() string                  { return p.name }
func (p *Property) Code() string                  { return p.code }
func (p *Property) PropertyType() PropertyType    { return p.propertyType }
func (p *Property) Status() PropertyStatus        { return p.status }
func (p *Property) Address() valueobjects.Address { return p.address }
func (p *Property) TotalUnits() int               { return p.totalUnits }
func (p *Property) OccupiedUnits() int            { return p.occupiedUnits }
func (p *Property) VacantUnits() int              { return p.vacantUnits }
func (p *Property) Amenities() []string           { return p.amenities }
func (p *Property) ManagerID() *string            { return p.managerID }
func (p *Property) CreatedAt() time.Time          { return p.createdAt }
func (p *Property) UpdatedAt() time.Time          { return p.updatedAt }
func (p *Property) DeletedAt() *time.Time         { return p.deletedAt }
func (p *Property) Version() int                  { return p.version }

// PropertyRecord is the flat representation repositories persist and load
type PropertyRecord struct {
	ID            string
	TenantID      string
	OwnerID       string
	Name          string
	Code          string
	PropertyType  string
	Status        string
	Address       valueobjects.Address
	TotalUnits    int
	OccupiedUnits int
	VacantUnits   int
	Amenities     []string
	ManagerID     *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	CreatedBy     string
	UpdatedBy     string
	DeletedAt     *time.Time
	DeletedBy     string
	Version       int
}

// Record flattens the property for persistence
func (p *Property) Record() PropertyRecord {
	return PropertyRecord{
		ID:            p.id.String(),
		TenantID:      p.tenantID,
		OwnerID:       p.ownerID,
		Name:          p.name,
		Code:          p.code,
		PropertyType:  string(p.propertyType),
		Status:        string(p.status),
		Address:       p.address,
		TotalUnits:    p.totalUnits,
		OccupiedUnits: p.occupiedUnits,
		VacantUnits:   p.vacantUnits,
		Amenities:     p.amenities,
		ManagerID:     p.managerID,
		CreatedAt:     p.createdAt,
		UpdatedAt:     p.updatedAt,
		CreatedBy:     p.createdBy,
		UpdatedBy:     p.updatedBy,
		DeletedAt:     p.deletedAt,
		DeletedBy:     p.deletedBy,
		Version:       p.version,
	}
}

// ReconstructProperty rebuilds a property from a persisted record
func ReconstructProperty(rec PropertyRecord) *Property {
	return &Property{
		id:            valueobjects.PropertyID(rec.ID),
		tenantID:      rec.TenantID,
		ownerID:       rec.OwnerID,
		name:          rec.Name,
		code:          rec.Code,
		propertyType:  PropertyType(rec.PropertyType),
		status:        PropertyStatus(rec.Status),
		address:       rec.Address,
		totalUnits:    rec.TotalUnits,
		occupiedUnits: rec.OccupiedUnits,
		vacantUnits:   rec.VacantUnits,
		amenities:     rec.Amenities,
		managerID:     rec.ManagerID,
		createdAt:     rec.CreatedAt,
		updatedAt:     rec.UpdatedAt,
		createdBy:     rec.CreatedBy,
		updatedBy:     rec.UpdatedBy,
		deletedAt:     rec.DeletedAt,
		deletedBy:     rec.DeletedBy,
		version:       rec.Version,
	}
}
