package handlers

import (
	"net/http"
	"time"

	"propcore-backend/domain/core/aggregates"
	"propcore-backend/domain/core/entities"
	"propcore-backend/domain/core/valueobjects"
	"propcore-backend/pkg/common"
)

// MoneyDTO carries an amount in minor units plus its ISO currency code
type MoneyDTO struct {
	Amount   int64  `json:"amount" validate:"gte=0"`
	Currency string `json:"currency" validate:"required,len=3"`
}

func moneyFromDTO(dto MoneyDTO) (valueobjects.Money, error) {
	return valueobjects.NewMoney(dto.Amount, dto.Currency)
}

func moneyToDTO(m valueobjects.Money) MoneyDTO {
	return MoneyDTO{Amount: m.Amount, Currency: m.Currency}
}

// PropertyResponse is the API shape of a property aggregate
type PropertyResponse struct {
	ID            string               `json:"id"`
	OwnerID       string               `json:"owner_id"`
	Name          string               `json:"name"`
	Code          string               `json:"code"`
	PropertyType  string               `json:"property_type"`
	Status        string               `json:"status"`
	Address       valueobjects.Address `json:"address"`
	TotalUnits    int                  `json:"total_units"`
	OccupiedUnits int                  `json:"occupied_units"`
	VacantUnits   int                  `json:"vacant_units"`
	Amenities     []string             `json:"amenities,omitempty"`
	ManagerID     *string              `json:"manager_id,omitempty"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
}

func toPropertyResponse(p *aggregates.Property) PropertyResponse {
	return PropertyResponse{
		ID:            p.ID().String(),
		OwnerID:       p.OwnerID(),
		Name:          p.Name(),
		Code:          p.Code(),
		PropertyType:  string(p.PropertyType()),
		Status:        string(p.Status()),
		Address:       p.Address(),
		TotalUnits:    p.TotalUnits(),
		OccupiedUnits: p.OccupiedUnits(),
		VacantUnits:   p.VacantUnits(),
		Amenities:     p.Amenities(),
		ManagerID:     p.ManagerID(),
		CreatedAt:     p.CreatedAt(),
		UpdatedAt:     p.UpdatedAt(),
	}
}

func toPropertyResponses(properties []*aggregates.Property) []PropertyResponse {
	out := make([]PropertyResponse, 0, len(properties))
	for _, p := range properties {
		out = append(out, toPropertyResponse(p))
	}
	return out
}

// UnitResponse is the API shape of a unit
type UnitResponse struct {
	ID                string     `json:"id"`
	PropertyID        string     `json:"property_id"`
	BlockID           *string    `json:"block_id,omitempty"`
	UnitNumber        string     `json:"unit_number"`
	Floor             int        `json:"floor"`
	UnitType          string     `json:"unit_type"`
	Bedrooms          int        `json:"bedrooms"`
	Bathrooms         int        `json:"bathrooms"`
	AreaSqm           float64    `json:"area_sqm"`
	MonthlyRent       MoneyDTO   `json:"monthly_rent"`
	DepositAmount     *MoneyDTO  `json:"deposit_amount,omitempty"`
	Status            string     `json:"status"`
	Amenities         []string   `json:"amenities,omitempty"`
	NextInspectionDue *time.Time `json:"next_inspection_due,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

func toUnitResponse(u *entities.Unit) UnitResponse {
	resp := UnitResponse{
		ID:                u.ID().String(),
		PropertyID:        u.PropertyID().String(),
		UnitNumber:        u.UnitNumber(),
		Floor:             u.Floor(),
		UnitType:          u.UnitType(),
		Bedrooms:          u.Bedrooms(),
		Bathrooms:         u.Bathrooms(),
		AreaSqm:           u.AreaSqm(),
		MonthlyRent:       moneyToDTO(u.MonthlyRent()),
		Status:            string(u.Status()),
		Amenities:         u.Amenities(),
		NextInspectionDue: u.NextInspectionDue(),
		CreatedAt:         u.CreatedAt(),
		UpdatedAt:         u.UpdatedAt(),
	}
	if blockID := u.BlockID(); blockID != nil {
		raw := blockID.String()
		resp.BlockID = &raw
	}
	if deposit := u.DepositAmount(); !deposit.IsZero() {
		dto := moneyToDTO(deposit)
		resp.DepositAmount = &dto
	}
	return resp
}

func toUnitResponses(units []*entities.Unit) []UnitResponse {
	out := make([]UnitResponse, 0, len(units))
	for _, u := range units {
		out = append(out, toUnitResponse(u))
	}
	return out
}

// BlockResponse is the API shape of a block
type BlockResponse struct {
	ID          string    `json:"id"`
	PropertyID  string    `json:"property_id"`
	BlockCode   string    `json:"block_code"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Status      string    `json:"status"`
	Amenities   []string  `json:"amenities,omitempty"`
	Features    []string  `json:"features,omitempty"`
	ManagerID   *string   `json:"manager_id,omitempty"`
	SortOrder   int       `json:"sort_order"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toBlockResponse(b *entities.Block) BlockResponse {
	return BlockResponse{
		ID:          b.ID().String(),
		PropertyID:  b.PropertyID().String(),
		BlockCode:   b.BlockCode(),
		Name:        b.Name(),
		Description: b.Description(),
		Status:      string(b.Status()),
		Amenities:   b.Amenities(),
		Features:    b.Features(),
		ManagerID:   b.ManagerID(),
		SortOrder:   b.SortOrder(),
		CreatedAt:   b.CreatedAt(),
		UpdatedAt:   b.UpdatedAt(),
	}
}

func toBlockResponses(blocks []*entities.Block) []BlockResponse {
	out := make([]BlockResponse, 0, len(blocks))
	for _, b := range blocks {
		out = append(out, toBlockResponse(b))
	}
	return out
}

// identity pulls the tenant and acting user set by the auth middleware.
// Missing values mean the middleware did not run, which is a routing bug.
func identity(w http.ResponseWriter, r *http.Request) (tenantID, userID string, ok bool) {
	tenantID, tenantOK := common.GetTenantID(r.Context())
	userID, userOK := common.GetUserID(r.Context())
	if !tenantOK || !userOK {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing identity context")
		return "", "", false
	}
	return tenantID, userID, true
}
