package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"propcore-backend/application/services"
	"propcore-backend/domain/core/entities"
	"propcore-backend/domain/core/valueobjects"
	"propcore-backend/pkg/common"
	"propcore-backend/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// UnitHandler handles unit-related HTTP requests
type UnitHandler struct {
	units  *services.UnitService
	logger *zap.Logger
}

// NewUnitHandler creates a new unit handler
func NewUnitHandler(units *services.UnitService, logger *zap.Logger) *UnitHandler {
	return &UnitHandler{units: units, logger: logger}
}

// CreateUnitRequest represents the request body for creating a unit
type CreateUnitRequest struct {
	UnitNumber        string     `json:"unit_number" validate:"required,max=20"`
	UnitType          string     `json:"unit_type" validate:"required,max=40"`
	MonthlyRent       MoneyDTO   `json:"monthly_rent" validate:"required"`
	DepositAmount     *MoneyDTO  `json:"deposit_amount,omitempty"`
	BlockID           *string    `json:"block_id,omitempty" validate:"omitempty,uuid"`
	Floor             int        `json:"floor,omitempty"`
	Bedrooms          int        `json:"bedrooms,omitempty" validate:"gte=0"`
	Bathrooms         int        `json:"bathrooms,omitempty" validate:"gte=0"`
	AreaSqm           float64    `json:"area_sqm,omitempty" validate:"gte=0"`
	Amenities         []string   `json:"amenities,omitempty"`
	NextInspectionDue *time.Time `json:"next_inspection_due,omitempty"`
	Status            string     `json:"status,omitempty" validate:"omitempty,oneof=vacant occupied under_maintenance reserved unavailable"`
}

// UpdateUnitRequest represents a partial unit update
type UpdateUnitRequest struct {
	UnitNumber          *string    `json:"unit_number,omitempty" validate:"omitempty,min=1,max=20"`
	UnitType            *string    `json:"unit_type,omitempty" validate:"omitempty,min=1,max=40"`
	MonthlyRent         *MoneyDTO  `json:"monthly_rent,omitempty"`
	DepositAmount       *MoneyDTO  `json:"deposit_amount,omitempty"`
	Status              *string    `json:"status,omitempty" validate:"omitempty,oneof=vacant occupied under_maintenance reserved unavailable"`
	Floor               *int       `json:"floor,omitempty"`
	Bedrooms            *int       `json:"bedrooms,omitempty" validate:"omitempty,gte=0"`
	Bathrooms           *int       `json:"bathrooms,omitempty" validate:"omitempty,gte=0"`
	AreaSqm             *float64   `json:"area_sqm,omitempty" validate:"omitempty,gte=0"`
	Amenities           *[]string  `json:"amenities,omitempty"`
	BlockID             *string    `json:"block_id,omitempty" validate:"omitempty,uuid"`
	RemoveFromBlock     bool       `json:"remove_from_block,omitempty"`
	NextInspectionDue   *time.Time `json:"next_inspection_due,omitempty"`
	ClearNextInspection bool       `json:"clear_next_inspection,omitempty"`
}

// UpdateUnitStatusRequest carries a status transition
type UpdateUnitStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=vacant occupied under_maintenance reserved unavailable"`
}

// BulkCreateUnitsRequest describes a numbered run of units
type BulkCreateUnitsRequest struct {
	NumberPrefix  string    `json:"number_prefix" validate:"max=10"`
	StartNumber   int       `json:"start_number" validate:"gte=1"`
	Count         int       `json:"count" validate:"required,gte=1,lte=200"`
	UnitType      string    `json:"unit_type" validate:"required,max=40"`
	MonthlyRent   MoneyDTO  `json:"monthly_rent" validate:"required"`
	DepositAmount *MoneyDTO `json:"deposit_amount,omitempty"`
	BlockID       *string   `json:"block_id,omitempty" validate:"omitempty,uuid"`
	Floor         int       `json:"floor,omitempty"`
	Bedrooms      int       `json:"bedrooms,omitempty" validate:"gte=0"`
	Bathrooms     int       `json:"bathrooms,omitempty" validate:"gte=0"`
	AreaSqm       float64   `json:"area_sqm,omitempty" validate:"gte=0"`
	Amenities     []string  `json:"amenities,omitempty"`
}

// BulkUpdateUnitStatusRequest names the units to transition
type BulkUpdateUnitStatusRequest struct {
	UnitIDs []string `json:"unit_ids" validate:"required,min=1,max=200,dive,uuid"`
	Status  string   `json:"status" validate:"required,oneof=vacant occupied under_maintenance reserved unavailable"`
}

// CreateUnit handles POST /properties/{propertyID}/units
func (h *UnitHandler) CreateUnit(w http.ResponseWriter, r *http.Request) {
	tenantID, userID, ok := identity(w, r)
	if !ok {
		return
	}

	propertyID, err := valueobjects.NewPropertyIDFromString(chi.URLParam(r, "propertyID"))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	var req CreateUnitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "INVALID_BODY", "invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", err.Error())
		return
	}

	rent, err := moneyFromDTO(req.MonthlyRent)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	attrs := entities.UnitAttributes{
		Floor:             req.Floor,
		Bedrooms:          req.Bedrooms,
		Bathrooms:         req.Bathrooms,
		AreaSqm:           req.AreaSqm,
		Amenities:         req.Amenities,
		NextInspectionDue: req.NextInspectionDue,
		Status:            entities.UnitStatus(req.Status),
	}
	if req.DepositAmount != nil {
		deposit, err := moneyFromDTO(*req.DepositAmount)
		if err != nil {
			common.RespondAppError(w, err)
			return
		}
		attrs.DepositAmount = deposit
	}
	if req.BlockID != nil {
		blockID, err := valueobjects.NewBlockIDFromString(*req.BlockID)
		if err != nil {
			common.RespondAppError(w, err)
			return
		}
		attrs.BlockID = &blockID
	}

	unit, err := h.units.CreateUnit(r.Context(), tenantID, propertyID,
		services.CreateUnitInput{
			UnitNumber:     req.UnitNumber,
			UnitType:       req.UnitType,
			MonthlyRent:    rent,
			UnitAttributes: attrs,
		},
		userID, common.ExtractRequestID(r),
	)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusCreated, toUnitResponse(unit))
}

// BulkCreateUnits handles POST /properties/{propertyID}/units/bulk
func (h *UnitHandler) BulkCreateUnits(w http.ResponseWriter, r *http.Request) {
	tenantID, userID, ok := identity(w, r)
	if !ok {
		return
	}

	propertyID, err := valueobjects.NewPropertyIDFromString(chi.URLParam(r, "propertyID"))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	var req BulkCreateUnitsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "INVALID_BODY", "invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", err.Error())
		return
	}

	rent, err := moneyFromDTO(req.MonthlyRent)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	input := services.BulkCreateUnitsInput{
		NumberPrefix: req.NumberPrefix,
		StartNumber:  req.StartNumber,
		Count:        req.Count,
		Floor:        req.Floor,
		UnitType:     req.UnitType,
		Bedrooms:     req.Bedrooms,
		Bathrooms:    req.Bathrooms,
		AreaSqm:      req.AreaSqm,
		MonthlyRent:  rent,
		Amenities:    req.Amenities,
	}
	if req.DepositAmount != nil {
		deposit, err := moneyFromDTO(*req.DepositAmount)
		if err != nil {
			common.RespondAppError(w, err)
			return
		}
		input.DepositAmount = deposit
	}
	if req.BlockID != nil {
		blockID, err := valueobjects.NewBlockIDFromString(*req.BlockID)
		if err != nil {
			common.RespondAppError(w, err)
			return
		}
		input.BlockID = &blockID
	}

	units, err := h.units.BulkCreateUnits(r.Context(), tenantID, propertyID, input,
		userID, common.ExtractRequestID(r))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusCreated, toUnitResponses(units))
}

// ListUnits handles GET /properties/{propertyID}/units. The status and
// vacant query params narrow the listing.
func (h *UnitHandler) ListUnits(w http.ResponseWriter, r *http.Request) {
	tenantID, _, ok := identity(w, r)
	if !ok {
		return
	}

	propertyID, err := valueobjects.NewPropertyIDFromString(chi.URLParam(r, "propertyID"))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	var units []*entities.Unit
	query := r.URL.Query()
	switch {
	case query.Get("vacant") == "true":
		units, err = h.units.ListVacantUnits(r.Context(), tenantID, propertyID)
	case query.Get("status") != "":
		units, err = h.units.ListUnitsByStatus(r.Context(), tenantID, propertyID,
			entities.UnitStatus(query.Get("status")))
	default:
		units, err = h.units.ListUnitsByProperty(r.Context(), tenantID, propertyID)
	}
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, toUnitResponses(units))
}

// GetUnit handles GET /units/{unitID}
func (h *UnitHandler) GetUnit(w http.ResponseWriter, r *http.Request) {
	tenantID, _, ok := identity(w, r)
	if !ok {
		return
	}

	unitID, err := valueobjects.NewUnitIDFromString(chi.URLParam(r, "unitID"))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	unit, err := h.units.GetUnit(r.Context(), tenantID, unitID)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, toUnitResponse(unit))
}

// UpdateUnit handles PUT /units/{unitID}
func (h *UnitHandler) UpdateUnit(w http.ResponseWriter, r *http.Request) {
	tenantID, userID, ok := identity(w, r)
	if !ok {
		return
	}

	unitID, err := valueobjects.NewUnitIDFromString(chi.URLParam(r, "unitID"))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	var req UpdateUnitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "INVALID_BODY", "invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", err.Error())
		return
	}

	patch := entities.UnitPatch{
		UnitNumber:          req.UnitNumber,
		UnitType:            req.UnitType,
		Floor:               req.Floor,
		Bedrooms:            req.Bedrooms,
		Bathrooms:           req.Bathrooms,
		AreaSqm:             req.AreaSqm,
		Amenities:           req.Amenities,
		RemoveFromBlock:     req.RemoveFromBlock,
		NextInspectionDue:   req.NextInspectionDue,
		ClearNextInspection: req.ClearNextInspection,
	}
	if req.MonthlyRent != nil {
		rent, err := moneyFromDTO(*req.MonthlyRent)
		if err != nil {
			common.RespondAppError(w, err)
			return
		}
		patch.MonthlyRent = &rent
	}
	if req.DepositAmount != nil {
		deposit, err := moneyFromDTO(*req.DepositAmount)
		if err != nil {
			common.RespondAppError(w, err)
			return
		}
		patch.DepositAmount = &deposit
	}
	if req.Status != nil {
		status := entities.UnitStatus(*req.Status)
		patch.Status = &status
	}
	if req.BlockID != nil {
		blockID, err := valueobjects.NewBlockIDFromString(*req.BlockID)
		if err != nil {
			common.RespondAppError(w, err)
			return
		}
		patch.BlockID = &blockID
	}

	unit, err := h.units.UpdateUnit(r.Context(), tenantID, unitID, patch,
		userID, common.ExtractRequestID(r))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, toUnitResponse(unit))
}

// UpdateUnitStatus handles PATCH /units/{unitID}/status
func (h *UnitHandler) UpdateUnitStatus(w http.ResponseWriter, r *http.Request) {
	tenantID, userID, ok := identity(w, r)
	if !ok {
		return
	}

	unitID, err := valueobjects.NewUnitIDFromString(chi.URLParam(r, "unitID"))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	var req UpdateUnitStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "INVALID_BODY", "invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", err.Error())
		return
	}

	unit, err := h.units.UpdateUnitStatus(r.Context(), tenantID, unitID,
		entities.UnitStatus(req.Status), userID, common.ExtractRequestID(r))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, toUnitResponse(unit))
}

// BulkUpdateUnitStatus handles POST /units/bulk-status
func (h *UnitHandler) BulkUpdateUnitStatus(w http.ResponseWriter, r *http.Request) {
	tenantID, userID, ok := identity(w, r)
	if !ok {
		return
	}

	var req BulkUpdateUnitStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "INVALID_BODY", "invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", err.Error())
		return
	}

	units, err := h.units.BulkUpdateUnitStatus(r.Context(), tenantID,
		services.BulkUpdateUnitStatusInput{
			UnitIDs: req.UnitIDs,
			Status:  entities.UnitStatus(req.Status),
		},
		userID, common.ExtractRequestID(r),
	)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, toUnitResponses(units))
}

// DeleteUnit handles DELETE /units/{unitID}
func (h *UnitHandler) DeleteUnit(w http.ResponseWriter, r *http.Request) {
	tenantID, userID, ok := identity(w, r)
	if !ok {
		return
	}

	unitID, err := valueobjects.NewUnitIDFromString(chi.URLParam(r, "unitID"))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	if err := h.units.DeleteUnit(r.Context(), tenantID, unitID,
		userID, common.ExtractRequestID(r)); err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
