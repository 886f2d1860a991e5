package handlers

import (
	"encoding/json"
	"net/http"

	"propcore-backend/application/ports"
	"propcore-backend/application/services"
	"propcore-backend/domain/core/aggregates"
	"propcore-backend/domain/core/valueobjects"
	"propcore-backend/pkg/common"
	"propcore-backend/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// PropertyHandler handles property-related HTTP requests
type PropertyHandler struct {
	properties *services.PropertyService
	logger     *zap.Logger
}

// NewPropertyHandler creates a new property handler
func NewPropertyHandler(properties *services.PropertyService, logger *zap.Logger) *PropertyHandler {
	return &PropertyHandler{properties: properties, logger: logger}
}

// CreatePropertyRequest represents the request body for creating a property
type CreatePropertyRequest struct {
	OwnerID      string               `json:"owner_id" validate:"required"`
	Name         string               `json:"name" validate:"required,min=1,max=200"`
	Code         string               `json:"code,omitempty" validate:"omitempty,max=40"`
	PropertyType string               `json:"property_type" validate:"required,oneof=residential commercial mixed_use"`
	Status       string               `json:"status,omitempty" validate:"omitempty,oneof=active under_construction inactive"`
	Address      valueobjects.Address `json:"address"`
	Amenities    []string             `json:"amenities,omitempty"`
	ManagerID    *string              `json:"manager_id,omitempty"`
}

// UpdatePropertyRequest represents a partial property update
type UpdatePropertyRequest struct {
	Name          *string                    `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	OwnerID       *string                    `json:"owner_id,omitempty"`
	PropertyType  *string                    `json:"property_type,omitempty" validate:"omitempty,oneof=residential commercial mixed_use"`
	Status        *string                    `json:"status,omitempty" validate:"omitempty,oneof=active under_construction inactive"`
	Address       *valueobjects.AddressPatch `json:"address,omitempty"`
	Amenities     *[]string                  `json:"amenities,omitempty"`
	ManagerID     *string                    `json:"manager_id,omitempty"`
	RemoveManager bool                       `json:"remove_manager,omitempty"`
}

// AssignManagerRequest names the manager to assign
type AssignManagerRequest struct {
	ManagerID string `json:"manager_id" validate:"required"`
}

// CreateProperty handles POST /properties
func (h *PropertyHandler) CreateProperty(w http.ResponseWriter, r *http.Request) {
	tenantID, userID, ok := identity(w, r)
	if !ok {
		return
	}

	var req CreatePropertyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "INVALID_BODY", "invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", err.Error())
		return
	}

	property, err := h.properties.CreateProperty(r.Context(), tenantID,
		services.CreatePropertyInput{
			OwnerID:      req.OwnerID,
			Name:         req.Name,
			Code:         req.Code,
			PropertyType: aggregates.PropertyType(req.PropertyType),
			Status:       aggregates.PropertyStatus(req.Status),
			Address:      req.Address,
			Amenities:    req.Amenities,
			ManagerID:    req.ManagerID,
		},
		userID, common.ExtractRequestID(r),
	)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusCreated, toPropertyResponse(property))
}

// GetProperty handles GET /properties/{propertyID}
func (h *PropertyHandler) GetProperty(w http.ResponseWriter, r *http.Request) {
	tenantID, _, ok := identity(w, r)
	if !ok {
		return
	}

	propertyID, err := valueobjects.NewPropertyIDFromString(chi.URLParam(r, "propertyID"))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	property, err := h.properties.GetProperty(r.Context(), tenantID, propertyID)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, toPropertyResponse(property))
}

// ListProperties handles GET /properties with filter and pagination params.
// The owner_id and manager_id params switch to the dedicated lookups.
func (h *PropertyHandler) ListProperties(w http.ResponseWriter, r *http.Request) {
	tenantID, _, ok := identity(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	if ownerID := query.Get("owner_id"); ownerID != "" {
		properties, err := h.properties.ListByOwner(r.Context(), tenantID, ownerID)
		if err != nil {
			common.RespondAppError(w, err)
			return
		}
		common.RespondJSON(w, http.StatusOK, toPropertyResponses(properties))
		return
	}
	if managerID := query.Get("manager_id"); managerID != "" {
		properties, err := h.properties.ListByManager(r.Context(), tenantID, managerID)
		if err != nil {
			common.RespondAppError(w, err)
			return
		}
		common.RespondJSON(w, http.StatusOK, toPropertyResponses(properties))
		return
	}

	filter := ports.PropertyFilter{
		Status:       query.Get("status"),
		PropertyType: query.Get("property_type"),
		Search:       query.Get("search"),
	}
	page := common.ExtractPaginationParams(r)

	properties, total, err := h.properties.ListProperties(r.Context(), tenantID, filter, page)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondWithMeta(w, http.StatusOK, toPropertyResponses(properties), &common.MetaInfo{
		RequestID:  common.ExtractRequestID(r),
		Pagination: common.BuildPaginationMeta(page.Page, page.PageSize, total),
	})
}

// UpdateProperty handles PUT /properties/{propertyID}
func (h *PropertyHandler) UpdateProperty(w http.ResponseWriter, r *http.Request) {
	tenantID, userID, ok := identity(w, r)
	if !ok {
		return
	}

	propertyID, err := valueobjects.NewPropertyIDFromString(chi.URLParam(r, "propertyID"))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	var req UpdatePropertyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "INVALID_BODY", "invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", err.Error())
		return
	}

	patch := aggregates.PropertyPatch{
		Name:          req.Name,
		OwnerID:       req.OwnerID,
		Address:       req.Address,
		Amenities:     req.Amenities,
		ManagerID:     req.ManagerID,
		RemoveManager: req.RemoveManager,
	}
	if req.PropertyType != nil {
		propertyType := aggregates.PropertyType(*req.PropertyType)
		patch.PropertyType = &propertyType
	}
	if req.Status != nil {
		status := aggregates.PropertyStatus(*req.Status)
		patch.Status = &status
	}

	property, err := h.properties.UpdateProperty(r.Context(), tenantID, propertyID, patch,
		userID, common.ExtractRequestID(r))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, toPropertyResponse(property))
}

// AssignManager handles PUT /properties/{propertyID}/manager
func (h *PropertyHandler) AssignManager(w http.ResponseWriter, r *http.Request) {
	tenantID, userID, ok := identity(w, r)
	if !ok {
		return
	}

	propertyID, err := valueobjects.NewPropertyIDFromString(chi.URLParam(r, "propertyID"))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	var req AssignManagerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "INVALID_BODY", "invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", err.Error())
		return
	}

	property, err := h.properties.AssignManager(r.Context(), tenantID, propertyID,
		req.ManagerID, userID, common.ExtractRequestID(r))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, toPropertyResponse(property))
}

// DeleteProperty handles DELETE /properties/{propertyID}
func (h *PropertyHandler) DeleteProperty(w http.ResponseWriter, r *http.Request) {
	tenantID, userID, ok := identity(w, r)
	if !ok {
		return
	}

	propertyID, err := valueobjects.NewPropertyIDFromString(chi.URLParam(r, "propertyID"))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	if err := h.properties.DeleteProperty(r.Context(), tenantID, propertyID,
		userID, common.ExtractRequestID(r)); err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// GetPropertyStats handles GET /properties/{propertyID}/stats
func (h *PropertyHandler) GetPropertyStats(w http.ResponseWriter, r *http.Request) {
	tenantID, _, ok := identity(w, r)
	if !ok {
		return
	}

	propertyID, err := valueobjects.NewPropertyIDFromString(chi.URLParam(r, "propertyID"))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	stats, err := h.properties.GetPropertyStats(r.Context(), tenantID, propertyID)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, stats)
}

// GetPropertyHealth handles GET /properties/{propertyID}/health
func (h *PropertyHandler) GetPropertyHealth(w http.ResponseWriter, r *http.Request) {
	tenantID, _, ok := identity(w, r)
	if !ok {
		return
	}

	propertyID, err := valueobjects.NewPropertyIDFromString(chi.URLParam(r, "propertyID"))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	score, err := h.properties.CalculatePropertyHealthScore(r.Context(), tenantID, propertyID)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, score)
}
