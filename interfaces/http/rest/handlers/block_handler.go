package handlers

import (
	"encoding/json"
	"net/http"

	"propcore-backend/application/services"
	"propcore-backend/domain/core/entities"
	"propcore-backend/domain/core/valueobjects"
	"propcore-backend/pkg/common"
	"propcore-backend/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BlockHandler handles block-related HTTP requests
type BlockHandler struct {
	blocks *services.BlockService
	units  *services.UnitService
	logger *zap.Logger
}

// NewBlockHandler creates a new block handler
func NewBlockHandler(blocks *services.BlockService, units *services.UnitService, logger *zap.Logger) *BlockHandler {
	return &BlockHandler{blocks: blocks, units: units, logger: logger}
}

// CreateBlockRequest represents the request body for creating a block
type CreateBlockRequest struct {
	BlockCode   string   `json:"block_code,omitempty" validate:"omitempty,max=20"`
	Name        string   `json:"name" validate:"required,min=1,max=100"`
	Description string   `json:"description,omitempty" validate:"omitempty,max=1000"`
	Status      string   `json:"status,omitempty" validate:"omitempty,oneof=active under_construction inactive"`
	Amenities   []string `json:"amenities,omitempty"`
	Features    []string `json:"features,omitempty"`
	ManagerID   *string  `json:"manager_id,omitempty"`
	SortOrder   int      `json:"sort_order,omitempty"`
}

// UpdateBlockRequest represents a partial block update. The clear flags
// reset the nullable fields explicitly.
type UpdateBlockRequest struct {
	Name             *string   `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Description      *string   `json:"description,omitempty" validate:"omitempty,max=1000"`
	ClearDescription bool      `json:"clear_description,omitempty"`
	Status           *string   `json:"status,omitempty" validate:"omitempty,oneof=active under_construction inactive"`
	Amenities        *[]string `json:"amenities,omitempty"`
	Features         *[]string `json:"features,omitempty"`
	ManagerID        *string   `json:"manager_id,omitempty"`
	RemoveManager    bool      `json:"remove_manager,omitempty"`
	SortOrder        *int      `json:"sort_order,omitempty"`
}

// CreateBlock handles POST /properties/{propertyID}/blocks
func (h *BlockHandler) CreateBlock(w http.ResponseWriter, r *http.Request) {
	tenantID, userID, ok := identity(w, r)
	if !ok {
		return
	}

	propertyID, err := valueobjects.NewPropertyIDFromString(chi.URLParam(r, "propertyID"))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	var req CreateBlockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "INVALID_BODY", "invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", err.Error())
		return
	}

	block, err := h.blocks.CreateBlock(r.Context(), tenantID, propertyID,
		services.CreateBlockInput{
			BlockCode: req.BlockCode,
			Name:      req.Name,
			BlockAttributes: entities.BlockAttributes{
				Description: req.Description,
				Amenities:   req.Amenities,
				Features:    req.Features,
				ManagerID:   req.ManagerID,
				SortOrder:   req.SortOrder,
				Status:      entities.BlockStatus(req.Status),
			},
		},
		userID, common.ExtractRequestID(r),
	)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusCreated, toBlockResponse(block))
}

// ListBlocks handles GET /properties/{propertyID}/blocks
func (h *BlockHandler) ListBlocks(w http.ResponseWriter, r *http.Request) {
	tenantID, _, ok := identity(w, r)
	if !ok {
		return
	}

	propertyID, err := valueobjects.NewPropertyIDFromString(chi.URLParam(r, "propertyID"))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	blocks, err := h.blocks.ListBlocksByProperty(r.Context(), tenantID, propertyID)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, toBlockResponses(blocks))
}

// GetBlock handles GET /blocks/{blockID}
func (h *BlockHandler) GetBlock(w http.ResponseWriter, r *http.Request) {
	tenantID, _, ok := identity(w, r)
	if !ok {
		return
	}

	blockID, err := valueobjects.NewBlockIDFromString(chi.URLParam(r, "blockID"))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	block, err := h.blocks.GetBlock(r.Context(), tenantID, blockID)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, toBlockResponse(block))
}

// ListBlockUnits handles GET /blocks/{blockID}/units
func (h *BlockHandler) ListBlockUnits(w http.ResponseWriter, r *http.Request) {
	tenantID, _, ok := identity(w, r)
	if !ok {
		return
	}

	blockID, err := valueobjects.NewBlockIDFromString(chi.URLParam(r, "blockID"))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	units, err := h.units.ListUnitsByBlock(r.Context(), tenantID, blockID)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, toUnitResponses(units))
}

// UpdateBlock handles PUT /blocks/{blockID}
func (h *BlockHandler) UpdateBlock(w http.ResponseWriter, r *http.Request) {
	tenantID, userID, ok := identity(w, r)
	if !ok {
		return
	}

	blockID, err := valueobjects.NewBlockIDFromString(chi.URLParam(r, "blockID"))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	var req UpdateBlockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "INVALID_BODY", "invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", err.Error())
		return
	}

	patch := entities.BlockPatch{
		Name:             req.Name,
		Description:      req.Description,
		ClearDescription: req.ClearDescription,
		Amenities:        req.Amenities,
		Features:         req.Features,
		ManagerID:        req.ManagerID,
		RemoveManager:    req.RemoveManager,
		SortOrder:        req.SortOrder,
	}
	if req.Status != nil {
		status := entities.BlockStatus(*req.Status)
		patch.Status = &status
	}

	block, err := h.blocks.UpdateBlock(r.Context(), tenantID, blockID, patch,
		userID, common.ExtractRequestID(r))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, toBlockResponse(block))
}

// DeleteBlock handles DELETE /blocks/{blockID}
func (h *BlockHandler) DeleteBlock(w http.ResponseWriter, r *http.Request) {
	tenantID, userID, ok := identity(w, r)
	if !ok {
		return
	}

	blockID, err := valueobjects.NewBlockIDFromString(chi.URLParam(r, "blockID"))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	if err := h.blocks.DeleteBlock(r.Context(), tenantID, blockID,
		userID, common.ExtractRequestID(r)); err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
