package valueobjects

import (
	"strings"

	"github.com/google/uuid"
	pkgerrors "propcore-backend/pkg/errors"
)

// PropertyID represents a unique property identifier
type PropertyID string

// NewPropertyID creates a new random PropertyID
func NewPropertyID() PropertyID {
	return PropertyID(uuid.New().String())
}

// NewPropertyIDFromString creates a PropertyID from an existing string
func NewPropertyIDFromString(s string) (PropertyID, error) {
	if strings.TrimSpace(s) == "" {
		return "", pkgerrors.NewValidationError("property id cannot be empty")
	}
	return PropertyID(s), nil
}

// String returns the string representation
func (id PropertyID) String() string {
	return string(id)
}

// UnitID represents a unique unit identifier
type UnitID string

// NewUnitID creates a new random UnitID
func NewUnitID() UnitID {
	return UnitID(uuid.New().String())
}

// NewUnitIDFromString creates a UnitID from an existing string
func NewUnitIDFromString(s string) (UnitID, error) {
	if strings.TrimSpace(s) == "" {
		return "", pkgerrors.NewValidationError("unit id cannot be empty")
	}
	return UnitID(s), nil
}

// String returns the string representation
func (id UnitID) String() string {
	return string(id)
}

// BlockID represents a unique block identifier
type BlockID string

// NewBlockID creates a new random BlockID
func NewBlockID() BlockID {
	return BlockID(uuid.New().String())
}

// NewBlockIDFromString creates a BlockID from an existing string
func NewBlockIDFromString(s string) (BlockID, error) {
	if strings.TrimSpace(s) == "" {
		return "", pkgerrors.NewValidationError("block id cannot be empty")
	}
	return BlockID(s), nil
}

// String returns the string representation
func (id BlockID) String() string {
	return string(id)
}
