package errors

// Domain error codes returned by the property aggregate service.
// Callers branch on these rather than on error messages.
const (
	CodePropertyNotFound    = "PROPERTY_NOT_FOUND"
	CodePropertyCodeExists  = "PROPERTY_CODE_EXISTS"
	CodeUnitNotFound        = "UNIT_NOT_FOUND"
	CodeUnitNumberExists    = "UNIT_NUMBER_EXISTS"
	CodeUnitOccupied        = "UNIT_OCCUPIED"
	CodeInvalidPropertyData = "INVALID_PROPERTY_DATA"
	CodeInvalidUnitData     = "INVALID_UNIT_DATA"
	CodeBlockNotFound       = "BLOCK_NOT_FOUND"
	CodeBlockCodeExists     = "BLOCK_CODE_EXISTS"
	CodeActiveLeases        = "CANNOT_DELETE_WITH_ACTIVE_LEASES"

	// CodeVersionConflict marks an optimistic-concurrency failure on a
	// Property counter write. The service retries on it; it never escapes
	// a service call.
	CodeVersionConflict = "VERSION_CONFLICT"
)
