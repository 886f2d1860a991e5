package valueobjects

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatPropertyCode(t *testing.T) {
	assert.Equal(t, "PROP-2026-0001", FormatPropertyCode(2026, 1))
	assert.Equal(t, "PROP-2026-0042", FormatPropertyCode(2026, 42))
	assert.Equal(t, "PROP-2027-1000", FormatPropertyCode(2027, 1000))
	// Sequences past four digits widen rather than truncate.
	assert.Equal(t, "PROP-2026-12345", FormatPropertyCode(2026, 12345))
}

func TestFormatBlockCode(t *testing.T) {
	assert.Equal(t, "BLK-01", FormatBlockCode(1))
	assert.Equal(t, "BLK-12", FormatBlockCode(12))
	assert.Equal(t, "BLK-123", FormatBlockCode(123))
}

func TestFormatUnitNumber(t *testing.T) {
	assert.Equal(t, "A01", FormatUnitNumber("A", 1))
	assert.Equal(t, "A07", FormatUnitNumber("A", 7))
	assert.Equal(t, "B42", FormatUnitNumber("B", 42))
	assert.Equal(t, "101", FormatUnitNumber("1", 1))
	assert.Equal(t, "17", FormatUnitNumber("", 17))
}
