package valueobjects

import "fmt"

// FormatPropertyCode builds a tenant-unique property code from the issue
// year and a per-tenant sequence number, e.g. PROP-2026-0001.
func FormatPropertyCode(year int, sequence int64) string {
	return fmt.Sprintf("PROP-%d-%04d", year, sequence)
}

// FormatBlockCode builds a property-unique block code from a per-property
// sequence number, e.g. BLK-01.
func FormatBlockCode(sequence int64) string {
	return fmt.Sprintf("BLK-%02d", sequence)
}

// FormatUnitNumber builds a unit number from a caller-supplied prefix and a
// running number, e.g. ("A", 7) -> A07. Used by bulk unit creation.
func FormatUnitNumber(prefix string, number int) string {
	return fmt.Sprintf("%s%02d", prefix, number)
}
