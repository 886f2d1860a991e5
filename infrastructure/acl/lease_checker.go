package acl

import (
	"context"

	"propcore-backend/application/ports"
	"propcore-backend/domain/core/valueobjects"
)

// StaticLeaseChecker is the default LeaseChecker used until the leasing
// service exposes its lookup API. It reports no active leases, which keeps
// property deletion permissive in environments without leasing data.
type StaticLeaseChecker struct {
	hasLeases bool
}

// NewStaticLeaseChecker creates a checker with a fixed answer
func NewStaticLeaseChecker(hasLeases bool) *StaticLeaseChecker {
	return &StaticLeaseChecker{hasLeases: hasLeases}
}

var _ ports.LeaseChecker = (*StaticLeaseChecker)(nil)

// HasActiveLeases returns the configured answer for every property
func (c *StaticLeaseChecker) HasActiveLeases(ctx context.Context, tenantID string, propertyID valueobjects.PropertyID) (bool, error) {
	return c.hasLeases, nil
}
