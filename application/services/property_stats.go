package services

import (
	"context"
	"math"
	"time"

	"propcore-backend/domain/core/entities"
	"propcore-backend/domain/core/valueobjects"
)

// Health score component weights. The overall score is a fixed weighted sum
// of the four sub-scores.
const (
	weightOccupancy   = 0.35
	weightRevenue     = 0.30
	weightMaintenance = 0.20
	weightCompliance  = 0.15

	// Penalty multipliers applied to the maintenance and overdue-inspection
	// ratios: 10% of units in maintenance costs 50 points, 10% overdue
	// inspections cost 30.
	maintenancePenalty = 500
	compliancePenalty  = 300
)

// PropertyStats summarizes a property's occupancy and revenue position,
// recomputed from live unit rows rather than the denormalized counters
type PropertyStats struct {
	TotalUnits        int                `json:"total_units"`
	OccupiedUnits     int                `json:"occupied_units"`
	VacantUnits       int                `json:"vacant_units"`
	OccupancyRate     int                `json:"occupancy_rate"`
	PotentialRevenue  valueobjects.Money `json:"potential_revenue"`
	ActualRevenue     valueobjects.Money `json:"actual_revenue"`
	RevenueEfficiency int                `json:"revenue_efficiency"`
}

// HealthFactors carries the raw inputs behind the health sub-scores
type HealthFactors struct {
	OccupancyRate     float64 `json:"occupancy_rate"`
	RevenueEfficiency float64 `json:"revenue_efficiency"`
	VacantUnits       int     `json:"vacant_units"`
	TotalUnits        int     `json:"total_units"`
	AverageRent       int64   `json:"average_rent"`
}

// HealthScore is the 0-100 weighted composite of occupancy, revenue
// efficiency, maintenance load and inspection compliance
type HealthScore struct {
	OccupancyScore   int           `json:"occupancy_score"`
	RevenueScore     int           `json:"revenue_score"`
	MaintenanceScore int           `json:"maintenance_score"`
	ComplianceScore  int           `json:"compliance_score"`
	OverallScore     int           `json:"overall_score"`
	Factors          HealthFactors `json:"factors"`
	CalculatedAt     time.Time     `json:"calculated_at"`
}

// GetPropertyStats recomputes occupancy and revenue figures from a fresh
// count and unit scan. A property without units reports all zeros.
func (s *PropertyService) GetPropertyStats(
	ctx context.Context,
	tenantID string,
	propertyID valueobjects.PropertyID,
) (*PropertyStats, error) {
	if _, err := s.properties.FindByID(ctx, tenantID, propertyID); err != nil {
		return nil, err
	}

	counts, err := s.units.CountByProperty(ctx, tenantID, propertyID)
	if err != nil {
		return nil, err
	}
	if counts.Total == 0 {
		return &PropertyStats{}, nil
	}

	units, err := s.units.FindByProperty(ctx, tenantID, propertyID)
	if err != nil {
		return nil, err
	}

	potential, actual := revenueFigures(units)
	stats := &PropertyStats{
		TotalUnits:       counts.Total,
		OccupiedUnits:    counts.Occupied,
		VacantUnits:      counts.Vacant,
		OccupancyRate:    roundRatio(counts.Occupied, counts.Total),
		PotentialRevenue: potential,
		ActualRevenue:    actual,
	}
	if potential.Amount > 0 {
		stats.RevenueEfficiency = int(math.Round(
			float64(actual.Amount) / float64(potential.Amount) * 100))
	}
	return stats, nil
}

// CalculatePropertyHealthScore computes the weighted health composite from
// occupancy, revenue, maintenance and inspection-compliance factors
func (s *PropertyService) CalculatePropertyHealthScore(
	ctx context.Context,
	tenantID string,
	propertyID valueobjects.PropertyID,
) (*HealthScore, error) {
	if _, err := s.properties.FindByID(ctx, tenantID, propertyID); err != nil {
		return nil, err
	}

	units, err := s.units.FindByProperty(ctx, tenantID, propertyID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	score := &HealthScore{CalculatedAt: now}

	total := len(units)
	if total == 0 {
		return score, nil
	}

	occupied, underMaintenance, vacant, overdue := 0, 0, 0, 0
	for _, unit := range units {
		switch unit.Status() {
		case entities.UnitStatusOccupied:
			occupied++
		case entities.UnitStatusUnderMaintenance:
			underMaintenance++
		case entities.UnitStatusVacant:
			vacant++
		}
		if due := unit.NextInspectionDue(); due != nil && due.Before(now) {
			overdue++
		}
	}

	occupancyRate := float64(occupied) / float64(total) * 100
	score.OccupancyScore = clampScore(math.Round(occupancyRate))

	potential, actual := revenueFigures(units)
	revenueEfficiency := 0.0
	if potential.Amount > 0 {
		revenueEfficiency = float64(actual.Amount) / float64(potential.Amount) * 100
	}
	score.RevenueScore = clampScore(math.Round(revenueEfficiency))

	maintenanceRatio := float64(underMaintenance) / float64(total)
	score.MaintenanceScore = clampScore(math.Round(100 - maintenanceRatio*maintenancePenalty))

	overdueRatio := float64(overdue) / float64(total)
	score.ComplianceScore = clampScore(math.Round(100 - overdueRatio*compliancePenalty))

	score.OverallScore = int(math.Round(
		float64(score.OccupancyScore)*weightOccupancy +
			float64(score.RevenueScore)*weightRevenue +
			float64(score.MaintenanceScore)*weightMaintenance +
			float64(score.ComplianceScore)*weightCompliance))

	score.Factors = HealthFactors{
		OccupancyRate:     occupancyRate,
		RevenueEfficiency: math.Round(revenueEfficiency*10) / 10,
		VacantUnits:       vacant,
		TotalUnits:        total,
		AverageRent:       int64(math.Round(float64(potential.Amount) / float64(total))),
	}

	return score, nil
}

// revenueFigures sums monthly rents over all live units (potential) and
// over occupied units only (actual). Properties are single-currency, so
// the first unit's currency labels both sums.
func revenueFigures(units []*entities.Unit) (potential, actual valueobjects.Money) {
	if len(units) == 0 {
		return
	}
	currency := units[0].MonthlyRent().Currency
	potential = valueobjects.Zero(currency)
	actual = valueobjects.Zero(currency)
	for _, unit := range units {
		potential.Amount += unit.MonthlyRent().Amount
		if unit.IsOccupied() {
			actual.Amount += unit.MonthlyRent().Amount
		}
	}
	return
}

// roundRatio returns round(part/whole*100), 0 when whole is 0
func roundRatio(part, whole int) int {
	if whole == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(whole) * 100))
}

// clampScore clips a computed sub-score into [0,100]
func clampScore(v float64) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return int(v)
}
