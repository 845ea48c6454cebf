package dataprocessing

import (
	"fmt"

	"shiprisk/internal/errors"
	"shiprisk/pkg/contracts/domain"
)

// FeatureOptions holds the thresholds of the high-risk flag.
type FeatureOptions struct {
	GeopoliticalRiskThreshold float64
	WeatherSeverityThreshold  float64
}

// DefaultFeatureOptions returns the standard high-risk thresholds
func DefaultFeatureOptions() FeatureOptions {
	return FeatureOptions{
		GeopoliticalRiskThreshold: 0.6,
		WeatherSeverityThreshold:  7,
	}
}

// Engineer derives lead-time buffer, cost per kg and the high-risk flag.
// A zero order weight fails with a DivisionByZeroError naming the row.
func Engineer(shipments []domain.Shipment, opts FeatureOptions) ([]domain.EngineeredShipment, error) {
	out := make([]domain.EngineeredShipment, len(shipments))
	for i, s := range shipments {
		if s.OrderWeight == 0 {
			return nil, errors.NewDivisionByZeroError(
				fmt.Sprintf("%s is zero at row %d, cannot compute %s", domain.ColOrderWeight, s.Row, domain.ColCostPerKg)).
				WithContext("row", s.Row).
				WithContext("column", domain.ColOrderWeight)
		}

		highRisk := 0.0
		if s.GeopoliticalRisk > opts.GeopoliticalRiskThreshold || s.WeatherSeverity > opts.WeatherSeverityThreshold {
			highRisk = 1
		}

		out[i] = domain.EngineeredShipment{
			Shipment:       s,
			LeadTimeBuffer: s.ScheduledLeadTime - s.BaseLeadTime,
			CostPerKg:      s.ShippingCost / s.OrderWeight,
			HighRisk:       highRisk,
		}
	}
	return out, nil
}
