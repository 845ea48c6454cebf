package dataprocessing

import (
	"fmt"
	"strconv"
	"strings"

	"shiprisk/internal/errors"
	"shiprisk/pkg/contracts/domain"
)

// ToShipments converts a cleaned table into typed shipment records.
// Every required column must be present and every numeric cell must parse.
func ToShipments(t *Table) ([]domain.Shipment, error) {
	idx := make(map[string]int, len(domain.RequiredColumns()))
	for _, col := range domain.RequiredColumns() {
		j := t.ColumnIndex(col)
		if j < 0 {
			return nil, errors.NewSchemaError(fmt.Sprintf("required column %s is missing", col)).
				WithContext("column", col)
		}
		idx[col] = j
	}

	shipments := make([]domain.Shipment, 0, t.NumRows())
	for i := range t.Rows {
		line := t.Line(i)
		num := func(col string) (float64, error) {
			return parseNumber(t.Cell(i, idx[col]), col, line)
		}
		cat := func(col string) string {
			v := t.Cell(i, idx[col])
			if IsMissing(v) {
				return ""
			}
			return strings.TrimSpace(v)
		}

		s := domain.Shipment{Row: line}
		var err error
		if s.ScheduledLeadTime, err = num(domain.ColScheduledLeadTime); err != nil {
			return nil, err
		}
		if s.BaseLeadTime, err = num(domain.ColBaseLeadTime); err != nil {
			return nil, err
		}
		if s.OrderWeight, err = num(domain.ColOrderWeight); err != nil {
			return nil, err
		}
		if s.ShippingCost, err = num(domain.ColShippingCost); err != nil {
			return nil, err
		}
		if s.GeopoliticalRisk, err = num(domain.ColGeopoliticalRisk); err != nil {
			return nil, err
		}
		if s.WeatherSeverity, err = num(domain.ColWeatherSeverity); err != nil {
			return nil, err
		}
		if s.Disruption, err = num(domain.ColDisruption); err != nil {
			return nil, err
		}

		target, err := num(domain.ColOnTime)
		if err != nil {
			return nil, err
		}
		switch target {
		case domain.Late, domain.OnTime:
			s.OnTime = int(target)
		default:
			return nil, errors.NewSchemaError(fmt.Sprintf("%s must be 0 or 1, got %v", domain.ColOnTime, target)).
				WithContext("column", domain.ColOnTime).
				WithContext("row", line)
		}

		s.RouteType = cat(domain.ColRouteType)
		s.TransportMode = cat(domain.ColTransportMode)
		s.ProductCategory = cat(domain.ColProductCategory)
		s.MitigationAction = cat(domain.ColMitigationAction)
		s.DisruptionEvent = cat(domain.ColDisruptionEvent)

		shipments = append(shipments, s)
	}
	return shipments, nil
}

func parseNumber(cell, column string, line int) (float64, error) {
	if IsMissing(cell) {
		return 0, errors.NewSchemaError(fmt.Sprintf("missing value in numeric column %s at row %d", column, line)).
			WithContext("column", column).
			WithContext("row", line)
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(cell), ",", ""), 64)
	if err != nil {
		return 0, errors.NewSchemaError(fmt.Sprintf("non-numeric value %q in column %s at row %d", cell, column, line)).
			WithContext("column", column).
			WithContext("row", line)
	}
	return v, nil
}
