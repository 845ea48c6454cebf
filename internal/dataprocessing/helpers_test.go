package dataprocessing

import (
	"fmt"
	"math/rand/v2"

	"shiprisk/pkg/contracts/domain"
)

var testRoutes = []string{"Atlantic", "Commodity", "Intra-Asia", "Pacific"}
var testModes = []string{"Air", "Rail", "Road", "Sea"}

// makeShipments builds n deterministic engineered shipments
func makeShipments(n int, seed uint64) []domain.EngineeredShipment {
	rng := rand.New(rand.NewPCG(seed, 1))
	out := make([]domain.EngineeredShipment, n)
	for i := range out {
		s := domain.Shipment{
			Row:               i + 2,
			ScheduledLeadTime: float64(5 + rng.IntN(30)),
			BaseLeadTime:      float64(3 + rng.IntN(25)),
			OrderWeight:       1 + rng.Float64()*1000,
			ShippingCost:      50 + rng.Float64()*5000,
			GeopoliticalRisk:  rng.Float64(),
			WeatherSeverity:   rng.Float64() * 10,
			Disruption:        float64(rng.IntN(2)),
			RouteType:         testRoutes[rng.IntN(len(testRoutes))],
			TransportMode:     testModes[rng.IntN(len(testModes))],
			ProductCategory:   fmt.Sprintf("Cat%d", rng.IntN(3)),
			MitigationAction:  []string{"None", "Rerouted", "Expedited"}[rng.IntN(3)],
			DisruptionEvent:   []string{"", "Strike", "Storm"}[rng.IntN(3)],
			OnTime:            rng.IntN(2),
		}
		out[i] = domain.EngineeredShipment{
			Shipment:       s,
			LeadTimeBuffer: s.ScheduledLeadTime - s.BaseLeadTime,
			CostPerKg:      s.ShippingCost / s.OrderWeight,
		}
	}
	return out
}

func labelsOf(rows []domain.EngineeredShipment) []int {
	out := make([]int, len(rows))
	for i, r := range rows {
		out[i] = r.OnTime
	}
	return out
}

// shipmentHeader is the input header in file order
var shipmentHeader = []string{
	"Scheduled_Lead_Time_Days", "Base_Lead_Time_Days", "Order_Weight_Kg", "Shipping_Cost_USD",
	"Geopolitical_Risk_Index", "Weather_Severity_Index", "Disruption_Occurred",
	"Route_Type", "Transportation_Mode", "Product_Category", "Mitigation_Action_Taken",
	"Disruption_Event", "On_Time_Delivery",
}
