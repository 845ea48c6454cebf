package domain

// Column names as they appear in the shipment spreadsheet header.
const (
	ColScheduledLeadTime = "Scheduled_Lead_Time_Days"
	ColBaseLeadTime      = "Base_Lead_Time_Days"
	ColOrderWeight       = "Order_Weight_Kg"
	ColShippingCost      = "Shipping_Cost_USD"
	ColGeopoliticalRisk  = "Geopolitical_Risk_Index"
	ColWeatherSeverity   = "Weather_Severity_Index"
	ColDisruption        = "Disruption_Occurred"
	ColRouteType         = "Route_Type"
	ColTransportMode     = "Transportation_Mode"
	ColProductCategory   = "Product_Category"
	ColMitigationAction  = "Mitigation_Action_Taken"
	ColDisruptionEvent   = "Disruption_Event"
	ColOnTime            = "On_Time_Delivery"
)

// Derived feature column names.
const (
	ColLeadTimeBuffer = "Lead_Time_Buffer_Days"
	ColCostPerKg      = "Cost_Per_Kg"
	ColHighRisk       = "High_Risk_Flag"
)

// NumericColumns lists the numeric input columns in report order.
var NumericColumns = []string{
	ColScheduledLeadTime,
	ColBaseLeadTime,
	ColOrderWeight,
	ColShippingCost,
	ColGeopoliticalRisk,
	ColWeatherSeverity,
	ColDisruption,
}

// CategoricalColumns lists the nominal columns, sorted lexicographically so
// encoders iterate them in a stable order.
var CategoricalColumns = []string{
	ColDisruptionEvent,
	ColMitigationAction,
	ColProductCategory,
	ColRouteType,
	ColTransportMode,
}

// RequiredColumns is every column a shipment file must carry.
func RequiredColumns() []string {
	cols := make([]string, 0, len(NumericColumns)+len(CategoricalColumns)+1)
	cols = append(cols, NumericColumns...)
	cols = append(cols, CategoricalColumns...)
	return append(cols, ColOnTime)
}

// Target classes of the on-time delivery flag.
const (
	Late   = 0
	OnTime = 1
)

// Shipment is one shipment order as read from the input file.
// Empty strings in the categorical fields mean the cell was missing.
type Shipment struct {
	Row               int     `json:"row"`
	ScheduledLeadTime float64 `json:"scheduled_lead_time_days"`
	BaseLeadTime      float64 `json:"base_lead_time_days"`
	OrderWeight       float64 `json:"order_weight_kg"`
	ShippingCost      float64 `json:"shipping_cost_usd"`
	GeopoliticalRisk  float64 `json:"geopolitical_risk_index"`
	WeatherSeverity   float64 `json:"weather_severity_index"`
	Disruption        float64 `json:"disruption_occurred"`
	RouteType         string  `json:"route_type"`
	TransportMode     string  `json:"transportation_mode"`
	ProductCategory   string  `json:"product_category"`
	MitigationAction  string  `json:"mitigation_action_taken"`
	DisruptionEvent   string  `json:"disruption_event"`
	OnTime            int     `json:"on_time_delivery"`
}

// Category returns the value of a categorical column by name.
func (s Shipment) Category(column string) string {
	switch column {
	case ColRouteType:
		return s.RouteType
	case ColTransportMode:
		return s.TransportMode
	case ColProductCategory:
		return s.ProductCategory
	case ColMitigationAction:
		return s.MitigationAction
	case ColDisruptionEvent:
		return s.DisruptionEvent
	}
	return ""
}

// EngineeredShipment is a shipment with its derived features attached.
type EngineeredShipment struct {
	Shipment
	LeadTimeBuffer float64 `json:"lead_time_buffer_days"`
	CostPerKg      float64 `json:"cost_per_kg"`
	HighRisk       float64 `json:"high_risk_flag"`
}

// NumericFeatureColumns are the numeric model inputs before encoding, in
// design-matrix order.
var NumericFeatureColumns = []string{
	ColScheduledLeadTime,
	ColBaseLeadTime,
	ColOrderWeight,
	ColShippingCost,
	ColGeopoliticalRisk,
	ColWeatherSeverity,
	ColDisruption,
	ColLeadTimeBuffer,
	ColCostPerKg,
	ColHighRisk,
}

// Numeric returns the values of NumericFeatureColumns for this record.
func (e EngineeredShipment) Numeric() []float64 {
	return []float64{
		e.ScheduledLeadTime,
		e.BaseLeadTime,
		e.OrderWeight,
		e.ShippingCost,
		e.GeopoliticalRisk,
		e.WeatherSeverity,
		e.Disruption,
		e.LeadTimeBuffer,
		e.CostPerKg,
		e.HighRisk,
	}
}
