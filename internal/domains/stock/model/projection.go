package model

// DerivedQuantities is the projector output for one product. All arithmetic
// is integer; recomputing with the same inputs yields identical results.
type DerivedQuantities struct {
	StockReal          int `json:"stock_real"`
	StockForecastedIn  int `json:"stock_forecasted_in"`
	StockForecastedOut int `json:"stock_forecasted_out"`
	ActiveReserved     int `json:"active_reserved"`
	StockAvailable     int `json:"stock_available"`
	StockProjected     int `json:"stock_projected"`
}

// Project folds the stored counters and the live active-reservation sum into
// the derived quantities.
//
//	stockAvailable = max(0, stockReal - activeReserved)
//	stockProjected = stockReal + stockForecastedIn - stockForecastedOut
func Project(state *ProductStockState, activeReserved int) DerivedQuantities {
	available := state.StockReal - activeReserved
	if available < 0 {
		available = 0
	}
	return DerivedQuantities{
		StockReal:          state.StockReal,
		StockForecastedIn:  state.StockForecastedIn,
		StockForecastedOut: state.StockForecastedOut,
		ActiveReserved:     activeReserved,
		StockAvailable:     available,
		StockProjected:     state.StockReal + state.StockForecastedIn - state.StockForecastedOut,
	}
}

type StockStatus string

const (
	StatusOutOfStock         StockStatus = "OUT_OF_STOCK"
	StatusLowStock           StockStatus = "LOW_STOCK"
	StatusReorderRecommended StockStatus = "REORDER_RECOMMENDED"
	StatusHealthy            StockStatus = "HEALTHY"
)

type ForecastStatus string

const (
	ForecastShortage ForecastStatus = "FORECAST_SHORTAGE"
	ForecastOK       ForecastStatus = "FORECAST_OK"
)

// Classification is advisory only; nothing moves stock automatically.
type Classification struct {
	StockStatus    StockStatus    `json:"stock_status"`
	ForecastStatus ForecastStatus `json:"forecast_status"`
}

// Classify evaluates thresholds in severity order. The forecast flag is
// independent of the real-stock status: a product can be HEALTHY in real
// terms yet forecast-short.
func Classify(state *ProductStockState, derived DerivedQuantities) Classification {
	var status StockStatus
	switch {
	case state.StockReal <= 0:
		status = StatusOutOfStock
	case state.StockReal <= state.MinStock:
		status = StatusLowStock
	case state.StockReal <= state.ReorderPoint:
		status = StatusReorderRecommended
	default:
		status = StatusHealthy
	}

	forecast := ForecastOK
	if derived.StockAvailable <= state.MinStock {
		forecast = ForecastShortage
	}

	return Classification{StockStatus: status, ForecastStatus: forecast}
}
