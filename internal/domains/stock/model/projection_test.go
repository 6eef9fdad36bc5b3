package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProject(t *testing.T) {
	tests := []struct {
		name           string
		state          ProductStockState
		activeReserved int
		wantAvailable  int
		wantProjected  int
	}{
		{
			name:           "no reservations",
			state:          ProductStockState{StockReal: 10, StockForecastedIn: 5, StockForecastedOut: 3},
			activeReserved: 0,
			wantAvailable:  10,
			wantProjected:  12,
		},
		{
			name:           "reservations reduce availability",
			state:          ProductStockState{StockReal: 10},
			activeReserved: 4,
			wantAvailable:  6,
			wantProjected:  10,
		},
		{
			name:           "availability floors at zero",
			state:          ProductStockState{StockReal: 2},
			activeReserved: 5,
			wantAvailable:  0,
			wantProjected:  2,
		},
		{
			name:           "projected can be negative",
			state:          ProductStockState{StockReal: 1, StockForecastedOut: 5},
			activeReserved: 0,
			wantAvailable:  1,
			wantProjected:  -4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Project(&tt.state, tt.activeReserved)
			assert.Equal(t, tt.wantAvailable, got.StockAvailable)
			assert.Equal(t, tt.wantProjected, got.StockProjected)
		})
	}
}

func TestProjectIsIdempotent(t *testing.T) {
	state := ProductStockState{StockReal: 7, StockForecastedIn: 2, StockForecastedOut: 1}
	first := Project(&state, 3)
	second := Project(&state, 3)
	assert.Equal(t, first, second)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name           string
		state          ProductStockState
		activeReserved int
		wantStatus     StockStatus
		wantForecast   ForecastStatus
	}{
		{
			name:         "zero stock is out of stock",
			state:        ProductStockState{StockReal: 0, MinStock: 5, ReorderPoint: 8},
			wantStatus:   StatusOutOfStock,
			wantForecast: ForecastShortage,
		},
		{
			name:         "at min stock is low stock",
			state:        ProductStockState{StockReal: 5, MinStock: 5, ReorderPoint: 8},
			wantStatus:   StatusLowStock,
			wantForecast: ForecastShortage,
		},
		{
			name:         "between min and reorder point recommends reorder",
			state:        ProductStockState{StockReal: 7, MinStock: 5, ReorderPoint: 8},
			wantStatus:   StatusReorderRecommended,
			wantForecast: ForecastOK,
		},
		{
			name:         "above reorder point is healthy",
			state:        ProductStockState{StockReal: 9, MinStock: 5, ReorderPoint: 8},
			wantStatus:   StatusHealthy,
			wantForecast: ForecastOK,
		},
		{
			name:           "healthy in real terms but forecast short",
			state:          ProductStockState{StockReal: 10, MinStock: 5, ReorderPoint: 8},
			activeReserved: 6,
			wantStatus:     StatusHealthy,
			wantForecast:   ForecastShortage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			derived := Project(&tt.state, tt.activeReserved)
			got := Classify(&tt.state, derived)
			assert.Equal(t, tt.wantStatus, got.StockStatus)
			assert.Equal(t, tt.wantForecast, got.ForecastStatus)
		})
	}
}

func TestClassifyIsIdempotent(t *testing.T) {
	state := ProductStockState{StockReal: 7, MinStock: 5, ReorderPoint: 8}
	derived := Project(&state, 0)
	assert.Equal(t, Classify(&state, derived), Classify(&state, derived))
}
