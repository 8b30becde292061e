package models

import "time"

// PriceStats summarizes the new and used prices of a single product.
// A nil field means there was no data to compute it from.
type PriceStats struct {
	NewMinPrice       *float64 `json:"new_min_price"`
	NewMaxPrice       *float64 `json:"new_max_price"`
	NewAvgPrice       *float64 `json:"new_avg_price"`
	NewCount          int      `json:"new_count"`
	UsedMinPrice      *float64 `json:"used_min_price"`
	UsedMaxPrice      *float64 `json:"used_max_price"`
	UsedAvgPrice      *float64 `json:"used_avg_price"`
	UsedCount         int      `json:"used_count"`
	SavingsPotential  *float64 `json:"savings_potential"`
	SavingsPercentage *float64 `json:"savings_percentage"`
}

// OverallStats describes the whole price_history table.
type OverallStats struct {
	TotalProducts     int64      `json:"total_products"`
	TotalRetailers    int64      `json:"total_retailers"`
	TotalPriceRecords int64      `json:"total_price_records"`
	FirstRecord       *time.Time `json:"first_record"`
	LastRecord        *time.Time `json:"last_record"`
}
