package models

import "time"

// PriceQuote is one row of 'price_history': a scraped new-price observation
// for a product at a retailer.
type PriceQuote struct {
	ID           int64     `json:"id,omitempty" db:"id"`
	ProductID    int64     `json:"product_id,omitempty" db:"product_id"`
	Retailer     string    `json:"retailer" db:"retailer"`
	Price        float64   `json:"price" db:"price"`
	Availability *string   `json:"availability,omitempty" db:"availability"`
	Condition    *string   `json:"condition,omitempty" db:"condition"`
	URL          *string   `json:"url,omitempty" db:"url"`
	ScrapedAt    time.Time `json:"scraped_at" db:"scraped_at"`
}

// DealCandidate is the latest quote of one retailer for one active product.
type DealCandidate struct {
	ProductID int64     `json:"id"`
	Name      string    `json:"name"`
	Model     *string   `json:"model"`
	Retailer  string    `json:"retailer"`
	Price     float64   `json:"price"`
	ScrapedAt time.Time `json:"scraped_at"`
}

// TrendPoint aggregates one retailer's quotes over one day.
type TrendPoint struct {
	Date     time.Time `json:"date"`
	Retailer string    `json:"retailer"`
	AvgPrice float64   `json:"avg_price"`
	MinPrice float64   `json:"min_price"`
	MaxPrice float64   `json:"max_price"`
	Samples  int64     `json:"samples"`
}

// UpdatePriceInput corrects a scraped quote; nil fields keep their value.
type UpdatePriceInput struct {
	Price    *float64 `json:"price" binding:"omitempty,gt=0"`
	Retailer *string  `json:"retailer"`
	URL      *string  `json:"url"`
}
