package models

import (
	"time"
)

// Product is the model for the 'products' table.
// Nullable columns use pointers so they render as null in JSON.
type Product struct {
	ID          int64   `json:"id" db:"id"`
	Name        string  `json:"name" db:"name"`
	Slug        *string `json:"slug,omitempty" db:"slug"`
	Brand       *string `json:"brand" db:"brand"`
	Model       *string `json:"model" db:"model"`
	Category    *string `json:"category" db:"category"`
	Description *string `json:"description" db:"description"`
	ImageURL    *string `json:"image_url" db:"image_url"`

	// --- Retailer Links ---
	AmazonURL                   *string `json:"amazon_url" db:"amazon_url"`
	MediaworldURL               *string `json:"mediaworld_url,omitempty" db:"mediaworld_url"`
	MediaworldRicondizionatiURL *string `json:"mediaworld_ricondizionati_url,omitempty" db:"mediaworld_ricondizionati_url"`
	LdlcURL                     *string `json:"ldlc_url,omitempty" db:"ldlc_url"`
	AkinformaticaURL            *string `json:"akinformatica_url,omitempty" db:"akinformatica_url"`
	NexthsURL                   *string `json:"nexths_url,omitempty" db:"nexths_url"`
	SubitoURL                   *string `json:"subito_url" db:"subito_url"`

	IsActive  bool      `json:"is_active" db:"is_active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// ProductListing is a catalog row with the aggregated new/used prices
// joined in. Aggregates are null when the product has no data of that kind.
type ProductListing struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Model        *string `json:"model"`
	Brand        *string `json:"brand"`
	Category     *string `json:"category"`
	CategorySlug *string `json:"category_slug"`
	Description  *string `json:"description"`
	ImageURL     *string `json:"image_url"`
	IsActive     bool    `json:"is_active"`

	NewMinPrice    *float64   `json:"new_min_price"`
	NewAvgPrice    *float64   `json:"new_avg_price"`
	NewMaxPrice    *float64   `json:"new_max_price"`
	RetailersCount *int64     `json:"retailers_count"`
	LastUpdated    *time.Time `json:"last_updated"`

	UsedMinPrice *float64 `json:"used_min_price"`
	UsedAvgPrice *float64 `json:"used_avg_price"`
	UsedCount    *int64   `json:"used_count"`

	DiscountPercentage *float64 `json:"discount_percentage"`
}

// AdminProduct is the admin view of a product, including inactive ones.
type AdminProduct struct {
	Product

	NewMinPrice    *float64   `json:"new_min_price"`
	RetailersCount *int64     `json:"retailers_count"`
	LastUpdated    *time.Time `json:"last_updated"`
	UsedMinPrice   *float64   `json:"used_min_price"`
	UsedCount      *int64     `json:"used_count"`
}

// CreateProductInput is the admin payload for POST /api/admin/products.
type CreateProductInput struct {
	Name                        string  `json:"name" binding:"required"`
	Brand                       string  `json:"brand" binding:"required"`
	Category                    string  `json:"category" binding:"required"`
	Model                       *string `json:"model"`
	Description                 *string `json:"description"`
	ImageURL                    *string `json:"image_url"`
	AmazonURL                   *string `json:"amazon_url"`
	MediaworldURL               *string `json:"mediaworld_url"`
	MediaworldRicondizionatiURL *string `json:"mediaworld_ricondizionati_url"`
	LdlcURL                     *string `json:"ldlc_url"`
	AkinformaticaURL            *string `json:"akinformatica_url"`
	NexthsURL                   *string `json:"nexths_url"`
	SubitoURL                   *string `json:"subito_url"`
}

// UpdateProductInput is a partial update; nil fields keep their value.
type UpdateProductInput struct {
	Name        *string `json:"name"`
	Brand       *string `json:"brand"`
	Model       *string `json:"model"`
	Category    *string `json:"category"`
	Description *string `json:"description"`
	AmazonURL   *string `json:"amazon_url"`
	SubitoURL   *string `json:"subito_url"`
	ImageURL    *string `json:"image_url"`
	IsActive    *bool   `json:"is_active"`
}
