package models

import "time"

// UsedListing is a scraped secondary-market offer from 'used_listings'.
// IsActive is toggled by the scraper when the listing disappears upstream.
type UsedListing struct {
	ID          int64   `json:"id" db:"id"`
	ProductID   int64   `json:"product_id,omitempty" db:"product_id"`
	Title       string  `json:"title" db:"title"`
	Price       float64 `json:"price" db:"price"`
	ExternalURL *string `json:"url" db:"external_url"`
	Location    *string `json:"location" db:"location"`
	City        *string `json:"city,omitempty" db:"city"`
	Province    *string `json:"province,omitempty" db:"province"`
	Condition   *string `json:"condition" db:"condition"`
	SellerType  *string `json:"seller_type,omitempty" db:"seller_type"`
	Source      *string `json:"source,omitempty" db:"source"`
	IsActive    bool    `json:"is_active" db:"is_active"`

	PostedAt      *time.Time `json:"posted_at,omitempty" db:"posted_at"`
	ScrapedAt     time.Time  `json:"scraped_at" db:"scraped_at"`
	LastCheckedAt *time.Time `json:"last_checked_at,omitempty" db:"last_checked_at"`

	// Refurbished-store fields; null for marketplace listings.
	Grading            *string  `json:"grading" db:"grading"`
	DiscountPercentage *float64 `json:"discount_percentage" db:"discount_percentage"`
	OriginalPrice      *float64 `json:"original_price,omitempty" db:"original_price"`
	NewPrice           *float64 `json:"new_price,omitempty" db:"new_price"`
}

// UpdateUsedListingInput is the admin correction payload for a used listing.
type UpdateUsedListingInput struct {
	Price       *float64 `json:"price" binding:"omitempty,gt=0"`
	Title       *string  `json:"title"`
	ExternalURL *string  `json:"external_url"`
	IsActive    *bool    `json:"is_active"`
}
