package models

import "time"

// PriceAlert is the model for the 'price_alerts' table.
type PriceAlert struct {
	ID          int64      `json:"id" db:"id"`
	ProductID   int64      `json:"product_id" db:"product_id"`
	Email       string     `json:"email" db:"email"`
	TargetPrice float64    `json:"target_price" db:"target_price"`
	IsActive    bool       `json:"is_active" db:"is_active"`
	Notified    bool       `json:"notified" db:"notified"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	TriggeredAt *time.Time `json:"triggered_at" db:"triggered_at"`
}

// CreatedAlert is returned after a successful POST /api/alerts.
type CreatedAlert struct {
	ID              int64     `json:"id"`
	ProductID       int64     `json:"product_id"`
	ProductName     string    `json:"product_name"`
	Email           string    `json:"email"`
	TargetPrice     float64   `json:"target_price"`
	CurrentMinPrice *float64  `json:"current_min_price"`
	CreatedAt       time.Time `json:"created_at"`
	IsActive        bool      `json:"is_active"`
}

// TriggerableAlert is an active alert whose target has been reached,
// joined with the product it watches.
type TriggerableAlert struct {
	ID              int64     `json:"id"`
	ProductID       int64     `json:"product_id"`
	Email           string    `json:"email"`
	TargetPrice     float64   `json:"target_price"`
	ProductName     string    `json:"product_name"`
	Brand           *string   `json:"brand"`
	Model           *string   `json:"model"`
	ImageURL        *string   `json:"image_url"`
	CurrentMinPrice float64   `json:"current_min_price"`
	CreatedAt       time.Time `json:"created_at"`
}

// AdminAlert is an alert row joined with its product for the admin list.
type AdminAlert struct {
	PriceAlert
	ProductName  string  `json:"product_name"`
	ProductBrand *string `json:"product_brand"`
}

// AlertStats is the public summary returned by GET /api/alerts/stats.
type AlertStats struct {
	TotalAlerts        int64 `json:"total_alerts"`
	ActiveAlerts       int64 `json:"active_alerts"`
	InactiveAlerts     int64 `json:"inactive_alerts"`
	NotifiedAlerts     int64 `json:"notified_alerts"`
	ProductsWithAlerts int64 `json:"products_with_alerts"`
	UniqueUsers        int64 `json:"unique_users"`
}

// AdminAlertStats feeds the admin dashboard.
type AdminAlertStats struct {
	TotalAlerts    int64    `json:"total_alerts"`
	ActiveCount    int64    `json:"active_count"`
	NotifiedCount  int64    `json:"notified_count"`
	UniqueUsers    int64    `json:"unique_users"`
	AvgTargetPrice *float64 `json:"avg_target_price"`
}

// CreateAlertInput is the payload for POST /api/alerts.
type CreateAlertInput struct {
	ProductID   int64   `json:"product_id" binding:"required"`
	Email       string  `json:"email" binding:"required,email"`
	TargetPrice float64 `json:"target_price" binding:"required,gt=0"`
}
