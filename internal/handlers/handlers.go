package handlers

import (
	"context"
	"time"

	"github.com/01moynul/pricetracker-golang/internal/auth"
	"github.com/01moynul/pricetracker-golang/internal/cache"
	"github.com/01moynul/pricetracker-golang/internal/models"
)

// Repository is the data access the handlers need. *store.Store
// implements it.
type Repository interface {
	ListProducts(ctx context.Context, category string, limit int) ([]models.ProductListing, error)
	GetProduct(ctx context.Context, id int64) (models.Product, error)
	LatestQuotes(ctx context.Context, productID int64) ([]models.PriceQuote, error)
	ActiveUsedListings(ctx context.Context, productID int64, limit int) ([]models.UsedListing, error)
	PriceHistory(ctx context.Context, productID int64, days int, retailer string) ([]models.PriceQuote, error)
	NearbyUsedListings(ctx context.Context, productID int64, city string, limit int) ([]models.UsedListing, error)

	OverallStats(ctx context.Context) (models.OverallStats, error)
	RecentDealCandidates(ctx context.Context) ([]models.DealCandidate, error)
	PriceTrends(ctx context.Context, productID int64, days int) ([]models.TrendPoint, error)

	ListCategories(ctx context.Context) ([]models.Category, error)
	GetCategory(ctx context.Context, slug string) (models.Category, error)

	CreateAlert(ctx context.Context, in models.CreateAlertInput) (models.CreatedAlert, error)
	AlertStats(ctx context.Context) (models.AlertStats, error)
	FindTriggerableAlerts(ctx context.Context) ([]models.TriggerableAlert, error)
	MarkNotified(ctx context.Context, id int64) (models.PriceAlert, error)

	AdminListProducts(ctx context.Context) ([]models.AdminProduct, error)
	CreateProduct(ctx context.Context, in models.CreateProductInput) (models.Product, error)
	UpdateProduct(ctx context.Context, id int64, in models.UpdateProductInput) (models.Product, error)
	ToggleProduct(ctx context.Context, id int64) (models.Product, error)
	SoftDeleteProduct(ctx context.Context, id int64) (models.Product, error)
	AdminListPrices(ctx context.Context, productID int64) ([]models.PriceQuote, []models.UsedListing, error)
	UpdateQuote(ctx context.Context, id int64, in models.UpdatePriceInput) (models.PriceQuote, error)
	DeleteQuote(ctx context.Context, id int64) error
	UpdateUsedListing(ctx context.Context, id int64, in models.UpdateUsedListingInput) (models.UsedListing, error)
	DeleteUsedListing(ctx context.Context, id int64) error
	AdminListAlerts(ctx context.Context) ([]models.AdminAlert, error)
	DeleteAlert(ctx context.Context, id int64) (models.PriceAlert, error)
	AdminAlertStats(ctx context.Context) (models.AdminAlertStats, error)
}

// Handlers struct holds all dependencies for our handlers.
type Handlers struct {
	Store Repository

	Cache        *cache.Cache // nil when caching is disabled
	CacheBackend string

	Issuer *auth.Issuer // nil when admin auth is disabled
	Admin  auth.Credentials

	StartedAt time.Time
}
