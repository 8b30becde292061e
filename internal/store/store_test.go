package store

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/01moynul/pricetracker-golang/internal/database"
	"github.com/01moynul/pricetracker-golang/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestStore connects to TEST_DATABASE_URL and isolates the test in a
// fresh schema that is dropped afterwards.
func newTestStore(t *testing.T) (*Store, *pgxpool.Pool) {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set; skipping database integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cfg := database.Config{URL: dsn, MaxConns: 4}
	admin, err := database.OpenPool(ctx, cfg)
	require.NoError(t, err)

	schema := "test_" + uuid.NewString()[:8]
	_, err = admin.Exec(ctx, fmt.Sprintf(`CREATE SCHEMA %q`, schema))
	require.NoError(t, err)

	pool, err := database.OpenPoolInSchema(ctx, cfg, schema)
	require.NoError(t, err)
	require.NoError(t, database.ApplySchema(ctx, pool))

	t.Cleanup(func() {
		pool.Close()
		_, _ = admin.Exec(context.Background(), fmt.Sprintf(`DROP SCHEMA %q CASCADE`, schema))
		admin.Close()
	})
	return New(pool), pool
}

func insertProduct(t *testing.T, pool *pgxpool.Pool, name, category string, active bool) int64 {
	t.Helper()
	var id int64
	err := pool.QueryRow(context.Background(),
		`INSERT INTO products (name, brand, category, is_active) VALUES ($1, 'Acme', $2, $3) RETURNING id`,
		name, category, active).Scan(&id)
	require.NoError(t, err)
	return id
}

func insertQuote(t *testing.T, pool *pgxpool.Pool, productID int64, retailer string, price float64, at time.Time) {
	t.Helper()
	_, err := pool.Exec(context.Background(),
		`INSERT INTO price_history (product_id, retailer, price, scraped_at) VALUES ($1, $2, $3, $4)`,
		productID, retailer, price, at)
	require.NoError(t, err)
}

func insertUsed(t *testing.T, pool *pgxpool.Pool, productID int64, price float64, city string, active bool) {
	t.Helper()
	_, err := pool.Exec(context.Background(),
		`INSERT INTO used_listings (product_id, title, price, city, is_active) VALUES ($1, 'used', $2, $3, $4)`,
		productID, price, city, active)
	require.NoError(t, err)
}

func countAlerts(t *testing.T, pool *pgxpool.Pool) int {
	t.Helper()
	var n int
	require.NoError(t, pool.QueryRow(context.Background(), `SELECT COUNT(*) FROM price_alerts`).Scan(&n))
	return n
}

func insertAlert(t *testing.T, pool *pgxpool.Pool, productID int64, target float64, active bool, createdAt time.Time) int64 {
	t.Helper()
	var id int64
	err := pool.QueryRow(context.Background(), `
		INSERT INTO price_alerts (product_id, email, target_price, is_active, created_at)
		VALUES ($1, 'a@b.co', $2, $3, $4) RETURNING id`,
		productID, target, active, createdAt).Scan(&id)
	require.NoError(t, err)
	return id
}

func TestCurrentMinUsesLatestQuotePerRetailer(t *testing.T) {
	s, pool := newTestStore(t)
	ctx := context.Background()
	now := time.Now()

	id := insertProduct(t, pool, "Phone", "smartphone", true)
	// An old cheap quote from A is superseded by its newer, higher one.
	insertQuote(t, pool, id, "A", 800, now.Add(-48*time.Hour))
	insertQuote(t, pool, id, "A", 950, now.Add(-time.Hour))
	insertQuote(t, pool, id, "B", 900, now.Add(-2*time.Hour))

	currentMin, err := s.CurrentMinPrice(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, currentMin)
	assert.Equal(t, 900.0, *currentMin)

	quotes, err := s.LatestQuotes(ctx, id)
	require.NoError(t, err)
	require.Len(t, quotes, 2)
	assert.Equal(t, "A", quotes[0].Retailer)
	assert.Equal(t, 950.0, quotes[0].Price)
	assert.Equal(t, "B", quotes[1].Retailer)
}

func TestCurrentMinWithoutQuotesIsNil(t *testing.T) {
	s, pool := newTestStore(t)
	id := insertProduct(t, pool, "Bare", "smartphone", true)

	currentMin, err := s.CurrentMinPrice(context.Background(), id)
	require.NoError(t, err)
	assert.Nil(t, currentMin)
}

func TestCreateAlert(t *testing.T) {
	s, pool := newTestStore(t)
	ctx := context.Background()
	id := insertProduct(t, pool, "Phone", "smartphone", true)
	insertQuote(t, pool, id, "A", 900, time.Now())

	t.Run("target equal to minimum is rejected", func(t *testing.T) {
		before := countAlerts(t, pool)
		_, err := s.CreateAlert(ctx, models.CreateAlertInput{ProductID: id, Email: "a@b.co", TargetPrice: 900})
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.NotValid))

		var tooHigh *TargetNotBelowMinimumError
		require.True(t, errors.As(err, &tooHigh))
		assert.Equal(t, 900.0, tooHigh.CurrentMinPrice)
		assert.Equal(t, before, countAlerts(t, pool))
	})

	t.Run("sub-cent target rounding up to the minimum is rejected", func(t *testing.T) {
		before := countAlerts(t, pool)
		_, err := s.CreateAlert(ctx, models.CreateAlertInput{ProductID: id, Email: "a@b.co", TargetPrice: 899.999})
		var tooHigh *TargetNotBelowMinimumError
		require.True(t, errors.As(err, &tooHigh), "got %v", err)
		assert.Equal(t, 900.0, tooHigh.TargetPrice)
		assert.Equal(t, before, countAlerts(t, pool))
	})

	t.Run("target rounding to zero is rejected", func(t *testing.T) {
		before := countAlerts(t, pool)
		_, err := s.CreateAlert(ctx, models.CreateAlertInput{ProductID: id, Email: "a@b.co", TargetPrice: 0.001})
		assert.True(t, errors.Is(err, errors.NotValid), "got %v", err)
		assert.Equal(t, before, countAlerts(t, pool))
	})

	t.Run("stored target is rounded to cents", func(t *testing.T) {
		created, err := s.CreateAlert(ctx, models.CreateAlertInput{ProductID: id, Email: "a@b.co", TargetPrice: 899.994})
		require.NoError(t, err)
		assert.Equal(t, 899.99, created.TargetPrice)

		triggerable, err := s.FindTriggerableAlerts(ctx)
		require.NoError(t, err)
		assert.Empty(t, triggerable)
	})

	t.Run("target below minimum is stored", func(t *testing.T) {
		created, err := s.CreateAlert(ctx, models.CreateAlertInput{ProductID: id, Email: "a@b.co", TargetPrice: 850})
		require.NoError(t, err)
		assert.NotZero(t, created.ID)
		assert.Equal(t, "Phone", created.ProductName)
		assert.True(t, created.IsActive)
		require.NotNil(t, created.CurrentMinPrice)
		assert.Equal(t, 900.0, *created.CurrentMinPrice)
	})

	t.Run("unknown product is not found", func(t *testing.T) {
		_, err := s.CreateAlert(ctx, models.CreateAlertInput{ProductID: id + 1000, Email: "a@b.co", TargetPrice: 1})
		assert.True(t, errors.Is(err, errors.NotFound))
	})

	t.Run("product without quotes accepts any target", func(t *testing.T) {
		bare := insertProduct(t, pool, "Bare", "smartphone", true)
		created, err := s.CreateAlert(ctx, models.CreateAlertInput{ProductID: bare, Email: "a@b.co", TargetPrice: 10})
		require.NoError(t, err)
		assert.Nil(t, created.CurrentMinPrice)
	})
}

func TestTriggerAndMarkNotified(t *testing.T) {
	s, pool := newTestStore(t)
	ctx := context.Background()

	id := insertProduct(t, pool, "Phone", "smartphone", true)
	insertQuote(t, pool, id, "A", 1000, time.Now().Add(-time.Hour))

	alert, err := s.CreateAlert(ctx, models.CreateAlertInput{ProductID: id, Email: "a@b.co", TargetPrice: 950})
	require.NoError(t, err)

	triggerable, err := s.FindTriggerableAlerts(ctx)
	require.NoError(t, err)
	assert.Empty(t, triggerable)

	// The price drops to exactly the target.
	insertQuote(t, pool, id, "A", 950, time.Now())

	triggerable, err = s.FindTriggerableAlerts(ctx)
	require.NoError(t, err)
	require.Len(t, triggerable, 1)
	assert.Equal(t, alert.ID, triggerable[0].ID)
	assert.Equal(t, 950.0, triggerable[0].CurrentMinPrice)
	assert.Equal(t, "Phone", triggerable[0].ProductName)

	marked, err := s.MarkNotified(ctx, alert.ID)
	require.NoError(t, err)
	assert.True(t, marked.Notified)
	assert.False(t, marked.IsActive)
	require.NotNil(t, marked.TriggeredAt)

	_, err = s.MarkNotified(ctx, alert.ID)
	assert.True(t, errors.Is(err, errors.NotFound), "second mark must be a no-op: %v", err)

	triggerable, err = s.FindTriggerableAlerts(ctx)
	require.NoError(t, err)
	assert.Empty(t, triggerable)

	stats, err := s.AlertStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.AlertStats{
		TotalAlerts: 1, InactiveAlerts: 1, NotifiedAlerts: 1, ProductsWithAlerts: 1, UniqueUsers: 1,
	}, stats)
}

func TestListProductsAggregates(t *testing.T) {
	s, pool := newTestStore(t)
	ctx := context.Background()
	now := time.Now()

	phone := insertProduct(t, pool, "Phone", "smartphone", true)
	insertProduct(t, pool, "Hidden", "smartphone", false)
	insertProduct(t, pool, "Laptop", "laptop", true)

	insertQuote(t, pool, phone, "A", 1000, now)
	insertQuote(t, pool, phone, "B", 800, now)
	insertUsed(t, pool, phone, 600, "Milano", true)
	insertUsed(t, pool, phone, 100, "Roma", false)

	listings, err := s.ListProducts(ctx, "smartphone", 50)
	require.NoError(t, err)
	require.Len(t, listings, 1)

	p := listings[0]
	assert.Equal(t, "Phone", p.Name)
	require.NotNil(t, p.NewMinPrice)
	assert.Equal(t, 800.0, *p.NewMinPrice)
	require.NotNil(t, p.NewAvgPrice)
	assert.Equal(t, 900.0, *p.NewAvgPrice)
	require.NotNil(t, p.UsedMinPrice)
	assert.Equal(t, 600.0, *p.UsedMinPrice)
	require.NotNil(t, p.DiscountPercentage)
	assert.Equal(t, 25.0, *p.DiscountPercentage)

	all, err := s.ListProducts(ctx, "", 50)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	nearby, err := s.NearbyUsedListings(ctx, phone, "mil", 20)
	require.NoError(t, err)
	require.Len(t, nearby, 1)
	assert.Equal(t, 600.0, nearby[0].Price)

	for _, pattern := range []string{"%", "_", `\`} {
		nearby, err = s.NearbyUsedListings(ctx, phone, pattern, 20)
		require.NoError(t, err)
		assert.Empty(t, nearby, "city %q must match literally", pattern)
	}
}

func TestAdminProductLifecycle(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	created, err := s.CreateProduct(ctx, models.CreateProductInput{Name: "Galaxy S24 Ultra", Brand: "Samsung", Category: "smartphone"})
	require.NoError(t, err)
	require.NotNil(t, created.Slug)
	assert.Equal(t, "galaxy-s24-ultra", *created.Slug)
	assert.True(t, created.IsActive)

	newName := "Galaxy S24"
	updated, err := s.UpdateProduct(ctx, created.ID, models.UpdateProductInput{Name: &newName})
	require.NoError(t, err)
	assert.Equal(t, newName, updated.Name)
	require.NotNil(t, updated.Brand)
	assert.Equal(t, "Samsung", *updated.Brand)

	toggled, err := s.ToggleProduct(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, toggled.IsActive)

	deleted, err := s.SoftDeleteProduct(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, deleted.IsActive)

	_, err = s.GetProduct(ctx, created.ID)
	assert.NoError(t, err, "soft-deleted products stay readable")

	_, err = s.UpdateProduct(ctx, created.ID+1000, models.UpdateProductInput{Name: &newName})
	assert.True(t, errors.Is(err, errors.NotFound))
}

func TestDeleteQuoteIsHard(t *testing.T) {
	s, pool := newTestStore(t)
	ctx := context.Background()
	id := insertProduct(t, pool, "Phone", "smartphone", true)
	insertQuote(t, pool, id, "A", 500, time.Now())

	quotes, _, err := s.AdminListPrices(ctx, id)
	require.NoError(t, err)
	require.Len(t, quotes, 1)

	require.NoError(t, s.DeleteQuote(ctx, quotes[0].ID))
	assert.True(t, errors.Is(s.DeleteQuote(ctx, quotes[0].ID), errors.NotFound))
}

func TestCategoriesCountActiveProducts(t *testing.T) {
	s, pool := newTestStore(t)
	ctx := context.Background()

	_, err := pool.Exec(ctx, `
		INSERT INTO categories (slug, name, sort_order) VALUES
			('smartphone', 'Smartphone', 1),
			('laptop', 'Laptop', 2)`)
	require.NoError(t, err)
	insertProduct(t, pool, "Phone", "smartphone", true)
	insertProduct(t, pool, "Old phone", "smartphone", false)

	categories, err := s.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 2)
	assert.Equal(t, "smartphone", categories[0].Slug)
	assert.EqualValues(t, 1, categories[0].ProductCount)
	assert.EqualValues(t, 0, categories[1].ProductCount)

	laptop, err := s.GetCategory(ctx, "laptop")
	require.NoError(t, err)
	assert.Equal(t, "Laptop", laptop.Name)

	_, err = s.GetCategory(ctx, "tablet")
	assert.True(t, errors.Is(err, errors.NotFound), "got %v", err)
}

func TestDealCandidatesAndTrends(t *testing.T) {
	s, pool := newTestStore(t)
	ctx := context.Background()
	now := time.Now()

	phone := insertProduct(t, pool, "Phone", "smartphone", true)
	hidden := insertProduct(t, pool, "Hidden", "smartphone", false)
	insertQuote(t, pool, phone, "A", 900, now.Add(-3*time.Hour))
	insertQuote(t, pool, phone, "A", 880, now.Add(-time.Hour))
	insertQuote(t, pool, phone, "B", 950, now.Add(-2*time.Hour))
	insertQuote(t, pool, phone, "C", 700, now.Add(-72*time.Hour))
	insertQuote(t, pool, hidden, "A", 10, now)

	candidates, err := s.RecentDealCandidates(ctx)
	require.NoError(t, err)
	require.Len(t, candidates, 2)
	assert.Equal(t, "A", candidates[0].Retailer)
	assert.Equal(t, 880.0, candidates[0].Price)
	assert.Equal(t, "B", candidates[1].Retailer)

	trends, err := s.PriceTrends(ctx, phone, 7)
	require.NoError(t, err)
	var samples int64
	for _, p := range trends {
		samples += p.Samples
	}
	assert.EqualValues(t, 4, samples)
}

func TestFindTriggerableAlertsOrderAndExclusions(t *testing.T) {
	s, pool := newTestStore(t)
	ctx := context.Background()
	now := time.Now()

	id := insertProduct(t, pool, "Phone", "smartphone", true)
	insertQuote(t, pool, id, "A", 500, now)

	newest := insertAlert(t, pool, id, 600, true, now.Add(-time.Hour))
	oldest := insertAlert(t, pool, id, 700, true, now.Add(-3*time.Hour))
	middle := insertAlert(t, pool, id, 550, true, now.Add(-2*time.Hour))
	// Deactivated by an admin but never notified.
	insertAlert(t, pool, id, 800, false, now.Add(-4*time.Hour))
	// Target not reached.
	insertAlert(t, pool, id, 400, true, now.Add(-5*time.Hour))

	triggerable, err := s.FindTriggerableAlerts(ctx)
	require.NoError(t, err)
	require.Len(t, triggerable, 3)
	assert.Equal(t, []int64{oldest, middle, newest},
		[]int64{triggerable[0].ID, triggerable[1].ID, triggerable[2].ID})
}
