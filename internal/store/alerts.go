package store

import (
	"context"
	"fmt"
	"log"

	"github.com/01moynul/pricetracker-golang/internal/models"
	"github.com/01moynul/pricetracker-golang/internal/pricing"
	"github.com/jackc/pgx/v5"
	"github.com/juju/errors"
)

// TargetNotBelowMinimumError rejects an alert whose target is already met
// by the current minimum price. It satisfies errors.Is(err, errors.NotValid).
type TargetNotBelowMinimumError struct {
	TargetPrice     float64
	CurrentMinPrice float64
}

func (e *TargetNotBelowMinimumError) Error() string {
	return fmt.Sprintf("target price %.2f is not below the current minimum price %.2f", e.TargetPrice, e.CurrentMinPrice)
}

// Is reports NotValid so callers can treat it as any other validation error.
func (e *TargetNotBelowMinimumError) Is(target error) bool {
	return target == errors.NotValid
}

const alertColumns = `id, product_id, email, target_price::float8, is_active, notified, created_at, triggered_at`

func scanAlert(row scanner) (models.PriceAlert, error) {
	var a models.PriceAlert
	err := row.Scan(&a.ID, &a.ProductID, &a.Email, &a.TargetPrice, &a.IsActive, &a.Notified, &a.CreatedAt, &a.TriggeredAt)
	return a, err
}

// currentMinQuery is the lowest of each retailer's latest quote for one
// product; NULL when the product has no quotes.
const currentMinQuery = `
	SELECT MIN(price)::float8
	FROM (
		SELECT DISTINCT ON (retailer) price
		FROM price_history
		WHERE product_id = $1
		ORDER BY retailer, scraped_at DESC
	) AS latest`

// CurrentMinPrice returns the current minimum price of a product, or nil
// when it has never been quoted.
func (s *Store) CurrentMinPrice(ctx context.Context, productID int64) (*float64, error) {
	var currentMin *float64
	if err := s.pool.QueryRow(ctx, currentMinQuery, productID).Scan(&currentMin); err != nil {
		return nil, errors.Annotatef(err, "loading current minimum of product %d", productID)
	}
	return currentMin, nil
}

// CreateAlert validates and inserts a price alert in one transaction.
//
// It fails with NotFound when the product does not exist and with a
// *TargetNotBelowMinimumError when the target is not strictly below the
// current minimum price. A product without any quote accepts any target.
// The target is rounded to cents first, as the column stores it.
func (s *Store) CreateAlert(ctx context.Context, in models.CreateAlertInput) (models.CreatedAlert, error) {
	target := pricing.Round(in.TargetPrice, 2)
	if target <= 0 {
		return models.CreatedAlert{}, errors.NewNotValid(nil, "target_price must be at least 0.01")
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return models.CreatedAlert{}, errors.Annotate(err, "starting alert transaction")
	}
	defer func() {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			log.Printf("[store] Rolling back alert transaction: %v", rbErr)
		}
	}()

	// --- 1. Product must exist ---
	var productName string
	err = tx.QueryRow(ctx, `SELECT name FROM products WHERE id = $1`, in.ProductID).Scan(&productName)
	if err != nil {
		return models.CreatedAlert{}, notFound(err, "product %d", in.ProductID)
	}

	// --- 2. Target must be below the current minimum ---
	var currentMin *float64
	if err := tx.QueryRow(ctx, currentMinQuery, in.ProductID).Scan(&currentMin); err != nil {
		return models.CreatedAlert{}, errors.Annotatef(err, "loading current minimum of product %d", in.ProductID)
	}
	if currentMin != nil && target >= *currentMin {
		return models.CreatedAlert{}, &TargetNotBelowMinimumError{
			TargetPrice:     target,
			CurrentMinPrice: *currentMin,
		}
	}

	// --- 3. Insert ---
	created := models.CreatedAlert{ProductName: productName, CurrentMinPrice: currentMin}
	err = tx.QueryRow(ctx, `
		INSERT INTO price_alerts (product_id, email, target_price)
		VALUES ($1, $2, $3)
		RETURNING id, product_id, email, target_price::float8, created_at, is_active`,
		in.ProductID, in.Email, target,
	).Scan(&created.ID, &created.ProductID, &created.Email, &created.TargetPrice, &created.CreatedAt, &created.IsActive)
	if err != nil {
		return models.CreatedAlert{}, errors.Annotate(err, "inserting price alert")
	}

	if err := tx.Commit(ctx); err != nil {
		return models.CreatedAlert{}, errors.Annotate(err, "committing price alert")
	}
	return created, nil
}

// AlertStats summarizes all alerts.
func (s *Store) AlertStats(ctx context.Context) (models.AlertStats, error) {
	var st models.AlertStats
	err := s.pool.QueryRow(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE is_active = true),
			COUNT(*) FILTER (WHERE is_active = false),
			COUNT(*) FILTER (WHERE notified = true),
			COUNT(DISTINCT product_id),
			COUNT(DISTINCT email)
		FROM price_alerts`).Scan(
		&st.TotalAlerts, &st.ActiveAlerts, &st.InactiveAlerts, &st.NotifiedAlerts,
		&st.ProductsWithAlerts, &st.UniqueUsers,
	)
	if err != nil {
		return models.AlertStats{}, errors.Annotate(err, "loading alert stats")
	}
	return st, nil
}

// FindTriggerableAlerts returns the active, unnotified alerts whose target
// is at or above their product's current minimum price, oldest first.
// Products without quotes never trigger.
func (s *Store) FindTriggerableAlerts(ctx context.Context) ([]models.TriggerableAlert, error) {
	rows, err := s.pool.Query(ctx, `
		WITH `+latestQuotesCTE+`,
		current_prices AS (
			SELECT product_id, MIN(price) AS current_min_price
			FROM latest_prices
			GROUP BY product_id
		)
		SELECT
			pa.id, pa.product_id, pa.email, pa.target_price::float8,
			p.name, p.brand, p.model, p.image_url,
			cp.current_min_price::float8, pa.created_at
		FROM price_alerts pa
		JOIN products p ON pa.product_id = p.id
		JOIN current_prices cp ON pa.product_id = cp.product_id
		WHERE pa.is_active = true
			AND pa.notified = false
			AND cp.current_min_price <= pa.target_price
		ORDER BY pa.created_at ASC, pa.id ASC`)
	if err != nil {
		return nil, errors.Annotate(err, "finding triggerable alerts")
	}
	return collect(rows, func(row scanner) (models.TriggerableAlert, error) {
		var a models.TriggerableAlert
		err := row.Scan(
			&a.ID, &a.ProductID, &a.Email, &a.TargetPrice,
			&a.ProductName, &a.Brand, &a.Model, &a.ImageURL,
			&a.CurrentMinPrice, &a.CreatedAt,
		)
		return a, err
	})
}

// MarkNotified flips an active, unnotified alert to notified and inactive
// and stamps triggered_at. It reports NotFound when the alert does not
// exist or was already notified, so a second call changes nothing.
func (s *Store) MarkNotified(ctx context.Context, id int64) (models.PriceAlert, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE price_alerts
		SET notified = true, is_active = false, triggered_at = NOW()
		WHERE id = $1 AND notified = false AND is_active = true
		RETURNING `+alertColumns, id)
	a, err := scanAlert(row)
	if err != nil {
		return models.PriceAlert{}, notFound(err, "active alert %d", id)
	}
	return a, nil
}
