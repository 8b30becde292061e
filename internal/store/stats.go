package store

import (
	"context"

	"github.com/01moynul/pricetracker-golang/internal/models"
	"github.com/juju/errors"
)

// DealWindowHours bounds how old a quote may be to count as a deal.
const DealWindowHours = 24

// OverallStats describes the whole price history.
func (s *Store) OverallStats(ctx context.Context) (models.OverallStats, error) {
	var st models.OverallStats
	err := s.pool.QueryRow(ctx, `
		SELECT
			COUNT(DISTINCT product_id),
			COUNT(DISTINCT retailer),
			COUNT(*),
			MIN(scraped_at),
			MAX(scraped_at)
		FROM price_history`).Scan(
		&st.TotalProducts, &st.TotalRetailers, &st.TotalPriceRecords, &st.FirstRecord, &st.LastRecord,
	)
	if err != nil {
		return models.OverallStats{}, errors.Annotate(err, "loading overall stats")
	}
	return st, nil
}

// RecentDealCandidates returns the latest quote of each retailer for every
// active product, limited to quotes from the last DealWindowHours hours.
// pricing.BestDeals reduces them to one deal per product.
func (s *Store) RecentDealCandidates(ctx context.Context) ([]models.DealCandidate, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT DISTINCT ON (p.id, ph.retailer)
			p.id, p.name, p.model, ph.retailer, ph.price::float8, ph.scraped_at
		FROM products p
		JOIN price_history ph ON p.id = ph.product_id
		WHERE p.is_active = true
			AND ph.scraped_at > NOW() - make_interval(hours => $1::int)
		ORDER BY p.id, ph.retailer, ph.scraped_at DESC`, DealWindowHours)
	if err != nil {
		return nil, errors.Annotate(err, "loading deal candidates")
	}
	return collect(rows, func(row scanner) (models.DealCandidate, error) {
		var d models.DealCandidate
		err := row.Scan(&d.ProductID, &d.Name, &d.Model, &d.Retailer, &d.Price, &d.ScrapedAt)
		return d, err
	})
}

// PriceTrends aggregates a product's quotes per day and retailer over the
// last days days, newest day first.
func (s *Store) PriceTrends(ctx context.Context, productID int64, days int) ([]models.TrendPoint, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT
			DATE_TRUNC('day', scraped_at) AS date,
			retailer,
			AVG(price)::float8,
			MIN(price)::float8,
			MAX(price)::float8,
			COUNT(*)
		FROM price_history
		WHERE product_id = $1
			AND scraped_at > NOW() - make_interval(days => $2::int)
		GROUP BY DATE_TRUNC('day', scraped_at), retailer
		ORDER BY date DESC, retailer`, productID, days)
	if err != nil {
		return nil, errors.Annotatef(err, "loading price trends of product %d", productID)
	}
	return collect(rows, func(row scanner) (models.TrendPoint, error) {
		var t models.TrendPoint
		err := row.Scan(&t.Date, &t.Retailer, &t.AvgPrice, &t.MinPrice, &t.MaxPrice, &t.Samples)
		return t, err
	})
}
