package store

import (
	"context"
	"strings"

	"github.com/01moynul/pricetracker-golang/internal/models"
	"github.com/juju/errors"
)

const productColumns = `
	p.id, p.name, p.slug, p.brand, p.model, p.category, p.description, p.image_url,
	p.amazon_url, p.mediaworld_url, p.mediaworld_ricondizionati_url, p.ldlc_url,
	p.akinformatica_url, p.nexths_url, p.subito_url,
	p.is_active, p.created_at, p.updated_at`

func scanProduct(row scanner) (models.Product, error) {
	var p models.Product
	err := row.Scan(
		&p.ID, &p.Name, &p.Slug, &p.Brand, &p.Model, &p.Category, &p.Description, &p.ImageURL,
		&p.AmazonURL, &p.MediaworldURL, &p.MediaworldRicondizionatiURL, &p.LdlcURL,
		&p.AkinformaticaURL, &p.NexthsURL, &p.SubitoURL,
		&p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

const quoteColumns = `id, product_id, retailer, price::float8, availability, condition, url, scraped_at`

func scanQuote(row scanner) (models.PriceQuote, error) {
	var q models.PriceQuote
	err := row.Scan(&q.ID, &q.ProductID, &q.Retailer, &q.Price, &q.Availability, &q.Condition, &q.URL, &q.ScrapedAt)
	return q, err
}

const usedListingColumns = `
	id, product_id, title, price::float8, external_url, location, city, province,
	condition, seller_type, source, is_active, posted_at, scraped_at, last_checked_at,
	grading, discount_percentage::float8, original_price::float8, new_price::float8`

func scanUsedListing(row scanner) (models.UsedListing, error) {
	var l models.UsedListing
	err := row.Scan(
		&l.ID, &l.ProductID, &l.Title, &l.Price, &l.ExternalURL, &l.Location, &l.City, &l.Province,
		&l.Condition, &l.SellerType, &l.Source, &l.IsActive, &l.PostedAt, &l.ScrapedAt, &l.LastCheckedAt,
		&l.Grading, &l.DiscountPercentage, &l.OriginalPrice, &l.NewPrice,
	)
	return l, err
}

// latestQuotesCTE selects, for every (product, retailer) pair, the most
// recent quote by scraped_at.
const latestQuotesCTE = `
	latest_prices AS (
		SELECT DISTINCT ON (product_id, retailer)
			product_id, retailer, price, scraped_at
		FROM price_history
		ORDER BY product_id, retailer, scraped_at DESC
	)`

// ListProducts returns active products with their aggregated prices,
// optionally restricted to one category slug, ordered by name.
func (s *Store) ListProducts(ctx context.Context, category string, limit int) ([]models.ProductListing, error) {
	query := `
		WITH ` + latestQuotesCTE + `,
		new_prices AS (
			SELECT
				product_id,
				MIN(price) AS min_price,
				AVG(price)::DECIMAL(10,2) AS avg_price,
				MAX(price) AS max_price,
				COUNT(DISTINCT retailer) AS retailers_count,
				MAX(scraped_at) AS last_updated
			FROM latest_prices
			GROUP BY product_id
		),
		used_prices AS (
			SELECT
				product_id,
				MIN(price) AS min_price,
				AVG(price)::DECIMAL(10,2) AS avg_price,
				COUNT(*) AS count
			FROM used_listings
			WHERE is_active = true
			GROUP BY product_id
		)
		SELECT
			p.id, p.name, p.model, p.brand, p.category, p.category AS category_slug,
			p.description, p.image_url, p.is_active,
			np.min_price::float8, np.avg_price::float8, np.max_price::float8,
			np.retailers_count, np.last_updated,
			up.min_price::float8, up.avg_price::float8, up.count,
			CASE
				WHEN np.min_price IS NOT NULL AND up.min_price IS NOT NULL AND np.min_price > 0
				THEN ROUND(((np.min_price - up.min_price) / np.min_price * 100)::numeric, 1)::float8
				ELSE NULL
			END AS discount_percentage
		FROM products p
		LEFT JOIN new_prices np ON p.id = np.product_id
		LEFT JOIN used_prices up ON p.id = up.product_id
		WHERE p.is_active = true
			AND ($1::text = '' OR p.category = $1)
		ORDER BY p.name ASC
		LIMIT $2`

	rows, err := s.pool.Query(ctx, query, category, limit)
	if err != nil {
		return nil, errors.Annotate(err, "listing products")
	}
	return collect(rows, func(row scanner) (models.ProductListing, error) {
		var p models.ProductListing
		err := row.Scan(
			&p.ID, &p.Name, &p.Model, &p.Brand, &p.Category, &p.CategorySlug,
			&p.Description, &p.ImageURL, &p.IsActive,
			&p.NewMinPrice, &p.NewAvgPrice, &p.NewMaxPrice,
			&p.RetailersCount, &p.LastUpdated,
			&p.UsedMinPrice, &p.UsedAvgPrice, &p.UsedCount,
			&p.DiscountPercentage,
		)
		return p, err
	})
}

// GetProduct returns a product by id regardless of is_active.
func (s *Store) GetProduct(ctx context.Context, id int64) (models.Product, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products p WHERE p.id = $1`, id)
	p, err := scanProduct(row)
	if err != nil {
		return models.Product{}, notFound(err, "product %d", id)
	}
	return p, nil
}

// LatestQuotes returns the most recent quote of every retailer for a
// product, ordered by retailer.
func (s *Store) LatestQuotes(ctx context.Context, productID int64) ([]models.PriceQuote, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT DISTINCT ON (retailer) `+quoteColumns+`
		FROM price_history
		WHERE product_id = $1
		ORDER BY retailer, scraped_at DESC`, productID)
	if err != nil {
		return nil, errors.Annotatef(err, "loading latest quotes of product %d", productID)
	}
	return collect(rows, scanQuote)
}

// ActiveUsedListings returns up to limit active used listings for a
// product, cheapest first.
func (s *Store) ActiveUsedListings(ctx context.Context, productID int64, limit int) ([]models.UsedListing, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+usedListingColumns+`
		FROM used_listings
		WHERE product_id = $1 AND is_active = true
		ORDER BY price ASC
		LIMIT $2`, productID, limit)
	if err != nil {
		return nil, errors.Annotatef(err, "loading used listings of product %d", productID)
	}
	return collect(rows, scanUsedListing)
}

// PriceHistory returns the quotes of the last days days, oldest first.
// An empty retailer means all retailers.
func (s *Store) PriceHistory(ctx context.Context, productID int64, days int, retailer string) ([]models.PriceQuote, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+quoteColumns+`
		FROM price_history
		WHERE product_id = $1
			AND scraped_at >= NOW() - make_interval(days => $2::int)
			AND ($3::text = '' OR retailer = $3)
		ORDER BY scraped_at ASC`, productID, days, retailer)
	if err != nil {
		return nil, errors.Annotatef(err, "loading price history of product %d", productID)
	}
	return collect(rows, scanQuote)
}

// likeEscaper makes user input match literally inside an ILIKE pattern.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// NearbyUsedListings returns active used listings whose city or province
// contains city (case-insensitive), cheapest first. An empty city matches
// everything.
func (s *Store) NearbyUsedListings(ctx context.Context, productID int64, city string, limit int) ([]models.UsedListing, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+usedListingColumns+`
		FROM used_listings
		WHERE product_id = $1
			AND is_active = true
			AND ($2::text = '' OR city ILIKE '%' || $2 || '%' ESCAPE '\' OR province ILIKE '%' || $2 || '%' ESCAPE '\')
		ORDER BY price ASC
		LIMIT $3`, productID, likeEscaper.Replace(city), limit)
	if err != nil {
		return nil, errors.Annotatef(err, "loading nearby listings of product %d", productID)
	}
	return collect(rows, scanUsedListing)
}
