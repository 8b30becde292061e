package store

import (
	"context"

	"github.com/01moynul/pricetracker-golang/internal/models"
	"github.com/gosimple/slug"
	"github.com/juju/errors"
)

// AdminListProducts returns every product, active or not, newest first,
// with its current new minimum and used minimum.
func (s *Store) AdminListProducts(ctx context.Context) ([]models.AdminProduct, error) {
	rows, err := s.pool.Query(ctx, `
		WITH `+latestQuotesCTE+`,
		new_prices AS (
			SELECT
				product_id,
				MIN(price) AS min_price,
				COUNT(DISTINCT retailer) AS retailers_count,
				MAX(scraped_at) AS last_updated
			FROM latest_prices
			GROUP BY product_id
		),
		used_prices AS (
			SELECT product_id, MIN(price) AS min_price, COUNT(*) AS count
			FROM used_listings
			WHERE is_active = true
			GROUP BY product_id
		)
		SELECT `+productColumns+`,
			np.min_price::float8, np.retailers_count, np.last_updated,
			up.min_price::float8, up.count
		FROM products p
		LEFT JOIN new_prices np ON p.id = np.product_id
		LEFT JOIN used_prices up ON p.id = up.product_id
		ORDER BY p.id DESC`)
	if err != nil {
		return nil, errors.Annotate(err, "listing admin products")
	}
	return collect(rows, func(row scanner) (models.AdminProduct, error) {
		var ap models.AdminProduct
		p := &ap.Product
		err := row.Scan(
			&p.ID, &p.Name, &p.Slug, &p.Brand, &p.Model, &p.Category, &p.Description, &p.ImageURL,
			&p.AmazonURL, &p.MediaworldURL, &p.MediaworldRicondizionatiURL, &p.LdlcURL,
			&p.AkinformaticaURL, &p.NexthsURL, &p.SubitoURL,
			&p.IsActive, &p.CreatedAt, &p.UpdatedAt,
			&ap.NewMinPrice, &ap.RetailersCount, &ap.LastUpdated,
			&ap.UsedMinPrice, &ap.UsedCount,
		)
		return ap, err
	})
}

// CreateProduct inserts an active product with a slug derived from its name.
func (s *Store) CreateProduct(ctx context.Context, in models.CreateProductInput) (models.Product, error) {
	productSlug := slug.Make(in.Name)
	row := s.pool.QueryRow(ctx, `
		INSERT INTO products AS p (
			name, brand, model, category, description, image_url,
			amazon_url, mediaworld_url, mediaworld_ricondizionati_url,
			ldlc_url, akinformatica_url, nexths_url, subito_url,
			slug, is_active
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, true)
		RETURNING `+productColumns,
		in.Name, in.Brand, in.Model, in.Category, in.Description, in.ImageURL,
		in.AmazonURL, in.MediaworldURL, in.MediaworldRicondizionatiURL,
		in.LdlcURL, in.AkinformaticaURL, in.NexthsURL, in.SubitoURL,
		productSlug,
	)
	p, err := scanProduct(row)
	if err != nil {
		return models.Product{}, errors.Annotatef(err, "creating product %q", in.Name)
	}
	return p, nil
}

// UpdateProduct applies a partial update; nil fields keep their value.
func (s *Store) UpdateProduct(ctx context.Context, id int64, in models.UpdateProductInput) (models.Product, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE products AS p
		SET
			name = COALESCE($1, name),
			brand = COALESCE($2, brand),
			model = COALESCE($3, model),
			category = COALESCE($4, category),
			description = COALESCE($5, description),
			amazon_url = COALESCE($6, amazon_url),
			subito_url = COALESCE($7, subito_url),
			image_url = COALESCE($8, image_url),
			is_active = COALESCE($9, is_active),
			updated_at = NOW()
		WHERE id = $10
		RETURNING `+productColumns,
		in.Name, in.Brand, in.Model, in.Category, in.Description,
		in.AmazonURL, in.SubitoURL, in.ImageURL, in.IsActive, id,
	)
	p, err := scanProduct(row)
	if err != nil {
		return models.Product{}, notFound(err, "product %d", id)
	}
	return p, nil
}

// ToggleProduct flips is_active.
func (s *Store) ToggleProduct(ctx context.Context, id int64) (models.Product, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE products AS p
		SET is_active = NOT is_active, updated_at = NOW()
		WHERE id = $1
		RETURNING `+productColumns, id)
	p, err := scanProduct(row)
	if err != nil {
		return models.Product{}, notFound(err, "product %d", id)
	}
	return p, nil
}

// SoftDeleteProduct deactivates a product. Its price history is kept.
func (s *Store) SoftDeleteProduct(ctx context.Context, id int64) (models.Product, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE products AS p
		SET is_active = false, updated_at = NOW()
		WHERE id = $1
		RETURNING `+productColumns, id)
	p, err := scanProduct(row)
	if err != nil {
		return models.Product{}, notFound(err, "product %d", id)
	}
	return p, nil
}

// AdminListPrices returns the 50 most recent new quotes and used listings
// of a product, including inactive listings.
func (s *Store) AdminListPrices(ctx context.Context, productID int64) ([]models.PriceQuote, []models.UsedListing, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+quoteColumns+`
		FROM price_history
		WHERE product_id = $1
		ORDER BY scraped_at DESC
		LIMIT 50`, productID)
	if err != nil {
		return nil, nil, errors.Annotatef(err, "loading quotes of product %d", productID)
	}
	quotes, err := collect(rows, scanQuote)
	if err != nil {
		return nil, nil, err
	}

	rows, err = s.pool.Query(ctx, `
		SELECT `+usedListingColumns+`
		FROM used_listings
		WHERE product_id = $1
		ORDER BY scraped_at DESC
		LIMIT 50`, productID)
	if err != nil {
		return nil, nil, errors.Annotatef(err, "loading used listings of product %d", productID)
	}
	used, err := collect(rows, scanUsedListing)
	if err != nil {
		return nil, nil, err
	}
	return quotes, used, nil
}

// UpdateQuote corrects a scraped quote.
func (s *Store) UpdateQuote(ctx context.Context, id int64, in models.UpdatePriceInput) (models.PriceQuote, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE price_history
		SET
			price = COALESCE($1, price),
			retailer = COALESCE($2, retailer),
			url = COALESCE($3, url)
		WHERE id = $4
		RETURNING `+quoteColumns,
		in.Price, in.Retailer, in.URL, id,
	)
	q, err := scanQuote(row)
	if err != nil {
		return models.PriceQuote{}, notFound(err, "price %d", id)
	}
	return q, nil
}

// DeleteQuote removes a quote permanently.
func (s *Store) DeleteQuote(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM price_history WHERE id = $1`, id)
	if err != nil {
		return errors.Annotatef(err, "deleting price %d", id)
	}
	if tag.RowsAffected() == 0 {
		return errors.NotFoundf("price %d", id)
	}
	return nil
}

// UpdateUsedListing corrects a used listing.
func (s *Store) UpdateUsedListing(ctx context.Context, id int64, in models.UpdateUsedListingInput) (models.UsedListing, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE used_listings
		SET
			price = COALESCE($1, price),
			title = COALESCE($2, title),
			external_url = COALESCE($3, external_url),
			is_active = COALESCE($4, is_active)
		WHERE id = $5
		RETURNING `+usedListingColumns,
		in.Price, in.Title, in.ExternalURL, in.IsActive, id,
	)
	l, err := scanUsedListing(row)
	if err != nil {
		return models.UsedListing{}, notFound(err, "used listing %d", id)
	}
	return l, nil
}

// DeleteUsedListing removes a used listing permanently.
func (s *Store) DeleteUsedListing(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM used_listings WHERE id = $1`, id)
	if err != nil {
		return errors.Annotatef(err, "deleting used listing %d", id)
	}
	if tag.RowsAffected() == 0 {
		return errors.NotFoundf("used listing %d", id)
	}
	return nil
}

// AdminListAlerts returns every alert with its product, newest first.
func (s *Store) AdminListAlerts(ctx context.Context) ([]models.AdminAlert, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT
			pa.id, pa.product_id, pa.email, pa.target_price::float8, pa.is_active,
			pa.notified, pa.created_at, pa.triggered_at,
			p.name, p.brand
		FROM price_alerts pa
		JOIN products p ON pa.product_id = p.id
		ORDER BY pa.created_at DESC`)
	if err != nil {
		return nil, errors.Annotate(err, "listing admin alerts")
	}
	return collect(rows, func(row scanner) (models.AdminAlert, error) {
		var a models.AdminAlert
		err := row.Scan(
			&a.ID, &a.ProductID, &a.Email, &a.TargetPrice, &a.IsActive,
			&a.Notified, &a.CreatedAt, &a.TriggeredAt,
			&a.ProductName, &a.ProductBrand,
		)
		return a, err
	})
}

// DeleteAlert removes an alert permanently and returns it.
func (s *Store) DeleteAlert(ctx context.Context, id int64) (models.PriceAlert, error) {
	row := s.pool.QueryRow(ctx, `DELETE FROM price_alerts WHERE id = $1 RETURNING `+alertColumns, id)
	a, err := scanAlert(row)
	if err != nil {
		return models.PriceAlert{}, notFound(err, "alert %d", id)
	}
	return a, nil
}

// AdminAlertStats feeds the admin dashboard.
func (s *Store) AdminAlertStats(ctx context.Context) (models.AdminAlertStats, error) {
	var st models.AdminAlertStats
	err := s.pool.QueryRow(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE is_active = true AND notified = false),
			COUNT(*) FILTER (WHERE notified = true),
			COUNT(DISTINCT email),
			ROUND(AVG(target_price), 2)::float8
		FROM price_alerts`).Scan(
		&st.TotalAlerts, &st.ActiveCount, &st.NotifiedCount, &st.UniqueUsers, &st.AvgTargetPrice,
	)
	if err != nil {
		return models.AdminAlertStats{}, errors.Annotate(err, "loading admin alert stats")
	}
	return st, nil
}
