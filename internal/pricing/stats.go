// Package pricing holds the pure price aggregations served by the API.
package pricing

import (
	"math"

	"github.com/01moynul/pricetracker-golang/internal/models"
)

// ComputeStats summarizes the latest new-price quotes and the active used
// listings of one product. Min/max/avg are rounded to cents; the average is
// summed and divided before rounding. Savings are only reported when both a
// new and a used minimum exist.
func ComputeStats(newQuotes []models.PriceQuote, usedListings []models.UsedListing) models.PriceStats {
	stats := models.PriceStats{
		NewCount:  len(newQuotes),
		UsedCount: len(usedListings),
	}

	if len(newQuotes) > 0 {
		prices := make([]float64, len(newQuotes))
		for i, q := range newQuotes {
			prices[i] = q.Price
		}
		stats.NewMinPrice, stats.NewMaxPrice, stats.NewAvgPrice = summarize(prices)
	}

	if len(usedListings) > 0 {
		prices := make([]float64, len(usedListings))
		for i, l := range usedListings {
			prices[i] = l.Price
		}
		stats.UsedMinPrice, stats.UsedMaxPrice, stats.UsedAvgPrice = summarize(prices)
	}

	if stats.NewMinPrice != nil && stats.UsedMinPrice != nil {
		savings := Round(*stats.NewMinPrice-*stats.UsedMinPrice, 2)
		stats.SavingsPotential = &savings
		if *stats.NewMinPrice != 0 {
			pct := Round(savings / *stats.NewMinPrice * 100, 1)
			stats.SavingsPercentage = &pct
		}
	}

	return stats
}

// summarize returns min, max and average of a non-empty slice.
func summarize(prices []float64) (*float64, *float64, *float64) {
	lo, hi, sum := prices[0], prices[0], 0.0
	for _, p := range prices {
		lo = math.Min(lo, p)
		hi = math.Max(hi, p)
		sum += p
	}
	lo = Round(lo, 2)
	hi = Round(hi, 2)
	avg := Round(sum/float64(len(prices)), 2)
	return &lo, &hi, &avg
}

// Round rounds v to the given number of decimal places, half away from zero.
func Round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
