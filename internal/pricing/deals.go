package pricing

import (
	"sort"

	"github.com/01moynul/pricetracker-golang/internal/models"
)

// BestDeals keeps the cheapest retailer quote of every product and returns
// the cheapest products first, at most limit of them. Ties on price are
// broken by product id so the output is stable.
func BestDeals(candidates []models.DealCandidate, limit int) []models.DealCandidate {
	best := make(map[int64]models.DealCandidate, len(candidates))
	for _, c := range candidates {
		current, ok := best[c.ProductID]
		if !ok || c.Price < current.Price {
			best[c.ProductID] = c
		}
	}

	deals := make([]models.DealCandidate, 0, len(best))
	for _, d := range best {
		deals = append(deals, d)
	}
	sort.Slice(deals, func(i, j int) bool {
		if deals[i].Price != deals[j].Price {
			return deals[i].Price < deals[j].Price
		}
		return deals[i].ProductID < deals[j].ProductID
	})

	if limit >= 0 && len(deals) > limit {
		deals = deals[:limit]
	}
	return deals
}
