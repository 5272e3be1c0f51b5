// internal/pipeline/rank-products/score.go
package rankproducts

import (
	"strings"

	"shopping-agent/internal/models"
)

// reviewHalfSaturation is the review count at which the review factor
// reaches half of its maximum. Diminishing returns beyond it.
const reviewHalfSaturation = 50.0

// score combines keyword overlap, price fit and ratings into [0,1]. Each
// term is monotonic; weights come from config.
func (e *Engine) score(intent models.SearchIntent, c models.ProductCandidate) float64 {
	return e.config.KeywordWeight*keywordOverlap(intent, c) +
		e.config.PriceFitWeight*priceFit(intent, c) +
		e.config.RatingsWeight*ratingsTerm(c)
}

// keywordOverlap is the fraction of intent keywords found in the
// candidate's title or description, case-insensitive.
func keywordOverlap(intent models.SearchIntent, c models.ProductCandidate) float64 {
	if len(intent.Keywords) == 0 {
		return 0
	}
	haystack := strings.ToLower(c.Title + " " + c.Description)
	matched := 0
	for _, kw := range intent.Keywords {
		if strings.Contains(haystack, strings.ToLower(kw)) {
			matched++
		}
	}
	return float64(matched) / float64(len(intent.Keywords))
}

// priceFit penalizes candidates outside the intent's bounds with a fixed
// score drop rather than excluding them, so over-constrained queries still
// return something. An unparsable price under active bounds sits between
// the in-budget and out-of-budget cases.
func priceFit(intent models.SearchIntent, c models.ProductCandidate) float64 {
	if !intent.HasPriceBounds() {
		return 1.0
	}
	if c.PriceValue == nil {
		return 0.5
	}
	v := *c.PriceValue
	if intent.PriceMax != nil && v > *intent.PriceMax {
		return 0.0
	}
	if intent.PriceMin != nil && v < *intent.PriceMin {
		return 0.0
	}
	return 1.0
}

// ratingsTerm rewards higher rating and higher review count, with review
// influence saturating so a thousand extra reviews matter less than the
// first fifty.
func ratingsTerm(c models.ProductCandidate) float64 {
	if c.Rating == nil {
		return 0
	}
	rating := *c.Rating / 5.0
	if rating < 0 {
		rating = 0
	}
	if rating > 1 {
		rating = 1
	}

	reviewFactor := 0.0
	if c.ReviewsCount != nil && *c.ReviewsCount > 0 {
		n := float64(*c.ReviewsCount)
		reviewFactor = n / (n + reviewHalfSaturation)
	}

	return rating * (0.5 + 0.5*reviewFactor)
}
