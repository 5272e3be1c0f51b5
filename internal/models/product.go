package models

import (
	"context"
	"encoding/json"
	"time"
)

// SearchIntent is the structured interpretation of a natural-language
// shopping query. Derived fresh per search and immutable once produced.
type SearchIntent struct {
	RawQuery string   `json:"rawQuery"`
	Keywords []string `json:"keywords"`
	PriceMax *float64 `json:"priceMax,omitempty"`
	PriceMin *float64 `json:"priceMin,omitempty"`
	Category string   `json:"category,omitempty"`
}

// HasPriceBounds reports whether any price bound is set.
func (i SearchIntent) HasPriceBounds() bool {
	return i.PriceMin != nil || i.PriceMax != nil
}

// QueryText joins the keywords into the provider query string, preserving
// the order the user wrote them in.
func (i SearchIntent) QueryText() string {
	out := ""
	for idx, kw := range i.Keywords {
		if idx > 0 {
			out += " "
		}
		out += kw
	}
	return out
}

// ProductCandidate is a single product listing returned by a search
// provider, pre-ranking.
type ProductCandidate struct {
	ID           string          `json:"id"`
	Title        string          `json:"title"`
	Description  string          `json:"description,omitempty"`
	Price        string          `json:"price,omitempty"`
	PriceValue   *float64        `json:"priceValue,omitempty"`
	Rating       *float64        `json:"rating,omitempty"`
	ReviewsCount *int            `json:"reviewsCount,omitempty"`
	ImageURL     string          `json:"imageUrl,omitempty"`
	Source       string          `json:"source"`
	URL          string          `json:"url"`
	RawPayload   json.RawMessage `json:"-"`
}

// RankedProduct is a candidate with an assigned relevance score and
// explanation. Both fields are set once by the ranking engine and never
// mutated afterward.
type RankedProduct struct {
	ProductCandidate
	RelevanceScore float64 `json:"relevanceScore"`
	Explanation    string  `json:"explanation"`
}

// SearchResult is the terminal, immutable artifact returned to the caller.
// Products are ordered by descending relevance score.
type SearchResult struct {
	Query       string          `json:"query"`
	Products    []RankedProduct `json:"products"`
	Explanation string          `json:"explanation"`
	SearchID    string          `json:"searchId"`
	Timestamp   time.Time       `json:"timestamp"`
}

// ProductSource is the capability implemented by each product-search
// provider, mapping provider responses to the shared candidate shape at
// the boundary.
type ProductSource interface {
	Name() string
	FetchCandidates(ctx context.Context, intent SearchIntent) ([]ProductCandidate, error)
}
