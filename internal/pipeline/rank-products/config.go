// internal/pipeline/rank-products/config.go
package rankproducts

// Config holds the scoring weights and display cap. Weights must sum to
// 1.0 so scores land in [0,1]; the price-fit weight must stay the largest
// single swing after keywords so an in-budget candidate always beats an
// otherwise-identical out-of-budget one.
type Config struct {
	KeywordWeight  float64
	PriceFitWeight float64
	RatingsWeight  float64
	DisplayCount   int
	MaxTokens      int
}
