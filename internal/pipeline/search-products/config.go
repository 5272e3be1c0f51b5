// internal/pipeline/search-products/config.go
package searchproducts

type Config struct {
	// MaxCandidates bounds the cost of the downstream ranking and
	// explanation step.
	MaxCandidates int
}
