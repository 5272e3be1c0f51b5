// internal/pipeline/conversation/config.go
package conversation

type Config struct {
	// FilterThreshold is the minimum candidate count before a
	// clarification filter is worth offering.
	FilterThreshold int
	// FilterPriceRatio is the max/min price spread beyond which the
	// result set counts as ambiguous.
	FilterPriceRatio float64
}
