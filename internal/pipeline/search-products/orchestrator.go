// internal/pipeline/search-products/orchestrator.go
package searchproducts

import (
	"context"
	"regexp"
	"strings"

	"shopping-agent/internal/common/logger"
	"shopping-agent/internal/common/metrics"
	"shopping-agent/internal/models"
)

var whitespacePattern = regexp.MustCompile(`\s+`)

// Orchestrator fetches raw candidates from the primary product source,
// applying the primary/fallback policy, deduplication and the candidate
// cap. It deliberately trades precision for availability: a connectivity
// problem surfaces as synthesized placeholder results, never as an error.
type Orchestrator struct {
	config   *Config
	primary  models.ProductSource
	fallback models.ProductSource
	logger   logger.Logger
}

func NewOrchestrator(config *Config, primary, fallback models.ProductSource, log logger.Logger) *Orchestrator {
	return &Orchestrator{
		config:   config,
		primary:  primary,
		fallback: fallback,
		logger:   log.WithFields(map[string]interface{}{"component": "search-orchestrator"}),
	}
}

// Search returns deduplicated, capped candidates for the intent.
func (o *Orchestrator) Search(ctx context.Context, intent models.SearchIntent) []models.ProductCandidate {
	candidates, err := o.primary.FetchCandidates(ctx, intent)
	if err != nil || len(candidates) == 0 {
		if err != nil {
			o.logger.Warn("primary source failed, using fallback", map[string]interface{}{
				"primary": o.primary.Name(),
				"error":   err.Error(),
			})
		} else {
			o.logger.Info("primary source returned nothing, using fallback", map[string]interface{}{
				"primary": o.primary.Name(),
			})
		}
		metrics.FallbacksTotal.WithLabelValues("search-orchestrator").Inc()

		candidates, err = o.fallback.FetchCandidates(ctx, intent)
		if err != nil {
			o.logger.Error("fallback source failed", map[string]interface{}{
				"fallback": o.fallback.Name(),
				"error":    err.Error(),
			})
			return []models.ProductCandidate{}
		}
	}

	candidates = dedupeByTitle(candidates)

	if len(candidates) > o.config.MaxCandidates {
		candidates = candidates[:o.config.MaxCandidates]
	}

	return candidates
}

// dedupeByTitle keeps the first occurrence of each normalized title,
// preserving provider order. Providers sometimes return the same listing
// twice from different feeds.
func dedupeByTitle(candidates []models.ProductCandidate) []models.ProductCandidate {
	seen := make(map[string]bool, len(candidates))
	out := make([]models.ProductCandidate, 0, len(candidates))
	for _, c := range candidates {
		key := whitespacePattern.ReplaceAllString(strings.TrimSpace(strings.ToLower(c.Title)), " ")
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, c)
	}
	return out
}
