// internal/pipeline/rank-products/engine.go
package rankproducts

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"shopping-agent/internal/common/logger"
	"shopping-agent/internal/models"
)

// TextGenerator is the language-model capability the engine needs.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// Engine scores, sorts and truncates candidates against the intent, then
// attaches natural-language explanations. Explanations are a UX
// enhancement, never a hard dependency: every provider failure degrades to
// a deterministic template. The engine never fails outward.
type Engine struct {
	config *Config
	llm    TextGenerator
	logger logger.Logger
}

func NewEngine(config *Config, llm TextGenerator, log logger.Logger) *Engine {
	return &Engine{
		config: config,
		llm:    llm,
		logger: log.WithFields(map[string]interface{}{"component": "ranking-engine"}),
	}
}

// RankAndExplain produces the terminal search result for the caller.
func (e *Engine) RankAndExplain(ctx context.Context, intent models.SearchIntent, candidates []models.ProductCandidate) models.SearchResult {
	scored := make([]models.RankedProduct, 0, len(candidates))
	for _, c := range candidates {
		scored = append(scored, models.RankedProduct{
			ProductCandidate: c,
			RelevanceScore:   e.score(intent, c),
		})
	}

	// Stable sort keeps output deterministic for identical inputs: ties
	// break by original candidate order.
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].RelevanceScore > scored[j].RelevanceScore
	})

	if len(scored) > e.config.DisplayCount {
		scored = scored[:e.config.DisplayCount]
	}

	for i := range scored {
		scored[i].Explanation = e.explainProduct(ctx, intent, scored[i])
	}

	result := models.SearchResult{
		Query:       intent.RawQuery,
		Products:    scored,
		Explanation: e.explainResult(ctx, intent, scored),
		SearchID:    uuid.NewString(),
		Timestamp:   time.Now().UTC(),
	}

	e.logger.Info("ranking completed", map[string]interface{}{
		"query":        intent.RawQuery,
		"productCount": len(scored),
		"searchId":     result.SearchID,
	})

	return result
}
