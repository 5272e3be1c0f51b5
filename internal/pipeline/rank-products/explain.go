// internal/pipeline/rank-products/explain.go
package rankproducts

import (
	"context"
	"fmt"
	"strings"

	"shopping-agent/internal/common/metrics"
	"shopping-agent/internal/models"
)

// explainProduct asks the language model why this product matches the
// query, falling back to a deterministic template built from the
// candidate's attributes.
func (e *Engine) explainProduct(ctx context.Context, intent models.SearchIntent, p models.RankedProduct) string {
	prompt := e.buildProductPrompt(intent, p)
	text, err := e.llm.GenerateText(ctx, prompt, e.config.MaxTokens)
	if err != nil {
		e.logger.Warn("explanation call failed, using template", map[string]interface{}{
			"productId": p.ID,
			"error":     err.Error(),
		})
		metrics.FallbacksTotal.WithLabelValues("explanation").Inc()
		return templateProductExplanation(intent, p)
	}
	return text
}

// explainResult produces the single aggregate explanation for the result
// set, with the same fallback discipline.
func (e *Engine) explainResult(ctx context.Context, intent models.SearchIntent, products []models.RankedProduct) string {
	if len(products) == 0 {
		return fmt.Sprintf("No matches found for %q. Try different keywords or a wider price range.", intent.RawQuery)
	}

	prompt := e.buildResultPrompt(intent, products)
	text, err := e.llm.GenerateText(ctx, prompt, e.config.MaxTokens)
	if err != nil {
		e.logger.Warn("aggregate explanation call failed, using template", map[string]interface{}{
			"error": err.Error(),
		})
		metrics.FallbacksTotal.WithLabelValues("explanation").Inc()
		return fmt.Sprintf("Found %d products matching your criteria: %s", len(products), intent.RawQuery)
	}
	return text
}

func (e *Engine) buildProductPrompt(intent models.SearchIntent, p models.RankedProduct) string {
	var parts []string
	parts = append(parts, "You are a shopping assistant. In one or two sentences, explain why this product fits the user's query.")
	parts = append(parts, fmt.Sprintf("Query: %q", intent.RawQuery))
	parts = append(parts, fmt.Sprintf("Product: %s", p.Title))
	if p.Price != "" {
		parts = append(parts, fmt.Sprintf("Price: %s", p.Price))
	}
	if p.Description != "" {
		parts = append(parts, fmt.Sprintf("Description: %s", p.Description))
	}
	if p.Rating != nil {
		parts = append(parts, fmt.Sprintf("Rating: %.1f/5", *p.Rating))
	}
	parts = append(parts, "Be specific and concise. Plain text only.")
	return strings.Join(parts, "\n")
}

func (e *Engine) buildResultPrompt(intent models.SearchIntent, products []models.RankedProduct) string {
	var parts []string
	parts = append(parts, "You are a shopping assistant. Summarize this result set for the user in one or two sentences.")
	parts = append(parts, fmt.Sprintf("Query: %q", intent.RawQuery))
	for i, p := range products {
		parts = append(parts, fmt.Sprintf("%d. %s (%s)", i+1, p.Title, p.Price))
	}
	parts = append(parts, "Plain text only.")
	return strings.Join(parts, "\n")
}

// templateProductExplanation is the exactly-reproducible degraded form,
// citing matched keywords and the price relation to the budget.
func templateProductExplanation(intent models.SearchIntent, p models.RankedProduct) string {
	haystack := strings.ToLower(p.Title + " " + p.Description)
	var matched []string
	for _, kw := range intent.Keywords {
		if strings.Contains(haystack, strings.ToLower(kw)) {
			matched = append(matched, kw)
		}
	}

	var parts []string
	if len(matched) > 0 {
		parts = append(parts, fmt.Sprintf("Matches %s", strings.Join(matched, ", ")))
	} else {
		parts = append(parts, "Related to your search")
	}

	if p.PriceValue != nil && intent.PriceMax != nil {
		if *p.PriceValue <= *intent.PriceMax {
			parts = append(parts, fmt.Sprintf("within your budget at %s", p.Price))
		} else {
			parts = append(parts, fmt.Sprintf("above your budget at %s", p.Price))
		}
	} else if p.Price != "" {
		parts = append(parts, fmt.Sprintf("priced at %s", p.Price))
	}

	if p.Rating != nil {
		parts = append(parts, fmt.Sprintf("rated %.1f/5", *p.Rating))
	}

	return strings.Join(parts, ", ") + "."
}
