// internal/providers/serpapi/client.go
package serpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	stderrors "shopping-agent/internal/common/errors"
	"shopping-agent/internal/common/logger"
	"shopping-agent/internal/common/metrics"
	"shopping-agent/internal/models"
)

const ProviderName = "serpapi"

// Client is the product-search provider adapter for a SerpAPI-compatible
// Google Shopping endpoint. It implements models.ProductSource.
type Client struct {
	config *Config
	client *http.Client
	logger logger.Logger
}

func NewClient(config *Config, log logger.Logger) *Client {
	return &Client{
		config: config,
		client: &http.Client{
			Timeout: config.Timeout,
		},
		logger: log.WithFields(map[string]interface{}{"provider": ProviderName}),
	}
}

func (c *Client) Name() string {
	return ProviderName
}

// FetchCandidates issues a single shopping search for the intent. Every
// failure mode (missing key, timeout, non-success status, undecodable body)
// maps to a provider-unavailable error with no partial data; the caller
// applies fallback policy.
func (c *Client) FetchCandidates(ctx context.Context, intent models.SearchIntent) ([]models.ProductCandidate, error) {
	if len(intent.Keywords) == 0 {
		return nil, stderrors.NewValidationError("intent has no keywords")
	}
	if c.config.APIKey == "" {
		return nil, stderrors.NewProviderUnavailableError(ProviderName, fmt.Errorf("api key not configured"))
	}

	searchURL, err := c.buildSearchURL(intent)
	if err != nil {
		return nil, stderrors.NewProviderUnavailableError(ProviderName, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, stderrors.NewProviderUnavailableError(ProviderName, err)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	metrics.ProviderCallDuration.WithLabelValues(ProviderName).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ProviderCallsTotal.WithLabelValues(ProviderName, "error").Inc()
		if ctx.Err() == context.DeadlineExceeded ||
			strings.Contains(err.Error(), "timeout") ||
			strings.Contains(err.Error(), "deadline") ||
			strings.Contains(err.Error(), "Client.Timeout") {
			return nil, stderrors.NewSearchTimeoutError(ProviderName)
		}
		return nil, stderrors.NewProviderUnavailableError(ProviderName, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.ProviderCallsTotal.WithLabelValues(ProviderName, strconv.Itoa(resp.StatusCode)).Inc()
		return nil, stderrors.NewProviderUnavailableError(ProviderName, fmt.Errorf("search API returned %d", resp.StatusCode))
	}

	var apiResponse struct {
		ShoppingResults []shoppingResult `json:"shopping_results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResponse); err != nil {
		metrics.ProviderCallsTotal.WithLabelValues(ProviderName, "decode_error").Inc()
		return nil, stderrors.NewProviderUnavailableError(ProviderName, err)
	}
	metrics.ProviderCallsTotal.WithLabelValues(ProviderName, "ok").Inc()

	candidates := c.mapResults(apiResponse.ShoppingResults)

	c.logger.Info("shopping search completed", map[string]interface{}{
		"query":          intent.QueryText(),
		"candidateCount": len(candidates),
	})

	return candidates, nil
}

// shoppingResult mirrors one entry of SerpAPI's shopping_results array.
// Only the fields the pipeline consumes are declared; everything is
// optional except an id.
type shoppingResult struct {
	ProductID string   `json:"product_id"`
	Position  int      `json:"position"`
	Title     string   `json:"title"`
	Price     string   `json:"price"`
	Snippet   string   `json:"snippet"`
	Thumbnail string   `json:"thumbnail"`
	Rating    *float64 `json:"rating"`
	Reviews   *int     `json:"reviews"`
	Source    string   `json:"source"`
	Link      string   `json:"link"`
}

func (c *Client) buildSearchURL(intent models.SearchIntent) (string, error) {
	baseURL, err := url.Parse(c.config.BaseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base url %q: %w", c.config.BaseURL, err)
	}
	params := url.Values{}
	params.Add("engine", "google_shopping")
	params.Add("q", intent.QueryText())
	params.Add("api_key", c.config.APIKey)
	params.Add("num", strconv.Itoa(c.config.MaxResults))
	params.Add("gl", c.config.Country)
	params.Add("hl", c.config.Language)
	if intent.PriceMin != nil {
		params.Add("min_price", strconv.FormatFloat(*intent.PriceMin, 'f', -1, 64))
	}
	if intent.PriceMax != nil {
		params.Add("max_price", strconv.FormatFloat(*intent.PriceMax, 'f', -1, 64))
	}
	baseURL.RawQuery = params.Encode()
	return baseURL.String(), nil
}

// mapResults translates provider entries into candidates. Parsing is
// defensive: absent optional fields stay unset; an entry without a usable
// id is dropped and logged, never an error.
func (c *Client) mapResults(results []shoppingResult) []models.ProductCandidate {
	candidates := make([]models.ProductCandidate, 0, len(results))
	for _, r := range results {
		id := r.ProductID
		if id == "" && r.Position > 0 {
			id = ProviderName + "-" + strconv.Itoa(r.Position)
		}
		if id == "" {
			incErr := stderrors.NewInternalInconsistencyError("shopping result without id")
			c.logger.Warn("dropping candidate", map[string]interface{}{
				"title": r.Title,
				"error": incErr.Error(),
			})
			continue
		}

		raw, _ := json.Marshal(r)
		candidates = append(candidates, models.ProductCandidate{
			ID:           id,
			Title:        r.Title,
			Description:  r.Snippet,
			Price:        r.Price,
			PriceValue:   models.ParsePrice(r.Price),
			Rating:       r.Rating,
			ReviewsCount: r.Reviews,
			ImageURL:     r.Thumbnail,
			Source:       r.Source,
			URL:          r.Link,
			RawPayload:   raw,
		})
	}
	return candidates
}
