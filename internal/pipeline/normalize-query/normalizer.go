// internal/pipeline/normalize-query/normalizer.go
package normalizequery

import (
	"regexp"
	"strconv"
	"strings"

	"shopping-agent/internal/models"
)

// Bounded-price phrases. The currency marker and thousands separators are
// tolerated so "under ₹20,000" and "under 20000" parse the same.
var (
	ceilingPattern = regexp.MustCompile(`(?i)\b(?:under|below|less than|upto|up to)\s*(?:rs\.?|inr|₹|\$)?\s*([0-9][0-9,]*(?:\.[0-9]+)?)`)
	floorPattern   = regexp.MustCompile(`(?i)\b(?:above|over|more than)\s*(?:rs\.?|inr|₹|\$)?\s*([0-9][0-9,]*(?:\.[0-9]+)?)`)
	tokenPattern   = regexp.MustCompile(`[a-z0-9]+`)
)

var stopWords = map[string]bool{
	"a": true, "an": true, "the": true, "i": true, "me": true, "my": true,
	"is": true, "it": true, "in": true, "on": true, "of": true, "to": true,
	"for": true, "and": true, "or": true, "with": true, "that": true,
	"need": true, "want": true, "buy": true, "find": true, "looking": true,
	"search": true, "show": true, "get": true, "some": true, "please": true,
	"recommend": true, "suggest": true, "am": true, "you": true, "can": true,
}

// Product-category cues. First hit wins; the matched word doubles as the
// category hint passed downstream.
var categoryCues = []string{
	"smartphone", "phone", "mobile", "iphone", "android",
	"laptop", "computer", "macbook", "chromebook",
	"speaker", "soundbar",
	"earphone", "headphone", "earbud", "airpod",
	"tablet", "ipad",
	"smartwatch", "watch", "tracker",
	"camera", "dslr", "mirrorless",
	"tv", "television",
	"mouse", "keyboard", "webcam",
	"charger", "powerbank", "cable",
}

// Normalize turns a raw query (plus, for chat refinements, the prior
// intent) into a structured search intent. It never fails: a query with no
// extractable keyword falls back to the entire raw string as one keyword.
func Normalize(rawQuery string, prior *models.SearchIntent) models.SearchIntent {
	intent := models.SearchIntent{
		RawQuery: rawQuery,
		Keywords: []string{},
	}

	work := rawQuery

	if m := ceilingPattern.FindStringSubmatch(work); m != nil {
		if v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64); err == nil {
			intent.PriceMax = &v
			work = strings.Replace(work, m[0], " ", 1)
		}
	}
	if m := floorPattern.FindStringSubmatch(work); m != nil {
		if v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64); err == nil {
			intent.PriceMin = &v
			work = strings.Replace(work, m[0], " ", 1)
		}
	}

	for _, tok := range tokenPattern.FindAllString(strings.ToLower(work), -1) {
		if stopWords[tok] {
			continue
		}
		intent.Keywords = append(intent.Keywords, tok)
	}

	intent.Category = detectCategory(strings.ToLower(rawQuery))

	// Chat refinement: when the new turn carries no fresh price or category
	// signal, the prior constraints survive and only the keywords change.
	if prior != nil {
		if intent.PriceMax == nil && intent.PriceMin == nil {
			intent.PriceMax = prior.PriceMax
			intent.PriceMin = prior.PriceMin
		}
		if intent.Category == "" {
			intent.Category = prior.Category
		}
	}

	if len(intent.Keywords) == 0 {
		fallback := strings.TrimSpace(rawQuery)
		if fallback != "" {
			intent.Keywords = []string{fallback}
		}
	}

	return intent
}

func detectCategory(text string) string {
	for _, cue := range categoryCues {
		if strings.Contains(text, cue) {
			return cue
		}
	}
	return ""
}
