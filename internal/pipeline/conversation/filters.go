// internal/pipeline/conversation/filters.go
package conversation

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"shopping-agent/internal/models"
)

const priceFilterName = "Price Range"

var (
	underOptionPattern   = regexp.MustCompile(`^Under (\d+)$`)
	betweenOptionPattern = regexp.MustCompile(`^(\d+)-(\d+)$`)
	aboveOptionPattern   = regexp.MustCompile(`^Above (\d+)$`)
)

// derivePriceFilter builds price-bracket quick-reply options from the
// candidate set, or nil when the set is too small, too uniform, or the
// brackets collapse. A filter with fewer than two options is meaningless
// and is suppressed here.
func (m *Machine) derivePriceFilter(candidates []models.ProductCandidate) *models.PendingFilter {
	if len(candidates) < m.config.FilterThreshold {
		return nil
	}

	lo := math.Inf(1)
	hi := math.Inf(-1)
	priced := 0
	for _, c := range candidates {
		if c.PriceValue == nil {
			continue
		}
		priced++
		if *c.PriceValue < lo {
			lo = *c.PriceValue
		}
		if *c.PriceValue > hi {
			hi = *c.PriceValue
		}
	}
	if priced < 2 || lo <= 0 || hi/lo < m.config.FilterPriceRatio {
		return nil
	}

	cut1 := niceRound(lo + (hi-lo)/3)
	cut2 := niceRound(lo + 2*(hi-lo)/3)
	if cut1 <= 0 || cut2 <= cut1 {
		return nil
	}

	return &models.PendingFilter{
		Name: priceFilterName,
		Options: []string{
			fmt.Sprintf("Under %d", cut1),
			fmt.Sprintf("%d-%d", cut1, cut2),
			fmt.Sprintf("Above %d", cut2),
		},
	}
}

// niceRound rounds to a friendly bracket boundary: one leading digit plus
// zeros (2748 -> 3000, 412 -> 400).
func niceRound(v float64) int {
	if v < 10 {
		return int(math.Round(v))
	}
	magnitude := math.Pow(10, math.Floor(math.Log10(v)))
	return int(math.Round(v/magnitude) * magnitude)
}

// matchedOption returns the pending filter option the turn selects, if
// any. Matching is exact after trimming, as the options are rendered as
// quick-reply buttons.
func matchedOption(filter *models.PendingFilter, turn string) (string, bool) {
	if filter == nil {
		return "", false
	}
	trimmed := strings.TrimSpace(turn)
	for _, opt := range filter.Options {
		if trimmed == opt {
			return opt, true
		}
	}
	return "", false
}

// applyFilterOption merges a selected option into the prior intent. Price
// brackets become bounds; anything else joins the keywords.
func applyFilterOption(prior models.SearchIntent, option string) models.SearchIntent {
	intent := prior
	intent.RawQuery = prior.RawQuery + " " + option

	if m := underOptionPattern.FindStringSubmatch(option); m != nil {
		v, _ := strconv.ParseFloat(m[1], 64)
		intent.PriceMax = &v
		intent.PriceMin = nil
		return intent
	}
	if m := betweenOptionPattern.FindStringSubmatch(option); m != nil {
		lo, _ := strconv.ParseFloat(m[1], 64)
		hi, _ := strconv.ParseFloat(m[2], 64)
		intent.PriceMin = &lo
		intent.PriceMax = &hi
		return intent
	}
	if m := aboveOptionPattern.FindStringSubmatch(option); m != nil {
		v, _ := strconv.ParseFloat(m[1], 64)
		intent.PriceMin = &v
		intent.PriceMax = nil
		return intent
	}

	keywords := make([]string, len(prior.Keywords), len(prior.Keywords)+1)
	copy(keywords, prior.Keywords)
	intent.Keywords = append(keywords, strings.ToLower(option))
	return intent
}
