// internal/pipeline/conversation/machine_test.go
package conversation

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopping-agent/internal/common/logger"
	"shopping-agent/internal/models"
)

type stubSearcher struct {
	candidates []models.ProductCandidate
	lastIntent models.SearchIntent
}

func (s *stubSearcher) Search(_ context.Context, intent models.SearchIntent) []models.ProductCandidate {
	s.lastIntent = intent
	return s.candidates
}

type stubRanker struct{}

func (r *stubRanker) RankAndExplain(_ context.Context, intent models.SearchIntent, candidates []models.ProductCandidate) models.SearchResult {
	products := make([]models.RankedProduct, 0, len(candidates))
	for _, c := range candidates {
		products = append(products, models.RankedProduct{ProductCandidate: c, RelevanceScore: 0.5})
	}
	explanation := fmt.Sprintf("Found %d products for %s", len(products), intent.RawQuery)
	if len(products) == 0 {
		explanation = fmt.Sprintf("No matches found for %q.", intent.RawQuery)
	}
	return models.SearchResult{
		Query:       intent.RawQuery,
		Products:    products,
		Explanation: explanation,
	}
}

func pricedCandidates(prices ...float64) []models.ProductCandidate {
	out := make([]models.ProductCandidate, 0, len(prices))
	for i, p := range prices {
		price := p
		out = append(out, models.ProductCandidate{
			ID:         fmt.Sprintf("c%d", i),
			Title:      fmt.Sprintf("Product %d", i),
			PriceValue: &price,
		})
	}
	return out
}

func newTestMachine(t *testing.T, searcher Searcher) *Machine {
	return NewMachine(
		&Config{FilterThreshold: 6, FilterPriceRatio: 3.0},
		searcher, &stubRanker{}, logger.NewTestLogger(t),
	)
}

func TestAdvance_SmalltalkStaysIdle(t *testing.T) {
	searcher := &stubSearcher{}
	machine := newTestMachine(t, searcher)
	state := models.NewConversationState("s-1")

	state, reply := machine.Advance(context.Background(), state, "hello")

	assert.Equal(t, models.PhaseIdle, state.Phase)
	assert.False(t, reply.HasProducts)
	assert.Contains(t, reply.Message, "help you find products")
	assert.Nil(t, state.LastIntent)
	require.Len(t, state.Transcript, 2)
	assert.Equal(t, models.RoleUser, state.Transcript[0].Role)
	assert.Equal(t, models.RoleAgent, state.Transcript[1].Role)
}

func TestAdvance_FirstQueryMovesToRefining(t *testing.T) {
	searcher := &stubSearcher{candidates: pricedCandidates(42999, 56999)}
	machine := newTestMachine(t, searcher)
	state := models.NewConversationState("s-1")

	state, reply := machine.Advance(context.Background(), state, "gaming laptop under 50000")

	assert.Equal(t, models.PhaseRefining, state.Phase)
	assert.True(t, reply.HasProducts)
	assert.Len(t, reply.Products, 2)
	require.NotNil(t, state.LastIntent)
	require.NotNil(t, state.LastIntent.PriceMax)
	assert.InDelta(t, 50000, *state.LastIntent.PriceMax, 0.001)
	assert.Equal(t, []string{"gaming", "laptop"}, state.LastIntent.Keywords)
}

func TestAdvance_EmptyResultAtIdleStaysIdle(t *testing.T) {
	searcher := &stubSearcher{}
	machine := newTestMachine(t, searcher)
	state := models.NewConversationState("s-1")

	state, reply := machine.Advance(context.Background(), state, "quantum flux capacitor")

	assert.Equal(t, models.PhaseIdle, state.Phase)
	assert.False(t, reply.HasProducts)
	assert.Contains(t, reply.Message, "No matches found")
}

func TestAdvance_WideResultOffersPriceFilter(t *testing.T) {
	searcher := &stubSearcher{candidates: pricedCandidates(500, 800, 1200, 2000, 3500, 6000)}
	machine := newTestMachine(t, searcher)
	state := models.NewConversationState("s-1")

	state, reply := machine.Advance(context.Background(), state, "headphones")

	assert.Equal(t, models.PhaseAwaitingClarification, state.Phase)
	require.NotNil(t, state.PendingFilter)
	assert.Equal(t, "Price Range", reply.FilterName)
	require.Len(t, reply.FilterOptions, 3)
	assert.Equal(t, "Under 2000", reply.FilterOptions[0])
	assert.Equal(t, "2000-4000", reply.FilterOptions[1])
	assert.Equal(t, "Above 4000", reply.FilterOptions[2])
	assert.Contains(t, reply.Message, "Narrow it down")
}

func TestAdvance_NarrowResultSkipsFilter(t *testing.T) {
	// spread below the ratio threshold
	searcher := &stubSearcher{candidates: pricedCandidates(1000, 1100, 1200, 1300, 1400, 1500)}
	machine := newTestMachine(t, searcher)
	state := models.NewConversationState("s-1")

	state, reply := machine.Advance(context.Background(), state, "headphones")

	assert.Equal(t, models.PhaseRefining, state.Phase)
	assert.Nil(t, state.PendingFilter)
	assert.Empty(t, reply.FilterOptions)
}

func TestAdvance_FilterSelectionAppliesBounds(t *testing.T) {
	searcher := &stubSearcher{candidates: pricedCandidates(1500, 3200)}
	machine := newTestMachine(t, searcher)

	state := models.NewConversationState("s-1")
	state.Phase = models.PhaseAwaitingClarification
	state.LastIntent = &models.SearchIntent{
		RawQuery: "headphones",
		Keywords: []string{"headphones"},
	}
	state.PendingFilter = &models.PendingFilter{
		Name:    "Price Range",
		Options: []string{"Under 1000", "1000-5000", "Above 5000"},
	}

	state, reply := machine.Advance(context.Background(), state, "1000-5000")

	assert.Equal(t, models.PhaseRefining, state.Phase)
	assert.Nil(t, state.PendingFilter)
	assert.True(t, reply.HasProducts)

	require.NotNil(t, state.LastIntent)
	require.NotNil(t, state.LastIntent.PriceMin)
	require.NotNil(t, state.LastIntent.PriceMax)
	assert.InDelta(t, 1000, *state.LastIntent.PriceMin, 0.001)
	assert.InDelta(t, 5000, *state.LastIntent.PriceMax, 0.001)
	assert.Equal(t, []string{"headphones"}, state.LastIntent.Keywords)

	// the searcher saw the narrowed intent
	require.NotNil(t, searcher.lastIntent.PriceMax)
	assert.InDelta(t, 5000, *searcher.lastIntent.PriceMax, 0.001)
}

func TestAdvance_FilterSelectionNeverReoffersFilter(t *testing.T) {
	// A source that ignores price bounds keeps returning the same wide
	// set. Answering the filter must still settle into refining instead
	// of asking the same question again.
	wide := pricedCandidates(500, 800, 1200, 2000, 3500, 6000)
	searcher := &stubSearcher{candidates: wide}
	machine := newTestMachine(t, searcher)

	state := models.NewConversationState("s-1")
	state, _ = machine.Advance(context.Background(), state, "headphones")
	require.Equal(t, models.PhaseAwaitingClarification, state.Phase)
	require.NotNil(t, state.PendingFilter)

	state, reply := machine.Advance(context.Background(), state, "Above 4000")

	assert.Equal(t, models.PhaseRefining, state.Phase)
	assert.Nil(t, state.PendingFilter)
	assert.Empty(t, reply.FilterOptions)
	assert.NotContains(t, reply.Message, "Narrow it down")
	require.NotNil(t, state.LastIntent.PriceMin)
	assert.InDelta(t, 4000, *state.LastIntent.PriceMin, 0.001)
}

func TestAdvance_UnderAndAboveOptions(t *testing.T) {
	searcher := &stubSearcher{candidates: pricedCandidates(800)}
	machine := newTestMachine(t, searcher)

	baseState := func() models.ConversationState {
		state := models.NewConversationState("s-1")
		state.Phase = models.PhaseAwaitingClarification
		state.LastIntent = &models.SearchIntent{RawQuery: "headphones", Keywords: []string{"headphones"}}
		state.PendingFilter = &models.PendingFilter{
			Name:    "Price Range",
			Options: []string{"Under 1000", "1000-5000", "Above 5000"},
		}
		return state
	}

	under, _ := machine.Advance(context.Background(), baseState(), "Under 1000")
	require.NotNil(t, under.LastIntent.PriceMax)
	assert.InDelta(t, 1000, *under.LastIntent.PriceMax, 0.001)
	assert.Nil(t, under.LastIntent.PriceMin)

	above, _ := machine.Advance(context.Background(), baseState(), "  Above 5000 ")
	require.NotNil(t, above.LastIntent.PriceMin)
	assert.InDelta(t, 5000, *above.LastIntent.PriceMin, 0.001)
	assert.Nil(t, above.LastIntent.PriceMax)
}

func TestAdvance_NonOptionTurnAbandonsFilter(t *testing.T) {
	searcher := &stubSearcher{candidates: pricedCandidates(2500)}
	machine := newTestMachine(t, searcher)

	state := models.NewConversationState("s-1")
	state.Phase = models.PhaseAwaitingClarification
	state.LastIntent = &models.SearchIntent{RawQuery: "headphones", Keywords: []string{"headphones"}}
	state.PendingFilter = &models.PendingFilter{
		Name:    "Price Range",
		Options: []string{"Under 1000", "1000-5000", "Above 5000"},
	}

	state, _ = machine.Advance(context.Background(), state, "actually show me earbuds under 2000")

	assert.Equal(t, models.PhaseRefining, state.Phase)
	assert.Nil(t, state.PendingFilter)
	require.NotNil(t, state.LastIntent.PriceMax)
	assert.InDelta(t, 2000, *state.LastIntent.PriceMax, 0.001)
	assert.Contains(t, state.LastIntent.Keywords, "earbuds")
}

func TestAdvance_RefinementCarriesPriorBounds(t *testing.T) {
	searcher := &stubSearcher{candidates: pricedCandidates(1800)}
	machine := newTestMachine(t, searcher)

	max := 3000.0
	state := models.NewConversationState("s-1")
	state.Phase = models.PhaseRefining
	state.LastIntent = &models.SearchIntent{
		RawQuery: "wireless headphones under 3000",
		Keywords: []string{"wireless", "headphones"},
		PriceMax: &max,
	}

	state, _ = machine.Advance(context.Background(), state, "with noise cancellation")

	require.NotNil(t, state.LastIntent.PriceMax)
	assert.InDelta(t, 3000, *state.LastIntent.PriceMax, 0.001)
	assert.Contains(t, state.LastIntent.Keywords, "noise")
}

func TestDerivePriceFilter_SuppressedCases(t *testing.T) {
	machine := newTestMachine(t, &stubSearcher{})

	// below threshold
	assert.Nil(t, machine.derivePriceFilter(pricedCandidates(100, 10000)))

	// narrow spread
	assert.Nil(t, machine.derivePriceFilter(pricedCandidates(1000, 1100, 1200, 1300, 1400, 1500)))

	// too few priced candidates
	unpriced := make([]models.ProductCandidate, 6)
	for i := range unpriced {
		unpriced[i] = models.ProductCandidate{ID: fmt.Sprintf("u%d", i), Title: "No price"}
	}
	assert.Nil(t, machine.derivePriceFilter(unpriced))
}
