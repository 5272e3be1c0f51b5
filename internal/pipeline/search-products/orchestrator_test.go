// internal/pipeline/search-products/orchestrator_test.go
package searchproducts

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	stderrors "shopping-agent/internal/common/errors"
	"shopping-agent/internal/common/logger"
	"shopping-agent/internal/models"
)

type stubSource struct {
	name       string
	candidates []models.ProductCandidate
	err        error
	calls      int
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) FetchCandidates(_ context.Context, _ models.SearchIntent) ([]models.ProductCandidate, error) {
	s.calls++
	return s.candidates, s.err
}

func candidate(id, title string) models.ProductCandidate {
	return models.ProductCandidate{ID: id, Title: title, Source: "test"}
}

func newTestOrchestrator(t *testing.T, primary, fallback models.ProductSource, maxCandidates int) *Orchestrator {
	return NewOrchestrator(&Config{MaxCandidates: maxCandidates}, primary, fallback, logger.NewTestLogger(t))
}

func TestSearch_PrimaryResultsPassThrough(t *testing.T) {
	primary := &stubSource{name: "primary", candidates: []models.ProductCandidate{
		candidate("p1", "Wireless Mouse"),
		candidate("p2", "Gaming Keyboard"),
	}}
	fallback := &stubSource{name: "fallback"}

	o := newTestOrchestrator(t, primary, fallback, 20)
	got := o.Search(context.Background(), models.SearchIntent{Keywords: []string{"mouse"}})

	require.Len(t, got, 2)
	assert.Equal(t, "p1", got[0].ID)
	assert.Zero(t, fallback.calls)
}

func TestSearch_FallbackOnPrimaryError(t *testing.T) {
	primary := &stubSource{name: "primary", err: stderrors.NewSearchTimeoutError("primary")}
	fallback := &stubSource{name: "fallback", candidates: []models.ProductCandidate{
		candidate("f1", "Fallback Mouse"),
	}}

	o := newTestOrchestrator(t, primary, fallback, 20)
	got := o.Search(context.Background(), models.SearchIntent{Keywords: []string{"mouse"}})

	require.Len(t, got, 1)
	assert.Equal(t, "f1", got[0].ID)
	assert.Equal(t, 1, fallback.calls)
}

func TestSearch_FallbackOnEmptyPrimary(t *testing.T) {
	primary := &stubSource{name: "primary"}
	fallback := &stubSource{name: "fallback", candidates: []models.ProductCandidate{
		candidate("f1", "Fallback Mouse"),
	}}

	o := newTestOrchestrator(t, primary, fallback, 20)
	got := o.Search(context.Background(), models.SearchIntent{Keywords: []string{"mouse"}})

	require.Len(t, got, 1)
	assert.Equal(t, "f1", got[0].ID)
}

func TestSearch_BothSourcesFailReturnsEmpty(t *testing.T) {
	primary := &stubSource{name: "primary", err: stderrors.NewProviderUnavailableError("primary", fmt.Errorf("down"))}
	fallback := &stubSource{name: "fallback", err: fmt.Errorf("also down")}

	o := newTestOrchestrator(t, primary, fallback, 20)
	got := o.Search(context.Background(), models.SearchIntent{Keywords: []string{"mouse"}})

	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestSearch_DedupesByNormalizedTitle(t *testing.T) {
	primary := &stubSource{name: "primary", candidates: []models.ProductCandidate{
		candidate("p1", "Wireless Mouse"),
		candidate("p2", "wireless   mouse"),
		candidate("p3", "  Wireless Mouse  "),
		candidate("p4", "Gaming Keyboard"),
	}}

	o := newTestOrchestrator(t, primary, &stubSource{name: "fallback"}, 20)
	got := o.Search(context.Background(), models.SearchIntent{Keywords: []string{"mouse"}})

	require.Len(t, got, 2)
	// first occurrence wins
	assert.Equal(t, "p1", got[0].ID)
	assert.Equal(t, "p4", got[1].ID)
}

func TestSearch_CapsCandidates(t *testing.T) {
	var many []models.ProductCandidate
	for i := 0; i < 30; i++ {
		many = append(many, candidate(fmt.Sprintf("p%d", i), fmt.Sprintf("Product %d", i)))
	}
	primary := &stubSource{name: "primary", candidates: many}

	o := newTestOrchestrator(t, primary, &stubSource{name: "fallback"}, 20)
	got := o.Search(context.Background(), models.SearchIntent{Keywords: []string{"product"}})

	assert.Len(t, got, 20)
	assert.Equal(t, "p0", got[0].ID)
}
