// internal/pipeline/conversation/machine.go
package conversation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"shopping-agent/internal/common/logger"
	"shopping-agent/internal/common/metrics"
	"shopping-agent/internal/models"
	normalizequery "shopping-agent/internal/pipeline/normalize-query"
)

// Searcher produces candidates for an intent. Satisfied by the search
// orchestrator.
type Searcher interface {
	Search(ctx context.Context, intent models.SearchIntent) []models.ProductCandidate
}

// Ranker scores, truncates and explains a candidate set. Satisfied by the
// ranking engine.
type Ranker interface {
	RankAndExplain(ctx context.Context, intent models.SearchIntent, candidates []models.ProductCandidate) models.SearchResult
}

// Machine drives one conversation turn through the phase transitions. It
// is stateless; all session data lives in the ConversationState passed in
// and returned.
type Machine struct {
	config   *Config
	searcher Searcher
	ranker   Ranker
	logger   logger.Logger
}

func NewMachine(config *Config, searcher Searcher, ranker Ranker, log logger.Logger) *Machine {
	return &Machine{
		config:   config,
		searcher: searcher,
		ranker:   ranker,
		logger:   log,
	}
}

// Advance processes a single user turn. The user turn and the agent reply
// are both appended to the transcript before returning, regardless of the
// path taken.
func (m *Machine) Advance(ctx context.Context, state models.ConversationState, userTurn string) (models.ConversationState, models.AgentReply) {
	state.Append(models.RoleUser, userTurn)

	var reply models.AgentReply
	switch {
	case state.Phase == models.PhaseAwaitingClarification && state.PendingFilter != nil:
		if option, ok := matchedOption(state.PendingFilter, userTurn); ok {
			state, reply = m.applyFilter(ctx, state, option)
		} else {
			// Anything that is not an option selection is treated as a
			// fresh refinement and the offered filter is abandoned.
			state.PendingFilter = nil
			state, reply = m.refine(ctx, state, userTurn)
		}
	case state.Phase == models.PhaseIdle:
		state, reply = m.firstTurn(ctx, state, userTurn)
	default:
		state, reply = m.refine(ctx, state, userTurn)
	}

	state.Append(models.RoleAgent, reply.Message)
	metrics.ChatTurnsTotal.WithLabelValues(string(state.Phase)).Inc()

	m.logger.Info("conversation turn advanced", map[string]interface{}{
		"session_id": state.SessionID,
		"phase":      string(state.Phase),
		"products":   len(reply.Products),
	})

	return state, reply
}

// firstTurn handles a session with no prior search. Smalltalk gets a
// canned reply and leaves the phase untouched; anything else starts a
// search.
func (m *Machine) firstTurn(ctx context.Context, state models.ConversationState, userTurn string) (models.ConversationState, models.AgentReply) {
	if msg, ok := smalltalkReply(userTurn); ok {
		return state, models.AgentReply{
			Message:   msg,
			Products:  []models.RankedProduct{},
			Timestamp: time.Now().UTC(),
		}
	}

	intent := normalizequery.Normalize(userTurn, nil)
	return m.runSearch(ctx, state, intent, true)
}

// refine handles a turn against an existing search context. The prior
// intent's constraints carry forward unless the new turn overrides them.
func (m *Machine) refine(ctx context.Context, state models.ConversationState, userTurn string) (models.ConversationState, models.AgentReply) {
	intent := normalizequery.Normalize(userTurn, state.LastIntent)
	return m.runSearch(ctx, state, intent, true)
}

// applyFilter merges a selected quick-reply option into the prior intent
// and re-runs the search with the narrowed constraints. The narrowed
// search never offers another filter; a user who just answered one goes
// straight back to refining.
func (m *Machine) applyFilter(ctx context.Context, state models.ConversationState, option string) (models.ConversationState, models.AgentReply) {
	prior := models.SearchIntent{}
	if state.LastIntent != nil {
		prior = *state.LastIntent
	}
	intent := applyFilterOption(prior, option)
	state.PendingFilter = nil

	m.logger.Debug("filter option applied", map[string]interface{}{
		"session_id": state.SessionID,
		"option":     option,
	})

	return m.runSearch(ctx, state, intent, false)
}

// runSearch executes search plus ranking for an intent and derives the
// next phase from the outcome. When offerFilter is set, an ambiguous
// result set (large and widely priced) moves to awaiting_clarification
// with a price filter attached.
func (m *Machine) runSearch(ctx context.Context, state models.ConversationState, intent models.SearchIntent, offerFilter bool) (models.ConversationState, models.AgentReply) {
	candidates := m.searcher.Search(ctx, intent)
	result := m.ranker.RankAndExplain(ctx, intent, candidates)

	state.LastIntent = &intent

	reply := models.AgentReply{
		Message:     result.Explanation,
		HasProducts: len(result.Products) > 0,
		Products:    result.Products,
		Timestamp:   time.Now().UTC(),
	}

	if len(result.Products) == 0 {
		// Nothing to refine. A session that never produced products stays
		// idle; one that did keeps its refining context.
		if state.Phase == models.PhaseIdle {
			return state, reply
		}
		state.Phase = models.PhaseRefining
		return state, reply
	}

	if offerFilter {
		if filter := m.derivePriceFilter(candidates); filter != nil {
			state.Phase = models.PhaseAwaitingClarification
			state.PendingFilter = filter
			reply.FilterName = filter.Name
			reply.FilterOptions = filter.Options
			reply.Message = fmt.Sprintf("%s\n\nThat's a wide range. Narrow it down by %s?",
				result.Explanation, strings.ToLower(filter.Name))
			return state, reply
		}
	}

	state.Phase = models.PhaseRefining
	return state, reply
}

// Canned replies for conversational turns that are not product queries.
func smalltalkReply(turn string) (string, bool) {
	t := strings.ToLower(strings.TrimSpace(turn))
	t = strings.Trim(t, "!.?")

	switch t {
	case "hi", "hello", "hey", "hi there", "hello there", "good morning", "good afternoon", "good evening":
		return "Hi! I can help you find products. Tell me what you're looking for, like \"wireless headphones under 3000\".", true
	case "thanks", "thank you", "thx", "ty":
		return "You're welcome! Let me know if you want to look for anything else.", true
	case "help", "what can you do", "how does this work":
		return "Describe a product and an optional budget, for example \"gaming laptop under 50000\". I'll search, rank the results, and you can keep narrowing them down.", true
	case "bye", "goodbye", "see you":
		return "Goodbye! Come back any time you need product recommendations.", true
	}
	return "", false
}
