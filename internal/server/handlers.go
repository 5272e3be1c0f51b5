// internal/server/handlers.go
package server

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	stderrors "shopping-agent/internal/common/errors"
	"shopping-agent/internal/common/logger"
	"shopping-agent/internal/common/metrics"
	"shopping-agent/internal/models"
	normalizequery "shopping-agent/internal/pipeline/normalize-query"
)

const sessionHeader = "X-Session-ID"

// Searcher produces candidates for an intent.
type Searcher interface {
	Search(ctx context.Context, intent models.SearchIntent) []models.ProductCandidate
}

// Ranker scores, truncates and explains a candidate set.
type Ranker interface {
	RankAndExplain(ctx context.Context, intent models.SearchIntent, candidates []models.ProductCandidate) models.SearchResult
}

// ChatService runs one conversation turn against the session store.
type ChatService interface {
	HandleTurn(ctx context.Context, sessionID, content string) (models.AgentReply, string, error)
}

// Handler implements the HTTP endpoints.
type Handler struct {
	searcher Searcher
	ranker   Ranker
	chat     ChatService
	logger   logger.Logger
}

func NewHandler(searcher Searcher, ranker Ranker, chat ChatService, log logger.Logger) *Handler {
	return &Handler{
		searcher: searcher,
		ranker:   ranker,
		chat:     chat,
		logger:   log,
	}
}

type searchRequest struct {
	Query string `json:"query"`
}

type chatRequest struct {
	Content   string `json:"content"`
	SessionID string `json:"sessionId"`
}

type chatResponse struct {
	SessionID string            `json:"sessionId"`
	Reply     models.AgentReply `json:"reply"`
}

// Health reports process liveness.
func (h *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// Search runs the one-shot search pipeline for a raw query.
func (h *Handler) Search(c *fiber.Ctx) error {
	payload := new(searchRequest)
	if err := c.BodyParser(payload); err != nil {
		return errorResponse(c, stderrors.NewValidationError("request body must be valid JSON"))
	}
	if strings.TrimSpace(payload.Query) == "" {
		metrics.SearchRequestsTotal.WithLabelValues("rejected").Inc()
		return errorResponse(c, stderrors.NewValidationError("query must not be empty"))
	}

	intent := normalizequery.Normalize(payload.Query, nil)
	candidates := h.searcher.Search(c.Context(), intent)
	result := h.ranker.RankAndExplain(c.Context(), intent, candidates)

	metrics.SearchRequestsTotal.WithLabelValues("ok").Inc()
	return c.JSON(result)
}

// Chat runs one conversation turn. The session id may arrive in the body
// or the X-Session-ID header; the body wins when both are present. The
// effective id is echoed in both places.
func (h *Handler) Chat(c *fiber.Ctx) error {
	payload := new(chatRequest)
	if err := c.BodyParser(payload); err != nil {
		return errorResponse(c, stderrors.NewValidationError("request body must be valid JSON"))
	}

	sessionID := payload.SessionID
	if sessionID == "" {
		sessionID = c.Get(sessionHeader)
	}

	reply, sessionID, err := h.chat.HandleTurn(c.Context(), sessionID, payload.Content)
	if err != nil {
		return errorResponse(c, err)
	}

	c.Set(sessionHeader, sessionID)
	return c.JSON(chatResponse{SessionID: sessionID, Reply: reply})
}

// errorResponse maps taxonomy errors onto HTTP statuses. Provider errors
// never reach here in the happy path because the pipeline falls back, but
// a session store failure or bad input does.
func errorResponse(c *fiber.Ctx, err error) error {
	var stdErr *stderrors.StandardError
	status := fiber.StatusInternalServerError
	switch {
	case stderrors.IsValidation(err):
		status = fiber.StatusBadRequest
	case stderrors.IsProviderUnavailable(err):
		status = fiber.StatusServiceUnavailable
	}
	if e, ok := err.(*stderrors.StandardError); ok {
		stdErr = e
	} else {
		stdErr = stderrors.NewInternalInconsistencyError(err.Error())
	}
	return c.Status(status).JSON(fiber.Map{"error": stdErr})
}
