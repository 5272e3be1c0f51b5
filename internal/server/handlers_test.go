// internal/server/handlers_test.go
package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopping-agent/internal/common/config"
	stderrors "shopping-agent/internal/common/errors"
	"shopping-agent/internal/common/logger"
	"shopping-agent/internal/models"
)

type stubSearcher struct{}

func (s *stubSearcher) Search(_ context.Context, _ models.SearchIntent) []models.ProductCandidate {
	price := 1499.0
	return []models.ProductCandidate{
		{ID: "p1", Title: "boAt Rockerz 450", Price: "₹1,499", PriceValue: &price, Source: "Amazon"},
	}
}

type stubRanker struct{}

func (r *stubRanker) RankAndExplain(_ context.Context, intent models.SearchIntent, candidates []models.ProductCandidate) models.SearchResult {
	products := make([]models.RankedProduct, 0, len(candidates))
	for _, c := range candidates {
		products = append(products, models.RankedProduct{
			ProductCandidate: c,
			RelevanceScore:   0.8,
			Explanation:      "Matches your search.",
		})
	}
	return models.SearchResult{
		Query:       intent.RawQuery,
		Products:    products,
		Explanation: "Found matching products.",
		SearchID:    uuid.NewString(),
		Timestamp:   time.Now().UTC(),
	}
}

type stubChat struct {
	lastSessionID string
	lastContent   string
}

func (c *stubChat) HandleTurn(_ context.Context, sessionID, content string) (models.AgentReply, string, error) {
	if strings.TrimSpace(content) == "" {
		return models.AgentReply{}, sessionID, stderrors.NewValidationError("message content must not be empty")
	}
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	c.lastSessionID = sessionID
	c.lastContent = content
	return models.AgentReply{
		Message:   "Here are some options.",
		Timestamp: time.Now().UTC(),
	}, sessionID, nil
}

func newTestApp(t *testing.T) (*fiber.App, *stubChat) {
	chat := &stubChat{}
	handler := NewHandler(&stubSearcher{}, &stubRanker{}, chat, logger.NewTestLogger(t))
	srv := New(config.ServerConfig{Address: ":0", ShutdownTimeout: 1000}, handler, nil, logger.NewTestLogger(t))
	return srv.App(), chat
}

func TestHealthEndpoint(t *testing.T) {
	app, _ := newTestApp(t)

	res, err := app.Test(httptest.NewRequest("GET", "/api/health", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, res.StatusCode)

	body, _ := io.ReadAll(res.Body)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))
}

func TestSearchEndpoint_Success(t *testing.T) {
	app, _ := newTestApp(t)

	req := httptest.NewRequest("POST", "/api/search",
		strings.NewReader(`{"query":"wireless headphones under 3000"}`))
	req.Header.Set("Content-Type", "application/json")

	res, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, res.StatusCode)

	var result models.SearchResult
	require.NoError(t, json.NewDecoder(res.Body).Decode(&result))
	assert.Equal(t, "wireless headphones under 3000", result.Query)
	require.Len(t, result.Products, 1)
	assert.Equal(t, "boAt Rockerz 450", result.Products[0].Title)
	assert.NotEmpty(t, result.SearchID)
}

func TestSearchEndpoint_EmptyQuery(t *testing.T) {
	app, _ := newTestApp(t)

	req := httptest.NewRequest("POST", "/api/search", strings.NewReader(`{"query":"   "}`))
	req.Header.Set("Content-Type", "application/json")

	res, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, res.StatusCode)

	body, _ := io.ReadAll(res.Body)
	assert.Contains(t, string(body), "VALIDATION_ERROR")
}

func TestSearchEndpoint_MalformedBody(t *testing.T) {
	app, _ := newTestApp(t)

	req := httptest.NewRequest("POST", "/api/search", strings.NewReader(`{not json`))
	req.Header.Set("Content-Type", "application/json")

	res, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, res.StatusCode)
}

func TestChatEndpoint_NewSession(t *testing.T) {
	app, chat := newTestApp(t)

	req := httptest.NewRequest("POST", "/api/chat",
		strings.NewReader(`{"content":"show me laptops"}`))
	req.Header.Set("Content-Type", "application/json")

	res, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, res.StatusCode)

	var payload struct {
		SessionID string            `json:"sessionId"`
		Reply     models.AgentReply `json:"reply"`
	}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&payload))
	assert.NotEmpty(t, payload.SessionID)
	assert.Equal(t, payload.SessionID, res.Header.Get("X-Session-ID"))
	assert.Equal(t, "Here are some options.", payload.Reply.Message)
	assert.Equal(t, "show me laptops", chat.lastContent)
}

func TestChatEndpoint_ExistingSessionFromHeader(t *testing.T) {
	app, chat := newTestApp(t)

	req := httptest.NewRequest("POST", "/api/chat",
		strings.NewReader(`{"content":"cheaper options"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Session-ID", "existing-session")

	res, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, res.StatusCode)
	assert.Equal(t, "existing-session", chat.lastSessionID)
	assert.Equal(t, "existing-session", res.Header.Get("X-Session-ID"))
}

func TestChatEndpoint_BodySessionWinsOverHeader(t *testing.T) {
	app, chat := newTestApp(t)

	req := httptest.NewRequest("POST", "/api/chat",
		strings.NewReader(`{"content":"hi","sessionId":"body-session"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Session-ID", "header-session")

	res, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, res.StatusCode)
	assert.Equal(t, "body-session", chat.lastSessionID)
}

func TestChatEndpoint_EmptyMessage(t *testing.T) {
	app, _ := newTestApp(t)

	req := httptest.NewRequest("POST", "/api/chat", strings.NewReader(`{"content":""}`))
	req.Header.Set("Content-Type", "application/json")

	res, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, res.StatusCode)

	body, _ := io.ReadAll(res.Body)
	assert.Contains(t, string(body), "VALIDATION_ERROR")
}
