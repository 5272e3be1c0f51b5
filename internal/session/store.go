// Package session provides the conversation state stores. The in-memory
// store is the default; the Redis store is enabled by configuration for
// deployments that need sessions to survive a restart.
package session

import (
	"context"

	"shopping-agent/internal/models"
)

// Store persists conversation state keyed by session id. Expired sessions
// behave exactly like absent ones.
type Store interface {
	Get(ctx context.Context, sessionID string) (models.ConversationState, bool, error)
	Put(ctx context.Context, state models.ConversationState) error
	Delete(ctx context.Context, sessionID string) error
}
