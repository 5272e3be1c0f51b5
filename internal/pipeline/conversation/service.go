// internal/pipeline/conversation/service.go
package conversation

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	stderrors "shopping-agent/internal/common/errors"
	"shopping-agent/internal/common/logger"
	"shopping-agent/internal/models"
	"shopping-agent/internal/session"
)

// Service ties the state machine to a session store. Turns within one
// session are serialized; turns across sessions run concurrently.
type Service struct {
	machine *Machine
	store   session.Store
	locks   *keyedMutex
	logger  logger.Logger
}

func NewService(machine *Machine, store session.Store, log logger.Logger) *Service {
	return &Service{
		machine: machine,
		store:   store,
		locks:   newKeyedMutex(),
		logger:  log,
	}
}

// HandleTurn runs one chat turn. A blank session id starts a new session;
// the id the state was stored under is always returned so the caller can
// echo it back to the client.
func (s *Service) HandleTurn(ctx context.Context, sessionID, content string) (models.AgentReply, string, error) {
	if strings.TrimSpace(content) == "" {
		return models.AgentReply{}, sessionID, stderrors.NewValidationError("message content must not be empty")
	}

	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	unlock := s.locks.lock(sessionID)
	defer unlock()

	state, found, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return models.AgentReply{}, sessionID, err
	}
	if !found {
		state = models.NewConversationState(sessionID)
	}

	state, reply := s.machine.Advance(ctx, state, content)

	if err := s.store.Put(ctx, state); err != nil {
		return models.AgentReply{}, sessionID, err
	}
	return reply, sessionID, nil
}

// keyedMutex hands out one mutex per session id, dropping a mutex once
// nothing holds or waits on it.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*lockEntry)}
}

func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	entry, ok := k.locks[key]
	if !ok {
		entry = &lockEntry{}
		k.locks[key] = entry
	}
	entry.refs++
	k.mu.Unlock()

	entry.mu.Lock()

	return func() {
		entry.mu.Unlock()
		k.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
