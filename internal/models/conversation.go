package models

import "time"

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleUser  Role = "user"
	RoleAgent Role = "agent"
)

// Phase is the conversation state machine phase.
type Phase string

const (
	// No prior search in this session.
	PhaseIdle Phase = "idle"
	// A search exists and the user may narrow it.
	PhaseRefining Phase = "refining"
	// A filter was offered and a choice is pending.
	PhaseAwaitingClarification Phase = "awaiting_clarification"
)

// ConversationTurn is one entry in the append-only session transcript.
type ConversationTurn struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// PendingFilter is a clarification offered to the user as quick-reply
// options. A filter with fewer than two options is meaningless and must be
// suppressed before it reaches this struct.
type PendingFilter struct {
	Name    string   `json:"name"`
	Options []string `json:"options"`
}

// ConversationState holds everything the state machine knows about one
// chat session. Mutated exclusively by the state machine.
type ConversationState struct {
	SessionID     string             `json:"sessionId"`
	Phase         Phase              `json:"phase"`
	Transcript    []ConversationTurn `json:"transcript"`
	PendingFilter *PendingFilter     `json:"pendingFilter,omitempty"`
	LastIntent    *SearchIntent      `json:"lastIntent,omitempty"`
	LastActivity  time.Time          `json:"lastActivity"`
}

// NewConversationState creates the initial state for a session.
func NewConversationState(sessionID string) ConversationState {
	return ConversationState{
		SessionID:    sessionID,
		Phase:        PhaseIdle,
		Transcript:   []ConversationTurn{},
		LastActivity: time.Now().UTC(),
	}
}

// Append adds a turn to the transcript and bumps the activity timestamp.
func (s *ConversationState) Append(role Role, content string) {
	now := time.Now().UTC()
	s.Transcript = append(s.Transcript, ConversationTurn{
		Role:      role,
		Content:   content,
		Timestamp: now,
	})
	s.LastActivity = now
}

// AgentReply is the structured response for one chat turn.
type AgentReply struct {
	Message       string          `json:"message"`
	HasProducts   bool            `json:"hasProducts"`
	Products      []RankedProduct `json:"products"`
	FilterName    string          `json:"filterName,omitempty"`
	FilterOptions []string        `json:"filterOptions,omitempty"`
	Timestamp     time.Time       `json:"timestamp"`
}
