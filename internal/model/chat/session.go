package chat

import (
	"sync"
	"time"
)

// Turn roles, matching the generation collaborator's wire vocabulary.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is a single utterance in a conversation.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Session captures transient conversational state for one visitor.
// The store hands out pointers and callers mutate the session in place,
// so every read-check-mutate sequence must run under Lock.
type Session struct {
	mu sync.Mutex

	ID             string
	History        []Turn
	LastQuestion   string
	LastQuestionAt time.Time
	CreatedAt      time.Time
}

// Lock acquires the per-session mutex. Requests for different sessions never
// contend; only same-session operations serialize.
func (s *Session) Lock() { s.mu.Lock() }

// Unlock releases the per-session mutex.
func (s *Session) Unlock() { s.mu.Unlock() }
